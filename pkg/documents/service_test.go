package documents

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/hashicorp-forge/curator/pkg/dcerr"
	"github.com/hashicorp-forge/curator/pkg/models"
	"github.com/hashicorp-forge/curator/pkg/numbering"
	"github.com/hashicorp-forge/curator/pkg/retention"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(models.ModelsToAutoMigrate()...))
	return db
}

func testService(t *testing.T, db *gorm.DB) *Service {
	t.Helper()
	authority := numbering.NewAuthority(db, numbering.Settings{}, nil)
	resolver := retention.NewResolver(db, nil, nil)
	return NewService(db, authority, resolver, nil, nil)
}

func TestService_CreateDocument(t *testing.T) {
	db := testDB(t)
	s := testService(t, db)
	ctx := context.Background()

	t.Run("creates with generated number and destruction date", func(t *testing.T) {
		effective := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		doc, err := s.CreateDocument(ctx, CreateDocumentInput{
			Title:         "Sample Handling Procedure",
			Level:         3,
			Category:      "PROC",
			OwnerID:       "alice",
			ActorID:       "alice",
			EffectiveDate: &effective,
		})
		require.NoError(t, err)

		assert.NotEmpty(t, doc.DocumentNumber)
		assert.NotEqual(t, uuid.Nil, doc.DocumentUUID)
		assert.Equal(t, models.StatusDraft, doc.Status)
		assert.Equal(t, "1.0", doc.CurrentVersion)

		require.NotNil(t, doc.DestructionDate, "initial destruction date stored")
		assert.True(t, doc.DestructionDate.Equal(effective.AddDate(0, 0, 3*365)))
	})

	t.Run("manual number accepted", func(t *testing.T) {
		doc, err := s.CreateDocument(ctx, CreateDocumentInput{
			Title:        "Legacy Work Instruction",
			Level:        3,
			Category:     "WI",
			ManualNumber: "LEGACY-WI-007",
			ActorID:      "alice",
		})
		require.NoError(t, err)
		assert.Equal(t, "LEGACY-WI-007", doc.DocumentNumber)
	})

	t.Run("duplicate manual number rolls back the creation", func(t *testing.T) {
		_, err := s.CreateDocument(ctx, CreateDocumentInput{
			Title:        "Duplicate",
			Level:        3,
			Category:     "WI",
			ManualNumber: "LEGACY-WI-007",
			ActorID:      "alice",
		})
		require.Error(t, err)
		assert.True(t, dcerr.IsCode(err, dcerr.CodeDuplicateIdentifier))

		var count int64
		require.NoError(t, db.Model(&models.Document{}).
			Where("title = ?", "Duplicate").Count(&count).Error)
		assert.EqualValues(t, 0, count)
	})

	t.Run("unknown parent rejected", func(t *testing.T) {
		parent := uint(9999)
		_, err := s.CreateDocument(ctx, CreateDocumentInput{
			Title:            "Orphan",
			Level:            4,
			Category:         "FRM",
			ParentDocumentID: &parent,
			ActorID:          "alice",
		})
		require.Error(t, err)
		assert.True(t, dcerr.IsCode(err, dcerr.CodeNotFound))
	})

	t.Run("assigned roles carried through", func(t *testing.T) {
		doc, err := s.CreateDocument(ctx, CreateDocumentInput{
			Title:      "Assigned Doc",
			Level:      3,
			Category:   "PROC",
			DoerID:     "doer",
			CheckerID:  "checker",
			ApproverID: "approver",
			ActorID:    "alice",
		})
		require.NoError(t, err)
		assert.Equal(t, "doer", doc.DoerID)
		assert.Equal(t, "checker", doc.CheckerID)
		assert.Equal(t, "approver", doc.ApproverID)
	})
}

func TestService_GetDocument(t *testing.T) {
	db := testDB(t)
	s := testService(t, db)
	ctx := context.Background()

	created, err := s.CreateDocument(ctx, CreateDocumentInput{
		Title:    "Lookup Target",
		Level:    3,
		Category: "PROC",
		ActorID:  "alice",
	})
	require.NoError(t, err)

	t.Run("by id", func(t *testing.T) {
		got, err := s.GetDocument(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, created.DocumentNumber, got.DocumentNumber)
	})

	t.Run("by number", func(t *testing.T) {
		got, err := s.GetDocumentByNumber(ctx, created.DocumentNumber)
		require.NoError(t, err)
		assert.Equal(t, created.ID, got.ID)
	})

	t.Run("unknown id", func(t *testing.T) {
		_, err := s.GetDocument(ctx, 9999)
		require.Error(t, err)
		assert.True(t, dcerr.IsCode(err, dcerr.CodeNotFound))
	})

	t.Run("unknown number", func(t *testing.T) {
		_, err := s.GetDocumentByNumber(ctx, "L9-NONE-2024-0001")
		require.Error(t, err)
		assert.True(t, dcerr.IsCode(err, dcerr.CodeNotFound))
	})
}
