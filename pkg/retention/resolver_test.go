package retention

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/hashicorp-forge/curator/pkg/dcerr"
	"github.com/hashicorp-forge/curator/pkg/models"
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

func intPtr(n int) *int       { return &n }
func strPtr(s string) *string { return &s }

func createPolicy(t *testing.T, db *gorm.DB, p models.RetentionPolicy) {
	t.Helper()
	require.NoError(t, p.Create(db))
}

func createDoc(t *testing.T, db *gorm.DB, doc models.Document) *models.Document {
	t.Helper()
	require.NoError(t, doc.Create(db))
	return &doc
}

func TestResolver_GetApplicablePolicy(t *testing.T) {
	db := testDB(t)
	r := NewResolver(db, nil, nil)
	ctx := context.Background()

	createPolicy(t, db, models.RetentionPolicy{PolicyName: "default", RetentionYears: 3})
	createPolicy(t, db, models.RetentionPolicy{PolicyName: "level4", Level: intPtr(4), RetentionYears: 5})
	createPolicy(t, db, models.RetentionPolicy{
		PolicyName: "calibration", Level: intPtr(4),
		DocumentType: strPtr("record"), Category: strPtr("CAL"),
		RetentionYears: 7,
	})

	t.Run("most specific match wins", func(t *testing.T) {
		doc := createDoc(t, db, models.Document{
			DocumentNumber: "L4-CAL-2024-0001", Title: "Calibration Record",
			Level: 4, Category: "CAL", DocumentType: "record",
		})
		policy, err := r.GetApplicablePolicy(ctx, doc.ID)
		require.NoError(t, err)
		require.NotNil(t, policy)
		assert.Equal(t, "calibration", policy.PolicyName)
	})

	t.Run("falls back down the specificity order", func(t *testing.T) {
		doc := createDoc(t, db, models.Document{
			DocumentNumber: "L4-TRN-2024-0001", Title: "Training Record",
			Level: 4, Category: "TRN",
		})
		policy, err := r.GetApplicablePolicy(ctx, doc.ID)
		require.NoError(t, err)
		require.NotNil(t, policy)
		assert.Equal(t, "level4", policy.PolicyName)
	})

	t.Run("wildcard policy catches everything", func(t *testing.T) {
		doc := createDoc(t, db, models.Document{
			DocumentNumber: "L2-QM-2024-0001", Title: "Quality Manual",
			Level: 2, Category: "QM",
		})
		policy, err := r.GetApplicablePolicy(ctx, doc.ID)
		require.NoError(t, err)
		require.NotNil(t, policy)
		assert.Equal(t, "default", policy.PolicyName)
	})

	t.Run("equal specificity breaks ties by policy name", func(t *testing.T) {
		createPolicy(t, db, models.RetentionPolicy{PolicyName: "zz-level3", Level: intPtr(3), RetentionYears: 2})
		createPolicy(t, db, models.RetentionPolicy{PolicyName: "aa-level3", Level: intPtr(3), RetentionYears: 9})

		doc := createDoc(t, db, models.Document{
			DocumentNumber: "L3-PROC-2024-0001", Title: "Procedure",
			Level: 3, Category: "PROC",
		})
		policy, err := r.GetApplicablePolicy(ctx, doc.ID)
		require.NoError(t, err)
		require.NotNil(t, policy)
		assert.Equal(t, "aa-level3", policy.PolicyName)
	})

	t.Run("unknown document", func(t *testing.T) {
		_, err := r.GetApplicablePolicy(ctx, 9999)
		require.Error(t, err)
		assert.True(t, dcerr.IsCode(err, dcerr.CodeNotFound))
	})
}

func TestResolver_CalculateDestructionDate(t *testing.T) {
	db := testDB(t)
	r := NewResolver(db, nil, nil)
	ctx := context.Background()

	t.Run("policy span from effective date", func(t *testing.T) {
		createPolicy(t, db, models.RetentionPolicy{
			PolicyName: "cal-records", Category: strPtr("CAL"),
			RetentionYears: 5, RetentionMonths: 6,
		})

		effective := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		doc := createDoc(t, db, models.Document{
			DocumentNumber: "L4-CAL-2024-0001", Title: "Calibration Record",
			Level: 4, Category: "CAL", EffectiveDate: &effective,
		})

		got, err := r.CalculateDestructionDate(ctx, doc.ID, nil)
		require.NoError(t, err)
		want := effective.AddDate(0, 0, 5*365+6*30)
		assert.True(t, got.Equal(want), "got %v want %v", got, want)

		var reloaded models.Document
		require.NoError(t, reloaded.Get(db, doc.ID))
		require.NotNil(t, reloaded.DestructionDate)
		assert.Equal(t, 5, reloaded.RetentionYears, "policy years persisted onto document")
	})

	t.Run("document RetentionYears when no policy matches", func(t *testing.T) {
		effective := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
		doc := createDoc(t, db, models.Document{
			DocumentNumber: "L3-PROC-2024-0002", Title: "Procedure",
			Level: 3, Category: "PROC", EffectiveDate: &effective,
			RetentionYears: 2,
		})

		got, err := r.CalculateDestructionDate(ctx, doc.ID, nil)
		require.NoError(t, err)
		assert.True(t, got.Equal(effective.AddDate(0, 0, 2*365)))
	})

	t.Run("explicit from-date overrides", func(t *testing.T) {
		doc := createDoc(t, db, models.Document{
			DocumentNumber: "L3-PROC-2024-0003", Title: "Procedure",
			Level: 3, Category: "PROC", RetentionYears: 1,
		})

		from := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
		got, err := r.CalculateDestructionDate(ctx, doc.ID, &from)
		require.NoError(t, err)
		assert.True(t, got.Equal(from.AddDate(0, 0, 365)))
	})
}

func TestResolver_ExtendRetention(t *testing.T) {
	db := testDB(t)
	r := NewResolver(db, nil, nil)
	ctx := context.Background()

	effective := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	doc := createDoc(t, db, models.Document{
		DocumentNumber: "L3-PROC-2024-0010", Title: "Procedure",
		Level: 3, Category: "PROC", EffectiveDate: &effective,
		RetentionYears: 3,
	})

	t.Run("computes a date first when none exists", func(t *testing.T) {
		got, err := r.ExtendRetention(ctx, doc.ID, 2, "records-officer")
		require.NoError(t, err)
		want := effective.AddDate(0, 0, 3*365).AddDate(0, 0, 2*365)
		assert.True(t, got.Equal(want), "got %v want %v", got, want)
	})

	t.Run("extensions are additive", func(t *testing.T) {
		first := reloadDestruction(t, db, doc.ID)
		got, err := r.ExtendRetention(ctx, doc.ID, 1, "records-officer")
		require.NoError(t, err)
		assert.True(t, got.Equal(first.AddDate(0, 0, 365)))

		var reloaded models.Document
		require.NoError(t, reloaded.Get(db, doc.ID))
		assert.Equal(t, 6, reloaded.RetentionYears, "3 base + 2 + 1")
	})

	t.Run("non-positive years rejected", func(t *testing.T) {
		_, err := r.ExtendRetention(ctx, doc.ID, 0, "records-officer")
		require.Error(t, err)
		assert.True(t, dcerr.IsCode(err, dcerr.CodeConfigurationError))
	})
}

func reloadDestruction(t *testing.T, db *gorm.DB, id uint) time.Time {
	t.Helper()
	var doc models.Document
	require.NoError(t, doc.Get(db, id))
	require.NotNil(t, doc.DestructionDate)
	return *doc.DestructionDate
}

func TestResolver_DestroyDocument(t *testing.T) {
	db := testDB(t)
	r := NewResolver(db, nil, nil)
	ctx := context.Background()

	createPolicy(t, db, models.RetentionPolicy{
		PolicyName: "guarded", Category: strPtr("QM"),
		RetentionYears: 10, RequireApprovalForDestruction: true,
	})

	t.Run("policy-gated destruction requires approval", func(t *testing.T) {
		doc := createDoc(t, db, models.Document{
			DocumentNumber: "L1-QM-2024-0001", Title: "Quality Manual",
			Level: 1, Category: "QM",
		})

		err := r.DestroyDocument(ctx, doc.ID, "operator", "")
		require.Error(t, err)
		assert.True(t, dcerr.IsCode(err, dcerr.CodeApprovalRequired))

		require.NoError(t, r.DestroyDocument(ctx, doc.ID, "operator", "quality-manager"))

		var gone models.Document
		require.Error(t, gone.Get(db, doc.ID))

		exists, err := models.NumberExists(db, "L1-QM-2024-0001")
		require.NoError(t, err)
		assert.True(t, exists, "number stays reserved after destruction")
	})

	t.Run("ungoverned documents destroy without approval", func(t *testing.T) {
		doc := createDoc(t, db, models.Document{
			DocumentNumber: "L3-PROC-2024-0020", Title: "Procedure",
			Level: 3, Category: "PROC",
		})
		require.NoError(t, r.DestroyDocument(ctx, doc.ID, "operator", ""))
	})

	t.Run("unknown document", func(t *testing.T) {
		err := r.DestroyDocument(ctx, 9999, "operator", "")
		require.Error(t, err)
		assert.True(t, dcerr.IsCode(err, dcerr.CodeNotFound))
	})
}

func TestResolver_ListDueForDestruction(t *testing.T) {
	db := testDB(t)
	r := NewResolver(db, nil, nil)
	ctx := context.Background()

	due := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	notDue := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)

	past := createDoc(t, db, models.Document{
		DocumentNumber: "L3-PROC-2020-0001", Title: "Old Procedure",
		Level: 3, Category: "PROC", DestructionDate: &due,
	})
	createDoc(t, db, models.Document{
		DocumentNumber: "L3-PROC-2024-0030", Title: "Fresh Procedure",
		Level: 3, Category: "PROC", DestructionDate: &notDue,
	})
	createDoc(t, db, models.Document{
		DocumentNumber: "L3-PROC-2024-0031", Title: "No Date Yet",
		Level: 3, Category: "PROC",
	})

	docs, err := r.ListDueForDestruction(ctx, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, past.ID, docs[0].ID)
}
