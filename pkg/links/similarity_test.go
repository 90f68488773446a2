package links

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hashicorp-forge/curator/pkg/dcerr"
	"github.com/hashicorp-forge/curator/pkg/models"
)

func TestSimilarity(t *testing.T) {
	base := &models.Document{Level: 3, Category: "PROC", Standard: "ISO 17025", Tags: []string{"sampling", "lab"}}

	t.Run("identical attributes score 1.0", func(t *testing.T) {
		twin := &models.Document{Level: 3, Category: "PROC", Standard: "ISO 17025", Tags: []string{"sampling", "lab"}}
		assert.InDelta(t, 1.0, similarity(base, twin), 1e-9)
	})

	t.Run("level and category only", func(t *testing.T) {
		other := &models.Document{Level: 3, Category: "PROC"}
		assert.InDelta(t, 0.6, similarity(base, other), 1e-9)
	})

	t.Run("partial tag overlap", func(t *testing.T) {
		// Jaccard of {sampling,lab} vs {sampling,field} = 1/3.
		other := &models.Document{Level: 1, Category: "QM", Tags: []string{"sampling", "field"}}
		assert.InDelta(t, 0.2/3.0, similarity(base, other), 1e-9)
	})

	t.Run("empty standards do not match each other", func(t *testing.T) {
		a := &models.Document{Level: 2, Category: "X"}
		b := &models.Document{Level: 3, Category: "Y"}
		assert.InDelta(t, 0.0, similarity(a, b), 1e-9)
	})
}

func TestJaccard(t *testing.T) {
	assert.InDelta(t, 0.0, jaccard(nil, nil), 1e-9)
	assert.InDelta(t, 0.0, jaccard([]string{"a"}, nil), 1e-9)
	assert.InDelta(t, 1.0, jaccard([]string{"a", "b"}, []string{"b", "a"}), 1e-9)
	assert.InDelta(t, 0.5, jaccard([]string{"a", "b"}, []string{"a", "b", "c", "d"}), 1e-9)
	// Duplicate tags count once.
	assert.InDelta(t, 1.0, jaccard([]string{"a", "a"}, []string{"a"}), 1e-9)
}

func TestGraph_FindRelated(t *testing.T) {
	db := testDB(t)
	g := NewGraph(db, nil, nil)
	ctx := context.Background()

	doc := models.Document{
		DocumentNumber: "L3-PROC-2024-0001",
		Title:          "Sampling Procedure",
		Level:          3,
		Category:       "PROC",
		Standard:       "ISO 17025",
		Tags:           []string{"sampling"},
	}
	require.NoError(t, doc.Create(db))

	twin := models.Document{
		DocumentNumber: "L3-PROC-2024-0002",
		Title:          "Subsampling Procedure",
		Level:          3,
		Category:       "PROC",
		Standard:       "ISO 17025",
		Tags:           []string{"sampling"},
	}
	require.NoError(t, twin.Create(db))

	distant := models.Document{
		DocumentNumber: "L4-FRM-2024-0001",
		Title:          "Calibration Form",
		Level:          4,
		Category:       "FRM",
	}
	require.NoError(t, distant.Create(db))

	t.Run("ranks best match first", func(t *testing.T) {
		related, err := g.FindRelated(ctx, doc.ID, RelatedFilters{})
		require.NoError(t, err)
		require.Len(t, related, 2)
		assert.Equal(t, twin.ID, related[0].Document.ID)
		assert.Greater(t, related[0].Score, related[1].Score)
	})

	t.Run("min score filters weak matches", func(t *testing.T) {
		related, err := g.FindRelated(ctx, doc.ID, RelatedFilters{MinScore: 0.5})
		require.NoError(t, err)
		require.Len(t, related, 1)
		assert.Equal(t, twin.ID, related[0].Document.ID)
	})

	t.Run("limit caps results", func(t *testing.T) {
		related, err := g.FindRelated(ctx, doc.ID, RelatedFilters{Limit: 1})
		require.NoError(t, err)
		assert.Len(t, related, 1)
	})

	t.Run("category filter narrows candidates", func(t *testing.T) {
		related, err := g.FindRelated(ctx, doc.ID, RelatedFilters{Category: "FRM"})
		require.NoError(t, err)
		require.Len(t, related, 1)
		assert.Equal(t, distant.ID, related[0].Document.ID)
	})

	t.Run("unknown document", func(t *testing.T) {
		_, err := g.FindRelated(ctx, 9999, RelatedFilters{})
		require.Error(t, err)
		assert.True(t, dcerr.IsCode(err, dcerr.CodeNotFound))
	})
}

func TestDecodeRelatedFilters(t *testing.T) {
	t.Run("weakly typed input", func(t *testing.T) {
		filters, err := DecodeRelatedFilters(map[string]any{
			"level":    "3",
			"category": "PROC",
			"minScore": "0.4",
			"limit":    10,
		})
		require.NoError(t, err)
		require.NotNil(t, filters.Level)
		assert.Equal(t, 3, *filters.Level)
		assert.Equal(t, "PROC", filters.Category)
		assert.InDelta(t, 0.4, filters.MinScore, 1e-9)
		assert.Equal(t, 10, filters.Limit)
	})

	t.Run("undecodable input", func(t *testing.T) {
		_, err := DecodeRelatedFilters(map[string]any{"level": "three"})
		require.Error(t, err)
		assert.True(t, dcerr.IsCode(err, dcerr.CodeConfigurationError))
	})
}
