package links

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/mitchellh/mapstructure"
	"gorm.io/gorm"

	"github.com/hashicorp-forge/curator/pkg/dcerr"
	"github.com/hashicorp-forge/curator/pkg/models"
)

// Similarity weights. The score is a heuristic ranking in [0,1], advisory
// only.
const (
	weightLevel    = 0.3
	weightCategory = 0.3
	weightStandard = 0.2
	weightTags     = 0.2
)

// RelatedFilters narrows FindRelated candidates.
type RelatedFilters struct {
	Level    *int    `mapstructure:"level"`
	Category string  `mapstructure:"category"`
	Standard string  `mapstructure:"standard"`
	MinScore float64 `mapstructure:"minScore"`
	Limit    int     `mapstructure:"limit"`
}

// DecodeRelatedFilters decodes loosely-typed filter maps, as handed over by
// calling layers, into RelatedFilters.
func DecodeRelatedFilters(raw map[string]any) (RelatedFilters, error) {
	var filters RelatedFilters
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &filters,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return filters, fmt.Errorf("error building filter decoder: %w", err)
	}
	if err := decoder.Decode(raw); err != nil {
		return filters, dcerr.Wrap(dcerr.CodeConfigurationError, err, "invalid related-document filters")
	}
	return filters, nil
}

// RelatedDocument is one similarity match.
type RelatedDocument struct {
	Document models.Document `json:"document"`
	Score    float64         `json:"score"`
}

// FindRelated ranks other documents by similarity to the given one. The score
// is a weighted sum of matching level (0.3), category (0.3), standard (0.2),
// and tag-set intersection (0.2). Results are sorted best-first; callers must
// treat the ranking as advisory.
func (g *Graph) FindRelated(ctx context.Context, documentID uint, filters RelatedFilters) ([]RelatedDocument, error) {
	db := g.db.WithContext(ctx)

	var doc models.Document
	if err := doc.Get(db, documentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, dcerr.New(dcerr.CodeNotFound, "document %d not found", documentID)
		}
		return nil, fmt.Errorf("error loading document: %w", err)
	}

	query := db.Model(&models.Document{}).Where("id != ?", documentID)
	if filters.Level != nil {
		query = query.Where("level = ?", *filters.Level)
	}
	if filters.Category != "" {
		query = query.Where("category = ?", filters.Category)
	}
	if filters.Standard != "" {
		query = query.Where("standard = ?", filters.Standard)
	}

	var candidates []models.Document
	if err := query.Find(&candidates).Error; err != nil {
		return nil, fmt.Errorf("error loading candidate documents: %w", err)
	}

	var related []RelatedDocument
	for _, candidate := range candidates {
		score := similarity(&doc, &candidate)
		if score < filters.MinScore {
			continue
		}
		related = append(related, RelatedDocument{Document: candidate, Score: score})
	}

	sort.SliceStable(related, func(i, j int) bool {
		return related[i].Score > related[j].Score
	})

	if filters.Limit > 0 && len(related) > filters.Limit {
		related = related[:filters.Limit]
	}
	return related, nil
}

// similarity computes the weighted match score between two documents.
func similarity(a, b *models.Document) float64 {
	score := 0.0
	if a.Level == b.Level {
		score += weightLevel
	}
	if a.Category != "" && a.Category == b.Category {
		score += weightCategory
	}
	if a.Standard != "" && a.Standard == b.Standard {
		score += weightStandard
	}
	score += weightTags * jaccard(a.Tags, b.Tags)
	return score
}

// jaccard computes |A ∩ B| / |A ∪ B| over tag sets. Two empty sets score
// zero, not one: no tags is no evidence of relatedness.
func jaccard(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	set := make(map[string]bool, len(a))
	for _, t := range a {
		set[t] = true
	}

	intersection := 0
	union := len(set)
	seen := make(map[string]bool, len(b))
	for _, t := range b {
		if seen[t] {
			continue
		}
		seen[t] = true
		if set[t] {
			intersection++
		} else {
			union++
		}
	}

	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}
