package models

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

// NumberSequence is one row per (level, category, year) holding the monotonic
// counter behind generated document numbers. CurrentSequence never decreases
// and is only incremented inside the same transaction that creates the
// document consuming it, so a rollback cannot leak or reuse a number.
type NumberSequence struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Level    int    `gorm:"not null;uniqueIndex:idx_number_sequences_key" json:"level"`
	Category string `gorm:"type:varchar(50);not null;uniqueIndex:idx_number_sequences_key" json:"category"`
	Year     int    `gorm:"not null;uniqueIndex:idx_number_sequences_key" json:"year"`

	CurrentSequence int `gorm:"not null;default:0" json:"currentSequence"`

	Prefix         string `gorm:"type:varchar(20)" json:"prefix,omitempty"`
	FormatTemplate string `gorm:"type:varchar(200)" json:"formatTemplate,omitempty"`
}

// TableName specifies the table name.
func (NumberSequence) TableName() string {
	return "number_sequences"
}

// GetOrCreateSequence returns the sequence row for (level, category, year),
// creating it at zero if absent. Concurrent creators are reconciled through
// the unique index: the loser of a create race re-reads the winner's row.
func GetOrCreateSequence(db *gorm.DB, level int, category string, year int) (*NumberSequence, error) {
	var seq NumberSequence
	err := db.Where("level = ? AND category = ? AND year = ?", level, category, year).
		First(&seq).Error
	if err == nil {
		return &seq, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	seq = NumberSequence{
		Level:    level,
		Category: category,
		Year:     year,
	}
	if err := db.Create(&seq).Error; err != nil {
		// Another transaction created the row first; read theirs.
		var existing NumberSequence
		if lookupErr := db.Where("level = ? AND category = ? AND year = ?", level, category, year).
			First(&existing).Error; lookupErr == nil {
			return &existing, nil
		}
		return nil, err
	}
	return &seq, nil
}

// ClaimNext advances the counter by exactly one using a compare-and-swap on
// the observed value and returns the claimed sequence number. Returns
// gorm.ErrRecordNotFound-wrapped failure via ok=false when another
// transaction won the swap; callers re-read and retry.
func (s *NumberSequence) ClaimNext(db *gorm.DB) (int, bool, error) {
	claimed := s.CurrentSequence + 1
	res := db.Model(&NumberSequence{}).
		Where("id = ? AND current_sequence = ?", s.ID, s.CurrentSequence).
		Update("current_sequence", claimed)
	if res.Error != nil {
		return 0, false, res.Error
	}
	if res.RowsAffected == 0 {
		return 0, false, nil
	}
	s.CurrentSequence = claimed
	return claimed, true, nil
}

// Reload refreshes the row from the database.
func (s *NumberSequence) Reload(db *gorm.DB) error {
	return db.First(&s, s.ID).Error
}
