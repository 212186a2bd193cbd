package models

import (
	"fmt"
	"time"
)

const (
	MinScore = 1
	MaxScore = 10
)

var ErrInvalidRating = fmt.Errorf("rating must be between %d and %d", MinScore, MaxScore)

// Rating is a single score given to an item. Rating the same item again
// appends a new row rather than replacing the old one.
type Rating struct {
	ItemID  string    `db:"item_id" json:"item_id"`
	Score   int       `db:"rating" json:"rating"`
	RatedAt time.Time `db:"rated_at" json:"rated_at"`
}

func ValidateScore(score int) error {
	if score < MinScore || score > MaxScore {
		return fmt.Errorf("%w (got %d)", ErrInvalidRating, score)
	}
	return nil
}
