package models

import (
	"errors"
	"strings"
	"time"
)

var ErrNotFound = errors.New("not found")

// Item is a clip discovered in the archive catalog. The ID is the archive
// identifier, so fetching the same clip twice replaces the existing row.
type Item struct {
	ID          string    `db:"id" json:"id"`
	Title       string    `db:"title" json:"title"`
	Description string    `db:"description" json:"description"`
	Duration    int       `db:"duration" json:"duration"` // seconds
	URL         string    `db:"url" json:"url"`
	AddedAt     time.Time `db:"added_at" json:"added_at"`
}

// Text is what gets embedded when comparing items against each other
func (i Item) Text() string {
	return strings.TrimSpace(i.Title + " " + i.Description)
}
