package db

import (
	"embed"
	"time"

	"github.com/marcus-crane/curator/models"
)

// Store is everything the fetcher, downloader, recommender and the front
// ends need from persistence. Each call commits on its own.
type Store interface {
	ApplyMigrations(migrations embed.FS) error
	Close() error

	UpsertItem(item models.Item) error
	GetItem(id string) (models.Item, error)
	ListItems(limit int) ([]models.Item, error)
	ListItemsAddedOn(day time.Time, limit int) ([]models.Item, error)
	AllItems() ([]models.Item, error)

	RecordRating(rating models.Rating) error
	ListRatings(itemID string) ([]models.Rating, error)
	AllRatings() ([]models.Rating, error)

	RecordDownload(download models.Download) error
	BytesDownloadedOn(day time.Time) (int64, error)
}

// timeLayout matches what SQLite itself writes for CURRENT_TIMESTAMP so that
// date() comparisons behave the same regardless of which driver wrote the row
const (
	timeLayout = "2006-01-02 15:04:05"
	dayLayout  = "2006-01-02"
)

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func formatDay(t time.Time) string {
	return t.UTC().Format(dayLayout)
}
