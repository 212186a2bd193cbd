package db

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pressly/goose/v3"

	"github.com/marcus-crane/curator/models"

	_ "modernc.org/sqlite"
)

const (
	itemColumns = "id, COALESCE(title, '') AS title, COALESCE(description, '') AS description, COALESCE(duration, 0) AS duration, COALESCE(url, '') AS url, added_at"

	// REPLACE deletes the old row so a refetched item moves to the end of
	// insertion order
	upsertItemQuery = `
	INSERT OR REPLACE INTO items (id, title, description, duration, url, added_at)
	VALUES (?, ?, ?, ?, ?, ?)
	`
	getItemQuery          = "SELECT " + itemColumns + " FROM items WHERE id = ?"
	listItemsQuery        = "SELECT " + itemColumns + " FROM items ORDER BY added_at DESC, rowid DESC LIMIT ?"
	listItemsAddedOnQuery = "SELECT " + itemColumns + " FROM items WHERE date(added_at) = ? ORDER BY added_at DESC, rowid DESC LIMIT ?"
	allItemsQuery         = "SELECT " + itemColumns + " FROM items ORDER BY rowid"

	insertRatingQuery = "INSERT INTO ratings (item_id, rating, rated_at) VALUES (?, ?, ?)"
	listRatingsQuery  = "SELECT item_id, rating, rated_at FROM ratings WHERE item_id = ? ORDER BY rated_at, rowid"
	allRatingsQuery   = "SELECT item_id, rating, rated_at FROM ratings ORDER BY rowid"

	insertDownloadQuery    = "INSERT INTO downloads (item_id, size_bytes, downloaded_at) VALUES (?, ?, ?)"
	bytesDownloadedOnQuery = "SELECT COALESCE(SUM(size_bytes), 0) FROM downloads WHERE date(downloaded_at) = ?"
)

type SqliteStore struct {
	DB *sqlx.DB
	// Now stamps rows that arrive without a timestamp of their own
	Now func() time.Time
	wal bool
}

// NewSqliteStore opens the database at path in WAL mode so readers are not
// blocked by the single writer.
func NewSqliteStore(path string) (*SqliteStore, error) {
	db, err := sqlx.Connect("sqlite", sqliteDSN(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", path, err)
	}
	store := NewStore(db)
	store.wal = path != ":memory:"
	return store, nil
}

// NewStore wraps an existing connection, which is handy for tests that bring
// their own driver
func NewStore(db *sqlx.DB) *SqliteStore {
	return &SqliteStore{
		DB:  db,
		Now: time.Now,
	}
}

func sqliteDSN(path string) string {
	if path == ":memory:" || strings.HasPrefix(path, "file:") {
		return path
	}
	return fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
}

func (s *SqliteStore) ApplyMigrations(migrations embed.FS) error {
	if s.wal {
		var mode string
		if err := s.DB.Get(&mode, "PRAGMA journal_mode"); err != nil {
			return fmt.Errorf("failed to read journal mode: %w", err)
		}
		if !strings.EqualFold(mode, "wal") {
			return fmt.Errorf("WAL mode could not be enabled (journal_mode=%s)", mode)
		}
	}

	goose.SetBaseFS(migrations)

	if err := goose.SetDialect(string(goose.DialectSQLite3)); err != nil {
		return err
	}

	if err := goose.Up(s.DB.DB, "."); err != nil {
		return err
	}

	return nil
}

func (s *SqliteStore) Close() error {
	return s.DB.Close()
}

func (s *SqliteStore) stamp(t time.Time) string {
	if t.IsZero() {
		t = s.Now()
	}
	return formatTime(t)
}

func (s *SqliteStore) UpsertItem(item models.Item) error {
	_, err := s.DB.Exec(
		upsertItemQuery,
		item.ID,
		item.Title,
		item.Description,
		item.Duration,
		item.URL,
		s.stamp(item.AddedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert item %s: %w", item.ID, err)
	}
	return nil
}

func (s *SqliteStore) GetItem(id string) (models.Item, error) {
	item := models.Item{}
	err := s.DB.Get(&item, getItemQuery, id)
	if errors.Is(err, sql.ErrNoRows) {
		return item, fmt.Errorf("item %s: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return item, fmt.Errorf("failed to get item %s: %w", id, err)
	}
	return item, nil
}

func (s *SqliteStore) ListItems(limit int) ([]models.Item, error) {
	items := []models.Item{}
	if err := s.DB.Select(&items, listItemsQuery, limit); err != nil {
		return items, fmt.Errorf("failed to list items: %w", err)
	}
	return items, nil
}

func (s *SqliteStore) ListItemsAddedOn(day time.Time, limit int) ([]models.Item, error) {
	items := []models.Item{}
	if err := s.DB.Select(&items, listItemsAddedOnQuery, formatDay(day), limit); err != nil {
		return items, fmt.Errorf("failed to list items for %s: %w", formatDay(day), err)
	}
	return items, nil
}

// AllItems returns the whole catalog in insertion order
func (s *SqliteStore) AllItems() ([]models.Item, error) {
	items := []models.Item{}
	if err := s.DB.Select(&items, allItemsQuery); err != nil {
		return items, fmt.Errorf("failed to load items: %w", err)
	}
	return items, nil
}

func (s *SqliteStore) RecordRating(rating models.Rating) error {
	if err := models.ValidateScore(rating.Score); err != nil {
		return err
	}
	_, err := s.DB.Exec(insertRatingQuery, rating.ItemID, rating.Score, s.stamp(rating.RatedAt))
	if err != nil {
		return fmt.Errorf("failed to record rating for %s: %w", rating.ItemID, err)
	}
	return nil
}

func (s *SqliteStore) ListRatings(itemID string) ([]models.Rating, error) {
	ratings := []models.Rating{}
	if err := s.DB.Select(&ratings, listRatingsQuery, itemID); err != nil {
		return ratings, fmt.Errorf("failed to list ratings for %s: %w", itemID, err)
	}
	return ratings, nil
}

func (s *SqliteStore) AllRatings() ([]models.Rating, error) {
	ratings := []models.Rating{}
	if err := s.DB.Select(&ratings, allRatingsQuery); err != nil {
		return ratings, fmt.Errorf("failed to load ratings: %w", err)
	}
	return ratings, nil
}

func (s *SqliteStore) RecordDownload(download models.Download) error {
	_, err := s.DB.Exec(insertDownloadQuery, download.ItemID, download.SizeBytes, s.stamp(download.DownloadedAt))
	if err != nil {
		return fmt.Errorf("failed to record download for %s: %w", download.ItemID, err)
	}
	return nil
}

// BytesDownloadedOn sums completed downloads whose timestamp falls on the
// same UTC calendar day as day
func (s *SqliteStore) BytesDownloadedOn(day time.Time) (int64, error) {
	var total int64
	if err := s.DB.Get(&total, bytesDownloadedOnQuery, formatDay(day)); err != nil {
		return 0, fmt.Errorf("failed to sum downloads for %s: %w", formatDay(day), err)
	}
	return total, nil
}
