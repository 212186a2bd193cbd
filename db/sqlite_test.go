package db_test

import (
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/go-cmp/cmp"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marcus-crane/curator/db"
	"github.com/marcus-crane/curator/db/dbtest"
	"github.com/marcus-crane/curator/models"
)

var day = time.Date(2026, 10, 19, 9, 30, 0, 0, time.UTC)

func TestSqliteStore_UpsertItemIsIdempotent(t *testing.T) {
	store := dbtest.NewStore(t, day)

	item := models.Item{
		ID:       "clip1",
		Title:    "a funny clip",
		Duration: 42,
		URL:      "https://archive.org/download/clip1/clip1.mp4",
	}
	require.NoError(t, store.UpsertItem(item))
	require.NoError(t, store.UpsertItem(item))

	items, err := store.AllItems()
	require.NoError(t, err)
	require.Len(t, items, 1)

	want := item
	want.AddedAt = day.Truncate(time.Second)
	if !cmp.Equal(want, items[0]) {
		t.Error(cmp.Diff(want, items[0]))
	}
}

func TestSqliteStore_UpsertItemReplacesFields(t *testing.T) {
	store := dbtest.NewStore(t, day)

	require.NoError(t, store.UpsertItem(models.Item{ID: "clip1", Title: "old", Description: "old words"}))
	require.NoError(t, store.UpsertItem(models.Item{ID: "clip1", Title: "new", Duration: 7}))

	got, err := store.GetItem("clip1")
	require.NoError(t, err)
	assert.Equal(t, "new", got.Title)
	assert.Equal(t, "", got.Description)
	assert.Equal(t, 7, got.Duration)
}

func TestSqliteStore_UpsertItemMovesToEnd(t *testing.T) {
	store := dbtest.NewStore(t, day)

	require.NoError(t, store.UpsertItem(models.Item{ID: "a", Title: "first"}))
	require.NoError(t, store.UpsertItem(models.Item{ID: "b", Title: "second"}))
	require.NoError(t, store.UpsertItem(models.Item{ID: "a", Title: "refetched"}))

	items, err := store.AllItems()
	require.NoError(t, err)
	ids := []string{}
	for _, item := range items {
		ids = append(ids, item.ID)
	}
	assert.Equal(t, []string{"b", "a"}, ids)
	assert.Equal(t, "refetched", items[1].Title)
}

func TestSqliteStore_GetItemNotFound(t *testing.T) {
	store := dbtest.NewStore(t, day)

	_, err := store.GetItem("nope")
	assert.ErrorIs(t, err, models.ErrNotFound)
	assert.Contains(t, err.Error(), "nope")
}

func TestSqliteStore_ListItems(t *testing.T) {
	store := dbtest.NewStore(t, day)

	yesterday := day.Add(-24 * time.Hour)
	require.NoError(t, store.UpsertItem(models.Item{ID: "old", Title: "old", AddedAt: yesterday}))
	require.NoError(t, store.UpsertItem(models.Item{ID: "a", Title: "a", AddedAt: day}))
	require.NoError(t, store.UpsertItem(models.Item{ID: "b", Title: "b", AddedAt: day.Add(time.Minute)}))

	items, err := store.ListItems(10)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a", "old"}, ids(items))

	items, err = store.ListItems(1)
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, ids(items))

	items, err = store.ListItemsAddedOn(day, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a"}, ids(items))

	items, err = store.AllItems()
	require.NoError(t, err)
	assert.Equal(t, []string{"old", "a", "b"}, ids(items))
}

func TestSqliteStore_RecordRating(t *testing.T) {
	store := dbtest.NewStore(t, day)
	require.NoError(t, store.UpsertItem(models.Item{ID: "clip1", Title: "clip"}))

	require.NoError(t, store.RecordRating(models.Rating{ItemID: "clip1", Score: 7}))
	require.NoError(t, store.RecordRating(models.Rating{ItemID: "clip1", Score: 3, RatedAt: day.Add(time.Hour)}))

	ratings, err := store.ListRatings("clip1")
	require.NoError(t, err)
	want := []models.Rating{
		{ItemID: "clip1", Score: 7, RatedAt: day},
		{ItemID: "clip1", Score: 3, RatedAt: day.Add(time.Hour)},
	}
	if !cmp.Equal(want, ratings) {
		t.Error(cmp.Diff(want, ratings))
	}
}

func TestSqliteStore_RecordRatingRejectsOutOfRange(t *testing.T) {
	store := dbtest.NewStore(t, day)
	require.NoError(t, store.UpsertItem(models.Item{ID: "clip1"}))

	for _, score := range []int{0, 11, -1} {
		err := store.RecordRating(models.Rating{ItemID: "clip1", Score: score})
		assert.ErrorIs(t, err, models.ErrInvalidRating)
	}

	ratings, err := store.AllRatings()
	require.NoError(t, err)
	assert.Empty(t, ratings)
}

func TestSqliteStore_BytesDownloadedOn(t *testing.T) {
	store := dbtest.NewStore(t, day)

	midnight := time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)
	require.NoError(t, store.RecordDownload(models.Download{ItemID: "a", SizeBytes: 100, DownloadedAt: midnight}))
	require.NoError(t, store.RecordDownload(models.Download{ItemID: "b", SizeBytes: 200, DownloadedAt: midnight.Add(-12 * time.Hour)}))
	require.NoError(t, store.RecordDownload(models.Download{ItemID: "c", SizeBytes: 300, DownloadedAt: midnight.Add(24*time.Hour - time.Second)}))

	total, err := store.BytesDownloadedOn(day)
	require.NoError(t, err)
	assert.Equal(t, int64(400), total)

	total, err = store.BytesDownloadedOn(day.Add(48 * time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(0), total)
}

func TestSqliteStore_RecordDownloadDefaultsToNow(t *testing.T) {
	store := dbtest.NewStore(t, day)

	require.NoError(t, store.RecordDownload(models.Download{ItemID: "a", SizeBytes: 64}))

	total, err := store.BytesDownloadedOn(day)
	require.NoError(t, err)
	assert.Equal(t, int64(64), total)
}

func TestSqliteStore_BytesDownloadedOnUsesUTCDay(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	store := db.NewStore(sqlx.NewDb(sqlDB, "sqlmock"))

	query := "SELECT COALESCE(SUM(size_bytes), 0) FROM downloads WHERE date(downloaded_at) = ?"
	mock.ExpectQuery(regexp.QuoteMeta(query)).
		WithArgs("2026-10-19").
		WillReturnRows(sqlmock.NewRows([]string{"total"}).AddRow(400))

	// the morning of the 20th in Auckland is still the 19th in UTC
	nz := time.FixedZone("NZDT", 13*60*60)
	total, err := store.BytesDownloadedOn(time.Date(2026, 10, 20, 8, 30, 0, 0, nz))
	require.NoError(t, err)
	assert.Equal(t, int64(400), total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func ids(items []models.Item) []string {
	out := []string{}
	for _, item := range items {
		out = append(out, item.ID)
	}
	return out
}
