package recommend

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marcus-crane/curator/db/dbtest"
	"github.com/marcus-crane/curator/embedding"
	"github.com/marcus-crane/curator/models"
)

type fakeEmbedder map[string][]float64

func (f fakeEmbedder) Embed(text string) []float64 {
	vec, ok := f[text]
	if !ok {
		return []float64{0, 0}
	}
	return append([]float64{}, vec...)
}

func (f fakeEmbedder) Dimension() int {
	return 2
}

type fakeCatalog struct {
	items   []models.Item
	ratings []models.Rating
	err     error
}

func (f fakeCatalog) AllItems() ([]models.Item, error) {
	return f.items, f.err
}

func (f fakeCatalog) AllRatings() ([]models.Rating, error) {
	return f.ratings, nil
}

var exampleEmbedder = fakeEmbedder{
	"one":   {1, 0},
	"two":   {0, 1},
	"three": {0.2, 0.8},
}

func exampleCatalog() fakeCatalog {
	return fakeCatalog{
		items: []models.Item{
			{ID: "id1", Title: "one"},
			{ID: "id2", Title: "two"},
			{ID: "id3", Title: "three"},
		},
		ratings: []models.Rating{
			{ItemID: "id1", Score: 8},
			{ItemID: "id2", Score: 4},
		},
	}
}

func ids(items []models.Item) []string {
	out := []string{}
	for _, item := range items {
		out = append(out, item.ID)
	}
	return out
}

func TestRecommend_RanksByPreference(t *testing.T) {
	r := NewRecommender(exampleCatalog(), exampleEmbedder)

	items, err := r.Recommend(3)
	require.NoError(t, err)
	assert.Equal(t, []string{"id1", "id3", "id2"}, ids(items))
}

func TestRank_Scores(t *testing.T) {
	r := NewRecommender(exampleCatalog(), exampleEmbedder)

	ranked, err := r.Rank()
	require.NoError(t, err)
	require.Len(t, ranked, 3)
	// preference is (8*[1,0] + 4*[0,1]) / 12, normalised to [2,1]/sqrt(5)
	assert.InDelta(t, 0.894427, ranked[0].Score, 1e-6)
	assert.InDelta(t, 0.536656, ranked[1].Score, 1e-6)
	assert.InDelta(t, 0.447214, ranked[2].Score, 1e-6)
}

func TestRecommend_AveragesRepeatRatings(t *testing.T) {
	catalog := exampleCatalog()
	// id2 now averages 10, which pulls the preference towards [0,1]
	catalog.ratings = append(catalog.ratings,
		models.Rating{ItemID: "id2", Score: 10},
		models.Rating{ItemID: "id2", Score: 10},
		models.Rating{ItemID: "id2", Score: 10},
	)
	catalog.ratings[1].Score = 10
	r := NewRecommender(catalog, exampleEmbedder)

	items, err := r.Recommend(3)
	require.NoError(t, err)
	assert.Equal(t, []string{"id2", "id3", "id1"}, ids(items))
}

func TestRecommend_Bounds(t *testing.T) {
	r := NewRecommender(exampleCatalog(), exampleEmbedder)

	items, err := r.Recommend(0)
	require.NoError(t, err)
	assert.Empty(t, items)

	items, err = r.Recommend(-3)
	require.NoError(t, err)
	assert.Empty(t, items)

	items, err = r.Recommend(1)
	require.NoError(t, err)
	assert.Equal(t, []string{"id1"}, ids(items))

	items, err = r.Recommend(50)
	require.NoError(t, err)
	assert.Len(t, items, 3)
}

func TestRecommend_NoRatingsKeepsCatalogOrder(t *testing.T) {
	catalog := exampleCatalog()
	catalog.ratings = nil
	r := NewRecommender(catalog, exampleEmbedder)

	items, err := r.Recommend(3)
	require.NoError(t, err)
	assert.Equal(t, []string{"id1", "id2", "id3"}, ids(items))
}

func TestRecommend_IgnoresRatingsForUnknownItems(t *testing.T) {
	catalog := exampleCatalog()
	catalog.ratings = append(catalog.ratings, models.Rating{ItemID: "deleted", Score: 10})
	r := NewRecommender(catalog, exampleEmbedder)

	items, err := r.Recommend(3)
	require.NoError(t, err)
	assert.Equal(t, []string{"id1", "id3", "id2"}, ids(items))
}

func TestRecommend_CatalogError(t *testing.T) {
	r := NewRecommender(fakeCatalog{err: errors.New("boom")}, exampleEmbedder)

	_, err := r.Recommend(3)
	assert.Error(t, err)
}

func TestRecommend_WithStore(t *testing.T) {
	store := dbtest.NewStore(t, time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC))
	require.NoError(t, store.UpsertItem(models.Item{ID: "cat", Title: "funny cat", Description: "cat falls off sofa"}))
	require.NoError(t, store.UpsertItem(models.Item{ID: "tax", Title: "lecture", Description: "medieval tax law"}))
	require.NoError(t, store.UpsertItem(models.Item{ID: "kitten", Title: "funny kitten", Description: "cat chases laser"}))
	require.NoError(t, store.RecordRating(models.Rating{ItemID: "cat", Score: 10}))

	r := NewRecommender(store, embedding.NewHashingEmbedder())
	items, err := r.Recommend(3)
	require.NoError(t, err)
	assert.Equal(t, []string{"cat", "kitten", "tax"}, ids(items))
}
