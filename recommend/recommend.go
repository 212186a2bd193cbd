package recommend

import (
	"cmp"
	"log/slog"

	"golang.org/x/exp/slices"

	"github.com/marcus-crane/curator/embedding"
	"github.com/marcus-crane/curator/models"
)

// Catalog is the slice of the store the recommender reads from
type Catalog interface {
	AllItems() ([]models.Item, error)
	AllRatings() ([]models.Rating, error)
}

type Recommendation struct {
	Item  models.Item
	Score float64
}

type Recommender struct {
	Catalog  Catalog
	Embedder embedding.Embedder
}

func NewRecommender(catalog Catalog, embedder embedding.Embedder) *Recommender {
	return &Recommender{
		Catalog:  catalog,
		Embedder: embedder,
	}
}

// Rank scores every item in the catalog against the preference vector built
// from the user's ratings, best first. Items with equal scores keep their
// catalog order.
func (r *Recommender) Rank() ([]Recommendation, error) {
	slog.Info("Computing recommendations")
	items, err := r.Catalog.AllItems()
	if err != nil {
		return nil, err
	}
	ratings, err := r.Catalog.AllRatings()
	if err != nil {
		return nil, err
	}

	embeddings := make(map[string][]float64, len(items))
	for _, item := range items {
		embeddings[item.ID] = r.Embedder.Embed(item.Text())
	}

	preference := r.preference(ratings, embeddings)

	ranked := make([]Recommendation, 0, len(items))
	for _, item := range items {
		ranked = append(ranked, Recommendation{
			Item:  item,
			Score: embedding.Dot(embeddings[item.ID], preference),
		})
	}
	slices.SortStableFunc(ranked, func(a, b Recommendation) int {
		return cmp.Compare(b.Score, a.Score)
	})
	return ranked, nil
}

// preference is the mean-rating weighted average of the rated items'
// embeddings, scaled to unit length. Ratings for items no longer in the
// catalog are ignored.
func (r *Recommender) preference(ratings []models.Rating, embeddings map[string][]float64) []float64 {
	sums := map[string]float64{}
	counts := map[string]int{}
	order := []string{}
	for _, rating := range ratings {
		if _, ok := counts[rating.ItemID]; !ok {
			order = append(order, rating.ItemID)
		}
		sums[rating.ItemID] += float64(rating.Score)
		counts[rating.ItemID]++
	}

	preference := make([]float64, r.Embedder.Dimension())
	var weightTotal float64
	for _, id := range order {
		vec, ok := embeddings[id]
		if !ok {
			continue
		}
		weight := sums[id] / float64(counts[id])
		for i := 0; i < len(vec) && i < len(preference); i++ {
			preference[i] += vec[i] * weight
		}
		weightTotal += weight
	}
	if weightTotal != 0 {
		for i := range preference {
			preference[i] /= weightTotal
		}
	}
	embedding.Normalize(preference)
	return preference
}

// Recommend returns at most n items, best first
func (r *Recommender) Recommend(n int) ([]models.Item, error) {
	if n <= 0 {
		return []models.Item{}, nil
	}
	ranked, err := r.Rank()
	if err != nil {
		return nil, err
	}
	if n > len(ranked) {
		n = len(ranked)
	}
	items := make([]models.Item, 0, n)
	for _, rec := range ranked[:n] {
		items = append(items, rec.Item)
	}
	slog.Info("Returning recommendations", slog.Int("count", len(items)))
	return items, nil
}
