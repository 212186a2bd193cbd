package fetch

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/exp/rand"

	"github.com/marcus-crane/curator/archive"
	"github.com/marcus-crane/curator/config"
	"github.com/marcus-crane/curator/db"
	"github.com/marcus-crane/curator/metrics"
	"github.com/marcus-crane/curator/models"
)

var (
	searchFields = []string{"identifier", "title", "description", "duration"}
	// substrings of the archive's format field that browsers can play
	playableFormats = []string{"h.264", "h264", "mpeg4", "quicktime"}
)

type Fetcher struct {
	Archive *archive.Client
	Store   db.Store
	Config  config.Config
	// Seed picks the random sort key for each search
	Seed func() int
}

func NewFetcher(client *archive.Client, store db.Store, cfg config.Config) *Fetcher {
	return &Fetcher{
		Archive: client,
		Store:   store,
		Config:  cfg,
		Seed:    randomSeed(uint64(time.Now().UnixNano())),
	}
}

// randomSeed draws sort keys from its own source. The package level source
// starts from the same state on every run.
func randomSeed(seed uint64) func() int {
	r := rand.New(rand.NewSource(seed))
	return func() int { return r.Intn(100000) }
}

// BuildQuery ORs the keywords together and bounds the clip duration
func BuildQuery(keywords []string, minSeconds, maxSeconds int) string {
	return fmt.Sprintf("(%s) AND duration:[%d TO %d]", strings.Join(keywords, " OR "), minSeconds, maxSeconds)
}

// BestFile picks the largest playable file. Ties go to whichever file was
// listed first.
func BestFile(files []archive.File) (archive.File, bool) {
	var best archive.File
	found := false
	for _, file := range files {
		if file.Name == "" || !isPlayable(file.Format) {
			continue
		}
		if !found || file.Size > best.Size {
			best = file
			found = true
		}
	}
	return best, found
}

func isPlayable(format string) bool {
	format = strings.ToLower(format)
	for _, playable := range playableFormats {
		if strings.Contains(format, playable) {
			return true
		}
	}
	return false
}

// FetchCandidates searches the archive once and persists every result that
// has a playable file. It returns the ids stored by this call in the order
// the search returned them.
func (f *Fetcher) FetchCandidates(ctx context.Context) ([]string, error) {
	query := BuildQuery(f.Config.SeedKeywords, f.Config.MinSeconds, f.Config.MaxSeconds)
	slog.Info("Searching archive", slog.String("query", query))

	docs, err := f.Archive.Search(ctx, archive.SearchParams{
		Query:  query,
		Fields: searchFields,
		Rows:   f.Config.DailyCandidates,
		Sort:   fmt.Sprintf("random_%d", f.Seed()),
	})
	if err != nil {
		return nil, err
	}
	slog.Debug("Received search results", slog.Int("docs", len(docs)))

	inserted := []string{}
	for _, doc := range docs {
		if doc.Identifier == "" {
			continue
		}
		metadata, err := f.Archive.Metadata(ctx, doc.Identifier)
		if err != nil {
			slog.Warn("Skipping item without metadata",
				slog.String("id", doc.Identifier),
				slog.String("stack", err.Error()),
			)
			continue
		}
		best, ok := BestFile(metadata.Files)
		if !ok {
			slog.Debug("Skipping item without a playable file", slog.String("id", doc.Identifier))
			continue
		}
		item := models.Item{
			ID:          doc.Identifier,
			Title:       doc.Title.String(),
			Description: doc.Description.String(),
			Duration:    doc.Duration.Int(),
			URL:         f.Archive.DownloadURL(doc.Identifier, best.Name),
		}
		if err := f.Store.UpsertItem(item); err != nil {
			return inserted, err
		}
		metrics.ItemsFetched.Inc()
		slog.Debug("Stored candidate", slog.String("id", item.ID), slog.String("url", item.URL))
		inserted = append(inserted, item.ID)
	}
	slog.Info("Stored candidates", slog.Int("count", len(inserted)))
	return inserted, nil
}
