package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/marcus-crane/curator/download"
	"github.com/marcus-crane/curator/notify"
)

type Fetcher interface {
	FetchCandidates(ctx context.Context) ([]string, error)
}

type Downloader interface {
	DownloadItem(ctx context.Context, itemID string, dir string) (string, error)
}

type Pipeline struct {
	Fetcher    Fetcher
	Downloader Downloader
	// Notifier is optional
	Notifier notify.Notifier
}

type Result struct {
	ItemID string
	Path   string
	Err    error
}

type Summary struct {
	Fetched []string
	Results []Result
}

func (s Summary) Downloaded() int {
	count := 0
	for _, result := range s.Results {
		if result.Err == nil {
			count++
		}
	}
	return count
}

func (s Summary) Failed() int {
	return len(s.Results) - s.Downloaded()
}

// CapReached reports whether any download was refused by the daily cap
func (s Summary) CapReached() bool {
	for _, result := range s.Results {
		if errors.Is(result.Err, download.ErrCapReached) {
			return true
		}
	}
	return false
}

func (s Summary) Message() string {
	msg := fmt.Sprintf("Fetched %d, downloaded %d, failed %d", len(s.Fetched), s.Downloaded(), s.Failed())
	if s.CapReached() {
		msg += ", daily cap reached"
	}
	return msg
}

// Run fetches today's candidates and then tries to download each of them in
// turn. A failed download is recorded in the summary and the batch moves on.
// Only a failed search stops the run.
func Run(ctx context.Context, p Pipeline, dir string) (Summary, error) {
	summary := Summary{}

	ids, err := p.Fetcher.FetchCandidates(ctx)
	summary.Fetched = ids
	if err != nil {
		return summary, err
	}

	for _, id := range ids {
		path, err := p.Downloader.DownloadItem(ctx, id, dir)
		if err != nil {
			slog.Error("Failed to download item",
				slog.String("id", id),
				slog.String("stack", err.Error()),
			)
		}
		summary.Results = append(summary.Results, Result{ItemID: id, Path: path, Err: err})
	}

	if p.Notifier != nil {
		if err := p.Notifier.Notify("curator", summary.Message()); err != nil {
			slog.Error("Failed to send run summary", slog.String("stack", err.Error()))
		}
	}

	return summary, nil
}
