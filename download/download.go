package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/marcus-crane/curator/archive"
	"github.com/marcus-crane/curator/db"
	"github.com/marcus-crane/curator/metrics"
	"github.com/marcus-crane/curator/models"
)

const ChunkSize = 8192

var (
	ErrCapReached = errors.New("daily download cap reached")
	// ErrCapReachedMidDownload matches ErrCapReached with errors.Is
	ErrCapReachedMidDownload = fmt.Errorf("%w while downloading", ErrCapReached)
)

type Downloader struct {
	Archive  *archive.Client
	Store    db.Store
	CapBytes int64
	Now      func() time.Time
}

func NewDownloader(client *archive.Client, store db.Store, capBytes int64) *Downloader {
	return &Downloader{
		Archive:  client,
		Store:    store,
		CapBytes: capBytes,
		Now:      time.Now,
	}
}

// LocalName is the file name a download is saved under: the last segment of
// the item URL's path, or the item id if the URL has none
func LocalName(item models.Item) string {
	u, err := url.Parse(item.URL)
	if err != nil {
		return item.ID
	}
	name := path.Base(u.Path)
	if name == "" || name == "." || name == ".." || name == "/" {
		return item.ID
	}
	return name
}

// DownloadItem streams the item's file into dir and records its size. The
// daily cap is checked before the request is made and again before each
// chunk is written. On any failure nothing is left behind in dir.
func (d *Downloader) DownloadItem(ctx context.Context, itemID string, dir string) (string, error) {
	item, err := d.Store.GetItem(itemID)
	if err != nil {
		return "", err
	}

	now := d.Now()
	downloaded, err := d.Store.BytesDownloadedOn(now)
	if err != nil {
		return "", err
	}
	if downloaded >= d.CapBytes {
		metrics.CapBreaches.WithLabelValues(metrics.StageBefore).Inc()
		slog.Warn("Daily cap reached before download",
			slog.String("id", itemID),
			slog.Int64("downloaded", downloaded),
			slog.Int64("cap", d.CapBytes),
		)
		return "", ErrCapReached
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create %s: %w", dir, err)
	}

	slog.Info("Downloading item", slog.String("id", itemID), slog.String("url", item.URL))
	body, err := d.Archive.Open(ctx, item.URL)
	if err != nil {
		return "", err
	}
	defer body.Close()

	name := LocalName(item)
	local := filepath.Join(dir, name)
	partial := filepath.Join(dir, fmt.Sprintf(".%s.%s.part", name, uuid.NewString()))

	f, err := os.Create(partial)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", partial, err)
	}
	done := false
	defer func() {
		if !done {
			f.Close()
			os.Remove(partial)
		}
	}()

	size, err := d.copyCapped(f, body, downloaded)
	if err != nil {
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", partial, err)
	}
	if err := os.Rename(partial, local); err != nil {
		return "", fmt.Errorf("failed to move download into place: %w", err)
	}
	done = true

	if err := d.Store.RecordDownload(models.Download{ItemID: itemID, SizeBytes: size, DownloadedAt: d.Now()}); err != nil {
		os.Remove(local)
		return "", err
	}

	metrics.Downloads.Inc()
	metrics.BytesDownloaded.Add(float64(size))
	slog.Info("Wrote download", slog.String("path", local), slog.Int64("bytes", size))
	return local, nil
}

func (d *Downloader) copyCapped(w io.Writer, r io.Reader, downloaded int64) (int64, error) {
	buf := make([]byte, ChunkSize)
	var size int64
	for {
		n, readErr := r.Read(buf)
		if n > 0 {
			if downloaded+size+int64(n) > d.CapBytes {
				metrics.CapBreaches.WithLabelValues(metrics.StageDuring).Inc()
				slog.Warn("Daily cap reached mid download",
					slog.Int64("downloaded", downloaded+size),
					slog.Int64("cap", d.CapBytes),
				)
				return size, ErrCapReachedMidDownload
			}
			if _, err := w.Write(buf[:n]); err != nil {
				return size, fmt.Errorf("failed to write chunk: %w", err)
			}
			size += int64(n)
		}
		if readErr == io.EOF {
			return size, nil
		}
		if readErr != nil {
			return size, fmt.Errorf("failed to read download: %w", readErr)
		}
	}
}
