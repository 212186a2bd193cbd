package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	StageBefore = "before"
	StageDuring = "during"
)

var (
	ItemsFetched = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "curator_items_fetched_total",
			Help: "Total number of candidate items stored from archive searches",
		},
	)

	BytesDownloaded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "curator_bytes_downloaded_total",
			Help: "Total number of bytes written by completed downloads",
		},
	)

	Downloads = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "curator_downloads_total",
			Help: "Total number of completed downloads",
		},
	)

	// CapBreaches is labelled by whether the cap stopped a download before
	// it began or partway through the stream
	CapBreaches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "curator_cap_breaches_total",
			Help: "Total number of downloads refused by the daily byte cap",
		},
		[]string{"stage"},
	)
)
