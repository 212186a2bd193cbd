package models

import "time"

// Download is written once per fully completed transfer. Aborted transfers
// never produce a row.
type Download struct {
	ItemID       string    `db:"item_id" json:"item_id"`
	SizeBytes    int64     `db:"size_bytes" json:"size_bytes"`
	DownloadedAt time.Time `db:"downloaded_at" json:"downloaded_at"`
}
