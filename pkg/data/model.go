package data

import "time"

// Download is one completed transfer recorded in the history database.
type Download struct {
	ID           int64
	URL          string
	Folder       string
	Filename     string
	Path         string
	Size         int64
	DownloadedAt time.Time
}
