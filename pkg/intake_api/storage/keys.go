package storage

import (
	"path"
	"strings"
	"time"
)

// DeduplicateFilename derives the storage key for an uploaded file by
// suffixing the base name with a second-resolution timestamp:
// "report.json" uploaded at 2024-01-01T00:00:00 becomes
// "report_20240101_000000.json". Two uploads of the same name within the
// same second still collide; the object store is last-write-wins.
func DeduplicateFilename(filename string, at time.Time) string {
	ext := path.Ext(filename)
	base := strings.TrimSuffix(filename, ext)
	return base + "_" + at.Format("20060102_150405") + ext
}

// ObjectKey prepends an optional logical folder to a deduplicated filename.
func ObjectKey(folder, filename string) string {
	if folder == "" {
		return filename
	}
	return folder + "/" + filename
}
