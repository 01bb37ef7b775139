package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// StagingWriter keeps a local, non-authoritative copy of every uploaded file
// for audit and debugging, independent of the durable object-store copy.
type StagingWriter struct {
	dir string
}

func NewStagingWriter(dir string) *StagingWriter {
	return &StagingWriter{dir: dir}
}

func (w *StagingWriter) Dir() string { return w.dir }

// Stage writes an exact byte copy of the upload under the staging directory
// and returns the local path. The copy is written to a temp file first and
// renamed into place, so a partially written file is never visible under the
// final name.
func (w *StagingWriter) Stage(name string, data []byte) (string, error) {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create staging dir: %w", err)
	}

	dst := filepath.Join(w.dir, name)
	tmp, err := os.CreateTemp(w.dir, ".staging-*")
	if err != nil {
		return "", err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", err
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		os.Remove(tmp.Name())
		return "", err
	}
	return dst, nil
}

// Sweep removes staging copies whose modification time is older than the
// retention window. Returns the number of files removed.
func (w *StagingWriter) Sweep(retention time.Duration) (int, error) {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}

	cutoff := time.Now().Add(-retention)
	removed := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			if err := os.Remove(filepath.Join(w.dir, entry.Name())); err == nil {
				removed++
			}
		}
	}
	return removed, nil
}
