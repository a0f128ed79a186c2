package storage

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
)

// Sweep deletes every file under the upload and output directories whose
// modification time is older than maxAge, and returns how many were removed.
// Age is the only eviction criterion. A file that cannot be deleted is logged
// and skipped; the sweep continues.
func (s *ArtifactStore) Sweep(maxAge time.Duration) int {
	cutoff := time.Now().Add(-maxAge)
	deleted := 0

	for _, dir := range []string{s.uploadDir, s.outputDir} {
		entries, err := os.ReadDir(dir)
		if err != nil {
			s.logger.Warn("Failed to read directory during sweep",
				zap.String("dir", dir),
				zap.Error(err))
			continue
		}

		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}

			info, err := entry.Info()
			if err != nil {
				continue
			}
			if info.ModTime().After(cutoff) {
				continue
			}

			path := filepath.Join(dir, entry.Name())
			if err := os.Remove(path); err != nil {
				s.logger.Warn("Failed to delete old file",
					zap.String("path", path),
					zap.Error(err))
				continue
			}

			deleted++
			s.logger.Info("Cleaned up old file", zap.String("path", path))
		}
	}

	return deleted
}

// StartJanitor sweeps once immediately, then on every tick of interval until
// ctx is cancelled. It runs independently of request traffic.
func (s *ArtifactStore) StartJanitor(ctx context.Context, interval, maxAge time.Duration) {
	go func() {
		s.Sweep(maxAge)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := s.Sweep(maxAge); n > 0 {
					s.logger.Info("Janitor sweep complete", zap.Int("deleted", n))
				}
			}
		}
	}()
}
