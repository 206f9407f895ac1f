package jobs

import (
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
)

// StartCleanupJob sweeps the generated dir every hour, removing artifacts
// older than the retention window. Hit rows are never touched; only the
// files go. A retention of zero disables the sweep.
func StartCleanupJob(dir string, retentionDays int, log *zap.Logger) {
	if retentionDays <= 0 {
		return
	}

	ticker := time.NewTicker(1 * time.Hour)
	go func() {
		for range ticker.C {
			sweep(dir, retentionDays, log)
		}
	}()
}

func sweep(dir string, retentionDays int, log *zap.Logger) {
	cutoff := time.Now().AddDate(0, 0, -retentionDays)

	entries, err := os.ReadDir(dir)
	if err != nil {
		log.Warn("cleanup sweep failed to read output dir", zap.String("dir", dir), zap.Error(err))
		return
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			if err := os.Remove(filepath.Join(dir, entry.Name())); err != nil {
				log.Warn("failed to remove expired artifact", zap.String("name", entry.Name()), zap.Error(err))
				continue
			}
			log.Info("removed expired artifact", zap.String("name", entry.Name()))
		}
	}
}
