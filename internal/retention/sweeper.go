// Package retention removes generated artifacts once they exceed a
// configured age. Sweeps are best-effort and run after requests, not on a
// schedule: no requests means no sweeps.
package retention

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/book-expert/logger"
)

// Sweeper deletes files in the artifact directory older than a threshold.
type Sweeper struct {
	dir string
	log *logger.Logger
}

// New creates a Sweeper over dir.
func New(dir string, log *logger.Logger) *Sweeper {
	return &Sweeper{
		dir: dir,
		log: log,
	}
}

// Sweep removes every regular file in the artifact directory whose
// modification time is older than now minus maxAge. Per-file removal errors
// are swallowed; only the directory listing itself can fail the sweep. The
// aggregate count of removed files is returned.
func (s *Sweeper) Sweep(maxAge time.Duration) (int, error) {
	entries, readErr := os.ReadDir(s.dir)
	if readErr != nil {
		return 0, fmt.Errorf("failed to read artifact directory %s: %w", s.dir, readErr)
	}

	cutoff := time.Now().Add(-maxAge)
	removed := 0

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		info, infoErr := entry.Info()
		if infoErr != nil {
			continue
		}

		if !info.ModTime().Before(cutoff) {
			continue
		}

		removeErr := os.Remove(filepath.Join(s.dir, entry.Name()))
		if removeErr != nil {
			continue
		}

		removed++
	}

	if removed > 0 {
		s.log.Info("Retention sweep removed %d artifact(s) older than %s", removed, maxAge)
	}

	return removed, nil
}
