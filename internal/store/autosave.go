package store

import (
	"context"
	"time"

	"github.com/evanschultz/kanwow/internal/domain"
)

// DefaultAutosaveInterval is how often RunAutosave persists the current board.
const DefaultAutosaveInterval = 5 * time.Second

// RunAutosave persists snapshot() every interval until ctx ends. Unchanged boards are skipped.
func (s *Store) RunAutosave(ctx context.Context, interval time.Duration, snapshot func() domain.Board) {
	if snapshot == nil {
		return
	}
	if interval <= 0 {
		interval = DefaultAutosaveInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if s.Persist(ctx, snapshot()) {
				s.logger.Debug("autosaved board", "key", s.key)
			}
		}
	}
}
