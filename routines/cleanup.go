package routines

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// ExpiredWindowStore is implemented by rate-limit stores that need manual cleanup.
type ExpiredWindowStore interface {
	DeleteExpired(now time.Time) (int, error)
}

// StartCleanupRoutine purges expired rate-limit windows every interval until
// ctx is cancelled.
func StartCleanupRoutine(ctx context.Context, store ExpiredWindowStore, interval time.Duration) {
	cleanupRoutine(store)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			cleanupRoutine(store)
		}
	}
}

func cleanupRoutine(store ExpiredWindowStore) {
	n, err := store.DeleteExpired(time.Now())
	if err != nil {
		log.Error().Err(err).Msg("Rate window cleanup failed")
		return
	}
	if n > 0 {
		log.Debug().Int("deleted", n).Msg("Deleted expired rate windows")
	}
}
