package account

import (
	"context"
	"log/slog"
	"time"
)

// Janitor keeps the active session healthy in the background: one
// ticker refreshes the activity timestamp while the application is
// open, another expires the session once it has idled past the
// configured timeout.
type Janitor struct {
	store  *Store
	logger *slog.Logger
}

// NewJanitor creates a janitor for the given store.
func NewJanitor(store *Store, logger *slog.Logger) *Janitor {
	if logger == nil {
		logger = store.logger
	}
	return &Janitor{
		store:  store,
		logger: logger,
	}
}

// Run blocks until ctx is cancelled, driving both timers.
func (j *Janitor) Run(ctx context.Context) {
	refresh := time.NewTicker(j.store.cfg.ActivityInterval)
	defer refresh.Stop()
	expiry := time.NewTicker(j.store.cfg.ExpiryCheckInterval)
	defer expiry.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-refresh.C:
			if err := j.store.RefreshActivity(ctx); err != nil {
				j.logger.Warn("could not refresh session activity",
					slog.String("error", err.Error()))
			}
		case <-expiry.C:
			if _, err := j.store.ExpireIfIdle(ctx); err != nil {
				j.logger.Warn("could not expire idle session",
					slog.String("error", err.Error()))
			}
		}
	}
}
