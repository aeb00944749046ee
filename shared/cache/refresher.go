package cache

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// Refreshable is anything a Refresher can keep populated.
type Refreshable interface {
	Refresh(ctx context.Context) error
}

type target struct {
	name  string
	cache Refreshable
}

// Refresher keeps push-based caches populated. Each registered cache gets its
// own loop, so a slow upstream only delays its own cache.
type Refresher struct {
	interval     time.Duration
	failureDelay time.Duration
	targets      []target
}

// NewRefresher creates a Refresher that refreshes every interval and waits
// failureDelay after a failed refresh before trying again.
func NewRefresher(interval, failureDelay time.Duration) *Refresher {
	return &Refresher{
		interval:     interval,
		failureDelay: failureDelay,
	}
}

// Add registers a cache. It must be called before Run.
func (r *Refresher) Add(name string, c Refreshable) {
	r.targets = append(r.targets, target{name: name, cache: c})
}

// Len returns the number of registered caches.
func (r *Refresher) Len() int {
	return len(r.targets)
}

// Run blocks until ctx is cancelled.
func (r *Refresher) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, t := range r.targets {
		g.Go(func() error {
			r.loop(ctx, t)
			return nil
		})
	}
	return g.Wait()
}

func (r *Refresher) loop(ctx context.Context, t target) {
	for {
		delay := r.interval
		if err := t.cache.Refresh(ctx); err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Error().Err(err).Str("cache", t.name).Dur("retryIn", r.failureDelay).Msg("Failed to refresh cache")
			delay = r.failureDelay
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}
