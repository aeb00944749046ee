// Package cache provides a single-slot, time-bounded cache that wraps an
// expensive fetch operation and guarantees at most one fetch in flight.
package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

const (
	defaultTTL          = 10 * time.Minute
	defaultRetryBackoff = 10 * time.Second

	// every Cache holds exactly one value, so every flight shares one key
	flightKey = "update"
)

// ErrUnavailable is returned by Get while a failed update is backing off and
// there is no previous value to serve.
var ErrUnavailable = errors.New("cache: no value available")

// Updater fetches a fresh value. Implementations usually perform network I/O
// and must be safe to call again after a failure.
type Updater[T any] interface {
	Update(ctx context.Context) (T, error)
}

// UpdaterFunc adapts a plain function to the Updater interface.
type UpdaterFunc[T any] func(ctx context.Context) (T, error)

func (f UpdaterFunc[T]) Update(ctx context.Context) (T, error) {
	return f(ctx)
}

// UpdateError wraps an error returned by an Updater.
type UpdateError struct {
	Cache string
	Err   error
}

func (e *UpdateError) Error() string {
	return fmt.Sprintf("cache %s: update failed: %v", e.Cache, e.Err)
}

func (e *UpdateError) Unwrap() error {
	return e.Err
}

// entry is never modified after it has been installed.
type entry[T any] struct {
	value   T
	expires time.Time
}

type lookupResult int

const (
	miss lookupResult = iota
	hit
	unavailable
)

// Cache memoizes the output of an Updater for a fixed TTL.
//
// Values handed out by Get and Peek are shared between all callers and must be
// treated as read-only. A refresh always installs a new value.
type Cache[T any] struct {
	name         string
	updater      Updater[T]
	ttl          time.Duration
	retryBackoff time.Duration
	now          func() time.Time

	flight singleflight.Group

	mu       sync.RWMutex
	current  *entry[T]
	failedAt time.Time
}

type Option func(*options)

type options struct {
	name         string
	ttl          time.Duration
	retryBackoff time.Duration
	now          func() time.Time
}

// WithName sets the name used in errors, logs and metrics.
func WithName(name string) Option {
	return func(o *options) { o.name = name }
}

// WithTTL sets how long a successfully fetched value stays valid.
func WithTTL(ttl time.Duration) Option {
	return func(o *options) { o.ttl = ttl }
}

// WithRetryBackoff sets how long Get keeps serving the previous value after a
// failed update before it tries again.
func WithRetryBackoff(d time.Duration) Option {
	return func(o *options) { o.retryBackoff = d }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// New creates an empty cache around updater.
func New[T any](updater Updater[T], opts ...Option) *Cache[T] {
	o := options{
		name:         "unnamed",
		ttl:          defaultTTL,
		retryBackoff: defaultRetryBackoff,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}

	return &Cache[T]{
		name:         o.name,
		updater:      updater,
		ttl:          o.ttl,
		retryBackoff: o.retryBackoff,
		now:          o.now,
	}
}

// Name returns the name the cache was created with.
func (c *Cache[T]) Name() string {
	return c.name
}

// Get returns the cached value if it is still valid. Otherwise it runs the
// Updater, or waits for the update another caller already started, and
// returns its result.
//
// If the caller's context is done while waiting, Get returns the context error
// but the update keeps running and its value is installed for later callers.
func (c *Cache[T]) Get(ctx context.Context) (T, error) {
	var zero T

	value, res := c.lookup(c.now())
	switch res {
	case hit:
		return value, nil
	case unavailable:
		return zero, ErrUnavailable
	}

	return c.do(ctx, func() (T, error) {
		// a flight that finished between lookup and here may have
		// installed a value or started a backoff
		value, res := c.lookup(c.now())
		switch res {
		case hit:
			return value, nil
		case unavailable:
			return zero, ErrUnavailable
		}
		return c.update(context.WithoutCancel(ctx))
	})
}

// Refresh runs the Updater regardless of the current value's age. It is the
// trigger used by background refresh loops. If an update is already in
// flight, Refresh waits for it instead of starting another one. Unlike Get,
// cancelling ctx also cancels the update.
func (c *Cache[T]) Refresh(ctx context.Context) error {
	_, err := c.do(ctx, func() (T, error) {
		return c.update(ctx)
	})
	return err
}

// Peek returns whatever value is cached, expired or not, without fetching.
func (c *Cache[T]) Peek() (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.current == nil {
		var zero T
		return zero, false
	}
	return c.current.value, true
}

func (c *Cache[T]) lookup(now time.Time) (T, lookupResult) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var zero T
	if c.current != nil && now.Before(c.current.expires) {
		return c.current.value, hit
	}

	backingOff := !c.failedAt.IsZero() && now.Before(c.failedAt.Add(c.retryBackoff))
	if !backingOff {
		return zero, miss
	}
	if c.current != nil {
		return c.current.value, hit
	}
	return zero, unavailable
}

func (c *Cache[T]) do(ctx context.Context, fn func() (T, error)) (T, error) {
	var zero T

	ch := c.flight.DoChan(flightKey, func() (any, error) {
		return fn()
	})

	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		value, _ := res.Val.(T)
		return value, nil
	}
}

func (c *Cache[T]) update(ctx context.Context) (T, error) {
	var zero T

	value, err := c.updater.Update(ctx)
	now := c.now()
	if err != nil {
		c.mu.Lock()
		c.failedAt = now
		c.mu.Unlock()

		updatesTotal.WithLabelValues(c.name, resultError).Inc()
		return zero, &UpdateError{Cache: c.name, Err: err}
	}

	c.mu.Lock()
	c.current = &entry[T]{value: value, expires: now.Add(c.ttl)}
	c.failedAt = time.Time{}
	c.mu.Unlock()

	updatesTotal.WithLabelValues(c.name, resultSuccess).Inc()
	lastSuccess.WithLabelValues(c.name).Set(float64(now.Unix()))
	return value, nil
}
