package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// countingUpdater returns the configured values in order and records how many
// updates ran and how many ran at the same time.
type countingUpdater struct {
	mu      sync.Mutex
	results []result
	delay   time.Duration
	release chan struct{}

	calls       atomic.Int32
	inFlight    atomic.Int32
	maxInFlight atomic.Int32
}

type result struct {
	value string
	err   error
}

func (u *countingUpdater) Update(ctx context.Context) (string, error) {
	n := u.inFlight.Add(1)
	defer u.inFlight.Add(-1)
	for {
		seen := u.maxInFlight.Load()
		if n <= seen || u.maxInFlight.CompareAndSwap(seen, n) {
			break
		}
	}

	call := int(u.calls.Add(1)) - 1
	if u.delay > 0 {
		time.Sleep(u.delay)
	}
	if u.release != nil {
		<-u.release
	}

	u.mu.Lock()
	defer u.mu.Unlock()
	if call >= len(u.results) {
		return u.results[len(u.results)-1].value, u.results[len(u.results)-1].err
	}
	return u.results[call].value, u.results[call].err
}

func TestCache_Get_SingleFlight(t *testing.T) {
	updater := &countingUpdater{
		results: []result{{value: "fresh"}},
		delay:   50 * time.Millisecond,
	}
	c := New[string](updater, WithName("test"))

	const callers = 50
	start := make(chan struct{})
	var wg sync.WaitGroup
	errs := make(chan error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			v, err := c.Get(context.Background())
			if err != nil {
				errs <- err
				return
			}
			if v != "fresh" {
				errs <- errors.New("unexpected value " + v)
			}
		}()
	}
	close(start)
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("Get() error = %v", err)
	}
	if got := updater.calls.Load(); got != 1 {
		t.Errorf("Update called %d times, want 1", got)
	}
	if got := updater.maxInFlight.Load(); got != 1 {
		t.Errorf("max concurrent updates = %d, want 1", got)
	}
}

func TestCache_Get_RefreshesAfterTTL(t *testing.T) {
	clock := newFakeClock()
	updater := &countingUpdater{results: []result{{value: "one"}, {value: "two"}}}
	c := New[string](updater, WithTTL(time.Minute), WithClock(clock.Now))

	tests := []struct {
		name      string
		advance   time.Duration
		wantValue string
		wantCalls int32
	}{
		{name: "first get fetches", advance: 0, wantValue: "one", wantCalls: 1},
		{name: "valid value is served", advance: 30 * time.Second, wantValue: "one", wantCalls: 1},
		{name: "expired value triggers one update", advance: 31 * time.Second, wantValue: "two", wantCalls: 2},
		{name: "new value is served", advance: time.Second, wantValue: "two", wantCalls: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clock.Advance(tt.advance)
			v, err := c.Get(context.Background())
			if err != nil {
				t.Fatalf("Get() error = %v", err)
			}
			if v != tt.wantValue {
				t.Errorf("Get() = %q, want %q", v, tt.wantValue)
			}
			if got := updater.calls.Load(); got != tt.wantCalls {
				t.Errorf("Update called %d times, want %d", got, tt.wantCalls)
			}
		})
	}
}

func TestCache_Get_KeepsPreviousValueOnFailure(t *testing.T) {
	clock := newFakeClock()
	boom := errors.New("upstream down")
	updater := &countingUpdater{results: []result{
		{value: "good"},
		{err: boom},
		{value: "better"},
	}}
	c := New[string](updater,
		WithName("stats"),
		WithTTL(time.Minute),
		WithRetryBackoff(10*time.Second),
		WithClock(clock.Now),
	)

	if _, err := c.Get(context.Background()); err != nil {
		t.Fatalf("Get() error = %v", err)
	}

	clock.Advance(2 * time.Minute)
	_, err := c.Get(context.Background())
	if !errors.Is(err, boom) {
		t.Fatalf("Get() error = %v, want %v", err, boom)
	}
	var updateErr *UpdateError
	if !errors.As(err, &updateErr) || updateErr.Cache != "stats" {
		t.Errorf("Get() error = %#v, want *UpdateError for cache stats", err)
	}

	clock.Advance(5 * time.Second)
	v, err := c.Get(context.Background())
	if err != nil {
		t.Fatalf("Get() during backoff error = %v", err)
	}
	if v != "good" {
		t.Errorf("Get() during backoff = %q, want previous value %q", v, "good")
	}
	if got := updater.calls.Load(); got != 2 {
		t.Errorf("Update called %d times during backoff, want 2", got)
	}

	if peeked, ok := c.Peek(); !ok || peeked != "good" {
		t.Errorf("Peek() = %q, %v, want %q, true", peeked, ok, "good")
	}

	clock.Advance(6 * time.Second)
	v, err = c.Get(context.Background())
	if err != nil {
		t.Fatalf("Get() after backoff error = %v", err)
	}
	if v != "better" {
		t.Errorf("Get() after backoff = %q, want %q", v, "better")
	}
	if got := updater.calls.Load(); got != 3 {
		t.Errorf("Update called %d times, want 3", got)
	}
}

func TestCache_Get_UnavailableWithoutPreviousValue(t *testing.T) {
	clock := newFakeClock()
	boom := errors.New("upstream down")
	updater := &countingUpdater{results: []result{{err: boom}}}
	c := New[string](updater, WithRetryBackoff(10*time.Second), WithClock(clock.Now))

	if _, err := c.Get(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("Get() error = %v, want %v", err, boom)
	}
	if _, err := c.Get(context.Background()); !errors.Is(err, ErrUnavailable) {
		t.Errorf("Get() during backoff error = %v, want %v", err, ErrUnavailable)
	}
	if got := updater.calls.Load(); got != 1 {
		t.Errorf("Update called %d times, want 1", got)
	}
}

func TestCache_Get_CallerCancellationDoesNotStopUpdate(t *testing.T) {
	updater := &countingUpdater{
		results: []result{{value: "late"}},
		release: make(chan struct{}),
	}
	c := New[string](updater)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := c.Get(ctx)
		done <- err
	}()

	for updater.calls.Load() == 0 {
		time.Sleep(time.Millisecond)
	}
	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Fatalf("Get() error = %v, want %v", err, context.Canceled)
	}

	close(updater.release)
	deadline := time.Now().Add(time.Second)
	for {
		if _, ok := c.Peek(); ok {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("update was not installed after the caller gave up")
		}
		time.Sleep(time.Millisecond)
	}

	v, err := c.Get(context.Background())
	if err != nil || v != "late" {
		t.Errorf("Get() = %q, %v, want %q, nil", v, err, "late")
	}
	if got := updater.calls.Load(); got != 1 {
		t.Errorf("Update called %d times, want 1", got)
	}
}

func TestCache_Refresh_CancellationStopsUpdate(t *testing.T) {
	started := make(chan struct{})
	stopped := make(chan error, 1)
	c := New[string](UpdaterFunc[string](func(ctx context.Context) (string, error) {
		close(started)
		<-ctx.Done()
		stopped <- ctx.Err()
		return "", ctx.Err()
	}))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- c.Refresh(ctx)
	}()

	<-started
	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Fatalf("Refresh() error = %v, want %v", err, context.Canceled)
	}

	select {
	case err := <-stopped:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Update saw %v, want %v", err, context.Canceled)
		}
	case <-time.After(time.Second):
		t.Fatal("Update kept running after Refresh was cancelled")
	}

	if _, ok := c.Peek(); ok {
		t.Error("Peek() found a value after a cancelled refresh")
	}
}

func TestCache_RefreshAndPeek(t *testing.T) {
	boom := errors.New("upstream down")
	updater := &countingUpdater{results: []result{{value: "first"}, {err: boom}, {value: "second"}}}
	c := New[string](updater)

	if _, ok := c.Peek(); ok {
		t.Fatal("Peek() on empty cache reported a value")
	}
	if updater.calls.Load() != 0 {
		t.Fatal("Peek() triggered an update")
	}

	steps := []struct {
		name    string
		wantErr error
		want    string
	}{
		{name: "refresh populates", want: "first"},
		{name: "failed refresh keeps value", wantErr: boom, want: "first"},
		{name: "refresh replaces value", want: "second"},
	}
	for _, step := range steps {
		t.Run(step.name, func(t *testing.T) {
			err := c.Refresh(context.Background())
			if !errors.Is(err, step.wantErr) {
				t.Fatalf("Refresh() error = %v, want %v", err, step.wantErr)
			}
			v, ok := c.Peek()
			if !ok || v != step.want {
				t.Errorf("Peek() = %q, %v, want %q, true", v, ok, step.want)
			}
		})
	}
}

func TestCache_Refresh_IgnoresValidValue(t *testing.T) {
	updater := &countingUpdater{results: []result{{value: "a"}, {value: "b"}}}
	c := New[string](updater, WithTTL(time.Hour))

	if _, err := c.Get(context.Background()); err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if err := c.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	v, err := c.Get(context.Background())
	if err != nil || v != "b" {
		t.Errorf("Get() = %q, %v, want %q, nil", v, err, "b")
	}
}
