// Package stats serves traffic and AS112 statistics queried from Prometheus.
package stats

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/api"
	v1 "github.com/prometheus/client_golang/api/prometheus/v1"

	"github.com/dfryer1193/foundation-api/shared/cache"
)

// ErrNotReady is returned in push mode before the first refresh finished.
var ErrNotReady = errors.New("stats: still building cache")

type (
	TrafficSeries = Series[[]Point]
	AS112Series   = Series[map[string][]Point]
)

// Service holds one cache per statistic and window.
type Service struct {
	traffic windowStore[*cache.Cache[*TrafficSeries]]
	as112   windowStore[*cache.Cache[*AS112Series]]
	push    bool
}

type Config struct {
	PrometheusURL string
	Client        *http.Client
	// Push makes reads return only what the background refresher stored.
	Push bool
	TTL  time.Duration
	Now  func() time.Time
}

func NewService(cfg Config) (*Service, error) {
	client, err := api.NewClient(api.Config{
		Address: cfg.PrometheusURL,
		Client:  cfg.Client,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create prometheus client: %w", err)
	}
	return newService(v1.NewAPI(client), cfg), nil
}

func newService(querier rangeQuerier, cfg Config) *Service {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	opts := func(name string, w Window) []cache.Option {
		o := []cache.Option{cache.WithName(name + "_" + string(w))}
		if cfg.TTL > 0 {
			o = append(o, cache.WithTTL(cfg.TTL))
		}
		return o
	}

	return &Service{
		traffic: newWindowStore(func(w Window) *cache.Cache[*TrafficSeries] {
			return cache.New[*TrafficSeries](NewTrafficUpdater(querier, w, now), opts("stats_traffic", w)...)
		}),
		as112: newWindowStore(func(w Window) *cache.Cache[*AS112Series] {
			return cache.New[*AS112Series](NewAS112Updater(querier, w, now), opts("stats_as112", w)...)
		}),
		push: cfg.Push,
	}
}

func (s *Service) Traffic(ctx context.Context, w Window) (*TrafficSeries, error) {
	c, ok := s.traffic.get(w)
	if !ok {
		return nil, fmt.Errorf("invalid time window %q", w)
	}
	return read(ctx, c, s.push)
}

func (s *Service) AS112(ctx context.Context, w Window) (*AS112Series, error) {
	c, ok := s.as112.get(w)
	if !ok {
		return nil, fmt.Errorf("invalid time window %q", w)
	}
	return read(ctx, c, s.push)
}

func read[T any](ctx context.Context, c *cache.Cache[T], push bool) (T, error) {
	if !push {
		return c.Get(ctx)
	}
	value, ok := c.Peek()
	if !ok {
		return value, ErrNotReady
	}
	return value, nil
}

// Register hands every cache to the background refresher.
func (s *Service) Register(r *cache.Refresher) {
	for _, w := range Windows {
		traffic, _ := s.traffic.get(w)
		as112, _ := s.as112.get(w)
		r.Add(traffic.Name(), traffic)
		r.Add(as112.Name(), as112)
	}
}
