package stats

import (
	"context"
	"errors"
	"fmt"
	"time"

	v1 "github.com/prometheus/client_golang/api/prometheus/v1"
	"github.com/prometheus/common/model"
	"github.com/rs/zerolog/log"
)

const (
	trafficQuery = "sum(rate(sflow_router_bytes[5m]))*8"
	as112Query   = "sum by (type) (rate(knot_query_type_total[5m])) >= 0.01"

	// points per series
	resolution = 255
)

var errEmptyResult = errors.New("prometheus returned no series")

// Point is a (unix seconds, value) pair. It encodes as a two element array.
type Point [2]float64

// Series is a statistic over [Start, End].
type Series[T any] struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	Data  T         `json:"data"`
}

// rangeQuerier is the part of the Prometheus v1 API the updaters use.
type rangeQuerier interface {
	QueryRange(ctx context.Context, query string, r v1.Range, opts ...v1.Option) (model.Value, v1.Warnings, error)
}

type rangeQuery struct {
	api    rangeQuerier
	query  string
	window Window
	now    func() time.Time
}

func (q *rangeQuery) run(ctx context.Context) (model.Matrix, time.Time, time.Time, error) {
	end := q.now().UTC()
	start := end.Add(-q.window.Duration())
	r := v1.Range{
		Start: start,
		End:   end,
		Step:  end.Sub(start) / resolution,
	}

	value, warnings, err := q.api.QueryRange(ctx, q.query, r)
	if err != nil {
		return nil, start, end, fmt.Errorf("failed to query prometheus for %s: %w", q.window, err)
	}
	for _, w := range warnings {
		log.Warn().Str("window", string(q.window)).Str("warning", w).Msg("Prometheus query warning")
	}

	matrix, ok := value.(model.Matrix)
	if !ok {
		return nil, start, end, fmt.Errorf("unexpected prometheus result %T", value)
	}
	return matrix, start, end, nil
}

func points(values []model.SamplePair) []Point {
	result := make([]Point, len(values))
	for i, v := range values {
		result[i] = Point{float64(v.Timestamp) / 1000, float64(v.Value)}
	}
	return result
}

// TrafficUpdater fetches the aggregate bits per second over the exchange.
type TrafficUpdater struct {
	query rangeQuery
}

func NewTrafficUpdater(api rangeQuerier, window Window, now func() time.Time) *TrafficUpdater {
	return &TrafficUpdater{query: rangeQuery{api: api, query: trafficQuery, window: window, now: now}}
}

func (u *TrafficUpdater) Update(ctx context.Context) (*Series[[]Point], error) {
	matrix, start, end, err := u.query.run(ctx)
	if err != nil {
		return nil, err
	}
	if len(matrix) == 0 {
		return nil, errEmptyResult
	}

	return &Series[[]Point]{
		Start: start,
		End:   end,
		Data:  points(matrix[0].Values),
	}, nil
}

// AS112Updater fetches the AS112 query rate broken down by query type. Types
// below the query threshold are absent, so a quiet window yields an empty map.
type AS112Updater struct {
	query rangeQuery
}

func NewAS112Updater(api rangeQuerier, window Window, now func() time.Time) *AS112Updater {
	return &AS112Updater{query: rangeQuery{api: api, query: as112Query, window: window, now: now}}
}

func (u *AS112Updater) Update(ctx context.Context) (*Series[map[string][]Point], error) {
	matrix, start, end, err := u.query.run(ctx)
	if err != nil {
		return nil, err
	}

	data := make(map[string][]Point, len(matrix))
	for _, stream := range matrix {
		data[string(stream.Metric["type"])] = points(stream.Values)
	}

	return &Series[map[string][]Point]{
		Start: start,
		End:   end,
		Data:  data,
	}, nil
}
