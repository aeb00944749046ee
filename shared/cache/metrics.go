package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	resultSuccess = "success"
	resultError   = "error"
)

var (
	updatesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "foundation",
		Subsystem: "cache",
		Name:      "updates_total",
		Help:      "Number of cache updates by result.",
	}, []string{"cache", "result"})

	lastSuccess = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "foundation",
		Subsystem: "cache",
		Name:      "last_success_timestamp_seconds",
		Help:      "Unix time of the last successful update.",
	}, []string{"cache"})
)
