// Package metrics holds the Prometheus collectors shared by the tenant and
// records packages. They live here to keep those packages free of each other.
package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "contalink"

var (
	// TenantLookups counts directory lookups by strategy (subdomain, domain)
	// and result (found, not_found, error).
	TenantLookups = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "tenant",
		Name:      "lookups_total",
		Help:      "Company directory lookups",
	}, []string{"strategy", "result"})

	// TenantCache counts resolver cache hits and misses.
	TenantCache = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "tenant",
		Name:      "cache_total",
		Help:      "Company cache hits and misses",
	}, []string{"result"})

	// TenantFallbacks counts synthesized companies by reason (disabled, lookup_failed).
	TenantFallbacks = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "tenant",
		Name:      "fallbacks_total",
		Help:      "Synthesized fallback companies",
	}, []string{"reason"})

	// TenantSharedLoads counts loads that joined an in-flight lookup.
	TenantSharedLoads = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "tenant",
		Name:      "shared_loads_total",
		Help:      "Loads served by an in-flight lookup for the same key",
	})

	// RecordsQueries counts records queries by executor and result (ok, error).
	RecordsQueries = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "records",
		Name:      "queries_total",
		Help:      "Records queries",
	}, []string{"executor", "result"})

	// RecordsLatency observes records query latency in seconds.
	RecordsLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "records",
		Name:      "query_seconds",
		Help:      "Records query latency",
		Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12),
	}, []string{"executor"})
)

// Register registers all collectors on reg (or the default registerer if nil).
// Collectors that are already registered are skipped.
func Register(reg prometheus.Registerer) error {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	for _, c := range []prometheus.Collector{
		TenantLookups,
		TenantCache,
		TenantFallbacks,
		TenantSharedLoads,
		RecordsQueries,
		RecordsLatency,
	} {
		if err := reg.Register(c); err != nil {
			var are prometheus.AlreadyRegisteredError
			if !errors.As(err, &are) {
				return err
			}
		}
	}
	return nil
}
