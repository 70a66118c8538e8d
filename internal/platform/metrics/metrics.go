// Package metrics holds the Prometheus metrics for the directory service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts record writes per collection. A nil *Metrics is valid and
// counts nothing, so tests can build services without a registry.
type Metrics struct {
	RecordsCreated *prometheus.CounterVec
	RecordsUpdated *prometheus.CounterVec
	TokensIssued   prometheus.Counter
}

// New creates and registers all application metrics. Call once at startup.
func New() *Metrics {
	return &Metrics{
		RecordsCreated: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "orgdir_records_created_total",
			Help: "Total number of records created, per collection",
		}, []string{"collection"}),
		RecordsUpdated: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "orgdir_records_updated_total",
			Help: "Total number of records updated, per collection",
		}, []string{"collection"}),
		TokensIssued: promauto.NewCounter(prometheus.CounterOpts{
			Name: "orgdir_tokens_issued_total",
			Help: "Total number of access tokens issued",
		}),
	}
}

func (m *Metrics) IncrementCreated(collection string) {
	if m == nil {
		return
	}
	m.RecordsCreated.WithLabelValues(collection).Inc()
}

func (m *Metrics) IncrementUpdated(collection string) {
	if m == nil {
		return
	}
	m.RecordsUpdated.WithLabelValues(collection).Inc()
}

func (m *Metrics) IncrementTokensIssued() {
	if m == nil {
		return
	}
	m.TokensIssued.Inc()
}
