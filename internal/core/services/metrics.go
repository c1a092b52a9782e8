package services

import (
	"time"

	"github.com/yurisalesc/poc-legal-llm/internal/core/domain"
	"github.com/yurisalesc/poc-legal-llm/internal/core/ports/driven"
)

// nopMetrics discards every observation.
type nopMetrics struct{}

var _ driven.Metrics = nopMetrics{}

func (nopMetrics) IngestDone(string, int, time.Duration) {}
func (nopMetrics) QueryDone(domain.RetrievalStrategy, string, time.Duration) {}
func (nopMetrics) SelfQueryFallback() {}

func metricsOrNop(m driven.Metrics) driven.Metrics {
	if m == nil {
		return nopMetrics{}
	}
	return m
}
