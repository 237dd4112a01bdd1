package core

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/docuquery/docuquery/pkg/metrics"
)

type Metrics struct {
	apiResponseTime  *prometheus.HistogramVec
	apiErrorCounter  *prometheus.CounterVec
	ingestCounter    *prometheus.CounterVec
	deleteCounter    *prometheus.CounterVec
	answerCounter    *prometheus.CounterVec
	oracleCallTime   *prometheus.HistogramVec
	oracleErrCounter *prometheus.CounterVec
}

func NewMetrics(ns, system string) *Metrics {
	metrics.SetupMetricsManager(ns, system, prometheus.DefaultRegisterer.(*prometheus.Registry))

	return &Metrics{
		apiResponseTime:  metrics.NewHistogramVec("api_response_time", []string{"api"}),
		apiErrorCounter:  metrics.NewCounterVec("api_error", []string{"method", "api", "status"}),
		ingestCounter:    metrics.NewCounterVec("ingested_documents", []string{"strategy", "result"}),
		deleteCounter:    metrics.NewCounterVec("deleted_files", []string{"result"}),
		answerCounter:    metrics.NewCounterVec("answered_queries", []string{"class", "result"}),
		oracleCallTime:   metrics.NewHistogramVec("oracle_call_time", []string{"target"}),
		oracleErrCounter: metrics.NewCounterVec("oracle_error", []string{"target"}),
	}
}

// newNopMetrics backs the vectors with an unexported registry so
// injected test cores never collide with the default registerer.
func newNopMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	metrics.SetupMetricsManager("docuquery", "test", registry)
	return &Metrics{
		apiResponseTime:  metrics.NewHistogramVec("api_response_time", []string{"api"}),
		apiErrorCounter:  metrics.NewCounterVec("api_error", []string{"method", "api", "status"}),
		ingestCounter:    metrics.NewCounterVec("ingested_documents", []string{"strategy", "result"}),
		deleteCounter:    metrics.NewCounterVec("deleted_files", []string{"result"}),
		answerCounter:    metrics.NewCounterVec("answered_queries", []string{"class", "result"}),
		oracleCallTime:   metrics.NewHistogramVec("oracle_call_time", []string{"target"}),
		oracleErrCounter: metrics.NewCounterVec("oracle_error", []string{"target"}),
	}
}

func (m *Metrics) ApiResponseTimer(api string) *prometheus.Timer {
	return prometheus.NewTimer(m.apiResponseTime.WithLabelValues(api))
}

func (m *Metrics) ApiErrorInc(method, api string, status int) {
	m.apiErrorCounter.WithLabelValues(method, api, strconv.Itoa(status)).Inc()
}

func (m *Metrics) IngestInc(strategy, result string) {
	m.ingestCounter.WithLabelValues(strategy, result).Inc()
}

func (m *Metrics) DeleteInc(result string) {
	m.deleteCounter.WithLabelValues(result).Inc()
}

func (m *Metrics) AnswerInc(class, result string) {
	m.answerCounter.WithLabelValues(class, result).Inc()
}

func (m *Metrics) OracleCallTimer(target string) *prometheus.Timer {
	return prometheus.NewTimer(m.oracleCallTime.WithLabelValues(target))
}

func (m *Metrics) OracleErrorInc(target string) {
	m.oracleErrCounter.WithLabelValues(target).Inc()
}
