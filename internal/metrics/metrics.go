package metrics

import "github.com/prometheus/client_golang/prometheus"

const (
	keywordDurations = "durations"
	keywordFailures  = "failures"
	openConnections  = "open"
)

var (
	keywordDurationsSum = prometheus.NewSummaryVec(prometheus.SummaryOpts{
		Subsystem:  "keyword",
		Name:       keywordDurations,
		Help:       "Keyword execution latencies in seconds",
		Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
	}, []string{"keyword"})

	keywordFailuresCnt = prometheus.NewCounterVec(prometheus.CounterOpts{
		Subsystem: "keyword",
		Name:      keywordFailures,
		Help:      "Total number of failed keyword calls",
	}, []string{"keyword", "kind"})

	openConnectionsGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Subsystem: "connections",
		Name:      openConnections,
		Help:      "Number of open Tarantool connections",
	})
)

func init() {
	prometheus.MustRegister(keywordDurationsSum)
	prometheus.MustRegister(keywordFailuresCnt)
	prometheus.MustRegister(openConnectionsGauge)
}

type Transaction interface {
	Start() Transaction
	End()
}

type timeTransaction struct {
	labels  []string
	summary *prometheus.SummaryVec
	timer   *prometheus.Timer
}

func (txn *timeTransaction) Start() Transaction {
	txn.timer = prometheus.NewTimer(txn.summary.WithLabelValues(txn.labels...))
	return txn
}

func (txn *timeTransaction) End() {
	txn.timer.ObserveDuration()
}

func StartKeyword(name string) Transaction {
	txn := &timeTransaction{
		summary: keywordDurationsSum,
		labels:  []string{name},
	}
	return txn.Start()
}

func NewFailedKeyword(name, kind string) {
	keywordFailuresCnt.With(prometheus.Labels{
		"keyword": name,
		"kind":    kind,
	}).Inc()
}

func SetOpenConnections(n int) {
	openConnectionsGauge.Set(float64(n))
}
