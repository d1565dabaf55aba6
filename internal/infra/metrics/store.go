package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(persistWrites, persistFailures, persistSkips, dbPoolStats)
}

var (
	persistWrites = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "persist_writes_total",
			Help: "Successful background persistence writes per record kind.",
		},
		[]string{"kind"}, // 'conversation', 'mood', 'feedback'
	)

	persistFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "persist_failures_total",
			Help: "Failed background persistence writes per record kind.",
		},
		[]string{"kind"},
	)

	persistSkips = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "persist_skips_total",
			Help: "Snapshot writes skipped because nothing new needed saving.",
		},
	)

	dbPoolStats = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "db_pool_stats",
			Help: "Current state of the database connection pool.",
		},
		[]string{"state"}, // 'total', 'idle', 'in_use'
	)
)

func IncPersistWrite(kind string) {
	persistWrites.WithLabelValues(norm(kind)).Inc()
}

func IncPersistFailure(kind string) {
	persistFailures.WithLabelValues(norm(kind)).Inc()
}

func IncPersistSkip() {
	persistSkips.Inc()
}

func SetDBPoolStats(total, idle, inUse int32) {
	dbPoolStats.WithLabelValues("total").Set(float64(total))
	dbPoolStats.WithLabelValues("idle").Set(float64(idle))
	dbPoolStats.WithLabelValues("in_use").Set(float64(inUse))
}
