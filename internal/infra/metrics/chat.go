package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(
		sessionsOpened,
		moodRatings,
		assistantLatencyMs,
		assistantFallbacks,
	)
}

var (
	sessionsOpened = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_sessions_opened_total",
			Help: "Chat sessions opened, split by fresh vs resumed.",
		},
		[]string{"resumed"},
	)

	moodRatings = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_mood_ratings_total",
			Help: "Mood ratings submitted, split by side of the threshold.",
		},
		[]string{"band"}, // 'low', 'high'
	)

	assistantLatencyMs = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "assistant_call_latency_ms",
			Help:    "Assistant reply latency distribution in milliseconds.",
			Buckets: []float64{50, 100, 200, 400, 800, 1600, 3000, 5000, 10000, 20000},
		},
		[]string{"success"},
	)

	assistantFallbacks = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "assistant_fallbacks_total",
			Help: "Replies substituted with the apology text after an assistant failure.",
		},
	)
)

func IncSessionOpened(resumed bool) {
	sessionsOpened.WithLabelValues(strconv.FormatBool(resumed)).Inc()
}

func IncMoodRating(low bool) {
	band := "high"
	if low {
		band = "low"
	}
	moodRatings.WithLabelValues(band).Inc()
}

func ObserveAssistantCall(elapsed time.Duration, success bool) {
	assistantLatencyMs.WithLabelValues(strconv.FormatBool(success)).
		Observe(float64(elapsed.Milliseconds()))
	if !success {
		assistantFallbacks.Inc()
	}
}
