package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(speechCaptures) }

var speechCaptures = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "speech_captures_total",
		Help: "Speech capture attempts by outcome.",
	},
	[]string{"outcome"}, // 'ok', 'timeout', 'aborted', 'error'
)

func IncSpeechCapture(outcome string) {
	speechCaptures.WithLabelValues(norm(outcome)).Inc()
}
