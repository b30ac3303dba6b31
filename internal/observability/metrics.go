package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	defsBuilt = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "defkit",
			Subsystem: "def",
			Name:      "built_total",
			Help:      "Defs successfully initialized, by kind.",
		},
		[]string{"kind"},
	)
	buildFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "defkit",
			Subsystem: "def",
			Name:      "build_failures_total",
			Help:      "Def initializations rejected by validation, by kind.",
		},
		[]string{"kind"},
	)
	resolutions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "defkit",
			Subsystem: "symtab",
			Name:      "resolutions_total",
			Help:      "Field reference resolutions, by outcome.",
		},
		[]string{"outcome"},
	)
	liveSymbols = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "defkit",
			Subsystem: "symtab",
			Name:      "live_symbols",
			Help:      "Symbols currently published in the registry.",
		},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(defsBuilt, buildFailures, resolutions, liveSymbols)
	})
}

func RecordDefBuilt(kind string) {
	RegisterMetrics()
	defsBuilt.WithLabelValues(kind).Inc()
}

func RecordBuildFailure(kind string) {
	RegisterMetrics()
	buildFailures.WithLabelValues(kind).Inc()
}

func RecordResolution(outcome string) {
	RegisterMetrics()
	resolutions.WithLabelValues(outcome).Inc()
}

func SetLiveSymbols(n int) {
	RegisterMetrics()
	liveSymbols.Set(float64(n))
}
