package repository

import "github.com/prometheus/client_golang/prometheus"

var (
	chainExtensions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sober_engine",
			Subsystem: "milestones",
			Name:      "chain_extensions_total",
			Help:      "Milestones synthesized by extending a frequency chain.",
		},
		[]string{"frequency"},
	)

	chainRaces = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "sober_engine",
			Subsystem: "milestones",
			Name:      "chain_extension_races_total",
			Help:      "Chain extensions that lost to a concurrent writer and reused the winner.",
		},
	)

	cacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sober_engine",
			Subsystem: "cache",
			Name:      "lookups_total",
			Help:      "Milestone catalog cache lookups by result.",
		},
		[]string{"result"},
	)
)

func init() {
	prometheus.MustRegister(chainExtensions, chainRaces, cacheLookups)
}
