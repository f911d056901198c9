package session

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	metricSessionsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "edugame_sessions_created_total",
		Help: "Game sessions created, by engine.",
	}, []string{"engine_id"})

	metricSessionsLive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "edugame_sessions_live",
		Help: "Sessions currently registered (any status).",
	})

	metricSessionsExpired = promauto.NewCounter(prometheus.CounterOpts{
		Name: "edugame_sessions_expired_total",
		Help: "Sessions expired by the background sweeper.",
	})

	metricSubmissions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "edugame_result_submissions_total",
		Help: "Result submissions, by outcome.",
	}, []string{"outcome"})

	metricCodeExhausted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "edugame_join_code_exhausted_total",
		Help: "Join-code allocation failures; any increase warrants alerting.",
	})
)
