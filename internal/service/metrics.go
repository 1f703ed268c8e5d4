package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Метрики синхронизации
var (
	syncsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "folio",
		Subsystem: "sync",
		Name:      "runs_total",
		Help:      "Total number of sync runs",
	})

	syncsAllFailed = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "folio",
		Subsystem: "sync",
		Name:      "runs_all_failed_total",
		Help:      "Sync runs where every provider failed",
	})

	syncFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "folio",
		Subsystem: "sync",
		Name:      "provider_failures_total",
		Help:      "Provider failures during sync",
	}, []string{"provider"})

	accountsSynced = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "folio",
		Subsystem: "sync",
		Name:      "accounts_synced_total",
		Help:      "Accounts successfully synced",
	}, []string{"provider"})

	syncDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "folio",
		Subsystem: "sync",
		Name:      "duration_seconds",
		Help:      "Duration of a full sync run",
		Buckets:   prometheus.DefBuckets,
	})

	portfolioValue = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "folio",
		Subsystem: "sync",
		Name:      "portfolio_value_usd",
		Help:      "Portfolio total value after the last sync",
	}, []string{"user_id"})

	authRejections = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "folio",
		Subsystem: "auth",
		Name:      "rate_limited_total",
		Help:      "Authentication attempts rejected by rate limiting",
	}, []string{"flow"})
)
