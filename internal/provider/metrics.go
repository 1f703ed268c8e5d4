package provider

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ============================================================
// Prometheus метрики транспортного слоя
// ============================================================
//
// Использование:
// - Grafana дашборды: частота обращений к провайдерам и доля retry
// - Alertmanager: всплеск retry = деградация провайдера

// requestsTotal - количество HTTP попыток по меткам транспорта
var requestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "folio",
		Subsystem: "provider",
		Name:      "requests_total",
		Help:      "Total number of HTTP attempts issued to external providers",
	},
	[]string{"label"},
)

// retriesTotal - количество повторных попыток по меткам транспорта
var retriesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "folio",
		Subsystem: "provider",
		Name:      "retries_total",
		Help:      "Total number of retried HTTP attempts",
	},
	[]string{"label"},
)

// fetchErrors - количество неуспешных fetch'ей по провайдерам
var fetchErrors = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "folio",
		Subsystem: "provider",
		Name:      "fetch_errors_total",
		Help:      "Total number of failed provider account fetches",
	},
	[]string{"provider"},
)
