// Package metrics registra os contadores Prometheus do ledger.
package metrics

import (
	"errors"
	"strconv"
	"time"

	appErrors "FundChain/internal/errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const resultSuccess = "success"

var (
	campaignsCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fundchain_campaigns_created_total",
		Help: "Total de campanhas criadas",
	})

	operationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fundchain_operations_total",
		Help: "Operações do ledger por tipo e resultado",
	}, []string{"operation", "result"})

	amountTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fundchain_amount_total",
		Help: "Soma dos valores movimentados, na menor unidade, por operação",
	}, []string{"operation"})

	eventsPublishedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fundchain_events_published_total",
		Help: "Eventos de domínio publicados por resultado",
	}, []string{"result"})

	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fundchain_http_requests_total",
		Help: "Requisições HTTP por rota e status",
	}, []string{"method", "route", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "fundchain_http_request_duration_seconds",
		Help:    "Duração das requisições HTTP",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
	}, []string{"method", "route"})
)

func CampaignCreated() {
	campaignsCreatedTotal.Inc()
}

// ObserveOperation conta uma operação (pledge, claim, refund, create) pelo
// código de erro, ou "success" quando err é nil.
func ObserveOperation(operation string, amount uint64, err error) {
	operationsTotal.WithLabelValues(operation, resultLabel(err)).Inc()
	if err == nil && amount > 0 {
		amountTotal.WithLabelValues(operation).Add(float64(amount))
	}
}

func EventPublished(err error) {
	if err != nil {
		eventsPublishedTotal.WithLabelValues("error").Inc()
		return
	}
	eventsPublishedTotal.WithLabelValues(resultSuccess).Inc()
}

func ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	httpRequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

func resultLabel(err error) string {
	if err == nil {
		return resultSuccess
	}
	var appErr *appErrors.AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return "error"
}
