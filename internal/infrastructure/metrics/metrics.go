package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "payment"

// PaymentMetrics covers the order lifecycle and the outbound gateway calls.
type PaymentMetrics struct {
	OrdersCreatedTotal       *prometheus.CounterVec
	OrdersCreatedAmountTotal prometheus.Counter

	PaymentsInitiatedTotal *prometheus.CounterVec

	// outcome: paid, duplicate, amount_mismatch, not_found, invalid_state,
	// verification_failed, error
	NotificationsTotal *prometheus.CounterVec

	RefundsTotal       *prometheus.CounterVec
	RefundsAmountTotal prometheus.Counter

	GatewayCallDuration *prometheus.HistogramVec

	OutboxRelayedTotal prometheus.Counter
	OutboxErrorsTotal  prometheus.Counter
}

// NewPaymentMetrics registers the collectors with reg. The service passes its
// own registry, which also carries the Go and process collectors and backs
// /metrics.
func NewPaymentMetrics(reg prometheus.Registerer) *PaymentMetrics {
	factory := promauto.With(reg)

	return &PaymentMetrics{
		OrdersCreatedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "orders_created_total",
				Help:      "Orders created, by result.",
			},
			[]string{"result"},
		),
		OrdersCreatedAmountTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "orders_created_amount_total",
				Help:      "Sum of created order amounts in yuan.",
			},
		),
		PaymentsInitiatedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "payments_initiated_total",
				Help:      "Payment initiations, by result.",
			},
			[]string{"result"},
		),
		NotificationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "notifications_total",
				Help:      "Payment notifications handled, by outcome.",
			},
			[]string{"outcome"},
		),
		RefundsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "refunds_total",
				Help:      "Refund requests, by result.",
			},
			[]string{"result"},
		),
		RefundsAmountTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "refunds_amount_total",
				Help:      "Sum of refunded amounts in yuan.",
			},
		),
		GatewayCallDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "gateway_call_duration_seconds",
				Help:      "Latency of payment gateway calls.",
				Buckets:   prometheus.ExponentialBuckets(0.01, 2, 10),
			},
			[]string{"operation", "result"},
		),
		OutboxRelayedTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "outbox_relayed_total",
				Help:      "Order events handed to the broker.",
			},
		),
		OutboxErrorsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "outbox_errors_total",
				Help:      "Failed outbox relay runs.",
			},
		),
	}
}

func (m *PaymentMetrics) RecordOrderCreated(result string, amount float64) {
	m.OrdersCreatedTotal.WithLabelValues(result).Inc()
	if result == "ok" {
		m.OrdersCreatedAmountTotal.Add(amount)
	}
}

func (m *PaymentMetrics) RecordPaymentInitiated(result string) {
	m.PaymentsInitiatedTotal.WithLabelValues(result).Inc()
}

func (m *PaymentMetrics) RecordNotification(outcome string) {
	m.NotificationsTotal.WithLabelValues(outcome).Inc()
}

func (m *PaymentMetrics) RecordRefund(result string, amount float64) {
	m.RefundsTotal.WithLabelValues(result).Inc()
	if result == "ok" {
		m.RefundsAmountTotal.Add(amount)
	}
}

func (m *PaymentMetrics) ObserveGatewayCall(operation, result string, seconds float64) {
	m.GatewayCallDuration.WithLabelValues(operation, result).Observe(seconds)
}

func (m *PaymentMetrics) RecordOutboxRelay(sent int, err error) {
	if err != nil {
		m.OutboxErrorsTotal.Inc()
	}
	m.OutboxRelayedTotal.Add(float64(sent))
}

// ServerMetrics counts HTTP requests per route.
type ServerMetrics struct {
	Requests  *prometheus.CounterVec
	LatencyMS *prometheus.HistogramVec
}

func NewServerMetrics(reg prometheus.Registerer) *ServerMetrics {
	factory := promauto.With(reg)

	return &ServerMetrics{
		Requests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests.",
		}, []string{"handler", "method", "status"}),
		LatencyMS: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_ms",
			Help:      "HTTP request latency in milliseconds.",
			Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		}, []string{"handler"}),
	}
}

func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
