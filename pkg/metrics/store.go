package metrics

import "github.com/prometheus/client_golang/prometheus"

// StoreMetrics tracks storefront business events.
type StoreMetrics struct {
	ordersCreated prometheus.Counter
	ordersPaid    prometheus.Counter
	paidCents     prometheus.Counter
	webhookEvents *prometheus.CounterVec
}

// NewStoreMetrics registers the storefront metrics on the provided registerer.
func NewStoreMetrics(reg prometheus.Registerer) *StoreMetrics {
	if reg == nil {
		return &StoreMetrics{}
	}
	ordersCreated := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "orders_created_total",
		Help: "Orders created through checkout.",
	})
	ordersPaid := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "orders_paid_total",
		Help: "Orders confirmed paid via payment webhook.",
	})
	paidCents := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "orders_paid_cents_total",
		Help: "Total paid order value in cents.",
	})
	webhookEvents := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_webhook_events_total",
		Help: "Payment webhook events received by type and outcome.",
	}, []string{"type", "outcome"})
	reg.MustRegister(ordersCreated, ordersPaid, paidCents, webhookEvents)
	return &StoreMetrics{
		ordersCreated: ordersCreated,
		ordersPaid:    ordersPaid,
		paidCents:     paidCents,
		webhookEvents: webhookEvents,
	}
}

// IncOrderCreated increments the created-order counter.
func (s *StoreMetrics) IncOrderCreated() {
	if s == nil || s.ordersCreated == nil {
		return
	}
	s.ordersCreated.Inc()
}

// ObserveOrderPaid records a paid order and its total.
func (s *StoreMetrics) ObserveOrderPaid(totalCents int) {
	if s == nil || s.ordersPaid == nil {
		return
	}
	s.ordersPaid.Inc()
	if totalCents > 0 {
		s.paidCents.Add(float64(totalCents))
	}
}

// IncWebhookEvent counts a webhook delivery by event type and outcome.
func (s *StoreMetrics) IncWebhookEvent(eventType, outcome string) {
	if s == nil || s.webhookEvents == nil {
		return
	}
	if eventType == "" {
		eventType = "unknown"
	}
	s.webhookEvents.WithLabelValues(eventType, outcome).Inc()
}
