package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestStoreMetricsExportsCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewStoreMetrics(reg)
	metrics.IncOrderCreated()
	metrics.ObserveOrderPaid(12500)
	metrics.ObserveOrderPaid(500)
	metrics.IncWebhookEvent("checkout.session.completed", "applied")

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	if got := fetchCounter(t, mfs, "orders_created_total", nil); got != 1 {
		t.Fatalf("expected created=1, got %f", got)
	}
	if got := fetchCounter(t, mfs, "orders_paid_total", nil); got != 2 {
		t.Fatalf("expected paid=2, got %f", got)
	}
	if got := fetchCounter(t, mfs, "orders_paid_cents_total", nil); got != 13000 {
		t.Fatalf("expected paid cents=13000, got %f", got)
	}
	if got := fetchCounter(t, mfs, "payment_webhook_events_total", map[string]string{
		"type":    "checkout.session.completed",
		"outcome": "applied",
	}); got != 1 {
		t.Fatalf("expected webhook count=1, got %f", got)
	}
}

func TestHTTPMetricsObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewHTTPMetrics(reg)
	metrics.IncInFlight()
	metrics.Observe("GET", "/api/products", 200, 30*time.Millisecond)
	metrics.DecInFlight()

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	got := fetchCounter(t, mfs, "http_requests_total", map[string]string{
		"method": "GET",
		"route":  "/api/products",
		"status": "200",
	})
	if got != 1 {
		t.Fatalf("expected requests=1, got %f", got)
	}
}

func fetchCounter(t *testing.T, mfs []*dto.MetricFamily, name string, labels map[string]string) float64 {
	t.Helper()
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		t.Fatalf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabels(metric.GetLabel(), labels) {
			return metric.GetCounter().GetValue()
		}
	}
	t.Fatalf("metric %q missing labels %v", name, labels)
	return 0
}

func findMetricFamily(mfs []*dto.MetricFamily, name string) *dto.MetricFamily {
	for _, mf := range mfs {
		if mf.GetName() == name {
			return mf
		}
	}
	return nil
}

func matchesLabels(pairs []*dto.LabelPair, want map[string]string) bool {
	for name, value := range want {
		found := false
		for _, pair := range pairs {
			if pair.GetName() == name && pair.GetValue() == value {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
