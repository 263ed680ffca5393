package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	m := &dto.Metric{}
	if err := c.Write(m); err != nil {
		t.Fatalf("writing metric: %v", err)
	}
	return m.GetCounter().GetValue()
}

func TestThumbnailJobsTotalLabels(t *testing.T) {
	for _, outcome := range []string{"ready", "failed", "stale", "cached"} {
		c := ThumbnailJobsTotal.WithLabelValues(outcome)
		before := counterValue(t, c)
		c.Inc()
		if got := counterValue(t, c); got != before+1 {
			t.Errorf("outcome %q: counter = %v, want %v", outcome, got, before+1)
		}
	}
}

func TestViewportTransitionsTotal(t *testing.T) {
	c := ViewportTransitionsTotal.WithLabelValues("zoom")
	before := counterValue(t, c)
	c.Inc()
	c.Inc()
	if got := counterValue(t, c); got != before+2 {
		t.Errorf("counter = %v, want %v", got, before+2)
	}
}

func TestGaugesSettable(t *testing.T) {
	ThumbnailQueueDepth.Set(7)
	ThumbnailGeneration.Set(3)

	m := &dto.Metric{}
	if err := ThumbnailQueueDepth.Write(m); err != nil {
		t.Fatalf("writing gauge: %v", err)
	}
	if got := m.GetGauge().GetValue(); got != 7 {
		t.Errorf("queue depth gauge = %v, want 7", got)
	}
}
