package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func TestJobMetricsNilRegisterer(t *testing.T) {
	m := NewJobMetrics(nil)
	// All recorders must be no-ops without panicking.
	m.ObserveDuration("publish", time.Second)
	m.IncSuccess("publish")
	m.IncFailure("publish")
}

func TestJobMetricsRegisters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewJobMetrics(reg)

	m.ObserveDuration("publish", 250*time.Millisecond)
	m.IncSuccess("publish")
	m.IncFailure("")

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if len(families) != 3 {
		t.Fatalf("expected 3 metric families, got %d", len(families))
	}
}
