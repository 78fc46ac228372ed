package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestNewManagerWithOptions(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewManager(
		WithNamespace("testns"),
		WithSubsystem("testsub"),
		WithHistogramBuckets([]float64{1, 5, 10}),
		WithPrometheusRegistry(reg),
	)

	if m.namespace != "testns" {
		t.Errorf("expected namespace testns, got %s", m.namespace)
	}
	if m.subsystem != "testsub" {
		t.Errorf("expected subsystem testsub, got %s", m.subsystem)
	}
	if len(m.histogramBuckets) != 3 {
		t.Errorf("expected 3 buckets, got %d", len(m.histogramBuckets))
	}

	// All metrics must be registered without panicking on the fresh registry
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather failed: %v", err)
	}
	if len(families) == 0 {
		t.Error("expected registered metric families")
	}
}

func TestOptionsIgnoreZeroValues(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewManager(
		WithNamespace(""),
		WithSubsystem(""),
		WithHistogramBuckets(nil),
		WithPrometheusRegistry(reg),
	)

	if m.namespace != "dugout" {
		t.Errorf("expected default namespace, got %s", m.namespace)
	}
	if m.subsystem != "sync" {
		t.Errorf("expected default subsystem, got %s", m.subsystem)
	}
}

func TestGlobalRecorders(t *testing.T) {
	// The global manager is initialized in init(); recording must not panic.
	RecordMutationApplied("create")
	RecordMutationApplied("update")
	RecordMutationApplied("delete")
	RecordMutationRejected("conflict")
	RecordMutationRejected("not_found")
	RecordMutationRejected("invalid")
	RecordDuplicateCreate()
	RecordIngestLatency(1.5)
	UpdateGamesTracked(3)
	UpdateLiveEvents(42)
	RecordBroadcastEnqueued()
	RecordBroadcastDelivered()
	RecordBroadcastDropped()
	RecordDispatchLatency(0.2)
	UpdateViewerCount(7)
	UpdateDispatcherCount(4)
	UpdateQueueSize(10)
	UpdateQueueCapacity(100)
	UpdateQueueUtilization(0.1)
	RecordQueueEnqueue()
	RecordQueueDequeue()
	RecordQueueEnqueueError()
	RecordHTTPRequest("mutations", "POST", "200")
	RecordHTTPRequestDuration("mutations", "POST", "200", 2.0)

	families, err := GetRegistry().Gather()
	if err != nil {
		t.Fatalf("gather failed: %v", err)
	}
	if len(families) == 0 {
		t.Error("expected metric families on the global registry")
	}
}
