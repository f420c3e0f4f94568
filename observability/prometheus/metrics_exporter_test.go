package prometheus

import (
	"testing"
	"time"

	dto "github.com/prometheus/client_model/go"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

// histogramSampleCount reads the observation count out of a histogram child.
func histogramSampleCount(t *testing.T, observer prom.Observer) uint64 {
	t.Helper()
	metric, ok := observer.(prom.Metric)
	if !ok {
		t.Fatalf("observer %T is not a prom.Metric", observer)
	}
	var out dto.Metric
	if err := metric.Write(&out); err != nil {
		t.Fatalf("Write() error = %v, want nil", err)
	}
	return out.GetHistogram().GetSampleCount()
}

// TestMetricsExporter_Records verifies the Metrics callbacks land in collectors
// Given: An exporter registered on a private registry
// When: Each Metrics method is invoked
// Then: The corresponding collector reflects the observation
func TestMetricsExporter_Records(t *testing.T) {
	// Arrange
	reg := prom.NewRegistry()
	exporter, err := NewMetricsExporter("actor", reg, ExporterOptions{})
	if err != nil {
		t.Fatalf("NewMetricsExporter() error = %v, want nil", err)
	}

	// Act
	exporter.RecordTaskDuration("executor-a", 250*time.Millisecond)
	exporter.RecordTaskDuration("executor-a", 50*time.Millisecond)
	exporter.RecordTaskPanic("executor-a", "boom")
	exporter.RecordQueueDepth("executor-a", 7)
	exporter.RecordTaskRejected("executor-a", "shutdown")

	// Assert
	obs, err := exporter.taskDurationSeconds.GetMetricWithLabelValues("executor-a")
	if err != nil {
		t.Fatalf("GetMetricWithLabelValues() error = %v, want nil", err)
	}
	if got := histogramSampleCount(t, obs); got != 2 {
		t.Errorf("duration sample count = %d, want 2", got)
	}
	if got := testutil.ToFloat64(exporter.taskPanicTotal.WithLabelValues("executor-a")); got != 1 {
		t.Errorf("task_panic_total = %v, want 1", got)
	}
	if got := testutil.ToFloat64(exporter.queueDepth.WithLabelValues("executor-a")); got != 7 {
		t.Errorf("queue_depth = %v, want 7", got)
	}
	if got := testutil.ToFloat64(exporter.taskRejectedTotal.WithLabelValues("executor-a", "shutdown")); got != 1 {
		t.Errorf("task_rejected_total = %v, want 1", got)
	}
}

// TestMetricsExporter_NormalizesEmptyLabels verifies the fallback label
// Given: An exporter on a private registry
// When: A metric is recorded with an empty executor name
// Then: It lands under the "unknown" label instead of an empty string
func TestMetricsExporter_NormalizesEmptyLabels(t *testing.T) {
	// Arrange
	reg := prom.NewRegistry()
	exporter, err := NewMetricsExporter("actor", reg, ExporterOptions{})
	if err != nil {
		t.Fatalf("NewMetricsExporter() error = %v, want nil", err)
	}

	// Act
	exporter.RecordTaskPanic("", nil)
	exporter.RecordTaskRejected("", "")

	// Assert
	if got := testutil.ToFloat64(exporter.taskPanicTotal.WithLabelValues("unknown")); got != 1 {
		t.Errorf("task_panic_total{executor=\"unknown\"} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(exporter.taskRejectedTotal.WithLabelValues("unknown", "unknown")); got != 1 {
		t.Errorf("task_rejected_total{unknown,unknown} = %v, want 1", got)
	}
}

// TestMetricsExporter_AlreadyRegisteredReuse verifies double construction
// Given: Two exporters built against the same registry and namespace
// When: The second one records metrics
// Then: Construction succeeds and both write into the shared collectors
func TestMetricsExporter_AlreadyRegisteredReuse(t *testing.T) {
	// Arrange
	reg := prom.NewRegistry()
	first, err := NewMetricsExporter("actor", reg, ExporterOptions{})
	if err != nil {
		t.Fatalf("first NewMetricsExporter() error = %v, want nil", err)
	}

	// Act
	second, err := NewMetricsExporter("actor", reg, ExporterOptions{})
	if err != nil {
		t.Fatalf("second NewMetricsExporter() error = %v, want nil", err)
	}
	first.RecordTaskPanic("executor-a", "boom")
	second.RecordTaskPanic("executor-a", "boom")

	// Assert - Both exporters share the registered collector
	if got := testutil.ToFloat64(second.taskPanicTotal.WithLabelValues("executor-a")); got != 2 {
		t.Errorf("task_panic_total = %v, want 2 (shared collector)", got)
	}
}

// TestMetricsExporter_DefaultNamespace verifies the namespace fallback
func TestMetricsExporter_DefaultNamespace(t *testing.T) {
	reg := prom.NewRegistry()
	if _, err := NewMetricsExporter("", reg, ExporterOptions{}); err != nil {
		t.Fatalf("NewMetricsExporter(\"\") error = %v, want nil", err)
	}
}
