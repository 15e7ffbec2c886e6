package prometheus

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/turtacn/MedCode-Intelligence/internal/infrastructure/monitoring/logging"
)

func newTestCollector(t *testing.T) MetricsCollector {
	t.Helper()
	c, err := NewMetricsCollector(CollectorConfig{
		Namespace: "test",
		Subsystem: "unit",
	}, logging.NewNopLogger())
	require.NoError(t, err)
	return c
}

func scrapeMetrics(t *testing.T, collector MetricsCollector) string {
	t.Helper()
	rec := httptest.NewRecorder()
	collector.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	return rec.Body.String()
}

func TestNewMetricsCollector_RequiresNamespace(t *testing.T) {
	_, err := NewMetricsCollector(CollectorConfig{Subsystem: "unit"}, logging.NewNopLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "namespace")
}

func TestRegisterCounter_RoundTrip(t *testing.T) {
	c := newTestCollector(t)

	ops := c.RegisterCounter("ops_total", "Operations by kind", "kind")
	ops.WithLabelValues("read").Inc()
	ops.WithLabelValues("read").Inc()
	ops.WithLabelValues("write").Add(3)

	body := scrapeMetrics(t, c)
	assert.Contains(t, body, `test_unit_ops_total{kind="read"} 2`)
	assert.Contains(t, body, `test_unit_ops_total{kind="write"} 3`)
}

func TestRegisterGauge_RoundTrip(t *testing.T) {
	c := newTestCollector(t)

	depth := c.RegisterGauge("queue_depth", "Pending items", "queue")
	g := depth.WithLabelValues("ocr")
	g.Set(5)
	g.Sub(2)

	body := scrapeMetrics(t, c)
	assert.Contains(t, body, `test_unit_queue_depth{queue="ocr"} 3`)
}

func TestRegisterHistogram_RoundTrip(t *testing.T) {
	c := newTestCollector(t)

	latency := c.RegisterHistogram("latency_seconds", "Operation latency", []float64{1, 5}, "op")
	latency.WithLabelValues("tag").Observe(0.3)

	body := scrapeMetrics(t, c)
	assert.Contains(t, body, "test_unit_latency_seconds_bucket")
	assert.Contains(t, body, "test_unit_latency_seconds_sum")
	assert.Contains(t, body, `test_unit_latency_seconds_count{op="tag"} 1`)
}

func TestRegisterHistogram_NilBucketsUseDefaults(t *testing.T) {
	c := newTestCollector(t)

	latency := c.RegisterHistogram("default_seconds", "Latency with default buckets", nil, "op")
	latency.WithLabelValues("x").Observe(0.004)

	body := scrapeMetrics(t, c)
	assert.Contains(t, body, `test_unit_default_seconds_bucket{le="0.005",op="x"} 1`)
}

func TestRegisterCounter_DuplicateReturnsSameMetric(t *testing.T) {
	c := newTestCollector(t)

	first := c.RegisterCounter("dup_total", "Duplicate registration", "kind")
	second := c.RegisterCounter("dup_total", "Duplicate registration", "kind")

	first.WithLabelValues("a").Inc()
	second.WithLabelValues("a").Inc()

	body := scrapeMetrics(t, c)
	assert.Contains(t, body, `test_unit_dup_total{kind="a"} 2`)
}

func TestRegisterGauge_TypeMismatchFallsBackToNoop(t *testing.T) {
	c := newTestCollector(t)

	counter := c.RegisterCounter("mixed_total", "Registered as counter first", "kind")
	counter.WithLabelValues("a").Inc()

	// Same name, different metric type: the gauge must be a silent no-op and
	// the existing counter must keep its value.
	gauge := c.RegisterGauge("mixed_total", "Registered as gauge second", "kind")
	assert.NotPanics(t, func() { gauge.WithLabelValues("a").Set(99) })

	body := scrapeMetrics(t, c)
	assert.Contains(t, body, "# TYPE test_unit_mixed_total counter")
	assert.Contains(t, body, `test_unit_mixed_total{kind="a"} 1`)
}

func TestConcurrentRegistration(t *testing.T) {
	c := newTestCollector(t)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.RegisterCounter("concurrent_total", "Concurrent registration", "id").WithLabelValues("1").Inc()
		}()
	}
	wg.Wait()

	body := scrapeMetrics(t, c)
	assert.Contains(t, body, `test_unit_concurrent_total{id="1"} 50`)
}

func TestNewMetricsCollector_GoRuntimeMetrics(t *testing.T) {
	c, err := NewMetricsCollector(CollectorConfig{
		Namespace:       "test",
		EnableGoMetrics: true,
	}, logging.NewNopLogger())
	require.NoError(t, err)

	body := scrapeMetrics(t, c)
	assert.Contains(t, body, "go_goroutines")
}

func TestNewMetricsCollector_ProcessMetrics(t *testing.T) {
	c, err := NewMetricsCollector(CollectorConfig{
		Namespace:            "test",
		EnableProcessMetrics: true,
	}, logging.NewNopLogger())
	require.NoError(t, err)

	body := scrapeMetrics(t, c)
	assert.Contains(t, body, "process_cpu_seconds_total")
}

func TestNewMetricsCollector_ConstLabels(t *testing.T) {
	c, err := NewMetricsCollector(CollectorConfig{
		Namespace:   "test",
		ConstLabels: map[string]string{"service": "apiserver"},
	}, logging.NewNopLogger())
	require.NoError(t, err)

	c.RegisterCounter("labeled_total", "Counter with const labels").WithLabelValues().Inc()

	body := scrapeMetrics(t, c)
	assert.Contains(t, body, `test_labeled_total{service="apiserver"} 1`)
}

func TestTimer_ObservesElapsed(t *testing.T) {
	c := newTestCollector(t)
	latency := c.RegisterHistogram("timed_seconds", "Timed stage", []float64{10}, "stage")

	timer := NewTimer(latency.WithLabelValues("ocr"))
	time.Sleep(5 * time.Millisecond)
	timer.ObserveDuration()

	body := scrapeMetrics(t, c)
	assert.Contains(t, body, `test_unit_timed_seconds_count{stage="ocr"} 1`)
}

func TestTimer_NilHistogram(t *testing.T) {
	assert.NotPanics(t, func() { NewTimer(nil).ObserveDuration() })
}
