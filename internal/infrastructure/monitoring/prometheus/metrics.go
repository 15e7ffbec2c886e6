package prometheus

import (
	"strconv"
	"time"
)

// Stage label values recorded by the coding pipeline.
const (
	StageExtractText     = "extract_text"
	StageScanImages      = "scan_images"
	StageOCR             = "ocr"
	StageExtractMentions = "extract_mentions"
	StageResolve         = "resolve"
)

// Outcome label values for mention resolution.
const (
	OutcomeExact      = "exact"
	OutcomeFuzzy      = "fuzzy"
	OutcomeUnresolved = "unresolved"
)

var (
	httpDurationBuckets = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}

	// OCR can take minutes on scanned documents.
	stageDurationBuckets = []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60, 120, 300, 600}

	mentionCountBuckets = []float64{0, 1, 2, 5, 10, 20, 50, 100, 200}
)

// AppMetrics bundles every metric the coding service emits.
type AppMetrics struct {
	// HTTP surface.
	HTTPRequestsTotal   CounterVec
	HTTPRequestDuration HistogramVec
	HTTPInFlight        Gauge

	// Coding pipeline.
	PipelineRunsTotal   CounterVec
	StageDuration       HistogramVec
	MentionsPerDocument Histogram
	ResolutionsTotal    CounterVec

	// Dictionary and tagger state.
	DictionaryTerms    Gauge
	DictionaryConcepts Gauge
	TaggerUp           Gauge

	ErrorsTotal CounterVec
}

// NewAppMetrics registers the application metric set against collector.
func NewAppMetrics(collector MetricsCollector) *AppMetrics {
	m := &AppMetrics{}

	m.HTTPRequestsTotal = collector.RegisterCounter("http_requests_total", "Total HTTP requests", "method", "path", "status")
	m.HTTPRequestDuration = collector.RegisterHistogram("http_request_duration_seconds", "HTTP request latency", httpDurationBuckets, "method", "path")
	m.HTTPInFlight = collector.RegisterGauge("http_requests_in_flight", "HTTP requests currently being served").WithLabelValues()

	m.PipelineRunsTotal = collector.RegisterCounter("pipeline_runs_total", "Coding pipeline executions", "operation", "status")
	m.StageDuration = collector.RegisterHistogram("pipeline_stage_duration_seconds", "Coding pipeline stage latency", stageDurationBuckets, "stage")
	m.MentionsPerDocument = collector.RegisterHistogram("mentions_per_document", "Unique disease mentions extracted per document", mentionCountBuckets).WithLabelValues()
	m.ResolutionsTotal = collector.RegisterCounter("resolutions_total", "Mention resolutions by outcome", "outcome")

	m.DictionaryTerms = collector.RegisterGauge("dictionary_terms", "Distinct terms loaded into the terminology store").WithLabelValues()
	m.DictionaryConcepts = collector.RegisterGauge("dictionary_concepts", "Concepts with diagnosis codes loaded into the terminology store").WithLabelValues()
	m.TaggerUp = collector.RegisterGauge("tagger_up", "Tagger health (1=reachable, 0=down)").WithLabelValues()

	m.ErrorsTotal = collector.RegisterCounter("errors_total", "Application errors by component and code", "component", "code")

	return m
}

// Record helpers. All tolerate a nil *AppMetrics; recording is then a no-op,
// which is how the CLI runs with metrics disabled.

func RecordHTTPRequest(m *AppMetrics, method, path string, statusCode int, duration time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(statusCode)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// TrackInFlight bumps the in-flight gauge and returns the matching decrement.
func TrackInFlight(m *AppMetrics) func() {
	if m == nil {
		return func() {}
	}
	m.HTTPInFlight.Inc()
	return m.HTTPInFlight.Dec
}

func RecordPipelineRun(m *AppMetrics, operation string, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.PipelineRunsTotal.WithLabelValues(operation, status).Inc()
}

// StageTimer starts a timer for one pipeline stage.
func StageTimer(m *AppMetrics, stage string) *Timer {
	if m == nil {
		return NewTimer(nil)
	}
	return NewTimer(m.StageDuration.WithLabelValues(stage))
}

func RecordMentions(m *AppMetrics, count int) {
	if m == nil {
		return
	}
	m.MentionsPerDocument.Observe(float64(count))
}

func RecordResolution(m *AppMetrics, outcome string) {
	if m == nil {
		return
	}
	m.ResolutionsTotal.WithLabelValues(outcome).Inc()
}

func SetDictionarySize(m *AppMetrics, terms, concepts int) {
	if m == nil {
		return
	}
	m.DictionaryTerms.Set(float64(terms))
	m.DictionaryConcepts.Set(float64(concepts))
}

func SetTaggerUp(m *AppMetrics, up bool) {
	if m == nil {
		return
	}
	v := 0.0
	if up {
		v = 1
	}
	m.TaggerUp.Set(v)
}

func RecordError(m *AppMetrics, component, code string) {
	if m == nil {
		return
	}
	m.ErrorsTotal.WithLabelValues(component, code).Inc()
}
