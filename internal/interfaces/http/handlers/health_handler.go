package handlers

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/turtacn/MedCode-Intelligence/internal/infrastructure/monitoring/prometheus"
	codingtypes "github.com/turtacn/MedCode-Intelligence/pkg/types/coding"
)

// Component names used by the readiness probe.  The tagger check also
// drives the tagger_up gauge.
const (
	CheckerDictionary = "dictionary"
	CheckerTagger     = "tagger"
)

// HealthChecker reports the health of one dependency.
type HealthChecker interface {
	Name() string
	Check(ctx context.Context) error
}

type checkerFunc struct {
	name  string
	check func(ctx context.Context) error
}

func (c checkerFunc) Name() string                    { return c.name }
func (c checkerFunc) Check(ctx context.Context) error { return c.check(ctx) }

// NewChecker adapts a plain function into a HealthChecker.
func NewChecker(name string, check func(ctx context.Context) error) HealthChecker {
	return checkerFunc{name: name, check: check}
}

// HealthHandler serves the liveness and readiness probes.
type HealthHandler struct {
	checkers []HealthChecker
	metrics  *prometheus.AppMetrics
	version  string
	startAt  time.Time
}

// NewHealthHandler creates a HealthHandler.  metrics may be nil.
func NewHealthHandler(version string, metrics *prometheus.AppMetrics, checkers ...HealthChecker) *HealthHandler {
	return &HealthHandler{
		checkers: checkers,
		metrics:  metrics,
		version:  version,
		startAt:  time.Now(),
	}
}

// componentCheck is the per-dependency result reported by the detail
// endpoint.
type componentCheck struct {
	Status  string `json:"status"`
	Latency string `json:"latency,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Liveness handles GET /healthz.  Always 200 while the process runs.
func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, codingtypes.HealthResponse{
		Status:  codingtypes.HealthOK,
		Version: h.version,
		Uptime:  time.Since(h.startAt).Truncate(time.Second).String(),
	})
}

// Readiness handles GET /readyz.  Returns 200 when every dependency check
// passes, 503 otherwise.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	if len(h.checkers) == 0 {
		writeJSON(w, http.StatusOK, codingtypes.HealthResponse{Status: codingtypes.HealthOK})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	results := h.checkAll(ctx)

	components := make(map[string]string, len(results))
	allUp := true
	for name, check := range results {
		components[name] = check.Status
		if check.Status != codingtypes.ComponentUp {
			allUp = false
		}
		if name == CheckerTagger {
			prometheus.SetTaggerUp(h.metrics, check.Status == codingtypes.ComponentUp)
		}
	}

	resp := codingtypes.HealthResponse{Components: components}
	if allUp {
		resp.Status = codingtypes.HealthOK
		writeJSON(w, http.StatusOK, resp)
	} else {
		resp.Status = codingtypes.HealthUnavailable
		writeJSON(w, http.StatusServiceUnavailable, resp)
	}
}

// Detailed handles GET /healthz/detail, adding per-dependency latency and
// error text to the readiness picture.
func (h *HealthHandler) Detailed(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	results := h.checkAll(ctx)

	allUp := true
	for _, c := range results {
		if c.Status != codingtypes.ComponentUp {
			allUp = false
			break
		}
	}

	resp := struct {
		Status     string                    `json:"status"`
		Version    string                    `json:"version"`
		Uptime     string                    `json:"uptime"`
		Components map[string]componentCheck `json:"components"`
	}{
		Status:     codingtypes.HealthOK,
		Version:    h.version,
		Uptime:     time.Since(h.startAt).Truncate(time.Second).String(),
		Components: results,
	}

	code := http.StatusOK
	if !allUp {
		resp.Status = codingtypes.HealthUnavailable
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, resp)
}

// checkAll runs all checkers concurrently and collects their results.
func (h *HealthHandler) checkAll(ctx context.Context) map[string]componentCheck {
	results := make(map[string]componentCheck, len(h.checkers))
	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, checker := range h.checkers {
		wg.Add(1)
		go func(c HealthChecker) {
			defer wg.Done()

			start := time.Now()
			err := c.Check(ctx)
			latency := time.Since(start)

			cc := componentCheck{
				Status:  codingtypes.ComponentUp,
				Latency: latency.Truncate(time.Microsecond).String(),
			}
			if err != nil {
				cc.Status = codingtypes.ComponentDown
				cc.Error = err.Error()
			}

			mu.Lock()
			results[c.Name()] = cc
			mu.Unlock()
		}(checker)
	}

	wg.Wait()
	return results
}
