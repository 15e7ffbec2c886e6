// Package integration exercises the assembled coding service in-process:
// UMLS fixtures run through asset preparation, the dictionary store, the
// mention extractor, the full chi route tree, and the Go SDK, with only the
// NER tagger replaced by a local fake. Nothing here needs external services,
// so the suite runs under plain `go test`.
package integration

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/turtacn/MedCode-Intelligence/internal/application/coding"
	"github.com/turtacn/MedCode-Intelligence/internal/domain/terminology"
	"github.com/turtacn/MedCode-Intelligence/internal/infrastructure/assets"
	"github.com/turtacn/MedCode-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/MedCode-Intelligence/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/MedCode-Intelligence/internal/intelligence/disease_ner"
	httpapi "github.com/turtacn/MedCode-Intelligence/internal/interfaces/http"
	"github.com/turtacn/MedCode-Intelligence/internal/interfaces/http/handlers"
	"github.com/turtacn/MedCode-Intelligence/pkg/client"
	"github.com/turtacn/MedCode-Intelligence/pkg/errors"
)

// ---------------------------------------------------------------------------
// UMLS RRF fixtures
// ---------------------------------------------------------------------------

func mrstyLine(cui, tui string) string {
	return strings.Join([]string{cui, tui, "B2.2.1.2.1", "Disease or Syndrome", "AT17683839", ""}, "|") + "|"
}

func mrconsoLine(cui, lat, sab, code, str string) string {
	fields := []string{
		cui, lat, "P", "L0000001", "PF", "S0000001", "Y", "A0000001",
		"", "", "", sab, "PT", code, str, "0", "N", "",
	}
	return strings.Join(fields, "|") + "|"
}

// writeRRFFixtures lays down a small UMLS subset: two disorders with
// ICD-10-CM codes, a synonym without its own code, a Spanish row, and a
// non-disease concept. The latter two must not survive preparation.
func writeRRFFixtures(t *testing.T, dir string) (mrstyPath, mrconsoPath string) {
	t.Helper()

	mrstyPath = filepath.Join(dir, "MRSTY.RRF")
	mrconsoPath = filepath.Join(dir, "MRCONSO.RRF")

	mrsty := strings.Join([]string{
		mrstyLine("C0020538", "T047"),
		mrstyLine("C0017636", "T191"),
		mrstyLine("C0086418", "T121"),
	}, "\n") + "\n"
	require.NoError(t, os.WriteFile(mrstyPath, []byte(mrsty), 0o644))

	mrconso := strings.Join([]string{
		mrconsoLine("C0020538", "ENG", "ICD10CM", "I10", "Hypertension"),
		mrconsoLine("C0020538", "ENG", "MSH", "D006973", "Hypertensive disease"),
		mrconsoLine("C0020538", "SPA", "MSHSPA", "D006973", "Hipertensión"),
		mrconsoLine("C0017636", "ENG", "ICD10CM", "C71.9", "Glioblastoma"),
		mrconsoLine("C0086418", "ENG", "MSH", "D006801", "Captopril"),
	}, "\n") + "\n"
	require.NoError(t, os.WriteFile(mrconsoPath, []byte(mrconso), 0o644))

	return mrstyPath, mrconsoPath
}

// ---------------------------------------------------------------------------
// Fake NER tagger
// ---------------------------------------------------------------------------

// taggerSurface is one surface form the fake tagger recognizes by substring
// scan, with the label it reports for the span.
type taggerSurface struct {
	Surface string
	Label   string
}

// defaultSurfaces covers the mentions used across the suite, including a
// chemical span that the extractor must filter out by label.
var defaultSurfaces = []taggerSurface{
	{Surface: "HTN", Label: "DISEASE"},
	{Surface: "hypertension", Label: "DISEASE"},
	{Surface: "hypertenson", Label: "DISEASE"},
	{Surface: "glioblastoma", Label: "DISEASE"},
	{Surface: "Binswanger disease", Label: "DISEASE"},
	{Surface: "captopril", Label: "CHEMICAL"},
}

// fakeTagger implements the serving protocol of the NER endpoint: POST
// /v1/tag answers entity spans, GET /healthz answers the flagged state.
type fakeTagger struct {
	server   *httptest.Server
	surfaces []taggerSurface

	healthy atomic.Bool
	failing atomic.Bool
	// tagCalls counts /v1/tag requests, including failed ones.
	tagCalls atomic.Int64
}

func newFakeTagger(t *testing.T, surfaces []taggerSurface) *fakeTagger {
	t.Helper()

	ft := &fakeTagger{surfaces: surfaces}
	ft.healthy.Store(true)

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/tag", ft.handleTag)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if !ft.healthy.Load() {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	ft.server = httptest.NewServer(mux)
	t.Cleanup(ft.server.Close)
	return ft
}

func (ft *fakeTagger) handleTag(w http.ResponseWriter, r *http.Request) {
	ft.tagCalls.Add(1)
	if ft.failing.Load() {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	var req struct {
		Model string `json:"model"`
		Text  string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Model == "" {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	type entity struct {
		Text  string `json:"text"`
		Label string `json:"label"`
	}
	found := []entity{}
	haystack := strings.ToLower(req.Text)
	for _, s := range ft.surfaces {
		if strings.Contains(haystack, strings.ToLower(s.Surface)) {
			found = append(found, entity{Text: s.Surface, Label: s.Label})
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{"entities": found})
}

// URL returns the fake's base endpoint.
func (ft *fakeTagger) URL() string { return ft.server.URL }

// SetHealthy flips the /healthz answer.
func (ft *fakeTagger) SetHealthy(up bool) { ft.healthy.Store(up) }

// SetFailing makes /v1/tag answer 500 until reset.
func (ft *fakeTagger) SetFailing(fail bool) { ft.failing.Store(fail) }

// ---------------------------------------------------------------------------
// Environment assembly
// ---------------------------------------------------------------------------

// testEnv is the assembled stack: prepared assets, dictionary store, coding
// service, HTTP server, and an SDK client pointed at it.
type testEnv struct {
	Tagger *fakeTagger
	Store  *terminology.Store
	Server *httptest.Server
	SDK    *client.Client
}

// SetupTestEnvironment builds the whole service the way cmd/apiserver does,
// from RRF fixtures up, and tears it down with the test.
func SetupTestEnvironment(t *testing.T) *testEnv {
	t.Helper()

	logger := logging.NewNopLogger()
	dir := t.TempDir()

	mrstyPath, mrconsoPath := writeRRFFixtures(t, dir)
	assetsDir := filepath.Join(dir, "assets")
	require.NoError(t, assets.NewPreparer(logger).Prepare(mrstyPath, mrconsoPath, assetsDir))

	store, err := terminology.NewStore(assets.NewLoader(assetsDir, logger))
	require.NoError(t, err)

	fake := newFakeTagger(t, defaultSurfaces)
	tagger, err := disease_ner.NewHTTPTagger(disease_ner.TaggerConfig{
		Endpoint: fake.URL(),
		Model:    "en_ner_bc5cdr_md",
		Timeout:  5 * time.Second,
	}, logger)
	require.NoError(t, err)

	extractor, err := disease_ner.NewExtractor(tagger, disease_ner.DefaultDiseaseLabel, logger)
	require.NoError(t, err)

	collector, err := prometheus.NewMetricsCollector(prometheus.CollectorConfig{
		Namespace: "medcode",
	}, logger)
	require.NoError(t, err)
	appMetrics := prometheus.NewAppMetrics(collector)

	svc, err := coding.NewService(store, extractor, nil, nil, appMetrics, logger)
	require.NoError(t, err)

	router := httpapi.NewRouter(httpapi.RouterConfig{
		CodingHandler: handlers.NewCodingHandler(svc, appMetrics, 1<<20, logger),
		HealthHandler: handlers.NewHealthHandler("integration", appMetrics,
			handlers.NewChecker(handlers.CheckerDictionary, dictionaryCheck(store)),
			handlers.NewChecker(handlers.CheckerTagger, tagger.Healthy),
		),
		Logger:           logger,
		AppMetrics:       appMetrics,
		MetricsCollector: collector,
	})

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	sdk, err := client.NewClient(server.URL,
		client.WithRetryMax(1),
		client.WithRetryWait(time.Millisecond, 2*time.Millisecond),
	)
	require.NoError(t, err)

	return &testEnv{Tagger: fake, Store: store, Server: server, SDK: sdk}
}

// dictionaryCheck mirrors the apiserver's readiness adapter for the store.
func dictionaryCheck(store *terminology.Store) func(context.Context) error {
	return func(context.Context) error {
		if store.NumTerms() == 0 {
			return errors.Unavailable("terminology dictionary is empty")
		}
		return nil
	}
}
