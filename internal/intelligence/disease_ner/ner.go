// Package disease_ner extracts disease mentions from biomedical text.
//
// Entity recognition itself is delegated to an externally served NER model
// (reference model: en_ner_bc5cdr_md) reached over HTTP JSON; this package
// contains the client for that service and the dual-pass mention extractor
// built on top of it.
package disease_ner

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/turtacn/MedCode-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/MedCode-Intelligence/pkg/errors"
)

// Entity is a single labeled span returned by the tagger. Only the span
// text and its label are retained; resolution is offset-independent.
type Entity struct {
	Text  string `json:"text"`
	Label string `json:"label"`
}

// Tagger produces labeled entity spans for a piece of text. Span order is
// unspecified; callers needing deterministic output must sort themselves.
type Tagger interface {
	Tag(ctx context.Context, text string) ([]Entity, error)
}

// TaggerConfig holds the HTTP tagger client settings.
type TaggerConfig struct {
	// Endpoint is the base URL of the tagger service, e.g.
	// "http://localhost:8000".
	Endpoint string
	// Model is the NER model name the service should apply.
	Model string
	// Timeout bounds each tagging request.
	Timeout time.Duration
}

const defaultTagTimeout = 30 * time.Second

// HTTPTagger is a Tagger backed by a remote model-serving endpoint.
//
// Requests are never retried here; retry policy, if any, belongs to the
// caller.
type HTTPTagger struct {
	endpoint string
	model    string
	timeout  time.Duration
	client   *http.Client
	logger   logging.Logger
}

type tagRequest struct {
	Model string `json:"model"`
	Text  string `json:"text"`
}

type tagResponse struct {
	Entities []Entity `json:"entities"`
}

// NewHTTPTagger validates the configuration and returns a ready client.
func NewHTTPTagger(cfg TaggerConfig, logger logging.Logger) (*HTTPTagger, error) {
	if cfg.Endpoint == "" {
		return nil, errors.InvalidParam("tagger endpoint is required")
	}
	parsed, err := url.Parse(cfg.Endpoint)
	if err != nil {
		return nil, errors.InvalidParam(fmt.Sprintf("invalid tagger endpoint %q: %v", cfg.Endpoint, err))
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, errors.InvalidParam("tagger endpoint scheme must be http or https")
	}
	if cfg.Model == "" {
		return nil, errors.InvalidParam("tagger model is required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTagTimeout
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	return &HTTPTagger{
		endpoint: strings.TrimSuffix(cfg.Endpoint, "/"),
		model:    cfg.Model,
		timeout:  timeout,
		client:   &http.Client{},
		logger:   logger.Named("tagger"),
	}, nil
}

// Model returns the configured NER model name.
func (t *HTTPTagger) Model() string { return t.model }

// Tag sends the text to the tagger service and returns its labeled spans.
// The returned slice is non-nil on success, even when no entities were
// found.
func (t *HTTPTagger) Tag(ctx context.Context, text string) ([]Entity, error) {
	body, err := json.Marshal(tagRequest{Model: t.model, Text: text})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "encoding tagger request")
	}

	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint+"/v1/tag", bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "building tagger request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := t.client.Do(req)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, errors.Wrap(err, errors.ErrCodeTimeout, "tagger request timed out")
		}
		return nil, errors.Wrap(err, errors.ErrCodeTaggerUnavailable, "tagger request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, errors.New(errors.ErrCodeTaggerUnavailable,
			fmt.Sprintf("tagger returned HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(detail))))
	}

	var out tagResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeTaggerResponse, "decoding tagger response")
	}
	if out.Entities == nil {
		out.Entities = []Entity{}
	}

	t.logger.Debug("tagged text",
		logging.String("model", t.model),
		logging.Int("chars", len(text)),
		logging.Int("entities", len(out.Entities)),
		logging.Duration("elapsed", time.Since(start)))

	return out.Entities, nil
}

// Healthy probes the tagger service's health endpoint. A nil return means
// the service answered with HTTP 200.
func (t *HTTPTagger) Healthy(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.endpoint+"/healthz", nil)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "building tagger health request")
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeTaggerUnavailable, "tagger health check failed")
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 512))

	if resp.StatusCode != http.StatusOK {
		return errors.New(errors.ErrCodeTaggerUnavailable,
			fmt.Sprintf("tagger health check returned HTTP %d", resp.StatusCode))
	}
	return nil
}
