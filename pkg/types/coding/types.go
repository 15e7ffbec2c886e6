// Package coding defines the public wire types of the diagnosis-coding API,
// shared by the HTTP handlers, the Go client, and the CLI output layer.
package coding

import (
	"fmt"
	"strings"
)

// Row is one line of coding output: a disease mention paired with one
// resolved dictionary term. A mention that could not be resolved produces a
// single Row whose Matched, Score, CUI, and ICDCodes fields are empty
// strings. All fields are strings; absence is the empty string, never null.
type Row struct {
	Mention  string `json:"mention"`
	Matched  string `json:"matched"`
	Score    string `json:"score"`
	CUI      string `json:"cui"`
	ICDCodes string `json:"icd_codes"`
}

// CodeRequest asks the service to extract and resolve disease mentions from
// free text. Zero values for FuzzyLimit and FuzzyThreshold select the
// service defaults.
type CodeRequest struct {
	Text           string  `json:"text"`
	FuzzyLimit     int     `json:"fuzzy_limit,omitempty"`
	FuzzyThreshold float64 `json:"fuzzy_threshold,omitempty"`
}

// Validate checks the request bounds.
func (r CodeRequest) Validate() error {
	if strings.TrimSpace(r.Text) == "" {
		return fmt.Errorf("text must not be empty")
	}
	if r.FuzzyLimit < 0 {
		return fmt.Errorf("fuzzy_limit must be >= 0")
	}
	if r.FuzzyThreshold < 0 || r.FuzzyThreshold > 100 {
		return fmt.Errorf("fuzzy_threshold must be between 0 and 100")
	}
	return nil
}

// CodeResponse carries the resolved rows. MentionCount is the number of
// unique mentions extracted, which can differ from len(Rows) when a mention
// resolves to several concepts.
type CodeResponse struct {
	Rows         []Row `json:"rows"`
	MentionCount int   `json:"mention_count"`
}

// NormalizeRequest asks for the canonical form of a single term.
type NormalizeRequest struct {
	Term string `json:"term"`
}

// NormalizeResponse returns the canonical form and whether it is a usable
// mention (contains at least one letter or digit).
type NormalizeResponse struct {
	Normalized string `json:"normalized"`
	Valid      bool   `json:"valid"`
}

// ErrorDetail is the wire form of an application error.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorEnvelope wraps ErrorDetail in the response body of failed requests.
type ErrorEnvelope struct {
	Error ErrorDetail `json:"error"`
}

// Health states reported by /healthz and /readyz.
const (
	HealthOK          = "ok"
	HealthUnavailable = "unavailable"

	ComponentUp   = "up"
	ComponentDown = "down"
)

// HealthResponse reports service health. Components is populated by the
// readiness endpoint only; Version and Uptime by the liveness endpoint.
type HealthResponse struct {
	Status     string            `json:"status"`
	Version    string            `json:"version,omitempty"`
	Uptime     string            `json:"uptime,omitempty"`
	Components map[string]string `json:"components,omitempty"`
}
