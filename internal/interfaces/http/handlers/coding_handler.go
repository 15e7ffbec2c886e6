package handlers

import (
	"net/http"
	"strings"

	"github.com/turtacn/MedCode-Intelligence/internal/application/coding"
	"github.com/turtacn/MedCode-Intelligence/internal/domain/document"
	"github.com/turtacn/MedCode-Intelligence/internal/domain/terminology"
	"github.com/turtacn/MedCode-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/MedCode-Intelligence/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/MedCode-Intelligence/pkg/errors"
	codingtypes "github.com/turtacn/MedCode-Intelligence/pkg/types/coding"
)

// CodingHandler handles HTTP requests for disease-mention extraction and
// diagnosis-code resolution.
type CodingHandler struct {
	svc     coding.Service
	metrics *prometheus.AppMetrics
	maxBody int64
	logger  logging.Logger
}

// NewCodingHandler creates a CodingHandler.  maxBody bounds accepted request
// bodies, zero disables the limit.  metrics may be nil.
func NewCodingHandler(svc coding.Service, metrics *prometheus.AppMetrics, maxBody int64, logger logging.Logger) *CodingHandler {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &CodingHandler{
		svc:     svc,
		metrics: metrics,
		maxBody: maxBody,
		logger:  logger.Named("api"),
	}
}

// Code handles POST /api/v1/code.  The submitted text is stripped of
// non-printable characters before extraction, mirroring what the document
// pipeline does to PDF-derived text.
func (h *CodingHandler) Code(w http.ResponseWriter, r *http.Request) {
	var req codingtypes.CodeRequest
	if err := decodeJSON(w, r, h.maxBody, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, errors.InvalidParam(err.Error()))
		return
	}

	text := document.CleanPrintable(req.Text)
	rows, err := h.svc.ResolveText(r.Context(), text, coding.Options{
		FuzzyLimit:     req.FuzzyLimit,
		FuzzyThreshold: req.FuzzyThreshold,
	})
	if err != nil {
		h.logger.Error("text coding failed", logging.Err(err))
		prometheus.RecordError(h.metrics, "api", errors.GetCode(err).String())
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, codingtypes.CodeResponse{
		Rows:         rows,
		MentionCount: countMentions(rows),
	})
}

// Normalize handles POST /api/v1/normalize.
func (h *CodingHandler) Normalize(w http.ResponseWriter, r *http.Request) {
	var req codingtypes.NormalizeRequest
	if err := decodeJSON(w, r, h.maxBody, &req); err != nil {
		writeError(w, err)
		return
	}
	if strings.TrimSpace(req.Term) == "" {
		writeError(w, errors.InvalidParam("term must not be empty"))
		return
	}

	writeJSON(w, http.StatusOK, codingtypes.NormalizeResponse{
		Normalized: terminology.Normalize(req.Term),
		Valid:      terminology.IsValidMention(req.Term),
	})
}

// countMentions counts mention groups in rows.  Rows arrive grouped per
// mention and mentions are unique, so counting group boundaries is exact.
func countMentions(rows []codingtypes.Row) int {
	count := 0
	for i, row := range rows {
		if i == 0 || row.Mention != rows[i-1].Mention {
			count++
		}
	}
	return count
}
