// Package coding orchestrates the document-to-code workflow: text
// acquisition from PDFs, disease mention extraction, and resolution of each
// mention to medical concepts and diagnosis codes. This package sits between
// the HTTP/CLI surfaces and the domain logic.
package coding

import (
	"context"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/turtacn/MedCode-Intelligence/internal/domain/document"
	"github.com/turtacn/MedCode-Intelligence/internal/domain/terminology"
	"github.com/turtacn/MedCode-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/MedCode-Intelligence/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/MedCode-Intelligence/internal/intelligence/disease_matcher"
	"github.com/turtacn/MedCode-Intelligence/pkg/errors"
	codingtypes "github.com/turtacn/MedCode-Intelligence/pkg/types/coding"
)

// Fuzzy-stage defaults, applied when Options fields are non-positive.
const (
	DefaultFuzzyLimit     = 3
	DefaultFuzzyThreshold = 85.0
)

// Operation labels for pipeline run metrics.
const (
	opResolveText     = "resolve_text"
	opProcessDocument = "process_document"
)

// Options tune one pipeline run.
type Options struct {
	// FuzzyLimit caps the number of fuzzy candidates ranked per mention.
	FuzzyLimit int
	// FuzzyThreshold is the minimum similarity score (0-100) a fuzzy
	// candidate must reach.
	FuzzyThreshold float64
	// Deduplicate merges embedded and OCR text as a sorted union of their
	// stripped lines instead of concatenating the two texts.
	Deduplicate bool
}

func (o Options) withDefaults() Options {
	if o.FuzzyLimit <= 0 {
		o.FuzzyLimit = DefaultFuzzyLimit
	}
	if o.FuzzyThreshold <= 0 {
		o.FuzzyThreshold = DefaultFuzzyThreshold
	}
	return o
}

// TextExtractor recovers embedded text and locates image-bearing pages.
// *pdf.Poppler satisfies it.
type TextExtractor interface {
	ExtractText(ctx context.Context, pdfPath string) (string, error)
	ImagePages(ctx context.Context, pdfPath string) ([]int, error)
}

// OCRExtractor recovers text from scanned pages. *pdf.OCR satisfies it.
type OCRExtractor interface {
	ExtractText(ctx context.Context, pdfPath string, pages []int) (string, error)
}

// MentionExtractor finds disease mentions in free text.
// *disease_ner.Extractor satisfies it.
type MentionExtractor interface {
	ExtractMentions(ctx context.Context, text string) ([]string, error)
}

// Service defines the coding application operations.
type Service interface {
	// ResolveText extracts disease mentions from text and resolves each one.
	// Every mention produces at least one row: one per match when resolution
	// succeeds, or a single row with empty match fields when it does not.
	ResolveText(ctx context.Context, text string, opts Options) ([]codingtypes.Row, error)

	// ProcessDocument runs the full workflow on a PDF file: text extraction
	// (embedded plus OCR of image-bearing pages), then ResolveText.
	ProcessDocument(ctx context.Context, pdfPath string, opts Options) ([]codingtypes.Row, error)

	// ExtractAllText returns the merged embedded and OCR text of a PDF,
	// whitespace-trimmed.
	ExtractAllText(ctx context.Context, pdfPath string, deduplicate bool) (string, error)
}

// serviceImpl implements Service. The terminology store is shared and
// read-only; every run constructs its own resolver so fuzzy caches never
// leak between runs.
type serviceImpl struct {
	store     *terminology.Store
	extractor MentionExtractor
	pdf       TextExtractor
	ocr       OCRExtractor
	metrics   *prometheus.AppMetrics
	logger    logging.Logger
}

// NewService creates the coding service. pdfExtractor and ocrExtractor may
// be nil for a text-only deployment; ProcessDocument and ExtractAllText
// then fail with an internal error. metrics may be nil to disable metric
// recording.
func NewService(
	store *terminology.Store,
	extractor MentionExtractor,
	pdfExtractor TextExtractor,
	ocrExtractor OCRExtractor,
	metrics *prometheus.AppMetrics,
	logger logging.Logger,
) (Service, error) {
	if store == nil {
		return nil, errors.InvalidParam("terminology store is required")
	}
	if extractor == nil {
		return nil, errors.InvalidParam("mention extractor is required")
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &serviceImpl{
		store:     store,
		extractor: extractor,
		pdf:       pdfExtractor,
		ocr:       ocrExtractor,
		metrics:   metrics,
		logger:    logger.Named("coding"),
	}, nil
}

// runLogger tags every entry of one pipeline run with a fresh run ID so
// concurrent runs stay separable in the logs.
func (s *serviceImpl) runLogger() logging.Logger {
	return s.logger.With(logging.String("run_id", uuid.NewString()))
}

func (s *serviceImpl) ResolveText(ctx context.Context, text string, opts Options) ([]codingtypes.Row, error) {
	rows, err := s.resolveText(ctx, s.runLogger(), text, opts)
	prometheus.RecordPipelineRun(s.metrics, opResolveText, err)
	return rows, err
}

func (s *serviceImpl) ProcessDocument(ctx context.Context, pdfPath string, opts Options) ([]codingtypes.Row, error) {
	logger := s.runLogger()
	logger.Info("processing document", logging.String("pdf", pdfPath))

	text, err := s.extractAllText(ctx, logger, pdfPath, opts.Deduplicate)
	if err != nil {
		prometheus.RecordPipelineRun(s.metrics, opProcessDocument, err)
		return nil, err
	}

	rows, err := s.resolveText(ctx, logger, text, opts)
	prometheus.RecordPipelineRun(s.metrics, opProcessDocument, err)
	return rows, err
}

func (s *serviceImpl) ExtractAllText(ctx context.Context, pdfPath string, deduplicate bool) (string, error) {
	return s.extractAllText(ctx, s.runLogger(), pdfPath, deduplicate)
}

func (s *serviceImpl) resolveText(ctx context.Context, logger logging.Logger, text string, opts Options) ([]codingtypes.Row, error) {
	opts = opts.withDefaults()

	timer := prometheus.StageTimer(s.metrics, prometheus.StageExtractMentions)
	mentions, err := s.extractor.ExtractMentions(ctx, text)
	timer.ObserveDuration()
	if err != nil {
		return nil, err
	}
	prometheus.RecordMentions(s.metrics, len(mentions))

	resolver := disease_matcher.NewResolver(s.store, logger)

	timer = prometheus.StageTimer(s.metrics, prometheus.StageResolve)
	defer timer.ObserveDuration()

	rows := make([]codingtypes.Row, 0, len(mentions))
	for _, mention := range mentions {
		matches := resolver.BestMatch(mention, opts.FuzzyLimit, opts.FuzzyThreshold)
		if len(matches) == 0 {
			prometheus.RecordResolution(s.metrics, prometheus.OutcomeUnresolved)
			rows = append(rows, codingtypes.Row{Mention: mention})
			continue
		}

		outcome := prometheus.OutcomeFuzzy
		if matches[0].Score == 100 {
			outcome = prometheus.OutcomeExact
		}
		prometheus.RecordResolution(s.metrics, outcome)

		for _, match := range matches {
			rows = append(rows, codingtypes.Row{
				Mention:  mention,
				Matched:  match.Matched,
				Score:    strconv.FormatFloat(match.Score, 'g', -1, 64),
				CUI:      match.Concept,
				ICDCodes: strings.Join(match.Codes, ","),
			})
		}
	}

	logger.Debug("mentions resolved",
		logging.Int("mentions", len(mentions)),
		logging.Int("rows", len(rows)),
		logging.Int("fuzzy_cache", resolver.FuzzyCacheSize()))
	return rows, nil
}

// extractAllText recovers embedded text, OCRs the image-bearing pages when
// there are any, and merges the two texts. With deduplicate the merge is the
// sorted union of stripped lines; otherwise plain concatenation. The result
// is whitespace-trimmed either way.
func (s *serviceImpl) extractAllText(ctx context.Context, logger logging.Logger, pdfPath string, deduplicate bool) (string, error) {
	if s.pdf == nil || s.ocr == nil {
		return "", errors.New(errors.ErrCodeInternal, "document processing is not configured")
	}

	timer := prometheus.StageTimer(s.metrics, prometheus.StageExtractText)
	embedded, err := s.pdf.ExtractText(ctx, pdfPath)
	timer.ObserveDuration()
	if err != nil {
		return "", err
	}

	timer = prometheus.StageTimer(s.metrics, prometheus.StageScanImages)
	pages, err := s.pdf.ImagePages(ctx, pdfPath)
	timer.ObserveDuration()
	if err != nil {
		return "", err
	}

	var ocrText string
	if len(pages) > 0 {
		timer = prometheus.StageTimer(s.metrics, prometheus.StageOCR)
		ocrText, err = s.ocr.ExtractText(ctx, pdfPath, pages)
		timer.ObserveDuration()
		if err != nil {
			return "", err
		}
	}

	logger.Debug("document text extracted",
		logging.String("pdf", pdfPath),
		logging.Int("embedded_chars", len(embedded)),
		logging.Int("image_pages", len(pages)),
		logging.Int("ocr_chars", len(ocrText)))

	var merged string
	if deduplicate {
		merged = document.MergeDedupedLines(embedded, ocrText)
	} else {
		merged = embedded + "\n" + ocrText
	}
	return strings.TrimSpace(merged), nil
}
