package pdf

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/turtacn/MedCode-Intelligence/internal/domain/document"
	"github.com/turtacn/MedCode-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/MedCode-Intelligence/pkg/errors"
)

const (
	defaultOCRLanguages = "eng"
	defaultOCRTimeout   = 600 * time.Second
)

// OCR wraps ocrmypdf, reading recognized text from its sidecar file. The
// PDF output itself is discarded (--output-type none); only the text layer
// matters here.
type OCR struct {
	languages string
	timeout   time.Duration
	logger    logging.Logger
	runner    commandRunner
}

// NewOCR returns an OCR extractor for the given tesseract language spec
// (e.g. "eng" or "eng+deu"). Zero values select the defaults.
func NewOCR(languages string, timeout time.Duration, logger logging.Logger) *OCR {
	if languages == "" {
		languages = defaultOCRLanguages
	}
	if timeout <= 0 {
		timeout = defaultOCRTimeout
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &OCR{
		languages: languages,
		timeout:   timeout,
		logger:    logger.Named("ocr"),
		runner:    execRunner{},
	}
}

// ExtractText OCRs the PDF and returns the sidecar text with per-line
// whitespace compressed. A non-empty pages list restricts recognition to
// those 1-based pages; nil means the whole document.
func (o *OCR) ExtractText(ctx context.Context, pdfPath string, pages []int) (string, error) {
	tmpDir, err := os.MkdirTemp("", "medcode-ocr-")
	if err != nil {
		return "", errors.Wrap(err, errors.ErrCodeOCRFailed, "creating OCR scratch directory")
	}
	defer os.RemoveAll(tmpDir)
	sidecar := filepath.Join(tmpDir, "output.txt")

	args := []string{
		"-l", o.languages,
		"--force-ocr",
		"-r",
		"-d",
		"-c",
		"--output-type", "none",
		"--sidecar", sidecar,
	}
	if len(pages) > 0 {
		args = append(args, "--pages", joinPages(pages))
	}
	args = append(args, pdfPath, "-")

	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	o.logger.Debug("running OCR",
		logging.String("pdf", pdfPath),
		logging.String("languages", o.languages),
		logging.Int("pages", len(pages)))

	if _, err := o.runner.run(ctx, "ocrmypdf", args...); err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return "", errors.Wrap(err, errors.ErrCodeTimeout, "ocrmypdf timed out")
		}
		return "", errors.Wrap(err, errors.ErrCodeOCRFailed, "ocrmypdf failed")
	}

	text, err := os.ReadFile(sidecar)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrCodeOCRFailed, "reading OCR sidecar text")
	}
	return document.CompressLineWhitespace(string(text)), nil
}

func joinPages(pages []int) string {
	parts := make([]string, len(pages))
	for i, page := range pages {
		parts[i] = strconv.Itoa(page)
	}
	return strings.Join(parts, ",")
}
