// Package pdf acquires document text by shelling out to poppler-utils
// (pdftotext, pdfimages) and ocrmypdf. Every invocation is bounded by a
// configured timeout through the command context; failures carry the tool's
// stderr output in the error detail.
package pdf

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/turtacn/MedCode-Intelligence/internal/domain/document"
	"github.com/turtacn/MedCode-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/MedCode-Intelligence/pkg/errors"
)

const defaultPopplerTimeout = 180 * time.Second

// commandRunner executes an external command and returns its stdout. The
// indirection exists so tests can substitute a fake without spawning
// processes.
type commandRunner interface {
	run(ctx context.Context, name string, args ...string) ([]byte, error)
}

type execRunner struct{}

func (execRunner) run(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if detail := strings.TrimSpace(stderr.String()); detail != "" {
			return nil, fmt.Errorf("%w: %s", err, detail)
		}
		return nil, err
	}
	return stdout.Bytes(), nil
}

// Poppler wraps the poppler-utils command-line tools.
type Poppler struct {
	timeout time.Duration
	logger  logging.Logger
	runner  commandRunner
}

// NewPoppler returns a Poppler bounded by the given per-invocation timeout.
// A non-positive timeout selects the 180s default.
func NewPoppler(timeout time.Duration, logger logging.Logger) *Poppler {
	if timeout <= 0 {
		timeout = defaultPopplerTimeout
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Poppler{
		timeout: timeout,
		logger:  logger.Named("poppler"),
		runner:  execRunner{},
	}
}

// ExtractText returns the embedded text of the PDF via `pdftotext <pdf> -`,
// with control/noncharacter codepoints removed and per-line whitespace
// compressed. PDFs without an embedded text layer yield an empty string,
// not an error.
func (p *Poppler) ExtractText(ctx context.Context, pdfPath string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	p.logger.Debug("extracting embedded text", logging.String("pdf", pdfPath))
	out, err := p.runner.run(ctx, "pdftotext", pdfPath, "-")
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return "", errors.Wrap(err, errors.ErrCodeTimeout, "pdftotext timed out")
		}
		return "", errors.Wrap(err, errors.ErrCodePDFExtractFailed, "pdftotext failed")
	}

	text := document.CleanPrintable(string(out))
	return document.CompressLineWhitespace(text), nil
}

// ImagePages returns the sorted unique 1-based page numbers that contain at
// least one raster image, parsed from `pdfimages -list` output. These are
// the pages worth sending to OCR.
func (p *Poppler) ImagePages(ctx context.Context, pdfPath string) ([]int, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	p.logger.Debug("listing image pages", logging.String("pdf", pdfPath))
	out, err := p.runner.run(ctx, "pdfimages", "-list", pdfPath)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, errors.Wrap(err, errors.ErrCodeTimeout, "pdfimages timed out")
		}
		return nil, errors.Wrap(err, errors.ErrCodePageScanFailed, "pdfimages failed")
	}

	return parseImagePages(out), nil
}

// ExtractPageImages writes the raster images of one 1-based page into
// destDir via `pdfimages -f N -l N <pdf> <prefix>` and returns the sorted
// paths of the image files produced. The caller owns destDir.
func (p *Poppler) ExtractPageImages(ctx context.Context, pdfPath string, page int, destDir string) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	prefix := filepath.Join(destDir, fmt.Sprintf("page_%d", page))
	p.logger.Debug("extracting page images",
		logging.String("pdf", pdfPath),
		logging.Int("page", page))

	pageArg := strconv.Itoa(page)
	if _, err := p.runner.run(ctx, "pdfimages", "-f", pageArg, "-l", pageArg, pdfPath, prefix); err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, errors.Wrap(err, errors.ErrCodeTimeout, "pdfimages timed out")
		}
		return nil, errors.Wrap(err, errors.ErrCodePageScanFailed, "pdfimages failed")
	}

	images, err := filepath.Glob(prefix + "-*")
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodePageScanFailed, "globbing extracted images")
	}
	sort.Strings(images)
	return images, nil
}

// parseImagePages extracts page numbers from `pdfimages -list` output.
// Header and rule lines do not start with a digit and are skipped; each
// remaining row's first column is the page number.
func parseImagePages(out []byte) []int {
	seen := make(map[int]struct{})
	for _, line := range strings.Split(string(out), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || line[0] < '0' || line[0] > '9' {
			continue
		}
		page, err := strconv.Atoi(strings.Fields(line)[0])
		if err != nil {
			continue
		}
		seen[page] = struct{}{}
	}

	pages := make([]int, 0, len(seen))
	for page := range seen {
		pages = append(pages, page)
	}
	sort.Ints(pages)
	return pages
}
