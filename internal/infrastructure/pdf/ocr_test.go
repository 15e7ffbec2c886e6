package pdf

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/MedCode-Intelligence/pkg/errors"
)

// sidecarWriter returns a runner fn that writes text to the path following
// the --sidecar flag, mimicking ocrmypdf's sidecar behavior.
func sidecarWriter(t *testing.T, text string) func(context.Context, string, ...string) ([]byte, error) {
	t.Helper()
	return func(_ context.Context, _ string, args ...string) ([]byte, error) {
		for i, arg := range args {
			if arg == "--sidecar" && i+1 < len(args) {
				require.NoError(t, os.WriteFile(args[i+1], []byte(text), 0o600))
				return nil, nil
			}
		}
		t.Fatal("no --sidecar flag in ocrmypdf args")
		return nil, nil
	}
}

func TestOCR_ExtractText(t *testing.T) {
	runner := &fakeRunner{fn: sidecarWriter(t, "OCR   output\n\nsecond   page\n")}
	o := NewOCR("eng", 0, nil)
	o.runner = runner

	text, err := o.ExtractText(context.Background(), "/docs/scan.pdf", []int{2, 5})
	require.NoError(t, err)
	assert.Equal(t, "OCR output\n\nsecond page", text)

	require.Len(t, runner.calls, 1)
	call := runner.calls[0]
	assert.Equal(t, "ocrmypdf", call[0])

	args := call[1:]
	require.Len(t, args, 14)
	assert.Equal(t, []string{"-l", "eng", "--force-ocr", "-r", "-d", "-c", "--output-type", "none"}, args[:8])
	assert.Equal(t, "--sidecar", args[8])
	assert.Equal(t, []string{"--pages", "2,5"}, args[10:12])
	assert.Equal(t, []string{"/docs/scan.pdf", "-"}, args[12:])
}

func TestOCR_ExtractText_WholeDocumentOmitsPages(t *testing.T) {
	runner := &fakeRunner{fn: sidecarWriter(t, "text")}
	o := NewOCR("", 0, nil)
	o.runner = runner

	_, err := o.ExtractText(context.Background(), "/docs/scan.pdf", nil)
	require.NoError(t, err)

	require.Len(t, runner.calls, 1)
	assert.NotContains(t, runner.calls[0], "--pages")
}

func TestOCR_ExtractText_CommandFailure(t *testing.T) {
	runner := &fakeRunner{fn: func(_ context.Context, _ string, _ ...string) ([]byte, error) {
		return nil, assert.AnError
	}}
	o := NewOCR("eng", 0, nil)
	o.runner = runner

	_, err := o.ExtractText(context.Background(), "/docs/scan.pdf", nil)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeOCRFailed))
}

func TestOCR_ExtractText_Timeout(t *testing.T) {
	runner := &fakeRunner{fn: func(ctx context.Context, _ string, _ ...string) ([]byte, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}}
	o := NewOCR("eng", 10*time.Millisecond, nil)
	o.runner = runner

	_, err := o.ExtractText(context.Background(), "/docs/scan.pdf", nil)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeTimeout))
}

func TestOCR_ExtractText_MissingSidecar(t *testing.T) {
	// Runner succeeds but never writes the sidecar file.
	runner := &fakeRunner{}
	o := NewOCR("eng", 0, nil)
	o.runner = runner

	_, err := o.ExtractText(context.Background(), "/docs/scan.pdf", nil)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeOCRFailed))
	assert.Contains(t, err.Error(), "sidecar")
}

func TestNewOCR_Defaults(t *testing.T) {
	o := NewOCR("", 0, nil)
	assert.Equal(t, defaultOCRLanguages, o.languages)
	assert.Equal(t, defaultOCRTimeout, o.timeout)

	o = NewOCR("eng+deu", 5*time.Minute, nil)
	assert.Equal(t, "eng+deu", o.languages)
	assert.Equal(t, 5*time.Minute, o.timeout)
}
