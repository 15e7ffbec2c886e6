// Package errors_test contains unit tests for the AppError type, its factory
// functions, and the error-chain helpers.
package errors_test

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/turtacn/MedCode-Intelligence/pkg/errors"
)

func TestNew_FieldsAreSetCorrectly(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		code    errors.ErrorCode
		message string
	}{
		{"internal error", errors.ErrCodeInternal, "unexpected failure"},
		{"asset missing", errors.ErrCodeAssetMissing, "term_to_cuis.json not found"},
		{"invalid param", errors.ErrCodeBadRequest, "text must not be empty"},
		{"tagger unavailable", errors.ErrCodeTaggerUnavailable, "connection refused"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ae := errors.New(tc.code, tc.message)

			require.NotNil(t, ae)
			assert.Equal(t, tc.code, ae.Code)
			assert.Equal(t, tc.message, ae.Message)
			assert.Empty(t, ae.Detail, "Detail should be empty for bare New()")
			assert.Nil(t, ae.Cause, "Cause should be nil for bare New()")
		})
	}
}

func TestError_Format(t *testing.T) {
	t.Parallel()

	ae := errors.New(errors.ErrCodeOCRFailed, "ocrmypdf failed")
	assert.Equal(t, "[DOC_003] ocrmypdf failed", ae.Error())

	withDetail := ae.WithDetail("exit status 2")
	assert.Equal(t, "[DOC_003] ocrmypdf failed: exit status 2", withDetail.Error())
	assert.Empty(t, ae.Detail, "WithDetail must not mutate the receiver")
}

func TestWrap_NilErrReturnsNil(t *testing.T) {
	t.Parallel()

	assert.Nil(t, errors.Wrap(nil, errors.ErrCodeInternal, "should not matter"))
}

func TestWrap_CauseChainIsPreserved(t *testing.T) {
	t.Parallel()

	root := stderrors.New("read /assets/cui_to_icd.json: no such file")
	wrapped := errors.Wrap(root, errors.ErrCodeAssetMissing, "dictionary load failed")

	require.NotNil(t, wrapped)
	assert.Equal(t, errors.ErrCodeAssetMissing, wrapped.Code)
	assert.Equal(t, "dictionary load failed", wrapped.Message)
	assert.Equal(t, root, wrapped.Cause)
	assert.Equal(t, root, stderrors.Unwrap(wrapped))
	assert.True(t, stderrors.Is(wrapped, root))
}

func TestWrap_UnknownCodePreservesOriginal(t *testing.T) {
	t.Parallel()

	inner := errors.New(errors.ErrCodeTaggerResponse, "entities field missing")
	outer := errors.Wrap(inner, errors.CodeUnknown, "extraction failed")

	require.NotNil(t, outer)
	assert.Equal(t, errors.ErrCodeTaggerResponse, outer.Code,
		"wrapping with CodeUnknown must keep the inner classification")
}

func TestIsCode_TraversesChain(t *testing.T) {
	t.Parallel()

	inner := errors.Timeout("pdftotext timed out")
	mid := errors.Wrap(inner, errors.ErrCodePDFExtractFailed, "extraction failed")
	outer := fmt.Errorf("pipeline aborted: %w", mid)

	assert.True(t, errors.IsCode(outer, errors.ErrCodeTimeout))
	assert.True(t, errors.IsCode(outer, errors.ErrCodePDFExtractFailed))
	assert.False(t, errors.IsCode(outer, errors.ErrCodeOCRFailed))
	assert.True(t, errors.IsTimeout(outer))
}

func TestIsNotFound(t *testing.T) {
	t.Parallel()

	assert.True(t, errors.IsNotFound(errors.NotFound("no such term")))
	assert.False(t, errors.IsNotFound(errors.Internal("boom")))
	assert.False(t, errors.IsNotFound(nil))
}

func TestGetCode(t *testing.T) {
	t.Parallel()

	assert.Equal(t, errors.CodeOK, errors.GetCode(nil))
	assert.Equal(t, errors.CodeUnknown, errors.GetCode(stderrors.New("plain")))
	assert.Equal(t, errors.ErrCodeRRFFormat,
		errors.GetCode(errors.New(errors.ErrCodeRRFFormat, "short row")))

	wrapped := fmt.Errorf("outer: %w", errors.Unavailable("tagger down"))
	assert.Equal(t, errors.ErrCodeServiceUnavailable, errors.GetCode(wrapped))
}

func TestAsAppError(t *testing.T) {
	t.Parallel()

	ae, ok := errors.AsAppError(errors.InvalidParam("text must not be empty"))
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeBadRequest, ae.Code)
	assert.Equal(t, "text must not be empty", ae.Message)

	wrapped := fmt.Errorf("outer: %w", errors.Unavailable("tagger down"))
	ae, ok = errors.AsAppError(wrapped)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeServiceUnavailable, ae.Code)

	_, ok = errors.AsAppError(stderrors.New("plain"))
	assert.False(t, ok)
	_, ok = errors.AsAppError(nil)
	assert.False(t, ok)
}

func TestFactories_CodeAssignment(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		err  *errors.AppError
		code errors.ErrorCode
	}{
		{"NotFound", errors.NotFound("x"), errors.ErrCodeNotFound},
		{"InvalidParam", errors.InvalidParam("x"), errors.ErrCodeBadRequest},
		{"Internal", errors.Internal("x"), errors.ErrCodeInternal},
		{"Timeout", errors.Timeout("x"), errors.ErrCodeTimeout},
		{"Unavailable", errors.Unavailable("x"), errors.ErrCodeServiceUnavailable},
		{"Validation", errors.Validation("x"), errors.ErrCodeValidation},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			require.NotNil(t, tc.err)
			assert.Equal(t, tc.code, tc.err.Code)
		})
	}
}

func TestWithCause_DoesNotMutateReceiver(t *testing.T) {
	t.Parallel()

	base := errors.Internal("base")
	cause := stderrors.New("root")
	withCause := base.WithCause(cause)

	assert.Nil(t, base.Cause)
	require.NotNil(t, withCause)
	assert.Equal(t, cause, withCause.Cause)
}

func TestNilReceiver_BuildersAreSafe(t *testing.T) {
	t.Parallel()

	var ae *errors.AppError
	assert.Nil(t, ae.WithDetail("detail"))
	assert.Nil(t, ae.WithCause(stderrors.New("x")))
}
