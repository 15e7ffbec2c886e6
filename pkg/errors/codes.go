package errors

import (
	"net/http"
	"strings"
)

// ErrorCode is the typed identifier of a failure category.  Codes are
// module-prefixed strings so that log queries and metric labels can be
// aggregated per subsystem.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common error codes shared by every layer.
const (
	ErrCodeInternal           ErrorCode = "COMMON_001"
	ErrCodeBadRequest         ErrorCode = "COMMON_002"
	ErrCodeNotFound           ErrorCode = "COMMON_003"
	ErrCodeTimeout            ErrorCode = "COMMON_004"
	ErrCodeServiceUnavailable ErrorCode = "COMMON_005"
	ErrCodeValidation         ErrorCode = "COMMON_006"
	ErrCodeSerialization      ErrorCode = "COMMON_007"
	ErrCodeNotImplemented     ErrorCode = "COMMON_008"
)

// Terminology dictionary error codes.  Raised while preparing UMLS-derived
// assets or while building the in-memory dictionary at startup.
const (
	ErrCodeAssetMissing   ErrorCode = "TERM_001"
	ErrCodeAssetMalformed ErrorCode = "TERM_002"
	ErrCodeRRFFormat      ErrorCode = "TERM_003"
)

// Document acquisition error codes.  Raised by the poppler / OCR subprocess
// wrappers while extracting text from a PDF.
const (
	ErrCodePDFExtractFailed ErrorCode = "DOC_001"
	ErrCodePageScanFailed   ErrorCode = "DOC_002"
	ErrCodeOCRFailed        ErrorCode = "DOC_003"
)

// Entity tagger error codes.  Raised by the NER serving client.
const (
	ErrCodeTaggerUnavailable ErrorCode = "TAG_001"
	ErrCodeTaggerResponse    ErrorCode = "TAG_002"
)

// Sentinel codes used by chain-inspection helpers.
const (
	CodeOK      ErrorCode = "OK"
	CodeUnknown ErrorCode = "UNKNOWN"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes for the API layer.
var ErrorCodeHTTPStatus = map[ErrorCode]int{
	ErrCodeInternal:           http.StatusInternalServerError,
	ErrCodeBadRequest:         http.StatusBadRequest,
	ErrCodeNotFound:           http.StatusNotFound,
	ErrCodeTimeout:            http.StatusGatewayTimeout,
	ErrCodeServiceUnavailable: http.StatusServiceUnavailable,
	ErrCodeValidation:         http.StatusUnprocessableEntity,
	ErrCodeSerialization:      http.StatusInternalServerError,
	ErrCodeNotImplemented:     http.StatusNotImplemented,

	ErrCodeAssetMissing:   http.StatusInternalServerError,
	ErrCodeAssetMalformed: http.StatusInternalServerError,
	ErrCodeRRFFormat:      http.StatusInternalServerError,

	ErrCodePDFExtractFailed: http.StatusInternalServerError,
	ErrCodePageScanFailed:   http.StatusInternalServerError,
	ErrCodeOCRFailed:        http.StatusInternalServerError,

	ErrCodeTaggerUnavailable: http.StatusBadGateway,
	ErrCodeTaggerResponse:    http.StatusBadGateway,
}

// ErrorCodeMessage maps error codes to default human-readable messages.
var ErrorCodeMessage = map[ErrorCode]string{
	ErrCodeInternal:           "internal server error",
	ErrCodeBadRequest:         "bad request",
	ErrCodeNotFound:           "resource not found",
	ErrCodeTimeout:            "operation timed out",
	ErrCodeServiceUnavailable: "service unavailable",
	ErrCodeValidation:         "validation failed",
	ErrCodeSerialization:      "serialization failed",
	ErrCodeNotImplemented:     "not implemented",

	ErrCodeAssetMissing:   "terminology asset missing",
	ErrCodeAssetMalformed: "terminology asset malformed",
	ErrCodeRRFFormat:      "malformed UMLS RRF data",

	ErrCodePDFExtractFailed: "embedded PDF text extraction failed",
	ErrCodePageScanFailed:   "PDF image page scan failed",
	ErrCodeOCRFailed:        "OCR text extraction failed",

	ErrCodeTaggerUnavailable: "entity tagger unavailable",
	ErrCodeTaggerResponse:    "invalid entity tagger response",
}

// HTTPStatusForCode returns the HTTP status for a code, defaulting to 500 for
// codes without an explicit mapping.
func HTTPStatusForCode(code ErrorCode) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DefaultMessageForCode returns the default message for a code.
func DefaultMessageForCode(code ErrorCode) string {
	if msg, ok := ErrorCodeMessage[code]; ok {
		return msg
	}
	return "unknown error"
}

// IsClientError reports whether the code maps to a 4xx HTTP status.
func IsClientError(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 400 && status < 500
}

// IsServerError reports whether the code maps to a 5xx HTTP status.
func IsServerError(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 500 && status < 600
}

// ModuleForCode returns the module prefix of a code ("COMMON", "TERM", ...).
func ModuleForCode(code ErrorCode) string {
	parts := strings.Split(string(code), "_")
	if len(parts) > 0 && parts[0] != "" {
		return parts[0]
	}
	return "UNKNOWN"
}
