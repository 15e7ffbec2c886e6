// Package handlers implements the HTTP handlers of the coding API.
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/turtacn/MedCode-Intelligence/pkg/errors"
	codingtypes "github.com/turtacn/MedCode-Intelligence/pkg/types/coding"
)

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// writeError maps an application error onto the wire error envelope.  The
// message of errors mapping to plain 500 is replaced with the category
// default so internal detail never reaches clients.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	detail := codingtypes.ErrorDetail{
		Code:    errors.ErrCodeInternal.String(),
		Message: errors.DefaultMessageForCode(errors.ErrCodeInternal),
	}

	if ae, ok := errors.AsAppError(err); ok {
		status = errors.HTTPStatusForCode(ae.Code)
		detail.Code = ae.Code.String()
		if status == http.StatusInternalServerError {
			detail.Message = errors.DefaultMessageForCode(ae.Code)
		} else {
			detail.Message = ae.Message
		}
	}

	writeJSON(w, status, codingtypes.ErrorEnvelope{Error: detail})
}

// decodeJSON decodes the request body into dst.  maxBody, when positive,
// bounds the accepted body size; oversized and malformed bodies both map to
// an invalid-param error.
func decodeJSON(w http.ResponseWriter, r *http.Request, maxBody int64, dst interface{}) error {
	body := r.Body
	if maxBody > 0 {
		body = http.MaxBytesReader(w, r.Body, maxBody)
	}
	if err := json.NewDecoder(body).Decode(dst); err != nil {
		return errors.InvalidParam("invalid JSON request body").WithCause(err)
	}
	return nil
}
