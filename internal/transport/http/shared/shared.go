// Package shared holds response helpers used by every HTTP handler package.
package shared

import (
	"encoding/json"
	"net/http"

	dErrors "marketdesk/pkg/domain-errors"
)

// ErrorResponse is the JSON error envelope returned on every failure path.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// WriteError maps a domain error onto its HTTP status and writes the JSON
// error envelope. Unknown errors surface as 500 without leaking internals.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	status := dErrors.ToHTTPStatus(code)

	message := err.Error()
	if code == dErrors.CodeInternal || code == "" {
		code = dErrors.CodeInternal
		message = "internal server error"
	}

	WriteJSON(w, status, ErrorResponse{
		Code:    string(code),
		Message: message,
	})
}

// WriteJSON writes v as a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}
