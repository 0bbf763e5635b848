// Package shared holds the response helpers all feature handlers use, so the
// error contract stays uniform across the API.
package shared

import (
	"encoding/json"
	"net/http"

	dErrors "vaultgate/pkg/domain-errors"
)

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// WriteJSON serializes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

// WriteError maps a domain error to its HTTP status and writes the error
// body. Typed wallet errors carry their own code; everything else is
// internal.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	body := errorBody{Error: string(code), Message: err.Error()}
	if code == dErrors.CodeInternal {
		// Do not leak internals to API clients.
		body.Message = "internal error"
	}
	WriteJSON(w, dErrors.HTTPStatus(code), body)
}
