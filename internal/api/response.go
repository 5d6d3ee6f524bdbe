package api

import (
	"encoding/json"
	"net/http"
)

// errorBody is the 400 response shape. Error is a string or a list of
// validation messages.
type errorBody struct {
	Error any `json:"error"`
}

// writeJSON writes a JSON response with the given status code and payload.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", mimeJSON)
	w.WriteHeader(status)
	if v != nil {
		//nolint:errcheck // Best-effort write to response; connection may be closed
		json.NewEncoder(w).Encode(v)
	}
}

// writeStatus writes a status line with no body.
func writeStatus(w http.ResponseWriter, status int) {
	w.WriteHeader(status)
}

// writeBadRequest writes 400 with {"error": msg}. msg is a string or
// []string.
func writeBadRequest(w http.ResponseWriter, msg any) {
	writeJSON(w, http.StatusBadRequest, errorBody{Error: msg})
}
