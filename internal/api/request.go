package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
)

const mimeJSON = "application/json"

// BodyError is returned by parseBodyJSON. Reason is safe to send to the
// client; Err is the underlying cause, if any.
type BodyError struct {
	Reason string
	Err    error
}

func (e *BodyError) Error() string {
	return e.Reason
}

func (e *BodyError) Unwrap() error {
	return e.Err
}

// acceptsJSON reports whether the Accept header admits a JSON response.
// The check is a case-sensitive substring match; an absent header does
// not admit JSON.
func acceptsJSON(r *http.Request) bool {
	accept := r.Header.Get("Accept")
	return strings.Contains(accept, mimeJSON) || strings.Contains(accept, "*/*")
}

// isJSON reports whether the request declares a JSON body. Parameters such
// as charset are not accepted.
func isJSON(r *http.Request) bool {
	return strings.ToLower(r.Header.Get("Content-Type")) == mimeJSON
}

// parseBodyJSON reads the whole body and decodes it as a JSON object.
func parseBodyJSON(r *http.Request) (map[string]any, error) {
	if r.Body == nil {
		return nil, &BodyError{Reason: "Empty request body"}
	}

	data, err := io.ReadAll(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, &BodyError{Reason: "Request body too large", Err: err}
		}
		return nil, &BodyError{Reason: "Failed to read request body", Err: err}
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, &BodyError{Reason: "Empty request body"}
	}

	var body map[string]any
	if err := json.Unmarshal(data, &body); err != nil {
		return nil, &BodyError{Reason: "Invalid JSON body", Err: err}
	}
	if body == nil {
		return nil, &BodyError{Reason: "Invalid JSON body"}
	}
	return body, nil
}
