// internal/app/system/respond/respond.go
package respond

import (
	"encoding/json"
	"net/http"
)

// JSON writes v as the response body with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// OK writes {"success":true,"message":msg} merged with extra fields.
func OK(w http.ResponseWriter, status int, msg string, extra map[string]any) {
	body := map[string]any{"success": true, "message": msg}
	for k, v := range extra {
		body[k] = v
	}
	JSON(w, status, body)
}

// Decode reads a JSON request body into dst. Unknown fields are ignored;
// the body is capped at maxBytes.
func Decode(w http.ResponseWriter, r *http.Request, dst any, maxBytes int64) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	return json.NewDecoder(r.Body).Decode(dst)
}
