package middleware

import (
	"encoding/json"
	"net/http"
)

// ErrorEnvelope is the body of JSON error responses.
type ErrorEnvelope struct {
	Error     string `json:"error"`
	Message   string `json:"message,omitempty"`
	Status    int    `json:"status"`
	RequestID string `json:"request_id,omitempty"`
}

// WriteJSONError writes a JSON error envelope. code is a short machine
// readable identifier such as "not_found".
func WriteJSONError(w http.ResponseWriter, r *http.Request, status int, code, msg string) {
	rid, _ := RequestID(r.Context())
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(ErrorEnvelope{Error: code, Message: msg, Status: status, RequestID: rid})
}

// WriteJSON writes v as a JSON response.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
