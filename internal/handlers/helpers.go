package handlers

import (
	"encoding/json"
	"net/http"
	"time"
)

// MaxErrorMessageLength bounds messages returned to clients
const MaxErrorMessageLength = 200

// apiResponse is the envelope for every JSON response
type apiResponse struct {
	Success   bool   `json:"success"`
	Data      any    `json:"data,omitempty"`
	Cached    *bool  `json:"cached,omitempty"`
	Error     string `json:"error,omitempty"`
	Message   string `json:"message,omitempty"`
	Timestamp string `json:"timestamp"`
}

func writeEnvelope(w http.ResponseWriter, status int, body apiResponse) {
	body.Timestamp = time.Now().UTC().Format(time.RFC3339)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, status int, data any) {
	writeEnvelope(w, status, apiResponse{Success: true, Data: data})
}

// respondCached sends a JSON response that reports whether data came from
// the insight cache
func respondCached(w http.ResponseWriter, status int, data any, cached bool) {
	writeEnvelope(w, status, apiResponse{Success: true, Data: data, Cached: &cached})
}

// sanitizeErrorMessage truncates messages so internal detail cannot leak
// through long wrapped errors
func sanitizeErrorMessage(message string) string {
	if len(message) > MaxErrorMessageLength {
		return message[:MaxErrorMessageLength] + "..."
	}
	return message
}

// respondJSONError sends an error JSON response with a sanitized message
func respondJSONError(w http.ResponseWriter, status int, errorType, message string) {
	writeEnvelope(w, status, apiResponse{
		Success: false,
		Error:   errorType,
		Message: sanitizeErrorMessage(message),
	})
}
