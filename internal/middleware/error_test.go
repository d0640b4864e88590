package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestErrorHandler_NoPanic(t *testing.T) {
	t.Parallel()

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	req := httptest.NewRequest("GET", "/api/v1/goals/1/insights", nil)
	w := httptest.NewRecorder()
	ErrorHandler(zap.NewNop())(handler).ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
}

func TestErrorHandler_PanicRecovery(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name:    "string panic",
			handler: func(w http.ResponseWriter, r *http.Request) { panic("test panic") },
		},
		{
			name: "runtime panic",
			handler: func(w http.ResponseWriter, r *http.Request) {
				var nilMap map[string]string
				nilMap["key"] = "value"
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			core, logs := observer.New(zap.ErrorLevel)
			chain := RequestID(ErrorHandler(zap.New(core))(tt.handler))

			req := httptest.NewRequest("GET", "/api/v1/goals/7/insights", nil)
			w := httptest.NewRecorder()
			chain.ServeHTTP(w, req)

			resp := w.Result()
			defer func() {
				_ = resp.Body.Close()
			}()

			if resp.StatusCode != http.StatusInternalServerError {
				t.Errorf("Expected status 500, got %d", resp.StatusCode)
			}
			if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
				t.Errorf("Expected Content-Type 'application/json', got '%s'", ct)
			}

			var body ErrorResponse
			if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
				t.Fatalf("Failed to decode response: %v", err)
			}
			if body.Success {
				t.Error("Expected success to be false")
			}
			if body.Error != "Internal Server Error" {
				t.Errorf("Expected error 'Internal Server Error', got '%s'", body.Error)
			}
			if body.Message != "An unexpected error occurred" {
				t.Errorf("Expected generic message, got '%s'", body.Message)
			}
			if body.Path != "/api/v1/goals/7/insights" {
				t.Errorf("Expected path '/api/v1/goals/7/insights', got '%s'", body.Path)
			}
			if body.RequestID == "" || body.RequestID != resp.Header.Get(RequestIDHeader) {
				t.Errorf("Expected request id %q in body, got %q", resp.Header.Get(RequestIDHeader), body.RequestID)
			}

			if logs.FilterMessage("panic_recovered").Len() != 1 {
				t.Errorf("Expected one panic_recovered entry, got %d", logs.Len())
			}
		})
	}
}
