package middleware

import (
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"go.uber.org/zap"
)

func TestParseOrigins(t *testing.T) {
	t.Parallel()

	tests := []struct {
		raw  string
		want []string
	}{
		{"", []string{DefaultCORSOrigin}},
		{" , ", []string{DefaultCORSOrigin}},
		{"https://app.example.com", []string{"https://app.example.com"}},
		{"https://a.example.com, https://b.example.com,https://a.example.com", []string{"https://a.example.com", "https://b.example.com"}},
	}
	for _, tt := range tests {
		if got := ParseOrigins(tt.raw); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("ParseOrigins(%q) = %v, want %v", tt.raw, got, tt.want)
		}
	}
}

func TestCORS(t *testing.T) {
	t.Parallel()

	mw := CORS(CORSConfig{AllowedOrigins: []string{"https://app.example.com"}, MaxAge: 600}, zap.NewNop())
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := mw(next)

	tests := []struct {
		name        string
		method      string
		origin      string
		requestVerb string
		wantOrigin  string
	}{
		{name: "allowed origin", method: http.MethodGet, origin: "https://app.example.com", wantOrigin: "https://app.example.com"},
		{name: "disallowed origin", method: http.MethodGet, origin: "https://evil.example.com", wantOrigin: ""},
		{name: "preflight delete", method: http.MethodOptions, origin: "https://app.example.com", requestVerb: http.MethodDelete, wantOrigin: "https://app.example.com"},
		{name: "preflight post rejected", method: http.MethodOptions, origin: "https://app.example.com", requestVerb: http.MethodPost, wantOrigin: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(tt.method, "/api/v1/goals/1/insights", nil)
			req.Header.Set("Origin", tt.origin)
			if tt.requestVerb != "" {
				req.Header.Set("Access-Control-Request-Method", tt.requestVerb)
			}
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			if got := w.Header().Get("Access-Control-Allow-Origin"); got != tt.wantOrigin {
				t.Errorf("Access-Control-Allow-Origin = %q, want %q", got, tt.wantOrigin)
			}
		})
	}
}
