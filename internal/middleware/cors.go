package middleware

import (
	"net/http"
	"strings"

	"github.com/rs/cors"
	"go.uber.org/zap"
)

// DefaultCORSOrigin is allowed when no origins are configured
const DefaultCORSOrigin = "http://localhost:3000"

// CORSConfig configures cross-origin access to the insights API
type CORSConfig struct {
	AllowedOrigins   []string
	AllowCredentials bool
	MaxAge           int // Preflight cache, seconds
}

// ParseOrigins splits a comma-separated origin list, trimming blanks and
// duplicates. An empty list yields DefaultCORSOrigin.
func ParseOrigins(raw string) []string {
	var origins []string
	seen := make(map[string]bool)
	for _, o := range strings.Split(raw, ",") {
		o = strings.TrimSpace(o)
		if o == "" || seen[o] {
			continue
		}
		seen[o] = true
		origins = append(origins, o)
	}
	if len(origins) == 0 {
		return []string{DefaultCORSOrigin}
	}
	return origins
}

// CORS creates CORS middleware on rs/cors. The API is read-mostly, so
// only GET, DELETE and preflight are allowed.
func CORS(cfg CORSConfig, logger *zap.Logger) func(http.Handler) http.Handler {
	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = []string{DefaultCORSOrigin}
	}
	logger.Info("cors_configured",
		zap.Strings("allowed_origins", cfg.AllowedOrigins),
		zap.Bool("allow_credentials", cfg.AllowCredentials),
	)

	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowCredentials: cfg.AllowCredentials,
		MaxAge:           cfg.MaxAge,
		AllowedMethods:   []string{http.MethodGet, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Authorization", RequestIDHeader},
		ExposedHeaders:   []string{RequestIDHeader, CacheStatusHeader},
	})
	return c.Handler
}
