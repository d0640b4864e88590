package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/benvon/goal-insights/internal/request"
	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	memorystore "github.com/ulule/limiter/v3/drivers/store/memory"
	redisstore "github.com/ulule/limiter/v3/drivers/store/redis"
	"go.uber.org/zap"
)

const (
	// DefaultRateLimit is applied per client IP when none is configured
	DefaultRateLimit = "100-M"
	// rateLimitPrefix namespaces limiter keys next to the insight cache
	rateLimitPrefix = "insights:ratelimit"
)

// NewRateLimiter builds a ulule limiter from a formatted rate such as
// "100-M". Counters live in Redis when a client is given, so every API
// replica shares them; otherwise they are process-local.
func NewRateLimiter(rate string, redisClient *redis.Client) (*limiter.Limiter, error) {
	if rate == "" {
		rate = DefaultRateLimit
	}
	parsed, err := limiter.NewRateFromFormatted(rate)
	if err != nil {
		return nil, fmt.Errorf("invalid rate limit %q: %w", rate, err)
	}

	opts := limiter.StoreOptions{Prefix: rateLimitPrefix, CleanUpInterval: time.Minute}
	var store limiter.Store
	if redisClient != nil {
		store, err = redisstore.NewStoreWithOptions(redisClient, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to create rate limit store: %w", err)
		}
	} else {
		store = memorystore.NewStoreWithOptions(opts)
	}
	return limiter.New(store, parsed), nil
}

// RateLimit limits requests per client IP. Store failures let the request
// through: insight reads matter more than strict limiting.
func RateLimit(instance *limiter.Limiter, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := request.ClientIP(r)
			lctx, err := instance.Get(r.Context(), key)
			if err != nil {
				logger.Warn("rate_limit_store_failed", zap.Error(err))
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.FormatInt(lctx.Limit, 10))
			w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(lctx.Remaining, 10))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(lctx.Reset, 10))

			if lctx.Reached {
				retryAfter := max(lctx.Reset-time.Now().Unix(), 1)
				w.Header().Set("Retry-After", strconv.FormatInt(retryAfter, 10))
				logger.Info("rate_limit_reached", zap.String("client_ip", key))
				WriteError(w, r, http.StatusTooManyRequests, "Too Many Requests", "Rate limit exceeded, retry later", logger)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
