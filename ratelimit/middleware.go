package ratelimit

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/aloks98/securevault/internal/hash"
)

// Config configures Middleware.
type Config struct {
	// KeyFunc extracts the rate limit key from a request. The key is
	// hashed before it reaches the limiter. Defaults to ClientIP.
	KeyFunc func(r *http.Request) string

	// OnLimited writes the response of a denied request.
	// Defaults to a plain 429.
	OnLimited func(w http.ResponseWriter, r *http.Request)

	// SkipFunc exempts a request when it returns true.
	SkipFunc func(r *http.Request) bool

	// Logger reports limiter failures. Requests are let through when the
	// limiter fails.
	Logger *zap.Logger
}

// ClientIP returns the first address of X-Forwarded-For, then X-Real-IP,
// then the host of RemoteAddr.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// Middleware applies limiter to every request.
func Middleware(limiter Limiter, cfg *Config) func(http.Handler) http.Handler {
	if cfg == nil {
		cfg = &Config{}
	}
	keyFunc := cfg.KeyFunc
	if keyFunc == nil {
		keyFunc = ClientIP
	}
	onLimited := cfg.OnLimited
	if onLimited == nil {
		onLimited = func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "Too Many Requests", http.StatusTooManyRequests)
		}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if cfg.SkipFunc != nil && cfg.SkipFunc(r) {
				next.ServeHTTP(w, r)
				return
			}

			key := hash.Key("ratelimit", keyFunc(r))
			allowed, err := limiter.Allow(r.Context(), key)
			if err != nil {
				logger.Warn("rate limiter failed", zap.String("path", r.URL.Path), zap.Error(err))
				next.ServeHTTP(w, r)
				return
			}
			if allowed {
				next.ServeHTTP(w, r)
				return
			}

			if ra, ok := limiter.(RetryAfterer); ok {
				secs := int((ra.RetryAfter(key) + time.Second - 1) / time.Second)
				w.Header().Set("Retry-After", strconv.Itoa(secs))
			}
			w.Header().Set("X-RateLimit-Remaining", "0")
			logger.Info("rate limited", zap.String("path", r.URL.Path))
			onLimited(w, r)
		})
	}
}
