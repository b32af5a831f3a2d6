package middleware

import (
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"shadowcleaner/internal/config"
	"shadowcleaner/internal/infrastructure/cache"
	"shadowcleaner/pkg/logger"
)

// RateLimiter returns middleware that limits each client to
// cfg.RequestsPerMinute. Counters live in Redis when c is non-nil and in
// process memory otherwise.
func RateLimiter(c *cache.RedisCache, cfg config.RateLimitConfig, log *logger.Logger) func(next http.Handler) http.Handler {
	log = log.WithComponent("ratelimit")
	limit := cfg.RequestsPerMinute
	if limit <= 0 {
		limit = 60
	}
	local := newLocalLimiter(limit)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			clientID := getClientID(r)
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(limit))

			if c == nil {
				if !local.allow(clientID) {
					tooManyRequests(w, time.Minute/time.Duration(limit))
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			allowed, remaining, resetTime, err := c.CheckRateLimit(r.Context(), clientID, int64(limit), time.Minute)
			if err != nil {
				// fail open
				log.Warn().Err(err).Str("client", clientID).Msg("rate limit check failed")
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(resetTime.Unix(), 10))

			if !allowed {
				tooManyRequests(w, time.Until(resetTime))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func tooManyRequests(w http.ResponseWriter, retryAfter time.Duration) {
	secs := int64(retryAfter.Seconds())
	if secs < 1 {
		secs = 1
	}
	w.Header().Set("Retry-After", strconv.FormatInt(secs, 10))
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusTooManyRequests)
	_, _ = w.Write([]byte(`{"error":"rate limit exceeded"}`))
}

// localLimiter keeps one token bucket per client
type localLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	every    rate.Limit
	burst    int
}

func newLocalLimiter(perMinute int) *localLimiter {
	return &localLimiter{
		limiters: make(map[string]*rate.Limiter),
		every:    rate.Every(time.Minute / time.Duration(perMinute)),
		burst:    perMinute,
	}
}

func (l *localLimiter) allow(clientID string) bool {
	l.mu.Lock()
	lim, ok := l.limiters[clientID]
	if !ok {
		lim = rate.NewLimiter(l.every, l.burst)
		l.limiters[clientID] = lim
	}
	l.mu.Unlock()
	return lim.Allow()
}

// getClientID returns a unique identifier for the client
func getClientID(r *http.Request) string {
	if apiKey := GetAPIKey(r.Context()); apiKey != "" {
		return fmt.Sprintf("key:%s", apiKey)
	}
	// RealIP has already rewritten RemoteAddr from the proxy headers.
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return fmt.Sprintf("ip:%s", host)
}
