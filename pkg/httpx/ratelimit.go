package httpx

import (
	"context"
	"math"
	"net"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/aussiebroadwan/handoff/pkg/slogx"
)

// RateLimitPolicy caps requests per key within a window.
type RateLimitPolicy struct {
	// Name namespaces keys so one client address gets a separate budget per policy.
	Name string
	// RequestsPerWindow is the number of requests allowed in the time window
	RequestsPerWindow int
	// Window is the time window for rate limiting
	Window time.Duration
}

// Per-endpoint policies. Issuance is the strictest.
// Each can be overridden with RATELIMIT_{NAME}_REQUESTS and RATELIMIT_{NAME}_WINDOW_SEC.
var (
	// IssuePolicy guards token minting and state creation.
	IssuePolicy = RateLimitPolicy{Name: "ISSUE", RequestsPerWindow: 10, Window: time.Minute}

	// ExchangePolicy guards state redemption.
	ExchangePolicy = RateLimitPolicy{Name: "EXCHANGE", RequestsPerWindow: 20, Window: time.Minute}

	// ListPolicy guards authorised scope listing.
	ListPolicy = RateLimitPolicy{Name: "LIST", RequestsPerWindow: 120, Window: time.Minute}

	// HealthPolicy guards probes.
	HealthPolicy = RateLimitPolicy{Name: "HEALTH", RequestsPerWindow: 1000, Window: time.Minute}
)

func init() {
	IssuePolicy = ParseRateLimitFromEnv(IssuePolicy)
	ExchangePolicy = ParseRateLimitFromEnv(ExchangePolicy)
	ListPolicy = ParseRateLimitFromEnv(ListPolicy)
	HealthPolicy = ParseRateLimitFromEnv(HealthPolicy)
}

// ParseRateLimitFromEnv applies RATELIMIT_{Name}_REQUESTS and
// RATELIMIT_{Name}_WINDOW_SEC over the defaults. Invalid values are ignored.
func ParseRateLimitFromEnv(policy RateLimitPolicy) RateLimitPolicy {
	prefix := "RATELIMIT_" + strings.ToUpper(policy.Name)

	if val := os.Getenv(prefix + "_REQUESTS"); val != "" {
		if requests, err := strconv.Atoi(val); err == nil && requests > 0 {
			policy.RequestsPerWindow = requests
		}
	}

	if val := os.Getenv(prefix + "_WINDOW_SEC"); val != "" {
		if windowSec, err := strconv.Atoi(val); err == nil && windowSec > 0 {
			policy.Window = time.Duration(windowSec) * time.Second
		}
	}

	return policy
}

// Limiter decides whether one more request for key fits the policy at now.
// When it does not, retryAfter says how long until it would.
type Limiter interface {
	Allow(ctx context.Context, key string, policy RateLimitPolicy, now time.Time) (allowed bool, retryAfter time.Duration, err error)
}

// KeyExtractor is a function that extracts a unique key from the request
// for rate limiting purposes (e.g., IP address, user ID).
type KeyExtractor func(*http.Request) string

// IPKeyExtractor extracts the client IP address from the request.
// It handles X-Forwarded-For and X-Real-IP headers for proxied requests.
func IPKeyExtractor(r *http.Request) string {
	// Check X-Forwarded-For header (comma-separated list)
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		ips := strings.Split(xff, ",")
		if ip := strings.TrimSpace(ips[0]); ip != "" {
			return ip
		}
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// UserIDKeyExtractor returns the authenticated caller's id, or "".
func UserIDKeyExtractor(r *http.Request) string {
	return UserIDFromContext(r.Context())
}

// CompositeKeyExtractor combines multiple key extractors with a separator.
// Empty parts are skipped.
func CompositeKeyExtractor(sep string, extractors ...KeyExtractor) KeyExtractor {
	return func(r *http.Request) string {
		var parts []string
		for _, extractor := range extractors {
			if key := extractor(r); key != "" {
				parts = append(parts, key)
			}
		}
		return strings.Join(parts, sep)
	}
}

// MemoryLimiter is a per-process sliding-window log. Counts do not survive
// a restart and are not shared between instances.
type MemoryLimiter struct {
	mu   sync.Mutex
	logs map[string]*hitLog

	lastCleanup time.Time
}

type hitLog struct {
	hits   []time.Time // oldest first
	window time.Duration
}

func NewMemoryLimiter() *MemoryLimiter {
	return &MemoryLimiter{logs: make(map[string]*hitLog)}
}

func (ml *MemoryLimiter) Allow(_ context.Context, key string, policy RateLimitPolicy, now time.Time) (bool, time.Duration, error) {
	ml.mu.Lock()
	defer ml.mu.Unlock()

	defer ml.maybeCleanup(now)

	key = policy.Name + ":" + key
	log, ok := ml.logs[key]
	if !ok {
		log = &hitLog{}
		ml.logs[key] = log
	}
	log.window = policy.Window
	log.trim(now)

	if len(log.hits) >= policy.RequestsPerWindow {
		if len(log.hits) == 0 {
			return false, policy.Window, nil
		}
		return false, log.hits[0].Add(policy.Window).Sub(now), nil
	}

	log.hits = append(log.hits, now)
	return true, 0, nil
}

// trim drops hits at or before now-window.
func (l *hitLog) trim(now time.Time) {
	cutoff := now.Add(-l.window)
	i := 0
	for i < len(l.hits) && !l.hits[i].After(cutoff) {
		i++
	}
	l.hits = l.hits[i:]
}

// maybeCleanup forgets idle keys, at most once every five minutes.
// Caller holds mu.
func (ml *MemoryLimiter) maybeCleanup(now time.Time) {
	if now.Sub(ml.lastCleanup) < 5*time.Minute {
		return
	}
	ml.lastCleanup = now

	for key, log := range ml.logs {
		log.trim(now)
		if len(log.hits) == 0 {
			delete(ml.logs, key)
		}
	}
}

// RateLimitMiddleware enforces policy per extracted key. A limiter error
// lets the request through with a warning.
func RateLimitMiddleware(limiter Limiter, policy RateLimitPolicy, keyExtractor KeyExtractor) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := slogx.FromContext(ctx)

			key := keyExtractor(r)
			if key == "" {
				log.Warn("rate limit: unable to extract key, allowing request")
				next.ServeHTTP(w, r)
				return
			}

			allowed, retryAfter, err := limiter.Allow(ctx, key, policy, time.Now())
			if err != nil {
				log.Warn("rate limit: backend unavailable, allowing request", "policy", policy.Name, "err", err)
				next.ServeHTTP(w, r)
				return
			}

			if !allowed {
				retrySec := max(int(math.Ceil(retryAfter.Seconds())), 1)

				w.Header().Set("Retry-After", strconv.Itoa(retrySec))
				w.Header().Set("X-RateLimit-Limit", strconv.Itoa(policy.RequestsPerWindow))
				w.Header().Set("X-RateLimit-Window", policy.Window.String())

				log.Warn("rate limit exceeded",
					"policy", policy.Name,
					"endpoint", r.URL.Path,
					"retry_after", retrySec,
				)

				WriteJSON(w, http.StatusTooManyRequests, map[string]string{
					"error":             "RATE_LIMITED",
					"error_description": "Too many requests. Please try again later.",
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RateLimitByIP limits by client address only.
func RateLimitByIP(limiter Limiter, policy RateLimitPolicy) Middleware {
	return RateLimitMiddleware(limiter, policy, IPKeyExtractor)
}
