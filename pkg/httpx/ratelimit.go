package httpx

import (
	"net"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/aussiebroadwan/chatbridge/pkg/slogx"
	"golang.org/x/time/rate"
)

// RateLimitConfig describes one throttling policy: RequestsPerWindow spread
// evenly over Window, with up to Burst requests admitted back to back.
type RateLimitConfig struct {
	RequestsPerWindow int
	Window            time.Duration
	Burst             int
}

// Route profiles, loosest to tightest by how destructive the endpoint is.
// Each can be overridden at boot through RATELIMIT_<NAME>_REQUESTS,
// RATELIMIT_<NAME>_WINDOW_SEC and RATELIMIT_<NAME>_BURST.
var (
	// StrictLimit guards lifecycle mutations: starting a session and
	// logging out. 5 per minute.
	StrictLimit = RateLimitConfig{
		RequestsPerWindow: 5,
		Window:            time.Minute,
		Burst:             5,
	}

	// ModerateLimit guards message and file delivery. 20 per minute.
	ModerateLimit = RateLimitConfig{
		RequestsPerWindow: 20,
		Window:            time.Minute,
		Burst:             20,
	}

	// LenientLimit suits polling reads, QR retrieval in particular.
	// 100 per minute.
	LenientLimit = RateLimitConfig{
		RequestsPerWindow: 100,
		Window:            time.Minute,
		Burst:             100,
	}

	// PublicLimit backs unauthenticated probes such as health checks.
	// 1000 per minute.
	PublicLimit = RateLimitConfig{
		RequestsPerWindow: 1000,
		Window:            time.Minute,
		Burst:             1000,
	}
)

func init() {
	StrictLimit = ParseRateLimitFromEnv("STRICT", StrictLimit)
	ModerateLimit = ParseRateLimitFromEnv("MODERATE", ModerateLimit)
	LenientLimit = ParseRateLimitFromEnv("LENIENT", LenientLimit)
	PublicLimit = ParseRateLimitFromEnv("PUBLIC", PublicLimit)
}

// ParseRateLimitFromEnv overlays fallback with any RATELIMIT_<prefix>_*
// environment overrides. Values that fail to parse, or are zero or
// negative, keep the fallback. Exported so deployments can tune custom
// profiles the same way the built-in ones are tuned.
func ParseRateLimitFromEnv(prefix string, fallback RateLimitConfig) RateLimitConfig {
	config := fallback

	if n, ok := envPositiveInt("RATELIMIT_" + prefix + "_REQUESTS"); ok {
		config.RequestsPerWindow = n
	}
	if n, ok := envPositiveInt("RATELIMIT_" + prefix + "_WINDOW_SEC"); ok {
		config.Window = time.Duration(n) * time.Second
	}
	if n, ok := envPositiveInt("RATELIMIT_" + prefix + "_BURST"); ok {
		config.Burst = n
	}

	return config
}

func envPositiveInt(name string) (int, bool) {
	val := os.Getenv(name)
	if val == "" {
		return 0, false
	}
	n, err := strconv.Atoi(val)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// KeyExtractor derives the bucket key for a request. Requests with equal
// keys share one token bucket; an empty key exempts the request.
type KeyExtractor func(*http.Request) string

// IPKeyExtractor keys on the client IP, trusting X-Forwarded-For and
// X-Real-IP from fronting proxies before falling back to the socket
// address.
func IPKeyExtractor(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
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

// FormFieldKeyExtractor keys on a query or urlencoded form parameter.
// ParseForm only reads the body for form content types, so JSON and
// multipart requests are keyed from the query string alone and the body
// stays intact for the handler.
func FormFieldKeyExtractor(field string) KeyExtractor {
	return func(r *http.Request) string {
		if err := r.ParseForm(); err != nil {
			return ""
		}
		return r.FormValue(field)
	}
}

// CompositeKeyExtractor joins the non-empty outputs of extractors with sep,
// e.g. IP plus instance key giving "192.0.2.1:kiosk-1". A caller hammering
// one instance then cannot starve its other instances, and two tenants
// behind one NAT do not share a bucket for different instances.
func CompositeKeyExtractor(sep string, extractors ...KeyExtractor) KeyExtractor {
	return func(r *http.Request) string {
		var parts []string
		for _, extract := range extractors {
			if part := extract(r); part != "" {
				parts = append(parts, part)
			}
		}
		return strings.Join(parts, sep)
	}
}

// limiterPool holds one token bucket per key, created on first sight and
// reaped opportunistically once idle.
type limiterPool struct {
	buckets sync.Map // key string -> *rate.Limiter
	limit   rate.Limit
	burst   int

	sweepMu   sync.Mutex
	lastSweep time.Time
}

func newLimiterPool(config RateLimitConfig) *limiterPool {
	return &limiterPool{
		limit:     rate.Limit(float64(config.RequestsPerWindow) / config.Window.Seconds()),
		burst:     config.Burst,
		lastSweep: time.Now(),
	}
}

func (p *limiterPool) get(key string) *rate.Limiter {
	if b, ok := p.buckets.Load(key); ok {
		return b.(*rate.Limiter)
	}

	b, loaded := p.buckets.LoadOrStore(key, rate.NewLimiter(p.limit, p.burst))
	if !loaded {
		// Only sweep when the key space actually grows
		p.sweepIfDue()
	}
	return b.(*rate.Limiter)
}

// sweepIfDue drops buckets that have refilled completely, at most once
// every five minutes. A full bucket means the key has been quiet for at
// least a whole window, so forgetting it loses nothing.
func (p *limiterPool) sweepIfDue() {
	p.sweepMu.Lock()
	defer p.sweepMu.Unlock()

	if time.Since(p.lastSweep) < 5*time.Minute {
		return
	}
	p.lastSweep = time.Now()

	p.buckets.Range(func(key, value any) bool {
		if value.(*rate.Limiter).Tokens() >= float64(p.burst) {
			p.buckets.Delete(key)
		}
		return true
	})
}

// RateLimitMiddleware throttles requests grouped by extract, answering 429
// with Retry-After once a bucket runs dry. Requests without an extractable
// key pass unthrottled; refusing them would take healthy traffic down with
// the malformed.
func RateLimitMiddleware(config RateLimitConfig, extract KeyExtractor) Middleware {
	pool := newLimiterPool(config)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			log := slogx.FromContext(r.Context())

			key := extract(r)
			if key == "" {
				log.Warn("rate limit key not extractable, admitting request",
					"path", r.URL.Path,
				)
				next.ServeHTTP(w, r)
				return
			}

			bucket := pool.get(key)
			if bucket.Allow() {
				next.ServeHTTP(w, r)
				return
			}

			// Peek at the wait for the next token without consuming it
			res := bucket.Reserve()
			wait := res.Delay()
			res.Cancel()

			retryAfter := max(int(wait.Seconds()), 1)

			w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(config.RequestsPerWindow))
			w.Header().Set("X-RateLimit-Window", config.Window.String())

			log.Warn("rate limit exceeded",
				"key", key,
				"path", r.URL.Path,
				"retry_after", retryAfter,
			)

			WriteJSON(w, http.StatusTooManyRequests, map[string]any{
				"success": false,
				"message": "too many requests, retry later",
			})
		})
	}
}

// RateLimitByIP throttles purely per client IP.
func RateLimitByIP(config RateLimitConfig) Middleware {
	return RateLimitMiddleware(config, IPKeyExtractor)
}

// RateLimitByIPAndFormField throttles per client IP and form field pair,
// the shape used for every instance-scoped route.
func RateLimitByIPAndFormField(config RateLimitConfig, field string) Middleware {
	return RateLimitMiddleware(config, CompositeKeyExtractor(":",
		IPKeyExtractor,
		FormFieldKeyExtractor(field),
	))
}
