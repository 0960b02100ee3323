package httpmiddleware

import (
	"context"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimitConfig allows Max requests per Window for every client, with
// bursts up to Max.
type RateLimitConfig struct {
	Max    int
	Window time.Duration
	// Key identifies the client. Defaults to ClientIP.
	Key func(*http.Request) string
}

type client struct {
	limiter *rate.Limiter
	seen    time.Time
}

// Limiter holds one token bucket per client.
type Limiter struct {
	cfg   RateLimitConfig
	limit rate.Limit

	mu      sync.Mutex
	clients map[string]*client
}

// NewLimiter creates a Limiter. A non-positive Max or Window disables
// limiting.
func NewLimiter(cfg RateLimitConfig) *Limiter {
	if cfg.Key == nil {
		cfg.Key = ClientIP
	}
	l := &Limiter{cfg: cfg, clients: make(map[string]*client), limit: rate.Inf}
	if cfg.Max > 0 && cfg.Window > 0 {
		l.limit = rate.Limit(float64(cfg.Max) / cfg.Window.Seconds())
	}
	return l
}

func (l *Limiter) reserve(key string, now time.Time) (*rate.Limiter, bool) {
	l.mu.Lock()
	c, ok := l.clients[key]
	if !ok {
		c = &client{limiter: rate.NewLimiter(l.limit, max(l.cfg.Max, 1))}
		l.clients[key] = c
	}
	c.seen = now
	l.mu.Unlock()

	return c.limiter, c.limiter.AllowN(now, 1)
}

// Evict forgets clients idle since before cutoff and returns how many were
// removed.
func (l *Limiter) Evict(cutoff time.Time) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	n := 0
	for key, c := range l.clients {
		if c.seen.Before(cutoff) {
			delete(l.clients, key)
			n++
		}
	}
	return n
}

// Run evicts idle clients every two windows until ctx is done.
func (l *Limiter) Run(ctx context.Context) {
	if l.limit == rate.Inf {
		return
	}
	ticker := time.NewTicker(2 * l.cfg.Window)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			l.Evict(now.Add(-2 * l.cfg.Window))
		}
	}
}

// Middleware rejects requests over the limit with 429 and sets the
// X-RateLimit-* headers on every response.
func (l *Limiter) Middleware() Middleware {
	return func(next http.Handler) http.Handler {
		if l.limit == rate.Inf {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			now := time.Now()
			lim, allowed := l.reserve(l.cfg.Key(r), now)

			tokens := lim.TokensAt(now)
			h := w.Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(l.cfg.Max))
			h.Set("X-RateLimit-Remaining", strconv.Itoa(max(int(math.Floor(tokens)), 0)))

			if !allowed {
				wait := time.Duration((1 - tokens) / float64(l.limit) * float64(time.Second))
				h.Set("Retry-After", strconv.Itoa(max(int(math.Ceil(wait.Seconds())), 1)))
				writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ClientIP returns the first X-Forwarded-For hop, X-Real-IP, or the remote
// host, in that order.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
