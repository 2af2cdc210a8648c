package middleware

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/abaplens/abaplens/internal/api/response"
	"golang.org/x/time/rate"
)

// LocalRateLimit is a per-process token bucket limiter, used when no shared
// cache is configured.
type LocalRateLimit struct {
	mu       sync.Mutex
	limiters map[string]*limiterEntry
	rate     rate.Limit
	burst    int
	idle     time.Duration
	proxies  TrustedProxies
}

type limiterEntry struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// NewLocalRateLimit allows requestsPerMin per client, bursting up to the same amount.
func NewLocalRateLimit(requestsPerMin int, proxies TrustedProxies) *LocalRateLimit {
	if requestsPerMin <= 0 {
		requestsPerMin = defaultRequestsPerMinute
	}
	return &LocalRateLimit{
		limiters: make(map[string]*limiterEntry),
		rate:     rate.Limit(float64(requestsPerMin) / rateWindow.Seconds()),
		burst:    requestsPerMin,
		idle:     2 * rateWindow,
		proxies:  proxies,
	}
}

// Run evicts idle clients until ctx is cancelled.
func (l *LocalRateLimit) Run(ctx context.Context) {
	ticker := time.NewTicker(rateWindow)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.cleanup(time.Now())
		}
	}
}

func (l *LocalRateLimit) get(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry, ok := l.limiters[key]
	if !ok {
		entry = &limiterEntry{limiter: rate.NewLimiter(l.rate, l.burst)}
		l.limiters[key] = entry
	}
	entry.lastAccess = time.Now()
	return entry.limiter
}

func (l *LocalRateLimit) cleanup(now time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for key, entry := range l.limiters {
		if now.Sub(entry.lastAccess) > l.idle {
			delete(l.limiters, key)
		}
	}
}

func (l *LocalRateLimit) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		limiter := l.get(clientKey(r, l.proxies))

		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(l.burst))
		if !limiter.Allow() {
			res := limiter.Reserve()
			delay := res.Delay()
			res.Cancel()

			w.Header().Set("X-RateLimit-Remaining", "0")
			w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(delay.Seconds()))))
			response.Error(w, http.StatusTooManyRequests, "Too many requests")
			return
		}
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(int(limiter.Tokens())))

		next.ServeHTTP(w, r)
	})
}
