package query

import (
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"

	"github.com/openshift-hyperfleet/kartograph-sub001/internal/config"
	"github.com/openshift-hyperfleet/kartograph-sub001/pkg/apperror"
)

const (
	limiterIdle    = 10 * time.Minute
	sweepThreshold = 1024
)

// RateLimiter throttles read queries per client address. A zero
// QUERY_RATE_PER_MINUTE disables it.
type RateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*clientLimiter
	every    time.Duration
	burst    int
	now      func() time.Time
}

type clientLimiter struct {
	lim  *rate.Limiter
	seen time.Time
}

// NewRateLimiter builds the limiter from QUERY_RATE_PER_MINUTE and QUERY_RATE_BURST.
func NewRateLimiter(cfg *config.Config) *RateLimiter {
	return newRateLimiter(cfg.Graph.QueryRatePerMinute, cfg.Graph.QueryRateBurst)
}

func newRateLimiter(perMinute, burst int) *RateLimiter {
	if perMinute <= 0 {
		return &RateLimiter{}
	}
	return &RateLimiter{
		limiters: make(map[string]*clientLimiter),
		every:    time.Minute / time.Duration(perMinute),
		burst:    max(burst, 1),
		now:      time.Now,
	}
}

func (r *RateLimiter) enabled() bool {
	return r != nil && r.limiters != nil
}

// Allow spends one token from client's bucket.
func (r *RateLimiter) Allow(client string) bool {
	if !r.enabled() {
		return true
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	cl, ok := r.limiters[client]
	if !ok {
		if len(r.limiters) >= sweepThreshold {
			r.sweep(now)
		}
		cl = &clientLimiter{lim: rate.NewLimiter(rate.Every(r.every), r.burst)}
		r.limiters[client] = cl
	}
	cl.seen = now
	return cl.lim.AllowN(now, 1)
}

// sweep drops buckets of clients not seen recently. Caller holds mu.
func (r *RateLimiter) sweep(now time.Time) {
	for k, cl := range r.limiters {
		if now.Sub(cl.seen) > limiterIdle {
			delete(r.limiters, k)
		}
	}
}

// Middleware rejects over-limit requests with 429 before any connection is
// taken from the pool.
func (r *RateLimiter) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if r.Allow(c.RealIP()) {
				return next(c)
			}
			queriesTotal.WithLabelValues("rate_limited").Inc()
			c.Response().Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(r.every.Seconds()))))
			return apperror.ErrRateLimited
		}
	}
}
