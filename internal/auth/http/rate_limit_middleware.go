package http

import (
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/time/rate"

	apperrors "github.com/allisson/sealbox/internal/errors"
	"github.com/allisson/sealbox/internal/httputil"
)

const (
	limiterIdleTTL       = time.Hour
	limiterSweepInterval = 5 * time.Minute
)

type limiterEntry struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// limiterStore keeps one token bucket per key. Idle buckets are swept during lookups, so the store
// owns no goroutine.
type limiterStore[K comparable] struct {
	mu        sync.Mutex
	limiters  map[K]*limiterEntry
	rps       rate.Limit
	burst     int
	lastSweep time.Time
	now       func() time.Time
}

func newLimiterStore[K comparable](rps float64, burst int) *limiterStore[K] {
	return &limiterStore[K]{
		limiters:  make(map[K]*limiterEntry),
		rps:       rate.Limit(rps),
		burst:     burst,
		lastSweep: time.Now(),
		now:       time.Now,
	}
}

func (s *limiterStore[K]) get(key K) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if now.Sub(s.lastSweep) >= limiterSweepInterval {
		for k, entry := range s.limiters {
			if now.Sub(entry.lastAccess) > limiterIdleTTL {
				delete(s.limiters, k)
			}
		}
		s.lastSweep = now
	}

	entry, ok := s.limiters[key]
	if !ok {
		entry = &limiterEntry{limiter: rate.NewLimiter(s.rps, s.burst)}
		s.limiters[key] = entry
	}
	entry.lastAccess = now
	return entry.limiter
}

func (s *limiterStore[K]) size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.limiters)
}

func rejectRateLimited(c *gin.Context, limiter *rate.Limiter) {
	reservation := limiter.Reserve()
	retryAfter := int(math.Ceil(reservation.Delay().Seconds()))
	reservation.Cancel()

	c.Header("Retry-After", strconv.Itoa(retryAfter))
	c.AbortWithStatusJSON(http.StatusTooManyRequests, httputil.ErrorResponse{
		Error:   "rate_limit_exceeded",
		Message: "Too many requests. Please retry after the specified delay.",
	})
}

// RateLimitMiddleware limits each authenticated client independently. It must run after
// AuthenticationMiddleware.
func RateLimitMiddleware(rps float64, burst int, logger *slog.Logger) gin.HandlerFunc {
	store := newLimiterStore[uuid.UUID](rps, burst)

	return func(c *gin.Context) {
		client, ok := GetClient(c.Request.Context())
		if !ok || client == nil {
			logger.Error("rate limit middleware: no authenticated client in context")
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		limiter := store.get(client.ID)
		if !limiter.Allow() {
			logger.Debug("rate limit exceeded", slog.String("client_id", client.ID.String()))
			rejectRateLimited(c, limiter)
			return
		}

		c.Next()
	}
}

// TokenRateLimitMiddleware limits the unauthenticated token endpoint per client IP.
func TokenRateLimitMiddleware(rps float64, burst int, logger *slog.Logger) gin.HandlerFunc {
	store := newLimiterStore[string](rps, burst)

	return func(c *gin.Context) {
		clientIP := c.ClientIP()

		limiter := store.get(clientIP)
		if !limiter.Allow() {
			logger.Debug("token rate limit exceeded", slog.String("ip", clientIP))
			rejectRateLimited(c, limiter)
			return
		}

		c.Next()
	}
}
