package server

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/masingita/countrybot/api"
	"github.com/masingita/countrybot/metrics"
	"github.com/rs/zerolog/log"
)

// rateLimiter is a token bucket refilled continuously at capacity per interval
type rateLimiter struct {
	mu        sync.Mutex
	tokens    float64
	capacity  float64
	rate      float64
	lastCheck time.Time
}

func newRateLimiter(capacity int, interval time.Duration, now time.Time) *rateLimiter {
	if capacity <= 0 {
		capacity = 1
	}
	if interval <= 0 {
		interval = time.Second
	}

	return &rateLimiter{
		tokens:    float64(capacity),
		capacity:  float64(capacity),
		rate:      float64(capacity) / interval.Seconds(),
		lastCheck: now,
	}
}

func (rl *rateLimiter) allow(now time.Time) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	elapsed := now.Sub(rl.lastCheck).Seconds()
	rl.lastCheck = now

	if elapsed > 0 {
		rl.tokens += elapsed * rl.rate
		if rl.tokens > rl.capacity {
			rl.tokens = rl.capacity
		}
	}

	if rl.tokens < 1 {
		return false
	}

	rl.tokens--
	return true
}

// full reports whether the bucket has refilled completely by now
func (rl *rateLimiter) full(now time.Time) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return rl.tokens+now.Sub(rl.lastCheck).Seconds()*rl.rate >= rl.capacity
}

// limiterSet keeps one bucket per key. Buckets that have refilled are
// dropped on sweep since a fresh bucket behaves the same.
type limiterSet struct {
	mu        sync.Mutex
	limiters  map[string]*rateLimiter
	capacity  int
	interval  time.Duration
	now       func() time.Time
	lastSweep time.Time
}

func newLimiterSet(capacity int, interval time.Duration) *limiterSet {
	return &limiterSet{
		limiters:  map[string]*rateLimiter{},
		capacity:  capacity,
		interval:  interval,
		now:       time.Now,
		lastSweep: time.Now(),
	}
}

func (s *limiterSet) allow(key string) bool {
	now := s.now()

	s.mu.Lock()
	if now.Sub(s.lastSweep) >= s.interval {
		s.sweep(now)
	}
	rl, ok := s.limiters[key]
	if !ok {
		rl = newRateLimiter(s.capacity, s.interval, now)
		s.limiters[key] = rl
	}
	s.mu.Unlock()

	return rl.allow(now)
}

// sweep must be called with s.mu held
func (s *limiterSet) sweep(now time.Time) {
	for key, rl := range s.limiters {
		if rl.full(now) {
			delete(s.limiters, key)
		}
	}
	s.lastSweep = now
}

func (s *limiterSet) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.limiters)
}

// chatRateLimitMiddleware limits chat messages per session. A nil set
// disables limiting.
func chatRateLimitMiddleware(limiters *limiterSet) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiters == nil {
			c.Next()
			return
		}

		key := api.SessionID(c)
		if key == "" {
			key = c.ClientIP()
		}
		if !limiters.allow(key) {
			metrics.RecordChatRateLimited()
			log.Warn().Ctx(c.Request.Context()).Msg("Chat rate limit exceeded")
			c.Header("Retry-After", "60")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, api.ErrorResponse{Error: "Too many messages, please slow down"})
			return
		}
		c.Next()
	}
}
