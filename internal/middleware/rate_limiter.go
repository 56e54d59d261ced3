package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// RateLimiterConfig configures rate limiting behavior
type RateLimiterConfig struct {
	RequestsPerSecond float64
	Burst             int
}

// keyedLimiters stores one token bucket per caller key
type keyedLimiters struct {
	limiters map[string]*rate.Limiter
	mu       sync.Mutex
	config   RateLimiterConfig
}

func newKeyedLimiters(config RateLimiterConfig) *keyedLimiters {
	kl := &keyedLimiters{
		limiters: make(map[string]*rate.Limiter),
		config:   config,
	}
	go kl.cleanup()
	return kl
}

func (kl *keyedLimiters) get(key string) *rate.Limiter {
	kl.mu.Lock()
	defer kl.mu.Unlock()

	limiter, exists := kl.limiters[key]
	if !exists {
		limiter = rate.NewLimiter(rate.Limit(kl.config.RequestsPerSecond), kl.config.Burst)
		kl.limiters[key] = limiter
	}
	return limiter
}

// cleanup bounds the map so long-running processes do not accumulate one
// bucket per address ever seen
func (kl *keyedLimiters) cleanup() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		kl.mu.Lock()
		if len(kl.limiters) > 1000 {
			kl.limiters = make(map[string]*rate.Limiter)
		}
		kl.mu.Unlock()
	}
}

// RateLimiterMiddleware limits requests per client IP.
func RateLimiterMiddleware(config RateLimiterConfig) gin.HandlerFunc {
	limiters := newKeyedLimiters(config)

	return func(c *gin.Context) {
		limiter := limiters.get(c.ClientIP())
		if !limiter.Allow() {
			reservation := limiter.Reserve()
			retryAfter := reservation.DelayFrom(time.Now()).Seconds()
			reservation.Cancel()

			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":       "Rate limit exceeded. Please try again later.",
				"retry_after": retryAfter,
			})
			c.Abort()
			return
		}
		c.Next()
	}
}
