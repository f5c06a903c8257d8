package api

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

// RateLimit throttles every client IP to rps requests per second with the
// given burst. Limiters of idle clients expire after 30 minutes.
func RateLimit(rps float64, burst int) gin.HandlerFunc {
	limiters := gocache.New(30*time.Minute, 5*time.Minute)
	var mu sync.Mutex

	limiterFor := func(ip string) *rate.Limiter {
		mu.Lock()
		defer mu.Unlock()

		var limiter *rate.Limiter
		if cached, ok := limiters.Get(ip); ok {
			limiter = cached.(*rate.Limiter)
		} else {
			limiter = rate.NewLimiter(rate.Limit(rps), burst)
		}
		limiters.SetDefault(ip, limiter)
		return limiter
	}

	return func(c *gin.Context) {
		if !limiterFor(c.ClientIP()).Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
			return
		}
		c.Next()
	}
}
