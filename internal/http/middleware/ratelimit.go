package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

type rlWindow struct {
	start time.Time
	count int
}

var (
	rlMu      sync.Mutex
	rlWindows = make(map[string]*rlWindow)
)

// SimpleRateLimit is the in-process fallback limiter, fixed window per IP.
// It needs no Redis, so it guards endpoints that must stay protected even
// when the shared limiter is down (the websocket upgrade, for one).
func SimpleRateLimit(maxRequests int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		now := time.Now()

		rlMu.Lock()
		w, ok := rlWindows[ip]
		if !ok || now.Sub(w.start) > window {
			rlWindows[ip] = &rlWindow{start: now, count: 1}
			pruneWindows(now, window)
			rlMu.Unlock()
			RLRequests.WithLabelValues("local", c.FullPath()).Inc()
			c.Next()
			return
		}
		w.count++
		count := w.count
		rlMu.Unlock()

		if count > maxRequests {
			RLBlocked.WithLabelValues("local", c.FullPath()).Inc()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}

		RLRequests.WithLabelValues("local", c.FullPath()).Inc()
		c.Next()
	}
}

// pruneWindows drops expired entries so the map does not grow with every IP
// ever seen. Called with rlMu held, on window rollover only.
func pruneWindows(now time.Time, window time.Duration) {
	for ip, w := range rlWindows {
		if now.Sub(w.start) > window {
			delete(rlWindows, ip)
		}
	}
}
