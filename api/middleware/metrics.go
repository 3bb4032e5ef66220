package middleware

import (
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
)

var (
	requestCount    int64
	requestDuration int64 // in milliseconds
)

// Metrics records request counts and cumulative latency.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()

		c.Next()

		duration := time.Since(startTime)
		atomic.AddInt64(&requestDuration, duration.Milliseconds())
		atomic.AddInt64(&requestCount, 1)
	}
}

// GetMetrics returns the current counters.
func GetMetrics() map[string]interface{} {
	count := atomic.LoadInt64(&requestCount)
	duration := atomic.LoadInt64(&requestDuration)

	avg := float64(0)
	if count > 0 {
		avg = float64(duration) / float64(count)
	}

	return map[string]interface{}{
		"request_count":       count,
		"request_duration_ms": duration,
		"avg_duration_ms":     avg,
	}
}

// ResetMetrics clears the counters. Used by tests.
func ResetMetrics() {
	atomic.StoreInt64(&requestCount, 0)
	atomic.StoreInt64(&requestDuration, 0)
}
