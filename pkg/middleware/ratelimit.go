package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/weiawesome/wes-estate/pkg/response"
	"golang.org/x/time/rate"
)

// RateLimit returns a Gin middleware gating requests through a single
// token bucket of rps requests per second with the given burst.
// A non-positive rps disables the limiter.
func RateLimit(rps float64, burst int) gin.HandlerFunc {
	if rps <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	if burst <= 0 {
		burst = 1
	}

	lim := rate.NewLimiter(rate.Limit(rps), burst)
	return func(c *gin.Context) {
		if !lim.Allow() {
			response.TooManyRequests(c, "Too many requests, please try again later")
			c.Abort()
			return
		}
		c.Next()
	}
}
