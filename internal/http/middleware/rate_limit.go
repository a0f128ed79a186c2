package middleware

import (
	"fmt"
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"background-remover/internal/models"
	"background-remover/internal/services/ratelimit"
)

// RateLimit gates a route behind the shared limiter, keyed by client IP. It
// runs before any request body is touched: a denied request never reaches the
// validator or any processing component.
func RateLimit(limiter *ratelimit.Limiter, route string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		decision := limiter.Allow(ctx.Request.Context(), ctx.ClientIP(), route)

		if decision.Limit > 0 {
			ctx.Header("X-RateLimit-Limit", strconv.Itoa(decision.Limit))
			ctx.Header("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))
		}

		if !decision.Allowed {
			retryAfter := int(math.Ceil(decision.RetryAfter.Seconds()))
			if retryAfter < 1 {
				retryAfter = 1
			}
			ctx.Header("Retry-After", strconv.Itoa(retryAfter))
			ctx.AbortWithStatusJSON(http.StatusTooManyRequests, models.RateLimitResponse{
				Error:      "Rate limit exceeded",
				Message:    fmt.Sprintf("Too many requests. Limit is %d per window for this endpoint.", decision.Limit),
				RetryAfter: retryAfter,
			})
			return
		}

		ctx.Next()
	}
}
