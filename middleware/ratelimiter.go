package middleware

import (
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/didip/tollbooth"
	"github.com/didip/tollbooth/limiter"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/Niethin69/aadhvikha-learn-empower-succeed/models"
	"github.com/Niethin69/aadhvikha-learn-empower-succeed/ratelimit"
)

// RateLimitMiddleware caps each client at maxRequests per minute across all
// routes, independent of the per-form limits.
func RateLimitMiddleware(maxRequests float64) gin.HandlerFunc {
	perSecond := maxRequests / 60.0
	lmt := tollbooth.NewLimiter(perSecond, &limiter.ExpirableOptions{DefaultExpirationTTL: time.Minute})

	lmt.SetIPLookups([]string{"RemoteAddr", "X-Forwarded-For", "X-Real-IP"})

	return func(c *gin.Context) {
		httpError := tollbooth.LimitByRequest(lmt, c.Writer, c.Request)
		if httpError != nil {
			log.Warn().Str("ip", c.ClientIP()).Str("path", c.FullPath()).Msg("Request over capacity")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, models.ErrorResponse{
				Status:  "Request Failed",
				Error:   models.ErrorKindRateLimit,
				Message: "The API is at capacity, try again later.",
			})
			return
		}
		c.Next()
	}
}

// FixedWindow rejects a client once it has used up l's window, answering with
// the time until the window resets.
func FixedWindow(l *ratelimit.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, key := c.Request.Context(), c.ClientIP()

		allowed, err := l.Allow(ctx, key)
		if err != nil {
			log.Error().Err(err).Str("limiter", l.Name()).Msg("Rate limit store failed")
			c.Next()
			return
		}
		if allowed {
			c.Next()
			return
		}

		wait, err := l.TimeUntilReset(ctx, key)
		if err != nil {
			log.Error().Err(err).Str("limiter", l.Name()).Msg("Rate limit store failed")
		}
		seconds := int(math.Ceil(wait.Seconds()))
		c.Header("Retry-After", strconv.Itoa(seconds))
		c.AbortWithStatusJSON(http.StatusTooManyRequests, models.ErrorResponse{
			Status:            "Request Failed",
			Error:             models.ErrorKindRateLimit,
			Message:           "Too many requests. Please wait before trying again.",
			RetryAfterSeconds: seconds,
		})
	}
}
