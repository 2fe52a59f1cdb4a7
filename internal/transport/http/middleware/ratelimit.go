package middleware

import (
	"log/slog"
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"gopherauth/internal/metrics"
	"gopherauth/internal/ratelimit"
	"gopherauth/internal/transport/http/flash"
	"gopherauth/internal/transport/http/response"
)

const RateLimitMessage = "Too many requests! Please wait a moment before trying again."

// RateLimitTemplate is rendered when a rejected request cannot be redirected.
const RateLimitTemplate = "rate_limited.html"

// RateLimit counts the request against rates for the client address under
// scope. Over quota, the client is sent to homePath with a notice. A GET for
// homePath or for one of renderPaths gets the notice on a 429 page instead:
// those are the pages home itself lands on, so redirecting would loop.
func RateLimit(limiter *ratelimit.Limiter, scope string, rates []ratelimit.Rate, homePath string, renderPaths ...string) gin.HandlerFunc {
	terminal := make(map[string]struct{}, len(renderPaths)+1)
	terminal[homePath] = struct{}{}
	for _, p := range renderPaths {
		terminal[p] = struct{}{}
	}

	return func(c *gin.Context) {
		if limiter == nil || len(rates) == 0 {
			c.Next()
			return
		}

		res, err := limiter.Allow(c.Request.Context(), scope+":"+c.ClientIP(), rates...)
		if err != nil {
			slog.Warn("rate limiter unavailable, allowing request",
				"request_id", c.GetString(response.ContextRequestIDKey),
				"scope", scope,
				"error", err)
		}
		if res.Allowed {
			c.Next()
			return
		}

		metrics.IncRateLimitRejection(scope)
		slog.Info("rate limit exceeded",
			"request_id", c.GetString(response.ContextRequestIDKey),
			"scope", scope,
			"client_ip", c.ClientIP(),
			"limit", res.Exceeded.String())
		_ = c.Error(ratelimit.ErrRateLimitExceeded)

		c.Header("Retry-After", strconv.Itoa(int(math.Ceil(res.RetryAfter.Seconds()))))
		if _, ok := terminal[c.Request.URL.Path]; ok && c.Request.Method == http.MethodGet {
			response.Page(c, http.StatusTooManyRequests, RateLimitTemplate, nil, flash.Notice{
				Category: flash.CategoryError,
				Message:  RateLimitMessage,
			})
			c.Abort()
			return
		}
		response.Redirect(c, homePath, flash.CategoryError, RateLimitMessage)
		c.Abort()
	}
}
