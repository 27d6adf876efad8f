package middleware

import (
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/allahbobax/boolean-api/internal/usecase"
)

const (
	rateLimitProblemType  = "https://api.boolean.example.com/errors/rate-limit-exceeded"
	rateLimitProblemTitle = "Rate Limit Exceeded"
)

// ProblemDetails represents an RFC 9457 compatible error payload for rate limits.
type ProblemDetails struct {
	Type       string `json:"type"`
	Title      string `json:"title"`
	Status     int    `json:"status"`
	Detail     string `json:"detail"`
	Instance   string `json:"instance"`
	RetryAfter int    `json:"retry_after"`
	TraceID    string `json:"trace_id,omitempty"`
}

// IdentifierFunc extracts the identifier used to scope rate limits (e.g., client IP).
type IdentifierFunc func(*gin.Context) (string, bool)

// ClientIPIdentifier builds an IdentifierFunc using the request's client IP.
func ClientIPIdentifier() IdentifierFunc {
	return func(c *gin.Context) (string, bool) {
		ip := c.ClientIP()
		if ip == "" {
			return "", false
		}
		return ip, true
	}
}

// RateLimit enforces the named scope budget per client. Every response
// carries the X-RateLimit headers; rejections also carry Retry-After.
func RateLimit(limiter *usecase.RateLimiter, scope usecase.RateScope, identify IdentifierFunc) gin.HandlerFunc {
	if identify == nil {
		identify = ClientIPIdentifier()
	}

	return func(c *gin.Context) {
		identifier, ok := identify(c)
		if !ok || identifier == "" {
			c.Next()
			return
		}

		res := limiter.Check(c.Request.Context(), scope, identifier)
		applyRateHeaders(c, res)

		if !res.Allowed {
			respondRateLimited(c, res)
			return
		}

		c.Next()
	}
}

func applyRateHeaders(c *gin.Context, res usecase.RateLimitResult) {
	headers := c.Writer.Header()
	headers.Set("X-RateLimit-Limit", strconv.Itoa(res.Limit))
	headers.Set("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
	headers.Set("X-RateLimit-Reset", strconv.FormatInt(res.ResetAt.Unix(), 10))

	if !res.Allowed {
		headers.Set("Retry-After", strconv.Itoa(retrySeconds(res)))
	}
}

func respondRateLimited(c *gin.Context, res usecase.RateLimitResult) {
	seconds := retrySeconds(res)

	instance := c.FullPath()
	if instance == "" {
		instance = c.Request.URL.Path
	}

	problem := ProblemDetails{
		Type:       rateLimitProblemType,
		Title:      rateLimitProblemTitle,
		Status:     http.StatusTooManyRequests,
		Detail:     "Too many requests. Try again in " + strconv.Itoa(seconds) + " seconds.",
		Instance:   instance,
		RetryAfter: seconds,
		TraceID:    GetTraceID(c),
	}

	c.AbortWithStatusJSON(http.StatusTooManyRequests, problem)
}

func retrySeconds(res usecase.RateLimitResult) int {
	seconds := int(math.Ceil(res.RetryAfter.Seconds()))
	if seconds < 0 {
		seconds = 0
	}
	return seconds
}
