package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/allahbobax/boolean-api/internal/usecase"
)

const (
	// CsrfSessionCookie identifies the browser session a token is bound to.
	CsrfSessionCookie = "sessionId"
	// CsrfTokenHeader carries the anti-forgery token on mutating requests.
	CsrfTokenHeader = "X-CSRF-Token"
)

// CsrfGuard rejects state-changing browser requests without a valid
// anti-forgery token. Safe methods pass untouched, and machine clients
// authenticating with an API key are exempt since cookies never drive those
// requests.
func CsrfGuard(csrf *usecase.CsrfService) gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			c.Next()
			return
		}

		if c.GetHeader("X-API-Key") != "" {
			c.Next()
			return
		}

		sessionID, err := c.Cookie(CsrfSessionCookie)
		if err != nil || sessionID == "" {
			c.AbortWithStatusJSON(http.StatusForbidden,
				newErrorResponse(c, "missing session"))
			return
		}

		token := c.GetHeader(CsrfTokenHeader)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusForbidden,
				newErrorResponse(c, "missing csrf token"))
			return
		}

		if !csrf.Validate(c.Request.Context(), sessionID, token) {
			c.AbortWithStatusJSON(http.StatusForbidden,
				newErrorResponse(c, "invalid csrf token"))
			return
		}

		c.Next()
	}
}
