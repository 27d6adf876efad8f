package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	uuid "github.com/google/uuid"

	"github.com/allahbobax/boolean-api/internal/transport/http/middleware"
	"github.com/allahbobax/boolean-api/internal/usecase"
)

// csrfCookieMaxAge keeps the session cookie alive as long as issued tokens
// can still be valid.
const csrfCookieMaxAge = 2 * 60 * 60

// CsrfHandler issues anti-forgery tokens for browser sessions.
type CsrfHandler struct {
	csrf   *usecase.CsrfService
	secure bool
}

// NewCsrfHandler constructs CsrfHandler. secure controls the cookie flag and
// should be on outside development.
func NewCsrfHandler(csrf *usecase.CsrfService, secure bool) *CsrfHandler {
	return &CsrfHandler{csrf: csrf, secure: secure}
}

// Token godoc
// @Summary Issue a CSRF token for the current browser session
// @Tags Security
// @Produce json
// @Success 200 {object} CsrfTokenResponse
// @Router /api/csrf-token [get]
func (h *CsrfHandler) Token(c *gin.Context) {
	sessionID, err := c.Cookie(middleware.CsrfSessionCookie)
	if err != nil || sessionID == "" {
		sessionID = uuid.NewString()
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(middleware.CsrfSessionCookie, sessionID, csrfCookieMaxAge, "/", "", h.secure, true)
	}

	token, err := h.csrf.Issue(c.Request.Context(), sessionID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "failed to issue csrf token"))
		return
	}

	c.JSON(http.StatusOK, CsrfTokenResponse{Token: token})
}
