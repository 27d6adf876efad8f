package handlers

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/allahbobax/boolean-api/internal/core/domain"
	"github.com/allahbobax/boolean-api/internal/usecase"
)

// Launcher flows always return to the local callback listener the desktop
// client spins up for the duration of the login.
const launcherCallbackURL = "http://127.0.0.1:3000/callback"

const (
	sourceLauncher = "launcher"
	sourceWeb      = "web"
)

// OAuthHandler drives the provider redirect and callback endpoints.
type OAuthHandler struct {
	oauth       *usecase.OAuthService
	frontendURL string
	logger      *zap.Logger
}

// NewOAuthHandler constructs OAuthHandler.
func NewOAuthHandler(oauth *usecase.OAuthService, frontendURL string, log *zap.Logger) *OAuthHandler {
	return &OAuthHandler{oauth: oauth, frontendURL: frontendURL, logger: log}
}

// Start godoc
// @Summary Redirect to the identity provider consent page
// @Tags OAuth
// @Param provider path string true "Provider name"
// @Param redirect query string false "launcher or web"
// @Param hwid query string false "Hardware id carried through launcher flows"
// @Success 302
// @Failure 400 {object} ErrorResponse
// @Router /api/oauth/{provider} [get]
func (h *OAuthHandler) Start(c *gin.Context) {
	provider, err := domain.ParseOAuthProvider(c.Param("provider"))
	if err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "unsupported oauth provider"))
		return
	}

	source := sourceWeb
	if c.Query("redirect") == sourceLauncher {
		source = sourceLauncher
	}

	authURL, err := h.oauth.AuthorizeURL(provider, source, c.Query("hwid"))
	if err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "failed to start oauth flow"))
		return
	}

	c.Redirect(http.StatusFound, authURL)
}

// Callback godoc
// @Summary Complete the provider flow and redirect with a session token
// @Tags OAuth
// @Param provider path string true "Provider name"
// @Param code query string true "Authorization code"
// @Param state query string true "Signed state token"
// @Success 302
// @Router /api/oauth/{provider}/callback [get]
func (h *OAuthHandler) Callback(c *gin.Context) {
	provider, err := domain.ParseOAuthProvider(c.Param("provider"))
	if err != nil {
		c.Redirect(http.StatusFound, h.failureURL(sourceWeb, "unsupported_provider"))
		return
	}

	result, err := h.oauth.HandleCallback(c.Request.Context(), provider, c.Query("code"), c.Query("state"))
	if err != nil {
		// The source is unknown when the state failed to decode; the web
		// frontend is the safer landing page.
		h.logger.Warn("OAuth callback failed",
			zap.String("provider", string(provider)),
			zap.Error(err),
		)
		c.Redirect(http.StatusFound, h.failureURL(sourceWeb, string(provider)+"_failed"))
		return
	}

	c.Redirect(http.StatusFound, h.successURL(result))
}

func (h *OAuthHandler) successURL(result *usecase.OAuthCallbackResult) string {
	if result.State.Source == sourceLauncher {
		return launcherCallbackURL + "?token=" + url.QueryEscape(result.Token)
	}

	q := url.Values{
		"auth":  {"success"},
		"token": {result.Token},
	}
	return h.frontendURL + "/dashboard?" + q.Encode()
}

func (h *OAuthHandler) failureURL(source, code string) string {
	if source == sourceLauncher {
		return launcherCallbackURL + "?error=" + url.QueryEscape(code)
	}
	return h.frontendURL + "/dashboard?error=" + url.QueryEscape(code)
}
