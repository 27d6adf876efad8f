package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/allahbobax/boolean-api/internal/infra/config"
	"github.com/allahbobax/boolean-api/internal/infra/redis"
	"github.com/allahbobax/boolean-api/internal/transport/http/handlers"
	"github.com/allahbobax/boolean-api/internal/transport/http/middleware"
	"github.com/allahbobax/boolean-api/internal/usecase"
)

// ServiceSet groups the services the HTTP layer depends on.
type ServiceSet struct {
	Auth         *usecase.AuthService
	Registration *usecase.RegistrationService
	Csrf         *usecase.CsrfService
	Devices      *usecase.DeviceService
	OAuth        *usecase.OAuthService
	RateLimiter  *usecase.RateLimiter
}

// Dependencies encapsulates the objects required to register routes.
type Dependencies struct {
	Config   *config.AppConfig
	Logger   *zap.Logger
	Services ServiceSet
	Pool     *pgxpool.Pool
	Redis    *redis.Client
	Metrics  *middleware.HTTPMetrics
}

// Register configures the Gin engine with routes and middleware.
func Register(deps Dependencies) *gin.Engine {
	if deps.Config.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.EnrichContext())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(deps.Logger))
	r.Use(middleware.CORS([]string{deps.Config.App.FrontendURL}))
	if deps.Metrics != nil {
		r.Use(deps.Metrics.Handler())
	}

	authMiddleware := middleware.RequireAuth(deps.Services.Auth)
	csrfGuard := middleware.CsrfGuard(deps.Services.Csrf)
	limiter := deps.Services.RateLimiter
	ipKey := middleware.ClientIPIdentifier()

	healthHandler := handlers.NewHealthHandler(deps.Pool, deps.Redis)

	// Health and metrics bypass rate limiting so probes stay cheap and
	// always answered.
	r.GET("/health", healthHandler.Status)
	r.GET("/healthz", healthHandler.Live)
	r.GET("/readyz", healthHandler.Status)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	api.Use(middleware.RateLimit(limiter, usecase.ScopeGeneral, ipKey))
	api.Use(csrfGuard)
	{
		authHandler := handlers.NewAuthHandler(deps.Services.Auth, deps.Services.Registration)

		authGroup := api.Group("/auth")
		authGroup.POST("/register",
			middleware.RateLimit(limiter, usecase.ScopeRegister, ipKey), authHandler.Register)
		authGroup.POST("/login",
			middleware.RateLimit(limiter, usecase.ScopeLogin, ipKey), authHandler.Login)
		authGroup.GET("/me", authMiddleware, authHandler.Me)

		csrfHandler := handlers.NewCsrfHandler(deps.Services.Csrf, deps.Config.App.IsProduction())
		api.GET("/csrf-token", csrfHandler.Token)

		oauthHandler := handlers.NewOAuthHandler(deps.Services.OAuth, deps.Config.App.FrontendURL, deps.Logger)
		oauthGroup := api.Group("/oauth")
		oauthGroup.GET("/:provider", oauthHandler.Start)
		oauthGroup.GET("/:provider/callback", oauthHandler.Callback)
	}

	// Machine-to-machine surface for the launcher, guarded by the shared
	// key instead of sessions; the CSRF guard exempts keyed requests.
	internal := r.Group("/internal")
	internal.Use(middleware.RequireInternalAPIKey(deps.Config.Internal.APIKey))
	internal.Use(middleware.RateLimit(limiter, usecase.ScopeVerifyCode, ipKey))
	{
		hwidHandler := handlers.NewHWIDHandler(deps.Services.Devices)
		internal.GET("/hwid", hwidHandler.Current)
		internal.POST("/hwid/bind", hwidHandler.Bind)
		internal.POST("/hwid/reset", hwidHandler.Reset)
		internal.POST("/hwid/verify", hwidHandler.Verify)

		internal.GET("/health", healthHandler.Status)
	}

	return r
}
