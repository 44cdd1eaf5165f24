package routes

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/shriya-199/Prolance/internal/infra/config"
	"github.com/shriya-199/Prolance/internal/transport/http/handlers"
	"github.com/shriya-199/Prolance/internal/transport/http/middleware"
	"github.com/shriya-199/Prolance/internal/usecase"
)

// ServiceSet groups the services the HTTP layer depends on.
type ServiceSet struct {
	PasswordReset *usecase.PasswordResetService
	Captcha       *usecase.CaptchaService
}

// Dependencies encapsulates the objects required to register routes.
type Dependencies struct {
	Config      *config.AppConfig
	Logger      *zap.Logger
	RateLimiter *middleware.RateLimiter
	Metrics     *middleware.HTTPMetrics
	Services    ServiceSet
	Database    DatabaseChecker
	Cache       CacheChecker
}

// DatabaseChecker exposes readiness behaviour for database connections.
type DatabaseChecker interface {
	Ping(ctx context.Context) error
}

// CacheChecker exposes readiness behaviour for cache backends.
type CacheChecker interface {
	HealthCheck(ctx context.Context) error
}

// Register configures the Gin engine with routes and middleware.
func Register(deps Dependencies) *gin.Engine {
	if deps.Config != nil && deps.Config.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.EnrichContext())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(deps.Logger))
	if deps.Metrics != nil {
		r.Use(deps.Metrics.Handler())
	}

	healthOptions := make([]handlers.HealthOption, 0, 2)
	if deps.Database != nil {
		healthOptions = append(healthOptions, handlers.WithReadinessCheck("database", deps.Database.Ping))
	}
	if deps.Cache != nil {
		healthOptions = append(healthOptions, handlers.WithReadinessCheck("redis", deps.Cache.HealthCheck))
	}
	healthHandler := handlers.NewHealthHandler(healthOptions...)

	r.GET("/healthz", healthHandler.Status)
	r.GET("/readyz", healthHandler.Readiness)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	resetHandler := handlers.NewPasswordResetHandler(deps.Services.PasswordReset)
	captchaHandler := handlers.NewCaptchaHandler(deps.Services.Captcha)

	authGroup := r.Group("/auth")
	{
		forgotHandlers := withRule(deps, "forgot_password", forgotPasswordLimit(deps), resetHandler.ForgotPassword)
		authGroup.POST("/forgot-password", forgotHandlers...)

		verifyHandlers := withRule(deps, "verify_otp", verifyCodeLimit(deps), resetHandler.VerifyOTP)
		authGroup.POST("/verify-otp", verifyHandlers...)

		authGroup.POST("/reset-password", resetHandler.ResetPassword)
	}

	captchaGroup := r.Group("/api/captcha")
	{
		generateHandlers := withRule(deps, "captcha_generate", captchaGenerateLimit(deps), captchaHandler.Generate)
		captchaGroup.GET("/generate", generateHandlers...)
		captchaGroup.POST("/verify", captchaHandler.Verify)
	}

	return r
}

func withRule(deps Dependencies, name string, limit int, handler gin.HandlerFunc) []gin.HandlerFunc {
	if deps.RateLimiter == nil || deps.Config == nil || limit <= 0 || deps.Config.RateLimit.WindowDuration <= 0 {
		return []gin.HandlerFunc{handler}
	}

	rule := middleware.RateLimitRule{
		Name:       name,
		Limit:      limit,
		Window:     deps.Config.RateLimit.WindowDuration,
		Identifier: middleware.ClientIPIdentifier(),
	}
	return []gin.HandlerFunc{deps.RateLimiter.RateLimit(rule), handler}
}

func forgotPasswordLimit(deps Dependencies) int {
	if deps.Config == nil {
		return 0
	}
	return deps.Config.RateLimit.ForgotPasswordMaxPerIP
}

func verifyCodeLimit(deps Dependencies) int {
	if deps.Config == nil {
		return 0
	}
	return deps.Config.RateLimit.VerifyCodeMaxPerIP
}

func captchaGenerateLimit(deps Dependencies) int {
	if deps.Config == nil {
		return 0
	}
	return deps.Config.RateLimit.CaptchaGenerateMaxPerIP
}
