package v1

import (
	"net/http"
	"time"

	"go-autofill-backend/config"
	"go-autofill-backend/internal/delivery/http/middleware"
	"go-autofill-backend/internal/delivery/http/response"
	"go-autofill-backend/internal/domain"
	"go-autofill-backend/internal/usecase"
	"go-autofill-backend/pkg/auth"
	"go-autofill-backend/pkg/metrics"
	"go-autofill-backend/pkg/security"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type RouterDeps struct {
	AuthUC        domain.AuthUsecase
	ProfileUC     domain.ProfileUsecase
	ResumeUC      domain.ResumeUsecase
	FormHistoryUC domain.FormHistoryUsecase
	ExtensionUC   domain.ExtensionUsecase
	StatisticsUC  domain.StatisticsUsecase
	HealthUC      usecase.HealthUsecase
	Tokens        *auth.TokenService
	LoginTracker  *security.LoginTracker
	UploadLimiter *security.UploadLimiter
	RateLimiter   *middleware.RateLimiter
	SecurityLog   *security.SecurityLogger
	Config        *config.Config
}

func NewRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()

	window := time.Duration(deps.Config.RateLimitWindowSeconds) * time.Second

	// Global Middlewares
	r.Use(middleware.CORSMiddleware(deps.Config.Origins())) // CORS must be first!
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.SecurityHeadersMiddleware())
	r.Use(metrics.GinMiddleware())
	r.Use(middleware.ErrorHandler())

	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api/v1")
	api.Use(deps.RateLimiter.Middleware(middleware.GlobalRateLimitConfig(deps.Config.RateLimitGlobalThreshold, window)))

	// Health Check
	api.GET("/health", func(c *gin.Context) {
		status := deps.HealthUC.Check(c.Request.Context())
		code := http.StatusOK
		if status.Status == "unavailable" {
			code = http.StatusServiceUnavailable
		}
		response.Success(c, code, "System "+status.Status, status)
	})

	// Swagger
	api.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	public := api.Group("")
	public.Use(deps.RateLimiter.Middleware(middleware.AuthRateLimitConfig(deps.Config.RateLimitLoginThreshold, window)))

	// Protected routes
	protected := api.Group("")
	protected.Use(middleware.AuthMiddleware(deps.Tokens, deps.AuthUC, deps.SecurityLog))
	{
		NewAuthHandler(public, protected, deps.AuthUC, deps.LoginTracker, deps.SecurityLog, deps.Config)
		NewProfileHandler(protected, deps.ProfileUC)
		NewResumeHandler(protected, deps.ResumeUC, deps.UploadLimiter, deps.SecurityLog, deps.Config.MaxResumeBytes)
		NewFormHistoryHandler(protected, deps.FormHistoryUC)
		NewExtensionHandler(protected, deps.ExtensionUC)
		NewStatisticsHandler(protected, deps.StatisticsUC)
	}

	return r
}
