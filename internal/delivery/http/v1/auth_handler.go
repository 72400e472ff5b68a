package v1

import (
	"errors"
	"log/slog"
	"net/http"

	"go-autofill-backend/config"
	"go-autofill-backend/internal/delivery/http/response"
	"go-autofill-backend/internal/domain"
	"go-autofill-backend/pkg/apperror"
	"go-autofill-backend/pkg/logger"
	"go-autofill-backend/pkg/security"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	authUC      domain.AuthUsecase
	tracker     *security.LoginTracker
	securityLog *security.SecurityLogger
	config      *config.Config
}

func NewAuthHandler(
	public *gin.RouterGroup,
	protected *gin.RouterGroup,
	authUC domain.AuthUsecase,
	tracker *security.LoginTracker,
	securityLog *security.SecurityLogger,
	cfg *config.Config,
) {
	handler := &AuthHandler{
		authUC:      authUC,
		tracker:     tracker,
		securityLog: securityLog,
		config:      cfg,
	}

	// Public Routes
	publicAuth := public.Group("/auth")
	{
		publicAuth.POST("/register", handler.Register)
		publicAuth.POST("/login", handler.Login)
	}
	// Older extension builds post here
	publicUsers := public.Group("/users")
	{
		publicUsers.POST("/register", handler.Register)
		publicUsers.POST("/login", handler.Login)
	}

	// Protected Routes
	protected.GET("/auth/me", handler.Me)
	protected.PUT("/users/me", handler.UpdateMe)
}

// Register godoc
// @Summary      User Registration
// @Description  Creates the account together with a starter profile, extension settings and statistics.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        register  body      domain.RegisterInput  true  "Registration Details"
// @Success      201    {object}  response.Response{data=domain.AuthResult}
// @Failure      400    {object}  response.Response
// @Failure      409    {object}  response.Response
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req domain.RegisterInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest("Invalid request body"))
		return
	}

	result, err := h.authUC.Register(c.Request.Context(), req)
	if err != nil {
		c.Error(err)
		return
	}

	h.securityLog.LogUserRegistered(c.Request.Context(), result.User.ID, c.ClientIP(), requestID(c))
	h.setAuthCookie(c, result.Token)
	response.Success(c, http.StatusCreated, "Registration successful", result)
}

// Login godoc
// @Summary      User Login
// @Description  Logs in with email or username. Repeated failures block the identifier and IP for a while.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        login  body      domain.LoginInput  true  "Login Credentials"
// @Success      200    {object}  response.Response{data=domain.AuthResult}
// @Failure      400    {object}  response.Response
// @Failure      401    {object}  response.Response
// @Failure      429    {object}  response.Response
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req domain.LoginInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest("Invalid request body"))
		return
	}

	ctx := c.Request.Context()
	ip := c.ClientIP()
	identifier := req.Email
	if identifier == "" {
		identifier = req.Username
	}

	blocked, err := h.tracker.IsBlocked(ctx, identifier, ip)
	if err != nil {
		// Tracker outage must not lock everyone out
		logger.Log.Warn("Login tracker unavailable", slog.Any("error", err))
	}
	if blocked {
		h.securityLog.LogLoginBlocked(ctx, identifier, ip, c.GetHeader("User-Agent"), requestID(c))
		c.Error(apperror.TooManyRequests("Too many failed login attempts. Please try again later."))
		return
	}

	result, err := h.authUC.Login(ctx, req)
	if err != nil {
		var appErr *apperror.AppError
		if errors.As(err, &appErr) && appErr.Code == http.StatusUnauthorized {
			nowBlocked, _, trackErr := h.tracker.RecordFailedAttempt(ctx, identifier, ip, c.GetHeader("User-Agent"), requestID(c))
			if trackErr != nil {
				logger.Log.Warn("Failed to record login attempt", slog.Any("error", trackErr))
			}
			if nowBlocked {
				c.Error(apperror.TooManyRequests("Too many failed login attempts. Please try again later."))
				return
			}
		}
		c.Error(err)
		return
	}

	if err := h.tracker.ClearAttempts(ctx, identifier, ip); err != nil {
		logger.Log.Warn("Failed to clear login attempts", slog.Any("error", err))
	}
	h.securityLog.LogLoginSuccess(ctx, result.User.ID, ip, requestID(c))
	h.setAuthCookie(c, result.Token)
	response.Success(c, http.StatusOK, "Login successful", result)
}

// Me godoc
// @Summary      Current user
// @Tags         auth
// @Produce      json
// @Success      200  {object}  response.Response{data=domain.User}
// @Failure      401  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /auth/me [get]
// @Security     BearerAuth
func (h *AuthHandler) Me(c *gin.Context) {
	user, err := h.authUC.GetCurrentUser(c.Request.Context(), currentUserID(c))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Current user", user)
}

// UpdateMe godoc
// @Summary      Update current user
// @Description  Merges the given fields into the account. Absent fields are left unchanged.
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        user  body      domain.UserPatch  true  "Fields to change"
// @Success      200   {object}  response.Response{data=domain.User}
// @Failure      400   {object}  response.Response
// @Failure      409   {object}  response.Response
// @Router       /users/me [put]
// @Security     BearerAuth
func (h *AuthHandler) UpdateMe(c *gin.Context) {
	var patch domain.UserPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.Error(apperror.BadRequest("Invalid request body"))
		return
	}

	user, err := h.authUC.UpdateUser(c.Request.Context(), currentUserID(c), patch)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "User updated", user)
}

func (h *AuthHandler) setAuthCookie(c *gin.Context, token string) {
	maxAge := h.config.JWTExpirationHours * 3600
	secure := h.config.GinMode == "release"
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie("auth_token", token, maxAge, "/", "", secure, true)
}
