package middleware_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go-autofill-backend/internal/delivery/http/middleware"
	"go-autofill-backend/internal/domain"
	"go-autofill-backend/pkg/apperror"
	"go-autofill-backend/pkg/auth"
	"go-autofill-backend/pkg/security"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestErrorHandler(t *testing.T) {
	cases := map[string]struct {
		err  error
		code int
	}{
		"app error":   {apperror.NotFound("Profile not found"), http.StatusNotFound},
		"duplicate":   {fmt.Errorf("%w: users_email_key", domain.ErrDuplicateKey), http.StatusConflict},
		"not found":   {domain.ErrNotFound, http.StatusNotFound},
		"unavailable": {fmt.Errorf("ping: %w", domain.ErrUnavailable), http.StatusServiceUnavailable},
		"unknown":     {errors.New("boom"), http.StatusInternalServerError},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			r := gin.New()
			r.Use(middleware.ErrorHandler())
			r.GET("/", func(c *gin.Context) { c.Error(tc.err) })

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

			assert.Equal(t, tc.code, w.Code)
			assert.NotContains(t, w.Body.String(), "boom")
		})
	}
}

func TestRateLimiterInMemory(t *testing.T) {
	limiter := middleware.NewRateLimiter(nil, security.NewSecurityLogger(zap.NewNop(), "test", "test"))

	r := gin.New()
	r.Use(limiter.Middleware(middleware.GlobalRateLimitConfig(2, time.Minute)))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "2", w.Header().Get("X-RateLimit-Limit"))
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))
	assert.NotEmpty(t, w.Header().Get("Retry-After"))

	// A different client has its own window
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "198.51.100.7:4321"
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(middleware.RequestID())
	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(string(domain.KeyRequestID)))
	})

	const incoming = "3f0c9f5e-4b1a-4c7e-9d0a-2a6f1b0c8e11"
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", incoming)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, incoming, w.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "<script>")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.NotEqual(t, "<script>", w.Body.String())
	assert.Len(t, w.Body.String(), 36)
}

type MockAuthUsecase struct {
	mock.Mock
}

func (m *MockAuthUsecase) Register(ctx context.Context, input domain.RegisterInput) (*domain.AuthResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AuthResult), args.Error(1)
}

func (m *MockAuthUsecase) Login(ctx context.Context, input domain.LoginInput) (*domain.AuthResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AuthResult), args.Error(1)
}

func (m *MockAuthUsecase) GetCurrentUser(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockAuthUsecase) UpdateUser(ctx context.Context, id string, patch domain.UserPatch) (*domain.User, error) {
	args := m.Called(ctx, id, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func TestAuthMiddleware(t *testing.T) {
	tokens := auth.NewTokenService("test-secret", 1)
	token, err := tokens.GenerateToken("user-1", "jane", "jane@example.com")
	require.NoError(t, err)
	secLog := security.NewSecurityLogger(zap.NewNop(), "test", "test")

	cases := map[string]struct {
		user *domain.User
		err  error
		code int
	}{
		"existing user":      {&domain.User{ID: "user-1", Username: "jane"}, nil, http.StatusOK},
		"deleted user":       {nil, apperror.NotFound("User not found"), http.StatusUnauthorized},
		"storage down":       {nil, apperror.Unavailable(fmt.Errorf("ping: %w", domain.ErrUnavailable)), http.StatusServiceUnavailable},
		"bare storage error": {nil, fmt.Errorf("query user: %w", domain.ErrUnavailable), http.StatusServiceUnavailable},
		"unexpected error":   {nil, errors.New("boom"), http.StatusInternalServerError},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			authUC := new(MockAuthUsecase)
			authUC.On("GetCurrentUser", mock.Anything, "user-1").Return(tc.user, tc.err)

			r := gin.New()
			r.Use(middleware.ErrorHandler())
			r.Use(middleware.AuthMiddleware(tokens, authUC, secLog))
			r.GET("/", func(c *gin.Context) {
				c.String(http.StatusOK, c.GetString(string(domain.KeyUserID)))
			})

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set("Authorization", "Bearer "+token)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tc.code, w.Code, w.Body.String())
			if tc.code == http.StatusOK {
				assert.Equal(t, "user-1", w.Body.String())
			}
			authUC.AssertExpectations(t)
		})
	}
}
