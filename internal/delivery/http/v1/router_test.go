package v1_test

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"go-autofill-backend/config"
	"go-autofill-backend/internal/delivery/http/middleware"
	v1 "go-autofill-backend/internal/delivery/http/v1"
	"go-autofill-backend/internal/domain"
	"go-autofill-backend/internal/repository/memory"
	"go-autofill-backend/internal/usecase"
	"go-autofill-backend/pkg/auth"
	"go-autofill-backend/pkg/security"
	"go-autofill-backend/pkg/security/antivirus"
	"go-autofill-backend/pkg/validation"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type envelope struct {
	Success   bool            `json:"success"`
	Message   string          `json:"message"`
	Data      json.RawMessage `json:"data"`
	RequestID string          `json:"request_id"`
}

type testServer struct {
	router *gin.Engine
	store  *memory.Store
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		FrontendURL:              "http://localhost:5173",
		JWTExpirationHours:       1,
		RateLimitWindowSeconds:   60,
		RateLimitGlobalThreshold: 1000,
		RateLimitLoginThreshold:  1000,
		MaxResumeBytes:           1 << 20,
	}
	store := memory.New()
	validate := validation.New()
	secLog := security.NewSecurityLogger(zap.NewNop(), "test", "test")
	tokens := auth.NewTokenService("test-secret", cfg.JWTExpirationHours)

	authUC := usecase.NewAuthUsecase(store, auth.NewPasswordHasher(4), tokens, validate)
	router := v1.NewRouter(v1.RouterDeps{
		AuthUC:        authUC,
		ProfileUC:     usecase.NewProfileUsecase(store.Profiles(), validate),
		ResumeUC:      usecase.NewResumeUsecase(store.Resumes(), antivirus.NewNoOpScanner(), secLog, cfg.MaxResumeBytes, validate),
		FormHistoryUC: usecase.NewFormHistoryUsecase(store.FormHistories(), store.Statistics(), validate),
		ExtensionUC:   usecase.NewExtensionUsecase(store),
		StatisticsUC:  usecase.NewStatisticsUsecase(store.Statistics()),
		HealthUC:      usecase.NewHealthUsecase(store, nil),
		Tokens:        tokens,
		LoginTracker:  security.NewLoginTracker(security.LoginTrackerConfig{MaxAttempts: 3, UseIPTracking: true}, nil, secLog),
		UploadLimiter: security.NewUploadLimiter(2, 50, nil),
		RateLimiter:   middleware.NewRateLimiter(nil, secLog),
		SecurityLog:   secLog,
		Config:        cfg,
	})
	return &testServer{router: router, store: store}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var env envelope
	if w.Header().Get("Content-Type") == "application/json; charset=utf-8" {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	}
	return w, env
}

func (s *testServer) register(t *testing.T, username, email string) (string, domain.User) {
	t.Helper()
	w, env := s.do(t, http.MethodPost, "/api/v1/auth/register", "", map[string]any{
		"username": username,
		"email":    email,
		"password": "s3cret-pass",
		"name":     "Jane Doe",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var result domain.AuthResult
	require.NoError(t, json.Unmarshal(env.Data, &result))
	return result.Token, *result.User
}

func TestAuthFlow(t *testing.T) {
	s := newTestServer(t)
	token, user := s.register(t, "jane", "jane@example.com")

	t.Run("Me returns the caller", func(t *testing.T) {
		w, env := s.do(t, http.MethodGet, "/api/v1/auth/me", token, nil)
		require.Equal(t, http.StatusOK, w.Code)
		var me domain.User
		require.NoError(t, json.Unmarshal(env.Data, &me))
		assert.Equal(t, user.ID, me.ID)
		assert.NotContains(t, w.Body.String(), "s3cret-pass")
		assert.NotEmpty(t, env.RequestID)
	})

	t.Run("Missing token is 401 and bad token is 403", func(t *testing.T) {
		w, _ := s.do(t, http.MethodGet, "/api/v1/auth/me", "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		w, _ = s.do(t, http.MethodGet, "/api/v1/auth/me", "not-a-token", nil)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("Duplicate registration is 409", func(t *testing.T) {
		w, env := s.do(t, http.MethodPost, "/api/v1/auth/register", "", map[string]any{
			"username": "jane", "email": "new@example.com", "password": "s3cret-pass", "name": "Jane",
		})
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.False(t, env.Success)
	})

	t.Run("Login works through the legacy path", func(t *testing.T) {
		w, env := s.do(t, http.MethodPost, "/api/v1/users/login", "", map[string]any{
			"username": "jane", "password": "s3cret-pass",
		})
		require.Equal(t, http.StatusOK, w.Code)
		assert.True(t, env.Success)
		assert.NotEmpty(t, w.Result().Cookies())
	})

	t.Run("Update user merges fields", func(t *testing.T) {
		w, env := s.do(t, http.MethodPut, "/api/v1/users/me", token, map[string]any{"location": "Porto"})
		require.Equal(t, http.StatusOK, w.Code)
		var updated domain.User
		require.NoError(t, json.Unmarshal(env.Data, &updated))
		assert.Equal(t, "Porto", *updated.Location)
		assert.Equal(t, "Jane Doe", updated.Name)
	})
}

func TestLoginLockout(t *testing.T) {
	s := newTestServer(t)
	s.register(t, "jane", "jane@example.com")

	bad := map[string]any{"email": "jane@example.com", "password": "wrong"}
	for i := 0; i < 2; i++ {
		w, _ := s.do(t, http.MethodPost, "/api/v1/auth/login", "", bad)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	}
	w, _ := s.do(t, http.MethodPost, "/api/v1/auth/login", "", bad)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)

	// Blocked even with the right password
	w, _ = s.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]any{"email": "jane@example.com", "password": "s3cret-pass"})
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}

func TestProfileAndExtension(t *testing.T) {
	s := newTestServer(t)
	token, _ := s.register(t, "jane", "jane@example.com")

	w, env := s.do(t, http.MethodGet, "/api/v1/profile", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var profile domain.Profile
	require.NoError(t, json.Unmarshal(env.Data, &profile))
	assert.Equal(t, domain.DefaultProfileCompletion, profile.CompletionPercentage)

	w, env = s.do(t, http.MethodPut, "/api/v1/profile", token, map[string]any{
		"profile": map[string]any{
			"skills":                []string{"Go", "Postgres"},
			"completion_percentage": 55,
		},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.NoError(t, json.Unmarshal(env.Data, &profile))
	assert.Equal(t, []string{"Go", "Postgres"}, profile.Skills)
	assert.Equal(t, "Jane Doe", profile.PersonalInfo.Name)

	w, _ = s.do(t, http.MethodPut, "/api/v1/profile", token, map[string]any{
		"profile": map[string]any{"completion_percentage": 101},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// camelCase keys bind to nothing and are refused rather than ignored
	w, _ = s.do(t, http.MethodPut, "/api/v1/extension-settings", token, map[string]any{
		"settings": map[string]any{"showNotifications": false},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, env = s.do(t, http.MethodPut, "/api/v1/extension-settings", token, map[string]any{
		"settings": map[string]any{"show_notifications": false},
	})
	require.Equal(t, http.StatusOK, w.Code)
	var settings domain.ExtensionSettings
	require.NoError(t, json.Unmarshal(env.Data, &settings))
	assert.False(t, settings.ShowNotifications)
	assert.True(t, settings.AutoFillOnLoad)

	w, env = s.do(t, http.MethodGet, "/api/v1/extension-data", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var data domain.ExtensionData
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, []string{"Go", "Postgres"}, data.Profile.Skills)
	assert.False(t, data.Settings.ShowNotifications)
	assert.Nil(t, data.DefaultResume)
}

func TestFormHistoryUpdatesStatistics(t *testing.T) {
	s := newTestServer(t)
	token, _ := s.register(t, "jane", "jane@example.com")

	w, env := s.do(t, http.MethodPost, "/api/v1/form-history", token, map[string]any{
		"site": "jobs.example.com", "fields_attempted": 8, "fields_completed": 8, "status": "success",
		"timestamp": "2001-01-01T00:00:00Z",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var history domain.FormHistory
	require.NoError(t, json.Unmarshal(env.Data, &history))
	assert.NotEqual(t, 2001, history.Timestamp.Year())

	w, _ = s.do(t, http.MethodPost, "/api/v1/form-history", token, map[string]any{
		"site": "careers.example.org", "fields_attempted": 8, "fields_completed": 3, "status": "failed",
		"details": map[string]any{"error": "captcha"},
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w, env = s.do(t, http.MethodGet, "/api/v1/statistics", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var stats domain.Statistics
	require.NoError(t, json.Unmarshal(env.Data, &stats))
	assert.Equal(t, 2, stats.ApplicationsFilled)
	assert.Equal(t, 50, stats.SuccessRate)
	assert.Equal(t, 10, stats.TimeSaved)

	w, env = s.do(t, http.MethodGet, "/api/v1/form-history?limit=1", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list []domain.FormHistory
	require.NoError(t, json.Unmarshal(env.Data, &list))
	require.Len(t, list, 1)
	assert.Equal(t, "careers.example.org", list[0].Site)

	w, _ = s.do(t, http.MethodGet, "/api/v1/form-history?limit=abc", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = s.do(t, http.MethodGet, "/api/v1/form-history/export", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "form_history_")
	assert.Equal(t, "PK", w.Body.String()[:2])
}

func TestResumes(t *testing.T) {
	s := newTestServer(t)
	token, _ := s.register(t, "jane", "jane@example.com")
	otherToken, _ := s.register(t, "john", "john@example.com")

	content := base64.StdEncoding.EncodeToString([]byte("%PDF-1.4\n1 0 obj\n<<>>\nendobj\n%%EOF\n"))
	w, env := s.do(t, http.MethodPost, "/api/v1/resumes", token, map[string]any{
		"filename": "cv.pdf", "file_content": content, "is_default": true,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var resume domain.Resume
	require.NoError(t, json.Unmarshal(env.Data, &resume))
	assert.True(t, resume.IsDefault)

	w, _ = s.do(t, http.MethodPut, "/api/v1/resumes/"+resume.ID+"/default", otherToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = s.do(t, http.MethodDelete, "/api/v1/resumes/"+resume.ID, otherToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, env = s.do(t, http.MethodGet, "/api/v1/resumes/default", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var def domain.Resume
	require.NoError(t, json.Unmarshal(env.Data, &def))
	assert.Equal(t, resume.ID, def.ID)

	w, _ = s.do(t, http.MethodPost, "/api/v1/resumes", token, map[string]any{
		"filename": "cv.exe", "file_content": content,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Per-IP quota of two per minute is now spent
	w, _ = s.do(t, http.MethodPost, "/api/v1/resumes", token, map[string]any{
		"filename": "cv.pdf", "file_content": content,
	})
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "60", w.Header().Get("Retry-After"))
}

func TestOperationalEndpoints(t *testing.T) {
	s := newTestServer(t)

	w, env := s.do(t, http.MethodGet, "/api/v1/health", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, env.Success)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))

	w, _ = s.do(t, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "autofill_http_requests_total")
}

func TestCORS(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/profile", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodOptions, "/api/v1/profile", nil)
	req.Header.Set("Origin", "chrome-extension://abcdefghijklmnop")
	w = httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)

	req = httptest.NewRequest(http.MethodOptions, "/api/v1/profile", nil)
	req.Header.Set("Origin", "https://evil.example")
	w = httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}
