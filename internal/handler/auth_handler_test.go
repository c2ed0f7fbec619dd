package handler_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/stockroom-api/internal/config"
	"github.com/stockroom-api/internal/handler"
	"github.com/stockroom-api/internal/middleware"
	"github.com/stockroom-api/internal/models"
	"github.com/stockroom-api/internal/repository"
	"github.com/stockroom-api/internal/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const testPassword = "sup3r-secret"

// apiFixture wires the full API surface against a throwaway database. The
// rate limiters run without a Redis client, so they pass every request.
type apiFixture struct {
	db     *gorm.DB
	router *gin.Engine
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "api.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Item{}))

	userRepo := repository.NewUserRepository(db)
	itemRepo := repository.NewItemRepository(db)

	authService := service.NewAuthService(userRepo, config.JWTConfig{
		Secret:        "handler-test-secret",
		ExpireMinutes: 30,
	})
	itemService := service.NewItemService(itemRepo)

	authMiddleware := middleware.AuthMiddleware(authService)

	router := gin.New()
	api := router.Group("/api")
	handler.NewAuthHandler(authService).RegisterRoutes(api, authMiddleware,
		middleware.RateLimitMiddleware(nil, "signup", 3, time.Minute),
		middleware.RateLimitMiddleware(nil, "login", 5, time.Minute))
	handler.NewItemHandler(itemService).RegisterRoutes(api, authMiddleware)

	return &apiFixture{db: db, router: router}
}

func (f *apiFixture) request(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}
	return f.send(t, method, path, token, reader)
}

// requestRaw sends the body verbatim, for payloads json.Marshal cannot
// produce, such as explicit nulls and malformed JSON.
func (f *apiFixture) requestRaw(t *testing.T, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	return f.send(t, method, path, token, strings.NewReader(body))
}

func (f *apiFixture) send(t *testing.T, method, path, token string, body io.Reader) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func (f *apiFixture) signup(t *testing.T, email, username, password string) models.UserResponse {
	t.Helper()
	w := f.request(t, http.MethodPost, "/api/auth/signup", "", gin.H{
		"email":    email,
		"username": username,
		"password": password,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var user models.UserResponse
	decodeBody(t, w, &user)
	return user
}

func (f *apiFixture) login(t *testing.T, username, password string) string {
	t.Helper()
	w := f.request(t, http.MethodPost, "/api/auth/login", "", gin.H{
		"username": username,
		"password": password,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp service.LoginResponse
	decodeBody(t, w, &resp)
	require.NotEmpty(t, resp.AccessToken)
	return resp.AccessToken
}

func (f *apiFixture) signupAndLogin(t *testing.T, username string) string {
	t.Helper()
	f.signup(t, username+"@example.com", username, testPassword)
	return f.login(t, username, testPassword)
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), dst), w.Body.String())
}

func errorMessage(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error string `json:"error"`
	}
	decodeBody(t, w, &body)
	return body.Error
}

func TestSignupCreatesUser(t *testing.T) {
	f := newAPIFixture(t)

	w := f.request(t, http.MethodPost, "/api/auth/signup", "", gin.H{
		"email":     "  Alice@Example.COM ",
		"username":  "alice",
		"full_name": "Alice Smith",
		"password":  testPassword,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var user models.UserResponse
	decodeBody(t, w, &user)
	assert.NotZero(t, user.ID)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, "Alice Smith", user.FullName)
	assert.True(t, user.IsActive)
	assert.False(t, user.CreatedAt.IsZero())

	// The password must not leak in any form.
	assert.NotContains(t, w.Body.String(), "password")
	assert.NotContains(t, w.Body.String(), testPassword)
}

func TestSignupValidation(t *testing.T) {
	f := newAPIFixture(t)

	tests := []struct {
		name      string
		body      gin.H
		wantError string
	}{
		{
			name: "missing email",
			body: gin.H{"username": "alice", "password": testPassword},
		},
		{
			name: "missing password",
			body: gin.H{"email": "alice@example.com", "username": "alice"},
		},
		{
			name: "short password",
			body: gin.H{"email": "alice@example.com", "username": "alice", "password": "short"},
		},
		{
			name:      "invalid email",
			body:      gin.H{"email": "not-an-email", "username": "alice", "password": testPassword},
			wantError: "Invalid email format",
		},
		{
			name:      "username too short",
			body:      gin.H{"email": "alice@example.com", "username": "ab", "password": testPassword},
			wantError: "Username must be 3-50 characters and contain only letters, numbers, underscores, and hyphens",
		},
		{
			name:      "username with spaces",
			body:      gin.H{"email": "alice@example.com", "username": "bad user", "password": testPassword},
			wantError: "Username must be 3-50 characters and contain only letters, numbers, underscores, and hyphens",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := f.request(t, http.MethodPost, "/api/auth/signup", "", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			if tt.wantError != "" {
				assert.Equal(t, tt.wantError, errorMessage(t, w))
			}
		})
	}

	w := f.requestRaw(t, http.MethodPost, "/api/auth/signup", "", "{not json")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSignupConflicts(t *testing.T) {
	f := newAPIFixture(t)
	f.signup(t, "alice@example.com", "alice", testPassword)

	w := f.request(t, http.MethodPost, "/api/auth/signup", "", gin.H{
		"email":    "alice@example.com",
		"username": "different",
		"password": testPassword,
	})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "Email already registered", errorMessage(t, w))

	w = f.request(t, http.MethodPost, "/api/auth/signup", "", gin.H{
		"email":    "different@example.com",
		"username": "alice",
		"password": testPassword,
	})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "Username already taken", errorMessage(t, w))
}

func TestLoginReturnsToken(t *testing.T) {
	f := newAPIFixture(t)
	f.signup(t, "alice@example.com", "alice", testPassword)

	w := f.request(t, http.MethodPost, "/api/auth/login", "", gin.H{
		"username": "alice",
		"password": testPassword,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp service.LoginResponse
	decodeBody(t, w, &resp)
	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, "bearer", resp.TokenType)
	assert.Equal(t, "alice", resp.User.Username)
	assert.Equal(t, "alice@example.com", resp.User.Email)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	f := newAPIFixture(t)
	f.signup(t, "alice@example.com", "alice", testPassword)

	// Wrong password and unknown username produce the same response, so a
	// caller cannot probe which usernames exist.
	w := f.request(t, http.MethodPost, "/api/auth/login", "", gin.H{
		"username": "alice",
		"password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Incorrect username or password", errorMessage(t, w))

	w = f.request(t, http.MethodPost, "/api/auth/login", "", gin.H{
		"username": "nobody",
		"password": testPassword,
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Incorrect username or password", errorMessage(t, w))

	w = f.request(t, http.MethodPost, "/api/auth/login", "", gin.H{
		"username": "alice",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMeReturnsProfile(t *testing.T) {
	f := newAPIFixture(t)
	token := f.signupAndLogin(t, "alice")

	w := f.request(t, http.MethodGet, "/api/auth/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var user models.UserResponse
	decodeBody(t, w, &user)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, "alice@example.com", user.Email)

	w = f.request(t, http.MethodGet, "/api/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Missing authorization header", errorMessage(t, w))
}

func TestPasswordResetFlow(t *testing.T) {
	f := newAPIFixture(t)
	f.signup(t, "bob@example.com", "bob", "original-pass")

	// Email lookup is case-insensitive.
	w := f.request(t, http.MethodPost, "/api/auth/forgot-password", "", gin.H{
		"email": "Bob@Example.com",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var reset service.ForgotPasswordResponse
	decodeBody(t, w, &reset)
	assert.Equal(t, "Password reset token generated", reset.Message)
	assert.Len(t, reset.ResetToken, 43)
	assert.Equal(t, 3600, reset.ExpiresIn)

	// The old password stays valid until the token is redeemed.
	f.login(t, "bob", "original-pass")

	w = f.request(t, http.MethodPost, "/api/auth/reset-password", "", gin.H{
		"reset_token":  reset.ResetToken,
		"new_password": "brand-new-pass",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var body struct {
		Message string `json:"message"`
	}
	decodeBody(t, w, &body)
	assert.Equal(t, "Password successfully reset", body.Message)

	w = f.request(t, http.MethodPost, "/api/auth/login", "", gin.H{
		"username": "bob",
		"password": "original-pass",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	f.login(t, "bob", "brand-new-pass")

	// The token is single-use.
	w = f.request(t, http.MethodPost, "/api/auth/reset-password", "", gin.H{
		"reset_token":  reset.ResetToken,
		"new_password": "yet-another-pass",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid or expired reset token", errorMessage(t, w))
}

func TestForgotPasswordUnknownEmail(t *testing.T) {
	f := newAPIFixture(t)

	w := f.request(t, http.MethodPost, "/api/auth/forgot-password", "", gin.H{
		"email": "ghost@example.com",
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "If the email exists, a reset token has been generated", errorMessage(t, w))
}

func TestResetPasswordValidation(t *testing.T) {
	f := newAPIFixture(t)

	w := f.request(t, http.MethodPost, "/api/auth/reset-password", "", gin.H{
		"new_password": "brand-new-pass",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.request(t, http.MethodPost, "/api/auth/reset-password", "", gin.H{
		"reset_token":  "some-token",
		"new_password": "short",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.request(t, http.MethodPost, "/api/auth/reset-password", "", gin.H{
		"reset_token":  "never-issued-token",
		"new_password": "brand-new-pass",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid or expired reset token", errorMessage(t, w))
}

func TestInactiveUserCannotUseToken(t *testing.T) {
	f := newAPIFixture(t)
	token := f.signupAndLogin(t, "carol")

	err := f.db.Model(&models.User{}).
		Where("username = ?", "carol").
		Update("is_active", false).Error
	require.NoError(t, err)

	// Login itself still works for deactivated accounts.
	f.login(t, "carol", testPassword)

	// Authenticated routes do not.
	w := f.request(t, http.MethodGet, "/api/auth/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Inactive user", errorMessage(t, w))
}
