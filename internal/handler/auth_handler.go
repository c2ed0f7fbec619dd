package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/stockroom-api/internal/middleware"
	"github.com/stockroom-api/internal/repository"
	"github.com/stockroom-api/internal/service"
	"github.com/stockroom-api/pkg/response"
)

// AuthHandler handles authentication API requests
type AuthHandler struct {
	authService *service.AuthService
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// Signup handles user registration
// POST /api/auth/signup
func (h *AuthHandler) Signup(c *gin.Context) {
	var req service.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	user, err := h.authService.Signup(&req)
	if err != nil {
		var verr *service.ValidationError
		switch {
		case errors.As(err, &verr):
			response.BadRequest(c, verr.Message)
		case errors.Is(err, service.ErrEmailTaken):
			response.Conflict(c, "Email already registered")
		case errors.Is(err, service.ErrUsernameTaken):
			response.Conflict(c, "Username already taken")
		default:
			response.InternalError(c, "Could not create user")
		}
		return
	}

	response.Created(c, user.ToResponse())
}

// Login handles user authentication
// POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req service.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	resp, err := h.authService.Login(&req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			response.Unauthorized(c, "Incorrect username or password")
			return
		}
		response.InternalError(c, "Could not log in")
		return
	}

	response.OK(c, resp)
}

// ForgotPassword handles reset token generation
// POST /api/auth/forgot-password
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req service.ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	resp, err := h.authService.ForgotPassword(&req)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			// Do not reveal whether the email exists.
			response.NotFound(c, "If the email exists, a reset token has been generated")
			return
		}
		response.InternalError(c, "Could not generate reset token")
		return
	}

	response.OK(c, resp)
}

// ResetPassword handles password reset with a token
// POST /api/auth/reset-password
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req service.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if err := h.authService.ResetPassword(&req); err != nil {
		if errors.Is(err, service.ErrInvalidResetToken) {
			response.BadRequest(c, "Invalid or expired reset token")
			return
		}
		response.InternalError(c, "Could not reset password")
		return
	}

	response.OK(c, gin.H{"message": "Password successfully reset"})
}

// Me returns the authenticated user's profile
// GET /api/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	user := middleware.GetCurrentUser(c)
	if user == nil {
		response.Unauthorized(c, "Could not validate credentials")
		return
	}

	response.OK(c, user.ToResponse())
}

// RegisterRoutes registers authentication routes
func (h *AuthHandler) RegisterRoutes(rg *gin.RouterGroup, authMiddleware, signupLimiter, loginLimiter gin.HandlerFunc) {
	auth := rg.Group("/auth")
	{
		auth.POST("/signup", signupLimiter, h.Signup)
		auth.POST("/login", loginLimiter, h.Login)
		auth.POST("/forgot-password", h.ForgotPassword)
		auth.POST("/reset-password", h.ResetPassword)
		auth.GET("/me", authMiddleware, h.Me)
	}
}
