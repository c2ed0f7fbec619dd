package service

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/stockroom-api/internal/config"
	"github.com/stockroom-api/internal/models"
	"github.com/stockroom-api/internal/repository"
	"github.com/stockroom-api/pkg/crypto"
	"github.com/stockroom-api/pkg/keygen"
	"github.com/stockroom-api/pkg/sanitize"
)

var (
	ErrInvalidCredentials = errors.New("incorrect username or password")
	ErrEmailTaken         = errors.New("email already registered")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrInvalidToken       = errors.New("invalid token")
	ErrInvalidResetToken  = errors.New("invalid or expired reset token")
)

const (
	tokenIssuer      = "stockroom-api"
	resetTokenTTL    = time.Hour
	maxFullNameRunes = 200
)

// UserStore is the persistence surface the auth service depends on
type UserStore interface {
	Create(user *models.User) error
	GetByID(id uint) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	GetByUsername(username string) (*models.User, error)
	GetByResetToken(token string) (*models.User, error)
	ExistsByEmail(email string) (bool, error)
	ExistsByUsername(username string) (bool, error)
	SetResetToken(user *models.User, token string, expiresAt time.Time) error
	ClearResetToken(user *models.User) error
	UpdatePassword(user *models.User, passwordHash string) error
}

// AuthService handles registration, authentication and password recovery
type AuthService struct {
	userStore UserStore
	jwtConfig config.JWTConfig
}

// NewAuthService creates a new AuthService
func NewAuthService(userStore UserStore, jwtConfig config.JWTConfig) *AuthService {
	return &AuthService{
		userStore: userStore,
		jwtConfig: jwtConfig,
	}
}

// SignupRequest represents the registration request
type SignupRequest struct {
	Email    string `json:"email" binding:"required"`
	Username string `json:"username" binding:"required"`
	FullName string `json:"full_name"`
	Password string `json:"password" binding:"required,min=8"`
}

// LoginRequest represents the login request
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse carries the bearer token and the authenticated user
type LoginResponse struct {
	AccessToken string              `json:"access_token"`
	TokenType   string              `json:"token_type"`
	User        models.UserResponse `json:"user"`
}

// ForgotPasswordRequest represents the reset token request
type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required"`
}

// ForgotPasswordResponse returns the freshly minted reset token. A deployment
// with outbound mail would deliver the token instead of echoing it.
type ForgotPasswordResponse struct {
	Message    string `json:"message"`
	ResetToken string `json:"reset_token"`
	ExpiresIn  int    `json:"expires_in"`
}

// ResetPasswordRequest represents the password reset request
type ResetPasswordRequest struct {
	ResetToken  string `json:"reset_token" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8"`
}

// TokenClaims are the JWT claims carried by access tokens. The subject is
// the user ID in decimal.
type TokenClaims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// UserID parses the numeric user ID out of the subject claim
func (c *TokenClaims) UserID() (uint, error) {
	id, err := strconv.ParseUint(c.Subject, 10, 32)
	if err != nil {
		return 0, ErrInvalidToken
	}
	return uint(id), nil
}

// Signup registers a new user. Inputs are sanitized before validation, the
// email is lowercased, and uniqueness of email and username is checked in
// that order.
func (s *AuthService) Signup(req *SignupRequest) (*models.User, error) {
	email := sanitize.Input(strings.ToLower(req.Email))
	username := sanitize.Input(req.Username)
	fullName := sanitize.Input(req.FullName)

	if !sanitize.ValidateEmail(email) {
		return nil, newValidationError("Invalid email format")
	}
	if !sanitize.ValidateUsername(username) {
		return nil, newValidationError("Username must be 3-50 characters and contain only letters, numbers, underscores, and hyphens")
	}
	if len([]rune(fullName)) > maxFullNameRunes {
		return nil, newValidationError("Full name must be at most 200 characters")
	}

	exists, err := s.userStore.ExistsByEmail(email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrEmailTaken
	}

	exists, err = s.userStore.ExistsByUsername(username)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrUsernameTaken
	}

	passwordHash, err := crypto.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:        email,
		Username:     username,
		FullName:     fullName,
		PasswordHash: passwordHash,
		IsActive:     true,
	}

	if err := s.userStore.Create(user); err != nil {
		return nil, err
	}

	return user, nil
}

// Login authenticates a user by username and returns a bearer token
func (s *AuthService) Login(req *LoginRequest) (*LoginResponse, error) {
	username := sanitize.Input(req.Username)

	user, err := s.userStore.GetByUsername(username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !crypto.CheckPassword(req.Password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	token, err := s.generateToken(user)
	if err != nil {
		return nil, err
	}

	return &LoginResponse{
		AccessToken: token,
		TokenType:   "bearer",
		User:        user.ToResponse(),
	}, nil
}

// ForgotPassword mints a single-use reset token valid for one hour
func (s *AuthService) ForgotPassword(req *ForgotPasswordRequest) (*ForgotPasswordResponse, error) {
	email := sanitize.Input(strings.ToLower(req.Email))

	user, err := s.userStore.GetByEmail(email)
	if err != nil {
		return nil, err
	}

	token, err := keygen.GenerateResetToken()
	if err != nil {
		return nil, err
	}

	if err := s.userStore.SetResetToken(user, token, time.Now().Add(resetTokenTTL)); err != nil {
		return nil, err
	}

	return &ForgotPasswordResponse{
		Message:    "Password reset token generated",
		ResetToken: token,
		ExpiresIn:  int(resetTokenTTL.Seconds()),
	}, nil
}

// ResetPassword consumes a reset token and replaces the user's password.
// The token is cleared regardless of how many attempts follow, so it can be
// used exactly once.
func (s *AuthService) ResetPassword(req *ResetPasswordRequest) error {
	user, err := s.userStore.GetByResetToken(req.ResetToken)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrInvalidResetToken
		}
		return err
	}

	if !user.HasValidResetToken(time.Now()) {
		return ErrInvalidResetToken
	}

	passwordHash, err := crypto.HashPassword(req.NewPassword)
	if err != nil {
		return err
	}

	if err := s.userStore.UpdatePassword(user, passwordHash); err != nil {
		return err
	}

	return s.userStore.ClearResetToken(user)
}

// ValidateToken verifies an access token's signature and expiry and returns
// its claims
func (s *AuthService) ValidateToken(tokenString string) (*TokenClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &TokenClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.jwtConfig.Secret), nil
	}, jwt.WithValidMethods([]string{"HS256"}))

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*TokenClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, ErrInvalidToken
}

// GetUserByID retrieves a user by ID
func (s *AuthService) GetUserByID(id uint) (*models.User, error) {
	return s.userStore.GetByID(id)
}

// generateToken signs a JWT for the user
func (s *AuthService) generateToken(user *models.User) (string, error) {
	expiresIn := time.Duration(s.jwtConfig.ExpireMinutes) * time.Minute

	claims := &TokenClaims{
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(user.ID), 10),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiresIn)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    tokenIssuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtConfig.Secret))
}
