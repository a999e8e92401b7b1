package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/superherotang/clip/internal/domain"
	"github.com/superherotang/clip/internal/repository"
)

// bcryptCost is the fixed work factor for password hashes.
const bcryptCost = 12

// minUsernameLen and minPasswordLen mirror the handler-side binding
// rules; the service re-checks so no entry path can skip them.
const (
	minUsernameLen = 3
	minPasswordLen = 6
)

// AuthService handles registration, login, the stateless session codec
// and API keys. Both identity paths (cookie session and bearer key)
// resolve to the same domain.Session shape.
type AuthService struct {
	userRepo   repository.UserRepository
	jwtSecret  []byte
	sessionTTL time.Duration
}

// NewAuthService creates an AuthService. sessionTTLHours bounds how
// long issued session tokens stay valid.
func NewAuthService(userRepo repository.UserRepository, jwtSecret string, sessionTTLHours int) (*AuthService, error) {
	if userRepo == nil {
		panic("UserRepository cannot be nil for AuthService")
	}
	if jwtSecret == "" {
		return nil, fmt.Errorf("JWT secret key cannot be empty")
	}
	if sessionTTLHours <= 0 {
		sessionTTLHours = 7 * 24
	}
	return &AuthService{
		userRepo:   userRepo,
		jwtSecret:  []byte(jwtSecret),
		sessionTTL: time.Duration(sessionTTLHours) * time.Hour,
	}, nil
}

// Register creates a new account. The returned user carries the API key
// issued at signup; the password hash is cleared before returning.
func (s *AuthService) Register(ctx context.Context, username, password string) (*domain.User, error) {
	logCtx := logrus.WithField("username", username)

	if len(username) < minUsernameLen || len(password) < minPasswordLen {
		return nil, ErrInvalidInput
	}

	if _, err := s.userRepo.FindByUsername(ctx, username); err == nil {
		logCtx.Warn("Registration failed: username already exists")
		return nil, ErrRegistrationFailed
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		logCtx.WithError(err).Error("Database error checking username availability")
		return nil, ErrInternalServer
	}

	hashedPassword, err := hashPassword(password)
	if err != nil {
		logCtx.WithError(err).Error("Failed to hash password during registration")
		return nil, ErrInternalServer
	}

	apiKey, err := generateAPIKey()
	if err != nil {
		logCtx.WithError(err).Error("Failed to generate API key during registration")
		return nil, ErrInternalServer
	}

	user := &domain.User{
		Username: username,
		Password: hashedPassword,
		APIKey:   &apiKey,
	}
	if err := s.userRepo.Save(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEntry) {
			logCtx.Warn("Registration failed: username taken by concurrent signup")
			return nil, ErrRegistrationFailed
		}
		logCtx.WithError(err).Error("Database error during user creation")
		return nil, ErrInternalServer
	}

	logCtx.WithField("user_id", user.ID).Info("User registered successfully")
	user.Password = ""
	return user, nil
}

// Login verifies the credentials and returns the account. Not-found and
// wrong-password both collapse into ErrAuthenticationFailed so the
// response does not leak whether the username exists.
func (s *AuthService) Login(ctx context.Context, username, password string) (*domain.User, error) {
	logCtx := logrus.WithField("username", username)

	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			logCtx.Warn("Login attempt failed: user not found")
		} else {
			logCtx.WithError(err).Warn("Login attempt failed: error finding user")
		}
		return nil, ErrAuthenticationFailed
	}

	if !checkPassword(password, user.Password) {
		logCtx.Warn("Login attempt failed: invalid password")
		return nil, ErrAuthenticationFailed
	}

	logCtx.WithField("user_id", user.ID).Info("User logged in successfully")
	user.Password = ""
	return user, nil
}

// IssueSession signs a token carrying the minimal identity claims.
// Verification is pure computation, so no store lookup happens per
// request.
func (s *AuthService) IssueSession(user *domain.User) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":  user.ID,
		"username": user.Username,
		"email":    user.Email,
		"iat":      now.Unix(),
		"exp":      now.Add(s.sessionTTL).Unix(),
	})
	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, nil
}

// VerifySession checks signature and expiry and returns the embedded
// identity. Any failure — malformed token, wrong signature, expiry —
// yields nil, so callers treat "no session" and "bad session" the same.
func (s *AuthService) VerifySession(tokenStr string) *domain.Session {
	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return nil
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil
	}

	userIDFloat, ok := claims["user_id"].(float64)
	if !ok || userIDFloat <= 0 || userIDFloat != float64(uint(userIDFloat)) {
		return nil
	}
	username, _ := claims["username"].(string)
	email, _ := claims["email"].(string)
	return &domain.Session{
		UserID:   uint(userIDFloat),
		Username: username,
		Email:    email,
	}
}

// GetAPIKey returns the user's current API key, empty if none has been
// issued yet.
func (s *AuthService) GetAPIKey(ctx context.Context, userID uint) (string, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		logrus.WithError(err).WithField("user_id", userID).Error("Failed to load user for API key lookup")
		return "", ErrInternalServer
	}
	if user.APIKey == nil {
		return "", nil
	}
	return *user.APIKey, nil
}

// RegenerateAPIKey issues a fresh key, overwriting the previous one.
// The old key stops resolving immediately.
func (s *AuthService) RegenerateAPIKey(ctx context.Context, userID uint) (string, error) {
	key, err := generateAPIKey()
	if err != nil {
		logrus.WithError(err).Error("Failed to generate API key")
		return "", ErrInternalServer
	}
	if err := s.userRepo.UpdateAPIKey(ctx, userID, key); err != nil {
		logrus.WithError(err).WithField("user_id", userID).Error("Failed to store regenerated API key")
		return "", ErrInternalServer
	}
	logrus.WithField("user_id", userID).Info("API key regenerated")
	return key, nil
}

// ValidateAPIKey resolves a bearer key to an identity via the unique
// index. A miss yields ErrAuthenticationFailed, never a not-found, so
// the external surface cannot probe key existence.
func (s *AuthService) ValidateAPIKey(ctx context.Context, key string) (*domain.Session, error) {
	if key == "" {
		return nil, ErrAuthenticationFailed
	}
	user, err := s.userRepo.FindByAPIKey(ctx, key)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrAuthenticationFailed
		}
		logrus.WithError(err).Error("Database error during API key validation")
		return nil, ErrInternalServer
	}
	return &domain.Session{
		UserID:   user.ID,
		Username: user.Username,
		Email:    user.Email,
	}, nil
}

func hashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to generate hash from password: %w", err)
	}
	return string(bytes), nil
}

func checkPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// generateAPIKey returns 32 bytes of cryptographically secure
// randomness, hex-encoded to 64 characters.
func generateAPIKey() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
