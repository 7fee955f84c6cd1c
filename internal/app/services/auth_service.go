package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/yigit/skillswap/internal/app/models"
	"github.com/yigit/skillswap/internal/app/models/dto"
	"github.com/yigit/skillswap/internal/app/repositories"
	"github.com/yigit/skillswap/internal/pkg/apperrors"
	"github.com/yigit/skillswap/internal/pkg/auth"
	"github.com/yigit/skillswap/internal/pkg/validation"
)

// AuthService handles authentication operations
type AuthService struct {
	userRepo   repositories.UserStore
	tokenRepo  repositories.TokenStore
	jwtService *auth.JWTService
	logger     zerolog.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(
	userRepo repositories.UserStore,
	tokenRepo repositories.TokenStore,
	jwtService *auth.JWTService,
	logger zerolog.Logger,
) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		tokenRepo:  tokenRepo,
		jwtService: jwtService,
		logger:     logger,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// validateEmail validates an email address
func (s *AuthService) validateEmail(email string) error {
	if email == "" {
		return apperrors.NewValidationError("email", "Email cannot be empty")
	}
	if !validation.IsValidEmail(email) {
		return apperrors.NewCustomError(apperrors.ErrInvalidEmail, "Email format is invalid").
			WithDetails(map[string]interface{}{"field": "email"})
	}
	return nil
}

// validatePassword checks if password meets requirements
func (s *AuthService) validatePassword(password string) error {
	if password == "" {
		return apperrors.NewValidationError("password", "Password cannot be empty")
	}
	if auth.IsStrongPassword(password) {
		return nil
	}

	msg := fmt.Sprintf("Password must be at least %d characters long", auth.PasswordMinLength)
	hasLetter := strings.IndexFunc(password, unicode.IsLetter) >= 0
	hasDigit := strings.IndexFunc(password, unicode.IsDigit) >= 0
	switch {
	case len([]rune(password)) < auth.PasswordMinLength:
	case !hasLetter:
		msg = "Password must contain at least one letter"
	case !hasDigit:
		msg = "Password must contain at least one digit"
	}
	return apperrors.NewCustomError(apperrors.ErrInvalidPassword, msg).
		WithDetails(map[string]interface{}{"field": "password"})
}

// Register creates an account with an empty profile and signs it in
func (s *AuthService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error) {
	email := normalizeEmail(req.Email)
	if err := s.validateEmail(email); err != nil {
		return nil, err
	}
	if err := s.validatePassword(req.Password); err != nil {
		return nil, err
	}
	displayName := strings.TrimSpace(req.DisplayName)
	if !validation.IsValidDisplayName(displayName) {
		return nil, apperrors.NewValidationError("displayName",
			fmt.Sprintf("Display name must be between %d and %d characters", validation.NameMinLength, validation.NameMaxLength))
	}

	hashed, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("password hashing error: %w", err)
	}

	user := models.DefaultProfile(uuid.NewString(), email, displayName)
	user.Password = hashed
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, apperrors.ErrEmailAlreadyExists) {
			return nil, apperrors.NewCustomError(apperrors.ErrEmailAlreadyExists, "An account with this email already exists")
		}
		return nil, fmt.Errorf("user creation error: %w", err)
	}

	s.logger.Info().Str("userID", user.ID).Msg("User registered")
	return s.authResponse(ctx, user)
}

// Login authenticates a user
func (s *AuthService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	email := normalizeEmail(req.Email)
	if err := s.validateEmail(email); err != nil {
		return nil, err
	}
	if req.Password == "" {
		return nil, apperrors.NewValidationError("password", "Password cannot be empty")
	}

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("login lookup error: %w", err)
	}

	if !auth.CheckPassword(user.Password, req.Password) {
		s.logger.Warn().Str("userID", user.ID).Msg("Failed login attempt")
		return nil, apperrors.ErrInvalidCredentials
	}

	return s.authResponse(ctx, user)
}

// RefreshToken rotates a refresh token: the presented token is revoked and a
// new pair is issued.
func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string) (*dto.TokenResponse, error) {
	if strings.TrimSpace(refreshToken) == "" {
		return nil, apperrors.ErrTokenInvalid
	}

	stored, err := s.tokenRepo.GetToken(ctx, refreshToken)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrTokenNotFound, apperrors.ErrTokenExpired, apperrors.ErrTokenRevoked) {
			return nil, err
		}
		return nil, fmt.Errorf("token validation error: %w", err)
	}

	user, err := s.userRepo.FindByID(ctx, stored.UserID)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, apperrors.ErrTokenInvalid
		}
		return nil, fmt.Errorf("user lookup error: %w", err)
	}

	if err := s.tokenRepo.RevokeToken(ctx, refreshToken); err != nil {
		return nil, fmt.Errorf("failed to revoke old token: %w", err)
	}

	return s.generateTokenResponse(ctx, user)
}

// Logout revokes one refresh token of userID. A token that is already revoked
// or expired is treated as logged out.
func (s *AuthService) Logout(ctx context.Context, userID, refreshToken string) error {
	stored, err := s.tokenRepo.GetToken(ctx, refreshToken)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrTokenRevoked, apperrors.ErrTokenExpired) {
			return nil
		}
		return err
	}
	if stored.UserID != userID {
		return apperrors.NewForbiddenError("This refresh token belongs to another user")
	}
	if err := s.tokenRepo.RevokeToken(ctx, refreshToken); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

// LogoutAll revokes every refresh token of userID
func (s *AuthService) LogoutAll(ctx context.Context, userID string) error {
	if err := s.tokenRepo.RevokeAllUserTokens(ctx, userID); err != nil {
		return fmt.Errorf("failed to revoke tokens: %w", err)
	}
	s.logger.Info().Str("userID", userID).Msg("All sessions revoked")
	return nil
}

// CleanupExpiredTokens removes expired and revoked refresh tokens
func (s *AuthService) CleanupExpiredTokens(ctx context.Context) (int64, error) {
	n, err := s.tokenRepo.CleanupExpiredTokens(ctx)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.logger.Info().Int64("removed", n).Msg("Expired refresh tokens removed")
	}
	return n, nil
}

func (s *AuthService) authResponse(ctx context.Context, user *models.User) (*dto.AuthResponse, error) {
	token, err := s.generateTokenResponse(ctx, user)
	if err != nil {
		return nil, err
	}
	return &dto.AuthResponse{Token: *token, User: dto.FromOwnUser(user)}, nil
}

// generateTokenResponse creates token response
func (s *AuthService) generateTokenResponse(ctx context.Context, user *models.User) (*dto.TokenResponse, error) {
	pair, err := s.jwtService.GenerateTokenPair(user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("token generation error: %w", err)
	}

	if err := s.tokenRepo.CreateToken(ctx, pair.RefreshToken, user.ID, pair.RefreshExpiry); err != nil {
		return nil, fmt.Errorf("token saving error: %w", err)
	}

	return &dto.TokenResponse{
		AccessToken:           pair.AccessToken,
		TokenType:             "Bearer",
		ExpiresIn:             pair.ExpiresIn,
		RefreshToken:          pair.RefreshToken,
		RefreshTokenExpiresIn: pair.RefreshExpiresIn,
	}, nil
}
