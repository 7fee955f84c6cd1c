package middleware

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yigit/skillswap/internal/app/models/dto"
	"github.com/yigit/skillswap/internal/pkg/apperrors"
	"github.com/yigit/skillswap/internal/pkg/auth"
)

// Context keys set by JWTAuth
const (
	ContextUserID      = "userID"
	ContextEmail       = "email"
	ContextTokenExpiry = "tokenExpiry"
)

// AuthMiddleware for authentication
type AuthMiddleware struct {
	jwtService *auth.JWTService
}

// NewAuthMiddleware creates a new AuthMiddleware
func NewAuthMiddleware(jwtService *auth.JWTService) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService: jwtService,
	}
}

func unauthorized(c *gin.Context, code dto.ErrorCode, details string) {
	errorDetail := dto.NewErrorDetail(code, "Authentication required").WithDetails(details)
	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(errorDetail))
}

// tokenFromRequest reads the bearer token from the Authorization header. Browsers
// cannot set headers on websocket upgrades, so the token query parameter is
// accepted as well.
func tokenFromRequest(c *gin.Context) (string, error) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		authHeader = c.Query("token")
	}
	if authHeader == "" {
		return "", apperrors.ErrTokenNotFound
	}
	return auth.ExtractBearerToken(authHeader)
}

// JWTAuth middleware for JWT token validation
func (m *AuthMiddleware) JWTAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := tokenFromRequest(c)
		if err != nil {
			if errors.Is(err, apperrors.ErrTokenNotFound) {
				unauthorized(c, dto.ErrorCodeUnauthorized, "Authorization header missing")
				return
			}
			unauthorized(c, dto.ErrorCodeUnauthorized, "Invalid token format")
			return
		}

		claims, err := m.jwtService.ValidateAndExtractClaims(tokenString)
		if err != nil {
			switch {
			case errors.Is(err, apperrors.ErrTokenExpired):
				unauthorized(c, dto.ErrorCodeExpiredToken, "Token has expired")
			case errors.Is(err, apperrors.ErrInvalidFormat):
				unauthorized(c, dto.ErrorCodeInvalidToken, "Invalid token format")
			default:
				unauthorized(c, dto.ErrorCodeInvalidToken, "Invalid token")
			}
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextEmail, claims.Email)
		if claims.ExpiresAt != nil {
			c.Set(ContextTokenExpiry, claims.ExpiresAt.Time)
		}

		c.Next()
	}
}

// GetUserID returns the authenticated user id set by JWTAuth
func GetUserID(c *gin.Context) (string, bool) {
	id := c.GetString(ContextUserID)
	return id, id != ""
}

// GetTokenExpiry returns when the access token used for the request expires
func GetTokenExpiry(c *gin.Context) (time.Time, bool) {
	exp := c.GetTime(ContextTokenExpiry)
	return exp, !exp.IsZero()
}

// GetEmail returns the authenticated user's email set by JWTAuth
func GetEmail(c *gin.Context) string {
	return c.GetString(ContextEmail)
}
