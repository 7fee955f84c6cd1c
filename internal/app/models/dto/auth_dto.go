package dto

// LoginRequest represents login credentials
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email" example:"ada@example.com"`
	Password string `json:"password" binding:"required" example:"s3cretpass"`
}

// RegisterRequest represents a new account
type RegisterRequest struct {
	Email       string `json:"email" binding:"required,email" example:"ada@example.com"`
	Password    string `json:"password" binding:"required,min=8" example:"s3cretpass"`
	DisplayName string `json:"displayName" binding:"required,min=2,max=100" example:"Ada"`
}

// RefreshTokenRequest represents refresh token request
type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// LogoutRequest revokes one refresh token
type LogoutRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// TokenResponse represents JWT token information
type TokenResponse struct {
	AccessToken           string `json:"accessToken"`
	TokenType             string `json:"tokenType" example:"Bearer"`
	ExpiresIn             int64  `json:"expiresIn" example:"900"`
	RefreshToken          string `json:"refreshToken,omitempty"`
	RefreshTokenExpiresIn int64  `json:"refreshTokenExpiresIn,omitempty" example:"604800"`
}

// AuthResponse represents successful authentication response
type AuthResponse struct {
	Token TokenResponse   `json:"token"`
	User  ProfileResponse `json:"user"`
}
