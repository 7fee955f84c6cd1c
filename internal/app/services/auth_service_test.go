package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/yigit/skillswap/internal/app/models/dto"
	"github.com/yigit/skillswap/internal/pkg/apperrors"
	"github.com/yigit/skillswap/internal/pkg/auth"
)

func newAuthService() (*AuthService, *memUsers, *memTokens) {
	users := newMemUsers()
	tokens := newMemTokens()
	jwtService := auth.NewJWTService(auth.JWTConfig{
		SecretKey:       "test-secret",
		AccessTokenExp:  15 * time.Minute,
		RefreshTokenExp: time.Hour,
		TokenIssuer:     "skillswap-test",
	})
	return NewAuthService(users, tokens, jwtService, zerolog.Nop()), users, tokens
}

func register(t *testing.T, s *AuthService, email string) *dto.AuthResponse {
	t.Helper()
	resp, err := s.Register(context.Background(), &dto.RegisterRequest{
		Email: email, Password: "s3cretpass", DisplayName: "Ada",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	return resp
}

func TestRegisterCreatesDefaultProfile(t *testing.T) {
	s, users, _ := newAuthService()

	resp := register(t, s, "  Ada@Example.com ")
	if resp.Token.AccessToken == "" || resp.Token.RefreshToken == "" || resp.Token.TokenType != "Bearer" {
		t.Fatalf("token = %+v", resp.Token)
	}
	if resp.User.Email != "ada@example.com" || resp.User.DisplayName != "Ada" {
		t.Errorf("user = %+v", resp.User)
	}
	if resp.User.SkillsToTeach == nil || len(resp.User.SkillsToTeach) != 0 || resp.User.Bio != "" {
		t.Errorf("profile defaults = %+v", resp.User)
	}

	stored, err := users.FindByEmail(context.Background(), "ada@example.com")
	if err != nil {
		t.Fatalf("stored user: %v", err)
	}
	if stored.Password == "s3cretpass" || !auth.CheckPassword(stored.Password, "s3cretpass") {
		t.Errorf("password not hashed correctly")
	}

	_, err = s.Register(context.Background(), &dto.RegisterRequest{Email: "ada@example.com", Password: "s3cretpass", DisplayName: "Ada"})
	if !errors.Is(err, apperrors.ErrEmailAlreadyExists) {
		t.Errorf("duplicate err = %v", err)
	}
}

func TestRegisterValidation(t *testing.T) {
	s, _, _ := newAuthService()
	cases := []struct {
		name string
		req  dto.RegisterRequest
		want error
	}{
		{"bad email", dto.RegisterRequest{Email: "nope", Password: "s3cretpass", DisplayName: "Ada"}, apperrors.ErrInvalidEmail},
		{"short password", dto.RegisterRequest{Email: "a@example.com", Password: "a1", DisplayName: "Ada"}, apperrors.ErrInvalidPassword},
		{"no digit", dto.RegisterRequest{Email: "a@example.com", Password: "onlyletters", DisplayName: "Ada"}, apperrors.ErrInvalidPassword},
		{"short name", dto.RegisterRequest{Email: "a@example.com", Password: "s3cretpass", DisplayName: "A"}, apperrors.ErrValidationFailed},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := tc.req
			if _, err := s.Register(context.Background(), &req); !errors.Is(err, tc.want) {
				t.Fatalf("err = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestLogin(t *testing.T) {
	s, _, _ := newAuthService()
	register(t, s, "ada@example.com")

	if _, err := s.Login(context.Background(), &dto.LoginRequest{Email: "ADA@example.com", Password: "s3cretpass"}); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if _, err := s.Login(context.Background(), &dto.LoginRequest{Email: "ada@example.com", Password: "wrongpass1"}); !errors.Is(err, apperrors.ErrInvalidCredentials) {
		t.Errorf("wrong password err = %v", err)
	}
	if _, err := s.Login(context.Background(), &dto.LoginRequest{Email: "bob@example.com", Password: "s3cretpass"}); !errors.Is(err, apperrors.ErrInvalidCredentials) {
		t.Errorf("unknown user err = %v", err)
	}
}

func TestRefreshTokenRotates(t *testing.T) {
	s, _, _ := newAuthService()
	first := register(t, s, "ada@example.com").Token.RefreshToken

	next, err := s.RefreshToken(context.Background(), first)
	if err != nil {
		t.Fatalf("RefreshToken: %v", err)
	}
	if next.RefreshToken == first {
		t.Fatal("refresh token was not rotated")
	}
	if _, err := s.RefreshToken(context.Background(), first); !errors.Is(err, apperrors.ErrTokenRevoked) {
		t.Errorf("reuse err = %v, want revoked", err)
	}
	if _, err := s.RefreshToken(context.Background(), "unknown"); !errors.Is(err, apperrors.ErrTokenNotFound) {
		t.Errorf("unknown token err = %v", err)
	}
}

func TestLogout(t *testing.T) {
	s, _, _ := newAuthService()
	ada := register(t, s, "ada@example.com")
	bob := register(t, s, "bob@example.com")

	if err := s.Logout(context.Background(), bob.User.ID, ada.Token.RefreshToken); !errors.Is(err, apperrors.ErrPermissionDenied) {
		t.Fatalf("foreign logout err = %v", err)
	}
	if err := s.Logout(context.Background(), ada.User.ID, ada.Token.RefreshToken); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if err := s.Logout(context.Background(), ada.User.ID, ada.Token.RefreshToken); err != nil {
		t.Fatalf("second Logout: %v", err)
	}

	if err := s.LogoutAll(context.Background(), bob.User.ID); err != nil {
		t.Fatalf("LogoutAll: %v", err)
	}
	if _, err := s.RefreshToken(context.Background(), bob.Token.RefreshToken); !errors.Is(err, apperrors.ErrTokenRevoked) {
		t.Errorf("refresh after LogoutAll err = %v", err)
	}

	removed, err := s.CleanupExpiredTokens(context.Background())
	if err != nil || removed != 2 {
		t.Errorf("cleanup = %d, %v; want 2", removed, err)
	}
}
