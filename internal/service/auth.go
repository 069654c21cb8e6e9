package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/tuanvumaihuynh/storefront/internal/apperr"
	"github.com/tuanvumaihuynh/storefront/internal/auth"
	"github.com/tuanvumaihuynh/storefront/internal/identity"
	"github.com/tuanvumaihuynh/storefront/internal/model"
	"github.com/tuanvumaihuynh/storefront/pkg/validator"
)

type LoginParams struct {
	Username string `validate:"required"`
	Password string `validate:"required"`
}

type LoginResult struct {
	AccessToken  string
	RefreshToken string
	Roles        []model.Role
	ExpiresAt    time.Time
}

type TokenIssuer interface {
	GenerateAccessToken(user model.User, roles []model.Role) (auth.AccessToken, error)
	GenerateRefreshToken() (string, error)
	ValidateAccessToken(token string) (*auth.Claims, error)
}

type AuthService interface {
	// Login never tells whether the username or the password was wrong.
	Login(ctx context.Context, params LoginParams) (LoginResult, error)
	// Authenticate validates a bearer token and returns its claims.
	Authenticate(ctx context.Context, token string) (*auth.Claims, error)
}

type authService struct {
	logger    *slog.Logger
	identity  identity.Provider
	tokens    TokenIssuer
	validator validator.Validator
}

func NewAuthService(
	logger *slog.Logger,
	identity identity.Provider,
	tokens TokenIssuer,
	validator validator.Validator,
) AuthService {
	return &authService{
		logger:    logger.With(slog.String("service", "auth")),
		identity:  identity,
		tokens:    tokens,
		validator: validator,
	}
}

func (s *authService) Login(ctx context.Context, params LoginParams) (LoginResult, error) {
	if err := validate(s.validator, params); err != nil {
		return LoginResult{}, err
	}

	user, err := s.identity.FindByUsername(ctx, params.Username)
	if err != nil {
		if errors.Is(err, identity.ErrUserNotFound) {
			s.logger.InfoContext(ctx, "login failed: unknown username")
			return LoginResult{}, apperr.InvalidCredentialsErr
		}
		return LoginResult{}, fmt.Errorf("identity find by username: %w", err)
	}

	if !s.identity.CheckPassword(ctx, user, params.Password) {
		s.logger.InfoContext(ctx, "login failed: wrong password", slog.String("user_id", user.ID.String()))
		return LoginResult{}, apperr.InvalidCredentialsErr
	}

	roles, err := s.identity.Roles(ctx, user)
	if err != nil {
		return LoginResult{}, fmt.Errorf("identity roles: %w", err)
	}

	accessToken, err := s.tokens.GenerateAccessToken(user, roles)
	if err != nil {
		return LoginResult{}, fmt.Errorf("generate access token: %w", err)
	}

	refreshToken, err := s.tokens.GenerateRefreshToken()
	if err != nil {
		return LoginResult{}, fmt.Errorf("generate refresh token: %w", err)
	}

	return LoginResult{
		AccessToken:  accessToken.Token,
		RefreshToken: refreshToken,
		Roles:        roles,
		ExpiresAt:    accessToken.ExpiresAt,
	}, nil
}

func (s *authService) Authenticate(_ context.Context, token string) (*auth.Claims, error) {
	if token == "" {
		return nil, apperr.MissingTokenErr
	}

	claims, err := s.tokens.ValidateAccessToken(token)
	if err != nil {
		if errors.Is(err, auth.ErrExpiredToken) {
			return nil, apperr.InvalidTokenErr.WithMsgf("token has expired").WrapParent(err)
		}
		return nil, apperr.InvalidTokenErr.WrapParent(err)
	}

	return claims, nil
}
