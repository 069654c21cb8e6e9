package auth

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/tuanvumaihuynh/storefront/internal/config"
	"github.com/tuanvumaihuynh/storefront/internal/model"
)

const refreshTokenBytes = 32

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)

// Claims are the claims of an access token.
type Claims struct {
	Name  string       `json:"name"`
	Roles []model.Role `json:"roles"`
	jwt.RegisteredClaims
}

// UserID parses the subject claim.
func (c Claims) UserID() (uuid.UUID, error) {
	return uuid.Parse(c.Subject)
}

// HasRole reports whether the token grants any of roles.
func (c Claims) HasRole(roles ...model.Role) bool {
	for _, have := range c.Roles {
		for _, want := range roles {
			if have == want {
				return true
			}
		}
	}
	return false
}

// AccessToken is a signed access token and its expiry.
type AccessToken struct {
	Token     string
	ExpiresAt time.Time
}

// TokenIssuer issues and validates HS256 access tokens with a fixed lifetime.
type TokenIssuer struct {
	secretKey []byte
	issuer    string
	audience  string
	ttl       time.Duration
	now       func() time.Time
}

func NewTokenIssuer(cfg config.Auth) *TokenIssuer {
	return &TokenIssuer{
		secretKey: []byte(cfg.JWTSecret),
		issuer:    cfg.JWTIssuer,
		audience:  cfg.JWTAudience,
		ttl:       cfg.AccessTokenTTL,
		now:       time.Now,
	}
}

// TTL returns the lifetime of an access token.
func (i *TokenIssuer) TTL() time.Duration {
	return i.ttl
}

// GenerateAccessToken signs a token carrying the user's id, name and roles.
func (i *TokenIssuer) GenerateAccessToken(user model.User, roles []model.Role) (AccessToken, error) {
	now := i.now()
	expiresAt := now.Add(i.ttl)

	if roles == nil {
		roles = []model.Role{}
	}

	claims := Claims{
		Name:  user.Name,
		Roles: roles,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   user.ID.String(),
			Issuer:    i.issuer,
			Audience:  jwt.ClaimStrings{i.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secretKey)
	if err != nil {
		return AccessToken{}, fmt.Errorf("sign token: %w", err)
	}

	return AccessToken{Token: token, ExpiresAt: expiresAt}, nil
}

// GenerateRefreshToken returns 32 random bytes encoded as unpadded base64url.
func (i *TokenIssuer) GenerateRefreshToken() (string, error) {
	b := make([]byte, refreshTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// ValidateAccessToken verifies signature, algorithm, issuer, audience and expiry.
func (i *TokenIssuer) ValidateAccessToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return i.secretKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(i.issuer),
		jwt.WithAudience(i.audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	if _, err := claims.UserID(); err != nil {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
