package jwtservice

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/limbo/worklog/internal/api"
	errorvalues "github.com/limbo/worklog/internal/error_values"
	"github.com/limbo/worklog/pkg/entity"
)

var (
	accessTokenTTL  = time.Hour
	refreshTokenTTL = 7 * 24 * time.Hour
)

type JWTService struct {
	secret []byte
}

func New(secret string) *JWTService {
	return &JWTService{
		secret: []byte(secret),
	}
}

func (s *JWTService) GenerateAccessToken(user *entity.User) (string, error) {
	return s.generate(user, api.TokenTypeAccess, accessTokenTTL)
}

func (s *JWTService) GenerateRefreshToken(user *entity.User) (string, error) {
	return s.generate(user, api.TokenTypeRefresh, refreshTokenTTL)
}

func (s *JWTService) generate(user *entity.User, tokenType string, ttl time.Duration) (string, error) {
	expTime := time.Now().Add(ttl)
	claims := &api.JWTClaims{
		UserID:    user.ID.String(),
		Username:  user.Username,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expTime),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

func (s *JWTService) ParseToken(tokenString string) (*api.JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &api.JWTClaims{}, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, errors.Join(errorvalues.ErrInvalidToken, err)
	}
	claims, ok := token.Claims.(*api.JWTClaims)
	if !ok || !token.Valid {
		return nil, errorvalues.ErrInvalidToken
	}
	return claims, nil
}

// RefreshTokenTTL is exported so the blacklist can keep revoked refresh
// tokens for at least the lifetime of the longest-lived token.
func RefreshTokenTTL() time.Duration {
	return refreshTokenTTL
}
