package api

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/limbo/worklog/pkg/entity"
)

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

type JWTServiceI interface {
	GenerateAccessToken(user *entity.User) (string, error)
	GenerateRefreshToken(user *entity.User) (string, error)
	ParseToken(tokenString string) (*JWTClaims, error)
}

// TokenBlacklistI holds refresh tokens revoked before their natural expiry.
type TokenBlacklistI interface {
	Revoke(ctx context.Context, token string, ttl time.Duration) error
	IsRevoked(ctx context.Context, token string) (bool, error)
}

type JWTClaims struct {
	jwt.RegisteredClaims
	UserID    string `json:"user_id"`
	Username  string `json:"username"`
	TokenType string `json:"token_type"`
}
