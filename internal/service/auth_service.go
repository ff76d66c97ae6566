package service

import (
	"context"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidCredentials is returned on a failed login.
var ErrInvalidCredentials = errors.New("invalid credentials")

type JwtCustomClaims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// AuthService issues seller tokens for the product-management endpoints.
// Credentials come from configuration; there is no user registry.
type AuthService struct {
	rdb      *redis.Client
	secret   []byte
	username string
	password string
}

// NewAuthService creates a new instance of AuthService.
func NewAuthService(rdb *redis.Client, secret, username, password string) *AuthService {
	return &AuthService{
		rdb:      rdb,
		secret:   []byte(secret),
		username: username,
		password: password,
	}
}

// Login validates the credentials and returns a signed JWT. The session is
// kept in redis for 24 hours so tokens can be revoked by deleting the key.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, error) {
	if username != s.username || password != s.password {
		return "", ErrInvalidCredentials
	}

	claims := &JwtCustomClaims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour * 24)),
		},
	}

	tkn := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	t, err := tkn.SignedString(s.secret)
	if err != nil {
		return "", err
	}

	if s.rdb != nil {
		if err := s.rdb.Set(ctx, "session:"+username, t, time.Hour*24).Err(); err != nil {
			return "", err
		}
	}

	return t, nil
}

// ValidateSession retrieves the stored token for a username.
func (s *AuthService) ValidateSession(ctx context.Context, username string) (string, error) {
	token, err := s.rdb.Get(ctx, "session:"+username).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", errors.New("session not found")
		}
		return "", err
	}

	return token, nil
}
