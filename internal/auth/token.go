package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken = errors.New("invalid or expired token")
	ErrWeakSecret   = errors.New("token secret must be at least 32 bytes")
)

// AdminRole is the only role tokens are issued for.
const AdminRole = "admin"

// Claims are the claims carried by an admin access token.
type Claims struct {
	jwt.RegisteredClaims
	Role string `json:"role"`
}

// TokenService issues and validates HS256 admin tokens.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	issuer string
	now    func() time.Time
}

// NewTokenService creates a TokenService. The secret must be at least 32 bytes.
func NewTokenService(secret string, ttl time.Duration, issuer string) (*TokenService, error) {
	if len(secret) < 32 {
		return nil, ErrWeakSecret
	}
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &TokenService{
		secret: []byte(secret),
		ttl:    ttl,
		issuer: issuer,
		now:    time.Now,
	}, nil
}

// Issue signs a token for subject and returns it with its expiry.
func (s *TokenService) Issue(subject string) (string, time.Time, error) {
	now := s.now()
	expires := now.Add(s.ttl)

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    s.issuer,
			Subject:   subject,
			Audience:  jwt.ClaimStrings{s.issuer},
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
		Role: AdminRole,
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return token, expires, nil
}

// Validate parses and checks a token, returning its claims.
func (s *TokenService) Validate(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(*jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithAudience(s.issuer),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Role != AdminRole {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
