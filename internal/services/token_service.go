package services

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"clinicpulse/internal/common"
	"clinicpulse/internal/models"
)

// TokenService signs and verifies the bearer tokens issued at login, signup
// and invitation acceptance.
type TokenService interface {
	Issue(user *models.User) (string, error)
	Verify(token string) (*TokenClaims, error)
}

// TokenClaims are the JWT claims carried by every issued token.
type TokenClaims struct {
	UserID   string `json:"user_id"`
	ClinicID string `json:"clinic_id"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

type tokenService struct {
	secret []byte
	ttl    time.Duration
	clock  clockwork.Clock
}

func NewTokenService(secret string, ttl time.Duration, clock clockwork.Clock) TokenService {
	return &tokenService{
		secret: []byte(secret),
		ttl:    ttl,
		clock:  clock,
	}
}

func (s *tokenService) Issue(user *models.User) (string, error) {
	now := s.clock.Now()
	claims := TokenClaims{
		UserID:   user.ID.String(),
		ClinicID: user.ClinicID.String(),
		Role:     user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "clinicpulse",
			Subject:   user.ID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify parses and validates a token. Every failure mode (malformed,
// tampered, expired, wrong algorithm) collapses into the same
// authentication error so callers leak nothing about which check failed.
func (s *tokenService) Verify(tokenString string) (*TokenClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &TokenClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.clock.Now))
	if err != nil {
		return nil, common.AuthenticationError("invalid or expired token")
	}

	claims, ok := token.Claims.(*TokenClaims)
	if !ok || !token.Valid {
		return nil, common.AuthenticationError("invalid or expired token")
	}
	return claims, nil
}
