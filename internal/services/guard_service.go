package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"clinicpulse/internal/common"
	"clinicpulse/internal/models"
	"clinicpulse/internal/repositories"
)

// GuardService resolves bearer tokens into principals and enforces the
// clinic and role boundaries every protected operation runs behind.
//
// The error split matters: a missing, malformed or expired credential is an
// authentication failure; a valid credential attached to a deactivated user
// or used outside its permissions is an authorization failure.
type GuardService interface {
	Authenticate(ctx context.Context, authorization string) (*common.Principal, error)
	RequireAdmin(p *common.Principal) error
	RequireClinic(p *common.Principal, clinicID uuid.UUID) error
}

type guardService struct {
	tokens   TokenService
	userRepo repositories.UserRepository
}

func NewGuardService(tokens TokenService, userRepo repositories.UserRepository) GuardService {
	return &guardService{tokens: tokens, userRepo: userRepo}
}

// Authenticate turns an Authorization header value into a principal. The user
// row is re-read on every request so deactivation takes effect immediately,
// even for tokens issued before it.
func (s *guardService) Authenticate(ctx context.Context, authorization string) (*common.Principal, error) {
	token, err := extractBearer(authorization)
	if err != nil {
		return nil, err
	}

	claims, err := s.tokens.Verify(token)
	if err != nil {
		return nil, err
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, common.AuthenticationError("invalid or expired token")
	}
	clinicID, err := uuid.Parse(claims.ClinicID)
	if err != nil {
		return nil, common.AuthenticationError("invalid or expired token")
	}

	user, err := s.userRepo.GetByID(ctx, clinicID, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.AuthenticationError("invalid or expired token")
		}
		return nil, common.StorageError("principal lookup", err)
	}

	if !user.Active {
		return nil, common.AuthorizationError("account is deactivated")
	}

	return &common.Principal{
		UserID:   user.ID,
		ClinicID: user.ClinicID,
		Role:     user.Role,
		Active:   user.Active,
	}, nil
}

func (s *guardService) RequireAdmin(p *common.Principal) error {
	if p == nil {
		return common.AuthenticationError("authentication required")
	}
	if p.Role != models.RoleAdmin {
		return common.AuthorizationError("admin role required")
	}
	return nil
}

// RequireClinic rejects any attempt to reach a resource outside the
// principal's own clinic.
func (s *guardService) RequireClinic(p *common.Principal, clinicID uuid.UUID) error {
	if p == nil {
		return common.AuthenticationError("authentication required")
	}
	if p.ClinicID != clinicID {
		return common.AuthorizationError("resource belongs to another clinic")
	}
	return nil
}

func extractBearer(authorization string) (string, error) {
	if authorization == "" {
		return "", common.AuthenticationError("missing authorization header")
	}
	parts := strings.SplitN(authorization, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", common.AuthenticationError("authorization header must be a bearer token")
	}
	return strings.TrimSpace(parts[1]), nil
}
