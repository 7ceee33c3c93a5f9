package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"clinicpulse/internal/common"
	"clinicpulse/internal/mailer"
	"clinicpulse/internal/models"
	"clinicpulse/internal/repositories"
)

// InvitationService manages clinic membership invitations. All operations are
// admin-only and scoped to the caller's clinic.
type InvitationService interface {
	Invite(ctx context.Context, p *common.Principal, email, role string) (*models.Invitation, error)
	List(ctx context.Context, p *common.Principal) ([]*models.InvitationWithInviter, error)
	Cancel(ctx context.Context, p *common.Principal, id uuid.UUID) error
}

type invitationService struct {
	invRepo    repositories.InvitationRepository
	userRepo   repositories.UserRepository
	clinicRepo repositories.ClinicRepository
	activity   repositories.ActivityLogRepository
	mail       mailer.Sender
	clock      clockwork.Clock
	log        *zap.Logger

	appBaseURL    string
	invitationTTL time.Duration
}

func NewInvitationService(
	invRepo repositories.InvitationRepository,
	userRepo repositories.UserRepository,
	clinicRepo repositories.ClinicRepository,
	activity repositories.ActivityLogRepository,
	mail mailer.Sender,
	clock clockwork.Clock,
	log *zap.Logger,
	appBaseURL string,
	invitationTTL time.Duration,
) InvitationService {
	return &invitationService{
		invRepo:       invRepo,
		userRepo:      userRepo,
		clinicRepo:    clinicRepo,
		activity:      activity,
		mail:          mail,
		clock:         clock,
		log:           log,
		appBaseURL:    appBaseURL,
		invitationTTL: invitationTTL,
	}
}

// Invite creates a pending invitation and emails the recipient. Rejected when
// the email already has an account anywhere, or when this clinic already has
// a live pending invitation for it.
func (s *invitationService) Invite(ctx context.Context, p *common.Principal, email, role string) (*models.Invitation, error) {
	if p.Role != models.RoleAdmin {
		return nil, common.AuthorizationError("admin role required")
	}
	email, err := common.ValidateEmail(email)
	if err != nil {
		return nil, common.ValidationError("%s", err.Error())
	}
	if !models.ValidRole(role) {
		return nil, common.ValidationError("role must be admin or member")
	}

	exists, err := s.userRepo.EmailExists(ctx, email)
	if err != nil {
		return nil, common.StorageError("email lookup", err)
	}
	if exists {
		return nil, common.ConflictError("an account with this email already exists")
	}

	now := s.clock.Now()
	pending, err := s.invRepo.HasPending(ctx, p.ClinicID, email, now)
	if err != nil {
		return nil, common.StorageError("invitation lookup", err)
	}
	if pending {
		return nil, common.ConflictError("a pending invitation already exists for this email")
	}

	inv := &models.Invitation{
		ID:        uuid.New(),
		ClinicID:  p.ClinicID,
		Email:     email,
		InvitedBy: p.UserID,
		Role:      role,
		Token:     newSecureToken(),
		Status:    models.InvitationPending,
		ExpiresAt: now.Add(s.invitationTTL),
	}
	if err := s.invRepo.Create(ctx, inv); err != nil {
		return nil, common.StorageError("invitation create", err)
	}

	s.sendInvitationEmail(ctx, p, inv)
	s.recordActivity(ctx, p, models.ActionInvitationSent, "invitation", inv.ID.String(), &email)

	return inv, nil
}

// List returns the clinic's invitations, newest first, with expiry folded
// into the reported status.
func (s *invitationService) List(ctx context.Context, p *common.Principal) ([]*models.InvitationWithInviter, error) {
	if p.Role != models.RoleAdmin {
		return nil, common.AuthorizationError("admin role required")
	}

	invitations, err := s.invRepo.List(ctx, p.ClinicID)
	if err != nil {
		return nil, common.StorageError("invitation list", err)
	}

	now := s.clock.Now()
	for _, inv := range invitations {
		inv.Status = inv.EffectiveStatus(now)
	}
	if invitations == nil {
		invitations = []*models.InvitationWithInviter{}
	}
	return invitations, nil
}

// Cancel deletes an invitation in the caller's clinic. Cancelling an
// invitation that does not exist, or that belongs to another clinic, reports
// not found.
func (s *invitationService) Cancel(ctx context.Context, p *common.Principal, id uuid.UUID) error {
	if p.Role != models.RoleAdmin {
		return common.AuthorizationError("admin role required")
	}

	rows, err := s.invRepo.Delete(ctx, p.ClinicID, id)
	if err != nil {
		return common.StorageError("invitation cancel", err)
	}
	if rows == 0 {
		return common.NotFoundError("invitation")
	}

	s.recordActivity(ctx, p, models.ActionInvitationRevoked, "invitation", id.String(), nil)
	return nil
}

// sendInvitationEmail is best-effort: rendering or delivery failures are
// logged and the invitation stands.
func (s *invitationService) sendInvitationEmail(ctx context.Context, p *common.Principal, inv *models.Invitation) {
	inviterName := "A colleague"
	if inviter, err := s.userRepo.GetByID(ctx, p.ClinicID, p.UserID); err == nil {
		inviterName = inviter.Name
	}
	clinicName := "their clinic"
	if clinic, err := s.clinicRepo.GetByID(ctx, p.ClinicID); err == nil {
		clinicName = clinic.Name
	}

	msg, err := mailer.InvitationMessage(inv.Email, inviterName, clinicName, inv.Role,
		fmt.Sprintf("%s/accept-invitation?token=%s", s.appBaseURL, inv.Token),
		inv.ExpiresAt.Format(time.RFC1123))
	if err != nil {
		s.log.Error("failed to render invitation email", zap.Error(err))
		return
	}
	if err := s.mail.Send(ctx, msg); err != nil {
		s.log.Error("failed to send invitation email",
			zap.String("invitation_id", inv.ID.String()), zap.Error(err))
	}
}

func (s *invitationService) recordActivity(ctx context.Context, p *common.Principal, action, entity, entityID string, detail *string) {
	entry := &models.ActivityLog{
		ID:       uuid.New(),
		ClinicID: p.ClinicID,
		ActorID:  p.UserID,
		Action:   action,
		Entity:   entity,
		EntityID: entityID,
		Detail:   detail,
	}
	if err := s.activity.Create(ctx, entry); err != nil {
		s.log.Warn("failed to record activity", zap.String("action", action), zap.Error(err))
	}
}
