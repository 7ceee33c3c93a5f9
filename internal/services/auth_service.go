package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"clinicpulse/internal/common"
	"clinicpulse/internal/mailer"
	"clinicpulse/internal/models"
	"clinicpulse/internal/repositories"
)

// Compared against when login hits an unknown email, so both the unknown-email
// and wrong-password paths cost one bcrypt verification.
const dummyPasswordHash = "$2a$10$N9qo8uLOickgx2ZMRZoMye1VdLuHZz7K3rQfMyo0GxPBQpjIC/7wW"

// SignupRequest carries everything needed to provision a clinic and its
// first admin in one step.
type SignupRequest struct {
	ClinicName     string  `json:"clinic_name"`
	ClinicLocation *string `json:"clinic_location"`
	Name           string  `json:"name"`
	Email          string  `json:"email"`
	Password       string  `json:"password"`
}

// Session is the result of any operation that authenticates a user.
type Session struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// AuthService covers signup, login, password reset and invitation redemption.
type AuthService interface {
	Signup(ctx context.Context, req SignupRequest) (*Session, error)
	Login(ctx context.Context, email, password string) (*Session, error)
	RequestPasswordReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, newPassword string) error
	AcceptInvitation(ctx context.Context, token, name, password string) (*Session, error)
}

type authService struct {
	db         repositories.Database
	userRepo   repositories.UserRepository
	clinicRepo repositories.ClinicRepository
	goalsRepo  repositories.GoalsRepository
	resetRepo  repositories.PasswordResetRepository
	invRepo    repositories.InvitationRepository
	activity   repositories.ActivityLogRepository
	tokens     TokenService
	mail       mailer.Sender
	clock      clockwork.Clock
	log        *zap.Logger

	appBaseURL string
	resetTTL   time.Duration
}

func NewAuthService(
	db repositories.Database,
	userRepo repositories.UserRepository,
	clinicRepo repositories.ClinicRepository,
	goalsRepo repositories.GoalsRepository,
	resetRepo repositories.PasswordResetRepository,
	invRepo repositories.InvitationRepository,
	activity repositories.ActivityLogRepository,
	tokens TokenService,
	mail mailer.Sender,
	clock clockwork.Clock,
	log *zap.Logger,
	appBaseURL string,
	resetTTL time.Duration,
) AuthService {
	return &authService{
		db:         db,
		userRepo:   userRepo,
		clinicRepo: clinicRepo,
		goalsRepo:  goalsRepo,
		resetRepo:  resetRepo,
		invRepo:    invRepo,
		activity:   activity,
		tokens:     tokens,
		mail:       mail,
		clock:      clock,
		log:        log,
		appBaseURL: appBaseURL,
		resetTTL:   resetTTL,
	}
}

// Signup provisions a new clinic, its admin user and the default goals row in
// a single transaction: either all three exist afterwards or none do.
func (s *authService) Signup(ctx context.Context, req SignupRequest) (*Session, error) {
	if err := common.ValidateRequiredString(req.ClinicName, "clinic_name"); err != nil {
		return nil, common.ValidationError("%s", err.Error())
	}
	if err := common.ValidateRequiredString(req.Name, "name"); err != nil {
		return nil, common.ValidationError("%s", err.Error())
	}
	email, err := common.ValidateEmail(req.Email)
	if err != nil {
		return nil, common.ValidationError("%s", err.Error())
	}
	if err := common.ValidatePassword(req.Password); err != nil {
		return nil, common.ValidationError("%s", err.Error())
	}

	exists, err := s.userRepo.EmailExists(ctx, email)
	if err != nil {
		return nil, common.StorageError("email lookup", err)
	}
	if exists {
		return nil, common.ConflictError("an account with this email already exists")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	clinic := &models.Clinic{
		ID:       uuid.New(),
		Name:     req.ClinicName,
		Location: req.ClinicLocation,
	}
	user := &models.User{
		ID:           uuid.New(),
		ClinicID:     clinic.ID,
		Email:        email,
		PasswordHash: string(hash),
		Name:         req.Name,
		Role:         models.RoleAdmin,
		Active:       true,
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, common.StorageError("signup", err)
	}
	defer tx.Rollback(ctx)

	if err := s.clinicRepo.WithTx(tx).Create(ctx, clinic); err != nil {
		return nil, common.StorageError("clinic create", err)
	}
	if err := s.userRepo.WithTx(tx).Create(ctx, user); err != nil {
		return nil, common.StorageError("user create", err)
	}
	if err := s.goalsRepo.WithTx(tx).Insert(ctx, models.DefaultGoals(clinic.ID)); err != nil {
		return nil, common.StorageError("goals create", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, common.StorageError("signup", err)
	}

	return s.startSession(user)
}

// Login verifies credentials. Unknown email and wrong password produce the
// same error and take roughly the same time; a correct password on a
// deactivated account is reported as an authorization failure instead.
func (s *authService) Login(ctx context.Context, email, password string) (*Session, error) {
	email, err := common.ValidateEmail(email)
	if err != nil {
		return nil, common.ValidationError("%s", err.Error())
	}
	if password == "" {
		return nil, common.ValidationError("password is required")
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			bcrypt.CompareHashAndPassword([]byte(dummyPasswordHash), []byte(password))
			return nil, common.AuthenticationError("invalid email or password")
		}
		return nil, common.StorageError("login", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, common.AuthenticationError("invalid email or password")
	}

	if !user.Active {
		return nil, common.AuthorizationError("account is deactivated")
	}

	now := s.clock.Now()
	if err := s.userRepo.UpdateLastLogin(ctx, user.ID, now); err != nil {
		s.log.Warn("failed to record last login", zap.String("user_id", user.ID.String()), zap.Error(err))
	} else {
		user.LastLoginAt = &now
	}

	return s.startSession(user)
}

// RequestPasswordReset always reports success so callers cannot probe which
// emails have accounts. When the account exists a single-use token is stored
// and emailed; email delivery failures are logged, never surfaced.
func (s *authService) RequestPasswordReset(ctx context.Context, email string) error {
	email, err := common.ValidateEmail(email)
	if err != nil {
		return common.ValidationError("%s", err.Error())
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		return common.StorageError("password reset request", err)
	}

	token := newSecureToken()
	reset := &models.PasswordResetToken{
		ID:        uuid.New(),
		UserID:    user.ID,
		Token:     token,
		ExpiresAt: s.clock.Now().Add(s.resetTTL),
	}
	if err := s.resetRepo.Create(ctx, reset); err != nil {
		return common.StorageError("password reset request", err)
	}

	msg, err := mailer.PasswordResetMessage(user.Email, user.Name,
		fmt.Sprintf("%s/reset-password?token=%s", s.appBaseURL, token),
		reset.ExpiresAt.Format(time.RFC1123))
	if err != nil {
		s.log.Error("failed to render reset email", zap.Error(err))
		return nil
	}
	if err := s.mail.Send(ctx, msg); err != nil {
		s.log.Error("failed to send reset email", zap.String("user_id", user.ID.String()), zap.Error(err))
	}
	return nil
}

// ResetPassword consumes a reset token. Missing, already-used and expired
// tokens all fail with the same message.
func (s *authService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if err := common.ValidatePassword(newPassword); err != nil {
		return common.ValidationError("%s", err.Error())
	}

	reset, err := s.resetRepo.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return common.ValidationError("invalid or expired token")
		}
		return common.StorageError("password reset", err)
	}
	if reset.Used || s.clock.Now().After(reset.ExpiresAt) {
		return common.ValidationError("invalid or expired token")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return common.StorageError("password reset", err)
	}
	defer tx.Rollback(ctx)

	if err := s.userRepo.WithTx(tx).UpdatePassword(ctx, reset.UserID, string(hash)); err != nil {
		return common.StorageError("password reset", err)
	}
	if err := s.resetRepo.WithTx(tx).MarkUsed(ctx, reset.ID); err != nil {
		return common.StorageError("password reset", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return common.StorageError("password reset", err)
	}
	return nil
}

// AcceptInvitation redeems a pending invitation: the new user joins the
// inviting clinic with the invited role and is logged in immediately.
func (s *authService) AcceptInvitation(ctx context.Context, token, name, password string) (*Session, error) {
	if err := common.ValidateRequiredString(name, "name"); err != nil {
		return nil, common.ValidationError("%s", err.Error())
	}
	if err := common.ValidatePassword(password); err != nil {
		return nil, common.ValidationError("%s", err.Error())
	}

	inv, err := s.invRepo.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.ValidationError("invalid or expired invitation")
		}
		return nil, common.StorageError("invitation lookup", err)
	}
	now := s.clock.Now()
	if inv.EffectiveStatus(now) != models.InvitationPending {
		return nil, common.ValidationError("invalid or expired invitation")
	}

	exists, err := s.userRepo.EmailExists(ctx, inv.Email)
	if err != nil {
		return nil, common.StorageError("email lookup", err)
	}
	if exists {
		return nil, common.ConflictError("an account with this email already exists")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		ID:           uuid.New(),
		ClinicID:     inv.ClinicID,
		Email:        inv.Email,
		PasswordHash: string(hash),
		Name:         name,
		Role:         inv.Role,
		Active:       true,
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, common.StorageError("invitation acceptance", err)
	}
	defer tx.Rollback(ctx)

	if err := s.userRepo.WithTx(tx).Create(ctx, user); err != nil {
		return nil, common.StorageError("user create", err)
	}
	if err := s.invRepo.WithTx(tx).MarkAccepted(ctx, inv.ID, now); err != nil {
		return nil, common.StorageError("invitation acceptance", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, common.StorageError("invitation acceptance", err)
	}

	s.recordActivity(ctx, inv.ClinicID, user.ID, models.ActionInvitationRedeem, "invitation", inv.ID.String(), nil)

	return s.startSession(user)
}

func (s *authService) startSession(user *models.User) (*Session, error) {
	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, fmt.Errorf("failed to issue session token: %w", err)
	}
	return &Session{Token: token, User: user}, nil
}

func (s *authService) recordActivity(ctx context.Context, clinicID, actorID uuid.UUID, action, entity, entityID string, detail *string) {
	entry := &models.ActivityLog{
		ID:       uuid.New(),
		ClinicID: clinicID,
		ActorID:  actorID,
		Action:   action,
		Entity:   entity,
		EntityID: entityID,
		Detail:   detail,
	}
	if err := s.activity.Create(ctx, entry); err != nil {
		s.log.Warn("failed to record activity", zap.String("action", action), zap.Error(err))
	}
}

// newSecureToken returns 32 bytes of cryptographic randomness, hex encoded.
func newSecureToken() string {
	b := make([]byte, 32)
	rand.Read(b)
	return hex.EncodeToString(b)
}
