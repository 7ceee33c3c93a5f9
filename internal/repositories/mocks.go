package repositories

import (
	"context"
	"time"

	"clinicpulse/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/mock"
)

// Testify doubles for the repository interfaces, used by the service test
// suites. WithTx returns the mock itself so transactional flows can be
// exercised against a single set of expectations.

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) WithTx(tx pgx.Tx) UserRepository { return m }

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, clinicID, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, clinicID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) List(ctx context.Context, clinicID uuid.UUID, limit, offset int) ([]*models.User, error) {
	args := m.Called(ctx, clinicID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.User), args.Error(1)
}

func (m *MockUserRepository) SetActive(ctx context.Context, clinicID, id uuid.UUID, active bool) (int64, error) {
	args := m.Called(ctx, clinicID, id, active)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockUserRepository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	args := m.Called(ctx, id, passwordHash)
	return args.Error(0)
}

func (m *MockUserRepository) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}

type MockClinicRepository struct {
	mock.Mock
}

func (m *MockClinicRepository) WithTx(tx pgx.Tx) ClinicRepository { return m }

func (m *MockClinicRepository) Create(ctx context.Context, clinic *models.Clinic) error {
	args := m.Called(ctx, clinic)
	return args.Error(0)
}

func (m *MockClinicRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Clinic, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Clinic), args.Error(1)
}

func (m *MockClinicRepository) Update(ctx context.Context, clinic *models.Clinic) error {
	args := m.Called(ctx, clinic)
	return args.Error(0)
}

func (m *MockClinicRepository) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(int64), args.Error(1)
}

type MockGoalsRepository struct {
	mock.Mock
}

func (m *MockGoalsRepository) WithTx(tx pgx.Tx) GoalsRepository { return m }

func (m *MockGoalsRepository) GetByClinic(ctx context.Context, clinicID uuid.UUID) (*models.GlobalGoals, error) {
	args := m.Called(ctx, clinicID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.GlobalGoals), args.Error(1)
}

func (m *MockGoalsRepository) Insert(ctx context.Context, goals *models.GlobalGoals) error {
	args := m.Called(ctx, goals)
	return args.Error(0)
}

func (m *MockGoalsRepository) Update(ctx context.Context, goals *models.GlobalGoals) error {
	args := m.Called(ctx, goals)
	return args.Error(0)
}

type MockAuditRepository struct {
	mock.Mock
}

func (m *MockAuditRepository) List(ctx context.Context, clinicID uuid.UUID) ([]*models.MonthlyAudit, error) {
	args := m.Called(ctx, clinicID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.MonthlyAudit), args.Error(1)
}

func (m *MockAuditRepository) Get(ctx context.Context, clinicID uuid.UUID, month time.Time) (*models.MonthlyAudit, error) {
	args := m.Called(ctx, clinicID, month)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MonthlyAudit), args.Error(1)
}

func (m *MockAuditRepository) Save(ctx context.Context, audit *models.MonthlyAudit) (uuid.UUID, error) {
	args := m.Called(ctx, audit)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *MockAuditRepository) Delete(ctx context.Context, clinicID uuid.UUID, month time.Time) (int64, error) {
	args := m.Called(ctx, clinicID, month)
	return args.Get(0).(int64), args.Error(1)
}

type MockInvitationRepository struct {
	mock.Mock
}

func (m *MockInvitationRepository) WithTx(tx pgx.Tx) InvitationRepository { return m }

func (m *MockInvitationRepository) Create(ctx context.Context, inv *models.Invitation) error {
	args := m.Called(ctx, inv)
	return args.Error(0)
}

func (m *MockInvitationRepository) GetByToken(ctx context.Context, token string) (*models.Invitation, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Invitation), args.Error(1)
}

func (m *MockInvitationRepository) HasPending(ctx context.Context, clinicID uuid.UUID, email string, now time.Time) (bool, error) {
	args := m.Called(ctx, clinicID, email, now)
	return args.Bool(0), args.Error(1)
}

func (m *MockInvitationRepository) List(ctx context.Context, clinicID uuid.UUID) ([]*models.InvitationWithInviter, error) {
	args := m.Called(ctx, clinicID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.InvitationWithInviter), args.Error(1)
}

func (m *MockInvitationRepository) Delete(ctx context.Context, clinicID, id uuid.UUID) (int64, error) {
	args := m.Called(ctx, clinicID, id)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockInvitationRepository) MarkAccepted(ctx context.Context, id uuid.UUID, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}

type MockPasswordResetRepository struct {
	mock.Mock
}

func (m *MockPasswordResetRepository) WithTx(tx pgx.Tx) PasswordResetRepository { return m }

func (m *MockPasswordResetRepository) Create(ctx context.Context, token *models.PasswordResetToken) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *MockPasswordResetRepository) GetByToken(ctx context.Context, token string) (*models.PasswordResetToken, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PasswordResetToken), args.Error(1)
}

func (m *MockPasswordResetRepository) MarkUsed(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockActivityLogRepository struct {
	mock.Mock
}

func (m *MockActivityLogRepository) Create(ctx context.Context, entry *models.ActivityLog) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockActivityLogRepository) List(ctx context.Context, clinicID uuid.UUID, limit, offset int) ([]*models.ActivityLog, error) {
	args := m.Called(ctx, clinicID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.ActivityLog), args.Error(1)
}
