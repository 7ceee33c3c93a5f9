package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"clinicpulse/internal/common"
	"clinicpulse/internal/mailer"
	"clinicpulse/internal/models"
	"clinicpulse/internal/scoring"
)

// Shared doubles for the service suites. Repository mocks live in the
// repositories package; these cover the remaining collaborators.

type mockCache struct {
	mock.Mock
}

func (m *mockCache) GetReport(ctx context.Context, clinicID uuid.UUID, month time.Time) (*scoring.Report, error) {
	args := m.Called(ctx, clinicID, month)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*scoring.Report), args.Error(1)
}

func (m *mockCache) SetReport(ctx context.Context, clinicID uuid.UUID, month time.Time, report *scoring.Report, ttl time.Duration) error {
	args := m.Called(ctx, clinicID, month, report, ttl)
	return args.Error(0)
}

func (m *mockCache) DeleteReport(ctx context.Context, clinicID uuid.UUID, month time.Time) error {
	args := m.Called(ctx, clinicID, month)
	return args.Error(0)
}

func (m *mockCache) InvalidateClinic(ctx context.Context, clinicID uuid.UUID) error {
	args := m.Called(ctx, clinicID)
	return args.Error(0)
}

func (m *mockCache) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type mockSender struct {
	mock.Mock
}

func (m *mockSender) Send(ctx context.Context, msg mailer.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

type mockGoalsService struct {
	mock.Mock
}

func (m *mockGoalsService) Get(ctx context.Context, p *common.Principal) (*models.GlobalGoals, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.GlobalGoals), args.Error(1)
}

func (m *mockGoalsService) Update(ctx context.Context, p *common.Principal, req UpdateGoalsRequest) (*models.GlobalGoals, error) {
	args := m.Called(ctx, p, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.GlobalGoals), args.Error(1)
}

func adminPrincipal(clinicID uuid.UUID) *common.Principal {
	return &common.Principal{
		UserID:   uuid.New(),
		ClinicID: clinicID,
		Role:     models.RoleAdmin,
		Active:   true,
	}
}

func memberPrincipal(clinicID uuid.UUID) *common.Principal {
	return &common.Principal{
		UserID:   uuid.New(),
		ClinicID: clinicID,
		Role:     models.RoleMember,
		Active:   true,
	}
}
