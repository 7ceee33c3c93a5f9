package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"

	"clinicpulse/internal/common"
	"clinicpulse/internal/models"
	"clinicpulse/internal/repositories"
)

type InvitationServiceTestSuite struct {
	suite.Suite
	invRepo    *repositories.MockInvitationRepository
	userRepo   *repositories.MockUserRepository
	clinicRepo *repositories.MockClinicRepository
	activity   *repositories.MockActivityLogRepository
	mail       *mockSender
	clock      *clockwork.FakeClock
	service    InvitationService
	admin      *common.Principal
	context    context.Context
}

func (suite *InvitationServiceTestSuite) SetupTest() {
	suite.invRepo = &repositories.MockInvitationRepository{}
	suite.userRepo = &repositories.MockUserRepository{}
	suite.clinicRepo = &repositories.MockClinicRepository{}
	suite.activity = &repositories.MockActivityLogRepository{}
	suite.mail = &mockSender{}
	suite.clock = clockwork.NewFakeClockAt(time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC))
	suite.admin = adminPrincipal(uuid.New())
	suite.context = context.Background()

	suite.service = NewInvitationService(suite.invRepo, suite.userRepo, suite.clinicRepo,
		suite.activity, suite.mail, suite.clock, zap.NewNop(), "http://app.test", 72*time.Hour)

	suite.invRepo.Test(suite.T())
}

func (suite *InvitationServiceTestSuite) TearDownTest() {
	suite.invRepo.AssertExpectations(suite.T())
	suite.userRepo.AssertExpectations(suite.T())
}

func TestInvitationServiceTestSuite(t *testing.T) {
	suite.Run(t, new(InvitationServiceTestSuite))
}

func (suite *InvitationServiceTestSuite) expectEmailLookups() {
	suite.userRepo.On("GetByID", suite.context, suite.admin.ClinicID, suite.admin.UserID).
		Return(&models.User{ID: suite.admin.UserID, ClinicID: suite.admin.ClinicID, Name: "Dr Example"}, nil)
	suite.clinicRepo.On("GetByID", suite.context, suite.admin.ClinicID).
		Return(&models.Clinic{ID: suite.admin.ClinicID, Name: "Lakeside Dental"}, nil)
	suite.mail.On("Send", suite.context, mock.AnythingOfType("mailer.Message")).Return(nil)
}

func (suite *InvitationServiceTestSuite) TestInvite_Success() {
	suite.userRepo.On("EmailExists", suite.context, "new@clinic.test").Return(false, nil)
	suite.invRepo.On("HasPending", suite.context, suite.admin.ClinicID, "new@clinic.test", suite.clock.Now()).
		Return(false, nil)
	suite.invRepo.On("Create", suite.context, mock.AnythingOfType("*models.Invitation")).Return(nil).
		Run(func(args mock.Arguments) {
			inv := args.Get(1).(*models.Invitation)
			assert.Equal(suite.T(), suite.admin.ClinicID, inv.ClinicID)
			assert.Equal(suite.T(), suite.admin.UserID, inv.InvitedBy)
			assert.Equal(suite.T(), models.InvitationPending, inv.Status)
			assert.Len(suite.T(), inv.Token, 64)
			assert.Equal(suite.T(), suite.clock.Now().Add(72*time.Hour), inv.ExpiresAt)
		})
	suite.expectEmailLookups()
	suite.activity.On("Create", suite.context, mock.AnythingOfType("*models.ActivityLog")).Return(nil)

	inv, err := suite.service.Invite(suite.context, suite.admin, "New@Clinic.Test", models.RoleMember)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "new@clinic.test", inv.Email)
}

func (suite *InvitationServiceTestSuite) TestInvite_MemberForbidden() {
	_, err := suite.service.Invite(suite.context, memberPrincipal(suite.admin.ClinicID),
		"new@clinic.test", models.RoleMember)
	assert.True(suite.T(), common.IsKind(err, common.KindAuthorization))
}

func (suite *InvitationServiceTestSuite) TestInvite_InvalidRole() {
	_, err := suite.service.Invite(suite.context, suite.admin, "new@clinic.test", "owner")
	assert.True(suite.T(), common.IsKind(err, common.KindValidation))
}

func (suite *InvitationServiceTestSuite) TestInvite_ExistingUserEmail() {
	suite.userRepo.On("EmailExists", suite.context, "dr@clinic.test").Return(true, nil)

	_, err := suite.service.Invite(suite.context, suite.admin, "dr@clinic.test", models.RoleMember)
	assert.True(suite.T(), common.IsKind(err, common.KindConflict))
}

func (suite *InvitationServiceTestSuite) TestInvite_DuplicatePending() {
	suite.userRepo.On("EmailExists", suite.context, "new@clinic.test").Return(false, nil)
	suite.invRepo.On("HasPending", suite.context, suite.admin.ClinicID, "new@clinic.test", suite.clock.Now()).
		Return(true, nil)

	_, err := suite.service.Invite(suite.context, suite.admin, "new@clinic.test", models.RoleMember)
	assert.True(suite.T(), common.IsKind(err, common.KindConflict))
}

func (suite *InvitationServiceTestSuite) TestInvite_SurvivesEmailFailure() {
	suite.userRepo.On("EmailExists", suite.context, "new@clinic.test").Return(false, nil)
	suite.invRepo.On("HasPending", suite.context, suite.admin.ClinicID, "new@clinic.test", suite.clock.Now()).
		Return(false, nil)
	suite.invRepo.On("Create", suite.context, mock.AnythingOfType("*models.Invitation")).Return(nil)
	suite.userRepo.On("GetByID", suite.context, suite.admin.ClinicID, suite.admin.UserID).
		Return(&models.User{ID: suite.admin.UserID, Name: "Dr Example"}, nil)
	suite.clinicRepo.On("GetByID", suite.context, suite.admin.ClinicID).
		Return(&models.Clinic{ID: suite.admin.ClinicID, Name: "Lakeside Dental"}, nil)
	suite.mail.On("Send", suite.context, mock.AnythingOfType("mailer.Message")).
		Return(errors.New("smtp timeout"))
	suite.activity.On("Create", suite.context, mock.AnythingOfType("*models.ActivityLog")).Return(nil)

	inv, err := suite.service.Invite(suite.context, suite.admin, "new@clinic.test", models.RoleMember)
	assert.NoError(suite.T(), err)
	assert.NotNil(suite.T(), inv)
}

func (suite *InvitationServiceTestSuite) TestList_FoldsLazyExpiry() {
	stale := &models.InvitationWithInviter{
		Invitation: models.Invitation{
			ID:        uuid.New(),
			ClinicID:  suite.admin.ClinicID,
			Status:    models.InvitationPending,
			ExpiresAt: suite.clock.Now().Add(-time.Hour),
		},
		InviterName: "Dr Example",
	}
	live := &models.InvitationWithInviter{
		Invitation: models.Invitation{
			ID:        uuid.New(),
			ClinicID:  suite.admin.ClinicID,
			Status:    models.InvitationPending,
			ExpiresAt: suite.clock.Now().Add(time.Hour),
		},
		InviterName: "Dr Example",
	}
	suite.invRepo.On("List", suite.context, suite.admin.ClinicID).
		Return([]*models.InvitationWithInviter{stale, live}, nil)

	invitations, err := suite.service.List(suite.context, suite.admin)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), models.InvitationExpired, invitations[0].Status)
	assert.Equal(suite.T(), models.InvitationPending, invitations[1].Status)
}

func (suite *InvitationServiceTestSuite) TestCancel_NotFound() {
	id := uuid.New()
	suite.invRepo.On("Delete", suite.context, suite.admin.ClinicID, id).Return(int64(0), nil)

	err := suite.service.Cancel(suite.context, suite.admin, id)
	assert.True(suite.T(), common.IsKind(err, common.KindNotFound))
}

func (suite *InvitationServiceTestSuite) TestCancel_Success() {
	id := uuid.New()
	suite.invRepo.On("Delete", suite.context, suite.admin.ClinicID, id).Return(int64(1), nil)
	suite.activity.On("Create", suite.context, mock.AnythingOfType("*models.ActivityLog")).Return(nil)

	err := suite.service.Cancel(suite.context, suite.admin, id)
	assert.NoError(suite.T(), err)
}
