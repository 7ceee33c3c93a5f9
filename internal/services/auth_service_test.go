package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	pgx "github.com/jackc/pgx/v5"
	"github.com/jonboulle/clockwork"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"clinicpulse/internal/common"
	"clinicpulse/internal/models"
	"clinicpulse/internal/repositories"
)

type AuthServiceTestSuite struct {
	suite.Suite
	db         pgxmock.PgxPoolIface
	userRepo   *repositories.MockUserRepository
	clinicRepo *repositories.MockClinicRepository
	goalsRepo  *repositories.MockGoalsRepository
	resetRepo  *repositories.MockPasswordResetRepository
	invRepo    *repositories.MockInvitationRepository
	activity   *repositories.MockActivityLogRepository
	mail       *mockSender
	clock      *clockwork.FakeClock
	service    AuthService
	context    context.Context
}

func (suite *AuthServiceTestSuite) SetupTest() {
	db, err := pgxmock.NewPool()
	assert.NoError(suite.T(), err)
	suite.db = db

	suite.userRepo = &repositories.MockUserRepository{}
	suite.clinicRepo = &repositories.MockClinicRepository{}
	suite.goalsRepo = &repositories.MockGoalsRepository{}
	suite.resetRepo = &repositories.MockPasswordResetRepository{}
	suite.invRepo = &repositories.MockInvitationRepository{}
	suite.activity = &repositories.MockActivityLogRepository{}
	suite.mail = &mockSender{}
	suite.clock = clockwork.NewFakeClockAt(time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC))
	suite.context = context.Background()

	tokens := NewTokenService("test-secret", 24*time.Hour, suite.clock)
	suite.service = NewAuthService(db, suite.userRepo, suite.clinicRepo, suite.goalsRepo,
		suite.resetRepo, suite.invRepo, suite.activity, tokens, suite.mail, suite.clock,
		zap.NewNop(), "http://app.test", time.Hour)

	suite.userRepo.Test(suite.T())
	suite.clinicRepo.Test(suite.T())
}

func (suite *AuthServiceTestSuite) TearDownTest() {
	suite.userRepo.AssertExpectations(suite.T())
	suite.clinicRepo.AssertExpectations(suite.T())
	suite.goalsRepo.AssertExpectations(suite.T())
	suite.resetRepo.AssertExpectations(suite.T())
	suite.invRepo.AssertExpectations(suite.T())
	suite.mail.AssertExpectations(suite.T())
	suite.db.Close()
}

func TestAuthServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AuthServiceTestSuite))
}

func hashOf(password string) string {
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	return string(hash)
}

func activeUser(email, password string) *models.User {
	return &models.User{
		ID:           uuid.New(),
		ClinicID:     uuid.New(),
		Email:        email,
		PasswordHash: hashOf(password),
		Name:         "Dr Example",
		Role:         models.RoleAdmin,
		Active:       true,
	}
}

func (suite *AuthServiceTestSuite) TestSignup_ProvisionsClinicAdminAndGoals() {
	req := SignupRequest{
		ClinicName: "Lakeside Dental",
		Name:       "Dr Example",
		Email:      "DR@Clinic.Test",
		Password:   "password123",
	}

	suite.userRepo.On("EmailExists", suite.context, "dr@clinic.test").Return(false, nil)

	suite.db.ExpectBegin()
	suite.clinicRepo.On("Create", suite.context, mock.AnythingOfType("*models.Clinic")).Return(nil)
	suite.userRepo.On("Create", suite.context, mock.AnythingOfType("*models.User")).Return(nil).
		Run(func(args mock.Arguments) {
			user := args.Get(1).(*models.User)
			assert.Equal(suite.T(), "dr@clinic.test", user.Email)
			assert.Equal(suite.T(), models.RoleAdmin, user.Role)
			assert.True(suite.T(), user.Active)
			assert.NoError(suite.T(), bcrypt.CompareHashAndPassword(
				[]byte(user.PasswordHash), []byte("password123")))
		})
	suite.goalsRepo.On("Insert", suite.context, mock.AnythingOfType("*models.GlobalGoals")).Return(nil).
		Run(func(args mock.Arguments) {
			goals := args.Get(1).(*models.GlobalGoals)
			assert.InDelta(suite.T(), models.DefaultProfitMarginGoal, goals.ProfitMarginGoal, 0.0001)
			assert.InDelta(suite.T(), models.DefaultCapacityGoal, goals.CapacityGoal, 0.0001)
		})
	suite.db.ExpectCommit()

	session, err := suite.service.Signup(suite.context, req)
	assert.NoError(suite.T(), err)
	assert.NotEmpty(suite.T(), session.Token)
	assert.Equal(suite.T(), models.RoleAdmin, session.User.Role)
	assert.NoError(suite.T(), suite.db.ExpectationsWereMet())
}

func (suite *AuthServiceTestSuite) TestSignup_DuplicateEmail() {
	suite.userRepo.On("EmailExists", suite.context, "dr@clinic.test").Return(true, nil)

	_, err := suite.service.Signup(suite.context, SignupRequest{
		ClinicName: "Lakeside Dental",
		Name:       "Dr Example",
		Email:      "dr@clinic.test",
		Password:   "password123",
	})
	assert.True(suite.T(), common.IsKind(err, common.KindConflict))
}

func (suite *AuthServiceTestSuite) TestSignup_WeakPassword() {
	_, err := suite.service.Signup(suite.context, SignupRequest{
		ClinicName: "Lakeside Dental",
		Name:       "Dr Example",
		Email:      "dr@clinic.test",
		Password:   "short",
	})
	assert.True(suite.T(), common.IsKind(err, common.KindValidation))
}

func (suite *AuthServiceTestSuite) TestLogin_Success() {
	user := activeUser("dr@clinic.test", "password123")
	suite.userRepo.On("GetByEmail", suite.context, "dr@clinic.test").Return(user, nil)
	suite.userRepo.On("UpdateLastLogin", suite.context, user.ID, suite.clock.Now()).Return(nil)

	session, err := suite.service.Login(suite.context, "dr@clinic.test", "password123")
	assert.NoError(suite.T(), err)
	assert.NotEmpty(suite.T(), session.Token)
	assert.NotNil(suite.T(), session.User.LastLoginAt)
}

func (suite *AuthServiceTestSuite) TestLogin_UnknownEmailAndWrongPasswordLookAlike() {
	suite.userRepo.On("GetByEmail", suite.context, "nobody@clinic.test").Return(nil, pgx.ErrNoRows)
	_, errUnknown := suite.service.Login(suite.context, "nobody@clinic.test", "password123")

	user := activeUser("dr@clinic.test", "password123")
	suite.userRepo.On("GetByEmail", suite.context, "dr@clinic.test").Return(user, nil)
	_, errWrong := suite.service.Login(suite.context, "dr@clinic.test", "not-the-password")

	assert.True(suite.T(), common.IsKind(errUnknown, common.KindAuthentication))
	assert.True(suite.T(), common.IsKind(errWrong, common.KindAuthentication))
	assert.Equal(suite.T(), errUnknown.Error(), errWrong.Error())
}

func (suite *AuthServiceTestSuite) TestLogin_DeactivatedAccount() {
	user := activeUser("dr@clinic.test", "password123")
	user.Active = false
	suite.userRepo.On("GetByEmail", suite.context, "dr@clinic.test").Return(user, nil)

	_, err := suite.service.Login(suite.context, "dr@clinic.test", "password123")
	assert.True(suite.T(), common.IsKind(err, common.KindAuthorization))
}

func (suite *AuthServiceTestSuite) TestLogin_SurvivesLastLoginWriteFailure() {
	user := activeUser("dr@clinic.test", "password123")
	suite.userRepo.On("GetByEmail", suite.context, "dr@clinic.test").Return(user, nil)
	suite.userRepo.On("UpdateLastLogin", suite.context, user.ID, suite.clock.Now()).
		Return(errors.New("disk full"))

	session, err := suite.service.Login(suite.context, "dr@clinic.test", "password123")
	assert.NoError(suite.T(), err)
	assert.NotEmpty(suite.T(), session.Token)
}

func (suite *AuthServiceTestSuite) TestRequestPasswordReset_UnknownEmailStaysQuiet() {
	suite.userRepo.On("GetByEmail", suite.context, "nobody@clinic.test").Return(nil, pgx.ErrNoRows)

	err := suite.service.RequestPasswordReset(suite.context, "nobody@clinic.test")
	assert.NoError(suite.T(), err)
	suite.resetRepo.AssertNotCalled(suite.T(), "Create", mock.Anything, mock.Anything)
	suite.mail.AssertNotCalled(suite.T(), "Send", mock.Anything, mock.Anything)
}

func (suite *AuthServiceTestSuite) TestRequestPasswordReset_StoresTokenAndSendsEmail() {
	user := activeUser("dr@clinic.test", "password123")
	suite.userRepo.On("GetByEmail", suite.context, "dr@clinic.test").Return(user, nil)
	suite.resetRepo.On("Create", suite.context, mock.AnythingOfType("*models.PasswordResetToken")).
		Return(nil).
		Run(func(args mock.Arguments) {
			reset := args.Get(1).(*models.PasswordResetToken)
			assert.Equal(suite.T(), user.ID, reset.UserID)
			assert.Len(suite.T(), reset.Token, 64) // 32 random bytes, hex
			assert.Equal(suite.T(), suite.clock.Now().Add(time.Hour), reset.ExpiresAt)
		})
	suite.mail.On("Send", suite.context, mock.AnythingOfType("mailer.Message")).Return(nil)

	err := suite.service.RequestPasswordReset(suite.context, "dr@clinic.test")
	assert.NoError(suite.T(), err)
}

func (suite *AuthServiceTestSuite) TestResetPassword_InvalidUsedAndExpiredLookAlike() {
	suite.resetRepo.On("GetByToken", suite.context, "missing").Return(nil, pgx.ErrNoRows)
	errMissing := suite.service.ResetPassword(suite.context, "missing", "newpassword1")

	suite.resetRepo.On("GetByToken", suite.context, "used").Return(&models.PasswordResetToken{
		ID: uuid.New(), UserID: uuid.New(), Used: true,
		ExpiresAt: suite.clock.Now().Add(time.Hour),
	}, nil)
	errUsed := suite.service.ResetPassword(suite.context, "used", "newpassword1")

	suite.resetRepo.On("GetByToken", suite.context, "expired").Return(&models.PasswordResetToken{
		ID: uuid.New(), UserID: uuid.New(),
		ExpiresAt: suite.clock.Now().Add(-time.Minute),
	}, nil)
	errExpired := suite.service.ResetPassword(suite.context, "expired", "newpassword1")

	for _, err := range []error{errMissing, errUsed, errExpired} {
		assert.True(suite.T(), common.IsKind(err, common.KindValidation))
		assert.Equal(suite.T(), errMissing.Error(), err.Error())
	}
}

func (suite *AuthServiceTestSuite) TestResetPassword_Success() {
	reset := &models.PasswordResetToken{
		ID:        uuid.New(),
		UserID:    uuid.New(),
		Token:     "tok",
		ExpiresAt: suite.clock.Now().Add(time.Hour),
	}
	suite.resetRepo.On("GetByToken", suite.context, "tok").Return(reset, nil)

	suite.db.ExpectBegin()
	suite.userRepo.On("UpdatePassword", suite.context, reset.UserID, mock.AnythingOfType("string")).Return(nil)
	suite.resetRepo.On("MarkUsed", suite.context, reset.ID).Return(nil)
	suite.db.ExpectCommit()

	err := suite.service.ResetPassword(suite.context, "tok", "newpassword1")
	assert.NoError(suite.T(), err)
	assert.NoError(suite.T(), suite.db.ExpectationsWereMet())
}

func (suite *AuthServiceTestSuite) TestAcceptInvitation_ExpiredInvitation() {
	inv := &models.Invitation{
		ID:        uuid.New(),
		ClinicID:  uuid.New(),
		Email:     "new@clinic.test",
		Role:      models.RoleMember,
		Status:    models.InvitationPending,
		ExpiresAt: suite.clock.Now().Add(-time.Minute),
	}
	suite.invRepo.On("GetByToken", suite.context, "tok").Return(inv, nil)

	_, err := suite.service.AcceptInvitation(suite.context, "tok", "New Member", "password123")
	assert.True(suite.T(), common.IsKind(err, common.KindValidation))
}

func (suite *AuthServiceTestSuite) TestAcceptInvitation_AlreadyAccepted() {
	inv := &models.Invitation{
		ID:        uuid.New(),
		ClinicID:  uuid.New(),
		Email:     "new@clinic.test",
		Role:      models.RoleMember,
		Status:    models.InvitationAccepted,
		ExpiresAt: suite.clock.Now().Add(time.Hour),
	}
	suite.invRepo.On("GetByToken", suite.context, "tok").Return(inv, nil)

	_, err := suite.service.AcceptInvitation(suite.context, "tok", "New Member", "password123")
	assert.True(suite.T(), common.IsKind(err, common.KindValidation))
}

func (suite *AuthServiceTestSuite) TestAcceptInvitation_Success() {
	inv := &models.Invitation{
		ID:        uuid.New(),
		ClinicID:  uuid.New(),
		Email:     "new@clinic.test",
		Role:      models.RoleMember,
		Status:    models.InvitationPending,
		ExpiresAt: suite.clock.Now().Add(time.Hour),
	}
	suite.invRepo.On("GetByToken", suite.context, "tok").Return(inv, nil)
	suite.userRepo.On("EmailExists", suite.context, inv.Email).Return(false, nil)

	suite.db.ExpectBegin()
	suite.userRepo.On("Create", suite.context, mock.AnythingOfType("*models.User")).Return(nil).
		Run(func(args mock.Arguments) {
			user := args.Get(1).(*models.User)
			assert.Equal(suite.T(), inv.ClinicID, user.ClinicID)
			assert.Equal(suite.T(), inv.Email, user.Email)
			assert.Equal(suite.T(), models.RoleMember, user.Role)
			assert.True(suite.T(), user.Active)
		})
	suite.invRepo.On("MarkAccepted", suite.context, inv.ID, suite.clock.Now()).Return(nil)
	suite.db.ExpectCommit()
	suite.activity.On("Create", suite.context, mock.AnythingOfType("*models.ActivityLog")).Return(nil)

	session, err := suite.service.AcceptInvitation(suite.context, "tok", "New Member", "password123")
	assert.NoError(suite.T(), err)
	assert.NotEmpty(suite.T(), session.Token)
	assert.NoError(suite.T(), suite.db.ExpectationsWereMet())
}
