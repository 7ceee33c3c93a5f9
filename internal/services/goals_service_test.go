package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	pgx "github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"

	"clinicpulse/internal/common"
	"clinicpulse/internal/models"
	"clinicpulse/internal/repositories"
)

type GoalsServiceTestSuite struct {
	suite.Suite
	goalsRepo *repositories.MockGoalsRepository
	activity  *repositories.MockActivityLogRepository
	cache     *mockCache
	service   GoalsService
	admin     *common.Principal
	context   context.Context
}

func (suite *GoalsServiceTestSuite) SetupTest() {
	suite.goalsRepo = &repositories.MockGoalsRepository{}
	suite.activity = &repositories.MockActivityLogRepository{}
	suite.cache = &mockCache{}
	suite.service = NewGoalsService(suite.goalsRepo, suite.activity, suite.cache, zap.NewNop())
	suite.admin = adminPrincipal(uuid.New())
	suite.context = context.Background()

	suite.goalsRepo.Test(suite.T())
}

func (suite *GoalsServiceTestSuite) TearDownTest() {
	suite.goalsRepo.AssertExpectations(suite.T())
	suite.cache.AssertExpectations(suite.T())
}

func TestGoalsServiceTestSuite(t *testing.T) {
	suite.Run(t, new(GoalsServiceTestSuite))
}

func (suite *GoalsServiceTestSuite) TestGet_ExistingRow() {
	goals := models.DefaultGoals(suite.admin.ClinicID)
	suite.goalsRepo.On("GetByClinic", suite.context, suite.admin.ClinicID).Return(goals, nil)

	got, err := suite.service.Get(suite.context, suite.admin)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), goals, got)
}

func (suite *GoalsServiceTestSuite) TestGet_MaterializesDefaultsOnFirstRead() {
	goals := models.DefaultGoals(suite.admin.ClinicID)
	suite.goalsRepo.On("GetByClinic", suite.context, suite.admin.ClinicID).
		Return(nil, pgx.ErrNoRows).Once()
	suite.goalsRepo.On("Insert", suite.context, mock.AnythingOfType("*models.GlobalGoals")).Return(nil)
	suite.goalsRepo.On("GetByClinic", suite.context, suite.admin.ClinicID).
		Return(goals, nil).Once()

	got, err := suite.service.Get(suite.context, suite.admin)
	assert.NoError(suite.T(), err)
	assert.True(suite.T(), got.RevenueGoal.Equal(decimal.NewFromInt(models.DefaultRevenueGoal)))
}

func (suite *GoalsServiceTestSuite) TestUpdate_MemberForbidden() {
	_, err := suite.service.Update(suite.context, memberPrincipal(suite.admin.ClinicID), UpdateGoalsRequest{})
	assert.True(suite.T(), common.IsKind(err, common.KindAuthorization))
}

func (suite *GoalsServiceTestSuite) TestUpdate_Validation() {
	_, err := suite.service.Update(suite.context, suite.admin, UpdateGoalsRequest{
		RevenueGoal:      decimal.NewFromInt(-1),
		ProfitMarginGoal: 30,
		CapacityGoal:     80,
	})
	assert.True(suite.T(), common.IsKind(err, common.KindValidation))

	_, err = suite.service.Update(suite.context, suite.admin, UpdateGoalsRequest{
		RevenueGoal:      decimal.NewFromInt(100000),
		ProfitMarginGoal: 130,
		CapacityGoal:     80,
	})
	assert.True(suite.T(), common.IsKind(err, common.KindValidation))
}

func (suite *GoalsServiceTestSuite) TestUpdate_PersistsAndInvalidatesCache() {
	goals := models.DefaultGoals(suite.admin.ClinicID)
	suite.goalsRepo.On("GetByClinic", suite.context, suite.admin.ClinicID).Return(goals, nil)
	suite.goalsRepo.On("Update", suite.context, mock.AnythingOfType("*models.GlobalGoals")).Return(nil).
		Run(func(args mock.Arguments) {
			updated := args.Get(1).(*models.GlobalGoals)
			assert.True(suite.T(), updated.RevenueGoal.Equal(decimal.NewFromInt(120000)))
			assert.InDelta(suite.T(), 35, updated.ProfitMarginGoal, 0.0001)
		})
	suite.cache.On("InvalidateClinic", suite.context, suite.admin.ClinicID).Return(nil)
	suite.activity.On("Create", suite.context, mock.AnythingOfType("*models.ActivityLog")).Return(nil)

	updated, err := suite.service.Update(suite.context, suite.admin, UpdateGoalsRequest{
		RevenueGoal:      decimal.NewFromInt(120000),
		ProfitMarginGoal: 35,
		CapacityGoal:     85,
	})
	assert.NoError(suite.T(), err)
	assert.InDelta(suite.T(), 85, updated.CapacityGoal, 0.0001)
}
