package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"clinicpulse/internal/caching"
	"clinicpulse/internal/common"
	"clinicpulse/internal/models"
	"clinicpulse/internal/repositories"
	"clinicpulse/internal/scoring"
)

// Computed reports stay cached until the audit or the goals change.
const reportTTL = 15 * time.Minute

// AuditSummary is one row of the audit listing: identifying fields plus the
// headline score, without the child collections.
type AuditSummary struct {
	Month      string          `json:"month"`
	Revenue    decimal.Decimal `json:"revenue"`
	TotalScore float64         `json:"total_score"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// AuditService owns the monthly audit lifecycle and the scorecard read path.
type AuditService interface {
	List(ctx context.Context, p *common.Principal) ([]AuditSummary, error)
	Get(ctx context.Context, p *common.Principal, month time.Time) (*models.MonthlyAudit, error)
	Save(ctx context.Context, p *common.Principal, audit *models.MonthlyAudit) (*models.MonthlyAudit, error)
	Delete(ctx context.Context, p *common.Principal, month time.Time) error
	Scorecard(ctx context.Context, p *common.Principal, month time.Time) (*scoring.Report, error)
}

type auditService struct {
	auditRepo repositories.AuditRepository
	goals     GoalsService
	activity  repositories.ActivityLogRepository
	cache     caching.CacheService
	log       *zap.Logger
}

func NewAuditService(
	auditRepo repositories.AuditRepository,
	goals GoalsService,
	activity repositories.ActivityLogRepository,
	cache caching.CacheService,
	log *zap.Logger,
) AuditService {
	return &auditService{
		auditRepo: auditRepo,
		goals:     goals,
		activity:  activity,
		cache:     cache,
		log:       log,
	}
}

// List returns the clinic's audit months, newest first, each scored against
// the current goals.
func (s *auditService) List(ctx context.Context, p *common.Principal) ([]AuditSummary, error) {
	audits, err := s.auditRepo.List(ctx, p.ClinicID)
	if err != nil {
		return nil, common.StorageError("audit list", err)
	}

	goals, err := s.goals.Get(ctx, p)
	if err != nil {
		return nil, err
	}

	summaries := make([]AuditSummary, 0, len(audits))
	for _, audit := range audits {
		sc := scoring.Compute(audit, goals)
		summaries = append(summaries, AuditSummary{
			Month:      common.FormatMonth(audit.Month),
			Revenue:    audit.Revenue,
			TotalScore: sc.TotalScore,
			UpdatedAt:  audit.UpdatedAt,
		})
	}
	return summaries, nil
}

func (s *auditService) Get(ctx context.Context, p *common.Principal, month time.Time) (*models.MonthlyAudit, error) {
	audit, err := s.auditRepo.Get(ctx, p.ClinicID, month)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.NotFoundError("audit")
		}
		return nil, common.StorageError("audit lookup", err)
	}
	return audit, nil
}

// Save upserts the month's audit. The caller's clinic and identity always
// override whatever the payload carries, and child rows get fresh identities
// since the persisted collections are replaced wholesale.
func (s *auditService) Save(ctx context.Context, p *common.Principal, audit *models.MonthlyAudit) (*models.MonthlyAudit, error) {
	if err := validateAudit(audit); err != nil {
		return nil, err
	}

	audit.ID = uuid.New()
	audit.ClinicID = p.ClinicID
	audit.CreatedBy = p.UserID
	audit.Month = models.NormalizeMonth(audit.Month)
	for i := range audit.PayrollItems {
		audit.PayrollItems[i].ID = uuid.New()
	}
	for i := range audit.AdditionalExpenses {
		audit.AdditionalExpenses[i].ID = uuid.New()
	}
	for i := range audit.ServiceRecords {
		audit.ServiceRecords[i].ID = uuid.New()
	}

	if _, err := s.auditRepo.Save(ctx, audit); err != nil {
		return nil, common.StorageError("audit save", err)
	}

	if err := s.cache.DeleteReport(ctx, p.ClinicID, audit.Month); err != nil {
		s.log.Warn("failed to invalidate scorecard cache",
			zap.String("clinic_id", p.ClinicID.String()), zap.Error(err))
	}
	s.recordActivity(ctx, p, models.ActionAuditSaved, audit.Month)

	return s.Get(ctx, p, audit.Month)
}

// Delete removes the month's audit and its children.
func (s *auditService) Delete(ctx context.Context, p *common.Principal, month time.Time) error {
	month = models.NormalizeMonth(month)
	rows, err := s.auditRepo.Delete(ctx, p.ClinicID, month)
	if err != nil {
		return common.StorageError("audit delete", err)
	}
	if rows == 0 {
		return common.NotFoundError("audit")
	}

	if err := s.cache.DeleteReport(ctx, p.ClinicID, month); err != nil {
		s.log.Warn("failed to invalidate scorecard cache",
			zap.String("clinic_id", p.ClinicID.String()), zap.Error(err))
	}
	s.recordActivity(ctx, p, models.ActionAuditDeleted, month)
	return nil
}

// Scorecard serves the month's computed report, from cache when possible.
// Cache failures degrade to a recompute, never to a request failure.
func (s *auditService) Scorecard(ctx context.Context, p *common.Principal, month time.Time) (*scoring.Report, error) {
	month = models.NormalizeMonth(month)

	report, err := s.cache.GetReport(ctx, p.ClinicID, month)
	if err != nil {
		s.log.Warn("scorecard cache read failed",
			zap.String("clinic_id", p.ClinicID.String()), zap.Error(err))
	}
	if report != nil {
		return report, nil
	}

	audit, err := s.Get(ctx, p, month)
	if err != nil {
		return nil, err
	}
	goals, err := s.goals.Get(ctx, p)
	if err != nil {
		return nil, err
	}

	sc := scoring.Compute(audit, goals)
	report = &scoring.Report{
		Month:           common.FormatMonth(month),
		Scorecard:       sc,
		Recommendations: scoring.Recommendations(sc, audit, goals),
	}

	if err := s.cache.SetReport(ctx, p.ClinicID, month, report, reportTTL); err != nil {
		s.log.Warn("scorecard cache write failed",
			zap.String("clinic_id", p.ClinicID.String()), zap.Error(err))
	}
	return report, nil
}

func (s *auditService) recordActivity(ctx context.Context, p *common.Principal, action string, month time.Time) {
	entry := &models.ActivityLog{
		ID:       uuid.New(),
		ClinicID: p.ClinicID,
		ActorID:  p.UserID,
		Action:   action,
		Entity:   "audit",
		EntityID: common.FormatMonth(month),
	}
	if err := s.activity.Create(ctx, entry); err != nil {
		s.log.Warn("failed to record activity", zap.String("action", action), zap.Error(err))
	}
}

func validateAudit(audit *models.MonthlyAudit) error {
	if audit.Month.IsZero() {
		return common.ValidationError("month is required")
	}
	if audit.Revenue.IsNegative() || audit.OperatingExpenses.IsNegative() ||
		audit.COGS.IsNegative() || audit.MarketingSpend.IsNegative() {
		return common.ValidationError("monetary amounts cannot be negative")
	}
	if audit.WebsiteVisits < 0 || audit.NewClientVisits < 0 || audit.TreatmentConversions < 0 ||
		audit.TotalClients < 0 || audit.TotalAppointments < 0 {
		return common.ValidationError("counts cannot be negative")
	}
	if audit.WebsiteConversionRate < 0 || audit.WebsiteConversionRate > 100 {
		return common.ValidationError("website_conversion_rate must be between 0 and 100")
	}
	for _, item := range audit.PayrollItems {
		if err := common.ValidateRequiredString(item.Name, "payroll item name"); err != nil {
			return common.ValidationError("%s", err.Error())
		}
		if item.Amount.IsNegative() {
			return common.ValidationError("payroll amounts cannot be negative")
		}
	}
	for _, exp := range audit.AdditionalExpenses {
		if err := common.ValidateRequiredString(exp.Name, "expense name"); err != nil {
			return common.ValidationError("%s", err.Error())
		}
		if exp.Amount.IsNegative() {
			return common.ValidationError("expense amounts cannot be negative")
		}
	}
	for _, svc := range audit.ServiceRecords {
		if err := common.ValidateRequiredString(svc.Name, "service name"); err != nil {
			return common.ValidationError("%s", err.Error())
		}
		if svc.ProviderHours < 0 || svc.BookedHours < 0 {
			return common.ValidationError("service hours cannot be negative")
		}
		if svc.Revenue.IsNegative() || svc.Commission.IsNegative() || svc.AllocatedExpenses.IsNegative() {
			return common.ValidationError("service amounts cannot be negative")
		}
	}
	return nil
}
