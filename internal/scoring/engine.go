package scoring

import (
	"github.com/shopspring/decimal"

	"clinicpulse/internal/models"
)

// Category maximums and fixed benchmark targets. Financial and capacity are
// measured against the clinic's configured goals; the client-flow and
// marketing benchmarks are system-wide constants.
const (
	financialMax = 25.0
	capacityMax  = 25.0

	newClientVisitTarget      = 30.0
	treatmentConversionTarget = 0.5
	websiteVisitTarget        = 1200.0
	websiteConversionTarget   = 0.02
	marketingNewClientTarget  = 24.0
)

// Derived holds the metrics computed from one month's raw inputs. Money stays
// decimal; ratios and percentages are float64 display values.
type Derived struct {
	TotalPayroll            decimal.Decimal `json:"total_payroll"`
	TotalAdditionalExpenses decimal.Decimal `json:"total_additional_expenses"`
	TotalOperatingExpenses  decimal.Decimal `json:"total_operating_expenses"`
	Profit                  decimal.Decimal `json:"profit"`
	ClientValue             decimal.Decimal `json:"client_value"`

	TotalProviderHours          float64 `json:"total_provider_hours"`
	TotalBookedHours            float64 `json:"total_booked_hours"`
	Capacity                    float64 `json:"capacity"`
	ProfitMargin                float64 `json:"profit_margin"`
	WebsiteConversionRate       float64 `json:"website_conversion_rate"`
	TreatmentPlanConversionRate float64 `json:"treatment_plan_conversion_rate"`
}

// Scorecard is the full scoring result for one audit month.
type Scorecard struct {
	Derived

	FinancialScore     float64 `json:"financial_score"`
	CapacityScore      float64 `json:"capacity_score"`
	NewClientFlowScore float64 `json:"new_client_flow_score"`
	MarketingScore     float64 `json:"marketing_score"`
	TotalScore         float64 `json:"total_score"`
}

// Report pairs a scorecard with its recommendations; this is the unit the
// read path caches and serves.
type Report struct {
	Month           string           `json:"month"`
	Scorecard       Scorecard        `json:"scorecard"`
	Recommendations []Recommendation `json:"recommendations"`
}

// Compute derives metrics and scores for one audit against the clinic's
// goals. Pure and deterministic; zero-valued denominators contribute 0, never
// an error or NaN.
func Compute(audit *models.MonthlyAudit, goals *models.GlobalGoals) Scorecard {
	sc := Scorecard{Derived: derive(audit)}

	sc.FinancialScore = cappedShare(audit.Revenue.InexactFloat64(), goals.RevenueGoal.InexactFloat64(), financialMax/2) +
		cappedShare(sc.ProfitMargin, goals.ProfitMarginGoal, financialMax/2)
	sc.CapacityScore = cappedShare(sc.Capacity, goals.CapacityGoal/100, capacityMax)
	sc.NewClientFlowScore = cappedShare(float64(audit.NewClientVisits), newClientVisitTarget, 15) +
		cappedShare(sc.TreatmentPlanConversionRate, treatmentConversionTarget, 10)
	sc.MarketingScore = cappedShare(float64(audit.WebsiteVisits), websiteVisitTarget, 10) +
		cappedShare(sc.WebsiteConversionRate, websiteConversionTarget, 10) +
		cappedShare(float64(audit.NewClientVisits), marketingNewClientTarget, 5)
	sc.TotalScore = sc.FinancialScore + sc.CapacityScore + sc.NewClientFlowScore + sc.MarketingScore

	return sc
}

func derive(audit *models.MonthlyAudit) Derived {
	d := Derived{
		TotalPayroll:            decimal.Zero,
		TotalAdditionalExpenses: decimal.Zero,
	}

	for _, item := range audit.PayrollItems {
		d.TotalPayroll = d.TotalPayroll.Add(item.Amount)
	}
	for _, exp := range audit.AdditionalExpenses {
		d.TotalAdditionalExpenses = d.TotalAdditionalExpenses.Add(exp.Amount)
	}
	d.TotalOperatingExpenses = audit.OperatingExpenses.Add(d.TotalAdditionalExpenses)

	for _, svc := range audit.ServiceRecords {
		d.TotalProviderHours += svc.ProviderHours
		d.TotalBookedHours += svc.BookedHours
	}
	if d.TotalProviderHours > 0 {
		d.Capacity = d.TotalBookedHours / d.TotalProviderHours
	}

	d.Profit = audit.Revenue.
		Sub(d.TotalOperatingExpenses).
		Sub(d.TotalPayroll).
		Sub(audit.COGS)

	revenue := audit.Revenue.InexactFloat64()
	if revenue > 0 {
		d.ProfitMargin = d.Profit.InexactFloat64() / revenue * 100
	}

	d.ClientValue = decimal.Zero
	if audit.TotalClients > 0 {
		d.ClientValue = audit.Revenue.DivRound(decimal.NewFromInt(int64(audit.TotalClients)), 2)
	}

	d.WebsiteConversionRate = audit.WebsiteConversionRate / 100
	if audit.NewClientVisits > 0 {
		d.TreatmentPlanConversionRate = float64(audit.TreatmentConversions) / float64(audit.NewClientVisits)
	}

	return d
}

// cappedShare scores actual against goal, worth at most max points. A goal
// that is zero or negative contributes nothing; the result is clamped to
// [0, max].
func cappedShare(actual, goal, max float64) float64 {
	if goal <= 0 {
		return 0
	}
	share := actual / goal * max
	if share < 0 {
		return 0
	}
	if share > max {
		return max
	}
	return share
}
