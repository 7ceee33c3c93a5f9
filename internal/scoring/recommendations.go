package scoring

import (
	"fmt"

	"clinicpulse/internal/models"
)

const (
	SeverityDanger  = "danger"
	SeverityWarning = "warning"
	SeverityInfo    = "info"
)

// A metric at or above this share of its goal draws no advice.
const adviceThreshold = 90.0

// Recommendation is an advisory message comparing one metric to its goal.
type Recommendation struct {
	Severity      string  `json:"severity"`
	Title         string  `json:"title"`
	Message       string  `json:"message"`
	PercentOfGoal float64 `json:"percent_of_goal"`
	Goal          float64 `json:"goal"`
}

// Recommendations evaluates the advisory rules in a fixed order. New rules
// append to the end; existing entries never reorder. Metrics with a zero or
// negative goal are skipped entirely.
func Recommendations(sc Scorecard, audit *models.MonthlyAudit, goals *models.GlobalGoals) []Recommendation {
	recs := []Recommendation{}

	add := func(severity, title, metric string, actual, goal float64) {
		if goal <= 0 {
			return
		}
		pct := actual / goal * 100
		if pct >= adviceThreshold {
			return
		}
		if pct < 0 {
			pct = 0
		}
		recs = append(recs, Recommendation{
			Severity:      severity,
			Title:         title,
			Message:       fmt.Sprintf("%s is at %.1f%% of the goal (%.2f)", metric, pct, goal),
			PercentOfGoal: pct,
			Goal:          goal,
		})
	}

	add(SeverityDanger, "Revenue Below Goal", "Revenue",
		audit.Revenue.InexactFloat64(), goals.RevenueGoal.InexactFloat64())
	add(SeverityDanger, "Profit Margin Below Goal", "Profit margin",
		sc.ProfitMargin, goals.ProfitMarginGoal)
	add(SeverityWarning, "Capacity Below Goal", "Capacity",
		sc.Capacity, goals.CapacityGoal/100)
	add(SeverityWarning, "New Client Visits Below Target", "New client visits",
		float64(audit.NewClientVisits), newClientVisitTarget)
	add(SeverityWarning, "Treatment Conversion Below Target", "Treatment plan conversion",
		sc.TreatmentPlanConversionRate, treatmentConversionTarget)
	add(SeverityInfo, "Website Traffic Below Target", "Website visits",
		float64(audit.WebsiteVisits), websiteVisitTarget)
	add(SeverityInfo, "Website Conversion Below Target", "Website conversion rate",
		sc.WebsiteConversionRate, websiteConversionTarget)

	return recs
}
