package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Defaults applied when a clinic has not configured its own goals.
const (
	DefaultRevenueGoal      = 100000
	DefaultProfitMarginGoal = 30
	DefaultCapacityGoal     = 80
)

// GlobalGoals holds the per-clinic targets the scoring engine measures against.
// Exactly one row exists per clinic.
type GlobalGoals struct {
	ID               uuid.UUID       `json:"id" db:"id"`
	ClinicID         uuid.UUID       `json:"clinic_id" db:"clinic_id"`
	RevenueGoal      decimal.Decimal `json:"revenue_goal" db:"revenue_goal"`
	ProfitMarginGoal float64         `json:"profit_margin_goal" db:"profit_margin_goal"` // whole-number percent
	CapacityGoal     float64         `json:"capacity_goal" db:"capacity_goal"`           // whole-number percent
	CreatedAt        time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at" db:"updated_at"`
}

// DefaultGoals returns a goals row populated with the system defaults.
func DefaultGoals(clinicID uuid.UUID) *GlobalGoals {
	return &GlobalGoals{
		ID:               uuid.New(),
		ClinicID:         clinicID,
		RevenueGoal:      decimal.NewFromInt(DefaultRevenueGoal),
		ProfitMarginGoal: DefaultProfitMarginGoal,
		CapacityGoal:     DefaultCapacityGoal,
	}
}
