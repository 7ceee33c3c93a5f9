package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MonthlyAudit is the composite record of a clinic's performance for one
// calendar month. Month is always normalized to the first day of the month
// (UTC); (clinic_id, month) is unique. The three child collections are
// replaced wholesale on every save.
type MonthlyAudit struct {
	ID                uuid.UUID       `json:"id" db:"id"`
	ClinicID          uuid.UUID       `json:"clinic_id" db:"clinic_id"`
	Month             time.Time       `json:"month" db:"month"`
	Revenue           decimal.Decimal `json:"revenue" db:"revenue"`
	OperatingExpenses decimal.Decimal `json:"operating_expenses" db:"operating_expenses"`
	COGS              decimal.Decimal `json:"cogs" db:"cogs"`
	MarketingSpend    decimal.Decimal `json:"marketing_spend" db:"marketing_spend"`

	WebsiteVisits         int     `json:"website_visits" db:"website_visits"`
	WebsiteConversionRate float64 `json:"website_conversion_rate" db:"website_conversion_rate"` // manually entered whole-number percent
	NewClientVisits       int     `json:"new_client_visits" db:"new_client_visits"`
	TreatmentConversions  int     `json:"treatment_conversions" db:"treatment_conversions"`
	TotalClients          int     `json:"total_clients" db:"total_clients"`
	TotalAppointments     int     `json:"total_appointments" db:"total_appointments"`

	CreatedBy uuid.UUID `json:"created_by" db:"created_by"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`

	PayrollItems       []PayrollItem       `json:"payroll_items" db:"-"`
	AdditionalExpenses []AdditionalExpense `json:"additional_expenses" db:"-"`
	ServiceRecords     []ServiceRecord     `json:"service_records" db:"-"`
}

type PayrollItem struct {
	ID      uuid.UUID       `json:"id" db:"id"`
	AuditID uuid.UUID       `json:"audit_id" db:"audit_id"`
	Name    string          `json:"name" db:"name"`
	Amount  decimal.Decimal `json:"amount" db:"amount"`
}

type AdditionalExpense struct {
	ID      uuid.UUID       `json:"id" db:"id"`
	AuditID uuid.UUID       `json:"audit_id" db:"audit_id"`
	Name    string          `json:"name" db:"name"`
	Amount  decimal.Decimal `json:"amount" db:"amount"`
	Notes   *string         `json:"notes" db:"notes"`
}

type ServiceRecord struct {
	ID                uuid.UUID       `json:"id" db:"id"`
	AuditID           uuid.UUID       `json:"audit_id" db:"audit_id"`
	Name              string          `json:"name" db:"name"`
	ProviderHours     float64         `json:"provider_hours" db:"provider_hours"`
	BookedHours       float64         `json:"booked_hours" db:"booked_hours"`
	Revenue           decimal.Decimal `json:"revenue" db:"revenue"`
	Commission        decimal.Decimal `json:"commission" db:"commission"`
	AllocatedExpenses decimal.Decimal `json:"allocated_expenses" db:"allocated_expenses"`
}

// NormalizeMonth truncates t to the first day of its calendar month in UTC.
func NormalizeMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}
