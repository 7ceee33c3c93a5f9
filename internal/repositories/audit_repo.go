package repositories

import (
	"context"
	"time"

	"clinicpulse/internal/models"

	"github.com/google/uuid"
)

type AuditRepository interface {
	List(ctx context.Context, clinicID uuid.UUID) ([]*models.MonthlyAudit, error)
	Get(ctx context.Context, clinicID uuid.UUID, month time.Time) (*models.MonthlyAudit, error)
	Save(ctx context.Context, audit *models.MonthlyAudit) (uuid.UUID, error)
	Delete(ctx context.Context, clinicID uuid.UUID, month time.Time) (int64, error)
}

type auditRepo struct {
	db Database
}

func NewAuditRepo(db Database) AuditRepository {
	return &auditRepo{db: db}
}

const auditColumns = `id, clinic_id, month, revenue, operating_expenses, cogs, marketing_spend,
		website_visits, website_conversion_rate, new_client_visits, treatment_conversions,
		total_clients, total_appointments, created_by, created_at, updated_at`

func scanAudit(row interface{ Scan(dest ...any) error }) (*models.MonthlyAudit, error) {
	audit := &models.MonthlyAudit{}
	err := row.Scan(
		&audit.ID, &audit.ClinicID, &audit.Month, &audit.Revenue, &audit.OperatingExpenses,
		&audit.COGS, &audit.MarketingSpend, &audit.WebsiteVisits, &audit.WebsiteConversionRate,
		&audit.NewClientVisits, &audit.TreatmentConversions, &audit.TotalClients,
		&audit.TotalAppointments, &audit.CreatedBy, &audit.CreatedAt, &audit.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return audit, nil
}

func (r *auditRepo) List(ctx context.Context, clinicID uuid.UUID) ([]*models.MonthlyAudit, error) {
	query := `
		SELECT ` + auditColumns + `
		FROM monthly_audits
		WHERE clinic_id = $1
		ORDER BY month DESC
	`
	rows, err := r.db.Query(ctx, query, clinicID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var audits []*models.MonthlyAudit
	for rows.Next() {
		audit, err := scanAudit(rows)
		if err != nil {
			return nil, err
		}
		audits = append(audits, audit)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := r.loadChildren(ctx, audits); err != nil {
		return nil, err
	}
	return audits, nil
}

func (r *auditRepo) Get(ctx context.Context, clinicID uuid.UUID, month time.Time) (*models.MonthlyAudit, error) {
	query := `
		SELECT ` + auditColumns + `
		FROM monthly_audits
		WHERE clinic_id = $1 AND month = $2
	`
	audit, err := scanAudit(r.db.QueryRow(ctx, query, clinicID, models.NormalizeMonth(month)))
	if err != nil {
		return nil, err
	}
	if err := r.loadChildren(ctx, []*models.MonthlyAudit{audit}); err != nil {
		return nil, err
	}
	return audit, nil
}

// Save upserts the audit row keyed on (clinic_id, month), then replaces all
// three child collections, inside one transaction. Any failure rolls back and
// leaves the previous state untouched. Concurrent saves for the same month
// resolve last-commit-wins through the unique key.
func (r *auditRepo) Save(ctx context.Context, audit *models.MonthlyAudit) (uuid.UUID, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return uuid.Nil, err
	}
	defer tx.Rollback(ctx)

	upsert := `
		INSERT INTO monthly_audits (id, clinic_id, month, revenue, operating_expenses, cogs, marketing_spend,
			website_visits, website_conversion_rate, new_client_visits, treatment_conversions,
			total_clients, total_appointments, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, NOW(), NOW())
		ON CONFLICT (clinic_id, month) DO UPDATE SET
			revenue = EXCLUDED.revenue,
			operating_expenses = EXCLUDED.operating_expenses,
			cogs = EXCLUDED.cogs,
			marketing_spend = EXCLUDED.marketing_spend,
			website_visits = EXCLUDED.website_visits,
			website_conversion_rate = EXCLUDED.website_conversion_rate,
			new_client_visits = EXCLUDED.new_client_visits,
			treatment_conversions = EXCLUDED.treatment_conversions,
			total_clients = EXCLUDED.total_clients,
			total_appointments = EXCLUDED.total_appointments,
			created_by = EXCLUDED.created_by,
			updated_at = NOW()
		RETURNING id
	`
	var auditID uuid.UUID
	err = tx.QueryRow(ctx, upsert,
		audit.ID, audit.ClinicID, models.NormalizeMonth(audit.Month),
		audit.Revenue, audit.OperatingExpenses, audit.COGS, audit.MarketingSpend,
		audit.WebsiteVisits, audit.WebsiteConversionRate, audit.NewClientVisits,
		audit.TreatmentConversions, audit.TotalClients, audit.TotalAppointments,
		audit.CreatedBy).Scan(&auditID)
	if err != nil {
		return uuid.Nil, err
	}

	// Full replace: children are never merged.
	for _, table := range []string{"payroll_items", "additional_expenses", "service_records"} {
		if _, err := tx.Exec(ctx, `DELETE FROM `+table+` WHERE audit_id = $1`, auditID); err != nil {
			return uuid.Nil, err
		}
	}

	for _, item := range audit.PayrollItems {
		_, err := tx.Exec(ctx, `
		INSERT INTO payroll_items (id, audit_id, name, amount)
		VALUES ($1, $2, $3, $4)
	`, item.ID, auditID, item.Name, item.Amount)
		if err != nil {
			return uuid.Nil, err
		}
	}
	for _, exp := range audit.AdditionalExpenses {
		_, err := tx.Exec(ctx, `
		INSERT INTO additional_expenses (id, audit_id, name, amount, notes)
		VALUES ($1, $2, $3, $4, $5)
	`, exp.ID, auditID, exp.Name, exp.Amount, exp.Notes)
		if err != nil {
			return uuid.Nil, err
		}
	}
	for _, svc := range audit.ServiceRecords {
		_, err := tx.Exec(ctx, `
		INSERT INTO service_records (id, audit_id, name, provider_hours, booked_hours, revenue, commission, allocated_expenses)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, svc.ID, auditID, svc.Name, svc.ProviderHours, svc.BookedHours, svc.Revenue, svc.Commission, svc.AllocatedExpenses)
		if err != nil {
			return uuid.Nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return uuid.Nil, err
	}
	return auditID, nil
}

func (r *auditRepo) Delete(ctx context.Context, clinicID uuid.UUID, month time.Time) (int64, error) {
	// Children cascade through the audit_id foreign keys.
	query := `DELETE FROM monthly_audits WHERE clinic_id = $1 AND month = $2`
	tag, err := r.db.Exec(ctx, query, clinicID, models.NormalizeMonth(month))
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *auditRepo) loadChildren(ctx context.Context, audits []*models.MonthlyAudit) error {
	if len(audits) == 0 {
		return nil
	}

	ids := make([]uuid.UUID, 0, len(audits))
	byID := make(map[uuid.UUID]*models.MonthlyAudit, len(audits))
	for _, audit := range audits {
		audit.PayrollItems = []models.PayrollItem{}
		audit.AdditionalExpenses = []models.AdditionalExpense{}
		audit.ServiceRecords = []models.ServiceRecord{}
		ids = append(ids, audit.ID)
		byID[audit.ID] = audit
	}

	rows, err := r.db.Query(ctx, `
		SELECT id, audit_id, name, amount
		FROM payroll_items
		WHERE audit_id = ANY($1)
		ORDER BY name
	`, ids)
	if err != nil {
		return err
	}
	for rows.Next() {
		var item models.PayrollItem
		if err := rows.Scan(&item.ID, &item.AuditID, &item.Name, &item.Amount); err != nil {
			rows.Close()
			return err
		}
		if audit, ok := byID[item.AuditID]; ok {
			audit.PayrollItems = append(audit.PayrollItems, item)
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	rows, err = r.db.Query(ctx, `
		SELECT id, audit_id, name, amount, notes
		FROM additional_expenses
		WHERE audit_id = ANY($1)
		ORDER BY name
	`, ids)
	if err != nil {
		return err
	}
	for rows.Next() {
		var exp models.AdditionalExpense
		if err := rows.Scan(&exp.ID, &exp.AuditID, &exp.Name, &exp.Amount, &exp.Notes); err != nil {
			rows.Close()
			return err
		}
		if audit, ok := byID[exp.AuditID]; ok {
			audit.AdditionalExpenses = append(audit.AdditionalExpenses, exp)
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	rows, err = r.db.Query(ctx, `
		SELECT id, audit_id, name, provider_hours, booked_hours, revenue, commission, allocated_expenses
		FROM service_records
		WHERE audit_id = ANY($1)
		ORDER BY name
	`, ids)
	if err != nil {
		return err
	}
	for rows.Next() {
		var svc models.ServiceRecord
		if err := rows.Scan(&svc.ID, &svc.AuditID, &svc.Name, &svc.ProviderHours, &svc.BookedHours,
			&svc.Revenue, &svc.Commission, &svc.AllocatedExpenses); err != nil {
			rows.Close()
			return err
		}
		if audit, ok := byID[svc.AuditID]; ok {
			audit.ServiceRecords = append(audit.ServiceRecords, svc)
		}
	}
	rows.Close()
	return rows.Err()
}
