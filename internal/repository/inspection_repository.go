package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/property-notifier/internal/domain"
)

// InspectionRepository reads inspections together with the people they involve.
type InspectionRepository interface {
	// ListOverdue returns SCHEDULED inspections whose scheduled date is before
	// now, joined with technician, property manager and unit.
	ListOverdue(ctx context.Context, now time.Time) ([]domain.Inspection, error)
}

type inspectionRepository struct {
	pool *pgxpool.Pool
}

// NewInspectionRepository instantiates repository.
func NewInspectionRepository(pool *pgxpool.Pool) InspectionRepository {
	return &inspectionRepository{pool: pool}
}

func (r *inspectionRepository) ListOverdue(ctx context.Context, now time.Time) ([]domain.Inspection, error) {
	const query = `
        SELECT i.id, i.title, i.status, i.scheduled_date,
               t.id, t.name, t.email,
               p.id, p.name, p.address,
               m.id, m.name, m.email,
               u.id, u.unit_number
        FROM inspections i
        JOIN properties p ON p.id = i.property_id
        LEFT JOIN users t ON t.id = i.assigned_to_id
        LEFT JOIN users m ON m.id = p.manager_id
        LEFT JOIN units u ON u.id = i.unit_id
        WHERE i.status=$1 AND i.scheduled_date < $2
        ORDER BY i.scheduled_date`

	rows, err := r.pool.Query(ctx, query, domain.InspectionStatusScheduled, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var inspections []domain.Inspection
	for rows.Next() {
		inspection, err := scanOverdueRow(rows)
		if err != nil {
			return nil, err
		}
		inspections = append(inspections, inspection)
	}
	return inspections, rows.Err()
}

func scanOverdueRow(rows pgx.Rows) (domain.Inspection, error) {
	var (
		inspection                     domain.Inspection
		techID, techName, techEmail    *string
		managerID, managerName, mEmail *string
		unitID, unitNumber             *string
	)
	if err := rows.Scan(
		&inspection.ID,
		&inspection.Title,
		&inspection.Status,
		&inspection.ScheduledDate,
		&techID,
		&techName,
		&techEmail,
		&inspection.Property.ID,
		&inspection.Property.Name,
		&inspection.Property.Address,
		&managerID,
		&managerName,
		&mEmail,
		&unitID,
		&unitNumber,
	); err != nil {
		return domain.Inspection{}, err
	}

	inspection.AssignedTo = userSummary(techID, techName, techEmail)
	inspection.Property.Manager = userSummary(managerID, managerName, mEmail)
	if unitID != nil {
		inspection.Unit = &domain.UnitSummary{ID: *unitID, UnitNumber: deref(unitNumber)}
	}
	return inspection, nil
}

func userSummary(id, name, email *string) *domain.UserSummary {
	if id == nil {
		return nil
	}
	return &domain.UserSummary{ID: *id, Name: deref(name), Email: deref(email)}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
