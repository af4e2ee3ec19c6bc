package repositories

import (
	"context"
	"database/sql"
	"time"

	intconfig "bookingcore/internal/config"
	"bookingcore/internal/domain/models"
)

type BlackoutRepo struct {
	DB *sql.DB
}

func (r BlackoutRepo) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

// BlackoutScope narrows which blackout rows apply to a query. A nil staff
// or resource means only tenant-wide rows for that dimension count; a set
// id also matches rows scoped to exactly that id.
type BlackoutScope struct {
	ServiceID  int64
	StaffID    *int64
	ResourceID *int64
}

// Overlapping returns active blackout windows intersecting [start, end).
func (r BlackoutRepo) Overlapping(ctx context.Context, tenantID int64, start, end time.Time, scope BlackoutScope) ([]models.Blackout, error) {
	query := `
		SELECT id, tenant_id, starts_at, ends_at, staff_id, resource_id, service_id, reason
		FROM blackouts
		WHERE tenant_id=? AND starts_at < ? AND ? < ends_at
		  AND (service_id IS NULL OR service_id=?)`
	args := []any{tenantID, end, start, scope.ServiceID}

	if scope.StaffID != nil {
		query += ` AND (staff_id IS NULL OR staff_id=?)`
		args = append(args, *scope.StaffID)
	} else {
		query += ` AND staff_id IS NULL`
	}
	if scope.ResourceID != nil {
		query += ` AND (resource_id IS NULL OR resource_id=?)`
		args = append(args, *scope.ResourceID)
	} else {
		query += ` AND resource_id IS NULL`
	}
	query += ` ORDER BY starts_at`

	rows, err := r.db().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, MapStoreError(err)
	}
	defer rows.Close()

	out := []models.Blackout{}
	for rows.Next() {
		var b models.Blackout
		var staffID, resourceID, serviceID sql.NullInt64
		if err := rows.Scan(&b.ID, &b.TenantID, &b.StartsAt, &b.EndsAt, &staffID, &resourceID, &serviceID, &b.Reason); err != nil {
			return nil, MapStoreError(err)
		}
		if staffID.Valid {
			b.StaffID = &staffID.Int64
		}
		if resourceID.Valid {
			b.ResourceID = &resourceID.Int64
		}
		if serviceID.Valid {
			b.ServiceID = &serviceID.Int64
		}
		out = append(out, b)
	}
	return out, MapStoreError(rows.Err())
}
