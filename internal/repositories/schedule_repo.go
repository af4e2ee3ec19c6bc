package repositories

import (
	"context"
	"database/sql"

	intconfig "bookingcore/internal/config"
	"bookingcore/internal/domain/models"
)

type ScheduleRepo struct {
	DB *sql.DB
}

func (r ScheduleRepo) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

func (r ScheduleRepo) WeeklyBlocks(ctx context.Context, tenantID, staffID int64, weekday int) ([]models.StaffScheduleBlock, error) {
	rows, err := r.db().QueryContext(ctx, `
		SELECT id, tenant_id, staff_id, weekday, start_min, end_min
		FROM staff_schedules
		WHERE tenant_id=? AND staff_id=? AND weekday=?
		ORDER BY start_min`, tenantID, staffID, weekday)
	if err != nil {
		return nil, MapStoreError(err)
	}
	defer rows.Close()

	out := []models.StaffScheduleBlock{}
	for rows.Next() {
		var b models.StaffScheduleBlock
		if err := rows.Scan(&b.ID, &b.TenantID, &b.StaffID, &b.Weekday, &b.StartMin, &b.EndMin); err != nil {
			return nil, MapStoreError(err)
		}
		out = append(out, b)
	}
	return out, MapStoreError(rows.Err())
}

func (r ScheduleRepo) OverridesForDate(ctx context.Context, tenantID, staffID int64, date string) ([]models.StaffScheduleOverride, error) {
	rows, err := r.db().QueryContext(ctx, `
		SELECT id, tenant_id, staff_id, DATE_FORMAT(override_date, '%Y-%m-%d'), override_type, start_min, end_min
		FROM staff_schedule_overrides
		WHERE tenant_id=? AND staff_id=? AND override_date=?
		ORDER BY id`, tenantID, staffID, date)
	if err != nil {
		return nil, MapStoreError(err)
	}
	defer rows.Close()

	out := []models.StaffScheduleOverride{}
	for rows.Next() {
		var o models.StaffScheduleOverride
		if err := rows.Scan(&o.ID, &o.TenantID, &o.StaffID, &o.Date, &o.Type, &o.StartMin, &o.EndMin); err != nil {
			return nil, MapStoreError(err)
		}
		out = append(out, o)
	}
	return out, MapStoreError(rows.Err())
}
