package repositories

import (
	"context"
	"database/sql"
	"errors"

	intconfig "bookingcore/internal/config"
	"bookingcore/internal/domain"
	"bookingcore/internal/domain/models"
)

type ServiceRepo struct {
	DB *sql.DB
}

func (r ServiceRepo) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

func (r ServiceRepo) GetByID(ctx context.Context, tenantID, id int64) (models.Service, error) {
	var s models.Service
	err := r.db().QueryRowContext(ctx, `
		SELECT id, tenant_id, name, duration_minutes, slot_interval_minutes,
		       max_parallel_bookings, max_consecutive_slots,
		       requires_staff, requires_resource, availability_basis,
		       requires_confirmation, is_active
		FROM services
		WHERE tenant_id=? AND id=? LIMIT 1`, tenantID, id).Scan(
		&s.ID, &s.TenantID, &s.Name, &s.DurationMinutes, &s.SlotIntervalMinutes,
		&s.MaxParallelBookings, &s.MaxConsecutiveSlots,
		&s.RequiresStaff, &s.RequiresResource, &s.StoredBasis,
		&s.RequiresConfirmation, &s.IsActive,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Service{}, domain.NotFoundError{Resource: "service"}
		}
		return models.Service{}, MapStoreError(err)
	}
	return s, nil
}
