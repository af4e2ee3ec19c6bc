package services

import (
	"context"
	"time"

	"bookingcore/internal/domain/models"
	"bookingcore/internal/repositories"
)

// ConflictProbe describes a proposed booking interval. Only the staff and
// resource dimensions actually supplied are checked.
type ConflictProbe struct {
	TenantID         int64
	StaffID          *int64
	ResourceID       *int64
	Start            time.Time
	DurationMinutes  int
	ExcludeBookingID int64
}

type ConflictResult struct {
	Conflict bool             `json:"conflict"`
	Rows     []models.Booking `json:"rows"`
}

// ConflictChecker finds non-cancelled bookings overlapping a proposed
// interval on the same staff or resource.
type ConflictChecker struct{}

// Check runs the overlap query through q. With a plain *sql.DB it is an
// advisory pre-check; inside a transaction with lock=true it takes row
// locks on the competing rows, making check-then-insert atomic.
//
// Interval overlap is half-open: A.start < B.end AND B.start < A.end,
// so touching edges never conflict.
func (c ConflictChecker) Check(ctx context.Context, q repositories.Queryer, p ConflictProbe, lock bool) (ConflictResult, error) {
	if p.StaffID == nil && p.ResourceID == nil {
		return ConflictResult{Rows: []models.Booking{}}, nil
	}

	end := p.Start.Add(time.Duration(p.DurationMinutes) * time.Minute)
	query := `
		SELECT id, tenant_id, service_id, staff_id, resource_id, customer_id,
		       start_time, duration_minutes, status, idempotency_key, booking_code,
		       customer_membership_id, COALESCE(notes,''), created_at, updated_at
		FROM bookings
		WHERE tenant_id=?
		  AND status IN ('pending','confirmed')
		  AND start_time < ?
		  AND ? < DATE_ADD(start_time, INTERVAL duration_minutes MINUTE)`
	args := []any{p.TenantID, end, p.Start}

	switch {
	case p.StaffID != nil && p.ResourceID != nil:
		query += ` AND (staff_id=? OR resource_id=?)`
		args = append(args, *p.StaffID, *p.ResourceID)
	case p.StaffID != nil:
		query += ` AND staff_id=?`
		args = append(args, *p.StaffID)
	default:
		query += ` AND resource_id=?`
		args = append(args, *p.ResourceID)
	}

	if p.ExcludeBookingID > 0 {
		query += ` AND id<>?`
		args = append(args, p.ExcludeBookingID)
	}
	query += ` ORDER BY start_time`
	if lock {
		query += ` FOR UPDATE`
	}

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return ConflictResult{}, repositories.MapStoreError(err)
	}
	defer rows.Close()

	res := ConflictResult{Rows: []models.Booking{}}
	for rows.Next() {
		var b models.Booking
		var staffID, resourceID, membershipID nullInt64
		if err := rows.Scan(
			&b.ID, &b.TenantID, &b.ServiceID, &staffID, &resourceID, &b.CustomerID,
			&b.StartTime, &b.DurationMinutes, &b.Status, &b.IdempotencyKey, &b.BookingCode,
			&membershipID, &b.Notes, &b.CreatedAt, &b.UpdatedAt,
		); err != nil {
			return ConflictResult{}, repositories.MapStoreError(err)
		}
		b.StaffID = staffID.ptr()
		b.ResourceID = resourceID.ptr()
		b.CustomerMembershipID = membershipID.ptr()
		res.Rows = append(res.Rows, b)
	}
	if err := rows.Err(); err != nil {
		return ConflictResult{}, repositories.MapStoreError(err)
	}
	res.Conflict = len(res.Rows) > 0
	return res, nil
}
