package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	intconfig "bookingcore/internal/config"
	"bookingcore/internal/domain"
	"bookingcore/internal/domain/models"
)

type BookingRepo struct {
	DB *sql.DB
}

func (r BookingRepo) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

const bookingColumns = `id, tenant_id, service_id, staff_id, resource_id, customer_id,
	start_time, duration_minutes, status, idempotency_key, booking_code,
	customer_membership_id, COALESCE(notes,''), created_at, updated_at`

func scanBooking(scan func(dest ...any) error) (models.Booking, error) {
	var b models.Booking
	var staffID, resourceID, membershipID sql.NullInt64
	err := scan(
		&b.ID, &b.TenantID, &b.ServiceID, &staffID, &resourceID, &b.CustomerID,
		&b.StartTime, &b.DurationMinutes, &b.Status, &b.IdempotencyKey, &b.BookingCode,
		&membershipID, &b.Notes, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return models.Booking{}, err
	}
	if staffID.Valid {
		b.StaffID = &staffID.Int64
	}
	if resourceID.Valid {
		b.ResourceID = &resourceID.Int64
	}
	if membershipID.Valid {
		b.CustomerMembershipID = &membershipID.Int64
	}
	return b, nil
}

// InsertTx inserts the booking row inside the caller's transaction.
// A duplicate (tenant_id, idempotency_key) surfaces as the raw driver
// error so the service layer can treat it as a replay.
func (r BookingRepo) InsertTx(ctx context.Context, q Queryer, b models.Booking) (int64, error) {
	res, err := q.ExecContext(ctx, `
		INSERT INTO bookings
		(tenant_id, service_id, staff_id, resource_id, customer_id,
		 start_time, duration_minutes, status, idempotency_key, booking_code,
		 customer_membership_id, notes, created_at, updated_at)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,NOW(),NOW())`,
		b.TenantID, b.ServiceID, nullID(b.StaffID), nullID(b.ResourceID), b.CustomerID,
		b.StartTime, b.DurationMinutes, b.Status, b.IdempotencyKey, b.BookingCode,
		nullID(b.CustomerMembershipID), b.Notes)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func nullID(id *int64) any {
	if id == nil {
		return nil
	}
	return *id
}

func (r BookingRepo) GetByID(ctx context.Context, tenantID, id int64) (models.Booking, error) {
	return r.getByID(ctx, r.db(), tenantID, id)
}

func (r BookingRepo) getByID(ctx context.Context, q Queryer, tenantID, id int64) (models.Booking, error) {
	row := q.QueryRowContext(ctx, `
		SELECT `+bookingColumns+`
		FROM bookings
		WHERE tenant_id=? AND id=? LIMIT 1`, tenantID, id)
	b, err := scanBooking(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Booking{}, domain.NotFoundError{Resource: "booking"}
		}
		return models.Booking{}, MapStoreError(err)
	}
	return b, nil
}

// GetByIdempotencyKey loads the existing row for a replayed request.
func (r BookingRepo) GetByIdempotencyKey(ctx context.Context, q Queryer, tenantID int64, key string) (models.Booking, error) {
	row := q.QueryRowContext(ctx, `
		SELECT `+bookingColumns+`
		FROM bookings
		WHERE tenant_id=? AND idempotency_key=? LIMIT 1`, tenantID, key)
	b, err := scanBooking(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Booking{}, domain.NotFoundError{Resource: "booking"}
		}
		return models.Booking{}, MapStoreError(err)
	}
	return b, nil
}

// ListForWindow loads all pending/confirmed bookings whose interval
// intersects [start, end). Availability counts overlaps in memory from this
// single query instead of issuing one query per slot.
func (r BookingRepo) ListForWindow(ctx context.Context, tenantID int64, start, end time.Time) ([]models.Booking, error) {
	rows, err := r.db().QueryContext(ctx, `
		SELECT `+bookingColumns+`
		FROM bookings
		WHERE tenant_id=?
		  AND status IN ('pending','confirmed')
		  AND start_time < ?
		  AND ? < DATE_ADD(start_time, INTERVAL duration_minutes MINUTE)
		ORDER BY start_time`, tenantID, end, start)
	if err != nil {
		return nil, MapStoreError(err)
	}
	defer rows.Close()

	out := []models.Booking{}
	for rows.Next() {
		b, err := scanBooking(rows.Scan)
		if err != nil {
			return nil, MapStoreError(err)
		}
		out = append(out, b)
	}
	return out, MapStoreError(rows.Err())
}

// UpdateStatusTx applies the transition only while the row still holds the
// status the caller validated against. Zero rows affected means a concurrent
// writer moved the row first (or it is gone); the caller re-reads to tell
// the two apart.
func (r BookingRepo) UpdateStatusTx(ctx context.Context, q Queryer, tenantID, id int64, from, to models.BookingStatus) (bool, error) {
	res, err := q.ExecContext(ctx, `
		UPDATE bookings SET status=?, updated_at=NOW()
		WHERE tenant_id=? AND id=? AND status=?`, to, tenantID, id, from)
	if err != nil {
		return false, MapStoreError(err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// ListDetailedForDay joins display names for the list endpoint and the
// staff day sheet. Date is YYYY-MM-DD in tenant-local time.
func (r BookingRepo) ListDetailedForDay(ctx context.Context, tenantID int64, date string, staffID *int64) ([]models.BookingDetail, error) {
	query := `
		SELECT b.id, b.tenant_id, b.service_id, b.staff_id, b.resource_id, b.customer_id,
		       b.start_time, b.duration_minutes, b.status, b.idempotency_key, b.booking_code,
		       b.customer_membership_id, COALESCE(b.notes,''), b.created_at, b.updated_at,
		       s.name, c.name,
		       COALESCE(st.name,''), COALESCE(res.name,'')
		FROM bookings b
		JOIN services s ON s.id = b.service_id
		JOIN customers c ON c.id = b.customer_id
		LEFT JOIN staff st ON st.id = b.staff_id
		LEFT JOIN resources res ON res.id = b.resource_id
		WHERE b.tenant_id=? AND DATE(b.start_time)=? AND b.status IN ('pending','confirmed')`
	args := []any{tenantID, date}
	if staffID != nil {
		query += ` AND b.staff_id=?`
		args = append(args, *staffID)
	}
	query += ` ORDER BY b.start_time`

	rows, err := r.db().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, MapStoreError(err)
	}
	defer rows.Close()

	out := []models.BookingDetail{}
	for rows.Next() {
		var d models.BookingDetail
		var staffID, resourceID, membershipID sql.NullInt64
		if err := rows.Scan(
			&d.ID, &d.TenantID, &d.ServiceID, &staffID, &resourceID, &d.CustomerID,
			&d.StartTime, &d.DurationMinutes, &d.Status, &d.IdempotencyKey, &d.BookingCode,
			&membershipID, &d.Notes, &d.CreatedAt, &d.UpdatedAt,
			&d.ServiceName, &d.CustomerName, &d.StaffName, &d.ResourceName,
		); err != nil {
			return nil, MapStoreError(err)
		}
		if staffID.Valid {
			d.StaffID = &staffID.Int64
		}
		if resourceID.Valid {
			d.ResourceID = &resourceID.Int64
		}
		if membershipID.Valid {
			d.CustomerMembershipID = &membershipID.Int64
		}
		out = append(out, d)
	}
	return out, MapStoreError(rows.Err())
}
