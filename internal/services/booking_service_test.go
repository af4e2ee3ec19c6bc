package services

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"bookingcore/internal/domain"
	"bookingcore/internal/domain/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
)

func tenantRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "slug", "name", "timezone", "currency", "require_phone", "change_seq", "last_change_at"})
}

func customerRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "tenant_id", "name", "email", "phone", "created_at"})
}

// fixedClock pins "now" before the test booking's local start time.
func fixedClock() func() time.Time {
	return func() time.Time {
		return time.Date(2026, 9, 7, 8, 0, 0, 0, time.Local)
	}
}

func validCreateRequest() CreateBookingRequest {
	resource := int64(5)
	return CreateBookingRequest{
		TenantSlug:     "acme",
		ServiceID:      2,
		ResourceID:     &resource,
		Date:           "2026-09-07",
		Time:           "10:00",
		CustomerName:   "Jamie Doe",
		CustomerEmail:  "jamie@example.com",
		CustomerPhone:  "0800",
		IdempotencyKey: "key-1",
	}
}

func expectTenantAndService(mock sqlmock.Sqlmock) {
	mock.ExpectQuery("FROM tenants").
		WillReturnRows(tenantRows().AddRow(1, "acme", "Acme", "UTC", "USD", false, 0, nil))
	mock.ExpectQuery("FROM services").
		WillReturnRows(serviceRows().
			AddRow(2, 1, "Court Rental", 60, 0, 1, 0, false, true, "auto", false, true))
}

func TestCreateBookingHappyPath(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	start := time.Date(2026, 9, 7, 10, 0, 0, 0, time.UTC)
	now := time.Now()

	expectTenantAndService(mock)
	mock.ExpectQuery(`idempotency_key=\?`).WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery("FROM blackouts").WillReturnRows(blackoutRows())
	mock.ExpectQuery(`resource_id=\?`).WillReturnRows(bookingRows())

	mock.ExpectBegin()
	mock.ExpectQuery("FROM customers").WillReturnError(sql.ErrNoRows)
	mock.ExpectExec("INSERT INTO customers").WillReturnResult(sqlmock.NewResult(7, 1))
	mock.ExpectQuery(`FOR UPDATE`).WillReturnRows(bookingRows())
	mock.ExpectExec("INSERT INTO bookings").WillReturnResult(sqlmock.NewResult(42, 1))
	mock.ExpectCommit()

	mock.ExpectExec("UPDATE tenants").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`WHERE tenant_id=\? AND id=\?`).
		WillReturnRows(bookingRows().
			AddRow(42, 1, 2, nil, 5, 7, start, 60, "confirmed", "key-1", "BK-TEST1", nil, "", now, now))

	svc := NewBookingService(db, "req-1")
	svc.Now = fixedClock()

	res, err := svc.Create(context.Background(), validCreateRequest())
	if err != nil {
		t.Fatalf("create error: %v", err)
	}
	if res.Replayed {
		t.Fatal("fresh booking must not be a replay")
	}
	if res.Booking.ID != 42 || res.Booking.Status != models.BookingStatusConfirmed {
		t.Fatalf("unexpected booking: %+v", res.Booking)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreateBookingReplaysByIdempotencyKey(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	start := time.Date(2026, 9, 7, 10, 0, 0, 0, time.UTC)
	now := time.Now()

	expectTenantAndService(mock)
	mock.ExpectQuery(`idempotency_key=\?`).
		WillReturnRows(bookingRows().
			AddRow(42, 1, 2, nil, 5, 7, start, 60, "confirmed", "key-1", "BK-TEST1", nil, "", now, now))

	svc := NewBookingService(db, "req-1")
	svc.Now = fixedClock()

	res, err := svc.Create(context.Background(), validCreateRequest())
	if err != nil {
		t.Fatalf("create error: %v", err)
	}
	if !res.Replayed || res.Booking.ID != 42 {
		t.Fatalf("expected replayed booking 42, got %+v", res)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreateBookingRejectsPastStart(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	expectTenantAndService(mock)

	svc := NewBookingService(db, "req-1")
	svc.Now = func() time.Time {
		return time.Date(2026, 9, 8, 8, 0, 0, 0, time.Local)
	}

	_, err = svc.Create(context.Background(), validCreateRequest())
	if !domain.IsValidation(err) {
		t.Fatalf("expected validation error for past start, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreateBookingAdvisoryConflict(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	start := time.Date(2026, 9, 7, 10, 0, 0, 0, time.UTC)
	now := time.Now()

	expectTenantAndService(mock)
	mock.ExpectQuery(`idempotency_key=\?`).WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery("FROM blackouts").WillReturnRows(blackoutRows())
	mock.ExpectQuery(`resource_id=\?`).
		WillReturnRows(bookingRows().
			AddRow(9, 1, 2, nil, 5, 4, start.Add(-30*time.Minute), 60, "confirmed", "k0", "BK-0", nil, "", now, now))

	svc := NewBookingService(db, "req-1")
	svc.Now = fixedClock()

	_, err = svc.Create(context.Background(), validCreateRequest())
	if !domain.IsConflict(err) {
		t.Fatalf("expected conflict error, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

// A duplicate key on insert means another request with the same key won the
// race; the caller gets that row back as a replay, not an error.
func TestCreateBookingDuplicateInsertReplays(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	start := time.Date(2026, 9, 7, 10, 0, 0, 0, time.UTC)
	now := time.Now()

	expectTenantAndService(mock)
	mock.ExpectQuery(`idempotency_key=\?`).WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery("FROM blackouts").WillReturnRows(blackoutRows())
	mock.ExpectQuery(`resource_id=\?`).WillReturnRows(bookingRows())

	mock.ExpectBegin()
	mock.ExpectQuery("FROM customers").
		WillReturnRows(customerRows().AddRow(7, 1, "Jamie Doe", "jamie@example.com", "0800", now))
	mock.ExpectQuery(`FOR UPDATE`).WillReturnRows(bookingRows())
	mock.ExpectExec("INSERT INTO bookings").
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "duplicate entry"})
	mock.ExpectRollback()

	mock.ExpectQuery(`idempotency_key=\?`).
		WillReturnRows(bookingRows().
			AddRow(42, 1, 2, nil, 5, 7, start, 60, "confirmed", "key-1", "BK-TEST1", nil, "", now, now))

	svc := NewBookingService(db, "req-1")
	svc.Now = fixedClock()

	res, err := svc.Create(context.Background(), validCreateRequest())
	if err != nil {
		t.Fatalf("create error: %v", err)
	}
	if !res.Replayed || res.Booking.ID != 42 {
		t.Fatalf("expected replayed booking 42, got %+v", res)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUpdateStatusRejectsIllegalTransition(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(`WHERE tenant_id=\? AND id=\?`).
		WillReturnRows(bookingRows().
			AddRow(42, 1, 2, nil, 5, 7, now, 60, "cancelled", "key-1", "BK-TEST1", nil, "", now, now))

	svc := NewBookingService(db, "req-1")
	_, err = svc.UpdateStatus(context.Background(), 1, 42, models.BookingStatusConfirmed)
	if !domain.IsConflict(err) {
		t.Fatalf("expected conflict for cancelled->confirmed, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUpdateStatusSameStateIsNoOp(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(`WHERE tenant_id=\? AND id=\?`).
		WillReturnRows(bookingRows().
			AddRow(42, 1, 2, nil, 5, 7, now, 60, "confirmed", "key-1", "BK-TEST1", nil, "", now, now))

	svc := NewBookingService(db, "req-1")
	b, err := svc.UpdateStatus(context.Background(), 1, 42, models.BookingStatusConfirmed)
	if err != nil {
		t.Fatalf("update error: %v", err)
	}
	if b.Status != models.BookingStatusConfirmed {
		t.Fatalf("unexpected booking: %+v", b)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

// The guarded UPDATE matches zero rows when a concurrent writer changed the
// status between the read and the write; a cancel that lands first must not
// be overwritten by a confirm.
func TestUpdateStatusLosesRaceToConcurrentCancel(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(`WHERE tenant_id=\? AND id=\?`).
		WillReturnRows(bookingRows().
			AddRow(42, 1, 2, nil, 5, 7, now, 60, "pending", "key-1", "BK-TEST1", nil, "", now, now))
	mock.ExpectExec("UPDATE bookings").
		WithArgs("confirmed", int64(1), int64(42), "pending").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`WHERE tenant_id=\? AND id=\?`).
		WillReturnRows(bookingRows().
			AddRow(42, 1, 2, nil, 5, 7, now, 60, "cancelled", "key-1", "BK-TEST1", nil, "", now, now))

	svc := NewBookingService(db, "req-1")
	_, err = svc.UpdateStatus(context.Background(), 1, 42, models.BookingStatusConfirmed)
	if !domain.IsConflict(err) {
		t.Fatalf("expected conflict after losing the race, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

// When the concurrent writer applied the very same transition, the retry is
// an idempotent success, not a conflict.
func TestUpdateStatusRaceToSameStateIsNoOp(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(`WHERE tenant_id=\? AND id=\?`).
		WillReturnRows(bookingRows().
			AddRow(42, 1, 2, nil, 5, 7, now, 60, "pending", "key-1", "BK-TEST1", nil, "", now, now))
	mock.ExpectExec("UPDATE bookings").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`WHERE tenant_id=\? AND id=\?`).
		WillReturnRows(bookingRows().
			AddRow(42, 1, 2, nil, 5, 7, now, 60, "cancelled", "key-1", "BK-TEST1", nil, "", now, now))

	svc := NewBookingService(db, "req-1")
	b, err := svc.UpdateStatus(context.Background(), 1, 42, models.BookingStatusCancelled)
	if err != nil {
		t.Fatalf("same-state race must succeed: %v", err)
	}
	if b.Status != models.BookingStatusCancelled {
		t.Fatalf("expected cancelled, got %s", b.Status)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUpdateStatusConfirmsPending(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(`WHERE tenant_id=\? AND id=\?`).
		WillReturnRows(bookingRows().
			AddRow(42, 1, 2, nil, 5, 7, now, 60, "pending", "key-1", "BK-TEST1", nil, "", now, now))
	mock.ExpectExec("UPDATE bookings").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE tenants").WillReturnResult(sqlmock.NewResult(0, 1))

	svc := NewBookingService(db, "req-1")
	svc.Now = fixedClock()
	b, err := svc.UpdateStatus(context.Background(), 1, 42, models.BookingStatusConfirmed)
	if err != nil {
		t.Fatalf("update error: %v", err)
	}
	if b.Status != models.BookingStatusConfirmed {
		t.Fatalf("expected confirmed, got %s", b.Status)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
