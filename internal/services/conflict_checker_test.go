package services

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func bookingRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "tenant_id", "service_id", "staff_id", "resource_id", "customer_id",
		"start_time", "duration_minutes", "status", "idempotency_key", "booking_code",
		"customer_membership_id", "notes", "created_at", "updated_at",
	})
}

func TestConflictCheckNoDimensionsNoQuery(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	res, err := ConflictChecker{}.Check(context.Background(), db, ConflictProbe{TenantID: 1}, false)
	if err != nil {
		t.Fatalf("check error: %v", err)
	}
	if res.Conflict {
		t.Fatal("expected no conflict without staff or resource")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unexpected query issued: %v", err)
	}
}

func TestConflictCheckStaffOverlap(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	start := time.Date(2026, 9, 7, 10, 0, 0, 0, time.UTC)
	now := time.Now()
	mock.ExpectQuery(`staff_id=\?`).
		WithArgs(int64(1), start.Add(60*time.Minute), start, int64(3)).
		WillReturnRows(bookingRows().
			AddRow(9, 1, 2, 3, nil, 4, start.Add(-30*time.Minute), 60, "confirmed", "k1", "BK-1", nil, "", now, now))

	staff := int64(3)
	res, err := ConflictChecker{}.Check(context.Background(), db, ConflictProbe{
		TenantID:        1,
		StaffID:         &staff,
		Start:           start,
		DurationMinutes: 60,
	}, false)
	if err != nil {
		t.Fatalf("check error: %v", err)
	}
	if !res.Conflict || len(res.Rows) != 1 {
		t.Fatalf("expected one conflicting row, got %+v", res)
	}
	if res.Rows[0].StaffID == nil || *res.Rows[0].StaffID != staff {
		t.Fatalf("expected staff id %d on conflicting row, got %+v", staff, res.Rows[0])
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestConflictCheckBothDimensionsLocked(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	start := time.Date(2026, 9, 7, 10, 0, 0, 0, time.UTC)
	// staff OR resource branch, with the row lock suffix
	mock.ExpectQuery(`\(staff_id=\? OR resource_id=\?\)(.|\n)*FOR UPDATE`).
		WithArgs(int64(1), start.Add(30*time.Minute), start, int64(3), int64(5)).
		WillReturnRows(bookingRows())

	staff, resource := int64(3), int64(5)
	res, err := ConflictChecker{}.Check(context.Background(), db, ConflictProbe{
		TenantID:        1,
		StaffID:         &staff,
		ResourceID:      &resource,
		Start:           start,
		DurationMinutes: 30,
	}, true)
	if err != nil {
		t.Fatalf("check error: %v", err)
	}
	if res.Conflict {
		t.Fatalf("expected no conflict, got %+v", res)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestConflictCheckExcludesOwnBooking(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	start := time.Date(2026, 9, 7, 10, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`resource_id=\?(.|\n)*id<>\?`).
		WithArgs(int64(1), start.Add(60*time.Minute), start, int64(5), int64(42)).
		WillReturnRows(bookingRows())

	resource := int64(5)
	res, err := ConflictChecker{}.Check(context.Background(), db, ConflictProbe{
		TenantID:         1,
		ResourceID:       &resource,
		Start:            start,
		DurationMinutes:  60,
		ExcludeBookingID: 42,
	}, false)
	if err != nil {
		t.Fatalf("check error: %v", err)
	}
	if res.Conflict {
		t.Fatalf("expected no conflict, got %+v", res)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
