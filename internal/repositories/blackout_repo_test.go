package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func blackoutTestRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "tenant_id", "starts_at", "ends_at", "staff_id", "resource_id", "service_id", "reason"})
}

// With no staff or resource supplied, only tenant-wide rows may match:
// the query pins staff_id and resource_id to NULL.
func TestBlackoutOverlappingTenantWideOnly(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	start := time.Date(2026, 9, 7, 9, 0, 0, 0, time.UTC)
	end := start.Add(8 * time.Hour)
	mock.ExpectQuery(`staff_id IS NULL(.|\n)*resource_id IS NULL`).
		WithArgs(int64(1), end, start, int64(2)).
		WillReturnRows(blackoutTestRows().
			AddRow(1, 1, start, start.Add(time.Hour), nil, nil, nil, "maintenance"))

	out, err := (BlackoutRepo{DB: db}).Overlapping(context.Background(), 1, start, end, BlackoutScope{ServiceID: 2})
	if err != nil {
		t.Fatalf("overlapping error: %v", err)
	}
	if len(out) != 1 || out[0].StaffID != nil || out[0].Reason != "maintenance" {
		t.Fatalf("unexpected rows: %+v", out)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

// A supplied staff id widens the match to rows scoped to that staff member
// on top of the tenant-wide ones.
func TestBlackoutOverlappingStaffScoped(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	start := time.Date(2026, 9, 7, 9, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)
	mock.ExpectQuery(`\(staff_id IS NULL OR staff_id=\?\)(.|\n)*resource_id IS NULL`).
		WithArgs(int64(1), end, start, int64(2), int64(3)).
		WillReturnRows(blackoutTestRows().
			AddRow(4, 1, start, end, 3, nil, nil, "vacation"))

	staff := int64(3)
	out, err := (BlackoutRepo{DB: db}).Overlapping(context.Background(), 1, start, end, BlackoutScope{ServiceID: 2, StaffID: &staff})
	if err != nil {
		t.Fatalf("overlapping error: %v", err)
	}
	if len(out) != 1 || out[0].StaffID == nil || *out[0].StaffID != 3 {
		t.Fatalf("unexpected rows: %+v", out)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
