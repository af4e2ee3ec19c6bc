package services

import (
	"context"
	"testing"

	intconfig "bookingcore/internal/config"
	"bookingcore/internal/domain"
	"bookingcore/internal/repositories"
	"bookingcore/internal/slotmath"

	"github.com/DATA-DOG/go-sqlmock"
)

func overrideRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "tenant_id", "staff_id", "date", "override_type", "start_min", "end_min"})
}

func weeklyRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "tenant_id", "staff_id", "weekday", "start_min", "end_min"})
}

func TestResolveStaffDayUnsupportedWhenDisabled(t *testing.T) {
	r := ScheduleResolver{Features: intconfig.Features{StaffSchedules: false}}
	_, err := r.ResolveStaffDay(context.Background(), 1, 2, "2026-09-07", 1)
	if !domain.IsUnsupported(err) {
		t.Fatalf("expected unsupported error, got %v", err)
	}
}

func TestResolveStaffDayOffOverrideEmptiesDay(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("FROM staff_schedule_overrides").
		WillReturnRows(overrideRows().
			AddRow(1, 1, 2, "2026-09-07", "ADD_HOURS", 1080, 1200).
			AddRow(2, 1, 2, "2026-09-07", "OFF", 0, 0))

	r := ScheduleResolver{
		Repo:     repositories.ScheduleRepo{DB: db},
		Features: intconfig.Features{StaffSchedules: true, StaffOverrides: true},
	}
	blocks, err := r.ResolveStaffDay(context.Background(), 1, 2, "2026-09-07", 1)
	if err != nil {
		t.Fatalf("resolve error: %v", err)
	}
	// OFF wins even when other overrides exist for the same date
	if len(blocks) != 0 {
		t.Fatalf("expected no blocks, got %v", blocks)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestResolveStaffDayCustomReplacesWeekly(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("FROM staff_schedule_overrides").
		WillReturnRows(overrideRows().
			AddRow(1, 1, 2, "2026-09-07", "CUSTOM_HOURS", 600, 840))

	r := ScheduleResolver{
		Repo:     repositories.ScheduleRepo{DB: db},
		Features: intconfig.Features{StaffSchedules: true, StaffOverrides: true},
	}
	blocks, err := r.ResolveStaffDay(context.Background(), 1, 2, "2026-09-07", 1)
	if err != nil {
		t.Fatalf("resolve error: %v", err)
	}
	want := []slotmath.Block{{Start: 600, End: 840}}
	if len(blocks) != 1 || blocks[0] != want[0] {
		t.Fatalf("expected %v, got %v", want, blocks)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestResolveStaffDayWeeklyPlusAdded(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("FROM staff_schedule_overrides").
		WillReturnRows(overrideRows().
			AddRow(1, 1, 2, "2026-09-07", "ADD_HOURS", 1080, 1200))
	mock.ExpectQuery("FROM staff_schedules").
		WillReturnRows(weeklyRows().
			AddRow(10, 1, 2, 1, 540, 780).
			AddRow(11, 1, 2, 1, 840, 1020))

	r := ScheduleResolver{
		Repo:     repositories.ScheduleRepo{DB: db},
		Features: intconfig.Features{StaffSchedules: true, StaffOverrides: true},
	}
	blocks, err := r.ResolveStaffDay(context.Background(), 1, 2, "2026-09-07", 1)
	if err != nil {
		t.Fatalf("resolve error: %v", err)
	}
	want := []slotmath.Block{{Start: 540, End: 780}, {Start: 840, End: 1020}, {Start: 1080, End: 1200}}
	if len(blocks) != len(want) {
		t.Fatalf("expected %v, got %v", want, blocks)
	}
	for i := range want {
		if blocks[i] != want[i] {
			t.Fatalf("block %d: expected %v, got %v", i, want[i], blocks[i])
		}
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestResolveStaffDayOverridesDisabledSkipsLookup(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("FROM staff_schedules").
		WillReturnRows(weeklyRows().AddRow(10, 1, 2, 1, 540, 1020))

	r := ScheduleResolver{
		Repo:     repositories.ScheduleRepo{DB: db},
		Features: intconfig.Features{StaffSchedules: true, StaffOverrides: false},
	}
	blocks, err := r.ResolveStaffDay(context.Background(), 1, 2, "2026-09-07", 1)
	if err != nil {
		t.Fatalf("resolve error: %v", err)
	}
	if len(blocks) != 1 || blocks[0] != (slotmath.Block{Start: 540, End: 1020}) {
		t.Fatalf("unexpected blocks: %v", blocks)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
