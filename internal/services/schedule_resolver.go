package services

import (
	"context"

	intconfig "bookingcore/internal/config"
	"bookingcore/internal/domain"
	"bookingcore/internal/domain/models"
	"bookingcore/internal/repositories"
	"bookingcore/internal/slotmath"
)

// ScheduleResolver merges weekly staff schedules with date-specific
// overrides into the effective working blocks for one staff member and day.
type ScheduleResolver struct {
	Repo     repositories.ScheduleRepo
	Features intconfig.Features
}

// ResolveStaffDay returns the working blocks for the date, in minutes from
// midnight. Precedence: an OFF override empties the day; CUSTOM_HOURS
// overrides replace the weekly blocks entirely; otherwise weekly blocks
// plus any ADD_HOURS overrides.
//
// A deployment with staff scheduling disabled gets UnsupportedError, which
// callers must treat as "fall back to tenant hours", never as an empty day.
func (r ScheduleResolver) ResolveStaffDay(ctx context.Context, tenantID, staffID int64, date string, weekday int) ([]slotmath.Block, error) {
	if !r.Features.StaffSchedules {
		return nil, domain.UnsupportedError{Feature: "staff schedules"}
	}

	var overrides []models.StaffScheduleOverride
	if r.Features.StaffOverrides {
		var err error
		overrides, err = r.Repo.OverridesForDate(ctx, tenantID, staffID, date)
		if err != nil {
			return nil, err
		}
	}

	custom := []slotmath.Block{}
	added := []slotmath.Block{}
	for _, o := range overrides {
		switch o.Type {
		case models.OverrideOff:
			return []slotmath.Block{}, nil
		case models.OverrideCustomHours:
			custom = append(custom, slotmath.Block{Start: o.StartMin, End: o.EndMin})
		case models.OverrideAddHours:
			added = append(added, slotmath.Block{Start: o.StartMin, End: o.EndMin})
		}
	}
	if len(custom) > 0 {
		return custom, nil
	}

	weekly, err := r.Repo.WeeklyBlocks(ctx, tenantID, staffID, weekday)
	if err != nil {
		return nil, err
	}
	blocks := make([]slotmath.Block, 0, len(weekly)+len(added))
	for _, b := range weekly {
		blocks = append(blocks, slotmath.Block{Start: b.StartMin, End: b.EndMin})
	}
	blocks = append(blocks, added...)
	return blocks, nil
}
