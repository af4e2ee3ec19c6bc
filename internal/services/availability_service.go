package services

import (
	"context"
	"database/sql"
	"sort"
	"time"

	intconfig "bookingcore/internal/config"
	"bookingcore/internal/domain"
	"bookingcore/internal/domain/models"
	"bookingcore/internal/repositories"
	"bookingcore/internal/slotmath"
	"bookingcore/internal/utils"
)

// Machine-readable reasons for intentionally empty slot lists. These are
// not errors; the caller decides how to prompt the user.
const (
	ReasonStaffRequired    = "staff_required"
	ReasonResourceRequired = "resource_required"
	ReasonTenantClosed     = "tenant_closed"
	ReasonStaffUnavailable = "staff_unavailable"
)

type AvailabilityQuery struct {
	Tenant     models.Tenant
	ServiceID  int64
	Date       string // YYYY-MM-DD
	StaffID    *int64
	ResourceID *int64
}

type Slot struct {
	Time         string `json:"time"`
	Available    bool   `json:"available"`
	Capacity     int    `json:"capacity"`
	CapacityUsed int    `json:"overlaps"`
	BlackoutHits int    `json:"blackout_hits"`
}

type AvailabilityMeta struct {
	DurationMinutes     int                      `json:"duration_minutes"`
	SlotIntervalMinutes int                      `json:"slot_interval_minutes"`
	MaxParallelBookings int                      `json:"max_parallel_bookings"`
	AvailabilityBasis   models.AvailabilityBasis `json:"availability_basis"`
	Reason              string                   `json:"reason,omitempty"`
}

type AvailabilityResult struct {
	Slots []Slot           `json:"slots"`
	Meta  AvailabilityMeta `json:"meta"`
}

// AvailabilityService computes the bookable slot grid for one tenant,
// service and date. Read-only: a returned "available" slot is advisory
// until the booking transaction commits.
type AvailabilityService struct {
	DB          *sql.DB
	TenantRepo  repositories.TenantRepo
	ServiceRepo repositories.ServiceRepo
	Blackouts   repositories.BlackoutRepo
	Bookings    repositories.BookingRepo
	Resolver    ScheduleResolver
}

func NewAvailabilityService(db *sql.DB, features intconfig.Features) AvailabilityService {
	return AvailabilityService{
		DB:          db,
		TenantRepo:  repositories.TenantRepo{DB: db},
		ServiceRepo: repositories.ServiceRepo{DB: db},
		Blackouts:   repositories.BlackoutRepo{DB: db},
		Bookings:    repositories.BookingRepo{DB: db},
		Resolver:    ScheduleResolver{Repo: repositories.ScheduleRepo{DB: db}, Features: features},
	}
}

func (s AvailabilityService) GetSlots(ctx context.Context, q AvailabilityQuery) (AvailabilityResult, error) {
	svc, err := s.ServiceRepo.GetByID(ctx, q.Tenant.ID, q.ServiceID)
	if err != nil {
		return AvailabilityResult{}, err
	}

	basis := svc.Basis()
	meta := AvailabilityMeta{
		DurationMinutes:     svc.DurationMinutes,
		SlotIntervalMinutes: svc.StepMinutes(),
		MaxParallelBookings: svc.Capacity(),
		AvailabilityBasis:   basis,
	}
	empty := func(reason string) AvailabilityResult {
		meta.Reason = reason
		return AvailabilityResult{Slots: []Slot{}, Meta: meta}
	}

	needsStaff := basis == models.BasisStaff || basis == models.BasisBoth
	needsResource := basis == models.BasisResource || basis == models.BasisBoth
	if needsStaff && q.StaffID == nil {
		return empty(ReasonStaffRequired), nil
	}
	if needsResource && q.ResourceID == nil {
		return empty(ReasonResourceRequired), nil
	}

	day, err := utils.ParseDate(q.Date)
	if err != nil {
		return AvailabilityResult{}, domain.ValidationError{Field: "date", Msg: "expected YYYY-MM-DD"}
	}

	hours, err := s.TenantRepo.HoursForWeekday(ctx, q.Tenant.ID, utils.Weekday(day))
	if err != nil {
		return AvailabilityResult{}, err
	}
	if hours.IsClosed {
		return empty(ReasonTenantClosed), nil
	}
	open, close := slotmath.NormalizeWindow(hours.OpenMin, hours.CloseMin)

	windows := []slotmath.Block{{Start: open, End: close}}
	if needsStaff {
		blocks, err := s.Resolver.ResolveStaffDay(ctx, q.Tenant.ID, *q.StaffID, q.Date, utils.Weekday(day))
		if err != nil {
			if domain.IsUnsupported(err) {
				// deployment without staff scheduling: tenant hours only
				blocks = nil
			} else {
				return AvailabilityResult{}, err
			}
		}
		if blocks != nil {
			// Staff blocks are same-day minute ranges. When tenant hours
			// run overnight, only the staff portion before midnight
			// survives the intersection; overnight staff shifts are a
			// known limitation.
			windows = windows[:0]
			for _, b := range blocks {
				if w, ok := slotmath.Intersect(b, open, close); ok {
					windows = append(windows, w)
				}
			}
			if len(windows) == 0 {
				return empty(ReasonStaffUnavailable), nil
			}
		}
	}

	step := svc.StepMinutes()
	seen := map[int]bool{}
	starts := []int{}
	for _, w := range windows {
		for _, t := range slotmath.SlotStarts(w.Start, w.End, step) {
			if !seen[t] {
				seen[t] = true
				starts = append(starts, t)
			}
		}
	}
	sort.Ints(starts)

	windowStart := day.Add(time.Duration(open) * time.Minute)
	windowEnd := day.Add(time.Duration(close) * time.Minute)

	bookings, err := s.Bookings.ListForWindow(ctx, q.Tenant.ID, windowStart, windowEnd)
	if err != nil {
		return AvailabilityResult{}, err
	}
	blackouts, err := s.Blackouts.Overlapping(ctx, q.Tenant.ID, windowStart, windowEnd, repositories.BlackoutScope{
		ServiceID:  svc.ID,
		StaffID:    q.StaffID,
		ResourceID: q.ResourceID,
	})
	if err != nil {
		return AvailabilityResult{}, err
	}

	capacity := svc.Capacity()
	slots := make([]Slot, 0, len(starts))
	for _, t := range starts {
		slotStart := day.Add(time.Duration(t) * time.Minute)
		slotEnd := slotStart.Add(time.Duration(step) * time.Minute)

		var serviceCount, staffCount, resourceCount int
		for _, b := range bookings {
			if !overlapsTime(b.StartTime, b.EndTime(), slotStart, slotEnd) {
				continue
			}
			if b.ServiceID == svc.ID {
				serviceCount++
			}
			if q.StaffID != nil && b.StaffID != nil && *b.StaffID == *q.StaffID {
				staffCount++
			}
			if q.ResourceID != nil && b.ResourceID != nil && *b.ResourceID == *q.ResourceID {
				resourceCount++
			}
		}

		blackoutHits := 0
		for _, bo := range blackouts {
			if overlapsTime(bo.StartsAt, bo.EndsAt, slotStart, slotEnd) {
				blackoutHits++
			}
		}

		var used int
		var available bool
		switch basis {
		case models.BasisStaff:
			used = staffCount
			available = staffCount < capacity
		case models.BasisResource:
			used = resourceCount
			available = resourceCount < capacity
		case models.BasisBoth:
			used = maxInt(staffCount, resourceCount)
			available = staffCount < capacity && resourceCount < capacity
		default:
			used = serviceCount
			available = serviceCount < capacity
		}
		if blackoutHits > 0 {
			available = false
		}

		slots = append(slots, Slot{
			Time:         slotmath.FormatClock(t),
			Available:    available,
			Capacity:     capacity,
			CapacityUsed: used,
			BlackoutHits: blackoutHits,
		})
	}

	return AvailabilityResult{Slots: slots, Meta: meta}, nil
}

func overlapsTime(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
