package models

// AvailabilityBasis names the resource dimension that gates a service's
// capacity.
type AvailabilityBasis string

const (
	BasisNone     AvailabilityBasis = "none"
	BasisStaff    AvailabilityBasis = "staff"
	BasisResource AvailabilityBasis = "resource"
	BasisBoth     AvailabilityBasis = "both"

	// BasisAuto is a stored placeholder meaning "derive from the
	// requires_staff / requires_resource flags". It is never an effective
	// basis; Basis() resolves it.
	BasisAuto AvailabilityBasis = "auto"
)

type Service struct {
	ID                   int64             `json:"id"`
	TenantID             int64             `json:"tenantId"`
	Name                 string            `json:"name"`
	DurationMinutes      int               `json:"durationMinutes"`
	SlotIntervalMinutes  int               `json:"slotIntervalMinutes"`
	MaxParallelBookings  int               `json:"maxParallelBookings"`
	MaxConsecutiveSlots  int               `json:"maxConsecutiveSlots"`
	RequiresStaff        bool              `json:"requiresStaff"`
	RequiresResource     bool              `json:"requiresResource"`
	StoredBasis          AvailabilityBasis `json:"availabilityBasis"`
	RequiresConfirmation bool              `json:"requiresConfirmation"`
	IsActive             bool              `json:"isActive"`
}

// Basis is the single code path resolving the effective availability basis.
// An explicit stored value wins; "auto" or empty derives from the
// requires flags.
func (s Service) Basis() AvailabilityBasis {
	switch s.StoredBasis {
	case BasisNone, BasisStaff, BasisResource, BasisBoth:
		return s.StoredBasis
	}
	switch {
	case s.RequiresStaff && s.RequiresResource:
		return BasisBoth
	case s.RequiresStaff:
		return BasisStaff
	case s.RequiresResource:
		return BasisResource
	default:
		return BasisNone
	}
}

// StepMinutes is the slot grid granularity, defaulting to the service
// duration when no explicit interval is configured.
func (s Service) StepMinutes() int {
	if s.SlotIntervalMinutes > 0 {
		return s.SlotIntervalMinutes
	}
	return s.DurationMinutes
}

// Capacity is the parallel booking limit, never below one.
func (s Service) Capacity() int {
	if s.MaxParallelBookings > 0 {
		return s.MaxParallelBookings
	}
	return 1
}

// Staff is a bookable person belonging to a tenant.
type Staff struct {
	ID       int64  `json:"id"`
	TenantID int64  `json:"tenantId"`
	Name     string `json:"name"`
	IsActive bool   `json:"isActive"`
}

// Resource is a bookable asset (room, chair, court) belonging to a tenant.
type Resource struct {
	ID       int64  `json:"id"`
	TenantID int64  `json:"tenantId"`
	Name     string `json:"name"`
	IsActive bool   `json:"isActive"`
}
