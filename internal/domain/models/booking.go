package models

import "time"

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
)

// ValidStatus reports whether s is a known booking status.
func ValidStatus(s BookingStatus) bool {
	switch s {
	case BookingStatusPending, BookingStatusConfirmed, BookingStatusCancelled:
		return true
	}
	return false
}

// CanTransition implements the status matrix:
// pending -> {confirmed, cancelled}; confirmed -> {cancelled};
// cancelled is terminal. Same-state transitions are accepted as no-ops.
func CanTransition(from, to BookingStatus) bool {
	if from == to {
		return true
	}
	switch from {
	case BookingStatusPending:
		return to == BookingStatusConfirmed || to == BookingStatusCancelled
	case BookingStatusConfirmed:
		return to == BookingStatusCancelled
	default:
		return false
	}
}

type Booking struct {
	ID                   int64         `json:"id"`
	TenantID             int64         `json:"tenantId"`
	ServiceID            int64         `json:"serviceId"`
	StaffID              *int64        `json:"staffId,omitempty"`
	ResourceID           *int64        `json:"resourceId,omitempty"`
	CustomerID           int64         `json:"customerId"`
	StartTime            time.Time     `json:"startTime"`
	DurationMinutes      int           `json:"durationMinutes"`
	Status               BookingStatus `json:"status"`
	IdempotencyKey       string        `json:"idempotencyKey"`
	BookingCode          string        `json:"bookingCode"`
	CustomerMembershipID *int64        `json:"customerMembershipId,omitempty"`
	Notes                string        `json:"notes,omitempty"`
	CreatedAt            time.Time     `json:"createdAt"`
	UpdatedAt            time.Time     `json:"updatedAt"`
}

// EndTime is the exclusive end of the booking interval.
func (b Booking) EndTime() time.Time {
	return b.StartTime.Add(time.Duration(b.DurationMinutes) * time.Minute)
}

// BookingDetail joins display fields used by list endpoints and day sheets.
type BookingDetail struct {
	Booking
	ServiceName  string `json:"serviceName"`
	CustomerName string `json:"customerName"`
	StaffName    string `json:"staffName,omitempty"`
	ResourceName string `json:"resourceName,omitempty"`
}
