package models

import "time"

// Blackout is an explicit closure window [StartsAt, EndsAt). A nil scope
// column means the blackout applies to the whole tenant for that dimension.
type Blackout struct {
	ID         int64     `json:"id"`
	TenantID   int64     `json:"tenantId"`
	StartsAt   time.Time `json:"startsAt"`
	EndsAt     time.Time `json:"endsAt"`
	StaffID    *int64    `json:"staffId,omitempty"`
	ResourceID *int64    `json:"resourceId,omitempty"`
	ServiceID  *int64    `json:"serviceId,omitempty"`
	Reason     string    `json:"reason,omitempty"`
}
