package models

import "time"

// Tenant owns every other entity; all store access is scoped by its id.
type Tenant struct {
	ID           int64  `json:"id"`
	Slug         string `json:"slug"`
	Name         string `json:"name"`
	Timezone     string `json:"timezone"`
	Currency     string `json:"currency"`
	RequirePhone bool   `json:"requirePhone"`

	// Heartbeat marker bumped after every booking change; polled by
	// dashboards, never load-bearing for the engine itself.
	ChangeSeq    int64      `json:"changeSeq"`
	LastChangeAt *time.Time `json:"lastChangeAt,omitempty"`
}

// TenantHours is the weekly open/close window for one weekday
// (0=Sunday..6=Saturday). Close at or before open means the window runs
// overnight into the next day.
type TenantHours struct {
	TenantID int64 `json:"tenantId"`
	Weekday  int   `json:"weekday"`
	OpenMin  int   `json:"openMin"`
	CloseMin int   `json:"closeMin"`
	IsClosed bool  `json:"isClosed"`
}

// TenantUser is a dashboard login belonging to a tenant.
type TenantUser struct {
	ID           int64  `json:"id"`
	TenantID     int64  `json:"tenantId"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"`
	Role         string `json:"role"`
}
