package models

// StaffScheduleBlock is one weekly working block for a staff member,
// as minutes from midnight on a weekday (0=Sunday..6=Saturday).
type StaffScheduleBlock struct {
	ID       int64 `json:"id"`
	TenantID int64 `json:"tenantId"`
	StaffID  int64 `json:"staffId"`
	Weekday  int   `json:"weekday"`
	StartMin int   `json:"startMin"`
	EndMin   int   `json:"endMin"`
}

// OverrideType is a date-specific exception to the weekly schedule.
type OverrideType string

const (
	// OverrideOff removes all working blocks for the date.
	OverrideOff OverrideType = "OFF"
	// OverrideAddHours appends a block to the weekly blocks for the date.
	OverrideAddHours OverrideType = "ADD_HOURS"
	// OverrideCustomHours replaces the weekly blocks entirely.
	OverrideCustomHours OverrideType = "CUSTOM_HOURS"
)

// StaffScheduleOverride is a per-date schedule exception. StartMin/EndMin
// are meaningful for ADD_HOURS and CUSTOM_HOURS only.
type StaffScheduleOverride struct {
	ID       int64        `json:"id"`
	TenantID int64        `json:"tenantId"`
	StaffID  int64        `json:"staffId"`
	Date     string       `json:"date"` // YYYY-MM-DD
	Type     OverrideType `json:"type"`
	StartMin int          `json:"startMin"`
	EndMin   int          `json:"endMin"`
}
