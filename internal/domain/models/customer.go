package models

import "time"

// Customer is a booking party, resolved by (tenant, email) at booking time.
// Client-supplied customer ids are never trusted directly.
type Customer struct {
	ID        int64     `json:"id"`
	TenantID  int64     `json:"tenantId"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}
