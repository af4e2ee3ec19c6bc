package models

import "time"

type MembershipStatus string

const (
	MembershipStatusActive   MembershipStatus = "active"
	MembershipStatusExpired  MembershipStatus = "expired"
	MembershipStatusArchived MembershipStatus = "archived"
)

// CustomerMembership is a prepaid entitlement. MinutesRemaining and
// UsesRemaining are materialized from ledger sums; the ledger is the source
// of truth and the columns are never written directly by request code.
type CustomerMembership struct {
	ID               int64            `json:"id"`
	TenantID         int64            `json:"tenantId"`
	CustomerID       int64            `json:"customerId"`
	PlanName         string           `json:"planName"`
	Status           MembershipStatus `json:"status"`
	StartAt          time.Time        `json:"startAt"`
	EndAt            *time.Time       `json:"endAt,omitempty"`
	MinutesRemaining int64            `json:"minutesRemaining"`
	UsesRemaining    int64            `json:"usesRemaining"`
	CreatedAt        time.Time        `json:"createdAt"`
}

type LedgerEntryType string

const (
	LedgerEntryGrant LedgerEntryType = "grant"
	LedgerEntryDebit LedgerEntryType = "debit"
)

// MembershipLedgerEntry is one append-only grant/debit row. The unique key
// on (customer_membership_id, booking_id, entry_type) makes debits
// idempotent per booking.
type MembershipLedgerEntry struct {
	ID                   int64           `json:"id"`
	TenantID             int64           `json:"tenantId"`
	CustomerMembershipID int64           `json:"customerMembershipId"`
	BookingID            *int64          `json:"bookingId,omitempty"`
	Type                 LedgerEntryType `json:"type"`
	MinutesDelta         int64           `json:"minutesDelta"`
	UsesDelta            int64           `json:"usesDelta"`
	Note                 string          `json:"note,omitempty"`
	CreatedAt            time.Time       `json:"createdAt"`
}
