package services

import (
	"context"
	"database/sql"
	"time"

	intconfig "bookingcore/internal/config"
	"bookingcore/internal/domain"
	"bookingcore/internal/domain/models"
	"bookingcore/internal/repositories"
	"bookingcore/internal/utils"
)

// MembershipService owns the append-only entitlement ledger. Balances on
// customer_memberships are a materialization of ledger sums; every write
// path here appends a ledger row and rematerializes in the same
// transaction.
type MembershipService struct {
	DB        *sql.DB
	Repo      repositories.MembershipRepo
	RequestID string
	Now       func() time.Time
}

func (s MembershipService) db() *sql.DB {
	if s.DB != nil {
		return s.DB
	}
	return intconfig.DB
}

func (s MembershipService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// DebitResult reports which membership was consumed and by how much.
type DebitResult struct {
	MembershipID int64 `json:"membershipId"`
	MinutesDelta int64 `json:"minutesDelta"`
	UsesDelta    int64 `json:"usesDelta"`
}

// chooseDebit applies the debit policy to a selected membership: debit
// minutes when the balance covers the full duration, otherwise the
// requested number of uses, otherwise fail. A non-positive uses request
// means one use.
func chooseDebit(m models.CustomerMembership, requiredMinutes, requiredUses int64) (minutesDelta, usesDelta int64, err error) {
	if requiredUses <= 0 {
		requiredUses = 1
	}
	switch {
	case requiredMinutes > 0 && m.MinutesRemaining >= requiredMinutes:
		return -requiredMinutes, 0, nil
	case m.UsesRemaining >= requiredUses:
		return 0, -requiredUses, nil
	default:
		return 0, 0, domain.InsufficientError{Msg: "insufficient membership balance"}
	}
}

// ConsumeTx selects the one eligible entitlement under a row lock, records
// the debit exactly once for the booking and rematerializes balances.
// A duplicate ledger key means the debit already happened (replay); the
// current state is returned unchanged.
func (s MembershipService) ConsumeTx(ctx context.Context, tx repositories.Queryer, tenantID, customerID, requiredMinutes, requiredUses, bookingID int64) (DebitResult, error) {
	if requiredUses <= 0 {
		requiredUses = 1
	}
	m, err := s.Repo.SelectEligibleTx(ctx, tx, tenantID, customerID, requiredMinutes, requiredUses, s.now())
	if err != nil {
		return DebitResult{}, err
	}

	minutesDelta, usesDelta, err := chooseDebit(m, requiredMinutes, requiredUses)
	if err != nil {
		return DebitResult{}, err
	}

	entry := models.MembershipLedgerEntry{
		TenantID:             tenantID,
		CustomerMembershipID: m.ID,
		BookingID:            &bookingID,
		Type:                 models.LedgerEntryDebit,
		MinutesDelta:         minutesDelta,
		UsesDelta:            usesDelta,
		Note:                 "booking debit",
	}
	if err := s.Repo.InsertLedgerTx(ctx, tx, entry); err != nil {
		if repositories.IsDuplicate(err) {
			// this booking already debited this membership; not an error
			utils.LogEvent(s.RequestID, "ledger", "consume", "debit replay detected, keeping existing entry")
			return DebitResult{MembershipID: m.ID}, nil
		}
		return DebitResult{}, repositories.MapStoreError(err)
	}
	if err := s.Repo.RecomputeBalancesTx(ctx, tx, m.ID); err != nil {
		return DebitResult{}, err
	}

	return DebitResult{MembershipID: m.ID, MinutesDelta: minutesDelta, UsesDelta: usesDelta}, nil
}

// ConsumeNext runs the select-and-debit protocol in its own transaction,
// for callers outside the booking path.
func (s MembershipService) ConsumeNext(ctx context.Context, tenantID, customerID, requiredMinutes, requiredUses, bookingID int64) (models.CustomerMembership, error) {
	tx, err := s.db().BeginTx(ctx, nil)
	if err != nil {
		return models.CustomerMembership{}, repositories.MapStoreError(err)
	}
	defer tx.Rollback()

	res, err := s.ConsumeTx(ctx, tx, tenantID, customerID, requiredMinutes, requiredUses, bookingID)
	if err != nil {
		return models.CustomerMembership{}, err
	}
	if err := tx.Commit(); err != nil {
		return models.CustomerMembership{}, repositories.MapStoreError(err)
	}
	return s.Repo.GetByID(ctx, tenantID, res.MembershipID)
}

// GrantRequest opens a membership with its initial grant ledger entry.
type GrantRequest struct {
	TenantID     int64      `json:"-"`
	CustomerID   int64      `json:"customerId"`
	PlanName     string     `json:"planName"`
	EndAt        *time.Time `json:"endAt"`
	GrantMinutes int64      `json:"grantMinutes"`
	GrantUses    int64      `json:"grantUses"`
	Note         string     `json:"note"`
}

// Grant creates the membership and its opening grant in one transaction.
// Balances come from the ledger, so even the opening amounts are a ledger
// row, keeping the history fully auditable.
func (s MembershipService) Grant(ctx context.Context, req GrantRequest) (models.CustomerMembership, error) {
	if req.CustomerID <= 0 {
		return models.CustomerMembership{}, domain.ValidationError{Field: "customerId", Msg: "required"}
	}
	if req.GrantMinutes < 0 || req.GrantUses < 0 {
		return models.CustomerMembership{}, domain.ValidationError{Field: "grant", Msg: "grant amounts must not be negative"}
	}
	if req.GrantMinutes == 0 && req.GrantUses == 0 {
		return models.CustomerMembership{}, domain.ValidationError{Field: "grant", Msg: "grant minutes or uses required"}
	}

	tx, err := s.db().BeginTx(ctx, nil)
	if err != nil {
		return models.CustomerMembership{}, repositories.MapStoreError(err)
	}
	defer tx.Rollback()

	id, err := s.Repo.InsertMembershipTx(ctx, tx, models.CustomerMembership{
		TenantID:   req.TenantID,
		CustomerID: req.CustomerID,
		PlanName:   req.PlanName,
		Status:     models.MembershipStatusActive,
		StartAt:    s.now(),
		EndAt:      req.EndAt,
	})
	if err != nil {
		return models.CustomerMembership{}, err
	}

	note := req.Note
	if note == "" {
		note = "initial grant"
	}
	if err := s.Repo.InsertLedgerTx(ctx, tx, models.MembershipLedgerEntry{
		TenantID:             req.TenantID,
		CustomerMembershipID: id,
		Type:                 models.LedgerEntryGrant,
		MinutesDelta:         req.GrantMinutes,
		UsesDelta:            req.GrantUses,
		Note:                 note,
	}); err != nil {
		return models.CustomerMembership{}, repositories.MapStoreError(err)
	}
	if err := s.Repo.RecomputeBalancesTx(ctx, tx, id); err != nil {
		return models.CustomerMembership{}, err
	}
	if err := tx.Commit(); err != nil {
		return models.CustomerMembership{}, repositories.MapStoreError(err)
	}

	return s.Repo.GetByID(ctx, req.TenantID, id)
}

func (s MembershipService) ListForCustomer(ctx context.Context, tenantID, customerID int64) ([]models.CustomerMembership, error) {
	return s.Repo.ListForCustomer(ctx, tenantID, customerID)
}
