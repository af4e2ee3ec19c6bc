package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	intconfig "bookingcore/internal/config"
	"bookingcore/internal/domain"
	"bookingcore/internal/domain/models"
)

type MembershipRepo struct {
	DB *sql.DB
}

func (r MembershipRepo) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

const membershipColumns = `id, tenant_id, customer_id, plan_name, status,
	start_at, end_at, minutes_remaining, uses_remaining, created_at`

func scanMembership(scan func(dest ...any) error) (models.CustomerMembership, error) {
	var m models.CustomerMembership
	var endAt sql.NullTime
	err := scan(
		&m.ID, &m.TenantID, &m.CustomerID, &m.PlanName, &m.Status,
		&m.StartAt, &endAt, &m.MinutesRemaining, &m.UsesRemaining, &m.CreatedAt,
	)
	if err != nil {
		return models.CustomerMembership{}, err
	}
	if endAt.Valid {
		m.EndAt = &endAt.Time
	}
	return m, nil
}

// SelectEligibleTx picks the one membership a debit will be taken from and
// row-locks it for the duration of the transaction, serializing concurrent
// consumers. Selection is deterministic: soonest expiry first (no expiry
// last), then highest remaining balance, then lowest id.
func (r MembershipRepo) SelectEligibleTx(ctx context.Context, q Queryer, tenantID, customerID int64, requiredMinutes, requiredUses int64, now time.Time) (models.CustomerMembership, error) {
	row := q.QueryRowContext(ctx, `
		SELECT `+membershipColumns+`
		FROM customer_memberships
		WHERE tenant_id=? AND customer_id=? AND status='active'
		  AND (end_at IS NULL OR end_at > ?)
		  AND (minutes_remaining >= ? OR uses_remaining >= ?)
		ORDER BY (end_at IS NULL), end_at, minutes_remaining DESC, uses_remaining DESC, id
		LIMIT 1
		FOR UPDATE`, tenantID, customerID, now, requiredMinutes, requiredUses)
	m, err := scanMembership(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.CustomerMembership{}, domain.InsufficientError{Msg: "No eligible membership entitlement found."}
		}
		return models.CustomerMembership{}, MapStoreError(err)
	}
	return m, nil
}

// InsertLedgerTx appends one grant/debit row. The raw driver error is
// returned so callers can detect the per-booking debit uniqueness hit and
// treat it as already handled.
func (r MembershipRepo) InsertLedgerTx(ctx context.Context, q Queryer, e models.MembershipLedgerEntry) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO membership_ledger
		(tenant_id, customer_membership_id, booking_id, entry_type, minutes_delta, uses_delta, note)
		VALUES (?,?,?,?,?,?,?)`,
		e.TenantID, e.CustomerMembershipID, nullID(e.BookingID), e.Type, e.MinutesDelta, e.UsesDelta, e.Note)
	return err
}

// RecomputeBalancesTx rematerializes the remaining columns from ledger
// sums. The ledger stays the source of truth; this keeps eligibility scans
// cheap.
func (r MembershipRepo) RecomputeBalancesTx(ctx context.Context, q Queryer, membershipID int64) error {
	_, err := q.ExecContext(ctx, `
		UPDATE customer_memberships SET
			minutes_remaining = (SELECT COALESCE(SUM(minutes_delta),0) FROM membership_ledger WHERE customer_membership_id=?),
			uses_remaining    = (SELECT COALESCE(SUM(uses_delta),0) FROM membership_ledger WHERE customer_membership_id=?)
		WHERE id=?`, membershipID, membershipID, membershipID)
	if err != nil {
		return MapStoreError(err)
	}
	return nil
}

// InsertMembershipTx creates the membership row itself; the opening grant
// ledger entry is appended by the service in the same transaction.
func (r MembershipRepo) InsertMembershipTx(ctx context.Context, q Queryer, m models.CustomerMembership) (int64, error) {
	var endAt any
	if m.EndAt != nil {
		endAt = *m.EndAt
	}
	res, err := q.ExecContext(ctx, `
		INSERT INTO customer_memberships
		(tenant_id, customer_id, plan_name, status, start_at, end_at, minutes_remaining, uses_remaining)
		VALUES (?,?,?,?,?,?,0,0)`,
		m.TenantID, m.CustomerID, m.PlanName, m.Status, m.StartAt, endAt)
	if err != nil {
		return 0, MapStoreError(err)
	}
	return res.LastInsertId()
}

func (r MembershipRepo) GetByID(ctx context.Context, tenantID, id int64) (models.CustomerMembership, error) {
	row := r.db().QueryRowContext(ctx, `
		SELECT `+membershipColumns+`
		FROM customer_memberships
		WHERE tenant_id=? AND id=? LIMIT 1`, tenantID, id)
	m, err := scanMembership(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.CustomerMembership{}, domain.NotFoundError{Resource: "membership"}
		}
		return models.CustomerMembership{}, MapStoreError(err)
	}
	return m, nil
}

func (r MembershipRepo) ListForCustomer(ctx context.Context, tenantID, customerID int64) ([]models.CustomerMembership, error) {
	rows, err := r.db().QueryContext(ctx, `
		SELECT `+membershipColumns+`
		FROM customer_memberships
		WHERE tenant_id=? AND customer_id=?
		ORDER BY id`, tenantID, customerID)
	if err != nil {
		return nil, MapStoreError(err)
	}
	defer rows.Close()

	out := []models.CustomerMembership{}
	for rows.Next() {
		m, err := scanMembership(rows.Scan)
		if err != nil {
			return nil, MapStoreError(err)
		}
		out = append(out, m)
	}
	return out, MapStoreError(rows.Err())
}

// LedgerForMembership lists the append-only history, oldest first.
func (r MembershipRepo) LedgerForMembership(ctx context.Context, tenantID, membershipID int64) ([]models.MembershipLedgerEntry, error) {
	rows, err := r.db().QueryContext(ctx, `
		SELECT id, tenant_id, customer_membership_id, booking_id, entry_type,
		       minutes_delta, uses_delta, note, created_at
		FROM membership_ledger
		WHERE tenant_id=? AND customer_membership_id=?
		ORDER BY id`, tenantID, membershipID)
	if err != nil {
		return nil, MapStoreError(err)
	}
	defer rows.Close()

	out := []models.MembershipLedgerEntry{}
	for rows.Next() {
		var e models.MembershipLedgerEntry
		var bookingID sql.NullInt64
		if err := rows.Scan(&e.ID, &e.TenantID, &e.CustomerMembershipID, &bookingID, &e.Type,
			&e.MinutesDelta, &e.UsesDelta, &e.Note, &e.CreatedAt); err != nil {
			return nil, MapStoreError(err)
		}
		if bookingID.Valid {
			e.BookingID = &bookingID.Int64
		}
		out = append(out, e)
	}
	return out, MapStoreError(rows.Err())
}
