package repositories

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	intconfig "bookingcore/internal/config"
	"bookingcore/internal/domain"
	"bookingcore/internal/domain/models"
)

type TenantRepo struct {
	DB *sql.DB
}

func (r TenantRepo) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

func (r TenantRepo) GetBySlug(ctx context.Context, slug string) (models.Tenant, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return models.Tenant{}, domain.ValidationError{Field: "tenant", Msg: "slug is required"}
	}
	var t models.Tenant
	var lastChange sql.NullTime
	err := r.db().QueryRowContext(ctx, `
		SELECT id, slug, name, timezone, currency, require_phone, change_seq, last_change_at
		FROM tenants
		WHERE slug=? LIMIT 1`, slug).Scan(
		&t.ID, &t.Slug, &t.Name, &t.Timezone, &t.Currency, &t.RequirePhone, &t.ChangeSeq, &lastChange,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Tenant{}, domain.NotFoundError{Resource: "tenant"}
		}
		return models.Tenant{}, MapStoreError(err)
	}
	if lastChange.Valid {
		t.LastChangeAt = &lastChange.Time
	}
	return t, nil
}

func (r TenantRepo) GetByID(ctx context.Context, id int64) (models.Tenant, error) {
	var t models.Tenant
	var lastChange sql.NullTime
	err := r.db().QueryRowContext(ctx, `
		SELECT id, slug, name, timezone, currency, require_phone, change_seq, last_change_at
		FROM tenants
		WHERE id=? LIMIT 1`, id).Scan(
		&t.ID, &t.Slug, &t.Name, &t.Timezone, &t.Currency, &t.RequirePhone, &t.ChangeSeq, &lastChange,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Tenant{}, domain.NotFoundError{Resource: "tenant"}
		}
		return models.Tenant{}, MapStoreError(err)
	}
	if lastChange.Valid {
		t.LastChangeAt = &lastChange.Time
	}
	return t, nil
}

// HoursForWeekday loads the tenant open/close window for a weekday.
// A missing row is reported as closed.
func (r TenantRepo) HoursForWeekday(ctx context.Context, tenantID int64, weekday int) (models.TenantHours, error) {
	h := models.TenantHours{TenantID: tenantID, Weekday: weekday, IsClosed: true}
	err := r.db().QueryRowContext(ctx, `
		SELECT open_min, close_min, is_closed
		FROM tenant_hours
		WHERE tenant_id=? AND weekday=? LIMIT 1`, tenantID, weekday).Scan(
		&h.OpenMin, &h.CloseMin, &h.IsClosed,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return h, nil
		}
		return h, MapStoreError(err)
	}
	return h, nil
}

// TouchHeartbeat bumps the tenant change marker. Runs outside the booking
// transaction; callers log and swallow failures.
func (r TenantRepo) TouchHeartbeat(ctx context.Context, tenantID int64) error {
	_, err := r.db().ExecContext(ctx, `
		UPDATE tenants SET change_seq=change_seq+1, last_change_at=NOW()
		WHERE id=?`, tenantID)
	return err
}
