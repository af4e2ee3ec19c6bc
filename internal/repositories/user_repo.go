package repositories

import (
	"context"
	"database/sql"
	"errors"

	intconfig "bookingcore/internal/config"
	"bookingcore/internal/domain"
	"bookingcore/internal/domain/models"
	"bookingcore/internal/utils"
)

type UserRepo struct {
	DB *sql.DB
}

func (r UserRepo) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

func (r UserRepo) GetByEmail(ctx context.Context, email string) (models.TenantUser, error) {
	var u models.TenantUser
	err := r.db().QueryRowContext(ctx, `
		SELECT id, tenant_id, name, email, password_hash, role
		FROM tenant_users
		WHERE email=? LIMIT 1`, utils.NormalizeEmail(email)).Scan(
		&u.ID, &u.TenantID, &u.Name, &u.Email, &u.PasswordHash, &u.Role,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.TenantUser{}, domain.NotFoundError{Resource: "user"}
		}
		return models.TenantUser{}, MapStoreError(err)
	}
	return u, nil
}
