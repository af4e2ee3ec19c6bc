package repositories

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	intconfig "bookingcore/internal/config"
	"bookingcore/internal/domain"
	"bookingcore/internal/domain/models"
	"bookingcore/internal/utils"
)

type CustomerRepo struct {
	DB *sql.DB
}

func (r CustomerRepo) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

// UpsertByEmail resolves a customer by the (tenant, email) identity key,
// creating the row when absent and refreshing name/phone when supplied.
// Safe to call inside the booking transaction via q.
func (r CustomerRepo) UpsertByEmail(ctx context.Context, q Queryer, tenantID int64, name, email, phone string) (models.Customer, error) {
	email = utils.NormalizeEmail(email)
	name = strings.TrimSpace(name)
	phone = strings.TrimSpace(phone)
	if email == "" {
		return models.Customer{}, domain.ValidationError{Field: "customerEmail", Msg: "email is required"}
	}

	c, err := r.getByEmail(ctx, q, tenantID, email)
	if err == nil {
		return r.refresh(ctx, q, c, name, phone)
	}
	if !domain.IsNotFound(err) {
		return models.Customer{}, err
	}

	res, err := q.ExecContext(ctx, `
		INSERT INTO customers (tenant_id, name, email, phone) VALUES (?,?,?,?)`,
		tenantID, name, email, phone)
	if err != nil {
		if IsDuplicate(err) {
			// concurrent insert won; reuse the existing row
			return r.getByEmail(ctx, q, tenantID, email)
		}
		return models.Customer{}, MapStoreError(err)
	}
	id, _ := res.LastInsertId()
	return models.Customer{ID: id, TenantID: tenantID, Name: name, Email: email, Phone: phone}, nil
}

func (r CustomerRepo) getByEmail(ctx context.Context, q Queryer, tenantID int64, email string) (models.Customer, error) {
	var c models.Customer
	err := q.QueryRowContext(ctx, `
		SELECT id, tenant_id, name, email, phone, created_at
		FROM customers
		WHERE tenant_id=? AND email=? LIMIT 1`, tenantID, email).Scan(
		&c.ID, &c.TenantID, &c.Name, &c.Email, &c.Phone, &c.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Customer{}, domain.NotFoundError{Resource: "customer"}
		}
		return models.Customer{}, MapStoreError(err)
	}
	return c, nil
}

func (r CustomerRepo) refresh(ctx context.Context, q Queryer, c models.Customer, name, phone string) (models.Customer, error) {
	sets := []string{}
	args := []any{}
	if name != "" && name != c.Name {
		sets = append(sets, "name=?")
		args = append(args, name)
		c.Name = name
	}
	if phone != "" && phone != c.Phone {
		sets = append(sets, "phone=?")
		args = append(args, phone)
		c.Phone = phone
	}
	if len(sets) == 0 {
		return c, nil
	}
	args = append(args, c.ID)
	if _, err := q.ExecContext(ctx, `UPDATE customers SET `+strings.Join(sets, ",")+` WHERE id=?`, args...); err != nil {
		return c, MapStoreError(err)
	}
	return c, nil
}

func (r CustomerRepo) GetByID(ctx context.Context, tenantID, id int64) (models.Customer, error) {
	return r.getByID(ctx, r.db(), tenantID, id)
}

func (r CustomerRepo) getByID(ctx context.Context, q Queryer, tenantID, id int64) (models.Customer, error) {
	var c models.Customer
	err := q.QueryRowContext(ctx, `
		SELECT id, tenant_id, name, email, phone, created_at
		FROM customers
		WHERE tenant_id=? AND id=? LIMIT 1`, tenantID, id).Scan(
		&c.ID, &c.TenantID, &c.Name, &c.Email, &c.Phone, &c.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Customer{}, domain.NotFoundError{Resource: "customer"}
		}
		return models.Customer{}, MapStoreError(err)
	}
	return c, nil
}
