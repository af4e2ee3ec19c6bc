// Package schema owns the relational schema as ordered, idempotent
// migrations applied once at startup. Request handlers never consult
// information_schema; schema evolution is a deploy-time concern.
package schema

import (
	"database/sql"
	"fmt"
	"log"
)

type migration struct {
	Version int
	Name    string
	Stmts   []string
}

var migrations = []migration{
	{
		Version: 1,
		Name:    "tenancy",
		Stmts: []string{
			`CREATE TABLE IF NOT EXISTS tenants (
				id BIGINT AUTO_INCREMENT PRIMARY KEY,
				slug VARCHAR(64) NOT NULL,
				name VARCHAR(255) NOT NULL,
				timezone VARCHAR(64) NOT NULL DEFAULT 'UTC',
				currency VARCHAR(8) NOT NULL DEFAULT 'USD',
				require_phone TINYINT(1) NOT NULL DEFAULT 0,
				change_seq BIGINT NOT NULL DEFAULT 0,
				last_change_at DATETIME NULL,
				created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
				UNIQUE KEY uniq_tenant_slug (slug)
			) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`,
			`CREATE TABLE IF NOT EXISTS tenant_users (
				id BIGINT AUTO_INCREMENT PRIMARY KEY,
				tenant_id BIGINT NOT NULL,
				name VARCHAR(255) NOT NULL,
				email VARCHAR(255) NOT NULL,
				password_hash VARCHAR(255) NOT NULL,
				role VARCHAR(32) NOT NULL DEFAULT 'admin',
				created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
				UNIQUE KEY uniq_user_email (email),
				KEY idx_user_tenant (tenant_id)
			) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`,
			`CREATE TABLE IF NOT EXISTS tenant_hours (
				id BIGINT AUTO_INCREMENT PRIMARY KEY,
				tenant_id BIGINT NOT NULL,
				weekday TINYINT NOT NULL,
				open_min SMALLINT NOT NULL DEFAULT 0,
				close_min SMALLINT NOT NULL DEFAULT 0,
				is_closed TINYINT(1) NOT NULL DEFAULT 0,
				UNIQUE KEY uniq_hours (tenant_id, weekday)
			) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`,
		},
	},
	{
		Version: 2,
		Name:    "catalog",
		Stmts: []string{
			`CREATE TABLE IF NOT EXISTS services (
				id BIGINT AUTO_INCREMENT PRIMARY KEY,
				tenant_id BIGINT NOT NULL,
				name VARCHAR(255) NOT NULL,
				duration_minutes INT NOT NULL,
				slot_interval_minutes INT NOT NULL DEFAULT 0,
				max_parallel_bookings INT NOT NULL DEFAULT 1,
				max_consecutive_slots INT NOT NULL DEFAULT 1,
				requires_staff TINYINT(1) NOT NULL DEFAULT 0,
				requires_resource TINYINT(1) NOT NULL DEFAULT 0,
				availability_basis VARCHAR(16) NOT NULL DEFAULT 'auto',
				requires_confirmation TINYINT(1) NOT NULL DEFAULT 0,
				is_active TINYINT(1) NOT NULL DEFAULT 1,
				created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
				KEY idx_service_tenant (tenant_id)
			) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`,
			`CREATE TABLE IF NOT EXISTS staff (
				id BIGINT AUTO_INCREMENT PRIMARY KEY,
				tenant_id BIGINT NOT NULL,
				name VARCHAR(255) NOT NULL,
				is_active TINYINT(1) NOT NULL DEFAULT 1,
				created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
				KEY idx_staff_tenant (tenant_id)
			) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`,
			`CREATE TABLE IF NOT EXISTS resources (
				id BIGINT AUTO_INCREMENT PRIMARY KEY,
				tenant_id BIGINT NOT NULL,
				name VARCHAR(255) NOT NULL,
				is_active TINYINT(1) NOT NULL DEFAULT 1,
				created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
				KEY idx_resource_tenant (tenant_id)
			) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`,
		},
	},
	{
		Version: 3,
		Name:    "schedules",
		Stmts: []string{
			`CREATE TABLE IF NOT EXISTS staff_schedules (
				id BIGINT AUTO_INCREMENT PRIMARY KEY,
				tenant_id BIGINT NOT NULL,
				staff_id BIGINT NOT NULL,
				weekday TINYINT NOT NULL,
				start_min SMALLINT NOT NULL,
				end_min SMALLINT NOT NULL,
				KEY idx_sched_staff (tenant_id, staff_id, weekday)
			) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`,
			`CREATE TABLE IF NOT EXISTS staff_schedule_overrides (
				id BIGINT AUTO_INCREMENT PRIMARY KEY,
				tenant_id BIGINT NOT NULL,
				staff_id BIGINT NOT NULL,
				override_date DATE NOT NULL,
				override_type VARCHAR(16) NOT NULL,
				start_min SMALLINT NOT NULL DEFAULT 0,
				end_min SMALLINT NOT NULL DEFAULT 0,
				KEY idx_override_staff_date (tenant_id, staff_id, override_date)
			) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`,
			`CREATE TABLE IF NOT EXISTS blackouts (
				id BIGINT AUTO_INCREMENT PRIMARY KEY,
				tenant_id BIGINT NOT NULL,
				starts_at DATETIME NOT NULL,
				ends_at DATETIME NOT NULL,
				staff_id BIGINT NULL,
				resource_id BIGINT NULL,
				service_id BIGINT NULL,
				reason VARCHAR(255) NOT NULL DEFAULT '',
				KEY idx_blackout_window (tenant_id, starts_at, ends_at)
			) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`,
		},
	},
	{
		Version: 4,
		Name:    "bookings",
		Stmts: []string{
			`CREATE TABLE IF NOT EXISTS customers (
				id BIGINT AUTO_INCREMENT PRIMARY KEY,
				tenant_id BIGINT NOT NULL,
				name VARCHAR(255) NOT NULL,
				email VARCHAR(255) NOT NULL,
				phone VARCHAR(64) NOT NULL DEFAULT '',
				created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
				UNIQUE KEY uniq_customer_email (tenant_id, email)
			) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`,
			`CREATE TABLE IF NOT EXISTS bookings (
				id BIGINT AUTO_INCREMENT PRIMARY KEY,
				tenant_id BIGINT NOT NULL,
				service_id BIGINT NOT NULL,
				staff_id BIGINT NULL,
				resource_id BIGINT NULL,
				customer_id BIGINT NOT NULL,
				start_time DATETIME NOT NULL,
				duration_minutes INT NOT NULL,
				status VARCHAR(16) NOT NULL DEFAULT 'pending',
				idempotency_key VARCHAR(128) NOT NULL,
				booking_code VARCHAR(32) NOT NULL,
				customer_membership_id BIGINT NULL,
				notes TEXT,
				created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
				UNIQUE KEY uniq_idempotency (tenant_id, idempotency_key),
				KEY idx_booking_day (tenant_id, start_time),
				KEY idx_booking_staff (tenant_id, staff_id, start_time),
				KEY idx_booking_resource (tenant_id, resource_id, start_time)
			) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`,
		},
	},
	{
		Version: 5,
		Name:    "memberships",
		Stmts: []string{
			`CREATE TABLE IF NOT EXISTS customer_memberships (
				id BIGINT AUTO_INCREMENT PRIMARY KEY,
				tenant_id BIGINT NOT NULL,
				customer_id BIGINT NOT NULL,
				plan_name VARCHAR(255) NOT NULL DEFAULT '',
				status VARCHAR(16) NOT NULL DEFAULT 'active',
				start_at DATETIME NOT NULL,
				end_at DATETIME NULL,
				minutes_remaining BIGINT NOT NULL DEFAULT 0,
				uses_remaining BIGINT NOT NULL DEFAULT 0,
				created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
				KEY idx_membership_customer (tenant_id, customer_id, status)
			) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`,
			`CREATE TABLE IF NOT EXISTS membership_ledger (
				id BIGINT AUTO_INCREMENT PRIMARY KEY,
				tenant_id BIGINT NOT NULL,
				customer_membership_id BIGINT NOT NULL,
				booking_id BIGINT NULL,
				entry_type VARCHAR(16) NOT NULL,
				minutes_delta BIGINT NOT NULL DEFAULT 0,
				uses_delta BIGINT NOT NULL DEFAULT 0,
				note VARCHAR(255) NOT NULL DEFAULT '',
				created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
				UNIQUE KEY uniq_debit_per_booking (customer_membership_id, booking_id, entry_type),
				KEY idx_ledger_membership (customer_membership_id)
			) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`,
		},
	},
}

// Apply runs pending migrations in order, recording each in
// schema_migrations.
func Apply(db *sql.DB) error {
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (
		version INT PRIMARY KEY,
		name VARCHAR(128) NOT NULL,
		applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	) ENGINE=InnoDB`); err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}

	for _, m := range migrations {
		var exists int
		err := db.QueryRow(`SELECT COUNT(*) FROM schema_migrations WHERE version=?`, m.Version).Scan(&exists)
		if err != nil {
			return fmt.Errorf("check migration %d: %w", m.Version, err)
		}
		if exists > 0 {
			continue
		}
		for _, stmt := range m.Stmts {
			if _, err := db.Exec(stmt); err != nil {
				return fmt.Errorf("migration %d (%s): %w", m.Version, m.Name, err)
			}
		}
		if _, err := db.Exec(`INSERT INTO schema_migrations (version, name) VALUES (?,?)`, m.Version, m.Name); err != nil {
			return fmt.Errorf("record migration %d: %w", m.Version, err)
		}
		log.Printf("[SCHEMA] applied migration %d (%s)", m.Version, m.Name)
	}
	return nil
}
