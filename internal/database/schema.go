package database

import (
	"context"
	"database/sql"
)

// EnsureSchema creates the facility tables when they do not exist.
// It is idempotent and safe to run on every startup.
//
// The one structural subtlety lives in parking_records: MySQL has no
// partial unique indexes, so an open record is flagged by the stored
// generated column open_marker (1 while exit_time is NULL, NULL once
// closed).  Because NULLs never collide inside a unique key,
// uq_open_slot admits any number of closed records per slot but at
// most one open one.  Every occupancy guarantee in the service layer
// rests on this key.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS floors (
			id           BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
			floor_number INT             NOT NULL,
			description  VARCHAR(255)    NOT NULL DEFAULT '',
			created_at   DATETIME        NOT NULL DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (id),
			UNIQUE KEY uq_floor_number (floor_number)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

		`CREATE TABLE IF NOT EXISTS parking_slots (
			id           BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
			floor_number INT             NOT NULL,
			slot_number  INT             NOT NULL,
			vehicle_type VARCHAR(32)     NOT NULL,
			is_occupied  BOOLEAN         NOT NULL DEFAULT FALSE,
			parked_plate VARCHAR(32)     NULL,
			created_at   DATETIME        NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at   DATETIME        NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
			PRIMARY KEY (id),
			UNIQUE KEY uq_floor_slot (floor_number, slot_number)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

		`CREATE TABLE IF NOT EXISTS parking_records (
			id               BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
			license_plate    VARCHAR(32)     NOT NULL,
			vehicle_type     VARCHAR(32)     NOT NULL,
			slot_number      INT             NOT NULL,
			floor_number     INT             NOT NULL,
			entry_time       DATETIME        NOT NULL,
			exit_time        DATETIME        NULL,
			duration_minutes BIGINT          NOT NULL DEFAULT 0,
			billable_hours   INT             NOT NULL DEFAULT 0,
			charge           DECIMAL(10,2)   NOT NULL DEFAULT 0,
			open_marker      TINYINT AS (IF(exit_time IS NULL, 1, NULL)) STORED,
			PRIMARY KEY (id),
			UNIQUE KEY uq_open_slot (floor_number, slot_number, open_marker),
			KEY idx_records_plate (license_plate),
			KEY idx_records_exit (exit_time),
			KEY idx_records_entry (entry_time)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

		`CREATE TABLE IF NOT EXISTS parking_charges (
			id           BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
			vehicle_type VARCHAR(32)     NOT NULL,
			hourly_rate  DECIMAL(10,2)   NOT NULL,
			active       BOOLEAN         NOT NULL DEFAULT TRUE,
			PRIMARY KEY (id),
			UNIQUE KEY uq_charge_type (vehicle_type)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

		`CREATE TABLE IF NOT EXISTS audit_logs (
			id             BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
			admin_username VARCHAR(64)     NOT NULL,
			action         VARCHAR(64)     NOT NULL,
			description    VARCHAR(512)    NOT NULL,
			details        TEXT            NULL,
			timestamp      DATETIME        NOT NULL DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (id),
			KEY idx_audit_admin (admin_username),
			KEY idx_audit_ts (timestamp)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

		`CREATE TABLE IF NOT EXISTS admins (
			id            BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
			username      VARCHAR(64)     NOT NULL,
			password_hash VARCHAR(255)    NOT NULL,
			email         VARCHAR(255)    NOT NULL DEFAULT '',
			role          VARCHAR(32)     NOT NULL,
			active        BOOLEAN         NOT NULL DEFAULT TRUE,
			created_at    DATETIME        NOT NULL DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (id),
			UNIQUE KEY uq_admin_username (username)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
