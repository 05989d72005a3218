package database

import (
	"database/sql"
	"fmt"
	"log"
)

// RunMigrations applies the schema statements in order. Every statement is
// idempotent (IF NOT EXISTS) so the function is safe to run on each startup.
func RunMigrations(db *sql.DB) error {
	migrations := []string{
		createMemberTable,
		createThemeTable,
		createTimeSlotTable,
		createReservationTable,
		createRefreshTokenTable,
	}

	for i, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	log.Printf("database migrations applied (%d statements)", len(migrations))
	return nil
}

const createMemberTable = `
CREATE TABLE IF NOT EXISTS member (
    id            BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
    email         VARCHAR(255) NOT NULL,
    password_hash VARCHAR(100) NOT NULL,
    name          VARCHAR(100) NOT NULL,
    role          VARCHAR(10)  NOT NULL DEFAULT 'USER',
    created_at    TIMESTAMP    NOT NULL DEFAULT CURRENT_TIMESTAMP,
    UNIQUE KEY uq_member_email (email)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;`

const createThemeTable = `
CREATE TABLE IF NOT EXISTS theme (
    id          BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
    name        VARCHAR(100) NOT NULL,
    description VARCHAR(255) NOT NULL,
    thumbnail   VARCHAR(255) NOT NULL,
    UNIQUE KEY uq_theme_name (name)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;`

const createTimeSlotTable = `
CREATE TABLE IF NOT EXISTS time_slot (
    id       BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
    start_at TIME NOT NULL,
    UNIQUE KEY uq_time_slot_start (start_at)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;`

// holder_key is non-NULL only for RESERVED rows, so the unique index admits
// exactly one RESERVED reservation per (date, time_slot, theme) triple while
// allowing any number of WAITING rows. A concurrent booking that loses the
// race fails with a duplicate-key error and is retried as WAITING.
const createReservationTable = `
CREATE TABLE IF NOT EXISTS reservation (
    id           BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
    ` + "`date`" + `       DATE NOT NULL,
    time_slot_id BIGINT UNSIGNED NOT NULL,
    theme_id     BIGINT UNSIGNED NOT NULL,
    member_id    BIGINT UNSIGNED NOT NULL,
    status       VARCHAR(10) NOT NULL,
    created_at   TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    holder_key   VARCHAR(80) GENERATED ALWAYS AS (
        IF(status = 'RESERVED', CONCAT(` + "`date`" + `, '#', time_slot_id, '#', theme_id), NULL)
    ) STORED,
    UNIQUE KEY uq_reservation_holder (holder_key),
    KEY idx_reservation_slot (` + "`date`" + `, time_slot_id, theme_id),
    KEY idx_reservation_member (member_id),
    CONSTRAINT fk_reservation_time_slot FOREIGN KEY (time_slot_id) REFERENCES time_slot (id),
    CONSTRAINT fk_reservation_theme     FOREIGN KEY (theme_id)     REFERENCES theme (id),
    CONSTRAINT fk_reservation_member    FOREIGN KEY (member_id)    REFERENCES member (id)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;`

const createRefreshTokenTable = `
CREATE TABLE IF NOT EXISTS refresh_token (
    id         BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
    member_id  BIGINT UNSIGNED NOT NULL,
    token_hash CHAR(64)  NOT NULL,
    expires_at TIMESTAMP NOT NULL,
    revoked_at TIMESTAMP NULL DEFAULT NULL,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    KEY idx_refresh_token_hash (token_hash),
    CONSTRAINT fk_refresh_token_member FOREIGN KEY (member_id) REFERENCES member (id)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;`
