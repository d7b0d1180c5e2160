package database

import (
	"database/sql"
	"fmt"

	"github.com/apex/log"
)

// InitSchema creates the submission audit table if it doesn't exist.
func InitSchema(db *sql.DB) error {
	log.Info("Initializing reservations-service database schema...")

	submissionsTableSQL := `
	CREATE TABLE IF NOT EXISTS compliance_submissions(
		id VARCHAR(64) NOT NULL,
		property_id VARCHAR(64) NOT NULL,
		reservation_code VARCHAR(64),
		guest_name VARCHAR(255) NOT NULL,
		check_in DATE NOT NULL,
		check_out DATE NOT NULL,
		source ENUM('primary', 'local') NOT NULL DEFAULT 'local',
		submitted_at TIMESTAMP,
		PRIMARY KEY (id),
		INDEX property_id_index (property_id),
		INDEX submitted_at_index (submitted_at)
	)`

	if _, err := db.Exec(submissionsTableSQL); err != nil {
		return fmt.Errorf("failed to create compliance_submissions table: %w", err)
	}
	log.Info("Compliance_submissions table created/verified")

	return nil
}
