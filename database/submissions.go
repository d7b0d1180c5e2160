// Package database persists compliance submission records in MySQL. It is
// one implementation of the engine's record-store boundary; the in-memory
// store covers deployments without a database.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"reservations-service/compliance"
)

// Layouts for the MySQL DATE and TIMESTAMP columns. The API-facing Record
// keeps RFC3339; MySQL strict mode rejects the "Z" zone designator, so the
// conversion happens here at the storage boundary.
const (
	mysqlDateLayout     = "2006-01-02"
	mysqlDatetimeLayout = "2006-01-02 15:04:05"
)

// SubmissionService handles all submission-related database operations.
type SubmissionService struct {
	db *sql.DB
}

func NewSubmissionService(db *sql.DB) *SubmissionService {
	return &SubmissionService{db: db}
}

func Connect(user, password, host, port, name string) (*sql.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true", user, password, host, port, name)
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database connection: %w", err)
	}
	db.SetConnMaxLifetime(time.Minute * 3)
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	return db, nil
}

func (s *SubmissionService) Put(ctx context.Context, rec compliance.Record) error {
	submitted, err := time.Parse(time.RFC3339, rec.SubmittedAt)
	if err != nil {
		return fmt.Errorf("submission %s has unparseable timestamp %q: %w", rec.ID, rec.SubmittedAt, err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO compliance_submissions
			(id, property_id, reservation_code, guest_name, check_in, check_out, source, submitted_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			reservation_code = VALUES(reservation_code),
			source = VALUES(source),
			submitted_at = VALUES(submitted_at)`,
		rec.ID, rec.PropertyID, rec.ReservationCode, rec.GuestName,
		rec.CheckIn, rec.CheckOut, rec.Source, submitted.UTC().Format(mysqlDatetimeLayout))
	if err != nil {
		return fmt.Errorf("inserting submission %s: %w", rec.ID, err)
	}
	return nil
}

func (s *SubmissionService) LatestForProperty(ctx context.Context, propertyID string) (*compliance.Record, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, property_id, reservation_code, guest_name, check_in, check_out, source, submitted_at
		FROM compliance_submissions
		WHERE property_id = ?
		ORDER BY submitted_at DESC
		LIMIT 1`, propertyID)

	rec := &compliance.Record{}
	var code sql.NullString
	var checkIn, checkOut, submitted time.Time
	err := row.Scan(&rec.ID, &rec.PropertyID, &code, &rec.GuestName,
		&checkIn, &checkOut, &rec.Source, &submitted)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading latest submission for property %s: %w", propertyID, err)
	}
	rec.ReservationCode = code.String
	rec.CheckIn = checkIn.Format(mysqlDateLayout)
	rec.CheckOut = checkOut.Format(mysqlDateLayout)
	rec.SubmittedAt = submitted.UTC().Format(time.RFC3339)
	return rec, nil
}
