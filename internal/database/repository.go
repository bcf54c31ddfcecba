package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/sustaina/shipping-risk-brain/internal/certificate"
)

// Repository handles database operations
type Repository struct {
	db *DB
}

// NewRepository creates a new repository
func NewRepository(db *DB) *Repository {
	return &Repository{db: db}
}

// SaveIssuance appends one row to the issuance log
func (r *Repository) SaveIssuance(ctx context.Context, iss *Issuance) error {
	stmt, err := r.db.GetPreparedStatement(stmtInsertIssuance)
	if err != nil {
		return err
	}

	_, err = stmt.ExecContext(ctx,
		iss.ID, iss.CertificateID, iss.Organization, iss.VesselName, iss.IMO, iss.ShipType, iss.FuelType,
		iss.RiskScore, iss.Posture, iss.CarbonCost,
		iss.ValidFrom.Format(certificate.DateLayout), iss.ValidUntil.Format(certificate.DateLayout), iss.ValidityDays,
		iss.IssuedTo, iss.Issuer, iss.DocumentSHA256, iss.DocumentBytes, iss.IPAddress, iss.IssuedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to save issuance: %w", err)
	}

	return nil
}

// GetIssuances returns every issuance of certificateID, oldest first
func (r *Repository) GetIssuances(ctx context.Context, certificateID string) ([]Issuance, error) {
	stmt, err := r.db.GetPreparedStatement(stmtGetIssuances)
	if err != nil {
		return nil, err
	}

	rows, err := stmt.QueryContext(ctx, certificateID)
	if err != nil {
		return nil, fmt.Errorf("failed to query issuances: %w", err)
	}
	return scanIssuances(rows)
}

// RecentIssuances returns the latest issuances across all certificates
func (r *Repository) RecentIssuances(ctx context.Context, limit int) ([]Issuance, error) {
	stmt, err := r.db.GetPreparedStatement(stmtRecentIssuances)
	if err != nil {
		return nil, err
	}

	rows, err := stmt.QueryContext(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent issuances: %w", err)
	}
	return scanIssuances(rows)
}

func scanIssuances(rows *sql.Rows) ([]Issuance, error) {
	defer rows.Close()

	issuances := make([]Issuance, 0)
	for rows.Next() {
		var iss Issuance
		if err := rows.Scan(
			&iss.ID, &iss.CertificateID, &iss.Organization, &iss.VesselName, &iss.IMO, &iss.ShipType, &iss.FuelType,
			&iss.RiskScore, &iss.Posture, &iss.CarbonCost, &iss.ValidFrom, &iss.ValidUntil, &iss.ValidityDays,
			&iss.IssuedTo, &iss.Issuer, &iss.DocumentSHA256, &iss.DocumentBytes, &iss.IssuedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan issuance: %w", err)
		}
		issuances = append(issuances, iss)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate issuances: %w", err)
	}
	return issuances, nil
}

// SaveSession records a login
func (r *Repository) SaveSession(ctx context.Context, s *SessionRecord) error {
	stmt, err := r.db.GetPreparedStatement(stmtInsertSession)
	if err != nil {
		return err
	}

	_, err = stmt.ExecContext(ctx, s.ID, s.Organization, s.UserName, s.IPAddress, s.UserAgent, s.CreatedAt.UTC(), s.ExpiresAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	return nil
}

// CountSessions returns the number of logged sessions
func (r *Repository) CountSessions(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sessions`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count sessions: %w", err)
	}
	return n, nil
}

// DeleteExpired removes issuances whose validity ended before the calendar
// day of cutoff and sessions that expired before cutoff. It returns the
// number of rows removed per table.
func (r *Repository) DeleteExpired(ctx context.Context, cutoff time.Time) (issuances, sessions int64, err error) {
	issuanceStmt, err := r.db.GetPreparedStatement(stmtDeleteIssuancesBefore)
	if err != nil {
		return 0, 0, err
	}
	sessionStmt, err := r.db.GetPreparedStatement(stmtDeleteSessionsBefore)
	if err != nil {
		return 0, 0, err
	}

	res, err := issuanceStmt.ExecContext(ctx, cutoff.Format(certificate.DateLayout))
	if err != nil {
		return 0, 0, fmt.Errorf("failed to delete expired issuances: %w", err)
	}
	issuances, _ = res.RowsAffected()

	res, err = sessionStmt.ExecContext(ctx, cutoff.UTC())
	if err != nil {
		return issuances, 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}
	sessions, _ = res.RowsAffected()

	return issuances, sessions, nil
}
