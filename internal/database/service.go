package database

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/sustaina/shipping-risk-brain/internal/certificate"
)

// IssuanceService records issued certificates and answers verification
// lookups. The log is informational: certificate IDs stay derivable without it.
type IssuanceService struct {
	repo *Repository
	now  func() time.Time
}

// NewIssuanceService creates a new issuance service
func NewIssuanceService(repo *Repository) *IssuanceService {
	return &IssuanceService{repo: repo, now: time.Now}
}

// RecordIssuance logs cert together with a digest of the rendered document
func (s *IssuanceService) RecordIssuance(ctx context.Context, cert certificate.Certificate, document []byte, ipAddress string) (*Issuance, error) {
	digest := ""
	if len(document) > 0 {
		sum := sha256.Sum256(document)
		digest = hex.EncodeToString(sum[:])
	}

	iss := NewIssuance(cert, digest, len(document), ipAddress)
	if err := s.repo.SaveIssuance(ctx, iss); err != nil {
		return nil, err
	}

	slog.Debug("Certificate issuance recorded", "certificate_id", cert.ID, "row_id", iss.ID)
	return iss, nil
}

// Verify looks up certificateID. Unknown IDs are reported with Found=false
// rather than an error.
func (s *IssuanceService) Verify(ctx context.Context, certificateID string) (*Verification, error) {
	now := s.now()

	issuances, err := s.repo.GetIssuances(ctx, certificateID)
	if err != nil {
		return nil, fmt.Errorf("failed to verify certificate %s: %w", certificateID, err)
	}

	v := &Verification{
		CertificateID: certificateID,
		Status:        StatusNotFound,
		IssuanceCount: len(issuances),
		CheckedAt:     now,
	}
	if len(issuances) == 0 {
		return v, nil
	}

	first := issuances[0].IssuedAt
	latest := issuances[len(issuances)-1]

	v.Found = true
	v.Latest = &latest
	v.FirstIssuedAt = &first
	v.Status = windowStatus(latest.ValidFrom, latest.ValidUntil, now)
	v.Valid = v.Status == StatusValid

	return v, nil
}

// windowStatus compares calendar dates so the final day stays valid
func windowStatus(from, until, now time.Time) string {
	today := now.Format(certificate.DateLayout)
	switch {
	case today < from.Format(certificate.DateLayout):
		return StatusNotYet
	case today > until.Format(certificate.DateLayout):
		return StatusExpired
	default:
		return StatusValid
	}
}

// Recent returns the latest issuances, newest first
func (s *IssuanceService) Recent(ctx context.Context, limit int) ([]Issuance, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.repo.RecentIssuances(ctx, limit)
}

// RecordSession logs an unchecked login and returns its row ID
func (s *IssuanceService) RecordSession(ctx context.Context, organization, user, ipAddress, userAgent string, expiresAt time.Time) (string, error) {
	record := &SessionRecord{
		ID:           uuid.New().String(),
		Organization: organization,
		UserName:     user,
		IPAddress:    ipAddress,
		UserAgent:    userAgent,
		CreatedAt:    s.now(),
		ExpiresAt:    expiresAt,
	}
	if err := s.repo.SaveSession(ctx, record); err != nil {
		return "", err
	}
	return record.ID, nil
}

// ScheduleCleanup purges rows older than retention once per interval until
// ctx is cancelled.
func (s *IssuanceService) ScheduleCleanup(ctx context.Context, interval, retention time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			issuances, sessions, err := s.repo.DeleteExpired(ctx, s.now().Add(-retention))
			if err != nil {
				slog.Error("Failed to purge expired records", "error", err)
				continue
			}
			if issuances > 0 || sessions > 0 {
				slog.Info("Purged expired records", "issuances", issuances, "sessions", sessions)
			}
		case <-ctx.Done():
			return
		}
	}
}
