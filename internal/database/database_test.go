package database

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sustaina/shipping-risk-brain/internal/certificate"
	"github.com/sustaina/shipping-risk-brain/internal/riskmodel"
)

func newTestService(t *testing.T) (*IssuanceService, *Repository, *DB) {
	t.Helper()

	db, err := NewDB(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	repo := NewRepository(db)
	return NewIssuanceService(repo), repo, db
}

func issueTestCertificate(t *testing.T, asOf time.Time, days int) certificate.Certificate {
	t.Helper()

	profile := riskmodel.DefaultProfile()
	output, err := riskmodel.Evaluate(profile, asOf)
	require.NoError(t, err)

	cert, err := certificate.Issue(profile, output, asOf, days, certificate.Options{IssuedTo: "analyst"})
	require.NoError(t, err)
	return cert
}

func TestNewDBCreatesFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")

	db, err := NewDB(dir)
	require.NoError(t, err)
	defer db.Close()

	assert.FileExists(t, filepath.Join(dir, FileName))

	stats := db.GetPoolStats()
	assert.Equal(t, 4, stats["max_open_connections"])

	_, err = db.GetPreparedStatement(stmtInsertIssuance)
	assert.NoError(t, err)
	_, err = db.GetPreparedStatement("missing")
	assert.Error(t, err)
}

func TestRecordAndVerifyIssuance(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()

	asOf := time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)
	cert := issueTestCertificate(t, asOf, 90)

	iss, err := svc.RecordIssuance(ctx, cert, []byte("%PDF-1.3 test"), "10.0.0.1")
	require.NoError(t, err)
	assert.Len(t, iss.DocumentSHA256, 64)
	assert.Equal(t, 13, iss.DocumentBytes)

	// a second issuance of the same certificate on the same day
	_, err = svc.RecordIssuance(ctx, cert, nil, "10.0.0.2")
	require.NoError(t, err)

	stored, err := repo.GetIssuances(ctx, cert.ID)
	require.NoError(t, err)
	require.Len(t, stored, 2)
	assert.Equal(t, cert.Profile.VesselName, stored[0].VesselName)
	assert.Equal(t, "2024-03-15", stored[0].ValidFrom.Format(certificate.DateLayout))
	assert.Equal(t, "2024-06-13", stored[0].ValidUntil.Format(certificate.DateLayout))
	assert.Equal(t, "analyst", stored[0].IssuedTo)
	assert.InDelta(t, cert.Output.RiskScore, stored[0].RiskScore, 1e-9)

	tests := []struct {
		name   string
		now    time.Time
		status string
		valid  bool
	}{
		{name: "first day", now: asOf, status: StatusValid, valid: true},
		{name: "last day", now: time.Date(2024, 6, 13, 23, 0, 0, 0, time.UTC), status: StatusValid, valid: true},
		{name: "after window", now: time.Date(2024, 6, 14, 0, 0, 1, 0, time.UTC), status: StatusExpired, valid: false},
		{name: "before window", now: time.Date(2024, 3, 14, 12, 0, 0, 0, time.UTC), status: StatusNotYet, valid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc.now = func() time.Time { return tt.now }

			v, err := svc.Verify(ctx, cert.ID)
			require.NoError(t, err)
			assert.True(t, v.Found)
			assert.Equal(t, tt.status, v.Status)
			assert.Equal(t, tt.valid, v.Valid)
			assert.Equal(t, 2, v.IssuanceCount)
			require.NotNil(t, v.Latest)
			assert.Equal(t, cert.ID, v.Latest.CertificateID)
		})
	}
}

func TestVerifyUnknownCertificate(t *testing.T) {
	svc, _, _ := newTestService(t)

	v, err := svc.Verify(context.Background(), "SUS-0000000000")
	require.NoError(t, err)
	assert.False(t, v.Found)
	assert.False(t, v.Valid)
	assert.Equal(t, StatusNotFound, v.Status)
	assert.Nil(t, v.Latest)
}

func TestRecentIssuances(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		cert := issueTestCertificate(t, time.Date(2024, 1, 1+i, 9, 0, 0, 0, time.UTC), 30)
		_, err := svc.RecordIssuance(ctx, cert, nil, "")
		require.NoError(t, err)
	}

	recent, err := svc.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.True(t, recent[0].IssuedAt.After(recent[1].IssuedAt))
}

func TestSessionsAndCleanup(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()

	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	id, err := svc.RecordSession(ctx, "Demo Shipping Ltd", "analyst", "127.0.0.1", "test-agent", now.Add(time.Hour))
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	_, err = svc.RecordSession(ctx, "Demo Shipping Ltd", "old", "127.0.0.1", "test-agent", now.Add(-48*time.Hour))
	require.NoError(t, err)

	expired := issueTestCertificate(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), 7)
	_, err = svc.RecordIssuance(ctx, expired, nil, "")
	require.NoError(t, err)
	current := issueTestCertificate(t, now, 90)
	_, err = svc.RecordIssuance(ctx, current, nil, "")
	require.NoError(t, err)

	issuances, sessions, err := repo.DeleteExpired(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), issuances)
	assert.Equal(t, int64(1), sessions)

	count, err := repo.CountSessions(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	left, err := repo.GetIssuances(ctx, current.ID)
	require.NoError(t, err)
	assert.Len(t, left, 1)
}
