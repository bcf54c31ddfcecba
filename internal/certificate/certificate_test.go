package certificate

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sustaina/shipping-risk-brain/internal/riskmodel"
)

var issueDay = time.Date(2024, time.March, 15, 14, 30, 0, 0, time.UTC)

func issued(t *testing.T, days int, opts Options) Certificate {
	t.Helper()
	profile := riskmodel.DefaultProfile()
	out, err := riskmodel.Evaluate(profile, issueDay)
	require.NoError(t, err)

	cert, err := Issue(profile, out, issueDay, days, opts)
	require.NoError(t, err)
	return cert
}

func TestDeriveID_MatchesDigest(t *testing.T) {
	from := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	until := from.AddDate(0, 0, 90)

	sum := sha256.Sum256([]byte("Demo Shipping Ltd|IMO1234567|MV Example|2024-03-15|2024-06-13"))
	want := "SUS-" + strings.ToUpper(hex.EncodeToString(sum[:])[:10])

	assert.Equal(t, want, DeriveID("Demo Shipping Ltd", "IMO1234567", "MV Example", from, until, false))
	assert.Equal(t, "SUS-2024-"+want[len("SUS-"):], DeriveID("Demo Shipping Ltd", "IMO1234567", "MV Example", from, until, true))
}

func TestDeriveID_Deterministic(t *testing.T) {
	from := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	until := from.AddDate(0, 0, 30)

	base := DeriveID("Org", "IMO1", "Vessel", from, until, false)
	assert.Equal(t, base, DeriveID("Org", "IMO1", "Vessel", from, until, false))
	assert.Len(t, base, len(IDPrefix)+10)
	assert.Equal(t, strings.ToUpper(base), base)

	variants := map[string]string{
		"organization": DeriveID("Org2", "IMO1", "Vessel", from, until, false),
		"imo":          DeriveID("Org", "IMO2", "Vessel", from, until, false),
		"vessel":       DeriveID("Org", "IMO1", "Vessel 2", from, until, false),
		"from":         DeriveID("Org", "IMO1", "Vessel", from.AddDate(0, 0, 1), until, false),
		"until":        DeriveID("Org", "IMO1", "Vessel", from, until.AddDate(0, 0, 1), false),
	}
	for field, id := range variants {
		assert.NotEqual(t, base, id, "changing %s must change the id", field)
	}
}

func TestIssue_ValidityWindow(t *testing.T) {
	cert := issued(t, 90, Options{})

	assert.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), cert.ValidFrom)
	assert.Equal(t, time.Date(2024, 6, 13, 0, 0, 0, 0, time.UTC), cert.ValidUntil)
	assert.Equal(t, "2024-03-15 to 2024-06-13", cert.ValidityText())
	assert.Equal(t, issueDay, cert.IssuedAt)
	assert.Equal(t, 90, cert.ValidityDays)

	assert.True(t, cert.IsValidAt(issueDay))
	assert.True(t, cert.IsValidAt(time.Date(2024, 6, 13, 23, 0, 0, 0, time.UTC)))
	assert.False(t, cert.IsValidAt(time.Date(2024, 6, 14, 0, 0, 0, 0, time.UTC)))
	assert.False(t, cert.IsValidAt(time.Date(2024, 3, 14, 12, 0, 0, 0, time.UTC)))
}

func TestIssue_SameDaySameID(t *testing.T) {
	morning := issued(t, 30, Options{})

	profile := riskmodel.DefaultProfile()
	later := issueDay.Add(5 * time.Hour)
	out, err := riskmodel.Evaluate(profile, later)
	require.NoError(t, err)
	evening, err := Issue(profile, out, later, 30, Options{})
	require.NoError(t, err)

	assert.Equal(t, morning.ID, evening.ID)
}

func TestIssue_RejectsValidity(t *testing.T) {
	profile := riskmodel.DefaultProfile()
	out, err := riskmodel.Evaluate(profile, issueDay)
	require.NoError(t, err)

	for _, days := range []int{0, 6, 366} {
		_, err := Issue(profile, out, issueDay, days, Options{})
		var vErr *riskmodel.ValidationError
		assert.ErrorAs(t, err, &vErr, "days=%d", days)
	}
}

func TestVerifyURL(t *testing.T) {
	tests := []struct {
		name string
		base string
		want string
	}{
		{"empty disables verification", "", ""},
		{"whitespace disables verification", "  ", ""},
		{"template placeholder", "https://verify.example.com/c/{id}?src=qr", "https://verify.example.com/c/SUS-ABC?src=qr"},
		{"appended to base", "https://verify.example.com/verify", "https://verify.example.com/verify/SUS-ABC"},
		{"trailing slash", "https://verify.example.com/verify/", "https://verify.example.com/verify/SUS-ABC"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, VerifyURL(tt.base, "SUS-ABC"))
		})
	}
}

func TestIssue_Options(t *testing.T) {
	cert := issued(t, 90, Options{
		VerifyBaseURL: "https://sustaina.example/verify",
		YearPrefix:    true,
		Issuer:        "Sustaina",
		IssuedTo:      "analyst@bank.example",
	})

	assert.True(t, strings.HasPrefix(cert.ID, "SUS-2024-"))
	assert.Equal(t, "https://sustaina.example/verify/"+cert.ID, cert.VerifyURL)
	assert.True(t, cert.HasVerification())
	assert.Equal(t, "Sustaina", cert.Issuer)
	assert.Equal(t, "analyst@bank.example", cert.IssuedTo)

	plain := issued(t, 90, Options{})
	assert.False(t, plain.HasVerification())
}
