package certificate

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/sustaina/shipping-risk-brain/internal/riskmodel"
)

const (
	// IDPrefix starts every certificate identifier.
	IDPrefix = "SUS-"
	// idHashLength is the number of hex characters kept from the digest.
	idHashLength = 10
	// DateLayout is used for the validity window in IDs, documents and JSON.
	DateLayout = "2006-01-02"
	// DefaultValidityDays matches the form default.
	DefaultValidityDays = 90
	// FileName is the download name of the rendered document.
	FileName = "Sustaina_Certificate.pdf"
)

// Options carries issuance settings that do not come from the profile.
type Options struct {
	// VerifyBaseURL is either a template containing "{id}" or a base the ID is
	// appended to. Empty disables the verification block.
	VerifyBaseURL string
	// YearPrefix inserts the issue year after the "SUS-" prefix.
	YearPrefix bool
	// Issuer is printed in the header band.
	Issuer string
	// IssuedTo names the session user requesting the document, if any.
	IssuedTo string
}

// Certificate is a presentation artifact built from one evaluation. It owns
// copies of the profile and output and is never persisted as a source of truth.
type Certificate struct {
	ID           string                  `json:"id"`
	Profile      riskmodel.VesselProfile `json:"profile"`
	Output       riskmodel.RiskOutput    `json:"output"`
	IssuedAt     time.Time               `json:"issued_at"`
	ValidFrom    time.Time               `json:"valid_from"`
	ValidUntil   time.Time               `json:"valid_until"`
	ValidityDays int                     `json:"validity_days"`
	VerifyURL    string                  `json:"verify_url,omitempty"`
	Issuer       string                  `json:"issuer,omitempty"`
	IssuedTo     string                  `json:"issued_to,omitempty"`
}

// Issue builds a certificate valid from the calendar date of asOf for
// validityDays days. Same inputs on the same day give the same ID.
func Issue(profile riskmodel.VesselProfile, output riskmodel.RiskOutput, asOf time.Time, validityDays int, opts Options) (Certificate, error) {
	if err := riskmodel.ValidateValidityDays(validityDays); err != nil {
		return Certificate{}, err
	}

	from := startOfDay(asOf)
	until := from.AddDate(0, 0, validityDays)
	id := DeriveID(profile.Organization, profile.IMO, profile.VesselName, from, until, opts.YearPrefix)

	return Certificate{
		ID:           id,
		Profile:      profile,
		Output:       output,
		IssuedAt:     asOf,
		ValidFrom:    from,
		ValidUntil:   until,
		ValidityDays: validityDays,
		VerifyURL:    VerifyURL(opts.VerifyBaseURL, id),
		Issuer:       opts.Issuer,
		IssuedTo:     opts.IssuedTo,
	}, nil
}

// DeriveID hashes organization|IMO|vessel|from|until with SHA-256 and keeps a
// short upper-case prefix. It is a shareable reference, not a unique key.
func DeriveID(organization, imo, vesselName string, from, until time.Time, withYear bool) string {
	payload := strings.Join([]string{
		organization,
		imo,
		vesselName,
		from.Format(DateLayout),
		until.Format(DateLayout),
	}, "|")

	sum := sha256.Sum256([]byte(payload))
	short := strings.ToUpper(hex.EncodeToString(sum[:])[:idHashLength])

	if withYear {
		return fmt.Sprintf("%s%d-%s", IDPrefix, from.Year(), short)
	}
	return IDPrefix + short
}

// VerifyURL resolves the verification link for id.
func VerifyURL(base, id string) string {
	base = strings.TrimSpace(base)
	if base == "" {
		return ""
	}
	if strings.Contains(base, "{id}") {
		return strings.ReplaceAll(base, "{id}", id)
	}
	return strings.TrimRight(base, "/") + "/" + id
}

// HasVerification reports whether the document carries a verification block.
func (c Certificate) HasVerification() bool {
	return c.VerifyURL != ""
}

// ValidityText renders the window as "from to until".
func (c Certificate) ValidityText() string {
	return c.ValidFrom.Format(DateLayout) + " to " + c.ValidUntil.Format(DateLayout)
}

// IsValidAt reports whether t falls inside the validity window, inclusive of
// the final day.
func (c Certificate) IsValidAt(t time.Time) bool {
	day := startOfDay(t.In(c.ValidFrom.Location()))
	return !day.Before(c.ValidFrom) && !day.After(c.ValidUntil)
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
