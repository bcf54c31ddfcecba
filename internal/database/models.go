package database

import (
	"time"

	"github.com/google/uuid"

	"github.com/sustaina/shipping-risk-brain/internal/certificate"
)

const (
	stmtInsertIssuance        = "insert_issuance"
	stmtGetIssuances          = "get_issuances_by_certificate"
	stmtRecentIssuances       = "get_recent_issuances"
	stmtInsertSession         = "insert_session"
	stmtDeleteIssuancesBefore = "delete_issuances_before"
	stmtDeleteSessionsBefore  = "delete_sessions_before"
)

// Issuance is one row of the certificate issuance log. The same certificate
// ID may be issued several times; every issuance gets its own row.
type Issuance struct {
	ID             string    `json:"id" db:"id"`
	CertificateID  string    `json:"certificate_id" db:"certificate_id"`
	Organization   string    `json:"organization" db:"organization"`
	VesselName     string    `json:"vessel_name" db:"vessel_name"`
	IMO            string    `json:"imo" db:"imo"`
	ShipType       string    `json:"ship_type" db:"ship_type"`
	FuelType       string    `json:"fuel_type" db:"fuel_type"`
	RiskScore      float64   `json:"risk_score" db:"risk_score"`
	Posture        string    `json:"posture" db:"posture"`
	CarbonCost     float64   `json:"carbon_cost" db:"carbon_cost"`
	ValidFrom      time.Time `json:"valid_from" db:"valid_from"`
	ValidUntil     time.Time `json:"valid_until" db:"valid_until"`
	ValidityDays   int       `json:"validity_days" db:"validity_days"`
	IssuedTo       string    `json:"issued_to,omitempty" db:"issued_to"`
	Issuer         string    `json:"issuer,omitempty" db:"issuer"`
	DocumentSHA256 string    `json:"document_sha256,omitempty" db:"document_sha256"`
	DocumentBytes  int       `json:"document_bytes" db:"document_bytes"`
	IPAddress      string    `json:"-" db:"ip_address"`
	IssuedAt       time.Time `json:"issued_at" db:"issued_at"`
}

// NewIssuance builds a log row for cert with a generated row ID
func NewIssuance(cert certificate.Certificate, documentSHA256 string, documentBytes int, ipAddress string) *Issuance {
	return &Issuance{
		ID:             uuid.New().String(),
		CertificateID:  cert.ID,
		Organization:   cert.Profile.Organization,
		VesselName:     cert.Profile.VesselName,
		IMO:            cert.Profile.IMO,
		ShipType:       string(cert.Profile.ShipType),
		FuelType:       string(cert.Profile.FuelType),
		RiskScore:      cert.Output.RiskScore,
		Posture:        string(cert.Output.Posture),
		CarbonCost:     cert.Output.CarbonCost,
		ValidFrom:      cert.ValidFrom,
		ValidUntil:     cert.ValidUntil,
		ValidityDays:   cert.ValidityDays,
		IssuedTo:       cert.IssuedTo,
		Issuer:         cert.Issuer,
		DocumentSHA256: documentSHA256,
		DocumentBytes:  documentBytes,
		IPAddress:      ipAddress,
		IssuedAt:       cert.IssuedAt,
	}
}

// SessionRecord logs one unchecked login
type SessionRecord struct {
	ID           string    `json:"id" db:"id"`
	Organization string    `json:"organization" db:"organization"`
	UserName     string    `json:"user_name" db:"user_name"`
	IPAddress    string    `json:"-" db:"ip_address"`
	UserAgent    string    `json:"-" db:"user_agent"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	ExpiresAt    time.Time `json:"expires_at" db:"expires_at"`
}

// Verification is the answer to a verify-URL lookup
type Verification struct {
	CertificateID string     `json:"certificate_id"`
	Found         bool       `json:"found"`
	Valid         bool       `json:"valid"`
	Status        string     `json:"status"`
	Latest        *Issuance  `json:"latest,omitempty"`
	IssuanceCount int        `json:"issuance_count"`
	FirstIssuedAt *time.Time `json:"first_issued_at,omitempty"`
	CheckedAt     time.Time  `json:"checked_at"`
}

// Verification statuses
const (
	StatusValid    = "valid"
	StatusExpired  = "expired"
	StatusNotYet   = "not_yet_valid"
	StatusNotFound = "not_found"
)
