package riskmodel

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

// Input ranges the collector must enforce before calling Evaluate.
const (
	MinYearBuilt     = 1970
	MinDWT           = 1000
	MaxDWT           = 400000
	MinOperatingDays = 30
	MaxOperatingDays = 365
	MinValidityDays  = 7
	MaxValidityDays  = 365
)

// ErrInvalidKey is matched by every InvalidKeyError.
var ErrInvalidKey = errors.New("invalid key")

// InvalidKeyError reports an enum value missing from a reference table.
type InvalidKeyError struct {
	Table string
	Key   string
}

func (e *InvalidKeyError) Error() string {
	return fmt.Sprintf("invalid key %q for table %s", e.Key, e.Table)
}

// Is makes errors.Is(err, ErrInvalidKey) hold.
func (e *InvalidKeyError) Is(target error) bool {
	return target == ErrInvalidKey
}

// ValidationError collects per-field problems found by Validate.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "invalid vessel profile: " + strings.Join(parts, "; ")
}

// Validate checks the collector contract: enum values known to the default
// tables and numeric fields inside their declared ranges.
func (p VesselProfile) Validate(asOf time.Time) error {
	fields := make(map[string]string)

	if strings.TrimSpace(p.Organization) == "" {
		fields["organization"] = "is required"
	}
	if strings.TrimSpace(p.VesselName) == "" {
		fields["vessel_name"] = "is required"
	}
	if strings.TrimSpace(p.IMO) == "" {
		fields["imo"] = "is required"
	}

	if !containsKey(ShipTypes, p.ShipType) {
		fields["ship_type"] = fmt.Sprintf("unknown value %q", p.ShipType)
	}
	if !containsKey(EngineTypes, p.EngineType) {
		fields["engine_type"] = fmt.Sprintf("unknown value %q", p.EngineType)
	}
	if !containsKey(FuelTypes, p.FuelType) {
		fields["fuel_type"] = fmt.Sprintf("unknown value %q", p.FuelType)
	}
	if !containsKey(SpeedProfiles, p.SpeedProfile) {
		fields["speed_profile"] = fmt.Sprintf("unknown value %q", p.SpeedProfile)
	}
	if !containsKey(EUExposures, p.EUExposure) {
		fields["eu_exposure"] = fmt.Sprintf("unknown value %q", p.EUExposure)
	}
	if !containsKey(RetrofitStatuses, p.RetrofitStatus) {
		fields["retrofit_status"] = fmt.Sprintf("unknown value %q", p.RetrofitStatus)
	}

	if p.YearBuilt < MinYearBuilt || p.YearBuilt > asOf.Year() {
		fields["year_built"] = fmt.Sprintf("must be between %d and %d", MinYearBuilt, asOf.Year())
	}
	if p.DWT < MinDWT || p.DWT > MaxDWT {
		fields["dwt"] = fmt.Sprintf("must be between %d and %d", MinDWT, MaxDWT)
	}
	if p.OperatingDays < MinOperatingDays || p.OperatingDays > MaxOperatingDays {
		fields["operating_days"] = fmt.Sprintf("must be between %d and %d", MinOperatingDays, MaxOperatingDays)
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// ValidateValidityDays checks the certificate validity period.
func ValidateValidityDays(days int) error {
	if days < MinValidityDays || days > MaxValidityDays {
		return &ValidationError{Fields: map[string]string{
			"validity_days": fmt.Sprintf("must be between %d and %d", MinValidityDays, MaxValidityDays),
		}}
	}
	return nil
}

func containsKey[K ~string](options []Option[K], key K) bool {
	for _, o := range options {
		if o.Key == key {
			return true
		}
	}
	return false
}
