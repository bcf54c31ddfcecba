package riskmodel

import "time"

// Posture thresholds; each bucket includes its lower bound.
const (
	severeThreshold   = 75.0
	highThreshold     = 55.0
	moderateThreshold = 35.0
)

// Model evaluates vessel profiles against a fixed set of reference tables.
// It holds no mutable state and is safe for concurrent use.
type Model struct {
	tables Tables
}

// New creates a model over a copy of the given tables.
func New(tables Tables) *Model {
	return &Model{tables: tables.Clone()}
}

var defaultModel = New(DefaultTables())

// Evaluate scores a profile with the default tables.
func Evaluate(profile VesselProfile, asOf time.Time) (RiskOutput, error) {
	return defaultModel.Evaluate(profile, asOf)
}

// Evaluate maps a profile to its risk output. asOf supplies the current date
// used for asset age; the clock is never read. Numeric fields are used as
// given: range checks belong to VesselProfile.Validate. Only the derived
// signals and the composite score are clamped.
func (m *Model) Evaluate(profile VesselProfile, asOf time.Time) (RiskOutput, error) {
	t := m.tables

	shipMult, err := lookup("ship_type_multiplier", t.ShipTypeMultiplier, profile.ShipType)
	if err != nil {
		return RiskOutput{}, err
	}
	speedMult, err := lookup("speed_multiplier", t.SpeedMultiplier, profile.SpeedProfile)
	if err != nil {
		return RiskOutput{}, err
	}
	emissionFactor, err := lookup("fuel_emission_factor", t.FuelEmissionFactor, profile.FuelType)
	if err != nil {
		return RiskOutput{}, err
	}
	engineFactor, err := lookup("engine_risk_factor", t.EngineRiskFactor, profile.EngineType)
	if err != nil {
		return RiskOutput{}, err
	}
	retrofitRisk, err := lookup("retrofit_risk", t.RetrofitRisk, profile.RetrofitStatus)
	if err != nil {
		return RiskOutput{}, err
	}
	euRisk, err := lookup("eu_exposure_risk", t.EUExposureRisk, profile.EUExposure)
	if err != nil {
		return RiskOutput{}, err
	}
	fuelPathwayRisk, err := lookup("fuel_pathway_risk", t.FuelPathwayRisk, profile.FuelType)
	if err != nil {
		return RiskOutput{}, err
	}
	carbonPrice, err := lookup("carbon_price_proxy", t.CarbonPriceProxy, profile.EUExposure)
	if err != nil {
		return RiskOutput{}, err
	}
	coverage, err := lookup("eu_coverage_multiplier", t.EUCoverageMultiplier, profile.EUExposure)
	if err != nil {
		return RiskOutput{}, err
	}

	// fuel and emissions
	dailyFuel := (float64(profile.DWT) / 10000) * baseDailyFuelPer10kDWT * shipMult * speedMult
	annualFuel := dailyFuel * float64(profile.OperatingDays)
	// kg CO2 per kg fuel applied to tonnes of fuel yields tonnes of CO2
	annualCO2 := annualFuel * emissionFactor

	// normalized signals
	age := asOf.Year() - profile.YearBuilt
	ageRisk := clip((float64(age)-ageRiskFloorYears)/ageRiskSpanYears, 0, 1)
	engineRisk := clip((engineFactor-engineRiskOffset)/engineRiskSpan, 0, 1)
	signals := Signals{
		EUExposure:  clip(euRisk, 0, 1),
		AssetAge:    ageRisk,
		Retrofit:    clip(retrofitRisk, 0, 1),
		FuelPathway: clip(fuelPathwayRisk, 0, 1),
		Engine:      engineRisk,
	}

	score := clip(100*(weightEUExposure*signals.EUExposure+
		weightAssetAge*signals.AssetAge+
		weightRetrofit*signals.Retrofit+
		weightFuelPathway*signals.FuelPathway+
		weightEngine*signals.Engine), 0, 100)

	carbonCost := annualCO2 * carbonPrice * coverage

	return RiskOutput{
		Signals:          signals,
		RiskScore:        score,
		Posture:          PostureFor(score),
		DailyFuelTonnes:  dailyFuel,
		AnnualFuelTonnes: annualFuel,
		AnnualCO2Tonnes:  annualCO2,
		CarbonCost:       carbonCost,
		CarbonCostBand:   bandAround(carbonCost, carbonBandFraction),
		Levers:           matchLevers(profile, age),
		AssetAgeYears:    age,
		AsOf:             asOf,
	}, nil
}

// PostureFor buckets a score. Boundaries belong to the higher bucket.
func PostureFor(score float64) Posture {
	switch {
	case score >= severeThreshold:
		return PostureSevere
	case score >= highThreshold:
		return PostureHigh
	case score >= moderateThreshold:
		return PostureModerate
	default:
		return PostureLower
	}
}

func bandAround(v, fraction float64) Band {
	return Band{Low: v * (1 - fraction), High: v * (1 + fraction)}
}

func clip(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
