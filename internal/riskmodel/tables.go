package riskmodel

import "maps"

// Tables holds the modeled reference constants. A Model never mutates the
// Tables it was built from.
type Tables struct {
	FuelEmissionFactor   map[FuelType]float64       `json:"fuel_emission_factor"` // kg CO2 per kg fuel, tank-to-wake
	ShipTypeMultiplier   map[ShipType]float64       `json:"ship_type_multiplier"`
	EngineRiskFactor     map[EngineType]float64     `json:"engine_risk_factor"`
	FuelPathwayRisk      map[FuelType]float64       `json:"fuel_pathway_risk"`
	SpeedMultiplier      map[SpeedProfile]float64   `json:"speed_multiplier"`
	RetrofitRisk         map[RetrofitStatus]float64 `json:"retrofit_risk"`
	EUExposureRisk       map[EUExposure]float64     `json:"eu_exposure_risk"`
	CarbonPriceProxy     map[EUExposure]float64     `json:"carbon_price_proxy"` // currency per tonne CO2
	EUCoverageMultiplier map[EUExposure]float64     `json:"eu_coverage_multiplier"`
}

// Scoring weights; they sum to 1.
const (
	weightEUExposure  = 0.30
	weightAssetAge    = 0.25
	weightRetrofit    = 0.20
	weightFuelPathway = 0.15
	weightEngine      = 0.10
)

const (
	baseDailyFuelPer10kDWT = 1.2
	ageRiskFloorYears      = 5.0
	ageRiskSpanYears       = 25.0
	engineRiskOffset       = 0.9
	engineRiskSpan         = 0.3
	carbonBandFraction     = 0.15
)

// DefaultTables returns a fresh copy of the modeled reference tables.
func DefaultTables() Tables {
	return Tables{
		FuelEmissionFactor: map[FuelType]float64{
			FuelHFO:      3.114,
			FuelMGOMDO:   3.206,
			FuelLNG:      2.750,
			FuelMethanol: 1.375,
			FuelAmmonia:  0.000,
		},
		ShipTypeMultiplier: map[ShipType]float64{
			ShipContainer:    1.15,
			ShipBulkCarrier:  1.00,
			ShipTanker:       1.05,
			ShipRoRo:         1.10,
			ShipGeneralCargo: 0.95,
			ShipOther:        1.00,
		},
		EngineRiskFactor: map[EngineType]float64{
			EngineTwoStrokeLowSpeed:     1.00,
			EngineFourStrokeMediumSpeed: 1.05,
			EngineDualFuel:              0.95,
			EngineUnknown:               1.10,
		},
		FuelPathwayRisk: map[FuelType]float64{
			FuelHFO:      1.0,
			FuelMGOMDO:   0.9,
			FuelLNG:      0.75, // methane slip is surfaced as a lever
			FuelMethanol: 0.45,
			FuelAmmonia:  0.35,
		},
		SpeedMultiplier: map[SpeedProfile]float64{
			SpeedSlow:   0.80,
			SpeedNormal: 1.00,
			SpeedFast:   1.18,
		},
		RetrofitRisk: map[RetrofitStatus]float64{
			RetrofitNone:      1.0,
			RetrofitPlanned:   0.6,
			RetrofitInstalled: 0.3,
		},
		EUExposureRisk: map[EUExposure]float64{
			EUNone:    0.2,
			EUPartial: 0.6,
			EUHigh:    1.0,
		},
		CarbonPriceProxy: map[EUExposure]float64{
			EUNone:    30,
			EUPartial: 75,
			EUHigh:    110,
		},
		EUCoverageMultiplier: map[EUExposure]float64{
			EUNone:    0.0,
			EUPartial: 0.6,
			EUHigh:    1.0,
		},
	}
}

// Clone returns a deep copy of t.
func (t Tables) Clone() Tables {
	return Tables{
		FuelEmissionFactor:   maps.Clone(t.FuelEmissionFactor),
		ShipTypeMultiplier:   maps.Clone(t.ShipTypeMultiplier),
		EngineRiskFactor:     maps.Clone(t.EngineRiskFactor),
		FuelPathwayRisk:      maps.Clone(t.FuelPathwayRisk),
		SpeedMultiplier:      maps.Clone(t.SpeedMultiplier),
		RetrofitRisk:         maps.Clone(t.RetrofitRisk),
		EUExposureRisk:       maps.Clone(t.EUExposureRisk),
		CarbonPriceProxy:     maps.Clone(t.CarbonPriceProxy),
		EUCoverageMultiplier: maps.Clone(t.EUCoverageMultiplier),
	}
}

// lookup returns m[key] or an InvalidKeyError naming the table.
func lookup[K ~string](table string, m map[K]float64, key K) (float64, error) {
	v, ok := m[key]
	if !ok {
		return 0, &InvalidKeyError{Table: table, Key: string(key)}
	}
	return v, nil
}
