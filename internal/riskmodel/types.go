package riskmodel

import "time"

// ShipType classifies the vessel for the base fuel-consumption estimate.
type ShipType string

const (
	ShipContainer    ShipType = "container"
	ShipBulkCarrier  ShipType = "bulk_carrier"
	ShipTanker       ShipType = "tanker"
	ShipRoRo         ShipType = "ro_ro"
	ShipGeneralCargo ShipType = "general_cargo"
	ShipOther        ShipType = "other"
)

// EngineType is the main propulsion engine family.
type EngineType string

const (
	EngineTwoStrokeLowSpeed     EngineType = "two_stroke_low_speed"
	EngineFourStrokeMediumSpeed EngineType = "four_stroke_medium_speed"
	EngineDualFuel              EngineType = "dual_fuel"
	EngineUnknown               EngineType = "unknown"
)

// FuelType is the main fuel pathway.
type FuelType string

const (
	FuelHFO      FuelType = "hfo"
	FuelMGOMDO   FuelType = "mgo_mdo"
	FuelLNG      FuelType = "lng"
	FuelMethanol FuelType = "methanol"
	FuelAmmonia  FuelType = "ammonia"
)

// SpeedProfile is the typical operating speed.
type SpeedProfile string

const (
	SpeedSlow   SpeedProfile = "slow"
	SpeedNormal SpeedProfile = "normal"
	SpeedFast   SpeedProfile = "fast"
)

// EUExposure is how much of the trading pattern falls under EU carbon pricing.
type EUExposure string

const (
	EUNone    EUExposure = "none"
	EUPartial EUExposure = "partial"
	EUHigh    EUExposure = "high"
)

// RetrofitStatus is the state of efficiency / capture-ready retrofits.
type RetrofitStatus string

const (
	RetrofitNone      RetrofitStatus = "none"
	RetrofitPlanned   RetrofitStatus = "planned"
	RetrofitInstalled RetrofitStatus = "installed"
)

// RouteRegion is descriptive only and does not enter the score. Values outside
// the known set are accepted and displayed as given.
type RouteRegion string

const (
	RouteGlobal          RouteRegion = "global"
	RouteEUFocused       RouteRegion = "eu_focused"
	RouteAsiaEurope      RouteRegion = "asia_europe"
	RouteTransAtlantic   RouteRegion = "trans_atlantic"
	RouteCoastalRegional RouteRegion = "coastal_regional"
)

// VoyageSnapshot is optional context printed on the certificate.
type VoyageSnapshot struct {
	LastPort string `json:"last_port,omitempty" yaml:"last_port"`
	NextPort string `json:"next_port,omitempty" yaml:"next_port"`
	Cargo    string `json:"cargo,omitempty" yaml:"cargo"`
}

// IsZero reports whether no voyage field was declared.
func (v VoyageSnapshot) IsZero() bool {
	return v.LastPort == "" && v.NextPort == "" && v.Cargo == ""
}

// VesselProfile is the declared input for one evaluation.
type VesselProfile struct {
	Organization string `json:"organization"`
	VesselName   string `json:"vessel_name"`
	IMO          string `json:"imo"`

	ShipType   ShipType   `json:"ship_type"`
	EngineType EngineType `json:"engine_type"`
	FuelType   FuelType   `json:"fuel_type"`

	YearBuilt int `json:"year_built"`
	DWT       int `json:"dwt"`

	OperatingDays int          `json:"operating_days"`
	SpeedProfile  SpeedProfile `json:"speed_profile"`
	RouteRegion   RouteRegion  `json:"route_region,omitempty"`

	EUExposure     EUExposure     `json:"eu_exposure"`
	RetrofitStatus RetrofitStatus `json:"retrofit_status"`

	Voyage VoyageSnapshot `json:"voyage,omitempty"`
}

// Posture is the four-bucket label derived from the risk score.
type Posture string

const (
	PostureLower    Posture = "Lower"
	PostureModerate Posture = "Moderate"
	PostureHigh     Posture = "High"
	PostureSevere   Posture = "Severe"
)

// Label is the dashboard wording, e.g. "High exposure".
func (p Posture) Label() string {
	return string(p) + " exposure"
}

// Signals are the five normalized risk inputs, each in [0,1].
type Signals struct {
	EUExposure  float64 `json:"eu_exposure"`
	AssetAge    float64 `json:"asset_age"`
	Retrofit    float64 `json:"retrofit"`
	FuelPathway float64 `json:"fuel_pathway"`
	Engine      float64 `json:"engine"`
}

// Band is a symmetric uncertainty range around a modeled value.
type Band struct {
	Low  float64 `json:"low"`
	High float64 `json:"high"`
}

// Lever is a rule-triggered recommendation. Levers are not scored.
type Lever struct {
	Code string `json:"code"`
	Text string `json:"text"`
}

// RiskOutput is derived fresh from a VesselProfile on every evaluation.
type RiskOutput struct {
	Signals   Signals `json:"signals"`
	RiskScore float64 `json:"risk_score"`
	Posture   Posture `json:"posture"`

	DailyFuelTonnes  float64 `json:"daily_fuel_tonnes"`
	AnnualFuelTonnes float64 `json:"annual_fuel_tonnes"`
	AnnualCO2Tonnes  float64 `json:"annual_co2_tonnes"`

	CarbonCost     float64 `json:"carbon_cost"`
	CarbonCostBand Band    `json:"carbon_cost_band"`

	// Levers is never nil once evaluated; an empty slice means no rule matched.
	Levers []Lever `json:"levers"`

	AssetAgeYears int       `json:"asset_age_years"`
	AsOf          time.Time `json:"as_of"`
}
