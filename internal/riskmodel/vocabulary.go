package riskmodel

import "slices"

// Option pairs a machine key with its display label.
type Option[K ~string] struct {
	Key   K      `json:"key"`
	Label string `json:"label"`
}

// Vocabularies in form display order.
var (
	ShipTypes = []Option[ShipType]{
		{ShipContainer, "Container"},
		{ShipBulkCarrier, "Bulk carrier"},
		{ShipTanker, "Tanker"},
		{ShipRoRo, "Ro-Ro"},
		{ShipGeneralCargo, "General cargo"},
		{ShipOther, "Other"},
	}

	EngineTypes = []Option[EngineType]{
		{EngineTwoStrokeLowSpeed, "2-stroke low-speed"},
		{EngineFourStrokeMediumSpeed, "4-stroke medium-speed"},
		{EngineDualFuel, "Dual-fuel"},
		{EngineUnknown, "Unknown"},
	}

	FuelTypes = []Option[FuelType]{
		{FuelHFO, "HFO (Heavy Fuel Oil)"},
		{FuelMGOMDO, "MGO/MDO (Marine Diesel/Gas Oil)"},
		{FuelLNG, "LNG (Tank-to-wake CO2)"},
		{FuelMethanol, "Methanol (Low/Green mix - modeled)"},
		{FuelAmmonia, "Ammonia (Zero exhaust CO2 - modeled)"},
	}

	SpeedProfiles = []Option[SpeedProfile]{
		{SpeedSlow, "Slow steaming"},
		{SpeedNormal, "Normal"},
		{SpeedFast, "Fast"},
	}

	EUExposures = []Option[EUExposure]{
		{EUNone, "None"},
		{EUPartial, "Partial"},
		{EUHigh, "High"},
	}

	RetrofitStatuses = []Option[RetrofitStatus]{
		{RetrofitNone, "None"},
		{RetrofitPlanned, "Planned"},
		{RetrofitInstalled, "Installed"},
	}

	RouteRegions = []Option[RouteRegion]{
		{RouteGlobal, "Global"},
		{RouteEUFocused, "EU-focused"},
		{RouteAsiaEurope, "Asia-Europe"},
		{RouteTransAtlantic, "Trans-Atlantic"},
		{RouteCoastalRegional, "Coastal/Regional"},
	}
)

// LabelOf returns the display label for key, or the key itself when unknown.
func LabelOf[K ~string](options []Option[K], key K) string {
	for _, o := range options {
		if o.Key == key {
			return o.Label
		}
	}
	return string(key)
}

// DefaultProfile mirrors the form defaults of the dashboard.
func DefaultProfile() VesselProfile {
	return VesselProfile{
		Organization:   "Demo Shipping Ltd",
		VesselName:     "MV Example",
		IMO:            "IMO1234567",
		ShipType:       ShipContainer,
		EngineType:     EngineTwoStrokeLowSpeed,
		FuelType:       FuelHFO,
		YearBuilt:      2010,
		DWT:            60000,
		OperatingDays:  300,
		SpeedProfile:   SpeedNormal,
		RouteRegion:    RouteGlobal,
		EUExposure:     EUPartial,
		RetrofitStatus: RetrofitNone,
	}
}

// Reference is the read-only description of vocabularies and tables.
type Reference struct {
	ShipTypes        []Option[ShipType]       `json:"ship_types"`
	EngineTypes      []Option[EngineType]     `json:"engine_types"`
	FuelTypes        []Option[FuelType]       `json:"fuel_types"`
	SpeedProfiles    []Option[SpeedProfile]   `json:"speed_profiles"`
	EUExposures      []Option[EUExposure]     `json:"eu_exposures"`
	RetrofitStatuses []Option[RetrofitStatus] `json:"retrofit_statuses"`
	RouteRegions     []Option[RouteRegion]    `json:"route_regions"`
	Tables           Tables                   `json:"tables"`
}

// Reference describes the model's vocabularies and tables. The result is a
// copy; changing it does not affect scoring or validation.
func (m *Model) Reference() Reference {
	return Reference{
		ShipTypes:        slices.Clone(ShipTypes),
		EngineTypes:      slices.Clone(EngineTypes),
		FuelTypes:        slices.Clone(FuelTypes),
		SpeedProfiles:    slices.Clone(SpeedProfiles),
		EUExposures:      slices.Clone(EUExposures),
		RetrofitStatuses: slices.Clone(RetrofitStatuses),
		RouteRegions:     slices.Clone(RouteRegions),
		Tables:           m.tables.Clone(),
	}
}
