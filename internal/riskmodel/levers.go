package riskmodel

const assetAgeLeverYears = 20

// leverRule fires independently of every other rule.
type leverRule struct {
	code  string
	text  string
	match func(p VesselProfile, age int) bool
}

// leverRules are evaluated in declaration order and output keeps that order.
var leverRules = []leverRule{
	{
		code: "retrofit_roadmap",
		text: "Retrofit readiness: plan efficiency / capture-ready roadmap to reduce compliance friction.",
		match: func(p VesselProfile, _ int) bool {
			return p.RetrofitStatus == RetrofitNone
		},
	},
	{
		code: "route_speed_discipline",
		text: "Route + speed discipline: reduce EU carbon-cost exposure with operational controls.",
		match: func(p VesselProfile, _ int) bool {
			return p.EUExposure == EUPartial || p.EUExposure == EUHigh
		},
	},
	{
		code: "fuel_transition",
		text: "Fuel transition planning: methanol/ammonia-ready strategy for medium-term resilience.",
		match: func(p VesselProfile, _ int) bool {
			return p.FuelType == FuelHFO || p.FuelType == FuelMGOMDO
		},
	},
	{
		code: "methane_slip",
		text: "Methane risk: plan engine tuning + monitoring (CH4 focus) for slip management.",
		match: func(p VesselProfile, _ int) bool {
			return p.FuelType == FuelLNG
		},
	},
	{
		code: "asset_age",
		text: "Asset age risk: prepare finance/charter narrative + improvement milestones.",
		match: func(_ VesselProfile, age int) bool {
			return age >= assetAgeLeverYears
		},
	},
}

func matchLevers(p VesselProfile, age int) []Lever {
	levers := make([]Lever, 0, len(leverRules))
	for _, rule := range leverRules {
		if rule.match(p, age) {
			levers = append(levers, Lever{Code: rule.code, Text: rule.text})
		}
	}
	return levers
}
