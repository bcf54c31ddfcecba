package riskmodel

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var asOf2024 = time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)

func bulkCarrierProfile() VesselProfile {
	return VesselProfile{
		Organization:   "Demo Shipping Ltd",
		VesselName:     "MV Example",
		IMO:            "IMO1234567",
		ShipType:       ShipBulkCarrier,
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

func TestEvaluate_BulkCarrierScenario(t *testing.T) {
	out, err := Evaluate(bulkCarrierProfile(), asOf2024)
	require.NoError(t, err)

	assert.InDelta(t, 7.2, out.DailyFuelTonnes, 1e-9)
	assert.InDelta(t, 2160.0, out.AnnualFuelTonnes, 1e-9)
	assert.InDelta(t, 6726.24, out.AnnualCO2Tonnes, 1e-9)

	assert.Equal(t, 14, out.AssetAgeYears)
	assert.InDelta(t, 0.36, out.Signals.AssetAge, 1e-12)
	assert.InDelta(t, 1.0/3.0, out.Signals.Engine, 1e-12)
	assert.Equal(t, 1.0, out.Signals.Retrofit)
	assert.Equal(t, 0.6, out.Signals.EUExposure)
	assert.Equal(t, 1.0, out.Signals.FuelPathway)

	assert.InDelta(t, 65.3333333333, out.RiskScore, 1e-6)
	assert.Equal(t, PostureHigh, out.Posture)
	assert.Equal(t, "High exposure", out.Posture.Label())

	assert.InDelta(t, 302680.8, out.CarbonCost, 1e-6)
	assert.InDelta(t, 302680.8*0.85, out.CarbonCostBand.Low, 1e-6)
	assert.InDelta(t, 302680.8*1.15, out.CarbonCostBand.High, 1e-6)

	codes := make([]string, 0, len(out.Levers))
	for _, l := range out.Levers {
		codes = append(codes, l.Code)
	}
	assert.Equal(t, []string{"retrofit_roadmap", "route_speed_discipline", "fuel_transition"}, codes)
	assert.Equal(t, asOf2024, out.AsOf)
}

func TestEvaluate_Idempotent(t *testing.T) {
	p := bulkCarrierProfile()

	first, err := Evaluate(p, asOf2024)
	require.NoError(t, err)
	second, err := Evaluate(p, asOf2024)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestEvaluate_EmptyLevers(t *testing.T) {
	p := bulkCarrierProfile()
	p.RetrofitStatus = RetrofitInstalled
	p.EUExposure = EUNone
	p.FuelType = FuelAmmonia
	p.YearBuilt = 2015

	out, err := Evaluate(p, asOf2024)
	require.NoError(t, err)

	require.NotNil(t, out.Levers)
	assert.Empty(t, out.Levers)
	assert.Equal(t, 0.0, out.AnnualCO2Tonnes)
	assert.Equal(t, 0.0, out.CarbonCost)
}

func TestEvaluate_LeverRules(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(p *VesselProfile)
		want   []string
	}{
		{
			name: "lng emits methane slip and no transition lever",
			mutate: func(p *VesselProfile) {
				p.FuelType = FuelLNG
				p.RetrofitStatus = RetrofitPlanned
				p.EUExposure = EUNone
			},
			want: []string{"methane_slip"},
		},
		{
			name: "mgo emits transition lever",
			mutate: func(p *VesselProfile) {
				p.FuelType = FuelMGOMDO
				p.RetrofitStatus = RetrofitInstalled
				p.EUExposure = EUNone
			},
			want: []string{"fuel_transition"},
		},
		{
			name: "twenty year old vessel emits asset age lever",
			mutate: func(p *VesselProfile) {
				p.FuelType = FuelMethanol
				p.RetrofitStatus = RetrofitInstalled
				p.EUExposure = EUNone
				p.YearBuilt = 2004
			},
			want: []string{"asset_age"},
		},
		{
			name: "nineteen year old vessel does not",
			mutate: func(p *VesselProfile) {
				p.FuelType = FuelMethanol
				p.RetrofitStatus = RetrofitInstalled
				p.EUExposure = EUNone
				p.YearBuilt = 2005
			},
			want: []string{},
		},
		{
			name: "all rules keep declaration order",
			mutate: func(p *VesselProfile) {
				p.EUExposure = EUHigh
				p.YearBuilt = 1990
			},
			want: []string{"retrofit_roadmap", "route_speed_discipline", "fuel_transition", "asset_age"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := bulkCarrierProfile()
			tt.mutate(&p)

			out, err := Evaluate(p, asOf2024)
			require.NoError(t, err)

			codes := []string{}
			for _, l := range out.Levers {
				codes = append(codes, l.Code)
				assert.NotEmpty(t, l.Text)
			}
			assert.Equal(t, tt.want, codes)
		})
	}
}

func TestPostureFor_Boundaries(t *testing.T) {
	tests := []struct {
		score float64
		want  Posture
	}{
		{100, PostureSevere},
		{75.0, PostureSevere},
		{74.999, PostureHigh},
		{55.0, PostureHigh},
		{54.999, PostureModerate},
		{35.0, PostureModerate},
		{34.999, PostureLower},
		{0, PostureLower},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, PostureFor(tt.score), "score %v", tt.score)
	}
}

func TestEvaluate_SignalsStayInRange(t *testing.T) {
	for _, ship := range ShipTypes {
		for _, engine := range EngineTypes {
			for _, fuel := range FuelTypes {
				for _, eu := range EUExposures {
					for _, retrofit := range RetrofitStatuses {
						for _, year := range []int{MinYearBuilt, 2000, asOf2024.Year()} {
							for _, dwt := range []int{MinDWT, MaxDWT} {
								p := bulkCarrierProfile()
								p.ShipType = ship.Key
								p.EngineType = engine.Key
								p.FuelType = fuel.Key
								p.EUExposure = eu.Key
								p.RetrofitStatus = retrofit.Key
								p.YearBuilt = year
								p.DWT = dwt

								out, err := Evaluate(p, asOf2024)
								require.NoError(t, err)

								for name, v := range map[string]float64{
									"eu_exposure":  out.Signals.EUExposure,
									"asset_age":    out.Signals.AssetAge,
									"retrofit":     out.Signals.Retrofit,
									"fuel_pathway": out.Signals.FuelPathway,
									"engine":       out.Signals.Engine,
								} {
									assert.GreaterOrEqual(t, v, 0.0, name)
									assert.LessOrEqual(t, v, 1.0, name)
								}
								assert.GreaterOrEqual(t, out.RiskScore, 0.0)
								assert.LessOrEqual(t, out.RiskScore, 100.0)
								assert.Equal(t, PostureFor(out.RiskScore), out.Posture)
							}
						}
					}
				}
			}
		}
	}
}

func TestEvaluate_AgeRiskExtremes(t *testing.T) {
	tests := []struct {
		name      string
		yearBuilt int
		want      float64
	}{
		{"oldest allowed vessel saturates", MinYearBuilt, 1},
		{"thirty years saturates", 1994, 1},
		{"five years is riskless", 2019, 0},
		{"new build is riskless", 2024, 0},
		{"future build clamps to zero", 2030, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := bulkCarrierProfile()
			p.YearBuilt = tt.yearBuilt

			out, err := Evaluate(p, asOf2024)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out.Signals.AssetAge)
		})
	}
}

func TestEvaluate_EngineRiskPerEngine(t *testing.T) {
	want := map[EngineType]float64{
		EngineTwoStrokeLowSpeed:     1.0 / 3.0,
		EngineFourStrokeMediumSpeed: 0.5,
		EngineDualFuel:              1.0 / 6.0,
		EngineUnknown:               2.0 / 3.0,
	}

	for engine, expected := range want {
		p := bulkCarrierProfile()
		p.EngineType = engine

		out, err := Evaluate(p, asOf2024)
		require.NoError(t, err)
		assert.InDelta(t, expected, out.Signals.Engine, 1e-12, string(engine))
	}
}

func TestEvaluate_MonotonicInAge(t *testing.T) {
	previous := -1.0
	for year := asOf2024.Year(); year >= MinYearBuilt; year-- {
		p := bulkCarrierProfile()
		p.YearBuilt = year

		out, err := Evaluate(p, asOf2024)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, out.Signals.AssetAge, previous, "year %d", year)
		previous = out.Signals.AssetAge
	}
}

func TestEvaluate_MonotonicInEUExposure(t *testing.T) {
	var prev *RiskOutput
	for _, eu := range []EUExposure{EUNone, EUPartial, EUHigh} {
		p := bulkCarrierProfile()
		p.EUExposure = eu

		out, err := Evaluate(p, asOf2024)
		require.NoError(t, err)

		if prev != nil {
			assert.GreaterOrEqual(t, out.Signals.EUExposure, prev.Signals.EUExposure)
			assert.GreaterOrEqual(t, out.CarbonCost, prev.CarbonCost)
			assert.GreaterOrEqual(t, out.RiskScore, prev.RiskScore)
		}
		prev = &out
	}
}

func TestEvaluate_SpeedAndShipScaleFuel(t *testing.T) {
	p := bulkCarrierProfile()
	p.ShipType = ShipContainer
	p.SpeedProfile = SpeedFast

	out, err := Evaluate(p, asOf2024)
	require.NoError(t, err)

	assert.InDelta(t, 6.0*1.2*1.15*1.18, out.DailyFuelTonnes, 1e-9)
	assert.InDelta(t, 6.0*1.2*1.15*1.18*300, out.AnnualFuelTonnes, 1e-9)
}

func TestEvaluate_InvalidKey(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(p *VesselProfile)
		table  string
	}{
		{"unknown ship type", func(p *VesselProfile) { p.ShipType = "submarine" }, "ship_type_multiplier"},
		{"unknown speed", func(p *VesselProfile) { p.SpeedProfile = "ludicrous" }, "speed_multiplier"},
		{"unknown fuel", func(p *VesselProfile) { p.FuelType = "diesel" }, "fuel_emission_factor"},
		{"unknown engine", func(p *VesselProfile) { p.EngineType = "steam" }, "engine_risk_factor"},
		{"unknown retrofit", func(p *VesselProfile) { p.RetrofitStatus = "maybe" }, "retrofit_risk"},
		{"unknown eu exposure", func(p *VesselProfile) { p.EUExposure = "total" }, "eu_exposure_risk"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := bulkCarrierProfile()
			tt.mutate(&p)

			out, err := Evaluate(p, asOf2024)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidKey))

			var keyErr *InvalidKeyError
			require.True(t, errors.As(err, &keyErr))
			assert.Equal(t, tt.table, keyErr.Table)
			assert.Nil(t, out.Levers)
		})
	}
}

func TestNew_MissingTableEntryFailsFast(t *testing.T) {
	tables := DefaultTables()
	delete(tables.CarbonPriceProxy, EUHigh)
	model := New(tables)

	p := bulkCarrierProfile()
	p.EUExposure = EUHigh

	_, err := model.Evaluate(p, asOf2024)
	require.ErrorIs(t, err, ErrInvalidKey)
	assert.Contains(t, err.Error(), "carbon_price_proxy")

	// the default tables are untouched
	_, err = Evaluate(p, asOf2024)
	assert.NoError(t, err)
}

func TestReference_ReturnsCopies(t *testing.T) {
	tables := DefaultTables()
	model := New(tables)
	p := bulkCarrierProfile()

	before, err := model.Evaluate(p, asOf2024)
	require.NoError(t, err)

	// neither the caller's tables nor the reference alias the model
	tables.CarbonPriceProxy[p.EUExposure] = 1e6
	ref := model.Reference()
	ref.Tables.FuelEmissionFactor[p.FuelType] = 99
	ref.Tables.EUExposureRisk[p.EUExposure] = 0
	ref.ShipTypes[0].Key = "ferry"
	ref.FuelTypes[0].Label = "changed"

	after, err := model.Evaluate(p, asOf2024)
	require.NoError(t, err)
	assert.Equal(t, before, after)

	assert.Equal(t, ShipContainer, ShipTypes[0].Key)
	assert.NotEqual(t, "changed", model.Reference().FuelTypes[0].Label)
	assert.Equal(t, DefaultTables(), model.Reference().Tables)
}
