package report

import (
	"strconv"

	"github.com/sustaina/shipping-risk-brain/internal/riskmodel"
)

// NoLeversText is shown in place of an empty lever list.
const NoLeversText = "No major levers detected."

// Assumptions are printed on every certificate.
var Assumptions = []string{
	"This certificate is MODELED from declared inputs + public emission factors (not metered telemetry).",
	"It is NOT a legal compliance guarantee. It is decision-support for finance/insurance/port risk.",
	"Future versions integrate voyage evidence, GPS/route data, fuel purchase evidence, and MRV connectors.",
	"CH4 and N2O are treated as risk dimensions in MVP. Quantified accounting requires verified pathways.",
}

// Row is a label/value pair.
type Row struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// SignalRow is one normalized signal with its display value.
type SignalRow struct {
	Name  string  `json:"name"`
	Value string  `json:"value"`
	Raw   float64 `json:"raw"`
}

// Dashboard is the formatted view of one evaluation shared by the HTML
// dashboard, the CLI and the PDF certificate.
type Dashboard struct {
	Score        string      `json:"score"`
	PostureLabel string      `json:"posture_label"`
	Posture      string      `json:"posture"`
	Metrics      []Row       `json:"metrics"`
	Signals      []SignalRow `json:"signals"`
	Levers       []string    `json:"levers"`
	NoLevers     bool        `json:"no_levers"`
	Profile      []Row       `json:"profile"`
	Voyage       []Row       `json:"voyage,omitempty"`
	Currency     string      `json:"currency"`
}

// NewDashboard formats output for display. The numbers are taken as given.
func NewDashboard(profile riskmodel.VesselProfile, output riskmodel.RiskOutput, currency string) Dashboard {
	if currency == "" {
		currency = DefaultCurrency
	}

	d := Dashboard{
		Score:        FormatScore(output.RiskScore),
		PostureLabel: output.Posture.Label(),
		Posture:      string(output.Posture),
		Currency:     currency,
		Metrics: []Row{
			{"Risk Score (0-100)", FormatScore(output.RiskScore)},
			{"Modeled daily fuel (t)", FormatSignal(output.DailyFuelTonnes)},
			{"Modeled annual fuel (t)", FormatTonnes(output.AnnualFuelTonnes)},
			{"Modeled annual CO2 (t)", FormatTonnes(output.AnnualCO2Tonnes)},
			{"Modeled carbon-cost exposure (" + currency + ")", FormatMoney(output.CarbonCost, "")},
			{"Carbon-cost range (" + currency + ")", FormatMoney(output.CarbonCostBand.Low, "") + " - " + FormatMoney(output.CarbonCostBand.High, "")},
		},
		Signals: []SignalRow{
			{"EU exposure", FormatSignal(output.Signals.EUExposure), output.Signals.EUExposure},
			{"Asset age", FormatSignal(output.Signals.AssetAge), output.Signals.AssetAge},
			{"Retrofit posture", FormatSignal(output.Signals.Retrofit), output.Signals.Retrofit},
			{"Fuel pathway", FormatSignal(output.Signals.FuelPathway), output.Signals.FuelPathway},
			{"Engine factor", FormatSignal(output.Signals.Engine), output.Signals.Engine},
		},
		Profile: []Row{
			{"Ship type", riskmodel.LabelOf(riskmodel.ShipTypes, profile.ShipType)},
			{"DWT", FormatInt(profile.DWT)},
			{"Year built", strconv.Itoa(profile.YearBuilt)},
			{"Asset age (years)", strconv.Itoa(output.AssetAgeYears)},
			{"Engine type", riskmodel.LabelOf(riskmodel.EngineTypes, profile.EngineType)},
			{"Fuel type", riskmodel.LabelOf(riskmodel.FuelTypes, profile.FuelType)},
			{"EU exposure", riskmodel.LabelOf(riskmodel.EUExposures, profile.EUExposure)},
			{"Retrofit status", riskmodel.LabelOf(riskmodel.RetrofitStatuses, profile.RetrofitStatus)},
			{"Operating days/year", strconv.Itoa(profile.OperatingDays)},
			{"Speed profile", riskmodel.LabelOf(riskmodel.SpeedProfiles, profile.SpeedProfile)},
			{"Primary route region", riskmodel.LabelOf(riskmodel.RouteRegions, profile.RouteRegion)},
		},
	}

	d.Levers = make([]string, 0, len(output.Levers))
	for _, l := range output.Levers {
		d.Levers = append(d.Levers, l.Text)
	}
	d.NoLevers = len(d.Levers) == 0

	if !profile.Voyage.IsZero() {
		d.Voyage = []Row{
			{"Last port", orDash(profile.Voyage.LastPort)},
			{"Next port", orDash(profile.Voyage.NextPort)},
			{"Cargo", orDash(profile.Voyage.Cargo)},
		}
	}

	return d
}

// LeverLines returns the levers, or the explicit no-levers indicator.
func (d Dashboard) LeverLines() []string {
	if d.NoLevers {
		return []string{NoLeversText}
	}
	return d.Levers
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
