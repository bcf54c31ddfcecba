package frontend

import (
	"github.com/sustaina/shipping-risk-brain/internal/riskmodel"
)

// ProfileForm is the HTML form representation of a vessel profile
type ProfileForm struct {
	Organization   string `form:"organization"`
	VesselName     string `form:"vessel_name"`
	IMO            string `form:"imo"`
	ShipType       string `form:"ship_type"`
	EngineType     string `form:"engine_type"`
	FuelType       string `form:"fuel_type"`
	YearBuilt      int    `form:"year_built"`
	DWT            int    `form:"dwt"`
	OperatingDays  int    `form:"operating_days"`
	SpeedProfile   string `form:"speed_profile"`
	RouteRegion    string `form:"route_region"`
	EUExposure     string `form:"eu_exposure"`
	RetrofitStatus string `form:"retrofit_status"`
	LastPort       string `form:"last_port"`
	NextPort       string `form:"next_port"`
	Cargo          string `form:"cargo"`
	ValidityDays   int    `form:"validity_days"`
}

// FormFromProfile fills a form from p
func FormFromProfile(p riskmodel.VesselProfile, validityDays int) ProfileForm {
	return ProfileForm{
		Organization:   p.Organization,
		VesselName:     p.VesselName,
		IMO:            p.IMO,
		ShipType:       string(p.ShipType),
		EngineType:     string(p.EngineType),
		FuelType:       string(p.FuelType),
		YearBuilt:      p.YearBuilt,
		DWT:            p.DWT,
		OperatingDays:  p.OperatingDays,
		SpeedProfile:   string(p.SpeedProfile),
		RouteRegion:    string(p.RouteRegion),
		EUExposure:     string(p.EUExposure),
		RetrofitStatus: string(p.RetrofitStatus),
		LastPort:       p.Voyage.LastPort,
		NextPort:       p.Voyage.NextPort,
		Cargo:          p.Voyage.Cargo,
		ValidityDays:   validityDays,
	}
}

// Profile converts the form into a vessel profile
func (f ProfileForm) Profile() riskmodel.VesselProfile {
	return riskmodel.VesselProfile{
		Organization:   f.Organization,
		VesselName:     f.VesselName,
		IMO:            f.IMO,
		ShipType:       riskmodel.ShipType(f.ShipType),
		EngineType:     riskmodel.EngineType(f.EngineType),
		FuelType:       riskmodel.FuelType(f.FuelType),
		YearBuilt:      f.YearBuilt,
		DWT:            f.DWT,
		OperatingDays:  f.OperatingDays,
		SpeedProfile:   riskmodel.SpeedProfile(f.SpeedProfile),
		RouteRegion:    riskmodel.RouteRegion(f.RouteRegion),
		EUExposure:     riskmodel.EUExposure(f.EUExposure),
		RetrofitStatus: riskmodel.RetrofitStatus(f.RetrofitStatus),
		Voyage: riskmodel.VoyageSnapshot{
			LastPort: f.LastPort,
			NextPort: f.NextPort,
			Cargo:    f.Cargo,
		},
	}
}
