package main

import (
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/sustaina/shipping-risk-brain/internal/assessment"
	"github.com/sustaina/shipping-risk-brain/internal/certificate"
	"github.com/sustaina/shipping-risk-brain/internal/monitoring"
	"github.com/sustaina/shipping-risk-brain/internal/report"
	"github.com/sustaina/shipping-risk-brain/internal/riskmodel"
	"github.com/sustaina/shipping-risk-brain/internal/security"
)

func newCLI() *cli.App {
	return &cli.App{
		Name:  "sustaina",
		Usage: "modeled shipping transition-risk scoring and certificates",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "log-level", Value: "warn", Usage: "debug, info, warn or error", EnvVars: []string{"LOG_LEVEL"}},
			&cli.StringFlag{Name: "currency", Value: report.DefaultCurrency, Usage: "reporting currency", EnvVars: []string{"CURRENCY"}},
		},
		Before: func(c *cli.Context) error {
			logger := monitoring.NewLoggerWithWriter(os.Stderr, monitoring.ParseLevel(c.String("log-level")))
			c.App.Metadata = map[string]interface{}{"logger": logger}
			return nil
		},
		Commands: []*cli.Command{
			evaluateCommand(),
			certificateCommand(),
			referenceCommand(),
		},
	}
}

func loggerFrom(c *cli.Context) *monitoring.Logger {
	if l, ok := c.App.Metadata["logger"].(*monitoring.Logger); ok {
		return l
	}
	return monitoring.NewLoggerWithWriter(os.Stderr, monitoring.ParseLevel("warn"))
}

func newService(c *cli.Context, certOpts certificate.Options) *assessment.Service {
	return assessment.NewService(
		riskmodel.New(riskmodel.DefaultTables()),
		security.NewSecurityMiddleware(security.DefaultSecurityConfig()),
		nil,
		monitoring.NewMetrics(),
		loggerFrom(c),
		assessment.Options{
			Currency:    c.String("currency"),
			Certificate: certOpts,
		},
	)
}

// profileFlags default to the values prefilled in the web form
func profileFlags() []cli.Flag {
	d := riskmodel.DefaultProfile()
	return []cli.Flag{
		&cli.StringFlag{Name: "organization", Value: d.Organization, Category: "vessel"},
		&cli.StringFlag{Name: "vessel-name", Value: d.VesselName, Category: "vessel"},
		&cli.StringFlag{Name: "imo", Value: d.IMO, Category: "vessel"},
		&cli.StringFlag{Name: "ship-type", Value: string(d.ShipType), Category: "vessel"},
		&cli.IntFlag{Name: "year-built", Value: d.YearBuilt, Category: "vessel"},
		&cli.IntFlag{Name: "dwt", Value: d.DWT, Category: "vessel"},
		&cli.StringFlag{Name: "engine-type", Value: string(d.EngineType), Category: "propulsion"},
		&cli.StringFlag{Name: "fuel-type", Value: string(d.FuelType), Category: "propulsion"},
		&cli.StringFlag{Name: "retrofit-status", Value: string(d.RetrofitStatus), Category: "propulsion"},
		&cli.IntFlag{Name: "operating-days", Value: d.OperatingDays, Category: "operations"},
		&cli.StringFlag{Name: "speed-profile", Value: string(d.SpeedProfile), Category: "operations"},
		&cli.StringFlag{Name: "eu-exposure", Value: string(d.EUExposure), Category: "operations"},
		&cli.StringFlag{Name: "route-region", Value: string(d.RouteRegion), Category: "operations"},
		&cli.StringFlag{Name: "last-port", Category: "voyage"},
		&cli.StringFlag{Name: "next-port", Category: "voyage"},
		&cli.StringFlag{Name: "cargo", Category: "voyage"},
		&cli.TimestampFlag{Name: "as-of", Layout: time.DateOnly, Usage: "evaluation date (YYYY-MM-DD), default today"},
	}
}

func profileFrom(c *cli.Context) riskmodel.VesselProfile {
	return riskmodel.VesselProfile{
		Organization:   c.String("organization"),
		VesselName:     c.String("vessel-name"),
		IMO:            c.String("imo"),
		ShipType:       riskmodel.ShipType(c.String("ship-type")),
		EngineType:     riskmodel.EngineType(c.String("engine-type")),
		FuelType:       riskmodel.FuelType(c.String("fuel-type")),
		YearBuilt:      c.Int("year-built"),
		DWT:            c.Int("dwt"),
		OperatingDays:  c.Int("operating-days"),
		SpeedProfile:   riskmodel.SpeedProfile(c.String("speed-profile")),
		RouteRegion:    riskmodel.RouteRegion(c.String("route-region")),
		EUExposure:     riskmodel.EUExposure(c.String("eu-exposure")),
		RetrofitStatus: riskmodel.RetrofitStatus(c.String("retrofit-status")),
		Voyage: riskmodel.VoyageSnapshot{
			LastPort: c.String("last-port"),
			NextPort: c.String("next-port"),
			Cargo:    c.String("cargo"),
		},
	}
}

func asOfFrom(c *cli.Context) time.Time {
	if t := c.Timestamp("as-of"); t != nil {
		return *t
	}
	return time.Time{}
}
