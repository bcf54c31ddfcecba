package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/urfave/cli/v2"

	"github.com/sustaina/shipping-risk-brain/internal/assessment"
	"github.com/sustaina/shipping-risk-brain/internal/certificate"
	"github.com/sustaina/shipping-risk-brain/internal/report"
	"github.com/sustaina/shipping-risk-brain/internal/riskmodel"
)

func evaluateCommand() *cli.Command {
	return &cli.Command{
		Name:  "evaluate",
		Usage: "score a vessel profile and print the dashboard",
		Flags: append(profileFlags(),
			&cli.BoolFlag{Name: "json", Usage: "print profile and output as JSON"},
		),
		Action: func(c *cli.Context) error {
			svc := newService(c, certificate.Options{})

			profile, output, err := svc.Evaluate(c.Context, profileFrom(c), asOfFrom(c))
			if err != nil {
				return inputError(err)
			}

			if c.Bool("json") {
				return writeJSON(c.App.Writer, map[string]interface{}{
					"profile": profile,
					"output":  output,
				})
			}
			return writeDashboard(c.App.Writer, report.NewDashboard(profile, output, svc.Currency()))
		},
	}
}

func certificateCommand() *cli.Command {
	return &cli.Command{
		Name:  "certificate",
		Usage: "score a vessel profile and write a PDF certificate",
		Flags: append(profileFlags(),
			&cli.IntFlag{Name: "validity-days", Value: certificate.DefaultValidityDays, Usage: "validity period (7-365)"},
			&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Value: certificate.FileName, Usage: "output file, - for stdout"},
			&cli.StringFlag{Name: "verify-base-url", EnvVars: []string{"VERIFY_BASE_URL"}, Usage: "verification URL base or {id} template"},
			&cli.StringFlag{Name: "issuer", Value: "Sustaina", EnvVars: []string{"ISSUER_NAME"}},
			&cli.BoolFlag{Name: "year-prefix", EnvVars: []string{"CERT_YEAR_PREFIX"}, Usage: "include the issue year in the certificate ID"},
			&cli.StringFlag{Name: "issued-to", Usage: "name printed on the issued-to line"},
		),
		Action: func(c *cli.Context) error {
			svc := newService(c, certificate.Options{
				VerifyBaseURL: c.String("verify-base-url"),
				YearPrefix:    c.Bool("year-prefix"),
				Issuer:        c.String("issuer"),
			})

			issued, err := svc.IssueCertificate(c.Context, assessment.CertificateRequest{
				Profile:      profileFrom(c),
				ValidityDays: c.Int("validity-days"),
				AsOf:         asOfFrom(c),
				IssuedTo:     c.String("issued-to"),
			})
			if err != nil {
				return inputError(err)
			}

			out := c.String("out")
			if out == "-" {
				_, err := c.App.Writer.Write(issued.Document)
				return err
			}
			if err := os.WriteFile(out, issued.Document, 0o644); err != nil {
				return fmt.Errorf("failed to write %s: %w", out, err)
			}

			cert := issued.Certificate
			_, err = fmt.Fprintf(c.App.Writer, "%s\t%s\tvalid %s\n", cert.ID, out, cert.ValidityText())
			return err
		},
	}
}

func referenceCommand() *cli.Command {
	return &cli.Command{
		Name:  "reference",
		Usage: "print the accepted values for every profile field",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "json", Usage: "print vocabularies and tables as JSON"},
		},
		Action: func(c *cli.Context) error {
			ref := riskmodel.New(riskmodel.DefaultTables()).Reference()
			if c.Bool("json") {
				return writeJSON(c.App.Writer, ref)
			}

			tw := tabwriter.NewWriter(c.App.Writer, 0, 0, 2, ' ', 0)
			writeOptions(tw, "ship-type", ref.ShipTypes)
			writeOptions(tw, "engine-type", ref.EngineTypes)
			writeOptions(tw, "fuel-type", ref.FuelTypes)
			writeOptions(tw, "speed-profile", ref.SpeedProfiles)
			writeOptions(tw, "eu-exposure", ref.EUExposures)
			writeOptions(tw, "retrofit-status", ref.RetrofitStatuses)
			writeOptions(tw, "route-region", ref.RouteRegions)
			return tw.Flush()
		},
	}
}

// writeOptions prints one vocabulary as an indented key/label block
func writeOptions[K ~string](w io.Writer, name string, options []riskmodel.Option[K]) {
	fmt.Fprintf(w, "%s\n", name)
	for _, o := range options {
		fmt.Fprintf(w, "  %s\t%s\n", o.Key, o.Label)
	}
}

// inputError turns validation problems into a readable exit error
func inputError(err error) error {
	var verr *riskmodel.ValidationError
	if errors.As(err, &verr) {
		fields := make([]string, 0, len(verr.Fields))
		for name := range verr.Fields {
			fields = append(fields, name)
		}
		sort.Strings(fields)

		msg := "invalid vessel profile:"
		for _, name := range fields {
			msg += fmt.Sprintf("\n  %s: %s", name, verr.Fields[name])
		}
		return cli.Exit(msg, 2)
	}
	if errors.Is(err, riskmodel.ErrInvalidKey) {
		return cli.Exit(err.Error(), 2)
	}
	return err
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeDashboard(w io.Writer, d report.Dashboard) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintf(tw, "Risk Score\t%s\t%s\n\n", d.Score, d.PostureLabel)
	for _, row := range d.Metrics {
		fmt.Fprintf(tw, "%s\t%s\n", row.Label, row.Value)
	}

	fmt.Fprintln(tw, "\nRisk signals (0-1)")
	for _, s := range d.Signals {
		fmt.Fprintf(tw, "  %s\t%s\n", s.Name, s.Value)
	}

	fmt.Fprintln(tw, "\nImprovement levers")
	for _, l := range d.LeverLines() {
		fmt.Fprintf(tw, "  - %s\n", l)
	}

	fmt.Fprintln(tw, "\nAsset profile")
	for _, row := range d.Profile {
		fmt.Fprintf(tw, "  %s\t%s\n", row.Label, row.Value)
	}

	if len(d.Voyage) > 0 {
		fmt.Fprintln(tw, "\nVoyage snapshot")
		for _, row := range d.Voyage {
			fmt.Fprintf(tw, "  %s\t%s\n", row.Label, row.Value)
		}
	}

	return tw.Flush()
}
