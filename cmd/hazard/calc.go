package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/karim5623/hazcurve/internal/calc"
	"github.com/karim5623/hazcurve/internal/gmm"
	"github.com/karim5623/hazcurve/internal/model"
	"github.com/karim5623/hazcurve/internal/observability"
)

func newCalcCmd() *cobra.Command {
	var (
		modelPath string
		sitesPath string
		outPath   string
		checkPath string
		tolerance float64
		workers   int
		logLevel  string
		logFormat string
	)

	cmd := &cobra.Command{
		Use:   "calc",
		Short: "Compute hazard curves for a site file and write result rows",
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := observability.NewLogger(logLevel, logFormat)
			metrics := observability.NewMetrics()

			hazardModel, cfg, err := model.Load(modelPath)
			if err != nil {
				return err
			}
			sites, err := model.LoadSites(sitesPath)
			if err != nil {
				return err
			}
			calculator, err := calc.New(hazardModel, cfg, logger, metrics)
			if err != nil {
				return err
			}

			results := make([]model.SiteResult, 0, len(sites))
			for _, site := range sites {
				result, err := runSite(cmd.Context(), calculator, site, workers)
				if err != nil {
					return err
				}
				c := result.Curve(gmm.PGA)
				if c == nil {
					return fmt.Errorf("model %s does not configure PGA", hazardModel.Name())
				}
				results = append(results, model.SiteResult{
					Name:   site.Name,
					Lon:    site.Location.Lon,
					Lat:    site.Location.Lat,
					Values: append([]float64(nil), c.Ys()...),
				})
			}

			if checkPath != "" {
				return checkResults(checkPath, results, tolerance)
			}

			out := os.Stdout
			if outPath != "" {
				f, err := os.Create(outPath)
				if err != nil {
					return err
				}
				defer f.Close()
				out = f
			}
			return model.WriteResults(out, results)
		},
	}

	cmd.Flags().StringVar(&modelPath, "model", "", "hazard model YAML file")
	cmd.Flags().StringVar(&sitesPath, "sites", "", "site list YAML file")
	cmd.Flags().StringVar(&outPath, "out", "", "result CSV path (default stdout)")
	cmd.Flags().StringVar(&checkPath, "check", "", "expected result CSV to compare against")
	cmd.Flags().Float64Var(&tolerance, "tolerance", 0.02, "relative tolerance for --check")
	cmd.Flags().IntVar(&workers, "workers", 0, "parallel workers (0 = sequential)")
	cmd.Flags().StringVar(&logLevel, "log-level", "info", "log level")
	cmd.Flags().StringVar(&logFormat, "log-format", "text", "log format (json|text)")
	cobra.CheckErr(cmd.MarkFlagRequired("model"))
	cobra.CheckErr(cmd.MarkFlagRequired("sites"))

	return cmd
}

func runSite(ctx context.Context, calculator *calc.Calculator, site calc.Site, workers int) (*calc.Result, error) {
	if workers > 0 {
		return calculator.CurvesParallel(ctx, site, workers)
	}
	return calculator.Curves(ctx, site)
}

// checkResults compares computed rows against an expected result file,
// pairing sites by name.
func checkResults(path string, results []model.SiteResult, tolerance float64) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	expected, err := model.ParseResults(f)
	if err != nil {
		return err
	}

	var failures int
	for _, r := range results {
		want, ok := expected[r.Name]
		if !ok {
			return fmt.Errorf("no expected row for site %s", r.Name)
		}
		if len(want) != len(r.Values) {
			return fmt.Errorf("site %s: %d expected values, %d computed", r.Name, len(want), len(r.Values))
		}
		for i := range want {
			if !model.Match(want[i], r.Values[i], tolerance) {
				fmt.Fprintf(os.Stderr, "site %s level %d: expected %g, got %g\n",
					r.Name, i, want[i], r.Values[i])
				failures++
			}
		}
	}
	if failures > 0 {
		return fmt.Errorf("%d values outside tolerance %g", failures, tolerance)
	}
	fmt.Printf("all %d sites within tolerance %g\n", len(results), tolerance)
	return nil
}
