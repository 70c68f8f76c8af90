package model_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/karim5623/hazcurve/internal/calc"
	"github.com/karim5623/hazcurve/internal/gmm"
	"github.com/karim5623/hazcurve/internal/model"
	"github.com/karim5623/hazcurve/internal/observability"
)

// TestBatchHarness drives the full validation-harness path: load a YAML
// model and site list, compute PGA curves per site, write the result
// rows, re-parse them, and pair sites by name under the relative match
// rule. Sequential and parallel execution feed the same expected file.
func TestBatchHarness(t *testing.T) {
	m, cfg, err := model.Parse([]byte(modelYAML))
	require.NoError(t, err)
	sites, err := model.ParseSites([]byte(sitesYAML))
	require.NoError(t, err)

	calculator, err := calc.New(m, cfg, slog.Default(), observability.NewMetricsForTesting())
	require.NoError(t, err)

	compute := func(parallel bool) []model.SiteResult {
		results := make([]model.SiteResult, 0, len(sites))
		for _, site := range sites {
			var result *calc.Result
			var err error
			if parallel {
				result, err = calculator.CurvesParallel(context.Background(), site, 4)
			} else {
				result, err = calculator.Curves(context.Background(), site)
			}
			require.NoError(t, err)

			c := result.Curve(gmm.PGA)
			require.NotNil(t, c)
			results = append(results, model.SiteResult{
				Name:   site.Name,
				Lon:    site.Location.Lon,
				Lat:    site.Location.Lat,
				Values: append([]float64(nil), c.Ys()...),
			})
		}
		return results
	}

	expected := compute(false)

	var buf bytes.Buffer
	require.NoError(t, model.WriteResults(&buf, expected))
	expectedByName, err := model.ParseResults(&buf)
	require.NoError(t, err)

	actual := compute(true)
	for _, row := range actual {
		want, ok := expectedByName[row.Name]
		require.True(t, ok, "expected row for site %s", row.Name)
		require.Len(t, row.Values, len(want))
		for i := range want {
			assert.True(t, model.Match(want[i], row.Values[i], 0.02),
				"site %s level %d: expected %g, got %g", row.Name, i, want[i], row.Values[i])
		}
	}

	// Probabilities of exceedance decrease with amplitude.
	for _, row := range actual {
		for i := 1; i < len(row.Values); i++ {
			assert.LessOrEqual(t, row.Values[i], row.Values[i-1])
		}
	}
}
