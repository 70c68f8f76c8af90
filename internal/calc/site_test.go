package calc_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/karim5623/hazcurve/internal/calc"
	"github.com/karim5623/hazcurve/internal/geo"
	"github.com/karim5623/hazcurve/internal/gmm"
)

func TestSiteBuilder(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		site, err := calc.NewSiteBuilder().
			Location(geo.NewLocation(34, -118)).
			Build()
		require.NoError(t, err)
		assert.Equal(t, "Unnamed", site.Name)
		assert.Equal(t, calc.DefaultVs30, site.Vs30)
		assert.True(t, site.VsInferred)
		assert.True(t, math.IsNaN(site.Z1p0))
		assert.True(t, math.IsNaN(site.Z2p5))
	})

	t.Run("invalid location", func(t *testing.T) {
		_, err := calc.NewSiteBuilder().
			Location(geo.NewLocation(123, -118)).
			Build()
		require.Error(t, err)
		assert.ErrorIs(t, err, calc.ErrConfiguration)
	})

	t.Run("invalid vs30", func(t *testing.T) {
		_, err := calc.NewSiteBuilder().
			Location(geo.NewLocation(34, -118)).
			Vs30(-100).
			Build()
		assert.Error(t, err)
	})

	t.Run("reuse panics", func(t *testing.T) {
		b := calc.NewSiteBuilder().Location(geo.NewLocation(34, -118))
		_, err := b.Build()
		require.NoError(t, err)
		assert.Panics(t, func() { b.Build() })
	})
}

func TestConfigBuilder(t *testing.T) {
	t.Run("no curves", func(t *testing.T) {
		_, err := calc.NewConfigBuilder().Build()
		require.Error(t, err)
		assert.ErrorIs(t, err, calc.ErrConfiguration)
	})

	t.Run("non-positive amplitude", func(t *testing.T) {
		_, err := calc.NewConfigBuilder().
			Curve(gmm.PGA, []float64{0, 0.1}).
			Build()
		assert.Error(t, err)
	})

	t.Run("log axis built from amplitudes", func(t *testing.T) {
		cfg, err := calc.NewConfigBuilder().
			Curve(gmm.PGA, []float64{0.01, 0.1, 1}).
			Build()
		require.NoError(t, err)
		logCurve := cfg.LogModelCurve(gmm.PGA)
		assert.InDelta(t, math.Log(0.01), logCurve.X(0), 1e-15)
		assert.InDelta(t, 0, logCurve.X(2), 1e-15)
		assert.Equal(t, 0.01, cfg.ModelCurve(gmm.PGA).X(0))
	})

	t.Run("imts ordered pga first", func(t *testing.T) {
		cfg, err := calc.NewConfigBuilder().
			Curve(gmm.SA1P0, []float64{0.01, 0.1}).
			Curve(gmm.SA0P2, []float64{0.01, 0.1}).
			Curve(gmm.PGA, []float64{0.01, 0.1}).
			Build()
		require.NoError(t, err)
		assert.Equal(t, []gmm.Imt{gmm.PGA, gmm.SA0P2, gmm.SA1P0}, cfg.Imts())
	})

	t.Run("defaults", func(t *testing.T) {
		cfg, err := calc.NewConfigBuilder().
			Curve(gmm.PGA, []float64{0.01, 0.1}).
			Build()
		require.NoError(t, err)
		assert.Equal(t, calc.DefaultTruncationLevel, cfg.Truncation())
		assert.Equal(t, calc.DefaultMaxDistance, cfg.MaxDistance())
		assert.Equal(t, calc.DefaultTimespan, cfg.Timespan())
	})

	t.Run("reuse panics", func(t *testing.T) {
		b := calc.NewConfigBuilder().Curve(gmm.PGA, []float64{0.01, 0.1})
		_, err := b.Build()
		require.NoError(t, err)
		assert.Panics(t, func() { b.Build() })
	})
}
