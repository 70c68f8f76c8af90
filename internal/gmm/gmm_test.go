package gmm_test

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/karim5623/hazcurve/internal/gmm"
)

func TestImt(t *testing.T) {
	assert.False(t, gmm.PGA.IsSA())
	assert.True(t, gmm.SA0P2.IsSA())
	assert.Equal(t, 0.2, gmm.SA0P2.Period())
	assert.Equal(t, 1.0, gmm.SA1P0.Period())
	assert.Equal(t, 0.0, gmm.PGA.Period())
}

func TestParametric(t *testing.T) {
	p := gmm.Parametric{C0: -1.0, C1: 0.5, C2: 1.2, C3: 5, SigmaLn: 0.6}
	mean, sigma := p.Calc(gmm.Input{Mag: 7.0, RRup: 10})

	want := -1.0 + 0.5*7.0 - 1.2*math.Log(15.0)
	assert.InDelta(t, want, mean, 1e-12)
	assert.Equal(t, 0.6, sigma)

	// Larger distance attenuates the median.
	farMean, _ := p.Calc(gmm.Input{Mag: 7.0, RRup: 100})
	assert.Less(t, farMean, mean)
}

func TestInstances(t *testing.T) {
	ids := []gmm.Gmm{"A", "B"}
	imts := []gmm.Imt{gmm.PGA, gmm.SA1P0}

	table, err := gmm.NewInstances(ids, imts, func(g gmm.Gmm, m gmm.Imt) (gmm.GroundMotionModel, error) {
		return gmm.Parametric{SigmaLn: 0.5}, nil
	})
	require.NoError(t, err)

	assert.Equal(t, []gmm.Gmm{"A", "B"}, table.Gmms())

	inst, err := table.Get("A", gmm.PGA)
	require.NoError(t, err)
	assert.NotNil(t, inst)

	_, err = table.Get("C", gmm.PGA)
	assert.Error(t, err)
	_, err = table.Get("A", gmm.PGV)
	assert.Error(t, err)
}

func TestInstances_FactoryError(t *testing.T) {
	boom := errors.New("no coefficients")
	_, err := gmm.NewInstances([]gmm.Gmm{"A"}, []gmm.Imt{gmm.PGA},
		func(gmm.Gmm, gmm.Imt) (gmm.GroundMotionModel, error) { return nil, boom })
	assert.ErrorIs(t, err, boom)
}
