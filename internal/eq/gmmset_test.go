package eq_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/karim5623/hazcurve/internal/eq"
	"github.com/karim5623/hazcurve/internal/gmm"
)

const (
	gmmA = gmm.Gmm("GMM_A")
	gmmB = gmm.Gmm("GMM_B")
)

func TestGmmSetBuilder(t *testing.T) {
	t.Run("weights must close", func(t *testing.T) {
		_, err := eq.NewGmmSetBuilder().
			Near(map[gmm.Gmm]float64{gmmA: 0.5, gmmB: 0.4}).
			Build()
		assert.ErrorContains(t, err, "sum")
	})

	t.Run("tolerates 1e-10 slop", func(t *testing.T) {
		_, err := eq.NewGmmSetBuilder().
			Near(map[gmm.Gmm]float64{gmmA: 0.5, gmmB: 0.5 + 1e-10}).
			Build()
		assert.NoError(t, err)
	})

	t.Run("negative weight rejected", func(t *testing.T) {
		_, err := eq.NewGmmSetBuilder().
			Near(map[gmm.Gmm]float64{gmmA: 1.5, gmmB: -0.5}).
			Build()
		assert.Error(t, err)
	})

	t.Run("far defaults to near", func(t *testing.T) {
		s, err := eq.NewGmmSetBuilder().
			Near(map[gmm.Gmm]float64{gmmA: 1}).
			Build()
		require.NoError(t, err)
		assert.Equal(t, 1.0, s.Weight(gmmA, 10))
		assert.Equal(t, 1.0, s.Weight(gmmA, 1000))
	})

	t.Run("reuse panics", func(t *testing.T) {
		b := eq.NewGmmSetBuilder().Near(map[gmm.Gmm]float64{gmmA: 1})
		_, err := b.Build()
		require.NoError(t, err)
		assert.Panics(t, func() { b.Build() })
	})
}

func TestGmmSet_Weight(t *testing.T) {
	s, err := eq.NewGmmSetBuilder().
		Near(map[gmm.Gmm]float64{gmmA: 0.8, gmmB: 0.2}).
		Far(map[gmm.Gmm]float64{gmmA: 0.2, gmmB: 0.8}).
		Cutoff(100).
		Band(20).
		Build()
	require.NoError(t, err)

	t.Run("near field", func(t *testing.T) {
		assert.Equal(t, 0.8, s.Weight(gmmA, 50))
	})

	t.Run("far field", func(t *testing.T) {
		assert.Equal(t, 0.2, s.Weight(gmmA, 200))
	})

	t.Run("band midpoint blends evenly", func(t *testing.T) {
		assert.InDelta(t, 0.5, s.Weight(gmmA, 100), 1e-12)
	})

	t.Run("band edges meet regimes", func(t *testing.T) {
		assert.InDelta(t, 0.8, s.Weight(gmmA, 90), 1e-12)
		assert.InDelta(t, 0.2, s.Weight(gmmA, 110), 1e-12)
	})

	t.Run("blended weights still close", func(t *testing.T) {
		sum := s.Weight(gmmA, 95) + s.Weight(gmmB, 95)
		assert.InDelta(t, 1.0, sum, 1e-9)
	})

	t.Run("gmms sorted", func(t *testing.T) {
		assert.Equal(t, []gmm.Gmm{gmmA, gmmB}, s.Gmms())
	})
}
