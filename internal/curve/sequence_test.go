package curve_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/karim5623/hazcurve/internal/curve"
)

func TestNew(t *testing.T) {
	t.Run("valid axis", func(t *testing.T) {
		s, err := curve.New([]float64{1, 2, 3})
		require.NoError(t, err)
		assert.Equal(t, 3, s.Len())
		assert.Equal(t, []float64{0, 0, 0}, s.Ys())
	})

	t.Run("too short", func(t *testing.T) {
		_, err := curve.New([]float64{1})
		assert.Error(t, err)
	})

	t.Run("not increasing", func(t *testing.T) {
		_, err := curve.New([]float64{1, 3, 2})
		assert.Error(t, err)
	})

	t.Run("duplicate values", func(t *testing.T) {
		_, err := curve.New([]float64{1, 1, 2})
		assert.Error(t, err)
	})
}

func TestSequence_AddMul(t *testing.T) {
	a := curve.MustNew([]float64{0, 1, 2})
	a.SetY(0, 1)
	a.SetY(1, 2)
	a.SetY(2, 3)

	b := a.ZeroClone()
	b.SetY(0, 10)
	b.SetY(1, 20)
	b.SetY(2, 30)

	a.Add(b)
	assert.Equal(t, []float64{11, 22, 33}, a.Ys())

	a.Mul(2)
	assert.Equal(t, []float64{22, 44, 66}, a.Ys())
}

func TestSequence_AddPanicsOnAxisMismatch(t *testing.T) {
	a := curve.MustNew([]float64{0, 1, 2})
	b := curve.MustNew([]float64{0, 1, 3})
	assert.Panics(t, func() { a.Add(b) })
}

func TestSequence_CloneIsIndependent(t *testing.T) {
	a := curve.MustNew([]float64{0, 1})
	a.SetY(0, 5)

	b := a.Clone()
	require.True(t, a.Equal(b))

	b.SetY(0, 7)
	assert.Equal(t, 5.0, a.Y(0))
	assert.Equal(t, 7.0, b.Y(0))
}

func TestSequence_MapY(t *testing.T) {
	s := curve.MustNew([]float64{1, 2, 3})
	s.MapY(func(x float64) float64 { return x * 10 })
	assert.Equal(t, []float64{10, 20, 30}, s.Ys())
}

func TestSequence_SameAxisByValue(t *testing.T) {
	a := curve.MustNew([]float64{0, 1, 2})
	b := curve.MustNew([]float64{0, 1, 2})
	assert.True(t, a.SameAxis(b))
	assert.NotPanics(t, func() { a.Add(b) })
}
