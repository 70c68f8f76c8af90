package calc_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/karim5623/hazcurve/internal/calc"
	"github.com/karim5623/hazcurve/internal/curve"
	"github.com/karim5623/hazcurve/internal/gmm"
)

// logAxis builds a log-amplitude scratch curve spanning exp(-8)..exp(2).
func logAxis() *curve.Sequence {
	xs := make([]float64, 21)
	for i := range xs {
		xs[i] = -8 + float64(i)*0.5
	}
	return curve.MustNew(xs)
}

func TestExceedance_ZeroSigmaIsStep(t *testing.T) {
	s := curve.MustNew([]float64{-4, -3, -2, -1})
	mean := -2.5

	for _, m := range []calc.ExceedanceModel{
		calc.ExceedanceNone,
		calc.TruncationUpperOnly,
		calc.TruncationLowerUpper,
		calc.NshmCeusMaxIntensity,
	} {
		m.Exceedance(mean, 0, 3, gmm.PGA, s)
		assert.Equal(t, []float64{1, 1, 0, 0}, s.Ys(), m.String())
	}
}

func TestExceedance_None(t *testing.T) {
	s := curve.MustNew([]float64{-3, -2, -1})
	calc.ExceedanceNone.Exceedance(-2, 0.5, 3, gmm.PGA, s)

	assert.InDelta(t, 0.5, s.Y(1), 1e-12, "median amplitude exceeds half the time")
	assert.Greater(t, s.Y(0), 0.97)
	assert.Less(t, s.Y(2), 0.03)
}

func TestExceedance_TruncationUpperOnly(t *testing.T) {
	s := logAxis()
	mean, sigma, n := -3.0, 0.6, 2.0
	calc.TruncationUpperOnly.Exceedance(mean, sigma, n, gmm.PGA, s)

	upper := mean + n*sigma
	for i := 0; i < s.Len(); i++ {
		if s.X(i) >= upper {
			assert.Zero(t, s.Y(i), "beyond upper truncation")
		}
	}
	// Lower tail is untruncated and renormalized toward 1.
	assert.Greater(t, s.Y(0), 0.999)
	assert.LessOrEqual(t, s.Y(0), 1.0)
}

func TestExceedance_TruncationLowerUpper(t *testing.T) {
	s := logAxis()
	mean, sigma, n := -3.0, 0.6, 2.0
	calc.TruncationLowerUpper.Exceedance(mean, sigma, n, gmm.PGA, s)

	for i := 0; i < s.Len(); i++ {
		switch {
		case s.X(i) <= mean-n*sigma:
			assert.Equal(t, 1.0, s.Y(i), "below lower truncation")
		case s.X(i) >= mean+n*sigma:
			assert.Zero(t, s.Y(i), "above upper truncation")
		}
	}
}

func TestExceedance_NshmCeusMaxIntensity(t *testing.T) {
	s := logAxis()
	calc.NshmCeusMaxIntensity.Exceedance(1.5, 1.0, 3, gmm.PGA, s)

	xMax := math.Log(3.0)
	for i := 0; i < s.Len(); i++ {
		if s.X(i) >= xMax {
			assert.Zero(t, s.Y(i), "above pga ceiling")
		} else {
			assert.Greater(t, s.Y(i), 0.0)
		}
	}

	// Long-period spectral acceleration caps at 6 g instead, so levels
	// between ln 3 and ln 6 stay nonzero.
	calc.NshmCeusMaxIntensity.Exceedance(1.5, 1.0, 3, gmm.SA1P0, s)
	assert.Greater(t, s.Y(s.Len()-2), 0.0) // x=1.5 < ln 6
	assert.Zero(t, s.Y(s.Len()-1))         // x=2.0 > ln 6
}

func TestExceedance_Properties(t *testing.T) {
	models := []calc.ExceedanceModel{
		calc.ExceedanceNone,
		calc.TruncationUpperOnly,
		calc.TruncationLowerUpper,
		calc.NshmCeusMaxIntensity,
	}
	for _, m := range models {
		t.Run(m.String(), func(t *testing.T) {
			s := logAxis()
			m.Exceedance(-2.5, 0.7, 3, gmm.PGA, s)
			prev := math.Inf(1)
			for i := 0; i < s.Len(); i++ {
				y := s.Y(i)
				require.False(t, math.IsNaN(y))
				require.GreaterOrEqual(t, y, 0.0)
				require.LessOrEqual(t, y, 1.0)
				require.LessOrEqual(t, y, prev, "non-increasing")
				prev = y
			}
		})
	}
}

func TestParseExceedanceModel(t *testing.T) {
	m, err := calc.ParseExceedanceModel("TRUNCATION_LOWER_UPPER")
	require.NoError(t, err)
	assert.Equal(t, calc.TruncationLowerUpper, m)

	_, err = calc.ParseExceedanceModel("bogus")
	assert.Error(t, err)
}
