package calc

import (
	"fmt"
	"math"

	"github.com/karim5623/hazcurve/internal/curve"
	"github.com/karim5623/hazcurve/internal/gmm"
)

// ExceedanceModel selects how the tails of the log-normal ground-motion
// distribution are handled when integrating exceedance over a model
// curve. The set is closed; dispatch is by tag.
type ExceedanceModel int

// Exceedance model variants.
const (
	// ExceedanceNone integrates the full untruncated distribution.
	ExceedanceNone ExceedanceModel = iota

	// TruncationUpperOnly truncates the upper tail at mean + n·sigma and
	// renormalizes against the removed mass.
	TruncationUpperOnly

	// TruncationLowerUpper truncates both tails at mean ± n·sigma.
	TruncationLowerUpper

	// NshmCeusMaxIntensity clips exceedance to zero at the maximum
	// intensity assigned to the IMT, leaving the lower tail untruncated.
	NshmCeusMaxIntensity
)

var exceedanceNames = map[ExceedanceModel]string{
	ExceedanceNone:       "NONE",
	TruncationUpperOnly:  "TRUNCATION_UPPER_ONLY",
	TruncationLowerUpper: "TRUNCATION_LOWER_UPPER",
	NshmCeusMaxIntensity: "NSHM_CEUS_MAX_INTENSITY",
}

func (m ExceedanceModel) String() string {
	if s, ok := exceedanceNames[m]; ok {
		return s
	}
	return fmt.Sprintf("ExceedanceModel(%d)", int(m))
}

// ParseExceedanceModel resolves a variant name used in model files.
func ParseExceedanceModel(s string) (ExceedanceModel, error) {
	for m, name := range exceedanceNames {
		if name == s {
			return m, nil
		}
	}
	return 0, configErr("unknown exceedance model %q", s)
}

// Exceedance fills s with the probability of exceeding each x-value
// given a normal distribution of the log ground motion with the supplied
// mean and sigma, truncated at trunc sigma units per the model variant.
// Means and x-values share the natural-log amplitude domain. A zero
// sigma is treated as a delta at the mean, producing a step function.
func (m ExceedanceModel) Exceedance(mean, sigma, trunc float64, imt gmm.Imt, s *curve.Sequence) {
	if sigma == 0 {
		s.MapY(func(x float64) float64 {
			if x < mean {
				return 1
			}
			return 0
		})
		return
	}

	switch m {
	case ExceedanceNone:
		s.MapY(func(x float64) float64 {
			return ccdf((x - mean) / sigma)
		})
	case TruncationUpperOnly:
		pHi := ccdf(trunc)
		s.MapY(func(x float64) float64 {
			return bounded(ccdf((x-mean)/sigma), pHi, 1)
		})
	case TruncationLowerUpper:
		pHi := ccdf(trunc)
		pLo := ccdf(-trunc)
		s.MapY(func(x float64) float64 {
			return bounded(ccdf((x-mean)/sigma), pHi, pLo)
		})
	case NshmCeusMaxIntensity:
		xMax := math.Log(maxIntensity(imt))
		s.MapY(func(x float64) float64 {
			if x >= xMax {
				return 0
			}
			return ccdf((x - mean) / sigma)
		})
	default:
		panic(fmt.Sprintf("calc: unhandled exceedance model %d", int(m)))
	}
}

// ccdf is the standard normal complementary CDF.
func ccdf(z float64) float64 {
	return 0.5 * math.Erfc(z/math.Sqrt2)
}

// bounded rescales a complementary probability to the truncated interval
// [pHi, pLo] and clamps the tails, so values beyond the truncation
// points map to exactly 0 and 1.
func bounded(p, pHi, pLo float64) float64 {
	if p <= pHi {
		return 0
	}
	if p >= pLo {
		return 1
	}
	return (p - pHi) / (pLo - pHi)
}

// maxIntensity returns the ground-motion ceiling, in units of gravity,
// applied by NshmCeusMaxIntensity: 3 g for PGA and short-period spectral
// acceleration, 6 g for periods of 0.75 s and longer.
func maxIntensity(imt gmm.Imt) float64 {
	if imt.IsSA() && imt.Period() >= 0.75 {
		return 6.0
	}
	return 3.0
}
