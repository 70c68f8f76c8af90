package calc

import (
	"math"

	"github.com/karim5623/hazcurve/internal/curve"
	"github.com/karim5623/hazcurve/internal/gmm"
)

// Calculation defaults.
const (
	DefaultTruncationLevel = 3.0
	DefaultMaxDistance     = 300.0 // km
	DefaultTimespan        = 1.0   // years
)

// Config carries the calculation settings of a hazard model: the IMTs of
// interest, the per-IMT model curve (the amplitude levels hazard is
// computed at), the exceedance model and its truncation level, the
// source distance cutoff, and the Poisson exposure window. Immutable;
// create via ConfigBuilder.
type Config struct {
	imts        []gmm.Imt
	modelCurves map[gmm.Imt]*curve.Sequence // linear amplitude x, zero y
	logCurves   map[gmm.Imt]*curve.Sequence // ln(amplitude) x, zero y
	exceedance  ExceedanceModel
	truncation  float64
	maxDistance float64
	timespan    float64
}

// ConfigBuilder assembles a Config. Single use; Build seals the value.
type ConfigBuilder struct {
	curves      map[gmm.Imt][]float64
	exceedance  ExceedanceModel
	truncation  float64
	maxDistance float64
	timespan    float64
	built       bool
}

// NewConfigBuilder returns a builder with default truncation, distance
// cutoff, and exposure window.
func NewConfigBuilder() *ConfigBuilder {
	return &ConfigBuilder{
		curves:      make(map[gmm.Imt][]float64),
		exceedance:  TruncationUpperOnly,
		truncation:  DefaultTruncationLevel,
		maxDistance: DefaultMaxDistance,
		timespan:    DefaultTimespan,
	}
}

// Curve declares an IMT of interest with its model curve of linear
// ground-motion amplitudes, in units of gravity. Declaration order does
// not matter: Build orders the IMTs PGA, PGV, then SA by period.
func (b *ConfigBuilder) Curve(imt gmm.Imt, amplitudes []float64) *ConfigBuilder {
	b.checkOpen()
	b.curves[imt] = amplitudes
	return b
}

// Exceedance selects the exceedance model variant.
func (b *ConfigBuilder) Exceedance(m ExceedanceModel) *ConfigBuilder {
	b.checkOpen()
	b.exceedance = m
	return b
}

// Truncation sets the truncation level in units of sigma.
func (b *ConfigBuilder) Truncation(n float64) *ConfigBuilder {
	b.checkOpen()
	b.truncation = n
	return b
}

// MaxDistance sets the source distance cutoff in kilometers.
func (b *ConfigBuilder) MaxDistance(r float64) *ConfigBuilder {
	b.checkOpen()
	b.maxDistance = r
	return b
}

// Timespan sets the exposure window, in years, used for Poisson
// probability conversion.
func (b *ConfigBuilder) Timespan(t float64) *ConfigBuilder {
	b.checkOpen()
	b.timespan = t
	return b
}

// Build validates and seals the Config. Model-curve amplitudes must be
// positive and strictly increasing so the log-domain axis is well formed.
func (b *ConfigBuilder) Build() (*Config, error) {
	b.checkOpen()
	b.built = true
	if len(b.curves) == 0 {
		return nil, configErr("no model curves declared")
	}
	if b.truncation < 0 || math.IsNaN(b.truncation) {
		return nil, configErr("truncation level %v out of range", b.truncation)
	}
	if b.maxDistance <= 0 {
		return nil, configErr("max distance %v out of range", b.maxDistance)
	}
	if b.timespan <= 0 {
		return nil, configErr("timespan %v out of range", b.timespan)
	}

	cfg := &Config{
		exceedance:  b.exceedance,
		truncation:  b.truncation,
		maxDistance: b.maxDistance,
		timespan:    b.timespan,
		modelCurves: make(map[gmm.Imt]*curve.Sequence, len(b.curves)),
		logCurves:   make(map[gmm.Imt]*curve.Sequence, len(b.curves)),
	}
	for imt, amps := range b.curves {
		logXs := make([]float64, len(amps))
		for i, a := range amps {
			if a <= 0 {
				return nil, configErr("imt %s: amplitude %v not positive", imt, a)
			}
			logXs[i] = math.Log(a)
		}
		lin, err := curve.New(amps)
		if err != nil {
			return nil, configErr("imt %s: %v", imt, err)
		}
		logSeq, err := curve.New(logXs)
		if err != nil {
			return nil, configErr("imt %s: %v", imt, err)
		}
		cfg.modelCurves[imt] = lin
		cfg.logCurves[imt] = logSeq
		cfg.imts = append(cfg.imts, imt)
	}
	sortImts(cfg.imts)
	return cfg, nil
}

func (b *ConfigBuilder) checkOpen() {
	if b.built {
		panic("calc: ConfigBuilder reused after Build")
	}
}

// sortImts orders IMTs deterministically: PGA, PGV, then SA by period.
func sortImts(imts []gmm.Imt) {
	rank := func(i gmm.Imt) float64 {
		switch {
		case i == gmm.PGA:
			return -2
		case i == gmm.PGV:
			return -1
		default:
			return i.Period()
		}
	}
	for i := 1; i < len(imts); i++ {
		for j := i; j > 0 && rank(imts[j]) < rank(imts[j-1]); j-- {
			imts[j], imts[j-1] = imts[j-1], imts[j]
		}
	}
}

// Imts returns the configured IMTs in deterministic order.
func (c *Config) Imts() []gmm.Imt { return c.imts }

// ModelCurve returns the zero-y linear-amplitude model curve for imt.
func (c *Config) ModelCurve(imt gmm.Imt) *curve.Sequence { return c.modelCurves[imt] }

// LogModelCurve returns the zero-y log-amplitude model curve for imt.
// All integration happens on this axis.
func (c *Config) LogModelCurve(imt gmm.Imt) *curve.Sequence { return c.logCurves[imt] }

// Exceedance returns the exceedance model variant.
func (c *Config) Exceedance() ExceedanceModel { return c.exceedance }

// Truncation returns the truncation level in units of sigma.
func (c *Config) Truncation() float64 { return c.truncation }

// MaxDistance returns the source distance cutoff in kilometers.
func (c *Config) MaxDistance() float64 { return c.maxDistance }

// Timespan returns the Poisson exposure window in years.
func (c *Config) Timespan() float64 { return c.timespan }
