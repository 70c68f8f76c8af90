package calc

import (
	"math"
	"time"

	"github.com/karim5623/hazcurve/internal/curve"
	"github.com/karim5623/hazcurve/internal/eq"
	"github.com/karim5623/hazcurve/internal/gmm"
)

// Result is the terminal value of a hazard calculation for one site:
// per-IMT total curves in both the log-amplitude rate domain used during
// integration and the linear-amplitude Poisson-probability domain, plus
// per-source-type roll-ups.
type Result struct {
	Site       Site
	Model      *eq.HazardModel
	Config     *Config
	ComputedAt time.Time

	logCurves  map[gmm.Imt]*curve.Sequence
	probCurves map[gmm.Imt]*curve.Sequence
	typeCurves map[eq.SourceType]map[gmm.Imt]*curve.Sequence
}

// LogCurve returns the total annual-rate curve for imt on the
// log-amplitude axis.
func (r *Result) LogCurve(imt gmm.Imt) *curve.Sequence { return r.logCurves[imt] }

// Curve returns the total curve for imt on the linear-amplitude axis
// with Poisson exceedance-probability y-values for the configured
// exposure window.
func (r *Result) Curve(imt gmm.Imt) *curve.Sequence { return r.probCurves[imt] }

// TypeCurve returns the annual-rate roll-up of one source type for imt,
// or nil if the model contributed no sources of that type.
func (r *Result) TypeCurve(t eq.SourceType, imt gmm.Imt) *curve.Sequence {
	byImt, ok := r.typeCurves[t]
	if !ok {
		return nil
	}
	return byImt[imt]
}

// SourceTypes returns the source types that contributed to the result.
func (r *Result) SourceTypes() []eq.SourceType {
	types := make([]eq.SourceType, 0, len(r.typeCurves))
	for t := range r.typeCurves {
		types = append(types, t)
	}
	for i := 1; i < len(types); i++ {
		for j := i; j > 0 && types[j] < types[j-1]; j-- {
			types[j], types[j-1] = types[j-1], types[j]
		}
	}
	return types
}

// RateToProbability converts an annual exceedance rate to a Poisson
// probability of one or more exceedances in a window of t years.
func RateToProbability(rate, t float64) float64 {
	return 1 - math.Exp(-rate*t)
}

// resultBuilder folds CurveSets into a Result, applying each set's
// logic-tree weight exactly once. Single use.
type resultBuilder struct {
	result *Result
	built  bool
}

func newResultBuilder(model *eq.HazardModel, cfg *Config, site Site) *resultBuilder {
	r := &Result{
		Site:       site,
		Model:      model,
		Config:     cfg,
		logCurves:  make(map[gmm.Imt]*curve.Sequence, len(cfg.Imts())),
		probCurves: make(map[gmm.Imt]*curve.Sequence, len(cfg.Imts())),
		typeCurves: make(map[eq.SourceType]map[gmm.Imt]*curve.Sequence),
	}
	for _, imt := range cfg.Imts() {
		r.logCurves[imt] = cfg.LogModelCurve(imt).ZeroClone()
	}
	return &resultBuilder{result: r}
}

func (b *resultBuilder) addCurveSet(cs *CurveSet) {
	if b.built {
		panic("calc: resultBuilder reused after build")
	}
	r := b.result
	w := cs.SourceSet().Weight()
	typ := cs.SourceSet().Type()
	byImt, ok := r.typeCurves[typ]
	if !ok {
		byImt = make(map[gmm.Imt]*curve.Sequence, len(r.Config.Imts()))
		r.typeCurves[typ] = byImt
	}
	for _, imt := range r.Config.Imts() {
		weighted := cs.Total(imt).Clone().Mul(w)
		r.logCurves[imt].Add(weighted)
		if _, ok := byImt[imt]; !ok {
			byImt[imt] = r.Config.LogModelCurve(imt).ZeroClone()
		}
		byImt[imt].Add(weighted)
	}
}

func (b *resultBuilder) build() *Result {
	if b.built {
		panic("calc: resultBuilder reused after build")
	}
	b.built = true
	r := b.result
	t := r.Config.Timespan()
	for _, imt := range r.Config.Imts() {
		prob := r.Config.ModelCurve(imt).ZeroClone()
		rates := r.logCurves[imt].Ys()
		ys := prob.Ys()
		for i, rate := range rates {
			ys[i] = RateToProbability(rate, t)
		}
		r.probCurves[imt] = prob
	}
	r.ComputedAt = clock.Now()
	return r
}
