// Package calc implements the probabilistic seismic hazard calculation
// pipeline: the staged transformation of an earthquake-source model and
// a site into per-IMT exceedance curves.
//
// The pipeline runs per source and consolidates upward:
//
//	Source → InputList → GroundMotions → HazardCurves → CurveSet → Result
//
// Cluster sources replace the curve stage with an independent-event
// combination; fault-system sets process their rupture table in bulk.
// Sequential and parallel execution produce bitwise-identical results:
// every fan-out reduces in source declaration order, never completion
// order.
package calc

import (
	"context"
	"log/slog"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/karim5623/hazcurve/internal/eq"
	"github.com/karim5623/hazcurve/internal/observability"
)

// Calculator computes hazard curves against a fixed model and config.
// It is immutable and safe for concurrent use across sites.
type Calculator struct {
	model   *eq.HazardModel
	cfg     *Config
	logger  *slog.Logger
	metrics *observability.Metrics
}

// New creates a Calculator, failing fast on configuration errors: every
// gmm referenced by the model must have an instance for every configured
// IMT.
func New(
	model *eq.HazardModel,
	cfg *Config,
	logger *slog.Logger,
	metrics *observability.Metrics) (*Calculator, error) {

	for _, set := range model.SourceSets() {
		for _, g := range set.Gmms().Gmms() {
			for _, imt := range cfg.Imts() {
				if _, err := model.Gmms().Get(g, imt); err != nil {
					return nil, configErr("source set %s: %v", set.Name(), err)
				}
			}
		}
	}
	return &Calculator{model: model, cfg: cfg, logger: logger, metrics: metrics}, nil
}

// Curves computes the hazard result for site on the calling goroutine.
func (c *Calculator) Curves(ctx context.Context, site Site) (*Result, error) {
	return c.run(ctx, site, 0)
}

// CurvesParallel computes the hazard result for site fanning sources out
// across workers goroutines. workers < 1 defaults to GOMAXPROCS. The
// result is bitwise-identical to Curves.
func (c *Calculator) CurvesParallel(ctx context.Context, site Site, workers int) (*Result, error) {
	if workers < 1 {
		workers = runtime.GOMAXPROCS(0)
	}
	return c.run(ctx, site, workers)
}

// run executes the pipeline; workers == 0 selects sequential mode.
func (c *Calculator) run(ctx context.Context, site Site, workers int) (*Result, error) {
	start := clock.Now()
	c.metrics.CalcsInFlight.Inc()
	defer c.metrics.CalcsInFlight.Dec()

	sets := c.model.SourceSets()
	curveSets := make([]*CurveSet, len(sets))

	var err error
	if workers == 0 {
		err = c.runSequential(ctx, site, sets, curveSets)
	} else {
		err = c.runParallel(ctx, site, sets, curveSets, workers)
	}
	if err != nil {
		c.metrics.CalcErrors.Inc()
		return nil, err
	}

	// Model-level barrier has been passed; reduce in declaration order.
	builder := newResultBuilder(c.model, c.cfg, site)
	for _, cs := range curveSets {
		builder.addCurveSet(cs)
	}
	result := builder.build()

	c.metrics.Calculations.Inc()
	c.metrics.CalcDuration.Observe(clock.Since(start).Seconds())
	c.logger.Info("hazard calculation complete",
		"site", site.Name,
		"source_sets", len(sets),
		"duration", clock.Since(start),
	)
	return result, nil
}

func (c *Calculator) runSequential(ctx context.Context, site Site, sets []*eq.SourceSet, out []*CurveSet) error {
	for i, set := range sets {
		if err := checkCanceled(ctx); err != nil {
			return err
		}
		cs, err := c.setToCurves(ctx, set, site, 0)
		if err != nil {
			return err
		}
		out[i] = cs
	}
	return nil
}

func (c *Calculator) runParallel(ctx context.Context, site Site, sets []*eq.SourceSet, out []*CurveSet, workers int) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, set := range sets {
		i, set := i, set
		g.Go(func() error {
			cs, err := c.setToCurves(gctx, set, site, workers)
			if err != nil {
				return err
			}
			out[i] = cs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return checkCanceled(ctx)
}

// setToCurves dispatches on the set's source type tag. workers == 0
// keeps per-source processing on the calling goroutine.
func (c *Calculator) setToCurves(ctx context.Context, set *eq.SourceSet, site Site, workers int) (*CurveSet, error) {
	switch set.Type() {
	case eq.ClusterType:
		return c.clustersToCurves(ctx, set, site, workers)
	case eq.SystemType:
		if err := checkCanceled(ctx); err != nil {
			return nil, err
		}
		cs, err := systemToCurves(set, c.cfg, site, c.model.Gmms(), c.cfg.Imts())
		if err != nil {
			return nil, err
		}
		c.metrics.SourcesProcessed.Inc()
		return cs, nil
	default:
		return c.sourcesToCurves(ctx, set, site, workers)
	}
}

// sourcesToCurves runs stages 1-3 per source and consolidates the set in
// declaration order.
func (c *Calculator) sourcesToCurves(ctx context.Context, set *eq.SourceSet, site Site, workers int) (*CurveSet, error) {
	sources := set.ForLocation(site.Location, c.cfg.MaxDistance())
	c.metrics.SourcesPerSet.Observe(float64(len(sources)))

	curvesList := make([]*HazardCurves, len(sources))
	process := func(ctx context.Context, i int) error {
		if err := checkCanceled(ctx); err != nil {
			return err
		}
		hc, err := c.sourceToCurves(set, sources[i], site)
		if err != nil {
			return err
		}
		curvesList[i] = hc
		return nil
	}

	if workers == 0 {
		for i := range sources {
			if err := process(ctx, i); err != nil {
				return nil, err
			}
		}
	} else {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(workers)
		for i := range sources {
			i := i
			g.Go(func() error { return process(gctx, i) })
		}
		// Set-level barrier: all sources complete before consolidation.
		if err := g.Wait(); err != nil {
			return nil, err
		}
	}

	builder := newCurveSetBuilder(set, c.cfg)
	for _, hc := range curvesList {
		builder.addCurves(hc)
	}
	return builder.build(), nil
}

// sourceToCurves runs the three per-source stages.
func (c *Calculator) sourceToCurves(set *eq.SourceSet, src eq.Source, site Site) (*HazardCurves, error) {
	inputs, err := sourceToInputs(src, site)
	if err != nil {
		return nil, modelErr(set.Name(), "", "%v", err)
	}
	gmms := set.Gmms().Gmms()
	gms, err := inputsToGroundMotions(inputs, c.model.Gmms(), gmms, c.cfg.Imts())
	if err != nil {
		return nil, err
	}
	c.metrics.SourcesProcessed.Inc()
	c.metrics.GmmEvaluations.Add(float64(len(inputs.Inputs) * len(gmms) * len(c.cfg.Imts())))
	return groundMotionsToCurves(gms, c.cfg), nil
}

// clustersToCurves runs the cluster pipeline per cluster source and
// consolidates in declaration order, retaining per-cluster curves.
func (c *Calculator) clustersToCurves(ctx context.Context, set *eq.SourceSet, site Site, workers int) (*CurveSet, error) {
	clusters := set.ClustersForLocation(site.Location, c.cfg.MaxDistance())
	c.metrics.SourcesPerSet.Observe(float64(len(clusters)))

	curvesList := make([]*ClusterCurves, len(clusters))
	process := func(ctx context.Context, i int) error {
		if err := checkCanceled(ctx); err != nil {
			return err
		}
		inputs, err := clusterToInputs(clusters[i], site)
		if err != nil {
			return modelErr(set.Name(), clusters[i].Name(), "%v", err)
		}
		cgm, err := clusterInputsToGroundMotions(inputs, c.model.Gmms(), set.Gmms().Gmms(), c.cfg.Imts())
		if err != nil {
			return err
		}
		curvesList[i] = clusterGroundMotionsToCurves(cgm, c.cfg)
		c.metrics.SourcesProcessed.Inc()
		return nil
	}

	if workers == 0 {
		for i := range clusters {
			if err := process(ctx, i); err != nil {
				return nil, err
			}
		}
	} else {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(workers)
		for i := range clusters {
			i := i
			g.Go(func() error { return process(gctx, i) })
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	}

	builder := newCurveSetBuilder(set, c.cfg)
	for _, cc := range curvesList {
		builder.addClusterCurves(cc)
	}
	return builder.build(), nil
}

// checkCanceled maps context errors to the distinguished cancellation
// kind. Outstanding work exits at the next stage boundary; partial
// results are discarded by the caller.
func checkCanceled(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return &cancelError{cause: err}
	}
	return nil
}

type cancelError struct{ cause error }

func (e *cancelError) Error() string { return ErrCanceled.Error() + ": " + e.cause.Error() }
func (e *cancelError) Is(target error) bool {
	return target == ErrCanceled
}
func (e *cancelError) Unwrap() error { return e.cause }
