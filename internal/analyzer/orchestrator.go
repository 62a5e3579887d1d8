// Package analyzer sequences the engine components over a dataset,
// aggregates their partial results and caches completed runs by
// (dataset content, configuration) fingerprint.
package analyzer

import (
	"context"
	"errors"
	"runtime"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"tabscope/domain/analysis"
	"tabscope/domain/core"
	"tabscope/domain/dataset"
	"tabscope/internal"
	"tabscope/internal/colstats"
	"tabscope/internal/correlation"
	"tabscope/internal/distribution"
	"tabscope/internal/missing"
	"tabscope/internal/outliers"
	"tabscope/internal/schema"
	"tabscope/ports"
)

// columnSlot is one column's private output area during fan-out.
// Workers write only their own slot, so the fan-out phase needs no
// locking; slots are merged once every unit has completed.
type columnSlot struct {
	stats    *analysis.StatSummary
	outliers *analysis.ColumnOutliers
	tests    []analysis.DistributionTestResult
	errs     []analysis.ColumnError
}

// Orchestrator implements ports.AnalyzerPort
type Orchestrator struct {
	cache *resultCache
	store ports.ResultStore
	log   *internal.Logger

	// computeRuns counts full (uncached) component executions;
	// exercised by cache-hit verification.
	computeRuns atomic.Int64
}

// NewOrchestrator creates an orchestrator. The store may be nil; when
// present it acts as a durable second cache level behind the in-memory
// one.
func NewOrchestrator(store ports.ResultStore) *Orchestrator {
	return &Orchestrator{
		cache: newResultCache(),
		store: store,
		log:   internal.NewDefaultLogger(),
	}
}

// ComputeRuns returns how many analyses ran without a cache hit
func (o *Orchestrator) ComputeRuns() int64 {
	return o.computeRuns.Load()
}

// Analyze is the single entry point. It returns a best-effort result
// with per-column errors attached; only invalid configuration and
// dataset access failures surface as errors.
func (o *Orchestrator) Analyze(ctx context.Context, ds *dataset.Dataset, cfg analysis.Config) (*analysis.AnalysisResult, error) {
	if ds == nil {
		return nil, core.NewDatasetAccessError("nil dataset", nil)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	cfgHash, err := cfg.Hash()
	if err != nil {
		return nil, core.NewConfigError("config", err.Error())
	}
	fp := core.NewFingerprint(ds.ContentHash(), cfgHash)

	if cached, ok := o.cache.Get(fp); ok {
		o.log.Debug("analysis cache hit for %s", fp)
		return cached, nil
	}
	if o.store != nil {
		if stored, err := o.store.Find(ctx, fp); err == nil {
			o.cache.Put(fp, stored)
			return stored, nil
		} else if !errors.Is(err, core.ErrResultNotFound) {
			o.log.Warn("result store lookup failed: %v", err)
		}
	}

	result, err := o.compute(ctx, ds, cfg, fp)
	if err != nil {
		return nil, err
	}

	o.cache.Put(fp, result)
	if o.store != nil {
		if err := o.store.Save(ctx, result); err != nil {
			o.log.Warn("result store save failed: %v", err)
		}
	}
	return result, nil
}

func (o *Orchestrator) compute(ctx context.Context, ds *dataset.Dataset, cfg analysis.Config, fp core.Fingerprint) (*analysis.AnalysisResult, error) {
	o.computeRuns.Add(1)
	started := time.Now()

	result := &analysis.AnalysisResult{
		RunID:       core.RunID(core.NewID()),
		DatasetName: ds.Name,
		Rows:        ds.Rows(),
		ColumnCount: ds.ColumnCount(),
		Fingerprint: fp,
		CreatedAt:   started.UTC(),
	}

	// Schema probing gates every other component, so it runs first
	// and sequentially.
	prober := schema.NewProber(cfg.SchemaMatchFraction)
	entries := make(map[core.ColumnKey]dataset.SchemaEntry, ds.ColumnCount())
	for _, col := range ds.Columns {
		entry, err := prober.Probe(col)
		if err != nil {
			result.Errors = append(result.Errors, analysis.ColumnError{
				Component: "schema",
				Column:    col.Name,
				Message:   err.Error(),
			})
			continue
		}
		entries[col.Name] = entry
		result.Schema = append(result.Schema, entry)
	}

	statsComputer := colstats.NewComputer(cfg)
	outlierDetector := outliers.NewDetector(cfg)
	tester := distribution.NewTester(cfg.SignificanceLevel)
	missingAnalyzer := missing.NewAnalyzer(cfg.MissingnessSimilarityThreshold)
	corrEngine := correlation.NewEngine(cfg)

	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	slots := make([]columnSlot, ds.ColumnCount())
	var missReport *analysis.MissingnessReport
	var corrMatrix *analysis.CorrelationMatrix
	var missErr, corrErr error

	group, gctx := errgroup.WithContext(ctx)
	group.SetLimit(workers)

	for i, col := range ds.Columns {
		entry, probed := entries[col.Name]
		if !probed {
			continue
		}
		i, col, entry := i, col, entry
		group.Go(func() error {
			return o.analyzeColumn(gctx, &slots[i], col, entry, cfg, statsComputer, outlierDetector, tester)
		})
	}

	group.Go(func() error {
		missReport, missErr = missingAnalyzer.Analyze(gctx, ds)
		if missErr != nil && gctx.Err() != nil {
			return missErr
		}
		return nil
	})
	group.Go(func() error {
		corrMatrix, corrErr = corrEngine.Compute(gctx, ds, entries)
		if corrErr != nil && gctx.Err() != nil {
			return corrErr
		}
		return nil
	})

	if err := group.Wait(); err != nil {
		// Only cancellation and fatal dataset faults travel this path
		return nil, err
	}

	for i := range slots {
		slot := &slots[i]
		if slot.stats != nil {
			result.Stats = append(result.Stats, *slot.stats)
		}
		if slot.outliers != nil {
			if result.Outliers == nil {
				result.Outliers = &analysis.OutlierReport{
					Columns: make(map[core.ColumnKey]analysis.ColumnOutliers),
				}
			}
			result.Outliers.Columns[slot.outliers.Column] = *slot.outliers
		}
		result.DistributionTests = append(result.DistributionTests, slot.tests...)
		result.Errors = append(result.Errors, slot.errs...)
	}

	if missErr != nil {
		result.Errors = append(result.Errors, analysis.ColumnError{
			Component: "missingness", Message: missErr.Error(),
		})
	} else {
		result.Missingness = missReport
	}
	if corrErr != nil {
		result.Errors = append(result.Errors, analysis.ColumnError{
			Component: "correlation", Message: corrErr.Error(),
		})
	} else {
		result.Correlations = corrMatrix
	}

	result.DurationMs = time.Since(started).Milliseconds()
	o.log.Info("analysis of %s complete: %d columns, %d errors, %dms",
		ds.Name, ds.ColumnCount(), len(result.Errors), result.DurationMs)
	return result, nil
}

// analyzeColumn runs the per-column components into one private slot.
// Component failures are recorded, never propagated; only cancellation
// aborts the unit.
func (o *Orchestrator) analyzeColumn(
	ctx context.Context,
	slot *columnSlot,
	col *dataset.Column,
	entry dataset.SchemaEntry,
	cfg analysis.Config,
	statsComputer *colstats.Computer,
	outlierDetector *outliers.Detector,
	tester *distribution.Tester,
) error {
	summary, err := statsComputer.Compute(ctx, col, entry)
	switch {
	case err != nil && ctx.Err() != nil:
		return err
	case err != nil:
		slot.errs = append(slot.errs, analysis.ColumnError{
			Component: "stats", Column: col.Name, Message: err.Error(),
		})
	default:
		slot.stats = &summary
	}

	if !entry.Type.IsNumeric() {
		return nil
	}

	colOutliers, err := outlierDetector.Detect(ctx, col, entry)
	switch {
	case err != nil && ctx.Err() != nil:
		return err
	case err != nil:
		slot.errs = append(slot.errs, analysis.ColumnError{
			Component: "outliers", Column: col.Name, Message: err.Error(),
		})
	default:
		slot.outliers = &colOutliers
	}

	tests := cfg.DistributionTests
	if len(tests) == 0 {
		// Size from the same extraction the tester uses, so unparseable
		// cells under a lenient match fraction cannot skew the choice.
		values, _ := schema.FloatValues(col)
		tests = []analysis.DistributionTest{distribution.DefaultTest(len(values))}
	}
	for _, test := range tests {
		testResult, err := tester.Run(ctx, col, entry, test)
		switch {
		case err != nil && ctx.Err() != nil:
			return err
		case err != nil:
			slot.errs = append(slot.errs, analysis.ColumnError{
				Component: "distribution", Column: col.Name, Message: err.Error(),
			})
		default:
			slot.tests = append(slot.tests, testResult)
		}
	}
	return nil
}
