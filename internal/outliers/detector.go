// Package outliers flags anomalous values in numeric columns under
// several independently parameterized methods. Methods never merge
// their verdicts: disagreement between them is signal, not noise.
package outliers

import (
	"context"
	"math"

	"github.com/montanaflynn/stats"

	"tabscope/domain/analysis"
	"tabscope/domain/core"
	"tabscope/domain/dataset"
	"tabscope/internal/colstats"
	"tabscope/internal/schema"
)

// madScale rescales the median absolute deviation so the modified
// z-score is comparable to a standard z-score under normality.
const madScale = 0.6745

// Detector runs the configured outlier methods on numeric columns
type Detector struct {
	methods   []analysis.OutlierMethod
	params    analysis.OutlierParams
	minSample int
}

// NewDetector creates a detector from the run configuration
func NewDetector(cfg analysis.Config) *Detector {
	return &Detector{
		methods:   cfg.OutlierMethods,
		params:    cfg.OutlierParams,
		minSample: cfg.MinOutlierSampleSize,
	}
}

// Detect returns per-method flagged index sets for one numeric column.
// Columns below the minimum sample size produce an insufficient-data
// error instead of a spurious result.
func (d *Detector) Detect(ctx context.Context, col *dataset.Column, entry dataset.SchemaEntry) (analysis.ColumnOutliers, error) {
	out := analysis.ColumnOutliers{
		Column:  col.Name,
		Methods: make(map[analysis.OutlierMethod]analysis.OutlierMethodResult, len(d.methods)),
	}

	if !entry.Type.IsNumeric() {
		return out, core.NewUnsupportedTypeError(col.Name.String(), "outlier detection")
	}

	values, rows := schema.FloatValues(col)
	if len(values) < d.minSample {
		return out, core.NewInsufficientDataError(col.Name.String(), len(values), d.minSample)
	}

	for _, method := range d.methods {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		switch method {
		case analysis.OutlierIQR:
			out.Methods[method] = d.iqrFence(values, rows)
		case analysis.OutlierZScore:
			out.Methods[method] = d.zscore(values, rows)
		case analysis.OutlierModifiedZ:
			out.Methods[method] = d.modifiedZ(values, rows)
		case analysis.OutlierPercentile:
			out.Methods[method] = d.percentile(values, rows)
		}
	}

	return out, nil
}

// iqrFence flags values strictly outside [Q1-k*IQR, Q3+k*IQR].
// Values equal to a fence are inside it and stay unflagged.
func (d *Detector) iqrFence(values []float64, rows []int) analysis.OutlierMethodResult {
	q1 := colstats.Quantile(values, 0.25)
	q3 := colstats.Quantile(values, 0.75)
	iqr := q3 - q1
	lower := q1 - d.params.IQRMultiplier*iqr
	upper := q3 + d.params.IQRMultiplier*iqr

	result := analysis.OutlierMethodResult{
		Method: analysis.OutlierIQR,
		Params: map[string]float64{
			"q1":          q1,
			"q3":          q3,
			"multiplier":  d.params.IQRMultiplier,
			"lower_fence": lower,
			"upper_fence": upper,
		},
	}
	for i, x := range values {
		if x < lower || x > upper {
			result.Flagged = append(result.Flagged, rows[i])
		}
	}
	return result
}

// zscore flags |x-mean|/stddev above the threshold. A zero standard
// deviation makes the score undefined; the method reports skipped.
func (d *Detector) zscore(values []float64, rows []int) analysis.OutlierMethodResult {
	mean, _ := stats.Mean(values)
	sd, _ := stats.StandardDeviationSample(values)

	result := analysis.OutlierMethodResult{
		Method: analysis.OutlierZScore,
		Params: map[string]float64{
			"mean":      mean,
			"stddev":    sd,
			"threshold": d.params.ZScoreThreshold,
		},
	}
	if sd == 0 || math.IsNaN(sd) {
		result.Skipped = true
		result.Reason = "standard deviation is zero"
		return result
	}
	for i, x := range values {
		if math.Abs((x-mean)/sd) > d.params.ZScoreThreshold {
			result.Flagged = append(result.Flagged, rows[i])
		}
	}
	return result
}

// modifiedZ is the MAD-based robust variant of the z-score
func (d *Detector) modifiedZ(values []float64, rows []int) analysis.OutlierMethodResult {
	median, _ := stats.Median(values)
	deviations := make([]float64, len(values))
	for i, x := range values {
		deviations[i] = math.Abs(x - median)
	}
	mad, _ := stats.Median(deviations)

	result := analysis.OutlierMethodResult{
		Method: analysis.OutlierModifiedZ,
		Params: map[string]float64{
			"median":    median,
			"mad":       mad,
			"threshold": d.params.ModifiedZThreshold,
		},
	}
	if mad == 0 || math.IsNaN(mad) {
		result.Skipped = true
		result.Reason = "median absolute deviation is zero"
		return result
	}
	for i, x := range values {
		if madScale*math.Abs(x-median)/mad > d.params.ModifiedZThreshold {
			result.Flagged = append(result.Flagged, rows[i])
		}
	}
	return result
}

// percentile flags values outside the configured low/high quantile pair
func (d *Detector) percentile(values []float64, rows []int) analysis.OutlierMethodResult {
	low := colstats.Quantile(values, d.params.PercentileLow)
	high := colstats.Quantile(values, d.params.PercentileHigh)

	result := analysis.OutlierMethodResult{
		Method: analysis.OutlierPercentile,
		Params: map[string]float64{
			"percentile_low":  d.params.PercentileLow,
			"percentile_high": d.params.PercentileHigh,
			"lower_bound":     low,
			"upper_bound":     high,
		},
	}
	for i, x := range values {
		if x < low || x > high {
			result.Flagged = append(result.Flagged, rows[i])
		}
	}
	return result
}
