// Package colstats computes per-column descriptive statistics,
// dispatched on the logical type inferred by the schema prober.
package colstats

import (
	"context"
	"math"
	"sort"

	"tabscope/domain/analysis"
	"tabscope/domain/core"
	"tabscope/domain/dataset"
	"tabscope/internal/schema"
)

// chunkSize bounds the work between cancellation checks
const chunkSize = 4096

// Computer produces StatSummary records
type Computer struct {
	exactLimit int
	topK       int
}

// NewComputer creates a computer from the run configuration
func NewComputer(cfg analysis.Config) *Computer {
	return &Computer{
		exactLimit: cfg.ExactQuantileSizeLimit,
		topK:       cfg.CategoricalTopK,
	}
}

// Compute returns the summary for one probed column. Numeric types get
// moment statistics and quartiles; boolean, datetime and categorical
// types get a frequency summary. Unknown (all-null) columns return an
// insufficient-data summary with every statistic left undefined.
func (c *Computer) Compute(ctx context.Context, col *dataset.Column, entry dataset.SchemaEntry) (analysis.StatSummary, error) {
	summary := analysis.StatSummary{
		Column: col.Name,
		Type:   entry.Type,
	}

	switch {
	case entry.Type.IsNumeric():
		return c.computeNumeric(ctx, col, summary)
	case entry.Type == dataset.TypeUnknown:
		summary.NullCount = col.Len()
		summary.Insufficient = true
		return summary, nil
	default:
		return c.computeCategorical(ctx, col, summary)
	}
}

func (c *Computer) computeNumeric(ctx context.Context, col *dataset.Column, summary analysis.StatSummary) (analysis.StatSummary, error) {
	values, _ := schema.FloatValues(col)
	summary.Count = len(values)
	// Tolerated non-numeric tokens count as nulls here so that
	// count + null_count always equals the row count.
	summary.NullCount = col.Len() - len(values)

	if len(values) == 0 {
		summary.Insufficient = true
		return summary, nil
	}

	acc := newMoments()
	exact := len(values) <= c.exactLimit
	var q1, q2, q3 *p2Quantile
	if !exact {
		q1, q2, q3 = newP2Quantile(0.25), newP2Quantile(0.50), newP2Quantile(0.75)
	}

	for start := 0; start < len(values); start += chunkSize {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		end := start + chunkSize
		if end > len(values) {
			end = len(values)
		}
		for _, x := range values[start:end] {
			acc.Add(x)
			if !exact {
				q1.Add(x)
				q2.Add(x)
				q3.Add(x)
			}
		}
	}

	num := &analysis.NumericSummary{
		Mean:         acc.Mean(),
		Variance:     acc.VarianceSample(),
		StdDevSample: math.Sqrt(acc.VarianceSample()),
		StdDevPop:    math.Sqrt(acc.VariancePop()),
		Min:          acc.Min(),
		Max:          acc.Max(),
		Skewness:     acc.Skewness(),
		Kurtosis:     acc.Kurtosis(),
	}

	if exact {
		sorted := sortedCopy(values)
		num.Q1 = exactQuantile(sorted, 0.25)
		num.Median = exactQuantile(sorted, 0.50)
		num.Q3 = exactQuantile(sorted, 0.75)
		num.Quantiles = analysis.QuantileExact
	} else {
		num.Q1 = q1.Value()
		num.Median = q2.Value()
		num.Q3 = q3.Value()
		num.Quantiles = analysis.QuantileP2
	}

	// Dispersion statistics need at least two observations; the flag
	// tells consumers not to trust variance/skewness/kurtosis here.
	if len(values) < 2 {
		summary.Insufficient = true
	}

	summary.Numeric = num
	return summary, nil
}

func (c *Computer) computeCategorical(ctx context.Context, col *dataset.Column, summary analysis.StatSummary) (analysis.StatSummary, error) {
	labels, _ := schema.Labels(col)
	summary.Count = len(labels)
	summary.NullCount = col.Len() - len(labels)

	if len(labels) == 0 {
		summary.Insufficient = true
		return summary, nil
	}

	counts := make(map[string]int, len(labels))
	firstSeen := make(map[string]int, len(labels))
	for i, label := range labels {
		if i%chunkSize == 0 {
			if err := ctx.Err(); err != nil {
				return summary, err
			}
		}
		if _, ok := counts[label]; !ok {
			firstSeen[label] = i
		}
		counts[label]++
	}

	distinct := make([]string, 0, len(counts))
	for label := range counts {
		distinct = append(distinct, label)
	}
	// Highest count first; ties broken by first-encountered order.
	sort.Slice(distinct, func(i, j int) bool {
		if counts[distinct[i]] != counts[distinct[j]] {
			return counts[distinct[i]] > counts[distinct[j]]
		}
		return firstSeen[distinct[i]] < firstSeen[distinct[j]]
	})

	cat := &analysis.CategoricalSummary{
		Mode:        distinct[0],
		ModeCount:   counts[distinct[0]],
		UniqueCount: len(distinct),
	}

	topK := c.topK
	if topK <= 0 || topK > len(distinct) {
		topK = len(distinct)
	}
	cat.TopValues = make([]analysis.ValueCount, 0, topK)
	for _, label := range distinct[:topK] {
		cat.TopValues = append(cat.TopValues, analysis.ValueCount{Value: label, Count: counts[label]})
	}
	for _, label := range distinct[topK:] {
		cat.OtherCount += counts[label]
	}

	total := float64(len(labels))
	for _, label := range distinct {
		p := float64(counts[label]) / total
		cat.Entropy -= p * math.Log2(p)
	}

	summary.Categorical = cat
	return summary, nil
}

// VerifyInvariant confirms count + null_count = n for a summary
func VerifyInvariant(summary analysis.StatSummary, rows int) error {
	if summary.Count+summary.NullCount != rows {
		return core.NewUndefinedStatisticError(summary.Column.String(), "count",
			"count + null_count does not equal row count")
	}
	return nil
}
