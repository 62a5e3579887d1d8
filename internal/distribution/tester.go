// Package distribution runs goodness-of-fit tests against numeric
// columns. Columns below a test's minimum sample size return an
// explicit not-applicable result instead of a degenerate statistic.
package distribution

import (
	"context"

	"tabscope/domain/analysis"
	"tabscope/domain/core"
	"tabscope/domain/dataset"
	"tabscope/internal/schema"
)

// Per-test minimum sample sizes
const (
	minShapiro  = 3
	maxShapiro  = 5000
	minKS       = 8
	minAnderson = 8
)

// Tester runs distribution tests at a configured significance level
type Tester struct {
	alpha float64
}

// NewTester creates a tester
func NewTester(alpha float64) *Tester {
	return &Tester{alpha: alpha}
}

// DefaultTest picks a test by sample size when the caller does not:
// Shapiro-Wilk for small-to-moderate samples, Kolmogorov-Smirnov for
// anything larger.
func DefaultTest(sampleSize int) analysis.DistributionTest {
	if sampleSize <= maxShapiro {
		return analysis.TestShapiroWilk
	}
	return analysis.TestKolmogorovSmirnov
}

// Run executes one test on one numeric column
func (t *Tester) Run(ctx context.Context, col *dataset.Column, entry dataset.SchemaEntry, test analysis.DistributionTest) (analysis.DistributionTestResult, error) {
	if !entry.Type.IsNumeric() {
		return analysis.DistributionTestResult{}, core.NewUnsupportedTypeError(col.Name.String(), string(test))
	}
	if err := ctx.Err(); err != nil {
		return analysis.DistributionTestResult{}, err
	}

	values, _ := schema.FloatValues(col)
	result := analysis.DistributionTestResult{
		Column:     col.Name,
		Test:       test,
		Alpha:      t.alpha,
		SampleSize: len(values),
	}

	var (
		stat, p float64
		ok      bool
	)
	switch test {
	case analysis.TestShapiroWilk:
		if len(values) < minShapiro {
			return notApplicable(result, "sample below Shapiro-Wilk minimum"), nil
		}
		if len(values) > maxShapiro {
			return notApplicable(result, "sample above Shapiro-Wilk maximum"), nil
		}
		stat, p, ok = shapiroWilk(values)
	case analysis.TestKolmogorovSmirnov:
		if len(values) < minKS {
			return notApplicable(result, "sample below Kolmogorov-Smirnov minimum"), nil
		}
		stat, p, ok = kolmogorovSmirnov(values)
	case analysis.TestAndersonDarling:
		if len(values) < minAnderson {
			return notApplicable(result, "sample below Anderson-Darling minimum"), nil
		}
		stat, p, ok = andersonDarling(values)
	default:
		return result, core.NewConfigError("distribution_tests", "unknown test "+string(test))
	}

	if !ok {
		return notApplicable(result, "statistic undefined for this sample"), nil
	}

	result.Applicable = true
	result.Statistic = stat
	result.PValue = p
	result.Reject = p < t.alpha
	return result, nil
}

func notApplicable(result analysis.DistributionTestResult, reason string) analysis.DistributionTestResult {
	result.Applicable = false
	result.Reason = reason
	return result
}
