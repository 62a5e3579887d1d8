package report

import (
	"strings"
	"testing"
	"time"

	"tabscope/domain/analysis"
	"tabscope/domain/core"
	"tabscope/domain/dataset"
)

func sampleResult() *analysis.AnalysisResult {
	pair := core.NewPairKey("age", "income")
	return &analysis.AnalysisResult{
		RunID:       "run-1",
		DatasetName: "people",
		Rows:        4,
		ColumnCount: 2,
		Fingerprint: "fp-1",
		CreatedAt:   time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Schema: []dataset.SchemaEntry{
			{Name: "age", Type: dataset.TypeInteger, Nullable: true, DistinctCount: 3, NullCount: 1},
			{Name: "income", Type: dataset.TypeFloat, DistinctCount: 4},
		},
		Stats: []analysis.StatSummary{
			{
				Column: "age", Type: dataset.TypeInteger, Count: 3, NullCount: 1,
				Numeric: &analysis.NumericSummary{
					Mean: 30, StdDevSample: 5, Min: 25, Q1: 27.5, Median: 30, Q3: 32.5, Max: 35,
					Quantiles: analysis.QuantileExact,
				},
			},
		},
		Missingness: &analysis.MissingnessReport{
			NullRates:          map[core.ColumnKey]float64{"age": 0.25, "income": 0},
			Similarity:         map[core.PairKey]float64{pair: 0},
			OverallMissingRate: 0.125,
			CompleteRows:       3,
			Monotone: []analysis.MonotonePattern{
				{Driver: "age", Dependent: "income"},
			},
		},
		Outliers: &analysis.OutlierReport{
			Columns: map[core.ColumnKey]analysis.ColumnOutliers{
				"age": {
					Column: "age",
					Methods: map[analysis.OutlierMethod]analysis.OutlierMethodResult{
						analysis.OutlierIQR: {Method: analysis.OutlierIQR, Flagged: []int{3}},
						analysis.OutlierZScore: {
							Method: analysis.OutlierZScore, Skipped: true,
							Reason: "standard deviation is zero",
						},
					},
				},
			},
		},
		Correlations: &analysis.CorrelationMatrix{
			Entries: map[core.PairKey]analysis.CorrelationEntry{
				pair: {Pair: pair, Method: analysis.CorrPearson, Coefficient: 0.9, Observations: 3, Defined: true},
			},
			NumericColumns: []core.ColumnKey{"age", "income"},
		},
		DistributionTests: []analysis.DistributionTestResult{
			{Column: "age", Test: analysis.TestShapiroWilk, Applicable: false, Reason: "sample below Shapiro-Wilk minimum"},
		},
		Errors: []analysis.ColumnError{
			{Component: "stats", Column: "income", Message: "boom"},
		},
	}
}

func TestMarkdown_ContainsEverySection(t *testing.T) {
	md := NewGenerator().Markdown(sampleResult())

	for _, want := range []string{
		"# Analysis Report: people",
		"## Schema",
		"## Column Statistics",
		"## Missingness",
		"## Outliers",
		"## Correlations",
		"## Distribution Tests",
		"## Component Errors",
		"age missing implies income missing",
		"iqr: 1 flagged",
		"zscore: skipped (standard deviation is zero)",
		"age ~ income",
		"not applicable (sample below Shapiro-Wilk minimum)",
		"[stats] income: boom",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("Markdown missing %q", want)
		}
	}
}

func TestMarkdown_OmitsEmptySections(t *testing.T) {
	md := NewGenerator().Markdown(&analysis.AnalysisResult{DatasetName: "empty"})
	for _, absent := range []string{"## Outliers", "## Correlations", "## Component Errors"} {
		if strings.Contains(md, absent) {
			t.Errorf("Markdown should omit %q when empty", absent)
		}
	}
}

func TestHTML_RendersHeadingsAndTables(t *testing.T) {
	html := string(NewGenerator().HTML(sampleResult()))

	if !strings.Contains(html, "<h1") {
		t.Error("HTML should contain a top-level heading")
	}
	if !strings.Contains(html, "<table>") {
		t.Error("Markdown tables should render as HTML tables")
	}
}
