package analysis

import (
	"time"

	"tabscope/domain/core"
	"tabscope/domain/dataset"
)

// OutlierMethod identifies one univariate outlier detection method
type OutlierMethod string

const (
	OutlierIQR        OutlierMethod = "iqr"
	OutlierZScore     OutlierMethod = "zscore"
	OutlierModifiedZ  OutlierMethod = "modified_zscore"
	OutlierPercentile OutlierMethod = "percentile"
)

// CorrelationMethod identifies a pairwise association measure
type CorrelationMethod string

const (
	CorrPearson  CorrelationMethod = "pearson"
	CorrSpearman CorrelationMethod = "spearman"
	CorrCramersV CorrelationMethod = "cramers_v"
)

// DistributionTest identifies a goodness-of-fit test
type DistributionTest string

const (
	TestShapiroWilk       DistributionTest = "shapiro_wilk"
	TestKolmogorovSmirnov DistributionTest = "kolmogorov_smirnov"
	TestAndersonDarling   DistributionTest = "anderson_darling"
)

// QuantileMethod declares how quartiles in a summary were obtained
type QuantileMethod string

const (
	// QuantileExact means full order-statistics selection with linear interpolation.
	QuantileExact QuantileMethod = "exact"
	// QuantileP2 means the bounded-memory P-squared streaming estimate.
	QuantileP2 QuantileMethod = "p2_approximate"
)

// NumericSummary holds the numeric half of a StatSummary. A nil
// NumericSummary on a numeric column is the explicit undefined marker
// for vacuous columns; fields are never zero-filled in that case.
type NumericSummary struct {
	Mean         float64        `json:"mean"`
	Variance     float64        `json:"variance"` // sample variance
	StdDevSample float64        `json:"stddev_sample"`
	StdDevPop    float64        `json:"stddev_population"`
	Min          float64        `json:"min"`
	Max          float64        `json:"max"`
	Q1           float64        `json:"q1"`
	Median       float64        `json:"median"`
	Q3           float64        `json:"q3"`
	Skewness     float64        `json:"skewness"`
	Kurtosis     float64        `json:"kurtosis"` // excess kurtosis
	Quantiles    QuantileMethod `json:"quantile_method"`
}

// IQR returns the interquartile range
func (s *NumericSummary) IQR() float64 {
	return s.Q3 - s.Q1
}

// ValueCount is one frequency-table row
type ValueCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// CategoricalSummary holds the categorical half of a StatSummary
type CategoricalSummary struct {
	Mode        string       `json:"mode"`
	ModeCount   int          `json:"mode_count"`
	UniqueCount int          `json:"unique_count"`
	// TopValues is capped at the configured top-K; the remainder is
	// aggregated into OtherCount rather than dropped.
	TopValues  []ValueCount `json:"top_values"`
	OtherCount int          `json:"other_count"`
	Entropy    float64      `json:"entropy"`
}

// StatSummary is the per-column descriptive record.
// Invariant: Count + NullCount equals the dataset row count.
type StatSummary struct {
	Column       core.ColumnKey      `json:"column"`
	Type         dataset.LogicalType `json:"type"`
	Count        int                 `json:"count"`
	NullCount    int                 `json:"null_count"`
	Insufficient bool                `json:"insufficient"`

	Numeric     *NumericSummary     `json:"numeric,omitempty"`
	Categorical *CategoricalSummary `json:"categorical,omitempty"`
}

// MonotonePattern records a directional missingness relationship:
// Dependent is null whenever Driver is null, but not conversely.
type MonotonePattern struct {
	Driver    core.ColumnKey `json:"driver"`
	Dependent core.ColumnKey `json:"dependent"`
}

// MissingnessReport describes null structure across the dataset
type MissingnessReport struct {
	NullRates  map[core.ColumnKey]float64 `json:"null_rates"`
	Similarity map[core.PairKey]float64   `json:"similarity"`
	Clusters   [][]core.ColumnKey         `json:"clusters"`
	Monotone   []MonotonePattern          `json:"monotone"`
	Threshold  float64                    `json:"threshold"`

	CompleteRows       int     `json:"complete_rows"`
	OverallMissingRate float64 `json:"overall_missing_rate"`
}

// PairSimilarity returns the null co-occurrence score for a pair,
// symmetric in its arguments.
func (r *MissingnessReport) PairSimilarity(a, b core.ColumnKey) float64 {
	return r.Similarity[core.NewPairKey(a, b)]
}

// OutlierMethodResult is one method's independent verdict on one column.
// Methods never merge: a row index may appear under several methods.
type OutlierMethodResult struct {
	Method  OutlierMethod `json:"method"`
	Flagged []int         `json:"flagged"` // row indices in the original column
	// Params records the boundary parameters the method actually used,
	// e.g. lower_fence/upper_fence for IQR or threshold for z-score.
	Params  map[string]float64 `json:"params"`
	Skipped bool               `json:"skipped"`
	Reason  string             `json:"reason,omitempty"`
}

// ColumnOutliers groups the per-method results for one column
type ColumnOutliers struct {
	Column  core.ColumnKey                        `json:"column"`
	Methods map[OutlierMethod]OutlierMethodResult `json:"methods"`
}

// OutlierReport maps every analyzed numeric column to its method results
type OutlierReport struct {
	Columns map[core.ColumnKey]ColumnOutliers `json:"columns"`
}

// CorrelationEntry is one pair's coefficient with provenance
type CorrelationEntry struct {
	Pair   core.PairKey      `json:"pair"`
	Method CorrelationMethod `json:"method"`
	// Coefficient is meaningful only when Defined is true. Pairs with
	// fewer than two complete joint observations, or zero variance on
	// either side, stay undefined instead of propagating NaN.
	Coefficient  float64 `json:"coefficient"`
	Observations int     `json:"observations"`
	Defined      bool    `json:"defined"`
}

// CorrelationMatrix is a symmetric pairwise association map
type CorrelationMatrix struct {
	Entries map[core.PairKey]CorrelationEntry `json:"entries"`
	// NumericColumns lists the columns whose self-correlation is 1.
	NumericColumns []core.ColumnKey `json:"numeric_columns"`
}

// At returns the coefficient for (a, b). Symmetric by construction;
// the numeric diagonal is 1. The second return is false for undefined
// or absent pairs.
func (m *CorrelationMatrix) At(a, b core.ColumnKey) (float64, bool) {
	if a == b {
		for _, c := range m.NumericColumns {
			if c == a {
				return 1.0, true
			}
		}
		return 0, false
	}
	entry, ok := m.Entries[core.NewPairKey(a, b)]
	if !ok || !entry.Defined {
		return 0, false
	}
	return entry.Coefficient, true
}

// DistributionTestResult is one test's verdict on one numeric column
type DistributionTestResult struct {
	Column    core.ColumnKey   `json:"column"`
	Test      DistributionTest `json:"test"`
	Statistic float64          `json:"statistic"`
	PValue    float64          `json:"p_value"`
	// Reject is the verdict at the configured significance level:
	// true means normality is rejected.
	Reject     bool    `json:"reject"`
	Alpha      float64 `json:"alpha"`
	SampleSize int     `json:"sample_size"`
	// Applicable is false when the sample is below the test minimum;
	// Statistic and PValue carry no meaning in that case.
	Applicable bool   `json:"applicable"`
	Reason     string `json:"reason,omitempty"`
}

// ColumnError records one captured per-column or per-pair failure
type ColumnError struct {
	Component string         `json:"component"`
	Column    core.ColumnKey `json:"column,omitempty"`
	Pair      *core.PairKey  `json:"pair,omitempty"`
	Message   string         `json:"message"`
}

// AnalysisResult is the immutable aggregate of one orchestrator run.
// It is created once, never mutated, and safe to share read-only
// across the CLI, API, and report consumers.
type AnalysisResult struct {
	RunID       core.RunID       `json:"run_id"`
	DatasetName string           `json:"dataset_name"`
	Rows        int              `json:"rows"`
	ColumnCount int              `json:"column_count"`
	Fingerprint core.Fingerprint `json:"fingerprint"`
	CreatedAt   time.Time        `json:"created_at"`
	DurationMs  int64            `json:"duration_ms"`

	Schema            []dataset.SchemaEntry    `json:"schema"`
	Stats             []StatSummary            `json:"stats"`
	Missingness       *MissingnessReport       `json:"missingness"`
	Outliers          *OutlierReport           `json:"outliers"`
	Correlations      *CorrelationMatrix       `json:"correlations"`
	DistributionTests []DistributionTestResult `json:"distribution_tests"`

	// Errors holds every captured per-column and per-pair failure.
	// A populated error list does not make the run unsuccessful.
	Errors []ColumnError `json:"errors"`
}

// SchemaFor returns the schema entry for a column, if analyzed
func (r *AnalysisResult) SchemaFor(name core.ColumnKey) (dataset.SchemaEntry, bool) {
	for _, entry := range r.Schema {
		if entry.Name == name {
			return entry, true
		}
	}
	return dataset.SchemaEntry{}, false
}

// StatsFor returns the stat summary for a column, if computed
func (r *AnalysisResult) StatsFor(name core.ColumnKey) (StatSummary, bool) {
	for _, s := range r.Stats {
		if s.Column == name {
			return s, true
		}
	}
	return StatSummary{}, false
}

// ErrorsFor returns the captured errors touching a column
func (r *AnalysisResult) ErrorsFor(name core.ColumnKey) []ColumnError {
	var out []ColumnError
	for _, e := range r.Errors {
		if e.Column == name || (e.Pair != nil && e.Pair.Contains(name)) {
			out = append(out, e)
		}
	}
	return out
}
