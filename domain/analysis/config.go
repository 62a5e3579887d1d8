package analysis

import (
	"tabscope/domain/core"
)

// OutlierParams holds the per-method thresholds
type OutlierParams struct {
	IQRMultiplier      float64 `json:"iqr_multiplier"`
	ZScoreThreshold    float64 `json:"zscore_threshold"`
	ModifiedZThreshold float64 `json:"modified_zscore_threshold"`
	PercentileLow      float64 `json:"percentile_low"`
	PercentileHigh     float64 `json:"percentile_high"`
}

// Config parameterizes one analysis run. The zero value is not usable;
// start from DefaultConfig and override.
type Config struct {
	OutlierMethods []OutlierMethod `json:"outlier_methods"`
	OutlierParams  OutlierParams   `json:"outlier_params"`
	// MinOutlierSampleSize is the smallest column that gets outlier
	// analysis at all; smaller columns record an insufficient-data error.
	MinOutlierSampleSize int `json:"min_outlier_sample_size"`

	CorrelationMethod CorrelationMethod `json:"correlation_method"`
	// NumericAsCategoricalMaxCardinality, when positive, treats numeric
	// columns with at most that many distinct values as categorical for
	// correlation purposes. Zero keeps mixed pairs excluded.
	NumericAsCategoricalMaxCardinality int `json:"numeric_as_categorical_max_cardinality"`

	MissingnessSimilarityThreshold float64 `json:"missingness_similarity_threshold"`

	DistributionTests []DistributionTest `json:"distribution_tests"`
	SignificanceLevel float64            `json:"significance_level"`

	// ExactQuantileSizeLimit is the largest column computed with exact
	// order statistics; larger columns fall back to the P-squared
	// streaming estimate, declared in the summary.
	ExactQuantileSizeLimit int `json:"exact_quantile_size_limit"`
	CategoricalTopK        int `json:"categorical_top_k"`

	// SchemaMatchFraction is the share of non-null values a coercion
	// must win for the prober to accept the type.
	SchemaMatchFraction float64 `json:"schema_match_fraction"`

	// Workers bounds the fan-out pool; zero means GOMAXPROCS.
	Workers int `json:"workers,omitempty"`
}

// DefaultConfig returns the engineering defaults. None of these are
// load-bearing contracts; callers are expected to tune them.
func DefaultConfig() Config {
	return Config{
		OutlierMethods: []OutlierMethod{OutlierIQR, OutlierZScore, OutlierModifiedZ},
		OutlierParams: OutlierParams{
			IQRMultiplier:      1.5,
			ZScoreThreshold:    3.0,
			ModifiedZThreshold: 3.5,
			PercentileLow:      0.01,
			PercentileHigh:     0.99,
		},
		MinOutlierSampleSize:           3,
		CorrelationMethod:              CorrPearson,
		MissingnessSimilarityThreshold: 0.5,
		DistributionTests:              nil, // orchestrator picks by sample size
		SignificanceLevel:              0.05,
		ExactQuantileSizeLimit:         100_000,
		CategoricalTopK:                10,
		SchemaMatchFraction:            1.0,
	}
}

// Validate rejects configurations the engine cannot honor
func (c Config) Validate() error {
	for _, m := range c.OutlierMethods {
		switch m {
		case OutlierIQR, OutlierZScore, OutlierModifiedZ, OutlierPercentile:
		default:
			return core.NewConfigError("outlier_methods", "unknown method "+string(m))
		}
	}
	switch c.CorrelationMethod {
	case CorrPearson, CorrSpearman, CorrCramersV:
	default:
		return core.NewConfigError("correlation_method", "unknown method "+string(c.CorrelationMethod))
	}
	for _, t := range c.DistributionTests {
		switch t {
		case TestShapiroWilk, TestKolmogorovSmirnov, TestAndersonDarling:
		default:
			return core.NewConfigError("distribution_tests", "unknown test "+string(t))
		}
	}
	if c.MissingnessSimilarityThreshold < 0 || c.MissingnessSimilarityThreshold > 1 {
		return core.NewConfigError("missingness_similarity_threshold", "must be in [0,1]")
	}
	if c.SignificanceLevel <= 0 || c.SignificanceLevel >= 1 {
		return core.NewConfigError("significance_level", "must be in (0,1)")
	}
	if c.SchemaMatchFraction <= 0 || c.SchemaMatchFraction > 1 {
		return core.NewConfigError("schema_match_fraction", "must be in (0,1]")
	}
	if c.OutlierParams.PercentileLow < 0 || c.OutlierParams.PercentileHigh > 1 ||
		c.OutlierParams.PercentileLow >= c.OutlierParams.PercentileHigh {
		return core.NewConfigError("outlier_params", "percentile bounds must satisfy 0 <= low < high <= 1")
	}
	if c.OutlierParams.IQRMultiplier <= 0 {
		return core.NewConfigError("outlier_params", "iqr multiplier must be positive")
	}
	if c.ExactQuantileSizeLimit < 0 {
		return core.NewConfigError("exact_quantile_size_limit", "must be non-negative")
	}
	if c.MinOutlierSampleSize < 2 {
		return core.NewConfigError("min_outlier_sample_size", "must be at least 2")
	}
	if c.Workers < 0 {
		return core.NewConfigError("workers", "must be non-negative")
	}
	return nil
}

// Hash returns the configuration's canonical hash for cache keying
func (c Config) Hash() (core.ConfigHash, error) {
	return core.ComputeConfigHash(c)
}
