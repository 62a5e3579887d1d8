package colstats

import (
	"context"
	"math"
	"testing"

	"tabscope/domain/analysis"
	"tabscope/domain/core"
	"tabscope/domain/dataset"
)

func column(name string, cells ...string) *dataset.Column {
	col := &dataset.Column{Name: core.ColumnKey(name)}
	for _, cell := range cells {
		col.Values = append(col.Values, dataset.NewStringValue(cell))
	}
	return col
}

func entryFor(col *dataset.Column, typ dataset.LogicalType) dataset.SchemaEntry {
	return dataset.SchemaEntry{Name: col.Name, Type: typ}
}

func almostEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func TestCompute_NumericKnownValues(t *testing.T) {
	computer := NewComputer(analysis.DefaultConfig())
	col := column("x", "1", "2", "3", "4", "5")

	summary, err := computer.Compute(context.Background(), col, entryFor(col, dataset.TypeInteger))
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}

	if summary.Count != 5 || summary.NullCount != 0 {
		t.Fatalf("Expected count 5, nulls 0; got %d, %d", summary.Count, summary.NullCount)
	}
	if summary.Insufficient {
		t.Error("Five values should be sufficient")
	}

	n := summary.Numeric
	if n == nil {
		t.Fatal("Numeric summary missing")
	}
	if !almostEqual(n.Mean, 3.0, 1e-12) {
		t.Errorf("Expected mean 3, got %g", n.Mean)
	}
	if !almostEqual(n.Variance, 2.5, 1e-12) {
		t.Errorf("Expected sample variance 2.5, got %g", n.Variance)
	}
	if n.Min != 1 || n.Max != 5 {
		t.Errorf("Expected min 1 max 5, got %g %g", n.Min, n.Max)
	}
	if !almostEqual(n.Q1, 2.0, 1e-12) || !almostEqual(n.Median, 3.0, 1e-12) || !almostEqual(n.Q3, 4.0, 1e-12) {
		t.Errorf("Expected quartiles 2/3/4, got %g/%g/%g", n.Q1, n.Median, n.Q3)
	}
	if !almostEqual(n.Skewness, 0, 1e-12) {
		t.Errorf("Symmetric data should have zero skewness, got %g", n.Skewness)
	}
	if n.Quantiles != analysis.QuantileExact {
		t.Errorf("Expected exact quantiles, got %s", n.Quantiles)
	}
}

func TestCompute_CountPlusNullsEqualsRows(t *testing.T) {
	computer := NewComputer(analysis.DefaultConfig())
	// Unparseable tokens on a tolerantly-typed numeric column count as
	// nulls, keeping the invariant intact.
	col := column("x", "1", "NA", "junk", "4")

	summary, err := computer.Compute(context.Background(), col, entryFor(col, dataset.TypeInteger))
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}
	if summary.Count != 2 {
		t.Errorf("Expected 2 parseable values, got %d", summary.Count)
	}
	if summary.Count+summary.NullCount != col.Len() {
		t.Errorf("Invariant violated: %d + %d != %d", summary.Count, summary.NullCount, col.Len())
	}
	if err := VerifyInvariant(summary, col.Len()); err != nil {
		t.Errorf("VerifyInvariant rejected a valid summary: %v", err)
	}
}

func TestCompute_AllNullColumnHasUndefinedStatistics(t *testing.T) {
	computer := NewComputer(analysis.DefaultConfig())
	col := column("empty", "NA", "", "null")

	summary, err := computer.Compute(context.Background(), col, entryFor(col, dataset.TypeUnknown))
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}
	if !summary.Insufficient {
		t.Error("All-null column should be flagged insufficient")
	}
	if summary.Numeric != nil || summary.Categorical != nil {
		t.Error("All-null column must leave every statistic undefined")
	}
	if summary.Count != 0 || summary.NullCount != 3 {
		t.Errorf("Expected count 0, nulls 3; got %d, %d", summary.Count, summary.NullCount)
	}
}

func TestCompute_SingleValueIsInsufficientButDefined(t *testing.T) {
	computer := NewComputer(analysis.DefaultConfig())
	col := column("one", "42")

	summary, err := computer.Compute(context.Background(), col, entryFor(col, dataset.TypeInteger))
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}
	if !summary.Insufficient {
		t.Error("Single value cannot support dispersion statistics")
	}
	if summary.Numeric == nil {
		t.Fatal("Location statistics should still be defined for one value")
	}
	if summary.Numeric.Mean != 42 || summary.Numeric.Min != 42 || summary.Numeric.Max != 42 {
		t.Errorf("Unexpected location statistics: %+v", summary.Numeric)
	}
}

func TestCompute_Categorical(t *testing.T) {
	cfg := analysis.DefaultConfig()
	cfg.CategoricalTopK = 2
	computer := NewComputer(cfg)
	col := column("fruit", "apple", "apple", "pear", "plum", "apple", "pear", "NA")

	summary, err := computer.Compute(context.Background(), col, entryFor(col, dataset.TypeCategorical))
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}

	c := summary.Categorical
	if c == nil {
		t.Fatal("Categorical summary missing")
	}
	if c.Mode != "apple" || c.ModeCount != 3 {
		t.Errorf("Expected mode apple x3, got %s x%d", c.Mode, c.ModeCount)
	}
	if c.UniqueCount != 3 {
		t.Errorf("Expected 3 unique labels, got %d", c.UniqueCount)
	}
	if len(c.TopValues) != 2 {
		t.Fatalf("Expected top-2 values, got %d", len(c.TopValues))
	}
	if c.TopValues[0].Value != "apple" || c.TopValues[1].Value != "pear" {
		t.Errorf("Unexpected top values: %+v", c.TopValues)
	}
	if c.OtherCount != 1 {
		t.Errorf("Expected 1 aggregated into other, got %d", c.OtherCount)
	}
	if summary.Count+summary.NullCount != col.Len() {
		t.Errorf("Invariant violated: %d + %d != %d", summary.Count, summary.NullCount, col.Len())
	}

	// Entropy of distribution {3/6, 2/6, 1/6}
	expected := -(0.5*math.Log2(0.5) + (1.0/3)*math.Log2(1.0/3) + (1.0/6)*math.Log2(1.0/6))
	if !almostEqual(c.Entropy, expected, 1e-9) {
		t.Errorf("Expected entropy %g, got %g", expected, c.Entropy)
	}
}

func TestCompute_StreamingQuantilesAboveLimit(t *testing.T) {
	cfg := analysis.DefaultConfig()
	cfg.ExactQuantileSizeLimit = 100
	computer := NewComputer(cfg)

	col := &dataset.Column{Name: "big"}
	for i := 0; i < 1001; i++ {
		col.Values = append(col.Values, dataset.NewNumericValue(float64(i)))
	}

	summary, err := computer.Compute(context.Background(), col, entryFor(col, dataset.TypeInteger))
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}
	n := summary.Numeric
	if n.Quantiles != analysis.QuantileP2 {
		t.Fatalf("Expected streaming quantiles above the limit, got %s", n.Quantiles)
	}
	// On an ordered uniform ramp the estimate should land near the truth
	if !almostEqual(n.Median, 500, 25) {
		t.Errorf("Streaming median too far off: got %g, want ~500", n.Median)
	}
	if !almostEqual(n.Q1, 250, 25) || !almostEqual(n.Q3, 750, 25) {
		t.Errorf("Streaming quartiles too far off: %g / %g", n.Q1, n.Q3)
	}
}

func TestCompute_Cancellation(t *testing.T) {
	computer := NewComputer(analysis.DefaultConfig())
	col := &dataset.Column{Name: "big"}
	for i := 0; i < 10000; i++ {
		col.Values = append(col.Values, dataset.NewNumericValue(float64(i)))
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := computer.Compute(ctx, col, entryFor(col, dataset.TypeInteger))
	if err == nil {
		t.Fatal("Expected error from canceled context")
	}
}
