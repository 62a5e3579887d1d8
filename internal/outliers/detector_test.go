package outliers

import (
	"context"
	"errors"
	"testing"

	"tabscope/domain/analysis"
	"tabscope/domain/core"
	"tabscope/domain/dataset"
)

func numericColumn(name string, values ...float64) (*dataset.Column, dataset.SchemaEntry) {
	col := &dataset.Column{Name: core.ColumnKey(name)}
	for _, v := range values {
		col.Values = append(col.Values, dataset.NewNumericValue(v))
	}
	return col, dataset.SchemaEntry{Name: col.Name, Type: dataset.TypeFloat}
}

func TestDetect_IQRFlagsOnlyTheSpike(t *testing.T) {
	cfg := analysis.DefaultConfig()
	cfg.OutlierMethods = []analysis.OutlierMethod{analysis.OutlierIQR}
	detector := NewDetector(cfg)

	col, entry := numericColumn("x", 1, 2, 3, 4, 100)
	out, err := detector.Detect(context.Background(), col, entry)
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}

	result := out.Methods[analysis.OutlierIQR]
	if result.Skipped {
		t.Fatal("IQR should not be skipped")
	}
	if len(result.Flagged) != 1 || result.Flagged[0] != 4 {
		t.Errorf("Expected only row 4 flagged, got %v", result.Flagged)
	}
	if result.Params["q1"] != 2 || result.Params["q3"] != 4 {
		t.Errorf("Unexpected quartile params: %v", result.Params)
	}
	if result.Params["lower_fence"] != -1 || result.Params["upper_fence"] != 7 {
		t.Errorf("Unexpected fences: %v", result.Params)
	}
}

func TestDetect_FenceEqualValueNotFlagged(t *testing.T) {
	cfg := analysis.DefaultConfig()
	cfg.OutlierMethods = []analysis.OutlierMethod{analysis.OutlierIQR}
	cfg.OutlierParams.IQRMultiplier = 0.5
	detector := NewDetector(cfg)

	// Q1=2, Q3=4, fences [1, 5]: the extremes sit exactly on the fences
	col, entry := numericColumn("x", 1, 2, 3, 4, 5)
	out, err := detector.Detect(context.Background(), col, entry)
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if flagged := out.Methods[analysis.OutlierIQR].Flagged; len(flagged) != 0 {
		t.Errorf("Fence-equal values must not be flagged, got %v", flagged)
	}
}

func TestDetect_ZScoreSkippedOnConstantColumn(t *testing.T) {
	cfg := analysis.DefaultConfig()
	cfg.OutlierMethods = []analysis.OutlierMethod{analysis.OutlierZScore, analysis.OutlierModifiedZ}
	detector := NewDetector(cfg)

	col, entry := numericColumn("flat", 5, 5, 5, 5)
	out, err := detector.Detect(context.Background(), col, entry)
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}

	z := out.Methods[analysis.OutlierZScore]
	if !z.Skipped || z.Reason == "" {
		t.Errorf("Z-score on constant data should be skipped with a reason, got %+v", z)
	}
	if len(z.Flagged) != 0 {
		t.Errorf("Skipped method must flag nothing, got %v", z.Flagged)
	}

	mz := out.Methods[analysis.OutlierModifiedZ]
	if !mz.Skipped {
		t.Errorf("Modified z-score on constant data should be skipped, got %+v", mz)
	}
}

func TestDetect_ModifiedZFlagsRobustly(t *testing.T) {
	cfg := analysis.DefaultConfig()
	cfg.OutlierMethods = []analysis.OutlierMethod{analysis.OutlierModifiedZ}
	detector := NewDetector(cfg)

	col, entry := numericColumn("x", 10, 11, 12, 13, 14, 1000)
	out, err := detector.Detect(context.Background(), col, entry)
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	result := out.Methods[analysis.OutlierModifiedZ]
	if len(result.Flagged) != 1 || result.Flagged[0] != 5 {
		t.Errorf("Expected only the extreme row flagged, got %v", result.Flagged)
	}
}

func TestDetect_PercentileMethod(t *testing.T) {
	cfg := analysis.DefaultConfig()
	cfg.OutlierMethods = []analysis.OutlierMethod{analysis.OutlierPercentile}
	cfg.OutlierParams.PercentileLow = 0.25
	cfg.OutlierParams.PercentileHigh = 0.75
	detector := NewDetector(cfg)

	col, entry := numericColumn("x", 1, 2, 3, 4, 5)
	out, err := detector.Detect(context.Background(), col, entry)
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	// Bounds are [2, 4]; 1 and 5 fall strictly outside
	result := out.Methods[analysis.OutlierPercentile]
	if len(result.Flagged) != 2 {
		t.Errorf("Expected 2 flagged rows, got %v", result.Flagged)
	}
}

func TestDetect_InsufficientSample(t *testing.T) {
	detector := NewDetector(analysis.DefaultConfig())

	col, entry := numericColumn("tiny", 1, 2)
	_, err := detector.Detect(context.Background(), col, entry)
	if err == nil {
		t.Fatal("Expected insufficient-data error")
	}
	if !core.IsInsufficientDataError(err) {
		t.Errorf("Expected insufficient-data class, got %v", err)
	}
}

func TestDetect_NonNumericRejected(t *testing.T) {
	detector := NewDetector(analysis.DefaultConfig())

	col := &dataset.Column{Name: "city"}
	col.Values = append(col.Values, dataset.NewStringValue("berlin"))
	entry := dataset.SchemaEntry{Name: col.Name, Type: dataset.TypeCategorical}

	_, err := detector.Detect(context.Background(), col, entry)
	if !errors.Is(err, core.ErrUnsupportedType) {
		t.Errorf("Expected unsupported-type error, got %v", err)
	}
}

func TestDetect_NullsKeepOriginalRowIndices(t *testing.T) {
	cfg := analysis.DefaultConfig()
	cfg.OutlierMethods = []analysis.OutlierMethod{analysis.OutlierIQR}
	detector := NewDetector(cfg)

	col := &dataset.Column{Name: "x"}
	for _, cell := range []string{"1", "NA", "2", "3", "4", "100"} {
		col.Values = append(col.Values, dataset.NewStringValue(cell))
	}
	entry := dataset.SchemaEntry{Name: col.Name, Type: dataset.TypeInteger}

	out, err := detector.Detect(context.Background(), col, entry)
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	flagged := out.Methods[analysis.OutlierIQR].Flagged
	if len(flagged) != 1 || flagged[0] != 5 {
		t.Errorf("Flagged indices must refer to original rows, got %v", flagged)
	}
}
