package correlation

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tabscope/domain/analysis"
	"tabscope/domain/core"
	"tabscope/domain/dataset"
)

func buildDataset(t *testing.T, cols map[string][]string, order ...string) (*dataset.Dataset, map[core.ColumnKey]dataset.SchemaEntry) {
	t.Helper()
	columns := make([]*dataset.Column, 0, len(order))
	for _, name := range order {
		col := &dataset.Column{Name: core.ColumnKey(name)}
		for _, cell := range cols[name] {
			col.Values = append(col.Values, dataset.NewStringValue(cell))
		}
		columns = append(columns, col)
	}
	ds, err := dataset.New("test", columns)
	require.NoError(t, err)

	entries := make(map[core.ColumnKey]dataset.SchemaEntry)
	for _, col := range columns {
		typ := dataset.TypeFloat
		distinct := make(map[string]struct{})
		numeric := true
		for i := range col.Values {
			v := &col.Values[i]
			if v.IsMissing {
				continue
			}
			distinct[v.String()] = struct{}{}
			if v.StringVal != nil {
				for _, r := range *v.StringVal {
					if (r < '0' || r > '9') && r != '.' && r != '-' {
						numeric = false
					}
				}
			}
		}
		if !numeric {
			typ = dataset.TypeCategorical
		}
		entries[col.Name] = dataset.SchemaEntry{Name: col.Name, Type: typ, DistinctCount: len(distinct)}
	}
	return ds, entries
}

func TestCompute_PerfectLinearPearson(t *testing.T) {
	ds, entries := buildDataset(t, map[string][]string{
		"x": {"1", "2", "3", "4", "5"},
		"y": {"2", "4", "6", "8", "10"},
	}, "x", "y")

	matrix, err := NewEngine(analysis.DefaultConfig()).Compute(context.Background(), ds, entries)
	require.NoError(t, err)

	coeff, ok := matrix.At("x", "y")
	require.True(t, ok, "pair should be defined")
	assert.InDelta(t, 1.0, coeff, 1e-12)
}

func TestCompute_SymmetryAndDiagonal(t *testing.T) {
	ds, entries := buildDataset(t, map[string][]string{
		"x": {"1", "2", "3", "4"},
		"y": {"4", "1", "3", "2"},
	}, "x", "y")

	matrix, err := NewEngine(analysis.DefaultConfig()).Compute(context.Background(), ds, entries)
	require.NoError(t, err)

	ab, okAB := matrix.At("x", "y")
	ba, okBA := matrix.At("y", "x")
	require.True(t, okAB)
	require.True(t, okBA)
	assert.Equal(t, ab, ba, "matrix must be symmetric")

	diag, ok := matrix.At("x", "x")
	require.True(t, ok)
	assert.Equal(t, 1.0, diag, "numeric diagonal is 1")
}

func TestCompute_ConstantColumnUndefined(t *testing.T) {
	ds, entries := buildDataset(t, map[string][]string{
		"x": {"1", "2", "3", "4"},
		"c": {"7", "7", "7", "7"},
	}, "x", "c")
	// Force the constant column to stay numeric regardless of cardinality
	entries["c"] = dataset.SchemaEntry{Name: "c", Type: dataset.TypeFloat, DistinctCount: 1}

	matrix, err := NewEngine(analysis.DefaultConfig()).Compute(context.Background(), ds, entries)
	require.NoError(t, err)

	entry, exists := matrix.Entries[core.NewPairKey("x", "c")]
	require.True(t, exists, "pair entry should be recorded")
	assert.False(t, entry.Defined, "zero variance leaves the coefficient undefined")

	_, ok := matrix.At("x", "c")
	assert.False(t, ok)
}

func TestCompute_SpearmanMonotoneNonlinear(t *testing.T) {
	cfg := analysis.DefaultConfig()
	cfg.CorrelationMethod = analysis.CorrSpearman

	ds, entries := buildDataset(t, map[string][]string{
		"x": {"1", "2", "3", "4", "5"},
		"y": {"1", "8", "27", "64", "125"},
	}, "x", "y")

	matrix, err := NewEngine(cfg).Compute(context.Background(), ds, entries)
	require.NoError(t, err)

	coeff, ok := matrix.At("x", "y")
	require.True(t, ok)
	assert.InDelta(t, 1.0, coeff, 1e-12, "monotone relation has Spearman rho 1")
}

func TestCompute_PairwiseCompleteDeletion(t *testing.T) {
	ds, entries := buildDataset(t, map[string][]string{
		"x": {"1", "NA", "3", "4", "5"},
		"y": {"2", "4", "NA", "8", "10"},
	}, "x", "y")
	entries["x"] = dataset.SchemaEntry{Name: "x", Type: dataset.TypeFloat, DistinctCount: 4}
	entries["y"] = dataset.SchemaEntry{Name: "y", Type: dataset.TypeFloat, DistinctCount: 4}

	matrix, err := NewEngine(analysis.DefaultConfig()).Compute(context.Background(), ds, entries)
	require.NoError(t, err)

	entry := matrix.Entries[core.NewPairKey("x", "y")]
	assert.Equal(t, 3, entry.Observations, "only jointly complete rows count")
	assert.True(t, entry.Defined)
	assert.InDelta(t, 1.0, entry.Coefficient, 1e-12)
}

func TestCompute_CategoricalPairCramersV(t *testing.T) {
	ds, entries := buildDataset(t, map[string][]string{
		"a": {"x", "x", "y", "y", "x", "y"},
		"b": {"p", "p", "q", "q", "p", "q"},
	}, "a", "b")

	matrix, err := NewEngine(analysis.DefaultConfig()).Compute(context.Background(), ds, entries)
	require.NoError(t, err)

	entry, exists := matrix.Entries[core.NewPairKey("a", "b")]
	require.True(t, exists)
	assert.Equal(t, analysis.CorrCramersV, entry.Method)
	require.True(t, entry.Defined)
	assert.InDelta(t, 1.0, entry.Coefficient, 1e-9, "perfect association has V = 1")
}

func TestCompute_MixedPairExcluded(t *testing.T) {
	ds, entries := buildDataset(t, map[string][]string{
		"num": {"1", "2", "3", "4"},
		"cat": {"a", "b", "a", "b"},
	}, "num", "cat")

	matrix, err := NewEngine(analysis.DefaultConfig()).Compute(context.Background(), ds, entries)
	require.NoError(t, err)

	_, exists := matrix.Entries[core.NewPairKey("num", "cat")]
	assert.False(t, exists, "mixed pairs stay out of the matrix")
}

func TestCompute_LowCardinalityNumericAsCategorical(t *testing.T) {
	cfg := analysis.DefaultConfig()
	cfg.NumericAsCategoricalMaxCardinality = 3

	ds, entries := buildDataset(t, map[string][]string{
		"code": {"1", "2", "1", "2", "1", "2"},
		"cat":  {"a", "b", "a", "b", "a", "b"},
	}, "code", "cat")

	matrix, err := NewEngine(cfg).Compute(context.Background(), ds, entries)
	require.NoError(t, err)

	entry, exists := matrix.Entries[core.NewPairKey("code", "cat")]
	require.True(t, exists, "converted numeric column should pair with categorical")
	assert.Equal(t, analysis.CorrCramersV, entry.Method)
}

func TestRanks_AveragedTies(t *testing.T) {
	ranks := Ranks([]float64{10, 20, 20, 30})
	assert.Equal(t, []float64{1, 2.5, 2.5, 4}, ranks)
}

func TestCramersV_Degenerate(t *testing.T) {
	_, ok := CramersV([]string{"a", "a"}, []string{"b", "b"})
	assert.False(t, ok, "single-level table has no defined V")
}

func TestCompute_CramersVMethodSkipsNumericPairs(t *testing.T) {
	cfg := analysis.DefaultConfig()
	cfg.CorrelationMethod = analysis.CorrCramersV

	ds, entries := buildDataset(t, map[string][]string{
		"x":   {"1", "2", "3", "4", "5", "6"},
		"y":   {"2", "4", "6", "8", "10", "12"},
		"cat": {"a", "b", "a", "b", "a", "b"},
		"grp": {"p", "q", "p", "q", "p", "q"},
	}, "x", "y", "cat", "grp")

	matrix, err := NewEngine(cfg).Compute(context.Background(), ds, entries)
	require.NoError(t, err)

	_, exists := matrix.Entries[core.NewPairKey("x", "y")]
	assert.False(t, exists, "numeric pairs stay out under cramers_v")

	entry, exists := matrix.Entries[core.NewPairKey("cat", "grp")]
	require.True(t, exists, "categorical pairs still measured")
	assert.Equal(t, analysis.CorrCramersV, entry.Method)
	assert.True(t, entry.Defined)
}
