// Package correlation computes pairwise association matrices. Numeric
// pairs use Pearson or Spearman, categorical pairs use Cramér's V, and
// mixed pairs stay out of the matrix unless configuration explicitly
// converts low-cardinality numeric columns to categorical.
package correlation

import (
	"context"
	"math"

	"gonum.org/v1/gonum/stat"

	"tabscope/domain/analysis"
	"tabscope/domain/core"
	"tabscope/domain/dataset"
	"tabscope/internal/schema"
)

// Engine builds correlation matrices
type Engine struct {
	method    analysis.CorrelationMethod
	numCatMax int
}

// NewEngine creates an engine from the run configuration
func NewEngine(cfg analysis.Config) *Engine {
	return &Engine{
		method:    cfg.CorrelationMethod,
		numCatMax: cfg.NumericAsCategoricalMaxCardinality,
	}
}

// columnRole is the effective correlation role after policy conversion
type columnRole int

const (
	roleExcluded columnRole = iota
	roleNumeric
	roleCategorical
)

// Compute returns the symmetric pairwise matrix for a dataset. Missing
// values fall out per pair (pairwise-complete-case deletion), never as
// whole-row deletion across the dataset.
func (e *Engine) Compute(ctx context.Context, ds *dataset.Dataset, entries map[core.ColumnKey]dataset.SchemaEntry) (*analysis.CorrelationMatrix, error) {
	matrix := &analysis.CorrelationMatrix{
		Entries: make(map[core.PairKey]analysis.CorrelationEntry),
	}

	roles := make([]columnRole, ds.ColumnCount())
	for i, col := range ds.Columns {
		roles[i] = e.roleOf(entries[col.Name])
		if roles[i] == roleNumeric {
			matrix.NumericColumns = append(matrix.NumericColumns, col.Name)
		}
	}

	for i := 0; i < ds.ColumnCount(); i++ {
		for j := i + 1; j < ds.ColumnCount(); j++ {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			if roles[i] == roleExcluded || roles[j] == roleExcluded {
				continue
			}
			pair := core.NewPairKey(ds.Columns[i].Name, ds.Columns[j].Name)

			var entry analysis.CorrelationEntry
			switch {
			case roles[i] == roleNumeric && roles[j] == roleNumeric:
				if e.method == analysis.CorrCramersV {
					// Cramér's V measures categorical association only;
					// numeric pairs are excluded unless converted via
					// NumericAsCategoricalMaxCardinality.
					continue
				}
				entry = e.numericPair(ds.Columns[i], ds.Columns[j])
			case roles[i] == roleCategorical && roles[j] == roleCategorical:
				entry = e.categoricalPair(ds.Columns[i], ds.Columns[j])
			default:
				// Mixed numeric-categorical: undefined relationship
				// type, excluded without an entry.
				continue
			}
			entry.Pair = pair
			matrix.Entries[pair] = entry
		}
	}

	return matrix, nil
}

func (e *Engine) roleOf(entry dataset.SchemaEntry) columnRole {
	switch entry.Type {
	case dataset.TypeInteger, dataset.TypeFloat:
		if e.numCatMax > 0 && entry.DistinctCount > 0 && entry.DistinctCount <= e.numCatMax {
			return roleCategorical
		}
		return roleNumeric
	case dataset.TypeBoolean, dataset.TypeCategorical:
		return roleCategorical
	default:
		return roleExcluded
	}
}

func (e *Engine) numericPair(a, b *dataset.Column) analysis.CorrelationEntry {
	x, y := pairwiseComplete(a, b)
	entry := analysis.CorrelationEntry{
		Method:       e.method,
		Observations: len(x),
	}
	if len(x) < 2 {
		return entry
	}

	if e.method == analysis.CorrSpearman {
		x = Ranks(x)
		y = Ranks(y)
	}

	r := stat.Correlation(x, y, nil)
	if math.IsNaN(r) || math.IsInf(r, 0) {
		// Zero variance on either side; the coefficient is undefined
		// rather than propagated as NaN.
		return entry
	}
	entry.Coefficient = clamp(r, -1, 1)
	entry.Defined = true
	return entry
}

func (e *Engine) categoricalPair(a, b *dataset.Column) analysis.CorrelationEntry {
	la, ra := schema.Labels(a)
	lb, rb := schema.Labels(b)
	pa, pb := alignLabels(la, ra, lb, rb)

	entry := analysis.CorrelationEntry{
		Method:       analysis.CorrCramersV,
		Observations: len(pa),
	}
	if len(pa) < 2 {
		return entry
	}

	v, ok := CramersV(pa, pb)
	if !ok {
		return entry
	}
	entry.Coefficient = v
	entry.Defined = true
	return entry
}

// pairwiseComplete returns aligned numeric slices over the rows where
// both columns hold a usable value
func pairwiseComplete(a, b *dataset.Column) ([]float64, []float64) {
	va, ra := schema.FloatValues(a)
	vb, rb := schema.FloatValues(b)

	x := make([]float64, 0, min(len(va), len(vb)))
	y := make([]float64, 0, min(len(va), len(vb)))
	i, j := 0, 0
	for i < len(ra) && j < len(rb) {
		switch {
		case ra[i] == rb[j]:
			x = append(x, va[i])
			y = append(y, vb[j])
			i++
			j++
		case ra[i] < rb[j]:
			i++
		default:
			j++
		}
	}
	return x, y
}

// alignLabels intersects two labeled index sets on row number
func alignLabels(la []string, ra []int, lb []string, rb []int) ([]string, []string) {
	x := make([]string, 0, min(len(la), len(lb)))
	y := make([]string, 0, min(len(la), len(lb)))
	i, j := 0, 0
	for i < len(ra) && j < len(rb) {
		switch {
		case ra[i] == rb[j]:
			x = append(x, la[i])
			y = append(y, lb[j])
			i++
			j++
		case ra[i] < rb[j]:
			i++
		default:
			j++
		}
	}
	return x, y
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
