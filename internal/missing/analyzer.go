// Package missing computes null rates, cross-column null co-occurrence
// and missingness clusters for a dataset.
package missing

import (
	"context"

	"tabscope/domain/analysis"
	"tabscope/domain/core"
	"tabscope/domain/dataset"
	"tabscope/internal/schema"
)

// Analyzer detects missingness structure
type Analyzer struct {
	threshold float64
}

// NewAnalyzer creates an analyzer. Pairs whose null-coincidence reaches
// the threshold are grouped into the same cluster.
func NewAnalyzer(threshold float64) *Analyzer {
	return &Analyzer{threshold: threshold}
}

// Analyze produces the MissingnessReport for a whole dataset
func (a *Analyzer) Analyze(ctx context.Context, ds *dataset.Dataset) (*analysis.MissingnessReport, error) {
	report := &analysis.MissingnessReport{
		NullRates:  make(map[core.ColumnKey]float64, ds.ColumnCount()),
		Similarity: make(map[core.PairKey]float64),
		Threshold:  a.threshold,
	}

	rows := ds.Rows()
	nulls := make([][]int, ds.ColumnCount())
	totalNulls := 0
	for i, col := range ds.Columns {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		nulls[i] = schema.NullIndexes(col)
		totalNulls += len(nulls[i])
		rate := 0.0
		if rows > 0 {
			rate = float64(len(nulls[i])) / float64(rows)
		}
		report.NullRates[col.Name] = rate
	}

	if rows > 0 && ds.ColumnCount() > 0 {
		report.OverallMissingRate = float64(totalNulls) / float64(rows*ds.ColumnCount())
		report.CompleteRows = countCompleteRows(nulls, rows)
	}

	uf := newUnionFind(ds.ColumnCount())
	clustered := make([]bool, ds.ColumnCount())

	for i := 0; i < ds.ColumnCount(); i++ {
		for j := i + 1; j < ds.ColumnCount(); j++ {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			pair := core.NewPairKey(ds.Columns[i].Name, ds.Columns[j].Name)
			inter, union := intersectionUnion(nulls[i], nulls[j])

			// A column with zero nulls scores 0 against every
			// partner; the union being empty never divides by zero.
			sim := 0.0
			if len(nulls[i]) > 0 && len(nulls[j]) > 0 && union > 0 {
				sim = float64(inter) / float64(union)
			}
			report.Similarity[pair] = sim

			if sim >= a.threshold && len(nulls[i]) > 0 && len(nulls[j]) > 0 {
				uf.Union(i, j)
				clustered[i] = true
				clustered[j] = true
			}

			// Monotone pattern: dependent is null whenever the driver
			// is, but not conversely. Identical null sets are symmetric
			// co-occurrence, not direction.
			if len(nulls[i]) > 0 && inter == len(nulls[i]) && len(nulls[j]) > len(nulls[i]) {
				report.Monotone = append(report.Monotone, analysis.MonotonePattern{
					Driver:    ds.Columns[i].Name,
					Dependent: ds.Columns[j].Name,
				})
			} else if len(nulls[j]) > 0 && inter == len(nulls[j]) && len(nulls[i]) > len(nulls[j]) {
				report.Monotone = append(report.Monotone, analysis.MonotonePattern{
					Driver:    ds.Columns[j].Name,
					Dependent: ds.Columns[i].Name,
				})
			}
		}
	}

	// Collect clusters of size >= 2 in dataset column order
	groups := make(map[int][]core.ColumnKey)
	for i := 0; i < ds.ColumnCount(); i++ {
		if !clustered[i] {
			continue
		}
		root := uf.Find(i)
		groups[root] = append(groups[root], ds.Columns[i].Name)
	}
	for i := 0; i < ds.ColumnCount(); i++ {
		if members, ok := groups[uf.Find(i)]; ok && len(members) >= 2 && uf.Find(i) == i {
			report.Clusters = append(report.Clusters, members)
		}
	}

	return report, nil
}

// intersectionUnion counts |A∩B| and |A∪B| over two ascending index sets
func intersectionUnion(a, b []int) (inter, union int) {
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] == b[j]:
			inter++
			union++
			i++
			j++
		case a[i] < b[j]:
			union++
			i++
		default:
			union++
			j++
		}
	}
	union += len(a) - i
	union += len(b) - j
	return inter, union
}

func countCompleteRows(nulls [][]int, rows int) int {
	anyNull := make([]bool, rows)
	for _, idx := range nulls {
		for _, r := range idx {
			anyNull[r] = true
		}
	}
	complete := 0
	for _, isNull := range anyNull {
		if !isNull {
			complete++
		}
	}
	return complete
}
