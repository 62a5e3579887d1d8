package correlation

import "math"

// CramersV computes Cramér's V over the contingency table of two
// aligned label slices. The second return is false when the table is
// degenerate (a single row or column) and V is undefined.
func CramersV(a, b []string) (float64, bool) {
	if len(a) != len(b) || len(a) == 0 {
		return 0, false
	}

	table := make(map[string]map[string]float64)
	rowTotals := make(map[string]float64)
	colTotals := make(map[string]float64)
	for i := range a {
		if table[a[i]] == nil {
			table[a[i]] = make(map[string]float64)
		}
		table[a[i]][b[i]]++
		rowTotals[a[i]]++
		colTotals[b[i]]++
	}

	rows := len(rowTotals)
	cols := len(colTotals)
	minDim := rows - 1
	if cols-1 < minDim {
		minDim = cols - 1
	}
	if minDim == 0 {
		return 0, false
	}

	n := float64(len(a))
	chi2 := 0.0
	for r, rTotal := range rowTotals {
		for c, cTotal := range colTotals {
			expected := rTotal * cTotal / n
			if expected == 0 {
				continue
			}
			observed := table[r][c]
			diff := observed - expected
			chi2 += diff * diff / expected
		}
	}

	v := math.Sqrt(chi2 / (n * float64(minDim)))
	return clamp(v, 0, 1), true
}
