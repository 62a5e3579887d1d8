package colstats

import (
	"math"
	"sort"
)

// Quantile computes the q-quantile of data by full order-statistics
// selection with linear interpolation between adjacent ranks. The input
// need not be sorted and is not modified.
func Quantile(data []float64, q float64) float64 {
	return exactQuantile(sortedCopy(data), q)
}

// exactQuantile computes the q-quantile of data by full order-statistics
// selection with linear interpolation between adjacent ranks. The input
// must already be sorted ascending.
func exactQuantile(sorted []float64, q float64) float64 {
	n := len(sorted)
	if n == 0 {
		return math.NaN()
	}
	if n == 1 {
		return sorted[0]
	}
	pos := q * float64(n-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo < 0 {
		lo = 0
	}
	if hi > n-1 {
		hi = n - 1
	}
	frac := pos - float64(lo)
	return sorted[lo] + frac*(sorted[hi]-sorted[lo])
}

// sortedCopy returns an ascending copy of data
func sortedCopy(data []float64) []float64 {
	out := make([]float64, len(data))
	copy(out, data)
	sort.Float64s(out)
	return out
}

// p2Quantile is the P-squared streaming quantile estimator (Jain &
// Chlamtac). It tracks five markers in constant memory, so quantiles of
// arbitrarily long columns never require materializing a sorted copy.
type p2Quantile struct {
	p       float64
	heights [5]float64
	pos     [5]float64
	desired [5]float64
	incr    [5]float64
	n       int
	initial []float64
}

func newP2Quantile(p float64) *p2Quantile {
	q := &p2Quantile{p: p}
	q.incr = [5]float64{0, p / 2, p, (1 + p) / 2, 1}
	return q
}

// Add feeds one observation to the estimator
func (q *p2Quantile) Add(x float64) {
	q.n++
	if len(q.initial) < 5 {
		q.initial = append(q.initial, x)
		if len(q.initial) == 5 {
			sort.Float64s(q.initial)
			for i := 0; i < 5; i++ {
				q.heights[i] = q.initial[i]
				q.pos[i] = float64(i + 1)
			}
			q.desired = [5]float64{1, 1 + 2*q.p, 1 + 4*q.p, 3 + 2*q.p, 5}
		}
		return
	}

	var k int
	switch {
	case x < q.heights[0]:
		q.heights[0] = x
		k = 0
	case x >= q.heights[4]:
		q.heights[4] = x
		k = 3
	default:
		for i := 1; i < 5; i++ {
			if x < q.heights[i] {
				k = i - 1
				break
			}
		}
	}

	for i := k + 1; i < 5; i++ {
		q.pos[i]++
	}
	for i := 0; i < 5; i++ {
		q.desired[i] += q.incr[i]
	}

	// Adjust interior markers toward their desired positions
	for i := 1; i < 4; i++ {
		d := q.desired[i] - q.pos[i]
		if (d >= 1 && q.pos[i+1]-q.pos[i] > 1) || (d <= -1 && q.pos[i-1]-q.pos[i] < -1) {
			sign := 1.0
			if d < 0 {
				sign = -1.0
			}
			h := q.parabolic(i, sign)
			if q.heights[i-1] < h && h < q.heights[i+1] {
				q.heights[i] = h
			} else {
				q.heights[i] = q.linear(i, sign)
			}
			q.pos[i] += sign
		}
	}
}

func (q *p2Quantile) parabolic(i int, d float64) float64 {
	return q.heights[i] + d/(q.pos[i+1]-q.pos[i-1])*
		((q.pos[i]-q.pos[i-1]+d)*(q.heights[i+1]-q.heights[i])/(q.pos[i+1]-q.pos[i])+
			(q.pos[i+1]-q.pos[i]-d)*(q.heights[i]-q.heights[i-1])/(q.pos[i]-q.pos[i-1]))
}

func (q *p2Quantile) linear(i int, d float64) float64 {
	di := int(d)
	return q.heights[i] + d*(q.heights[i+di]-q.heights[i])/(q.pos[i+di]-q.pos[i])
}

// Value returns the current quantile estimate. With fewer than five
// observations the exact quantile of the buffered values is returned.
func (q *p2Quantile) Value() float64 {
	if len(q.initial) < 5 {
		if len(q.initial) == 0 {
			return math.NaN()
		}
		buf := sortedCopy(q.initial)
		return exactQuantile(buf, q.p)
	}
	return q.heights[2]
}
