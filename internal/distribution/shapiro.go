package distribution

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat/distuv"
)

// shapiroWilk implements the Royston AS R94 approximation of the
// Shapiro-Wilk W statistic and its p-value. Valid for 3 <= n <= 5000.
func shapiroWilk(data []float64) (w, pValue float64, ok bool) {
	n := len(data)
	if n < 3 || n > 5000 {
		return 0, 0, false
	}

	x := make([]float64, n)
	copy(x, data)
	sort.Float64s(x)

	if x[0] == x[n-1] {
		// Zero range: W is undefined
		return 0, 0, false
	}

	norm := distuv.Normal{Mu: 0, Sigma: 1}

	// Expected values of normal order statistics (Blom approximation)
	m := make([]float64, n)
	sumM2 := 0.0
	for i := 0; i < n; i++ {
		m[i] = norm.Quantile((float64(i+1) - 0.375) / (float64(n) + 0.25))
		sumM2 += m[i] * m[i]
	}

	// Weights, with Royston's polynomial corrections for the tails
	a := make([]float64, n)
	rsn := 1.0 / math.Sqrt(float64(n))
	if n == 3 {
		a[0] = math.Sqrt(0.5)
		a[2] = -a[0]
	} else {
		c := math.Sqrt(sumM2)
		an := -2.706056*pow5(rsn) + 4.434685*pow4(rsn) - 2.071190*pow3(rsn) -
			0.147981*rsn*rsn + 0.221157*rsn + m[n-1]/c

		var phi float64
		if n > 5 {
			an1 := -3.582633*pow5(rsn) + 5.682633*pow4(rsn) - 1.752461*pow3(rsn) -
				0.293762*rsn*rsn + 0.042981*rsn + m[n-2]/c
			phi = (sumM2 - 2*m[n-1]*m[n-1] - 2*m[n-2]*m[n-2]) /
				(1 - 2*an*an - 2*an1*an1)
			a[n-1] = an
			a[n-2] = an1
			a[0] = -an
			a[1] = -an1
			for i := 2; i < n-2; i++ {
				a[i] = m[i] / math.Sqrt(phi)
			}
		} else {
			phi = (sumM2 - 2*m[n-1]*m[n-1]) / (1 - 2*an*an)
			a[n-1] = an
			a[0] = -an
			for i := 1; i < n-1; i++ {
				a[i] = m[i] / math.Sqrt(phi)
			}
		}
	}

	mean := 0.0
	for _, v := range x {
		mean += v
	}
	mean /= float64(n)

	num, den := 0.0, 0.0
	for i := 0; i < n; i++ {
		num += a[i] * x[i]
		den += (x[i] - mean) * (x[i] - mean)
	}
	if den == 0 {
		return 0, 0, false
	}
	w = num * num / den
	if w > 1 {
		w = 1
	}

	// Royston's normalizing transformation of W
	fn := float64(n)
	lw := math.Log(1 - w)
	var z float64
	switch {
	case n == 3:
		// Exact for n=3
		pi6 := 1.90985931710274
		stqr := 1.04719755119660
		pValue = pi6 * (math.Asin(math.Sqrt(w)) - stqr)
		if pValue < 0 {
			pValue = 0
		}
		if pValue > 1 {
			pValue = 1
		}
		return w, pValue, true
	case n <= 11:
		g := -2.273 + 0.459*fn
		mu := 0.5440 - 0.39978*fn + 0.025054*fn*fn - 0.0006714*fn*fn*fn
		sigma := math.Exp(1.3822 - 0.77857*fn + 0.062767*fn*fn - 0.0020322*fn*fn*fn)
		z = (-math.Log(g-lw) - mu) / sigma
	default:
		ln := math.Log(fn)
		mu := 0.0038915*ln*ln*ln - 0.083751*ln*ln - 0.31082*ln - 1.5861
		sigma := math.Exp(0.0030302*ln*ln - 0.082676*ln - 0.4803)
		z = (lw - mu) / sigma
	}

	pValue = 1 - norm.CDF(z)
	return w, pValue, true
}

func pow3(x float64) float64 { return x * x * x }
func pow4(x float64) float64 { return x * x * x * x }
func pow5(x float64) float64 { return x * x * x * x * x }
