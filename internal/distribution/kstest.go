package distribution

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat/distuv"
)

// kolmogorovSmirnov runs the one-sample KS test against a normal
// distribution fitted to the data (mean and population standard
// deviation estimated from the sample, matching the Lilliefors-style
// usage the report consumers expect).
func kolmogorovSmirnov(data []float64) (d, pValue float64, ok bool) {
	n := len(data)
	if n < 2 {
		return 0, 0, false
	}

	x := make([]float64, n)
	copy(x, data)
	sort.Float64s(x)

	mean := 0.0
	for _, v := range x {
		mean += v
	}
	mean /= float64(n)
	variance := 0.0
	for _, v := range x {
		variance += (v - mean) * (v - mean)
	}
	variance /= float64(n)
	sd := math.Sqrt(variance)
	if sd == 0 {
		return 0, 0, false
	}

	norm := distuv.Normal{Mu: mean, Sigma: sd}
	for i, v := range x {
		cdf := norm.CDF(v)
		dPlus := float64(i+1)/float64(n) - cdf
		dMinus := cdf - float64(i)/float64(n)
		if dPlus > d {
			d = dPlus
		}
		if dMinus > d {
			d = dMinus
		}
	}

	pValue = kolmogorovP(d, n)
	return d, pValue, true
}

// kolmogorovP approximates the two-sided p-value via the asymptotic
// Kolmogorov distribution with the Stephens small-sample correction.
func kolmogorovP(d float64, n int) float64 {
	sn := math.Sqrt(float64(n))
	lambda := (sn + 0.12 + 0.11/sn) * d
	if lambda < 1e-10 {
		return 1.0
	}

	sum := 0.0
	sign := 1.0
	for k := 1; k <= 100; k++ {
		term := sign * math.Exp(-2*lambda*lambda*float64(k*k))
		sum += term
		if math.Abs(term) < 1e-12 {
			break
		}
		sign = -sign
	}
	p := 2 * sum
	if p < 0 {
		p = 0
	}
	if p > 1 {
		p = 1
	}
	return p
}
