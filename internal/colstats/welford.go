package colstats

import "math"

// moments is a single-pass accumulator for the first four central
// moments, using the stable Welford/Pébay update so large magnitudes
// and long sequences do not cancel catastrophically.
type moments struct {
	n   int
	m1  float64 // running mean
	m2  float64 // sum of squared deviations
	m3  float64
	m4  float64
	min float64
	max float64
}

func newMoments() *moments {
	return &moments{min: math.Inf(1), max: math.Inf(-1)}
}

// Add folds one observation into the accumulator
func (m *moments) Add(x float64) {
	n1 := float64(m.n)
	m.n++
	n := float64(m.n)

	delta := x - m.m1
	deltaN := delta / n
	deltaN2 := deltaN * deltaN
	term1 := delta * deltaN * n1

	m.m1 += deltaN
	m.m4 += term1*deltaN2*(n*n-3*n+3) + 6*deltaN2*m.m2 - 4*deltaN*m.m3
	m.m3 += term1*deltaN*(n-2) - 3*deltaN*m.m2
	m.m2 += term1

	if x < m.min {
		m.min = x
	}
	if x > m.max {
		m.max = x
	}
}

func (m *moments) Count() int     { return m.n }
func (m *moments) Mean() float64  { return m.m1 }
func (m *moments) Min() float64   { return m.min }
func (m *moments) Max() float64   { return m.max }

// VariancePop returns the population variance (divide by n)
func (m *moments) VariancePop() float64 {
	if m.n == 0 {
		return 0
	}
	return m.m2 / float64(m.n)
}

// VarianceSample returns the sample variance (divide by n-1)
func (m *moments) VarianceSample() float64 {
	if m.n < 2 {
		return 0
	}
	return m.m2 / float64(m.n-1)
}

// Skewness returns the sample skewness (g1). Zero-variance data yields 0.
func (m *moments) Skewness() float64 {
	if m.n < 3 || m.m2 == 0 {
		return 0
	}
	n := float64(m.n)
	return math.Sqrt(n) * m.m3 / math.Pow(m.m2, 1.5)
}

// Kurtosis returns the excess kurtosis (g2). Zero-variance data yields 0.
func (m *moments) Kurtosis() float64 {
	if m.n < 4 || m.m2 == 0 {
		return 0
	}
	n := float64(m.n)
	return n*m.m4/(m.m2*m.m2) - 3
}
