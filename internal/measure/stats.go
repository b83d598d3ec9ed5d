package measure

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Summary holds the descriptive statistics reported for a set of values.
type Summary struct {
	Count int
	Mean  float64
	Std   float64 // sample standard deviation (n−1); 0 when Count ≤ 1
	Min   float64
	Max   float64
}

// Summarize computes descriptive statistics. An empty input yields a zero
// summary.
func Summarize(vals []float64) Summary {
	n := len(vals)
	if n == 0 {
		return Summary{}
	}

	s := Summary{
		Count: n,
		Mean:  stat.Mean(vals, nil),
		Min:   floats.Min(vals),
		Max:   floats.Max(vals),
	}
	if n > 1 {
		s.Std = stat.StdDev(vals, nil)
	}
	return s
}

// GaussianCurve samples the normal pdf fitted to the summary at 200
// evenly spaced points across [min−σ, max+σ]. It returns nil slices when
// the deviation is zero, where the fit is undefined.
func GaussianCurve(s Summary) (xs, ys []float64) {
	if s.Std <= 0 {
		return nil, nil
	}
	dist := distuv.Normal{Mu: s.Mean, Sigma: s.Std}
	xs = make([]float64, 200)
	floats.Span(xs, s.Min-s.Std, s.Max+s.Std)
	ys = make([]float64, len(xs))
	for i, x := range xs {
		ys[i] = dist.Prob(x)
	}
	return xs, ys
}

// HistogramBins returns the bin count used for area/diameter histograms:
// the square-root rule with a floor of 5.
func HistogramBins(n int) int {
	b := int(math.Sqrt(float64(n)))
	if b < 5 {
		b = 5
	}
	return b
}

// Histogram counts vals into equal-width bins spanning [min, max].
// Values on a divider fall into the higher bin, matching the plotting
// convention. Returns nil when vals is empty or the span is zero.
func Histogram(vals []float64, bins int) (counts []int, edges []float64) {
	if len(vals) == 0 || bins < 1 {
		return nil, nil
	}
	lo := floats.Min(vals)
	hi := floats.Max(vals)
	if hi == lo {
		return nil, nil
	}

	edges = make([]float64, bins+1)
	floats.Span(edges, lo, hi)
	counts = make([]int, bins)
	width := (hi - lo) / float64(bins)
	for _, v := range vals {
		i := int((v - lo) / width)
		if i >= bins {
			i = bins - 1
		}
		counts[i]++
	}
	return counts, edges
}
