package numtest

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// averageRanks assigns 1-based ranks, averaging ties.
func averageRanks(xs []float64) []float64 {
	n := len(xs)
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(i, j int) bool { return xs[idx[i]] < xs[idx[j]] })

	ranks := make([]float64, n)
	for i := 0; i < n; {
		j := i
		for j < n && xs[idx[j]] == xs[idx[i]] {
			j++
		}
		// ties share the average of the rank span [i+1, j]
		avg := float64(i+j+1) / 2
		for k := i; k < j; k++ {
			ranks[idx[k]] = avg
		}
		i = j
	}
	return ranks
}

func isConstant(xs []float64) bool {
	for _, x := range xs {
		if x != xs[0] {
			return false
		}
	}
	return true
}

// Spearman computes the rank correlation rho and its two-sided p-value
// (t approximation with n-2 degrees of freedom). A constant or too-small
// input yields rho=0, p=1 rather than an error.
func Spearman(xs, ys []float64) (rho, p float64) {
	n := len(xs)
	if n < 2 || isConstant(xs) || isConstant(ys) {
		return 0, 1
	}
	rho = stat.Correlation(averageRanks(xs), averageRanks(ys), nil)
	if rho > 1 {
		rho = 1
	} else if rho < -1 {
		rho = -1
	}
	if n < 3 {
		return rho, 1
	}
	den := 1 - rho*rho
	if den <= 0 {
		return rho, 0
	}
	t := rho * math.Sqrt(float64(n-2)/den)
	td := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(n - 2)}
	return rho, 2 * td.CDF(-math.Abs(t))
}

// SpearmanCI is the Fisher z-transform confidence interval around rho.
// Undefined (NaN bounds) for samples smaller than 4.
func SpearmanCI(rho float64, n int, confidence float64) (lo, hi float64) {
	if n < 4 {
		return math.NaN(), math.NaN()
	}
	z := math.Atanh(rho)
	se := 1 / math.Sqrt(float64(n-3))
	zCrit := distuv.Normal{Mu: 0, Sigma: 1}.Quantile(1 - (1-confidence)/2)
	return math.Tanh(z - zCrit*se), math.Tanh(z + zCrit*se)
}

// CohensD is the standardized mean difference between two groups using the
// pooled unbiased standard deviation. Defined as 0 when either group has
// fewer than 2 values or the pooled deviation is zero.
func CohensD(g1, g2 []float64) float64 {
	n1, n2 := len(g1), len(g2)
	if n1 < 2 || n2 < 2 {
		return 0
	}
	m1, v1 := stat.MeanVariance(g1, nil)
	m2, v2 := stat.MeanVariance(g2, nil)
	pooled := math.Sqrt((float64(n1-1)*v1 + float64(n2-1)*v2) / float64(n1+n2-2))
	if pooled == 0 {
		return 0
	}
	return (m1 - m2) / pooled
}

// McNemar runs the continuity-corrected McNemar test over two paired
// decision sequences. The 2x2 table is
//
//	table[0][0] both yes   table[0][1] a yes, b no
//	table[1][0] a no, b yes  table[1][1] both no
//
// Zero discordant pairs mean perfect agreement: stat=0, p=1.
func McNemar(as, bs []bool) (stat float64, p float64, table [2][2]int) {
	for i := range as {
		switch {
		case as[i] && bs[i]:
			table[0][0]++
		case as[i] && !bs[i]:
			table[0][1]++
		case !as[i] && bs[i]:
			table[1][0]++
		default:
			table[1][1]++
		}
	}
	b, c := table[0][1], table[1][0]
	if b+c == 0 {
		return 0, 1, table
	}
	diff := math.Abs(float64(b-c)) - 1
	stat = diff * diff / float64(b+c)
	chi2 := distuv.ChiSquared{K: 1}
	return stat, 1 - chi2.CDF(stat), table
}
