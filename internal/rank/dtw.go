package rank

import (
	"math"

	"github.com/verte-zerg/gliss/internal/geom"
)

// dtwDistance computes the dynamic-time-warping distance between two point
// sequences, normalized by the longer length. Sequences need not be the
// same length, which is exactly the situation when aligning a candidate's
// letter positions against the observed key-probability peaks. Returns
// +Inf when either sequence is empty.
func dtwDistance(a, b []geom.Point) float64 {
	n, m := len(a), len(b)
	if n == 0 || m == 0 {
		return math.Inf(1)
	}

	dtw := make([][]float64, n+1)
	for i := range dtw {
		dtw[i] = make([]float64, m+1)
		for j := range dtw[i] {
			dtw[i][j] = math.Inf(1)
		}
	}
	dtw[0][0] = 0

	for i := 1; i <= n; i++ {
		for j := 1; j <= m; j++ {
			cost := a[i-1].Distance(b[j-1])
			dtw[i][j] = cost + min3(dtw[i-1][j], dtw[i][j-1], dtw[i-1][j-1])
		}
	}

	longer := n
	if m > longer {
		longer = m
	}
	return dtw[n][m] / float64(longer)
}

func min3(a, b, c float64) float64 {
	if a <= b && a <= c {
		return a
	}
	if b <= c {
		return b
	}
	return c
}
