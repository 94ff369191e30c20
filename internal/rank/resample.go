package rank

import "github.com/verte-zerg/gliss/internal/geom"

// resample redistributes a polyline to n points spaced uniformly along its
// arc length. Degenerate inputs (under two points, zero length) repeat the
// available point.
func resample(pts []geom.Point, n int) []geom.Point {
	if n < 2 || len(pts) == 0 {
		return pts
	}
	out := make([]geom.Point, 0, n)
	total := polylineLength(pts)
	if total == 0 || len(pts) == 1 {
		for i := 0; i < n; i++ {
			out = append(out, pts[0])
		}
		return out
	}

	step := total / float64(n-1)
	out = append(out, pts[0])
	seg := 0
	segStart := 0.0
	segLen := pts[1].Distance(pts[0])
	for i := 1; i < n-1; i++ {
		target := float64(i) * step
		for segStart+segLen < target && seg < len(pts)-2 {
			segStart += segLen
			seg++
			segLen = pts[seg+1].Distance(pts[seg])
		}
		t := 0.0
		if segLen > 0 {
			t = (target - segStart) / segLen
		}
		out = append(out, pts[seg].Lerp(pts[seg+1], t))
	}
	out = append(out, pts[len(pts)-1])
	return out
}

func polylineLength(pts []geom.Point) float64 {
	total := 0.0
	for i := 1; i < len(pts); i++ {
		total += pts[i].Distance(pts[i-1])
	}
	return total
}

// meanPointDistance averages the pairwise distance of two equal-length
// point sequences.
func meanPointDistance(a, b []geom.Point) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	if n == 0 {
		return 0
	}
	sum := 0.0
	for i := 0; i < n; i++ {
		sum += a[i].Distance(b[i])
	}
	return sum / float64(n)
}
