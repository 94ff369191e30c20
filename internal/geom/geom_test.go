package geom

import (
	"math"
	"testing"
)

func TestPointDistance(t *testing.T) {
	if d := Pt(0, 0).Distance(Pt(3, 4)); d != 5 {
		t.Fatalf("expected distance 5, got %v", d)
	}
}

func TestAngleBetweenVectors(t *testing.T) {
	tests := []struct {
		name string
		a, b Point
		want float64
	}{
		{"parallel", Pt(1, 0), Pt(2, 0), 0},
		{"perpendicular", Pt(1, 0), Pt(0, 1), math.Pi / 2},
		{"opposite", Pt(1, 0), Pt(-1, 0), math.Pi},
		{"zero vector", Pt(0, 0), Pt(1, 1), 0},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got := test.a.Angle(test.b)
			if math.Abs(got-test.want) > 1e-9 {
				t.Fatalf("expected angle %v, got %v", test.want, got)
			}
		})
	}
}

func TestRectCenterAndContains(t *testing.T) {
	r := Rect{X: 10, Y: 20, W: 40, H: 60}
	if c := r.Center(); c != Pt(30, 50) {
		t.Fatalf("expected center (30,50), got %v", c)
	}
	if !r.Contains(Pt(10, 20)) {
		t.Fatalf("expected top-left corner to be contained")
	}
	if r.Contains(Pt(50, 80)) {
		t.Fatalf("expected bottom-right corner to be excluded")
	}
}

func TestRectEmpty(t *testing.T) {
	if !(Rect{W: 0, H: 10}).Empty() {
		t.Fatalf("expected zero-width rect to be empty")
	}
	if (Rect{W: 1, H: 1}).Empty() {
		t.Fatalf("expected unit rect to be non-empty")
	}
}

func TestLerpMidpoint(t *testing.T) {
	mid := Pt(0, 0).Lerp(Pt(10, 20), 0.5)
	if mid != Pt(5, 10) {
		t.Fatalf("expected midpoint (5,10), got %v", mid)
	}
}
