package geometry

import (
	"math"
	"testing"
)

func TestPointArithmetic(t *testing.T) {
	a := NewPoint2D(3, 4)
	b := NewPoint2D(1, 2)

	if got := a.Add(b); got != (Point2D{X: 4, Y: 6}) {
		t.Errorf("Add = %v", got)
	}
	if got := a.Sub(b); got != (Point2D{X: 2, Y: 2}) {
		t.Errorf("Sub = %v", got)
	}
	if got := a.Scale(2); got != (Point2D{X: 6, Y: 8}) {
		t.Errorf("Scale = %v", got)
	}
	if got := a.Distance(Point2D{}); got != 5 {
		t.Errorf("Distance = %v, want 5", got)
	}
}

func TestSegmentLength(t *testing.T) {
	tests := []struct {
		seg  Segment
		want float64
	}{
		{Segment{X1: 0, Y1: 0, X2: 3, Y2: 4}, 5},
		{Segment{X1: 10, Y1: 20, X2: 10, Y2: 50}, 30},
		{Segment{X1: 7, Y1: 7, X2: 7, Y2: 7}, 0},
	}
	for _, tt := range tests {
		if got := tt.seg.Length(); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("Length(%v) = %v, want %v", tt.seg, got, tt.want)
		}
	}
}

func TestRectContainsAndCenter(t *testing.T) {
	r := Rect{X: 10, Y: 20, Width: 40, Height: 30}

	if c := r.Center(); c != (Point2D{X: 30, Y: 35}) {
		t.Errorf("Center = %v", c)
	}

	inside := []Point2D{{X: 10, Y: 20}, {X: 30, Y: 35}, {X: 50, Y: 50}}
	for _, p := range inside {
		if !r.Contains(p) {
			t.Errorf("Contains(%v) = false, want true", p)
		}
	}
	outside := []Point2D{{X: 9, Y: 35}, {X: 30, Y: 51}, {X: 51, Y: 20}}
	for _, p := range outside {
		if r.Contains(p) {
			t.Errorf("Contains(%v) = true, want false", p)
		}
	}
}

func TestCentroid(t *testing.T) {
	if got := Centroid(nil); got != (Point2D{}) {
		t.Errorf("Centroid(nil) = %v", got)
	}
	pts := []Point2D{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 6}, {X: 0, Y: 6}}
	if got := Centroid(pts); got != (Point2D{X: 5, Y: 3}) {
		t.Errorf("Centroid = %v, want (5, 3)", got)
	}
}

func TestBoundingBox(t *testing.T) {
	pts := []Point2D{{X: 4, Y: 9}, {X: -2, Y: 3}, {X: 7, Y: 5}}
	got := BoundingBox(pts)
	want := Rect{X: -2, Y: 3, Width: 9, Height: 6}
	if got != want {
		t.Errorf("BoundingBox = %v, want %v", got, want)
	}
	if BoundingBox(nil) != (Rect{}) {
		t.Error("BoundingBox(nil) should be the zero rect")
	}
}
