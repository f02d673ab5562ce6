package common

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// World returns the square region [0, size] x [0, size].
func World(size float64) orb.Bound {
	return orb.Bound{Min: orb.Point{0, 0}, Max: orb.Point{size, size}}
}

// Center returns the geometric center of the bound.
func Center(b orb.Bound) orb.Point {
	return orb.Point{
		(b.Min[0] + b.Max[0]) / 2.0,
		(b.Min[1] + b.Max[1]) / 2.0,
	}
}

// Contains reports whether p lies inside b. Edges count as inside.
func Contains(b orb.Bound, p orb.Point) bool {
	return b.Contains(p)
}

// Offset returns p displaced by (dx, dy).
func Offset(p orb.Point, dx, dy float64) orb.Point {
	return orb.Point{p[0] + dx, p[1] + dy}
}

// Displacement returns the vector pointing from `from` to `to`.
func Displacement(from, to orb.Point) (dx, dy float64) {
	return to[0] - from[0], to[1] - from[1]
}

// Round snaps both coordinates to the nearest integer, ties to even.
func Round(p orb.Point) orb.Point {
	return orb.Point{math.RoundToEven(p[0]), math.RoundToEven(p[1])}
}

// Distance calculates the Euclidean distance between two points.
func Distance(a, b orb.Point) float64 {
	return planar.Distance(a, b)
}

// Format renders a point with limited precision for log output.
func Format(p orb.Point) string {
	return fmt.Sprintf("[%.3f, %.3f]", p[0], p[1])
}
