package domain

import "math"

// Location is an immutable 2-D coordinate pair.
type Location struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// DistanceTo returns the Euclidean distance to another location.
func (l Location) DistanceTo(other Location) float64 {
	dx := l.X - other.X
	dy := l.Y - other.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// Equals reports whether two locations have identical coordinates.
func (l Location) Equals(other Location) bool {
	return l.X == other.X && l.Y == other.Y
}
