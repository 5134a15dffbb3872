package domain

// Point is a pointer position in layout coordinates.
type Point struct {
	X float64
	Y float64
}

// Rect is an axis-aligned bounding box in layout coordinates.
type Rect struct {
	X float64
	Y float64
	W float64
	H float64
}

// MidY returns the vertical midpoint.
func (r Rect) MidY() float64 {
	return r.Y + r.H/2
}

// Contains reports whether p lies inside r (right and bottom edges exclusive).
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X < r.X+r.W && p.Y >= r.Y && p.Y < r.Y+r.H
}

// Translate returns r shifted by dx, dy.
func (r Rect) Translate(dx, dy float64) Rect {
	r.X += dx
	r.Y += dy
	return r
}
