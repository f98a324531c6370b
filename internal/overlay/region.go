package overlay

// Point is a cell position on screen.
type Point struct {
	X int
	Y int
}

// Rect is a screen region in cells.
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

// Empty reports whether the region covers no cells.
func (r Rect) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Contains reports whether p lies inside r. The right and bottom edges are
// exclusive.
func (r Rect) Contains(p Point) bool {
	if r.Empty() {
		return false
	}
	return p.X >= r.X && p.X < r.X+r.Width &&
		p.Y >= r.Y && p.Y < r.Y+r.Height
}

// Center returns the middle cell of r.
func (r Rect) Center() Point {
	return Point{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
}

// Layout reports where an overlay has been laid out.
type Layout interface {
	Bounds() Rect
}

// LayoutFunc adapts a function to Layout.
type LayoutFunc func() Rect

// Bounds calls f.
func (f LayoutFunc) Bounds() Rect {
	return f()
}
