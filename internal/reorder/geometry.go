package reorder

// Point is a pointer position in terminal cells.
type Point struct {
	X, Y int
}

// Rect is an axis-aligned region in terminal cells.
type Rect struct {
	X, Y, W, H int
}

// Contains reports whether p lies inside r.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X < r.X+r.W && p.Y >= r.Y && p.Y < r.Y+r.H
}

// center2 returns the centre of r doubled so odd sizes stay exact.
func (r Rect) center2() Point {
	return Point{X: 2*r.X + r.W, Y: 2*r.Y + r.H}
}

// distance2 returns the squared distance between the centre of cell p and
// the centre of r, scaled by four.
func distance2(p Point, r Rect) int {
	c := r.center2()
	dx := 2*p.X + 1 - c.X
	dy := 2*p.Y + 1 - c.Y
	return dx*dx + dy*dy
}
