// Package physics provides collision detection utilities.
package physics

// RectsOverlap reports whether two axis-aligned rectangles, each given by its
// top-left corner and size, overlap. Touching edges do not count.
func RectsOverlap(ax, ay, aw, ah, bx, by, bw, bh float64) bool {
	return ax < bx+bw && bx < ax+aw && ay < by+bh && by < ay+ah
}

