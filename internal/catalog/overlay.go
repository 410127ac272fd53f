package catalog

// Rect is a cell rectangle in screen coordinates.
type Rect struct {
	X, Y int
	W, H int
}

func (r Rect) Empty() bool { return r.W <= 0 || r.H <= 0 }

func (r Rect) Contains(x, y int) bool {
	if r.Empty() {
		return false
	}
	return x >= r.X && x < r.X+r.W && y >= r.Y && y < r.Y+r.H
}

// OverlayLayout is where the overlay's content box (and the image inside it) was drawn.
type OverlayLayout struct {
	Content Rect
	Image   Rect
}

// HitTest classifies a click at (x, y). The image rect only counts when it is inside the
// content box.
func (l OverlayLayout) HitTest(x, y int) HitRegion {
	if !l.Content.Contains(x, y) {
		return RegionOutside
	}
	if l.Image.Contains(x, y) {
		return RegionImage
	}
	return RegionContent
}
