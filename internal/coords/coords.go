// Package coords maps between timeline seconds and horizontal pixels.
//
// Zoom is pixels per second and must be strictly positive. Nothing here
// clamps: callers keep zoom within a sane UI range, see ClampZoom.
package coords

// ToPixels returns the on-screen x of timeline time t.
func ToPixels(t, zoom, scrollX float64) float64 {
	return t*zoom - scrollX
}

// ToTime returns the timeline time under pixel x.
func ToTime(px, zoom, scrollX float64) float64 {
	return (px + scrollX) / zoom
}

// Viewport is the horizontal view of the timeline.
type Viewport struct {
	Zoom    float64 `yaml:"zoom"`     // pixels per second
	ScrollX float64 `yaml:"scroll_x"` // pixels scrolled from time zero
}

// ToPixels returns the on-screen x of t.
func (v Viewport) ToPixels(t float64) float64 {
	return ToPixels(t, v.Zoom, v.ScrollX)
}

// ToTime returns the time under pixel x.
func (v Viewport) ToTime(px float64) float64 {
	return ToTime(px, v.Zoom, v.ScrollX)
}

// DeltaTime converts a pointer delta in pixels to seconds. Scroll cancels out.
func (v Viewport) DeltaTime(dx float64) float64 {
	return dx / v.Zoom
}

// Box returns the left and right pixel edges of a span starting at start.
func (v Viewport) Box(start, duration float64) (left, right float64) {
	return v.ToPixels(start), v.ToPixels(start + duration)
}

// ClampZoom limits zoom to [minZoom, maxZoom].
func ClampZoom(zoom, minZoom, maxZoom float64) float64 {
	return min(max(zoom, minZoom), maxZoom)
}
