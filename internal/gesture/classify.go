package gesture

import (
	"math"

	"github.com/tphakala/regionedit/internal/coords"
	"github.com/tphakala/regionedit/internal/region"
)

// Point is a pointer position in pixels.
type Point struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

// Box is a region's on-screen rectangle in pixels. Top is above Bottom.
type Box struct {
	Left   float64 `yaml:"left"`
	Right  float64 `yaml:"right"`
	Top    float64 `yaml:"top"`
	Bottom float64 `yaml:"bottom"`
}

// RegionBox places r in the viewport on a lane spanning [top, top+height].
func RegionBox(r region.Region, vp coords.Viewport, top, height float64) Box {
	left, right := vp.Box(r.StartTime, r.Duration)
	return Box{Left: left, Right: right, Top: top, Bottom: top + height}
}

// Mid is the horizontal midpoint.
func (b Box) Mid() float64 {
	return (b.Left + b.Right) / 2
}

// HitTest reports whether p lands on the box or within tolerance of its
// left and right edges.
func HitTest(p Point, b Box, tolerance float64) bool {
	return p.X >= b.Left-tolerance && p.X <= b.Right+tolerance &&
		p.Y >= b.Top && p.Y <= b.Bottom
}

// Classify picks the drag state for a pointer-down at p on box b. The
// checks run in a fixed precedence: split tool, alt-duplicate, edge trim
// bands, fade handles, fade tool, trim tool, command-slip, move.
func Classify(tool Tool, mods Modifier, p Point, b Box, cfg Config) State {
	if tool == ToolSplit {
		return Splitting
	}

	if tool == ToolSelect && mods.Has(ModAlt) {
		return Duplicating
	}

	if s, ok := edgeTrim(p, b, cfg.EdgeTolerancePx); ok {
		return s
	}

	if tool == ToolSelect || tool == ToolFade {
		if s, ok := fadeHandle(p, b, cfg.FadeHandlePx); ok {
			return s
		}
	}

	switch tool {
	case ToolFade:
		if p.X < b.Mid() {
			return FadingIn
		}
		return FadingOut
	case ToolTrim:
		if math.Abs(p.X-b.Left) <= math.Abs(p.X-b.Right) {
			return TrimmingLeft
		}
		return TrimmingRight
	}

	if tool == ToolSelect && mods.Command() {
		return Slipping
	}

	return Moving
}

// edgeTrim reports a trim state when p is inside an edge band. A region
// narrower than two bands resolves to the nearer edge.
func edgeTrim(p Point, b Box, tolerance float64) (State, bool) {
	dl := math.Abs(p.X - b.Left)
	dr := math.Abs(p.X - b.Right)
	switch {
	case dl <= tolerance && (dr > tolerance || dl <= dr):
		return TrimmingLeft, true
	case dr <= tolerance:
		return TrimmingRight, true
	}
	return Idle, false
}

// fadeHandle reports a fade state when p is in one of the square handles
// at the top corners of b.
func fadeHandle(p Point, b Box, size float64) (State, bool) {
	if size <= 0 || p.Y < b.Top || p.Y > b.Top+size {
		return Idle, false
	}
	switch {
	case p.X >= b.Left && p.X <= b.Left+size:
		return FadingIn, true
	case p.X <= b.Right && p.X >= b.Right-size:
		return FadingOut, true
	}
	return Idle, false
}

// Cursor is the advisory pointer shape for a hover position.
type Cursor int

const (
	CursorDefault Cursor = iota
	CursorMove
	CursorResizeLeft
	CursorResizeRight
	CursorFadeIn
	CursorFadeOut
	CursorSlip
	CursorSplit
	CursorCopy
	CursorNotAllowed
)

var cursorNames = [...]string{
	"default", "move", "w-resize", "e-resize", "fade-in", "fade-out",
	"grab", "col-resize", "copy", "not-allowed",
}

func (c Cursor) String() string {
	if c < 0 || int(c) >= len(cursorNames) {
		return "default"
	}
	return cursorNames[c]
}

// MarshalYAML renders the cursor by name.
func (c Cursor) MarshalYAML() (any, error) { return c.String(), nil }

// CursorFor returns the cursor to show while hovering p over a region box.
// It never influences classification.
func CursorFor(tool Tool, mods Modifier, p Point, b Box, locked bool, cfg Config) Cursor {
	if !HitTest(p, b, cfg.EdgeTolerancePx) {
		return CursorDefault
	}
	if locked {
		return CursorNotAllowed
	}

	switch Classify(tool, mods, p, b, cfg) {
	case Moving:
		return CursorMove
	case TrimmingLeft:
		return CursorResizeLeft
	case TrimmingRight:
		return CursorResizeRight
	case FadingIn:
		return CursorFadeIn
	case FadingOut:
		return CursorFadeOut
	case Slipping:
		return CursorSlip
	case Splitting:
		return CursorSplit
	case Duplicating:
		return CursorCopy
	default:
		return CursorDefault
	}
}
