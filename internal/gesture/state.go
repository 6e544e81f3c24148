package gesture

// State is the drag state entered on pointer-down.
type State int

const (
	Idle State = iota
	Moving
	TrimmingLeft
	TrimmingRight
	FadingIn
	FadingOut
	Slipping
	Splitting
	Duplicating
)

var stateNames = [...]string{
	"idle", "moving", "trimming-left", "trimming-right",
	"fading-in", "fading-out", "slipping", "splitting", "duplicating",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// MarshalYAML renders the state by name.
func (s State) MarshalYAML() (any, error) { return s.String(), nil }

// Dragging reports whether pointer moves edit a region in this state.
func (s State) Dragging() bool {
	return s != Idle && s != Splitting
}
