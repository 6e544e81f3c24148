// Package gesture implements the pointer tool state machine that turns
// pointer-down/move/up events over a region into region edits.
//
// A Gesture is a plain value owned by the caller and threaded through
// Begin, Move, End and Cancel. Controller wraps one Gesture for hosts that
// want single-gesture enforcement, logging and metrics.
package gesture

import (
	"strings"

	"github.com/tphakala/regionedit/internal/errors"
)

// Tool is the active cursor tool reported by the host UI.
type Tool int

const (
	ToolSelect Tool = iota
	ToolRange
	ToolSplit
	ToolTrim
	ToolFade
	ToolPencil
	ToolZoom
	ToolMulti
)

var toolNames = [...]string{"select", "range", "split", "trim", "fade", "pencil", "zoom", "multi"}

func (t Tool) String() string {
	if t < 0 || int(t) >= len(toolNames) {
		return "unknown"
	}
	return toolNames[t]
}

// ParseTool maps a tool name to a Tool.
func ParseTool(s string) (Tool, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for i, n := range toolNames {
		if n == name {
			return Tool(i), nil
		}
	}
	return ToolSelect, errors.Newf("unknown tool %q", s).
		Component("gesture").
		Category(errors.CategoryValidation).
		Context("tool", s).
		Build()
}

// Modifier is the set of held modifier keys.
type Modifier uint8

const (
	ModShift Modifier = 1 << iota
	ModCtrl
	ModAlt
	ModMeta

	ModNone Modifier = 0
)

// Has reports whether every key in mod is held.
func (m Modifier) Has(mod Modifier) bool {
	return m&mod == mod
}

// Command reports whether the platform command key is held: Ctrl or Meta.
func (m Modifier) Command() bool {
	return m&(ModCtrl|ModMeta) != 0
}

func (m Modifier) String() string {
	if m == ModNone {
		return "none"
	}
	var parts []string
	for _, k := range []struct {
		mod  Modifier
		name string
	}{{ModShift, "shift"}, {ModCtrl, "ctrl"}, {ModAlt, "alt"}, {ModMeta, "meta"}} {
		if m.Has(k.mod) {
			parts = append(parts, k.name)
		}
	}
	return strings.Join(parts, "+")
}

// ParseModifiers parses a "+" or "," separated list such as "alt+shift".
func ParseModifiers(s string) (Modifier, error) {
	var m Modifier
	for part := range strings.FieldsFuncSeq(strings.ToLower(s), func(r rune) bool { return r == '+' || r == ',' }) {
		switch strings.TrimSpace(part) {
		case "", "none":
		case "shift":
			m |= ModShift
		case "ctrl", "control":
			m |= ModCtrl
		case "alt", "option":
			m |= ModAlt
		case "meta", "cmd", "command":
			m |= ModMeta
		default:
			return ModNone, errors.Newf("unknown modifier %q", part).
				Component("gesture").
				Category(errors.CategoryValidation).
				Context("modifiers", s).
				Build()
		}
	}
	return m, nil
}
