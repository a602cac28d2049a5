package build

import (
	"cmp"
	"slices"
	"strings"
)

// Breakpoint is a minimum viewport width that scopes style declarations.
type Breakpoint struct {
	ID       string `json:"id"`
	Label    string `json:"label"`
	MinWidth int    `json:"minWidth"`
}

// Breakpoints is keyed by breakpoint id.
type Breakpoints map[string]*Breakpoint

// Clone returns a deep copy.
func (m Breakpoints) Clone() Breakpoints {
	out := make(Breakpoints, len(m))
	for id, bp := range m {
		c := *bp
		out[id] = &c
	}
	return out
}

// Sorted returns the breakpoints by ascending minimum width, then id.
func (m Breakpoints) Sorted() []*Breakpoint {
	out := make([]*Breakpoint, 0, len(m))
	for _, bp := range m {
		out = append(out, bp)
	}
	slices.SortFunc(out, func(a, b *Breakpoint) int {
		if c := cmp.Compare(a.MinWidth, b.MinWidth); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out
}

// Base returns the breakpoint with the smallest minimum width. It returns
// nil when there are no breakpoints.
func (m Breakpoints) Base() *Breakpoint {
	sorted := m.Sorted()
	if len(sorted) == 0 {
		return nil
	}
	return sorted[0]
}

// IsBase reports whether bp is the base breakpoint of m.
func (m Breakpoints) IsBase(bp *Breakpoint) bool {
	base := m.Base()
	return base != nil && bp != nil && base.ID == bp.ID
}

// InitialBreakpoints is the breakpoint table new projects start with.
var InitialBreakpoints = []Breakpoint{
	{Label: "Mobile", MinWidth: 360},
	{Label: "Tablet", MinWidth: 768},
	{Label: "Laptop", MinWidth: 1024},
	{Label: "Desktop", MinWidth: 1280},
}

// DefaultBreakpoints returns a fresh copy of [InitialBreakpoints] with ids
// derived from the labels.
func DefaultBreakpoints() Breakpoints {
	out := make(Breakpoints, len(InitialBreakpoints))
	for _, bp := range InitialBreakpoints {
		c := bp
		c.ID = strings.ToLower(bp.Label)
		out[c.ID] = &c
	}
	return out
}
