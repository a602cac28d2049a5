package tree

import "slices"

// InstanceSelector is an instance id followed by its ancestors, innermost
// first: [target, parent, grandparent, ..., root].
type InstanceSelector []string

// Target returns the addressed instance id or "" for an empty selector.
func (s InstanceSelector) Target() string {
	if len(s) == 0 {
		return ""
	}
	return s[0]
}

// Parent returns the parent id or "" when s addresses a root.
func (s InstanceSelector) Parent() string {
	if len(s) < 2 {
		return ""
	}
	return s[1]
}

// IsRoot reports whether s addresses a root instance.
func (s InstanceSelector) IsRoot() bool { return len(s) == 1 }

// Contains reports whether id appears anywhere on the path.
func (s InstanceSelector) Contains(id string) bool { return slices.Contains(s, id) }

// Equal reports whether both selectors address the same path.
func (s InstanceSelector) Equal(o InstanceSelector) bool { return slices.Equal(s, o) }

// Child returns the selector of childID placed under s.
func (s InstanceSelector) Child(childID string) InstanceSelector {
	return append(InstanceSelector{childID}, s...)
}

// PositionEnd appends at the end of the parent's children.
const PositionEnd = -1

// DropTarget is the destination of an insertion or move.
type DropTarget struct {
	ParentSelector InstanceSelector `json:"parentSelector"`
	Position       int              `json:"position"`
}

// GetAncestorInstanceSelector returns the suffix of selector starting at
// ancestorID, or nil when ancestorID is not on the path.
func GetAncestorInstanceSelector(selector InstanceSelector, ancestorID string) InstanceSelector {
	i := slices.Index(selector, ancestorID)
	if i < 0 {
		return nil
	}
	return slices.Clone(selector[i:])
}
