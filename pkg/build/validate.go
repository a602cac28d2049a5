package build

import (
	"errors"
	"fmt"

	"go.uber.org/multierr"
)

var (
	// ErrUnknownInstance is reported when a child, prop or selection refers
	// to an instance id that is not in the build.
	ErrUnknownInstance = errors.New("unknown instance")

	// ErrUnknownStyleSource is reported when a selection or declaration
	// refers to a style source id that is not in the build.
	ErrUnknownStyleSource = errors.New("unknown style source")

	// ErrUnknownBreakpoint is reported when a declaration refers to a
	// breakpoint id that is not in the build.
	ErrUnknownBreakpoint = errors.New("unknown breakpoint")

	// ErrKeyMismatch is reported when an entry is stored under a key that
	// does not match its own id.
	ErrKeyMismatch = errors.New("key does not match entry id")

	// ErrMultipleParents is reported when an instance is referenced by more
	// than one parent.
	ErrMultipleParents = errors.New("instance has more than one parent")
)

// Validate checks referential integrity across all collections. Every
// violation is reported; use [multierr.Errors] to enumerate them.
func (b *Build) Validate() error {
	var err error

	// Slots share one fragment child between every slot instance, so only
	// a second non-slot parent is a violation.
	parents := map[string]*Instance{}
	for id, inst := range b.Instances {
		if inst.ID != id {
			err = multierr.Append(err, fmt.Errorf("instance %s: %w", id, ErrKeyMismatch))
		}
		for _, child := range inst.ChildIDs() {
			if _, ok := b.Instances[child]; !ok {
				err = multierr.Append(err, fmt.Errorf("instance %s child %s: %w", id, child, ErrUnknownInstance))
			}
			prev, seen := parents[child]
			if seen && prev.ID != id && (prev.Component != ComponentSlot || inst.Component != ComponentSlot) {
				err = multierr.Append(err, fmt.Errorf("instance %s: %w", child, ErrMultipleParents))
			}
			parents[child] = inst
		}
	}

	for id, p := range b.Props {
		if p.ID != id {
			err = multierr.Append(err, fmt.Errorf("prop %s: %w", id, ErrKeyMismatch))
		}
		if _, ok := b.Instances[p.InstanceID]; !ok {
			err = multierr.Append(err, fmt.Errorf("prop %s instance %s: %w", id, p.InstanceID, ErrUnknownInstance))
		}
	}

	for id, s := range b.StyleSources {
		if s.ID != id {
			err = multierr.Append(err, fmt.Errorf("style source %s: %w", id, ErrKeyMismatch))
		}
	}

	for id, sel := range b.StyleSourceSelections {
		if sel.InstanceID != id {
			err = multierr.Append(err, fmt.Errorf("selection %s: %w", id, ErrKeyMismatch))
		}
		if _, ok := b.Instances[sel.InstanceID]; !ok {
			err = multierr.Append(err, fmt.Errorf("selection instance %s: %w", sel.InstanceID, ErrUnknownInstance))
		}
		for _, sourceID := range sel.Values {
			if _, ok := b.StyleSources[sourceID]; !ok {
				err = multierr.Append(err, fmt.Errorf("selection %s source %s: %w", id, sourceID, ErrUnknownStyleSource))
			}
		}
	}

	for key, d := range b.Styles {
		if d.Key() != key {
			err = multierr.Append(err, fmt.Errorf("style %s: %w", key, ErrKeyMismatch))
		}
		if _, ok := b.StyleSources[d.StyleSourceID]; !ok {
			err = multierr.Append(err, fmt.Errorf("style %s source %s: %w", key, d.StyleSourceID, ErrUnknownStyleSource))
		}
		if _, ok := b.Breakpoints[d.BreakpointID]; !ok {
			err = multierr.Append(err, fmt.Errorf("style %s breakpoint %s: %w", key, d.BreakpointID, ErrUnknownBreakpoint))
		}
	}

	return err
}
