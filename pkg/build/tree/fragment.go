package tree

import (
	"fmt"
	"maps"
	"slices"

	"go.uber.org/multierr"

	"github.com/matzehuels/studio/pkg/build"
)

// Fragment is a detached subtree with its side-table entries, as produced by
// copy or by creating a new component. Instances[0] is the subtree root.
type Fragment struct {
	Instances             []*build.Instance             `json:"instances"`
	Props                 []*build.Prop                 `json:"props"`
	StyleSourceSelections []*build.StyleSourceSelection `json:"styleSourceSelections"`
	StyleSources          []*build.StyleSource          `json:"styleSources"`
	Styles                []*build.StyleDecl            `json:"styles"`
}

// RootID returns the id of the fragment root or "" for an empty fragment.
func (f Fragment) RootID() string {
	if len(f.Instances) == 0 {
		return ""
	}
	return f.Instances[0].ID
}

// Remap records the fresh ids assigned by [CopyFragment], keyed by old id.
type Remap struct {
	Instances    map[string]string
	Props        map[string]string
	StyleSources map[string]string
}

func (r Remap) instance(id string) string {
	if n, ok := r.Instances[id]; ok {
		return n
	}
	return id
}

func (r Remap) styleSource(id string) string {
	if n, ok := r.StyleSources[id]; ok {
		return n
	}
	return id
}

// CopyFragment returns a copy of f in which every instance, prop and local
// style source has a fresh id. Tokens keep their ids so that the copy keeps
// sharing them. Child order, selection order and declaration properties are
// preserved; references to ids outside f are left as they are.
func CopyFragment(f Fragment) (Fragment, Remap) {
	remap := Remap{
		Instances:    make(map[string]string, len(f.Instances)),
		Props:        make(map[string]string, len(f.Props)),
		StyleSources: map[string]string{},
	}
	for _, inst := range f.Instances {
		remap.Instances[inst.ID] = build.NewID()
	}
	for _, s := range f.StyleSources {
		if s.Type == build.StyleSourceLocal {
			remap.StyleSources[s.ID] = build.NewID()
		}
	}

	var out Fragment
	for _, inst := range f.Instances {
		children := make([]build.InstanceChild, len(inst.Children))
		for i, c := range inst.Children {
			if c.Type == build.ChildID {
				c.Value = remap.instance(c.Value)
			}
			children[i] = c
		}
		out.Instances = append(out.Instances, &build.Instance{
			ID:        remap.Instances[inst.ID],
			Component: inst.Component,
			Label:     inst.Label,
			Children:  children,
		})
	}
	for _, p := range f.Props {
		c := *p
		c.ID = build.NewID()
		c.InstanceID = remap.instance(p.InstanceID)
		remap.Props[p.ID] = c.ID
		out.Props = append(out.Props, &c)
	}
	for _, s := range f.StyleSources {
		c := *s
		c.ID = remap.styleSource(s.ID)
		out.StyleSources = append(out.StyleSources, &c)
	}
	for _, sel := range f.StyleSourceSelections {
		values := make([]string, len(sel.Values))
		for i, v := range sel.Values {
			values[i] = remap.styleSource(v)
		}
		out.StyleSourceSelections = append(out.StyleSourceSelections, &build.StyleSourceSelection{
			InstanceID: remap.instance(sel.InstanceID),
			Values:     values,
		})
	}
	for _, d := range f.Styles {
		c := *d
		c.StyleSourceID = remap.styleSource(d.StyleSourceID)
		out.Styles = append(out.Styles, &c)
	}
	return out, remap
}

// ExtractFragment copies the subtree rooted at rootID, including slot
// content, with every entry that depends on it. Tokens selected inside the
// subtree are included together with their declarations so the fragment is
// self-contained. It reports false when rootID is unknown.
func ExtractFragment(b *build.Build, rootID string) (Fragment, bool) {
	if _, ok := b.Instances[rootID]; !ok {
		return Fragment{}, false
	}
	ids := FindTreeInstanceIDs(b.Instances, rootID)

	var f Fragment
	f.Instances = append(f.Instances, b.Instances[rootID])
	for _, id := range ids.Sorted() {
		if id != rootID {
			if inst, ok := b.Instances[id]; ok {
				f.Instances = append(f.Instances, inst)
			}
		}
	}
	for _, id := range slices.Sorted(maps.Keys(b.Props)) {
		if p := b.Props[id]; ids.Has(p.InstanceID) {
			f.Props = append(f.Props, p)
		}
	}
	sources := build.IDSet{}
	for _, id := range ids.Sorted() {
		sel, ok := b.StyleSourceSelections[id]
		if !ok {
			continue
		}
		f.StyleSourceSelections = append(f.StyleSourceSelections, sel)
		for _, v := range sel.Values {
			if _, ok := b.StyleSources[v]; ok && sources.Add(v) {
				f.StyleSources = append(f.StyleSources, b.StyleSources[v])
			}
		}
	}
	for _, key := range slices.Sorted(maps.Keys(b.Styles)) {
		if d := b.Styles[key]; sources.Has(d.StyleSourceID) {
			f.Styles = append(f.Styles, d)
		}
	}

	// Entries alias b; hand out a detached copy with the same ids.
	return cloneFragment(f), true
}

func cloneFragment(f Fragment) Fragment {
	var out Fragment
	for _, inst := range f.Instances {
		c := *inst
		c.Children = slices.Clone(inst.Children)
		out.Instances = append(out.Instances, &c)
	}
	for _, p := range f.Props {
		c := *p
		out.Props = append(out.Props, &c)
	}
	for _, sel := range f.StyleSourceSelections {
		out.StyleSourceSelections = append(out.StyleSourceSelections, &build.StyleSourceSelection{
			InstanceID: sel.InstanceID,
			Values:     slices.Clone(sel.Values),
		})
	}
	for _, s := range f.StyleSources {
		c := *s
		out.StyleSources = append(out.StyleSources, &c)
	}
	for _, d := range f.Styles {
		c := *d
		out.Styles = append(out.Styles, &c)
	}
	return out
}

// insertChildren splices children into parent at position. Positions past
// the end, and [PositionEnd], append.
func insertChildren(parent *build.Instance, position int, children ...build.InstanceChild) {
	if position < 0 || position > len(parent.Children) {
		parent.Children = append(parent.Children, children...)
		return
	}
	parent.Children = slices.Insert(parent.Children, position, children...)
}

// CheckFragment reports every reference in f that would dangle once f is
// inserted into b. Children, props and selections must name instances of f.
// Style sources must be part of f or be tokens already in b, and breakpoints
// must exist in b.
func CheckFragment(b *build.Build, f Fragment) error {
	var err error
	instances := build.IDSet{}
	for _, inst := range f.Instances {
		instances.Add(inst.ID)
	}
	sources := build.IDSet{}
	for _, s := range f.StyleSources {
		sources.Add(s.ID)
	}
	resolvesSource := func(id string) bool {
		if sources.Has(id) {
			return true
		}
		s, ok := b.StyleSources[id]
		return ok && s.Type == build.StyleSourceToken
	}

	for _, inst := range f.Instances {
		for _, child := range inst.ChildIDs() {
			if !instances.Has(child) {
				err = multierr.Append(err, fmt.Errorf("instance %s child %s: %w", inst.ID, child, build.ErrUnknownInstance))
			}
		}
	}
	for _, p := range f.Props {
		if !instances.Has(p.InstanceID) {
			err = multierr.Append(err, fmt.Errorf("prop %s instance %s: %w", p.ID, p.InstanceID, build.ErrUnknownInstance))
		}
	}
	for _, sel := range f.StyleSourceSelections {
		if !instances.Has(sel.InstanceID) {
			err = multierr.Append(err, fmt.Errorf("selection instance %s: %w", sel.InstanceID, build.ErrUnknownInstance))
		}
		for _, v := range sel.Values {
			if !resolvesSource(v) {
				err = multierr.Append(err, fmt.Errorf("selection %s source %s: %w", sel.InstanceID, v, build.ErrUnknownStyleSource))
			}
		}
	}
	for _, d := range f.Styles {
		if !resolvesSource(d.StyleSourceID) {
			err = multierr.Append(err, fmt.Errorf("style %s source %s: %w", d.Key(), d.StyleSourceID, build.ErrUnknownStyleSource))
		}
		if _, ok := b.Breakpoints[d.BreakpointID]; !ok {
			err = multierr.Append(err, fmt.Errorf("style %s breakpoint %s: %w", d.Key(), d.BreakpointID, build.ErrUnknownBreakpoint))
		}
	}
	return err
}

// InsertFragmentMutable inserts a fresh-id copy of f under the drop target
// and returns the id of the inserted root. Token style sources are added only
// when missing. It reports false, leaving b untouched, when f is empty, when
// [CheckFragment] rejects it or when the drop target parent does not exist.
func InsertFragmentMutable(b *build.Build, f Fragment, target DropTarget) (string, bool) {
	parent, ok := b.Instances[target.ParentSelector.Target()]
	if !ok || len(f.Instances) == 0 || CheckFragment(b, f) != nil {
		return "", false
	}

	copied, _ := CopyFragment(f)
	for _, inst := range copied.Instances {
		b.Instances[inst.ID] = inst
	}
	rootID := copied.RootID()
	insertChildren(parent, target.Position, build.IDChild(rootID))

	for _, p := range copied.Props {
		b.Props[p.ID] = p
	}
	for _, s := range copied.StyleSources {
		if s.Type == build.StyleSourceToken {
			if _, exists := b.StyleSources[s.ID]; exists {
				continue
			}
		}
		b.StyleSources[s.ID] = s
	}
	for _, sel := range copied.StyleSourceSelections {
		b.StyleSourceSelections[sel.InstanceID] = sel
	}
	for _, d := range copied.Styles {
		// Local sources are fresh, so only existing token declarations collide
		// and those keep their current value.
		if _, exists := b.Styles[d.Key()]; exists {
			continue
		}
		b.Styles[d.Key()] = d
	}
	return rootID, true
}
