package build

import (
	"maps"
	"slices"

	"github.com/google/uuid"

	"github.com/matzehuels/studio/pkg/css"
)

// Component names with structural meaning.
const (
	ComponentFragment = "Fragment"
	ComponentSlot     = "Slot"
	ComponentBody     = "Body"
)

// ChildType discriminates the entries of [Instance.Children].
type ChildType string

const (
	ChildID         ChildType = "id"
	ChildText       ChildType = "text"
	ChildExpression ChildType = "expression"
)

// InstanceChild is either a reference to a nested instance or inline content.
type InstanceChild struct {
	Type  ChildType `json:"type"`
	Value string    `json:"value"`
}

// IDChild returns a child referencing the instance with the given id.
func IDChild(id string) InstanceChild { return InstanceChild{Type: ChildID, Value: id} }

// TextChild returns an inline text child.
func TextChild(text string) InstanceChild { return InstanceChild{Type: ChildText, Value: text} }

// Instance is one node of the component tree.
type Instance struct {
	ID        string          `json:"id"`
	Component string          `json:"component"`
	Label     string          `json:"label,omitempty"`
	Children  []InstanceChild `json:"children"`
}

// ChildIDs returns the ids of the nested instances in child order.
func (i *Instance) ChildIDs() []string {
	var out []string
	for _, c := range i.Children {
		if c.Type == ChildID {
			out = append(out, c.Value)
		}
	}
	return out
}

// ChildIndex returns the position of the child referencing id, or -1.
func (i *Instance) ChildIndex(id string) int {
	return slices.IndexFunc(i.Children, func(c InstanceChild) bool {
		return c.Type == ChildID && c.Value == id
	})
}

func (i *Instance) clone() *Instance {
	c := *i
	c.Children = slices.Clone(i.Children)
	if c.Children == nil {
		c.Children = []InstanceChild{}
	}
	return &c
}

// PropType names the kind of value a [Prop] holds.
type PropType string

const (
	PropString      PropType = "string"
	PropNumber      PropType = "number"
	PropBoolean     PropType = "boolean"
	PropStringArray PropType = "string[]"
	PropAsset       PropType = "asset"
	PropPage        PropType = "page"
)

// Prop is a named value attached to an instance.
type Prop struct {
	ID         string   `json:"id"`
	InstanceID string   `json:"instanceId"`
	Name       string   `json:"name"`
	Type       PropType `json:"type"`
	Value      any      `json:"value"`
}

// StyleSourceType distinguishes per-instance sources from shared tokens.
type StyleSourceType string

const (
	StyleSourceLocal StyleSourceType = "local"
	StyleSourceToken StyleSourceType = "token"
)

// StyleSource is a bundle of declarations. Local sources belong to exactly one
// instance; tokens may be selected by many.
type StyleSource struct {
	ID   string          `json:"id"`
	Type StyleSourceType `json:"type"`
	Name string          `json:"name,omitempty"`
}

// StyleSourceSelection lists, in order, the sources applied to an instance.
type StyleSourceSelection struct {
	InstanceID string   `json:"instanceId"`
	Values     []string `json:"values"`
}

// StyleDecl is one property value of a style source on a breakpoint.
type StyleDecl struct {
	StyleSourceID string         `json:"styleSourceId"`
	BreakpointID  string         `json:"breakpointId"`
	State         string         `json:"state,omitempty"`
	Property      string         `json:"property"`
	Value         css.StyleValue `json:"value"`
}

// Key returns the identity of the declaration within [Styles].
func (d *StyleDecl) Key() string {
	return StyleDeclKey(d.StyleSourceID, d.BreakpointID, d.Property, d.State)
}

// StyleDeclKey composes the key a declaration is stored under.
func StyleDeclKey(styleSourceID, breakpointID, property, state string) string {
	return styleSourceID + ":" + breakpointID + ":" + property + ":" + state
}

// Collections keyed by id (or declaration key for Styles).
type (
	Instances             map[string]*Instance
	Props                 map[string]*Prop
	StyleSources          map[string]*StyleSource
	StyleSourceSelections map[string]*StyleSourceSelection
	Styles                map[string]*StyleDecl
)

// Clone returns a deep copy.
func (m Instances) Clone() Instances {
	out := make(Instances, len(m))
	for id, inst := range m {
		out[id] = inst.clone()
	}
	return out
}

// Clone returns a deep copy. Prop values are treated as immutable.
func (m Props) Clone() Props {
	out := make(Props, len(m))
	for id, p := range m {
		c := *p
		out[id] = &c
	}
	return out
}

// Clone returns a deep copy.
func (m StyleSources) Clone() StyleSources {
	out := make(StyleSources, len(m))
	for id, s := range m {
		c := *s
		out[id] = &c
	}
	return out
}

// Clone returns a deep copy.
func (m StyleSourceSelections) Clone() StyleSourceSelections {
	out := make(StyleSourceSelections, len(m))
	for id, s := range m {
		out[id] = &StyleSourceSelection{InstanceID: s.InstanceID, Values: slices.Clone(s.Values)}
	}
	return out
}

// Clone returns a deep copy.
func (m Styles) Clone() Styles {
	out := make(Styles, len(m))
	for k, d := range m {
		c := *d
		out[k] = &c
	}
	return out
}

// Build is the complete editable document of a project.
type Build struct {
	Instances             Instances
	Props                 Props
	StyleSources          StyleSources
	StyleSourceSelections StyleSourceSelections
	Styles                Styles
	Breakpoints           Breakpoints
}

// New returns an empty build with the default breakpoints.
func New() *Build {
	return &Build{
		Instances:             Instances{},
		Props:                 Props{},
		StyleSources:          StyleSources{},
		StyleSourceSelections: StyleSourceSelections{},
		Styles:                Styles{},
		Breakpoints:           DefaultBreakpoints(),
	}
}

// NewWithRoot returns a build holding a single root instance.
func NewWithRoot(rootID, component string) *Build {
	b := New()
	b.Instances[rootID] = &Instance{ID: rootID, Component: component, Children: []InstanceChild{}}
	return b
}

// Clone returns a deep copy of every collection.
func (b *Build) Clone() *Build {
	return &Build{
		Instances:             b.Instances.Clone(),
		Props:                 b.Props.Clone(),
		StyleSources:          b.StyleSources.Clone(),
		StyleSourceSelections: b.StyleSourceSelections.Clone(),
		Styles:                b.Styles.Clone(),
		Breakpoints:           b.Breakpoints.Clone(),
	}
}

// Roots returns the ids of instances no other instance references, sorted.
func (b *Build) Roots() []string {
	referenced := IDSet{}
	for _, inst := range b.Instances {
		for _, id := range inst.ChildIDs() {
			referenced.Add(id)
		}
	}
	var roots []string
	for id := range b.Instances {
		if !referenced.Has(id) {
			roots = append(roots, id)
		}
	}
	slices.Sort(roots)
	return roots
}

// Stats summarises collection sizes.
type Stats struct {
	Instances    int `json:"instances"`
	Props        int `json:"props"`
	StyleSources int `json:"styleSources"`
	Selections   int `json:"styleSourceSelections"`
	Styles       int `json:"styles"`
	Breakpoints  int `json:"breakpoints"`
}

// Stats returns the number of entries in each collection.
func (b *Build) Stats() Stats {
	return Stats{
		Instances:    len(b.Instances),
		Props:        len(b.Props),
		StyleSources: len(b.StyleSources),
		Selections:   len(b.StyleSourceSelections),
		Styles:       len(b.Styles),
		Breakpoints:  len(b.Breakpoints),
	}
}

// IDSet is a set of entity ids.
type IDSet map[string]struct{}

// NewIDSet returns a set holding ids.
func NewIDSet(ids ...string) IDSet {
	s := make(IDSet, len(ids))
	for _, id := range ids {
		s.Add(id)
	}
	return s
}

// Add inserts id and reports whether it was new.
func (s IDSet) Add(id string) bool {
	if _, ok := s[id]; ok {
		return false
	}
	s[id] = struct{}{}
	return true
}

// Has reports whether id is in the set.
func (s IDSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// Sorted returns the ids in ascending order.
func (s IDSet) Sorted() []string {
	return slices.Sorted(maps.Keys(s))
}

// NewID returns a fresh collision-free entity id.
func NewID() string {
	return uuid.NewString()
}
