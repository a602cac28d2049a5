package build

import (
	"cmp"
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
)

// Document is the array-per-collection form of a [Build] used on the wire
// and in persistent storage. Arrays are sorted by id (declarations by key).
type Document struct {
	Instances             []*Instance             `json:"instances" bson:"instances"`
	Props                 []*Prop                 `json:"props" bson:"props"`
	StyleSources          []*StyleSource          `json:"styleSources" bson:"styleSources"`
	StyleSourceSelections []*StyleSourceSelection `json:"styleSourceSelections" bson:"styleSourceSelections"`
	Styles                []*StyleDecl            `json:"styles" bson:"styles"`
	Breakpoints           []*Breakpoint           `json:"breakpoints" bson:"breakpoints"`
}

func sortedValues[V any](m map[string]V) []V {
	keys := slices.Sorted(maps.Keys(m))
	out := make([]V, len(keys))
	for i, k := range keys {
		out[i] = m[k]
	}
	return out
}

// Document returns the serialisable form of b. The returned entries alias
// the build's; clone first if either side will be mutated.
func (b *Build) Document() Document {
	doc := Document{
		Instances:             sortedValues(b.Instances),
		Props:                 sortedValues(b.Props),
		StyleSources:          sortedValues(b.StyleSources),
		StyleSourceSelections: sortedValues(b.StyleSourceSelections),
		Styles:                sortedValues(b.Styles),
		Breakpoints:           sortedValues(b.Breakpoints),
	}
	slices.SortStableFunc(doc.Breakpoints, func(a, b *Breakpoint) int {
		return cmp.Compare(a.MinWidth, b.MinWidth)
	})
	return doc
}

// FromDocument indexes a document into a build. Duplicate ids are rejected.
// A document without breakpoints receives [DefaultBreakpoints].
func FromDocument(doc Document) (*Build, error) {
	b := &Build{
		Instances:             make(Instances, len(doc.Instances)),
		Props:                 make(Props, len(doc.Props)),
		StyleSources:          make(StyleSources, len(doc.StyleSources)),
		StyleSourceSelections: make(StyleSourceSelections, len(doc.StyleSourceSelections)),
		Styles:                make(Styles, len(doc.Styles)),
		Breakpoints:           make(Breakpoints, len(doc.Breakpoints)),
	}
	for _, inst := range doc.Instances {
		if err := put(b.Instances, inst.ID, inst.clone(), "instance"); err != nil {
			return nil, err
		}
	}
	for _, p := range doc.Props {
		c := *p
		if err := put(b.Props, p.ID, &c, "prop"); err != nil {
			return nil, err
		}
	}
	for _, s := range doc.StyleSources {
		c := *s
		if err := put(b.StyleSources, s.ID, &c, "style source"); err != nil {
			return nil, err
		}
	}
	for _, sel := range doc.StyleSourceSelections {
		c := &StyleSourceSelection{InstanceID: sel.InstanceID, Values: slices.Clone(sel.Values)}
		if err := put(b.StyleSourceSelections, sel.InstanceID, c, "selection"); err != nil {
			return nil, err
		}
	}
	for _, d := range doc.Styles {
		c := *d
		if err := put(b.Styles, d.Key(), &c, "style"); err != nil {
			return nil, err
		}
	}
	for _, bp := range doc.Breakpoints {
		c := *bp
		if err := put(b.Breakpoints, bp.ID, &c, "breakpoint"); err != nil {
			return nil, err
		}
	}
	if len(b.Breakpoints) == 0 {
		b.Breakpoints = DefaultBreakpoints()
	}
	return b, nil
}

func put[V any](m map[string]V, key string, v V, kind string) error {
	if key == "" {
		return fmt.Errorf("%s: empty id", kind)
	}
	if _, exists := m[key]; exists {
		return fmt.Errorf("%s %s: duplicate id", kind, key)
	}
	m[key] = v
	return nil
}

// MarshalJSON encodes the build as a [Document].
func (b *Build) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.Document())
}

// UnmarshalJSON decodes a [Document] into the build.
func (b *Build) UnmarshalJSON(data []byte) error {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	decoded, err := FromDocument(doc)
	if err != nil {
		return err
	}
	*b = *decoded
	return nil
}

// ReadJSON decodes a build from r. It does not validate references; call
// [Build.Validate] for that. ReadJSON does not close r.
func ReadJSON(r io.Reader) (*Build, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return FromDocument(doc)
}

// WriteJSON encodes b as indented JSON to w.
func WriteJSON(b *Build, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(b.Document()); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ImportJSON reads the build stored at path.
func ImportJSON(path string) (*Build, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadJSON(f)
}

// ExportJSON writes b to path, replacing any existing file.
func ExportJSON(b *Build, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteJSON(b, f)
}
