package tree

import (
	"maps"
	"slices"

	"github.com/matzehuels/studio/pkg/build"
	"github.com/matzehuels/studio/pkg/css"
)

// PropDefault is a prop created with every new instance of a component.
type PropDefault struct {
	Name  string         `json:"name" toml:"name"`
	Type  build.PropType `json:"type" toml:"type"`
	Value any            `json:"value" toml:"value"`
}

// ComponentMeta describes what a freshly created component instance holds.
type ComponentMeta struct {
	Label       string                    `json:"label"`
	PresetStyle map[string]css.StyleValue `json:"presetStyle,omitempty"`
	Children    []build.InstanceChild     `json:"children,omitempty"`
	Props       []PropDefault             `json:"props,omitempty"`
}

// Metas maps component names to their meta.
type Metas map[string]ComponentMeta

// Names returns the registered component names, sorted.
func (m Metas) Names() []string {
	return slices.Sorted(maps.Keys(m))
}

// DefaultMetas returns the built-in component registry.
func DefaultMetas() Metas {
	return Metas{
		build.ComponentBody: {
			Label:       "Body",
			PresetStyle: map[string]css.StyleValue{"min-height": css.UnitValue(100, css.UnitPercent)},
		},
		"Box": {
			Label:       "Box",
			PresetStyle: map[string]css.StyleValue{"display": css.KeywordValue("block")},
		},
		"Heading": {
			Label:    "Heading",
			Children: []build.InstanceChild{build.TextChild("Heading you can edit")},
			Props:    []PropDefault{{Name: "tag", Type: build.PropString, Value: "h1"}},
		},
		"Paragraph": {
			Label:    "Paragraph",
			Children: []build.InstanceChild{build.TextChild("Pellentesque habitant morbi tristique senectus.")},
		},
		"Text": {
			Label:    "Text",
			Children: []build.InstanceChild{build.TextChild("The text you can edit")},
		},
		"Link": {
			Label:    "Link",
			Children: []build.InstanceChild{build.TextChild("Link text you can edit")},
			Props:    []PropDefault{{Name: "href", Type: build.PropString, Value: ""}},
		},
		"Button": {
			Label:    "Button",
			Children: []build.InstanceChild{build.TextChild("Button you can edit")},
			Props:    []PropDefault{{Name: "type", Type: build.PropString, Value: "submit"}},
		},
		"Image": {
			Label: "Image",
			PresetStyle: map[string]css.StyleValue{
				"max-width": css.UnitValue(100, css.UnitPercent),
				"height":    css.KeywordValue("auto"),
			},
			Props: []PropDefault{
				{Name: "src", Type: build.PropString, Value: ""},
				{Name: "alt", Type: build.PropString, Value: ""},
			},
		},
		build.ComponentSlot:     {Label: "Slot"},
		build.ComponentFragment: {Label: "Fragment"},
	}
}

// CreateComponentInstance builds the fragment for one new instance of
// component. Preset styles become declarations of a new local style source on
// baseBreakpointID. Unknown components produce a bare instance.
func CreateComponentInstance(component, baseBreakpointID string, metas Metas) Fragment {
	meta := metas[component]
	instanceID := build.NewID()

	f := Fragment{
		Instances: []*build.Instance{{
			ID:        instanceID,
			Component: component,
			Children:  append([]build.InstanceChild{}, meta.Children...),
		}},
	}

	for _, p := range meta.Props {
		f.Props = append(f.Props, &build.Prop{
			ID:         build.NewID(),
			InstanceID: instanceID,
			Name:       p.Name,
			Type:       p.Type,
			Value:      p.Value,
		})
	}

	if len(meta.PresetStyle) > 0 && baseBreakpointID != "" {
		sourceID := build.NewID()
		f.StyleSources = append(f.StyleSources, &build.StyleSource{ID: sourceID, Type: build.StyleSourceLocal})
		f.StyleSourceSelections = append(f.StyleSourceSelections, &build.StyleSourceSelection{
			InstanceID: instanceID,
			Values:     []string{sourceID},
		})
		for _, property := range slices.Sorted(maps.Keys(meta.PresetStyle)) {
			f.Styles = append(f.Styles, &build.StyleDecl{
				StyleSourceID: sourceID,
				BreakpointID:  baseBreakpointID,
				Property:      property,
				Value:         meta.PresetStyle[property],
			})
		}
	}
	return f
}
