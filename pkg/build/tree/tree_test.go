package tree

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/studio/pkg/build"
	"github.com/matzehuels/studio/pkg/css"
)

// fixture builds:
//
//	root (Body)
//	├── box (Box) [text, inner (Box)]
//	├── frag (Fragment) [only (Box)]
//	└── slot (Slot) [slotFrag (Fragment) [slotChild (Box)]]
func fixture() *build.Build {
	b := build.NewWithRoot("root", build.ComponentBody)
	add := func(id, component string, children ...build.InstanceChild) {
		if children == nil {
			children = []build.InstanceChild{}
		}
		b.Instances[id] = &build.Instance{ID: id, Component: component, Children: children}
	}
	b.Instances["root"].Children = []build.InstanceChild{build.IDChild("box"), build.IDChild("frag"), build.IDChild("slot")}
	add("box", "Box", build.TextChild("hi"), build.IDChild("inner"))
	add("inner", "Box")
	add("frag", build.ComponentFragment, build.IDChild("only"))
	add("only", "Box")
	add("slot", build.ComponentSlot, build.IDChild("slotFrag"))
	add("slotFrag", build.ComponentFragment, build.IDChild("slotChild"))
	add("slotChild", "Box")

	for _, p := range []*build.Prop{
		{ID: "p-root", InstanceID: "root", Name: "lang", Type: build.PropString, Value: "en"},
		{ID: "p-box", InstanceID: "box", Name: "id", Type: build.PropString, Value: "main"},
		{ID: "p-inner", InstanceID: "inner", Name: "title", Type: build.PropString, Value: "x"},
		{ID: "p-slotChild", InstanceID: "slotChild", Name: "title", Type: build.PropString, Value: "y"},
	} {
		b.Props[p.ID] = p
	}

	for _, s := range []*build.StyleSource{
		{ID: "local-box", Type: build.StyleSourceLocal},
		{ID: "local-inner", Type: build.StyleSourceLocal},
		{ID: "local-only", Type: build.StyleSourceLocal},
		{ID: "local-shared", Type: build.StyleSourceLocal},
		{ID: "token", Type: build.StyleSourceToken, Name: "Primary"},
	} {
		b.StyleSources[s.ID] = s
	}

	sel := func(instanceID string, values ...string) {
		b.StyleSourceSelections[instanceID] = &build.StyleSourceSelection{InstanceID: instanceID, Values: values}
	}
	sel("root", "token", "local-shared")
	sel("box", "local-box", "token")
	sel("inner", "local-inner", "local-shared")
	sel("only", "local-only")

	for _, source := range []string{"local-box", "local-inner", "local-only", "local-shared", "token"} {
		d := &build.StyleDecl{StyleSourceID: source, BreakpointID: "mobile", Property: "color", Value: css.KeywordValue("red")}
		b.Styles[d.Key()] = d
	}
	return b
}

func mustValidate(t *testing.T, b *build.Build) {
	t.Helper()
	if err := b.Validate(); err != nil {
		t.Fatalf("Validate() = %v", err)
	}
}

func TestFindTreeInstanceIDs(t *testing.T) {
	b := fixture()

	all := FindTreeInstanceIDs(b.Instances, "root")
	if len(all) != len(b.Instances) {
		t.Errorf("FindTreeInstanceIDs(root) = %d ids, want %d", len(all), len(b.Instances))
	}

	excl := FindTreeInstanceIDsExcludingSlotDescendants(b.Instances, "root")
	if !excl.Has("slot") {
		t.Error("slot itself should be included")
	}
	if excl.Has("slotFrag") || excl.Has("slotChild") {
		t.Errorf("slot content should be excluded, got %v", excl.Sorted())
	}
}

func TestFindSubtreeLocalStyleSources(t *testing.T) {
	b := fixture()
	subtree := FindTreeInstanceIDs(b.Instances, "box")
	got := FindSubtreeLocalStyleSources(subtree, b.StyleSources, b.StyleSourceSelections)
	if diff := cmp.Diff([]string{"local-box", "local-inner"}, got.Sorted()); diff != "" {
		t.Errorf("local sources mismatch (-want +got):\n%s", diff)
	}
}

func TestDeleteInstanceCascade(t *testing.T) {
	b := fixture()
	res, ok := DeleteInstanceMutable(b, InstanceSelector{"box", "root"})
	if !ok {
		t.Fatal("DeleteInstanceMutable returned false")
	}
	mustValidate(t, b)

	if res.TargetID != "box" || res.ParentID != "root" || res.Collapsed {
		t.Errorf("result = %+v", res)
	}
	for _, id := range []string{"box", "inner"} {
		if _, ok := b.Instances[id]; ok {
			t.Errorf("instance %s should be deleted", id)
		}
		if _, ok := b.StyleSourceSelections[id]; ok {
			t.Errorf("selection %s should be deleted", id)
		}
	}
	for _, id := range []string{"p-box", "p-inner"} {
		if _, ok := b.Props[id]; ok {
			t.Errorf("prop %s should be deleted", id)
		}
	}
	for _, id := range []string{"local-box", "local-inner"} {
		if _, ok := b.StyleSources[id]; ok {
			t.Errorf("style source %s should be deleted", id)
		}
	}
	// Still referenced from outside the subtree.
	for _, id := range []string{"token", "local-shared", "local-only"} {
		if _, ok := b.StyleSources[id]; !ok {
			t.Errorf("style source %s should be kept", id)
		}
	}
	if got := len(b.Styles); got != 3 {
		t.Errorf("styles = %d, want 3", got)
	}
	if _, ok := b.Props["p-root"]; !ok {
		t.Error("p-root should be kept")
	}
	want := []build.InstanceChild{build.IDChild("frag"), build.IDChild("slot")}
	if diff := cmp.Diff(want, b.Instances["root"].Children); diff != "" {
		t.Errorf("root children mismatch (-want +got):\n%s", diff)
	}
}

func TestDeleteCollapsesSingleChildFragment(t *testing.T) {
	b := fixture()
	res, ok := DeleteInstanceMutable(b, InstanceSelector{"only", "frag", "root"})
	if !ok {
		t.Fatal("DeleteInstanceMutable returned false")
	}
	mustValidate(t, b)

	if !res.Collapsed || res.TargetID != "frag" || res.ParentID != "root" {
		t.Errorf("result = %+v, want collapsed frag under root", res)
	}
	if _, ok := b.Instances["frag"]; ok {
		t.Error("fragment should be removed")
	}
	if _, ok := b.StyleSources["local-only"]; ok {
		t.Error("local-only should be removed")
	}
	if b.Instances["root"].ChildIndex("frag") >= 0 {
		t.Error("root still references fragment")
	}
}

func TestDeleteRootIsNoop(t *testing.T) {
	b := fixture()
	before := b.Clone().Document()
	if _, ok := DeleteInstanceMutable(b, InstanceSelector{"root"}); ok {
		t.Error("deleting root should report false")
	}
	if diff := cmp.Diff(before, b.Document()); diff != "" {
		t.Errorf("build changed (-want +got):\n%s", diff)
	}
}

func TestDeleteStaleSelectorIsNoop(t *testing.T) {
	b := fixture()
	before := b.Clone().Document()
	if _, ok := DeleteInstanceMutable(b, InstanceSelector{"inner", "root"}); ok {
		t.Error("deleting with wrong parent should report false")
	}
	if diff := cmp.Diff(before, b.Document()); diff != "" {
		t.Errorf("build changed (-want +got):\n%s", diff)
	}
}

func TestDeleteSlotKeepsSharedContent(t *testing.T) {
	b := fixture()
	if _, ok := DeleteInstanceMutable(b, InstanceSelector{"slot", "root"}); !ok {
		t.Fatal("DeleteInstanceMutable returned false")
	}
	for _, id := range []string{"slotFrag", "slotChild"} {
		if _, ok := b.Instances[id]; !ok {
			t.Errorf("slot content %s should survive", id)
		}
	}
	if _, ok := b.Props["p-slotChild"]; !ok {
		t.Error("slot content props should survive")
	}
}

func TestInsertNewComponent(t *testing.T) {
	b := fixture()
	f := CreateComponentInstance("Image", "mobile", DefaultMetas())
	rootID, ok := InsertFragmentMutable(b, f, DropTarget{ParentSelector: InstanceSelector{"root"}, Position: 1})
	if !ok {
		t.Fatal("InsertFragmentMutable returned false")
	}
	mustValidate(t, b)

	if got := b.Instances["root"].Children[1]; got != build.IDChild(rootID) {
		t.Errorf("child at 1 = %v, want %s", got, rootID)
	}
	if b.Instances[rootID].Component != "Image" {
		t.Errorf("component = %s, want Image", b.Instances[rootID].Component)
	}
	sel, ok := b.StyleSourceSelections[rootID]
	if !ok || len(sel.Values) != 1 {
		t.Fatalf("selection = %+v", sel)
	}
	if b.StyleSources[sel.Values[0]].Type != build.StyleSourceLocal {
		t.Error("preset style source should be local")
	}
	props := 0
	for _, p := range b.Props {
		if p.InstanceID == rootID {
			props++
		}
	}
	if props != 2 {
		t.Errorf("props on new instance = %d, want 2", props)
	}
}

func TestInsertCopyAssignsFreshIDs(t *testing.T) {
	b := fixture()
	f, ok := ExtractFragment(b, "box")
	if !ok {
		t.Fatal("ExtractFragment returned false")
	}
	before := b.Clone()

	rootID, ok := InsertFragmentMutable(b, f, DropTarget{ParentSelector: InstanceSelector{"root"}, Position: PositionEnd})
	if !ok {
		t.Fatal("InsertFragmentMutable returned false")
	}
	mustValidate(t, b)

	if _, clash := before.Instances[rootID]; clash {
		t.Fatal("inserted root reuses an existing id")
	}
	if got, want := len(b.Instances), len(before.Instances)+2; got != want {
		t.Errorf("instances = %d, want %d", got, want)
	}
	if got, want := len(b.Props), len(before.Props)+2; got != want {
		t.Errorf("props = %d, want %d", got, want)
	}
	// local-box, local-inner, local-shared are copied; token is shared.
	if got, want := len(b.StyleSources), len(before.StyleSources)+3; got != want {
		t.Errorf("style sources = %d, want %d", got, want)
	}
	if got, want := len(b.Styles), len(before.Styles)+3; got != want {
		t.Errorf("styles = %d, want %d", got, want)
	}
	for id := range b.Props {
		if _, existed := before.Props[id]; existed && b.Props[id].InstanceID != before.Props[id].InstanceID {
			t.Errorf("existing prop %s was rewritten", id)
		}
	}

	copied := b.Instances[rootID]
	if len(copied.Children) != 2 || copied.Children[0] != build.TextChild("hi") {
		t.Fatalf("copied children = %v", copied.Children)
	}
	innerCopy := copied.Children[1].Value
	if innerCopy == "inner" {
		t.Error("nested instance was not remapped")
	}
	sel := b.StyleSourceSelections[rootID]
	if sel.Values[1] != "token" {
		t.Errorf("token reference = %s, want token", sel.Values[1])
	}
	if sel.Values[0] == "local-box" {
		t.Error("local source was not remapped")
	}
	if last := b.Instances["root"].Children[len(b.Instances["root"].Children)-1]; last.Value != rootID {
		t.Errorf("inserted at %v, want end", last)
	}
}

func TestInsertMissingParentIsNoop(t *testing.T) {
	b := fixture()
	f := CreateComponentInstance("Box", "mobile", DefaultMetas())
	if _, ok := InsertFragmentMutable(b, f, DropTarget{ParentSelector: InstanceSelector{"ghost"}}); ok {
		t.Error("insert under unknown parent should report false")
	}
	if _, ok := InsertFragmentMutable(b, Fragment{}, DropTarget{ParentSelector: InstanceSelector{"root"}}); ok {
		t.Error("insert of empty fragment should report false")
	}
}

func TestCheckFragment(t *testing.T) {
	node := func(children ...build.InstanceChild) []*build.Instance {
		if children == nil {
			children = []build.InstanceChild{}
		}
		return []*build.Instance{{ID: "n", Component: "Box", Children: children}}
	}
	decl := func(source, breakpoint string) []*build.StyleDecl {
		return []*build.StyleDecl{{StyleSourceID: source, BreakpointID: breakpoint, Property: "color", Value: css.KeywordValue("red")}}
	}
	tests := []struct {
		name string
		f    Fragment
		want error
	}{
		{"self-contained", Fragment{
			Instances:             node(),
			StyleSources:          []*build.StyleSource{{ID: "own", Type: build.StyleSourceLocal}},
			StyleSourceSelections: []*build.StyleSourceSelection{{InstanceID: "n", Values: []string{"own", "token"}}},
			Styles:                decl("own", "mobile"),
		}, nil},
		{"unknown child", Fragment{Instances: node(build.IDChild("ghost"))}, build.ErrUnknownInstance},
		{"child outside fragment", Fragment{Instances: node(build.IDChild("inner"))}, build.ErrUnknownInstance},
		{"prop outside fragment", Fragment{
			Instances: node(),
			Props:     []*build.Prop{{ID: "p", InstanceID: "box", Name: "id", Type: build.PropString, Value: "x"}},
		}, build.ErrUnknownInstance},
		{"selection outside fragment", Fragment{
			Instances:             node(),
			StyleSourceSelections: []*build.StyleSourceSelection{{InstanceID: "box", Values: []string{"token"}}},
		}, build.ErrUnknownInstance},
		{"unknown style source", Fragment{
			Instances:             node(),
			StyleSourceSelections: []*build.StyleSourceSelection{{InstanceID: "n", Values: []string{"missing"}}},
		}, build.ErrUnknownStyleSource},
		{"local source of the build", Fragment{
			Instances:             node(),
			StyleSourceSelections: []*build.StyleSourceSelection{{InstanceID: "n", Values: []string{"local-box"}}},
		}, build.ErrUnknownStyleSource},
		{"declaration on unknown source", Fragment{Instances: node(), Styles: decl("missing", "mobile")}, build.ErrUnknownStyleSource},
		{"unknown breakpoint", Fragment{Instances: node(), Styles: decl("token", "watch")}, build.ErrUnknownBreakpoint},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := fixture()
			err := CheckFragment(b, tt.f)
			if tt.want == nil {
				if err != nil {
					t.Errorf("CheckFragment() = %v", err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("CheckFragment() = %v, want %v", err, tt.want)
			}

			before := b.Clone().Document()
			if _, ok := InsertFragmentMutable(b, tt.f, DropTarget{ParentSelector: InstanceSelector{"root"}, Position: PositionEnd}); ok {
				t.Error("InsertFragmentMutable() = true")
			}
			if diff := cmp.Diff(before, b.Document()); diff != "" {
				t.Errorf("build changed (-want +got):\n%s", diff)
			}
		})
	}
}

func TestReparentPreservesData(t *testing.T) {
	b := fixture()
	before := b.Clone()
	ok := ReparentInstanceMutable(b.Instances, InstanceSelector{"inner", "box", "root"},
		DropTarget{ParentSelector: InstanceSelector{"root"}, Position: 0})
	if !ok {
		t.Fatal("ReparentInstanceMutable returned false")
	}
	mustValidate(t, b)

	if b.Instances["root"].Children[0] != build.IDChild("inner") {
		t.Errorf("root children = %v", b.Instances["root"].Children)
	}
	if b.Instances["box"].ChildIndex("inner") >= 0 {
		t.Error("inner still under box")
	}
	if diff := cmp.Diff(before.Props, b.Props); diff != "" {
		t.Errorf("props changed (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(before.Styles, b.Styles); diff != "" {
		t.Errorf("styles changed (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(before.StyleSourceSelections, b.StyleSourceSelections); diff != "" {
		t.Errorf("selections changed (-want +got):\n%s", diff)
	}
}

func TestReparentWithinParent(t *testing.T) {
	b := fixture()
	ok := ReparentInstanceMutable(b.Instances, InstanceSelector{"box", "root"},
		DropTarget{ParentSelector: InstanceSelector{"root"}, Position: 2})
	if !ok {
		t.Fatal("ReparentInstanceMutable returned false")
	}
	want := []build.InstanceChild{build.IDChild("frag"), build.IDChild("box"), build.IDChild("slot")}
	if diff := cmp.Diff(want, b.Instances["root"].Children); diff != "" {
		t.Errorf("children mismatch (-want +got):\n%s", diff)
	}
}

func TestReparentIntoOwnSubtreeIsNoop(t *testing.T) {
	b := fixture()
	before := b.Clone().Document()
	ok := ReparentInstanceMutable(b.Instances, InstanceSelector{"box", "root"},
		DropTarget{ParentSelector: InstanceSelector{"inner", "box", "root"}, Position: PositionEnd})
	if ok {
		t.Error("moving into own subtree should report false")
	}
	if ReparentInstanceMutable(b.Instances, InstanceSelector{"root"}, DropTarget{ParentSelector: InstanceSelector{"box"}}) {
		t.Error("moving root should report false")
	}
	if diff := cmp.Diff(before, b.Document()); diff != "" {
		t.Errorf("build changed (-want +got):\n%s", diff)
	}
}

func TestGetAncestorInstanceSelector(t *testing.T) {
	s := InstanceSelector{"a", "b", "c"}
	if diff := cmp.Diff(InstanceSelector{"b", "c"}, GetAncestorInstanceSelector(s, "b")); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
	if GetAncestorInstanceSelector(s, "z") != nil {
		t.Error("unknown ancestor should yield nil")
	}
}

func TestSelectorOf(t *testing.T) {
	b := fixture()
	if diff := cmp.Diff(InstanceSelector{"inner", "box", "root"}, SelectorOf(b.Instances, "inner")); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
	if SelectorOf(b.Instances, "ghost") != nil {
		t.Error("unknown id should yield nil")
	}
}
