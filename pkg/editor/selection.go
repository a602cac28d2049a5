package editor

import (
	"slices"

	"github.com/matzehuels/studio/pkg/build"
	"github.com/matzehuels/studio/pkg/build/tree"
)

// Selection is what the user is currently pointing at.
type Selection struct {
	// Instance is the selected instance, nil when nothing is selected.
	Instance tree.InstanceSelector `json:"instance,omitempty" bson:"instance,omitempty"`
	// StyleSource is the style source picked in the style panel.
	StyleSource string `json:"styleSource,omitempty" bson:"styleSource,omitempty"`
	// TextEditing is the instance whose text is being edited inline.
	TextEditing tree.InstanceSelector `json:"textEditing,omitempty" bson:"textEditing,omitempty"`
}

// Empty reports whether nothing is selected.
func (s Selection) Empty() bool {
	return len(s.Instance) == 0 && s.StyleSource == "" && len(s.TextEditing) == 0
}

// Clone returns a deep copy of s.
func (s Selection) Clone() Selection {
	return Selection{
		Instance:    slices.Clone(s.Instance),
		StyleSource: s.StyleSource,
		TextEditing: slices.Clone(s.TextEditing),
	}
}

// Resolves reports whether every step of selector is a real parent/child
// link in b and its last element is a known instance.
func Resolves(b *build.Build, selector tree.InstanceSelector) bool {
	if len(selector) == 0 {
		return false
	}
	for i, id := range selector {
		if _, ok := b.Instances[id]; !ok {
			return false
		}
		if i > 0 && b.Instances[id].ChildIndex(selector[i-1]) < 0 {
			return false
		}
	}
	return true
}

// trimToValid drops leading entries until the rest resolves in b.
func trimToValid(b *build.Build, selector tree.InstanceSelector) tree.InstanceSelector {
	for i := range selector {
		if Resolves(b, selector[i:]) {
			return slices.Clone(selector[i:])
		}
	}
	return nil
}

// reconcile repairs sel against b after the build changed underneath it.
func reconcile(b *build.Build, sel Selection) Selection {
	next := Selection{Instance: trimToValid(b, sel.Instance)}
	if len(sel.TextEditing) > 0 && Resolves(b, sel.TextEditing) {
		next.TextEditing = slices.Clone(sel.TextEditing)
	}
	if sel.StyleSource != "" && next.Instance.Equal(sel.Instance) {
		if selects(b, next.Instance.Target(), sel.StyleSource) {
			next.StyleSource = sel.StyleSource
		}
	}
	return next
}

func selects(b *build.Build, instanceID, styleSourceID string) bool {
	sel, ok := b.StyleSourceSelections[instanceID]
	if !ok {
		return false
	}
	return slices.Contains(sel.Values, styleSourceID)
}
