package tree

import (
	"slices"

	"github.com/matzehuels/studio/pkg/build"
)

// DeleteResult describes what [DeleteInstanceMutable] removed.
type DeleteResult struct {
	// TargetID is the top of the removed subtree: the addressed instance, or
	// the Fragment that wrapped it when the wrapper collapsed.
	TargetID string
	// ParentID is the instance the subtree was detached from.
	ParentID string
	// Collapsed reports that a single-child Fragment was removed too.
	Collapsed bool

	Instances    build.IDSet
	StyleSources build.IDSet
	Props        int
	Selections   int
	Styles       int
}

// DeleteInstanceMutable removes the instance addressed by selector together
// with its subtree and everything that depends on it.
//
// When the parent is a Fragment whose only child is the target and a
// grandparent exists, the Fragment is removed instead. The closure does not
// descend into slot content. Local style sources still selected by an
// instance outside the closure, and all tokens, are kept.
//
// It reports false and leaves b untouched when selector addresses a root,
// when the parent is unknown, or when the target is not a child of it.
func DeleteInstanceMutable(b *build.Build, selector InstanceSelector) (DeleteResult, bool) {
	if len(selector) < 2 {
		return DeleteResult{}, false
	}
	targetID := selector[0]
	parent, ok := b.Instances[selector[1]]
	if !ok || parent.ChildIndex(targetID) < 0 {
		return DeleteResult{}, false
	}

	collapsed := false
	if parent.Component == build.ComponentFragment && len(parent.Children) == 1 && len(selector) > 2 {
		grandparent, ok := b.Instances[selector[2]]
		if !ok || grandparent.ChildIndex(parent.ID) < 0 {
			return DeleteResult{}, false
		}
		targetID = parent.ID
		parent = grandparent
		collapsed = true
	}

	subtree := FindTreeInstanceIDsExcludingSlotDescendants(b.Instances, targetID)
	localSources := FindSubtreeLocalStyleSources(subtree, b.StyleSources, b.StyleSourceSelections)

	res := DeleteResult{
		TargetID:     targetID,
		ParentID:     parent.ID,
		Collapsed:    collapsed,
		Instances:    subtree,
		StyleSources: localSources,
	}

	parent.Children = slices.DeleteFunc(parent.Children, func(c build.InstanceChild) bool {
		return c.Type == build.ChildID && c.Value == targetID
	})

	for id := range subtree {
		delete(b.Instances, id)
	}
	for id, p := range b.Props {
		if subtree.Has(p.InstanceID) {
			delete(b.Props, id)
			res.Props++
		}
	}
	for id := range subtree {
		if _, ok := b.StyleSourceSelections[id]; ok {
			delete(b.StyleSourceSelections, id)
			res.Selections++
		}
	}
	for id := range localSources {
		delete(b.StyleSources, id)
	}
	for key, d := range b.Styles {
		if localSources.Has(d.StyleSourceID) {
			delete(b.Styles, key)
			res.Styles++
		}
	}
	return res, true
}
