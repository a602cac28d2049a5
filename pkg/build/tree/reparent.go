package tree

import (
	"slices"

	"github.com/matzehuels/studio/pkg/build"
)

// ReparentInstanceMutable moves the instance addressed by selector under the
// drop target without copying it; its props and styles are untouched. When
// moving forward within the same parent the position is adjusted for the
// removal. It reports false when the selector addresses a root, when either
// parent is unknown, when the instance is not a child of its selector parent,
// or when the target parent lies inside the moved subtree.
func ReparentInstanceMutable(instances build.Instances, selector InstanceSelector, target DropTarget) bool {
	if len(selector) < 2 {
		return false
	}
	id := selector.Target()
	prevParent, ok := instances[selector.Parent()]
	if !ok {
		return false
	}
	nextParent, ok := instances[target.ParentSelector.Target()]
	if !ok {
		return false
	}
	if FindTreeInstanceIDs(instances, id).Has(nextParent.ID) {
		return false
	}

	prevPosition := prevParent.ChildIndex(id)
	if prevPosition < 0 {
		return false
	}

	nextPosition := target.Position
	if nextPosition != PositionEnd && prevParent.ID == nextParent.ID && prevPosition < nextPosition {
		nextPosition--
	}

	child := prevParent.Children[prevPosition]
	prevParent.Children = slices.Delete(prevParent.Children, prevPosition, prevPosition+1)
	insertChildren(nextParent, nextPosition, child)
	return true
}
