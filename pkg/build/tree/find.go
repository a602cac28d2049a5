package tree

import "github.com/matzehuels/studio/pkg/build"

// FindTreeInstanceIDs returns rootID and every instance reachable from it.
func FindTreeInstanceIDs(instances build.Instances, rootID string) build.IDSet {
	return collect(instances, rootID, false)
}

// FindTreeInstanceIDsExcludingSlotDescendants returns rootID and every
// instance reachable from it without entering the content of a Slot. Slot
// content is shared by all instances of the slot and outlives any one of them.
func FindTreeInstanceIDsExcludingSlotDescendants(instances build.Instances, rootID string) build.IDSet {
	return collect(instances, rootID, true)
}

func collect(instances build.Instances, rootID string, skipSlots bool) build.IDSet {
	ids := build.NewIDSet(rootID)
	queue := []string{rootID}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		inst, ok := instances[id]
		if !ok || (skipSlots && inst.Component == build.ComponentSlot) {
			continue
		}
		for _, child := range inst.ChildIDs() {
			if ids.Add(child) {
				queue = append(queue, child)
			}
		}
	}
	return ids
}

// FindSubtreeLocalStyleSources returns the local style sources selected by
// instances in subtree that no instance outside subtree also selects.
func FindSubtreeLocalStyleSources(subtree build.IDSet, sources build.StyleSources, selections build.StyleSourceSelections) build.IDSet {
	local := build.IDSet{}
	shared := build.IDSet{}
	for _, sel := range selections {
		inside := subtree.Has(sel.InstanceID)
		for _, sourceID := range sel.Values {
			source, ok := sources[sourceID]
			if !ok || source.Type != build.StyleSourceLocal {
				continue
			}
			if inside {
				local.Add(sourceID)
			} else {
				shared.Add(sourceID)
			}
		}
	}
	for id := range shared {
		delete(local, id)
	}
	return local
}

// FindParent returns the first instance listing childID among its children.
func FindParent(instances build.Instances, childID string) (*build.Instance, bool) {
	for _, inst := range instances {
		if inst.ChildIndex(childID) >= 0 {
			return inst, true
		}
	}
	return nil, false
}

// SelectorOf builds the selector of id by walking parents up to a root. It
// returns nil when id is unknown. For content shared by several slots the
// chosen path is one of the valid ones.
func SelectorOf(instances build.Instances, id string) InstanceSelector {
	if _, ok := instances[id]; !ok {
		return nil
	}
	selector := InstanceSelector{id}
	seen := build.NewIDSet(id)
	for {
		parent, ok := FindParent(instances, selector[len(selector)-1])
		if !ok || !seen.Add(parent.ID) {
			return selector
		}
		selector = append(selector, parent.ID)
	}
}
