package treeviz

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/matzehuels/studio/pkg/build"
)

// Outline renders the tree under rootID as indented text with box-drawing
// guides. Highlighted instances are marked with "*".
func Outline(b *build.Build, rootID string, opts Options) string {
	var sb strings.Builder
	inst, ok := b.Instances[rootID]
	if !ok {
		return ""
	}
	sb.WriteString(outlineLine(b, inst, opts))
	sb.WriteByte('\n')
	outlineChildren(&sb, b, inst, "", opts, build.NewIDSet(rootID))
	return sb.String()
}

func outlineChildren(sb *strings.Builder, b *build.Build, inst *build.Instance, prefix string, opts Options, seen build.IDSet) {
	for i, child := range inst.Children {
		last := i == len(inst.Children)-1
		branch, next := "├── ", "│   "
		if last {
			branch, next = "└── ", "    "
		}

		switch child.Type {
		case build.ChildText:
			fmt.Fprintf(sb, "%s%s%q\n", prefix, branch, truncate(child.Value, 60))
			continue
		case build.ChildExpression:
			fmt.Fprintf(sb, "%s%s{%s}\n", prefix, branch, truncate(child.Value, 60))
			continue
		}

		c, ok := b.Instances[child.Value]
		if !ok {
			fmt.Fprintf(sb, "%s%s<missing %s>\n", prefix, branch, child.Value)
			continue
		}
		if !seen.Add(c.ID) {
			fmt.Fprintf(sb, "%s%s%s (shared)\n", prefix, branch, outlineLine(b, c, opts))
			continue
		}
		fmt.Fprintf(sb, "%s%s%s\n", prefix, branch, outlineLine(b, c, opts))
		outlineChildren(sb, b, c, prefix+next, opts, seen)
	}
}

func outlineLine(b *build.Build, inst *build.Instance, opts Options) string {
	line := title(inst) + " [" + inst.ID + "]"
	if opts.highlighted(inst.ID) {
		line = "* " + line
	}
	if opts.Detailed {
		if props := propsOf(b, inst.ID); len(props) > 0 {
			parts := make([]string, len(props))
			for i, p := range props {
				parts[i] = fmt.Sprintf("%s=%v", p.Name, p.Value)
			}
			line += " " + strings.Join(parts, " ")
		}
		if sel, ok := b.StyleSourceSelections[inst.ID]; ok && len(sel.Values) > 0 {
			names := make([]string, len(sel.Values))
			for i, id := range sel.Values {
				names[i] = sourceName(b, id)
			}
			line += " {" + strings.Join(names, ", ") + "}"
		}
	}
	return line
}

// propsOf returns the props of an instance sorted by name.
func propsOf(b *build.Build, instanceID string) []*build.Prop {
	var out []*build.Prop
	for _, id := range slices.Sorted(maps.Keys(b.Props)) {
		if p := b.Props[id]; p.InstanceID == instanceID {
			out = append(out, p)
		}
	}
	slices.SortStableFunc(out, func(a, b *build.Prop) int { return strings.Compare(a.Name, b.Name) })
	return out
}

func sourceName(b *build.Build, id string) string {
	s, ok := b.StyleSources[id]
	switch {
	case !ok:
		return id + "?"
	case s.Type == build.StyleSourceToken && s.Name != "":
		return s.Name
	default:
		return "local"
	}
}
