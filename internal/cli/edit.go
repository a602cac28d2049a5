package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/studio/pkg/build"
	"github.com/matzehuels/studio/pkg/build/tree"
	"github.com/matzehuels/studio/pkg/editor"
	"github.com/matzehuels/studio/pkg/store"
)

// editFunc performs one edit and returns whether it applied and a short
// description for the user.
type editFunc func(b *build.Build, ed *editor.Session) (bool, string, error)

// edit runs fn on the build stored at path with the selection remembered
// for that file, then writes back the build (if changed) and the selection.
func (c *CLI) edit(ctx context.Context, path string, fn editFunc) error {
	b, err := loadValidBuild(path)
	if err != nil {
		return err
	}
	sessions, err := c.newSessionStore()
	if err != nil {
		return err
	}
	sess, err := sessions.Load(ctx, path)
	if err != nil {
		return err
	}

	st := store.New(b, store.WithLogger(c.Logger))
	ed := editor.New(st, editor.WithSelection(sess.Selection), editor.WithLogger(c.Logger))

	applied, what, err := fn(st.Snapshot(), ed)
	if err != nil {
		return err
	}
	if applied {
		if err := saveBuild(path, st.Snapshot()); err != nil {
			return err
		}
		printSuccess("%s", what)
	} else {
		printWarning("nothing changed: %s", what)
	}

	sess.Selection = ed.Selection()
	if err := sessions.Save(ctx, sess); err != nil {
		c.Logger.Warn("save selection", "err", err)
	}
	if sel := sess.Selection.Instance; len(sel) > 0 {
		printDetail("selected %s", sel.Target())
	}
	return nil
}

// dropTarget builds a drop target under parentID, or under the selected
// instance (falling back to the first root) when parentID is empty.
func dropTarget(b *build.Build, ed *editor.Session, parentID string, position int) (tree.DropTarget, error) {
	if parentID == "" {
		if sel := ed.Selection().Instance; len(sel) > 0 {
			return tree.DropTarget{ParentSelector: sel, Position: position}, nil
		}
		parentID = defaultRoot(b)
	}
	parent, err := selectorFor(b, parentID)
	if err != nil {
		return tree.DropTarget{}, err
	}
	return tree.DropTarget{ParentSelector: parent, Position: position}, nil
}

func (c *CLI) insertCommand() *cobra.Command {
	var (
		parent   string
		position int
	)

	cmd := &cobra.Command{
		Use:   "insert [file] [component]",
		Short: "Insert a new component instance",
		Long: `Insert a new instance of a component under a parent.

Without --parent the instance goes into the currently selected instance, or
the first root when nothing is selected. The new instance becomes selected.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			component := args[1]
			if _, ok := tree.DefaultMetas()[component]; !ok {
				return fmt.Errorf("unknown component %q (known: %v)", component, tree.DefaultMetas().Names())
			}
			return c.edit(cmd.Context(), args[0], func(b *build.Build, ed *editor.Session) (bool, string, error) {
				target, err := dropTarget(b, ed, parent, position)
				if err != nil {
					return false, "", err
				}
				ok := ed.InsertNewComponentInstance(component, target)
				return ok, fmt.Sprintf("insert %s into %s", component, target.ParentSelector.Target()), nil
			})
		},
		ValidArgsFunction: completeArgs(componentNames),
	}

	cmd.Flags().StringVar(&parent, "parent", "", "parent instance id")
	cmd.Flags().IntVar(&position, "position", tree.PositionEnd, "child index (-1 appends)")

	return cmd
}

func (c *CLI) moveCommand() *cobra.Command {
	var (
		parent   string
		position int
	)

	cmd := &cobra.Command{
		Use:   "move [file] [instance]",
		Short: "Move an instance to another parent or position",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.edit(cmd.Context(), args[0], func(b *build.Build, ed *editor.Session) (bool, string, error) {
				sel, err := selectorFor(b, args[1])
				if err != nil {
					return false, "", err
				}
				if parent == "" {
					parent = sel.Parent()
				}
				target, err := dropTarget(b, ed, parent, position)
				if err != nil {
					return false, "", err
				}
				ok := ed.ReparentInstance(sel, target)
				return ok, fmt.Sprintf("move %s into %s", args[1], target.ParentSelector.Target()), nil
			})
		},
		ValidArgsFunction: completeArgs(instanceIDs),
	}

	cmd.Flags().StringVar(&parent, "parent", "", "new parent instance id (default: current parent)")
	cmd.Flags().IntVar(&position, "position", tree.PositionEnd, "child index (-1 appends)")

	return cmd
}

func (c *CLI) deleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete [file] [instance]",
		Short: "Delete an instance and everything it owns",
		Long: `Delete an instance with its subtree, props, local styles and selections.

Without an instance id the selected instance is deleted. A fragment left with
no children is removed too. Root instances cannot be deleted.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.edit(cmd.Context(), args[0], func(b *build.Build, ed *editor.Session) (bool, string, error) {
				if len(args) == 1 {
					sel := ed.Selection().Instance
					if len(sel) == 0 {
						return false, "no instance selected", nil
					}
					return ed.DeleteSelectedInstance(), "delete " + sel.Target(), nil
				}
				sel, err := selectorFor(b, args[1])
				if err != nil {
					return false, "", err
				}
				return ed.DeleteInstance(sel), "delete " + args[1], nil
			})
		},
		ValidArgsFunction: completeArgs(instanceIDs),
	}
}
