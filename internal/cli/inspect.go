package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/matzehuels/studio/pkg/render/treeviz"
)

// inspectCommand prints statistics and the tree outline of a build file.
func (c *CLI) inspectCommand() *cobra.Command {
	var (
		root     string
		detailed bool
	)

	cmd := &cobra.Command{
		Use:   "inspect [file]",
		Short: "Show the instance tree and statistics of a build",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := loadBuild(args[0])
			if err != nil {
				return err
			}
			if root == "" {
				root = defaultRoot(b)
			}
			if _, ok := b.Instances[root]; !ok {
				return fmt.Errorf("instance %q not found", root)
			}

			var highlight []string
			if sessions, err := c.newSessionStore(); err == nil {
				if sess, err := sessions.Load(cmd.Context(), args[0]); err == nil && len(sess.Selection.Instance) > 0 {
					highlight = []string{sess.Selection.Instance.Target()}
				}
			}

			fmt.Println(StyleTitle.Render(args[0]))
			printStats(b.Stats())
			printKeyValue("roots", strconv.Itoa(len(b.Roots())))
			if base := b.Breakpoints.Base(); base != nil {
				printKeyValue("base", fmt.Sprintf("%s (%dpx)", base.Label, base.MinWidth))
			}
			if err := b.Validate(); err != nil {
				printWarning("%d integrity problems (run: studio validate %s)", len(multierr.Errors(err)), args[0])
			}
			fmt.Println()
			fmt.Print(treeviz.Outline(b, root, treeviz.Options{Detailed: detailed, Highlight: highlight}))
			return nil
		},
		ValidArgsFunction: completeArgs(nil),
	}

	cmd.Flags().StringVar(&root, "root", "", "instance to start from (default: first root)")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "show props and style sources")

	return cmd
}

// validateCommand reports every integrity problem of a build file.
func (c *CLI) validateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [file]",
		Short: "Check a build for broken references",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := loadBuild(args[0])
			if err != nil {
				return err
			}
			if err := b.Validate(); err != nil {
				problems := multierr.Errors(err)
				for _, p := range problems {
					printError("%v", p)
				}
				return fmt.Errorf("%s: %d problems", args[0], len(problems))
			}
			printSuccess("%s is valid", args[0])
			printStats(b.Stats())
			return nil
		},
		ValidArgsFunction: completeArgs(nil),
	}
}
