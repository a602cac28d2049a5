package cli

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/studio/pkg/build/tree"
	"github.com/matzehuels/studio/pkg/css"
)

// completionShells maps each supported shell to its one-time setup line.
var completionShells = map[string]string{
	"bash":       "%[1]s completion bash > /etc/bash_completion.d/%[1]s",
	"zsh":        `%[1]s completion zsh > "${fpath[1]}/_%[1]s"`,
	"fish":       "%[1]s completion fish > ~/.config/fish/completions/%[1]s.fish",
	"powershell": "%[1]s completion powershell >> $PROFILE",
}

func (c *CLI) completionCommand() *cobra.Command {
	shells := slices.Sorted(maps.Keys(completionShells))

	var long strings.Builder
	long.WriteString("Generate the completion script of a shell.\n\nBuild file arguments complete to .json files, instance arguments to the\nids in the given build and component arguments to registered components.\n\nInstall once per shell:\n")
	for _, sh := range shells {
		fmt.Fprintf(&long, "\n  %-11s %s\n", sh+":", fmt.Sprintf(completionShells[sh], appName))
	}

	return &cobra.Command{
		Use:                   "completion [" + strings.Join(shells, "|") + "]",
		Short:                 "Generate shell completion scripts",
		Long:                  long.String(),
		DisableFlagsInUseLine: true,
		ValidArgs:             shells,
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			root := cmd.Root()
			switch args[0] {
			case "bash":
				return root.GenBashCompletionV2(out, true)
			case "zsh":
				return root.GenZshCompletion(out)
			case "fish":
				return root.GenFishCompletion(out, true)
			default:
				return root.GenPowerShellCompletionWithDesc(out)
			}
		},
	}
}

// completeArgs completes a build file first and then, when next is set, the
// argument after it.
func completeArgs(next func(path, prefix string) []string) cobra.CompletionFunc {
	return func(cmd *cobra.Command, args []string, toComplete string) ([]cobra.Completion, cobra.ShellCompDirective) {
		switch {
		case len(args) == 0:
			return []cobra.Completion{"json"}, cobra.ShellCompDirectiveFilterFileExt
		case len(args) == 1 && next != nil:
			return next(args[0], toComplete), cobra.ShellCompDirectiveNoFileComp
		}
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
}

// instanceIDs lists the instance ids of the build at path that start with
// prefix. Unreadable builds complete to nothing.
func instanceIDs(path, prefix string) []string {
	b, err := loadBuild(path)
	if err != nil {
		return nil
	}
	return withPrefix(slices.Sorted(maps.Keys(b.Instances)), prefix)
}

func componentNames(_, prefix string) []string {
	return withPrefix(tree.DefaultMetas().Names(), prefix)
}

func completeProperties(_ *cobra.Command, args []string, toComplete string) ([]cobra.Completion, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return withPrefix(slices.Sorted(maps.Keys(css.Properties)), toComplete), cobra.ShellCompDirectiveNoFileComp
}

func withPrefix(names []string, prefix string) []string {
	return slices.DeleteFunc(names, func(n string) bool { return !strings.HasPrefix(n, prefix) })
}
