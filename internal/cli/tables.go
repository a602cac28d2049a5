package cli

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/studio/pkg/build"
	"github.com/matzehuels/studio/pkg/css"
)

// newTable returns a rounded table with the shared header and border styles.
func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(styleBorder).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 { // header
				return styleHeader.Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})
}

// breakpointRows formats bps with the base breakpoint marked.
func breakpointRows(bps build.Breakpoints) [][]string {
	var rows [][]string
	for _, bp := range bps.Sorted() {
		base := ""
		if bps.IsBase(bp) {
			base = iconSuccess
		}
		rows = append(rows, []string{bp.ID, bp.Label, strconv.Itoa(bp.MinWidth) + "px", base})
	}
	return rows
}

func (c *CLI) breakpointsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "breakpoints [file]",
		Short: "List the breakpoints of a build, or the defaults",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bps := build.DefaultBreakpoints()
			if len(args) == 1 {
				b, err := loadBuild(args[0])
				if err != nil {
					return err
				}
				bps = b.Breakpoints
			}
			if len(bps) == 0 {
				printWarning("no breakpoints")
				return nil
			}
			fmt.Println(newTable("ID", "Label", "Min width", "Base").Rows(breakpointRows(bps)...).Render())
			return nil
		},
		ValidArgsFunction: completeArgs(nil),
	}
}

// unitRows formats the selector options of property given its current value.
func unitRows(property, value string) [][]string {
	current := css.ParseValue(value)
	var rows [][]string
	for _, opt := range css.BuildOptions(property, current, "—") {
		mark := ""
		if value != "" && optionSelected(opt, current) {
			mark = iconArrow
		}
		rows = append(rows, []string{mark, opt.ID, opt.Label, string(opt.Type)})
	}
	return rows
}

func optionSelected(opt css.UnitOption, v css.StyleValue) bool {
	if kw, ok := v.Keyword(); ok {
		return opt.Type == css.OptionKeyword && opt.ID == kw
	}
	return opt.Type == css.OptionUnit && v.Type == css.ValueUnit && opt.ID == string(v.Unit)
}

func (c *CLI) unitsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "units [property] [value]",
		Short: "Show the unit and keyword options of a CSS property",
		Long: `Show the options a unit selector offers for a CSS property.

With a value, the option matching it is marked. A unit the property does not
normally accept still appears when the value uses it.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			property := args[0]
			if _, ok := css.Properties[property]; !ok {
				return fmt.Errorf("unknown property %q", property)
			}
			value := ""
			if len(args) == 2 {
				value = args[1]
			}
			fmt.Println(newTable("", "ID", "Label", "Type").Rows(unitRows(property, value)...).Render())
			return nil
		},
		ValidArgsFunction: completeProperties,
	}
}
