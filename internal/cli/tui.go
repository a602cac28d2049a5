package cli

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/studio/pkg/build"
	"github.com/matzehuels/studio/pkg/build/tree"
	"github.com/matzehuels/studio/pkg/editor"
	"github.com/matzehuels/studio/pkg/store"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// treeRow is one visible line of the tree view.
type treeRow struct {
	selector tree.InstanceSelector
	depth    int
	inst     *build.Instance
}

// flattenTree lists the instances under every root in display order. Slot
// content reached twice is listed under each slot, so every row has its own
// selector.
func flattenTree(b *build.Build) []treeRow {
	var rows []treeRow
	var visit func(sel tree.InstanceSelector, depth int)
	visit = func(sel tree.InstanceSelector, depth int) {
		inst, ok := b.Instances[sel.Target()]
		if !ok {
			return
		}
		rows = append(rows, treeRow{selector: sel, depth: depth, inst: inst})
		for _, id := range inst.ChildIDs() {
			if sel.Contains(id) {
				continue
			}
			visit(sel.Child(id), depth+1)
		}
	}
	for _, root := range b.Roots() {
		visit(tree.InstanceSelector{root}, 0)
	}
	return rows
}

// TreeModel is the bubbletea model of the interactive tree editor.
type TreeModel struct {
	Editor *editor.Session
	Rows   []treeRow
	Cursor int
	Height int
	Offset int
	Status string
	Dirty  bool
	Saved  bool

	insertComponent string
}

// NewTreeModel creates a tree editor over ed with the cursor on the current
// selection.
func NewTreeModel(ed *editor.Session) TreeModel {
	m := TreeModel{Editor: ed, Height: 20, insertComponent: "Box"}
	m.refresh()
	return m
}

// refresh rebuilds the rows and moves the cursor onto the selection.
func (m *TreeModel) refresh() {
	m.Rows = flattenTree(m.Editor.Store().Snapshot())
	sel := m.Editor.Selection().Instance
	for i, r := range m.Rows {
		if r.selector.Equal(sel) {
			m.Cursor = i
			break
		}
	}
	if m.Cursor >= len(m.Rows) {
		m.Cursor = max(len(m.Rows)-1, 0)
	}
	m.scroll()
}

func (m *TreeModel) scroll() {
	if m.Cursor < m.Offset {
		m.Offset = m.Cursor
	}
	if m.Cursor >= m.Offset+m.Height {
		m.Offset = m.Cursor - m.Height + 1
	}
}

func (m *TreeModel) selectCursor() {
	if m.Cursor < len(m.Rows) {
		m.Editor.Select(m.Rows[m.Cursor].selector)
	}
}

// apply records the outcome of an editing key.
func (m *TreeModel) apply(what string, applied bool) {
	if applied {
		m.Dirty = true
		m.Status = what
	} else {
		m.Status = "nothing to " + what
	}
	m.refresh()
}

func (m TreeModel) Init() tea.Cmd {
	return nil
}

func (m TreeModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "q":
			m.Saved = m.Dirty
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				m.selectCursor()
				m.scroll()
			}
		case "down", "j":
			if m.Cursor < len(m.Rows)-1 {
				m.Cursor++
				m.selectCursor()
				m.scroll()
			}
		case "esc":
			m.Editor.EscapeSelection()
			m.Status = ""
			m.refresh()
		case "a":
			sel := m.Editor.Selection().Instance
			if len(sel) == 0 {
				m.Status = "select a parent first"
				return m, nil
			}
			ok := m.Editor.InsertNewComponentInstance(m.insertComponent, tree.DropTarget{ParentSelector: sel, Position: tree.PositionEnd})
			m.apply("insert "+m.insertComponent, ok)
		case "D":
			sel := m.Editor.Selection().Instance
			if len(sel) == 0 {
				m.Status = "nothing selected"
				return m, nil
			}
			m.apply("duplicate "+sel.Target(), m.Editor.DuplicateInstance(sel))
		case "d", "delete":
			m.apply("delete", m.Editor.DeleteSelectedInstance())
		case "u":
			m.apply("undo", m.Editor.Undo())
		case "r":
			m.apply("redo", m.Editor.Redo())
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-6, 5)
		m.scroll()
	}
	return m, nil
}

func (m TreeModel) View() string {
	var sb strings.Builder

	sb.WriteString(StyleTitle.Render("Instance Tree"))
	sb.WriteString("\n")
	sb.WriteString(listDimStyle.Render("↑/↓ select  a add Box  D duplicate  d delete  u undo  r redo  esc parent  q save & quit"))
	sb.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.Rows))
	for i := m.Offset; i < end; i++ {
		r := m.Rows[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		name := r.inst.Component
		if r.inst.Label != "" {
			name += " " + r.inst.Label
		}
		line := fmt.Sprintf("%s%s%s %s", cursor, strings.Repeat("  ", r.depth), name, listDimStyle.Render(r.inst.ID))

		switch {
		case i == m.Cursor:
			sb.WriteString(listSelectedStyle.Render(line))
		case r.inst.Component == build.ComponentFragment:
			sb.WriteString(listDimStyle.Render(line))
		default:
			sb.WriteString(listNormalStyle.Render(line))
		}
		sb.WriteString("\n")
	}

	sb.WriteString("\n")
	status := fmt.Sprintf("  [%d/%d]", min(m.Cursor+1, len(m.Rows)), len(m.Rows))
	if m.Dirty {
		status += " " + StyleWarning.Render("modified")
	}
	if m.Status != "" {
		status += "  " + m.Status
	}
	sb.WriteString(listDimStyle.Render(status))

	return sb.String()
}

func (c *CLI) tuiCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tui [file]",
		Short: "Browse and edit a build interactively",
		Long: `Open the instance tree of a build file in an interactive editor.

Changes are written back when leaving with q. ctrl+c leaves without saving.
The selection is remembered for the next inspect, insert or delete.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runTUI(cmd.Context(), args[0])
		},
		ValidArgsFunction: completeArgs(nil),
	}
}

func (c *CLI) runTUI(ctx context.Context, path string) error {
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
	ed := editor.New(st, editor.WithSelection(sess.Selection))
	if ed.Selection().Empty() {
		if root := defaultRoot(b); root != "" {
			ed.Select(tree.InstanceSelector{root})
		}
	}

	final, err := tea.NewProgram(NewTreeModel(ed), tea.WithContext(ctx), tea.WithAltScreen()).Run()
	if err != nil {
		return fmt.Errorf("run tree editor: %w", err)
	}
	m := final.(TreeModel)

	if m.Saved {
		if err := saveBuild(path, st.Snapshot()); err != nil {
			return err
		}
		printSuccess("Saved %s", path)
	} else if m.Dirty {
		printWarning("changes discarded")
	}

	sess.Selection = ed.Selection()
	return sessions.Save(ctx, sess)
}
