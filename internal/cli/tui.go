package cli

import (
	"fmt"
	"slices"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/modkit/pkg/modinfo"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
	tabActiveStyle    = lipgloss.NewStyle().Bold(true).Foreground(colorCyan).Underline(true)
	tabStyle          = lipgloss.NewStyle().Foreground(colorGray)
	detailStyle       = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorDim).Padding(0, 1)
)

// =============================================================================
// ModListModel - Interactive mod browser
// =============================================================================

// ModListModel is the bubbletea model for browsing mods by tab, inspecting
// their dependencies and picking an active set.
type ModListModel struct {
	Result *modinfo.Result
	Tab    int
	Cursor int
	Height int
	Offset int
	// Active holds the ids toggled on, in the order they were picked.
	Active []string
	// Save is set when the user asked to save Active on exit.
	Save bool

	mods []*modinfo.Info // mods on the current tab
}

// NewModListModel creates a browser over res, starting with active ids
// already picked.
func NewModListModel(res *modinfo.Result, active []string) ModListModel {
	m := ModListModel{
		Result: res,
		Height: 15,
		Active: slices.Clone(active),
	}
	m.mods = m.tabMods()
	return m
}

// tabMods lists the mods shown on the current tab.
func (m ModListModel) tabMods() []*modinfo.Info {
	tab := modinfo.Tabs[m.Tab].ID
	var out []*modinfo.Info
	for _, mod := range m.Result.Registry.Sorted() {
		if modinfo.TabFor(mod.Category) == tab {
			out = append(out, mod)
		}
	}
	return out
}

func (m ModListModel) current() *modinfo.Info {
	if m.Cursor < 0 || m.Cursor >= len(m.mods) {
		return nil
	}
	return m.mods[m.Cursor]
}

func (m ModListModel) isActive(id string) bool { return slices.Contains(m.Active, id) }

func (m ModListModel) Init() tea.Cmd {
	return nil
}

func (m ModListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "s":
			m.Save = true
			return m, tea.Quit
		case "tab", "right", "l":
			m.Tab = (m.Tab + 1) % len(modinfo.Tabs)
			m.mods, m.Cursor, m.Offset = m.tabMods(), 0, 0
		case "shift+tab", "left", "h":
			m.Tab = (m.Tab + len(modinfo.Tabs) - 1) % len(modinfo.Tabs)
			m.mods, m.Cursor, m.Offset = m.tabMods(), 0, 0
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.mods)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case " ", "enter":
			mod := m.current()
			if mod == nil {
				return m, nil
			}
			if i := slices.Index(m.Active, mod.ID); i >= 0 {
				m.Active = slices.Delete(slices.Clone(m.Active), i, i+1)
			} else if m.Result.Tree.IsAvailable(mod.ID) {
				m.Active = append(slices.Clone(m.Active), mod.ID)
			}
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 16
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

func (m ModListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Mods"))
	b.WriteString("  ")
	for i, tab := range modinfo.Tabs {
		style := tabStyle
		if i == m.Tab {
			style = tabActiveStyle
		}
		b.WriteString(style.Render(tab.Title))
		b.WriteString("  ")
	}
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⇥ tab  ␣ toggle  s save  q quit"))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.mods))
	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		mod := m.mods[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		mark := " "
		if m.isActive(mod.ID) {
			mark = iconSuccess
		}
		rows = append(rows, []string{cursor, mark, mod.DisplayName(), modinfo.CategoryTitle(mod.Category), statusText(m.Result.Tree.Node(mod.ID))})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "", "Mod", "Category", "Status").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return styleHeader
			}
			idx := m.Offset + row
			if idx < 0 || idx >= len(m.mods) {
				return lipgloss.NewStyle()
			}
			base := lipgloss.NewStyle()
			if !m.Result.Tree.IsAvailable(m.mods[idx].ID) {
				base = base.Foreground(colorRed)
			} else if col == 1 {
				base = base.Foreground(colorGreen)
			}
			if idx == m.Cursor {
				return base.Bold(true)
			}
			return base
		})

	b.WriteString(t.Render())
	b.WriteString("\n")
	if len(m.mods) == 0 {
		b.WriteString(listDimStyle.Render("  No mods on this tab"))
	} else {
		b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]  %d active", m.Cursor+1, len(m.mods), len(m.Active))))
	}
	b.WriteString("\n")

	if mod := m.current(); mod != nil {
		b.WriteString(detailStyle.Render(m.detail(mod)))
	}
	return b.String()
}

// detail renders the panel for the highlighted mod.
func (m ModListModel) detail(mod *modinfo.Info) string {
	var lines []string
	lines = append(lines, listSelectedStyle.Render(mod.DisplayName())+" "+listDimStyle.Render("("+mod.ID+")"))
	if mod.Description != "" {
		lines = append(lines, mod.Description)
	}
	field := func(label string, values []string) {
		if len(values) > 0 {
			lines = append(lines, listDimStyle.Render(label+": ")+strings.Join(values, ", "))
		}
	}
	field("Authors", mod.Authors)
	field("Maintainers", mod.Maintainers)
	field("Dependencies", mod.Dependencies)
	field("Dependents", m.Result.Tree.DependentsOf(mod.ID))
	field("Conflicts", mod.Conflicts)
	if n := m.Result.Tree.Node(mod.ID); n != nil && !n.IsAvailable() {
		for _, line := range strings.Split(n.ErrorString(), "\n") {
			lines = append(lines, StyleError.Render(line))
		}
	}
	lines = append(lines, listDimStyle.Render(mod.File))
	return strings.Join(lines, "\n")
}

// =============================================================================
// Command
// =============================================================================

// browseCommand creates the browse command.
func (c *CLI) browseCommand() *cobra.Command {
	var f loadFlags

	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Browse mods interactively and pick an active set",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, res, err := c.loadMods(ctx, f)
			if err != nil {
				return err
			}

			listPath := c.cfg().ModList
			active, err := modinfo.LoadList(listPath)
			if err != nil {
				active = nil
			}
			active, _ = res.Registry.Replace(active)
			active = res.Registry.RemoveInvalid(active)

			p := tea.NewProgram(NewModListModel(res, active), tea.WithContext(ctx), tea.WithAltScreen())
			final, err := p.Run()
			if err != nil {
				return err
			}
			m := final.(ModListModel)
			if !m.Save {
				return nil
			}

			order, err := s.Resolve(ctx, res, m.Active)
			if err != nil {
				return err
			}
			if err := modinfo.SaveListFile(listPath, order); err != nil {
				return err
			}
			printSuccess("Saved %d mods", len(order))
			printFile(listPath)
			return nil
		},
	}

	f.register(cmd)
	return cmd
}
