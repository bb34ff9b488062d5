package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/tagrel/tagrel/pkg/tags"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// browseCommand creates the browse command for interactive graph exploration.
func (c *CLI) browseCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "browse",
		Short: "Browse the graph interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withGraph(cmd.Context(), func(g *tags.Graph) (bool, error) {
				all := g.Tags()
				if len(all) == 0 {
					printInfo("No tags yet")
					return false, nil
				}
				model := newTagListModel(all)
				if _, err := tea.NewProgram(model).Run(); err != nil {
					return false, fmt.Errorf("browse: %w", err)
				}
				return false, nil
			})
		},
	}
}

// tagListModel is the bubbletea model for interactive tag browsing: a
// scrolling tag list on top, the selected tag's connections below.
type tagListModel struct {
	tags   []*tags.Tag
	cursor int
	height int
	offset int
}

func newTagListModel(all []*tags.Tag) tagListModel {
	return tagListModel{tags: all, height: 15}
}

func (m tagListModel) Init() tea.Cmd {
	return nil
}

func (m tagListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
				if m.cursor < m.offset {
					m.offset = m.cursor
				}
			}
		case "down", "j":
			if m.cursor < len(m.tags)-1 {
				m.cursor++
				if m.cursor >= m.offset+m.height {
					m.offset = m.cursor - m.height + 1
				}
			}
		}
	case tea.WindowSizeMsg:
		m.height = msg.Height - 10
		if m.height < 5 {
			m.height = 5
		}
	}
	return m, nil
}

func (m tagListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Browse Tags"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  q quit"))
	b.WriteString("\n\n")

	end := m.offset + m.height
	if end > len(m.tags) {
		end = len(m.tags)
	}

	for i := m.offset; i < end; i++ {
		t := m.tags[i]
		cursor := "  "
		if i == m.cursor {
			cursor = "▸ "
		}

		line := cursor + t.Name()
		if aliases := extraAliases(t); len(aliases) > 0 {
			line += "  " + listDimStyle.Render("("+strings.Join(aliases, ", ")+")")
		}
		if i == m.cursor {
			b.WriteString(listSelectedStyle.Render(line))
		} else {
			b.WriteString(listNormalStyle.Render(line))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.connectionsView())
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.cursor+1, len(m.tags))))

	return b.String()
}

// connectionsView renders the selected tag's connections.
func (m tagListModel) connectionsView() string {
	t := m.tags[m.cursor]
	conns := t.Connections()
	if len(conns) == 0 {
		return listDimStyle.Render("  no connections")
	}

	var b strings.Builder
	for _, conn := range conns {
		label := ""
		if other, ok := conn.Target.(*tags.Tag); ok {
			label = other.Name()
		} else {
			label = fmt.Sprintf("%v", conn.Target)
		}
		b.WriteString(fmt.Sprintf("  %s %-18s %s\n",
			listDimStyle.Render(iconArrow), label, listDimStyle.Render(conn.Type.String())))
	}
	return b.String()
}
