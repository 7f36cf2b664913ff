package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli"

	"github.com/wippyai/rna/schema"
)

type browseState int

const (
	stateSelectEntity browseState = iota
	stateFilter
	stateShowEntity
)

type browseModel struct {
	err      error
	snap     *schema.Snapshot
	filename string
	at       string
	all      []string
	names    []string
	filter   textinput.Model
	st       styles
	selected int
	top      int
	height   int
	state    browseState
}

type snapshotMsg struct {
	err  error
	snap *schema.Snapshot
}

func newBrowseModel(filename, at string) *browseModel {
	ti := textinput.New()
	ti.Prompt = "/"
	ti.Placeholder = "filter entities"
	ti.Width = 40
	return &browseModel{
		filename: filename,
		at:       at,
		filter:   ti,
		st:       newStyles(true),
		height:   20,
		state:    stateSelectEntity,
	}
}

func (m *browseModel) Init() tea.Cmd {
	return m.loadSnapshot
}

func (m *browseModel) loadSnapshot() tea.Msg {
	snap, err := openSnapshot(m.filename, m.at)
	return snapshotMsg{snap: snap, err: err}
}

func (m *browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		// title, blank line, filter, blank line, help
		m.height = max(msg.Height-6, 3)
		m.scroll()

	case snapshotMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.snap = msg.snap
		m.all = msg.snap.Names()
		m.names = m.all

	case tea.KeyMsg:
		if m.state == stateFilter {
			return m.updateFilter(msg)
		}
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit

		case "up", "k":
			if m.state == stateSelectEntity && m.selected > 0 {
				m.selected--
				m.scroll()
			}

		case "down", "j":
			if m.state == stateSelectEntity && m.selected < len(m.names)-1 {
				m.selected++
				m.scroll()
			}

		case "/":
			if m.state == stateSelectEntity {
				m.state = stateFilter
				return m, m.filter.Focus()
			}

		case "enter":
			if m.state == stateSelectEntity && len(m.names) > 0 {
				m.state = stateShowEntity
			}

		case "esc":
			switch m.state {
			case stateShowEntity:
				m.state = stateSelectEntity
			case stateSelectEntity:
				m.filter.SetValue("")
				m.applyFilter()
			}
		}
	}
	return m, nil
}

func (m *browseModel) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "enter", "esc":
		m.filter.Blur()
		m.state = stateSelectEntity
		return m, nil
	}
	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	m.applyFilter()
	return m, cmd
}

func (m *browseModel) applyFilter() {
	q := strings.ToLower(m.filter.Value())
	if q == "" {
		m.names = m.all
	} else {
		m.names = m.names[:0:0]
		for _, name := range m.all {
			if strings.Contains(strings.ToLower(name), q) {
				m.names = append(m.names, name)
			}
		}
	}
	m.selected = 0
	m.top = 0
}

// scroll keeps the selection inside the visible window.
func (m *browseModel) scroll() {
	if m.selected < m.top {
		m.top = m.selected
	}
	if m.selected >= m.top+m.height {
		m.top = m.selected - m.height + 1
	}
}

func (m *browseModel) View() string {
	if m.err != nil {
		return m.st.err.Render(fmt.Sprintf("Error: %v\n\nPress q to quit.", m.err))
	}
	if m.snap == nil {
		return "Loading schema..."
	}

	var b strings.Builder
	b.WriteString(m.st.title.Render("RNA Browser"))
	b.WriteString(" ")
	b.WriteString(m.filename)
	b.WriteString(" ")
	b.WriteString(m.st.help.Render(fmt.Sprintf("%s %s", m.snap.Version, m.snap.Range())))
	b.WriteString("\n\n")

	switch m.state {
	case stateSelectEntity, stateFilter:
		b.WriteString(m.filter.View())
		b.WriteString("\n\n")
		end := min(m.top+m.height, len(m.names))
		for i := m.top; i < end; i++ {
			name := m.names[i]
			line := fmt.Sprintf("%-32s %s", name, entityShape(m.snap.Entity(name)))
			if i == m.selected {
				b.WriteString(m.st.selected.Render("> " + line))
			} else {
				b.WriteString("  " + line)
			}
			b.WriteString("\n")
		}
		if len(m.names) == 0 {
			b.WriteString(m.st.help.Render("  no entities match"))
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(m.st.help.Render(fmt.Sprintf("%d/%d • ↑/↓ select • / filter • enter fields • q quit",
			len(m.names), len(m.all))))

	case stateShowEntity:
		name := m.names[m.selected]
		writeEntity(&b, m.st, name, m.snap.Entity(name))
		b.WriteString("\n")
		b.WriteString(m.st.help.Render("esc back • q quit"))
	}
	return b.String()
}

func browseCommand(c *cli.Context) error {
	if err := usageError(c, 1); err != nil {
		return err
	}
	p := tea.NewProgram(newBrowseModel(c.Args().First(), c.String("at")), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
