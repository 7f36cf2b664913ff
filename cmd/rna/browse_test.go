package main

import (
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func loadedBrowser(t *testing.T) *browseModel {
	t.Helper()
	m := newBrowseModel("point.yaml", "")
	m.Update(snapshotMsg{snap: pointSnapshot(t)})
	require.Equal(t, []string{"Inner", "Point"}, m.names)
	return m
}

func TestBrowse_Keys(t *testing.T) {
	tests := []struct {
		name     string
		keys     []tea.KeyMsg
		state    browseState
		selected int
		names    []string
		filter   string
	}{
		{
			name:  "initial",
			state: stateSelectEntity,
			names: []string{"Inner", "Point"},
		},
		{
			name:     "down moves selection",
			keys:     []tea.KeyMsg{{Type: tea.KeyDown}},
			state:    stateSelectEntity,
			selected: 1,
			names:    []string{"Inner", "Point"},
		},
		{
			name:     "selection stops at last entity",
			keys:     []tea.KeyMsg{runes("j"), runes("j"), runes("j")},
			state:    stateSelectEntity,
			selected: 1,
			names:    []string{"Inner", "Point"},
		},
		{
			name:  "up at top stays",
			keys:  []tea.KeyMsg{runes("k")},
			state: stateSelectEntity,
			names: []string{"Inner", "Point"},
		},
		{
			name:   "slash enters filter",
			keys:   []tea.KeyMsg{runes("/")},
			state:  stateFilter,
			names:  []string{"Inner", "Point"},
			filter: "",
		},
		{
			name:   "typing narrows the list",
			keys:   []tea.KeyMsg{runes("/"), runes("p"), runes("o")},
			state:  stateFilter,
			names:  []string{"Point"},
			filter: "po",
		},
		{
			name:   "q is text while filtering",
			keys:   []tea.KeyMsg{runes("/"), runes("q")},
			state:  stateFilter,
			names:  []string{},
			filter: "q",
		},
		{
			name:   "enter leaves filter and keeps it",
			keys:   []tea.KeyMsg{runes("/"), runes("in"), {Type: tea.KeyEnter}},
			state:  stateSelectEntity,
			names:  []string{"Inner", "Point"},
			filter: "in",
		},
		{
			name:  "esc clears the filter",
			keys:  []tea.KeyMsg{runes("/"), runes("inn"), {Type: tea.KeyEnter}, {Type: tea.KeyEsc}},
			state: stateSelectEntity,
			names: []string{"Inner", "Point"},
		},
		{
			name:     "enter shows the entity",
			keys:     []tea.KeyMsg{{Type: tea.KeyDown}, {Type: tea.KeyEnter}},
			state:    stateShowEntity,
			selected: 1,
			names:    []string{"Inner", "Point"},
		},
		{
			name:     "esc returns to the list",
			keys:     []tea.KeyMsg{{Type: tea.KeyDown}, {Type: tea.KeyEnter}, {Type: tea.KeyEsc}},
			state:    stateSelectEntity,
			selected: 1,
			names:    []string{"Inner", "Point"},
		},
		{
			name:  "movement ignored while showing",
			keys:  []tea.KeyMsg{{Type: tea.KeyEnter}, {Type: tea.KeyDown}},
			state: stateShowEntity,
			names: []string{"Inner", "Point"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := loadedBrowser(t)
			for _, k := range tt.keys {
				m.Update(k)
			}
			assert.Equal(t, tt.state, m.state)
			assert.Equal(t, tt.selected, m.selected)
			assert.Equal(t, tt.names, append([]string{}, m.names...))
			assert.Equal(t, tt.filter, m.filter.Value())
		})
	}
}

func TestBrowse_Quit(t *testing.T) {
	m := loadedBrowser(t)
	_, cmd := m.Update(runes("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestBrowse_View(t *testing.T) {
	m := newBrowseModel("point.yaml", "")
	assert.Equal(t, "Loading schema...", m.View())

	m.Update(snapshotMsg{err: errors.New("boom")})
	assert.Contains(t, m.View(), "boom")

	m = loadedBrowser(t)
	m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	view := m.View()
	assert.Contains(t, view, "Point")
	assert.Contains(t, view, "esc back")
}
