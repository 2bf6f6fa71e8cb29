// Package tui provides interactive terminal UI components using BubbleTea.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/Theomat/rusync/internal/registry"
)

// ProfilePickerAction represents the action taken in the profile picker.
type ProfilePickerAction int

const (
	// ProfilePickerActionNone means no action was taken (user quit).
	ProfilePickerActionNone ProfilePickerAction = iota
	// ProfilePickerActionSelect means the user confirmed a selection.
	ProfilePickerActionSelect
)

// ProfilePickerResult contains the result of the profile picker interaction.
type ProfilePickerResult struct {
	Action ProfilePickerAction
	// Selected holds the chosen profile names, in registry order.
	Selected []string
}

// profilePickerKeyMap defines the key bindings for the profile picker.
type profilePickerKeyMap struct {
	Up        key.Binding
	Down      key.Binding
	Toggle    key.Binding
	ToggleAll key.Binding
	Confirm   key.Binding
	Help      key.Binding
	Quit      key.Binding
}

func defaultProfilePickerKeyMap() profilePickerKeyMap {
	return profilePickerKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Toggle: key.NewBinding(
			key.WithKeys(" ", "tab"),
			key.WithHelp("space/tab", "toggle"),
		),
		ToggleAll: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "toggle all"),
		),
		Confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "sync selected"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// Styles for the profile picker TUI.
var profilePickerStyles = struct {
	Title    lipgloss.Style
	Help     lipgloss.Style
	Item     lipgloss.Style
	Selected lipgloss.Style
	Scope    lipgloss.Style
	Status   lipgloss.Style
	Preview  lipgloss.Style
}{
	Title:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6")).Padding(0, 1),
	Help:     lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
	Item:     lipgloss.NewStyle().Padding(0, 2),
	Selected: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229")).Background(lipgloss.Color("57")).Padding(0, 2),
	Scope:    lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
	Status:   lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Padding(0, 1),
	Preview:  lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Padding(0, 2),
}

// ProfilePickerModel is the BubbleTea model for choosing profiles to sync.
type ProfilePickerModel struct {
	profiles []registry.Profile
	inScope  map[string]bool
	selected map[string]bool
	cursor   int
	keys     profilePickerKeyMap
	result   ProfilePickerResult
	showHelp bool
	width    int
	height   int
	quitting bool
}

// NewProfilePickerModel creates a picker over the given profiles. Names in
// preselected start checked; they are also marked as in scope.
func NewProfilePickerModel(profiles []registry.Profile, preselected []string) ProfilePickerModel {
	selected := make(map[string]bool, len(preselected))
	inScope := make(map[string]bool, len(preselected))
	for _, name := range preselected {
		selected[name] = true
		inScope[name] = true
	}
	return ProfilePickerModel{
		profiles: profiles,
		inScope:  inScope,
		selected: selected,
		keys:     defaultProfilePickerKeyMap(),
	}
}

// Init implements tea.Model.
func (m ProfilePickerModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m ProfilePickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.showHelp = !m.showHelp
			return m, nil
		case key.Matches(msg, m.keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
			return m, nil
		case key.Matches(msg, m.keys.Down):
			if m.cursor < len(m.profiles)-1 {
				m.cursor++
			}
			return m, nil
		case key.Matches(msg, m.keys.Toggle):
			if len(m.profiles) > 0 {
				name := m.profiles[m.cursor].Name
				m.selected[name] = !m.selected[name]
			}
			return m, nil
		case key.Matches(msg, m.keys.ToggleAll):
			m.toggleAll()
			return m, nil
		case key.Matches(msg, m.keys.Confirm):
			m.result = ProfilePickerResult{
				Action:   ProfilePickerActionSelect,
				Selected: m.selectedNames(),
			}
			m.quitting = true
			return m, tea.Quit
		}
	}

	return m, nil
}

func (m *ProfilePickerModel) toggleAll() {
	all := true
	for _, p := range m.profiles {
		if !m.selected[p.Name] {
			all = false
			break
		}
	}
	for _, p := range m.profiles {
		m.selected[p.Name] = !all
	}
}

// selectedNames returns the checked names in registry order.
func (m ProfilePickerModel) selectedNames() []string {
	var names []string
	for _, p := range m.profiles {
		if m.selected[p.Name] {
			names = append(names, p.Name)
		}
	}
	return names
}

// View implements tea.Model.
func (m ProfilePickerModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(profilePickerStyles.Title.Render("Select profiles to sync"))
	b.WriteString("\n\n")

	scopeBadge := "• " + cases.Title(language.English).String("in scope")
	for i, p := range m.profiles {
		mark := "[ ]"
		if m.selected[p.Name] {
			mark = "[x]"
		}
		line := fmt.Sprintf("%s %s (%s)", mark, p.Name, entryCount(len(p.Entries)))
		if m.inScope[p.Name] {
			line += " " + profilePickerStyles.Scope.Render(scopeBadge)
		}
		if i == m.cursor {
			b.WriteString(profilePickerStyles.Selected.Render("> " + line))
		} else {
			b.WriteString(profilePickerStyles.Item.Render("  " + line))
		}
		b.WriteString("\n")
	}

	if len(m.profiles) > 0 {
		b.WriteString("\n")
		for _, line := range m.entryPreview() {
			b.WriteString(profilePickerStyles.Preview.Render(line))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(profilePickerStyles.Status.Render(
		fmt.Sprintf("%d of %d selected", len(m.selectedNames()), len(m.profiles))))
	b.WriteString("\n")

	if m.showHelp {
		b.WriteString("\n")
		b.WriteString(profilePickerStyles.Help.Render(`Navigation:
  ↑/k      Move up
  ↓/j      Move down

Actions:
  Space    Toggle profile
  a        Toggle all
  Enter    Sync selected

General:
  ?        Toggle full help
  q        Quit`))
	} else {
		keys := []string{"↑/↓ navigate", "space toggle", "a all", "enter sync", "? help", "q quit"}
		hint := strings.Join(wrapText(strings.Join(keys, " • "), m.contentWidth(), 2), "\n")
		b.WriteString(profilePickerStyles.Help.Render(hint))
	}

	return b.String()
}

// previewLines is the fixed height of the entry preview pane.
const previewLines = 3

// entryPreview renders the entries of the profile under the cursor. The
// pane height never changes, so the layout stays put while navigating.
func (m ProfilePickerModel) entryPreview() []string {
	width := m.contentWidth()
	p := m.profiles[m.cursor]

	var lines []string
	for _, e := range p.Entries {
		if len(lines) == previewLines {
			break
		}
		lines = append(lines, truncateText(e.Local+" -> "+e.Remote, width))
	}
	if n := len(p.Entries) - previewLines; n > 0 {
		lines[previewLines-1] = truncateText(fmt.Sprintf("... and %d more", n+1), width)
	}
	return padLines(lines, previewLines)
}

// contentWidth returns the usable inner width, with a default for before
// the first WindowSizeMsg arrives.
func (m ProfilePickerModel) contentWidth() int {
	if m.width <= 4 {
		return 76
	}
	return m.width - 4
}

func entryCount(n int) string {
	if n == 1 {
		return "1 entry"
	}
	return fmt.Sprintf("%d entries", n)
}

// Result returns the result of the user interaction.
func (m ProfilePickerModel) Result() ProfilePickerResult {
	return m.result
}

// RunProfilePicker runs the interactive profile picker and returns the
// chosen profile names.
func RunProfilePicker(profiles []registry.Profile, preselected []string) (ProfilePickerResult, error) {
	model := NewProfilePickerModel(profiles, preselected)
	finalModel, err := tea.NewProgram(model, tea.WithAltScreen()).Run()
	if err != nil {
		return ProfilePickerResult{}, err
	}

	if m, ok := finalModel.(ProfilePickerModel); ok {
		return m.Result(), nil
	}

	return ProfilePickerResult{}, nil
}
