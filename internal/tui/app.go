package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pdxmph/todo-tui/internal/tasks"
)

// Which list the cursor is in
type section int

const (
	sectionActive section = iota
	sectionCompleted
)

const emptyTextAlert = "Task description cannot be empty."

// Model represents the main application state
type Model struct {
	store    *tasks.Store
	selected int
	section  section
	width    int
	height   int

	// Text field shared by add and update
	inputMode bool
	input     textinput.Model

	// Blocking alert, dismissed by any key
	alert string

	// Delete confirmation mode
	deleteConfirmMode bool
	deleteTaskID      string
	deleteTaskText    string
}

// Styles
var (
	headingStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("230"))

	subHeadingStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("252"))

	selectedStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("62")).
			Foreground(lipgloss.Color("230"))

	completedStyle = lipgloss.NewStyle().
			Strikethrough(true).
			Foreground(lipgloss.Color("34")) // green

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	buttonStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("25")).
			Padding(0, 1)

	borderStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("240"))
)

// New creates a new application model around a loaded store
func New(store *tasks.Store) Model {
	ti := textinput.New()
	ti.Placeholder = "Enter new task"
	ti.Width = 40
	ti.CharLimit = 500
	ti.Prompt = "> "
	ti.TextStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("230"))
	ti.PromptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	ti.PlaceholderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))

	return Model{
		store: store,
		input: ti,
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.width > 20 {
			m.input.Width = m.width - 20
		}
		return m, nil

	case tea.KeyMsg:
		if m.alert != "" {
			m.alert = ""
			return m, nil
		}

		if m.deleteConfirmMode {
			return m.updateDeleteConfirm(msg.String())
		}

		if m.inputMode {
			return m.updateInput(msg)
		}

		return m.updateList(msg.String())
	}

	return m, nil
}

func (m Model) updateDeleteConfirm(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "y", "Y":
		m.store.Delete(m.deleteTaskID)
		m.selected = m.ensureValidSelection()
	}
	// Any other key cancels
	m.deleteConfirmMode = false
	m.deleteTaskID = ""
	m.deleteTaskText = ""
	return m, nil
}

func (m Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		err := m.store.Submit(m.input.Value())
		if errors.Is(err, tasks.ErrEmptyText) {
			m.alert = emptyTextAlert
			return m, nil
		}
		if err != nil {
			m.alert = err.Error()
			return m, nil
		}
		m.input.Reset()
		m.input.Blur()
		m.inputMode = false
		m.section = sectionActive
		m.selected = m.ensureValidSelection()
		return m, nil

	case "esc":
		// Leaves the field; an edit in progress stays pending until submitted
		m.input.Blur()
		m.inputMode = false
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) updateList(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "q", "ctrl+c":
		return m, tea.Quit

	case "j", "down":
		if m.selected < len(m.currentList())-1 {
			m.selected++
		}

	case "k", "up":
		if m.selected > 0 {
			m.selected--
		}

	case "tab":
		if m.store.Mode() == tasks.ModeSplit {
			if m.section == sectionActive && len(m.store.CompletedTasks()) > 0 {
				m.section = sectionCompleted
			} else {
				m.section = sectionActive
			}
			m.selected = m.ensureValidSelection()
		}

	case "a", "i":
		m.inputMode = true
		m.input.Focus()
		return m, textinput.Blink

	case "e":
		task, ok := m.selectedTask()
		if !ok || m.section != sectionActive {
			return m, nil
		}
		m.input.SetValue(m.store.Edit(task))
		m.input.CursorEnd()
		m.inputMode = true
		m.input.Focus()
		return m, textinput.Blink

	case " ", "space", "x", "enter":
		task, ok := m.selectedTask()
		if !ok || m.section != sectionActive {
			return m, nil
		}
		m.store.ToggleOrComplete(task.ID)
		m.selected = m.ensureValidSelection()

	case "d":
		task, ok := m.selectedTask()
		if !ok {
			return m, nil
		}
		if m.section == sectionCompleted {
			// Completed tasks go without a prompt
			m.store.DeleteCompleted(task.ID)
			if len(m.store.CompletedTasks()) == 0 {
				m.section = sectionActive
			}
			m.selected = m.ensureValidSelection()
			return m, nil
		}
		m.deleteConfirmMode = true
		m.deleteTaskID = task.ID
		m.deleteTaskText = task.Text
	}

	return m, nil
}

// currentList returns the tasks of the section holding the cursor
func (m Model) currentList() []tasks.Task {
	if m.section == sectionCompleted {
		return m.store.CompletedTasks()
	}
	return m.store.Tasks()
}

func (m Model) selectedTask() (tasks.Task, bool) {
	list := m.currentList()
	if len(list) == 0 || m.selected >= len(list) {
		return tasks.Task{}, false
	}
	return list[m.selected], true
}

// ensureValidSelection ensures the current selection is within bounds
func (m Model) ensureValidSelection() int {
	list := m.currentList()
	if len(list) == 0 {
		return 0
	}
	if m.selected >= len(list) {
		return len(list) - 1
	}
	if m.selected < 0 {
		return 0
	}
	return m.selected
}

// View renders the UI
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	if m.alert != "" {
		return m.renderDialog("Validation", m.alert, "press any key")
	}

	if m.deleteConfirmMode {
		return m.renderDialog("Confirm Delete",
			fmt.Sprintf("Are you sure you want to delete '%s'?", m.deleteTaskText),
			"y: delete • any other key: cancel")
	}

	var lines []string
	lines = append(lines, headingStyle.Render("Todo List"), "")
	lines = append(lines, m.renderInput(), "")
	lines = append(lines, m.renderTasks()...)

	if m.store.Mode() == tasks.ModeSplit {
		if done := m.store.CompletedTasks(); len(done) > 0 {
			lines = append(lines, "")
			lines = append(lines, m.renderCompleted(done)...)
		}
	}

	content := borderStyle.
		Width(m.width - 2).
		Height(m.height - 3).
		Render(strings.Join(lines, "\n"))

	return lipgloss.JoinVertical(lipgloss.Left, content, m.renderHelp())
}

func (m Model) renderInput() string {
	label := "Add Task"
	if _, editing := m.store.Editing(); editing {
		label = "Update Task"
	}
	return m.input.View() + "  " + buttonStyle.Render(label)
}

func (m Model) renderTasks() []string {
	list := m.store.Tasks()
	if len(list) == 0 {
		return []string{mutedStyle.Render("No tasks available")}
	}

	title := "Active Tasks"
	if m.store.Mode() == tasks.ModeInPlace {
		title = "Tasks"
	}
	lines := []string{subHeadingStyle.Render(fmt.Sprintf("%s (%d)", title, len(list)))}

	editingID, editing := m.store.Editing()
	for i, t := range list {
		line := "  " + t.Text
		if m.store.Mode() == tasks.ModeInPlace {
			box := "[ ] "
			if t.Completed {
				box = "[x] "
			}
			line = "  " + box + t.Text
		}
		if editing && t.ID == editingID {
			line += mutedStyle.Render(" (editing)")
		}

		switch {
		case m.section == sectionActive && i == m.selected && !m.inputMode:
			line = selectedStyle.Render(line)
		case t.Completed:
			line = completedStyle.Render(line)
		}
		lines = append(lines, line)
	}
	return lines
}

func (m Model) renderCompleted(done []tasks.Task) []string {
	lines := []string{subHeadingStyle.Render(fmt.Sprintf("Done Tasks (%d)", len(done)))}
	for i, t := range done {
		line := "  " + t.Text
		if m.section == sectionCompleted && i == m.selected && !m.inputMode {
			line = selectedStyle.Render(line)
		} else {
			line = completedStyle.Render(line)
		}
		lines = append(lines, line)
	}
	return lines
}

// renderHelp renders the help line
func (m Model) renderHelp() string {
	if m.inputMode {
		return " Type task • Enter: save • Esc: leave field"
	}

	help := " j/k: navigate • a: add • e: edit • d: delete"
	if m.store.Mode() == tasks.ModeInPlace {
		help += " • space: toggle"
	} else {
		help += " • space: done • tab: switch list"
	}
	return help + " • q: quit"
}

// renderDialog renders a centered box over the whole screen
func (m Model) renderDialog(title, body, hint string) string {
	width := 60
	height := 7

	content := lipgloss.NewStyle().
		Width(width-4).
		Height(height-4).
		Align(lipgloss.Center, lipgloss.Center).
		Render(subHeadingStyle.Render(title) + "\n\n" + body + "\n" + mutedStyle.Render(hint))

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("63")).
		Width(width).
		Height(height).
		Render(content)

	// Center on screen
	return lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		Align(lipgloss.Center, lipgloss.Center).
		Render(box)
}
