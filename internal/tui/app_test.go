package tui

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/pdxmph/todo-tui/internal/tasks"
)

func newTestModel(t *testing.T, mode tasks.Mode) (Model, *tasks.Store) {
	t.Helper()
	store := tasks.NewStore(tasks.NewMemoryBackend(), tasks.WithMode(mode))
	t.Cleanup(func() { _ = store.Close(context.Background()) })

	m, _ := New(store).Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return m.(Model), store
}

func press(m Model, keys ...string) Model {
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		case "tab":
			msg = tea.KeyMsg{Type: tea.KeyTab}
		case " ":
			msg = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		next, _ := m.Update(msg)
		m = next.(Model)
	}
	return m
}

func TestAddTask(t *testing.T) {
	m, store := newTestModel(t, tasks.ModeSplit)

	m = press(m, "a", "buy milk", "enter")

	got := store.Tasks()
	if len(got) != 1 || got[0].Text != "buy milk" {
		t.Fatalf("tasks = %+v", got)
	}
	if m.inputMode || m.input.Value() != "" {
		t.Fatalf("input should be cleared and left after submit")
	}
	if !strings.Contains(m.View(), "Active Tasks (1)") {
		t.Fatalf("view missing active list:\n%s", m.View())
	}
}

func TestEmptyTaskShowsAlert(t *testing.T) {
	m, store := newTestModel(t, tasks.ModeSplit)

	m = press(m, "a", "   ", "enter")

	if store.Len() != 0 {
		t.Fatalf("blank task was added")
	}
	if m.alert != emptyTextAlert {
		t.Fatalf("alert = %q", m.alert)
	}
	if !strings.Contains(m.View(), emptyTextAlert) {
		t.Fatalf("alert not rendered")
	}

	// Any key dismisses, input stays open
	m = press(m, "z")
	if m.alert != "" || !m.inputMode {
		t.Fatalf("alert=%q inputMode=%v", m.alert, m.inputMode)
	}
}

func TestEditTask(t *testing.T) {
	m, store := newTestModel(t, tasks.ModeSplit)
	m = press(m, "a", "draft", "enter")

	m = press(m, "e")
	if m.input.Value() != "draft" {
		t.Fatalf("input not pre-filled: %q", m.input.Value())
	}
	if !strings.Contains(m.View(), "Update Task") {
		t.Fatalf("button should read Update Task")
	}

	m = press(m, "!", "enter")
	if got := store.Tasks(); len(got) != 1 || got[0].Text != "draft!" {
		t.Fatalf("tasks = %+v", got)
	}
	if _, editing := store.Editing(); editing {
		t.Fatalf("still editing after submit")
	}
}

func TestEscKeepsEditPending(t *testing.T) {
	m, store := newTestModel(t, tasks.ModeSplit)
	m = press(m, "a", "draft", "enter", "e", "esc")

	if m.inputMode {
		t.Fatalf("esc should leave the input")
	}
	if _, editing := store.Editing(); !editing {
		t.Fatalf("esc must not cancel the edit")
	}

	m = press(m, "a", "enter")
	if got := store.Tasks(); len(got) != 1 || got[0].Text != "draft" {
		t.Fatalf("expected update, not add: %+v", got)
	}
}

func TestDeleteNeedsConfirmation(t *testing.T) {
	m, store := newTestModel(t, tasks.ModeSplit)
	m = press(m, "a", "keep", "enter", "a", "drop", "enter")

	m = press(m, "j", "d")
	if !m.deleteConfirmMode || store.Len() != 2 {
		t.Fatalf("delete should wait for confirmation")
	}
	if !strings.Contains(m.View(), "drop") {
		t.Fatalf("confirmation should name the task")
	}

	m = press(m, "n")
	if m.deleteConfirmMode || store.Len() != 2 {
		t.Fatalf("cancel should keep the task")
	}

	m = press(m, "d", "y")
	got := store.Tasks()
	if len(got) != 1 || got[0].Text != "keep" {
		t.Fatalf("tasks = %+v", got)
	}
	if m.selected != 0 {
		t.Fatalf("selection not clamped: %d", m.selected)
	}
}

func TestCompleteAndDeleteDoneTask(t *testing.T) {
	m, store := newTestModel(t, tasks.ModeSplit)
	m = press(m, "a", "one", "enter", "a", "two", "enter")

	m = press(m, " ")
	if len(store.Tasks()) != 1 || len(store.CompletedTasks()) != 1 {
		t.Fatalf("expected one task moved to done")
	}
	if !strings.Contains(m.View(), "Done Tasks (1)") {
		t.Fatalf("done list not rendered:\n%s", m.View())
	}

	// Done tasks delete without a prompt
	m = press(m, "tab", "d")
	if m.deleteConfirmMode {
		t.Fatalf("done tasks should not prompt")
	}
	if len(store.CompletedTasks()) != 0 || len(store.Tasks()) != 1 {
		t.Fatalf("unexpected lists %+v %+v", store.Tasks(), store.CompletedTasks())
	}
	if m.section != sectionActive {
		t.Fatalf("cursor should return to active list once done list is empty")
	}
}

func TestToggleInPlace(t *testing.T) {
	m, store := newTestModel(t, tasks.ModeInPlace)
	m = press(m, "a", "one", "enter")

	m = press(m, "x")
	if got := store.Tasks(); len(got) != 1 || !got[0].Completed {
		t.Fatalf("tasks = %+v", got)
	}
	if !strings.Contains(m.View(), "[x] one") {
		t.Fatalf("checkbox not rendered:\n%s", m.View())
	}

	m = press(m, "x")
	if store.Tasks()[0].Completed {
		t.Fatalf("second toggle should clear the flag")
	}
}

func TestEmptyListMessage(t *testing.T) {
	m, _ := newTestModel(t, tasks.ModeSplit)
	if !strings.Contains(m.View(), "No tasks available") {
		t.Fatalf("view:\n%s", m.View())
	}
}

func TestQuit(t *testing.T) {
	m, _ := newTestModel(t, tasks.ModeSplit)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatalf("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("expected tea.QuitMsg")
	}
}
