package ui

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/josephgoksu/tasklist/internal/telemetry"
	"github.com/josephgoksu/tasklist/internal/todo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memKV struct {
	mu   sync.Mutex
	data map[string]string
}

func (m *memKV) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memKV) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

type recorder struct {
	mu     sync.Mutex
	events []string
}

func (r *recorder) Track(event string, _ telemetry.Properties) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *recorder) Close() error { return nil }

func newTestModel(t *testing.T, texts ...string) (TaskListModel, *todo.Store, *recorder) {
	t.Helper()
	n := 0
	store := todo.NewStore(&memKV{data: map[string]string{}}, todo.Options{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		Now:    func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) },
		NewID: func() string {
			n++
			return fmt.Sprintf("task-%02d", n)
		},
	})
	store.Initialize(context.Background())
	t.Cleanup(func() { _ = store.Close(context.Background()) })

	for _, text := range texts {
		_, err := store.AddTask(text, nil, todo.DefaultPriority)
		require.NoError(t, err)
	}
	rec := &recorder{}
	return NewTaskList(store, TaskListOptions{Telemetry: rec}), store, rec
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "space":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

func press(m TaskListModel, keys ...string) TaskListModel {
	for _, k := range keys {
		next, _ := m.Update(keyMsg(k))
		m = next.(TaskListModel)
	}
	return m
}

func typeText(m TaskListModel, s string) TaskListModel {
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
	return next.(TaskListModel)
}

func TestTaskList_EmptyView(t *testing.T) {
	m, _, _ := newTestModel(t)
	assert.Contains(t, m.View(), EmptyMessage)
	assert.Equal(t, todo.ModeIdle, m.Mode())
}

func TestTaskList_AddTask(t *testing.T) {
	m, store, rec := newTestModel(t)

	m = press(m, "a")
	require.Equal(t, todo.ModeAddingTask, m.Mode())

	m = typeText(m, "  Buy milk ")
	m = press(m, "tab")
	m = typeText(m, "tomorrow")
	m = press(m, "enter")

	assert.Equal(t, todo.ModeIdle, m.Mode())
	assert.Empty(t, m.Alert())
	tasks := store.Tasks()
	require.Len(t, tasks, 1)
	assert.Equal(t, "Buy milk", tasks[0].Text)
	assert.Equal(t, "2025-06-02", tasks[0].DueLabel())
	assert.Contains(t, m.View(), "Due: 2025-06-02")
	assert.Equal(t, []string{telemetry.EventTaskAdded}, rec.events)
}

func TestTaskList_AddEmptyTextShowsAlert(t *testing.T) {
	m, store, _ := newTestModel(t)

	m = press(m, "a")
	m = typeText(m, "   ")
	m = press(m, "enter")

	assert.Equal(t, todo.ModeAddingTask, m.Mode())
	assert.Equal(t, EmptyTextAlert, m.Alert())
	assert.Zero(t, store.Len())
	assert.Contains(t, m.View(), EmptyTextAlert)

	m = press(m, "esc")
	assert.Equal(t, todo.ModeIdle, m.Mode())
	assert.Empty(t, m.Alert())
}

func TestTaskList_AddBadDueDate(t *testing.T) {
	m, store, _ := newTestModel(t)

	m = press(m, "a")
	m = typeText(m, "Pay rent")
	m = press(m, "tab")
	m = typeText(m, "someday")
	m = press(m, "enter")

	assert.Equal(t, todo.ModeAddingTask, m.Mode())
	assert.NotEmpty(t, m.Alert())
	assert.Zero(t, store.Len())
}

func TestTaskList_SpaceTogglesCompletion(t *testing.T) {
	m, store, rec := newTestModel(t, "one", "two")

	m = press(m, "down", "space")
	task, _ := store.Get("task-02")
	assert.True(t, task.Completed)
	assert.Equal(t, []string{telemetry.EventTaskCompleted}, rec.events)

	press(m, "space")
	task, _ = store.Get("task-02")
	assert.False(t, task.Completed)
}

func TestTaskList_OptionsSheet(t *testing.T) {
	m, store, _ := newTestModel(t, "one", "two")

	m = press(m, "enter")
	require.Equal(t, todo.ModeShowingOptions, m.Mode())
	assert.Contains(t, m.View(), "Mark as Important")

	// Mark as Important
	m = press(m, "enter")
	assert.Equal(t, todo.ModeIdle, m.Mode())
	task, _ := store.Get("task-01")
	assert.True(t, task.IsImportant)

	// Delete Task
	m = press(m, "enter", "down", "down", "enter")
	assert.Equal(t, todo.ModeIdle, m.Mode())
	_, ok := store.Get("task-01")
	assert.False(t, ok)
	assert.Equal(t, 1, store.Len())
	assert.Contains(t, m.View(), "two")
}

func TestTaskList_OptionsDismiss(t *testing.T) {
	m, store, _ := newTestModel(t, "one")

	m = press(m, "enter", "down", "esc")
	assert.Equal(t, todo.ModeIdle, m.Mode())
	task, _ := store.Get("task-01")
	assert.False(t, task.Completed)
}

func TestTaskList_FilterMenu(t *testing.T) {
	m, store, rec := newTestModel(t, "one", "two")
	_, _ = store.ToggleCompleted("task-01")

	m = press(m, "f")
	require.Equal(t, todo.ModeShowingFilterMenu, m.Mode())
	assert.Contains(t, m.View(), "Pending Tasks")
	assert.Contains(t, m.View(), "Show All Tasks")

	// first entry is pending
	m = press(m, "up", "up", "up", "up", "enter")
	assert.Equal(t, todo.FilterPending, m.Filter())
	view := m.View()
	assert.Contains(t, view, "two")
	assert.NotContains(t, view, "one")
	assert.Contains(t, rec.events, telemetry.EventFilterApplied)

	m = press(m, "f", "esc")
	assert.Equal(t, todo.FilterPending, m.Filter())
}

func TestTaskList_FilteredEmpty(t *testing.T) {
	m, _, _ := newTestModel(t, "one")

	m = press(m, "f", "up", "up", "up", "enter") // completed
	assert.Equal(t, todo.FilterCompleted, m.Filter())
	assert.Contains(t, m.View(), "No completed tasks.")
}

func TestTaskList_ConfirmClear(t *testing.T) {
	m, store, rec := newTestModel(t, "one", "two", "three")
	_, _ = store.ToggleCompleted("task-01")
	_, _ = store.ToggleCompleted("task-03")

	m = press(m, "D")
	require.Equal(t, todo.ModeConfirmingClear, m.Mode())
	assert.Contains(t, m.View(), todo.ConfirmClearPrompt)

	m = press(m, "n")
	assert.Equal(t, todo.ModeIdle, m.Mode())
	assert.Equal(t, 3, store.Len())

	m = press(m, "D", "y")
	assert.Equal(t, todo.ModeIdle, m.Mode())
	assert.Equal(t, 1, store.Len())
	assert.Contains(t, rec.events, telemetry.EventTasksCleared)
}

func TestTaskList_CursorClampsAfterDelete(t *testing.T) {
	m, store, _ := newTestModel(t, "one", "two")

	m = press(m, "down", "enter", "down", "down", "enter")
	assert.Equal(t, 1, store.Len())
	assert.Equal(t, 0, m.cursor)
}

func TestTaskList_Quit(t *testing.T) {
	m, _, _ := newTestModel(t)
	_, cmd := m.Update(keyMsg("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestTaskList_TypingQInFormDoesNotQuit(t *testing.T) {
	m, _, _ := newTestModel(t)
	m = press(m, "a")
	next, _ := m.Update(keyMsg("q"))
	m = next.(TaskListModel)
	assert.Equal(t, todo.ModeAddingTask, m.Mode())
}

func TestFilterTitle(t *testing.T) {
	assert.Equal(t, "Due Date Tasks", FilterTitle(todo.FilterDueDate))
	assert.Equal(t, "Show All Tasks", FilterTitle(todo.FilterAll))
}
