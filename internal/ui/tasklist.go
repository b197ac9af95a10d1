package ui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/josephgoksu/tasklist/internal/logger"
	"github.com/josephgoksu/tasklist/internal/telemetry"
	"github.com/josephgoksu/tasklist/internal/todo"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// EmptyTextAlert is shown when the add form is submitted without text.
const EmptyTextAlert = "Task cannot be empty!"

const (
	fieldText = iota
	fieldDue
)

type optionAction int

const (
	optionImportant optionAction = iota
	optionCompleted
	optionDelete
)

var titleCaser = cases.Title(language.English)

// FilterTitle is the menu title for a filter mode, e.g. "Pending Tasks".
func FilterTitle(mode todo.FilterMode) string {
	return titleCaser.String(mode.Label())
}

// TaskListOptions configures NewTaskList.
type TaskListOptions struct {
	Filter    todo.FilterMode
	Telemetry telemetry.Client
}

// TaskListModel is the interactive task list screen. All sheet and form
// visibility is driven by a single todo.UIState.
type TaskListModel struct {
	store  *todo.Store
	state  todo.UIState
	filter todo.FilterMode
	track  telemetry.Client

	cursor      int
	sheetCursor int
	inputs      [2]textinput.Model
	focused     int
	alert       string

	keys   keyMap
	help   help.Model
	width  int
	height int
}

// NewTaskList builds the model over an initialized store.
func NewTaskList(store *todo.Store, opts TaskListOptions) TaskListModel {
	text := textinput.New()
	text.Placeholder = "Enter a task"
	text.CharLimit = 280
	text.Width = 50

	due := textinput.New()
	due.Placeholder = "Due date (YYYY-MM-DD, today, tomorrow) - optional"
	due.CharLimit = 32
	due.Width = 50

	track := opts.Telemetry
	if track == nil {
		track = telemetry.NoopClient{}
	}
	filter := opts.Filter
	if filter == "" {
		filter = todo.FilterAll
	}

	return TaskListModel{
		store:  store,
		filter: filter,
		track:  track,
		inputs: [2]textinput.Model{text, due},
		keys:   defaultKeyMap(),
		help:   help.New(),
	}
}

// RunTaskList runs the interactive screen until the user quits.
func RunTaskList(store *todo.Store, opts TaskListOptions) error {
	p := tea.NewProgram(NewTaskList(store, opts), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run task list: %w", err)
	}
	return nil
}

func (m TaskListModel) Init() tea.Cmd {
	return nil
}

// Mode exposes the current UI state mode.
func (m TaskListModel) Mode() todo.UIMode { return m.state.Mode() }

// Filter returns the active filter.
func (m TaskListModel) Filter() todo.FilterMode { return m.filter }

// Alert returns the current alert line, if any.
func (m TaskListModel) Alert() string { return m.alert }

func (m TaskListModel) visible() []todo.Task {
	return m.store.View(m.filter)
}

func (m TaskListModel) selected() (todo.Task, bool) {
	tasks := m.visible()
	if m.cursor < 0 || m.cursor >= len(tasks) {
		return todo.Task{}, false
	}
	return tasks[m.cursor], true
}

func (m *TaskListModel) clampCursor() {
	n := len(m.visible())
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m TaskListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		switch m.state.Mode() {
		case todo.ModeAddingTask:
			return m.updateAddForm(msg)
		case todo.ModeShowingOptions:
			return m.updateOptions(msg), nil
		case todo.ModeShowingFilterMenu:
			return m.updateFilterMenu(msg), nil
		case todo.ModeConfirmingClear:
			return m.updateConfirmClear(msg), nil
		default:
			return m.updateList(msg)
		}
	}

	if m.state.Mode() == todo.ModeAddingTask {
		var cmd tea.Cmd
		m.inputs[m.focused], cmd = m.inputs[m.focused].Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m TaskListModel) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.visible())-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.Toggle):
		if t, ok := m.selected(); ok {
			m.toggleCompleted(t.ID)
		}
	case key.Matches(msg, m.keys.Options):
		if t, ok := m.selected(); ok {
			m.state.OpenOptions(t.ID)
			m.sheetCursor = 0
		}
	case key.Matches(msg, m.keys.Add):
		m.alert = ""
		m.state.OpenAddTask()
		for i := range m.inputs {
			m.inputs[i].Reset()
			m.inputs[i].Blur()
		}
		m.focused = fieldText
		cmd := m.inputs[fieldText].Focus()
		return m, cmd
	case key.Matches(msg, m.keys.Filter):
		m.state.OpenFilterMenu()
		m.sheetCursor = 0
		for i, mode := range todo.FilterModes() {
			if mode == m.filter {
				m.sheetCursor = i
			}
		}
	case key.Matches(msg, m.keys.Clear):
		m.state.OpenConfirmClear()
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, m.keys.Back):
		m.alert = ""
	}
	return m, nil
}

func (m TaskListModel) updateAddForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.state.Dismiss()
		m.alert = ""
		m.inputs[m.focused].Blur()
		return m, nil
	case tea.KeyTab, tea.KeyShiftTab, tea.KeyUp, tea.KeyDown:
		m.inputs[m.focused].Blur()
		m.focused = 1 - m.focused
		cmd := m.inputs[m.focused].Focus()
		return m, cmd
	case tea.KeyEnter:
		return m.submitAdd()
	}

	var cmd tea.Cmd
	m.inputs[m.focused], cmd = m.inputs[m.focused].Update(msg)
	return m, cmd
}

func (m TaskListModel) submitAdd() (tea.Model, tea.Cmd) {
	text := m.inputs[fieldText].Value()
	logger.SetLastInput(text)

	due, err := todo.ParseDueDate(m.inputs[fieldDue].Value(), m.store.Now())
	if err != nil {
		m.alert = err.Error()
		return m.focusField(fieldDue)
	}

	task, err := m.store.AddTask(text, due, todo.DefaultPriority)
	if err != nil {
		var verr *todo.ValidationError
		if errors.As(err, &verr) && verr.Field == "text" {
			m.alert = EmptyTextAlert
		} else {
			m.alert = err.Error()
		}
		return m.focusField(fieldText)
	}

	m.track.Track(telemetry.EventTaskAdded, telemetry.TaskAddedProps(task.HasDueDate(), task.Priority))
	m.alert = ""
	m.inputs[m.focused].Blur()
	m.state.Resolve()
	if tasks := m.visible(); len(tasks) > 0 && tasks[len(tasks)-1].ID == task.ID {
		m.cursor = len(tasks) - 1
	}
	return m, nil
}

func (m TaskListModel) focusField(field int) (tea.Model, tea.Cmd) {
	m.inputs[m.focused].Blur()
	m.focused = field
	cmd := m.inputs[field].Focus()
	return m, cmd
}

func (m TaskListModel) updateOptions(msg tea.KeyMsg) TaskListModel {
	switch {
	case key.Matches(msg, m.keys.Back), key.Matches(msg, m.keys.Quit):
		m.state.Dismiss()
	case key.Matches(msg, m.keys.Up):
		if m.sheetCursor > 0 {
			m.sheetCursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.sheetCursor < int(optionDelete) {
			m.sheetCursor++
		}
	case key.Matches(msg, m.keys.Options):
		id, ok := m.state.Target()
		if !ok {
			m.state.Dismiss()
			break
		}
		switch optionAction(m.sheetCursor) {
		case optionImportant:
			if _, ok := m.store.ToggleImportant(id); ok {
				m.track.Track(telemetry.EventTaskStarred, nil)
			}
		case optionCompleted:
			m.toggleCompleted(id)
		case optionDelete:
			if m.store.DeleteTask(id) {
				m.track.Track(telemetry.EventTaskDeleted, nil)
			}
		}
		m.state.Resolve()
		m.clampCursor()
	}
	return m
}

func (m TaskListModel) updateFilterMenu(msg tea.KeyMsg) TaskListModel {
	modes := todo.FilterModes()
	switch {
	case key.Matches(msg, m.keys.Back), key.Matches(msg, m.keys.Quit):
		m.state.Dismiss()
	case key.Matches(msg, m.keys.Up):
		if m.sheetCursor > 0 {
			m.sheetCursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.sheetCursor < len(modes)-1 {
			m.sheetCursor++
		}
	case key.Matches(msg, m.keys.Options):
		m.filter = modes[m.sheetCursor]
		m.track.Track(telemetry.EventFilterApplied, telemetry.Properties{"filter": string(m.filter)})
		m.state.Resolve()
		m.cursor = 0
	}
	return m
}

func (m TaskListModel) updateConfirmClear(msg tea.KeyMsg) TaskListModel {
	switch msg.String() {
	case "y", "Y", "enter":
		// The sheet itself is the confirmation.
		n, err := m.store.DeleteAllCompleted(todo.ConfirmFunc(func(string) bool { return true }))
		if err == nil && n > 0 {
			m.track.Track(telemetry.EventTasksCleared, telemetry.CountProps(n))
		}
		m.state.Resolve()
		m.clampCursor()
	case "n", "N", "esc", "q":
		m.state.Dismiss()
	}
	return m
}

func (m *TaskListModel) toggleCompleted(id string) {
	if t, ok := m.store.ToggleCompleted(id); ok && t.Completed {
		m.track.Track(telemetry.EventTaskCompleted, nil)
	}
	m.clampCursor()
}

func (m TaskListModel) View() string {
	var sb strings.Builder

	title := "To-Do"
	if m.filter != todo.FilterAll {
		title += StyleSubtle.Render("  ·  " + FilterTitle(m.filter))
	}
	sb.WriteString("\n" + StyleHeader.Render(title) + "\n\n")

	tasks := m.visible()
	if len(tasks) == 0 {
		if m.store.Len() == 0 {
			sb.WriteString(StyleEmpty.Render(EmptyMessage) + "\n")
		} else {
			sb.WriteString(StyleEmpty.Render("No "+m.filter.Label()+".") + "\n")
		}
	}
	for i, t := range tasks {
		sb.WriteString(m.renderRow(t, i == m.cursor) + "\n")
	}

	if sheet := m.renderSheet(); sheet != "" {
		sb.WriteString("\n" + sheet + "\n")
	}
	if m.alert != "" {
		sb.WriteString("\n" + StyleAlert.Render("⚠ "+m.alert) + "\n")
	}
	if perr := m.store.LastPersistError(); perr != nil {
		sb.WriteString("\n" + StyleWarning.Render("Changes not saved: "+perr.Error()) + "\n")
	}

	sb.WriteString("\n" + m.help.View(m.keys) + "\n")
	return sb.String()
}

func (m TaskListModel) renderRow(t todo.Task, selected bool) string {
	cursor := "  "
	if selected {
		cursor = StylePrimary.Render("▶ ")
	}

	star := "  "
	if t.IsImportant {
		star = StyleTaskStar.Render(IconStar)
	}
	box := IconPending
	if t.Completed {
		box = IconDone
	}

	text := StyleText.Render(t.Text)
	switch {
	case t.Completed:
		text = StyleTaskDone.Render(t.Text)
	case selected:
		text = StyleTaskSelected.Render(t.Text)
	}

	row := fmt.Sprintf("%s%s %s %s", cursor, box, star, text)
	if t.HasDueDate() {
		row += StyleTaskDue.Render("  Due: " + t.DueLabel())
	}
	return row
}

func (m TaskListModel) renderSheet() string {
	switch m.state.Mode() {
	case todo.ModeAddingTask:
		body := StyleTitle.Render("New task") + "\n" +
			m.inputs[fieldText].View() + "\n" +
			m.inputs[fieldDue].View() + "\n" +
			StyleSubtle.Render("tab switch field • enter add • esc cancel")
		return StyleInputBox.Render(body)

	case todo.ModeShowingOptions:
		id, _ := m.state.Target()
		t, ok := m.store.Get(id)
		if !ok {
			return ""
		}
		important := "Mark as Important"
		if t.IsImportant {
			important = "Unmark as Important"
		}
		completed := "Mark as Completed"
		if t.Completed {
			completed = "Mark as Pending"
		}
		return StyleSheet.Render(menu([]string{important, completed, "Delete Task"}, m.sheetCursor))

	case todo.ModeShowingFilterMenu:
		modes := todo.FilterModes()
		items := make([]string, len(modes))
		for i, mode := range modes {
			items[i] = FilterTitle(mode)
		}
		return StyleSheet.Render(menu(items, m.sheetCursor))

	case todo.ModeConfirmingClear:
		body := lipgloss.JoinVertical(lipgloss.Left,
			StyleWarning.Bold(true).Render("Confirm Delete"),
			todo.ConfirmClearPrompt,
			StyleSubtle.Render("y delete • n cancel"),
		)
		return StyleConfirmSheet.Render(body)
	}
	return ""
}

func menu(items []string, cursor int) string {
	lines := make([]string, len(items))
	for i, item := range items {
		if i == cursor {
			lines[i] = StylePrimary.Render("▶ " + item)
		} else {
			lines[i] = "  " + item
		}
	}
	return strings.Join(lines, "\n")
}
