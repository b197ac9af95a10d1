package todo

import "strings"

// FilterMode selects a subsequence of tasks for display.
type FilterMode string

const (
	FilterAll       FilterMode = "all"
	FilterPending   FilterMode = "pending"
	FilterCompleted FilterMode = "completed"
	FilterImportant FilterMode = "important"
	FilterDueDate   FilterMode = "dueDate"
)

// FilterModes lists the modes in menu order.
func FilterModes() []FilterMode {
	return []FilterMode{FilterPending, FilterCompleted, FilterImportant, FilterDueDate, FilterAll}
}

// Label is the human name shown in menus.
func (m FilterMode) Label() string {
	switch m {
	case FilterPending:
		return "pending tasks"
	case FilterCompleted:
		return "completed tasks"
	case FilterImportant:
		return "important tasks"
	case FilterDueDate:
		return "due date tasks"
	default:
		return "show all tasks"
	}
}

// ParseFilterMode maps user input to a mode. Unknown names return
// FilterAll and false.
func ParseFilterMode(s string) (FilterMode, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return FilterAll, true
	case "pending", "todo", "open":
		return FilterPending, true
	case "completed", "done":
		return FilterCompleted, true
	case "important", "starred":
		return FilterImportant, true
	case "duedate", "due", "due-date":
		return FilterDueDate, true
	default:
		return FilterAll, false
	}
}

func (m FilterMode) predicate() func(Task) bool {
	switch m {
	case FilterPending:
		return func(t Task) bool { return !t.Completed }
	case FilterCompleted:
		return func(t Task) bool { return t.Completed }
	case FilterImportant:
		return func(t Task) bool { return t.IsImportant }
	case FilterDueDate:
		return func(t Task) bool { return t.DueDate != nil }
	default:
		return nil
	}
}

// ApplyFilter returns the tasks matching mode in their original order.
// The input is never modified; unknown modes behave like FilterAll.
func ApplyFilter(tasks []Task, mode FilterMode) []Task {
	keep := mode.predicate()
	out := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		if keep == nil || keep(t) {
			out = append(out, t)
		}
	}
	return out
}
