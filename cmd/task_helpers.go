package cmd

import (
	"fmt"
	"io"

	"github.com/josephgoksu/tasklist/internal/todo"
	"github.com/josephgoksu/tasklist/internal/ui"
)

// printTask reports a single task the way the output flags ask for:
// JSON, the bare id, or a one-line summary prefixed with verb.
func printTask(w io.Writer, verb string, t todo.Task) error {
	switch {
	case isJSON():
		return printJSON(w, t)
	case isQuiet():
		_, err := fmt.Fprintln(w, t.ID)
		return err
	}
	_, err := fmt.Fprintf(w, "%s %s\n", verb, taskLine(t))
	return err
}

// taskLine is the one-line form: checkbox, star, short id, text, due date.
func taskLine(t todo.Task) string {
	icon := ui.IconPending
	if t.Completed {
		icon = ui.IconDone
	}
	line := fmt.Sprintf("%s %s %q", icon, ui.TruncateID(t.ID), t.Text)
	if t.IsImportant {
		line += " " + ui.IconStar
	}
	if t.HasDueDate() {
		line += " (due " + t.DueLabel() + ")"
	}
	return line
}

// toggleTask resolves arg and applies toggle to the matching task.
func toggleTask(s *session, arg string, toggle func(string) (todo.Task, bool)) (todo.Task, error) {
	t, err := s.resolveTask(arg)
	if err != nil {
		return todo.Task{}, err
	}
	updated, ok := toggle(t.ID)
	if !ok {
		return todo.Task{}, fmt.Errorf("task %s: %w", t.ID, todo.ErrNotFound)
	}
	return updated, nil
}
