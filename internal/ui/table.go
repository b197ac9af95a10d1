package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/josephgoksu/tasklist/internal/todo"
)

// Table renders rows in a compact, fixed-width terminal table.
type Table struct {
	Headers  []string
	Rows     [][]string
	MaxWidth int // Max width per column (0 = auto)
}

// ColumnWidths calculates column widths in terminal cells.
func (t *Table) ColumnWidths() []int {
	widths := make([]int, len(t.Headers))
	for i, h := range t.Headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range t.Rows {
		for i, cell := range row {
			if i < len(widths) {
				widths[i] = max(widths[i], lipgloss.Width(cell))
			}
		}
	}
	if t.MaxWidth > 0 {
		for i := range widths {
			widths[i] = min(widths[i], t.MaxWidth)
		}
	}
	return widths
}

// Render outputs the table to a string.
func (t *Table) Render() string {
	if len(t.Headers) == 0 {
		return ""
	}

	widths := t.ColumnWidths()
	var sb strings.Builder

	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(ColorPrimary)
	cellStyle := lipgloss.NewStyle().Foreground(ColorText)
	dimStyle := lipgloss.NewStyle().Foreground(ColorSecondary)

	cells := make([]string, len(t.Headers))
	for i, h := range t.Headers {
		cells[i] = headerStyle.Render(padRight(h, widths[i]))
	}
	sb.WriteString(" " + strings.Join(cells, "  ") + "\n")

	for i, w := range widths {
		cells[i] = dimStyle.Render(strings.Repeat("─", w))
	}
	sb.WriteString(" " + strings.Join(cells, "──") + "\n")

	for _, row := range t.Rows {
		for i := range t.Headers {
			val := ""
			if i < len(row) {
				val = row[i]
			}
			cells[i] = cellStyle.Render(padRight(truncateCells(val, widths[i]), widths[i]))
		}
		sb.WriteString(" " + strings.Join(cells, "  ") + "\n")
	}
	return sb.String()
}

// truncateCells shortens s to width terminal cells, ending with "…".
func truncateCells(s string, width int) string {
	if lipgloss.Width(s) <= width {
		return s
	}
	if width <= 1 {
		return strings.Repeat("…", width)
	}
	runes := []rune(s)
	for len(runes) > 0 && lipgloss.Width(string(runes))+1 > width {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "…"
}

func padRight(s string, width int) string {
	w := lipgloss.Width(s)
	if w >= width {
		return s
	}
	return s + strings.Repeat(" ", width-w)
}

// TruncateID shortens an ID for display (first 8 chars).
func TruncateID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// Marker icons shared by the table and the interactive list.
const (
	IconDone    = "✅"
	IconPending = "⬜"
	IconStar    = "⭐"
)

// TaskTable builds the list table for tasks in display order.
func TaskTable(tasks []todo.Task, maxWidth int) *Table {
	t := &Table{
		Headers:  []string{"ID", "", "", "Task", "Due"},
		MaxWidth: maxWidth,
	}
	for _, task := range tasks {
		done := IconPending
		if task.Completed {
			done = IconDone
		}
		star := ""
		if task.IsImportant {
			star = IconStar
		}
		t.Rows = append(t.Rows, []string{TruncateID(task.ID), done, star, task.Text, task.DueLabel()})
	}
	return t
}

// RenderTaskList renders tasks as a table, or the empty-list message.
func RenderTaskList(tasks []todo.Task, mode todo.FilterMode) string {
	if len(tasks) == 0 {
		if mode == todo.FilterAll {
			return StyleEmpty.Render(EmptyMessage) + "\n"
		}
		return StyleEmpty.Render("No "+mode.Label()+".") + "\n"
	}
	return TaskTable(tasks, 60).Render()
}

// EmptyMessage is shown when the list has no tasks at all.
const EmptyMessage = "No tasks yet. Add some!"
