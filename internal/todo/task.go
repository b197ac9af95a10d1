// Package todo holds the task list core: the Task model, the in-memory
// Task Store with write-through persistence, the filter engine and the
// explicit UI selection state consumed by the presentation layers.
package todo

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// DefaultPriority is assigned when a caller passes no usable priority.
const DefaultPriority = 1

// DueDateLayout is the calendar layout new due dates are stored in.
const DueDateLayout = "2006-01-02"

// Task is a single to-do item. JSON field names are the persisted format.
type Task struct {
	ID          string  `json:"id" validate:"required"`
	Text        string  `json:"text" validate:"required,notblank"`
	Completed   bool    `json:"completed"`
	Priority    int     `json:"priority" validate:"min=1"`
	DueDate     *string `json:"dueDate"`
	IsImportant bool    `json:"isImportant"`
}

// HasDueDate reports whether the task carries a due date.
func (t Task) HasDueDate() bool {
	return t.DueDate != nil
}

// DueLabel returns the due date for display, or "" when absent.
func (t Task) DueLabel() string {
	if t.DueDate == nil {
		return ""
	}
	return *t.DueDate
}

var validate *validator.Validate

func init() {
	validate = validator.New()
	_ = validate.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
}

// validateTask converts validator failures into a ValidationError on the
// first offending field.
func validateTask(t Task) error {
	err := validate.Struct(t)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok || len(verrs) == 0 {
		return &ValidationError{Field: "task", Reason: err.Error()}
	}
	e := verrs[0]
	field := strings.ToLower(e.Field()[:1]) + e.Field()[1:]
	switch e.Tag() {
	case "required", "notblank":
		return &ValidationError{Field: field, Reason: "cannot be empty"}
	default:
		return &ValidationError{Field: field, Reason: fmt.Sprintf("failed rule %q", e.Tag())}
	}
}

// ParseDueDate normalizes user input into the stored due date form.
// Empty input means "no due date" and returns nil.
func ParseDueDate(input string, now time.Time) (*string, error) {
	s := strings.TrimSpace(strings.ToLower(input))
	if s == "" || s == "none" {
		return nil, nil
	}

	var d time.Time
	switch s {
	case "today":
		d = now
	case "tomorrow":
		d = now.AddDate(0, 0, 1)
	default:
		var err error
		d, err = parseDateLayouts(s)
		if err != nil {
			return nil, &ValidationError{Field: "dueDate", Reason: fmt.Sprintf("unrecognised date %q", input)}
		}
	}

	out := d.Format(DueDateLayout)
	return &out, nil
}

var dueDateLayouts = []string{
	DueDateLayout,
	"01/02/2006",
	"1/2/2006",
	"2006/01/02",
}

func parseDateLayouts(s string) (time.Time, error) {
	var lastErr error
	for _, layout := range dueDateLayouts {
		d, err := time.ParseInLocation(layout, s, time.Local)
		if err == nil {
			return d, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

// EncodeTasks serializes a list in the persisted wire format.
// A nil list is written as an empty array.
func EncodeTasks(tasks []Task) (string, error) {
	if tasks == nil {
		tasks = []Task{}
	}
	data, err := json.Marshal(tasks)
	if err != nil {
		return "", fmt.Errorf("encode tasks: %w", err)
	}
	return string(data), nil
}

// DecodeTasks parses the persisted wire format. Records that fail
// validation, and repeats of an id already seen, are dropped so one bad
// entry cannot hide the rest.
func DecodeTasks(raw string) ([]Task, error) {
	var tasks []Task
	if err := json.Unmarshal([]byte(raw), &tasks); err != nil {
		return nil, fmt.Errorf("decode tasks: %w", err)
	}

	seen := make(map[string]struct{}, len(tasks))
	out := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		if t.Priority < 1 {
			t.Priority = DefaultPriority
		}
		if validateTask(t) != nil {
			continue
		}
		if _, dup := seen[t.ID]; dup {
			continue
		}
		seen[t.ID] = struct{}{}
		out = append(out, t)
	}
	return out, nil
}
