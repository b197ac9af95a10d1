package telemetry

// Event names. Properties never carry task text or ids.
const (
	EventCommandExecuted = "command_executed"
	EventCommandError    = "command_error"
	EventTaskAdded       = "task_added"
	EventTaskCompleted   = "task_completed"
	EventTaskStarred     = "task_starred"
	EventTaskDeleted     = "task_deleted"
	EventTasksCleared    = "tasks_cleared"
	EventFilterApplied   = "filter_applied"
	EventTasksExported   = "tasks_exported"
	EventSessionStart    = "session_start"
)

// Properties is the property bag attached to an event.
type Properties = map[string]any

// CommandProps describes a finished CLI command.
func CommandProps(command string, durationMs int64, storage string) Properties {
	return Properties{
		"command":     command,
		"duration_ms": durationMs,
		"storage":     storage,
	}
}

// ErrorProps classifies a failure by kind only.
func ErrorProps(command, kind string) Properties {
	return Properties{
		"command":    command,
		"error_kind": kind,
	}
}

// TaskAddedProps reports whether optional fields were supplied.
func TaskAddedProps(hasDueDate bool, priority int) Properties {
	return Properties{
		"has_due_date": hasDueDate,
		"priority":     priority,
	}
}

// CountProps carries a single count, e.g. tasks removed by clear.
func CountProps(count int) Properties {
	return Properties{"count": count}
}
