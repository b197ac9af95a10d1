package todo

// UIMode is the single screen's current interaction mode.
type UIMode int

const (
	ModeIdle UIMode = iota
	ModeAddingTask
	ModeShowingOptions
	ModeShowingFilterMenu
	ModeConfirmingClear
)

func (m UIMode) String() string {
	switch m {
	case ModeAddingTask:
		return "adding-task"
	case ModeShowingOptions:
		return "showing-options"
	case ModeShowingFilterMenu:
		return "showing-filter-menu"
	case ModeConfirmingClear:
		return "confirming-clear"
	default:
		return "idle"
	}
}

// UIState replaces independent modal flags with one value. A target task
// exists only while the options sheet is open.
type UIState struct {
	mode   UIMode
	target string
}

// Mode returns the current mode.
func (s UIState) Mode() UIMode { return s.mode }

// Target returns the task the options sheet acts on.
func (s UIState) Target() (string, bool) {
	if s.mode != ModeShowingOptions {
		return "", false
	}
	return s.target, true
}

// OpenAddTask enters the add-task form.
func (s *UIState) OpenAddTask() {
	s.mode, s.target = ModeAddingTask, ""
}

// OpenOptions opens the options sheet for one task. An empty id is
// ignored.
func (s *UIState) OpenOptions(id string) {
	if id == "" {
		return
	}
	s.mode, s.target = ModeShowingOptions, id
}

// OpenFilterMenu opens the filter sheet.
func (s *UIState) OpenFilterMenu() {
	s.mode, s.target = ModeShowingFilterMenu, ""
}

// OpenConfirmClear asks for confirmation of the bulk delete.
func (s *UIState) OpenConfirmClear() {
	s.mode, s.target = ModeConfirmingClear, ""
}

// Resolve closes the current sheet after its action ran.
func (s *UIState) Resolve() {
	s.mode, s.target = ModeIdle, ""
}

// Dismiss closes the current sheet without acting.
func (s *UIState) Dismiss() {
	s.mode, s.target = ModeIdle, ""
}
