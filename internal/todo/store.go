package todo

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultKey is the persistent slot holding the serialized task list.
const DefaultKey = "tasks"

// ConfirmClearPrompt is the question put to the Confirmer by
// DeleteAllCompleted.
const ConfirmClearPrompt = "Are you sure you want to delete all completed tasks?"

// KV is the persistent key-value slot the store mirrors its list into.
type KV interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// Confirmer asks the user to approve a destructive action.
type Confirmer interface {
	Confirm(prompt string) bool
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(prompt string) bool

// Confirm calls f.
func (f ConfirmFunc) Confirm(prompt string) bool { return f(prompt) }

// Options configures a Store.
type Options struct {
	// Key overrides DefaultKey.
	Key string
	// Logger receives persistence failures. Defaults to slog.Default().
	Logger *slog.Logger
	// Now is the clock used for due date keywords.
	Now func() time.Time
	// NewID generates task ids. Defaults to uuid v4.
	NewID func() string
	// WriteTimeout bounds a single persistence write.
	WriteTimeout time.Duration
}

// Store owns the canonical task list. Mutations update memory first and
// hand a snapshot to a background writer; callers never wait on I/O.
type Store struct {
	kv     KV
	key    string
	log    *slog.Logger
	now    func() time.Time
	newID  func() string
	writer *writer

	mu    sync.RWMutex
	tasks []Task
}

// NewStore creates a store over kv and starts its persistence writer.
// Call Initialize to load the persisted list and Close to stop.
func NewStore(kv KV, opts Options) *Store {
	s := &Store{
		kv:    kv,
		key:   opts.Key,
		log:   opts.Logger,
		now:   opts.Now,
		newID: opts.NewID,
		tasks: []Task{},
	}
	if s.key == "" {
		s.key = DefaultKey
	}
	if s.log == nil {
		s.log = slog.Default()
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.newID == nil {
		s.newID = func() string { return uuid.New().String() }
	}
	timeout := opts.WriteTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	s.writer = newWriter(kv, s.key, timeout, s.log)
	return s
}

// Initialize loads the persisted list. Absent data, read failures and
// undecodable data all leave an empty list; failures are logged and
// recorded in LastPersistError, never returned.
func (s *Store) Initialize(ctx context.Context) {
	raw, ok, err := s.kv.Get(ctx, s.key)
	if err != nil {
		perr := &PersistenceError{Op: OpRead, Key: s.key, Err: err}
		s.writer.record(perr)
		s.log.Warn("load tasks failed, starting empty", "key", s.key, "error", err)
		return
	}
	if !ok || strings.TrimSpace(raw) == "" {
		s.log.Debug("no persisted tasks", "key", s.key)
		return
	}

	tasks, err := DecodeTasks(raw)
	if err != nil {
		perr := &PersistenceError{Op: OpRead, Key: s.key, Err: err}
		s.writer.record(perr)
		s.log.Warn("persisted tasks unreadable, starting empty", "key", s.key, "error", err)
		return
	}

	s.mu.Lock()
	s.tasks = tasks
	s.mu.Unlock()
	s.log.Debug("tasks loaded", "key", s.key, "count", len(tasks))
}

// AddTask appends a new task. Empty or whitespace-only text fails with a
// ValidationError and leaves the list unchanged.
func (s *Store) AddTask(rawText string, dueDate *string, priority int) (Task, error) {
	text := strings.TrimSpace(rawText)
	if text == "" {
		return Task{}, &ValidationError{Field: "text", Reason: "task cannot be empty"}
	}
	if priority < 1 {
		priority = DefaultPriority
	}

	var due *string
	if dueDate != nil {
		d := strings.TrimSpace(*dueDate)
		if d != "" {
			due = &d
		}
	}

	s.mu.Lock()
	t := Task{
		ID:       s.uniqueIDLocked(),
		Text:     text,
		Priority: priority,
		DueDate:  due,
	}
	if err := validateTask(t); err != nil {
		s.mu.Unlock()
		return Task{}, err
	}
	s.tasks = append(s.tasks, t)
	s.persistLocked()
	s.mu.Unlock()
	return t, nil
}

// uniqueIDLocked draws ids until one is unused. Callers hold mu.
func (s *Store) uniqueIDLocked() string {
	for {
		id := s.newID()
		if id != "" && s.indexLocked(id) < 0 {
			return id
		}
	}
}

// ToggleCompleted flips the completed flag. The bool is false when no task
// has the id; nothing is persisted in that case.
func (s *Store) ToggleCompleted(id string) (Task, bool) {
	return s.update(id, func(t *Task) { t.Completed = !t.Completed })
}

// ToggleImportant flips the important flag, like ToggleCompleted.
func (s *Store) ToggleImportant(id string) (Task, bool) {
	return s.update(id, func(t *Task) { t.IsImportant = !t.IsImportant })
}

func (s *Store) update(id string, fn func(*Task)) (Task, bool) {
	s.mu.Lock()
	i := s.indexLocked(id)
	if i < 0 {
		s.mu.Unlock()
		return Task{}, false
	}
	fn(&s.tasks[i])
	t := s.tasks[i]
	s.persistLocked()
	s.mu.Unlock()
	return t, true
}

// DeleteTask removes the task with id. Unknown ids are a no-op.
func (s *Store) DeleteTask(id string) bool {
	s.mu.Lock()
	i := s.indexLocked(id)
	if i < 0 {
		s.mu.Unlock()
		return false
	}
	s.tasks = slices.Delete(s.tasks, i, i+1)
	s.persistLocked()
	s.mu.Unlock()
	return true
}

// DeleteAllCompleted removes every completed task after confirm approves.
// It returns the number removed, or ErrCancelled when declined.
func (s *Store) DeleteAllCompleted(confirm Confirmer) (int, error) {
	if confirm == nil || !confirm.Confirm(ConfirmClearPrompt) {
		return 0, ErrCancelled
	}

	s.mu.Lock()
	before := len(s.tasks)
	s.tasks = slices.DeleteFunc(s.tasks, func(t Task) bool { return t.Completed })
	removed := before - len(s.tasks)
	if removed > 0 {
		s.persistLocked()
	}
	s.mu.Unlock()

	return removed, nil
}

// Tasks returns a copy of the list in insertion order.
func (s *Store) Tasks() []Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.tasks)
}

// View returns the tasks visible under mode.
func (s *Store) View(mode FilterMode) []Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return ApplyFilter(s.tasks, mode)
}

// Get returns the task with id.
func (s *Store) Get(id string) (Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexLocked(id); i >= 0 {
		return s.tasks[i], true
	}
	return Task{}, false
}

// Len returns the number of tasks.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tasks)
}

// Now returns the store clock's current time.
func (s *Store) Now() time.Time {
	return s.now()
}

// ResolveID maps an id or unique id prefix to a full id.
func (s *Store) ResolveID(prefix string) (string, error) {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return "", fmt.Errorf("task id: %w", ErrNotFound)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var matches []string
	for _, t := range s.tasks {
		if t.ID == prefix {
			return t.ID, nil
		}
		if strings.HasPrefix(t.ID, prefix) {
			matches = append(matches, t.ID)
		}
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("task with prefix %q: %w", prefix, ErrNotFound)
	case 1:
		return matches[0], nil
	default:
		shown := matches
		if len(shown) > maxAmbiguousCandidates {
			shown = shown[:maxAmbiguousCandidates]
		}
		return "", fmt.Errorf("%w: prefix %q matches %d tasks: %v", ErrAmbiguousID, prefix, len(matches), shown)
	}
}

func (s *Store) indexLocked(id string) int {
	return slices.IndexFunc(s.tasks, func(t Task) bool { return t.ID == id })
}

// persistLocked hands the current list to the writer. Callers hold mu, so
// snapshots reach the writer in mutation order.
func (s *Store) persistLocked() {
	s.writer.enqueue(slices.Clone(s.tasks))
}

// LastPersistError returns the most recent read or write failure, or nil
// when the last persistence attempt succeeded.
func (s *Store) LastPersistError() *PersistenceError {
	return s.writer.lastError()
}

// Flush waits until every enqueued snapshot has been written or ctx ends.
func (s *Store) Flush(ctx context.Context) error {
	return s.writer.flush(ctx)
}

// Close flushes pending writes and stops the writer. The store must not
// be mutated afterwards.
func (s *Store) Close(ctx context.Context) error {
	err := s.writer.flush(ctx)
	s.writer.stop()
	return err
}
