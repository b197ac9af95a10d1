package todo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memKV is an in-memory KV with switchable failures.
type memKV struct {
	mu      sync.Mutex
	data    map[string]string
	getErr  error
	setErr  error
	setHits int
}

func newMemKV() *memKV {
	return &memKV{data: make(map[string]string)}
}

func (m *memKV) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return "", false, m.getErr
	}
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memKV) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.setHits++
	if m.setErr != nil {
		return m.setErr
	}
	m.data[key] = value
	return nil
}

func (m *memKV) value(key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestStore(t *testing.T, kv KV) *Store {
	t.Helper()
	n := 0
	s := NewStore(kv, Options{
		Logger: quietLogger(),
		NewID: func() string {
			n++
			return fmt.Sprintf("id-%03d", n)
		},
	})
	t.Cleanup(func() { _ = s.Close(context.Background()) })
	return s
}

func flush(t *testing.T, s *Store) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, s.Flush(ctx))
}

func strPtr(s string) *string { return &s }

func TestStore_AddTask(t *testing.T) {
	s := newTestStore(t, newMemKV())

	task, err := s.AddTask("  Buy milk  ", nil, 0)
	require.NoError(t, err)

	assert.NotEmpty(t, task.ID)
	assert.Equal(t, "Buy milk", task.Text)
	assert.False(t, task.Completed)
	assert.False(t, task.IsImportant)
	assert.Equal(t, DefaultPriority, task.Priority)
	assert.Nil(t, task.DueDate)

	tasks := s.Tasks()
	require.Len(t, tasks, 1)
	assert.Equal(t, task, tasks[0])
}

func TestStore_AddTask_EmptyText(t *testing.T) {
	kv := newMemKV()
	s := newTestStore(t, kv)
	_, err := s.AddTask("first", nil, 1)
	require.NoError(t, err)
	flush(t, s)
	hits := kv.setHits

	for _, text := range []string{"", "   ", "\t\n"} {
		_, err := s.AddTask(text, nil, 1)
		var ve *ValidationError
		require.ErrorAs(t, err, &ve, "text %q", text)
		assert.Equal(t, "text", ve.Field)
	}

	flush(t, s)
	assert.Equal(t, 1, s.Len())
	assert.Equal(t, hits, kv.setHits, "rejected adds must not persist")
}

func TestStore_AddTask_DueDateAndPriority(t *testing.T) {
	s := newTestStore(t, newMemKV())

	task, err := s.AddTask("Pay rent", strPtr("2026-11-01"), 3)
	require.NoError(t, err)
	require.NotNil(t, task.DueDate)
	assert.Equal(t, "2026-11-01", *task.DueDate)
	assert.Equal(t, 3, task.Priority)

	blank, err := s.AddTask("No date", strPtr("  "), 1)
	require.NoError(t, err)
	assert.Nil(t, blank.DueDate)
}

func TestStore_IDsAreUnique(t *testing.T) {
	calls := 0
	s := NewStore(newMemKV(), Options{
		Logger: quietLogger(),
		NewID: func() string {
			calls++
			// Repeat the first id once to force a retry.
			if calls <= 2 {
				return "dup"
			}
			return fmt.Sprintf("id-%d", calls)
		},
	})
	defer func() { _ = s.Close(context.Background()) }()

	a, err := s.AddTask("a", nil, 1)
	require.NoError(t, err)
	b, err := s.AddTask("b", nil, 1)
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestStore_ToggleCompleted_Involution(t *testing.T) {
	s := newTestStore(t, newMemKV())
	task, err := s.AddTask("Walk dog", nil, 1)
	require.NoError(t, err)

	first, ok := s.ToggleCompleted(task.ID)
	require.True(t, ok)
	assert.True(t, first.Completed)

	second, ok := s.ToggleCompleted(task.ID)
	require.True(t, ok)
	assert.Equal(t, task.Completed, second.Completed)

	got, ok := s.Get(task.ID)
	require.True(t, ok)
	assert.Equal(t, task, got)
}

func TestStore_ToggleImportant(t *testing.T) {
	s := newTestStore(t, newMemKV())
	task, err := s.AddTask("Call mom", nil, 1)
	require.NoError(t, err)

	updated, ok := s.ToggleImportant(task.ID)
	require.True(t, ok)
	assert.True(t, updated.IsImportant)
	assert.Equal(t, task.ID, updated.ID)
	assert.False(t, updated.Completed)
}

func TestStore_Toggle_UnknownID(t *testing.T) {
	kv := newMemKV()
	s := newTestStore(t, kv)
	_, err := s.AddTask("x", nil, 1)
	require.NoError(t, err)
	flush(t, s)
	before := s.Tasks()
	hits := kv.setHits

	_, ok := s.ToggleCompleted("missing")
	assert.False(t, ok)
	_, ok = s.ToggleImportant("missing")
	assert.False(t, ok)

	flush(t, s)
	assert.Equal(t, before, s.Tasks())
	assert.Equal(t, hits, kv.setHits)
}

func TestStore_DeleteTask(t *testing.T) {
	s := newTestStore(t, newMemKV())
	a, _ := s.AddTask("a", nil, 1)
	b, _ := s.AddTask("b", nil, 1)
	c, _ := s.AddTask("c", nil, 1)

	assert.True(t, s.DeleteTask(b.ID))
	assert.Equal(t, []Task{a, c}, s.Tasks())

	// Unknown id: no-op, no error.
	assert.False(t, s.DeleteTask("missing"))
	assert.Equal(t, []Task{a, c}, s.Tasks())
}

func TestStore_DeleteAllCompleted(t *testing.T) {
	s := newTestStore(t, newMemKV())
	a, _ := s.AddTask("a", nil, 1)
	b, _ := s.AddTask("b", nil, 1)
	c, _ := s.AddTask("c", nil, 1)
	d, _ := s.AddTask("d", nil, 1)
	s.ToggleCompleted(b.ID)
	s.ToggleCompleted(d.ID)
	s.ToggleImportant(c.ID)
	c, _ = s.Get(c.ID)

	var asked string
	removed, err := s.DeleteAllCompleted(ConfirmFunc(func(prompt string) bool {
		asked = prompt
		return true
	}))
	require.NoError(t, err)
	assert.Equal(t, 2, removed)
	assert.NotEmpty(t, asked)
	assert.Equal(t, []Task{a, c}, s.Tasks())
}

func TestStore_DeleteAllCompleted_Declined(t *testing.T) {
	s := newTestStore(t, newMemKV())
	a, _ := s.AddTask("a", nil, 1)
	s.ToggleCompleted(a.ID)
	before := s.Tasks()

	removed, err := s.DeleteAllCompleted(ConfirmFunc(func(string) bool { return false }))
	assert.ErrorIs(t, err, ErrCancelled)
	assert.Zero(t, removed)
	assert.Equal(t, before, s.Tasks())

	removed, err = s.DeleteAllCompleted(nil)
	assert.ErrorIs(t, err, ErrCancelled)
	assert.Zero(t, removed)
}

func TestStore_PersistsAndReloads(t *testing.T) {
	kv := newMemKV()
	s := newTestStore(t, kv)
	a, _ := s.AddTask("a", strPtr("2026-10-20"), 2)
	b, _ := s.AddTask("b", nil, 1)
	s.ToggleImportant(a.ID)
	s.ToggleCompleted(b.ID)
	require.NoError(t, s.Close(context.Background()))

	raw, ok := kv.value(DefaultKey)
	require.True(t, ok)
	assert.Contains(t, raw, `"isImportant":true`)
	assert.Contains(t, raw, `"dueDate":null`)

	reloaded := newTestStore(t, kv)
	reloaded.Initialize(context.Background())
	assert.Equal(t, s.Tasks(), reloaded.Tasks())
	assert.Nil(t, reloaded.LastPersistError())
}

func TestStore_Initialize_Absent(t *testing.T) {
	s := newTestStore(t, newMemKV())
	s.Initialize(context.Background())
	assert.Empty(t, s.Tasks())
	assert.Nil(t, s.LastPersistError())
}

func TestStore_Initialize_ReadFailure(t *testing.T) {
	kv := newMemKV()
	kv.getErr = errors.New("disk gone")
	s := newTestStore(t, kv)

	s.Initialize(context.Background())

	assert.Empty(t, s.Tasks())
	perr := s.LastPersistError()
	require.NotNil(t, perr)
	assert.Equal(t, OpRead, perr.Op)
	assert.ErrorContains(t, perr, "disk gone")
}

func TestStore_Initialize_CorruptData(t *testing.T) {
	kv := newMemKV()
	kv.data[DefaultKey] = "{not json"
	s := newTestStore(t, kv)

	s.Initialize(context.Background())

	assert.Empty(t, s.Tasks())
	require.NotNil(t, s.LastPersistError())

	// The store keeps working in memory.
	_, err := s.AddTask("still works", nil, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, s.Len())
}

func TestStore_WriteFailureKeepsMemory(t *testing.T) {
	kv := newMemKV()
	kv.setErr = errors.New("read-only")
	s := newTestStore(t, kv)

	task, err := s.AddTask("keep me", nil, 1)
	require.NoError(t, err)
	flush(t, s)

	perr := s.LastPersistError()
	require.NotNil(t, perr)
	assert.Equal(t, OpWrite, perr.Op)
	assert.Equal(t, DefaultKey, perr.Key)
	assert.Equal(t, []Task{task}, s.Tasks())

	// Next successful write clears the error.
	kv.mu.Lock()
	kv.setErr = nil
	kv.mu.Unlock()
	s.ToggleCompleted(task.ID)
	flush(t, s)
	assert.Nil(t, s.LastPersistError())
}

func TestStore_ResolveID(t *testing.T) {
	s := NewStore(newMemKV(), Options{Logger: quietLogger()})
	defer func() { _ = s.Close(context.Background()) }()
	s.tasks = []Task{
		{ID: "abc123", Text: "a", Priority: 1},
		{ID: "abd456", Text: "b", Priority: 1},
	}

	id, err := s.ResolveID("abc")
	require.NoError(t, err)
	assert.Equal(t, "abc123", id)

	id, err = s.ResolveID("abd456")
	require.NoError(t, err)
	assert.Equal(t, "abd456", id)

	_, err = s.ResolveID("ab")
	assert.ErrorIs(t, err, ErrAmbiguousID)

	_, err = s.ResolveID("zzz")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.ResolveID("")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_CloseStopsPersisting(t *testing.T) {
	kv := newMemKV()
	s := NewStore(kv, Options{Logger: quietLogger()})
	_, err := s.AddTask("before", nil, 1)
	require.NoError(t, err)
	require.NoError(t, s.Close(context.Background()))

	raw, ok := kv.value(DefaultKey)
	require.True(t, ok)

	_, err = s.AddTask("after", nil, 1)
	require.NoError(t, err)
	assert.NoError(t, s.Flush(context.Background()))

	after, _ := kv.value(DefaultKey)
	assert.Equal(t, raw, after)
}

func TestStore_CustomKey(t *testing.T) {
	kv := newMemKV()
	s := NewStore(kv, Options{Key: "inbox", Logger: quietLogger()})
	_, err := s.AddTask("x", nil, 1)
	require.NoError(t, err)
	require.NoError(t, s.Close(context.Background()))

	_, ok := kv.value("inbox")
	assert.True(t, ok)
	_, ok = kv.value(DefaultKey)
	assert.False(t, ok)
}

func TestStore_ConcurrentMutationsPersistLatest(t *testing.T) {
	kv := newMemKV()
	s := newTestStore(t, kv)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				task, err := s.AddTask(fmt.Sprintf("task %d-%d", i, j), nil, 1)
				if err != nil {
					t.Error(err)
					return
				}
				if j%2 == 0 {
					s.ToggleCompleted(task.ID)
				}
				if j%3 == 0 {
					s.DeleteTask(task.ID)
				}
			}
		}(i)
	}
	wg.Wait()
	flush(t, s)

	raw, ok := kv.value(DefaultKey)
	require.True(t, ok)
	stored, err := DecodeTasks(raw)
	require.NoError(t, err)
	assert.Equal(t, s.Tasks(), stored)
}
