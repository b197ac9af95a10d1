package todo

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// writer persists list snapshots on its own goroutine. Only the newest
// pending snapshot is kept: a burst of mutations costs one write.
type writer struct {
	kv      KV
	key     string
	timeout time.Duration
	log     *slog.Logger

	wake   chan struct{}
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.Mutex
	next    []Task
	hasNext bool
	enqSeq  uint64
	doneSeq uint64
	done    chan struct{} // closed and replaced each time doneSeq advances
	stopped bool
	lastErr *PersistenceError
}

func newWriter(kv KV, key string, timeout time.Duration, log *slog.Logger) *writer {
	ctx, cancel := context.WithCancel(context.Background())
	w := &writer{
		kv:      kv,
		key:     key,
		timeout: timeout,
		log:     log,
		wake:    make(chan struct{}, 1),
		ctx:     ctx,
		cancel:  cancel,
		done:    make(chan struct{}),
	}
	w.wg.Add(1)
	go w.loop()
	return w
}

func (w *writer) enqueue(snapshot []Task) {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		w.log.Warn("task store closed, change not persisted", "key", w.key)
		return
	}
	w.next = snapshot
	w.hasNext = true
	w.enqSeq++
	w.mu.Unlock()

	select {
	case w.wake <- struct{}{}:
	default:
	}
}

func (w *writer) loop() {
	defer w.wg.Done()
	for {
		select {
		case <-w.ctx.Done():
			return
		case <-w.wake:
			w.drain()
		}
	}
}

func (w *writer) drain() {
	for {
		w.mu.Lock()
		if !w.hasNext {
			w.mu.Unlock()
			return
		}
		snapshot, seq := w.next, w.enqSeq
		w.next, w.hasNext = nil, false
		w.mu.Unlock()

		perr := w.write(snapshot)

		w.mu.Lock()
		w.doneSeq = seq
		w.lastErr = perr
		close(w.done)
		w.done = make(chan struct{})
		w.mu.Unlock()
	}
}

func (w *writer) write(snapshot []Task) *PersistenceError {
	raw, err := EncodeTasks(snapshot)
	if err != nil {
		w.log.Error("encode tasks failed", "key", w.key, "error", err)
		return &PersistenceError{Op: OpWrite, Key: w.key, Err: err}
	}

	ctx, cancel := context.WithTimeout(w.ctx, w.timeout)
	defer cancel()

	if err := w.kv.Set(ctx, w.key, raw); err != nil {
		w.log.Warn("save tasks failed, keeping in-memory state", "key", w.key, "count", len(snapshot), "error", err)
		return &PersistenceError{Op: OpWrite, Key: w.key, Err: err}
	}
	w.log.Debug("tasks saved", "key", w.key, "count", len(snapshot))
	return nil
}

func (w *writer) record(perr *PersistenceError) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.lastErr = perr
}

func (w *writer) lastError() *PersistenceError {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastErr
}

// flush blocks until everything enqueued so far has been attempted.
func (w *writer) flush(ctx context.Context) error {
	w.mu.Lock()
	target := w.enqSeq
	for w.doneSeq < target && !w.stopped {
		ch := w.done
		w.mu.Unlock()
		select {
		case <-ch:
		case <-ctx.Done():
			return ctx.Err()
		}
		w.mu.Lock()
	}
	w.mu.Unlock()
	return nil
}

func (w *writer) stop() {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return
	}
	w.stopped = true
	w.mu.Unlock()

	w.cancel()
	w.wg.Wait()
}
