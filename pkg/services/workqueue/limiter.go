package workqueue

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TaskFunc is a unit of work scheduled through the limiter.
type TaskFunc func(ctx context.Context) error

type taskStatus string

const (
	taskStatusPending   taskStatus = "pending"
	taskStatusRunning   taskStatus = "running"
	taskStatusCompleted taskStatus = "completed"
	taskStatusFailed    taskStatus = "failed"
)

type taskState struct {
	id     string
	name   string
	fn     TaskFunc
	ctx    context.Context
	status taskStatus
}

// Limiter runs submitted tasks with at most maxInFlight executing
// concurrently. Tasks over the cap queue in arrival order (FIFO) and are
// never dropped. A failing task releases its slot so queued tasks still
// start; the first failure is reported by Wait.
//
// A Limiter is built for a single batch: submit everything, then Wait.
type Limiter struct {
	mu          sync.Mutex
	maxInFlight int
	running     int
	pending     []*taskState
	firstErr    error
	failed      int
	completed   int
	wg          sync.WaitGroup
	logger      *zap.Logger
}

// NewLimiter creates a limiter with the given in-flight cap.
func NewLimiter(maxInFlight int, logger *zap.Logger) *Limiter {
	if maxInFlight < 1 {
		maxInFlight = 1
	}
	return &Limiter{
		maxInFlight: maxInFlight,
		logger:      logger.Named("workqueue"),
	}
}

// Submit enqueues a task. It is admitted immediately if a slot is free,
// otherwise it waits its turn in FIFO order.
func (l *Limiter) Submit(ctx context.Context, name string, fn TaskFunc) {
	l.mu.Lock()
	defer l.mu.Unlock()

	ts := &taskState{
		id:     uuid.New().String(),
		name:   name,
		fn:     fn,
		ctx:    ctx,
		status: taskStatusPending,
	}
	l.pending = append(l.pending, ts)
	l.wg.Add(1)

	l.logger.Debug("task enqueued",
		zap.String("task_id", ts.id),
		zap.String("task_name", ts.name))

	l.tryStartLocked()
}

// tryStartLocked admits pending tasks while slots are free.
// Must be called with the lock held.
func (l *Limiter) tryStartLocked() {
	for l.running < l.maxInFlight && len(l.pending) > 0 {
		ts := l.pending[0]
		l.pending = l.pending[1:]
		l.running++
		ts.status = taskStatusRunning
		go l.run(ts)
	}
}

func (l *Limiter) run(ts *taskState) {
	defer l.wg.Done()

	err := ts.fn(ts.ctx)

	l.mu.Lock()
	l.running--
	if err != nil {
		ts.status = taskStatusFailed
		l.failed++
		if l.firstErr == nil {
			l.firstErr = err
		}
	} else {
		ts.status = taskStatusCompleted
		l.completed++
	}
	l.tryStartLocked()
	l.mu.Unlock()

	if err != nil {
		l.logger.Warn("task failed",
			zap.String("task_id", ts.id),
			zap.String("task_name", ts.name),
			zap.Error(err))
	}
}

// Wait blocks until every submitted task has finished and returns the first
// error encountered, if any.
func (l *Limiter) Wait() error {
	l.wg.Wait()

	l.mu.Lock()
	defer l.mu.Unlock()
	return l.firstErr
}

// CompletedCount returns the number of tasks that finished without error.
func (l *Limiter) CompletedCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.completed
}

// HasFailures reports whether any task returned an error.
func (l *Limiter) HasFailures() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.failed > 0
}
