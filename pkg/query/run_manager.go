package query

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/nnnkkk7/sqlbuddy/pkg/config"
	"github.com/nnnkkk7/sqlbuddy/pkg/connection"
	"github.com/nnnkkk7/sqlbuddy/pkg/sqltext"
)

var (
	// ErrRunNotFound is returned for unknown or expired run handles.
	ErrRunNotFound = errors.New("run not found")

	// ErrRunFinished is returned when canceling a run that already finished.
	ErrRunFinished = errors.New("run already finished")

	// ErrManagerClosed is returned by Submit after Close.
	ErrManagerClosed = errors.New("run manager is closed")
)

// RunStatus represents the status of a run.
type RunStatus string

const (
	RunStatusPending  RunStatus = "pending"
	RunStatusRunning  RunStatus = "running"
	RunStatusFinished RunStatus = "finished"
	RunStatusFailed   RunStatus = "failed"
	RunStatusCanceled RunStatus = "canceled"
)

// Done reports whether the status is terminal.
func (s RunStatus) Done() bool {
	return s == RunStatusFinished || s == RunStatusFailed || s == RunStatusCanceled
}

// Session is exclusive access to a database for the duration of one run.
type Session interface {
	Executor
	Close() error
}

// SessionSource hands out sessions.
type SessionSource interface {
	// Acquire waits until a session is available.
	Acquire(ctx context.Context) (Session, error)

	// TryAcquire fails with connection.ErrBusy instead of waiting.
	TryAcquire(ctx context.Context) (Session, error)
}

type managerSource struct {
	mgr *connection.Manager
}

// ManagerSource adapts a connection manager to a SessionSource.
func ManagerSource(mgr *connection.Manager) SessionSource {
	return managerSource{mgr: mgr}
}

func (s managerSource) Acquire(ctx context.Context) (Session, error) {
	sess, err := s.mgr.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	return sess, nil
}

func (s managerSource) TryAcquire(ctx context.Context) (Session, error) {
	sess, err := s.mgr.TryAcquire(ctx)
	if err != nil {
		return nil, err
	}
	return sess, nil
}

// Run is a batch submitted for background execution.
type Run struct {
	Handle      string
	Status      RunStatus
	Statements  []string
	Outcomes    []Outcome
	Error       string
	CreatedOn   time.Time
	CompletedOn *time.Time

	cancelFunc context.CancelFunc
	canceled   bool
	done       chan struct{}
}

// snapshot returns a copy that is safe to hand out while the run proceeds.
func (r *Run) snapshot() Run {
	cp := Run{
		Handle:     r.Handle,
		Status:     r.Status,
		Statements: r.Statements,
		Error:      r.Error,
		CreatedOn:  r.CreatedOn,
	}
	if r.Outcomes != nil {
		cp.Outcomes = append([]Outcome(nil), r.Outcomes...)
	}
	if r.CompletedOn != nil {
		completed := *r.CompletedOn
		cp.CompletedOn = &completed
	}
	return cp
}

// RunManagerOptions configures a RunManager.
type RunManagerOptions struct {
	// TTL is how long finished runs are kept. Zero uses the default.
	TTL time.Duration

	// BusyPolicy decides what happens when a run is submitted while another
	// one holds the session.
	BusyPolicy config.BusyPolicy

	Log logrus.FieldLogger
}

// RunManager executes runs in the background and tracks them by handle.
type RunManager struct {
	mu     sync.RWMutex
	runs   map[string]*Run
	source SessionSource
	ttl    time.Duration
	policy config.BusyPolicy
	log    logrus.FieldLogger

	wg        sync.WaitGroup
	closed    bool
	stop      chan struct{}
	closeOnce sync.Once
}

// NewRunManager creates a new run manager and starts its cleanup loop.
func NewRunManager(source SessionSource, opts RunManagerOptions) *RunManager {
	if opts.TTL <= 0 {
		opts.TTL = time.Duration(config.DefaultRunTTLMinutes) * time.Minute
	}
	if opts.BusyPolicy == "" {
		opts.BusyPolicy = config.DefaultBusyPolicy
	}
	if opts.Log == nil {
		opts.Log = logrus.StandardLogger()
	}

	m := &RunManager{
		runs:   make(map[string]*Run),
		source: source,
		ttl:    opts.TTL,
		policy: opts.BusyPolicy,
		log:    opts.Log,
		stop:   make(chan struct{}),
	}
	go m.cleanupLoop()
	return m
}

// Submit splits text into statements and starts running them in the
// background. It returns as soon as the run is registered.
//
// ctx only bounds session acquisition under the reject policy, where a busy
// session fails Submit with connection.ErrBusy. The run itself lives until
// it finishes or is canceled.
func (m *RunManager) Submit(ctx context.Context, text string) (Run, error) {
	m.mu.RLock()
	closed := m.closed
	m.mu.RUnlock()
	if closed {
		return Run{}, ErrManagerClosed
	}

	statements := sqltext.Split(text)

	var sess Session
	if len(statements) > 0 && m.policy == config.BusyPolicyReject {
		var err error
		sess, err = m.source.TryAcquire(ctx)
		if err != nil {
			return Run{}, err
		}
	}

	runCtx, cancel := context.WithCancel(context.Background())
	run := &Run{
		Handle:     generateRunHandle(),
		Status:     RunStatusPending,
		Statements: statements,
		CreatedOn:  time.Now(),
		cancelFunc: cancel,
		done:       make(chan struct{}),
	}

	// Close may have run while the session was being acquired. Registering
	// and wg.Add happen under the same lock Close takes before it waits.
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		cancel()
		if sess != nil {
			_ = sess.Close()
		}
		return Run{}, ErrManagerClosed
	}
	m.runs[run.Handle] = run
	snapshot := run.snapshot()
	m.wg.Add(1)
	m.mu.Unlock()

	go m.execute(runCtx, run, sess)

	return snapshot, nil
}

func (m *RunManager) execute(ctx context.Context, run *Run, sess Session) {
	defer m.wg.Done()
	defer close(run.done)
	defer run.cancelFunc()

	log := m.log.WithField("run", run.Handle)

	if len(run.Statements) == 0 {
		m.finish(run, []Outcome{}, nil)
		return
	}

	if sess == nil {
		var err error
		sess, err = m.source.Acquire(ctx)
		if err != nil && ctx.Err() != nil {
			// Canceled while waiting: every statement is reported unattempted.
			m.finish(run, NewRunner(log).RunStatements(ctx, nil, run.Statements), nil)
			return
		}
		if err != nil {
			log.WithError(err).Warn("Failed to acquire session")
			m.finish(run, nil, err)
			return
		}
	}
	defer func() {
		if err := sess.Close(); err != nil {
			log.WithError(err).Warn("Failed to close session")
		}
	}()

	m.mu.Lock()
	run.Status = RunStatusRunning
	m.mu.Unlock()

	log.WithField("statements", len(run.Statements)).Debug("Run started")
	outcomes := NewRunner(log).RunStatements(ctx, sess, run.Statements)
	m.finish(run, outcomes, nil)
}

func (m *RunManager) finish(run *Run, outcomes []Outcome, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	run.CompletedOn = &now
	run.Outcomes = outcomes

	switch {
	case run.canceled:
		run.Status = RunStatusCanceled
	case err != nil:
		run.Status = RunStatusFailed
		run.Error = err.Error()
	default:
		run.Status = RunStatusFinished
	}
}

// Get returns a snapshot of the run with the given handle.
func (m *RunManager) Get(handle string) (Run, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	run, ok := m.runs[handle]
	if !ok {
		return Run{}, false
	}
	return run.snapshot(), true
}

// Wait blocks until the run finishes or ctx is done and returns its final
// snapshot.
func (m *RunManager) Wait(ctx context.Context, handle string) (Run, error) {
	m.mu.RLock()
	run, ok := m.runs[handle]
	m.mu.RUnlock()
	if !ok {
		return Run{}, fmt.Errorf("%w: %s", ErrRunNotFound, handle)
	}

	select {
	case <-run.done:
	case <-ctx.Done():
		return Run{}, ctx.Err()
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	return run.snapshot(), nil
}

// Cancel stops a pending or running run. Statements not yet finished are
// recorded as errors and the run ends with RunStatusCanceled.
func (m *RunManager) Cancel(handle string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	run, ok := m.runs[handle]
	if !ok {
		return fmt.Errorf("%w: %s", ErrRunNotFound, handle)
	}
	if run.Status.Done() {
		return fmt.Errorf("%w: %s (status: %s)", ErrRunFinished, handle, run.Status)
	}

	run.canceled = true
	run.cancelFunc()
	return nil
}

// Delete cancels the run if it is still active and forgets it.
func (m *RunManager) Delete(handle string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	run, ok := m.runs[handle]
	if !ok {
		return fmt.Errorf("%w: %s", ErrRunNotFound, handle)
	}
	if !run.Status.Done() {
		run.canceled = true
		run.cancelFunc()
	}
	delete(m.runs, handle)
	return nil
}

// Close cancels active runs, waits for them and stops the cleanup loop.
func (m *RunManager) Close() {
	m.closeOnce.Do(func() {
		close(m.stop)

		m.mu.Lock()
		m.closed = true
		for _, run := range m.runs {
			if !run.Status.Done() {
				run.canceled = true
				run.cancelFunc()
			}
		}
		m.mu.Unlock()

		m.wg.Wait()
	})
}

// cleanupLoop periodically removes expired runs.
func (m *RunManager) cleanupLoop() {
	ticker := time.NewTicker(m.ttl / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.cleanup()
		case <-m.stop:
			return
		}
	}
}

// cleanup removes runs that have been completed for longer than TTL.
func (m *RunManager) cleanup() {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	for handle, run := range m.runs {
		if run.CompletedOn != nil && now.Sub(*run.CompletedOn) > m.ttl {
			delete(m.runs, handle)
		}
	}
}

func generateRunHandle() string {
	return uuid.NewString()
}
