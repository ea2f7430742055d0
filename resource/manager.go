// Package resource loads files off the main goroutine and hands the results
// back to a scene.
package resource

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"

	"github.com/plus3/tessera/ecs"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// EventLoaded is the name of the Loaded event.
const EventLoaded = "ResourceLoaded"

// Loaded is published on the scene's event bus by Pump when a requested
// resource finishes loading. Err is set when the load failed.
type Loaded struct {
	Path  string
	Value any
	Err   error
}

func (Loaded) EventName() string { return EventLoaded }

// LoadFunc loads the resource at path. It runs on a worker goroutine and must
// not touch scene state.
type LoadFunc func(ctx context.Context, path string) (any, error)

// ReadFile is a LoadFunc returning the file contents as []byte.
func ReadFile(_ context.Context, path string) (any, error) {
	return os.ReadFile(path)
}

// State is the load state of a path.
type State uint8

const (
	StateUnknown State = iota
	StatePending
	StateReady
	StateFailed
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

var ErrClosed = eris.New("resource manager closed")

type entry struct {
	state State
	value any
	err   error
}

// Manager owns a cache of loaded resources. Loads run concurrently on a
// bounded pool; their results are queued and only become visible to the scene
// through Pump, which must be called from the goroutine driving the scene.
type Manager struct {
	load LoadFunc
	root string
	log  *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc
	group  errgroup.Group
	sem    chan struct{}

	mu        sync.Mutex
	entries   map[string]*entry
	completed []Loaded
	closed    bool
}

// Option configures a Manager.
type Option func(*Manager)

// WithWorkers bounds the number of loads running at once.
func WithWorkers(n int) Option {
	return func(m *Manager) {
		if n > 0 {
			m.sem = make(chan struct{}, n)
		}
	}
}

// WithRoot resolves relative request paths against dir.
func WithRoot(dir string) Option {
	return func(m *Manager) {
		m.root = dir
	}
}

// WithLogger sets the logger for failed loads.
func WithLogger(log *zap.Logger) Option {
	return func(m *Manager) {
		m.log = log
	}
}

// New creates a manager that loads with load.
func New(load LoadFunc, opts ...Option) *Manager {
	m := &Manager{
		load:    load,
		log:     zap.NewNop(),
		sem:     make(chan struct{}, 4),
		entries: make(map[string]*entry),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.ctx, m.cancel = context.WithCancel(context.Background())
	return m
}

// Request starts loading path unless it is already loaded or loading.
func (m *Manager) Request(path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return eris.Wrapf(ErrClosed, "request %s", path)
	}
	if _, ok := m.entries[path]; ok {
		return nil
	}
	m.entries[path] = &entry{state: StatePending}

	m.group.Go(func() error {
		select {
		case m.sem <- struct{}{}:
		case <-m.ctx.Done():
			m.finish(path, nil, m.ctx.Err())
			return nil
		}
		defer func() { <-m.sem }()

		value, err := m.load(m.ctx, m.resolve(path))
		m.finish(path, value, err)
		return nil
	})
	return nil
}

func (m *Manager) resolve(path string) string {
	if m.root == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(m.root, path)
}

func (m *Manager) finish(path string, value any, err error) {
	if err != nil {
		err = eris.Wrapf(err, "load %s", path)
		m.log.Warn("resource load failed", zap.String("path", path), zap.Error(err))
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.completed = append(m.completed, Loaded{Path: path, Value: value, Err: err})
}

// Pump applies every finished load to the cache and publishes a Loaded event
// for each on the scene's bus. Handler errors are joined.
func (m *Manager) Pump(scene *ecs.Scene) error {
	m.mu.Lock()
	completed := m.completed
	m.completed = nil
	for _, done := range completed {
		e := m.entries[done.Path]
		e.value, e.err = done.Value, done.Err
		if done.Err != nil {
			e.state = StateFailed
		} else {
			e.state = StateReady
		}
	}
	m.mu.Unlock()

	var errs []error
	for _, done := range completed {
		if err := scene.Events().Publish(done); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Get returns a loaded resource. Resources become available after the Pump
// that delivered them.
func (m *Manager) Get(path string) (any, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[path]
	if !ok || e.state != StateReady {
		return nil, false
	}
	return e.value, true
}

// State reports the load state of path as of the last Pump.
func (m *Manager) State(path string) State {
	m.mu.Lock()
	defer m.mu.Unlock()

	if e, ok := m.entries[path]; ok {
		return e.state
	}
	return StateUnknown
}

// Forget drops a finished resource from the cache so the next Request reloads it.
func (m *Manager) Forget(path string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[path]
	if !ok || e.state == StatePending {
		return false
	}
	delete(m.entries, path)
	return true
}

// Wait blocks until every load requested so far has finished.
func (m *Manager) Wait() {
	_ = m.group.Wait()
}

// Close cancels loads that have not started, waits for running ones and
// rejects further requests. Results still queued can be delivered with Pump.
func (m *Manager) Close() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	m.mu.Unlock()

	m.cancel()
	return m.group.Wait()
}
