package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// Worker is a background loop owned by the Service. Run blocks until ctx is
// done or the worker's channel peer goes away.
type Worker interface {
	Name() string
	Run(ctx context.Context) error
}

type funcWorker struct {
	name string
	run  func(ctx context.Context) error
}

func (w funcWorker) Name() string                  { return w.name }
func (w funcWorker) Run(ctx context.Context) error { return w.run(ctx) }

// NewWorker adapts a function to the Worker interface.
func NewWorker(name string, run func(ctx context.Context) error) Worker {
	return funcWorker{name: name, run: run}
}

// WorkerStatus tracks the lifecycle of one worker.
type WorkerStatus struct {
	Name    string
	Running bool
	Started time.Time
	Stopped time.Time
	Err     error
}

// Registry manages a set of named workers. It is safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	workers  map[string]Worker
	statuses map[string]*WorkerStatus
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		workers:  make(map[string]Worker),
		statuses: make(map[string]*WorkerStatus),
	}
}

// Register adds w. Names must be unique.
func (r *Registry) Register(w Worker) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := w.Name()
	if _, exists := r.workers[name]; exists {
		return fmt.Errorf("worker %q already registered", name)
	}
	r.workers[name] = w
	r.statuses[name] = &WorkerStatus{Name: name}
	return nil
}

// Get returns the named worker.
func (r *Registry) Get(name string) (Worker, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	w, ok := r.workers[name]
	return w, ok
}

// List returns the registered worker names, sorted.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.workers))
	for name := range r.workers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Status returns a copy of the named worker's status.
func (r *Registry) Status(name string) (WorkerStatus, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.statuses[name]
	if !ok {
		return WorkerStatus{}, false
	}
	return *s, true
}

// AllStatus returns every status, sorted by name.
func (r *Registry) AllStatus() []WorkerStatus {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]WorkerStatus, 0, len(r.statuses))
	for _, s := range r.statuses {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (r *Registry) updateStatus(name string, fn func(s *WorkerStatus)) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.statuses[name]; ok {
		fn(s)
	}
}
