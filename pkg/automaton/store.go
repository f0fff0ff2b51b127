// Package automaton implements a unidirectional action/reducer/effect store.
//
// A Store owns a single state value. Every Dispatch runs the full reducer
// chain against the state and then the full effect chain against the already
// mutated state, in registration order. Effects may dispatch further actions;
// each nested dispatch is one level deeper than the action that caused it and
// dispatches beyond the configured maximum depth are dropped with a warning.
//
// The Store is not safe for concurrent use: it is meant to be driven by a
// single event loop, which is what makes lock-free state mutation possible.
package automaton

import (
	"io"
	"log/slog"
	"time"
)

// DefaultMaxDepth bounds effect-triggered dispatch chains when no explicit
// limit is configured.
const DefaultMaxDepth = 8

// Meta is the bookkeeping attached to every dispatched action.
type Meta struct {
	// ID is monotonic per Store, starting at 1.
	ID uint64
	// Time is the wall-clock time of the root action of the chain.
	Time time.Time
	// Depth is 0 for externally originated actions.
	Depth int
}

// ActionWithMeta pairs an action with its dispatch metadata.
type ActionWithMeta[A any] struct {
	Action A
	Meta
}

// Reducer mutates state in response to an action. Reducers must be total and
// deterministic: no I/O, no goroutines, no clock reads beyond Meta.Time.
type Reducer[S, A any] func(state *S, action ActionWithMeta[A])

// Effect runs after the reducer chain. It may read the committed state via
// store.State and dispatch further actions, but must not mutate state.
type Effect[S, A any] func(store *Store[S, A], action ActionWithMeta[A])

// EnablingCondition decides whether an action applies to the current state.
// Disabled actions are accepted but neither reduced nor passed to effects.
type EnablingCondition[S, A any] func(action A, state *S) bool

// Recorder receives every externally dispatched action, enabled or not, in
// the order the Store saw them.
type Recorder[A any] interface {
	Record(action ActionWithMeta[A]) error
}

// Stats counts what the Store has done so far.
type Stats struct {
	Dispatched uint64 // every Dispatch call that got an id
	Reduced    uint64 // actions that passed the enabling condition
	Disabled   uint64 // actions rejected by the enabling condition
	Truncated  uint64 // nested dispatches dropped at the depth limit
	MaxDepth   int    // deepest depth that was reduced
}

// Store owns state S and drives the dispatch loop for actions of type A.
type Store[S, A any] struct {
	state    S
	reducers []Reducer[S, A]
	effects  []Effect[S, A]
	enabled  EnablingCondition[S, A]
	recorder Recorder[A]
	kind     func(A) string
	clock    func() time.Time
	logger   *slog.Logger
	maxDepth int

	nextID   uint64
	depth    int // number of dispatches currently on the stack
	rootTime time.Time
	stats    Stats
}

// Option configures a Store.
type Option[S, A any] func(*Store[S, A])

// WithReducers appends reducers to the chain.
func WithReducers[S, A any](reducers ...Reducer[S, A]) Option[S, A] {
	return func(s *Store[S, A]) { s.reducers = append(s.reducers, reducers...) }
}

// WithEffects appends effects to the chain.
func WithEffects[S, A any](effects ...Effect[S, A]) Option[S, A] {
	return func(s *Store[S, A]) { s.effects = append(s.effects, effects...) }
}

// WithEnablingCondition installs the predicate consulted before reduction.
func WithEnablingCondition[S, A any](fn EnablingCondition[S, A]) Option[S, A] {
	return func(s *Store[S, A]) { s.enabled = fn }
}

// WithMaxDepth sets the maximum nesting depth. Values below 1 keep the default.
func WithMaxDepth[S, A any](depth int) Option[S, A] {
	return func(s *Store[S, A]) {
		if depth > 0 {
			s.maxDepth = depth
		}
	}
}

// WithClock replaces time.Now as the timestamp source.
func WithClock[S, A any](clock func() time.Time) Option[S, A] {
	return func(s *Store[S, A]) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithLogger sets the logger used for truncation and recorder failures.
func WithLogger[S, A any](logger *slog.Logger) Option[S, A] {
	return func(s *Store[S, A]) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithRecorder captures external actions, typically to an action log.
func WithRecorder[S, A any](r Recorder[A]) Option[S, A] {
	return func(s *Store[S, A]) { s.recorder = r }
}

// WithKind names actions in log output.
func WithKind[S, A any](fn func(A) string) Option[S, A] {
	return func(s *Store[S, A]) { s.kind = fn }
}

// New creates a Store holding initial.
func New[S, A any](initial S, opts ...Option[S, A]) *Store[S, A] {
	s := &Store[S, A]{
		state:    initial,
		clock:    time.Now,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		maxDepth: DefaultMaxDepth,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns the committed state. Callers outside reducers must treat it
// as read-only.
func (s *Store[S, A]) State() *S {
	return &s.state
}

// Stats returns a copy of the dispatch counters.
func (s *Store[S, A]) Stats() Stats {
	return s.stats
}

// Depth reports how many dispatches are currently on the stack. It is 0
// between external dispatches.
func (s *Store[S, A]) Depth() int {
	return s.depth
}

// Dispatch runs action through the reducer and effect chains. It reports
// whether the action was reduced. Called from outside the Store the action is
// a root (depth 0) stamped with the clock; called from an effect it becomes a
// nested action that inherits the root's timestamp.
//
// Timestamps carry no monotonic reading, so live time arithmetic matches a
// replay of the same log even across wall-clock jumps.
func (s *Store[S, A]) Dispatch(action A) bool {
	if s.depth == 0 {
		return s.dispatch(action, s.clock().Round(0))
	}
	return s.dispatch(action, s.rootTime)
}

// DispatchAt dispatches a root action with an explicit timestamp. It is used
// when replaying a recorded action log. Called from inside an effect it
// behaves like Dispatch.
func (s *Store[S, A]) DispatchAt(action A, at time.Time) bool {
	if s.depth != 0 {
		return s.Dispatch(action)
	}
	return s.dispatch(action, at.Round(0))
}

func (s *Store[S, A]) dispatch(action A, at time.Time) bool {
	depth := s.depth
	if depth > s.maxDepth {
		s.stats.Truncated++
		s.logger.Warn("dispatch depth limit reached, dropping action",
			"kind", s.kindOf(action),
			"depth", depth,
			"max_depth", s.maxDepth,
		)
		return false
	}

	s.nextID++
	s.stats.Dispatched++
	meta := ActionWithMeta[A]{
		Action: action,
		Meta:   Meta{ID: s.nextID, Time: at, Depth: depth},
	}
	if depth == 0 {
		s.rootTime = at
		if s.recorder != nil {
			if err := s.recorder.Record(meta); err != nil {
				s.logger.Warn("action record failed", "kind", s.kindOf(action), "error", err)
			}
		}
	}

	if s.enabled != nil && !s.enabled(action, &s.state) {
		s.stats.Disabled++
		s.logger.Debug("action disabled", "kind", s.kindOf(action), "id", meta.ID, "depth", depth)
		return false
	}

	s.stats.Reduced++
	if depth > s.stats.MaxDepth {
		s.stats.MaxDepth = depth
	}

	for _, reduce := range s.reducers {
		reduce(&s.state, meta)
	}

	s.depth++
	defer func() { s.depth-- }()
	for _, effect := range s.effects {
		effect(s, meta)
	}
	return true
}

func (s *Store[S, A]) kindOf(action A) string {
	if s.kind == nil {
		return "action"
	}
	return s.kind(action)
}
