// Package statemachine provides two small state machines that sequence the
// lighting behaviours: Machine, where the caller moves between states
// directly, and TableMachine, where events are resolved against an ordered
// transition table.
//
// Both run entirely inside the caller's control loop. Nothing blocks and
// nothing is safe for concurrent use.
package statemachine

import "log/slog"

// State is a named set of optional callbacks. States are compared by
// identity, so always pass the same *State around.
type State struct {
	Name    string
	OnEnter func()
	OnTick  func()
	OnExit  func()
}

// NewState creates a State. Any callback may be nil.
func NewState(name string, onEnter, onTick, onExit func()) *State {
	return &State{Name: name, OnEnter: onEnter, OnTick: onTick, OnExit: onExit}
}

func (s *State) String() string {
	if s == nil {
		return "<nil>"
	}
	return s.Name
}

func (s *State) enter() {
	if s != nil && s.OnEnter != nil {
		s.OnEnter()
	}
}

func (s *State) tick() {
	if s != nil && s.OnTick != nil {
		s.OnTick()
	}
}

func (s *State) exit() {
	if s != nil && s.OnExit != nil {
		s.OnExit()
	}
}

// Change describes a completed state change.
type Change struct {
	From  *State
	To    *State
	Event Event
	// Direct is set when the change came from Machine.GoTo rather than
	// an event.
	Direct bool
}

// Observer is told about every completed state change.
type Observer func(Change)

type options struct {
	logger    *slog.Logger
	observers []Observer
}

// Option configures a machine.
type Option func(*options)

// WithLogger sets the logger used for debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithObserver registers fn to run after each state change.
func WithObserver(fn Observer) Option {
	return func(o *options) {
		if fn != nil {
			o.observers = append(o.observers, fn)
		}
	}
}

func newOptions(opts []Option) options {
	o := options{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func (o *options) notify(c Change) {
	for _, fn := range o.observers {
		fn(c)
	}
}
