package show

import (
	"fmt"
	"log/slog"

	"github.com/sweeney/led-sequencer/internal/clock"
	"github.com/sweeney/led-sequencer/internal/effect"
	"github.com/sweeney/led-sequencer/internal/statemachine"
)

// Deps are the collaborators a show runs against.
type Deps struct {
	Sink      effect.Sink
	Clock     clock.Source
	Random    effect.Source
	Logger    *slog.Logger
	Observers []statemachine.Observer
}

// ChannelStatus is a point-in-time view of one channel.
type ChannelStatus struct {
	Name       string
	Output     int
	Kind       string // empty when idle
	Brightness uint8
	Level      uint8
}

// Show is a built, runnable show. Like everything it drives, it belongs to
// the control loop and is not safe for concurrent use.
type Show struct {
	cfg      *Config
	clock    clock.Source
	logger   *slog.Logger
	hosts    []*effect.Host
	channels map[string]int
	states   []*statemachine.State
	byName   map[string]*statemachine.State
	machine  *statemachine.TableMachine
}

// stage holds the runtime for one state: the effects it swaps in and its
// optional timeout.
type stage struct {
	show      *Show
	name      string
	hosts     []*effect.Host
	effects   []effect.Effect
	timeout   clock.Millis
	event     statemachine.Event
	enteredAt clock.Millis
	fired     bool
}

// Build validates cfg and constructs its hosts, states and transition table.
func Build(cfg *Config, deps Deps) (*Show, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid show: %w", err)
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	rng := deps.Random
	if rng == nil {
		rng = effect.NewSource(1)
	}

	s := &Show{
		cfg:      cfg,
		clock:    deps.Clock,
		logger:   logger,
		channels: make(map[string]int, len(cfg.Channels)),
		byName:   make(map[string]*statemachine.State, len(cfg.States)),
	}

	for i, ch := range cfg.Channels {
		s.channels[ch.Name] = i
		s.hosts = append(s.hosts, effect.NewHost(effect.Channel(ch.Output), deps.Sink, logger))
	}

	for _, sc := range cfg.States {
		st := &stage{show: s, name: sc.Name}
		for _, ec := range sc.Effects {
			h := s.hosts[s.channels[ec.Channel]]
			st.hosts = append(st.hosts, h)
			st.effects = append(st.effects, newEffect(ec, h.Channel(), deps.Sink, rng))
		}
		if sc.TimeoutMs > 0 {
			st.timeout = clock.Millis(sc.TimeoutMs)
			st.event, _ = cfg.Event(sc.TimeoutEvent)
		}

		state := statemachine.NewState(sc.Name, st.enter, st.tick, st.exit)
		s.states = append(s.states, state)
		s.byName[sc.Name] = state
	}

	opts := []statemachine.Option{statemachine.WithLogger(logger)}
	for _, o := range deps.Observers {
		opts = append(opts, statemachine.WithObserver(o))
	}
	s.machine = statemachine.NewTableMachine(s.byName[cfg.Initial], opts...)

	for _, tc := range cfg.Transitions {
		event, _ := cfg.Event(tc.Event)
		s.machine.AddTransition(s.byName[tc.From], s.byName[tc.To], event, s.action(tc))
	}

	return s, nil
}

func (s *Show) action(tc TransitionConfig) func() {
	switch tc.Action {
	case ActionLog:
		return func() {
			s.logger.Info("transition", "from", tc.From, "to", tc.To, "event", tc.Event)
		}
	default:
		return nil
	}
}

func (st *stage) enter() {
	st.enteredAt = st.show.clock.Now()
	st.fired = false
	for i, h := range st.hosts {
		h.Swap(st.effects[i])
	}
}

func (st *stage) tick() {
	now := st.show.clock.Now()
	for _, h := range st.hosts {
		h.Update(now)
	}
	if st.timeout > 0 && !st.fired && clock.Elapsed(now, st.enteredAt) >= st.timeout {
		st.fired = true
		st.show.logger.Debug("state timeout", "state", st.name)
		st.show.machine.Trigger(st.event)
	}
}

func (st *stage) exit() {
	for _, h := range st.hosts {
		h.Release()
	}
}

// Tick advances the state machine by one control-loop pass.
func (s *Show) Tick() {
	s.machine.Tick()
}

// Trigger resolves name to an event and triggers it.
func (s *Show) Trigger(name string) error {
	event, ok := s.cfg.Event(name)
	if !ok {
		return fmt.Errorf("%w %q", ErrUnknownEvent, name)
	}
	s.machine.Trigger(event)
	return nil
}

// Machine returns the underlying table machine.
func (s *Show) Machine() *statemachine.TableMachine {
	return s.machine
}

// Current returns the name of the current state.
func (s *Show) Current() string {
	return s.machine.Current().String()
}

// States returns the states in file order.
func (s *Show) States() []*statemachine.State {
	return s.states
}

// State looks up a state by name.
func (s *Show) State(name string) (*statemachine.State, bool) {
	st, ok := s.byName[name]
	return st, ok
}

// Config returns the show definition.
func (s *Show) Config() *Config {
	return s.cfg
}

// Channels reports every channel's active effect and levels.
func (s *Show) Channels() []ChannelStatus {
	out := make([]ChannelStatus, len(s.hosts))
	for i, h := range s.hosts {
		cs := ChannelStatus{Name: s.cfg.Channels[i].Name, Output: s.cfg.Channels[i].Output}
		if e := h.Current(); e != nil {
			cs.Kind = e.Kind()
			cs.Brightness = e.Brightness()
			cs.Level = e.Level()
		}
		out[i] = cs
	}
	return out
}

// ReleaseAll exits every active effect and parks all channels off.
func (s *Show) ReleaseAll() {
	for _, h := range s.hosts {
		h.Release()
	}
}
