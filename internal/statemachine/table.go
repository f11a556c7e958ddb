package statemachine

// Event is an opaque trigger code. Its meaning comes from the transition
// table alone.
type Event int

// Transition is one row of the table.
type Transition struct {
	From         *State
	To           *State
	Event        Event
	OnTransition func()
}

// Stats counts trigger outcomes since the machine was created.
type Stats struct {
	Triggers    int // Trigger calls, including those before the first Tick
	Transitions int // transitions executed
	Ignored     int // triggers dropped: not started or no matching row
	Queued      int // triggers deferred because a transition was in progress
}

// TableMachine resolves events against an ordered transition table.
//
// The initial state's OnEnter runs on the first Tick, never from the
// constructor, and triggers are ignored until then. For a given current
// state and event the earliest registered row wins.
//
// A Trigger issued from inside a transition callback, or from the initial
// OnEnter, is queued and runs once the transition in progress has finished.
// Queued events are processed in the order they were triggered.
type TableMachine struct {
	current     *State
	transitions []Transition
	started     bool
	busy        bool
	queue       []Event
	stats       Stats
	opts        options
}

// NewTableMachine creates a machine that starts in initial.
func NewTableMachine(initial *State, opts ...Option) *TableMachine {
	return &TableMachine{current: initial, opts: newOptions(opts)}
}

// AddTransition appends a row. Rows with a nil from or to state, and rows
// added after the first Tick, are dropped.
func (m *TableMachine) AddTransition(from, to *State, event Event, onTransition func()) {
	if from == nil || to == nil {
		m.opts.logger.Debug("dropping transition with nil state", "event", int(event))
		return
	}
	if m.started {
		m.opts.logger.Debug("dropping transition added after start",
			"from", from.Name, "to", to.Name, "event", int(event))
		return
	}
	m.transitions = append(m.transitions, Transition{
		From:         from,
		To:           to,
		Event:        event,
		OnTransition: onTransition,
	})
}

// Transitions returns a copy of the table in priority order.
func (m *TableMachine) Transitions() []Transition {
	out := make([]Transition, len(m.transitions))
	copy(out, m.transitions)
	return out
}

// Trigger fires the first row matching the current state and event.
func (m *TableMachine) Trigger(event Event) {
	m.stats.Triggers++
	if !m.started {
		m.stats.Ignored++
		m.opts.logger.Debug("trigger before first tick ignored", "event", int(event))
		return
	}
	if m.busy {
		m.stats.Queued++
		m.queue = append(m.queue, event)
		return
	}

	m.busy = true
	m.fire(event)
	m.drain()
	m.busy = false
}

// Tick runs the deferred initial OnEnter on the first call, then the
// current state's OnTick.
func (m *TableMachine) Tick() {
	if !m.started {
		m.started = true
		m.busy = true
		m.current.enter()
		m.drain()
		m.busy = false
	}
	m.current.tick()
}

// Current returns the current state.
func (m *TableMachine) Current() *State {
	return m.current
}

// IsCurrent reports whether s is the current state.
func (m *TableMachine) IsCurrent(s *State) bool {
	return m.current == s
}

// Started reports whether the first Tick has run.
func (m *TableMachine) Started() bool {
	return m.started
}

// Stats returns the trigger counters.
func (m *TableMachine) Stats() Stats {
	return m.stats
}

func (m *TableMachine) drain() {
	for len(m.queue) > 0 {
		event := m.queue[0]
		m.queue = m.queue[1:]
		m.fire(event)
	}
	m.queue = nil
}

func (m *TableMachine) fire(event Event) {
	t, ok := m.lookup(event)
	if !ok {
		m.stats.Ignored++
		m.opts.logger.Debug("no transition for event", "state", m.current.String(), "event", int(event))
		return
	}

	t.From.exit()
	if t.OnTransition != nil {
		t.OnTransition()
	}
	t.To.enter()
	m.current = t.To
	m.stats.Transitions++

	m.opts.logger.Debug("state changed", "from", t.From.Name, "to", t.To.Name, "event", int(event))
	m.opts.notify(Change{From: t.From, To: t.To, Event: event})
}

func (m *TableMachine) lookup(event Event) (Transition, bool) {
	for _, t := range m.transitions {
		if t.From == m.current && t.Event == event {
			return t, true
		}
	}
	return Transition{}, false
}
