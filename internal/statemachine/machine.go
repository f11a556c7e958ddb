package statemachine

// Machine moves between states on explicit request.
type Machine struct {
	current *State
	opts    options
}

// NewMachine creates a Machine with no current state.
func NewMachine(opts ...Option) *Machine {
	return &Machine{opts: newOptions(opts)}
}

// GoTo exits the current state, if any, and enters target. A nil target
// leaves the machine with no current state.
func (m *Machine) GoTo(target *State) {
	from := m.current
	from.exit()
	m.current = target
	target.enter()

	m.opts.logger.Debug("state changed", "from", from.String(), "to", target.String())
	m.opts.notify(Change{From: from, To: target, Direct: true})
}

// IsCurrent reports whether s is the current state.
func (m *Machine) IsCurrent(s *State) bool {
	return m.current == s
}

// Current returns the current state, or nil.
func (m *Machine) Current() *State {
	return m.current
}

// Tick runs the current state's OnTick.
func (m *Machine) Tick() {
	m.current.tick()
}
