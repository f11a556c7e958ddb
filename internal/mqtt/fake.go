package mqtt

// FakePublisher records published events for test assertions.
type FakePublisher struct {
	// Transitions contains every transition that was published.
	Transitions []TransitionEvent

	// Payloads contains the JSON payloads for transitions.
	Payloads [][]byte

	// SystemEvents contains every system event that was published.
	SystemEvents []SystemEvent

	// SystemPayloads contains the JSON payloads for system events.
	SystemPayloads [][]byte

	// PublishError, if set, is returned by Publish.
	PublishError error

	// PublishSystemError, if set, is returned by PublishSystem.
	PublishSystemError error

	// CommandCh is returned by Commands. Tests send on it.
	CommandCh chan string

	// Closed tracks if Close was called.
	Closed bool

	// Connected controls the return value of IsConnected.
	Connected bool

	// Pending controls the return value of Buffered.
	Pending int
}

// NewFakePublisher creates a FakePublisher for testing.
func NewFakePublisher() *FakePublisher {
	return &FakePublisher{CommandCh: make(chan string, 16)}
}

// Publish records the transition.
func (f *FakePublisher) Publish(event TransitionEvent) error {
	if f.PublishError != nil {
		return f.PublishError
	}
	payload, err := FormatPayload(event)
	if err != nil {
		return err
	}
	f.Transitions = append(f.Transitions, event)
	f.Payloads = append(f.Payloads, payload)
	return nil
}

// PublishSystem records the system event.
func (f *FakePublisher) PublishSystem(event SystemEvent) error {
	if f.PublishSystemError != nil {
		return f.PublishSystemError
	}
	payload, err := FormatSystemPayload(event)
	if err != nil {
		return err
	}
	f.SystemEvents = append(f.SystemEvents, event)
	f.SystemPayloads = append(f.SystemPayloads, payload)
	return nil
}

// Commands returns CommandCh.
func (f *FakePublisher) Commands() <-chan string {
	return f.CommandCh
}

// Close marks the publisher as closed.
func (f *FakePublisher) Close() error {
	f.Closed = true
	return nil
}

// IsConnected reports whether the fake publisher is "connected".
func (f *FakePublisher) IsConnected() bool {
	return f.Connected
}

// Buffered returns Pending.
func (f *FakePublisher) Buffered() int {
	return f.Pending
}

// Reset clears recorded events and injected errors.
func (f *FakePublisher) Reset() {
	f.Transitions = nil
	f.Payloads = nil
	f.SystemEvents = nil
	f.SystemPayloads = nil
	f.PublishError = nil
	f.PublishSystemError = nil
	f.Closed = false
	f.Connected = false
	f.Pending = 0
}
