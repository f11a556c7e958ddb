// Package status provides a thread-safe status tracker for the sequencer
// daemon. The control loop writes it; HTTP handlers and heartbeats read it.
package status

import (
	"sync"
	"time"

	"github.com/sweeney/led-sequencer/internal/debounce"
	"github.com/sweeney/led-sequencer/internal/show"
	"github.com/sweeney/led-sequencer/internal/statemachine"
)

// Config contains daemon configuration for display.
type Config struct {
	Show        string
	Sink        string
	TickMs      int64
	DebounceMs  int64
	HeartbeatMs int64
	Broker      string
	HTTPAddr    string
}

// Snapshot is a point-in-time view of daemon state. It is a value type and
// safe to use after the lock is released.
type Snapshot struct {
	RunID         string
	Lifecycle     string
	State         string
	Started       bool
	Channels      []show.ChannelStatus
	Machine       statemachine.Stats
	Baselined     bool
	Buttons       debounce.Counts
	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	MQTTBuffered  int
	Config        Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Ready reports whether the show is running and the buttons have settled.
func (s Snapshot) Ready() bool {
	return s.Started && s.Baselined
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewTracker creates a Tracker.
func NewTracker(startTime time.Time, runID string, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			RunID:     runID,
			StartTime: startTime,
			Config:    cfg,
		},
	}
}

// Update records the show's state. Called from the run loop on every tick.
func (t *Tracker) Update(state string, started bool, channels []show.ChannelStatus, stats statemachine.Stats) {
	t.mu.Lock()
	t.snap.State = state
	t.snap.Started = started
	t.snap.Channels = channels
	t.snap.Machine = stats
	t.mu.Unlock()
}

// SetButtons records the button detector's state.
func (t *Tracker) SetButtons(baselined bool, counts debounce.Counts) {
	t.mu.Lock()
	t.snap.Baselined = baselined
	t.snap.Buttons = counts
	t.mu.Unlock()
}

// SetLifecycle records the daemon lifecycle state.
func (t *Tracker) SetLifecycle(state string) {
	t.mu.Lock()
	t.snap.Lifecycle = state
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// SetMQTTBuffered records how many messages are waiting for the broker.
func (t *Tracker) SetMQTTBuffered(n int) {
	t.mu.Lock()
	t.snap.MQTTBuffered = n
	t.mu.Unlock()
}

// Snapshot returns a copy of the daemon state with Now set to the current
// time.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	s.Channels = append([]show.ChannelStatus(nil), t.snap.Channels...)
	t.mu.RUnlock()
	s.Now = time.Now()
	return s
}
