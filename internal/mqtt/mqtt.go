// Package mqtt publishes state transitions and daemon lifecycle events, and
// receives trigger commands, over MQTT.
package mqtt

import (
	"encoding/json"
	"errors"
	"strings"
	"time"
)

// Topics used by the sequencer.
const (
	TopicEvents  = "lights/sequencer/events"
	TopicSystem  = "lights/sequencer/system"
	TopicCommand = "lights/sequencer/command"
)

// Publisher publishes events to MQTT.
type Publisher interface {
	// Publish sends a state transition. It must not block on the broker.
	// Errors are reported but must not stop the caller.
	Publish(event TransitionEvent) error

	// PublishSystem sends a lifecycle event.
	PublishSystem(event SystemEvent) error

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the MQTT connection is active and how
// many messages are still waiting to be sent.
type ConnectionStatus interface {
	IsConnected() bool
	Buffered() int
}

// CommandSource delivers trigger commands received on TopicCommand. Each
// value is an event name or decimal code.
type CommandSource interface {
	Commands() <-chan string
}

// TransitionEvent is a completed state change.
type TransitionEvent struct {
	Timestamp time.Time
	From      string
	To        string
	Event     int
	Direct    bool
}

// SystemEvent is a lifecycle event (STARTUP, SHUTDOWN, HEARTBEAT, ...).
type SystemEvent struct {
	Timestamp  time.Time
	Event      string
	Reason     string // shutdown only
	RawPayload []byte // pre-formatted payload; returned as is by FormatSystemPayload
	Retained   bool
}

// Payload is the message published on TopicEvents.
type Payload struct {
	Transition TransitionPayload `json:"transition"`
}

// TransitionPayload contains the transition details.
type TransitionPayload struct {
	Timestamp string `json:"timestamp"`
	From      string `json:"from"`
	To        string `json:"to"`
	Event     int    `json:"event"`
	Direct    bool   `json:"direct,omitempty"`
}

// FormatPayload creates the JSON payload for a transition.
func FormatPayload(event TransitionEvent) ([]byte, error) {
	return json.Marshal(Payload{
		Transition: TransitionPayload{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			From:      event.From,
			To:        event.To,
			Event:     event.Event,
			Direct:    event.Direct,
		},
	})
}

// SystemPayload is used for simple events (LWT, RECONNECTED) that do not
// carry a status snapshot.
type SystemPayload struct {
	System SystemPayloadInner `json:"system"`
}

// SystemPayloadInner contains the system event details.
type SystemPayloadInner struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Reason    string `json:"reason,omitempty"`
}

// FormatSystemPayload creates the JSON payload for a system event.
func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	if event.RawPayload != nil {
		return event.RawPayload, nil
	}
	return json.Marshal(SystemPayload{
		System: SystemPayloadInner{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     event.Event,
			Reason:    event.Reason,
		},
	})
}

// Command is the JSON form of a command message. Plain text payloads are
// taken as the event itself.
type Command struct {
	Event string `json:"event"`
}

// ErrEmptyCommand is returned for a command without an event.
var ErrEmptyCommand = errors.New("mqtt: empty command")

// ParseCommand extracts the event name from a command payload, either
// `{"event":"alarm"}` or the bare text `alarm`.
func ParseCommand(payload []byte) (string, error) {
	text := strings.TrimSpace(string(payload))
	if strings.HasPrefix(text, "{") {
		var cmd Command
		if err := json.Unmarshal([]byte(text), &cmd); err != nil {
			return "", err
		}
		text = strings.TrimSpace(cmd.Event)
	}
	if text == "" {
		return "", ErrEmptyCommand
	}
	return text, nil
}
