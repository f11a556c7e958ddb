package status

import (
	"encoding/json"
	"time"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event         string        `json:"event,omitempty"`
	Reason        string        `json:"reason,omitempty"`
	RunID         string        `json:"run_id"`
	Lifecycle     string        `json:"lifecycle"`
	State         string        `json:"state"`
	Ready         bool          `json:"ready"`
	UptimeSeconds int64         `json:"uptime_seconds"`
	StartTime     string        `json:"start_time"`
	Timestamp     string        `json:"timestamp"`
	MQTT          MQTTStatus    `json:"mqtt"`
	Counts        CountsJSON    `json:"counts"`
	Channels      []ChannelJSON `json:"channels"`
	Config        ConfigJSON    `json:"config"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Buffered  int    `json:"buffered"`
	Broker    string `json:"broker"`
}

// CountsJSON holds machine and button counters.
type CountsJSON struct {
	Triggers    int `json:"triggers"`
	Transitions int `json:"transitions"`
	Ignored     int `json:"ignored"`
	Queued      int `json:"queued"`
	Presses     int `json:"presses"`
	Releases    int `json:"releases"`
}

// ChannelJSON is one output channel.
type ChannelJSON struct {
	Name       string `json:"name"`
	Output     int    `json:"output"`
	Effect     string `json:"effect"`
	Brightness uint8  `json:"brightness"`
	Level      uint8  `json:"level"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	Show        string `json:"show"`
	Sink        string `json:"sink"`
	TickMs      int64  `json:"tick_ms"`
	DebounceMs  int64  `json:"debounce_ms"`
	HeartbeatMs int64  `json:"heartbeat_ms"`
	Broker      string `json:"broker"`
	HTTPAddr    string `json:"http_addr"`
}

func orUnknown(s string) string {
	if s == "" {
		return "UNKNOWN"
	}
	return s
}

func buildInner(snap Snapshot) StatusInner {
	inner := StatusInner{
		RunID:         snap.RunID,
		Lifecycle:     orUnknown(snap.Lifecycle),
		State:         orUnknown(snap.State),
		Ready:         snap.Ready(),
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		MQTT:          MQTTStatus{Connected: snap.MQTTConnected, Buffered: snap.MQTTBuffered, Broker: snap.Config.Broker},
		Counts: CountsJSON{
			Triggers:    snap.Machine.Triggers,
			Transitions: snap.Machine.Transitions,
			Ignored:     snap.Machine.Ignored,
			Queued:      snap.Machine.Queued,
			Presses:     snap.Buttons.Presses,
			Releases:    snap.Buttons.Releases,
		},
		Channels: make([]ChannelJSON, 0, len(snap.Channels)),
		Config: ConfigJSON{
			Show:        snap.Config.Show,
			Sink:        snap.Config.Sink,
			TickMs:      snap.Config.TickMs,
			DebounceMs:  snap.Config.DebounceMs,
			HeartbeatMs: snap.Config.HeartbeatMs,
			Broker:      snap.Config.Broker,
			HTTPAddr:    snap.Config.HTTPAddr,
		},
	}
	for _, ch := range snap.Channels {
		effect := ch.Kind
		if effect == "" {
			effect = "off"
		}
		inner.Channels = append(inner.Channels, ChannelJSON{
			Name:       ch.Name,
			Output:     ch.Output,
			Effect:     effect,
			Brightness: ch.Brightness,
			Level:      ch.Level,
		})
	}
	return inner
}

// FormatJSON returns the JSON status for the web endpoint.
func FormatJSON(snap Snapshot) []byte {
	data, _ := json.MarshalIndent(StatusJSON{Status: buildInner(snap)}, "", "  ")
	return data
}

// FormatStatusEvent returns the JSON status for an MQTT system event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason

	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
