package status

import (
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sweeney/led-sequencer/internal/debounce"
	"github.com/sweeney/led-sequencer/internal/show"
	"github.com/sweeney/led-sequencer/internal/statemachine"
)

var start = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func TestNewTracker(t *testing.T) {
	cfg := Config{TickMs: 10, DebounceMs: 50, Broker: "tcp://localhost:1883", HTTPAddr: ":80"}
	tr := NewTracker(start, "run-1", cfg)

	snap := tr.Snapshot()
	if !snap.StartTime.Equal(start) {
		t.Errorf("StartTime: got %v, want %v", snap.StartTime, start)
	}
	if snap.RunID != "run-1" {
		t.Errorf("RunID: got %q", snap.RunID)
	}
	if snap.Config.TickMs != 10 {
		t.Errorf("Config.TickMs: got %d, want 10", snap.Config.TickMs)
	}
	if snap.Ready() {
		t.Error("expected not ready initially")
	}
	if snap.MQTTConnected {
		t.Error("expected MQTTConnected=false initially")
	}
}

func TestUpdateAndSnapshot(t *testing.T) {
	tr := NewTracker(start, "", Config{})
	channels := []show.ChannelStatus{{Name: "eyes", Output: 0, Kind: "sine", Brightness: 255, Level: 40}}
	tr.Update("alarm", true, channels, statemachine.Stats{Triggers: 3, Transitions: 2, Ignored: 1})
	tr.SetButtons(true, debounce.Counts{Presses: 4, Releases: 4})

	snap := tr.Snapshot()
	if snap.State != "alarm" {
		t.Errorf("State: got %q, want alarm", snap.State)
	}
	if !snap.Ready() {
		t.Error("expected ready")
	}
	if snap.Machine.Transitions != 2 {
		t.Errorf("Machine.Transitions: got %d, want 2", snap.Machine.Transitions)
	}
	if snap.Buttons.Presses != 4 {
		t.Errorf("Buttons.Presses: got %d, want 4", snap.Buttons.Presses)
	}
	if len(snap.Channels) != 1 || snap.Channels[0].Level != 40 {
		t.Errorf("Channels: got %+v", snap.Channels)
	}

	// the snapshot owns its channel slice
	snap.Channels[0].Level = 99
	if tr.Snapshot().Channels[0].Level != 40 {
		t.Error("snapshot shares channel slice with tracker")
	}
}

func TestReadyNeedsBothStartedAndBaselined(t *testing.T) {
	tr := NewTracker(start, "", Config{})
	tr.Update("idle", true, nil, statemachine.Stats{})
	if tr.Snapshot().Ready() {
		t.Error("ready before buttons baselined")
	}
	tr.SetButtons(true, debounce.Counts{})
	if !tr.Snapshot().Ready() {
		t.Error("expected ready")
	}
}

func TestSetLifecycleAndMQTT(t *testing.T) {
	tr := NewTracker(start, "", Config{})
	tr.SetLifecycle("Running")
	tr.SetMQTTConnected(true)
	tr.SetMQTTBuffered(4)

	snap := tr.Snapshot()
	if snap.Lifecycle != "Running" {
		t.Errorf("Lifecycle: got %q", snap.Lifecycle)
	}
	if !snap.MQTTConnected {
		t.Error("expected MQTTConnected=true")
	}
	if snap.MQTTBuffered != 4 {
		t.Errorf("MQTTBuffered: got %d, want 4", snap.MQTTBuffered)
	}
}

func TestSnapshotSetsNow(t *testing.T) {
	tr := NewTracker(time.Now().Add(-time.Minute), "", Config{})
	snap := tr.Snapshot()
	if snap.Uptime() < time.Minute {
		t.Errorf("Uptime: got %v, want >= 1m", snap.Uptime())
	}
}

func TestConcurrentAccess(t *testing.T) {
	tr := NewTracker(start, "", Config{})
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				tr.Update("idle", true, []show.ChannelStatus{{Name: "a"}}, statemachine.Stats{Triggers: j})
				tr.SetMQTTConnected(j%2 == 0)
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_ = tr.Snapshot()
			}
		}()
	}
	wg.Wait()
}

func testSnapshot() Snapshot {
	return Snapshot{
		RunID:     "0b5c",
		Lifecycle: "Running",
		State:     "heart",
		Started:   true,
		Baselined: true,
		Channels: []show.ChannelStatus{
			{Name: "eyes", Output: 0, Kind: "heartbeat", Brightness: 200, Level: 12},
			{Name: "core", Output: 1},
		},
		Machine:       statemachine.Stats{Triggers: 5, Transitions: 3, Ignored: 2},
		Buttons:       debounce.Counts{Presses: 1, Releases: 1},
		StartTime:     start,
		Now:           start.Add(90 * time.Second),
		MQTTConnected: true,
		MQTTBuffered:  3,
		Config:        Config{Show: "show.toml", Sink: "log", TickMs: 5, Broker: "tcp://b:1883"},
	}
}

func TestFormatJSON(t *testing.T) {
	var sj StatusJSON
	if err := json.Unmarshal(FormatJSON(testSnapshot()), &sj); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	s := sj.Status

	if s.State != "heart" || s.Lifecycle != "Running" || s.RunID != "0b5c" {
		t.Errorf("identity fields: %+v", s)
	}
	if !s.Ready {
		t.Error("expected ready")
	}
	if s.UptimeSeconds != 90 {
		t.Errorf("UptimeSeconds: got %d, want 90", s.UptimeSeconds)
	}
	if s.Timestamp != "2026-01-01T00:01:30Z" {
		t.Errorf("Timestamp: got %q", s.Timestamp)
	}
	if s.Counts.Transitions != 3 || s.Counts.Ignored != 2 || s.Counts.Presses != 1 {
		t.Errorf("Counts: %+v", s.Counts)
	}
	if len(s.Channels) != 2 {
		t.Fatalf("Channels: got %d, want 2", len(s.Channels))
	}
	if s.Channels[0].Effect != "heartbeat" || s.Channels[0].Level != 12 {
		t.Errorf("Channels[0]: %+v", s.Channels[0])
	}
	if s.Channels[1].Effect != "off" {
		t.Errorf("idle channel effect: got %q, want off", s.Channels[1].Effect)
	}
	if !s.MQTT.Connected || s.MQTT.Buffered != 3 {
		t.Errorf("MQTT: %+v", s.MQTT)
	}
	if s.Event != "" || s.Reason != "" {
		t.Error("web JSON must not carry event/reason")
	}
}

func TestFormatJSONUnknownState(t *testing.T) {
	data := string(FormatJSON(Snapshot{StartTime: start, Now: start}))
	if !strings.Contains(data, `"state": "UNKNOWN"`) {
		t.Errorf("expected UNKNOWN state in %s", data)
	}
	if !strings.Contains(data, `"channels": []`) {
		t.Errorf("expected empty channel list in %s", data)
	}
}

func TestFormatStatusEvent(t *testing.T) {
	data := FormatStatusEvent(testSnapshot(), "SHUTDOWN", "SIGTERM")
	if strings.Contains(string(data), "\n") {
		t.Error("status event should be compact")
	}

	var sj StatusJSON
	if err := json.Unmarshal(data, &sj); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if sj.Status.Event != "SHUTDOWN" || sj.Status.Reason != "SIGTERM" {
		t.Errorf("event/reason: got %q/%q", sj.Status.Event, sj.Status.Reason)
	}
}
