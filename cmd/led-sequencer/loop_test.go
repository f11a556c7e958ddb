package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/sweeney/led-sequencer/internal/clock"
	"github.com/sweeney/led-sequencer/internal/effect"
	"github.com/sweeney/led-sequencer/internal/gpio"
	"github.com/sweeney/led-sequencer/internal/mqtt"
	"github.com/sweeney/led-sequencer/internal/show"
	"github.com/sweeney/led-sequencer/internal/statemachine"
	"github.com/sweeney/led-sequencer/internal/status"
)

const testShow = `
initial = "idle"

[events]
button = 1
alarm = 2
expired = 4

[[channels]]
name = "eyes"
output = 0

[[states]]
name = "idle"
  [[states.effects]]
  channel = "eyes"
  kind = "dimmer"
  brightness = 40

[[states]]
name = "alarm"
timeout_ms = 1000
timeout_event = "expired"
  [[states.effects]]
  channel = "eyes"
  kind = "dimmer"
  brightness = 255
  strobe = 4

[[states]]
name = "heart"
  [[states.effects]]
  channel = "eyes"
  kind = "heartbeat"

[[transitions]]
from = "idle"
to = "alarm"
event = "alarm"

[[transitions]]
from = "alarm"
to = "idle"
event = "expired"

[[transitions]]
from = "idle"
to = "heart"
event = "button"

[[transitions]]
from = "heart"
to = "idle"
event = "button"

[[buttons]]
name = "front"
pin = 17
press = "button"
`

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

var start = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

// fakeClock returns a function that yields start, start+step, ... on
// successive calls and keeps the show clock in step with it. Only called
// from the loop's goroutine once the loop is running.
func fakeClock(show *clock.Fake, step time.Duration) func() time.Time {
	n := 0
	return func() time.Time {
		t := start.Add(time.Duration(n) * step)
		n++
		show.Set(clock.FromDuration(t.Sub(start)))
		return t
	}
}

type harness struct {
	show    *show.Show
	sink    *effect.FakeSink
	pub     *mqtt.FakePublisher
	tracker *status.Tracker
	loop    *loop

	tick     chan time.Time
	commands chan string
	sig      chan os.Signal
	done     chan struct{}
}

func newHarness(t *testing.T, buttons gpio.Reader, heartbeat time.Duration) *harness {
	t.Helper()
	cfg, err := show.Parse([]byte(testShow))
	if err != nil {
		t.Fatalf("parse show: %v", err)
	}

	h := &harness{
		sink:     effect.NewFakeSink(),
		pub:      mqtt.NewFakePublisher(),
		tracker:  status.NewTracker(start, "test", status.Config{}),
		tick:     make(chan time.Time),
		commands: make(chan string),
		sig:      make(chan os.Signal, 1),
		done:     make(chan struct{}),
	}
	fake := clock.NewFake(0)
	now := fakeClock(fake, 100*time.Millisecond)

	h.show, err = show.Build(cfg, show.Deps{
		Sink:      h.sink,
		Clock:     fake,
		Random:    effect.NewSequence(0),
		Logger:    quiet,
		Observers: []statemachine.Observer{publishTransitions(h.pub, func() time.Time { return start }, quiet)},
	})
	if err != nil {
		t.Fatalf("build show: %v", err)
	}
	h.loop = newLoop(h.show, buttons, 50*time.Millisecond, h.pub, h.tracker, heartbeat, now, quiet)
	return h
}

func (h *harness) start(ctx context.Context) {
	go func() {
		h.loop.run(ctx, h.tick, h.commands, nil, h.sig)
		close(h.done)
	}()
}

func (h *harness) ticks(n int) {
	for i := 0; i < n; i++ {
		h.tick <- time.Time{}
	}
}

func (h *harness) stop(s os.Signal) {
	h.sig <- s
	<-h.done
}

func TestRunLoopStartsShowOnFirstTick(t *testing.T) {
	h := newHarness(t, nil, 0)
	h.start(context.Background())
	h.ticks(3)
	h.stop(syscall.SIGTERM)

	if got := h.show.Current(); got != "idle" {
		t.Errorf("state: got %q, want idle", got)
	}
	if len(h.pub.Transitions) != 0 {
		t.Errorf("initial entry is not a transition, got %d", len(h.pub.Transitions))
	}
	if lvl, ok := h.sink.Last(0); !ok || lvl == 0 {
		t.Errorf("idle dimmer should drive channel 0, got %d (written=%v)", lvl, ok)
	}
	if len(h.pub.SystemEvents) != 1 || h.pub.SystemEvents[0].Event != "SHUTDOWN" {
		t.Fatalf("expected one SHUTDOWN event, got %+v", h.pub.SystemEvents)
	}
	if h.pub.SystemEvents[0].Reason != "SIGTERM" {
		t.Errorf("reason: got %q, want SIGTERM", h.pub.SystemEvents[0].Reason)
	}
	if !strings.Contains(string(h.pub.SystemPayloads[0]), `"state":"idle"`) {
		t.Errorf("shutdown payload missing state: %s", h.pub.SystemPayloads[0])
	}
}

func TestRunLoopReportsMQTTStatus(t *testing.T) {
	h := newHarness(t, nil, 0)
	h.pub.Connected = true
	h.pub.Pending = 3
	h.start(context.Background())
	h.ticks(2)
	h.stop(syscall.SIGTERM)

	snap := h.tracker.Snapshot()
	if !snap.MQTTConnected {
		t.Error("expected MQTTConnected=true")
	}
	if snap.MQTTBuffered != 3 {
		t.Errorf("MQTTBuffered: got %d, want 3", snap.MQTTBuffered)
	}
}

func TestRunLoopCommandTriggersTransition(t *testing.T) {
	h := newHarness(t, nil, 0)
	h.start(context.Background())
	h.ticks(1)
	h.commands <- "alarm"
	h.ticks(1)
	h.stop(syscall.SIGINT)

	if len(h.pub.Transitions) != 1 {
		t.Fatalf("expected 1 transition, got %d", len(h.pub.Transitions))
	}
	tr := h.pub.Transitions[0]
	if tr.From != "idle" || tr.To != "alarm" || tr.Event != 2 {
		t.Errorf("transition: got %+v", tr)
	}
	if h.pub.SystemEvents[0].Reason != "SIGINT" {
		t.Errorf("reason: got %q, want SIGINT", h.pub.SystemEvents[0].Reason)
	}
}

func TestRunLoopCommandBeforeFirstTickIgnored(t *testing.T) {
	h := newHarness(t, nil, 0)
	h.start(context.Background())
	h.commands <- "alarm"
	h.ticks(2)
	h.stop(syscall.SIGTERM)

	if got := h.show.Current(); got != "idle" {
		t.Errorf("state: got %q, want idle", got)
	}
	if len(h.pub.Transitions) != 0 {
		t.Errorf("expected no transitions, got %d", len(h.pub.Transitions))
	}
}

func TestRunLoopUnknownCommand(t *testing.T) {
	h := newHarness(t, nil, 0)
	h.start(context.Background())
	h.ticks(1)
	h.commands <- "nonsense"
	h.commands <- "99"
	h.ticks(1)
	h.stop(syscall.SIGTERM)

	if len(h.pub.Transitions) != 0 {
		t.Errorf("expected no transitions, got %d", len(h.pub.Transitions))
	}
	stats := h.show.Machine().Stats()
	if stats.Triggers != 1 || stats.Ignored != 1 {
		t.Errorf("only the numeric code reaches the machine: %+v", stats)
	}
}

func TestRunLoopStateTimeout(t *testing.T) {
	run := func(t *testing.T, after int) *harness {
		h := newHarness(t, nil, 0)
		h.start(context.Background())
		h.ticks(1) // t=100ms
		h.commands <- "alarm"
		h.ticks(after)
		h.stop(syscall.SIGTERM)
		return h
	}

	t.Run("before timeout", func(t *testing.T) {
		h := run(t, 9) // last tick t=1000ms, 900ms in alarm
		if got := h.show.Current(); got != "alarm" {
			t.Errorf("state: got %q, want alarm", got)
		}
	})

	t.Run("at timeout", func(t *testing.T) {
		h := run(t, 10) // last tick t=1100ms
		if len(h.pub.Transitions) != 2 {
			t.Fatalf("expected 2 transitions, got %d", len(h.pub.Transitions))
		}
		if back := h.pub.Transitions[1]; back.From != "alarm" || back.To != "idle" || back.Event != 4 {
			t.Errorf("timeout transition: got %+v", back)
		}
	})
}

func TestRunLoopButtonPress(t *testing.T) {
	reader := gpio.NewFakeReader(
		[]bool{false}, []bool{false}, []bool{false},
		[]bool{true}, []bool{true}, []bool{true},
	)
	h := newHarness(t, reader, 0)
	h.start(context.Background())
	h.ticks(6)
	h.stop(syscall.SIGTERM)

	if len(h.pub.Transitions) != 1 {
		t.Fatalf("expected 1 transition, got %d", len(h.pub.Transitions))
	}
	if got := h.pub.Transitions[0]; got.From != "idle" || got.To != "heart" {
		t.Errorf("transition: got %+v", got)
	}
	snap := h.tracker.Snapshot()
	if snap.Buttons.Presses != 1 {
		t.Errorf("presses: got %d, want 1", snap.Buttons.Presses)
	}
	if snap.State != "heart" {
		t.Errorf("tracked state: got %q, want heart", snap.State)
	}
}

// faultReader returns errors for a range of Read calls.
type faultReader struct {
	inner      *gpio.FakeReader
	call       int
	faultStart int
	faultEnd   int
}

func (r *faultReader) Read() ([]bool, error) {
	i := r.call
	r.call++
	if i >= r.faultStart && i < r.faultEnd {
		return nil, errors.New("gpio fault")
	}
	return r.inner.Read()
}

func (r *faultReader) Close() error { return r.inner.Close() }

func TestRunLoopButtonReadErrorRecovery(t *testing.T) {
	reader := &faultReader{inner: gpio.NewFakeReader([]bool{false}), faultStart: 0, faultEnd: 3}
	h := newHarness(t, reader, 0)
	h.start(context.Background())
	h.ticks(6)
	h.stop(syscall.SIGTERM)

	if got := h.show.Current(); got != "idle" {
		t.Errorf("show should keep running through read errors, state %q", got)
	}
	if !h.tracker.Snapshot().Baselined {
		t.Error("buttons should baseline once reads recover")
	}
}

func TestRunLoopHeartbeat(t *testing.T) {
	h := newHarness(t, nil, 250*time.Millisecond)
	h.start(context.Background())
	h.ticks(6) // t=100..600ms
	h.stop(syscall.SIGTERM)

	var beats int
	for i, ev := range h.pub.SystemEvents {
		if ev.Event != "HEARTBEAT" {
			continue
		}
		beats++
		if !strings.Contains(string(h.pub.SystemPayloads[i]), `"event":"HEARTBEAT"`) {
			t.Errorf("heartbeat payload: %s", h.pub.SystemPayloads[i])
		}
	}
	if beats != 2 {
		t.Errorf("heartbeats: got %d, want 2", beats)
	}
}

func TestRunLoopPublishError(t *testing.T) {
	h := newHarness(t, nil, 0)
	h.pub.PublishError = errors.New("broker down")
	h.start(context.Background())
	h.ticks(1)
	h.commands <- "alarm"
	h.ticks(1)
	h.stop(syscall.SIGTERM)

	if got := h.show.Current(); got != "alarm" {
		t.Errorf("publish failure must not block transitions, state %q", got)
	}
}

func TestRunLoopContextCancel(t *testing.T) {
	h := newHarness(t, nil, 0)
	ctx, cancel := context.WithCancel(context.Background())
	h.start(ctx)
	h.ticks(1)
	cancel()
	<-h.done

	if len(h.pub.SystemEvents) != 1 || h.pub.SystemEvents[0].Reason != "CANCELLED" {
		t.Errorf("expected SHUTDOWN/CANCELLED, got %+v", h.pub.SystemEvents)
	}
}

func TestSignalName(t *testing.T) {
	cases := map[os.Signal]string{
		syscall.SIGINT:  "SIGINT",
		syscall.SIGTERM: "SIGTERM",
		syscall.SIGHUP:  "UNKNOWN",
	}
	for s, want := range cases {
		if got := signalName(s); got != want {
			t.Errorf("signalName(%v): got %q, want %q", s, got, want)
		}
	}
}
