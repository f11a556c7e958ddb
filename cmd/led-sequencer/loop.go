package main

import (
	"context"
	"log/slog"
	"os"
	"syscall"
	"time"

	"github.com/sweeney/led-sequencer/internal/debounce"
	"github.com/sweeney/led-sequencer/internal/gpio"
	"github.com/sweeney/led-sequencer/internal/mqtt"
	"github.com/sweeney/led-sequencer/internal/show"
	"github.com/sweeney/led-sequencer/internal/statemachine"
	"github.com/sweeney/led-sequencer/internal/status"
)

// loop owns the show. Everything that touches it runs on the goroutine
// calling run.
type loop struct {
	show       *show.Show
	buttons    gpio.Reader // nil when the show has no buttons
	detector   *debounce.Detector
	publisher  mqtt.Publisher
	mqttStatus mqtt.ConnectionStatus // may be nil
	tracker    *status.Tracker
	heartbeat  time.Duration
	now        func() time.Time
	logger     *slog.Logger
}

func newLoop(sh *show.Show, buttons gpio.Reader, debounceWindow time.Duration, publisher mqtt.Publisher, tracker *status.Tracker, heartbeat time.Duration, now func() time.Time, logger *slog.Logger) *loop {
	var names []string
	if buttons != nil {
		for _, b := range sh.Config().Buttons {
			names = append(names, b.Name)
		}
	}
	l := &loop{
		show:      sh,
		buttons:   buttons,
		detector:  debounce.NewDetector(names, debounceWindow, now()),
		publisher: publisher,
		tracker:   tracker,
		heartbeat: heartbeat,
		now:       now,
		logger:    logger,
	}
	if cs, ok := publisher.(mqtt.ConnectionStatus); ok {
		l.mqttStatus = cs
	}
	return l
}

// run services ticks and trigger commands until a signal arrives or ctx is
// done. Both command channels carry event names or codes; either may be nil.
func (l *loop) run(ctx context.Context, tick <-chan time.Time, mqttCommands, httpCommands <-chan string, sig <-chan os.Signal) {
	for {
		select {
		case <-ctx.Done():
			l.shutdown("CANCELLED")
			return

		case s := <-sig:
			l.logger.Info("received signal", "signal", s.String())
			l.shutdown(signalName(s))
			return

		case name := <-mqttCommands:
			l.trigger(name, "mqtt")

		case name := <-httpCommands:
			l.trigger(name, "http")

		case <-tick:
			l.step(l.now())
		}
	}
}

func (l *loop) trigger(name, source string) {
	if !l.show.Machine().Started() {
		l.logger.Warn("trigger before first tick ignored", "event", name, "source", source)
		return
	}
	if err := l.show.Trigger(name); err != nil {
		l.logger.Warn("bad trigger", "event", name, "source", source, "error", err)
		return
	}
	l.logger.Debug("trigger", "event", name, "source", source, "state", l.show.Current())
}

// step is one control-loop pass.
func (l *loop) step(t time.Time) {
	var pressed []bool
	if l.buttons != nil {
		var err error
		pressed, err = l.buttons.Read()
		if err != nil {
			l.logger.Warn("button read error", "error", err)
		}
	}
	if pressed != nil || l.buttons == nil {
		for _, e := range l.detector.Process(t, pressed) {
			l.buttonEvent(e)
		}
	}

	l.show.Tick()

	if hb := l.detector.CheckHeartbeat(t, l.heartbeat); hb != nil {
		l.logger.Info("heartbeat", "uptime", hb.Uptime, "state", l.show.Current(),
			"presses", hb.Counts.Presses, "releases", hb.Counts.Releases)
		l.updateStatus()
		ev := mqtt.SystemEvent{Timestamp: hb.Timestamp, Event: "HEARTBEAT"}
		if l.tracker != nil {
			ev.RawPayload = status.FormatStatusEvent(l.tracker.Snapshot(), "HEARTBEAT", "")
		}
		if err := l.publisher.PublishSystem(ev); err != nil {
			l.logger.Warn("heartbeat publish error", "error", err)
		}
		return
	}

	l.updateStatus()
}

func (l *loop) buttonEvent(e debounce.Event) {
	b := l.show.Config().Buttons[e.Input]
	name := b.Press
	if e.Edge == debounce.Release {
		name = b.Release
	}
	l.logger.Debug("button", "name", e.Name, "edge", string(e.Edge), "event", name)
	if name == "" {
		return
	}
	l.trigger(name, "button")
}

func (l *loop) updateStatus() {
	if l.tracker == nil {
		return
	}
	m := l.show.Machine()
	l.tracker.Update(l.show.Current(), m.Started(), l.show.Channels(), m.Stats())
	l.tracker.SetButtons(l.detector.IsBaselined(), l.detector.Counts())
	if l.mqttStatus != nil {
		l.tracker.SetMQTTConnected(l.mqttStatus.IsConnected())
		l.tracker.SetMQTTBuffered(l.mqttStatus.Buffered())
	}
}

func signalName(s os.Signal) string {
	switch s {
	case syscall.SIGINT:
		return "SIGINT"
	case syscall.SIGTERM:
		return "SIGTERM"
	}
	return "UNKNOWN"
}

func (l *loop) shutdown(reason string) {
	l.logger.Info("shutting down", "reason", reason)
	ev := mqtt.SystemEvent{Timestamp: l.now(), Event: "SHUTDOWN", Reason: reason, Retained: true}
	if l.tracker != nil {
		l.updateStatus()
		ev.RawPayload = status.FormatStatusEvent(l.tracker.Snapshot(), "SHUTDOWN", reason)
	}
	if err := l.publisher.PublishSystem(ev); err != nil {
		l.logger.Warn("failed to publish shutdown event", "error", err)
	}
}

// publishTransitions returns an observer that logs and publishes every
// state change.
func publishTransitions(p mqtt.Publisher, now func() time.Time, logger *slog.Logger) statemachine.Observer {
	return func(c statemachine.Change) {
		logger.Info("state changed", "from", c.From.String(), "to", c.To.String(), "event", int(c.Event), "direct", c.Direct)
		ev := mqtt.TransitionEvent{
			Timestamp: now(),
			From:      c.From.String(),
			To:        c.To.String(),
			Event:     int(c.Event),
			Direct:    c.Direct,
		}
		if err := p.Publish(ev); err != nil {
			logger.Warn("publish error", "error", err)
		}
	}
}
