package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/urfave/cli/v3"

	"github.com/sweeney/led-sequencer/internal/clock"
	"github.com/sweeney/led-sequencer/internal/effect"
	"github.com/sweeney/led-sequencer/internal/gpio"
	"github.com/sweeney/led-sequencer/internal/lifecycle"
	"github.com/sweeney/led-sequencer/internal/mqtt"
	"github.com/sweeney/led-sequencer/internal/show"
	"github.com/sweeney/led-sequencer/internal/statemachine"
	"github.com/sweeney/led-sequencer/internal/status"
	"github.com/sweeney/led-sequencer/internal/web"
)

var runCmd = &cli.Command{
	Name:      "run",
	Usage:     "Run a show",
	ArgsUsage: "[show.toml]",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "show", Aliases: []string{"s"}, Usage: "Path to the TOML show file"},
		&cli.DurationFlag{Name: "tick", Value: 2 * time.Millisecond, Usage: "Control loop interval"},
		&cli.DurationFlag{Name: "debounce", Value: 50 * time.Millisecond, Usage: "Button debounce window"},
		&cli.DurationFlag{Name: "heartbeat", Value: 15 * time.Minute, Usage: "Heartbeat interval (0 to disable)"},
		&cli.StringFlag{Name: "broker", Usage: "MQTT broker address, e.g. tcp://192.168.1.200:1883 (empty to disable)"},
		&cli.StringFlag{Name: "http", Value: ":8080", Usage: "HTTP status address (empty to disable)"},
		&cli.StringFlag{Name: "sink", Value: sinkGPIO, Usage: "Output: gpio, sn3218 or log"},
		&cli.StringFlag{Name: "i2c-dev", Value: "/dev/i2c-1", Usage: "I2C device for the sn3218 sink"},
		&cli.IntFlag{Name: "seed", Usage: "Random seed for sparkle and flicker (0 = time based)"},
	},
	Action: func(ctx context.Context, cmd *cli.Command) error {
		path, err := showPath(cmd)
		if err != nil {
			return err
		}
		seed := uint64(cmd.Int("seed"))
		if seed == 0 {
			seed = uint64(time.Now().UnixNano())
		}
		return run(ctx, runOptions{
			showPath:  path,
			tick:      cmd.Duration("tick"),
			debounce:  cmd.Duration("debounce"),
			heartbeat: cmd.Duration("heartbeat"),
			broker:    cmd.String("broker"),
			httpAddr:  cmd.String("http"),
			sink:      cmd.String("sink"),
			i2cDev:    cmd.String("i2c-dev"),
			seed:      seed,
		}, setupLogger(cmd))
	},
}

type runOptions struct {
	showPath  string
	tick      time.Duration
	debounce  time.Duration
	heartbeat time.Duration
	broker    string
	httpAddr  string
	sink      string
	i2cDev    string
	seed      uint64
}

// nopPublisher stands in when no broker is configured.
type nopPublisher struct{}

func (nopPublisher) Publish(mqtt.TransitionEvent) error { return nil }
func (nopPublisher) PublishSystem(mqtt.SystemEvent) error { return nil }
func (nopPublisher) Close() error                         { return nil }

func run(ctx context.Context, o runOptions, logger *slog.Logger) error {
	if o.tick <= 0 {
		return errors.New("--tick must be positive")
	}

	life, err := lifecycle.New(logger.Handler())
	if err != nil {
		return fmt.Errorf("init lifecycle: %w", err)
	}
	if err := life.Transition(lifecycle.StatusBooting); err != nil {
		return fmt.Errorf("boot: %w", err)
	}

	if err := serve(ctx, o, logger, life); err != nil {
		lifecycle.Fail(life, logger, err)
		return err
	}
	return life.Transition(lifecycle.StatusStopped)
}

func serve(ctx context.Context, o runOptions, logger *slog.Logger, life lifecycle.Machine) error {
	cfg, err := show.Load(o.showPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid show %s: %w", o.showPath, err)
	}

	runID, err := uuid.NewV4()
	if err != nil {
		return fmt.Errorf("run id: %w", err)
	}

	sink, closeSink, err := openSink(o.sink, cfg, o.i2cDev, logger)
	if err != nil {
		return err
	}
	defer closeLogged("sink", closeSink, logger)

	var publisher mqtt.Publisher = nopPublisher{}
	var mqttCommands <-chan string
	if o.broker != "" {
		p, err := mqtt.NewRealPublisher(mqtt.Options{
			Broker:   o.broker,
			ClientID: "led-sequencer-" + runID.String()[:8],
			Logger:   logger.With("component", "mqtt"),
		})
		if err != nil {
			return fmt.Errorf("init mqtt: %w", err)
		}
		defer p.Close()
		publisher = p
		mqttCommands = p.Commands()
	}

	tracker := status.NewTracker(time.Now(), runID.String(), status.Config{
		Show:        o.showPath,
		Sink:        o.sink,
		TickMs:      o.tick.Milliseconds(),
		DebounceMs:  o.debounce.Milliseconds(),
		HeartbeatMs: o.heartbeat.Milliseconds(),
		Broker:      o.broker,
		HTTPAddr:    o.httpAddr,
	})
	tracker.SetLifecycle(life.GetState())

	sh, err := show.Build(cfg, show.Deps{
		Sink:      sink,
		Clock:     clock.NewMonotonic(),
		Random:    effect.NewSource(o.seed),
		Logger:    logger.With("component", "show"),
		Observers: []statemachine.Observer{publishTransitions(publisher, time.Now, logger)},
	})
	if err != nil {
		return err
	}
	defer sh.ReleaseAll()

	var buttons gpio.Reader
	if len(cfg.Buttons) > 0 {
		pins := make([]int, len(cfg.Buttons))
		for i, b := range cfg.Buttons {
			pins[i] = b.Pin
		}
		r, err := gpio.NewRealReader(pins)
		if err != nil {
			logger.Warn("buttons unavailable, continuing without them", "error", err)
		} else {
			defer r.Close()
			buttons = r
		}
	}

	var httpCommands chan string
	if o.httpAddr != "" {
		httpCommands = make(chan string, 16)
		srv := web.New(o.httpAddr, tracker, httpCommands)
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("http server error", "error", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		logger.Info("http status server listening", "addr", o.httpAddr)
	}

	snap := tracker.Snapshot()
	if err := publisher.PublishSystem(mqtt.SystemEvent{
		Timestamp:  snap.Now,
		Event:      "STARTUP",
		Retained:   true,
		RawPayload: status.FormatStatusEvent(snap, "STARTUP", ""),
	}); err != nil {
		logger.Warn("failed to publish startup event", "error", err)
	}

	if err := life.Transition(lifecycle.StatusRunning); err != nil {
		return fmt.Errorf("start: %w", err)
	}
	tracker.SetLifecycle(life.GetState())
	logger.Info("started", "show", o.showPath, "initial", cfg.Initial, "sink", o.sink,
		"tick", o.tick, "debounce", o.debounce, "heartbeat", o.heartbeat, "run_id", runID.String())

	ticker := time.NewTicker(o.tick)
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	l := newLoop(sh, buttons, o.debounce, publisher, tracker, o.heartbeat, time.Now, logger)
	l.run(ctx, ticker.C, mqttCommands, httpCommands, sigCh)

	return life.Transition(lifecycle.StatusStopping)
}
