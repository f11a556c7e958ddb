package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/sweeney/led-sequencer/internal/clock"
	"github.com/sweeney/led-sequencer/internal/effect"
	"github.com/sweeney/led-sequencer/internal/show"
	"github.com/sweeney/led-sequencer/internal/statemachine"
)

var demoCmd = &cli.Command{
	Name:      "demo",
	Usage:     "Walk through every state of a show in file order",
	ArgsUsage: "[show.toml]",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "show", Aliases: []string{"s"}, Usage: "Path to the TOML show file"},
		&cli.DurationFlag{Name: "dwell", Value: 3 * time.Second, Usage: "Time spent in each state"},
		&cli.DurationFlag{Name: "tick", Value: 2 * time.Millisecond, Usage: "Control loop interval"},
		&cli.IntFlag{Name: "loops", Value: 1, Usage: "Passes over the state list"},
		&cli.StringFlag{Name: "sink", Value: sinkLog, Usage: "Output: gpio, sn3218 or log"},
		&cli.StringFlag{Name: "i2c-dev", Value: "/dev/i2c-1", Usage: "I2C device for the sn3218 sink"},
		&cli.IntFlag{Name: "seed", Value: 1, Usage: "Random seed"},
	},
	Action: func(ctx context.Context, cmd *cli.Command) error {
		logger := setupLogger(cmd)
		path, err := showPath(cmd)
		if err != nil {
			return err
		}
		cfg, err := show.Load(path)
		if err != nil {
			return err
		}

		sink, closeSink, err := openSink(cmd.String("sink"), cfg, cmd.String("i2c-dev"), logger)
		if err != nil {
			return err
		}
		defer closeLogged("sink", closeSink, logger)

		sh, err := show.Build(cfg, show.Deps{
			Sink:   sink,
			Clock:  clock.NewMonotonic(),
			Random: effect.NewSource(uint64(cmd.Int("seed"))),
			Logger: logger,
		})
		if err != nil {
			return err
		}
		defer sh.ReleaseAll()

		tick := cmd.Duration("tick")
		if tick <= 0 {
			return fmt.Errorf("--tick must be positive")
		}
		ticker := time.NewTicker(tick)
		defer ticker.Stop()

		m := statemachine.NewMachine(
			statemachine.WithLogger(logger),
			statemachine.WithObserver(func(c statemachine.Change) {
				logger.Info("demo state", "from", c.From.String(), "to", c.To.String())
			}),
		)
		return runDemo(ctx, m, sh.States(), int(cmd.Int("loops")), cmd.Duration("dwell"), ticker.C, time.Now, logger)
	},
}

// runDemo enters each state directly with GoTo and ticks it for dwell,
// then leaves the machine with no current state. State timeouts do not fire
// here: they are table events and nothing drives the table.
func runDemo(ctx context.Context, m *statemachine.Machine, states []*statemachine.State, loops int, dwell time.Duration, tick <-chan time.Time, now func() time.Time, logger *slog.Logger) error {
	defer m.GoTo(nil)

	for pass := 0; pass < loops; pass++ {
		for _, st := range states {
			m.GoTo(st)
			entered := now()
			for now().Sub(entered) < dwell {
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-tick:
					m.Tick()
				}
			}
		}
		logger.Debug("demo pass complete", "pass", pass+1)
	}
	return nil
}
