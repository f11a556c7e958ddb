// Command led-sequencer runs a lighting show: effects on LED channels,
// sequenced by a table-driven state machine and triggered by buttons, MQTT
// and HTTP.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/sweeney/led-sequencer/internal/logging"
)

func main() {
	app := &cli.Command{
		Name:    "led-sequencer",
		Version: Version,
		Usage:   "Run and inspect LED light shows",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "log-level",
				Value: "info",
				Usage: "trace, debug, info, warn or error",
			},
			&cli.StringFlag{
				Name:  "log-format",
				Value: logging.FormatText,
				Usage: "text or json",
			},
		},
		Commands: []*cli.Command{
			runCmd,
			validateCmd,
			demoCmd,
			versionCmd,
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// setupLogger builds the logger from the root flags and installs it as the
// slog default.
func setupLogger(cmd *cli.Command) *slog.Logger {
	logger := logging.New(cmd.String("log-format"), cmd.String("log-level"), nil)
	slog.SetDefault(logger)
	return logger
}

// showPath reads --show, falling back to the first argument.
func showPath(cmd *cli.Command) (string, error) {
	if p := cmd.String("show"); p != "" {
		return p, nil
	}
	if cmd.Args().Len() > 0 {
		return cmd.Args().Get(0), nil
	}
	return "", fmt.Errorf("show file required (use --show or give it as an argument)")
}
