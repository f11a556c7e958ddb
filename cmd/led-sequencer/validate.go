package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/urfave/cli/v3"

	"github.com/sweeney/led-sequencer/internal/show"
)

var (
	titleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	headStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Bold(true)
	stateStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("13"))
	eventStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	infoStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Italic(true)
)

var validateCmd = &cli.Command{
	Name:      "validate",
	Aliases:   []string{"lint"},
	Usage:     "Validate a show file",
	ArgsUsage: "[show.toml]",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "show", Aliases: []string{"s"}, Usage: "Path to the TOML show file"},
	},
	Action: func(ctx context.Context, cmd *cli.Command) error {
		path, err := showPath(cmd)
		if err != nil {
			return err
		}
		cfg, err := show.Load(path)
		if err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}
		fmt.Printf("Show file %s is valid\n", path)
		fmt.Println(renderShowSummary(path, cfg))
		return nil
	},
}

// renderShowSummary lists the show's channels, states and transition table.
func renderShowSummary(path string, cfg *show.Config) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Show "+path) + "\n")

	b.WriteString(headStyle.Render("Channels") + "\n")
	for _, ch := range cfg.Channels {
		fmt.Fprintf(&b, "  %s → output %d\n", ch.Name, ch.Output)
	}

	b.WriteString(headStyle.Render("States") + "\n")
	for _, st := range cfg.States {
		name := stateStyle.Render(st.Name)
		if st.Name == cfg.Initial {
			name += infoStyle.Render(" (initial)")
		}
		b.WriteString("  " + name + "\n")
		for _, ec := range st.Effects {
			fmt.Fprintf(&b, "    %s: %s\n", ec.Channel, ec.Kind)
		}
		if st.TimeoutMs > 0 {
			fmt.Fprintf(&b, "    after %dms: %s\n", st.TimeoutMs, eventStyle.Render(st.TimeoutEvent))
		}
	}

	b.WriteString(headStyle.Render("Transitions") + infoStyle.Render(" (first match wins)") + "\n")
	for _, t := range cfg.Transitions {
		fmt.Fprintf(&b, "  %s --%s--> %s\n", stateStyle.Render(t.From), eventStyle.Render(t.Event), stateStyle.Render(t.To))
	}

	if len(cfg.Buttons) > 0 {
		b.WriteString(headStyle.Render("Buttons") + "\n")
		for _, btn := range cfg.Buttons {
			fmt.Fprintf(&b, "  %s (pin %d) press=%s release=%s\n", btn.Name, btn.Pin, orDash(btn.Press), orDash(btn.Release))
		}
	}

	return b.String()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
