// Package show loads a lighting show from TOML and wires it into effect
// hosts and a table-driven state machine.
package show

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/pelletier/go-toml/v2"

	"github.com/sweeney/led-sequencer/internal/effect"
	"github.com/sweeney/led-sequencer/internal/statemachine"
)

var (
	ErrParse          = errors.New("parse show")
	ErrNoStates       = errors.New("show has no states")
	ErrUnknownState   = errors.New("unknown state")
	ErrUnknownChannel = errors.New("unknown channel")
	ErrUnknownEvent   = errors.New("unknown event")
	ErrUnknownKind    = errors.New("unknown effect kind")
	ErrDuplicate      = errors.New("duplicate name")
	ErrUnknownAction  = errors.New("unknown transition action")
)

// ActionLog logs the transition when it fires. An empty action does nothing.
const ActionLog = "log"

// Config is the on-disk show definition.
type Config struct {
	Initial     string             `toml:"initial"`
	Events      map[string]int     `toml:"events"`
	Channels    []ChannelConfig    `toml:"channels"`
	States      []StateConfig      `toml:"states"`
	Transitions []TransitionConfig `toml:"transitions"`
	Buttons     []ButtonConfig     `toml:"buttons"`
}

// ChannelConfig names one output of the sink.
type ChannelConfig struct {
	Name   string `toml:"name"`
	Output int    `toml:"output"`
}

// StateConfig describes one state and the effects it runs.
type StateConfig struct {
	Name         string         `toml:"name"`
	TimeoutMs    uint32         `toml:"timeout_ms"`
	TimeoutEvent string         `toml:"timeout_event"`
	Effects      []EffectConfig `toml:"effects"`
}

// EffectConfig selects an effect kind for a channel. Only the fields that
// apply to the kind are read; numeric values outside a field's range are
// clamped, not rejected.
type EffectConfig struct {
	Channel    string `toml:"channel"`
	Kind       string `toml:"kind"`
	Brightness *int   `toml:"brightness"`

	Strobe      int  `toml:"strobe"`
	Intensity   *int `toml:"intensity"`
	PeriodMs    int  `toml:"period_ms"`
	Threshold   *int `toml:"threshold"`
	Base        int  `toml:"base"`
	Frequency   int  `toml:"frequency"`
	Denominator int  `toml:"denominator"`
	Minimum     int  `toml:"minimum"`
	SpaceMs     int  `toml:"space_ms"`
}

// TransitionConfig is one row of the transition table. Event is a name
// from the events table or a decimal code.
type TransitionConfig struct {
	From   string `toml:"from"`
	To     string `toml:"to"`
	Event  string `toml:"event"`
	Action string `toml:"action"`
}

// ButtonConfig maps a debounced input to events.
type ButtonConfig struct {
	Name    string `toml:"name"`
	Pin     int    `toml:"pin"`
	Press   string `toml:"press"`
	Release string `toml:"release"`
}

// Load reads and parses a show file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read show: %w", err)
	}
	return Parse(data)
}

// Parse decodes a show from TOML. Unknown keys are rejected.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	dec := toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParse, err)
	}
	return &cfg, nil
}

// Event resolves name against the events table, falling back to a decimal
// event code.
func (c *Config) Event(name string) (statemachine.Event, bool) {
	if code, ok := c.Events[name]; ok {
		return statemachine.Event(code), true
	}
	code, err := strconv.Atoi(name)
	if err != nil {
		return 0, false
	}
	return statemachine.Event(code), true
}

// Validate reports every problem in the show at once.
func (c *Config) Validate() error {
	var errs []error

	if len(c.States) == 0 {
		errs = append(errs, ErrNoStates)
	}

	channels := make(map[string]bool, len(c.Channels))
	for _, ch := range c.Channels {
		if channels[ch.Name] {
			errs = append(errs, fmt.Errorf("%w: channel %q", ErrDuplicate, ch.Name))
		}
		channels[ch.Name] = true
	}

	states := make(map[string]bool, len(c.States))
	for _, s := range c.States {
		if states[s.Name] {
			errs = append(errs, fmt.Errorf("%w: state %q", ErrDuplicate, s.Name))
		}
		states[s.Name] = true

		used := make(map[string]bool, len(s.Effects))
		for _, e := range s.Effects {
			if !channels[e.Channel] {
				errs = append(errs, fmt.Errorf("state %q: %w %q", s.Name, ErrUnknownChannel, e.Channel))
			}
			if used[e.Channel] {
				errs = append(errs, fmt.Errorf("state %q: %w: channel %q used twice", s.Name, ErrDuplicate, e.Channel))
			}
			used[e.Channel] = true
			if !validKind(e.Kind) {
				errs = append(errs, fmt.Errorf("state %q: %w %q", s.Name, ErrUnknownKind, e.Kind))
			}
		}

		if s.TimeoutMs > 0 {
			if _, ok := c.Event(s.TimeoutEvent); !ok {
				errs = append(errs, fmt.Errorf("state %q timeout: %w %q", s.Name, ErrUnknownEvent, s.TimeoutEvent))
			}
		}
	}

	if len(c.States) > 0 && !states[c.Initial] {
		errs = append(errs, fmt.Errorf("initial: %w %q", ErrUnknownState, c.Initial))
	}

	for i, t := range c.Transitions {
		if !states[t.From] {
			errs = append(errs, fmt.Errorf("transition %d from: %w %q", i, ErrUnknownState, t.From))
		}
		if !states[t.To] {
			errs = append(errs, fmt.Errorf("transition %d to: %w %q", i, ErrUnknownState, t.To))
		}
		if _, ok := c.Event(t.Event); !ok {
			errs = append(errs, fmt.Errorf("transition %d: %w %q", i, ErrUnknownEvent, t.Event))
		}
		if t.Action != "" && t.Action != ActionLog {
			errs = append(errs, fmt.Errorf("transition %d: %w %q", i, ErrUnknownAction, t.Action))
		}
	}

	for _, b := range c.Buttons {
		for _, name := range []string{b.Press, b.Release} {
			if name == "" {
				continue
			}
			if _, ok := c.Event(name); !ok {
				errs = append(errs, fmt.Errorf("button %q: %w %q", b.Name, ErrUnknownEvent, name))
			}
		}
	}

	return errors.Join(errs...)
}

func validKind(kind string) bool {
	switch kind {
	case effect.KindDimmer, effect.KindSparkle, effect.KindFlickerDown,
		effect.KindFlickerUp, effect.KindSine, effect.KindHeartbeat:
		return true
	default:
		return false
	}
}
