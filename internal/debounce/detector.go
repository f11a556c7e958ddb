// Package debounce turns raw button samples into clean press and release
// edges. It has no hardware or time dependencies: callers pass every sample
// with its timestamp.
package debounce

import "time"

// Edge is the direction of a debounced change.
type Edge string

const (
	Press   Edge = "PRESS"
	Release Edge = "RELEASE"
)

// Event is a debounced edge on one input.
type Event struct {
	Timestamp time.Time
	Input     int
	Name      string
	Edge      Edge
}

// Counts tracks edges seen since startup.
type Counts struct {
	Presses  int
	Releases int
}

// HeartbeatData is produced by CheckHeartbeat when the interval is due.
type HeartbeatData struct {
	Timestamp time.Time
	Uptime    time.Duration
	Counts    Counts
}

type input struct {
	name         string
	stable       bool
	pending      bool
	hasPending   bool
	pendingSince time.Time
	baselined    bool
}

// Detector debounces a fixed set of inputs. An input must hold a value for
// the debounce window before it is accepted, first as the baseline and
// afterwards as an edge. No edges are reported until every input has a
// baseline.
type Detector struct {
	window        time.Duration
	inputs        []input
	baselined     bool
	startTime     time.Time
	counts        Counts
	lastHeartbeat time.Time
}

// NewDetector creates a detector for the named inputs.
func NewDetector(names []string, window time.Duration, startTime time.Time) *Detector {
	d := &Detector{
		window:        window,
		inputs:        make([]input, len(names)),
		startTime:     startTime,
		lastHeartbeat: startTime,
	}
	for i, n := range names {
		d.inputs[i].name = n
	}
	return d
}

// Process takes one sample per input and returns the edges it completes,
// in input order. Missing trailing values read as released.
func (d *Detector) Process(now time.Time, pressed []bool) []Event {
	var events []Event
	for i := range d.inputs {
		v := i < len(pressed) && pressed[i]
		if edge, ok := d.step(&d.inputs[i], v, now); ok {
			events = append(events, Event{Timestamp: now, Input: i, Name: d.inputs[i].name, Edge: edge})
		}
	}

	if !d.baselined {
		for i := range d.inputs {
			if !d.inputs[i].baselined {
				return nil
			}
		}
		d.baselined = true
		return nil
	}

	for _, e := range events {
		if e.Edge == Press {
			d.counts.Presses++
		} else {
			d.counts.Releases++
		}
	}
	return events
}

func (d *Detector) step(in *input, v bool, now time.Time) (Edge, bool) {
	if !in.baselined {
		if !in.hasPending || in.pending != v {
			in.pending, in.hasPending, in.pendingSince = v, true, now
			return "", false
		}
		if now.Sub(in.pendingSince) >= d.window {
			in.stable, in.baselined, in.hasPending = v, true, false
		}
		return "", false
	}

	if v == in.stable {
		in.hasPending = false
		return "", false
	}
	if !in.hasPending || in.pending != v {
		in.pending, in.hasPending, in.pendingSince = v, true, now
		return "", false
	}
	if now.Sub(in.pendingSince) < d.window {
		return "", false
	}

	in.stable, in.hasPending = v, false
	if v {
		return Press, true
	}
	return Release, true
}

// IsBaselined reports whether every input has a baseline.
func (d *Detector) IsBaselined() bool {
	return d.baselined
}

// Stable returns the debounced state of every input.
func (d *Detector) Stable() []bool {
	out := make([]bool, len(d.inputs))
	for i, in := range d.inputs {
		out[i] = in.stable
	}
	return out
}

// Counts returns the edges seen so far.
func (d *Detector) Counts() Counts {
	return d.counts
}

// CheckHeartbeat returns heartbeat data if interval has elapsed since the
// last heartbeat (or startup). It returns nil before the baseline, before
// the interval, or when interval <= 0.
func (d *Detector) CheckHeartbeat(now time.Time, interval time.Duration) *HeartbeatData {
	if interval <= 0 || !d.baselined {
		return nil
	}
	if now.Sub(d.lastHeartbeat) < interval {
		return nil
	}

	d.lastHeartbeat = now
	return &HeartbeatData{
		Timestamp: now,
		Uptime:    now.Sub(d.startTime),
		Counts:    d.counts,
	}
}
