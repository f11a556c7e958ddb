// Package lifecycle tracks the daemon's run state (booting, running,
// stopping, ...) with the go-fsm state machine.
package lifecycle

import (
	"log/slog"

	"github.com/robbyt/go-fsm"
)

const (
	StatusNew      = fsm.StatusNew
	StatusBooting  = fsm.StatusBooting
	StatusRunning  = fsm.StatusRunning
	StatusStopping = fsm.StatusStopping
	StatusStopped  = fsm.StatusStopped
	StatusError    = fsm.StatusError
)

// Machine is the subset of the go-fsm machine the daemon uses.
type Machine interface {
	Transition(state string) error
	GetState() string
}

// New creates a lifecycle machine in StatusNew with the standard transitions.
func New(handler slog.Handler) (Machine, error) {
	m, err := fsm.New(handler, StatusNew, fsm.TypicalTransitions)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// Fail moves m to StatusError, logging if even that is refused.
func Fail(m Machine, logger *slog.Logger, cause error) {
	if err := m.Transition(StatusError); err != nil {
		logger.Error("lifecycle: cannot enter error state", "cause", cause, "error", err)
	}
}
