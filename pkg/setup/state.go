// pkg/setup/state.go

package setup

import (
	"github.com/netbootworks/ztpctl/pkg/ztp_io"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// State names one phase of a setup run. The run advances strictly forward;
// a failure parks the machine in the matching failure state so the final
// report can say exactly how far the run got.
type State string

const (
	StateFresh            State = "fresh"
	StatePreviousDetected State = "previous-detected"
	StateDiscovered       State = "discovered"
	StateServicesStopped  State = "services-stopped"
	StateBackedUp         State = "backed-up"
	StateCleaned          State = "cleaned"
	StateConfigured       State = "configured"
	StateApplied          State = "applied"
	StateUnitsVerified    State = "units-verified"
	StateStarted          State = "started"
	StateDone             State = "done"

	StateBackupFailed State = "backup-failed"
	StateApplyFailed  State = "apply-failed"
	StateStartFailed  State = "start-failed"
)

// Machine tracks progression through the setup phases and keeps the
// ordered history for the final report.
type Machine struct {
	Current State
	History []State
}

func NewMachine() *Machine {
	return &Machine{Current: StateFresh, History: []State{StateFresh}}
}

// Advance moves to the next phase, logging the transition.
func (m *Machine) Advance(rc *ztp_io.RuntimeContext, next State) {
	otelzap.Ctx(rc.Ctx).Info("Setup phase",
		zap.String("from", string(m.Current)),
		zap.String("to", string(next)))
	m.Current = next
	m.History = append(m.History, next)
}

// Fail parks the machine in a terminal failure state.
func (m *Machine) Fail(rc *ztp_io.RuntimeContext, state State, err error) {
	otelzap.Ctx(rc.Ctx).Error("Setup failed",
		zap.String("phase", string(m.Current)),
		zap.String("failure", string(state)),
		zap.Error(err))
	m.Current = state
	m.History = append(m.History, state)
}
