// pkg/setup/state_test.go

package setup

import (
	"testing"

	cerr "github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
)

func TestMachine_AdvanceKeepsHistory(t *testing.T) {
	rc := testRC(t)
	m := NewMachine()
	assert.Equal(t, StateFresh, m.Current)

	m.Advance(rc, StatePreviousDetected)
	m.Advance(rc, StateDiscovered)
	m.Advance(rc, StateServicesStopped)

	assert.Equal(t, StateServicesStopped, m.Current)
	assert.Equal(t, []State{
		StateFresh, StatePreviousDetected, StateDiscovered, StateServicesStopped,
	}, m.History)
}

func TestMachine_FailIsTerminalState(t *testing.T) {
	rc := testRC(t)
	m := NewMachine()
	m.Advance(rc, StateDiscovered)

	m.Fail(rc, StateBackupFailed, cerr.New("disk full"))

	assert.Equal(t, StateBackupFailed, m.Current)
	assert.Equal(t, StateDiscovered, m.History[len(m.History)-2],
		"history records how far the run got before failing")
}
