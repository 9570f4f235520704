// pkg/quadlet/verify_test.go

package quadlet

import (
	"context"
	"testing"

	"github.com/netbootworks/ztpctl/pkg/shared"
	"github.com/netbootworks/ztpctl/pkg/ztp_io"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stubVerifySeams(t *testing.T, probe func(*ztp_io.RuntimeContext) ([]string, error), waits *int) {
	t.Helper()
	origProbe, origWait := missingServices, waitForGenerator
	missingServices = probe
	waitForGenerator = func() { *waits++ }
	t.Cleanup(func() {
		missingServices = origProbe
		waitForGenerator = origWait
	})
}

func TestVerifyGenerated_NoWaitAfterFinalRecheck(t *testing.T) {
	rc := ztp_io.NewContext(context.Background(), "quadlet-test")

	checks, waits := 0, 0
	stubVerifySeams(t, func(*ztp_io.RuntimeContext) ([]string, error) {
		checks++
		return []string{shared.PodServiceName}, nil
	}, &waits)

	missing, err := VerifyGenerated(rc)
	require.ErrorIs(t, err, ErrUnitsMissing)
	assert.Equal(t, []string{shared.PodServiceName}, missing)

	assert.Equal(t, shared.UnitGenerationRetries+1, checks)
	assert.Equal(t, shared.UnitGenerationRetries, waits,
		"a failed run waits between rechecks, never after the last one")
}

func TestVerifyGenerated_SucceedsOnRetry(t *testing.T) {
	rc := ztp_io.NewContext(context.Background(), "quadlet-test")

	checks, waits := 0, 0
	stubVerifySeams(t, func(*ztp_io.RuntimeContext) ([]string, error) {
		checks++
		if checks == 1 {
			return []string{shared.WebuiServiceName}, nil
		}
		return nil, nil
	}, &waits)

	missing, err := VerifyGenerated(rc)
	require.NoError(t, err)
	assert.Nil(t, missing)
	assert.Equal(t, 1, waits)
}
