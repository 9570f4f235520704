// pkg/quadlet/verify.go

package quadlet

import (
	"time"

	cerr "github.com/cockroachdb/errors"
	"github.com/netbootworks/ztpctl/pkg/shared"
	"github.com/netbootworks/ztpctl/pkg/systemd"
	"github.com/netbootworks/ztpctl/pkg/ztp_io"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// ErrUnitsMissing reports that the generator did not produce the expected
// service units within the retry window. Triggers manual synthesis.
var ErrUnitsMissing = cerr.New("systemd generator did not produce the expected units")

// ExpectedServices returns the service units the generator must produce
// from the installed quadlet fragments, pod first.
func ExpectedServices() []string {
	return []string{
		shared.PodServiceName,
		shared.NginxServiceName,
		shared.WebuiServiceName,
	}
}

// MissingServices reloads the daemon and reports which expected units
// systemd still does not know about.
func MissingServices(rc *ztp_io.RuntimeContext) ([]string, error) {
	if err := systemd.DaemonReload(rc); err != nil {
		return nil, err
	}

	var missing []string
	for _, unit := range ExpectedServices() {
		if !systemd.UnitExists(rc, unit) {
			missing = append(missing, unit)
		}
	}
	return missing, nil
}

// Seams for the verification loop, swapped in tests.
var (
	missingServices  = MissingServices
	waitForGenerator = func() { time.Sleep(shared.UnitGenerationWait) }
)

// VerifyGenerated confirms the generator produced every expected unit,
// allowing a bounded reload-wait-recheck cycle for slow generators. The
// quadlet generator fails silently; a missing unit is the only signal,
// so the caller falls back to synthesis when this returns ErrUnitsMissing.
func VerifyGenerated(rc *ztp_io.RuntimeContext) ([]string, error) {
	logger := otelzap.Ctx(rc.Ctx)

	var missing []string
	var err error
	for attempt := 0; attempt <= shared.UnitGenerationRetries; attempt++ {
		if attempt > 0 {
			waitForGenerator()
		}
		missing, err = missingServices(rc)
		if err != nil {
			return nil, err
		}
		if len(missing) == 0 {
			logger.Info("Generated service units verified",
				zap.Strings("units", ExpectedServices()))
			return nil, nil
		}

		logger.Warn("Expected service units not yet generated",
			zap.Strings("missing", missing),
			zap.Int("attempt", attempt+1))
	}

	return missing, ErrUnitsMissing
}
