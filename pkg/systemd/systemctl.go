// pkg/systemd/systemctl.go

package systemd

import (
	"os/exec"
	"strings"
	"time"

	cerr "github.com/cockroachdb/errors"
	"github.com/netbootworks/ztpctl/pkg/execute"
	"github.com/netbootworks/ztpctl/pkg/shared"
	"github.com/netbootworks/ztpctl/pkg/ztp_io"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// CheckAvailable validates that systemctl exists before any service work.
func CheckAvailable() error {
	if _, err := exec.LookPath("systemctl"); err != nil {
		return cerr.Wrap(err, "systemctl not found")
	}
	return nil
}

// DaemonReload asks systemd to re-run its generators, which is how quadlet
// fragments become service units.
func DaemonReload(rc *ztp_io.RuntimeContext) error {
	if err := execute.RunSimple(rc.Ctx, "systemctl", "daemon-reload"); err != nil {
		return cerr.Wrap(err, "systemctl daemon-reload")
	}
	return nil
}

// IsActive reports whether the unit is currently active. The command's
// non-zero exit for inactive units is expected, not an error.
func IsActive(rc *ztp_io.RuntimeContext, unit string) bool {
	out, _ := execute.Run(rc.Ctx, execute.Options{
		Command: "systemctl",
		Args:    []string{"is-active", unit},
		Capture: true,
	})
	return strings.TrimSpace(out) == "active"
}

// UnitExists reports whether systemd knows the unit at all (generated or
// installed).
func UnitExists(rc *ztp_io.RuntimeContext, unit string) bool {
	out, err := execute.Run(rc.Ctx, execute.Options{
		Command: "systemctl",
		Args:    []string{"list-unit-files", unit, "--no-legend", "--no-pager"},
		Capture: true,
	})
	if err != nil || strings.TrimSpace(out) == "" {
		// Generated units don't appear in list-unit-files on every systemd
		// version; fall back to cat.
		catErr := execute.RunSimple(rc.Ctx, "systemctl", "cat", "--no-pager", unit)
		return catErr == nil
	}
	return true
}

// Start starts the unit without waiting for it to settle.
func Start(rc *ztp_io.RuntimeContext, unit string) error {
	if err := execute.RunSimple(rc.Ctx, "systemctl", "start", unit); err != nil {
		return cerr.Wrapf(err, "start %s", unit)
	}
	return nil
}

// Stop stops the unit. Failure to stop is reported but callers treat it as
// a warning; the installer proceeds regardless.
func Stop(rc *ztp_io.RuntimeContext, unit string) error {
	if err := execute.RunSimple(rc.Ctx, "systemctl", "stop", unit); err != nil {
		return cerr.Wrapf(err, "stop %s", unit)
	}
	return nil
}

// WaitActive polls is-active with a fixed interval and hard iteration cap.
// Bounded by design: externally-owned transitions (generator runs, pod
// startup) must never block the run indefinitely.
func WaitActive(rc *ztp_io.RuntimeContext, unit string, interval time.Duration, maxPolls int) bool {
	logger := otelzap.Ctx(rc.Ctx)

	for i := 0; i < maxPolls; i++ {
		if IsActive(rc, unit) {
			return true
		}
		logger.Debug("Waiting for unit to become active",
			zap.String("unit", unit), zap.Int("poll", i+1), zap.Int("max", maxPolls))
		time.Sleep(interval)
	}
	return IsActive(rc, unit)
}

// Diagnostics captures the service status and the container's log tail for
// failure reports. Best-effort: missing output is returned as-is.
func Diagnostics(rc *ztp_io.RuntimeContext, unit, containerName string) string {
	var b strings.Builder

	status, _ := execute.Run(rc.Ctx, execute.Options{
		Command: "systemctl",
		Args:    []string{"status", "--no-pager", "-l", unit},
		Capture: true,
	})
	b.WriteString("--- systemctl status " + unit + " ---\n")
	b.WriteString(status)

	if containerName != "" {
		logs, _ := execute.Run(rc.Ctx, execute.Options{
			Command: "podman",
			Args:    []string{"logs", "--tail", "25", containerName},
			Env:     []string{"LD_LIBRARY_PATH=/lib64:/usr/lib64:/usr/lib64/systemd"},
			Capture: true,
		})
		b.WriteString("\n--- podman logs " + containerName + " (tail) ---\n")
		b.WriteString(logs)
	}
	return b.String()
}

// StopOrdered stops dependent container units before the owning pod unit,
// with the fixed settle delay between phases, then post-checks. Returns the
// units that still report active after the stop.
func StopOrdered(rc *ztp_io.RuntimeContext, containerUnits []string, podUnit string) []string {
	logger := otelzap.Ctx(rc.Ctx)

	for _, unit := range containerUnits {
		if !IsActive(rc, unit) {
			continue
		}
		if err := Stop(rc, unit); err != nil {
			logger.Warn("Failed to stop container unit", zap.String("unit", unit), zap.Error(err))
		}
	}
	if IsActive(rc, podUnit) {
		if err := Stop(rc, podUnit); err != nil {
			logger.Warn("Failed to stop pod unit", zap.String("unit", podUnit), zap.Error(err))
		}
	}

	time.Sleep(shared.ServiceSettleDelay)

	var stillActive []string
	for _, unit := range append(append([]string{}, containerUnits...), podUnit) {
		if IsActive(rc, unit) {
			stillActive = append(stillActive, unit)
		}
	}
	return stillActive
}
