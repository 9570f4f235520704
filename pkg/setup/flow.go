// pkg/setup/flow.go

package setup

import (
	"fmt"
	"os"
	"path/filepath"

	cerr "github.com/cockroachdb/errors"
	"github.com/hashicorp/go-multierror"
	"github.com/netbootworks/ztpctl/pkg/artifacts"
	"github.com/netbootworks/ztpctl/pkg/backup"
	"github.com/netbootworks/ztpctl/pkg/interaction"
	"github.com/netbootworks/ztpctl/pkg/quadlet"
	"github.com/netbootworks/ztpctl/pkg/shared"
	"github.com/netbootworks/ztpctl/pkg/snapshot"
	"github.com/netbootworks/ztpctl/pkg/sources"
	"github.com/netbootworks/ztpctl/pkg/systemd"
	"github.com/netbootworks/ztpctl/pkg/ztp_err"
	"github.com/netbootworks/ztpctl/pkg/ztp_io"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// Options controls one setup run.
type Options struct {
	// Upgrade forces the non-interactive reinstall path: discovery feeds the
	// new configuration, backup failure is fatal, no prompts.
	Upgrade bool

	// SkipStart leaves the services stopped after applying configuration.
	SkipStart bool

	// Interactive allows prompting for missing values and confirmations.
	Interactive bool

	ConfigDir  string
	QuadletDir string
	BackupDir  string

	// Overrides are operator-supplied values that beat every discovered
	// source.
	Overrides map[sources.FieldName]string
}

// Seams for the setup flow, swapped in tests.
var (
	lockFilePath = shared.SetupLockFile
	systemdReady = systemd.CheckAvailable
	verifyUnits  = verifyOrSynthesize
)

// Result reports what the run did and how far it got.
type Result struct {
	Machine     *Machine
	Snapshot    *snapshot.Snapshot
	Backup      *backup.Archive
	Synthesized []string
}

// Run executes the full setup flow: detect, discover, stop, back up,
// clean, configure, apply, verify, start. Destructive phases never run
// before a backup succeeded or the operator explicitly waived it.
func Run(rc *ztp_io.RuntimeContext, opts Options) (*Result, error) {
	logger := otelzap.Ctx(rc.Ctx)

	unlock, err := acquireLock()
	if err != nil {
		return nil, ztp_err.NewExpectedError(err)
	}
	defer unlock()

	if err := systemdReady(); err != nil {
		return nil, err
	}

	machine := NewMachine()
	result := &Result{Machine: machine}

	snap := snapshot.New(opts.ConfigDir, opts.QuadletDir)
	detection := DetectPrevious(rc, snap.ConfigDir, snap.QuadletDir)
	if detection.Previous() {
		machine.Advance(rc, StatePreviousDetected)
	} else if opts.Upgrade {
		return result, ztp_err.NewUserError("upgrade requested but no previous installation was found")
	}

	// Discovery runs against the live files, before anything is stopped or
	// removed.
	Discover(rc, snap)
	bootstrapIn := preserveBootstrap(rc, snap.ConfigDir)
	machine.Advance(rc, StateDiscovered)

	applyOverrides(snap, opts.Overrides)
	if err := completeSnapshot(rc, snap, opts); err != nil {
		return result, err
	}
	result.Snapshot = snap

	if detection.Previous() {
		stillActive := systemd.StopOrdered(rc,
			[]string{shared.NginxServiceName, shared.WebuiServiceName},
			shared.PodServiceName)
		if len(stillActive) > 0 {
			logger.Warn("Units still active after ordered stop, continuing",
				zap.Strings("units", stillActive))
		}
		machine.Advance(rc, StateServicesStopped)

		archive, err := backupOrWaive(rc, machine, opts, snap)
		if err != nil {
			return result, err
		}
		result.Backup = archive

		if err := clean(rc, snap); err != nil {
			return result, cerr.Wrap(err, "remove previous installation")
		}
		machine.Advance(rc, StateCleaned)
	}

	if err := os.MkdirAll(snap.ConfigDir, 0755); err != nil {
		return result, cerr.Wrapf(err, "create %s", snap.ConfigDir)
	}
	if err := snapshot.Persist(rc, snap); err != nil {
		return result, err
	}
	machine.Advance(rc, StateConfigured)

	if err := writeArtifacts(rc, snap, bootstrapIn); err != nil {
		machine.Fail(rc, StateApplyFailed, err)
		return result, err
	}
	machine.Advance(rc, StateApplied)

	synthesized, err := verifyUnits(rc, snap)
	if err != nil {
		machine.Fail(rc, StateApplyFailed, err)
		return result, err
	}
	result.Synthesized = synthesized
	machine.Advance(rc, StateUnitsVerified)

	if opts.SkipStart {
		logger.Info("Skipping service start as requested")
		machine.Advance(rc, StateDone)
		return result, nil
	}

	if err := startServices(rc); err != nil {
		machine.Fail(rc, StateStartFailed, err)
		return result, err
	}
	machine.Advance(rc, StateStarted)

	machine.Advance(rc, StateDone)
	logger.Info("Setup complete",
		zap.String("config_dir", snap.ConfigDir),
		zap.Int("synthesized_units", len(synthesized)))
	return result, nil
}

// acquireLock takes the host-wide setup lock. A second concurrent run is
// an operator error, not a race to tolerate.
func acquireLock() (func(), error) {
	f, err := os.OpenFile(lockFilePath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err != nil {
		if os.IsExist(err) {
			return nil, cerr.Newf("another setup run holds %s; remove it if no other run is active", lockFilePath)
		}
		return nil, cerr.Wrapf(err, "create lock file %s", lockFilePath)
	}
	fmt.Fprintf(f, "%d\n", os.Getpid())
	f.Close()
	return func() { os.Remove(lockFilePath) }, nil
}

func applyOverrides(snap *snapshot.Snapshot, overrides map[sources.FieldName]string) {
	for field, value := range overrides {
		snap.Override(field, value, sources.KindOperator)
	}
}

// completeSnapshot fills the values no source can supply. Secrets that can
// be generated are generated; values only the operator knows are prompted
// for in interactive mode and left empty otherwise.
func completeSnapshot(rc *ztp_io.RuntimeContext, snap *snapshot.Snapshot, opts Options) error {
	logger := otelzap.Ctx(rc.Ctx)

	if _, ok := snap.Get(sources.FieldSessionSecret); !ok {
		snap.Set(sources.FieldSessionSecret, shared.NewSessionSecret(), sources.KindDerived)
		logger.Info("Generated new session secret",
			zap.String("preview", snap.Preview(sources.FieldSessionSecret)))
	}

	if !opts.Interactive || opts.Upgrade {
		return nil
	}

	if _, ok := snap.Get(sources.FieldDomain); !ok {
		if v := interaction.PromptInput("Server domain name", ""); v != "" {
			snap.Override(sources.FieldDomain, v, sources.KindOperator)
		}
	}
	if _, ok := snap.Get(sources.FieldEnrollmentToken); !ok {
		token, err := interaction.PromptSecret("CVaaS enrollment token (empty to skip)")
		if err != nil {
			return err
		}
		if token != "" {
			snap.Override(sources.FieldEnrollmentToken, token, sources.KindOperator)
		}
	}
	if _, ok := snap.Get(sources.FieldAdminPasswordHash); !ok {
		if interaction.PromptYesNo("Set a dashboard admin password now?", true) {
			hash, err := interaction.PromptNewPassword("Admin password")
			if err != nil {
				return err
			}
			snap.Override(sources.FieldAdminPasswordHash, hash, sources.KindOperator)
		}
	}
	return nil
}

// backupOrWaive creates the pre-destruction backup. In upgrade or
// non-interactive mode a failure is fatal; interactively the operator may
// decline the backup up front, or explicitly waive it after a failure.
// Either way the destructive phases stay unreachable until this resolves.
func backupOrWaive(rc *ztp_io.RuntimeContext, machine *Machine, opts Options, snap *snapshot.Snapshot) (*backup.Archive, error) {
	if opts.Interactive && !opts.Upgrade {
		if !interaction.PromptYesNo("Back up the previous installation before replacing it?", true) {
			otelzap.Ctx(rc.Ctx).Warn("Operator declined backup, proceeding destructively")
			return nil, nil
		}
	}

	mgr := backup.NewManager(opts.BackupDir)
	archive, err := mgr.Create(rc, []string{snap.ConfigDir, snap.QuadletDir})
	if err == nil {
		machine.Advance(rc, StateBackedUp)
		return archive, nil
	}

	machine.Fail(rc, StateBackupFailed, err)
	if opts.Upgrade || !opts.Interactive {
		return nil, cerr.Wrap(err, "backup failed; refusing to touch the previous installation")
	}
	if !interaction.PromptYesNo("Backup failed. Continue WITHOUT a backup and lose the previous installation?", false) {
		return nil, ztp_err.NewExpectedError(cerr.Wrap(err, "backup failed and operator declined to continue"))
	}
	otelzap.Ctx(rc.Ctx).Warn("Operator waived backup, proceeding destructively")
	return nil, nil
}

// clean removes the previous installation: the config directory contents
// and this deployment's quadlet fragments. Only reachable after
// backupOrWaive resolved.
func clean(rc *ztp_io.RuntimeContext, snap *snapshot.Snapshot) error {
	logger := otelzap.Ctx(rc.Ctx)

	if err := backup.EmptyDir(snap.ConfigDir); err != nil {
		return err
	}
	for _, name := range []string{
		shared.PodUnitFile,
		shared.NginxContainerUnitFile,
		shared.WebuiContainerUnitFile,
	} {
		path := filepath.Join(snap.QuadletDir, name)
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return cerr.Wrapf(err, "remove %s", path)
		}
	}
	logger.Info("Previous installation removed",
		zap.String("config_dir", snap.ConfigDir))
	return nil
}

// writeArtifacts renders and installs every generated file: the env file,
// the bootstrap payload, the nginx config and the quadlet fragments.
func writeArtifacts(rc *ztp_io.RuntimeContext, snap *snapshot.Snapshot, bootstrapIn []byte) error {
	logger := otelzap.Ctx(rc.Ctx)

	if len(bootstrapIn) == 0 {
		bootstrapIn = []byte(artifacts.DefaultBootstrap)
	}
	set, err := artifacts.Render(snap, bootstrapIn)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(snap.QuadletDir, 0755); err != nil {
		return cerr.Wrapf(err, "create %s", snap.QuadletDir)
	}

	write := func(dir string, f artifacts.File) error {
		path := filepath.Join(dir, f.Name)
		if err := os.WriteFile(path, f.Content, f.Mode); err != nil {
			return cerr.Wrapf(err, "write %s", path)
		}
		logger.Info("Wrote artifact", zap.String("path", path))
		return nil
	}

	for _, f := range []artifacts.File{set.EnvFile, set.BootstrapScript, set.NginxConf} {
		if err := write(snap.ConfigDir, f); err != nil {
			return err
		}
	}
	if err := write(snap.QuadletDir, set.PodUnit); err != nil {
		return err
	}
	for _, f := range set.ContainerUnits {
		if err := write(snap.QuadletDir, f); err != nil {
			return err
		}
	}
	return nil
}

// verifyOrSynthesize confirms the generator produced the expected service
// units and falls back to manual synthesis for any that never appeared.
func verifyOrSynthesize(rc *ztp_io.RuntimeContext, snap *snapshot.Snapshot) ([]string, error) {
	logger := otelzap.Ctx(rc.Ctx)

	missing, err := quadlet.VerifyGenerated(rc)
	if err == nil {
		return nil, nil
	}
	if !cerr.Is(err, quadlet.ErrUnitsMissing) {
		return nil, err
	}

	var synthesized []string
	for _, unit := range missing {
		kind, ok := quadlet.KindForService(unit)
		if !ok {
			return synthesized, cerr.Newf("no synthesis rule for unit %s", unit)
		}
		content, err := quadlet.Synthesize(kind, snap)
		if err != nil {
			return synthesized, err
		}
		path, err := quadlet.WriteSynthesized(unit, content)
		if err != nil {
			return synthesized, err
		}
		logger.Warn("Generator did not produce unit, installed synthesized fallback",
			zap.String("unit", unit), zap.String("path", path))
		synthesized = append(synthesized, unit)
	}

	if err := systemd.DaemonReload(rc); err != nil {
		return synthesized, err
	}
	return synthesized, nil
}

// startServices brings the pod up first, then the containers. A pod that
// never goes active is fatal; container failures are collected so the
// report covers every broken unit, not just the first.
func startServices(rc *ztp_io.RuntimeContext) error {
	logger := otelzap.Ctx(rc.Ctx)

	if err := systemd.Start(rc, shared.PodServiceName); err != nil {
		return err
	}
	if !systemd.WaitActive(rc, shared.PodServiceName,
		shared.ServiceStartPollInterval, shared.ServiceStartPollMax) {
		diag := systemd.Diagnostics(rc, shared.PodServiceName, "")
		return cerr.Newf("pod unit %s did not become active\n%s", shared.PodServiceName, diag)
	}
	logger.Info("Pod unit active", zap.String("unit", shared.PodServiceName))

	containers := []struct {
		unit      string
		container string
	}{
		{shared.NginxServiceName, shared.NginxContainerName},
		{shared.WebuiServiceName, shared.WebuiContainerName},
	}

	var errs *multierror.Error
	for _, c := range containers {
		if err := systemd.Start(rc, c.unit); err != nil {
			errs = multierror.Append(errs, err)
			continue
		}
		if !systemd.WaitActive(rc, c.unit,
			shared.ServiceStartPollInterval, shared.ServiceStartPollMax) {
			diag := systemd.Diagnostics(rc, c.unit, c.container)
			errs = multierror.Append(errs,
				cerr.Newf("unit %s did not become active\n%s", c.unit, diag))
			continue
		}
		logger.Info("Container unit active", zap.String("unit", c.unit))
	}
	return errs.ErrorOrNil()
}
