// pkg/setup/discover.go

package setup

import (
	"os"
	"path/filepath"

	"github.com/netbootworks/ztpctl/pkg/network"
	"github.com/netbootworks/ztpctl/pkg/shared"
	"github.com/netbootworks/ztpctl/pkg/snapshot"
	"github.com/netbootworks/ztpctl/pkg/sources"
	"github.com/netbootworks/ztpctl/pkg/systemd"
	"github.com/netbootworks/ztpctl/pkg/ztp_io"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// Detection is what a previous installation left behind on the host.
type Detection struct {
	ConfigFiles  []string
	QuadletFiles []string
	ActiveUnits  []string
}

// Previous reports whether anything from an earlier install was found.
func (d *Detection) Previous() bool {
	return len(d.ConfigFiles) > 0 || len(d.QuadletFiles) > 0 || len(d.ActiveUnits) > 0
}

// DetectPrevious probes the installation directory, the quadlet directory
// and systemd for traces of an earlier deployment.
func DetectPrevious(rc *ztp_io.RuntimeContext, configDir, quadletDir string) *Detection {
	logger := otelzap.Ctx(rc.Ctx)
	d := &Detection{}

	for _, name := range []string{
		shared.ConfigFileName,
		shared.EnvFileName,
		shared.BootstrapFileName,
		shared.NginxConfFileName,
	} {
		path := filepath.Join(configDir, name)
		if _, err := os.Stat(path); err == nil {
			d.ConfigFiles = append(d.ConfigFiles, path)
		}
	}
	for _, name := range []string{
		shared.PodUnitFile,
		shared.NginxContainerUnitFile,
		shared.WebuiContainerUnitFile,
	} {
		path := filepath.Join(quadletDir, name)
		if _, err := os.Stat(path); err == nil {
			d.QuadletFiles = append(d.QuadletFiles, path)
		}
	}
	for _, unit := range []string{
		shared.PodServiceName,
		shared.NginxServiceName,
		shared.WebuiServiceName,
	} {
		if systemd.IsActive(rc, unit) {
			d.ActiveUnits = append(d.ActiveUnits, unit)
		}
	}

	if d.Previous() {
		logger.Info("Previous installation detected",
			zap.Int("config_files", len(d.ConfigFiles)),
			zap.Int("quadlet_files", len(d.QuadletFiles)),
			zap.Strings("active_units", d.ActiveUnits))
	} else {
		logger.Info("No previous installation found, treating host as fresh")
	}
	return d
}

// Discover reads every configuration source on the host and merges them
// into the snapshot. Individual reader failures degrade to a warning; a
// source that cannot be read simply contributes nothing.
func Discover(rc *ztp_io.RuntimeContext, snap *snapshot.Snapshot) *snapshot.Snapshot {
	logger := otelzap.Ctx(rc.Ctx)

	type reader struct {
		name string
		read func() (*sources.SourceRecord, error)
	}
	readers := []reader{
		{"yaml-config", func() (*sources.SourceRecord, error) {
			return sources.ReadYamlConfig(rc.Ctx, filepath.Join(snap.ConfigDir, shared.ConfigFileName))
		}},
		{"env-file", func() (*sources.SourceRecord, error) {
			return sources.ReadEnvFile(rc.Ctx, filepath.Join(snap.ConfigDir, shared.EnvFileName))
		}},
		{"quadlet-pod", func() (*sources.SourceRecord, error) {
			return sources.ReadQuadletPod(rc.Ctx, filepath.Join(snap.QuadletDir, shared.PodUnitFile))
		}},
		{"quadlet-container", func() (*sources.SourceRecord, error) {
			return sources.ReadQuadletContainer(rc.Ctx, filepath.Join(snap.QuadletDir, shared.NginxContainerUnitFile))
		}},
		{"nginx-conf", func() (*sources.SourceRecord, error) {
			return sources.ReadNginxConf(rc.Ctx, filepath.Join(snap.ConfigDir, shared.NginxConfFileName))
		}},
	}

	var records []*sources.SourceRecord
	for _, r := range readers {
		rec, err := r.read()
		if err != nil {
			logger.Warn("Source reader failed, continuing without it",
				zap.String("source", r.name), zap.Error(err))
			continue
		}
		records = append(records, rec)
	}
	records = append(records, sources.ReadSystemHostname(rc.Ctx))

	snapshot.Merge(rc.Ctx, snap, records)

	inventory, err := network.ReadInventory(rc)
	if err != nil {
		logger.Warn("Podman network inventory unavailable, skipping network derivation",
			zap.Error(err))
	} else {
		snapshot.FillDerivedNetwork(rc.Ctx, snap, inventory)
	}

	return snap
}

// preserveBootstrap reads the current bootstrap payload before any cleanup
// so the operator-owned provisioning logic survives the regeneration.
func preserveBootstrap(rc *ztp_io.RuntimeContext, configDir string) []byte {
	path := filepath.Join(configDir, shared.BootstrapFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		otelzap.Ctx(rc.Ctx).Debug("No existing bootstrap payload to preserve",
			zap.String("path", path))
		return nil
	}
	return data
}
