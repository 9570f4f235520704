// pkg/snapshot/config_test.go

package snapshot

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/netbootworks/ztpctl/pkg/shared"
	"github.com/netbootworks/ztpctl/pkg/sources"
	"github.com/netbootworks/ztpctl/pkg/ztp_io"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func persistableSnapshot(t *testing.T) *Snapshot {
	t.Helper()
	snap := Merge(context.Background(), New(t.TempDir(), t.TempDir()), nil)
	snap.Set(sources.FieldDomain, "ztp.corp.example", sources.KindOperator)
	snap.Set(sources.FieldIPv4, "192.168.40.7", sources.KindQuadletPod)
	snap.Set(sources.FieldDNS1, "192.168.40.1", sources.KindQuadletPod)
	return snap
}

func TestToConfig(t *testing.T) {
	cfg := ToConfig(persistableSnapshot(t))

	assert.Equal(t, "ztp.corp.example", cfg.Network.Domain)
	assert.Equal(t, "192.168.40.7", cfg.Network.IPv4)
	assert.Equal(t, []string{"192.168.40.1"}, cfg.Network.DNS)
	assert.Equal(t, shared.DefaultCVAddr, cfg.CVaaS.Address)
	assert.Equal(t, shared.DefaultHTTPSPort, cfg.SSL.HTTPSPort)
	assert.Equal(t, shared.PodName, cfg.Service.PodName)
	assert.True(t, cfg.Webui.Enabled)
}

func TestPersist_WritesProtectedFile(t *testing.T) {
	rc := ztp_io.NewContext(context.Background(), "config-test")
	snap := persistableSnapshot(t)

	require.NoError(t, Persist(rc, snap))

	path := filepath.Join(snap.ConfigDir, shared.ConfigFileName)
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestPersist_RejectsInvalidAddress(t *testing.T) {
	rc := ztp_io.NewContext(context.Background(), "config-test")
	snap := persistableSnapshot(t)
	snap.Override(sources.FieldIPv4, "not-an-address", sources.KindOperator)

	err := Persist(rc, snap)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation")
}
