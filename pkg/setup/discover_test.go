// pkg/setup/discover_test.go

package setup

import (
	"path/filepath"
	"testing"

	"github.com/netbootworks/ztpctl/pkg/shared"
	"github.com/netbootworks/ztpctl/pkg/snapshot"
	"github.com/netbootworks/ztpctl/pkg/sources"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectPrevious_FreshHost(t *testing.T) {
	rc := testRC(t)
	d := DetectPrevious(rc, t.TempDir(), t.TempDir())
	assert.False(t, d.Previous())
}

func TestDetectPrevious_FindsLeftoverFiles(t *testing.T) {
	rc := testRC(t)
	configDir, quadletDir := t.TempDir(), t.TempDir()

	writeFiles(t, configDir, map[string]string{shared.ConfigFileName: "x: 1\n"})
	writeFiles(t, quadletDir, map[string]string{shared.PodUnitFile: "[Pod]\n"})

	d := DetectPrevious(rc, configDir, quadletDir)
	assert.True(t, d.Previous())
	assert.Equal(t, []string{filepath.Join(configDir, shared.ConfigFileName)}, d.ConfigFiles)
	assert.Equal(t, []string{filepath.Join(quadletDir, shared.PodUnitFile)}, d.QuadletFiles)
}

func TestDiscover_MergesAllSources(t *testing.T) {
	rc := testRC(t)
	configDir, quadletDir := t.TempDir(), t.TempDir()

	writeFiles(t, configDir, map[string]string{
		shared.ConfigFileName: "network:\n  domain: yaml.corp.example\n",
		shared.EnvFileName:    "CV_ADDR=www.cv-staging.corp.arista.io\nZTP_DOMAIN=env.corp.example\n",
		shared.NginxConfFileName: `server {
    listen 443 ssl;
    server_name nginx.corp.example;
}
`,
	})
	writeFiles(t, quadletDir, map[string]string{
		shared.PodUnitFile: "[Pod]\nPodName=ztpbootstrap\nIP=192.168.40.7\n",
	})

	snap := snapshot.New(configDir, quadletDir)
	Discover(rc, snap)

	// config.yaml outranks everything it speaks for.
	assert.Equal(t, "yaml.corp.example", snap.Value(sources.FieldDomain))

	// The env file fills what the YAML left open, the pod unit fills the IP.
	assert.Equal(t, "www.cv-staging.corp.arista.io", snap.Value(sources.FieldCVAddr))
	assert.Equal(t, "192.168.40.7", snap.Value(sources.FieldIPv4))

	kind, ok := snap.Source(sources.FieldIPv4)
	require.True(t, ok)
	assert.Equal(t, sources.KindQuadletPod, kind)
}

func TestDiscover_FreshHostGetsDefaultsOnly(t *testing.T) {
	rc := testRC(t)
	snap := snapshot.New(t.TempDir(), t.TempDir())
	Discover(rc, snap)

	kind, ok := snap.Source(sources.FieldCVAddr)
	require.True(t, ok)
	assert.Equal(t, sources.KindDefault, kind)

	_, ok = snap.Get(sources.FieldIPv4)
	assert.False(t, ok)
}
