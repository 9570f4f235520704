// pkg/quadlet/synthesize_test.go

package quadlet

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/netbootworks/ztpctl/pkg/shared"
	"github.com/netbootworks/ztpctl/pkg/snapshot"
	"github.com/netbootworks/ztpctl/pkg/sources"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stubHostExists(t *testing.T, existing map[string]bool) {
	t.Helper()
	orig := hostExists
	hostExists = func(path string) bool { return existing[path] }
	t.Cleanup(func() { hostExists = orig })
}

func TestKindForService(t *testing.T) {
	kind, ok := KindForService(shared.PodServiceName)
	require.True(t, ok)
	assert.Equal(t, KindPod, kind)

	_, ok = KindForService("unrelated.service")
	assert.False(t, ok)
}

func TestSynthesize_PodUnit(t *testing.T) {
	snap := snapshot.New(t.TempDir(), t.TempDir())
	snap.Set(sources.FieldNetwork, "provnet", sources.KindDerived)
	snap.Set(sources.FieldIPv4, "192.168.40.7", sources.KindQuadletPod)
	snap.Set(sources.FieldDNS1, "192.168.40.1", sources.KindQuadletPod)
	snap.Set(sources.FieldDNS2, "192.168.40.2", sources.KindQuadletPod)
	snap.Set(sources.FieldHTTPSPort, "8443", sources.KindNginxConf)

	content, err := Synthesize(KindPod, snap)
	require.NoError(t, err)

	assert.Contains(t, content,
		"ExecStartPre=/usr/bin/podman pod create --replace --name ztpbootstrap "+
			"--network provnet --ip 192.168.40.7 --dns 192.168.40.1 --dns 192.168.40.2 -p 8443:8443")
	assert.Contains(t, content, "ExecStart=/usr/bin/podman pod start ztpbootstrap")
	assert.Contains(t, content, "ExecStop=/usr/bin/podman pod stop -t 10 ztpbootstrap")
	assert.Contains(t, content, "ExecStopPost=/usr/bin/podman pod rm -f ztpbootstrap")
	assert.Contains(t, content, "Type=forking")
	assert.Contains(t, content, "After=network-online.target")

	// Stop must precede rm in the file, mirroring the runtime ordering.
	assert.Less(t, strings.Index(content, "ExecStop="), strings.Index(content, "ExecStopPost="))
}

func TestSynthesize_PodUnitHTTPOnly(t *testing.T) {
	snap := snapshot.New(t.TempDir(), t.TempDir())
	snap.Set(sources.FieldHTTPOnly, "true", sources.KindNginxConf)

	content, err := Synthesize(KindPod, snap)
	require.NoError(t, err)
	assert.Contains(t, content, "-p 80:80")
}

func TestSynthesize_ContainerTranslatesFragment(t *testing.T) {
	quadletDir := t.TempDir()
	snap := snapshot.New(t.TempDir(), quadletDir)

	fragment := `[Unit]
Description=ZTP bootstrap file server

[Container]
ContainerName=ztpbootstrap-nginx
Image=docker.io/library/nginx:1.27-alpine
Pod=ztpbootstrap.pod
Volume=/opt/containerdata/ztpbootstrap:/opt/ztpbootstrap:ro,Z
Volume=/opt/missing-dir:/data:ro
Volume=/usr/lib64:/usr/lib64:ro
Volume=webui-state:/var/lib/webui
Environment=TZ=UTC
Environment=HTTPS_ENABLED=true
`
	require.NoError(t, os.WriteFile(
		filepath.Join(quadletDir, shared.NginxContainerUnitFile), []byte(fragment), 0644))

	stubHostExists(t, map[string]bool{
		"/opt/containerdata/ztpbootstrap": true,
		// /opt/missing-dir intentionally absent
	})

	content, err := Synthesize(KindNginxContainer, snap)
	require.NoError(t, err)

	assert.Contains(t, content, "BindsTo="+shared.PodServiceName)
	assert.Contains(t, content, "After="+shared.PodServiceName)
	assert.Contains(t, content, "--name ztpbootstrap-nginx --pod ztpbootstrap")
	assert.Contains(t, content, "-v /opt/containerdata/ztpbootstrap:/opt/ztpbootstrap:ro,Z")
	assert.Contains(t, content, "-v webui-state:/var/lib/webui", "named volumes are kept")
	assert.NotContains(t, content, "/opt/missing-dir", "bind mounts with absent sources are dropped")
	assert.NotContains(t, content, "/usr/lib64", "platform library mounts are dropped")
	assert.Contains(t, content, "--env TZ=UTC")
	assert.Contains(t, content, "--env HTTPS_ENABLED=true")
	assert.Contains(t, content, "docker.io/library/nginx:1.27-alpine")
}

func TestSynthesize_ContainerFragmentMissingImage(t *testing.T) {
	quadletDir := t.TempDir()
	snap := snapshot.New(t.TempDir(), quadletDir)

	require.NoError(t, os.WriteFile(
		filepath.Join(quadletDir, shared.WebuiContainerUnitFile),
		[]byte("[Container]\nContainerName=ztpbootstrap-webui\n"), 0644))

	_, err := Synthesize(KindWebuiContainer, snap)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no Image")
}

func TestKeepVolume(t *testing.T) {
	stubHostExists(t, map[string]bool{"/exists": true})

	tests := []struct {
		volume string
		want   bool
	}{
		{"/exists:/data:ro", true},
		{"/missing:/data", false},
		{"/lib64:/lib64:ro", false},
		{"named-vol:/state", true},
		{"no-target", false},
		{":/data", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, keepVolume(tt.volume), "volume %q", tt.volume)
	}
}
