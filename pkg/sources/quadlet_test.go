// pkg/sources/quadlet_test.go

package sources

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadQuadletPod_RepeatedKeysAndNetwork(t *testing.T) {
	path := writeTemp(t, "ztpbootstrap.pod", `[Unit]
Description=ZTP bootstrap pod

[Pod]
PodName=ztpbootstrap
Network=provnet.network
IP=10.1.2.3
IP6=fd00::3
DNS=10.1.2.1
DNS=10.1.2.2
PublishPort=0.0.0.0:8443:8443
Environment=TZ=UTC

[Install]
WantedBy=multi-user.target
`)

	rec, err := ReadQuadletPod(context.Background(), path)
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.False(t, rec.HostNetwork)

	want := map[FieldName]string{
		FieldNetwork:   "provnet", // .network suffix stripped
		FieldIPv4:      "10.1.2.3",
		FieldIPv6:      "fd00::3",
		FieldDNS1:      "10.1.2.1",
		FieldDNS2:      "10.1.2.2",
		FieldHTTPSPort: "8443",
		FieldTimezone:  "UTC",
	}
	for field, expected := range want {
		got, ok := rec.Get(field)
		require.True(t, ok, "field %s", field)
		assert.Equal(t, expected, got, "field %s", field)
	}
}

func TestReadQuadletPod_HostNetworkSetsFlagNotField(t *testing.T) {
	path := writeTemp(t, "ztpbootstrap.pod", `[Pod]
PodName=ztpbootstrap
Network=host
`)

	rec, err := ReadQuadletPod(context.Background(), path)
	require.NoError(t, err)
	require.NotNil(t, rec)

	assert.True(t, rec.HostNetwork)
	_, ok := rec.Get(FieldNetwork)
	assert.False(t, ok, "host is a mode, not a network name")
}

func TestReadQuadletContainer_LegacyUnit(t *testing.T) {
	path := writeTemp(t, "ztpbootstrap-nginx.container", `[Container]
ContainerName=ztpbootstrap-nginx
Image=docker.io/library/nginx:1.27-alpine
Network=provnet
IP=10.9.8.7
DNS=10.9.8.1
PublishPort=443:443
`)

	rec, err := ReadQuadletContainer(context.Background(), path)
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, KindQuadletContainer, rec.Kind)

	ip, ok := rec.Get(FieldIPv4)
	require.True(t, ok)
	assert.Equal(t, "10.9.8.7", ip)

	port, _ := rec.Get(FieldHTTPSPort)
	assert.Equal(t, "443", port)
}

func TestReadQuadletPod_StrayLineDoesNotLoseValidKeys(t *testing.T) {
	path := writeTemp(t, "ztpbootstrap.pod", `[Pod]
IP=10.0.0.20
leftover merge marker without a delimiter
DNS=1.1.1.1
`)

	rec, err := ReadQuadletPod(context.Background(), path)
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.False(t, rec.Malformed, "skipped lines are not whole-file failure")

	ip, ok := rec.Get(FieldIPv4)
	require.True(t, ok)
	assert.Equal(t, "10.0.0.20", ip)

	dns, ok := rec.Get(FieldDNS1)
	require.True(t, ok)
	assert.Equal(t, "1.1.1.1", dns)
}

func TestReadQuadlet_MissingFileIsAbsence(t *testing.T) {
	rec, err := ReadQuadletPod(context.Background(), filepath.Join(t.TempDir(), "nope.pod"))
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestPublishedHostPort(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"443", "443"},
		{"443:443", "443"},
		{"8443:443", "8443"},
		{"0.0.0.0:443:443", "443"},
		{" 443:443 ", "443"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, publishedHostPort(tt.in), "input %q", tt.in)
	}
}
