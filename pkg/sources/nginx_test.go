// pkg/sources/nginx_test.go

package sources

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadNginxConf_SSLServerBlock(t *testing.T) {
	path := writeTemp(t, "nginx.conf", `server {
    listen 8443 ssl;
    listen [::]:8443 ssl;
    server_name _ ztp.corp.example;

    root /opt/ztpbootstrap;
}
`)

	rec, err := ReadNginxConf(context.Background(), path)
	require.NoError(t, err)
	require.NotNil(t, rec)

	domain, ok := rec.Get(FieldDomain)
	require.True(t, ok)
	assert.Equal(t, "ztp.corp.example", domain, "placeholder _ must not win")

	port, _ := rec.Get(FieldHTTPSPort)
	assert.Equal(t, "8443", port)

	httpOnly, _ := rec.Get(FieldHTTPOnly)
	assert.Equal(t, "false", httpOnly)
}

func TestReadNginxConf_HTTPOnlyMarker(t *testing.T) {
	path := writeTemp(t, "nginx.conf", `# HTTP-ONLY MODE: SSL is disabled for this deployment.
server {
    listen 80;
    server_name ztp.corp.example;
}
`)

	rec, err := ReadNginxConf(context.Background(), path)
	require.NoError(t, err)
	require.NotNil(t, rec)

	httpOnly, _ := rec.Get(FieldHTTPOnly)
	assert.Equal(t, "true", httpOnly)

	// Without an ssl listen there is no https port to recover.
	_, ok := rec.Get(FieldHTTPSPort)
	assert.False(t, ok)
}

func TestReadNginxConf_NoSSLListenImpliesHTTPOnly(t *testing.T) {
	// Hand-edited config with the marker comment removed: the absence of any
	// ssl listen directive still recovers the mode.
	path := writeTemp(t, "nginx.conf", `server {
    listen 80;
    server_name ztp.corp.example;
}
`)

	rec, err := ReadNginxConf(context.Background(), path)
	require.NoError(t, err)
	require.NotNil(t, rec)

	httpOnly, _ := rec.Get(FieldHTTPOnly)
	assert.Equal(t, "true", httpOnly)
}

func TestPickDomain(t *testing.T) {
	tests := []struct {
		name       string
		candidates []string
		want       string
	}{
		{"dotted wins over bare", []string{"internal", "ztp.corp.example"}, "ztp.corp.example"},
		{"placeholders skipped", []string{"_", "localhost", "example.com"}, ""},
		{"ip literals skipped", []string{"192.168.1.10", "ztp.corp.example"}, "ztp.corp.example"},
		{"bare name as fallback", []string{"_", "ztphost"}, "ztphost"},
		{"empty", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, pickDomain(tt.candidates))
		})
	}
}
