// pkg/sources/yamlfile_test.go

package sources

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestReadYamlConfig_MissingFileIsAbsence(t *testing.T) {
	rec, err := ReadYamlConfig(context.Background(), filepath.Join(t.TempDir(), "config.yaml"))
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestReadYamlConfig_MalformedIsExcludedNotFatal(t *testing.T) {
	path := writeTemp(t, "config.yaml", "network: [unclosed\n  domain: broken")

	rec, err := ReadYamlConfig(context.Background(), path)
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.True(t, rec.Malformed)

	// A malformed record never yields values.
	_, ok := rec.Get(FieldDomain)
	assert.False(t, ok)
}

func TestReadYamlConfig_Fields(t *testing.T) {
	path := writeTemp(t, "config.yaml", `
network:
  domain: ztp.corp.example
  ipv4: 10.20.30.40
  name: provnet
  dns:
    - 10.20.30.1
    - 10.20.30.2
  ntp_server: time.corp.example
cvaas:
  address: www.arista.io
  enrollment_token: tok-abc123
ssl:
  http_only: true
  https_port: 8443
container:
  timezone: Australia/Perth
auth:
  session_timeout: 7200
`)

	rec, err := ReadYamlConfig(context.Background(), path)
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.False(t, rec.Malformed)

	want := map[FieldName]string{
		FieldDomain:          "ztp.corp.example",
		FieldIPv4:            "10.20.30.40",
		FieldNetwork:         "provnet",
		FieldDNS1:            "10.20.30.1",
		FieldDNS2:            "10.20.30.2",
		FieldNTPServer:       "time.corp.example",
		FieldCVAddr:          "www.arista.io",
		FieldEnrollmentToken: "tok-abc123",
		FieldHTTPOnly:        "true",
		FieldHTTPSPort:       "8443",
		FieldTimezone:        "Australia/Perth",
		FieldSessionTimeout:  "7200",
	}
	for field, expected := range want {
		got, ok := rec.Get(field)
		assert.True(t, ok, "field %s should resolve", field)
		assert.Equal(t, expected, got, "field %s", field)
	}
}

func TestReadYamlConfig_NullAndEmptyContributeNothing(t *testing.T) {
	// domain explicitly null, ipv4 empty string, ipv6 absent entirely: none
	// of them may claim the field during merge.
	path := writeTemp(t, "config.yaml", `
network:
  domain: null
  ipv4: ""
ssl:
  http_only: false
`)

	rec, err := ReadYamlConfig(context.Background(), path)
	require.NoError(t, err)
	require.NotNil(t, rec)

	for _, field := range []FieldName{FieldDomain, FieldIPv4, FieldIPv6} {
		_, ok := rec.Get(field)
		assert.False(t, ok, "field %s must be absent", field)
	}

	// An explicit false is still a configured value.
	httpOnly, ok := rec.Get(FieldHTTPOnly)
	assert.True(t, ok)
	assert.Equal(t, "false", httpOnly)
}
