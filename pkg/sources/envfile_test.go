// pkg/sources/envfile_test.go

package sources

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadEnvFile_MissingFileIsAbsence(t *testing.T) {
	rec, err := ReadEnvFile(context.Background(), filepath.Join(t.TempDir(), "ztpbootstrap.env"))
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestReadEnvFile_KnownKeysMapToFields(t *testing.T) {
	path := writeTemp(t, "ztpbootstrap.env", `
# deployment parameters
CV_ADDR=www.cv-staging.corp.arista.io
ENROLLMENT_TOKEN="tok-xyz"
ZTP_DOMAIN=ztp.corp.example
ZTP_IPV4=192.168.40.7
HTTP_ONLY=false
DNS1=192.168.40.1
UNRELATED_KEY=ignored
EMPTY_VALUE=
`)

	rec, err := ReadEnvFile(context.Background(), path)
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.False(t, rec.Malformed)

	cvAddr, ok := rec.Get(FieldCVAddr)
	require.True(t, ok)
	assert.Equal(t, "www.cv-staging.corp.arista.io", cvAddr)

	token, ok := rec.Get(FieldEnrollmentToken)
	require.True(t, ok)
	assert.Equal(t, "tok-xyz", token)

	domain, _ := rec.Get(FieldDomain)
	assert.Equal(t, "ztp.corp.example", domain)

	// Unknown keys don't invent fields; the known field count is exact.
	assert.Len(t, rec.Values, 6)
}

func TestReadEnvFile_StrayLineDoesNotLoseValidPairs(t *testing.T) {
	path := writeTemp(t, "ztpbootstrap.env", `CV_ADDR=www.arista.io
this line is not a key value pair
NTP_SERVER=time.google.com
`)

	rec, err := ReadEnvFile(context.Background(), path)
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.False(t, rec.Malformed, "skipped lines are not whole-file failure")

	cvAddr, ok := rec.Get(FieldCVAddr)
	require.True(t, ok)
	assert.Equal(t, "www.arista.io", cvAddr)

	ntp, ok := rec.Get(FieldNTPServer)
	require.True(t, ok)
	assert.Equal(t, "time.google.com", ntp)
}
