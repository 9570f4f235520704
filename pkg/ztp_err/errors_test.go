// pkg/ztp_err/errors_test.go

package ztp_err

import (
	"testing"

	cerr "github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
)

func TestExitCode(t *testing.T) {
	assert.Equal(t, 0, ExitCode(nil))
	assert.Equal(t, 2, ExitCode(NewUserError("declined")))
	assert.Equal(t, 1, ExitCode(cerr.New("boom")))

	// Wrapping preserves the classification.
	wrapped := cerr.Wrap(NewUserError("declined"), "outer context")
	assert.True(t, IsExpectedUserError(wrapped))
	assert.Equal(t, 2, ExitCode(wrapped))
}

func TestNewExpectedError_NilStaysNil(t *testing.T) {
	assert.NoError(t, NewExpectedError(nil))
}

func TestExtractSummary(t *testing.T) {
	tests := []struct {
		name   string
		output string
		want   string
	}{
		{"empty", "   \n ", "no output"},
		{"picks error lines", "starting up\nError: bind failed\nshutting down", "Error: bind failed"},
		{"caps candidates", "error one\nerror two\nerror three", "error one - error two"},
		{"falls back to first line", "nothing interesting\nhere", "nothing interesting"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractSummary(tt.output, 2))
		})
	}
}
