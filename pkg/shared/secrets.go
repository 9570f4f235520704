// pkg/shared/secrets.go

package shared

import (
	"crypto/rand"
	"encoding/hex"

	"go.uber.org/zap"
)

// PreviewSecret returns a fixed-length, log-safe preview of a secret value.
// Secrets are never logged beyond this preview.
func PreviewSecret(value string) string {
	const previewLen = 8
	if value == "" {
		return "(unset)"
	}
	if len(value) <= previewLen {
		return value[:1] + "…"
	}
	return value[:previewLen] + "…"
}

// NewSessionSecret generates a random hex session secret for the dashboard.
func NewSessionSecret() string {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand failing is unrecoverable for secret generation
		panic("shared: cannot read random bytes: " + err.Error())
	}
	return hex.EncodeToString(buf)
}

// SafeSync flushes the global zap logger, swallowing the EBADF/ENOTTY noise
// Sync produces on stderr sinks.
func SafeSync() {
	_ = zap.L().Sync()
}
