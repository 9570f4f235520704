// pkg/sources/hostname.go

package sources

import (
	"context"
	"os"

	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// ReadSystemHostname supplies the domain field from the system hostname.
// Lowest-precedence source, used only as a final fallback.
func ReadSystemHostname(ctx context.Context) *SourceRecord {
	logger := otelzap.Ctx(ctx)

	rec := newRecord(KindSystemHostname, "/proc/sys/kernel/hostname")

	name, err := os.Hostname()
	if err != nil || name == "" || name == "localhost" {
		logger.Debug("System hostname unavailable as domain fallback", zap.Error(err))
		return rec
	}

	rec.Values[FieldDomain] = name
	return rec
}
