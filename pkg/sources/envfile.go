// pkg/sources/envfile.go

package sources

import (
	"context"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// envKeyToField maps the deployment env file's KEY names onto fields.
var envKeyToField = map[string]FieldName{
	"CV_ADDR":                 FieldCVAddr,
	"ENROLLMENT_TOKEN":        FieldEnrollmentToken,
	"CV_PROXY":                FieldCVProxy,
	"EOS_IMAGE_URL":           FieldEOSImageURL,
	"NTP_SERVER":              FieldNTPServer,
	"ZTP_DOMAIN":              FieldDomain,
	"ZTP_IPV4":                FieldIPv4,
	"ZTP_IPV6":                FieldIPv6,
	"ZTP_NETWORK":             FieldNetwork,
	"HTTP_ONLY":               FieldHTTPOnly,
	"HTTPS_PORT":              FieldHTTPSPort,
	"TZ":                      FieldTimezone,
	"DNS1":                    FieldDNS1,
	"DNS2":                    FieldDNS2,
	"SESSION_TIMEOUT":         FieldSessionTimeout,
	"SESSION_SECRET":          FieldSessionSecret,
	"ZTP_ADMIN_PASSWORD_HASH": FieldAdminPasswordHash,
}

// ReadEnvFile reads the deployment's KEY=value env file. godotenv handles
// quoting, comments and blank lines; when the whole-file parse fails the
// reader falls back to line-by-line parsing, so one stray line cannot take
// the valid pairs with it.
func ReadEnvFile(ctx context.Context, path string) (*SourceRecord, error) {
	logger := otelzap.Ctx(ctx)

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		logger.Debug("No env file found", zap.String("path", path))
		return nil, nil
	}
	if err != nil {
		logger.Warn("Env file is unreadable, treating it as absent",
			zap.String("path", path), zap.Error(err))
		return nil, nil
	}

	rec := newRecord(KindEnvFile, path)

	kv, err := godotenv.UnmarshalBytes(data)
	if err != nil {
		var skipped int
		kv, skipped = parseEnvLoose(data)
		logger.Warn("Env file has unparsable lines, skipping them",
			zap.String("path", path), zap.Int("skipped", skipped), zap.Error(err))
	}

	for key, value := range kv {
		field, ok := envKeyToField[key]
		if !ok || value == "" {
			continue
		}
		rec.Values[field] = value
	}

	logger.Debug("Read env file source",
		zap.String("path", path), zap.Int("fields", len(rec.Values)))
	return rec, nil
}

// parseEnvLoose salvages a file the whole-file parse rejected: each line is
// parsed on its own and lines godotenv still rejects are dropped. Multi-line
// quoted values don't survive this path, single-line pairs do.
func parseEnvLoose(data []byte) (map[string]string, int) {
	kv := make(map[string]string)
	skipped := 0
	for _, line := range strings.Split(string(data), "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		pair, err := godotenv.Unmarshal(trimmed)
		if err != nil || len(pair) == 0 {
			skipped++
			continue
		}
		for key, value := range pair {
			kv[key] = value
		}
	}
	return kv, skipped
}
