// pkg/sources/nginx.go

package sources

import (
	"context"
	"net"
	"os"
	"strconv"
	"strings"

	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// httpOnlyMarker is written into generated configs when SSL is disabled, so
// a later run can recover the mode even if the listen directives are edited.
const httpOnlyMarker = "HTTP-ONLY MODE"

// placeholderDomains never win domain discovery; they come from templates
// and examples, not operator configuration.
var placeholderDomains = map[string]bool{
	"_":                true,
	"localhost":        true,
	"example.com":      true,
	"www.example.com":  true,
	"ztp.example.com":  true,
	"your-domain.com":  true,
	"server_name_here": true,
}

// ReadNginxConf scans an nginx server-block file for server_name, SSL
// listen directives, and the HTTP-only marker. Unparsable lines are
// skipped, never fatal: nginx configs are hand-edited in the field.
func ReadNginxConf(ctx context.Context, path string) (*SourceRecord, error) {
	logger := otelzap.Ctx(ctx)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Debug("No nginx config found", zap.String("path", path))
			return nil, nil
		}
		return nil, err
	}

	rec := newRecord(KindNginxConf, path)

	var (
		candidates []string
		sslPort    string
		sawSSL     bool
		sawMarker  bool
	)

	for _, line := range strings.Split(string(data), "\n") {
		trimmed := strings.TrimSpace(line)

		if strings.Contains(trimmed, httpOnlyMarker) {
			sawMarker = true
			continue
		}
		if strings.HasPrefix(trimmed, "#") {
			continue
		}

		directive := strings.TrimSuffix(trimmed, ";")
		fields := strings.Fields(directive)
		if len(fields) < 2 {
			continue
		}

		switch fields[0] {
		case "server_name":
			candidates = append(candidates, fields[1:]...)
		case "listen":
			if !containsToken(fields[1:], "ssl") {
				continue
			}
			sawSSL = true
			if port := listenPort(fields[1]); port != "" {
				sslPort = port
			}
		}
	}

	if domain := pickDomain(candidates); domain != "" {
		rec.Values[FieldDomain] = domain
	}
	if sslPort != "" {
		rec.Values[FieldHTTPSPort] = sslPort
	}
	if sawMarker || !sawSSL {
		rec.Values[FieldHTTPOnly] = "true"
	} else {
		rec.Values[FieldHTTPOnly] = "false"
	}

	logger.Debug("Read nginx config source",
		zap.String("path", path),
		zap.Strings("server_names", candidates),
		zap.Int("fields", len(rec.Values)))
	return rec, nil
}

// pickDomain prefers the first genuinely custom domain (dotted, not a
// placeholder, not a literal IP); failing that, any non-placeholder
// candidate.
func pickDomain(candidates []string) string {
	for _, c := range candidates {
		if isPlaceholder(c) || net.ParseIP(c) != nil {
			continue
		}
		if strings.Contains(c, ".") {
			return c
		}
	}
	for _, c := range candidates {
		if !isPlaceholder(c) && net.ParseIP(c) == nil {
			return c
		}
	}
	return ""
}

func isPlaceholder(name string) bool {
	return placeholderDomains[strings.ToLower(name)]
}

// listenPort extracts the port from a listen address ("443",
// "0.0.0.0:443", "[::]:443").
func listenPort(addr string) string {
	port := addr
	if idx := strings.LastIndex(addr, ":"); idx >= 0 {
		port = addr[idx+1:]
	}
	if _, err := strconv.Atoi(port); err != nil {
		return ""
	}
	return port
}

func containsToken(fields []string, want string) bool {
	for _, f := range fields {
		if f == want {
			return true
		}
	}
	return false
}
