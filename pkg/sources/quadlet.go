// pkg/sources/quadlet.go

package sources

import (
	"context"
	"os"
	"strings"

	"github.com/go-ini/ini"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// Quadlet unit fragments are INI-style; only keys inside the recognized
// section ([Pod] or [Container]) count. Repeated keys (DNS=, Volume=) are
// legal in unit syntax, hence AllowShadows. A stray delimiter-less line is
// skipped rather than failing the whole fragment, keeping the parseable
// keys in play.
func loadUnitFile(path string) (*ini.File, error) {
	return ini.LoadSources(ini.LoadOptions{
		AllowShadows:             true,
		SpaceBeforeInlineComment: true,
		SkipUnrecognizableLines:  true,
	}, path)
}

// ReadQuadletPod reads the [Pod] section of a .pod unit fragment.
// HostNetwork is set when the pod declares Network=host, which triggers the
// per-container override rule for IP/DNS fields during merge.
func ReadQuadletPod(ctx context.Context, path string) (*SourceRecord, error) {
	return readQuadlet(ctx, path, KindQuadletPod, "Pod")
}

// ReadQuadletContainer reads the [Container] section of a legacy
// per-container unit fragment.
func ReadQuadletContainer(ctx context.Context, path string) (*SourceRecord, error) {
	return readQuadlet(ctx, path, KindQuadletContainer, "Container")
}

func readQuadlet(ctx context.Context, path string, kind SourceKind, section string) (*SourceRecord, error) {
	logger := otelzap.Ctx(ctx)

	if _, err := os.Stat(path); os.IsNotExist(err) {
		logger.Debug("No quadlet unit found", zap.String("path", path))
		return nil, nil
	}

	rec := newRecord(kind, path)

	f, err := loadUnitFile(path)
	if err != nil {
		// Unrecognizable lines are skipped at load; reaching here means the
		// file itself could not be read or parsed at all.
		logger.Warn("Quadlet unit is unusable, excluding it from discovery",
			zap.String("path", path), zap.Error(err))
		rec.Malformed = true
		return rec, nil
	}

	sec, err := f.GetSection(section)
	if err != nil {
		// Unit exists but carries no recognized section; nothing to report.
		logger.Debug("Quadlet unit has no recognized section",
			zap.String("path", path), zap.String("section", section))
		return rec, nil
	}

	if sec.HasKey("Network") {
		network := sec.Key("Network").String()
		if strings.EqualFold(network, "host") {
			rec.HostNetwork = true
		} else if network != "" {
			// Podman accepts name or name.network; the inventory knows the
			// bare name.
			rec.Values[FieldNetwork] = strings.TrimSuffix(network, ".network")
		}
	}
	if v := sec.Key("IP").String(); v != "" {
		rec.Values[FieldIPv4] = v
	}
	if v := sec.Key("IP6").String(); v != "" {
		rec.Values[FieldIPv6] = v
	}
	if sec.HasKey("DNS") {
		servers := sec.Key("DNS").ValueWithShadows()
		if len(servers) > 0 && servers[0] != "" {
			rec.Values[FieldDNS1] = servers[0]
		}
		if len(servers) > 1 && servers[1] != "" {
			rec.Values[FieldDNS2] = servers[1]
		}
	}
	if sec.HasKey("PublishPort") {
		for _, pub := range sec.Key("PublishPort").ValueWithShadows() {
			if hostPort := publishedHostPort(pub); hostPort != "" {
				rec.Values[FieldHTTPSPort] = hostPort
				break
			}
		}
	}
	if sec.HasKey("Environment") {
		for _, env := range sec.Key("Environment").ValueWithShadows() {
			key, value, ok := strings.Cut(env, "=")
			if ok && key == "TZ" && value != "" {
				rec.Values[FieldTimezone] = value
			}
		}
	}

	logger.Debug("Read quadlet source",
		zap.String("path", path),
		zap.String("section", section),
		zap.Int("fields", len(rec.Values)),
		zap.Bool("host_network", rec.HostNetwork))
	return rec, nil
}

// publishedHostPort extracts the host port from a PublishPort value
// ("443:443", "0.0.0.0:443:443", or a bare "443").
func publishedHostPort(pub string) string {
	parts := strings.Split(strings.TrimSpace(pub), ":")
	switch len(parts) {
	case 1:
		return parts[0]
	case 2:
		return parts[0]
	case 3:
		return parts[1]
	default:
		return ""
	}
}
