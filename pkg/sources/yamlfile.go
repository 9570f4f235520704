// pkg/sources/yamlfile.go

package sources

import (
	"context"
	"os"
	"strconv"

	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// yamlDoc mirrors the scalar paths of config.yaml that feed the snapshot.
// Pointer fields distinguish "key absent or null" (use default) from
// "configured to empty".
type yamlDoc struct {
	Network struct {
		Domain    *string  `yaml:"domain"`
		IPv4      *string  `yaml:"ipv4"`
		IPv6      *string  `yaml:"ipv6"`
		Name      *string  `yaml:"name"`
		DNS       []string `yaml:"dns"`
		NTPServer *string  `yaml:"ntp_server"`
	} `yaml:"network"`
	CVaaS struct {
		Address         *string `yaml:"address"`
		EnrollmentToken *string `yaml:"enrollment_token"`
		Proxy           *string `yaml:"proxy"`
		EOSImageURL     *string `yaml:"eos_image_url"`
	} `yaml:"cvaas"`
	SSL struct {
		HTTPOnly  *bool `yaml:"http_only"`
		HTTPSPort *int  `yaml:"https_port"`
	} `yaml:"ssl"`
	Container struct {
		Timezone *string `yaml:"timezone"`
	} `yaml:"container"`
	Auth struct {
		AdminPasswordHash *string `yaml:"admin_password_hash"`
		SessionTimeout    *int    `yaml:"session_timeout"`
		SessionSecret     *string `yaml:"session_secret"`
	} `yaml:"auth"`
}

// ReadYamlConfig reads a previous installation's config.yaml. A missing
// file is absence, not failure: (nil, nil). An unparsable document fails
// the whole record: it is returned with Malformed set so the merger can
// exclude it with a warning.
func ReadYamlConfig(ctx context.Context, path string) (*SourceRecord, error) {
	logger := otelzap.Ctx(ctx)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Debug("No YAML config found", zap.String("path", path))
			return nil, nil
		}
		return nil, err
	}

	rec := newRecord(KindYamlConfig, path)

	var doc yamlDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		logger.Warn("YAML config is malformed, excluding it from discovery",
			zap.String("path", path), zap.Error(err))
		rec.Malformed = true
		return rec, nil
	}

	setString := func(f FieldName, v *string) {
		if v != nil && *v != "" {
			rec.Values[f] = *v
		}
	}
	setString(FieldDomain, doc.Network.Domain)
	setString(FieldIPv4, doc.Network.IPv4)
	setString(FieldIPv6, doc.Network.IPv6)
	setString(FieldNetwork, doc.Network.Name)
	setString(FieldNTPServer, doc.Network.NTPServer)
	if len(doc.Network.DNS) > 0 && doc.Network.DNS[0] != "" {
		rec.Values[FieldDNS1] = doc.Network.DNS[0]
	}
	if len(doc.Network.DNS) > 1 && doc.Network.DNS[1] != "" {
		rec.Values[FieldDNS2] = doc.Network.DNS[1]
	}
	setString(FieldCVAddr, doc.CVaaS.Address)
	setString(FieldEnrollmentToken, doc.CVaaS.EnrollmentToken)
	setString(FieldCVProxy, doc.CVaaS.Proxy)
	setString(FieldEOSImageURL, doc.CVaaS.EOSImageURL)
	if doc.SSL.HTTPOnly != nil {
		rec.Values[FieldHTTPOnly] = strconv.FormatBool(*doc.SSL.HTTPOnly)
	}
	if doc.SSL.HTTPSPort != nil && *doc.SSL.HTTPSPort > 0 {
		rec.Values[FieldHTTPSPort] = strconv.Itoa(*doc.SSL.HTTPSPort)
	}
	setString(FieldTimezone, doc.Container.Timezone)
	setString(FieldAdminPasswordHash, doc.Auth.AdminPasswordHash)
	if doc.Auth.SessionTimeout != nil && *doc.Auth.SessionTimeout > 0 {
		rec.Values[FieldSessionTimeout] = strconv.Itoa(*doc.Auth.SessionTimeout)
	}
	setString(FieldSessionSecret, doc.Auth.SessionSecret)

	logger.Debug("Read YAML config source",
		zap.String("path", path), zap.Int("fields", len(rec.Values)))
	return rec, nil
}
