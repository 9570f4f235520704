// pkg/snapshot/config.go

package snapshot

import (
	"path/filepath"

	cerr "github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
	"github.com/netbootworks/ztpctl/pkg/shared"
	"github.com/netbootworks/ztpctl/pkg/sources"
	"github.com/netbootworks/ztpctl/pkg/ztp_io"
)

// Config is the persisted form of a snapshot: the authoritative
// config.yaml written into the installation directory. Top-level keys are
// part of the on-disk contract and must not change.
type Config struct {
	Paths struct {
		ConfigDir  string `yaml:"config_dir" validate:"required,dirpath|filepath"`
		QuadletDir string `yaml:"quadlet_dir" validate:"required,dirpath|filepath"`
	} `yaml:"paths"`
	Network struct {
		Domain    string   `yaml:"domain" validate:"omitempty,fqdn|hostname"`
		IPv4      string   `yaml:"ipv4" validate:"omitempty,ipv4"`
		IPv6      string   `yaml:"ipv6" validate:"omitempty,ipv6"`
		Name      string   `yaml:"name"`
		DNS       []string `yaml:"dns" validate:"dive,omitempty,ip"`
		NTPServer string   `yaml:"ntp_server" validate:"omitempty,fqdn|ip"`
	} `yaml:"network"`
	CVaaS struct {
		Address         string `yaml:"address" validate:"required,fqdn|ip"`
		EnrollmentToken string `yaml:"enrollment_token"`
		Proxy           string `yaml:"proxy" validate:"omitempty,url"`
		EOSImageURL     string `yaml:"eos_image_url" validate:"omitempty,url"`
	} `yaml:"cvaas"`
	SSL struct {
		HTTPOnly  bool `yaml:"http_only"`
		HTTPSPort int  `yaml:"https_port" validate:"min=1,max=65535"`
	} `yaml:"ssl"`
	Container struct {
		Timezone   string `yaml:"timezone" validate:"required"`
		NginxImage string `yaml:"nginx_image" validate:"required"`
		WebuiImage string `yaml:"webui_image" validate:"required"`
	} `yaml:"container"`
	Service struct {
		PodName string `yaml:"pod_name" validate:"required,hostname"`
	} `yaml:"service"`
	Auth struct {
		AdminPasswordHash string `yaml:"admin_password_hash"`
		SessionTimeout    int    `yaml:"session_timeout" validate:"min=60"`
		SessionSecret     string `yaml:"session_secret"`
	} `yaml:"auth"`
	Webui struct {
		Enabled    bool `yaml:"enabled"`
		ListenPort int  `yaml:"listen_port" validate:"min=1,max=65535"`
	} `yaml:"webui"`
}

var validate = validator.New()

// ToConfig materializes the snapshot as the persisted document.
func ToConfig(snap *Snapshot) *Config {
	cfg := &Config{}
	cfg.Paths.ConfigDir = snap.ConfigDir
	cfg.Paths.QuadletDir = snap.QuadletDir

	cfg.Network.Domain = snap.Value(sources.FieldDomain)
	cfg.Network.IPv4 = snap.Value(sources.FieldIPv4)
	cfg.Network.IPv6 = snap.Value(sources.FieldIPv6)
	cfg.Network.Name = snap.Value(sources.FieldNetwork)
	for _, f := range []sources.FieldName{sources.FieldDNS1, sources.FieldDNS2} {
		if v, ok := snap.Get(f); ok {
			cfg.Network.DNS = append(cfg.Network.DNS, v)
		}
	}
	cfg.Network.NTPServer = snap.Value(sources.FieldNTPServer)

	cfg.CVaaS.Address = snap.Value(sources.FieldCVAddr)
	cfg.CVaaS.EnrollmentToken = snap.Value(sources.FieldEnrollmentToken)
	cfg.CVaaS.Proxy = snap.Value(sources.FieldCVProxy)
	cfg.CVaaS.EOSImageURL = snap.Value(sources.FieldEOSImageURL)

	cfg.SSL.HTTPOnly = snap.Bool(sources.FieldHTTPOnly, false)
	cfg.SSL.HTTPSPort = snap.Int(sources.FieldHTTPSPort, shared.DefaultHTTPSPort)

	cfg.Container.Timezone = snap.Value(sources.FieldTimezone)
	cfg.Container.NginxImage = shared.DefaultNginxImage
	cfg.Container.WebuiImage = shared.DefaultWebuiImage

	cfg.Service.PodName = shared.PodName

	cfg.Auth.AdminPasswordHash = snap.Value(sources.FieldAdminPasswordHash)
	cfg.Auth.SessionTimeout = snap.Int(sources.FieldSessionTimeout, shared.DefaultSessionTimeout)
	cfg.Auth.SessionSecret = snap.Value(sources.FieldSessionSecret)

	cfg.Webui.Enabled = true
	cfg.Webui.ListenPort = shared.DefaultWebuiPort

	return cfg
}

// Persist validates the snapshot and writes it as the new authoritative
// config.yaml, mode 0600 (the document carries secrets).
func Persist(rc *ztp_io.RuntimeContext, snap *Snapshot) error {
	cfg := ToConfig(snap)
	if err := validate.Struct(cfg); err != nil {
		return cerr.Wrap(err, "snapshot failed validation")
	}

	path := filepath.Join(snap.ConfigDir, shared.ConfigFileName)
	return ztp_io.WriteYAML(rc.Ctx, path, cfg, 0600)
}
