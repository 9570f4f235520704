// pkg/shared/constants.go

package shared

import "time"

const (
	// DefaultConfigDir is the live installation directory. Everything the
	// running pod mounts (config.yaml, bootstrap.py, nginx.conf, the env
	// file) lives under it.
	DefaultConfigDir = "/opt/containerdata/ztpbootstrap"

	// DefaultQuadletDir is where podman's systemd generator picks up the
	// .pod/.container unit fragments.
	DefaultQuadletDir = "/etc/containers/systemd"

	// DefaultBackupDir holds timestamped archives of previous installs.
	DefaultBackupDir = "/opt/containerdata/ztpbootstrap-backups"

	ConfigFileName    = "config.yaml"
	EnvFileName       = "ztpbootstrap.env"
	BootstrapFileName = "bootstrap.py"
	NginxConfFileName = "nginx.conf"

	PodName            = "ztpbootstrap"
	NginxContainerName = "ztpbootstrap-nginx"
	WebuiContainerName = "ztpbootstrap-webui"

	PodUnitFile            = "ztpbootstrap.pod"
	NginxContainerUnitFile = "ztpbootstrap-nginx.container"
	WebuiContainerUnitFile = "ztpbootstrap-webui.container"

	// Service unit names as produced by the podman systemd generator.
	PodServiceName   = "ztpbootstrap-pod.service"
	NginxServiceName = "ztpbootstrap-nginx.service"
	WebuiServiceName = "ztpbootstrap-webui.service"

	// SetupLockFile prevents concurrent setup runs on the same host.
	SetupLockFile = "/run/ztpctl-setup.lock"
)

const (
	DefaultHTTPSPort      = 443
	DefaultSessionTimeout = 3600
	DefaultTimezone       = "UTC"
	DefaultCVAddr         = "www.arista.io"
	DefaultNginxImage     = "docker.io/library/nginx:1.27-alpine"
	DefaultWebuiImage     = "localhost/ztpbootstrap-webui:latest"
	DefaultWebuiPort      = 8080
)

const (
	// ServiceSettleDelay is the fixed pause after each start/stop before the
	// post-check, matching the settle behavior of the shell installer.
	ServiceSettleDelay = 3 * time.Second

	// UnitGenerationWait is how long one daemon-reload cycle is given before
	// the generated units are re-checked.
	UnitGenerationWait = 2 * time.Second

	// UnitGenerationRetries bounds the reload-wait-recheck loop.
	UnitGenerationRetries = 2

	// ServiceStartPollInterval / ServiceStartPollMax bound the is-active
	// polling after a unit start. Never block unbounded.
	ServiceStartPollInterval = 2 * time.Second
	ServiceStartPollMax      = 10
)

// Version is stamped at build time via -ldflags.
var Version = "dev"
