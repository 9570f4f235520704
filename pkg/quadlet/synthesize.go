// pkg/quadlet/synthesize.go

package quadlet

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	cerr "github.com/cockroachdb/errors"
	"github.com/go-ini/ini"
	"github.com/netbootworks/ztpctl/pkg/shared"
	"github.com/netbootworks/ztpctl/pkg/snapshot"
	"github.com/netbootworks/ztpctl/pkg/sources"
)

// Manual-fallback unit synthesis: when the quadlet generator fails
// silently, minimal but functionally complete .service definitions are
// produced that mirror what the generator would have emitted.

// UnitKind selects which service unit to synthesize.
type UnitKind string

const (
	KindPod            UnitKind = "pod"
	KindNginxContainer UnitKind = "nginx"
	KindWebuiContainer UnitKind = "webui"
)

// KindForService maps a missing generated unit name back to its kind.
func KindForService(unit string) (UnitKind, bool) {
	switch unit {
	case shared.PodServiceName:
		return KindPod, true
	case shared.NginxServiceName:
		return KindNginxContainer, true
	case shared.WebuiServiceName:
		return KindWebuiContainer, true
	}
	return "", false
}

// hostExists is stubbed in tests; synthesis filters bind mounts whose
// source path is absent so the unit doesn't fail activation.
var hostExists = func(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// platformLibraryPaths are host-distribution library mounts that only make
// sense on specific distributions; they are dropped during translation.
var platformLibraryPaths = []string{
	"/lib64",
	"/usr/lib64",
	"/usr/lib64/systemd",
}

// Synthesize produces the unit file content for kind. Container kinds
// translate their quadlet fragment's Volume=/Environment= keys into podman
// run flags; the pod kind is built from the snapshot alone.
func Synthesize(kind UnitKind, snap *snapshot.Snapshot) (string, error) {
	switch kind {
	case KindPod:
		return synthesizePod(snap), nil
	case KindNginxContainer:
		return synthesizeContainer(snap, shared.NginxContainerName, shared.NginxContainerUnitFile, "ZTP bootstrap file server")
	case KindWebuiContainer:
		return synthesizeContainer(snap, shared.WebuiContainerName, shared.WebuiContainerUnitFile, "ZTP bootstrap dashboard")
	}
	return "", cerr.Newf("unknown unit kind %q", kind)
}

func synthesizePod(snap *snapshot.Snapshot) string {
	var createArgs []string
	createArgs = append(createArgs, "pod", "create", "--replace", "--name", shared.PodName)

	if network, ok := snap.Get(sources.FieldNetwork); ok {
		createArgs = append(createArgs, "--network", network)
	}
	if ip, ok := snap.Get(sources.FieldIPv4); ok {
		createArgs = append(createArgs, "--ip", ip)
	}
	if ip6, ok := snap.Get(sources.FieldIPv6); ok {
		createArgs = append(createArgs, "--ip6", ip6)
	}
	for _, f := range []sources.FieldName{sources.FieldDNS1, sources.FieldDNS2} {
		if dns, ok := snap.Get(f); ok {
			createArgs = append(createArgs, "--dns", dns)
		}
	}
	if snap.Bool(sources.FieldHTTPOnly, false) {
		createArgs = append(createArgs, "-p", "80:80")
	} else {
		port := snap.Int(sources.FieldHTTPSPort, shared.DefaultHTTPSPort)
		createArgs = append(createArgs, "-p", fmt.Sprintf("%d:%d", port, port))
	}

	var b strings.Builder
	b.WriteString("[Unit]\n")
	b.WriteString("Description=ZTP bootstrap pod (synthesized)\n")
	b.WriteString("Wants=network-online.target\n")
	b.WriteString("After=network-online.target\n\n")
	b.WriteString("[Service]\n")
	b.WriteString("Type=forking\n")
	b.WriteString("Restart=on-failure\n")
	b.WriteString("ExecStartPre=/usr/bin/podman " + strings.Join(createArgs, " ") + "\n")
	b.WriteString("ExecStart=/usr/bin/podman pod start " + shared.PodName + "\n")
	b.WriteString("ExecStop=/usr/bin/podman pod stop -t 10 " + shared.PodName + "\n")
	b.WriteString("ExecStopPost=/usr/bin/podman pod rm -f " + shared.PodName + "\n\n")
	b.WriteString("[Install]\n")
	b.WriteString("WantedBy=multi-user.target\n")
	return b.String()
}

func synthesizeContainer(snap *snapshot.Snapshot, containerName, fragmentName, description string) (string, error) {
	fragment := filepath.Join(snap.QuadletDir, fragmentName)

	image, volumes, environment, err := translateFragment(fragment)
	if err != nil {
		return "", cerr.Wrapf(err, "translate %s", fragment)
	}

	runArgs := []string{"run", "--rm", "-d", "--replace",
		"--name", containerName, "--pod", shared.PodName}
	for _, v := range volumes {
		runArgs = append(runArgs, "-v", v)
	}
	for _, e := range environment {
		runArgs = append(runArgs, "--env", e)
	}
	runArgs = append(runArgs, image)

	var b strings.Builder
	b.WriteString("[Unit]\n")
	b.WriteString("Description=" + description + " (synthesized)\n")
	// Bind/After ordering relative to the owning pod unit must match what
	// the generator would have produced, or startup ordering breaks.
	b.WriteString("BindsTo=" + shared.PodServiceName + "\n")
	b.WriteString("After=" + shared.PodServiceName + "\n\n")
	b.WriteString("[Service]\n")
	b.WriteString("Restart=on-failure\n")
	b.WriteString("ExecStartPre=-/usr/bin/podman rm -f " + containerName + "\n")
	b.WriteString("ExecStart=/usr/bin/podman " + strings.Join(runArgs, " ") + "\n")
	b.WriteString("ExecStop=/usr/bin/podman stop -t 10 " + containerName + "\n")
	b.WriteString("ExecStopPost=-/usr/bin/podman rm -f " + containerName + "\n\n")
	b.WriteString("[Install]\n")
	b.WriteString("WantedBy=multi-user.target\n")
	return b.String(), nil
}

// translateFragment pulls Image=, Volume= and Environment= out of the
// source container fragment, dropping bind mounts whose host path is
// missing and platform-specific library mounts.
func translateFragment(path string) (image string, volumes, environment []string, err error) {
	f, err := ini.LoadSources(ini.LoadOptions{AllowShadows: true}, path)
	if err != nil {
		return "", nil, nil, err
	}
	sec, err := f.GetSection("Container")
	if err != nil {
		return "", nil, nil, cerr.Newf("fragment %s has no [Container] section", path)
	}

	image = sec.Key("Image").String()
	if image == "" {
		return "", nil, nil, cerr.Newf("fragment %s declares no Image", path)
	}

	for _, volume := range sec.Key("Volume").ValueWithShadows() {
		if keepVolume(volume) {
			volumes = append(volumes, volume)
		}
	}
	for _, env := range sec.Key("Environment").ValueWithShadows() {
		if env != "" {
			environment = append(environment, env)
		}
	}
	return image, volumes, environment, nil
}

func keepVolume(volume string) bool {
	source, _, ok := strings.Cut(volume, ":")
	if !ok || source == "" {
		return false
	}
	// Named volumes (no leading slash) are podman-managed; keep them.
	if !strings.HasPrefix(source, "/") {
		return true
	}
	for _, lib := range platformLibraryPaths {
		if source == lib {
			return false
		}
	}
	return hostExists(source)
}

// WriteSynthesized installs a synthesized unit under /etc/systemd/system
// where it shadows nothing (the generated name never materialized).
func WriteSynthesized(unit string, content string) (string, error) {
	path := filepath.Join("/etc/systemd/system", unit)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return "", cerr.Wrapf(err, "write synthesized unit %s", path)
	}
	return path, nil
}
