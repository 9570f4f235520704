// pkg/artifacts/render.go

package artifacts

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"text/template"

	cerr "github.com/cockroachdb/errors"
	"github.com/netbootworks/ztpctl/pkg/shared"
	"github.com/netbootworks/ztpctl/pkg/snapshot"
	"github.com/netbootworks/ztpctl/pkg/sources"
)

// File is one rendered artifact. Secret-bearing artifacts carry 0600.
type File struct {
	Name    string
	Content []byte
	Mode    os.FileMode
}

// Set is everything the snapshot regenerates: the env file, the injected
// bootstrap script, the nginx server block, and the quadlet unit
// fragments. The authoritative config.yaml is persisted separately by the
// snapshot package.
type Set struct {
	EnvFile         File
	BootstrapScript File
	NginxConf       File
	PodUnit         File
	ContainerUnits  []File
}

// templateData flattens the snapshot for the templates. All renderers are
// pure given this struct.
type templateData struct {
	Domain, IPv4, IPv6, Network            string
	DNS1, DNS2, NTPServer, Timezone        string
	CVAddr, EnrollmentToken, CVProxy       string
	EOSImageURL                            string
	HTTPOnly                               bool
	HTTPSPort, SessionTimeout, WebuiPort   int
	SessionSecret, AdminPasswordHash       string
	HTTPSEnabled                           string
	WebuiEnabled                           bool
	ConfigDir                              string
	PodName, PodUnitFile                   string
	NginxContainerName, WebuiContainerName string
	NginxImage, WebuiImage                 string
}

func dataFrom(snap *snapshot.Snapshot) templateData {
	httpOnly := snap.Bool(sources.FieldHTTPOnly, false)
	d := templateData{
		Domain:             snap.Value(sources.FieldDomain),
		IPv4:               snap.Value(sources.FieldIPv4),
		IPv6:               snap.Value(sources.FieldIPv6),
		DNS1:               snap.Value(sources.FieldDNS1),
		DNS2:               snap.Value(sources.FieldDNS2),
		NTPServer:          snap.Value(sources.FieldNTPServer),
		Timezone:           snap.Value(sources.FieldTimezone),
		CVAddr:             snap.Value(sources.FieldCVAddr),
		EnrollmentToken:    snap.Value(sources.FieldEnrollmentToken),
		CVProxy:            snap.Value(sources.FieldCVProxy),
		EOSImageURL:        snap.Value(sources.FieldEOSImageURL),
		HTTPOnly:           httpOnly,
		HTTPSPort:          snap.Int(sources.FieldHTTPSPort, shared.DefaultHTTPSPort),
		SessionTimeout:     snap.Int(sources.FieldSessionTimeout, shared.DefaultSessionTimeout),
		SessionSecret:      snap.Value(sources.FieldSessionSecret),
		AdminPasswordHash:  snap.Value(sources.FieldAdminPasswordHash),
		WebuiEnabled:       true,
		WebuiPort:          shared.DefaultWebuiPort,
		ConfigDir:          snap.ConfigDir,
		PodName:            shared.PodName,
		PodUnitFile:        shared.PodUnitFile,
		NginxContainerName: shared.NginxContainerName,
		WebuiContainerName: shared.WebuiContainerName,
		NginxImage:         shared.DefaultNginxImage,
		WebuiImage:         shared.DefaultWebuiImage,
	}
	if httpOnly {
		d.HTTPSEnabled = "false"
	} else {
		d.HTTPSEnabled = "true"
	}
	// Quadlet references networks by name; podman expects the .network
	// suffix only for quadlet-managed network files, so the bare name is
	// used here and resolved by podman itself.
	if network, ok := snap.Get(sources.FieldNetwork); ok {
		d.Network = network
	}
	return d
}

// Render produces every artifact from the snapshot. bootstrapIn is the
// current bootstrap script content (externally maintained); only its five
// provisioning assignment lines are rewritten.
func Render(snap *snapshot.Snapshot, bootstrapIn []byte) (*Set, error) {
	data := dataFrom(snap)

	envFile, err := renderTemplate("envfile", envFileTemplate, data)
	if err != nil {
		return nil, err
	}
	nginxConf, err := renderTemplate("nginx", nginxConfTemplate, data)
	if err != nil {
		return nil, err
	}
	podUnit, err := renderTemplate("pod", podUnitTemplate, data)
	if err != nil {
		return nil, err
	}
	nginxUnit, err := renderTemplate("nginx-container", nginxContainerTemplate, data)
	if err != nil {
		return nil, err
	}
	webuiUnit, err := renderTemplate("webui-container", webuiContainerTemplate, data)
	if err != nil {
		return nil, err
	}

	return &Set{
		EnvFile:         File{Name: shared.EnvFileName, Content: envFile, Mode: 0600},
		BootstrapScript: File{Name: shared.BootstrapFileName, Content: InjectBootstrap(bootstrapIn, snap), Mode: 0644},
		NginxConf:       File{Name: shared.NginxConfFileName, Content: nginxConf, Mode: 0644},
		PodUnit:         File{Name: shared.PodUnitFile, Content: podUnit, Mode: 0644},
		ContainerUnits: []File{
			{Name: shared.NginxContainerUnitFile, Content: nginxUnit, Mode: 0644},
			{Name: shared.WebuiContainerUnitFile, Content: webuiUnit, Mode: 0644},
		},
	}, nil
}

func renderTemplate(name, text string, data templateData) ([]byte, error) {
	tmpl, err := template.New(name).Parse(text)
	if err != nil {
		return nil, cerr.Wrapf(err, "parse %s template", name)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, cerr.Wrapf(err, "render %s template", name)
	}
	return buf.Bytes(), nil
}

// bootstrapAssignments maps the five substituted variable-assignment lines
// of the bootstrap payload to snapshot fields. Everything else in the
// script is opaque and preserved byte-for-byte.
var bootstrapAssignments = []struct {
	variable string
	field    sources.FieldName
}{
	{"CV_ADDR", sources.FieldCVAddr},
	{"ENROLLMENT_TOKEN", sources.FieldEnrollmentToken},
	{"CV_PROXY", sources.FieldCVProxy},
	{"EOS_URL", sources.FieldEOSImageURL},
	{"NTP_SERVER", sources.FieldNTPServer},
}

// InjectBootstrap rewrites the fixed assignment lines in the bootstrap
// script with the snapshot's values. Lines not present in the input are
// left alone — the payload's shape is externally owned.
func InjectBootstrap(script []byte, snap *snapshot.Snapshot) []byte {
	lines := strings.Split(string(script), "\n")

	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		for _, assign := range bootstrapAssignments {
			if !strings.HasPrefix(trimmed, assign.variable) {
				continue
			}
			rest := strings.TrimPrefix(trimmed, assign.variable)
			if !strings.HasPrefix(strings.TrimSpace(rest), "=") {
				continue
			}
			lines[i] = fmt.Sprintf("%s = %q", assign.variable, snap.Value(assign.field))
			break
		}
	}
	return []byte(strings.Join(lines, "\n"))
}
