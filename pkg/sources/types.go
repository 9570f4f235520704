// pkg/sources/types.go

package sources

import "time"

// FieldName identifies one logical configuration setting, independent of
// which file format it was discovered in.
type FieldName string

const (
	FieldDomain            FieldName = "domain"
	FieldIPv4              FieldName = "ipv4"
	FieldIPv6              FieldName = "ipv6"
	FieldNetwork           FieldName = "network"
	FieldHTTPOnly          FieldName = "http_only"
	FieldHTTPSPort         FieldName = "https_port"
	FieldCVAddr            FieldName = "cv_addr"
	FieldEnrollmentToken   FieldName = "enrollment_token"
	FieldCVProxy           FieldName = "cv_proxy"
	FieldEOSImageURL       FieldName = "eos_image_url"
	FieldNTPServer         FieldName = "ntp_server"
	FieldTimezone          FieldName = "timezone"
	FieldDNS1              FieldName = "dns1"
	FieldDNS2              FieldName = "dns2"
	FieldAdminPasswordHash FieldName = "admin_password_hash"
	FieldSessionTimeout    FieldName = "session_timeout"
	FieldSessionSecret     FieldName = "session_secret"
)

// AllFields lists every field a reader may supply, in display order.
var AllFields = []FieldName{
	FieldDomain, FieldIPv4, FieldIPv6, FieldNetwork,
	FieldHTTPOnly, FieldHTTPSPort,
	FieldCVAddr, FieldEnrollmentToken, FieldCVProxy, FieldEOSImageURL,
	FieldNTPServer, FieldTimezone, FieldDNS1, FieldDNS2,
	FieldAdminPasswordHash, FieldSessionTimeout, FieldSessionSecret,
}

// SecretFields are only ever logged as fixed-length previews.
var SecretFields = map[FieldName]bool{
	FieldEnrollmentToken:   true,
	FieldAdminPasswordHash: true,
	FieldSessionSecret:     true,
}

// SourceKind identifies where a value came from. Order of declaration is
// not significant; merge precedence lives in the snapshot package.
type SourceKind string

const (
	KindYamlConfig       SourceKind = "yaml-config"
	KindEnvFile          SourceKind = "env-file"
	KindQuadletPod       SourceKind = "quadlet-pod"
	KindQuadletContainer SourceKind = "quadlet-container"
	KindNginxConf        SourceKind = "nginx-conf"
	KindSystemHostname   SourceKind = "system-hostname"

	// Provenance markers used by the snapshot for values no reader supplied.
	KindDefault  SourceKind = "default"
	KindOperator SourceKind = "operator"
	KindDerived  SourceKind = "derived"
)

// SourceRecord is the output of one reader: raw string values keyed by
// field, tagged with origin. Immutable once produced.
type SourceRecord struct {
	Kind      SourceKind
	Path      string
	ReadAt    time.Time
	Values    map[FieldName]string
	Malformed bool

	// HostNetwork is set by the quadlet pod reader when the pod declares
	// Network=host. The merger uses it to decide whether legacy
	// per-container IP/DNS keys take precedence for those fields.
	HostNetwork bool
}

// Get returns the raw value for a field and whether it is present and
// non-empty.
func (r *SourceRecord) Get(f FieldName) (string, bool) {
	if r == nil || r.Malformed {
		return "", false
	}
	v, ok := r.Values[f]
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

func newRecord(kind SourceKind, path string) *SourceRecord {
	return &SourceRecord{
		Kind:   kind,
		Path:   path,
		ReadAt: time.Now(),
		Values: make(map[FieldName]string),
	}
}
