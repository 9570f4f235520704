// pkg/snapshot/snapshot.go

package snapshot

import (
	"strconv"

	"github.com/netbootworks/ztpctl/pkg/shared"
	"github.com/netbootworks/ztpctl/pkg/sources"
)

// Field is one resolved setting: its value and the source that won it.
type Field struct {
	Value  string
	Source sources.SourceKind
}

// Snapshot is the merged, canonical configuration for one setup run. Every
// resolved field records exactly one winning source; fields no source
// supplied carry either a documented default (annotated as such) or stay
// absent, which is distinguishable from "configured to empty".
type Snapshot struct {
	fields map[sources.FieldName]Field

	// Structural settings, fixed per run rather than merged.
	ConfigDir  string
	QuadletDir string
}

// New returns an empty snapshot bound to the given directories.
func New(configDir, quadletDir string) *Snapshot {
	if configDir == "" {
		configDir = shared.DefaultConfigDir
	}
	if quadletDir == "" {
		quadletDir = shared.DefaultQuadletDir
	}
	return &Snapshot{
		fields:     make(map[sources.FieldName]Field),
		ConfigDir:  configDir,
		QuadletDir: quadletDir,
	}
}

// Get returns the value for a field and whether any source resolved it.
func (s *Snapshot) Get(f sources.FieldName) (string, bool) {
	field, ok := s.fields[f]
	return field.Value, ok
}

// Value returns the field's value, empty when unresolved.
func (s *Snapshot) Value(f sources.FieldName) string {
	return s.fields[f].Value
}

// Source reports which source won the field.
func (s *Snapshot) Source(f sources.FieldName) (sources.SourceKind, bool) {
	field, ok := s.fields[f]
	return field.Source, ok
}

// Set records a value with its provenance. First writer wins: the merger
// walks sources in precedence order and later (lower-precedence) sources
// must not overwrite. Operator input uses Override.
func (s *Snapshot) Set(f sources.FieldName, value string, source sources.SourceKind) {
	if value == "" {
		return
	}
	if _, exists := s.fields[f]; exists {
		return
	}
	s.fields[f] = Field{Value: value, Source: source}
}

// Override replaces a field unconditionally, recording operator provenance
// semantics (fresh input beats every discovered source).
func (s *Snapshot) Override(f sources.FieldName, value string, source sources.SourceKind) {
	if value == "" {
		delete(s.fields, f)
		return
	}
	s.fields[f] = Field{Value: value, Source: source}
}

// Bool interprets a field as a boolean, returning def when unresolved or
// unparsable.
func (s *Snapshot) Bool(f sources.FieldName, def bool) bool {
	raw, ok := s.Get(f)
	if !ok {
		return def
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return def
	}
	return b
}

// Int interprets a field as an integer, returning def when unresolved or
// unparsable.
func (s *Snapshot) Int(f sources.FieldName, def int) int {
	raw, ok := s.Get(f)
	if !ok {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}

// Preview returns a log-safe rendering of the field's value: secrets are
// truncated to a fixed-length preview.
func (s *Snapshot) Preview(f sources.FieldName) string {
	value, ok := s.Get(f)
	if !ok {
		return "(unset)"
	}
	if sources.SecretFields[f] {
		return shared.PreviewSecret(value)
	}
	return value
}
