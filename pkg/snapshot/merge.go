// pkg/snapshot/merge.go

package snapshot

import (
	"context"
	"strconv"

	"github.com/netbootworks/ztpctl/pkg/network"
	"github.com/netbootworks/ztpctl/pkg/shared"
	"github.com/netbootworks/ztpctl/pkg/sources"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// mergePrecedence is the total order over sources, highest first. The
// YamlConfig record must come from the live installation directory — the
// caller never feeds template or repo-local YAML into the merge, so
// placeholder defaults cannot leak into a real upgrade.
var mergePrecedence = []sources.SourceKind{
	sources.KindYamlConfig,
	sources.KindEnvFile,
	sources.KindQuadletPod,
	sources.KindQuadletContainer,
	sources.KindNginxConf,
	sources.KindSystemHostname,
}

// hostnameFields limits what the hostname source may supply.
var hostnameFields = map[sources.FieldName]bool{
	sources.FieldDomain: true,
}

// ipFields are subject to the host-networking override rule: when the pod
// unit declares host networking and carries no IP keys, a legacy
// per-container unit wins these fields over the pod file.
var ipFields = map[sources.FieldName]bool{
	sources.FieldIPv4: true,
	sources.FieldIPv6: true,
	sources.FieldDNS1: true,
	sources.FieldDNS2: true,
}

// Merge combines reader outputs into one snapshot under the fixed
// precedence order, independently per field. Malformed records are
// excluded with a warning. Defaults are applied last, annotated as
// defaults so they remain distinguishable from configured values.
func Merge(ctx context.Context, snap *Snapshot, records []*sources.SourceRecord) *Snapshot {
	logger := otelzap.Ctx(ctx)

	byKind := make(map[sources.SourceKind]*sources.SourceRecord)
	for _, rec := range records {
		if rec == nil {
			continue
		}
		if rec.Malformed {
			logger.Warn("Excluding malformed source from merge",
				zap.String("kind", string(rec.Kind)),
				zap.String("path", rec.Path))
			continue
		}
		byKind[rec.Kind] = rec
	}

	pod := byKind[sources.KindQuadletPod]
	container := byKind[sources.KindQuadletContainer]
	preferContainerForIP := pod != nil && container != nil &&
		pod.HostNetwork && !podHasIPKeys(pod)

	for _, field := range sources.AllFields {
		for _, kind := range precedenceFor(field, preferContainerForIP) {
			if kind == sources.KindSystemHostname && !hostnameFields[field] {
				continue
			}
			rec, ok := byKind[kind]
			if !ok {
				continue
			}
			if value, ok := rec.Get(field); ok {
				snap.Set(field, value, kind)
				break
			}
		}
	}

	applyDefaults(snap)
	return snap
}

// precedenceFor returns the per-field source order. Only the IP/DNS fields
// ever deviate from the global order, and only under the host-networking
// override rule.
func precedenceFor(field sources.FieldName, preferContainerForIP bool) []sources.SourceKind {
	if !preferContainerForIP || !ipFields[field] {
		return mergePrecedence
	}
	reordered := make([]sources.SourceKind, 0, len(mergePrecedence))
	for _, kind := range mergePrecedence {
		if kind == sources.KindQuadletPod {
			reordered = append(reordered, sources.KindQuadletContainer, sources.KindQuadletPod)
			continue
		}
		if kind == sources.KindQuadletContainer {
			continue
		}
		reordered = append(reordered, kind)
	}
	return reordered
}

func podHasIPKeys(pod *sources.SourceRecord) bool {
	for field := range ipFields {
		if _, ok := pod.Get(field); ok {
			return true
		}
	}
	return false
}

func applyDefaults(snap *Snapshot) {
	snap.Set(sources.FieldHTTPSPort, strconv.Itoa(shared.DefaultHTTPSPort), sources.KindDefault)
	snap.Set(sources.FieldSessionTimeout, strconv.Itoa(shared.DefaultSessionTimeout), sources.KindDefault)
	snap.Set(sources.FieldTimezone, shared.DefaultTimezone, sources.KindDefault)
	snap.Set(sources.FieldCVAddr, shared.DefaultCVAddr, sources.KindDefault)
	snap.Set(sources.FieldHTTPOnly, "false", sources.KindDefault)
}

// FillDerivedNetwork runs the derived-field pass: when an address is known
// but the network name is not recoverable from any source, infer it by
// CIDR containment against the live inventory. NoMatch leaves the field
// unset; the operator may supply it explicitly.
func FillDerivedNetwork(ctx context.Context, snap *Snapshot, inventory []network.InventoryEntry) {
	logger := otelzap.Ctx(ctx)

	if _, ok := snap.Get(sources.FieldNetwork); ok {
		return
	}

	for _, field := range []sources.FieldName{sources.FieldIPv4, sources.FieldIPv6} {
		ip, ok := snap.Get(field)
		if !ok {
			continue
		}
		name, err := network.ResolveNetworkForIP(ip, inventory)
		if err != nil {
			logger.Debug("Network not resolvable from address",
				zap.String("address", ip), zap.Error(err))
			continue
		}
		logger.Info("Recovered network by CIDR containment",
			zap.String("address", ip), zap.String("network", name))
		snap.Set(sources.FieldNetwork, name, sources.KindDerived)
		return
	}
}
