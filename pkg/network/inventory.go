// pkg/network/inventory.go

package network

import (
	"encoding/json"
	"strings"

	cerr "github.com/cockroachdb/errors"
	"github.com/netbootworks/ztpctl/pkg/execute"
	"github.com/netbootworks/ztpctl/pkg/ztp_io"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// InventoryEntry is one managed virtual network: name plus its CIDR
// subnets. Read from the live network manager, used only for inference,
// never persisted.
type InventoryEntry struct {
	Name    string
	Subnets []string
}

// reservedNetworks are podman's own defaults; they are skipped during
// containment scans so the tool never attributes an address to them.
var reservedNetworks = map[string]bool{
	"podman":                      true,
	"podman-default-kube-network": true,
}

// podmanEnv works around hosts where podman needs systemd's library path
// (the same quirk the dashboard's diagnostics handle).
var podmanEnv = []string{"LD_LIBRARY_PATH=/lib64:/usr/lib64:/usr/lib64/systemd"}

type podmanNetwork struct {
	Name    string `json:"name"`
	Subnets []struct {
		Subnet string `json:"subnet"`
	} `json:"subnets"`
}

// ReadInventory queries podman for the configured networks and their
// subnets. Reserved default networks are excluded up front.
func ReadInventory(rc *ztp_io.RuntimeContext) ([]InventoryEntry, error) {
	logger := otelzap.Ctx(rc.Ctx)

	out, err := execute.Run(rc.Ctx, execute.Options{
		Command: "podman",
		Args:    []string{"network", "ls", "--format", "json"},
		Env:     podmanEnv,
		Capture: true,
	})
	if err != nil {
		return nil, cerr.Wrap(err, "list podman networks")
	}

	var nets []podmanNetwork
	if err := json.Unmarshal([]byte(strings.TrimSpace(out)), &nets); err != nil {
		return nil, cerr.Wrap(err, "decode podman network list")
	}

	var inventory []InventoryEntry
	for _, n := range nets {
		if reservedNetworks[n.Name] {
			continue
		}
		entry := InventoryEntry{Name: n.Name}
		if len(n.Subnets) == 0 {
			// network ls omits subnets on older podman; inspect fills them in
			subnets, err := inspectSubnets(rc, n.Name)
			if err != nil {
				logger.Debug("Could not inspect network subnets",
					zap.String("network", n.Name), zap.Error(err))
				continue
			}
			entry.Subnets = subnets
		} else {
			for _, s := range n.Subnets {
				if s.Subnet != "" {
					entry.Subnets = append(entry.Subnets, s.Subnet)
				}
			}
		}
		inventory = append(inventory, entry)
	}

	logger.Debug("Read network inventory", zap.Int("networks", len(inventory)))
	return inventory, nil
}

func inspectSubnets(rc *ztp_io.RuntimeContext, name string) ([]string, error) {
	out, err := execute.Run(rc.Ctx, execute.Options{
		Command: "podman",
		Args:    []string{"network", "inspect", name},
		Env:     podmanEnv,
		Capture: true,
	})
	if err != nil {
		return nil, err
	}

	var inspected []podmanNetwork
	if err := json.Unmarshal([]byte(strings.TrimSpace(out)), &inspected); err != nil {
		return nil, cerr.Wrapf(err, "decode inspect output for %s", name)
	}

	var subnets []string
	for _, n := range inspected {
		for _, s := range n.Subnets {
			if s.Subnet != "" {
				subnets = append(subnets, s.Subnet)
			}
		}
	}
	return subnets, nil
}
