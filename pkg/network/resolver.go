// pkg/network/resolver.go

package network

import (
	"net/netip"

	cerr "github.com/cockroachdb/errors"
)

// ErrNoMatch reports that no configured network's subnet contains the
// address. Non-fatal: the network field is simply left unset and the
// operator may supply it explicitly.
var ErrNoMatch = cerr.New("no configured network contains the address")

// ResolveNetworkForIP determines which managed virtual network contains ip
// by CIDR containment against the inventory. Containment is true bitmask
// arithmetic via netip.Prefix, correct for any prefix length, not just
// /8, /16 and /24. The first matching entry wins.
func ResolveNetworkForIP(ip string, inventory []InventoryEntry) (string, error) {
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return "", cerr.Wrapf(err, "parse address %q", ip)
	}
	// Quadlet IP= values and inventory subnets may mix 4-in-6 forms.
	addr = addr.Unmap()

	for _, entry := range inventory {
		for _, subnet := range entry.Subnets {
			prefix, err := netip.ParsePrefix(subnet)
			if err != nil {
				// Malformed inventory entries are skipped, not fatal.
				continue
			}
			if prefix.Masked().Contains(addr) {
				return entry.Name, nil
			}
		}
	}
	return "", ErrNoMatch
}
