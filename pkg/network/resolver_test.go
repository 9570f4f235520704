// pkg/network/resolver_test.go

package network

import (
	"testing"

	cerr "github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveNetworkForIP(t *testing.T) {
	inventory := []InventoryEntry{
		{Name: "provnet", Subnets: []string{"192.168.40.0/24"}},
		{Name: "mgmt", Subnets: []string{"10.0.0.0/8", "fd00:40::/64"}},
		{Name: "lab", Subnets: []string{"172.16.16.0/20"}},
		{Name: "p2p", Subnets: []string{"192.0.2.8/30"}},
	}

	tests := []struct {
		name string
		ip   string
		want string
	}{
		{"inside /24", "192.168.40.77", "provnet"},
		{"network address of /24", "192.168.40.0", "provnet"},
		{"broadcast of /24", "192.168.40.255", "provnet"},
		{"one past the /24", "192.168.41.1", ""},
		{"inside /8", "10.255.1.2", "mgmt"},
		{"ipv6 inside /64", "fd00:40::1234", "mgmt"},
		{"ipv6 outside /64", "fd00:41::1", ""},
		{"inside /20", "172.16.31.254", "lab"},
		{"outside /20", "172.16.32.1", ""},
		{"inside /30", "192.0.2.10", "p2p"},
		{"outside /30", "192.0.2.12", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveNetworkForIP(tt.ip, inventory)
			if tt.want == "" {
				assert.True(t, cerr.Is(err, ErrNoMatch), "expected no match, got %q / %v", got, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveNetworkForIP_MalformedInputs(t *testing.T) {
	inventory := []InventoryEntry{
		{Name: "broken", Subnets: []string{"not-a-subnet", "10.0.0.0"}},
		{Name: "good", Subnets: []string{"10.0.0.0/16"}},
	}

	// Malformed subnets are skipped; the later valid entry still matches.
	got, err := ResolveNetworkForIP("10.0.4.4", inventory)
	require.NoError(t, err)
	assert.Equal(t, "good", got)

	// A malformed address is a real error, not ErrNoMatch.
	_, err = ResolveNetworkForIP("999.1.1.1", inventory)
	require.Error(t, err)
	assert.False(t, cerr.Is(err, ErrNoMatch))
}

func TestResolveNetworkForIP_FirstMatchWins(t *testing.T) {
	inventory := []InventoryEntry{
		{Name: "wide", Subnets: []string{"10.0.0.0/8"}},
		{Name: "narrow", Subnets: []string{"10.1.0.0/16"}},
	}
	got, err := ResolveNetworkForIP("10.1.2.3", inventory)
	require.NoError(t, err)
	assert.Equal(t, "wide", got)
}
