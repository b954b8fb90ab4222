package client

import (
	"fmt"

	"github.com/gagliardetto/solana-go/rpc"
)

// Network is a Solana cluster name.
type Network string

const (
	NetworkMainnet  Network = "mainnet-beta"
	NetworkDevnet   Network = "devnet"
	NetworkTestnet  Network = "testnet"
	NetworkLocalnet Network = "localnet"
)

// genesis hashes of the public clusters; localnet has none fixed
var genesisHashes = map[Network]string{
	NetworkMainnet: "5eykt4UsFv8P8NJdTREpY1vzqKqZKvdpKuc147dw2N9d",
	NetworkDevnet:  "EtWTRABZaYq6iMfeYKouRu166VU2xqa1wcaWoxPkrZBG",
	NetworkTestnet: "4uhcVJyU9pJkvQyS88uRDiswHXSCkY3zQawwpjk2NsNY",
}

// ParseNetwork validates a cluster name.
func ParseNetwork(s string) (Network, error) {
	switch n := Network(s); n {
	case NetworkMainnet, NetworkDevnet, NetworkTestnet, NetworkLocalnet:
		return n, nil
	default:
		return "", fmt.Errorf("unknown network %q (use mainnet-beta, devnet, testnet or localnet)", s)
	}
}

// IsProduction reports whether real value moves on this network.
func (n Network) IsProduction() bool {
	return n == NetworkMainnet
}

// DefaultRPCURL returns the public RPC endpoint of the cluster.
func (n Network) DefaultRPCURL() string {
	switch n {
	case NetworkMainnet:
		return rpc.MainNetBeta.RPC
	case NetworkTestnet:
		return rpc.TestNet.RPC
	case NetworkLocalnet:
		return rpc.LocalNet.RPC
	default:
		return rpc.DevNet.RPC
	}
}

// NetworkForGenesis returns the public cluster with the given genesis hash.
func NetworkForGenesis(hash string) (Network, bool) {
	for n, h := range genesisHashes {
		if h == hash {
			return n, true
		}
	}
	return "", false
}
