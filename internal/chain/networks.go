package chain

import (
	"errors"
	"strings"
)

// ErrNetworkNotFound is returned when a network is not in the registry.
var ErrNetworkNotFound = errors.New("network not found")

// Network holds display metadata for a chain the scripts target.
type Network struct {
	Name           string
	DisplayName    string
	ChainID        int64
	NativeCurrency string
	DefaultRPC     string
	Explorer       string // empty for local nodes
}

var networks = []Network{
	{
		Name: "localhost", DisplayName: "Hardhat / Anvil", ChainID: 31337,
		NativeCurrency: "ETH",
		DefaultRPC:     "http://127.0.0.1:8545",
	},
	{
		Name: "sepolia", DisplayName: "Sepolia", ChainID: 11155111,
		NativeCurrency: "SepoliaETH",
		DefaultRPC:     "https://rpc.sepolia.org",
		Explorer:       "https://sepolia.etherscan.io",
	},
	{
		Name: "mainnet", DisplayName: "Ethereum", ChainID: 1,
		NativeCurrency: "ETH",
		DefaultRPC:     "https://ethereum-rpc.publicnode.com",
		Explorer:       "https://etherscan.io",
	},
}

// Networks returns every known network.
func Networks() []Network { return networks }

// NetworkByName finds a network by its slug ("localhost", "sepolia").
func NetworkByName(name string) (*Network, error) {
	for i := range networks {
		if networks[i].Name == strings.ToLower(name) {
			return &networks[i], nil
		}
	}
	return nil, ErrNetworkNotFound
}

// NetworkByChainID finds a network by chain ID.
func NetworkByChainID(id int64) (*Network, error) {
	for i := range networks {
		if networks[i].ChainID == id {
			return &networks[i], nil
		}
	}
	return nil, ErrNetworkNotFound
}

// Symbol returns the native currency symbol for chainID, "ETH" when unknown.
func Symbol(chainID int64) string {
	if n, err := NetworkByChainID(chainID); err == nil {
		return n.NativeCurrency
	}
	return "ETH"
}

// TxURL returns the explorer link for a transaction, or "" without explorer.
func (n *Network) TxURL(hash string) string {
	if n.Explorer == "" {
		return ""
	}
	return n.Explorer + "/tx/" + hash
}

// AddressURL returns the explorer link for an address, or "" without explorer.
func (n *Network) AddressURL(addr string) string {
	if n.Explorer == "" {
		return ""
	}
	return n.Explorer + "/address/" + addr
}
