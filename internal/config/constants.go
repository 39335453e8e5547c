package config

import "time"

// Gas limits used as EstimateGas fallbacks when the node cannot simulate the tx.
// These are conservative upper bounds; actual gas used will be lower.
const (
	GasLimitERC20Transfer = uint64(60_000)    // ERC-20 transfer or approve
	GasLimitERC20Mint     = uint64(80_000)    // ERC-20 mint
	GasLimitContractCall  = uint64(200_000)   // generic contract state-change call
	GasLimitDeploy        = uint64(3_000_000) // contract deployment
)

// Timeouts.
const (
	DefaultPollInterval = 2 * time.Second // receipt polling
	DialTimeout         = 10 * time.Second
)

// Sale defaults, matching the values the sale fixture deploys with.
const (
	DefaultRatio = 100 // tokens per wei
	DefaultPrice = 10  // NFT price in token base units
)

// DefaultMintAmount is minted when no amount argument is given (10 tokens).
const DefaultMintAmount = "10"

// MinterRole is the role name read from the token when none is given.
const MinterRole = "MINTER_ROLE"

// Artifact file names relative to artifacts_dir (Hardhat layout).
var ArtifactPaths = map[string]string{
	KindToken: "MyToken.sol/MyToken.json",
	KindNFT:   "MyNFT.sol/MyNFT.json",
	KindSale:  "TokenSale.sol/TokenSale.json",
}
