package config

import "time"

// Config holds all tokensale configuration.
type Config struct {
	Network        string        `json:"network"         mapstructure:"network"`
	RPCURL         string        `json:"rpc_url"         mapstructure:"rpc_url"`
	ChainID        int64         `json:"chain_id"        mapstructure:"chain_id"` // 0 = ask the node
	KeyName        string        `json:"key_name"        mapstructure:"key_name"` // keychain entry used when no private key is set
	ArtifactsDir   string        `json:"artifacts_dir"   mapstructure:"artifacts_dir"`
	Contracts      Contracts     `json:"contracts"       mapstructure:"contracts"`
	ConfirmTimeout time.Duration `json:"confirm_timeout" mapstructure:"confirm_timeout"` // 0 = wait forever
	PollInterval   time.Duration `json:"poll_interval"   mapstructure:"poll_interval"`
	LogLevel       string        `json:"log_level"       mapstructure:"log_level"`

	// PrivateKey is only ever read from the environment or .env; never saved.
	PrivateKey string `json:"-" mapstructure:"private_key"`

	// internal: config dir path used for Save()
	configDir string
}

// Contracts holds the addresses of the deployed contracts.
type Contracts struct {
	Token string `json:"token" mapstructure:"token"`
	NFT   string `json:"nft"   mapstructure:"nft"`
	Sale  string `json:"sale"  mapstructure:"sale"`
}

// Contract kinds, as used by Config.ContractAddress / SetContract.
const (
	KindToken = "token"
	KindNFT   = "nft"
	KindSale  = "sale"
)
