package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	defaultNetwork      = "localhost"
	defaultRPCURL       = "http://127.0.0.1:8545"
	defaultArtifactsDir = "artifacts/contracts"
	defaultLogLevel     = "info"

	configFile = "config.json"
	envPrefix  = "TOKENSALE"
)

// legacyEnv lists the older variable names of the hardhat project .env,
// consulted after the TOKENSALE_* names.
var legacyEnv = map[string][]string{
	"rpc_url":         {"ALCHEMY_SEPOLIA_URL"},
	"private_key":     {"DEPLOYER_PRIVATE_KEY", "PRIVATE_KEY"},
	"contracts.token": {"MY_TOKEN_SEPOLIA"},
}

// Load reads config from dir (or creates defaults). dir defaults to
// ~/.tokensale. envFile, when set, must exist; otherwise a .env in the
// working directory is loaded if present. Variables already in the
// environment win over the file.
func Load(dir, envFile string) (*Config, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("could not determine home dir: %w", err)
		}
		dir = filepath.Join(home, ".tokensale")
	}

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("could not create config dir: %w", err)
	}

	if err := loadEnvFile(envFile); err != nil {
		return nil, err
	}

	v := newViper(dir)
	path := filepath.Join(dir, configFile)
	if _, err := os.Stat(path); err == nil {
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg, err := fromViper(v)
	if err != nil {
		return nil, err
	}
	cfg.configDir = dir
	return cfg, nil
}

func loadEnvFile(envFile string) error {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return fmt.Errorf("loading env file %s: %w", envFile, err)
		}
		return nil
	}
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			return fmt.Errorf("loading .env: %w", err)
		}
	}
	return nil
}

func newViper(dir string) *viper.Viper {
	v := viper.New()
	v.SetConfigFile(filepath.Join(dir, configFile))
	v.SetConfigType("json")

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	v.SetDefault("network", defaultNetwork)
	v.SetDefault("rpc_url", defaultRPCURL)
	v.SetDefault("chain_id", 0)
	v.SetDefault("private_key", "")
	v.SetDefault("key_name", "")
	v.SetDefault("artifacts_dir", defaultArtifactsDir)
	v.SetDefault("contracts.token", "")
	v.SetDefault("contracts.nft", "")
	v.SetDefault("contracts.sale", "")
	v.SetDefault("confirm_timeout", "0s")
	v.SetDefault("poll_interval", DefaultPollInterval.String())
	v.SetDefault("log_level", defaultLogLevel)

	for key, names := range legacyEnv {
		envKey := envPrefix + "_" + strings.ToUpper(strings.NewReplacer(".", "_").Replace(key))
		_ = v.BindEnv(append([]string{key, envKey}, names...)...)
	}
	return v
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Network:      v.GetString("network"),
		RPCURL:       v.GetString("rpc_url"),
		ChainID:      v.GetInt64("chain_id"),
		PrivateKey:   v.GetString("private_key"),
		KeyName:      v.GetString("key_name"),
		ArtifactsDir: v.GetString("artifacts_dir"),
		Contracts: Contracts{
			Token: v.GetString("contracts.token"),
			NFT:   v.GetString("contracts.nft"),
			Sale:  v.GetString("contracts.sale"),
		},
		LogLevel: v.GetString("log_level"),
	}
	var err error
	if cfg.ConfirmTimeout, err = duration(v, "confirm_timeout"); err != nil {
		return nil, err
	}
	if cfg.PollInterval, err = duration(v, "poll_interval"); err != nil {
		return nil, err
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	if cfg.ConfirmTimeout < 0 {
		return nil, fmt.Errorf("confirm_timeout must not be negative, got %s", cfg.ConfirmTimeout)
	}
	return cfg, nil
}

// Save records the contract addresses and the default key name in
// config.json. Every other key of an existing file is kept as written, so
// values that came from flags or the environment for one run are never
// persisted. The private key is never written.
func (c *Config) Save() error {
	if err := os.MkdirAll(c.configDir, 0o700); err != nil {
		return err
	}
	path := filepath.Join(c.configDir, configFile)
	onDisk := map[string]any{}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := json.Unmarshal(data, &onDisk); err != nil {
			return fmt.Errorf("parsing %s: %w", path, err)
		}
		if onDisk == nil {
			onDisk = map[string]any{}
		}
	case !os.IsNotExist(err):
		return fmt.Errorf("reading %s: %w", path, err)
	}

	onDisk["contracts"] = c.Contracts
	if c.KeyName != "" {
		onDisk["key_name"] = c.KeyName
	} else {
		delete(onDisk, "key_name")
	}
	return saveJSON(path, onDisk)
}

// Dir returns the config directory.
func (c *Config) Dir() string {
	return c.configDir
}

// ContractAddress returns the stored address for kind ("token", "nft", "sale").
func (c *Config) ContractAddress(kind string) (string, error) {
	switch kind {
	case KindToken:
		return c.Contracts.Token, nil
	case KindNFT:
		return c.Contracts.NFT, nil
	case KindSale:
		return c.Contracts.Sale, nil
	}
	return "", fmt.Errorf("unknown contract kind %q", kind)
}

// SetContract records a deployed address for kind.
func (c *Config) SetContract(kind, address string) error {
	switch kind {
	case KindToken:
		c.Contracts.Token = address
	case KindNFT:
		c.Contracts.NFT = address
	case KindSale:
		c.Contracts.Sale = address
	default:
		return fmt.Errorf("unknown contract kind %q", kind)
	}
	return nil
}

// ArtifactPath returns the artifact JSON path for kind under ArtifactsDir.
func (c *Config) ArtifactPath(kind string) (string, error) {
	rel, ok := ArtifactPaths[kind]
	if !ok {
		return "", fmt.Errorf("unknown contract kind %q", kind)
	}
	return filepath.Join(c.ArtifactsDir, rel), nil
}

// --- helpers ---

// duration parses key as a Go duration. A bare number has no unit and is
// rejected rather than read as nanoseconds.
func duration(v *viper.Viper, key string) (time.Duration, error) {
	raw := strings.TrimSpace(v.GetString(key))
	if raw == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w (use a unit, e.g. 30s or 2m)", key, err)
	}
	return d, nil
}

func saveJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}
