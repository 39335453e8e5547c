package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/Mohsinsiddi/tokensale/internal/config"
	"github.com/Mohsinsiddi/tokensale/internal/logging"
	"github.com/Mohsinsiddi/tokensale/internal/ui"
	"github.com/spf13/cobra"
)

// Version is the current release. Overridable via build ldflags:
//
//	go build -ldflags "-X github.com/Mohsinsiddi/tokensale/cmd.Version=1.2.3" .
var Version = "0.1.0"

var (
	cfgDir      string
	envFile     string
	logLevel    string
	rpcOverride string

	cfg    *config.Config
	logger *slog.Logger
)

// rootCmd is the top-level command.
var rootCmd = &cobra.Command{
	Use:   "tokensale",
	Short: "Deploy and operate the MyToken / MyNFT / TokenSale contracts",
	Long: `tokensale deploys the MyToken ERC20, the MyNFT collection and the
TokenSale contract, and runs the administration and verification flows
against them: minting, role grants, token and NFT purchases, buy-backs
and owner withdrawals.

Settings come from ~/.tokensale/config.json, a .env file and TOKENSALE_*
environment variables. The signing key is TOKENSALE_PRIVATE_KEY (or
DEPLOYER_PRIVATE_KEY) or a keychain entry added with 'tokensale key import'.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}
		var err error
		cfg, err = config.Load(cfgDir, envFile)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		if rpcOverride != "" {
			cfg.RPCURL = rpcOverride
		}
		level := cfg.LogLevel
		if cmd.Flags().Changed("log-level") {
			level = logLevel
		}
		logger, err = logging.New(level, cmd.ErrOrStderr())
		return err
	},
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if logger != nil {
			logger.Error("command failed", "err", err)
		} else {
			fmt.Fprintln(os.Stderr, ui.Err(err.Error()))
		}
		os.Exit(1)
	}
}

func init() {
	// TOKENSALE_CONFIG_DIR overrides the --config default.
	if envDir := os.Getenv("TOKENSALE_CONFIG_DIR"); envDir != "" {
		cfgDir = envDir
	}

	rootCmd.PersistentFlags().StringVar(&cfgDir, "config", cfgDir, "config directory (default: ~/.tokensale)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "load variables from this file instead of ./.env")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "debug, info, warn or error")
	rootCmd.PersistentFlags().StringVar(&rpcOverride, "rpc-url", "", "JSON-RPC endpoint (overrides rpc_url)")

	rootCmd.AddCommand(
		deployCmd,
		mintCmd,
		transferCmd,
		approveCmd,
		grantRoleCmd,
		infoCmd,
		saleCmd,
		keyCmd,
	)
}
