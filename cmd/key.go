package cmd

import (
	"bufio"
	"fmt"

	"github.com/Mohsinsiddi/tokensale/internal/ui"
	"github.com/Mohsinsiddi/tokensale/internal/wallet"
	"github.com/spf13/cobra"
)

var (
	keyDefault bool
	keyYes     bool
)

var keyCmd = &cobra.Command{
	Use:   "key",
	Short: "Store the signing key in the OS keychain",
	Long: `Keep the deployer key in the OS keychain instead of a .env file.

  tokensale key import deployer --default   (reads the hex key from stdin)
  tokensale key address deployer
  tokensale key list
  tokensale key delete deployer

TOKENSALE_PRIVATE_KEY, when set, still takes precedence.`,
}

var keyImportCmd = &cobra.Command{
	Use:   "import <name>",
	Short: "Read a hex private key from stdin and store it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		fmt.Fprint(cmd.ErrOrStderr(), "Private key (hex): ")
		line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		if err != nil && line == "" {
			return fmt.Errorf("reading key: %w", err)
		}
		signer, err := wallet.NewSigner(line)
		if err != nil {
			return err
		}
		ks, err := openKeystore()
		if err != nil {
			return err
		}
		if err := ks.Store(name, line); err != nil {
			return err
		}
		if keyDefault {
			cfg.KeyName = name
			if err := cfg.Save(); err != nil {
				return err
			}
		}
		logger.Info("key stored", "name", name, "address", signer.Address().Hex(), "default", keyDefault)
		fmt.Fprintln(cmd.OutOrStdout(), ui.Success(fmt.Sprintf("stored %q (%s)", name, signer.Address().Hex())))
		return nil
	},
}

var keyAddressCmd = &cobra.Command{
	Use:   "address [name]",
	Short: "Print the address of a stored key (default: the configured signer)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var (
			signer *wallet.Signer
			err    error
		)
		if len(args) == 0 {
			signer, err = resolveSigner()
		} else {
			var ks *wallet.Keystore
			if ks, err = openKeystore(); err == nil {
				signer, err = storedSigner(ks, args[0])
			}
		}
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), signer.Address().Hex())
		return nil
	},
}

var keyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored keys",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ks, err := openKeystore()
		if err != nil {
			return err
		}
		names, err := ks.Names()
		if err != nil {
			return err
		}
		tbl := ui.NewTable([]ui.Column{{Title: "Name"}, {Title: "Address", Width: 42}, {Title: "Default", Width: 7}})
		for _, name := range names {
			addr := "?"
			if s, err := storedSigner(ks, name); err == nil {
				addr = s.Address().Hex()
			}
			def := ""
			if name == cfg.KeyName {
				def = "*"
			}
			tbl.AddRow(ui.Row{name, addr, def})
		}
		fmt.Fprint(cmd.OutOrStdout(), tbl.Render())
		return nil
	},
}

var keyDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Remove a stored key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		if !keyYes && !ui.ConfirmDanger(cmd.InOrStdin(), cmd.ErrOrStderr(), fmt.Sprintf("Delete key %q?", name)) {
			return fmt.Errorf("aborted")
		}
		ks, err := openKeystore()
		if err != nil {
			return err
		}
		if err := ks.Delete(name); err != nil {
			return err
		}
		if cfg.KeyName == name {
			cfg.KeyName = ""
			if err := cfg.Save(); err != nil {
				return err
			}
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.Success("deleted "+name))
		return nil
	},
}

func storedSigner(ks *wallet.Keystore, name string) (*wallet.Signer, error) {
	hexKey, err := ks.Retrieve(name)
	if err != nil {
		return nil, err
	}
	return wallet.NewSigner(hexKey)
}

func init() {
	keyImportCmd.Flags().BoolVar(&keyDefault, "default", false, "use this key as the signer (sets key_name)")
	keyDeleteCmd.Flags().BoolVarP(&keyYes, "yes", "y", false, "do not ask for confirmation")
	keyCmd.AddCommand(keyImportCmd, keyAddressCmd, keyListCmd, keyDeleteCmd)
}
