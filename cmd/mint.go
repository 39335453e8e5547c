package cmd

import (
	"fmt"

	"github.com/Mohsinsiddi/tokensale/internal/chain"
	"github.com/Mohsinsiddi/tokensale/internal/config"
	"github.com/Mohsinsiddi/tokensale/internal/contract"
	"github.com/Mohsinsiddi/tokensale/internal/ui"
	"github.com/Mohsinsiddi/tokensale/internal/validate"
	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
)

var (
	mintToken string
	mintGrant bool
	mintAs    string
)

var mintCmd = &cobra.Command{
	Use:   "mint <target> [amount]",
	Short: "Mint MyToken to an address (needs MINTER_ROLE)",
	Long: `Mint amount tokens (default 10) to target.

The write is simulated first, so a signer without MINTER_ROLE fails before
any gas is spent. --grant grants MINTER_ROLE to the signer beforehand;
--as simulates from another account to check its permissions.

  tokensale mint 0x70997970C51812dc3A010C7d01b50e0d17dc79C8 2.5`,
	Args: cobra.MaximumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := validate.CheckParameters(args, 2, "You must at least provide the target address."); err != nil {
			return err
		}
		amountArg := config.DefaultMintAmount
		if len(args) > 1 {
			amountArg = args[1]
		}
		amount, err := parseTokens(amountArg)
		if err != nil {
			return err
		}
		target, err := parseAddress("target", args[0])
		if err != nil {
			return err
		}

		s, err := openSession(cmd, "Mint", true)
		if err != nil {
			return err
		}
		defer s.Close()
		token, err := s.token(mintToken)
		if err != nil {
			return err
		}
		from := s.writer.From()
		s.log.Info("contract", "address", token.Address.Hex(), "targetAddress", target.Hex())
		if err := s.preamble("deployer", from); err != nil {
			return err
		}

		role, err := token.MinterRole(s.ctx)
		if err != nil {
			return err
		}
		s.log.Info(config.MinterRole, "code", role.Hex())
		if mintGrant {
			if _, err := grantMinter(s, token.Handle, from); err != nil {
				return err
			}
		}

		simFrom := from
		if mintAs != "" {
			if simFrom, err = parseAddress("simulation", mintAs); err != nil {
				return err
			}
		}
		if err := token.SimulateMint(s.ctx, simFrom, target, amount); err != nil {
			return fmt.Errorf("simulate(mint) as %s: %w", simFrom.Hex(), err)
		}
		s.log.Info("simulate(mint) ok", "from", simFrom.Hex(), "amount", chain.FormatEther(amount))

		rc, err := s.transact("Minting", func() (*chain.Receipt, error) {
			return token.Mint(s.ctx, target, amount)
		})
		if rc != nil {
			s.report("Mint", rc)
		}
		if err != nil {
			s.log.Error("transaction failed")
			return err
		}
		s.log.Info("transaction succeeded")

		return printTokenState(s, token, target)
	},
}

func init() {
	mintCmd.Flags().StringVar(&mintToken, "token", "", "MyToken address (default: contracts.token)")
	mintCmd.Flags().BoolVar(&mintGrant, "grant", false, "grant MINTER_ROLE to the signer before minting")
	mintCmd.Flags().StringVar(&mintAs, "as", "", "simulate the mint from this address instead of the signer")
}

// printTokenState reads the token metadata batch and account's balance.
func printTokenState(s *session, token *contract.Token, account common.Address) error {
	md, err := token.Metadata(s.ctx)
	if err != nil {
		return err
	}
	s.log.Info("token data", "name", md.Name, "symbol", md.Symbol, "decimals", md.Decimals, "totalSupply", md.TotalSupply)

	bal, err := token.BalanceOf(s.ctx, account)
	if err != nil {
		return err
	}
	fmt.Fprintln(s.out, ui.KeyValueBlock(md.Name, [][2]string{
		{"Symbol", md.Symbol},
		{"Decimals", fmt.Sprint(md.Decimals)},
		{"Total supply", chain.FormatUnits(md.TotalSupply, int(md.Decimals)) + " " + md.Symbol},
		{"Account", account.Hex()},
		{"Balance", chain.FormatUnits(bal, int(md.Decimals)) + " " + md.Symbol},
		{"Balance (base units)", bal.String()},
	}))
	return nil
}
