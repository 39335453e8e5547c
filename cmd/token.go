package cmd

import (
	"fmt"

	"github.com/Mohsinsiddi/tokensale/internal/chain"
	"github.com/Mohsinsiddi/tokensale/internal/config"
	"github.com/Mohsinsiddi/tokensale/internal/contract"
	"github.com/Mohsinsiddi/tokensale/internal/ui"
	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
)

var tokenAddrFlag string

// ── transfer ──────────────────────────────────────────────────────────────────

var transferCmd = &cobra.Command{
	Use:   "transfer <to> <amount>",
	Short: "Transfer MyToken and show the emitted Transfer events",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		to, err := parseAddress("recipient", args[0])
		if err != nil {
			return err
		}
		amount, err := parseTokens(args[1])
		if err != nil {
			return err
		}

		s, err := openSession(cmd, "Transfer", true)
		if err != nil {
			return err
		}
		defer s.Close()
		token, err := s.token(tokenAddrFlag)
		if err != nil {
			return err
		}
		if err := s.preamble("sender", s.writer.From()); err != nil {
			return err
		}

		rc, err := s.transact("Transferring", func() (*chain.Receipt, error) {
			return token.Transfer(s.ctx, to, amount)
		})
		if err != nil {
			return err
		}
		s.report("Transfer", rc)

		events, err := contract.DecodeTransfers(token.Address, rc.Logs)
		if err != nil {
			return err
		}
		tbl := ui.NewTable([]ui.Column{{Title: "From", Width: 42}, {Title: "To", Width: 42}, {Title: "Value", Width: 24}})
		for _, ev := range events {
			s.log.Info("Transfer event", "from", ev.From.Hex(), "to", ev.To.Hex(), "value", ev.Value)
			tbl.AddRow(ui.Row{ev.From.Hex(), ev.To.Hex(), chain.FormatEther(ev.Value)})
		}
		fmt.Fprint(s.out, tbl.Render())
		if len(events) != 1 {
			return fmt.Errorf("expected exactly one Transfer event, got %d", len(events))
		}
		return nil
	},
}

// ── approve ───────────────────────────────────────────────────────────────────

var approveCmd = &cobra.Command{
	Use:   "approve <spender> <amount>",
	Short: "Approve a spender (e.g. the sale) for MyToken",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		spender, err := parseAddress("spender", args[0])
		if err != nil {
			return err
		}
		amount, err := parseTokens(args[1])
		if err != nil {
			return err
		}

		s, err := openSession(cmd, "Approve", true)
		if err != nil {
			return err
		}
		defer s.Close()
		token, err := s.token(tokenAddrFlag)
		if err != nil {
			return err
		}
		if err := s.preamble("owner", s.writer.From()); err != nil {
			return err
		}
		rc, err := s.transact("Approving", func() (*chain.Receipt, error) {
			return token.Approve(s.ctx, spender, amount)
		})
		if err != nil {
			return err
		}
		s.report("Approve", rc, [2]string{"Spender", spender.Hex()}, [2]string{"Amount", chain.FormatEther(amount)})

		allowance, err := token.Allowance(s.ctx, s.writer.From(), spender)
		if err != nil {
			return err
		}
		s.log.Info("allowance", "spender", spender.Hex(), "amount", chain.FormatEther(allowance))
		return nil
	},
}

// ── grant-role ────────────────────────────────────────────────────────────────

var grantRoleCmd = &cobra.Command{
	Use:   "grant-role <account> [role]",
	Short: "Grant a MyToken role (default MINTER_ROLE)",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		account, err := parseAddress("account", args[0])
		if err != nil {
			return err
		}
		roleName := config.MinterRole
		if len(args) > 1 {
			roleName = args[1]
		}

		s, err := openSession(cmd, "GrantRole", true)
		if err != nil {
			return err
		}
		defer s.Close()
		token, err := s.token(tokenAddrFlag)
		if err != nil {
			return err
		}
		if err := s.preamble("deployer", s.writer.From()); err != nil {
			return err
		}

		var role contract.Role
		if roleName == contract.DefaultAdminRole {
			role = contract.RoleID(roleName)
		} else if role, err = token.Role(s.ctx, roleName); err != nil {
			return err
		}
		s.log.Info(roleName, "code", role.Hex())

		has, err := token.HasRole(s.ctx, role, account)
		if err != nil {
			return err
		}
		if has {
			fmt.Fprintln(s.out, ui.Success(fmt.Sprintf("%s already has %s", account.Hex(), roleName)))
			return nil
		}
		rc, err := s.transact("Granting "+roleName, func() (*chain.Receipt, error) {
			return token.GrantRole(s.ctx, role, account)
		})
		if err != nil {
			return err
		}
		s.report(roleName+" granted", rc, [2]string{"Account", account.Hex()})
		return nil
	},
}

// ── info ──────────────────────────────────────────────────────────────────────

var infoCmd = &cobra.Command{
	Use:   "info [address]",
	Short: "Show chain head, ETH balance, token metadata and roles for an address",
	Long: `Show the chain head, the ETH balance of address (default: the signer),
the MyToken metadata, the address' token balance and whether it holds
MINTER_ROLE. Read-only.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var (
			account common.Address
			err     error
		)
		if len(args) > 0 {
			if account, err = parseAddress("account", args[0]); err != nil {
				return err
			}
		} else {
			signer, err := resolveSigner()
			if err != nil {
				return err
			}
			account = signer.Address()
		}

		s, err := openSession(cmd, "Info", false)
		if err != nil {
			return err
		}
		defer s.Close()
		if err := s.preamble("account", account); err != nil {
			return err
		}
		token, err := s.token(tokenAddrFlag)
		if err != nil {
			return err
		}
		if err := printTokenState(s, token, account); err != nil {
			return err
		}

		role, err := token.MinterRole(s.ctx)
		if err != nil {
			return err
		}
		has, err := token.HasRole(s.ctx, role, account)
		if err != nil {
			return err
		}
		line := ui.Warn(account.Hex() + " does not have " + config.MinterRole)
		if has {
			line = ui.Success(account.Hex() + " has " + config.MinterRole)
		}
		fmt.Fprintln(s.out, line)
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{transferCmd, approveCmd, grantRoleCmd, infoCmd} {
		c.Flags().StringVar(&tokenAddrFlag, "token", "", "MyToken address (default: contracts.token)")
	}
}
