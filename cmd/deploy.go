package cmd

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/Mohsinsiddi/tokensale/internal/chain"
	"github.com/Mohsinsiddi/tokensale/internal/config"
	"github.com/Mohsinsiddi/tokensale/internal/contract"
	"github.com/Mohsinsiddi/tokensale/internal/ui"
	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
)

var (
	deployTokenAddr string
	deployNFTAddr   string
	deployNoSave    bool
)

var deployCmd = &cobra.Command{
	Use:   "deploy [token|nft|sale|all] [ratio] [price]",
	Short: "Deploy MyToken, MyNFT, TokenSale or all three",
	Long: `Deploy contracts from their compiled artifacts (artifacts_dir).

Each deployment logs the chain head and deployer balance, waits for the
receipt, reports gas and stores the new address in config.json so later
commands find it.

  tokensale deploy token
  tokensale deploy nft
  tokensale deploy sale 100 10     (ratio, NFT price; uses stored token/nft)
  tokensale deploy all [ratio] [price]

'deploy all' also grants MINTER_ROLE on the token and the NFT to the sale.
Without an argument an interactive picker is shown.`,
	Args: cobra.MaximumNArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			kind, err := pickDeployKind()
			if err != nil || kind == "" {
				return err
			}
			args = []string{kind}
		}
		kind, rest := args[0], args[1:]

		if (kind == config.KindToken || kind == config.KindNFT) && len(rest) > 0 {
			return fmt.Errorf("deploy %s takes no arguments", kind)
		}
		ratio, price, err := saleParams(rest)
		if err != nil {
			return err
		}

		s, err := openSession(cmd, "Deploy", true)
		if err != nil {
			return err
		}
		defer s.Close()
		if err := s.preamble("deployer", s.writer.From()); err != nil {
			return err
		}

		before := cfg.Contracts
		switch kind {
		case config.KindToken, config.KindNFT:
			_, _, err = deployKind(s, kind)
		case config.KindSale:
			var token, nft common.Address
			if token, err = contractAddress(config.KindToken, deployTokenAddr); err != nil {
				return err
			}
			if nft, err = contractAddress(config.KindNFT, deployNFTAddr); err != nil {
				return err
			}
			_, _, err = deployKind(s, config.KindSale, ratio, price, token, nft)
		case "all":
			err = deployAll(s, ratio, price)
		default:
			return fmt.Errorf("unknown contract %q (want token, nft, sale or all)", kind)
		}
		if deployNoSave || cfg.Contracts == before {
			return err
		}
		// addresses recorded before a failed step are kept too
		if saveErr := cfg.Save(); saveErr != nil {
			return errors.Join(err, fmt.Errorf("saving contract addresses: %w", saveErr))
		}
		s.log.Debug("addresses saved", "dir", cfg.Dir())
		return err
	},
}

func init() {
	deployCmd.Flags().StringVar(&deployTokenAddr, "token", "", "MyToken address for 'deploy sale' (default: contracts.token)")
	deployCmd.Flags().StringVar(&deployNFTAddr, "nft", "", "MyNFT address for 'deploy sale' (default: contracts.nft)")
	deployCmd.Flags().BoolVar(&deployNoSave, "no-save", false, "do not store deployed addresses in config.json")
}

// saleParams reads the optional ratio and price arguments.
func saleParams(args []string) (ratio, price *big.Int, err error) {
	ratio, price = big.NewInt(config.DefaultRatio), big.NewInt(config.DefaultPrice)
	if len(args) > 0 {
		if ratio, err = parseUint("ratio", args[0]); err != nil {
			return nil, nil, err
		}
		if ratio.Sign() == 0 {
			return nil, nil, fmt.Errorf("ratio must be positive")
		}
	}
	if len(args) > 1 {
		if price, err = parseUint("price", args[1]); err != nil {
			return nil, nil, err
		}
	}
	return ratio, price, nil
}

func pickDeployKind() (string, error) {
	var items []ui.PickerItem
	for _, b := range contract.AllBuiltins() {
		items = append(items, ui.PickerItem{Label: b.Name, SubLabel: b.Description, Value: b.Kind})
	}
	items = append(items, ui.PickerItem{Label: "All", SubLabel: "token, NFT and sale, with minter roles", Value: "all"})
	return ui.PickItem("Deploy which contract?", items)
}

// deployKind deploys the artifact for kind, waits for it and records the
// address in cfg.
func deployKind(s *session, kind string, args ...interface{}) (common.Address, *chain.Receipt, error) {
	b, _ := contract.GetBuiltin(kind)
	path, err := cfg.ArtifactPath(kind)
	if err != nil {
		return common.Address{}, nil, err
	}
	art, err := contract.LoadArtifact(path)
	if err != nil {
		return common.Address{}, nil, err
	}

	s.log.Info("deploying contract", "contract", b.Name)
	hash, addr, err := contract.Deploy(s.ctx, s.writer, art, config.GasLimitDeploy, args...)
	if err != nil {
		return common.Address{}, nil, fmt.Errorf("deploying %s: %w", b.Name, err)
	}
	rc, err := s.transact("Deploying "+b.Name, func() (*chain.Receipt, error) {
		return s.writer.WaitForReceipt(s.ctx, hash)
	})
	if err != nil {
		return common.Address{}, rc, fmt.Errorf("deploying %s: %w", b.Name, err)
	}
	if rc.ContractAddress != (common.Address{}) {
		addr = rc.ContractAddress
	}
	s.log.Info("contract deployed", "contract", b.Name, "address", addr.Hex())
	s.report(b.Name+" deployed", rc, [2]string{"Address", ui.Addr(addr.Hex())})

	if kind == config.KindToken {
		if supply, err := contract.NewToken(addr, s.reader).TotalSupply(s.ctx); err == nil {
			s.log.Info("total supply", "supply", chain.FormatEther(supply))
		} else {
			s.log.Warn("reading total supply", "err", err)
		}
	}
	if err := cfg.SetContract(kind, addr.Hex()); err != nil {
		return common.Address{}, rc, err
	}
	return addr, rc, nil
}

// deployAll runs the sale fixture: token, NFT, sale, then MINTER_ROLE on
// both collections for the sale.
func deployAll(s *session, ratio, price *big.Int) error {
	tokenAddr, rcToken, err := deployKind(s, config.KindToken)
	if err != nil {
		return err
	}
	nftAddr, rcNFT, err := deployKind(s, config.KindNFT)
	if err != nil {
		return err
	}
	saleAddr, rcSale, err := deployKind(s, config.KindSale, ratio, price, tokenAddr, nftAddr)
	if err != nil {
		return err
	}

	receipts := []*chain.Receipt{rcToken, rcNFT, rcSale}
	token := contract.NewToken(tokenAddr, s.reader).WithWriter(s.writer)
	nft := contract.NewNFT(nftAddr, s.reader).WithWriter(s.writer)
	for _, h := range []*contract.Handle{token.Handle, nft.Handle} {
		rc, err := grantMinter(s, h, saleAddr)
		if err != nil {
			return err
		}
		receipts = append(receipts, rc)
	}

	s.log.Info("contracts deployed", "sale", saleAddr.Hex(), "token", tokenAddr.Hex(), "nft", nftAddr.Hex())
	tbl := ui.NewTable([]ui.Column{{Title: "Contract", Width: 10}, {Title: "Address", Width: 42}})
	tbl.AddRow(ui.Row{"MyToken", tokenAddr.Hex()})
	tbl.AddRow(ui.Row{"MyNFT", nftAddr.Hex()})
	tbl.AddRow(ui.Row{"TokenSale", saleAddr.Hex()})
	fmt.Fprint(s.out, tbl.Render())
	fmt.Fprintln(s.out, ui.Meta("total gas cost: "+chain.FormatEther(chain.TotalGasCost(receipts...))+" "+s.symbol()))
	return nil
}

// grantMinter grants h's MINTER_ROLE to account unless it already has it.
func grantMinter(s *session, h *contract.Handle, account common.Address) (*chain.Receipt, error) {
	role, err := h.MinterRole(s.ctx)
	if err != nil {
		return nil, err
	}
	if want := contract.RoleID(config.MinterRole); role != want {
		s.log.Warn("unexpected MINTER_ROLE code", "got", role.Hex(), "want", want.Hex())
	}
	has, err := h.HasRole(s.ctx, role, account)
	if err != nil {
		return nil, err
	}
	if has {
		s.log.Info("role already granted", "role", config.MinterRole, "account", account.Hex())
		return nil, nil
	}
	rc, err := s.transact("Granting "+config.MinterRole, func() (*chain.Receipt, error) {
		return h.GrantRole(s.ctx, role, account)
	})
	if err != nil {
		return rc, fmt.Errorf("granting %s on %s: %w", config.MinterRole, h.Address.Hex(), err)
	}
	s.report(config.MinterRole+" granted", rc, [2]string{"Contract", h.Address.Hex()}, [2]string{"Account", account.Hex()})
	return rc, nil
}
