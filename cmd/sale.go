package cmd

import (
	"fmt"
	"math/big"

	"github.com/Mohsinsiddi/tokensale/internal/chain"
	"github.com/Mohsinsiddi/tokensale/internal/contract"
	"github.com/Mohsinsiddi/tokensale/internal/sale"
	"github.com/Mohsinsiddi/tokensale/internal/ui"
	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
)

var saleAddrFlag string

var saleCmd = &cobra.Command{
	Use:   "sale",
	Short: "Buy and return tokens and NFTs through TokenSale",
	Long: `Interact with the TokenSale contract. Every write is followed by a
balance check: the command fails if the observed change differs from what
the sale rules predict.

  tokensale sale info
  tokensale sale buy 0.01           (ETH)
  tokensale sale return 1           (tokens)
  tokensale sale buy-nft 0
  tokensale sale return-nft 0
  tokensale sale withdraw 5         (tokens, owner only)`,
}

// saleSet is a TokenSale plus the token and NFT it was deployed with.
type saleSet struct {
	sale  *contract.Sale
	token *contract.Token
	nft   *contract.NFT
}

// openSale resolves the sale and reads its token and NFT addresses from it.
func openSale(s *session) (*saleSet, error) {
	sl, err := s.sale(saleAddrFlag)
	if err != nil {
		return nil, err
	}
	tokenAddr, err := sl.Token(s.ctx)
	if err != nil {
		return nil, err
	}
	nftAddr, err := sl.NFT(s.ctx)
	if err != nil {
		return nil, err
	}
	set := &saleSet{
		sale:  sl,
		token: contract.NewToken(tokenAddr, s.reader),
		nft:   contract.NewNFT(nftAddr, s.reader),
	}
	if s.writer != nil {
		set.token = set.token.WithWriter(s.writer)
		set.nft = set.nft.WithWriter(s.writer)
	}
	return set, nil
}

// balances is a snapshot of the signer's ETH and token balances.
type balances struct {
	eth, tokens *big.Int
}

func snapshot(s *session, set *saleSet) (balances, error) {
	from := s.writer.From()
	eth, err := s.reader.Balance(s.ctx, from)
	if err != nil {
		return balances{}, err
	}
	tokens, err := set.token.BalanceOf(s.ctx, from)
	if err != nil {
		return balances{}, err
	}
	return balances{eth: eth, tokens: tokens}, nil
}

// runSale opens a signing session and the sale for a sale subcommand.
func runSale(cmd *cobra.Command, script string, fn func(*session, *saleSet) error) error {
	s, err := openSession(cmd, script, true)
	if err != nil {
		return err
	}
	defer s.Close()
	if err := s.preamble("signer", s.writer.From()); err != nil {
		return err
	}
	set, err := openSale(s)
	if err != nil {
		return err
	}
	return fn(s, set)
}

// nftMoved checks that rc carries the MyNFT Transfer of id from from to to.
// Mints come from the zero address and burns go to it.
func nftMoved(s *session, set *saleSet, rc *chain.Receipt, id *big.Int, from, to common.Address) error {
	events, err := contract.DecodeNFTTransfers(set.nft.Address, rc.Logs)
	if err != nil {
		return err
	}
	for _, ev := range events {
		s.log.Info("NFT Transfer event", "from", ev.From.Hex(), "to", ev.To.Hex(), "tokenId", ev.TokenID)
		if ev.TokenID.Cmp(id) == 0 && ev.From == from && ev.To == to {
			return nil
		}
	}
	return fmt.Errorf("no Transfer of NFT %s from %s to %s in %d events: %w",
		id, from.Hex(), to.Hex(), len(events), sale.ErrMismatch)
}

func verified(s *session, err error) error {
	if err != nil {
		fmt.Fprintln(s.out, ui.Err(err.Error()))
		return err
	}
	fmt.Fprintln(s.out, ui.Success("balances match the sale rules"))
	return nil
}

// ── sale info ─────────────────────────────────────────────────────────────────

var saleInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show ratio, price, linked contracts and pools",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd, "TokenSale", false)
		if err != nil {
			return err
		}
		defer s.Close()
		set, err := openSale(s)
		if err != nil {
			return err
		}
		ratio, price, err := set.sale.Config(s.ctx)
		if err != nil {
			return err
		}
		owner, err := set.sale.Owner(s.ctx)
		if err != nil {
			return err
		}
		ownerPool, err := set.sale.OwnerPool(s.ctx)
		if err != nil {
			return err
		}
		publicPool, err := set.sale.PublicPool(s.ctx)
		if err != nil {
			return err
		}
		nftSymbol, err := set.nft.Symbol(s.ctx)
		if err != nil {
			return err
		}
		md, err := set.token.Metadata(s.ctx)
		if err != nil {
			return err
		}
		s.log.Info("sale", "ratio", ratio, "price", price, "token", set.token.Address.Hex(), "nft", set.nft.Address.Hex())

		fmt.Fprintln(s.out, ui.KeyValueBlock("TokenSale "+set.sale.Address.Hex(), [][2]string{
			{"Ratio", ratio.String() + " " + md.Symbol + " units per wei"},
			{"NFT price", price.String() + " " + md.Symbol + " units"},
			{"Owner", owner.Hex()},
			{"Token", set.token.Address.Hex() + " (" + md.Name + ")"},
			{"Token supply", chain.FormatUnits(md.TotalSupply, int(md.Decimals)) + " " + md.Symbol},
			{"NFT", set.nft.Address.Hex() + " (" + nftSymbol + ")"},
			{"Owner pool", ownerPool.String()},
			{"Public pool", publicPool.String()},
		}))
		return nil
	},
}

// ── sale buy ──────────────────────────────────────────────────────────────────

var saleBuyCmd = &cobra.Command{
	Use:   "buy <eth>",
	Short: "Buy tokens with ETH (tokens = wei * ratio)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		value, err := parseTokens(args[0])
		if err != nil {
			return err
		}
		return runSale(cmd, "TokenSale -> buyTokens", func(s *session, set *saleSet) error {
			ratio, err := set.sale.Ratio(s.ctx)
			if err != nil {
				return err
			}
			before, err := snapshot(s, set)
			if err != nil {
				return err
			}
			rc, err := s.transact("Buying tokens", func() (*chain.Receipt, error) {
				return set.sale.BuyTokens(s.ctx, value)
			})
			if err != nil {
				return err
			}
			after, err := snapshot(s, set)
			if err != nil {
				return err
			}
			gained := sale.Delta(before.tokens, after.tokens)
			s.report("Buy tokens", rc,
				[2]string{"Paid", chain.FormatEther(value) + " " + s.symbol()},
				[2]string{"Tokens received", chain.FormatEther(gained)})
			return verified(s, sale.VerifyBuy(value, ratio, rc.GasCost(), before.tokens, after.tokens, before.eth, after.eth))
		})
	},
}

// ── sale return ───────────────────────────────────────────────────────────────

var saleReturnCmd = &cobra.Command{
	Use:   "return <tokens>",
	Short: "Approve and return tokens for ETH (wei = tokens / ratio)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		amount, err := parseTokens(args[0])
		if err != nil {
			return err
		}
		return runSale(cmd, "TokenSale -> returnTokens", func(s *session, set *saleSet) error {
			ratio, err := set.sale.Ratio(s.ctx)
			if err != nil {
				return err
			}
			before, err := snapshot(s, set)
			if err != nil {
				return err
			}
			rcApprove, err := s.transact("Approving", func() (*chain.Receipt, error) {
				return set.token.Approve(s.ctx, set.sale.Address, amount)
			})
			if err != nil {
				return err
			}
			rc, err := s.transact("Returning tokens", func() (*chain.Receipt, error) {
				return set.sale.ReturnTokens(s.ctx, amount)
			})
			if err != nil {
				return err
			}
			after, err := snapshot(s, set)
			if err != nil {
				return err
			}
			gas := chain.TotalGasCost(rcApprove, rc)
			s.report("Return tokens", rc,
				[2]string{"Returned", chain.FormatEther(amount)},
				[2]string{"Gas incl. approve", chain.FormatEther(gas) + " " + s.symbol()})
			return verified(s, sale.VerifyReturn(amount, ratio, gas, before.tokens, after.tokens, before.eth, after.eth))
		})
	},
}

// ── sale buy-nft ──────────────────────────────────────────────────────────────

var saleBuyNFTCmd = &cobra.Command{
	Use:   "buy-nft <tokenId>",
	Short: "Approve the price and buy an NFT",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseUint("token ID", args[0])
		if err != nil {
			return err
		}
		return runSale(cmd, "TokenSale -> buyNFT", func(s *session, set *saleSet) error {
			price, err := set.sale.Price(s.ctx)
			if err != nil {
				return err
			}
			before, err := snapshot(s, set)
			if err != nil {
				return err
			}
			if _, err := s.transact("Approving", func() (*chain.Receipt, error) {
				return set.token.Approve(s.ctx, set.sale.Address, price)
			}); err != nil {
				return err
			}
			rc, err := s.transact("Buying NFT", func() (*chain.Receipt, error) {
				return set.sale.BuyNFT(s.ctx, id)
			})
			if err != nil {
				return err
			}
			after, err := snapshot(s, set)
			if err != nil {
				return err
			}
			owner, err := set.nft.OwnerOf(s.ctx, id)
			if err != nil {
				return err
			}
			s.report("Buy NFT", rc,
				[2]string{"Token ID", id.String()},
				[2]string{"Owner", owner.Hex()},
				[2]string{"Price", price.String()})
			err = sale.VerifyBuyNFT(price, before.tokens, after.tokens, s.writer.From(), owner)
			if err == nil {
				err = nftMoved(s, set, rc, id, common.Address{}, s.writer.From())
			}
			return verified(s, err)
		})
	},
}

// ── sale return-nft ───────────────────────────────────────────────────────────

var saleReturnNFTCmd = &cobra.Command{
	Use:   "return-nft <tokenId>",
	Short: "Approve and return an NFT for half its price",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseUint("token ID", args[0])
		if err != nil {
			return err
		}
		return runSale(cmd, "TokenSale -> returnNFT", func(s *session, set *saleSet) error {
			price, err := set.sale.Price(s.ctx)
			if err != nil {
				return err
			}
			before, err := snapshot(s, set)
			if err != nil {
				return err
			}
			if _, err := s.transact("Approving", func() (*chain.Receipt, error) {
				return set.nft.Approve(s.ctx, set.sale.Address, id)
			}); err != nil {
				return err
			}
			rc, err := s.transact("Returning NFT", func() (*chain.Receipt, error) {
				return set.sale.ReturnNFT(s.ctx, id)
			})
			if err != nil {
				return err
			}
			after, err := snapshot(s, set)
			if err != nil {
				return err
			}
			s.report("Return NFT", rc,
				[2]string{"Token ID", id.String()},
				[2]string{"Refund", sale.Delta(before.tokens, after.tokens).String()})
			err = sale.VerifyReturnNFT(price, before.tokens, after.tokens)
			if err == nil {
				err = nftMoved(s, set, rc, id, s.writer.From(), common.Address{})
			}
			return verified(s, err)
		})
	},
}

// ── sale withdraw ─────────────────────────────────────────────────────────────

var saleWithdrawCmd = &cobra.Command{
	Use:   "withdraw <amount>",
	Short: "Withdraw collected tokens from the owner pool (owner only)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		amount, err := parseUint("amount", args[0])
		if err != nil {
			return err
		}
		return runSale(cmd, "TokenSale -> withdraw", func(s *session, set *saleSet) error {
			available, err := set.sale.OwnerPool(s.ctx)
			if err != nil {
				return err
			}
			if amount.Cmp(available) > 0 {
				s.log.Warn("amount exceeds owner pool", "requested", amount, "available", available)
				fmt.Fprintln(s.out, ui.Warn("only "+available.String()+" can be withdrawn"))
			}
			before, err := snapshot(s, set)
			if err != nil {
				return err
			}
			rc, err := s.transact("Withdrawing", func() (*chain.Receipt, error) {
				return set.sale.Withdraw(s.ctx, amount)
			})
			if err != nil {
				return err
			}
			after, err := snapshot(s, set)
			if err != nil {
				return err
			}
			s.report("Withdraw", rc,
				[2]string{"Requested", amount.String()},
				[2]string{"Received", sale.Delta(before.tokens, after.tokens).String()})
			return verified(s, sale.VerifyWithdraw(amount, available, before.tokens, after.tokens))
		})
	},
}

func init() {
	saleCmd.PersistentFlags().StringVar(&saleAddrFlag, "sale", "", "TokenSale address (default: contracts.sale)")
	saleCmd.AddCommand(saleInfoCmd, saleBuyCmd, saleReturnCmd, saleBuyNFTCmd, saleReturnNFTCmd, saleWithdrawCmd)
}
