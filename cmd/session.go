package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/big"
	"os"
	"strconv"

	"github.com/Mohsinsiddi/tokensale/internal/chain"
	"github.com/Mohsinsiddi/tokensale/internal/config"
	"github.com/Mohsinsiddi/tokensale/internal/contract"
	"github.com/Mohsinsiddi/tokensale/internal/logging"
	"github.com/Mohsinsiddi/tokensale/internal/ui"
	"github.com/Mohsinsiddi/tokensale/internal/validate"
	"github.com/Mohsinsiddi/tokensale/internal/wallet"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

// openKeystore is swapped out in tests.
var openKeystore = func() (*wallet.Keystore, error) {
	return wallet.DefaultKeystore(cfg.Dir())
}

// session is the connection state of one command run. Every command is a
// sequential chain of calls on it; nothing is retried.
type session struct {
	ctx    context.Context
	cancel context.CancelFunc
	log    *slog.Logger
	out    io.Writer
	errOut io.Writer

	reader  *chain.Reader
	writer  *chain.Writer // nil for read-only commands
	chainID int64
}

// openSession dials rpc_url. With signing set it also resolves the signer
// and binds it to the connection.
func openSession(cmd *cobra.Command, script string, signing bool) (*session, error) {
	ctx, cancel := context.Background(), context.CancelFunc(func() {})
	if cfg.ConfirmTimeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, cfg.ConfirmTimeout)
	}
	s := &session{
		ctx:    ctx,
		cancel: cancel,
		log:    logging.Script(logger, script),
		out:    cmd.OutOrStdout(),
		errOut: cmd.ErrOrStderr(),
	}

	dialCtx, dialCancel := context.WithTimeout(ctx, config.DialTimeout)
	defer dialCancel()
	r, err := chain.NewReader(dialCtx, cfg.RPCURL)
	if err != nil {
		cancel()
		return nil, err
	}
	r.SetPollInterval(cfg.PollInterval)
	s.reader = r

	if !signing {
		s.chainID = cfg.ChainID
		if s.chainID == 0 {
			id, err := r.ChainID(ctx)
			if err != nil {
				s.Close()
				return nil, err
			}
			s.chainID = id.Int64()
		}
		return s, nil
	}

	signer, err := resolveSigner()
	if err != nil {
		s.Close()
		return nil, err
	}
	w, err := r.WithSigner(ctx, signer, cfg.ChainID)
	if err != nil {
		s.Close()
		return nil, err
	}
	w.OnSend(s.sent)
	s.writer = w
	s.chainID = w.ChainID().Int64()
	return s, nil
}

func resolveSigner() (*wallet.Signer, error) {
	var ks *wallet.Keystore
	if cfg.PrivateKey == "" && cfg.KeyName != "" {
		var err error
		if ks, err = openKeystore(); err != nil {
			return nil, err
		}
	}
	return wallet.ResolveSigner(cfg, ks)
}

// Close releases the connection.
func (s *session) Close() {
	s.reader.Close()
	s.cancel()
}

func (s *session) symbol() string { return chain.Symbol(s.chainID) }

func (s *session) sent(tx *types.Transaction) {
	s.log.Info("transaction hash", "hash", tx.Hash().Hex(), "status", "waiting for confirmations...")
	if n, err := chain.NetworkByChainID(s.chainID); err == nil && n.Explorer != "" {
		s.log.Debug("explorer", "url", n.TxURL(tx.Hash().Hex()))
	}
}

// preamble logs the chain head and the ETH balance of account, the way
// every script starts.
func (s *session) preamble(role string, account common.Address) error {
	head, err := s.reader.BlockNumber(s.ctx)
	if err != nil {
		return err
	}
	s.log.Info("last block number", "block", head)
	bal, err := s.reader.Balance(s.ctx, account)
	if err != nil {
		return err
	}
	s.log.Info(role+" address", "address", account.Hex())
	s.log.Info(role+" balance", "balance", chain.FormatEther(bal), "symbol", s.symbol())
	return nil
}

// transact runs fn, showing a spinner on interactive terminals while the
// receipt is awaited.
func (s *session) transact(msg string, fn func() (*chain.Receipt, error)) (*chain.Receipt, error) {
	if f, ok := s.errOut.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
		spin := ui.NewSpinner(f, msg)
		spin.Start()
		defer spin.Stop()
	}
	return fn()
}

// report logs and prints the gas summary of rc.
func (s *session) report(title string, rc *chain.Receipt, extra ...[2]string) {
	g := rc.Gas()
	s.log.Info("transaction confirmed", "block", rc.BlockNumber)
	s.log.Info("gas", "price", g.Price, "used", g.Used, "totalCost", g.TotalCost)

	status := ui.Success("succeeded")
	if !rc.Succeeded() {
		status = ui.Err("failed")
	}
	pairs := [][2]string{
		{"Transaction", ui.Addr(rc.TxHash.Hex())},
		{"Block", strconv.FormatUint(rc.BlockNumber, 10)},
		{"Status", status},
		{"Gas price", withUnit(g.Price, s.symbol())},
		{"Gas used", g.Used},
		{"Total cost", withUnit(g.TotalCost, s.symbol())},
	}
	fmt.Fprintln(s.out, ui.KeyValueBlock(title, append(pairs, extra...)))
}

func withUnit(v, unit string) string {
	if v == chain.NotAvailable {
		return v
	}
	return v + " " + unit
}

// ── contract handles ──────────────────────────────────────────────────────────

// contractAddress resolves kind's address from the flag value or config.
func contractAddress(kind, flagValue string) (common.Address, error) {
	addr := flagValue
	if addr == "" {
		var err error
		if addr, err = cfg.ContractAddress(kind); err != nil {
			return common.Address{}, err
		}
	}
	if err := validate.CheckAddress("contract", addr); err != nil {
		return common.Address{}, fmt.Errorf("%s: %w (deploy it or set contracts.%s)", kind, err, kind)
	}
	return common.HexToAddress(addr), nil
}

func (s *session) token(flagValue string) (*contract.Token, error) {
	addr, err := contractAddress(config.KindToken, flagValue)
	if err != nil {
		return nil, err
	}
	t := contract.NewToken(addr, s.reader)
	if s.writer != nil {
		t = t.WithWriter(s.writer)
	}
	return t, nil
}

func (s *session) nft(flagValue string) (*contract.NFT, error) {
	addr, err := contractAddress(config.KindNFT, flagValue)
	if err != nil {
		return nil, err
	}
	n := contract.NewNFT(addr, s.reader)
	if s.writer != nil {
		n = n.WithWriter(s.writer)
	}
	return n, nil
}

func (s *session) sale(flagValue string) (*contract.Sale, error) {
	addr, err := contractAddress(config.KindSale, flagValue)
	if err != nil {
		return nil, err
	}
	sl := contract.NewSale(addr, s.reader)
	if s.writer != nil {
		sl = sl.WithWriter(s.writer)
	}
	return sl, nil
}

// ── argument parsing ──────────────────────────────────────────────────────────

func parseAddress(label, s string) (common.Address, error) {
	if err := validate.CheckAddress(label, s); err != nil {
		return common.Address{}, err
	}
	return common.HexToAddress(s), nil
}

// parseTokens reads a decimal token amount ("1.5") as 18-decimal base units.
func parseTokens(s string) (*big.Int, error) {
	v, err := chain.ParseEther(s)
	if err != nil {
		return nil, err
	}
	if v.Sign() <= 0 {
		return nil, fmt.Errorf("amount must be positive, got %s", s)
	}
	return v, nil
}

// parseUint reads a non-negative integer such as a ratio, price or token ID.
func parseUint(label, s string) (*big.Int, error) {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok || v.Sign() < 0 {
		return nil, fmt.Errorf("invalid %s %q", label, s)
	}
	return v, nil
}
