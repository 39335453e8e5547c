package contract

import (
	"context"
	"fmt"
	"math/big"

	"github.com/Mohsinsiddi/tokensale/internal/chain"
	"github.com/Mohsinsiddi/tokensale/internal/config"
	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/sync/errgroup"
)

// Token wraps a deployed MyToken.
type Token struct {
	*Handle
}

// NewToken binds the embedded MyToken ABI to address.
func NewToken(address common.Address, r *chain.Reader) *Token {
	b, _ := GetBuiltin(KindToken)
	return &Token{Handle: NewHandle(address, b.ABI, r)}
}

// WithWriter returns a copy of t that can send transactions.
func (t *Token) WithWriter(w *chain.Writer) *Token {
	return &Token{Handle: t.Handle.WithWriter(w)}
}

func (t *Token) Name(ctx context.Context) (string, error) {
	return asString(t.Read(ctx, "name"))
}

func (t *Token) Symbol(ctx context.Context) (string, error) {
	return asString(t.Read(ctx, "symbol"))
}

func (t *Token) Decimals(ctx context.Context) (uint8, error) {
	v, err := one(t.Read(ctx, "decimals"))
	if err != nil {
		return 0, err
	}
	d, ok := v.(uint8)
	if !ok {
		return 0, fmt.Errorf("unexpected decimals type %T", v)
	}
	return d, nil
}

func (t *Token) TotalSupply(ctx context.Context) (*big.Int, error) {
	return asBig(t.Read(ctx, "totalSupply"))
}

func (t *Token) BalanceOf(ctx context.Context, account common.Address) (*big.Int, error) {
	return asBig(t.Read(ctx, "balanceOf", account))
}

func (t *Token) Allowance(ctx context.Context, owner, spender common.Address) (*big.Int, error) {
	return asBig(t.Read(ctx, "allowance", owner, spender))
}

// Metadata is the token's descriptive state.
type Metadata struct {
	Name        string
	Symbol      string
	Decimals    uint8
	TotalSupply *big.Int
}

// Metadata reads name, symbol, decimals and totalSupply concurrently. The
// group has no shared context, so one failing read does not cancel the
// others; the first error is returned once all have finished.
func (t *Token) Metadata(ctx context.Context) (*Metadata, error) {
	var (
		md Metadata
		g  errgroup.Group
	)
	g.Go(func() (err error) { md.Name, err = t.Name(ctx); return })
	g.Go(func() (err error) { md.Symbol, err = t.Symbol(ctx); return })
	g.Go(func() (err error) { md.Decimals, err = t.Decimals(ctx); return })
	g.Go(func() (err error) { md.TotalSupply, err = t.TotalSupply(ctx); return })
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &md, nil
}

// SimulateMint checks that from may mint amount to target.
func (t *Token) SimulateMint(ctx context.Context, from, target common.Address, amount *big.Int) error {
	_, err := t.Simulate(ctx, from, nil, "mint", target, amount)
	return err
}

func (t *Token) Mint(ctx context.Context, target common.Address, amount *big.Int) (*chain.Receipt, error) {
	return t.Transact(ctx, TxOpts{GasFallback: config.GasLimitERC20Mint}, "mint", target, amount)
}

func (t *Token) Transfer(ctx context.Context, to common.Address, amount *big.Int) (*chain.Receipt, error) {
	return t.Transact(ctx, TxOpts{GasFallback: config.GasLimitERC20Transfer}, "transfer", to, amount)
}

func (t *Token) Approve(ctx context.Context, spender common.Address, amount *big.Int) (*chain.Receipt, error) {
	return t.Transact(ctx, TxOpts{GasFallback: config.GasLimitERC20Transfer}, "approve", spender, amount)
}
