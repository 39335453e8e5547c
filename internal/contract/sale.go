package contract

import (
	"context"
	"math/big"

	"github.com/Mohsinsiddi/tokensale/internal/chain"
	"github.com/Mohsinsiddi/tokensale/internal/config"
	"github.com/ethereum/go-ethereum/common"
)

// Sale wraps a deployed TokenSale.
type Sale struct {
	*Handle
}

// NewSale binds the embedded TokenSale ABI to address.
func NewSale(address common.Address, r *chain.Reader) *Sale {
	b, _ := GetBuiltin(KindSale)
	return &Sale{Handle: NewHandle(address, b.ABI, r)}
}

// WithWriter returns a copy of s that can send transactions.
func (s *Sale) WithWriter(w *chain.Writer) *Sale {
	return &Sale{Handle: s.Handle.WithWriter(w)}
}

// Ratio is the number of token base units sold per wei.
func (s *Sale) Ratio(ctx context.Context) (*big.Int, error) {
	return asBig(s.Read(ctx, "ratio"))
}

// Price is the NFT price in token base units.
func (s *Sale) Price(ctx context.Context) (*big.Int, error) {
	return asBig(s.Read(ctx, "price"))
}

// Token returns the address of the payment token.
func (s *Sale) Token(ctx context.Context) (common.Address, error) {
	return asAddress(s.Read(ctx, "token"))
}

// NFT returns the address of the NFT collection.
func (s *Sale) NFT(ctx context.Context) (common.Address, error) {
	return asAddress(s.Read(ctx, "nft"))
}

func (s *Sale) Owner(ctx context.Context) (common.Address, error) {
	return asAddress(s.Read(ctx, "owner"))
}

// OwnerPool is the amount of tokens the owner may withdraw.
func (s *Sale) OwnerPool(ctx context.Context) (*big.Int, error) {
	return asBig(s.Read(ctx, "ownerPool"))
}

// PublicPool is the amount of tokens reserved for NFT buy-backs.
func (s *Sale) PublicPool(ctx context.Context) (*big.Int, error) {
	return asBig(s.Read(ctx, "publicPool"))
}

// Config reads ratio and price.
func (s *Sale) Config(ctx context.Context) (ratio, price *big.Int, err error) {
	if ratio, err = s.Ratio(ctx); err != nil {
		return nil, nil, err
	}
	if price, err = s.Price(ctx); err != nil {
		return nil, nil, err
	}
	return ratio, price, nil
}

// BuyTokens pays value wei for value*ratio tokens.
func (s *Sale) BuyTokens(ctx context.Context, value *big.Int) (*chain.Receipt, error) {
	return s.Transact(ctx, TxOpts{Value: value, GasFallback: config.GasLimitContractCall}, "buyTokens")
}

// ReturnTokens burns amount tokens (after approval) for amount/ratio wei.
func (s *Sale) ReturnTokens(ctx context.Context, amount *big.Int) (*chain.Receipt, error) {
	return s.Transact(ctx, TxOpts{GasFallback: config.GasLimitContractCall}, "returnTokens", amount)
}

// BuyNFT pays price tokens (after approval) and mints tokenID to the sender.
func (s *Sale) BuyNFT(ctx context.Context, tokenID *big.Int) (*chain.Receipt, error) {
	return s.Transact(ctx, TxOpts{GasFallback: config.GasLimitContractCall}, "buyNFT", tokenID)
}

// ReturnNFT burns tokenID (after approval) and refunds price/2 tokens.
func (s *Sale) ReturnNFT(ctx context.Context, tokenID *big.Int) (*chain.Receipt, error) {
	return s.Transact(ctx, TxOpts{GasFallback: config.GasLimitContractCall}, "returnNFT", tokenID)
}

// Withdraw moves up to amount tokens from the owner pool to the owner.
func (s *Sale) Withdraw(ctx context.Context, amount *big.Int) (*chain.Receipt, error) {
	return s.Transact(ctx, TxOpts{GasFallback: config.GasLimitContractCall}, "withdraw", amount)
}
