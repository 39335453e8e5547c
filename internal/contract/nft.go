package contract

import (
	"context"
	"math/big"

	"github.com/Mohsinsiddi/tokensale/internal/chain"
	"github.com/Mohsinsiddi/tokensale/internal/config"
	"github.com/ethereum/go-ethereum/common"
)

// NFT wraps a deployed MyNFT.
type NFT struct {
	*Handle
}

// NewNFT binds the embedded MyNFT ABI to address.
func NewNFT(address common.Address, r *chain.Reader) *NFT {
	b, _ := GetBuiltin(KindNFT)
	return &NFT{Handle: NewHandle(address, b.ABI, r)}
}

// WithWriter returns a copy of n that can send transactions.
func (n *NFT) WithWriter(w *chain.Writer) *NFT {
	return &NFT{Handle: n.Handle.WithWriter(w)}
}

func (n *NFT) Symbol(ctx context.Context) (string, error) {
	return asString(n.Read(ctx, "symbol"))
}

// OwnerOf reverts (RevertError) for tokens that do not exist.
func (n *NFT) OwnerOf(ctx context.Context, tokenID *big.Int) (common.Address, error) {
	return asAddress(n.Read(ctx, "ownerOf", tokenID))
}

func (n *NFT) Approve(ctx context.Context, to common.Address, tokenID *big.Int) (*chain.Receipt, error) {
	return n.Transact(ctx, TxOpts{GasFallback: config.GasLimitERC20Transfer}, "approve", to, tokenID)
}
