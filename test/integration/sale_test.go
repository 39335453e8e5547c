//go:build integration

// Package integration_test runs the sale flows against a live development
// node (anvil or a hardhat node) with the compiled contracts:
//
//	TOKENSALE_RPC_URL=http://127.0.0.1:8545 \
//	TOKENSALE_ARTIFACTS_DIR=../hardhat/artifacts/contracts \
//	go test -tags integration ./test/integration/
package integration_test

import (
	"context"
	"math/big"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Mohsinsiddi/tokensale/internal/chain"
	"github.com/Mohsinsiddi/tokensale/internal/config"
	"github.com/Mohsinsiddi/tokensale/internal/contract"
	"github.com/Mohsinsiddi/tokensale/internal/sale"
	"github.com/Mohsinsiddi/tokensale/internal/wallet"
	"github.com/Mohsinsiddi/tokensale/test/fixtures"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testRatio = 100
	testPrice = 10
)

// deployment is one fresh token/NFT/sale fixture.
type deployment struct {
	ctx      context.Context
	owner    *chain.Writer
	buyer    *chain.Writer
	token    common.Address
	nft      common.Address
	saleAddr common.Address
}

func writer(t *testing.T, ctx context.Context, url, key string) *chain.Writer {
	t.Helper()
	signer, err := wallet.NewSigner(key)
	require.NoError(t, err)
	w, err := chain.NewWriter(ctx, url, signer, 0)
	require.NoError(t, err)
	w.SetPollInterval(100 * time.Millisecond)
	t.Cleanup(w.Close)
	return w
}

func deploy(t *testing.T, ctx context.Context, w *chain.Writer, dir, kind string, args ...interface{}) common.Address {
	t.Helper()
	art, err := contract.LoadArtifact(filepath.Join(dir, config.ArtifactPaths[kind]))
	require.NoError(t, err)
	hash, addr, err := contract.Deploy(ctx, w, art, config.GasLimitDeploy, args...)
	require.NoError(t, err)
	rc, err := w.WaitForReceipt(ctx, hash)
	require.NoError(t, err)
	require.True(t, rc.Succeeded(), "deploying %s", kind)
	return addr
}

// setup deploys token, NFT and sale and grants MINTER_ROLE on both
// collections to the sale.
func setup(t *testing.T) *deployment {
	t.Helper()
	url := os.Getenv("TOKENSALE_RPC_URL")
	if url == "" {
		t.Skip("TOKENSALE_RPC_URL not set")
	}
	dir := fixtures.ArtifactsDir(t)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	t.Cleanup(cancel)

	d := &deployment{
		ctx:   ctx,
		owner: writer(t, ctx, url, fixtures.DeployerKey),
		buyer: writer(t, ctx, url, fixtures.Account2Key),
	}
	d.token = deploy(t, ctx, d.owner, dir, config.KindToken)
	d.nft = deploy(t, ctx, d.owner, dir, config.KindNFT)
	d.saleAddr = deploy(t, ctx, d.owner, dir, config.KindSale,
		big.NewInt(testRatio), big.NewInt(testPrice), d.token, d.nft)

	for _, h := range []*contract.Handle{
		contract.NewToken(d.token, d.owner.Reader).WithWriter(d.owner).Handle,
		contract.NewNFT(d.nft, d.owner.Reader).WithWriter(d.owner).Handle,
	} {
		role, err := h.MinterRole(ctx)
		require.NoError(t, err)
		assert.Equal(t, contract.RoleID(config.MinterRole), role)
		rc, err := h.GrantRole(ctx, role, d.saleAddr)
		require.NoError(t, err)
		require.True(t, rc.Succeeded())
	}
	return d
}

func (d *deployment) tokenFor(w *chain.Writer) *contract.Token {
	return contract.NewToken(d.token, w.Reader).WithWriter(w)
}

func (d *deployment) saleFor(w *chain.Writer) *contract.Sale {
	return contract.NewSale(d.saleAddr, w.Reader).WithWriter(w)
}

func (d *deployment) balances(t *testing.T, w *chain.Writer) (eth, tokens *big.Int) {
	t.Helper()
	eth, err := w.Balance(d.ctx, w.From())
	require.NoError(t, err)
	tokens, err = d.tokenFor(w).BalanceOf(d.ctx, w.From())
	require.NoError(t, err)
	return eth, tokens
}

// buy spends value wei on tokens as w.
func (d *deployment) buy(t *testing.T, w *chain.Writer, value *big.Int) *chain.Receipt {
	t.Helper()
	rc, err := d.saleFor(w).BuyTokens(d.ctx, value)
	require.NoError(t, err)
	require.True(t, rc.Succeeded())
	return rc
}

func TestSaleIsConfigured(t *testing.T) {
	d := setup(t)
	s := d.saleFor(d.owner)
	ratio, price, err := s.Config(d.ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(testRatio), ratio.Int64())
	assert.Equal(t, int64(testPrice), price.Int64())

	tok, err := s.Token(d.ctx)
	require.NoError(t, err)
	assert.Equal(t, d.token, tok)
	nft, err := s.NFT(d.ctx)
	require.NoError(t, err)
	assert.Equal(t, d.nft, nft)

	md, err := d.tokenFor(d.owner).Metadata(d.ctx)
	require.NoError(t, err)
	assert.Equal(t, uint8(18), md.Decimals)
	assert.Zero(t, md.TotalSupply.Sign())
}

func TestTransferEmitsOneEvent(t *testing.T) {
	d := setup(t)
	amount := big.NewInt(1e18)
	d.buy(t, d.owner, big.NewInt(1e16)) // 1e18 tokens at ratio 100

	rc, err := d.tokenFor(d.owner).Transfer(d.ctx, d.buyer.From(), amount)
	require.NoError(t, err)
	events, err := contract.DecodeTransfers(d.token, rc.Logs)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, d.owner.From(), events[0].From)
	assert.Equal(t, d.buyer.From(), events[0].To)
	assert.Equal(t, amount.String(), events[0].Value.String())
}

func TestBuyTokens(t *testing.T) {
	d := setup(t)
	value := big.NewInt(1e16)
	ethB, tokB := d.balances(t, d.buyer)
	rc := d.buy(t, d.buyer, value)
	ethA, tokA := d.balances(t, d.buyer)

	assert.NoError(t, sale.VerifyBuy(value, big.NewInt(testRatio), rc.GasCost(), tokB, tokA, ethB, ethA))
}

func TestReturnTokens(t *testing.T) {
	d := setup(t)
	d.buy(t, d.buyer, big.NewInt(1e16))
	ethB, tokB := d.balances(t, d.buyer)

	rcApprove, err := d.tokenFor(d.buyer).Approve(d.ctx, d.saleAddr, tokB)
	require.NoError(t, err)
	rc, err := d.saleFor(d.buyer).ReturnTokens(d.ctx, tokB)
	require.NoError(t, err)
	ethA, tokA := d.balances(t, d.buyer)

	gas := chain.TotalGasCost(rcApprove, rc)
	assert.NoError(t, sale.VerifyReturn(tokB, big.NewInt(testRatio), gas, tokB, tokA, ethB, ethA))
	assert.Zero(t, tokA.Sign())
}

func TestBuyAndReturnNFT(t *testing.T) {
	d := setup(t)
	price := big.NewInt(testPrice)
	id := big.NewInt(0)
	d.buy(t, d.buyer, big.NewInt(1))

	_, tokB := d.balances(t, d.buyer)
	_, err := d.tokenFor(d.buyer).Approve(d.ctx, d.saleAddr, price)
	require.NoError(t, err)
	_, err = d.saleFor(d.buyer).BuyNFT(d.ctx, id)
	require.NoError(t, err)
	_, tokA := d.balances(t, d.buyer)

	nft := contract.NewNFT(d.nft, d.buyer.Reader).WithWriter(d.buyer)
	owner, err := nft.OwnerOf(d.ctx, id)
	require.NoError(t, err)
	require.NoError(t, sale.VerifyBuyNFT(price, tokB, tokA, d.buyer.From(), owner))

	_, err = nft.Approve(d.ctx, d.saleAddr, id)
	require.NoError(t, err)
	_, err = d.saleFor(d.buyer).ReturnNFT(d.ctx, id)
	require.NoError(t, err)
	_, tokBurned := d.balances(t, d.buyer)
	assert.NoError(t, sale.VerifyReturnNFT(price, tokA, tokBurned))

	_, err = nft.OwnerOf(d.ctx, id)
	assert.ErrorIs(t, err, chain.ErrReverted)
}

func TestOwnerWithdraw(t *testing.T) {
	d := setup(t)
	price := big.NewInt(testPrice)
	d.buy(t, d.buyer, big.NewInt(1))
	_, err := d.tokenFor(d.buyer).Approve(d.ctx, d.saleAddr, price)
	require.NoError(t, err)
	_, err = d.saleFor(d.buyer).BuyNFT(d.ctx, big.NewInt(1))
	require.NoError(t, err)

	s := d.saleFor(d.owner)
	available, err := s.OwnerPool(d.ctx)
	require.NoError(t, err)
	require.Positive(t, available.Sign())

	requested := new(big.Int).Add(available, big.NewInt(1))
	requested = sale.Withdrawable(requested, available)
	_, before := d.balances(t, d.owner)
	_, err = s.Withdraw(d.ctx, requested)
	require.NoError(t, err)
	_, after := d.balances(t, d.owner)
	assert.NoError(t, sale.VerifyWithdraw(requested, available, before, after))
}

func TestMintRequiresRole(t *testing.T) {
	d := setup(t)
	token := d.tokenFor(d.buyer)
	err := token.SimulateMint(d.ctx, d.buyer.From(), d.buyer.From(), big.NewInt(1))
	assert.ErrorIs(t, err, chain.ErrReverted)
}
