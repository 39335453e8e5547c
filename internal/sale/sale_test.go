package sale

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func n(v int64) *big.Int { return big.NewInt(v) }

func TestExpectedAmounts(t *testing.T) {
	assert.Equal(t, "1000", ExpectedTokens(n(10), n(100)).String())

	r, err := ExpectedRefund(n(1050), n(100))
	require.NoError(t, err)
	assert.Equal(t, "10", r.String())

	_, err = ExpectedRefund(n(1), n(0))
	assert.Error(t, err)

	assert.Equal(t, "5", BurnRefund(n(10)).String())
	assert.Equal(t, "4", BurnRefund(n(9)).String())
}

func TestWithdrawable(t *testing.T) {
	assert.Equal(t, "3", Withdrawable(n(3), n(5)).String())
	assert.Equal(t, "5", Withdrawable(n(8), n(5)).String())
	assert.Equal(t, "5", Withdrawable(n(5), n(5)).String())

	req := n(3)
	got := Withdrawable(req, n(5))
	got.SetInt64(0)
	assert.Equal(t, "3", req.String())
}

func TestVerifyBuy(t *testing.T) {
	// 10 wei at ratio 100, 21 wei of gas
	err := VerifyBuy(n(10), n(100), n(21), n(0), n(1000), n(500), n(469))
	assert.NoError(t, err)

	err = VerifyBuy(n(10), n(100), n(21), n(0), n(999), n(500), n(469))
	assert.ErrorIs(t, err, ErrMismatch)
	assert.ErrorContains(t, err, "tokens received")

	err = VerifyBuy(n(10), n(100), n(21), n(0), n(1000), n(500), n(479))
	assert.ErrorIs(t, err, ErrMismatch)
	assert.ErrorContains(t, err, "ETH spent")
}

func TestVerifyReturn(t *testing.T) {
	err := VerifyReturn(n(1000), n(100), n(3), n(1000), n(0), n(50), n(57))
	assert.NoError(t, err)

	err = VerifyReturn(n(1000), n(100), n(3), n(1000), n(1), n(50), n(57))
	assert.ErrorIs(t, err, ErrMismatch)

	err = VerifyReturn(n(1000), n(100), n(3), n(1000), n(0), n(50), n(60))
	assert.ErrorIs(t, err, ErrMismatch)
}

func TestVerifyBuyNFT(t *testing.T) {
	buyer := common.HexToAddress("0x70997970C51812dc3A010C7d01b50e0d17dc79C8")
	other := common.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266")

	assert.NoError(t, VerifyBuyNFT(n(10), n(100), n(90), buyer, buyer))
	assert.ErrorIs(t, VerifyBuyNFT(n(10), n(100), n(91), buyer, buyer), ErrMismatch)
	assert.ErrorIs(t, VerifyBuyNFT(n(10), n(100), n(90), buyer, other), ErrMismatch)
}

func TestVerifyReturnNFT(t *testing.T) {
	assert.NoError(t, VerifyReturnNFT(n(10), n(90), n(95)))
	assert.ErrorIs(t, VerifyReturnNFT(n(10), n(90), n(100)), ErrMismatch)
}

func TestVerifyWithdraw(t *testing.T) {
	assert.NoError(t, VerifyWithdraw(n(8), n(5), n(0), n(5)))
	assert.NoError(t, VerifyWithdraw(n(2), n(5), n(10), n(12)))
	assert.ErrorIs(t, VerifyWithdraw(n(8), n(5), n(0), n(8)), ErrMismatch)
}
