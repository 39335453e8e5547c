package contract

import (
	"context"
	"encoding/json"
	"errors"
	"math/big"
	"testing"

	"github.com/Mohsinsiddi/tokensale/internal/chain"
	"github.com/Mohsinsiddi/tokensale/test/fixtures"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	tokenAddr = common.HexToAddress("0x5FbDB2315678afecb367f032d93F642f64180aa3")
	deployer  = common.HexToAddress(fixtures.DeployerAddress)
	account2  = common.HexToAddress(fixtures.Account2Address)
	sentHash  = common.HexToHash("0xab").Hex()
)

func tokenABI(t *testing.T) Builtin {
	t.Helper()
	b, ok := GetBuiltin(KindToken)
	require.True(t, ok)
	return b
}

// viewNode serves eth_call for kind from results plus everything a Writer
// needs to send a transaction that succeeds.
func viewNode(t *testing.T, kind string, results map[string][]interface{}) *fixtures.Node {
	t.Helper()
	b, ok := GetBuiltin(kind)
	require.True(t, ok)
	return fixtures.NewNode(t, map[string]interface{}{
		"eth_call":                  fixtures.ViewHandler(b.ABI, results),
		"eth_chainId":               "0x7a69",
		"eth_estimateGas":           "0xc350",
		"eth_gasPrice":              "0x3b9aca00",
		"eth_maxPriorityFeePerGas":  "0x1",
		"eth_getTransactionCount":   "0x0",
		"eth_sendRawTransaction":    sentHash,
		"eth_getTransactionReceipt": fixtures.Receipt(sentHash, 1, "0xc350", "0x3b9aca00"),
	})
}

func reader(t *testing.T, node *fixtures.Node) *chain.Reader {
	t.Helper()
	r, err := chain.NewReader(context.Background(), node.URL)
	require.NoError(t, err)
	t.Cleanup(r.Close)
	return r
}

func writer(t *testing.T, node *fixtures.Node) *chain.Writer {
	t.Helper()
	w, err := reader(t, node).WithSigner(context.Background(), fixtures.NewKeySigner(t, fixtures.DeployerKey), 31337)
	require.NoError(t, err)
	return w
}

func sentTx(t *testing.T, node *fixtures.Node) *types.Transaction {
	t.Helper()
	calls := node.Calls("eth_sendRawTransaction")
	require.Len(t, calls, 1)
	var raw string
	require.NoError(t, json.Unmarshal(calls[0].Params[0], &raw))
	b, err := hexutil.Decode(raw)
	require.NoError(t, err)
	tx := new(types.Transaction)
	require.NoError(t, tx.UnmarshalBinary(b))
	return tx
}

func TestTokenMetadata(t *testing.T) {
	node := viewNode(t, KindToken, map[string][]interface{}{
		"name":        {"MyToken"},
		"symbol":      {"MTK"},
		"decimals":    {uint8(18)},
		"totalSupply": {big.NewInt(1000)},
	})
	tok := NewToken(tokenAddr, reader(t, node))

	md, err := tok.Metadata(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "MyToken", md.Name)
	assert.Equal(t, "MTK", md.Symbol)
	assert.Equal(t, uint8(18), md.Decimals)
	assert.Equal(t, int64(1000), md.TotalSupply.Int64())
}

func TestTokenMetadataErrorWaitsForAll(t *testing.T) {
	node := viewNode(t, KindToken, map[string][]interface{}{
		"name":     {"MyToken"},
		"symbol":   {"MTK"},
		"decimals": {uint8(18)},
	})
	tok := NewToken(tokenAddr, reader(t, node))

	_, err := tok.Metadata(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, chain.ErrReverted)
	assert.Len(t, node.Calls("eth_call"), 4)
}

func TestTokenBalanceOf(t *testing.T) {
	node := viewNode(t, KindToken, map[string][]interface{}{
		"balanceOf": {big.NewInt(42)},
	})
	bal, err := NewToken(tokenAddr, reader(t, node)).BalanceOf(context.Background(), deployer)
	require.NoError(t, err)
	assert.Equal(t, int64(42), bal.Int64())
}

func TestReadNoCode(t *testing.T) {
	node := viewNode(t, KindToken, map[string][]interface{}{"totalSupply": nil})
	_, err := NewToken(tokenAddr, reader(t, node)).TotalSupply(context.Background())
	assert.ErrorIs(t, err, ErrNoCode)
}

func TestTokenRoles(t *testing.T) {
	minter := RoleID("MINTER_ROLE")
	node := viewNode(t, KindToken, map[string][]interface{}{
		"MINTER_ROLE": {[32]byte(minter)},
		"hasRole":     {true},
	})
	tok := NewToken(tokenAddr, reader(t, node))
	ctx := context.Background()

	role, err := tok.MinterRole(ctx)
	require.NoError(t, err)
	assert.Equal(t, minter, role)

	ok, err := tok.HasRole(ctx, role, deployer)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = tok.Role(ctx, "name")
	assert.ErrorContains(t, err, "unknown role")
	_, err = tok.Role(ctx, "BURNER_ROLE")
	assert.ErrorContains(t, err, "unknown role")
}

func TestTokenWriteReadOnly(t *testing.T) {
	node := viewNode(t, KindToken, nil)
	tok := NewToken(tokenAddr, reader(t, node))

	_, err := tok.Mint(context.Background(), account2, big.NewInt(1))
	assert.ErrorIs(t, err, ErrReadOnly)
	assert.Equal(t, common.Address{}, tok.From())
	assert.Empty(t, node.Calls("eth_sendRawTransaction"))
}

func TestTokenMint(t *testing.T) {
	node := viewNode(t, KindToken, nil)
	tok := NewToken(tokenAddr, nil).WithWriter(writer(t, node))
	assert.Equal(t, deployer, tok.From())

	amount := new(big.Int).Mul(big.NewInt(10), big.NewInt(1e18))
	rc, err := tok.Mint(context.Background(), account2, amount)
	require.NoError(t, err)
	assert.True(t, rc.Succeeded())

	tx := sentTx(t, node)
	require.NotNil(t, tx.To())
	assert.Equal(t, tokenAddr, *tx.To())
	want, err := tokenABI(t).ABI.Pack("mint", account2, amount)
	require.NoError(t, err)
	assert.Equal(t, want, tx.Data())
	assert.Equal(t, uint64(0xc350), tx.Gas())
}

func TestTokenSimulateMintRevert(t *testing.T) {
	node := viewNode(t, KindToken, nil)
	node.Set("eth_call", &fixtures.RPCError{Code: 3, Message: "execution reverted", Data: "0xe2517d3f"})
	tok := NewToken(tokenAddr, reader(t, node))

	err := tok.SimulateMint(context.Background(), account2, account2, big.NewInt(1))
	require.Error(t, err)
	var rev *chain.RevertError
	require.True(t, errors.As(err, &rev))
	assert.Equal(t, []byte{0xe2, 0x51, 0x7d, 0x3f}, rev.Data)

	calls := node.Calls("eth_call")
	require.Len(t, calls, 1)
	var msg struct {
		From string `json:"from"`
	}
	require.NoError(t, json.Unmarshal(calls[0].Params[0], &msg))
	assert.Equal(t, account2, common.HexToAddress(msg.From))
}

func TestDeployPacksConstructor(t *testing.T) {
	node := viewNode(t, KindSale, nil)
	b, _ := GetBuiltin(KindSale)
	art := &Artifact{ContractName: "TokenSale", ABI: b.ABI, Bytecode: []byte{0x60, 0x80}}
	nftAddr := common.HexToAddress("0xe7f1725E7734CE288F8367e1Bb143E90bb3F0512")

	_, addr, err := Deploy(context.Background(), writer(t, node), art, 0,
		big.NewInt(100), big.NewInt(10), tokenAddr, nftAddr)
	require.NoError(t, err)

	tx := sentTx(t, node)
	assert.Nil(t, tx.To())
	args, err := b.ABI.Pack("", big.NewInt(100), big.NewInt(10), tokenAddr, nftAddr)
	require.NoError(t, err)
	assert.Equal(t, append([]byte{0x60, 0x80}, args...), tx.Data())
	assert.Equal(t, "0x5FbDB2315678afecb367f032d93F642f64180aa3", addr.Hex())
}

func TestDeployWrongArgs(t *testing.T) {
	node := viewNode(t, KindSale, nil)
	b, _ := GetBuiltin(KindSale)
	art := &Artifact{ABI: b.ABI, Bytecode: []byte{0x60}}

	_, _, err := Deploy(context.Background(), writer(t, node), art, 0, big.NewInt(100))
	assert.ErrorContains(t, err, "constructor")
	assert.Empty(t, node.Calls("eth_sendRawTransaction"))

	_, _, err = Deploy(context.Background(), writer(t, node), &Artifact{ABI: b.ABI}, 0)
	assert.ErrorIs(t, err, ErrNoBytecode)
}
