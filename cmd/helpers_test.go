package cmd

import (
	"bytes"
	"encoding/json"
	"io"
	"math/big"
	"strings"
	"testing"

	"github.com/Mohsinsiddi/tokensale/internal/contract"
	"github.com/Mohsinsiddi/tokensale/test/fixtures"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
)

var (
	tokenAddr = common.HexToAddress("0x5FbDB2315678afecb367f032d93F642f64180aa3")
	nftAddr   = common.HexToAddress("0xe7f1725E7734CE288F8367e1Bb143E90bb3F0512")
	saleAddr  = common.HexToAddress("0x9fE46736679d2D9a65F0992F2272dE9f3c7fa6e0")
	deployer  = common.HexToAddress(fixtures.DeployerAddress)
	account2  = common.HexToAddress(fixtures.Account2Address)

	// 21000 gas at 1 gwei, as served by fakeChain receipts.
	receiptGasCost = big.NewInt(21_000 * 1_000_000_000)
)

func eth(n int64) *big.Int { return new(big.Int).Mul(big.NewInt(n), big.NewInt(1e18)) }

// viewFunc answers a view call on contract to. sent is the number of
// transactions broadcast so far, so state can change after a write.
// ok=false makes the call revert.
type viewFunc func(to common.Address, method string, sent int) (out []interface{}, ok bool)

// fakeChain serves the JSON-RPC methods the commands use. ETH balances
// come from balance and contract reads from view.
func fakeChain(t *testing.T, view viewFunc, balance func(sent int) *big.Int) *fixtures.Node {
	t.Helper()
	abis := map[common.Address]abi.ABI{}
	for addr, kind := range map[common.Address]string{tokenAddr: contract.KindToken, nftAddr: contract.KindNFT, saleAddr: contract.KindSale} {
		b, ok := contract.GetBuiltin(kind)
		require.True(t, ok)
		abis[addr] = b.ABI
	}

	var node *fixtures.Node
	sent := func() int { return len(node.Calls("eth_sendRawTransaction")) }
	txHash := common.HexToHash("0xab").Hex()

	node = fixtures.NewNode(t, map[string]interface{}{
		"eth_chainId":               "0x7a69",
		"eth_blockNumber":           "0x10",
		"eth_estimateGas":           "0x5208",
		"eth_gasPrice":              "0x3b9aca00",
		"eth_maxPriorityFeePerGas":  "0x1",
		"eth_getTransactionCount":   "0x0",
		"eth_sendRawTransaction":    txHash,
		"eth_getTransactionReceipt": fixtures.Receipt(txHash, 1, "0x5208", "0x3b9aca00"),
		"eth_getBalance": fixtures.Handler(func([]json.RawMessage) (interface{}, error) {
			return hexutil.EncodeBig(balance(sent())), nil
		}),
		"eth_call": fixtures.Handler(func(params []json.RawMessage) (interface{}, error) {
			var msg struct {
				To    common.Address `json:"to"`
				Input string         `json:"input"`
				Data  string         `json:"data"`
			}
			if err := json.Unmarshal(params[0], &msg); err != nil {
				return nil, err
			}
			in := msg.Input
			if in == "" {
				in = msg.Data
			}
			data, err := hexutil.Decode(in)
			if err != nil || len(data) < 4 {
				return nil, &fixtures.RPCError{Code: -32602, Message: "bad call data"}
			}
			a, ok := abis[msg.To]
			if !ok {
				return "0x", nil
			}
			m, err := a.MethodById(data[:4])
			if err != nil {
				return nil, err
			}
			out, ok := view(msg.To, m.Name, sent())
			if !ok {
				return nil, &fixtures.RPCError{Code: 3, Message: "execution reverted: " + m.Name}
			}
			packed, err := m.Outputs.Pack(out...)
			if err != nil {
				return nil, err
			}
			return hexutil.Encode(packed), nil
		}),
	})
	return node
}

const transferTopic = "0xddf252ad1be2c89b69c2b068fc378daa952ba7f163c4a11628f55a4df523b3ef"

func addrTopic(a common.Address) string { return common.BytesToHash(a.Bytes()).Hex() }

// tokenTransferLog is a MyToken Transfer: value sits in the data.
func tokenTransferLog(from, to common.Address, value *big.Int, index uint) map[string]interface{} {
	return fixtures.Log(tokenAddr.Hex(), []string{transferTopic, addrTopic(from), addrTopic(to)},
		hexutil.Encode(common.BigToHash(value).Bytes()), common.HexToHash("0xab").Hex(), index)
}

// nftTransferLog is a MyNFT Transfer: the token ID is the third topic.
func nftTransferLog(from, to common.Address, id int64, index uint) map[string]interface{} {
	return fixtures.Log(nftAddr.Hex(),
		[]string{transferTopic, addrTopic(from), addrTopic(to), common.BigToHash(big.NewInt(id)).Hex()},
		"0x", common.HexToHash("0xab").Hex(), index)
}

// withLogs makes every receipt fakeChain serves carry logs.
func withLogs(node *fixtures.Node, logs ...map[string]interface{}) {
	node.Set("eth_getTransactionReceipt",
		fixtures.Receipt(common.HexToHash("0xab").Hex(), 1, "0x5208", "0x3b9aca00", logs...))
}

// sentTxs decodes every broadcast transaction.
func sentTxs(t *testing.T, node *fixtures.Node) []*types.Transaction {
	t.Helper()
	var out []*types.Transaction
	for _, c := range node.Calls("eth_sendRawTransaction") {
		var raw string
		require.NoError(t, json.Unmarshal(c.Params[0], &raw))
		b, err := hexutil.Decode(raw)
		require.NoError(t, err)
		tx := new(types.Transaction)
		require.NoError(t, tx.UnmarshalBinary(b))
		out = append(out, tx)
	}
	return out
}

func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// run executes the CLI with dir as config dir. It returns stdout and stderr.
func run(t *testing.T, dir string, stdin io.Reader, args ...string) (string, string, error) {
	t.Helper()
	for _, k := range []string{"DEPLOYER_PRIVATE_KEY", "PRIVATE_KEY", "ALCHEMY_SEPOLIA_URL", "MY_TOKEN_SEPOLIA"} {
		t.Setenv(k, "")
	}
	resetFlags(rootCmd)
	if stdin == nil {
		stdin = strings.NewReader("")
	}
	var out, errOut bytes.Buffer
	rootCmd.SetIn(stdin)
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(append([]string{"--config", dir}, args...))
	err := rootCmd.Execute()
	return out.String(), errOut.String(), err
}
