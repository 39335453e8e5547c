package chain

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
)

// DefaultPollInterval is how often WaitForReceipt asks for a receipt.
const DefaultPollInterval = 2 * time.Second

// ErrReverted is matched (errors.Is) by every revert the package reports:
// simulation reverts, estimate reverts and mined receipts with status 0.
var ErrReverted = errors.New("execution reverted")

// RevertError is a call or estimate that the EVM rejected.
type RevertError struct {
	Reason string // decoded Error(string) reason, or the node's message
	Data   []byte // raw revert data when the node returned it
}

func (e *RevertError) Error() string {
	if e.Reason == "" {
		return ErrReverted.Error()
	}
	return ErrReverted.Error() + ": " + e.Reason
}

// Is lets errors.Is(err, ErrReverted) match a *RevertError.
func (e *RevertError) Is(target error) bool { return target == ErrReverted }

// Reader is a read-only client bound to one RPC endpoint.
type Reader struct {
	client       *ethclient.Client
	pollInterval time.Duration
}

// NewReader dials rpcURL. Nothing is sent until the first call.
func NewReader(ctx context.Context, rpcURL string) (*Reader, error) {
	if rpcURL == "" {
		return nil, errors.New("rpc url not configured")
	}
	c, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, fmt.Errorf("dialing %s: %w", rpcURL, err)
	}
	return &Reader{client: c, pollInterval: DefaultPollInterval}, nil
}

// SetPollInterval changes the receipt polling interval. Non-positive values
// are ignored.
func (r *Reader) SetPollInterval(d time.Duration) {
	if d > 0 {
		r.pollInterval = d
	}
}

// Close releases the underlying connection.
func (r *Reader) Close() { r.client.Close() }

// BlockNumber returns the latest block number.
func (r *Reader) BlockNumber(ctx context.Context) (uint64, error) {
	n, err := r.client.BlockNumber(ctx)
	if err != nil {
		return 0, fmt.Errorf("block number: %w", err)
	}
	return n, nil
}

// Balance returns the native balance of addr in wei.
func (r *Reader) Balance(ctx context.Context, addr common.Address) (*big.Int, error) {
	b, err := r.client.BalanceAt(ctx, addr, nil)
	if err != nil {
		return nil, fmt.Errorf("balance of %s: %w", addr.Hex(), err)
	}
	return b, nil
}

// ChainID returns the chain ID reported by the node.
func (r *Reader) ChainID(ctx context.Context) (*big.Int, error) {
	id, err := r.client.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("chain id: %w", err)
	}
	return id, nil
}

// Call executes a read-only eth_call against the latest block.
func (r *Reader) Call(ctx context.Context, to common.Address, data []byte) ([]byte, error) {
	return r.Simulate(ctx, CallRequest{To: &to, Data: data})
}

// CallRequest describes a message for Simulate. To == nil simulates a
// contract creation.
type CallRequest struct {
	From  common.Address
	To    *common.Address
	Value *big.Int
	Data  []byte
}

// Simulate runs req through eth_call without broadcasting. A revert is
// returned as *RevertError.
func (r *Reader) Simulate(ctx context.Context, req CallRequest) ([]byte, error) {
	out, err := r.client.CallContract(ctx, ethereum.CallMsg{
		From:  req.From,
		To:    req.To,
		Value: req.Value,
		Data:  req.Data,
	}, nil)
	if err != nil {
		if rev, ok := asRevert(err); ok {
			return nil, rev
		}
		return nil, fmt.Errorf("eth_call: %w", err)
	}
	return out, nil
}

// Receipt fetches the receipt for hash. It returns nil, nil while the
// transaction is still pending.
func (r *Reader) Receipt(ctx context.Context, hash common.Hash) (*Receipt, error) {
	rc, err := r.client.TransactionReceipt(ctx, hash)
	if errors.Is(err, ethereum.NotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("receipt %s: %w", hash.Hex(), err)
	}
	return fromTypesReceipt(rc), nil
}

// WaitForReceipt polls until hash is mined or ctx ends. A receipt with
// status 0 is returned together with an error matching ErrReverted.
func (r *Reader) WaitForReceipt(ctx context.Context, hash common.Hash) (*Receipt, error) {
	ticker := time.NewTicker(r.pollInterval)
	defer ticker.Stop()
	for {
		receipt, err := r.Receipt(ctx, hash)
		if err != nil {
			return nil, err
		}
		if receipt != nil {
			if !receipt.Succeeded() {
				return receipt, fmt.Errorf("transaction %s: %w", hash.Hex(), ErrReverted)
			}
			return receipt, nil
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("transaction %s not mined: %w", hash.Hex(), ctx.Err())
		case <-ticker.C:
		}
	}
}

// TxSigner signs transactions for a single account.
type TxSigner interface {
	Address() common.Address
	SignTx(tx *types.Transaction, chainID *big.Int) (*types.Transaction, error)
}

// Writer is a Reader plus a signing account.
type Writer struct {
	*Reader
	signer  TxSigner
	chainID *big.Int
	onSend  func(tx *types.Transaction)
}

// NewWriter dials rpcURL and binds signer to it. chainID 0 asks the node.
func NewWriter(ctx context.Context, rpcURL string, signer TxSigner, chainID int64) (*Writer, error) {
	r, err := NewReader(ctx, rpcURL)
	if err != nil {
		return nil, err
	}
	w, err := r.WithSigner(ctx, signer, chainID)
	if err != nil {
		r.Close()
		return nil, err
	}
	return w, nil
}

// WithSigner returns a Writer sharing r's connection.
func (r *Reader) WithSigner(ctx context.Context, signer TxSigner, chainID int64) (*Writer, error) {
	if signer == nil {
		return nil, errors.New("no signer")
	}
	id := big.NewInt(chainID)
	if chainID == 0 {
		var err error
		if id, err = r.ChainID(ctx); err != nil {
			return nil, err
		}
	}
	return &Writer{Reader: r, signer: signer, chainID: id}, nil
}

// From returns the sender address.
func (w *Writer) From() common.Address { return w.signer.Address() }

// ChainID returns the chain the writer signs for.
func (w *Writer) ChainID() *big.Int { return new(big.Int).Set(w.chainID) }

// OnSend registers fn to run after each transaction is accepted by the
// node, before its receipt is awaited.
func (w *Writer) OnSend(fn func(tx *types.Transaction)) { w.onSend = fn }

// TxRequest describes a state-changing call.
type TxRequest struct {
	To          common.Address
	Value       *big.Int
	Data        []byte
	GasFallback uint64 // used when the node cannot estimate; 0 = fail instead
}

// Send signs and broadcasts req and returns the transaction hash.
func (w *Writer) Send(ctx context.Context, req TxRequest) (common.Hash, error) {
	to := req.To
	tx, err := w.buildTx(ctx, &to, req.Value, req.Data, req.GasFallback)
	if err != nil {
		return common.Hash{}, err
	}
	return w.broadcast(ctx, tx)
}

// Deploy broadcasts a contract creation for bytecode followed by the packed
// constructor args. The returned address is derived from sender and nonce.
func (w *Writer) Deploy(ctx context.Context, bytecode, args []byte, gasFallback uint64) (common.Hash, common.Address, error) {
	data := make([]byte, 0, len(bytecode)+len(args))
	data = append(append(data, bytecode...), args...)
	tx, err := w.buildTx(ctx, nil, nil, data, gasFallback)
	if err != nil {
		return common.Hash{}, common.Address{}, err
	}
	hash, err := w.broadcast(ctx, tx)
	if err != nil {
		return common.Hash{}, common.Address{}, err
	}
	return hash, crypto.CreateAddress(w.From(), tx.Nonce()), nil
}

func (w *Writer) buildTx(ctx context.Context, to *common.Address, value *big.Int, data []byte, fallback uint64) (*types.Transaction, error) {
	from := w.From()
	if value == nil {
		value = new(big.Int)
	}

	gas, err := w.client.EstimateGas(ctx, ethereum.CallMsg{From: from, To: to, Value: value, Data: data})
	if err != nil {
		if rev, ok := asRevert(err); ok {
			return nil, rev
		}
		if fallback == 0 {
			return nil, fmt.Errorf("estimating gas: %w", err)
		}
		gas = fallback
	}

	gasPrice, err := w.client.SuggestGasPrice(ctx)
	if err != nil {
		return nil, fmt.Errorf("getting gas price: %w", err)
	}
	tip, err := w.client.SuggestGasTipCap(ctx)
	if err != nil {
		tip = gasPrice
	}
	feeCap := new(big.Int).Mul(gasPrice, big.NewInt(2))
	if tip.Cmp(feeCap) > 0 {
		tip = feeCap
	}

	nonce, err := w.client.PendingNonceAt(ctx, from)
	if err != nil {
		return nil, fmt.Errorf("getting nonce: %w", err)
	}

	return types.NewTx(&types.DynamicFeeTx{
		ChainID:   w.chainID,
		Nonce:     nonce,
		GasTipCap: tip,
		GasFeeCap: feeCap,
		Gas:       gas,
		To:        to,
		Value:     value,
		Data:      data,
	}), nil
}

func (w *Writer) broadcast(ctx context.Context, tx *types.Transaction) (common.Hash, error) {
	signed, err := w.signer.SignTx(tx, w.chainID)
	if err != nil {
		return common.Hash{}, fmt.Errorf("signing transaction: %w", err)
	}
	if err := w.client.SendTransaction(ctx, signed); err != nil {
		if rev, ok := asRevert(err); ok {
			return common.Hash{}, rev
		}
		return common.Hash{}, fmt.Errorf("broadcasting transaction: %w", err)
	}
	if w.onSend != nil {
		w.onSend(signed)
	}
	return signed.Hash(), nil
}

// asRevert recognises revert errors returned by eth_call / eth_estimateGas.
// Nodes attach the revert data as the JSON-RPC error's data field.
func asRevert(err error) (*RevertError, bool) {
	var de rpc.DataError
	if errors.As(err, &de) {
		if s, ok := de.ErrorData().(string); ok {
			data, derr := hexutil.Decode(s)
			if derr == nil {
				if reason, uerr := abi.UnpackRevert(data); uerr == nil {
					return &RevertError{Reason: reason, Data: data}, true
				}
				return &RevertError{Reason: extractRevertReason(err.Error()), Data: data}, true
			}
		}
	}
	if strings.Contains(err.Error(), "revert") {
		return &RevertError{Reason: extractRevertReason(err.Error())}, true
	}
	return nil, false
}

// extractRevertReason pulls the reason out of an RPC error message such as
// "execution reverted: ERC20: insufficient allowance".
func extractRevertReason(msg string) string {
	if idx := strings.Index(msg, "execution reverted:"); idx >= 0 {
		return strings.TrimSpace(msg[idx+len("execution reverted:"):])
	}
	if idx := strings.Index(msg, "reverted with reason string"); idx >= 0 {
		return strings.Trim(strings.TrimSpace(msg[idx+len("reverted with reason string"):]), "'")
	}
	if strings.TrimSpace(msg) == ErrReverted.Error() {
		return ""
	}
	return msg
}
