package contract

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/Mohsinsiddi/tokensale/internal/chain"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

var (
	// ErrNoCode is returned when a view call comes back empty, which
	// usually means nothing is deployed at the address.
	ErrNoCode = errors.New("no contract code at given address")
	// ErrReadOnly is returned by writes on a handle without a writer.
	ErrReadOnly = errors.New("contract handle has no signer")
)

// Handle is an address plus an ABI bound to a client. Writes need a
// *chain.Writer (see WithWriter).
type Handle struct {
	Address common.Address
	ABI     abi.ABI

	reader *chain.Reader
	writer *chain.Writer
}

// NewHandle binds a to address for reads through r.
func NewHandle(address common.Address, a abi.ABI, r *chain.Reader) *Handle {
	return &Handle{Address: address, ABI: a, reader: r}
}

// WithWriter returns a copy of h that can send transactions through w.
func (h *Handle) WithWriter(w *chain.Writer) *Handle {
	cp := *h
	cp.writer = w
	cp.reader = w.Reader
	return &cp
}

// Read calls a view function and returns its decoded outputs.
func (h *Handle) Read(ctx context.Context, method string, args ...interface{}) ([]interface{}, error) {
	data, err := h.ABI.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("encoding %s: %w", method, err)
	}
	out, err := h.reader.Call(ctx, h.Address, data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", method, err)
	}
	return h.unpack(method, out)
}

// Simulate runs a state-changing call as from without broadcasting it, so
// a revert surfaces before any gas is spent.
func (h *Handle) Simulate(ctx context.Context, from common.Address, value *big.Int, method string, args ...interface{}) ([]interface{}, error) {
	data, err := h.ABI.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("encoding %s: %w", method, err)
	}
	to := h.Address
	out, err := h.reader.Simulate(ctx, chain.CallRequest{From: from, To: &to, Value: value, Data: data})
	if err != nil {
		return nil, fmt.Errorf("simulate %s: %w", method, err)
	}
	return h.unpack(method, out)
}

// TxOpts tunes a write.
type TxOpts struct {
	Value       *big.Int
	GasFallback uint64
}

// Write signs and broadcasts a call to method and returns the tx hash.
func (h *Handle) Write(ctx context.Context, opts TxOpts, method string, args ...interface{}) (common.Hash, error) {
	if h.writer == nil {
		return common.Hash{}, ErrReadOnly
	}
	data, err := h.ABI.Pack(method, args...)
	if err != nil {
		return common.Hash{}, fmt.Errorf("encoding %s: %w", method, err)
	}
	hash, err := h.writer.Send(ctx, chain.TxRequest{
		To:          h.Address,
		Value:       opts.Value,
		Data:        data,
		GasFallback: opts.GasFallback,
	})
	if err != nil {
		return common.Hash{}, fmt.Errorf("%s: %w", method, err)
	}
	return hash, nil
}

// Transact is Write followed by WaitForReceipt.
func (h *Handle) Transact(ctx context.Context, opts TxOpts, method string, args ...interface{}) (*chain.Receipt, error) {
	hash, err := h.Write(ctx, opts, method, args...)
	if err != nil {
		return nil, err
	}
	return h.writer.WaitForReceipt(ctx, hash)
}

// From returns the signer address, or the zero address for read-only handles.
func (h *Handle) From() common.Address {
	if h.writer == nil {
		return common.Address{}
	}
	return h.writer.From()
}

func (h *Handle) unpack(method string, out []byte) ([]interface{}, error) {
	m, ok := h.ABI.Methods[method]
	if !ok {
		return nil, fmt.Errorf("method %q not in ABI", method)
	}
	if len(m.Outputs) == 0 {
		return nil, nil
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%s at %s: %w", method, h.Address.Hex(), ErrNoCode)
	}
	vals, err := h.ABI.Unpack(method, out)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", method, err)
	}
	return vals, nil
}

// Deploy broadcasts art's bytecode with the packed constructor args and
// returns the tx hash and the address the contract will live at.
func Deploy(ctx context.Context, w *chain.Writer, art *Artifact, gasFallback uint64, args ...interface{}) (common.Hash, common.Address, error) {
	if len(art.Bytecode) == 0 {
		return common.Hash{}, common.Address{}, ErrNoBytecode
	}
	packed, err := art.ABI.Pack("", args...)
	if err != nil {
		return common.Hash{}, common.Address{}, fmt.Errorf("encoding constructor args: %w", err)
	}
	return w.Deploy(ctx, art.Bytecode, packed, gasFallback)
}

// --- typed result helpers ---

func one(vals []interface{}, err error) (interface{}, error) {
	if err != nil {
		return nil, err
	}
	if len(vals) != 1 {
		return nil, fmt.Errorf("expected 1 output, got %d", len(vals))
	}
	return vals[0], nil
}

func asBig(vals []interface{}, err error) (*big.Int, error) {
	v, err := one(vals, err)
	if err != nil {
		return nil, err
	}
	n, ok := v.(*big.Int)
	if !ok {
		return nil, fmt.Errorf("unexpected output type %T", v)
	}
	return n, nil
}

func asString(vals []interface{}, err error) (string, error) {
	v, err := one(vals, err)
	if err != nil {
		return "", err
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("unexpected output type %T", v)
	}
	return s, nil
}

func asAddress(vals []interface{}, err error) (common.Address, error) {
	v, err := one(vals, err)
	if err != nil {
		return common.Address{}, err
	}
	a, ok := v.(common.Address)
	if !ok {
		return common.Address{}, fmt.Errorf("unexpected output type %T", v)
	}
	return a, nil
}

func asBool(vals []interface{}, err error) (bool, error) {
	v, err := one(vals, err)
	if err != nil {
		return false, err
	}
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("unexpected output type %T", v)
	}
	return b, nil
}
