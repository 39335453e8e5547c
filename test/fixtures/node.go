package fixtures

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// Handler computes a JSON-RPC result from the request params.
type Handler func(params []json.RawMessage) (interface{}, error)

// RPCError is returned to the client as a JSON-RPC error object.
type RPCError struct {
	Code    int
	Message string
	Data    string // hex revert data, optional
}

func (e *RPCError) Error() string { return e.Message }

// Call is one request received by a Node.
type Call struct {
	Method string
	Params []json.RawMessage
}

// Node is a scripted EVM JSON-RPC endpoint. Each method maps to a static
// result, a *RPCError or a Handler; unknown methods get "method not found".
type Node struct {
	*httptest.Server

	mu       sync.Mutex
	handlers map[string]interface{}
	calls    []Call
}

// NewNode starts a Node serving results. It is closed when the test ends.
func NewNode(t *testing.T, results map[string]interface{}) *Node {
	t.Helper()
	n := &Node{handlers: make(map[string]interface{}, len(results))}
	for k, v := range results {
		n.handlers[k] = v
	}
	n.Server = httptest.NewServer(http.HandlerFunc(n.serve))
	t.Cleanup(n.Close)
	return n
}

// Set replaces the response for method.
func (n *Node) Set(method string, result interface{}) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.handlers[method] = result
}

// Calls returns the requests received for method, oldest first.
func (n *Node) Calls(method string) []Call {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []Call
	for _, c := range n.calls {
		if c.Method == method {
			out = append(out, c)
		}
	}
	return out
}

type request struct {
	ID     json.RawMessage   `json:"id"`
	Method string            `json:"method"`
	Params []json.RawMessage `json:"params"`
}

func (n *Node) serve(w http.ResponseWriter, r *http.Request) {
	var req request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	n.mu.Lock()
	n.calls = append(n.calls, Call{Method: req.Method, Params: req.Params})
	h, ok := n.handlers[req.Method]
	n.mu.Unlock()

	var (
		result interface{}
		err    error
	)
	switch v := h.(type) {
	case Handler:
		result, err = v(req.Params)
	case func([]json.RawMessage) (interface{}, error):
		result, err = v(req.Params)
	case *RPCError:
		err = v
	default:
		if !ok {
			err = &RPCError{Code: -32601, Message: fmt.Sprintf("method %s not found", req.Method)}
		}
		result = v
	}

	resp := map[string]interface{}{"jsonrpc": "2.0", "id": req.ID}
	if err != nil {
		e := map[string]interface{}{"code": -32000, "message": err.Error()}
		if re, isRPC := err.(*RPCError); isRPC {
			e["code"] = re.Code
			if re.Data != "" {
				e["data"] = re.Data
			}
		}
		resp["error"] = e
	} else {
		resp["result"] = result
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp) //nolint:errcheck
}

// Receipt builds an eth_getTransactionReceipt result with every field the
// go-ethereum decoder requires. gasPrice "" omits effectiveGasPrice.
func Receipt(txHash string, status uint64, gasUsed, gasPrice string, logs ...map[string]interface{}) map[string]interface{} {
	if logs == nil {
		logs = []map[string]interface{}{}
	}
	r := map[string]interface{}{
		"type":              "0x2",
		"transactionHash":   txHash,
		"transactionIndex":  "0x0",
		"blockHash":         "0x" + repeat("b", 64),
		"blockNumber":       "0x10",
		"from":              "0xf39fd6e51aad88f6f4ce6ab8827279cfffb92266",
		"to":                nil,
		"status":            fmt.Sprintf("0x%x", status),
		"gasUsed":           gasUsed,
		"cumulativeGasUsed": gasUsed,
		"contractAddress":   nil,
		"logsBloom":         "0x" + repeat("0", 512),
		"logs":              logs,
	}
	if gasPrice != "" {
		r["effectiveGasPrice"] = gasPrice
	}
	return r
}

// Log builds a receipt log entry.
func Log(address string, topics []string, data, txHash string, index uint) map[string]interface{} {
	return map[string]interface{}{
		"address":          address,
		"topics":           topics,
		"data":             data,
		"blockNumber":      "0x10",
		"transactionHash":  txHash,
		"transactionIndex": "0x0",
		"blockHash":        "0x" + repeat("b", 64),
		"logIndex":         fmt.Sprintf("0x%x", index),
		"removed":          false,
	}
}

func repeat(s string, n int) string {
	out := make([]byte, 0, n*len(s))
	for i := 0; i < n; i++ {
		out = append(out, s...)
	}
	return string(out)
}

// ViewHandler answers eth_call by method: the selector in the call data is
// looked up in a and the values in results[method] are ABI-encoded as its
// outputs. A nil entry returns empty data; a missing one reverts.
func ViewHandler(a abi.ABI, results map[string][]interface{}) Handler {
	return func(params []json.RawMessage) (interface{}, error) {
		var msg struct {
			Input string `json:"input"`
			Data  string `json:"data"`
		}
		if len(params) == 0 {
			return nil, &RPCError{Code: -32602, Message: "missing call object"}
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
			return nil, &RPCError{Code: -32602, Message: "bad call data"}
		}
		m, err := a.MethodById(data[:4])
		if err != nil {
			return nil, &RPCError{Code: 3, Message: "execution reverted"}
		}
		vals, ok := results[m.Name]
		if !ok {
			return nil, &RPCError{Code: 3, Message: "execution reverted: " + m.Name}
		}
		if vals == nil {
			return "0x", nil
		}
		out, err := m.Outputs.Pack(vals...)
		if err != nil {
			return nil, fmt.Errorf("packing %s: %w", m.Name, err)
		}
		return hexutil.Encode(out), nil
	}
}
