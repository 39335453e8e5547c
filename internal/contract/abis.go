package contract

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Mohsinsiddi/tokensale/internal/config"
	"github.com/ethereum/go-ethereum/accounts/abi"
)

// Contract kinds with an embedded ABI.
const (
	KindToken = config.KindToken
	KindNFT   = config.KindNFT
	KindSale  = config.KindSale
)

// Builtin describes a contract whose ABI is embedded in the binary. Each
// one registers itself via init() in its own <name>_abi.go file.
type Builtin struct {
	Kind        string  // machine key, e.g. "token"
	Name        string  // contract name, e.g. "MyToken"
	Description string  // one-line summary
	ABI         abi.ABI // parsed ABI, ready to use
}

var builtinRegistry = map[string]Builtin{}

// RegisterBuiltin adds a built-in ABI to the global registry.
func RegisterBuiltin(b Builtin) {
	builtinRegistry[b.Kind] = b
}

// GetBuiltin returns a built-in by kind. ok is false if not found.
func GetBuiltin(kind string) (Builtin, bool) {
	b, ok := builtinRegistry[kind]
	return b, ok
}

// AllBuiltins returns all registered built-ins sorted by kind.
func AllBuiltins() []Builtin {
	out := make([]Builtin, 0, len(builtinRegistry))
	for _, b := range builtinRegistry {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Kind < out[j].Kind })
	return out
}

func mustParseABI(s string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(s))
	if err != nil {
		panic(fmt.Sprintf("contract: invalid embedded ABI: %v", err))
	}
	return parsed
}
