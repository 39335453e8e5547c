package contract

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// ErrNoBytecode is returned for artifacts that cannot be deployed
// (interfaces, abstract contracts, ABI-only files).
var ErrNoBytecode = errors.New("artifact has no deployable bytecode")

// Artifact holds the ABI and deployment bytecode of a compiled contract.
type Artifact struct {
	ContractName string
	ABI          abi.ABI
	Bytecode     []byte
}

// LoadArtifact reads a Hardhat or Foundry artifact JSON file. It fails if
// the file has no "abi" array or no bytecode.
func LoadArtifact(path string) (*Artifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read artifact file: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("artifact file is empty: %s", path)
	}

	var raw struct {
		ContractName string          `json:"contractName"`
		ABI          json.RawMessage `json:"abi"`
		Bytecode     json.RawMessage `json:"bytecode"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		if bytes.TrimSpace(data)[0] == '[' {
			return nil, fmt.Errorf("%s is a raw ABI array, not an artifact: %w", path, ErrNoBytecode)
		}
		return nil, fmt.Errorf("invalid artifact JSON: %w", err)
	}

	if len(raw.ABI) < 2 || raw.ABI[0] != '[' {
		return nil, fmt.Errorf("artifact has no valid \"abi\" array: %s", path)
	}
	parsed, err := abi.JSON(bytes.NewReader(raw.ABI))
	if err != nil {
		return nil, fmt.Errorf("parsing artifact ABI: %w", err)
	}
	if len(parsed.Methods) == 0 && len(parsed.Events) == 0 {
		return nil, fmt.Errorf("ABI has no functions or events: %s", path)
	}

	if len(raw.Bytecode) == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrNoBytecode)
	}
	bcHex, err := extractBytecodeHex(raw.Bytecode)
	if err != nil {
		return nil, fmt.Errorf("extracting bytecode from artifact: %w", err)
	}
	if bcHex == "" || bcHex == "0x" {
		return nil, fmt.Errorf("%s: %w", path, ErrNoBytecode)
	}
	if !strings.HasPrefix(bcHex, "0x") {
		bcHex = "0x" + bcHex
	}
	if strings.Contains(bcHex, "__") {
		return nil, fmt.Errorf("artifact bytecode has unlinked library placeholders: %s", path)
	}
	code, err := hexutil.Decode(bcHex)
	if err != nil {
		return nil, fmt.Errorf("invalid bytecode hex in artifact: %w", err)
	}

	return &Artifact{ContractName: raw.ContractName, ABI: parsed, Bytecode: code}, nil
}

// extractBytecodeHex handles the two common artifact formats:
//   - Hardhat:  "bytecode": "0x608060..."
//   - Foundry:  "bytecode": {"object": "0x608060..."}
func extractBytecodeHex(raw json.RawMessage) (string, error) {
	var str string
	if err := json.Unmarshal(raw, &str); err == nil {
		return strings.TrimSpace(str), nil
	}

	var obj struct {
		Object string `json:"object"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil && obj.Object != "" {
		return strings.TrimSpace(obj.Object), nil
	}

	return "", fmt.Errorf("bytecode field is neither a hex string nor a {\"object\":\"0x...\"} object")
}
