package contract

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testABI = `[{"type":"constructor","inputs":[{"name":"_ratio","type":"uint256"}],"stateMutability":"nonpayable"},` +
	`{"type":"function","name":"ratio","inputs":[],"outputs":[{"name":"","type":"uint256"}],"stateMutability":"view"}]`

func writeArtifact(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "Artifact.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadArtifactHardhat(t *testing.T) {
	path := writeArtifact(t, `{"contractName":"TokenSale","abi":`+testABI+`,"bytecode":"0x6080604052"}`)

	art, err := LoadArtifact(path)
	require.NoError(t, err)
	assert.Equal(t, "TokenSale", art.ContractName)
	assert.Equal(t, []byte{0x60, 0x80, 0x60, 0x40, 0x52}, art.Bytecode)
	assert.Len(t, art.ABI.Constructor.Inputs, 1)
	assert.Contains(t, art.ABI.Methods, "ratio")
}

func TestLoadArtifactFoundry(t *testing.T) {
	path := writeArtifact(t, `{"abi":`+testABI+`,"bytecode":{"object":"6080","linkReferences":{}}}`)

	art, err := LoadArtifact(path)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x60, 0x80}, art.Bytecode)
}

func TestLoadArtifactErrors(t *testing.T) {
	cases := []struct {
		name       string
		body       string
		noBytecode bool
	}{
		{name: "empty", body: "  \n"},
		{name: "invalid json", body: "{not json"},
		{name: "raw abi array", body: testABI, noBytecode: true},
		{name: "missing abi", body: `{"bytecode":"0x6080"}`},
		{name: "abi without functions", body: `{"abi":[{"type":"constructor","inputs":[]}],"bytecode":"0x6080"}`},
		{name: "missing bytecode", body: `{"abi":` + testABI + `}`, noBytecode: true},
		{name: "interface", body: `{"abi":` + testABI + `,"bytecode":"0x"}`, noBytecode: true},
		{name: "unlinked library", body: `{"abi":` + testABI + `,"bytecode":"0x6080__$abc$__"}`},
		{name: "bad hex", body: `{"abi":` + testABI + `,"bytecode":"0xzz"}`},
		{name: "bytecode wrong shape", body: `{"abi":` + testABI + `,"bytecode":42}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := LoadArtifact(writeArtifact(t, tc.body))
			require.Error(t, err)
			assert.Equal(t, tc.noBytecode, errors.Is(err, ErrNoBytecode), err.Error())
		})
	}
}

func TestLoadArtifactMissingFile(t *testing.T) {
	_, err := LoadArtifact(filepath.Join(t.TempDir(), "nope.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
