package fixtures

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// WriteArtifact writes a Hardhat-style artifact for contractName under
// dir/rel and returns its path. abiJSON must be a JSON array.
func WriteArtifact(t *testing.T, dir, rel, contractName, abiJSON, bytecode string) string {
	t.Helper()
	path := filepath.Join(dir, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))

	data, err := json.Marshal(map[string]interface{}{
		"_format":      "hh-sol-artifact-1",
		"contractName": contractName,
		"abi":          json.RawMessage(abiJSON),
		"bytecode":     bytecode,
	})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

// ArtifactsDir returns TOKENSALE_ARTIFACTS_DIR, skipping the test when it
// is not set. It points at a compiled Hardhat project's artifacts/contracts.
func ArtifactsDir(t *testing.T) string {
	t.Helper()
	dir := os.Getenv("TOKENSALE_ARTIFACTS_DIR")
	if dir == "" {
		t.Skip("TOKENSALE_ARTIFACTS_DIR not set")
	}
	return dir
}
