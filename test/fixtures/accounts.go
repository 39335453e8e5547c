package fixtures

import (
	"crypto/ecdsa"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"
)

// Well-known hardhat/anvil development accounts.
const (
	DeployerKey     = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"
	DeployerAddress = "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"
	Account2Key     = "59c6995e998f97a5a0044966f0945389dc9e86dae88c7a8412f4603b6b78690d"
	Account2Address = "0x70997970C51812dc3A010C7d01b50e0d17dc79C8"
)

// KeySigner signs with a raw ECDSA key.
type KeySigner struct {
	Key *ecdsa.PrivateKey
}

// NewKeySigner parses hexKey.
func NewKeySigner(t *testing.T, hexKey string) *KeySigner {
	t.Helper()
	key, err := crypto.HexToECDSA(hexKey)
	require.NoError(t, err)
	return &KeySigner{Key: key}
}

func (s *KeySigner) Address() common.Address { return crypto.PubkeyToAddress(s.Key.PublicKey) }

func (s *KeySigner) SignTx(tx *types.Transaction, chainID *big.Int) (*types.Transaction, error) {
	return types.SignTx(tx, types.LatestSignerForChainID(chainID), s.Key)
}
