package wallet

import (
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/Mohsinsiddi/tokensale/internal/config"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
)

// Signer signs transactions with a single private key.
type Signer struct {
	key     *ecdsa.PrivateKey
	address common.Address
}

// NewSigner parses a hex private key, with or without 0x.
func NewSigner(hexKey string) (*Signer, error) {
	key, err := parseKey(normaliseHexKey(hexKey))
	if err != nil {
		return nil, err
	}
	return &Signer{key: key, address: crypto.PubkeyToAddress(key.PublicKey)}, nil
}

// Address returns the account the signer controls.
func (s *Signer) Address() common.Address { return s.address }

// SignTx signs tx for chainID with the latest signer for that chain.
func (s *Signer) SignTx(tx *types.Transaction, chainID *big.Int) (*types.Transaction, error) {
	if chainID == nil || chainID.Sign() <= 0 {
		return nil, errors.New("signing transaction: chain ID not set")
	}
	signed, err := types.SignTx(tx, types.LatestSignerForChainID(chainID), s.key)
	if err != nil {
		return nil, fmt.Errorf("signing transaction: %w", err)
	}
	return signed, nil
}

// ResolveSigner picks the signing key for cfg: the private key from the
// environment first, then the keychain entry named by cfg.KeyName.
func ResolveSigner(cfg *config.Config, ks *Keystore) (*Signer, error) {
	if cfg.PrivateKey != "" {
		return NewSigner(cfg.PrivateKey)
	}
	if cfg.KeyName == "" || ks == nil {
		return nil, fmt.Errorf("%w: set TOKENSALE_PRIVATE_KEY or run 'tokensale key import'", ErrNoKey)
	}
	hexKey, err := ks.Retrieve(cfg.KeyName)
	if err != nil {
		return nil, err
	}
	return NewSigner(hexKey)
}

func parseKey(hexKey string) (*ecdsa.PrivateKey, error) {
	if hexKey == "" {
		return nil, ErrNoKey
	}
	key, err := crypto.HexToECDSA(hexKey)
	if err != nil {
		return nil, fmt.Errorf("invalid private key: %w", err)
	}
	return key, nil
}

// normaliseHexKey strips whitespace and any 0x prefix.
func normaliseHexKey(k string) string {
	k = strings.TrimSpace(k)
	if len(k) >= 2 && k[0] == '0' && (k[1] == 'x' || k[1] == 'X') {
		k = k[2:]
	}
	return k
}
