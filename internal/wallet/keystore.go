package wallet

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/99designs/keyring"
)

const keychainService = "tokensale"

// ErrNoKey is returned when no private key is configured and none is
// stored under the requested name.
var ErrNoKey = errors.New("no signing key configured")

// Keystore keeps private keys in the OS keychain.
type Keystore struct {
	ring keyring.Keyring
}

// NewKeystore wraps an already opened keyring.
func NewKeystore(ring keyring.Keyring) *Keystore {
	return &Keystore{ring: ring}
}

// DefaultKeystore opens the OS keychain. On Linux without a desktop
// session it falls back to an encrypted file under dir/keys whose
// password comes from TOKENSALE_KEYRING_PASSWORD or a terminal prompt.
func DefaultKeystore(dir string) (*Keystore, error) {
	cfg := keyring.Config{
		ServiceName:              keychainService,
		KeychainTrustApplication: true,
		FileDir:                  filepath.Join(dir, "keys"),
		FilePasswordFunc:         keyring.TerminalPrompt,
	}
	if pw := os.Getenv("TOKENSALE_KEYRING_PASSWORD"); pw != "" {
		cfg.FilePasswordFunc = keyring.FixedStringPrompt(pw)
	}
	if runtime.GOOS == "linux" {
		cfg.AllowedBackends = []keyring.BackendType{
			keyring.SecretServiceBackend,
			keyring.KWalletBackend,
			keyring.FileBackend,
		}
	}

	ring, err := keyring.Open(cfg)
	if err != nil {
		cfg.AllowedBackends = []keyring.BackendType{keyring.FileBackend}
		if ring, err = keyring.Open(cfg); err != nil {
			return nil, fmt.Errorf("opening keychain: %w", err)
		}
	}
	return &Keystore{ring: ring}, nil
}

func ref(name string) string { return keychainService + "." + name }

// Store saves hexKey under name after checking it parses.
func (k *Keystore) Store(name, hexKey string) error {
	if strings.TrimSpace(name) == "" {
		return errors.New("key name is empty")
	}
	hexKey = normaliseHexKey(hexKey)
	if _, err := parseKey(hexKey); err != nil {
		return err
	}
	if err := k.ring.Set(keyring.Item{Key: ref(name), Data: []byte(hexKey), Label: "tokensale " + name}); err != nil {
		return fmt.Errorf("keychain store: %w", err)
	}
	return nil
}

// Retrieve returns the key stored under name. A missing entry wraps ErrNoKey.
func (k *Keystore) Retrieve(name string) (string, error) {
	item, err := k.ring.Get(ref(name))
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return "", fmt.Errorf("key %q: %w", name, ErrNoKey)
	}
	if err != nil {
		return "", fmt.Errorf("keychain retrieve: %w", err)
	}
	return string(item.Data), nil
}

// Delete removes the key stored under name.
func (k *Keystore) Delete(name string) error {
	if err := k.ring.Remove(ref(name)); err != nil {
		if errors.Is(err, keyring.ErrKeyNotFound) {
			return fmt.Errorf("key %q: %w", name, ErrNoKey)
		}
		return fmt.Errorf("keychain delete: %w", err)
	}
	return nil
}

// Names lists the stored key names, sorted.
func (k *Keystore) Names() ([]string, error) {
	keys, err := k.ring.Keys()
	if err != nil {
		return nil, fmt.Errorf("keychain list: %w", err)
	}
	prefix := keychainService + "."
	var out []string
	for _, key := range keys {
		if name, ok := strings.CutPrefix(key, prefix); ok {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out, nil
}
