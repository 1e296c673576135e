package cryptox

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/mini-page/Secura/internal/common"
)

// MasterKeyProvider resolves the process-wide 256-bit master key exactly
// once. Resolution order: explicit operator-supplied base64 key material,
// then a previously persisted secret file, then a freshly generated key that
// is persisted before first use so a restart decrypts existing files.
//
// There is no rotation mechanism: replacing the key silently orphans every
// previously encrypted file.
type MasterKeyProvider struct {
	envKey     string // base64, may be empty
	secretPath string

	once sync.Once
	key  []byte
	err  error
}

// NewMasterKeyProvider builds a provider. envKey is the raw base64 value of
// the operator override (usually from the environment); secretPath is the
// restricted-access file the key is persisted to.
func NewMasterKeyProvider(envKey, secretPath string) *MasterKeyProvider {
	return &MasterKeyProvider{envKey: envKey, secretPath: secretPath}
}

// Key returns the master key, resolving it on first call. Any failure to
// read, decode or persist the key is returned on every call and must be
// treated as fatal at startup.
func (p *MasterKeyProvider) Key() ([]byte, error) {
	p.once.Do(func() {
		p.key, p.err = p.resolve()
	})
	return p.key, p.err
}

func (p *MasterKeyProvider) resolve() ([]byte, error) {
	if p.envKey != "" {
		key, err := decodeKey(p.envKey)
		if err != nil {
			return nil, fmt.Errorf("master key from environment: %w", err)
		}
		return key, nil
	}

	data, err := os.ReadFile(p.secretPath)
	if err == nil {
		key, err := decodeKey(string(data))
		if err != nil {
			return nil, fmt.Errorf("master key file %s: %w", p.secretPath, err)
		}
		return key, nil
	}
	if !os.IsNotExist(err) {
		return nil, fmt.Errorf("read master key file: %w", err)
	}

	key := common.GenerateRandByteArray(KeySize)
	if err := p.persist(key); err != nil {
		return nil, err
	}
	return key, nil
}

func (p *MasterKeyProvider) persist(key []byte) error {
	dir := filepath.Dir(p.secretPath)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}
	encoded := base64.StdEncoding.EncodeToString(key)
	if err := os.WriteFile(p.secretPath, []byte(encoded), 0o600); err != nil {
		return fmt.Errorf("write master key file: %w", err)
	}
	return nil
}

func decodeKey(encoded string) ([]byte, error) {
	key, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("invalid base64: %w", err)
	}
	if len(key) != KeySize {
		return nil, fmt.Errorf("expected %d key bytes, got %d", KeySize, len(key))
	}
	return key, nil
}
