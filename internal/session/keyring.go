package session

import (
	"errors"
	"fmt"
	"os"

	"github.com/99designs/keyring"
)

const keyringService = "smart-review"

// KeyringStorage keeps the credential entries in the operating system
// keyring, falling back to an encrypted file keyring under dir.
type KeyringStorage struct {
	ring keyring.Keyring
}

func NewKeyringStorage(dir, password string) (*KeyringStorage, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName:              keyringService,
		KeychainTrustApplication: true,
		FileDir:                  dir,
		FilePasswordFunc:         keyring.FixedStringPrompt(password),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open keyring: %w", err)
	}
	return &KeyringStorage{ring: ring}, nil
}

func (ks *KeyringStorage) Get(key string) ([]byte, error) {
	item, err := ks.ring.Get(key)
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s from keyring: %w", key, err)
	}
	return item.Data, nil
}

func (ks *KeyringStorage) Set(key string, value []byte) error {
	err := ks.ring.Set(keyring.Item{
		Key:   key,
		Data:  value,
		Label: "Smart Review " + key,
	})
	if err != nil {
		return fmt.Errorf("failed to write %s to keyring: %w", key, err)
	}
	return nil
}

func (ks *KeyringStorage) Remove(key string) error {
	err := ks.ring.Remove(key)
	if err == nil || errors.Is(err, keyring.ErrKeyNotFound) || errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("failed to remove %s from keyring: %w", key, err)
}
