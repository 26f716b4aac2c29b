package crypto

import (
	"errors"
	"fmt"
	"sync"

	"pixelvault/internal/domain/entry"
)

var ErrKeyringLocked = errors.New("keyring is locked")

// Keyring держит ключ записей одной разблокированной сессии,
// чтобы argon2 считался один раз на разблокировку.
type Keyring struct {
	key []byte
	mu  sync.RWMutex
}

// NewKeyring выводит ключ из мастер-пароля.
func NewKeyring(secret string, salt []byte, p Params) (*Keyring, error) {
	key, err := DeriveKey(secret, salt, p)
	if err != nil {
		return nil, err
	}
	return &Keyring{key: key}, nil
}

// KeyringFromKey оборачивает готовый ключ (например, из кэша). Ключ копируется.
func KeyringFromKey(key []byte) (*Keyring, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("key must be %d bytes, got %d", KeySize, len(key))
	}
	k := make([]byte, KeySize)
	copy(k, key)
	return &Keyring{key: k}, nil
}

func (k *Keyring) Encrypt(kind entry.Kind, plaintext []byte) (string, error) {
	k.mu.RLock()
	defer k.mu.RUnlock()

	if k.key == nil {
		return "", ErrKeyringLocked
	}
	return Seal(k.key, kind, plaintext)
}

func (k *Keyring) Decrypt(kind entry.Kind, blob string) ([]byte, error) {
	k.mu.RLock()
	defer k.mu.RUnlock()

	if k.key == nil {
		return nil, ErrKeyringLocked
	}
	return Open(k.key, kind, blob)
}

// SealPayload сериализует и шифрует запись.
func (k *Keyring) SealPayload(p entry.Payload) (string, error) {
	raw, err := entry.MarshalPayload(p)
	if err != nil {
		return "", err
	}
	defer ClearMemory(raw)

	return k.Encrypt(p.Kind(), raw)
}

// OpenPayload расшифровывает и строго разбирает запись.
func (k *Keyring) OpenPayload(kind entry.Kind, blob string) (entry.Payload, error) {
	raw, err := k.Decrypt(kind, blob)
	if err != nil {
		return nil, err
	}
	defer ClearMemory(raw)

	return entry.UnmarshalPayload(raw, kind)
}

// Key возвращает копию ключа.
func (k *Keyring) Key() []byte {
	k.mu.RLock()
	defer k.mu.RUnlock()

	if k.key == nil {
		return nil
	}
	out := make([]byte, len(k.key))
	copy(out, k.key)
	return out
}

// Zero затирает ключ. После этого кольцо непригодно.
func (k *Keyring) Zero() {
	k.mu.Lock()
	defer k.mu.Unlock()

	ClearMemory(k.key)
	k.key = nil
}
