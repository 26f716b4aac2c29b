package crypto

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/hkdf"
)

const (
	// SaltSize - длина соли аккаунта, которую выдает сервер.
	SaltSize = 16
	KeySize  = 32

	entryKeyInfo = "pixelvault/entry/v1"
)

var (
	ErrEmptySecret = errors.New("master secret is empty")
	ErrInvalidSalt = errors.New("invalid kdf salt")
)

// Params - параметры argon2id.
type Params struct {
	Time    uint32
	Memory  uint32 // KiB
	Threads uint8
}

// DefaultParams возвращает рабочие параметры: t=1, m=64MiB, p=4.
func DefaultParams() Params {
	return Params{
		Time:    1,
		Memory:  64 * 1024,
		Threads: 4,
	}
}

// DeriveKey выводит ключ шифрования записей из мастер-пароля и соли аккаунта.
// Одинаковые пароль и соль всегда дают одинаковый ключ.
func DeriveKey(secret string, salt []byte, p Params) ([]byte, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}
	if len(salt) < SaltSize {
		return nil, fmt.Errorf("%w: got %d bytes", ErrInvalidSalt, len(salt))
	}
	if p.Time == 0 || p.Memory == 0 || p.Threads == 0 {
		return nil, fmt.Errorf("invalid kdf params %+v", p)
	}

	ikm := argon2.IDKey([]byte(secret), salt, p.Time, p.Memory, p.Threads, KeySize)
	defer ClearMemory(ikm)

	key := make([]byte, KeySize)
	if _, err := io.ReadFull(hkdf.New(sha256.New, ikm, nil, []byte(entryKeyInfo)), key); err != nil {
		return nil, fmt.Errorf("hkdf: %w", err)
	}
	return key, nil
}
