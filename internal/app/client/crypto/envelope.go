package crypto

import (
	"encoding/base64"
	"errors"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"

	"pixelvault/internal/domain/entry"
)

const envelopeVersion byte = 0x01

var (
	// ErrDecryptionFailed - неверный ключ, подмена, обрезка или мусор на входе.
	// Причину намеренно не уточняем.
	ErrDecryptionFailed = errors.New("decryption failed")
	ErrInvalidPayload   = entry.ErrInvalidPayload
)

// Seal шифрует открытый текст записи. Тип записи идет в AAD, поэтому
// шифротекст нельзя выдать за запись другого типа.
//
// Формат: base64(version || nonce(24) || XChaCha20-Poly1305(plaintext)).
func Seal(key []byte, kind entry.Kind, plaintext []byte) (string, error) {
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return "", fmt.Errorf("init aead: %w", err)
	}

	nonce, err := GenerateRandomBytes(chacha20poly1305.NonceSizeX)
	if err != nil {
		return "", err
	}

	out := make([]byte, 0, 1+len(nonce)+len(plaintext)+aead.Overhead())
	out = append(out, envelopeVersion)
	out = append(out, nonce...)
	out = aead.Seal(out, nonce, plaintext, []byte(kind))

	return base64.StdEncoding.EncodeToString(out), nil
}

// Open расшифровывает результат Seal. Любая ошибка - ErrDecryptionFailed.
func Open(key []byte, kind entry.Kind, blob string) ([]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(blob)
	if err != nil {
		return nil, ErrDecryptionFailed
	}
	if len(raw) < 1+chacha20poly1305.NonceSizeX+chacha20poly1305.Overhead || raw[0] != envelopeVersion {
		return nil, ErrDecryptionFailed
	}

	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, ErrDecryptionFailed
	}

	nonce := raw[1 : 1+chacha20poly1305.NonceSizeX]
	plaintext, err := aead.Open(nil, nonce, raw[1+chacha20poly1305.NonceSizeX:], []byte(kind))
	if err != nil {
		return nil, ErrDecryptionFailed
	}
	return plaintext, nil
}
