package crypto

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"
)

const (
	passwordCharset       = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%^&*()_+-=[]{}|;:,.<>?"
	DefaultPasswordLength = 16
	maxPasswordLength     = 1024
)

// ClearMemory затирает чувствительные данные из памяти
func ClearMemory(data []byte) {
	for i := range data {
		data[i] = 0
	}
}

// GenerateRandomBytes генерирует криптографически безопасные случайные байты
func GenerateRandomBytes(size int) ([]byte, error) {
	bytes := make([]byte, size)
	if _, err := io.ReadFull(rand.Reader, bytes); err != nil {
		return nil, fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return bytes, nil
}

// GeneratePassword собирает пароль из равновероятных символов набора.
func GeneratePassword(length int) (string, error) {
	if length <= 0 || length > maxPasswordLength {
		return "", fmt.Errorf("password length must be in 1..%d", maxPasswordLength)
	}

	max := big.NewInt(int64(len(passwordCharset)))
	out := make([]byte, length)
	for i := range out {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to generate password: %w", err)
		}
		out[i] = passwordCharset[n.Int64()]
	}
	return string(out), nil
}
