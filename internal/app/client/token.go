package client

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// ErrNoToken - пользователь не выполнил вход.
var ErrNoToken = errors.New("токен не найден. Выполните вход: pixelvault auth login")

// TokenStore хранит токен сессии в файле с правами 0600.
type TokenStore struct {
	path string
}

func NewTokenStore(path string) *TokenStore {
	return &TokenStore{path: path}
}

// Load возвращает сохраненный токен
func (s *TokenStore) Load() (string, error) {
	tokenBytes, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", ErrNoToken
		}
		return "", fmt.Errorf("ошибка чтения токена: %w", err)
	}

	token := strings.TrimSpace(string(tokenBytes))
	if token == "" {
		return "", ErrNoToken
	}
	return token, nil
}

// Save сохраняет токен аутентификации
func (s *TokenStore) Save(token string) error {
	if err := os.WriteFile(s.path, []byte(token), 0600); err != nil {
		return fmt.Errorf("ошибка сохранения токена: %w", err)
	}
	return nil
}

// Clear удаляет токен
func (s *TokenStore) Clear() error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("ошибка удаления токена: %w", err)
	}
	return nil
}
