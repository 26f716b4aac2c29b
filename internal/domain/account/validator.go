package account

import (
	"fmt"
	"net/mail"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	MinHandleLen  = 3
	MaxHandleLen  = 50
	MaxContactLen = 100
	MinSecretLen  = 6
	// bcrypt не принимает пароли длиннее 72 байт
	MaxSecretBytes = 72
)

// Validator - интерфейс для валидации данных аккаунта
type Validator interface {
	ValidateRegister(req RegisterRequest) error
	ValidateProfile(handle, contact string) error
	ValidateSecret(secret string) error
}

type BasicValidator struct{}

func NewValidator() *BasicValidator {
	return &BasicValidator{}
}

// ValidateRegister валидирует данные для регистрации
func (v *BasicValidator) ValidateRegister(req RegisterRequest) error {
	if req.Handle == "" || req.Contact == "" || req.Secret == "" || req.MasterSecret == "" {
		return invalidInput("required", "all fields are required")
	}

	if err := v.ValidateProfile(req.Handle, req.Contact); err != nil {
		return err
	}

	if err := v.ValidateSecret(req.Secret); err != nil {
		return err
	}

	return v.ValidateSecret(req.MasterSecret)
}

// ValidateProfile валидирует имя пользователя и email
func (v *BasicValidator) ValidateProfile(handle, contact string) error {
	n := utf8.RuneCountInString(handle)
	if n < MinHandleLen || n > MaxHandleLen {
		return invalidInput("handle_length",
			fmt.Sprintf("handle must be %d to %d characters", MinHandleLen, MaxHandleLen))
	}

	for _, r := range handle {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' && r != '-' && r != '.' {
			return invalidInput("handle_charset", "handle can only contain letters, digits, '_', '-', '.'")
		}
	}

	if len(contact) > MaxContactLen {
		return invalidInput("contact_length",
			fmt.Sprintf("contact must be at most %d characters", MaxContactLen))
	}

	addr, err := mail.ParseAddress(contact)
	if err != nil || addr.Address != contact || !strings.Contains(contact, "@") {
		return invalidInput("contact_format", "contact must be a plain email address")
	}

	return nil
}

// ValidateSecret проверяет минимальную длину секрета
func (v *BasicValidator) ValidateSecret(secret string) error {
	if utf8.RuneCountInString(secret) < MinSecretLen {
		return weakSecret("secret_length")
	}
	if len(secret) > MaxSecretBytes {
		return invalidInput("secret_length", fmt.Sprintf("secret must be at most %d bytes", MaxSecretBytes))
	}
	return nil
}
