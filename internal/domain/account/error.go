package account

import "errors"

var (
	ErrNotFound          = errors.New("account not found")
	ErrInvalidCredential = errors.New("invalid credentials")
	ErrDuplicateIdentity = errors.New("handle or contact already taken")
	ErrWeakSecret        = errors.New("secret is too short")
	ErrInvalidInput      = errors.New("invalid input")
)

type DomainError struct {
	Err     error
	Message string
	Code    string
}

func (e *DomainError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Err.Error()
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

func invalidInput(code, msg string) error {
	return &DomainError{Err: ErrInvalidInput, Message: msg, Code: code}
}

func weakSecret(code string) error {
	return &DomainError{
		Err:     ErrWeakSecret,
		Message: "secret must be at least 6 characters",
		Code:    code,
	}
}
