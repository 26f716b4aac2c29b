package session

import "errors"

var (
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrVaultLocked      = errors.New("vault is locked")
	ErrUnlockDenied     = errors.New("master secret rejected")
)
