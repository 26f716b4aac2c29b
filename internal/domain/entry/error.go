package entry

import (
	"errors"
)

var (
	ErrNotFound         = errors.New("entry not found")
	ErrInvalidKind      = errors.New("invalid entry kind")
	ErrPayloadTooLarge  = errors.New("entry payload too large")
	ErrEmptyCiphertext  = errors.New("entry ciphertext is empty")
	ErrInvalidPayload   = errors.New("invalid entry payload")
	ErrRotationConflict = errors.New("entry set changed during rotation")
)
