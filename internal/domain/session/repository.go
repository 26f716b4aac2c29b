package session

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, accountID int, tokenHash string, expiresAt time.Time) error
	// Get возвращает ErrNotAuthenticated, если сессии нет или она истекла.
	Get(ctx context.Context, tokenHash string) (Record, error)
	// SetUnlocked ставит unlocked, только если у аккаунта все еще masterHash.
	// Иначе ErrUnlockDenied.
	SetUnlocked(ctx context.Context, tokenHash, masterHash string) error
	Delete(ctx context.Context, tokenHash string) error
	LockAccount(ctx context.Context, accountID int) (int64, error)
	DeleteExpired(ctx context.Context) (int64, error)
}
