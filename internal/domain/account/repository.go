package account

import (
	"context"
)

type Repository interface {
	// Create сохраняет аккаунт и заполняет ID и временные метки.
	Create(ctx context.Context, a *Account) error
	// FindByIdentity ищет аккаунт по имени пользователя или email.
	FindByIdentity(ctx context.Context, identity string) (Account, error)
	FindByID(ctx context.Context, id int) (Account, error)
	UpdateProfile(ctx context.Context, id int, handle, contact string) (Account, error)
	UpdateSecretHash(ctx context.Context, id int, hash string) error
	Delete(ctx context.Context, id int) error
}
