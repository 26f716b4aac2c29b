package entry

import (
	"context"
)

type Repository interface {
	Create(ctx context.Context, rec *Record) error
	Get(ctx context.Context, accountID int, id string) (Record, error)
	List(ctx context.Context, accountID int) ([]Record, error)
	Update(ctx context.Context, accountID int, id, ciphertext string) (Record, error)
	Delete(ctx context.Context, accountID int, id string) error
	DeleteAll(ctx context.Context, accountID int) (int64, error)
	CountByKind(ctx context.Context, accountID int) (map[Kind]int64, error)
}
