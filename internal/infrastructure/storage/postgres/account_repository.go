package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/exp/slog"

	"pixelvault/internal/domain/account"
)

const accountColumns = `id, handle, contact, secret_hash, master_hash, kdf_salt, created_at, updated_at`

type AccountRepository struct {
	pool *pgxpool.Pool
	log  *slog.Logger
}

func NewAccountRepository(pool *pgxpool.Pool, log *slog.Logger) *AccountRepository {
	return &AccountRepository{
		pool: pool,
		log:  log.With("component", "account_repository"),
	}
}

func (r *AccountRepository) Create(ctx context.Context, a *account.Account) error {
	const query = `
		INSERT INTO accounts (handle, contact, secret_hash, master_hash, kdf_salt)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`

	err := r.pool.QueryRow(ctx, query,
		a.Handle, a.Contact, a.SecretHash, a.MasterHash, a.KDFSalt,
	).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return account.ErrDuplicateIdentity
		}
		r.log.Error("failed to create account", "handle", a.Handle, "error", err)
		return fmt.Errorf("create account: %w", err)
	}
	return nil
}

func (r *AccountRepository) FindByIdentity(ctx context.Context, identity string) (account.Account, error) {
	const query = `SELECT ` + accountColumns + ` FROM accounts
		WHERE handle = $1 OR contact = $1
		ORDER BY (handle = $1) DESC
		LIMIT 1`

	return r.scanOne(r.pool.QueryRow(ctx, query, identity))
}

func (r *AccountRepository) FindByID(ctx context.Context, id int) (account.Account, error) {
	const query = `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`
	return r.scanOne(r.pool.QueryRow(ctx, query, id))
}

func (r *AccountRepository) UpdateProfile(ctx context.Context, id int, handle, contact string) (account.Account, error) {
	const query = `
		UPDATE accounts SET handle = $2, contact = $3, updated_at = GREATEST(NOW(), updated_at)
		WHERE id = $1
		RETURNING ` + accountColumns

	a, err := r.scanOne(r.pool.QueryRow(ctx, query, id, handle, contact))
	if err != nil && isUniqueViolation(err) {
		return account.Account{}, account.ErrDuplicateIdentity
	}
	return a, err
}

func (r *AccountRepository) UpdateSecretHash(ctx context.Context, id int, hash string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE accounts SET secret_hash = $2, updated_at = GREATEST(NOW(), updated_at) WHERE id = $1`,
		id, hash)
	if err != nil {
		return fmt.Errorf("update secret hash: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return account.ErrNotFound
	}
	return nil
}

func (r *AccountRepository) Delete(ctx context.Context, id int) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM accounts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return account.ErrNotFound
	}
	return nil
}

func (r *AccountRepository) scanOne(row pgx.Row) (account.Account, error) {
	var a account.Account
	err := row.Scan(&a.ID, &a.Handle, &a.Contact, &a.SecretHash, &a.MasterHash,
		&a.KDFSalt, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return account.Account{}, account.ErrNotFound
		}
		if isUniqueViolation(err) {
			return account.Account{}, err
		}
		return account.Account{}, fmt.Errorf("scan account: %w", err)
	}
	return a, nil
}
