package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/exp/slog"

	"pixelvault/internal/domain/session"
)

type SessionRepository struct {
	pool *pgxpool.Pool
	log  *slog.Logger
}

func NewSessionRepository(pool *pgxpool.Pool, log *slog.Logger) *SessionRepository {
	return &SessionRepository{
		pool: pool,
		log:  log.With("component", "session_repository"),
	}
}

func (r *SessionRepository) Create(ctx context.Context, accountID int, tokenHash string, expiresAt time.Time) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO sessions (account_id, token_hash, expires_at)
         VALUES ($1, decode($2, 'hex'), $3)`,
		accountID, tokenHash, expiresAt)
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

func (r *SessionRepository) Get(ctx context.Context, tokenHash string) (session.Record, error) {
	var rec session.Record
	err := r.pool.QueryRow(ctx,
		`SELECT account_id, unlocked, expires_at FROM sessions
         WHERE token_hash = decode($1, 'hex') AND expires_at > NOW()`,
		tokenHash).Scan(&rec.AccountID, &rec.Unlocked, &rec.ExpiresAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return session.Record{}, session.ErrNotAuthenticated
		}
		return session.Record{}, fmt.Errorf("get session: %w", err)
	}
	return rec, nil
}

// SetUnlocked блокирует строку аккаунта FOR SHARE в том же порядке, что и
// ротация (accounts, затем sessions), и сверяет хэш мастер-пароля. Ротация,
// зафиксированная после проверки пароля, оставляет сессию заблокированной.
func (r *SessionRepository) SetUnlocked(ctx context.Context, tokenHash, masterHash string) error {
	return withTx(ctx, r.pool, func(tx pgx.Tx) error {
		var accountID int
		err := tx.QueryRow(ctx,
			`SELECT account_id FROM sessions
             WHERE token_hash = decode($1, 'hex') AND expires_at > NOW()`,
			tokenHash).Scan(&accountID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return session.ErrNotAuthenticated
			}
			return fmt.Errorf("find session: %w", err)
		}

		var current string
		err = tx.QueryRow(ctx, `SELECT master_hash FROM accounts WHERE id = $1 FOR SHARE`, accountID).Scan(&current)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return session.ErrNotAuthenticated
			}
			return fmt.Errorf("lock account: %w", err)
		}
		if current != masterHash {
			return session.ErrUnlockDenied
		}

		tag, err := tx.Exec(ctx,
			`UPDATE sessions SET unlocked = TRUE
             WHERE token_hash = decode($1, 'hex') AND expires_at > NOW()`,
			tokenHash)
		if err != nil {
			return fmt.Errorf("unlock session: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return session.ErrNotAuthenticated
		}
		return nil
	})
}

func (r *SessionRepository) Delete(ctx context.Context, tokenHash string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM sessions WHERE token_hash = decode($1, 'hex')`, tokenHash)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (r *SessionRepository) LockAccount(ctx context.Context, accountID int) (int64, error) {
	return lockSessions(ctx, r.pool, accountID)
}

func (r *SessionRepository) DeleteExpired(ctx context.Context) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM sessions WHERE expires_at <= NOW()`)
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}
	return tag.RowsAffected(), nil
}

// lockSessions сбрасывает флаг unlocked у всех сессий аккаунта.
func lockSessions(ctx context.Context, db execer, accountID int) (int64, error) {
	tag, err := db.Exec(ctx, `UPDATE sessions SET unlocked = FALSE WHERE account_id = $1 AND unlocked`, accountID)
	if err != nil {
		return 0, fmt.Errorf("lock sessions: %w", err)
	}
	return tag.RowsAffected(), nil
}
