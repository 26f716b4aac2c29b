package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/exp/slog"

	"pixelvault/internal/domain/account"
	"pixelvault/internal/domain/entry"
	"pixelvault/internal/domain/rotation"
)

// rotationTx - то, что нужно ротации внутри транзакции.
type rotationTx interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

type RotationRepository struct {
	pool *pgxpool.Pool
	log  *slog.Logger
}

func NewRotationRepository(pool *pgxpool.Pool, log *slog.Logger) *RotationRepository {
	return &RotationRepository{
		pool: pool,
		log:  log.With("component", "rotation_repository"),
	}
}

// Rotate меняет хэш мастер-пароля, перезаписывает все шифротексты и блокирует
// сессии аккаунта в одной транзакции. Любое расхождение откатывает все.
func (r *RotationRepository) Rotate(ctx context.Context, rot account.MasterRotation, rewrites []entry.Rewrite) error {
	return withTx(ctx, r.pool, func(tx pgx.Tx) error {
		return r.rotate(ctx, tx, rot, rewrites)
	})
}

func (r *RotationRepository) rotate(ctx context.Context, tx rotationTx, rot account.MasterRotation, rewrites []entry.Rewrite) error {
	if err := lockEntries(ctx, tx, rot.AccountID); err != nil {
		return err
	}
	if err := swapMaster(ctx, tx, rot); err != nil {
		return err
	}

	ids := make([]string, 0, len(rewrites))
	for _, rw := range rewrites {
		ids = append(ids, rw.ID)
	}
	if err := matchEntrySet(ctx, tx, rot.AccountID, ids); err != nil {
		return err
	}

	if err := rewrite(ctx, tx, rot.AccountID, rewrites); err != nil {
		return err
	}
	return r.lockSessions(ctx, tx, rot.AccountID)
}

// Begin открывает ротацию. У аккаунта одна незавершенная ротация, заодно
// удаляются все просроченные.
func (r *RotationRepository) Begin(ctx context.Context, st rotation.Staging) error {
	return withTx(ctx, r.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx,
			`DELETE FROM rotations WHERE account_id = $1 OR expires_at <= NOW()`,
			st.Rotation.AccountID)
		if err != nil {
			return fmt.Errorf("drop stale rotations: %w", err)
		}

		_, err = tx.Exec(ctx,
			`INSERT INTO rotations (id, account_id, current_hash, next_hash, expires_at)
			 VALUES ($1, $2, $3, $4, $5)`,
			st.ID, st.Rotation.AccountID, st.Rotation.CurrentHash, st.Rotation.NextHash, st.ExpiresAt)
		if err != nil {
			return fmt.Errorf("create rotation: %w", err)
		}
		return nil
	})
}

// Stage сохраняет часть шифротекстов открытой ротации.
func (r *RotationRepository) Stage(ctx context.Context, accountID int, id string, rewrites []entry.Rewrite) error {
	return withTx(ctx, r.pool, func(tx pgx.Tx) error {
		return r.stage(ctx, tx, accountID, id, rewrites)
	})
}

func (r *RotationRepository) stage(ctx context.Context, tx rotationTx, accountID int, id string, rewrites []entry.Rewrite) error {
	var open bool
	err := tx.QueryRow(ctx,
		`SELECT TRUE FROM rotations
		 WHERE id = $1 AND account_id = $2 AND expires_at > NOW() FOR SHARE`,
		id, accountID).Scan(&open)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return rotation.ErrNotFound
		}
		return fmt.Errorf("find rotation: %w", err)
	}

	batch := &pgx.Batch{}
	for _, rw := range rewrites {
		batch.Queue(
			`INSERT INTO rotation_entries (rotation_id, entry_id, ciphertext) VALUES ($1, $2, $3)`,
			id, rw.ID, rw.Ciphertext)
	}

	br := tx.SendBatch(ctx, batch)
	for range rewrites {
		if _, err := br.Exec(); err != nil {
			_ = br.Close()
			if isUniqueViolation(err) {
				return fmt.Errorf("%w: entry staged twice", entry.ErrRotationConflict)
			}
			return fmt.Errorf("stage entry: %w", err)
		}
	}
	return br.Close()
}

// Commit применяет ротацию одной транзакцией под блокировкой записей аккаунта:
// сверка хэша, сверка набора записей, перезапись, блокировка сессий.
func (r *RotationRepository) Commit(ctx context.Context, accountID int, id string) (int, error) {
	var n int
	err := withTx(ctx, r.pool, func(tx pgx.Tx) error {
		var err error
		n, err = r.commit(ctx, tx, accountID, id)
		return err
	})
	if err != nil {
		return 0, err
	}
	return n, nil
}

func (r *RotationRepository) commit(ctx context.Context, tx rotationTx, accountID int, id string) (int, error) {
	if err := lockEntries(ctx, tx, accountID); err != nil {
		return 0, err
	}

	rot := account.MasterRotation{AccountID: accountID}
	err := tx.QueryRow(ctx,
		`SELECT current_hash, next_hash FROM rotations
		 WHERE id = $1 AND account_id = $2 AND expires_at > NOW() FOR UPDATE`,
		id, accountID).Scan(&rot.CurrentHash, &rot.NextHash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, rotation.ErrNotFound
		}
		return 0, fmt.Errorf("find rotation: %w", err)
	}

	if err := swapMaster(ctx, tx, rot); err != nil {
		return 0, err
	}

	rows, err := tx.Query(ctx, `SELECT entry_id FROM rotation_entries WHERE rotation_id = $1`, id)
	if err != nil {
		return 0, fmt.Errorf("list staged entries: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return 0, fmt.Errorf("collect staged entries: %w", err)
	}
	if err := matchEntrySet(ctx, tx, accountID, ids); err != nil {
		return 0, err
	}

	tag, err := tx.Exec(ctx,
		`UPDATE entries e
		 SET ciphertext = s.ciphertext, updated_at = GREATEST(NOW(), e.updated_at)
		 FROM rotation_entries s
		 WHERE s.rotation_id = $1 AND e.id::text = s.entry_id AND e.account_id = $2`,
		id, accountID)
	if err != nil {
		return 0, fmt.Errorf("apply staged entries: %w", err)
	}
	if tag.RowsAffected() != int64(len(ids)) {
		return 0, entry.ErrRotationConflict
	}

	if err := r.lockSessions(ctx, tx, accountID); err != nil {
		return 0, err
	}

	if _, err := tx.Exec(ctx, `DELETE FROM rotations WHERE id = $1`, id); err != nil {
		return 0, fmt.Errorf("close rotation: %w", err)
	}
	return len(ids), nil
}

func (r *RotationRepository) Abort(ctx context.Context, accountID int, id string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM rotations WHERE id = $1 AND account_id = $2`, id, accountID)
	if err != nil {
		return fmt.Errorf("delete rotation: %w", err)
	}
	return nil
}

func (r *RotationRepository) lockSessions(ctx context.Context, tx rotationTx, accountID int) error {
	locked, err := lockSessions(ctx, tx, accountID)
	if err != nil {
		return err
	}
	r.log.Debug("sessions locked after rotation", "account_id", accountID, "count", locked)
	return nil
}

// swapMaster меняет хэш, только если он не сменился с момента проверки пароля.
func swapMaster(ctx context.Context, tx rotationTx, rot account.MasterRotation) error {
	tag, err := tx.Exec(ctx,
		`UPDATE accounts SET master_hash = $3, updated_at = GREATEST(NOW(), updated_at)
		 WHERE id = $1 AND master_hash = $2`,
		rot.AccountID, rot.CurrentHash, rot.NextHash)
	if err != nil {
		return fmt.Errorf("swap master hash: %w", err)
	}
	if tag.RowsAffected() == 0 {
		// мастер-пароль сменили параллельно
		return entry.ErrRotationConflict
	}
	return nil
}

// matchEntrySet сверяет присланные id с записями аккаунта: множества должны совпасть.
func matchEntrySet(ctx context.Context, tx rotationTx, accountID int, ids []string) error {
	rows, err := tx.Query(ctx, `SELECT id::text FROM entries WHERE account_id = $1`, accountID)
	if err != nil {
		return fmt.Errorf("list entry ids: %w", err)
	}
	stored, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return fmt.Errorf("collect entry ids: %w", err)
	}

	if !sameIDSet(stored, ids) {
		return entry.ErrRotationConflict
	}
	return nil
}

// sameIDSet - true, если ids без повторов и совпадают со stored как множества.
func sameIDSet(stored, ids []string) bool {
	if len(stored) != len(ids) {
		return false
	}
	want := make(map[string]struct{}, len(stored))
	for _, id := range stored {
		want[id] = struct{}{}
	}
	for _, id := range ids {
		if _, ok := want[id]; !ok {
			return false
		}
		delete(want, id)
	}
	return true
}

func rewrite(ctx context.Context, tx rotationTx, accountID int, rewrites []entry.Rewrite) error {
	if len(rewrites) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, rw := range rewrites {
		batch.Queue(
			`UPDATE entries SET ciphertext = $3, updated_at = GREATEST(NOW(), updated_at)
			 WHERE id = $1 AND account_id = $2`,
			rw.ID, accountID, rw.Ciphertext)
	}

	br := tx.SendBatch(ctx, batch)
	for range rewrites {
		tag, err := br.Exec()
		if err != nil {
			_ = br.Close()
			return fmt.Errorf("rewrite entry: %w", err)
		}
		if tag.RowsAffected() != 1 {
			_ = br.Close()
			return entry.ErrRotationConflict
		}
	}
	return br.Close()
}
