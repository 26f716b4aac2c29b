package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/exp/slog"

	"pixelvault/internal/domain/entry"
)

const entryColumns = `id::text, account_id, kind, ciphertext, created_at, updated_at`

type EntryRepository struct {
	pool *pgxpool.Pool
	log  *slog.Logger
}

func NewEntryRepository(pool *pgxpool.Pool, log *slog.Logger) *EntryRepository {
	return &EntryRepository{
		pool: pool,
		log:  log.With("component", "entry_repository"),
	}
}

func (r *EntryRepository) Create(ctx context.Context, rec *entry.Record) error {
	const query = `
		INSERT INTO entries (id, account_id, kind, ciphertext)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at, updated_at`

	return withTx(ctx, r.pool, func(tx pgx.Tx) error {
		if err := lockEntries(ctx, tx, rec.AccountID); err != nil {
			return err
		}
		err := tx.QueryRow(ctx, query, rec.ID, rec.AccountID, string(rec.Kind), rec.Ciphertext).
			Scan(&rec.CreatedAt, &rec.UpdatedAt)
		if err != nil {
			return fmt.Errorf("insert entry: %w", err)
		}
		return nil
	})
}

func (r *EntryRepository) Get(ctx context.Context, accountID int, id string) (entry.Record, error) {
	const query = `SELECT ` + entryColumns + ` FROM entries WHERE id = $1 AND account_id = $2`
	return scanEntry(r.pool.QueryRow(ctx, query, id, accountID))
}

func (r *EntryRepository) List(ctx context.Context, accountID int) ([]entry.Record, error) {
	const query = `SELECT ` + entryColumns + ` FROM entries
		WHERE account_id = $1
		ORDER BY updated_at DESC, id`

	rows, err := r.pool.Query(ctx, query, accountID)
	if err != nil {
		r.log.Error("failed to list entries", "account_id", accountID, "error", err)
		return nil, fmt.Errorf("list entries: %w", err)
	}
	defer rows.Close()

	records := make([]entry.Record, 0)
	for rows.Next() {
		rec, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate entries: %w", err)
	}
	return records, nil
}

func (r *EntryRepository) Update(ctx context.Context, accountID int, id, ciphertext string) (entry.Record, error) {
	const query = `
		UPDATE entries SET ciphertext = $3, updated_at = GREATEST(NOW(), updated_at)
		WHERE id = $1 AND account_id = $2
		RETURNING ` + entryColumns

	var rec entry.Record
	err := withTx(ctx, r.pool, func(tx pgx.Tx) error {
		if err := lockEntries(ctx, tx, accountID); err != nil {
			return err
		}
		var err error
		rec, err = scanEntry(tx.QueryRow(ctx, query, id, accountID, ciphertext))
		return err
	})
	if err != nil {
		return entry.Record{}, err
	}
	return rec, nil
}

func (r *EntryRepository) Delete(ctx context.Context, accountID int, id string) error {
	return withTx(ctx, r.pool, func(tx pgx.Tx) error {
		if err := lockEntries(ctx, tx, accountID); err != nil {
			return err
		}
		tag, err := tx.Exec(ctx, `DELETE FROM entries WHERE id = $1 AND account_id = $2`, id, accountID)
		if err != nil {
			return fmt.Errorf("delete entry: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return entry.ErrNotFound
		}
		return nil
	})
}

func (r *EntryRepository) DeleteAll(ctx context.Context, accountID int) (int64, error) {
	var n int64
	err := withTx(ctx, r.pool, func(tx pgx.Tx) error {
		if err := lockEntries(ctx, tx, accountID); err != nil {
			return err
		}
		tag, err := tx.Exec(ctx, `DELETE FROM entries WHERE account_id = $1`, accountID)
		if err != nil {
			return fmt.Errorf("delete entries: %w", err)
		}
		n = tag.RowsAffected()
		return nil
	})
	return n, err
}

func (r *EntryRepository) CountByKind(ctx context.Context, accountID int) (map[entry.Kind]int64, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT kind, COUNT(*) FROM entries WHERE account_id = $1 GROUP BY kind`, accountID)
	if err != nil {
		return nil, fmt.Errorf("count entries: %w", err)
	}
	defer rows.Close()

	counts := make(map[entry.Kind]int64, len(entry.Kinds))
	for rows.Next() {
		var (
			kind  string
			count int64
		)
		if err := rows.Scan(&kind, &count); err != nil {
			return nil, fmt.Errorf("scan count: %w", err)
		}
		counts[entry.Kind(kind)] = count
	}
	return counts, rows.Err()
}

func scanEntry(row pgx.Row) (entry.Record, error) {
	var (
		rec  entry.Record
		kind string
	)
	err := row.Scan(&rec.ID, &rec.AccountID, &kind, &rec.Ciphertext, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return entry.Record{}, entry.ErrNotFound
		}
		return entry.Record{}, fmt.Errorf("scan entry: %w", err)
	}
	rec.Kind = entry.Kind(kind)
	return rec, nil
}
