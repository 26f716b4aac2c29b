package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"pixelvault/internal/domain/entry"
)

// EntryRepository - entry.Repository поверх SQLite. Владелец один,
// accountID не хранится.
type EntryRepository struct {
	db  *sql.DB
	now func() time.Time
}

func NewEntryRepository(db *sql.DB) *EntryRepository {
	return &EntryRepository{db: db, now: time.Now}
}

func (r *EntryRepository) stamp() int64 {
	return r.now().UTC().UnixNano()
}

func (r *EntryRepository) Create(ctx context.Context, rec *entry.Record) error {
	ts := r.stamp()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO entries (id, kind, ciphertext, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		rec.ID, rec.Kind, rec.Ciphertext, ts, ts)
	if err != nil {
		return fmt.Errorf("ошибка сохранения записи: %w", err)
	}
	rec.CreatedAt = fromNanos(ts)
	rec.UpdatedAt = rec.CreatedAt
	return nil
}

func (r *EntryRepository) Get(ctx context.Context, accountID int, id string) (entry.Record, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, kind, ciphertext, created_at, updated_at FROM entries WHERE id = ?`, id)
	return scanEntry(row, accountID)
}

func (r *EntryRepository) List(ctx context.Context, accountID int) ([]entry.Record, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, kind, ciphertext, created_at, updated_at FROM entries ORDER BY updated_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения записей: %w", err)
	}
	defer rows.Close()

	out := []entry.Record{}
	for rows.Next() {
		rec, err := scanEntry(rows, accountID)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *EntryRepository) Update(ctx context.Context, accountID int, id, ciphertext string) (entry.Record, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE entries SET ciphertext = ?, updated_at = MAX(updated_at, ?) WHERE id = ?`,
		ciphertext, r.stamp(), id)
	if err != nil {
		return entry.Record{}, fmt.Errorf("ошибка обновления записи: %w", err)
	}
	if err := oneRow(res); err != nil {
		return entry.Record{}, err
	}
	return r.Get(ctx, accountID, id)
}

func (r *EntryRepository) Delete(ctx context.Context, _ int, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM entries WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("ошибка удаления записи: %w", err)
	}
	return oneRow(res)
}

func (r *EntryRepository) DeleteAll(ctx context.Context, _ int) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM entries`)
	if err != nil {
		return 0, fmt.Errorf("ошибка удаления записей: %w", err)
	}
	return res.RowsAffected()
}

func (r *EntryRepository) CountByKind(ctx context.Context, _ int) (map[entry.Kind]int64, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT kind, COUNT(*) FROM entries GROUP BY kind`)
	if err != nil {
		return nil, fmt.Errorf("ошибка подсчета записей: %w", err)
	}
	defer rows.Close()

	counts := make(map[entry.Kind]int64)
	for rows.Next() {
		var kind entry.Kind
		var n int64
		if err := rows.Scan(&kind, &n); err != nil {
			return nil, err
		}
		counts[kind] = n
	}
	return counts, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(s scanner, accountID int) (entry.Record, error) {
	var rec entry.Record
	var created, updated int64
	err := s.Scan(&rec.ID, &rec.Kind, &rec.Ciphertext, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return entry.Record{}, entry.ErrNotFound
	}
	if err != nil {
		return entry.Record{}, fmt.Errorf("ошибка чтения записи: %w", err)
	}
	rec.AccountID = accountID
	rec.CreatedAt = fromNanos(created)
	rec.UpdatedAt = fromNanos(updated)
	return rec, nil
}

func oneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return entry.ErrNotFound
	}
	return nil
}

func fromNanos(ns int64) time.Time {
	return time.Unix(0, ns).UTC()
}
