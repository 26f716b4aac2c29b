package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"golang.org/x/exp/slog"

	"pixelvault/internal/app/client/crypto"
	"pixelvault/internal/app/client/vault"
	"pixelvault/internal/domain/account"
	"pixelvault/internal/domain/entry"
	"pixelvault/internal/domain/rotation"
)

const (
	// владелец локального хранилища всегда один
	localAccountID = 1

	metaMasterHash = "master_hash"
	metaKDFSalt    = "kdf_salt"
)

var (
	ErrNotInitialized     = errors.New("local vault is not initialized")
	ErrAlreadyInitialized = errors.New("local vault is already initialized")
)

// Local - vault.Backend без сервера. Проверка мастер-пароля идет по
// bcrypt-хэшу из таблицы meta, смена пароля - одной транзакцией SQLite.
type Local struct {
	db        *sql.DB
	entries   *entry.Service
	rotation  *rotation.Service
	hasher    account.Hasher
	validator account.Validator
	log       *slog.Logger
	now       func() time.Time
}

var _ vault.Backend = (*Local)(nil)

func Open(ctx context.Context, path string, hasher account.Hasher, log *slog.Logger) (*Local, error) {
	db, err := openDB(ctx, path)
	if err != nil {
		return nil, err
	}

	l := &Local{
		db:        db,
		hasher:    hasher,
		validator: account.NewValidator(),
		log:       log.With("component", "local_storage"),
		now:       time.Now,
	}
	l.entries = entry.NewService(NewEntryRepository(db), entry.DefaultMaxBytes, log)
	l.rotation = rotation.NewService(l, l, entry.DefaultMaxBytes, log)
	return l, nil
}

func (l *Local) Close() error {
	return l.db.Close()
}

func (l *Local) Initialized(ctx context.Context) (bool, error) {
	var n int
	err := l.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM meta WHERE key = ?`, metaMasterHash).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("ошибка чтения meta: %w", err)
	}
	return n > 0, nil
}

// Init создает хранилище: хэш мастер-пароля и соль для вывода ключа.
func (l *Local) Init(ctx context.Context, master string) ([]byte, error) {
	if err := l.validator.ValidateSecret(master); err != nil {
		return nil, err
	}

	hash, err := l.hasher.Hash(master)
	if err != nil {
		return nil, err
	}
	salt, err := crypto.GenerateRandomBytes(crypto.SaltSize)
	if err != nil {
		return nil, err
	}

	err = withTx(ctx, l.db, func(tx *sql.Tx) error {
		var n int
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM meta`).Scan(&n); err != nil {
			return err
		}
		if n > 0 {
			return ErrAlreadyInitialized
		}
		if err := putMeta(ctx, tx, metaMasterHash, []byte(hash)); err != nil {
			return err
		}
		return putMeta(ctx, tx, metaKDFSalt, salt)
	})
	if err != nil {
		return nil, err
	}

	l.log.Info("local vault initialized")
	return salt, nil
}

// KDFSalt возвращает соль, из которой вместе с мастер-паролем выводится ключ.
func (l *Local) KDFSalt(ctx context.Context) ([]byte, error) {
	return getMeta(ctx, l.db, metaKDFSalt)
}

// VerifyMaster проверяет мастер-пароль. token игнорируется.
func (l *Local) VerifyMaster(ctx context.Context, _ string, master string) ([]byte, error) {
	hash, err := getMeta(ctx, l.db, metaMasterHash)
	if err != nil {
		return nil, err
	}

	ok, err := l.hasher.Compare(string(hash), master)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, account.ErrInvalidCredential
	}

	return getMeta(ctx, l.db, metaKDFSalt)
}

func (l *Local) List(ctx context.Context, _ string) ([]entry.Record, error) {
	return l.entries.List(ctx, localAccountID)
}

func (l *Local) Get(ctx context.Context, _ string, id string) (entry.Record, error) {
	return l.entries.Get(ctx, localAccountID, id)
}

func (l *Local) Create(ctx context.Context, _ string, kind entry.Kind, ciphertext string) (entry.Record, error) {
	return l.entries.Create(ctx, localAccountID, kind, ciphertext)
}

func (l *Local) Update(ctx context.Context, _ string, id, ciphertext string) (entry.Record, error) {
	return l.entries.Update(ctx, localAccountID, id, ciphertext)
}

func (l *Local) Delete(ctx context.Context, _ string, id string) error {
	return l.entries.Delete(ctx, localAccountID, id)
}

func (l *Local) DeleteAll(ctx context.Context, _ string) (int64, error) {
	return l.entries.DeleteAll(ctx, localAccountID)
}

func (l *Local) Summary(ctx context.Context, _ string) (entry.Summary, error) {
	return l.entries.Summarize(ctx, localAccountID)
}

func (l *Local) RotateMaster(ctx context.Context, _ string, current, next string, rewrites []entry.Rewrite) error {
	return l.rotation.Rotate(ctx, localAccountID, current, next, rewrites)
}

// PrepareMasterRotation - половина rotation.Preparer для локального хранилища.
func (l *Local) PrepareMasterRotation(ctx context.Context, id int, current, next string) (account.MasterRotation, error) {
	if err := l.validator.ValidateSecret(next); err != nil {
		return account.MasterRotation{}, err
	}

	hash, err := getMeta(ctx, l.db, metaMasterHash)
	if err != nil {
		return account.MasterRotation{}, err
	}
	ok, err := l.hasher.Compare(string(hash), current)
	if err != nil {
		return account.MasterRotation{}, err
	}
	if !ok {
		return account.MasterRotation{}, account.ErrInvalidCredential
	}

	nextHash, err := l.hasher.Hash(next)
	if err != nil {
		return account.MasterRotation{}, err
	}
	return account.MasterRotation{AccountID: id, CurrentHash: string(hash), NextHash: nextHash}, nil
}

// Rotate - rotation.Repository: хэш и все шифротексты меняются одной транзакцией.
func (l *Local) Rotate(ctx context.Context, r account.MasterRotation, rewrites []entry.Rewrite) error {
	return withTx(ctx, l.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE meta SET value = ? WHERE key = ? AND value = ?`,
			[]byte(r.NextHash), metaMasterHash, []byte(r.CurrentHash))
		if err != nil {
			return fmt.Errorf("update master hash: %w", err)
		}
		if n, err := res.RowsAffected(); err != nil || n != 1 {
			return entry.ErrRotationConflict
		}

		if err := matchEntrySet(ctx, tx, rewrites); err != nil {
			return err
		}

		ts := l.now().UTC().UnixNano()
		for _, rw := range rewrites {
			res, err := tx.ExecContext(ctx,
				`UPDATE entries SET ciphertext = ?, updated_at = MAX(updated_at, ?) WHERE id = ?`,
				rw.Ciphertext, ts, rw.ID)
			if err != nil {
				return fmt.Errorf("rewrite entry %s: %w", rw.ID, err)
			}
			if err := oneRow(res); err != nil {
				return entry.ErrRotationConflict
			}
		}
		return nil
	})
}

func matchEntrySet(ctx context.Context, q execer, rewrites []entry.Rewrite) error {
	rows, err := q.QueryContext(ctx, `SELECT id FROM entries`)
	if err != nil {
		return fmt.Errorf("list entry ids: %w", err)
	}
	defer rows.Close()

	want := make(map[string]struct{}, len(rewrites))
	for _, rw := range rewrites {
		want[rw.ID] = struct{}{}
	}

	stored := 0
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return err
		}
		if _, ok := want[id]; !ok {
			return entry.ErrRotationConflict
		}
		stored++
	}
	if err := rows.Err(); err != nil {
		return err
	}
	if stored != len(want) {
		return entry.ErrRotationConflict
	}
	return nil
}

func getMeta(ctx context.Context, q execer, key string) ([]byte, error) {
	var value []byte
	err := q.QueryRowContext(ctx, `SELECT value FROM meta WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotInitialized
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения meta %s: %w", key, err)
	}
	return value, nil
}

func putMeta(ctx context.Context, q execer, key string, value []byte) error {
	if _, err := q.ExecContext(ctx, `INSERT INTO meta (key, value) VALUES (?, ?)`, key, value); err != nil {
		return fmt.Errorf("ошибка записи meta %s: %w", key, err)
	}
	return nil
}
