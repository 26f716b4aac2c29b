// Package rotation - смена мастер-пароля вместе с перешифрованием всех записей.
package rotation

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/exp/slog"

	"pixelvault/internal/domain/account"
	"pixelvault/internal/domain/entry"
)

// Repository фиксирует ротацию одной транзакцией: новый хэш мастер-пароля,
// все шифротексты и блокировка сессий аккаунта. Набор id в rewrites должен
// совпадать с сохраненным, иначе entry.ErrRotationConflict.
type Repository interface {
	Rotate(ctx context.Context, r account.MasterRotation, rewrites []entry.Rewrite) error
}

type Preparer interface {
	PrepareMasterRotation(ctx context.Context, id int, current, next string) (account.MasterRotation, error)
}

type Servicer interface {
	Rotate(ctx context.Context, accountID int, current, next string, rewrites []entry.Rewrite) error
	Begin(ctx context.Context, accountID int, current, next string) (Staging, error)
	Stage(ctx context.Context, accountID int, id string, rewrites []entry.Rewrite) error
	Commit(ctx context.Context, accountID int, id string) (int, error)
	Abort(ctx context.Context, accountID int, id string) error
}

type Service struct {
	accounts Preparer
	repo     Repository
	maxBytes int
	log      *slog.Logger
}

func NewService(accounts Preparer, repo Repository, maxBytes int, log *slog.Logger) *Service {
	if maxBytes <= 0 {
		maxBytes = entry.DefaultMaxBytes
	}
	return &Service{
		accounts: accounts,
		repo:     repo,
		maxBytes: maxBytes,
		log:      log.With("component", "rotation_service"),
	}
}

// Rotate проверяет текущий мастер-пароль и атомарно применяет новый.
// После успеха все сессии аккаунта заблокированы.
func (s *Service) Rotate(ctx context.Context, accountID int, current, next string, rewrites []entry.Rewrite) error {
	if err := checkRewrites(rewrites, s.maxBytes); err != nil {
		return err
	}

	r, err := s.accounts.PrepareMasterRotation(ctx, accountID, current, next)
	if err != nil {
		return err
	}

	if err := s.repo.Rotate(ctx, r, rewrites); err != nil {
		if errors.Is(err, entry.ErrRotationConflict) {
			s.log.Warn("rotation conflict", "account_id", accountID)
			return entry.ErrRotationConflict
		}
		s.log.Error("failed to commit rotation", "account_id", accountID, "error", err)
		return fmt.Errorf("commit rotation: %w", err)
	}

	s.log.Info("master secret rotated", "account_id", accountID, "entries", len(rewrites))
	return nil
}

// checkRewrites отклоняет повторы id, пустые и слишком большие шифротексты.
func checkRewrites(rewrites []entry.Rewrite, maxBytes int) error {
	seen := make(map[string]struct{}, len(rewrites))
	for _, rw := range rewrites {
		if _, dup := seen[rw.ID]; dup {
			return fmt.Errorf("%w: duplicate entry %s", entry.ErrRotationConflict, rw.ID)
		}
		seen[rw.ID] = struct{}{}

		if len(rw.Ciphertext) > maxBytes {
			return entry.ErrPayloadTooLarge
		}
		if strings.TrimSpace(rw.Ciphertext) == "" {
			return entry.ErrEmptyCiphertext
		}
	}
	return nil
}
