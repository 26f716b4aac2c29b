package rotation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/exp/slog"

	"pixelvault/internal/domain/account"
	"pixelvault/internal/domain/entry"
)

const DefaultStagingTTL = 15 * time.Minute

// Staging - открытая ротация. Новые шифротексты загружаются частями,
// пока ExpiresAt не прошел, и применяются одной транзакцией в Commit.
type Staging struct {
	ID        string
	ExpiresAt time.Time
	Rotation  account.MasterRotation
}

// StageRepository хранит загруженные части до фиксации. Commit атомарно
// меняет хэш, переписывает все записи из набора и блокирует сессии.
type StageRepository interface {
	Begin(ctx context.Context, st Staging) error
	Stage(ctx context.Context, accountID int, id string, rewrites []entry.Rewrite) error
	Commit(ctx context.Context, accountID int, id string) (int, error)
	Abort(ctx context.Context, accountID int, id string) error
}

// StagedRepository фиксирует ротацию и целиком, и по частям.
type StagedRepository interface {
	Repository
	StageRepository
}

// StagedService добавляет к Service ротацию по частям: для хранилищ, где
// все шифротексты не помещаются в один запрос.
type StagedService struct {
	*Service
	stage StageRepository
	ttl   time.Duration
	now   func() time.Time
	log   *slog.Logger
}

func NewStagedService(accounts Preparer, repo StagedRepository, maxBytes int, ttl time.Duration, log *slog.Logger) *StagedService {
	if ttl <= 0 {
		ttl = DefaultStagingTTL
	}
	return &StagedService{
		Service: NewService(accounts, repo, maxBytes, log),
		stage:   repo,
		ttl:     ttl,
		now:     time.Now,
		log:     log.With("component", "rotation_stager"),
	}
}

// Begin проверяет текущий мастер-пароль и открывает ротацию. Предыдущая
// незавершенная ротация аккаунта отбрасывается.
func (s *StagedService) Begin(ctx context.Context, accountID int, current, next string) (Staging, error) {
	r, err := s.accounts.PrepareMasterRotation(ctx, accountID, current, next)
	if err != nil {
		return Staging{}, err
	}

	st := Staging{
		ID:        uuid.NewString(),
		ExpiresAt: s.now().Add(s.ttl),
		Rotation:  r,
	}
	if err := s.stage.Begin(ctx, st); err != nil {
		return Staging{}, fmt.Errorf("begin rotation: %w", err)
	}

	s.log.Info("rotation started", "account_id", accountID, "rotation_id", st.ID)
	return st, nil
}

// Stage сохраняет часть новых шифротекстов. Повтор id внутри ротации - конфликт.
func (s *StagedService) Stage(ctx context.Context, accountID int, id string, rewrites []entry.Rewrite) error {
	if err := validID(id); err != nil {
		return err
	}
	if err := checkRewrites(rewrites, s.maxBytes); err != nil {
		return err
	}
	if len(rewrites) == 0 {
		return nil
	}

	if err := s.stage.Stage(ctx, accountID, id, rewrites); err != nil {
		if errors.Is(err, ErrNotFound) || errors.Is(err, entry.ErrRotationConflict) {
			return err
		}
		return fmt.Errorf("stage rewrites: %w", err)
	}

	s.log.Debug("rewrites staged", "account_id", accountID, "rotation_id", id, "count", len(rewrites))
	return nil
}

// Commit применяет ротацию целиком или не применяет ничего.
func (s *StagedService) Commit(ctx context.Context, accountID int, id string) (int, error) {
	if err := validID(id); err != nil {
		return 0, err
	}

	n, err := s.stage.Commit(ctx, accountID, id)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			return 0, err
		case errors.Is(err, entry.ErrRotationConflict):
			s.log.Warn("rotation conflict", "account_id", accountID, "rotation_id", id)
			return 0, entry.ErrRotationConflict
		}
		s.log.Error("failed to commit rotation", "account_id", accountID, "error", err)
		return 0, fmt.Errorf("commit rotation: %w", err)
	}

	s.log.Info("master secret rotated", "account_id", accountID, "entries", n)
	return n, nil
}

// Abort отбрасывает загруженные части. Повторный вызов не ошибка.
func (s *StagedService) Abort(ctx context.Context, accountID int, id string) error {
	if validID(id) != nil {
		return nil
	}
	if err := s.stage.Abort(ctx, accountID, id); err != nil {
		return fmt.Errorf("abort rotation: %w", err)
	}
	s.log.Info("rotation aborted", "account_id", accountID, "rotation_id", id)
	return nil
}

func validID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrNotFound
	}
	return nil
}
