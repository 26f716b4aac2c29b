package entry

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/exp/slog"
)

// DefaultMaxBytes - предельный размер шифротекста одной записи.
const DefaultMaxBytes = 50 * 1024 * 1024

type Servicer interface {
	Create(ctx context.Context, accountID int, kind Kind, ciphertext string) (Record, error)
	Get(ctx context.Context, accountID int, id string) (Record, error)
	List(ctx context.Context, accountID int) ([]Record, error)
	Update(ctx context.Context, accountID int, id, ciphertext string) (Record, error)
	Delete(ctx context.Context, accountID int, id string) error
	DeleteAll(ctx context.Context, accountID int) (int64, error)
	Summarize(ctx context.Context, accountID int) (Summary, error)
}

// Service - хранилище непрозрачных шифротекстов. Все операции ограничены
// аккаунтом, который берется из проверенной сессии.
type Service struct {
	repo     Repository
	maxBytes int
	log      *slog.Logger
}

func NewService(repo Repository, maxBytes int, log *slog.Logger) *Service {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &Service{
		repo:     repo,
		maxBytes: maxBytes,
		log:      log.With("component", "entry_service"),
	}
}

func (s *Service) Create(ctx context.Context, accountID int, kind Kind, ciphertext string) (Record, error) {
	if err := kind.Validate(); err != nil {
		return Record{}, err
	}
	if err := s.checkCiphertext(ciphertext); err != nil {
		return Record{}, err
	}

	rec := Record{
		ID:         uuid.NewString(),
		AccountID:  accountID,
		Kind:       kind,
		Ciphertext: ciphertext,
	}
	if err := s.repo.Create(ctx, &rec); err != nil {
		s.log.Error("failed to create entry", "account_id", accountID, "kind", kind, "error", err)
		return Record{}, fmt.Errorf("create entry: %w", err)
	}

	s.log.Debug("entry created", "account_id", accountID, "entry_id", rec.ID, "kind", kind)
	return rec, nil
}

func (s *Service) Get(ctx context.Context, accountID int, id string) (Record, error) {
	if !validID(id) {
		return Record{}, ErrNotFound
	}

	rec, err := s.repo.Get(ctx, accountID, id)
	if err != nil {
		return Record{}, s.wrap("get entry", err)
	}
	return rec, nil
}

// List возвращает записи аккаунта, свежие изменения первыми.
func (s *Service) List(ctx context.Context, accountID int) ([]Record, error) {
	records, err := s.repo.List(ctx, accountID)
	if err != nil {
		s.log.Error("failed to list entries", "account_id", accountID, "error", err)
		return nil, fmt.Errorf("list entries: %w", err)
	}
	if records == nil {
		records = []Record{}
	}
	return records, nil
}

func (s *Service) Update(ctx context.Context, accountID int, id, ciphertext string) (Record, error) {
	if !validID(id) {
		return Record{}, ErrNotFound
	}
	if err := s.checkCiphertext(ciphertext); err != nil {
		return Record{}, err
	}

	rec, err := s.repo.Update(ctx, accountID, id, ciphertext)
	if err != nil {
		return Record{}, s.wrap("update entry", err)
	}
	return rec, nil
}

func (s *Service) Delete(ctx context.Context, accountID int, id string) error {
	if !validID(id) {
		return ErrNotFound
	}

	if err := s.repo.Delete(ctx, accountID, id); err != nil {
		return s.wrap("delete entry", err)
	}
	return nil
}

func (s *Service) DeleteAll(ctx context.Context, accountID int) (int64, error) {
	n, err := s.repo.DeleteAll(ctx, accountID)
	if err != nil {
		return 0, fmt.Errorf("delete all entries: %w", err)
	}

	s.log.Info("entries purged", "account_id", accountID, "count", n)
	return n, nil
}

func (s *Service) Summarize(ctx context.Context, accountID int) (Summary, error) {
	counts, err := s.repo.CountByKind(ctx, accountID)
	if err != nil {
		return Summary{}, fmt.Errorf("summarize entries: %w", err)
	}
	return NewSummary(counts), nil
}

func (s *Service) checkCiphertext(ciphertext string) error {
	if len(ciphertext) > s.maxBytes {
		return ErrPayloadTooLarge
	}
	if strings.TrimSpace(ciphertext) == "" {
		return ErrEmptyCiphertext
	}
	return nil
}

func (s *Service) wrap(op string, err error) error {
	if errors.Is(err, ErrNotFound) {
		return ErrNotFound
	}
	s.log.Error("entry repository failure", "op", op, "error", err)
	return fmt.Errorf("%s: %w", op, err)
}

// validID отсекает заведомо несуществующие идентификаторы, ответ тот же, что и для чужой записи.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
