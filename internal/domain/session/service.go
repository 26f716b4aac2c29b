package session

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"golang.org/x/exp/slog"
)

const tokenBytes = 32

type Servicer interface {
	Begin(ctx context.Context, accountID int) (Token, error)
	Validate(ctx context.Context, token string) (Info, error)
	Unlock(ctx context.Context, token, masterHash string) error
	End(ctx context.Context, token string) error
	LockAccount(ctx context.Context, accountID int) error
}

type Service struct {
	repo Repository
	ttl  time.Duration
	now  func() time.Time
	log  *slog.Logger
}

func NewService(repo Repository, ttl time.Duration, log *slog.Logger) *Service {
	return &Service{
		repo: repo,
		ttl:  ttl,
		now:  time.Now,
		log:  log.With("component", "session_service"),
	}
}

// Begin открывает сессию после проверки пароля аккаунта: authenticated=true, unlocked=false.
func (s *Service) Begin(ctx context.Context, accountID int) (Token, error) {
	raw := make([]byte, tokenBytes)
	if _, err := rand.Read(raw); err != nil {
		return Token{}, fmt.Errorf("generate token: %w", err)
	}

	token := base64.URLEncoding.EncodeToString(raw)
	expiresAt := s.now().Add(s.ttl)

	if err := s.repo.Create(ctx, accountID, HashToken(token), expiresAt); err != nil {
		return Token{}, fmt.Errorf("save session: %w", err)
	}

	return Token{Value: token, ExpiresAt: expiresAt}, nil
}

func (s *Service) Validate(ctx context.Context, token string) (Info, error) {
	if token == "" {
		return Info{}, ErrNotAuthenticated
	}

	rec, err := s.repo.Get(ctx, HashToken(token))
	if err != nil {
		if errors.Is(err, ErrNotAuthenticated) {
			return Info{}, ErrNotAuthenticated
		}
		return Info{}, fmt.Errorf("get session: %w", err)
	}

	if !rec.ExpiresAt.After(s.now()) {
		return Info{}, ErrNotAuthenticated
	}

	return Info{
		AccountID:     rec.AccountID,
		Authenticated: true,
		Unlocked:      rec.Unlocked,
		ExpiresAt:     rec.ExpiresAt,
	}, nil
}

// Unlock переводит сессию в состояние unlocked. masterHash - хэш мастер-пароля,
// с которым вызывающий только что сверил введенный секрет; пустой хэш значит
// отказ. Если хэш успел смениться (ротация), сессия остается заблокированной.
func (s *Service) Unlock(ctx context.Context, token, masterHash string) error {
	if _, err := s.Validate(ctx, token); err != nil {
		return err
	}
	if masterHash == "" {
		return ErrUnlockDenied
	}

	if err := s.repo.SetUnlocked(ctx, HashToken(token), masterHash); err != nil {
		switch {
		case errors.Is(err, ErrNotAuthenticated):
			return ErrNotAuthenticated
		case errors.Is(err, ErrUnlockDenied):
			s.log.Warn("unlock raced with master rotation")
			return ErrUnlockDenied
		}
		return fmt.Errorf("unlock session: %w", err)
	}
	return nil
}

func (s *Service) End(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := s.repo.Delete(ctx, HashToken(token)); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// LockAccount сбрасывает unlocked во всех живых сессиях аккаунта.
func (s *Service) LockAccount(ctx context.Context, accountID int) error {
	n, err := s.repo.LockAccount(ctx, accountID)
	if err != nil {
		return fmt.Errorf("lock account sessions: %w", err)
	}
	s.log.Info("sessions locked", "account_id", accountID, "count", n)
	return nil
}

// HashToken - sha256 от токена в hex, ключ сессии в хранилище.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
