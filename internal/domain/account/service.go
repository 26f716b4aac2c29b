package account

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/exp/slog"
)

const KDFSaltLen = 16

type Servicer interface {
	Register(ctx context.Context, req RegisterRequest) (Account, error)
	Authenticate(ctx context.Context, identity, secret string) (Account, error)
	VerifyMaster(ctx context.Context, id int, masterSecret string) (Account, error)
	Profile(ctx context.Context, id int) (Account, error)
	UpdateProfile(ctx context.Context, id int, upd ProfileUpdate) (Account, error)
	ChangeSecret(ctx context.Context, id int, current, next string) error
	PrepareMasterRotation(ctx context.Context, id int, current, next string) (MasterRotation, error)
	Delete(ctx context.Context, id int, secret string) error
}

// MasterRotation - проверенная заявка на смену мастер-пароля.
// CurrentHash используется для оптимистичной проверки при фиксации.
type MasterRotation struct {
	AccountID   int
	CurrentHash string
	NextHash    string
}

type Service struct {
	repo      Repository
	hasher    Hasher
	validator Validator
	log       *slog.Logger

	dummyOnce sync.Once
	dummyHash string
}

func NewService(repo Repository, hasher Hasher, validator Validator, log *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		hasher:    hasher,
		validator: validator,
		log:       log.With("component", "account_service"),
	}
}

func (s *Service) Register(ctx context.Context, req RegisterRequest) (Account, error) {
	if err := s.validator.ValidateRegister(req); err != nil {
		s.log.Debug("validation failed", "handle", req.Handle, "error", err)
		return Account{}, err
	}

	secretHash, err := s.hasher.Hash(req.Secret)
	if err != nil {
		return Account{}, err
	}
	masterHash, err := s.hasher.Hash(req.MasterSecret)
	if err != nil {
		return Account{}, err
	}

	salt := make([]byte, KDFSaltLen)
	if _, err := rand.Read(salt); err != nil {
		return Account{}, fmt.Errorf("generate kdf salt: %w", err)
	}

	a := Account{
		Handle:     req.Handle,
		Contact:    req.Contact,
		SecretHash: secretHash,
		MasterHash: masterHash,
		KDFSalt:    salt,
	}
	if err := s.repo.Create(ctx, &a); err != nil {
		if errors.Is(err, ErrDuplicateIdentity) {
			return Account{}, ErrDuplicateIdentity
		}
		return Account{}, fmt.Errorf("create account: %w", err)
	}

	s.log.Info("account registered", "account_id", a.ID, "handle", a.Handle)
	return a, nil
}

// Authenticate проверяет пароль аккаунта. Для неизвестного имени
// выполняется сравнение с фиктивным хэшем, ответ не отличается от неверного пароля.
func (s *Service) Authenticate(ctx context.Context, identity, secret string) (Account, error) {
	a, err := s.repo.FindByIdentity(ctx, identity)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			return Account{}, fmt.Errorf("find account: %w", err)
		}
		_, _ = s.hasher.Compare(s.dummy(), secret)
		return Account{}, ErrInvalidCredential
	}

	if err := s.compare(a.SecretHash, secret); err != nil {
		return Account{}, err
	}

	return a, nil
}

func (s *Service) VerifyMaster(ctx context.Context, id int, masterSecret string) (Account, error) {
	a, err := s.find(ctx, id)
	if err != nil {
		return Account{}, err
	}

	if err := s.compare(a.MasterHash, masterSecret); err != nil {
		s.log.Debug("master secret rejected", "account_id", id)
		return Account{}, err
	}

	return a, nil
}

func (s *Service) Profile(ctx context.Context, id int) (Account, error) {
	return s.find(ctx, id)
}

func (s *Service) UpdateProfile(ctx context.Context, id int, upd ProfileUpdate) (Account, error) {
	if err := s.validator.ValidateProfile(upd.Handle, upd.Contact); err != nil {
		return Account{}, err
	}

	a, err := s.repo.UpdateProfile(ctx, id, upd.Handle, upd.Contact)
	if err != nil {
		if errors.Is(err, ErrDuplicateIdentity) || errors.Is(err, ErrNotFound) {
			return Account{}, err
		}
		return Account{}, fmt.Errorf("update profile: %w", err)
	}

	return a, nil
}

// ChangeSecret меняет пароль аккаунта. Мастер-пароль и записи не затрагиваются.
func (s *Service) ChangeSecret(ctx context.Context, id int, current, next string) error {
	if err := s.validator.ValidateSecret(next); err != nil {
		return err
	}

	a, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if err := s.compare(a.SecretHash, current); err != nil {
		return err
	}

	hash, err := s.hasher.Hash(next)
	if err != nil {
		return err
	}

	if err := s.repo.UpdateSecretHash(ctx, id, hash); err != nil {
		return fmt.Errorf("update secret hash: %w", err)
	}

	s.log.Info("account secret changed", "account_id", id)
	return nil
}

// PrepareMasterRotation проверяет текущий мастер-пароль и хэширует новый.
// Сама замена хэша выполняется вместе с перешифрованием записей.
func (s *Service) PrepareMasterRotation(ctx context.Context, id int, current, next string) (MasterRotation, error) {
	if err := s.validator.ValidateSecret(next); err != nil {
		return MasterRotation{}, err
	}

	a, err := s.find(ctx, id)
	if err != nil {
		return MasterRotation{}, err
	}
	if err := s.compare(a.MasterHash, current); err != nil {
		return MasterRotation{}, err
	}

	hash, err := s.hasher.Hash(next)
	if err != nil {
		return MasterRotation{}, err
	}

	return MasterRotation{
		AccountID:   id,
		CurrentHash: a.MasterHash,
		NextHash:    hash,
	}, nil
}

// Delete удаляет аккаунт; записи и сессии удаляются каскадно.
func (s *Service) Delete(ctx context.Context, id int, secret string) error {
	a, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if err := s.compare(a.SecretHash, secret); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete account: %w", err)
	}

	s.log.Info("account deleted", "account_id", id)
	return nil
}

func (s *Service) find(ctx context.Context, id int) (Account, error) {
	a, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Account{}, ErrNotFound
		}
		return Account{}, fmt.Errorf("find account: %w", err)
	}
	return a, nil
}

func (s *Service) compare(hash, secret string) error {
	ok, err := s.hasher.Compare(hash, secret)
	if err != nil {
		return err
	}
	if !ok {
		return ErrInvalidCredential
	}
	return nil
}

func (s *Service) dummy() string {
	s.dummyOnce.Do(func() {
		hash, err := s.hasher.Hash("pixelvault-timing-equalizer")
		if err != nil {
			s.log.Error("dummy hash", "error", err)
			return
		}
		s.dummyHash = hash
	})
	return s.dummyHash
}
