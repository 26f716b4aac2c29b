package vault

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"sort"

	"golang.org/x/exp/slog"

	"pixelvault/internal/app/client/crypto"
	"pixelvault/internal/domain/account"
	"pixelvault/internal/domain/entry"
	"pixelvault/internal/domain/session"
)

type Controller struct {
	backend Backend
	params  crypto.Params
	log     *slog.Logger
}

func NewController(backend Backend, params crypto.Params, log *slog.Logger) *Controller {
	return &Controller{
		backend: backend,
		params:  params,
		log:     log.With("component", "vault"),
	}
}

// Unlock проверяет мастер-пароль на бэкенде и выводит ключ записей.
func (c *Controller) Unlock(ctx context.Context, s *Session, master string) (*Session, error) {
	salt, err := c.backend.VerifyMaster(ctx, s.Token, master)
	if err != nil {
		return nil, err
	}

	ring, err := crypto.NewKeyring(master, salt, c.params)
	if err != nil {
		return nil, fmt.Errorf("derive key: %w", err)
	}

	s.Lock()
	return &Session{
		Token:   s.Token,
		Account: s.Account,
		KDFSalt: salt,
		Keyring: ring,
	}, nil
}

// Open расшифровывает все записи. Запись, которую не удалось расшифровать
// или разобрать, пропускается и попадает в отчет.
func (c *Controller) Open(ctx context.Context, s *Session) ([]Entry, OpenReport, error) {
	var report OpenReport
	if !s.Unlocked() {
		return nil, report, session.ErrVaultLocked
	}

	records, err := c.backend.List(ctx, s.Token)
	if err != nil {
		return nil, report, fmt.Errorf("list entries: %w", err)
	}

	entries := make([]Entry, 0, len(records))
	for _, rec := range records {
		p, err := s.Keyring.OpenPayload(rec.Kind, rec.Ciphertext)
		if err != nil {
			c.log.Warn("dropping undecryptable entry", "entry_id", rec.ID, "kind", rec.Kind, "error", err)
			report.Dropped = append(report.Dropped, rec.ID)
			continue
		}
		entries = append(entries, newEntry(rec, p))
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].UpdatedAt.Equal(entries[j].UpdatedAt) {
			return entries[i].ID < entries[j].ID
		}
		return entries[i].UpdatedAt.After(entries[j].UpdatedAt)
	})

	return entries, report, nil
}

// Get расшифровывает одну запись.
func (c *Controller) Get(ctx context.Context, s *Session, id string) (Entry, error) {
	if !s.Unlocked() {
		return Entry{}, session.ErrVaultLocked
	}

	rec, err := c.backend.Get(ctx, s.Token, id)
	if err != nil {
		return Entry{}, err
	}

	p, err := s.Keyring.OpenPayload(rec.Kind, rec.Ciphertext)
	if err != nil {
		return Entry{}, err
	}
	return newEntry(rec, p), nil
}

// Save шифрует и сохраняет запись. Тип существующей записи менять нельзя.
func (c *Controller) Save(ctx context.Context, s *Session, req SaveRequest) (Entry, error) {
	if !s.Unlocked() {
		return Entry{}, session.ErrVaultLocked
	}
	if (req.Payload == nil) == (req.File == nil) {
		return Entry{}, fmt.Errorf("%w: exactly one of payload and file edit is required", entry.ErrInvalidPayload)
	}

	var existing *entry.Record
	if req.ID != "" {
		rec, err := c.backend.Get(ctx, s.Token, req.ID)
		if err != nil {
			return Entry{}, err
		}
		existing = &rec
	}

	payload := req.Payload
	if req.File != nil {
		p, err := c.fileFromEdit(s, existing, req.File)
		if err != nil {
			return Entry{}, err
		}
		payload = p
	}

	if existing != nil && existing.Kind != payload.Kind() {
		return Entry{}, fmt.Errorf("%w: entry is %s, got %s", entry.ErrInvalidKind, existing.Kind, payload.Kind())
	}

	blob, err := s.Keyring.SealPayload(payload)
	if err != nil {
		return Entry{}, err
	}

	var rec entry.Record
	if existing == nil {
		rec, err = c.backend.Create(ctx, s.Token, payload.Kind(), blob)
	} else {
		rec, err = c.backend.Update(ctx, s.Token, existing.ID, blob)
	}
	if err != nil {
		return Entry{}, err
	}

	c.log.Debug("entry saved", "entry_id", rec.ID, "kind", rec.Kind)
	return newEntry(rec, payload), nil
}

func (c *Controller) fileFromEdit(s *Session, existing *entry.Record, edit *FileEdit) (*entry.File, error) {
	f := &entry.File{Title: edit.Title, Category: edit.Category}

	switch content := edit.Content.(type) {
	case Replace:
		f.Filename = content.Filename
		f.MediaType = content.MediaType
		f.Content = content.Data
		f.Size = int64(len(content.Data))
	case KeepContent:
		if existing == nil {
			return nil, fmt.Errorf("%w: new file needs content", entry.ErrInvalidPayload)
		}
		if existing.Kind != entry.KindFile {
			return nil, fmt.Errorf("%w: entry is %s, got file", entry.ErrInvalidKind, existing.Kind)
		}
		p, err := s.Keyring.OpenPayload(existing.Kind, existing.Ciphertext)
		if err != nil {
			return nil, err
		}
		old := p.(*entry.File)
		f.Filename = old.Filename
		f.MediaType = old.MediaType
		f.Content = old.Content
		f.Size = old.Size
	default:
		return nil, fmt.Errorf("%w: file content is not set", entry.ErrInvalidPayload)
	}

	return f, nil
}

func (c *Controller) Remove(ctx context.Context, s *Session, id string) error {
	if !s.Unlocked() {
		return session.ErrVaultLocked
	}
	return c.backend.Delete(ctx, s.Token, id)
}

// Purge удаляет все записи и возвращает их количество.
func (c *Controller) Purge(ctx context.Context, s *Session) (int64, error) {
	if !s.Unlocked() {
		return 0, session.ErrVaultLocked
	}
	return c.backend.DeleteAll(ctx, s.Token)
}

func (c *Controller) Summary(ctx context.Context, s *Session) (entry.Summary, error) {
	if !s.Unlocked() {
		return entry.Summary{}, session.ErrVaultLocked
	}
	return c.backend.Summary(ctx, s.Token)
}

// ReencryptAll меняет мастер-пароль. Все записи расшифровываются старым
// ключом и шифруются новым в памяти, после чего бэкенд одной транзакцией
// меняет хэш и все шифротексты. При любой ошибке ничего не меняется.
//
// Бэкенд сбрасывает разблокировку всех сессий, поэтому возвращается
// заблокированная сессия.
func (c *Controller) ReencryptAll(ctx context.Context, s *Session, current, next string) (*Session, error) {
	if !s.Unlocked() {
		return nil, session.ErrVaultLocked
	}

	oldRing, err := crypto.NewKeyring(current, s.KDFSalt, c.params)
	if err != nil {
		return nil, fmt.Errorf("derive current key: %w", err)
	}
	defer oldRing.Zero()

	if !sameKey(oldRing, s.Keyring) {
		return nil, account.ErrInvalidCredential
	}

	newRing, err := crypto.NewKeyring(next, s.KDFSalt, c.params)
	if err != nil {
		return nil, fmt.Errorf("derive next key: %w", err)
	}
	defer newRing.Zero()

	records, err := c.backend.List(ctx, s.Token)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}

	rewrites := make([]entry.Rewrite, 0, len(records))
	for _, rec := range records {
		pt, err := oldRing.Decrypt(rec.Kind, rec.Ciphertext)
		if err != nil {
			c.log.Error("rotation aborted", "entry_id", rec.ID, "kind", rec.Kind, "error", err)
			return nil, fmt.Errorf("entry %s: %w", rec.ID, crypto.ErrDecryptionFailed)
		}

		blob, err := newRing.Encrypt(rec.Kind, pt)
		crypto.ClearMemory(pt)
		if err != nil {
			return nil, fmt.Errorf("entry %s: %w", rec.ID, err)
		}
		rewrites = append(rewrites, entry.Rewrite{ID: rec.ID, Ciphertext: blob})
	}

	if err := c.backend.RotateMaster(ctx, s.Token, current, next, rewrites); err != nil {
		if errors.Is(err, entry.ErrRotationConflict) {
			c.log.Warn("rotation conflict, vault changed concurrently", "account_id", s.Account.ID)
		}
		return nil, err
	}

	c.log.Info("master secret rotated", "account_id", s.Account.ID, "entries", len(rewrites))

	s.Lock()
	return &Session{
		Token:   s.Token,
		Account: s.Account,
		KDFSalt: s.KDFSalt,
	}, nil
}

func sameKey(a, b *crypto.Keyring) bool {
	ka, kb := a.Key(), b.Key()
	defer crypto.ClearMemory(ka)
	defer crypto.ClearMemory(kb)

	return len(ka) != 0 && subtle.ConstantTimeCompare(ka, kb) == 1
}

func newEntry(rec entry.Record, p entry.Payload) Entry {
	return Entry{
		ID:        rec.ID,
		Kind:      rec.Kind,
		Payload:   p,
		CreatedAt: rec.CreatedAt,
		UpdatedAt: rec.UpdatedAt,
	}
}
