// Package vault - клиентская половина хранилища: шифрует записи перед
// отправкой, расшифровывает при чтении и перешифровывает при смене
// мастер-пароля. Сервер видит только шифротексты.
package vault

import (
	"context"
	"time"

	"pixelvault/internal/app/client/crypto"
	"pixelvault/internal/domain/account"
	"pixelvault/internal/domain/entry"
)

// Backend - хранилище шифротекстов: удаленный сервер или локальная база.
type Backend interface {
	VerifyMaster(ctx context.Context, token, master string) ([]byte, error)
	List(ctx context.Context, token string) ([]entry.Record, error)
	Get(ctx context.Context, token, id string) (entry.Record, error)
	Create(ctx context.Context, token string, kind entry.Kind, ciphertext string) (entry.Record, error)
	Update(ctx context.Context, token, id, ciphertext string) (entry.Record, error)
	Delete(ctx context.Context, token, id string) error
	DeleteAll(ctx context.Context, token string) (int64, error)
	Summary(ctx context.Context, token string) (entry.Summary, error)
	RotateMaster(ctx context.Context, token, current, next string, rewrites []entry.Rewrite) error
}

// Session - явный контекст работы с хранилищем. Keyring == nil, пока
// хранилище не разблокировано.
type Session struct {
	Token   string
	Account account.Profile
	KDFSalt []byte
	Keyring *crypto.Keyring
}

func (s *Session) Unlocked() bool {
	return s != nil && s.Keyring != nil
}

// Lock затирает ключ сессии.
func (s *Session) Lock() {
	if s.Keyring != nil {
		s.Keyring.Zero()
		s.Keyring = nil
	}
}

// Entry - расшифрованная запись.
type Entry struct {
	ID        string
	Kind      entry.Kind
	Payload   entry.Payload
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Title возвращает подпись записи для списков.
func (e Entry) Title() string {
	switch p := e.Payload.(type) {
	case *entry.Credential:
		return p.Service
	case *entry.Note:
		return p.Title
	case *entry.File:
		return p.Title
	}
	return ""
}

// Category возвращает категорию записи.
func (e Entry) Category() string {
	switch p := e.Payload.(type) {
	case *entry.Credential:
		return p.Category
	case *entry.Note:
		return p.Category
	case *entry.File:
		return p.Category
	}
	return ""
}

// OpenReport перечисляет записи, которые не удалось расшифровать.
type OpenReport struct {
	Dropped []string
}

// SaveRequest - создание (ID пуст) или изменение записи. Задается ровно
// одно из Payload и File.
type SaveRequest struct {
	ID      string
	Payload entry.Payload
	File    *FileEdit
}

// FileEdit позволяет поменять метаданные файла, не пересылая содержимое заново.
type FileEdit struct {
	Title    string
	Category string
	Content  FileContent
}

// FileContent - KeepContent или Replace.
type FileContent interface {
	fileContent()
}

// KeepContent оставляет сохраненное содержимое файла. Только для изменения.
type KeepContent struct{}

// Replace заменяет содержимое файла.
type Replace struct {
	Filename  string
	MediaType string
	Data      []byte
}

func (KeepContent) fileContent() {}
func (Replace) fileContent()     {}
