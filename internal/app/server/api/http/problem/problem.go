// Package problem переводит доменные ошибки в ответы huma (RFC 9457).
package problem

import (
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/exp/slog"

	"pixelvault/internal/domain/account"
	"pixelvault/internal/domain/entry"
	"pixelvault/internal/domain/rotation"
	"pixelvault/internal/domain/session"
)

type rule struct {
	target error
	status int
	// message пустое - берется текст ошибки
	message string
}

// Порядок важен: ErrUnlockDenied и ErrInvalidCredential дают одинаковый ответ.
var rules = []rule{
	{target: account.ErrInvalidCredential, status: http.StatusUnauthorized, message: "invalid credentials"},
	{target: session.ErrUnlockDenied, status: http.StatusUnauthorized, message: "invalid credentials"},
	{target: session.ErrNotAuthenticated, status: http.StatusUnauthorized},
	{target: session.ErrVaultLocked, status: http.StatusForbidden},
	{target: account.ErrDuplicateIdentity, status: http.StatusConflict},
	{target: entry.ErrRotationConflict, status: http.StatusConflict, message: "entries changed during rotation, retry"},
	{target: account.ErrWeakSecret, status: http.StatusUnprocessableEntity},
	{target: account.ErrInvalidInput, status: http.StatusUnprocessableEntity},
	{target: entry.ErrInvalidKind, status: http.StatusUnprocessableEntity},
	{target: entry.ErrEmptyCiphertext, status: http.StatusUnprocessableEntity},
	{target: entry.ErrInvalidPayload, status: http.StatusUnprocessableEntity},
	{target: account.ErrNotFound, status: http.StatusNotFound},
	{target: entry.ErrNotFound, status: http.StatusNotFound},
	{target: rotation.ErrNotFound, status: http.StatusNotFound},
	{target: entry.ErrPayloadTooLarge, status: http.StatusRequestEntityTooLarge},
}

type Mapper struct {
	log *slog.Logger
}

func New(log *slog.Logger) *Mapper {
	return &Mapper{log: log.With("component", "problem")}
}

// From возвращает ошибку huma с нужным статусом. Неизвестные ошибки
// логируются и уходят клиенту как 500 без подробностей.
func (m *Mapper) From(op string, err error) error {
	if err == nil {
		return nil
	}

	var statusErr huma.StatusError
	if errors.As(err, &statusErr) {
		return statusErr
	}

	for _, r := range rules {
		if !errors.Is(err, r.target) {
			continue
		}
		return huma.NewError(r.status, message(err, r))
	}

	m.log.Error("internal error", "op", op, "error", err)
	return huma.Error500InternalServerError("internal error")
}

func message(err error, r rule) string {
	var de *account.DomainError
	if errors.As(err, &de) && de.Message != "" {
		return de.Message
	}
	if r.message != "" {
		return r.message
	}
	return r.target.Error()
}
