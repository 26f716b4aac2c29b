package remote

import (
	"fmt"
	"net/http"
	"strings"

	"pixelvault/internal/domain/account"
	"pixelvault/internal/domain/entry"
	"pixelvault/internal/domain/rotation"
	"pixelvault/internal/domain/session"
)

// APIError - ответ сервера со статусом >= 400. Через errors.Is сравнивается
// с доменными ошибками, поэтому вызывающий код не зависит от HTTP.
type APIError struct {
	Status int
	Detail string
	Path   string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("ошибка сервера (%d): %s", e.Status, e.Detail)
	}
	return fmt.Sprintf("ошибка сервера: статус %d", e.Status)
}

func (e *APIError) Unwrap() error {
	entries := strings.HasPrefix(e.Path, "/api/entries")

	switch e.Status {
	case http.StatusUnauthorized:
		if e.Detail == account.ErrInvalidCredential.Error() {
			return account.ErrInvalidCredential
		}
		return session.ErrNotAuthenticated
	case http.StatusForbidden:
		return session.ErrVaultLocked
	case http.StatusConflict:
		if strings.Contains(e.Detail, "rotation") {
			return entry.ErrRotationConflict
		}
		return account.ErrDuplicateIdentity
	case http.StatusNotFound:
		if strings.HasPrefix(e.Path, "/api/users/master/rotations") {
			return rotation.ErrNotFound
		}
		if entries {
			return entry.ErrNotFound
		}
		return account.ErrNotFound
	case http.StatusRequestEntityTooLarge:
		return entry.ErrPayloadTooLarge
	case http.StatusUnprocessableEntity, http.StatusBadRequest:
		if entries {
			return entry.ErrInvalidPayload
		}
		if strings.Contains(e.Detail, "at least") {
			return account.ErrWeakSecret
		}
		return account.ErrInvalidInput
	}
	return nil
}
