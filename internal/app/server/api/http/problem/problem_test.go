package problem

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"

	"pixelvault/internal/domain/account"
	"pixelvault/internal/domain/entry"
	"pixelvault/internal/domain/session"
)

func TestMapper_From(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantMessage string
	}{
		{name: "invalid credential", err: account.ErrInvalidCredential, wantStatus: http.StatusUnauthorized, wantMessage: "invalid credentials"},
		{name: "unlock denied looks the same", err: session.ErrUnlockDenied, wantStatus: http.StatusUnauthorized, wantMessage: "invalid credentials"},
		{name: "not authenticated", err: session.ErrNotAuthenticated, wantStatus: http.StatusUnauthorized},
		{name: "vault locked", err: session.ErrVaultLocked, wantStatus: http.StatusForbidden},
		{name: "duplicate identity", err: account.ErrDuplicateIdentity, wantStatus: http.StatusConflict},
		{name: "weak secret keeps domain message", err: &account.DomainError{Err: account.ErrWeakSecret, Message: "secret must be at least 6 characters"}, wantStatus: http.StatusUnprocessableEntity, wantMessage: "secret must be at least 6 characters"},
		{name: "invalid input", err: &account.DomainError{Err: account.ErrInvalidInput, Message: "handle is too short"}, wantStatus: http.StatusUnprocessableEntity, wantMessage: "handle is too short"},
		{name: "invalid kind", err: fmt.Errorf("%w: %q", entry.ErrInvalidKind, "card"), wantStatus: http.StatusUnprocessableEntity},
		{name: "entry not found", err: entry.ErrNotFound, wantStatus: http.StatusNotFound},
		{name: "account not found", err: account.ErrNotFound, wantStatus: http.StatusNotFound},
		{name: "too large", err: entry.ErrPayloadTooLarge, wantStatus: http.StatusRequestEntityTooLarge},
		{name: "rotation conflict", err: fmt.Errorf("commit: %w", entry.ErrRotationConflict), wantStatus: http.StatusConflict},
		{name: "internal", err: errors.New("pq: connection refused"), wantStatus: http.StatusInternalServerError, wantMessage: "internal error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := New(slog.Default())

			err := m.From("test", tt.err)

			var statusErr huma.StatusError
			require.ErrorAs(t, err, &statusErr)
			assert.Equal(t, tt.wantStatus, statusErr.GetStatus())
			if tt.wantMessage != "" {
				assert.Contains(t, err.Error(), tt.wantMessage)
			}
		})
	}
}

func TestMapper_From_HidesInternalDetails(t *testing.T) {
	var buf bytes.Buffer
	m := New(slog.New(slog.NewJSONHandler(&buf, nil)))

	err := m.From("list entries", errors.New("relation \"entries\" does not exist"))

	assert.NotContains(t, err.Error(), "relation")
	assert.Contains(t, buf.String(), "relation")
	assert.Contains(t, buf.String(), "list entries")
}

func TestMapper_From_PassesThroughStatusErrors(t *testing.T) {
	m := New(slog.Default())
	in := huma.Error400BadRequest("bad")

	assert.Equal(t, in, m.From("op", in))
	assert.NoError(t, m.From("op", nil))
}
