package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"

	"pixelvault/internal/domain/session"
)

type MockSessions struct {
	mock.Mock
}

func (m *MockSessions) Begin(ctx context.Context, accountID int) (session.Token, error) {
	args := m.Called(ctx, accountID)
	return args.Get(0).(session.Token), args.Error(1)
}

func (m *MockSessions) Validate(ctx context.Context, token string) (session.Info, error) {
	args := m.Called(ctx, token)
	return args.Get(0).(session.Info), args.Error(1)
}

func (m *MockSessions) Unlock(ctx context.Context, token, masterHash string) error {
	args := m.Called(ctx, token, masterHash)
	return args.Error(0)
}

func (m *MockSessions) End(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *MockSessions) LockAccount(ctx context.Context, accountID int) error {
	args := m.Called(ctx, accountID)
	return args.Error(0)
}

type whoami struct {
	AccountID int    `json:"account_id"`
	Token     string `json:"token"`
}

type whoamiOutput struct {
	Body whoami
}

func setup(t *testing.T, sessions *MockSessions) humatest.TestAPI {
	_, api := humatest.New(t)
	a := New(api, sessions, slog.Default())

	register := func(path string, mw func(huma.Context, func(huma.Context))) {
		huma.Register(api, huma.Operation{
			OperationID: "whoami" + path,
			Method:      http.MethodGet,
			Path:        path,
			Middlewares: huma.Middlewares{mw},
		}, func(ctx context.Context, _ *struct{}) (*whoamiOutput, error) {
			out := &whoamiOutput{}
			out.Body.AccountID, _ = GetUserID(ctx)
			out.Body.Token, _ = TokenFrom(ctx)
			return out, nil
		})
	}
	register("/authenticated", a.RequireAuthenticated())
	register("/unlocked", a.RequireUnlocked())
	register("/optional", a.Optional())

	return api
}

func decode(t *testing.T, raw []byte) whoami {
	t.Helper()
	var body whoami
	require.NoError(t, json.Unmarshal(raw, &body))
	return body
}

func TestAuth_Guards(t *testing.T) {
	live := session.Info{AccountID: 7, Authenticated: true, ExpiresAt: time.Now().Add(time.Hour)}
	open := live
	open.Unlocked = true

	tests := []struct {
		name       string
		path       string
		header     string
		info       session.Info
		err        error
		wantStatus int
	}{
		{name: "no header", path: "/authenticated", wantStatus: http.StatusUnauthorized},
		{name: "not bearer", path: "/authenticated", header: "Authorization: Basic abc", wantStatus: http.StatusUnauthorized},
		{name: "unknown token", path: "/authenticated", header: "Authorization: Bearer tok", err: session.ErrNotAuthenticated, wantStatus: http.StatusUnauthorized},
		{name: "store failure", path: "/authenticated", header: "Authorization: Bearer tok", err: errors.New("db down"), wantStatus: http.StatusInternalServerError},
		{name: "authenticated", path: "/authenticated", header: "Authorization: Bearer tok", info: live, wantStatus: http.StatusOK},
		{name: "locked vault", path: "/unlocked", header: "Authorization: Bearer tok", info: live, wantStatus: http.StatusForbidden},
		{name: "unlocked vault", path: "/unlocked", header: "Authorization: Bearer tok", info: open, wantStatus: http.StatusOK},
		{name: "optional without token", path: "/optional", wantStatus: http.StatusOK},
		{name: "optional with dead token", path: "/optional", header: "Authorization: Bearer tok", err: session.ErrNotAuthenticated, wantStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sessions := new(MockSessions)
			sessions.On("Validate", mock.Anything, "tok").Return(tt.info, tt.err).Maybe()
			api := setup(t, sessions)

			var args []any
			if tt.header != "" {
				args = append(args, tt.header)
			}
			resp := api.Get(tt.path, args...)

			assert.Equal(t, tt.wantStatus, resp.Code, resp.Body.String())
		})
	}
}

func TestAuth_PutsSessionIntoContext(t *testing.T) {
	sessions := new(MockSessions)
	sessions.On("Validate", mock.Anything, "tok").
		Return(session.Info{AccountID: 42, Authenticated: true, Unlocked: true}, nil)
	api := setup(t, sessions)

	resp := api.Get("/unlocked", "Authorization: Bearer tok")

	assert.Equal(t, http.StatusOK, resp.Code)
	body := decode(t, resp.Body.Bytes())
	assert.Equal(t, 42, body.AccountID)
	assert.Equal(t, "tok", body.Token)
}

func TestAuth_OptionalKeepsTokenOfDeadSession(t *testing.T) {
	sessions := new(MockSessions)
	sessions.On("Validate", mock.Anything, "tok").Return(session.Info{}, session.ErrNotAuthenticated)
	api := setup(t, sessions)

	resp := api.Get("/optional", "Authorization: Bearer tok")

	assert.Equal(t, http.StatusOK, resp.Code)
	body := decode(t, resp.Body.Bytes())
	assert.Zero(t, body.AccountID)
	assert.Equal(t, "tok", body.Token)
}

func TestGetUserID_WithoutSession(t *testing.T) {
	_, ok := GetUserID(context.Background())
	assert.False(t, ok)

	ctx := WithSession(context.Background(), session.Info{AccountID: 3, Authenticated: true}, "t")
	id, ok := GetUserID(ctx)
	assert.True(t, ok)
	assert.Equal(t, 3, id)
}
