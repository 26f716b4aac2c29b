package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/exp/slog"

	"pixelvault/internal/app/client/config"
	"pixelvault/internal/app/client/crypto"
	"pixelvault/internal/app/client/storage"
	"pixelvault/internal/app/client/vault"
	"pixelvault/internal/domain/account"
	"pixelvault/internal/domain/entry"
	"pixelvault/internal/domain/session"
)

var testOpts = options{
	kdf:        crypto.Params{Time: 1, Memory: 64, Threads: 1},
	bcryptCost: bcrypt.MinCost,
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newLocalApp(t *testing.T) *App {
	t.Helper()

	cfg := &config.Config{
		Mode:           config.ModeLocal,
		ConfigDir:      t.TempDir(),
		UnlockTTL:      time.Minute,
		RequestTimeout: time.Second,
	}
	app, err := newApp(context.Background(), cfg, discard(), testOpts)
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })
	return app
}

func TestApp_LocalLifecycle(t *testing.T) {
	app := newLocalApp(t)
	ctx := context.Background()

	st, err := app.Status(ctx)
	require.NoError(t, err)
	assert.False(t, st.Authenticated, "хранилище еще не создано")

	_, err = app.Session(ctx)
	assert.ErrorIs(t, err, storage.ErrNotInitialized)

	require.NoError(t, app.InitLocal(ctx, "first-master"))

	s, err := app.Session(ctx)
	require.NoError(t, err)
	assert.False(t, s.Unlocked())

	_, err = app.UnlockedSession(ctx)
	assert.ErrorIs(t, err, session.ErrVaultLocked)

	_, err = app.Unlock(ctx, "wrong")
	assert.ErrorIs(t, err, account.ErrInvalidCredential)

	s, err = app.Unlock(ctx, "first-master")
	require.NoError(t, err)
	_, err = app.Vault().Save(ctx, s, vault.SaveRequest{Payload: &entry.Note{Title: "hello"}})
	require.NoError(t, err)

	// следующий запуск CLI берет ключ из кэша
	again, err := app.UnlockedSession(ctx)
	require.NoError(t, err)
	entries, _, err := app.Vault().Open(ctx, again)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "hello", entries[0].Title())

	st, err = app.Status(ctx)
	require.NoError(t, err)
	assert.True(t, st.Unlocked)
	assert.Equal(t, config.ModeLocal, st.Mode)

	require.NoError(t, app.Lock())
	s, err = app.Session(ctx)
	require.NoError(t, err)
	assert.False(t, s.Unlocked())
}

func TestApp_LocalChangeMaster(t *testing.T) {
	app := newLocalApp(t)
	ctx := context.Background()
	require.NoError(t, app.InitLocal(ctx, "first-master"))

	s, err := app.Unlock(ctx, "first-master")
	require.NoError(t, err)
	original := map[string]entry.Payload{}
	for _, p := range []entry.Payload{
		&entry.Credential{Service: "mail", Secret: "x"},
		&entry.Note{Title: "план", Body: "купить молоко"},
	} {
		e, err := app.Vault().Save(ctx, s, vault.SaveRequest{Payload: p})
		require.NoError(t, err)
		original[e.ID] = e.Payload
	}

	require.NoError(t, app.ChangeMaster(ctx, "first-master", "second-master"))

	s, err = app.Session(ctx)
	require.NoError(t, err)
	assert.False(t, s.Unlocked(), "кэш ключа удален")

	_, err = app.Unlock(ctx, "first-master")
	assert.ErrorIs(t, err, account.ErrInvalidCredential)

	s, err = app.Unlock(ctx, "second-master")
	require.NoError(t, err)
	entries, report, err := app.Vault().Open(ctx, s)
	require.NoError(t, err)
	assert.Empty(t, report.Dropped)
	require.Len(t, entries, len(original))
	for _, e := range entries {
		assert.Equal(t, original[e.ID], e.Payload)
	}

	// сохраненные шифротексты не открываются ключом старого мастер-пароля
	salt, err := app.local.KDFSalt(ctx)
	require.NoError(t, err)
	oldRing, err := crypto.NewKeyring("first-master", salt, testOpts.kdf)
	require.NoError(t, err)
	defer oldRing.Zero()

	records, err := app.local.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, records, len(original))
	for _, rec := range records {
		_, err := oldRing.OpenPayload(rec.Kind, rec.Ciphertext)
		assert.ErrorIs(t, err, crypto.ErrDecryptionFailed, "запись %s", rec.ID)
	}
}

func TestApp_LocalRemoteOnlyOps(t *testing.T) {
	app := newLocalApp(t)
	ctx := context.Background()

	_, err := app.Login(ctx, "a", "b")
	assert.ErrorIs(t, err, ErrRemoteOnly)
	_, err = app.Register(ctx, account.RegisterRequest{})
	assert.ErrorIs(t, err, ErrRemoteOnly)
	assert.ErrorIs(t, app.ChangePassword(ctx, "a", "b"), ErrRemoteOnly)
	assert.ErrorIs(t, app.DeleteAccount(ctx, "a"), ErrRemoteOnly)
	_, err = app.Profile(ctx)
	assert.ErrorIs(t, err, ErrRemoteOnly)
	assert.ErrorIs(t, app.CheckConnection(ctx), ErrRemoteOnly)
}

// fakeServer отвечает на вызовы авторизации так же, как настоящий сервер.
type fakeServer struct {
	unlocked  atomic.Bool
	loggedIn  atomic.Bool
	sessions  atomic.Int32
	expiresAt time.Time
}

func (f *fakeServer) handler() http.Handler {
	salt := make([]byte, crypto.SaltSize)
	profile := account.Profile{ID: 5, Handle: "alice", Contact: "alice@example.com"}

	write := func(w http.ResponseWriter, status int, v any) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(v)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		f.loggedIn.Store(true)
		f.unlocked.Store(false)
		write(w, http.StatusOK, map[string]any{"token": "tok", "expires_at": time.Now().Add(time.Hour), "account": profile})
	})
	mux.HandleFunc("GET /api/auth/session", func(w http.ResponseWriter, r *http.Request) {
		f.sessions.Add(1)
		if !f.loggedIn.Load() || r.Header.Get("Authorization") != "Bearer tok" {
			write(w, http.StatusOK, map[string]any{"authenticated": false, "unlocked": false})
			return
		}
		state := map[string]any{"authenticated": true, "unlocked": f.unlocked.Load(), "account": profile, "kdf_salt": salt}
		if !f.expiresAt.IsZero() {
			state["expires_at"] = f.expiresAt
		}
		write(w, http.StatusOK, state)
	})
	mux.HandleFunc("POST /api/auth/verify-master", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			MasterSecret string `json:"master_secret"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body.MasterSecret != "server-master" {
			write(w, http.StatusUnauthorized, map[string]any{"status": 401, "detail": "invalid credentials"})
			return
		}
		f.unlocked.Store(true)
		write(w, http.StatusOK, map[string]any{"unlocked": true, "kdf_salt": salt})
	})
	mux.HandleFunc("POST /api/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		f.loggedIn.Store(false)
		write(w, http.StatusOK, map[string]string{"status": "Ok"})
	})
	return mux
}

func newRemoteApp(t *testing.T, fake *fakeServer) *App {
	t.Helper()

	srv := httptest.NewServer(fake.handler())
	t.Cleanup(srv.Close)

	cfg := &config.Config{
		Mode:           config.ModeRemote,
		ServerAddress:  strings.TrimPrefix(srv.URL, "http://"),
		ConfigDir:      t.TempDir(),
		UnlockTTL:      time.Minute,
		RequestTimeout: time.Second,
	}
	app, err := newApp(context.Background(), cfg, discard(), testOpts)
	require.NoError(t, err)
	return app
}

func TestApp_RemoteStatus(t *testing.T) {
	fake := &fakeServer{expiresAt: time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC)}
	app := newRemoteApp(t, fake)
	ctx := context.Background()

	_, err := app.Login(ctx, "alice", "secret1")
	require.NoError(t, err)
	_, err = app.Unlock(ctx, "server-master")
	require.NoError(t, err)

	fake.sessions.Store(0)
	st, err := app.Status(ctx)
	require.NoError(t, err)

	assert.True(t, st.Authenticated)
	assert.True(t, st.Unlocked)
	assert.Equal(t, "alice", st.Account.Handle)
	require.NotNil(t, st.ExpiresAt)
	assert.True(t, st.ExpiresAt.Equal(fake.expiresAt))
	assert.Equal(t, int32(1), fake.sessions.Load(), "состояние сессии запрашивается один раз")
}

func TestApp_RemoteLoginUnlockLogout(t *testing.T) {
	fake := &fakeServer{}
	app := newRemoteApp(t, fake)
	ctx := context.Background()

	_, err = app.Session(ctx)
	assert.ErrorIs(t, err, ErrNoToken)

	login, err := app.Login(ctx, "alice", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "alice", login.Account.Handle)

	s, err := app.Session(ctx)
	require.NoError(t, err)
	assert.False(t, s.Unlocked())
	assert.Equal(t, 5, s.Account.ID)

	_, err = app.Unlock(ctx, "nope")
	assert.ErrorIs(t, err, account.ErrInvalidCredential)

	_, err = app.Unlock(ctx, "server-master")
	require.NoError(t, err)

	s, err = app.Session(ctx)
	require.NoError(t, err)
	assert.True(t, s.Unlocked(), "ключ из кэша")

	// сервер сбросил разблокировку (например, после смены мастер-пароля)
	fake.unlocked.Store(false)
	s, err = app.Session(ctx)
	require.NoError(t, err)
	assert.False(t, s.Unlocked())

	require.NoError(t, app.Logout(ctx))
	_, err = app.tokens.Load()
	assert.ErrorIs(t, err, ErrNoToken)

	st, err := app.Status(ctx)
	require.NoError(t, err)
	assert.False(t, st.Authenticated)
}
