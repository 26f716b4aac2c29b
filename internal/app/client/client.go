// Package client - фасад для CLI: выбирает бэкенд (сервер или локальная
// база), хранит токен и кэш ключа между запусками.
package client

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/exp/slog"

	"pixelvault/internal/app/client/config"
	"pixelvault/internal/app/client/crypto"
	"pixelvault/internal/app/client/remote"
	"pixelvault/internal/app/client/storage"
	"pixelvault/internal/app/client/vault"
	"pixelvault/internal/domain/account"
	"pixelvault/internal/domain/session"
)

// ErrRemoteOnly - операция требует сервера и недоступна в MODE=local.
var ErrRemoteOnly = errors.New("операция доступна только при работе с сервером (MODE=remote)")

const localOwner = "local:"

type options struct {
	kdf        crypto.Params
	bcryptCost int
}

type App struct {
	config *config.Config
	log    *slog.Logger
	remote *remote.Client
	local  *storage.Local
	vault  *vault.Controller
	tokens *TokenStore
	keys   *crypto.KeyCache
}

// Status - состояние клиента для `auth status`.
type Status struct {
	Mode          string
	Authenticated bool
	Unlocked      bool
	KeyCached     bool
	Account       *account.Profile
	ExpiresAt     *time.Time
}

func New(ctx context.Context, cfg *config.Config, log *slog.Logger) (*App, error) {
	return newApp(ctx, cfg, log, options{kdf: crypto.DefaultParams(), bcryptCost: bcrypt.DefaultCost})
}

func newApp(ctx context.Context, cfg *config.Config, log *slog.Logger, opts options) (*App, error) {
	app := &App{
		config: cfg,
		log:    log.With("component", "client"),
		tokens: NewTokenStore(cfg.TokenPath()),
		keys:   crypto.NewKeyCache(cfg.KeyCachePath(), cfg.UnlockTTL),
	}

	var backend vault.Backend
	if cfg.IsLocalMode() {
		local, err := storage.Open(ctx, cfg.DatabasePath(), account.NewBcryptHasher(opts.bcryptCost), log)
		if err != nil {
			return nil, fmt.Errorf("ошибка открытия локального хранилища: %w", err)
		}
		app.local = local
		backend = local
	} else {
		app.remote = remote.New(cfg, log)
		backend = app.remote
	}

	app.vault = vault.NewController(backend, opts.kdf, log)
	return app, nil
}

func (a *App) Close() error {
	if a.local != nil {
		return a.local.Close()
	}
	return nil
}

func (a *App) Config() *config.Config {
	return a.config
}

func (a *App) Vault() *vault.Controller {
	return a.vault
}

// CheckConnection проверяет доступность сервера
func (a *App) CheckConnection(ctx context.Context) error {
	if a.remote == nil {
		return ErrRemoteOnly
	}
	return a.remote.HealthCheck(ctx)
}

// InitLocal создает локальное хранилище с мастер-паролем.
func (a *App) InitLocal(ctx context.Context, master string) error {
	if a.local == nil {
		return fmt.Errorf("локальное хранилище доступно только в MODE=local")
	}
	_, err := a.local.Init(ctx, master)
	return err
}

func (a *App) Register(ctx context.Context, req account.RegisterRequest) (remote.Registration, error) {
	if a.remote == nil {
		return remote.Registration{}, ErrRemoteOnly
	}

	reg, err := a.remote.Register(ctx, req)
	if err != nil {
		return remote.Registration{}, err
	}

	a.log.Info("Пользователь успешно зарегистрирован", "account_id", reg.Account.ID, "handle", reg.Account.Handle)
	return reg, nil
}

// Login выполняет вход и сохраняет токен. Хранилище остается заблокированным.
func (a *App) Login(ctx context.Context, identity, secret string) (remote.Login, error) {
	if a.remote == nil {
		return remote.Login{}, ErrRemoteOnly
	}

	login, err := a.remote.Login(ctx, identity, secret)
	if err != nil {
		return remote.Login{}, err
	}

	if err := a.tokens.Save(login.Token); err != nil {
		return remote.Login{}, err
	}
	if err := a.keys.Clear(); err != nil {
		a.log.Warn("Не удалось очистить кэш ключа", "error", err)
	}

	a.log.Info("Вход выполнен успешно", "account_id", login.Account.ID, "handle", login.Account.Handle)
	return login, nil
}

// Logout завершает сессию на сервере и удаляет токен и кэш ключа.
func (a *App) Logout(ctx context.Context) error {
	if err := a.keys.Clear(); err != nil {
		return err
	}
	if a.remote == nil {
		return nil
	}

	token, err := a.tokens.Load()
	if errors.Is(err, ErrNoToken) {
		return nil
	}
	if err != nil {
		return err
	}

	if err := a.remote.Logout(ctx, token); err != nil {
		a.log.Warn("Сервер не подтвердил выход", "error", err)
	}
	return a.tokens.Clear()
}

// Unlock проверяет мастер-пароль, выводит ключ и кладет его в кэш.
func (a *App) Unlock(ctx context.Context, master string) (*vault.Session, error) {
	base, _, err := a.baseSession(ctx)
	if err != nil {
		return nil, err
	}

	s, err := a.vault.Unlock(ctx, base, master)
	if err != nil {
		return nil, err
	}

	key := s.Keyring.Key()
	defer crypto.ClearMemory(key)
	if err := a.keys.Save(a.owner(s.Token), key); err != nil {
		a.log.Warn("Не удалось сохранить кэш ключа", "error", err)
	}
	return s, nil
}

// Lock удаляет кэш ключа. Сессия на сервере остается.
func (a *App) Lock() error {
	return a.keys.Clear()
}

// Session восстанавливает сессию из токена и кэша ключа. Если ключа нет
// или сервер считает хранилище заблокированным, сессия возвращается
// заблокированной.
func (a *App) Session(ctx context.Context) (*vault.Session, error) {
	s, _, err := a.session(ctx)
	return s, err
}

// session - Session вместе с состоянием, которое вернул бэкенд.
func (a *App) session(ctx context.Context) (*vault.Session, remote.State, error) {
	s, state, err := a.baseSession(ctx)
	if err != nil {
		return nil, state, err
	}
	if !state.Unlocked {
		if err := a.keys.Clear(); err != nil {
			a.log.Warn("Не удалось очистить кэш ключа", "error", err)
		}
		return s, state, nil
	}

	key, err := a.keys.Load(a.owner(s.Token))
	if err != nil {
		if !errors.Is(err, crypto.ErrKeyCacheMiss) {
			a.log.Warn("Не удалось прочитать кэш ключа", "error", err)
		}
		return s, state, nil
	}
	defer crypto.ClearMemory(key)

	ring, err := crypto.KeyringFromKey(key)
	if err != nil {
		return s, state, nil
	}
	s.Keyring = ring
	return s, state, nil
}

// UnlockedSession - Session, но заблокированное хранилище считается ошибкой.
func (a *App) UnlockedSession(ctx context.Context) (*vault.Session, error) {
	s, err := a.Session(ctx)
	if err != nil {
		return nil, err
	}
	if !s.Unlocked() {
		return nil, session.ErrVaultLocked
	}
	return s, nil
}

// baseSession возвращает заблокированную сессию и состояние сессии на
// стороне бэкенда. Локальное хранилище всегда считается разблокированным.
func (a *App) baseSession(ctx context.Context) (*vault.Session, remote.State, error) {
	if a.local != nil {
		salt, err := a.local.KDFSalt(ctx)
		if err != nil {
			return nil, remote.State{}, err
		}
		s := &vault.Session{Account: account.Profile{Handle: "local"}, KDFSalt: salt}
		return s, remote.State{Authenticated: true, Unlocked: true}, nil
	}

	token, err := a.tokens.Load()
	if err != nil {
		return nil, remote.State{}, err
	}

	state, err := a.remote.Session(ctx, token)
	if err != nil {
		return nil, remote.State{}, err
	}
	if !state.Authenticated || state.Account == nil {
		if err := a.tokens.Clear(); err != nil {
			a.log.Warn("Не удалось удалить токен", "error", err)
		}
		return nil, remote.State{}, session.ErrNotAuthenticated
	}

	return &vault.Session{
		Token:   token,
		Account: *state.Account,
		KDFSalt: state.KDFSalt,
	}, state, nil
}

// owner привязывает кэш ключа к токену, чтобы ключ не пережил выход.
func (a *App) owner(token string) string {
	if a.local != nil {
		return localOwner + a.config.DatabasePath()
	}
	return session.HashToken(token)
}

func (a *App) Status(ctx context.Context) (Status, error) {
	st := Status{Mode: a.config.Mode}

	s, state, err := a.session(ctx)
	switch {
	case errors.Is(err, ErrNoToken), errors.Is(err, session.ErrNotAuthenticated), errors.Is(err, storage.ErrNotInitialized):
		return st, nil
	case err != nil:
		return st, err
	}

	st.Authenticated = true
	st.Account = &s.Account
	st.Unlocked = s.Unlocked()
	st.KeyCached = s.Unlocked()
	st.ExpiresAt = state.ExpiresAt
	return st, nil
}

func (a *App) Profile(ctx context.Context) (account.Profile, error) {
	if a.remote == nil {
		return account.Profile{}, ErrRemoteOnly
	}
	token, err := a.tokens.Load()
	if err != nil {
		return account.Profile{}, err
	}
	return a.remote.Profile(ctx, token)
}

func (a *App) UpdateProfile(ctx context.Context, upd account.ProfileUpdate) (account.Profile, error) {
	if a.remote == nil {
		return account.Profile{}, ErrRemoteOnly
	}
	token, err := a.tokens.Load()
	if err != nil {
		return account.Profile{}, err
	}
	return a.remote.UpdateProfile(ctx, token, upd)
}

// ChangePassword меняет пароль аккаунта. Мастер-пароль и записи не меняются.
func (a *App) ChangePassword(ctx context.Context, current, next string) error {
	if a.remote == nil {
		return ErrRemoteOnly
	}
	token, err := a.tokens.Load()
	if err != nil {
		return err
	}
	return a.remote.ChangePassword(ctx, token, current, next)
}

// ChangeMaster перешифровывает все записи новым мастер-паролем.
// После успеха хранилище заблокировано, кэш ключа удален.
func (a *App) ChangeMaster(ctx context.Context, current, next string) error {
	s, err := a.Session(ctx)
	if err != nil {
		return err
	}
	if !s.Unlocked() {
		// ротации нужен список записей, а он доступен только после разблокировки
		if s, err = a.vault.Unlock(ctx, s, current); err != nil {
			return err
		}
	}

	if _, err := a.vault.ReencryptAll(ctx, s, current, next); err != nil {
		return err
	}
	return a.keys.Clear()
}

// DeleteAccount удаляет аккаунт вместе со всеми записями.
func (a *App) DeleteAccount(ctx context.Context, secret string) error {
	if a.remote == nil {
		return ErrRemoteOnly
	}
	token, err := a.tokens.Load()
	if err != nil {
		return err
	}
	if err := a.remote.DeleteAccount(ctx, token, secret); err != nil {
		return err
	}

	if err := a.keys.Clear(); err != nil {
		a.log.Warn("Не удалось очистить кэш ключа", "error", err)
	}
	return a.tokens.Clear()
}
