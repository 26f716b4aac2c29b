package auth

import (
	"context"
	"errors"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/exp/slog"

	authmw "pixelvault/internal/app/server/api/http/middleware/auth"
	"pixelvault/internal/app/server/api/http/problem"
	"pixelvault/internal/domain/account"
	"pixelvault/internal/domain/session"
)

// Middlewares - наборы мидлварей для публичных, опциональных и защищенных операций.
type Middlewares struct {
	Public        huma.Middlewares
	Optional      huma.Middlewares
	Authenticated huma.Middlewares
}

type Handler struct {
	accounts account.Servicer
	sessions session.Servicer
	errs     *problem.Mapper
	log      *slog.Logger

	public        huma.Middlewares
	optional      huma.Middlewares
	authenticated huma.Middlewares
}

func NewHandler(accounts account.Servicer, sessions session.Servicer, log *slog.Logger, mws Middlewares) *Handler {
	return &Handler{
		accounts:      accounts,
		sessions:      sessions,
		errs:          problem.New(log),
		log:           log,
		public:        mws.Public,
		optional:      mws.Optional,
		authenticated: mws.Authenticated,
	}
}

func (h *Handler) SetupRoutes(api huma.API) {
	huma.Register(api, h.registerOp(), h.register)
	huma.Register(api, h.loginOp(), h.login)
	huma.Register(api, h.verifyMasterOp(), h.verifyMaster)
	huma.Register(api, h.logoutOp(), h.logout)
	huma.Register(api, h.sessionOp(), h.current)
}

func (h *Handler) register(ctx context.Context, input *registerInput) (*registerOutput, error) {
	a, err := h.accounts.Register(ctx, input.Body)
	if err != nil {
		return nil, h.errs.From("register", err)
	}

	return &registerOutput{
		Body: RegisterResponse{Account: a.Profile(), KDFSalt: a.KDFSalt},
	}, nil
}

func (h *Handler) login(ctx context.Context, input *loginInput) (*loginOutput, error) {
	a, err := h.accounts.Authenticate(ctx, input.Body.Identity, input.Body.Secret)
	if err != nil {
		return nil, h.errs.From("login", err)
	}

	token, err := h.sessions.Begin(ctx, a.ID)
	if err != nil {
		return nil, h.errs.From("begin session", err)
	}

	h.log.Info("account logged in", "account_id", a.ID, "handle", a.Handle)
	return &loginOutput{
		Body: LoginResponse{Token: token.Value, ExpiresAt: token.ExpiresAt, Account: a.Profile()},
	}, nil
}

// verifyMaster проверяет мастер-пароль и разблокирует текущую сессию.
// Неверный мастер-пароль не меняет состояние сессии.
func (h *Handler) verifyMaster(ctx context.Context, input *verifyMasterInput) (*verifyMasterOutput, error) {
	accountID, ok := authmw.GetUserID(ctx)
	token, hasToken := authmw.TokenFrom(ctx)
	if !ok || !hasToken {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}

	a, err := h.accounts.VerifyMaster(ctx, accountID, input.Body.MasterSecret)
	if err != nil && !errors.Is(err, account.ErrInvalidCredential) {
		return nil, h.errs.From("verify master", err)
	}

	// хэш, с которым сверили пароль: разблокировка не пройдет, если его сменила ротация
	if err := h.sessions.Unlock(ctx, token, a.MasterHash); err != nil {
		return nil, h.errs.From("unlock", err)
	}

	return &verifyMasterOutput{
		Body: VerifyMasterResponse{Unlocked: true, KDFSalt: a.KDFSalt},
	}, nil
}

func (h *Handler) logout(ctx context.Context, _ *struct{}) (*logoutOutput, error) {
	if token, ok := authmw.TokenFrom(ctx); ok {
		if err := h.sessions.End(ctx, token); err != nil {
			return nil, h.errs.From("logout", err)
		}
	}
	return &logoutOutput{Body: StatusResponse{Status: "Ok"}}, nil
}

func (h *Handler) current(ctx context.Context, _ *struct{}) (*sessionOutput, error) {
	info, ok := authmw.SessionFrom(ctx)
	if !ok || !info.Authenticated {
		return &sessionOutput{}, nil
	}

	a, err := h.accounts.Profile(ctx, info.AccountID)
	if err != nil {
		if errors.Is(err, account.ErrNotFound) {
			return &sessionOutput{}, nil
		}
		return nil, h.errs.From("session", err)
	}

	profile := a.Profile()
	expiresAt := info.ExpiresAt.UTC().Truncate(time.Second)
	return &sessionOutput{
		Body: SessionResponse{
			Authenticated: true,
			Unlocked:      info.Unlocked,
			ExpiresAt:     &expiresAt,
			Account:       &profile,
			KDFSalt:       a.KDFSalt,
		},
	}, nil
}
