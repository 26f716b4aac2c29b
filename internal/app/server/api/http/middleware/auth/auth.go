package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/exp/slog"

	"pixelvault/internal/domain/session"
)

type Auth struct {
	api     huma.API
	session session.Servicer
	log     *slog.Logger
}

func New(api huma.API, session session.Servicer, log *slog.Logger) *Auth {
	return &Auth{
		api:     api,
		session: session,
		log:     log.With("component", "auth_middleware"),
	}
}

type contextKey string

const (
	sessionKey contextKey = "session"
	tokenKey   contextKey = "token"
)

// RequireAuthenticated пропускает запрос с действующей сессией.
func (a *Auth) RequireAuthenticated() func(huma.Context, func(huma.Context)) {
	return a.require(false)
}

// RequireUnlocked дополнительно требует разблокированное хранилище.
func (a *Auth) RequireUnlocked() func(huma.Context, func(huma.Context)) {
	return a.require(true)
}

// Optional кладет сессию в контекст, если токен действителен, и никогда не отказывает.
// Токен кладется в контекст в любом случае, logout удаляет и истекшие сессии.
func (a *Auth) Optional() func(huma.Context, func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		token := bearerToken(ctx)
		if token == "" {
			next(ctx)
			return
		}

		c := context.WithValue(ctx.Context(), tokenKey, token)
		if info, err := a.session.Validate(c, token); err == nil {
			c = context.WithValue(c, sessionKey, info)
		} else if !errors.Is(err, session.ErrNotAuthenticated) {
			a.log.Error("validate session", "error", err)
		}

		next(huma.WithContext(ctx, c))
	}
}

func (a *Auth) require(unlocked bool) func(huma.Context, func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		token := bearerToken(ctx)
		if token == "" {
			a.reject(ctx, http.StatusUnauthorized, "Unauthorized")
			return
		}

		info, err := a.session.Validate(ctx.Context(), token)
		if err != nil {
			if !errors.Is(err, session.ErrNotAuthenticated) {
				a.log.Error("validate session", "error", err)
				a.reject(ctx, http.StatusInternalServerError, "internal error")
				return
			}
			a.reject(ctx, http.StatusUnauthorized, "Unauthorized")
			return
		}

		if unlocked && !info.Unlocked {
			a.reject(ctx, http.StatusForbidden, session.ErrVaultLocked.Error())
			return
		}

		next(huma.WithContext(ctx, WithSession(ctx.Context(), info, token)))
	}
}

func (a *Auth) reject(ctx huma.Context, status int, msg string) {
	if err := huma.WriteErr(a.api, ctx, status, msg); err != nil {
		a.log.Error("write error response", "error", err)
	}
}

func bearerToken(ctx huma.Context) string {
	token, ok := strings.CutPrefix(ctx.Header("Authorization"), "Bearer ")
	if !ok {
		return ""
	}
	return strings.TrimSpace(token)
}

func WithSession(ctx context.Context, info session.Info, token string) context.Context {
	ctx = context.WithValue(ctx, tokenKey, token)
	return context.WithValue(ctx, sessionKey, info)
}

func SessionFrom(ctx context.Context) (session.Info, bool) {
	info, ok := ctx.Value(sessionKey).(session.Info)
	return info, ok
}

func TokenFrom(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(tokenKey).(string)
	return token, ok && token != ""
}

// GetUserID - владелец запроса, только из проверенной сессии.
func GetUserID(ctx context.Context) (int, bool) {
	info, ok := SessionFrom(ctx)
	if !ok || !info.Authenticated {
		return 0, false
	}
	return info.AccountID, true
}
