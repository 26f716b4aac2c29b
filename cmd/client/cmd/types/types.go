// Package types - общие для подкоманд ключи контекста.
package types

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"pixelvault/internal/app/client"
)

type contextKey string

// ClientAppKey - ключ, под которым корневая команда кладет *client.App в контекст.
const ClientAppKey contextKey = "client_app"

var errNoApp = errors.New("приложение не инициализировано")

func WithApp(ctx context.Context, app *client.App) context.Context {
	return context.WithValue(ctx, ClientAppKey, app)
}

// App достает приложение из контекста команды.
func App(cmd *cobra.Command) (*client.App, error) {
	app, ok := cmd.Context().Value(ClientAppKey).(*client.App)
	if !ok || app == nil {
		return nil, errNoApp
	}
	return app, nil
}

// Context возвращает контекст команды с таймаутом запроса из конфигурации.
func Context(cmd *cobra.Command, app *client.App) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), app.Config().RequestTimeout)
}
