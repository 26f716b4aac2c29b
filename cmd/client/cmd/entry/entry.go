// Package entry - команды работы с записями хранилища.
package entry

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"pixelvault/cmd/client/cmd/types"
	"pixelvault/cmd/client/cmd/ui"
	"pixelvault/internal/app/client"
	"pixelvault/internal/app/client/vault"
	"pixelvault/internal/domain/entry"
)

// EntryCmd - родительская команда для всех операций с записями
var EntryCmd = &cobra.Command{
	Use:     "entry",
	Aliases: []string{"entries"},
	Short:   "Управление записями",
	Long: `Создание, просмотр, изменение и удаление записей: паролей,
заметок и файлов. Все команды требуют разблокированного хранилища.`,
}

// withSession выполняет fn с разблокированной сессией и затирает ключ после.
func withSession(cmd *cobra.Command, fn func(ctx context.Context, app *client.App, s *vault.Session) error) error {
	app, err := types.App(cmd)
	if err != nil {
		return err
	}
	ctx, cancel := types.Context(cmd, app)
	defer cancel()

	s, err := app.UnlockedSession(ctx)
	if err != nil {
		return err
	}
	defer s.Lock()

	return fn(ctx, app, s)
}

const timeLayout = "2006-01-02 15:04"

// printEntry выводит запись. Секрет пароля скрыт, пока reveal == false.
func printEntry(w io.Writer, e vault.Entry, reveal bool) {
	fmt.Fprintf(w, "ID:        %s\n", e.ID)
	fmt.Fprintf(w, "Тип:       %s\n", e.Kind.DisplayName())

	switch p := e.Payload.(type) {
	case *entry.Credential:
		fmt.Fprintf(w, "Сервис:    %s\n", p.Service)
		fmt.Fprintf(w, "Категория: %s\n", p.Category)
		fmt.Fprintf(w, "Логин:     %s\n", p.Username)
		secret := ui.Mask(p.Secret)
		if reveal {
			secret = p.Secret
		}
		fmt.Fprintf(w, "Пароль:    %s\n", secret)
		if p.URL != "" {
			fmt.Fprintf(w, "URL:       %s\n", p.URL)
		}
	case *entry.Note:
		fmt.Fprintf(w, "Заголовок: %s\n", p.Title)
		fmt.Fprintf(w, "Категория: %s\n", p.Category)
		fmt.Fprintf(w, "Текст:\n%s\n", p.Body)
	case *entry.File:
		fmt.Fprintf(w, "Заголовок: %s\n", p.Title)
		fmt.Fprintf(w, "Категория: %s\n", p.Category)
		fmt.Fprintf(w, "Файл:      %s (%s, %d байт)\n", p.Filename, p.MediaType, p.Size)
	}

	fmt.Fprintf(w, "Создана:   %s\n", e.CreatedAt.Local().Format(timeLayout))
	fmt.Fprintf(w, "Изменена:  %s\n", e.UpdatedAt.Local().Format(timeLayout))
}
