// cmd/client/cmd/init.go
package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"pixelvault/cmd/client/cmd/auth"
	"pixelvault/cmd/client/cmd/entry"
	"pixelvault/cmd/client/cmd/profile"
	"pixelvault/cmd/client/cmd/types"
	"pixelvault/cmd/client/cmd/ui"
	"pixelvault/internal/app/client/storage"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Инициализировать клиент PixelVault",
	Long: `Команда init выполняет первоначальную настройку клиента.

В режиме remote проверяется соединение с сервером.
В режиме local создается локальное хранилище, защищенное мастер-паролем.
Без мастер-пароля восстановить данные невозможно.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}
		ctx, cancel := types.Context(cmd, app)
		defer cancel()

		out := cmd.OutOrStdout()

		if !app.Config().IsLocalMode() {
			if err := app.CheckConnection(ctx); err != nil {
				ui.Warn(out, "Не удалось подключиться к серверу %s: %v", app.Config().BaseURL(), err)
				return nil
			}
			ui.Success(out, "Соединение с сервером %s установлено", app.Config().BaseURL())
			ui.Hint(out, "Зарегистрируйтесь:", "pixelvault auth register")
			return nil
		}

		p := ui.NewPrompter(cmd.InOrStdin(), out)
		master, err := p.NewSecret("Мастер-пароль")
		if err != nil {
			return err
		}

		if err := app.InitLocal(ctx, master); err != nil {
			if errors.Is(err, storage.ErrAlreadyInitialized) {
				ui.Warn(out, "Локальное хранилище уже создано: %s", app.Config().DatabasePath())
				return nil
			}
			return fmt.Errorf("ошибка создания хранилища: %w", err)
		}

		ui.Success(out, "Локальное хранилище создано: %s", app.Config().DatabasePath())
		ui.Hint(out, "Разблокируйте его:", "pixelvault auth unlock")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(generateCmd)

	rootCmd.AddCommand(auth.AuthCmd)
	auth.AuthCmd.AddCommand(auth.RegisterCmd)
	auth.AuthCmd.AddCommand(auth.LoginCmd)
	auth.AuthCmd.AddCommand(auth.UnlockCmd)
	auth.AuthCmd.AddCommand(auth.LockCmd)
	auth.AuthCmd.AddCommand(auth.LogoutCmd)
	auth.AuthCmd.AddCommand(auth.StatusCmd)
	auth.AuthCmd.AddCommand(auth.ChangePasswordCmd)
	auth.AuthCmd.AddCommand(auth.ChangeMasterCmd)
	auth.AuthCmd.AddCommand(auth.DeleteAccountCmd)

	rootCmd.AddCommand(profile.ProfileCmd)
	profile.ProfileCmd.AddCommand(profile.ShowCmd)
	profile.ProfileCmd.AddCommand(profile.UpdateCmd)

	rootCmd.AddCommand(entry.EntryCmd)
	entry.EntryCmd.AddCommand(entry.ListCmd)
	entry.EntryCmd.AddCommand(entry.ShowCmd)
	entry.EntryCmd.AddCommand(entry.AddCmd)
	entry.AddCmd.AddCommand(entry.AddCredentialCmd)
	entry.AddCmd.AddCommand(entry.AddNoteCmd)
	entry.AddCmd.AddCommand(entry.AddFileCmd)
	entry.EntryCmd.AddCommand(entry.EditCmd)
	entry.EntryCmd.AddCommand(entry.RemoveCmd)
	entry.EntryCmd.AddCommand(entry.PurgeCmd)
	entry.EntryCmd.AddCommand(entry.SummaryCmd)
	entry.EntryCmd.AddCommand(entry.ExportFileCmd)
}
