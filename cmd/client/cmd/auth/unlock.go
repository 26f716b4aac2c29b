package auth

import (
	"fmt"

	"github.com/spf13/cobra"

	"pixelvault/cmd/client/cmd/types"
	"pixelvault/cmd/client/cmd/ui"
	"pixelvault/internal/app/client"
)

var UnlockCmd = &cobra.Command{
	Use:   "unlock",
	Short: "Разблокировать хранилище мастер-паролем",
	Long: `Проверяет мастер-пароль и выводит из него ключ шифрования.

Ключ кэшируется на диске в зашифрованном виде на время UNLOCK_TTL,
чтобы следующие команды не спрашивали мастер-пароль.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}
		return unlock(cmd, app, ui.NewPrompter(cmd.InOrStdin(), cmd.OutOrStdout()))
	},
}

var LockCmd = &cobra.Command{
	Use:   "lock",
	Short: "Заблокировать хранилище",
	Long:  `Удаляет кэшированный ключ. Сессия аккаунта сохраняется.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}
		if err := app.Lock(); err != nil {
			return err
		}
		ui.Success(cmd.OutOrStdout(), "Хранилище заблокировано")
		return nil
	},
}

func unlock(cmd *cobra.Command, app *client.App, p *ui.Prompter) error {
	master, err := p.Secret("Мастер-пароль")
	if err != nil {
		return err
	}

	ctx, cancel := types.Context(cmd, app)
	defer cancel()

	s, err := app.Unlock(ctx, master)
	if err != nil {
		return fmt.Errorf("ошибка разблокировки: %w", err)
	}
	defer s.Lock()

	ui.Success(cmd.OutOrStdout(), "Хранилище разблокировано на %s", app.Config().UnlockTTL)
	return nil
}
