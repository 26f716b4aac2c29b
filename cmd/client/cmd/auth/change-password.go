// cmd/client/cmd/auth/change-password.go
package auth

import (
	"fmt"

	"github.com/spf13/cobra"

	"pixelvault/cmd/client/cmd/types"
	"pixelvault/cmd/client/cmd/ui"
)

var ChangePasswordCmd = &cobra.Command{
	Use:   "change-password",
	Short: "Изменить пароль аккаунта",
	Long: `Изменение пароля для входа на сервере PixelVault.

Мастер-пароль и записи не меняются. Текущая сессия остается активной.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}

		p := ui.NewPrompter(cmd.InOrStdin(), cmd.OutOrStdout())
		current, err := p.Secret("Текущий пароль аккаунта")
		if err != nil {
			return err
		}
		next, err := p.NewSecret("Новый пароль аккаунта")
		if err != nil {
			return err
		}

		ctx, cancel := types.Context(cmd, app)
		defer cancel()

		if err := app.ChangePassword(ctx, current, next); err != nil {
			return fmt.Errorf("ошибка смены пароля: %w", err)
		}
		ui.Success(cmd.OutOrStdout(), "Пароль аккаунта изменен")
		return nil
	},
}
