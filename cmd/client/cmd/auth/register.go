// cmd/client/cmd/auth/register.go
package auth

import (
	"fmt"

	"github.com/spf13/cobra"

	"pixelvault/cmd/client/cmd/types"
	"pixelvault/cmd/client/cmd/ui"
	"pixelvault/internal/domain/account"
)

var RegisterCmd = &cobra.Command{
	Use:   "register",
	Short: "Зарегистрировать нового пользователя",
	Long: `Регистрация нового пользователя на сервере PixelVault.

Задаются два независимых пароля: пароль аккаунта для входа и
мастер-пароль для шифрования записей. Мастер-пароль нельзя восстановить.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		p := ui.NewPrompter(cmd.InOrStdin(), out)

		handle, err := p.Required("Имя пользователя")
		if err != nil {
			return err
		}
		contact, err := p.Required("Email")
		if err != nil {
			return err
		}
		secret, err := p.NewSecret("Пароль аккаунта")
		if err != nil {
			return err
		}
		master, err := p.NewSecret("Мастер-пароль")
		if err != nil {
			return err
		}
		if master == secret {
			ui.Warn(out, "Мастер-пароль совпадает с паролем аккаунта")
		}

		ctx, cancel := types.Context(cmd, app)
		defer cancel()

		reg, err := app.Register(ctx, account.RegisterRequest{
			Handle:       handle,
			Contact:      contact,
			Secret:       secret,
			MasterSecret: master,
		})
		if err != nil {
			return fmt.Errorf("ошибка регистрации: %w", err)
		}

		ui.Success(out, "Пользователь %s зарегистрирован", reg.Account.Handle)
		ui.Hint(out, "Теперь войдите:", "pixelvault auth login")
		return nil
	},
}
