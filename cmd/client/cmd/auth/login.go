// cmd/client/cmd/auth/login.go
package auth

import (
	"fmt"

	"github.com/spf13/cobra"

	"pixelvault/cmd/client/cmd/types"
	"pixelvault/cmd/client/cmd/ui"
)

var unlockAfterLogin bool

var LoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Войти в систему PixelVault",
	Long: `Аутентификация на сервере PixelVault по имени или email.

Токен сохраняется локально. После входа хранилище заблокировано:
разблокируйте его мастер-паролем (auth unlock или флаг --unlock).`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		p := ui.NewPrompter(cmd.InOrStdin(), out)

		identity, err := p.Required("Имя пользователя или email")
		if err != nil {
			return err
		}
		secret, err := p.Secret("Пароль аккаунта")
		if err != nil {
			return err
		}

		ctx, cancel := types.Context(cmd, app)
		defer cancel()

		login, err := app.Login(ctx, identity, secret)
		if err != nil {
			return fmt.Errorf("ошибка аутентификации: %w", err)
		}
		ui.Success(out, "Вход выполнен: %s (сессия до %s)", login.Account.Handle, login.ExpiresAt.Local().Format("2006-01-02 15:04"))

		if !unlockAfterLogin {
			ui.Hint(out, "Разблокируйте хранилище:", "pixelvault auth unlock")
			return nil
		}
		return unlock(cmd, app, p)
	},
}

func init() {
	LoginCmd.Flags().BoolVarP(&unlockAfterLogin, "unlock", "u", false, "сразу разблокировать хранилище")
}
