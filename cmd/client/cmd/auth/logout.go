package auth

import (
	"github.com/spf13/cobra"

	"pixelvault/cmd/client/cmd/types"
	"pixelvault/cmd/client/cmd/ui"
)

var LogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Выйти из системы",
	Long:  `Завершает сессию на сервере, удаляет токен и кэшированный ключ.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}
		ctx, cancel := types.Context(cmd, app)
		defer cancel()

		if err := app.Logout(ctx); err != nil {
			return err
		}
		ui.Success(cmd.OutOrStdout(), "Выход выполнен")
		return nil
	},
}
