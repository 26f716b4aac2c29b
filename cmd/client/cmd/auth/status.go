package auth

import (
	"fmt"

	"github.com/spf13/cobra"

	"pixelvault/cmd/client/cmd/types"
	"pixelvault/cmd/client/cmd/ui"
)

var StatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Показать состояние сессии",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}
		ctx, cancel := types.Context(cmd, app)
		defer cancel()

		st, err := app.Status(ctx)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Режим:        %s\n", st.Mode)
		if !app.Config().IsLocalMode() {
			fmt.Fprintf(out, "Сервер:       %s\n", app.Config().BaseURL())
		}

		if !st.Authenticated {
			ui.Warn(out, "Вход не выполнен")
			if app.Config().IsLocalMode() {
				ui.Hint(out, "Создайте хранилище:", "pixelvault init")
			} else {
				ui.Hint(out, "Войдите:", "pixelvault auth login")
			}
			return nil
		}

		if st.Account != nil {
			fmt.Fprintf(out, "Пользователь: %s\n", st.Account.Handle)
		}
		if st.ExpiresAt != nil {
			fmt.Fprintf(out, "Сессия до:    %s\n", st.ExpiresAt.Local().Format("2006-01-02 15:04"))
		}
		if st.Unlocked {
			ui.Success(out, "Хранилище разблокировано")
		} else {
			ui.Warn(out, "Хранилище заблокировано")
			ui.Hint(out, "Разблокируйте:", "pixelvault auth unlock")
		}
		return nil
	},
}
