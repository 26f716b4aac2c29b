package auth

import (
	"fmt"

	"github.com/spf13/cobra"

	"pixelvault/cmd/client/cmd/types"
	"pixelvault/cmd/client/cmd/ui"
)

var assumeYes bool

var DeleteAccountCmd = &cobra.Command{
	Use:   "delete-account",
	Short: "Удалить аккаунт вместе со всеми записями",
	Long:  `Необратимо удаляет аккаунт, все его сессии и записи.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		p := ui.NewPrompter(cmd.InOrStdin(), out)

		if !assumeYes {
			ok, err := p.Confirm("Аккаунт и все записи будут удалены. Продолжить?")
			if err != nil {
				return err
			}
			if !ok {
				ui.Warn(out, "Удаление отменено")
				return nil
			}
		}

		secret, err := p.Secret("Пароль аккаунта")
		if err != nil {
			return err
		}

		ctx, cancel := types.Context(cmd, app)
		defer cancel()

		if err := app.DeleteAccount(ctx, secret); err != nil {
			return fmt.Errorf("ошибка удаления аккаунта: %w", err)
		}
		ui.Success(out, "Аккаунт удален")
		return nil
	},
}

func init() {
	DeleteAccountCmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "не спрашивать подтверждение")
}
