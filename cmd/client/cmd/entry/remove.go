package entry

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"pixelvault/cmd/client/cmd/ui"
	"pixelvault/internal/app/client"
	"pixelvault/internal/app/client/vault"
)

var assumeYes bool

var RemoveCmd = &cobra.Command{
	Use:     "rm <id>",
	Aliases: []string{"delete"},
	Short:   "Удалить запись",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(ctx context.Context, app *client.App, s *vault.Session) error {
			if err := app.Vault().Remove(ctx, s, args[0]); err != nil {
				return fmt.Errorf("ошибка удаления записи: %w", err)
			}
			ui.Success(cmd.OutOrStdout(), "Запись %s удалена", args[0])
			return nil
		})
	},
}

var PurgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Удалить все записи",
	Long:  `Удаляет все записи хранилища. Аккаунт и мастер-пароль сохраняются.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		out := cmd.OutOrStdout()

		if !assumeYes {
			ok, err := ui.NewPrompter(cmd.InOrStdin(), out).Confirm("Все записи будут удалены. Продолжить?")
			if err != nil {
				return err
			}
			if !ok {
				ui.Warn(out, "Удаление отменено")
				return nil
			}
		}

		return withSession(cmd, func(ctx context.Context, app *client.App, s *vault.Session) error {
			n, err := app.Vault().Purge(ctx, s)
			if err != nil {
				return fmt.Errorf("ошибка удаления записей: %w", err)
			}
			ui.Success(out, "Удалено записей: %d", n)
			return nil
		})
	},
}

func init() {
	PurgeCmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "не спрашивать подтверждение")
}
