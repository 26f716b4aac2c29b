package entry

import (
	"context"

	"github.com/spf13/cobra"

	"pixelvault/internal/app/client"
	"pixelvault/internal/app/client/vault"
)

var reveal bool

var ShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Показать запись",
	Long:  `Показывает расшифрованную запись. Пароль скрыт, если не указан --reveal.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(ctx context.Context, app *client.App, s *vault.Session) error {
			e, err := app.Vault().Get(ctx, s, args[0])
			if err != nil {
				return err
			}
			printEntry(cmd.OutOrStdout(), e, reveal)
			return nil
		})
	},
}

func init() {
	ShowCmd.Flags().BoolVarP(&reveal, "reveal", "r", false, "показать пароль")
}
