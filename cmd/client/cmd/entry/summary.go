package entry

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"pixelvault/internal/app/client"
	"pixelvault/internal/app/client/vault"
	"pixelvault/internal/domain/entry"
)

var SummaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Количество записей по типам",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withSession(cmd, func(ctx context.Context, app *client.App, s *vault.Session) error {
			sum, err := app.Vault().Summary(ctx, s)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%-10s %d\n", entry.KindCredential.DisplayName()+":", sum.Credentials)
			fmt.Fprintf(out, "%-10s %d\n", entry.KindNote.DisplayName()+":", sum.Notes)
			fmt.Fprintf(out, "%-10s %d\n", entry.KindFile.DisplayName()+":", sum.Files)
			fmt.Fprintf(out, "%-10s %d\n", "Всего:", sum.Total)
			return nil
		})
	},
}
