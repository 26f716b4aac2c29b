package auth

import (
	"fmt"

	"github.com/spf13/cobra"

	"pixelvault/cmd/client/cmd/types"
	"pixelvault/cmd/client/cmd/ui"
)

var ChangeMasterCmd = &cobra.Command{
	Use:   "change-master",
	Short: "Изменить мастер-пароль и перешифровать записи",
	Long: `Все записи расшифровываются текущим ключом и шифруются ключом,
выведенным из нового мастер-пароля. Сервер принимает новые шифротексты
одной транзакцией: либо меняется все, либо ничего.

После смены хранилище заблокировано во всех сессиях.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		p := ui.NewPrompter(cmd.InOrStdin(), out)

		current, err := p.Secret("Текущий мастер-пароль")
		if err != nil {
			return err
		}
		next, err := p.NewSecret("Новый мастер-пароль")
		if err != nil {
			return err
		}

		ctx, cancel := types.Context(cmd, app)
		defer cancel()

		stop := ui.StartSpinner(out, "Перешифровка записей...")
		err = app.ChangeMaster(ctx, current, next)
		stop()
		if err != nil {
			return fmt.Errorf("ошибка смены мастер-пароля: %w", err)
		}

		ui.Success(out, "Мастер-пароль изменен, записи перешифрованы")
		ui.Hint(out, "Разблокируйте хранилище новым паролем:", "pixelvault auth unlock")
		return nil
	},
}
