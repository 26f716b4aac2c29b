package profile

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"pixelvault/cmd/client/cmd/types"
	"pixelvault/cmd/client/cmd/ui"
	"pixelvault/internal/domain/account"
)

var (
	newHandle  string
	newContact string
)

// ProfileCmd - просмотр и изменение профиля аккаунта
var ProfileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Профиль аккаунта",
}

var ShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Показать профиль",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}
		ctx, cancel := types.Context(cmd, app)
		defer cancel()

		p, err := app.Profile(ctx)
		if err != nil {
			return err
		}
		printProfile(cmd.OutOrStdout(), p)
		return nil
	},
}

var UpdateCmd = &cobra.Command{
	Use:   "update",
	Short: "Изменить имя пользователя или email",
	Long: `Меняет имя пользователя и/или email. Незаданные поля остаются прежними.

Пример:
  pixelvault profile update --contact new@example.com`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if newHandle == "" && newContact == "" {
			return fmt.Errorf("укажите --handle и/или --contact")
		}

		app, err := types.App(cmd)
		if err != nil {
			return err
		}
		ctx, cancel := types.Context(cmd, app)
		defer cancel()

		current, err := app.Profile(ctx)
		if err != nil {
			return err
		}

		upd := account.ProfileUpdate{Handle: current.Handle, Contact: current.Contact}
		if newHandle != "" {
			upd.Handle = newHandle
		}
		if newContact != "" {
			upd.Contact = newContact
		}

		p, err := app.UpdateProfile(ctx, upd)
		if err != nil {
			return fmt.Errorf("ошибка изменения профиля: %w", err)
		}

		out := cmd.OutOrStdout()
		ui.Success(out, "Профиль обновлен")
		printProfile(out, p)
		return nil
	},
}

func printProfile(w io.Writer, p account.Profile) {
	fmt.Fprintf(w, "ID:           %d\n", p.ID)
	fmt.Fprintf(w, "Пользователь: %s\n", p.Handle)
	fmt.Fprintf(w, "Email:        %s\n", p.Contact)
	fmt.Fprintf(w, "Создан:       %s\n", p.CreatedAt.Local().Format("2006-01-02 15:04"))
	fmt.Fprintf(w, "Изменен:      %s\n", p.UpdatedAt.Local().Format("2006-01-02 15:04"))
}

func init() {
	UpdateCmd.Flags().StringVar(&newHandle, "handle", "", "новое имя пользователя")
	UpdateCmd.Flags().StringVar(&newContact, "contact", "", "новый email")
}
