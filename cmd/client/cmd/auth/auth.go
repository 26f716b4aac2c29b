package auth

import (
	"github.com/spf13/cobra"
)

// AuthCmd - родительская команда для входа, разблокировки и управления аккаунтом
var AuthCmd = &cobra.Command{
	Use:   "auth",
	Short: "Управление аккаунтом и сессией",
	Long: `Регистрация, вход, разблокировка хранилища, смена паролей.

Пароль аккаунта нужен для входа, мастер-пароль - для доступа к записям.`,
}
