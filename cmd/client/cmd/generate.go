package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"pixelvault/internal/app/client/crypto"
)

var length int

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Сгенерировать случайный пароль",
	Long: `Генерирует пароль из букв, цифр и спецсимволов криптографически
стойким генератором. Хранилище для этого не нужно.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		password, err := crypto.GeneratePassword(length)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), password)
		return nil
	},
}

func init() {
	generateCmd.Flags().IntVarP(&length, "length", "n", crypto.DefaultPasswordLength, "длина пароля")
}
