// cmd/client/cmd/root.go
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/exp/slog"

	"pixelvault/cmd/client/cmd/types"
	"pixelvault/internal/app/client"
	"pixelvault/internal/app/client/config"
	"pixelvault/internal/app/client/crypto"
	"pixelvault/internal/app/client/storage"
	"pixelvault/internal/domain/account"
	"pixelvault/internal/domain/entry"
	"pixelvault/internal/domain/session"
	"pixelvault/internal/utils/logger"
)

var (
	debug     bool
	serverURL string
	mode      string

	// current закрывается после каждой команды, в том числе при ошибке.
	current *client.App
)

var rootCmd = &cobra.Command{
	Use:   "pixelvault",
	Short: "PixelVault - личное хранилище паролей, заметок и файлов",
	Long: `PixelVault хранит пароли, заметки и файлы в зашифрованном виде.

Вход в аккаунт и доступ к записям защищены разными паролями: пароль
аккаунта открывает сессию, мастер-пароль разблокирует хранилище.
Записи шифруются на клиенте ключом, выведенным из мастер-пароля,
сервер видит только шифротексты.`,
	PersistentPreRunE: setupApp,
	SilenceUsage:      true,
	SilenceErrors:     true,
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("Ошибка:")+" "+describe(err))
		os.Exit(1)
	}
}

func setupApp(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("ошибка загрузки конфигурации: %w", err)
	}

	// Переопределяем настройки из флагов командной строки
	if serverURL != "" {
		cfg.ServerAddress = serverURL
	}
	if mode != "" {
		if mode != config.ModeLocal && mode != config.ModeRemote {
			return fmt.Errorf("--mode должен быть %q или %q", config.ModeRemote, config.ModeLocal)
		}
		cfg.Mode = mode
	}

	log := newLogger(cfg, cmd.ErrOrStderr())

	app, err := client.New(cmd.Context(), cfg, log)
	if err != nil {
		return fmt.Errorf("ошибка инициализации приложения: %w", err)
	}

	current = app
	cmd.SetContext(types.WithApp(cmd.Context(), app))
	return nil
}

func closeApp() {
	if current == nil {
		return
	}
	if err := current.Close(); err != nil {
		fmt.Fprintln(os.Stderr, color.YellowString("!")+" "+err.Error())
	}
	current = nil
}

// newLogger пишет логи в stderr только с --debug, чтобы не мешать выводу команд.
func newLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	if !debug {
		w = io.Discard
	}
	return logger.NewTo(cfg.Env, w).With("mode", cfg.Mode)
}

// describe дополняет ошибку подсказкой, что делать дальше.
func describe(err error) string {
	switch {
	case errors.Is(err, client.ErrNoToken):
		return err.Error()
	case errors.Is(err, session.ErrNotAuthenticated):
		return "сессия истекла или завершена. Выполните вход: pixelvault auth login"
	case errors.Is(err, session.ErrVaultLocked):
		return "хранилище заблокировано. Разблокируйте его: pixelvault auth unlock"
	case errors.Is(err, account.ErrInvalidCredential):
		return "неверный пароль или имя пользователя"
	case errors.Is(err, storage.ErrNotInitialized):
		return "локальное хранилище не создано. Выполните: pixelvault init"
	case errors.Is(err, crypto.ErrDecryptionFailed):
		return "не удалось расшифровать запись: ключ не подходит или данные повреждены"
	case errors.Is(err, entry.ErrRotationConflict):
		return "записи изменились во время смены мастер-пароля. Повторите попытку"
	}
	return err.Error()
}

func init() {
	cobra.OnFinalize(closeApp)

	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "включить отладочный вывод")
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "адрес сервера PixelVault (host:port)")
	rootCmd.PersistentFlags().StringVar(&mode, "mode", "", "режим работы: remote или local")
}
