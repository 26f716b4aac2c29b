package entry

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"pixelvault/cmd/client/cmd/ui"
	"pixelvault/internal/app/client"
	"pixelvault/internal/app/client/vault"
	"pixelvault/internal/domain/entry"
)

var (
	exportPath  string
	exportForce bool
)

var ExportFileCmd = &cobra.Command{
	Use:   "export-file <id>",
	Short: "Сохранить файл из записи на диск",
	Long: `Расшифровывает запись типа file и записывает содержимое на диск
с правами 0600. Существующий файл перезаписывается только с --force.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(ctx context.Context, app *client.App, s *vault.Session) error {
			e, err := app.Vault().Get(ctx, s, args[0])
			if err != nil {
				return err
			}
			f, ok := e.Payload.(*entry.File)
			if !ok {
				return fmt.Errorf("%w: запись %s имеет тип %s", entry.ErrInvalidKind, e.ID, e.Kind)
			}

			path := exportPath
			if path == "" {
				path = filepath.Base(f.Filename)
			}

			flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
			if !exportForce {
				flags |= os.O_EXCL
			}
			file, err := os.OpenFile(path, flags, 0600)
			if errors.Is(err, fs.ErrExist) {
				return fmt.Errorf("файл %s уже существует, используйте --force", path)
			}
			if err != nil {
				return fmt.Errorf("ошибка создания файла: %w", err)
			}

			if _, err := file.Write(f.Content); err != nil {
				_ = file.Close()
				return fmt.Errorf("ошибка записи файла: %w", err)
			}
			if err := file.Close(); err != nil {
				return err
			}

			ui.Success(cmd.OutOrStdout(), "Файл сохранен: %s (%d байт)", path, f.Size)
			return nil
		})
	},
}

func init() {
	ExportFileCmd.Flags().StringVarP(&exportPath, "output", "o", "", "путь для сохранения (по умолчанию имя файла)")
	ExportFileCmd.Flags().BoolVarP(&exportForce, "force", "f", false, "перезаписать существующий файл")
}
