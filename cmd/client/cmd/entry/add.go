// cmd/client/cmd/entry/add.go
package entry

import (
	"context"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"pixelvault/cmd/client/cmd/ui"
	"pixelvault/internal/app/client"
	"pixelvault/internal/app/client/crypto"
	"pixelvault/internal/app/client/vault"
	"pixelvault/internal/domain/entry"
)

var addOpts struct {
	service  string
	username string
	url      string
	category string
	generate int
	title    string
	body     string
	bodyFile string
}

var AddCmd = &cobra.Command{
	Use:   "add",
	Short: "Создать запись",
	Long: `Создание новой записи. Поддерживаемые типы:
  credential - пароль от сервиса
  note       - текстовая заметка
  file       - произвольный файл`,
}

var AddCredentialCmd = &cobra.Command{
	Use:   "credential",
	Short: "Сохранить пароль",
	Long: `Сохраняет пароль от сервиса. Пароль запрашивается без эха
или генерируется флагом --generate.

Пример:
  pixelvault entry add credential --service github --username alice --generate 24`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		p := ui.NewPrompter(cmd.InOrStdin(), cmd.OutOrStdout())

		c := &entry.Credential{
			Service:  addOpts.service,
			Category: addOpts.category,
			Username: addOpts.username,
			URL:      addOpts.url,
		}

		var err error
		if c.Service == "" {
			if c.Service, err = p.Required("Сервис"); err != nil {
				return err
			}
		}
		if c.Secret, err = credentialSecret(p, addOpts.generate); err != nil {
			return err
		}

		return save(cmd, vault.SaveRequest{Payload: c})
	},
}

var AddNoteCmd = &cobra.Command{
	Use:   "note",
	Short: "Сохранить заметку",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		p := ui.NewPrompter(cmd.InOrStdin(), cmd.OutOrStdout())

		n := &entry.Note{Title: addOpts.title, Category: addOpts.category}

		var err error
		if n.Title == "" {
			if n.Title, err = p.Required("Заголовок"); err != nil {
				return err
			}
		}
		switch {
		case addOpts.bodyFile != "":
			if n.Body, err = readBody(addOpts.bodyFile); err != nil {
				return err
			}
		case addOpts.body != "":
			n.Body = addOpts.body
		default:
			if n.Body, err = p.Line("Текст"); err != nil {
				return err
			}
		}

		return save(cmd, vault.SaveRequest{Payload: n})
	},
}

var AddFileCmd = &cobra.Command{
	Use:   "file <path>",
	Short: "Сохранить файл",
	Long: `Шифрует и сохраняет файл целиком. По умолчанию заголовок
совпадает с именем файла.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		content, err := readFile(args[0])
		if err != nil {
			return err
		}

		title := addOpts.title
		if title == "" {
			title = content.Filename
		}

		return save(cmd, vault.SaveRequest{File: &vault.FileEdit{
			Title:    title,
			Category: addOpts.category,
			Content:  content,
		}})
	},
}

func save(cmd *cobra.Command, req vault.SaveRequest) error {
	return withSession(cmd, func(ctx context.Context, app *client.App, s *vault.Session) error {
		e, err := app.Vault().Save(ctx, s, req)
		if err != nil {
			return fmt.Errorf("ошибка сохранения записи: %w", err)
		}
		ui.Success(cmd.OutOrStdout(), "Запись сохранена: %s (%s)", e.Title(), e.ID)
		return nil
	})
}

// credentialSecret генерирует пароль заданной длины или запрашивает его.
func credentialSecret(p *ui.Prompter, generate int) (string, error) {
	if generate > 0 {
		return crypto.GeneratePassword(generate)
	}
	return p.NewSecret("Пароль")
}

func readBody(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("ошибка чтения %s: %w", path, err)
	}
	return string(data), nil
}

func readFile(path string) (vault.Replace, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return vault.Replace{}, fmt.Errorf("ошибка чтения файла: %w", err)
	}

	return vault.Replace{
		Filename:  filepath.Base(path),
		MediaType: mediaType(path, data),
		Data:      data,
	}, nil
}

func mediaType(path string, data []byte) string {
	if t := mime.TypeByExtension(filepath.Ext(path)); t != "" {
		return t
	}
	return http.DetectContentType(data)
}

func init() {
	f := AddCredentialCmd.Flags()
	f.StringVarP(&addOpts.service, "service", "s", "", "название сервиса")
	f.StringVarP(&addOpts.username, "username", "u", "", "логин")
	f.StringVar(&addOpts.url, "url", "", "адрес сервиса (http или https)")
	f.StringVarP(&addOpts.category, "category", "c", "", "категория (по умолчанию Other)")
	f.IntVarP(&addOpts.generate, "generate", "g", 0, "сгенерировать пароль заданной длины")

	f = AddNoteCmd.Flags()
	f.StringVarP(&addOpts.title, "title", "t", "", "заголовок")
	f.StringVarP(&addOpts.category, "category", "c", "", "категория (по умолчанию Other)")
	f.StringVarP(&addOpts.body, "body", "b", "", "текст заметки")
	f.StringVar(&addOpts.bodyFile, "body-file", "", "прочитать текст из файла")

	f = AddFileCmd.Flags()
	f.StringVarP(&addOpts.title, "title", "t", "", "заголовок (по умолчанию имя файла)")
	f.StringVarP(&addOpts.category, "category", "c", "", "категория (по умолчанию Other)")
}
