package entry

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"pixelvault/cmd/client/cmd/ui"
	"pixelvault/internal/app/client"
	"pixelvault/internal/app/client/vault"
	"pixelvault/internal/domain/entry"
)

var editOpts struct {
	service   string
	username  string
	url       string
	category  string
	newSecret bool
	generate  int
	title     string
	body      string
	bodyFile  string
	file      string
}

var flagsByKind = map[entry.Kind][]string{
	entry.KindCredential: {"service", "username", "url", "category", "secret", "generate"},
	entry.KindNote:       {"title", "category", "body", "body-file"},
	entry.KindFile:       {"title", "category", "file"},
}

var EditCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Изменить запись",
	Long: `Меняет поля записи. Изменяются только заданные флаги, тип записи
менять нельзя. Содержимое файла сохраняется, если не указан --file.

Пример:
  pixelvault entry edit 3f6c... --category work --secret`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if !anyChanged(cmd.Flags().Changed) {
			return fmt.Errorf("нечего менять: укажите хотя бы один флаг")
		}

		return withSession(cmd, func(ctx context.Context, app *client.App, s *vault.Session) error {
			current, err := app.Vault().Get(ctx, s, args[0])
			if err != nil {
				return err
			}
			if err := checkFlags(cmd.Flags().Changed, current.Kind); err != nil {
				return err
			}

			req, err := editRequest(cmd, current)
			if err != nil {
				return err
			}

			e, err := app.Vault().Save(ctx, s, req)
			if err != nil {
				return fmt.Errorf("ошибка сохранения записи: %w", err)
			}
			ui.Success(cmd.OutOrStdout(), "Запись изменена: %s (%s)", e.Title(), e.ID)
			return nil
		})
	},
}

// checkFlags отклоняет флаги, которые не относятся к типу записи.
func checkFlags(changed func(string) bool, kind entry.Kind) error {
	allowed := make(map[string]bool)
	for _, name := range flagsByKind[kind] {
		allowed[name] = true
	}

	for _, name := range editFlags() {
		if changed(name) && !allowed[name] {
			return fmt.Errorf("флаг --%s не применим к записи типа %s", name, kind)
		}
	}
	return nil
}

func anyChanged(changed func(string) bool) bool {
	for _, name := range editFlags() {
		if changed(name) {
			return true
		}
	}
	return false
}

func editFlags() []string {
	seen := make(map[string]bool)
	var names []string
	for _, kind := range entry.Kinds {
		for _, n := range flagsByKind[kind] {
			if !seen[n] {
				seen[n] = true
				names = append(names, n)
			}
		}
	}
	return names
}

func editRequest(cmd *cobra.Command, current vault.Entry) (vault.SaveRequest, error) {
	changed := cmd.Flags().Changed
	p := ui.NewPrompter(cmd.InOrStdin(), cmd.OutOrStdout())
	req := vault.SaveRequest{ID: current.ID}

	switch old := current.Payload.(type) {
	case *entry.Credential:
		c := *old
		if changed("service") {
			c.Service = editOpts.service
		}
		if changed("username") {
			c.Username = editOpts.username
		}
		if changed("url") {
			c.URL = editOpts.url
		}
		if changed("category") {
			c.Category = editOpts.category
		}
		if changed("secret") || changed("generate") {
			secret, err := credentialSecret(p, editOpts.generate)
			if err != nil {
				return req, err
			}
			c.Secret = secret
		}
		req.Payload = &c

	case *entry.Note:
		n := *old
		if changed("title") {
			n.Title = editOpts.title
		}
		if changed("category") {
			n.Category = editOpts.category
		}
		if changed("body") {
			n.Body = editOpts.body
		}
		if changed("body-file") {
			body, err := readBody(editOpts.bodyFile)
			if err != nil {
				return req, err
			}
			n.Body = body
		}
		req.Payload = &n

	case *entry.File:
		edit := &vault.FileEdit{Title: old.Title, Category: old.Category, Content: vault.KeepContent{}}
		if changed("title") {
			edit.Title = editOpts.title
		}
		if changed("category") {
			edit.Category = editOpts.category
		}
		if changed("file") {
			content, err := readFile(editOpts.file)
			if err != nil {
				return req, err
			}
			edit.Content = content
		}
		req.File = edit

	default:
		return req, fmt.Errorf("%w: %s", entry.ErrInvalidKind, current.Kind)
	}

	return req, nil
}

func init() {
	f := EditCmd.Flags()
	f.StringVarP(&editOpts.service, "service", "s", "", "название сервиса")
	f.StringVarP(&editOpts.username, "username", "u", "", "логин")
	f.StringVar(&editOpts.url, "url", "", "адрес сервиса (пустая строка удаляет)")
	f.StringVarP(&editOpts.category, "category", "c", "", "категория")
	f.BoolVar(&editOpts.newSecret, "secret", false, "запросить новый пароль")
	f.IntVarP(&editOpts.generate, "generate", "g", 0, "сгенерировать новый пароль заданной длины")
	f.StringVarP(&editOpts.title, "title", "t", "", "заголовок")
	f.StringVarP(&editOpts.body, "body", "b", "", "текст заметки")
	f.StringVar(&editOpts.bodyFile, "body-file", "", "прочитать текст заметки из файла")
	f.StringVar(&editOpts.file, "file", "", "заменить содержимое файла")
}
