// cmd/client/cmd/entry/list.go
package entry

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"pixelvault/cmd/client/cmd/ui"
	"pixelvault/internal/app/client"
	"pixelvault/internal/app/client/vault"
	"pixelvault/internal/domain/entry"
)

var (
	listKind     string
	listCategory string
	listFormat   string
)

var ListCmd = &cobra.Command{
	Use:   "list",
	Short: "Список записей",
	Long: `Расшифровывает и показывает все записи, новые сверху.

Записи, которые не удалось расшифровать, пропускаются с предупреждением.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if listKind != "" {
			if err := entry.Kind(listKind).Validate(); err != nil {
				return err
			}
		}

		return withSession(cmd, func(ctx context.Context, app *client.App, s *vault.Session) error {
			out := cmd.OutOrStdout()

			stop := ui.StartSpinner(out, "Расшифровка записей...")
			entries, report, err := app.Vault().Open(ctx, s)
			stop()
			if err != nil {
				return fmt.Errorf("ошибка получения списка записей: %w", err)
			}

			entries = filter(entries, entry.Kind(listKind), listCategory)

			switch listFormat {
			case "json":
				err = printJSON(out, entries)
			case "table":
				err = printTable(out, entries)
			default:
				printSimple(out, entries)
			}
			if err != nil {
				return err
			}

			if len(report.Dropped) > 0 {
				ui.Warn(cmd.ErrOrStderr(), "Не удалось расшифровать записей: %d (%s)",
					len(report.Dropped), strings.Join(report.Dropped, ", "))
			}
			return nil
		})
	},
}

func filter(entries []vault.Entry, kind entry.Kind, category string) []vault.Entry {
	if kind == "" && category == "" {
		return entries
	}

	out := make([]vault.Entry, 0, len(entries))
	for _, e := range entries {
		if kind != "" && e.Kind != kind {
			continue
		}
		if category != "" && !strings.EqualFold(e.Category(), category) {
			continue
		}
		out = append(out, e)
	}
	return out
}

func printSimple(w io.Writer, entries []vault.Entry) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "Записи не найдены")
		return
	}

	fmt.Fprintf(w, "Найдено записей: %d\n\n", len(entries))
	for i, e := range entries {
		fmt.Fprintf(w, "%d. %s (%s, %s)\n", i+1, e.Title(), e.Kind.DisplayName(), e.Category())
		fmt.Fprintf(w, "   ID: %s | Изменена: %s\n", e.ID, e.UpdatedAt.Local().Format(timeLayout))
	}
}

func printTable(w io.Writer, entries []vault.Entry) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "ID\tТип\tНазвание\tКатегория\tИзменена\t\n")
	fmt.Fprintf(tw, "---\t---\t---\t---\t---\t\n")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t\n",
			e.ID,
			e.Kind,
			truncate(e.Title(), 30),
			e.Category(),
			e.UpdatedAt.Local().Format(timeLayout),
		)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(w, "\nВсего записей: %d\n", len(entries))
	return nil
}

type listItem struct {
	ID        string     `json:"id"`
	Kind      entry.Kind `json:"kind"`
	Title     string     `json:"title"`
	Category  string     `json:"category"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// printJSON выводит только метаданные, без секретов и содержимого.
func printJSON(w io.Writer, entries []vault.Entry) error {
	items := make([]listItem, 0, len(entries))
	for _, e := range entries {
		items = append(items, listItem{
			ID:        e.ID,
			Kind:      e.Kind,
			Title:     e.Title(),
			Category:  e.Category(),
			CreatedAt: e.CreatedAt,
			UpdatedAt: e.UpdatedAt,
		})
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(items)
}

func truncate(s string, length int) string {
	r := []rune(s)
	if len(r) <= length {
		return s
	}
	return string(r[:length-3]) + "..."
}

func init() {
	ListCmd.Flags().StringVarP(&listKind, "kind", "k", "", "фильтр по типу (credential, note, file)")
	ListCmd.Flags().StringVarP(&listCategory, "category", "c", "", "фильтр по категории")
	ListCmd.Flags().StringVarP(&listFormat, "format", "f", "simple", "формат вывода (simple, table, json)")
}
