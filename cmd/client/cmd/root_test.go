package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pixelvault/internal/app/client"
	"pixelvault/internal/app/client/storage"
	"pixelvault/internal/domain/session"
)

const master = "correct horse"

// run выполняет команду как из терминала. Флаги сбрасываются, потому что
// pflag хранит значения между запусками.
func run(t *testing.T, input string, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)

	var out bytes.Buffer
	rootCmd.SetIn(strings.NewReader(input))
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append([]string{"--mode=local"}, args...))

	err := rootCmd.Execute()
	return out.String(), err
}

func resetFlags(c *cobra.Command) {
	c.Flags().VisitAll(func(f *pflag.Flag) {
		if f.Changed {
			_ = f.Value.Set(f.DefValue)
			f.Changed = false
		}
	})
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func setupLocal(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("CONFIG_DIR", dir)
	t.Setenv("APP_ENV", "prod")

	out, err := run(t, master+"\n"+master+"\n", "init")
	require.NoError(t, err)
	require.Contains(t, out, "Локальное хранилище создано")
	return dir
}

type listed struct {
	ID    string `json:"id"`
	Kind  string `json:"kind"`
	Title string `json:"title"`
}

func listJSON(t *testing.T) map[string]listed {
	t.Helper()
	out, err := run(t, "", "entry", "list", "--format", "json")
	require.NoError(t, err)

	var items []listed
	require.NoError(t, json.Unmarshal([]byte(out), &items))

	byTitle := make(map[string]listed, len(items))
	for _, it := range items {
		byTitle[it.Title] = it
	}
	return byTitle
}

func TestCLI_LocalLifecycle(t *testing.T) {
	dir := setupLocal(t)

	_, err := run(t, "", "entry", "list")
	require.ErrorIs(t, err, session.ErrVaultLocked)

	_, err = run(t, "wrong\n", "auth", "unlock")
	require.Error(t, err)

	out, err := run(t, master+"\n", "auth", "unlock")
	require.NoError(t, err)
	assert.Contains(t, out, "Хранилище разблокировано")

	out, err = run(t, "", "entry", "add", "note", "--title", "todo", "--body", "milk")
	require.NoError(t, err)
	assert.Contains(t, out, "Запись сохранена: todo")

	_, err = run(t, "", "entry", "add", "credential", "--service", "github", "--username", "alice", "--generate", "20")
	require.NoError(t, err)

	src := filepath.Join(dir, "report.txt")
	require.NoError(t, os.WriteFile(src, []byte("quarterly numbers"), 0600))
	_, err = run(t, "", "entry", "add", "file", src, "--category", "Docs")
	require.NoError(t, err)

	items := listJSON(t)
	require.Len(t, items, 3)
	assert.Equal(t, "credential", items["github"].Kind)

	t.Run("show masks secret", func(t *testing.T) {
		out, err := run(t, "", "entry", "show", items["github"].ID)
		require.NoError(t, err)
		assert.Contains(t, out, "alice")
		assert.Contains(t, out, "Категория: Other")
		assert.Contains(t, out, strings.Repeat("•", 12))
	})

	t.Run("edit note", func(t *testing.T) {
		_, err := run(t, "", "entry", "edit", items["todo"].ID, "--body", "eggs")
		require.NoError(t, err)

		out, err := run(t, "", "entry", "show", items["todo"].ID)
		require.NoError(t, err)
		assert.Contains(t, out, "eggs")
		assert.NotContains(t, out, "milk")
	})

	t.Run("edit rejects foreign flag", func(t *testing.T) {
		_, err := run(t, "", "entry", "edit", items["todo"].ID, "--service", "x")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "не применим")
	})

	t.Run("edit needs a flag", func(t *testing.T) {
		_, err := run(t, "", "entry", "edit", items["todo"].ID)
		require.Error(t, err)
	})

	t.Run("rename file keeps content", func(t *testing.T) {
		_, err := run(t, "", "entry", "edit", items["report.txt"].ID, "--title", "Q3")
		require.NoError(t, err)

		dst := filepath.Join(dir, "export.txt")
		_, err = run(t, "", "entry", "export-file", items["report.txt"].ID, "-o", dst)
		require.NoError(t, err)

		data, err := os.ReadFile(dst)
		require.NoError(t, err)
		assert.Equal(t, "quarterly numbers", string(data))

		info, err := os.Stat(dst)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

		_, err = run(t, "", "entry", "export-file", items["report.txt"].ID, "-o", dst)
		assert.Error(t, err)
	})

	t.Run("export rejects non-file", func(t *testing.T) {
		_, err := run(t, "", "entry", "export-file", items["todo"].ID, "-o", filepath.Join(dir, "x"))
		assert.Error(t, err)
	})

	out, err = run(t, "", "entry", "summary")
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`Всего:\s+3`), out)

	out, err = run(t, "", "entry", "list", "--kind", "note")
	require.NoError(t, err)
	assert.Contains(t, out, "Найдено записей: 1")

	_, err = run(t, "", "entry", "rm", items["todo"].ID)
	require.NoError(t, err)
	assert.Len(t, listJSON(t), 2)

	out, err = run(t, "", "entry", "purge", "--yes")
	require.NoError(t, err)
	assert.Contains(t, out, "Удалено записей: 2")

	_, err = run(t, "", "auth", "lock")
	require.NoError(t, err)
	_, err = run(t, "", "entry", "summary")
	assert.ErrorIs(t, err, session.ErrVaultLocked)
}

func TestCLI_ChangeMaster(t *testing.T) {
	setupLocal(t)

	_, err := run(t, master+"\n", "auth", "unlock")
	require.NoError(t, err)
	_, err = run(t, "", "entry", "add", "note", "--title", "diary", "--body", "secret day")
	require.NoError(t, err)

	_, err = run(t, "wrong\nnext master\nnext master\n", "auth", "change-master")
	require.Error(t, err)

	out, err := run(t, master+"\nnext master\nnext master\n", "auth", "change-master")
	require.NoError(t, err)
	assert.Contains(t, out, "Мастер-пароль изменен")

	_, err = run(t, "", "entry", "list")
	require.ErrorIs(t, err, session.ErrVaultLocked)

	_, err = run(t, master+"\n", "auth", "unlock")
	require.Error(t, err)

	_, err = run(t, "next master\n", "auth", "unlock")
	require.NoError(t, err)

	items := listJSON(t)
	require.Contains(t, items, "diary")

	out, err = run(t, "", "entry", "show", items["diary"].ID)
	require.NoError(t, err)
	assert.Contains(t, out, "secret day")
}

func TestCLI_LocalStatusAndRemoteOnly(t *testing.T) {
	t.Setenv("CONFIG_DIR", t.TempDir())

	out, err := run(t, "", "auth", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "Вход не выполнен")

	_, err = run(t, "", "entry", "list")
	assert.ErrorIs(t, err, storage.ErrNotInitialized)

	_, err = run(t, "", "profile", "show")
	assert.ErrorIs(t, err, client.ErrRemoteOnly)

	_, err = run(t, "", "auth", "login")
	assert.Error(t, err)
}

func TestCLI_Generate(t *testing.T) {
	t.Setenv("CONFIG_DIR", t.TempDir())

	out, err := run(t, "", "generate", "-n", "24")
	require.NoError(t, err)
	assert.Len(t, []rune(strings.TrimSpace(out)), 24)

	_, err = run(t, "", "generate", "-n", "0")
	assert.Error(t, err)
}

func TestDescribe(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{err: fmt.Errorf("list: %w", session.ErrVaultLocked), want: "pixelvault auth unlock"},
		{err: session.ErrNotAuthenticated, want: "pixelvault auth login"},
		{err: storage.ErrNotInitialized, want: "pixelvault init"},
		{err: errors.New("boom"), want: "boom"},
	}

	for _, tt := range tests {
		assert.Contains(t, describe(tt.err), tt.want)
	}
}
