package ui

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"golang.org/x/term"
)

func Success(w io.Writer, format string, a ...any) {
	fmt.Fprintln(w, color.GreenString("✓")+" "+fmt.Sprintf(format, a...))
}

func Warn(w io.Writer, format string, a ...any) {
	fmt.Fprintln(w, color.YellowString("!")+" "+fmt.Sprintf(format, a...))
}

func Fail(w io.Writer, format string, a ...any) {
	fmt.Fprintln(w, color.RedString("✗")+" "+fmt.Sprintf(format, a...))
}

// Hint подсказывает следующую команду.
func Hint(w io.Writer, text, command string) {
	fmt.Fprintln(w, color.CyanString("→")+" "+text+" "+color.YellowString(command))
}

// Mask скрывает секрет, оставляя только длину.
func Mask(secret string) string {
	n := len([]rune(secret))
	if n > 12 {
		n = 12
	}
	return strings.Repeat("•", n)
}

// StartSpinner показывает спиннер, если вывод - терминал. Возвращает
// функцию остановки.
func StartSpinner(w io.Writer, message string) func() {
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return func() {}
	}

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(f))
	s.Suffix = " " + message
	_ = s.Color("cyan")
	s.Start()
	return s.Stop
}
