// Package ui - ввод секретов и оформление вывода CLI.
package ui

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

var (
	ErrMismatch = errors.New("значения не совпадают")
	ErrEmpty    = errors.New("значение не может быть пустым")
)

// Prompter читает ответы пользователя. Если вход - терминал, секреты
// читаются без эха через term.ReadPassword.
type Prompter struct {
	in  *bufio.Reader
	out io.Writer
	fd  int
	tty bool
}

func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	p := &Prompter{in: bufio.NewReader(in), out: out}
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		p.fd = int(f.Fd())
		p.tty = true
	}
	return p
}

// Line читает строку без завершающего перевода строки.
func (p *Prompter) Line(label string) (string, error) {
	fmt.Fprint(p.out, label+": ")

	line, err := p.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		if errors.Is(err, io.EOF) {
			return "", fmt.Errorf("ввод прерван: %w", io.ErrUnexpectedEOF)
		}
		return "", fmt.Errorf("ошибка чтения ввода: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// Required - Line, но пустой ответ считается ошибкой.
func (p *Prompter) Required(label string) (string, error) {
	v, err := p.Line(label)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(v) == "" {
		return "", fmt.Errorf("%s: %w", label, ErrEmpty)
	}
	return v, nil
}

// Secret читает секрет. Пустой секрет не принимается.
func (p *Prompter) Secret(label string) (string, error) {
	if !p.tty {
		return p.Required(label)
	}

	fmt.Fprint(p.out, label+": ")
	raw, err := term.ReadPassword(p.fd)
	fmt.Fprintln(p.out)
	if err != nil {
		return "", fmt.Errorf("ошибка чтения пароля: %w", err)
	}
	if len(raw) == 0 {
		return "", fmt.Errorf("%s: %w", label, ErrEmpty)
	}
	return string(raw), nil
}

// NewSecret запрашивает новый секрет дважды.
func (p *Prompter) NewSecret(label string) (string, error) {
	first, err := p.Secret(label)
	if err != nil {
		return "", err
	}
	second, err := p.Secret("Повторите " + strings.ToLower(label))
	if err != nil {
		return "", err
	}
	if first != second {
		return "", ErrMismatch
	}
	return first, nil
}

// Confirm спрашивает подтверждение. По умолчанию - нет.
func (p *Prompter) Confirm(label string) (bool, error) {
	answer, err := p.Line(label + " [y/N]")
	if err != nil {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes", "д", "да":
		return true, nil
	}
	return false, nil
}
