package entry

import (
	"fmt"

	"github.com/danielgtaylor/huma/v2"
)

type Kind string

const (
	KindCredential Kind = "credential"
	KindNote       Kind = "note"
	KindFile       Kind = "file"
)

var Kinds = []Kind{KindCredential, KindNote, KindFile}

func (Kind) Schema(huma.Registry) *huma.Schema {
	return &huma.Schema{
		Type: "string",
		Enum: []any{
			string(KindCredential),
			string(KindNote),
			string(KindFile),
		},
		Description: "Тип записи хранилища",
		Examples:    []any{KindCredential},
	}
}

// Validate проверяет, что тип входит в допустимый набор.
func (k Kind) Validate() error {
	switch k {
	case KindCredential, KindNote, KindFile:
		return nil
	}
	return fmt.Errorf("%w: %q", ErrInvalidKind, string(k))
}

func (k Kind) String() string {
	return string(k)
}

// DisplayName возвращает человекочитаемое название типа.
func (k Kind) DisplayName() string {
	switch k {
	case KindCredential:
		return "Пароль"
	case KindNote:
		return "Заметка"
	case KindFile:
		return "Файл"
	default:
		return "Неизвестный тип"
	}
}
