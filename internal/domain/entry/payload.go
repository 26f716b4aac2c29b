package entry

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
)

// Payload - расшифрованное содержимое записи. Существует только на клиенте.
type Payload interface {
	Kind() Kind
	Validate() error
}

// Credential - сохраненный пароль от сервиса.
type Credential struct {
	Service  string `json:"service"`
	Category string `json:"category"`
	Username string `json:"username"`
	Secret   string `json:"secret"`
	URL      string `json:"url,omitempty"`
}

func (c *Credential) Kind() Kind {
	return KindCredential
}

func (c *Credential) Validate() error {
	if strings.TrimSpace(c.Service) == "" {
		return fmt.Errorf("service is required")
	}
	if c.Secret == "" {
		return fmt.Errorf("secret is required")
	}
	if c.URL != "" {
		u, err := url.Parse(c.URL)
		if err != nil {
			return fmt.Errorf("url: %w", err)
		}
		if !u.IsAbs() || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("url must be an absolute http(s) address")
		}
	}
	return nil
}

// Note - текстовая заметка.
type Note struct {
	Title    string `json:"title"`
	Category string `json:"category"`
	Body     string `json:"body"`
}

func (n *Note) Kind() Kind {
	return KindNote
}

func (n *Note) Validate() error {
	if strings.TrimSpace(n.Title) == "" {
		return fmt.Errorf("title is required")
	}
	return nil
}

// File - произвольный файл. Content в JSON кодируется base64.
type File struct {
	Title     string `json:"title"`
	Category  string `json:"category"`
	Filename  string `json:"filename"`
	MediaType string `json:"media_type"`
	Size      int64  `json:"size"`
	Content   []byte `json:"content"`
}

func (f *File) Kind() Kind {
	return KindFile
}

func (f *File) Validate() error {
	if strings.TrimSpace(f.Title) == "" {
		return fmt.Errorf("title is required")
	}
	if strings.TrimSpace(f.Filename) == "" {
		return fmt.Errorf("filename is required")
	}
	if f.Size != int64(len(f.Content)) {
		return fmt.Errorf("size %d does not match content length %d", f.Size, len(f.Content))
	}
	return nil
}

// DefaultCategory подставляется, если категория не задана.
const DefaultCategory = "Other"

func normalize(p Payload) {
	switch v := p.(type) {
	case *Credential:
		v.Category = categoryOrDefault(v.Category)
	case *Note:
		v.Category = categoryOrDefault(v.Category)
	case *File:
		v.Category = categoryOrDefault(v.Category)
	}
}

func categoryOrDefault(c string) string {
	if c = strings.TrimSpace(c); c == "" {
		return DefaultCategory
	}
	return c
}

// NewPayload возвращает пустое значение нужного типа.
func NewPayload(kind Kind) (Payload, error) {
	switch kind {
	case KindCredential:
		return &Credential{}, nil
	case KindNote:
		return &Note{}, nil
	case KindFile:
		return &File{}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrInvalidKind, string(kind))
}

type taggedPayload struct {
	Kind Kind            `json:"kind"`
	Data json.RawMessage `json:"data"`
}

// MarshalPayload сериализует запись в виде {"kind": ..., "data": {...}}.
func MarshalPayload(p Payload) ([]byte, error) {
	if p == nil {
		return nil, fmt.Errorf("%w: nil payload", ErrInvalidPayload)
	}
	normalize(p)
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidPayload, p.Kind(), err)
	}

	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", p.Kind(), err)
	}

	return json.Marshal(taggedPayload{Kind: p.Kind(), Data: data})
}

// UnmarshalPayload разбирает запись строго: неизвестные поля, чужой тип
// или невалидные данные дают ErrInvalidPayload.
func UnmarshalPayload(raw []byte, expected Kind) (Payload, error) {
	var tagged taggedPayload
	if err := decodeStrict(raw, &tagged); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	if tagged.Kind != expected {
		return nil, fmt.Errorf("%w: expected %s, got %q", ErrInvalidPayload, expected, string(tagged.Kind))
	}

	p, err := NewPayload(tagged.Kind)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	if len(tagged.Data) == 0 {
		return nil, fmt.Errorf("%w: missing data", ErrInvalidPayload)
	}
	if err := decodeStrict(tagged.Data, p); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidPayload, expected, err)
	}

	normalize(p)
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidPayload, expected, err)
	}

	return p, nil
}

func decodeStrict(raw []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()

	if err := dec.Decode(v); err != nil {
		return err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errors.New("trailing data after payload")
	}
	return nil
}
