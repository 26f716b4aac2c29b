package entry

import "time"

// Record - зашифрованная запись в том виде, в каком ее хранит сервер.
// Сервер не видит структуру открытого текста.
type Record struct {
	ID         string    `json:"id"`
	AccountID  int       `json:"-"`
	Kind       Kind      `json:"kind"`
	Ciphertext string    `json:"ciphertext"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Summary - количество записей по типам.
type Summary struct {
	Total       int64 `json:"total"`
	Credentials int64 `json:"credentials"`
	Notes       int64 `json:"notes"`
	Files       int64 `json:"files"`
}

func NewSummary(counts map[Kind]int64) Summary {
	s := Summary{
		Credentials: counts[KindCredential],
		Notes:       counts[KindNote],
		Files:       counts[KindFile],
	}
	s.Total = s.Credentials + s.Notes + s.Files
	return s
}

// Rewrite - новый шифротекст записи при смене мастер-пароля.
type Rewrite struct {
	ID         string `json:"id"`
	Ciphertext string `json:"ciphertext"`
}
