package session

import "time"

// Info - состояние сессии после проверки токена.
type Info struct {
	AccountID     int       `json:"account_id"`
	Authenticated bool      `json:"authenticated"`
	Unlocked      bool      `json:"unlocked"`
	ExpiresAt     time.Time `json:"expires_at"`
}

// Token - выданный клиенту токен. В хранилище попадает только его хэш.
type Token struct {
	Value     string
	ExpiresAt time.Time
}

// Record - строка сессии в хранилище.
type Record struct {
	AccountID int
	Unlocked  bool
	ExpiresAt time.Time
}
