package remote

import (
	"time"

	"pixelvault/internal/domain/account"
	"pixelvault/internal/domain/entry"
)

// Registration - ответ на регистрацию.
type Registration struct {
	Account account.Profile `json:"account"`
	KDFSalt []byte          `json:"kdf_salt"`
}

// Login - выданный сервером токен.
type Login struct {
	Token     string          `json:"token"`
	ExpiresAt time.Time       `json:"expires_at"`
	Account   account.Profile `json:"account"`
}

// State - состояние сессии на сервере.
type State struct {
	Authenticated bool             `json:"authenticated"`
	Unlocked      bool             `json:"unlocked"`
	ExpiresAt     *time.Time       `json:"expires_at,omitempty"`
	Account       *account.Profile `json:"account,omitempty"`
	KDFSalt       []byte           `json:"kdf_salt,omitempty"`
}

type loginRequest struct {
	Identity string `json:"identity"`
	Secret   string `json:"secret"`
}

type verifyMasterRequest struct {
	MasterSecret string `json:"master_secret"`
}

type verifyMasterResponse struct {
	Unlocked bool   `json:"unlocked"`
	KDFSalt  []byte `json:"kdf_salt"`
}

type changeSecretRequest struct {
	Current string `json:"current"`
	Next    string `json:"next"`
}

type rotationResponse struct {
	RotationID string    `json:"rotation_id"`
	ExpiresAt  time.Time `json:"expires_at"`
}

type stageRequest struct {
	Rewrites []entry.Rewrite `json:"rewrites"`
}

type deleteAccountRequest struct {
	Secret string `json:"secret"`
}

type createEntryRequest struct {
	Kind       entry.Kind `json:"kind"`
	Ciphertext string     `json:"ciphertext"`
}

type updateEntryRequest struct {
	Ciphertext string `json:"ciphertext"`
}

type listResponse struct {
	Entries []entry.Record `json:"entries"`
}

type deleteAllResponse struct {
	Deleted int64 `json:"deleted"`
}

// problem - тело ошибки huma (RFC 9457).
type problem struct {
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail"`
}
