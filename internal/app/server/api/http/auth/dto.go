package auth

import (
	"time"

	"pixelvault/internal/domain/account"
)

type registerInput struct {
	Body account.RegisterRequest
}

type registerOutput struct {
	Body RegisterResponse
}

type RegisterResponse struct {
	Account account.Profile `json:"account"`
	KDFSalt []byte          `json:"kdf_salt" doc:"Соль для вывода ключа шифрования, base64"`
}

type loginInput struct {
	Body account.LoginRequest
}

type loginOutput struct {
	Body LoginResponse
}

type LoginResponse struct {
	Token     string          `json:"token"`
	ExpiresAt time.Time       `json:"expires_at"`
	Account   account.Profile `json:"account"`
}

type verifyMasterInput struct {
	Body struct {
		MasterSecret string `json:"master_secret" doc:"Мастер-пароль хранилища" minLength:"1"`
	}
}

type verifyMasterOutput struct {
	Body VerifyMasterResponse
}

type VerifyMasterResponse struct {
	Unlocked bool   `json:"unlocked"`
	KDFSalt  []byte `json:"kdf_salt"`
}

type logoutOutput struct {
	Body StatusResponse
}

type StatusResponse struct {
	Status string `json:"status" example:"Ok"`
}

type sessionOutput struct {
	Body SessionResponse
}

type SessionResponse struct {
	Authenticated bool             `json:"authenticated"`
	Unlocked      bool             `json:"unlocked"`
	ExpiresAt     *time.Time       `json:"expires_at,omitempty"`
	Account       *account.Profile `json:"account,omitempty"`
	KDFSalt       []byte           `json:"kdf_salt,omitempty"`
}
