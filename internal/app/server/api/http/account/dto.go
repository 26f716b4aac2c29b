package account

import (
	"time"

	"pixelvault/internal/domain/account"
	"pixelvault/internal/domain/entry"
)

type profileOutput struct {
	Body account.Profile
}

type updateProfileInput struct {
	Body account.ProfileUpdate
}

type changePasswordInput struct {
	Body struct {
		Current string `json:"current" doc:"Текущий пароль аккаунта" minLength:"1"`
		Next    string `json:"next" doc:"Новый пароль аккаунта" minLength:"1"`
	}
}

type changeMasterInput struct {
	Body ChangeMasterRequest
}

// ChangeMasterRequest - серверная половина перешифрования: новые шифротексты всех записей.
type ChangeMasterRequest struct {
	Current  string          `json:"current" doc:"Текущий мастер-пароль" minLength:"1"`
	Next     string          `json:"next" doc:"Новый мастер-пароль" minLength:"1"`
	Rewrites []entry.Rewrite `json:"rewrites" doc:"Новые шифротексты, по одному на каждую запись"`
}

type changeMasterOutput struct {
	Body ChangeMasterResponse
}

type ChangeMasterResponse struct {
	VaultAccessRevoked bool `json:"vault_access_revoked"`
	Rewritten          int  `json:"rewritten"`
}

type beginRotationInput struct {
	Body struct {
		Current string `json:"current" doc:"Текущий мастер-пароль" minLength:"1"`
		Next    string `json:"next" doc:"Новый мастер-пароль" minLength:"1"`
	}
}

type beginRotationOutput struct {
	Body RotationResponse
}

// RotationResponse - открытая ротация: id для загрузки частей и фиксации.
type RotationResponse struct {
	RotationID string    `json:"rotation_id"`
	ExpiresAt  time.Time `json:"expires_at"`
}

type stageRotationInput struct {
	ID   string `path:"id" doc:"ID ротации"`
	Body struct {
		Rewrites []entry.Rewrite `json:"rewrites" doc:"Часть новых шифротекстов"`
	}
}

type stageRotationOutput struct {
	Body StageResponse
}

type StageResponse struct {
	Staged int `json:"staged"`
}

type rotationIDInput struct {
	ID string `path:"id" doc:"ID ротации"`
}

type deleteInput struct {
	Body struct {
		Secret string `json:"secret" doc:"Пароль аккаунта" minLength:"1"`
	}
}

type statusOutput struct {
	Body StatusResponse
}

type StatusResponse struct {
	Status string `json:"status" example:"Ok"`
}
