package entry

import (
	"pixelvault/internal/domain/entry"
)

type listOutput struct {
	Body ListResponse
}

type ListResponse struct {
	Entries []entry.Record `json:"entries"`
}

type createInput struct {
	Body createRequest
}

type createRequest struct {
	Kind       entry.Kind `json:"kind" doc:"Тип записи"`
	Ciphertext string     `json:"ciphertext" doc:"Зашифрованное на клиенте содержимое, base64"`
}

type idInput struct {
	ID string `path:"id" example:"9b2f3c1e-8d4a-4c6b-9f0e-2a7d5b1c3e4f" doc:"ID записи"`
}

type updateInput struct {
	ID   string `path:"id" doc:"ID записи"`
	Body struct {
		Ciphertext string `json:"ciphertext" doc:"Новый шифротекст, тип записи не меняется"`
	}
}

type recordOutput struct {
	Body entry.Record
}

type summaryOutput struct {
	Body entry.Summary
}

type deleteAllOutput struct {
	Body DeleteAllResponse
}

type DeleteAllResponse struct {
	Deleted int64 `json:"deleted"`
}

type statusOutput struct {
	Body StatusResponse
}

type StatusResponse struct {
	Status string `json:"status" example:"Ok"`
}
