package auth

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (h *Handler) registerOp() huma.Operation {
	return huma.Operation{
		OperationID:   "auth-register",
		Method:        http.MethodPost,
		Path:          "/api/auth/register",
		Summary:       "Регистрация аккаунта",
		Description:   "Создает аккаунт с паролем и отдельным мастер-паролем хранилища.",
		Tags:          []string{"auth"},
		DefaultStatus: http.StatusCreated,
		Middlewares:   h.public,
	}
}

func (h *Handler) loginOp() huma.Operation {
	return huma.Operation{
		OperationID: "auth-login",
		Method:      http.MethodPost,
		Path:        "/api/auth/login",
		Summary:     "Вход по имени или email",
		Tags:        []string{"auth"},
		Middlewares: h.public,
	}
}

func (h *Handler) verifyMasterOp() huma.Operation {
	return huma.Operation{
		OperationID: "auth-verify-master",
		Method:      http.MethodPost,
		Path:        "/api/auth/verify-master",
		Summary:     "Разблокировать хранилище",
		Tags:        []string{"auth"},
		Security:    []map[string][]string{{"bearer": {}}},
		Middlewares: h.authenticated,
	}
}

func (h *Handler) logoutOp() huma.Operation {
	return huma.Operation{
		OperationID: "auth-logout",
		Method:      http.MethodPost,
		Path:        "/api/auth/logout",
		Summary:     "Завершить сессию",
		Tags:        []string{"auth"},
		Security:    []map[string][]string{{"bearer": {}}, {}},
		Middlewares: h.optional,
	}
}

func (h *Handler) sessionOp() huma.Operation {
	return huma.Operation{
		OperationID: "auth-session",
		Method:      http.MethodGet,
		Path:        "/api/auth/session",
		Summary:     "Состояние текущей сессии",
		Tags:        []string{"auth"},
		Security:    []map[string][]string{{"bearer": {}}, {}},
		Middlewares: h.optional,
	}
}
