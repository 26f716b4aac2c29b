package account

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

// maxRotationBody - с запасом над пределом одной записи: часть ротации
// всегда вмещает хотя бы одну запись, точную проверку делает сервис.
const maxRotationBody = 64 << 20

func (h *Handler) profileOp() huma.Operation {
	return huma.Operation{
		OperationID: "users-profile",
		Method:      http.MethodGet,
		Path:        "/api/users/profile",
		Summary:     "Профиль аккаунта",
		Tags:        []string{"users"},
		Security:    []map[string][]string{{"bearer": {}}},
		Middlewares: h.middleware,
	}
}

func (h *Handler) updateProfileOp() huma.Operation {
	return huma.Operation{
		OperationID: "users-profile-update",
		Method:      http.MethodPut,
		Path:        "/api/users/profile",
		Summary:     "Изменить имя и email",
		Tags:        []string{"users"},
		Security:    []map[string][]string{{"bearer": {}}},
		Middlewares: h.middleware,
	}
}

func (h *Handler) changePasswordOp() huma.Operation {
	return huma.Operation{
		OperationID: "users-change-password",
		Method:      http.MethodPut,
		Path:        "/api/users/password",
		Summary:     "Сменить пароль аккаунта",
		Tags:        []string{"users"},
		Security:    []map[string][]string{{"bearer": {}}},
		Middlewares: h.middleware,
	}
}

func (h *Handler) changeMasterOp() huma.Operation {
	return huma.Operation{
		OperationID:  "users-change-master",
		Method:       http.MethodPut,
		Path:         "/api/users/master",
		Summary:      "Сменить мастер-пароль",
		Description:  "Атомарно меняет мастер-пароль и шифротексты всех записей одним запросом. Хранилище, которое не помещается в один запрос, меняется через /api/users/master/rotations. После успеха хранилище заблокировано во всех сессиях.",
		Tags:         []string{"users"},
		Security:     []map[string][]string{{"bearer": {}}},
		MaxBodyBytes: maxRotationBody,
		Middlewares:  h.middleware,
	}
}

func (h *Handler) beginRotationOp() huma.Operation {
	return huma.Operation{
		OperationID:   "users-rotation-begin",
		Method:        http.MethodPost,
		Path:          "/api/users/master/rotations",
		Summary:       "Начать смену мастер-пароля по частям",
		Description:   "Проверяет текущий мастер-пароль и открывает ротацию. Предыдущая незавершенная ротация отбрасывается.",
		Tags:          []string{"users"},
		Security:      []map[string][]string{{"bearer": {}}},
		DefaultStatus: http.StatusCreated,
		Middlewares:   h.middleware,
	}
}

func (h *Handler) stageRotationOp() huma.Operation {
	return huma.Operation{
		OperationID:  "users-rotation-stage",
		Method:       http.MethodPut,
		Path:         "/api/users/master/rotations/{id}/entries",
		Summary:      "Загрузить часть новых шифротекстов",
		Tags:         []string{"users"},
		Security:     []map[string][]string{{"bearer": {}}},
		MaxBodyBytes: maxRotationBody,
		Middlewares:  h.middleware,
	}
}

func (h *Handler) commitRotationOp() huma.Operation {
	return huma.Operation{
		OperationID: "users-rotation-commit",
		Method:      http.MethodPost,
		Path:        "/api/users/master/rotations/{id}/commit",
		Summary:     "Зафиксировать смену мастер-пароля",
		Description: "Одной транзакцией меняет хэш и шифротексты всех записей. Набор загруженных записей должен совпасть с хранилищем. После успеха хранилище заблокировано во всех сессиях.",
		Tags:        []string{"users"},
		Security:    []map[string][]string{{"bearer": {}}},
		Middlewares: h.middleware,
	}
}

func (h *Handler) abortRotationOp() huma.Operation {
	return huma.Operation{
		OperationID: "users-rotation-abort",
		Method:      http.MethodDelete,
		Path:        "/api/users/master/rotations/{id}",
		Summary:     "Отменить смену мастер-пароля",
		Tags:        []string{"users"},
		Security:    []map[string][]string{{"bearer": {}}},
		Middlewares: h.middleware,
	}
}

func (h *Handler) deleteOp() huma.Operation {
	return huma.Operation{
		OperationID: "users-delete",
		Method:      http.MethodDelete,
		Path:        "/api/users/account",
		Summary:     "Удалить аккаунт со всеми записями",
		Tags:        []string{"users"},
		Security:    []map[string][]string{{"bearer": {}}},
		Middlewares: h.middleware,
	}
}
