package entry

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

// maxEntryBody выше предела шифротекста: точный предел проверяет сервис и отвечает 413.
const maxEntryBody = 64 << 20

func (h *Handler) listOp() huma.Operation {
	return huma.Operation{
		OperationID: "entries-list",
		Method:      http.MethodGet,
		Path:        "/api/entries",
		Summary:     "Список записей",
		Description: "Шифротексты всех записей, последние изменения первыми.",
		Tags:        []string{"entries"},
		Security:    []map[string][]string{{"bearer": {}}},
		Middlewares: h.middleware,
	}
}

func (h *Handler) createOp() huma.Operation {
	return huma.Operation{
		OperationID:   "entries-create",
		Method:        http.MethodPost,
		Path:          "/api/entries",
		Summary:       "Создать запись",
		Tags:          []string{"entries"},
		Security:      []map[string][]string{{"bearer": {}}},
		DefaultStatus: http.StatusCreated,
		MaxBodyBytes:  maxEntryBody,
		Middlewares:   h.middleware,
	}
}

func (h *Handler) summaryOp() huma.Operation {
	return huma.Operation{
		OperationID: "entries-summary",
		Method:      http.MethodGet,
		Path:        "/api/entries/summary",
		Summary:     "Количество записей по типам",
		Tags:        []string{"entries"},
		Security:    []map[string][]string{{"bearer": {}}},
		Middlewares: h.middleware,
	}
}

func (h *Handler) findOp() huma.Operation {
	return huma.Operation{
		OperationID: "entries-find",
		Method:      http.MethodGet,
		Path:        "/api/entries/{id}",
		Summary:     "Получить запись",
		Tags:        []string{"entries"},
		Security:    []map[string][]string{{"bearer": {}}},
		Middlewares: h.middleware,
	}
}

func (h *Handler) updateOp() huma.Operation {
	return huma.Operation{
		OperationID:  "entries-update",
		Method:       http.MethodPut,
		Path:         "/api/entries/{id}",
		Summary:      "Заменить шифротекст записи",
		Tags:         []string{"entries"},
		Security:     []map[string][]string{{"bearer": {}}},
		MaxBodyBytes: maxEntryBody,
		Middlewares:  h.middleware,
	}
}

func (h *Handler) deleteOp() huma.Operation {
	return huma.Operation{
		OperationID: "entries-delete",
		Method:      http.MethodDelete,
		Path:        "/api/entries/{id}",
		Summary:     "Удалить запись",
		Tags:        []string{"entries"},
		Security:    []map[string][]string{{"bearer": {}}},
		Middlewares: h.middleware,
	}
}

func (h *Handler) deleteAllOp() huma.Operation {
	return huma.Operation{
		OperationID: "entries-delete-all",
		Method:      http.MethodDelete,
		Path:        "/api/entries",
		Summary:     "Удалить все записи",
		Tags:        []string{"entries"},
		Security:    []map[string][]string{{"bearer": {}}},
		Middlewares: h.middleware,
	}
}
