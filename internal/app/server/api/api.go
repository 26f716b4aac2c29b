// Граница сервера PixelVault:
//
// POST   /api/auth/register        # Регистрация (публичный)
// POST   /api/auth/login           # Вход (публичный)
// POST   /api/auth/verify-master   # Разблокировать хранилище (auth)
// POST   /api/auth/logout          # Выход (токен опционален)
// GET    /api/auth/session         # Состояние сессии (токен опционален)
// GET    /api/users/profile        # Профиль (auth)
// PUT    /api/users/profile        # Изменить профиль (auth)
// PUT    /api/users/password       # Сменить пароль (auth)
// PUT    /api/users/master         # Сменить мастер-пароль с перешифрованием (auth)
// POST   /api/users/master/rotations              # Начать смену по частям (auth)
// PUT    /api/users/master/rotations/{id}/entries # Загрузить часть шифротекстов (auth)
// POST   /api/users/master/rotations/{id}/commit  # Зафиксировать смену (auth)
// DELETE /api/users/master/rotations/{id}         # Отменить смену (auth)
// DELETE /api/users/account        # Удалить аккаунт (auth)
// GET    /api/entries              # Список записей (unlocked)
// POST   /api/entries              # Создать запись (unlocked)
// DELETE /api/entries              # Удалить все записи (unlocked)
// GET    /api/entries/summary      # Статистика (unlocked)
// GET    /api/entries/{id}         # Получить запись (unlocked)
// PUT    /api/entries/{id}         # Обновить запись (unlocked)
// DELETE /api/entries/{id}         # Удалить запись (unlocked)
// GET    /api/v1/health            # Проверка живости

package api

import (
	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"golang.org/x/exp/slog"

	accountAPI "pixelvault/internal/app/server/api/http/account"
	authAPI "pixelvault/internal/app/server/api/http/auth"
	entryAPI "pixelvault/internal/app/server/api/http/entry"
	healthAPI "pixelvault/internal/app/server/api/http/health"
	"pixelvault/internal/app/server/api/http/middleware"
	"pixelvault/internal/app/server/api/http/middleware/auth"
	"pixelvault/internal/app/server/api/http/middleware/logger"
	"pixelvault/internal/app/server/config"
	"pixelvault/internal/domain/account"
	"pixelvault/internal/domain/entry"
	"pixelvault/internal/domain/rotation"
	"pixelvault/internal/domain/session"
	"pixelvault/internal/infrastructure/storage/postgres"
)

type Handlers struct {
	Health  *healthAPI.Handler
	Auth    *authAPI.Handler
	Account *accountAPI.Handler
	Entry   *entryAPI.Handler
}

// Services - доменные сервисы, из которых собирается граница.
type Services struct {
	Accounts account.Servicer
	Sessions session.Servicer
	Entries  entry.Servicer
	Rotation rotation.Servicer
	DB       healthAPI.Pinger
}

// New создает *chi.Mux с ВСЕМИ операциями через huma.Register
func New(svc Services, log *slog.Logger) *chi.Mux {
	mux := chi.NewMux()
	mux.Use(chimw.RequestID, chimw.RealIP, chimw.Recoverer)

	cfg := huma.DefaultConfig("PixelVault API", "1.0.0")
	cfg.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearer": {Type: "http", Scheme: "bearer"},
	}

	API := humachi.New(mux, cfg)

	h := handlers(API, svc, log)
	h.Health.SetupRoutes(API)
	h.Auth.SetupRoutes(API)
	h.Account.SetupRoutes(API)
	h.Entry.SetupRoutes(API)

	return mux
}

// NewFromStorage собирает репозитории и сервисы поверх PostgreSQL.
func NewFromStorage(storage *postgres.Storage, cfg *config.Config, log *slog.Logger) *chi.Mux {
	pool := storage.Pool()

	accounts := account.NewService(
		postgres.NewAccountRepository(pool, log),
		account.NewBcryptHasher(cfg.Security.BcryptCost),
		account.NewValidator(),
		log,
	)
	sessions := session.NewService(postgres.NewSessionRepository(pool, log), cfg.Session.TTL, log)
	entries := entry.NewService(postgres.NewEntryRepository(pool, log), cfg.Entries.MaxBytes, log)
	rotations := rotation.NewStagedService(
		accounts,
		postgres.NewRotationRepository(pool, log),
		cfg.Entries.MaxBytes,
		cfg.Rotation.StagingTTL,
		log,
	)

	return New(Services{
		Accounts: accounts,
		Sessions: sessions,
		Entries:  entries,
		Rotation: rotations,
		DB:       pool,
	}, log)
}

func handlers(api huma.API, svc Services, log *slog.Logger) *Handlers {
	authMW := auth.New(api, svc.Sessions, log)
	loggerMW := logger.New(log)
	middlewares := middleware.NewContainer()

	middlewares.Add(loggerMW.Middleware())
	healthHandler := healthAPI.NewHandler(svc.DB, log, middlewares.GetAllAndClear())

	authHandler := authAPI.NewHandler(svc.Accounts, svc.Sessions, log, authAPI.Middlewares{
		Public:        middlewares.Add(loggerMW.Middleware()).GetAllAndClear(),
		Optional:      middlewares.Add(loggerMW.Middleware(), authMW.Optional()).GetAllAndClear(),
		Authenticated: middlewares.Add(loggerMW.Middleware(), authMW.RequireAuthenticated()).GetAllAndClear(),
	})

	middlewares.Add(loggerMW.Middleware(), authMW.RequireAuthenticated())
	accountHandler := accountAPI.NewHandler(svc.Accounts, svc.Rotation, log, middlewares.GetAllAndClear())

	middlewares.Add(loggerMW.Middleware(), authMW.RequireUnlocked())
	entryHandler := entryAPI.NewHandler(svc.Entries, log, middlewares.GetAllAndClear())

	return &Handlers{
		Health:  healthHandler,
		Auth:    authHandler,
		Account: accountHandler,
		Entry:   entryHandler,
	}
}
