// Точка входа picstore — сервис загрузки и просмотра изображений
// с панелью модерации и панелью генерации статей.
// Загружает конфигурацию, подключается к PostgreSQL, применяет миграции,
// создаёт сервисный слой и API handlers, запускает HTTP-сервер
// с graceful shutdown.
package main

import (
	"context"
	"log/slog"
	"os"

	"picstore/internal/api/handlers"
	"picstore/internal/api/middleware"
	"picstore/internal/config"
	"picstore/internal/database"
	"picstore/internal/llm"
	"picstore/internal/repository"
	"picstore/internal/server"
	"picstore/internal/service"
)

func main() {
	// 1. Загрузка конфигурации из переменных окружения
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Ошибка загрузки конфигурации", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 2. Настройка логирования
	logger := config.SetupLogger(cfg)
	logger.Info("picstore запускается",
		slog.String("version", config.Version),
		slog.Int("port", cfg.Port),
	)

	// 3. Применение миграций БД
	logger.Info("Применение миграций БД...")
	if err := database.Migrate(cfg, logger); err != nil {
		logger.Error("Ошибка миграций БД", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 4. Подключение к PostgreSQL (pgxpool)
	ctx := context.Background()
	pool, err := database.Connect(ctx, cfg, logger)
	if err != nil {
		logger.Error("Ошибка подключения к PostgreSQL", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	// 5. Repositories
	imageRepo := repository.NewImageRepository(pool)
	keyRepo := repository.NewAPIKeyRepository(pool)

	// 6. LLM-клиент (опционально: без ключа endpoints статей отвечают 500)
	var llmClient llm.Client
	if cfg.GenAIAPIKey != "" {
		gemini, gerr := llm.NewGeminiClient(ctx, cfg.GenAIAPIKey, cfg.GenAIModel)
		if gerr != nil {
			logger.Error("Ошибка создания Gemini-клиента", slog.String("error", gerr.Error()))
			os.Exit(1)
		}
		llmClient = gemini
		logger.Info("Gemini-клиент создан", slog.String("model", cfg.GenAIModel))
	} else {
		logger.Warn("PICSTORE_GENAI_API_KEY не задан, генерация статей недоступна")
	}

	// 7. Services
	var imageCache *service.ImageCache
	if cfg.CacheSize > 0 {
		imageCache = service.NewImageCache(cfg.CacheSize, cfg.CacheTTL)
	}
	uploadSvc := service.NewUploadService(imageRepo, keyRepo, cfg.QueryTimeout, logger)
	viewSvc := service.NewViewService(imageRepo, imageCache, cfg.QueryTimeout, logger)
	pageSvc := service.NewPageService(imageRepo, cfg.QueryTimeout, logger)
	keySvc := service.NewKeyService(keyRepo, cfg.QueryTimeout, logger)
	articleSvc := service.NewArticleService(llmClient, cfg.ArticlesDir, logger)

	// 8. Токенная охрана панелей: у каждой панели свой секрет и аудитория
	adminGate := middleware.NewTokenGate(cfg.AdminKey, middleware.AudienceAdmin, logger)
	articlesGate := middleware.NewTokenGate(cfg.ArticlesKey, middleware.AudienceArticles, logger)
	if !adminGate.Configured() {
		logger.Warn("PICSTORE_ADMIN_KEY не задан, панель модерации недоступна")
	}
	if !articlesGate.Configured() {
		logger.Warn("PICSTORE_ARTICLES_KEY не задан, панель статей недоступна")
	}

	// 9. Handlers
	h := server.Handlers{
		Images:   handlers.NewImagesHandler(uploadSvc, viewSvc, cfg.DebugErrors, logger),
		Views:    handlers.NewViewHandler(viewSvc, logger),
		Keys:     handlers.NewKeysHandler(keySvc, cfg.DebugErrors, logger),
		Admin:    handlers.NewAdminHandler(adminGate, cfg.AdminKey, pageSvc, keySvc, imageRepo, imageCache, cfg.QueryTimeout, cfg.DebugErrors, logger),
		Articles: handlers.NewArticlesHandler(articlesGate, cfg.ArticlesKey, articleSvc, cfg.DebugErrors, logger),
		Health:   handlers.NewHealthHandler(config.Version, database.NewReadinessChecker(pool)),
	}

	// 10. Создание и запуск HTTP-сервера
	srv := server.New(cfg, logger, h,
		server.Gates{Admin: adminGate, Articles: articlesGate},
		middleware.RequestLogger(logger),
		middleware.MetricsMiddleware(),
	)
	if err := srv.Run(); err != nil {
		logger.Error("Ошибка сервера", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("picstore остановлен")
}
