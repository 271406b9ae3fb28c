// Пакет server — HTTP-сервер picstore с graceful shutdown.
// Без TLS — HTTP внутри кластера, TLS termination на reverse proxy.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"picstore/internal/api/handlers"
	"picstore/internal/api/middleware"
	"picstore/internal/config"
)

// Handlers — обработчики всех поверхностей API.
type Handlers struct {
	Images   *handlers.ImagesHandler
	Views    *handlers.ViewHandler
	Keys     *handlers.KeysHandler
	Admin    *handlers.AdminHandler
	Articles *handlers.ArticlesHandler
	Health   *handlers.HealthHandler
}

// Gates — охрана защищённых групп маршрутов. Две независимые панели —
// два независимых токена.
type Gates struct {
	Admin    *middleware.TokenGate
	Articles *middleware.TokenGate
}

// Server — HTTP-сервер picstore.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
	cfg        *config.Config
}

// New создаёт новый HTTP-сервер с настроенными routes и middleware.
// middlewares — глобальные middleware (logging, metrics), добавляются
// в порядке переданного среза.
func New(cfg *config.Config, logger *slog.Logger, h Handlers, gates Gates, middlewares ...func(http.Handler) http.Handler) *Server {
	router := chi.NewRouter()

	for _, mw := range middlewares {
		router.Use(mw)
	}

	// Публичный API
	router.Route("/api/v1", func(r chi.Router) {
		r.Post("/upload", h.Images.Upload)
		r.Post("/apply-key", h.Keys.Apply)
		r.Get("/image/{imageId}", h.Images.GetImage)

		// Входы в панели — вне токенной охраны
		r.Post("/admin/login", h.Admin.Login)
		r.Post("/articles/login", h.Articles.Login)

		// Панель модерации: каждый запрос перепроверяет токен
		r.Group(func(r chi.Router) {
			r.Use(gates.Admin.Middleware())
			r.Get("/admin/images", h.Admin.ListImages)
			r.Delete("/admin/images/{imageId}", h.Admin.DeleteImage)
			r.Patch("/admin/keys/{keyId}", h.Admin.SetKeyActive)
		})

		// Панель генерации статей: независимая охрана
		r.Group(func(r chi.Router) {
			r.Use(gates.Articles.Middleware())
			r.Get("/topics", h.Articles.Topics)
			r.Post("/article", h.Articles.GenerateOne)
			r.Post("/articles/generate", h.Articles.GenerateBatch)
			r.Post("/save-articles", h.Articles.SaveArticles)
		})
	})

	// Публичные страницы просмотра
	router.Get("/view/{imageId}", h.Views.Redirect)
	router.Get("/view/{imageId}/{filename}", h.Views.Binary)

	// Системная поверхность
	router.Get("/health/live", h.Health.Live)
	router.Get("/health/ready", h.Health.Ready)
	router.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: router,
		// Тела запросов содержат base64 изображений — таймауты щедрые
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return &Server{
		httpServer: srv,
		logger:     logger,
		cfg:        cfg,
	}
}

// Run запускает сервер и ожидает сигнала завершения (SIGINT, SIGTERM).
// При получении сигнала выполняется graceful shutdown.
func (s *Server) Run() error {
	// Канал для ошибок сервера
	errCh := make(chan error, 1)

	go func() {
		s.logger.Info("HTTP-сервер запущен",
			slog.String("addr", s.httpServer.Addr),
		)

		err := s.httpServer.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	// Ожидание сигнала завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		s.logger.Info("Получен сигнал завершения", slog.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("ошибка HTTP-сервера: %w", err)
		}
	}

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	s.logger.Info("Выполняется graceful shutdown...")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("ошибка при graceful shutdown: %w", err)
	}

	s.logger.Info("HTTP-сервер остановлен")
	return nil
}
