package handlers

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	apierrors "picstore/internal/api/errors"
	"picstore/internal/api/middleware"
	"picstore/internal/repository"
	"picstore/internal/service"
)

// AdminHandler — модерационная панель: вход, постраничный список
// изображений, удаление, управление API-ключами.
type AdminHandler struct {
	gate         *middleware.TokenGate
	adminKey     string
	pages        *service.PageService
	keys         *service.KeyService
	images       repository.ImageRepository
	cache        *service.ImageCache
	queryTimeout time.Duration
	debugErrors  bool
	logger       *slog.Logger
}

// NewAdminHandler создаёт обработчик модерационной панели.
func NewAdminHandler(
	gate *middleware.TokenGate,
	adminKey string,
	pages *service.PageService,
	keys *service.KeyService,
	images repository.ImageRepository,
	cache *service.ImageCache,
	queryTimeout time.Duration,
	debugErrors bool,
	logger *slog.Logger,
) *AdminHandler {
	return &AdminHandler{
		gate:         gate,
		adminKey:     adminKey,
		pages:        pages,
		keys:         keys,
		images:       images,
		cache:        cache,
		queryTimeout: queryTimeout,
		debugErrors:  debugErrors,
		logger:       logger.With(slog.String("handler", "admin")),
	}
}

// Login обрабатывает POST /api/v1/admin/login: сравнение общего секрета
// за константное время, на успехе — подписанный токен. Каждый
// защищённый endpoint перепроверяет токен при каждом запросе:
// одноразовый клиентский флаг доступа не воспроизводится.
func (h *AdminHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AdminKey string `json:"adminKey"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierrors.ValidationError(w, "Invalid request body")
		return
	}

	if h.adminKey == "" {
		apierrors.InternalError(w, "Admin key not configured")
		return
	}
	if subtle.ConstantTimeCompare([]byte(req.AdminKey), []byte(h.adminKey)) != 1 {
		h.logger.Warn("неудачная попытка входа в панель модерации",
			slog.String("remote_addr", clientIP(r)),
		)
		apierrors.AuthError(w, "Invalid admin key")
		return
	}

	token, err := h.gate.Issue()
	if err != nil {
		h.logger.Error("не удалось выпустить токен", slog.String("error", err.Error()))
		apierrors.InternalError(w, "Failed to issue session token")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"token":   token,
	})
}

// ListImages обрабатывает GET /api/v1/admin/images?page&limit.
func (h *AdminHandler) ListImages(w http.ResponseWriter, r *http.Request) {
	page := queryInt(r, "page", 1)
	limit := queryInt(r, "limit", 100)

	res, serr := h.pages.ListPage(r.Context(), page, limit)
	if serr != nil {
		writeServiceError(w, serr, h.debugErrors)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"images":      res.Images,
		"totalImages": res.TotalImages,
		"totalPages":  res.TotalPages,
		"currentPage": res.CurrentPage,
		"hasNextPage": res.HasNextPage,
		"hasPrevPage": res.HasPrevPage,
	})
}

// DeleteImage обрабатывает DELETE /api/v1/admin/images/{imageId}.
// Семантика delete-if-exists: повторное удаление того же ID — успех.
func (h *AdminHandler) DeleteImage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "imageId")
	if id == "" {
		apierrors.ValidationError(w, "Image ID is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.queryTimeout)
	defer cancel()

	if err := h.images.Delete(ctx, id); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			apierrors.Timeout(w, "Database query timed out. Please try again.")
			return
		}
		h.logger.Error("не удалось удалить изображение",
			slog.String("image_id", id),
			slog.String("error", err.Error()),
		)
		apierrors.InternalError(w, "Failed to delete image")
		return
	}

	if h.cache != nil {
		h.cache.Delete(id)
	}
	middleware.DeletesTotal.Inc()
	h.logger.Info("Изображение удалено модерацией", slog.String("image_id", id))
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

// SetKeyActive обрабатывает PATCH /api/v1/admin/keys/{keyId}:
// включение/отключение API-ключа модерацией.
func (h *AdminHandler) SetKeyActive(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "keyId")
	if id == "" {
		apierrors.ValidationError(w, "API key ID is required")
		return
	}

	var req struct {
		Active *bool `json:"active"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Active == nil {
		apierrors.ValidationError(w, "Field active is required")
		return
	}

	if serr := h.keys.SetActive(r.Context(), id, *req.Active); serr != nil {
		writeServiceError(w, serr, h.debugErrors)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

// queryInt читает целочисленный query-параметр с значением по умолчанию.
func queryInt(r *http.Request, name string, def int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 1 {
		return def
	}
	return v
}
