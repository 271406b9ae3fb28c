package handlers

import (
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	apierrors "picstore/internal/api/errors"
	"picstore/internal/api/middleware"
	"picstore/internal/domain/model"
	"picstore/internal/service"
)

// ArticlesHandler — панель генерации статей. Независима от панели
// модерации: свой секрет, свой токен, никакого общего состояния.
type ArticlesHandler struct {
	gate        *middleware.TokenGate
	articlesKey string
	articles    *service.ArticleService
	debugErrors bool
	logger      *slog.Logger
}

// NewArticlesHandler создаёт обработчик панели статей.
func NewArticlesHandler(
	gate *middleware.TokenGate,
	articlesKey string,
	articles *service.ArticleService,
	debugErrors bool,
	logger *slog.Logger,
) *ArticlesHandler {
	return &ArticlesHandler{
		gate:        gate,
		articlesKey: articlesKey,
		articles:    articles,
		debugErrors: debugErrors,
		logger:      logger.With(slog.String("handler", "articles")),
	}
}

// Login обрабатывает POST /api/v1/articles/login.
func (h *ArticlesHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AdminKey string `json:"adminKey"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierrors.ValidationError(w, "Invalid request body")
		return
	}

	if h.articlesKey == "" {
		apierrors.InternalError(w, "Admin key not configured")
		return
	}
	if subtle.ConstantTimeCompare([]byte(req.AdminKey), []byte(h.articlesKey)) != 1 {
		h.logger.Warn("неудачная попытка входа в панель статей",
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

// Topics обрабатывает GET /api/v1/topics: один запрос к модели,
// структурированный список тем.
func (h *ArticlesHandler) Topics(w http.ResponseWriter, r *http.Request) {
	topics, serr := h.articles.Topics(r.Context())
	if serr != nil {
		writeServiceError(w, serr, h.debugErrors)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"topics": topics})
}

// GenerateOne обрабатывает POST /api/v1/article: генерация одной статьи
// по переданной теме.
func (h *ArticlesHandler) GenerateOne(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Topic model.Topic `json:"topic"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierrors.ValidationError(w, "Invalid request body")
		return
	}
	if req.Topic.Title == "" {
		apierrors.ValidationError(w, "Topic title is required")
		return
	}

	content, serr := h.articles.Generate(r.Context(), req.Topic)
	if serr != nil {
		middleware.ArticleGenerationsTotal.WithLabelValues("error").Inc()
		writeServiceError(w, serr, h.debugErrors)
		return
	}

	middleware.ArticleGenerationsTotal.WithLabelValues("success").Inc()
	writeJSON(w, http.StatusOK, map[string]any{"content": content})
}

// GenerateBatch обрабатывает POST /api/v1/articles/generate:
// параллельная генерация по списку выбранных тем. Ошибка одной темы
// не отменяет остальные; статус каждой темы возвращается отдельно.
func (h *ArticlesHandler) GenerateBatch(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Topics []model.Topic `json:"topics"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierrors.ValidationError(w, "Invalid request body")
		return
	}
	if len(req.Topics) == 0 {
		apierrors.ValidationError(w, "At least one topic is required")
		return
	}

	articles, serr := h.articles.GenerateBatch(r.Context(), req.Topics)
	if serr != nil {
		writeServiceError(w, serr, h.debugErrors)
		return
	}

	for _, a := range articles {
		result := "success"
		if a.Status == model.StatusError {
			result = "error"
		}
		middleware.ArticleGenerationsTotal.WithLabelValues(result).Inc()
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"articles": articles,
	})
}

// SaveArticles обрабатывает POST /api/v1/save-articles: записывает
// завершённые статьи в файлы по ID темы.
func (h *ArticlesHandler) SaveArticles(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Articles []model.Article `json:"articles"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierrors.ValidationError(w, "Invalid request body")
		return
	}

	files, serr := h.articles.Save(req.Articles)
	if serr != nil {
		writeServiceError(w, serr, h.debugErrors)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": fmt.Sprintf("Saved %d articles", len(files)),
		"files":   files,
	})
}
