package handlers

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"picstore/internal/service"
)

// ViewHandler — публичные страницы просмотра: редирект на канонический
// URL с именем файла и бинарная отдача изображения.
// В отличие от JSON API, ошибки здесь отдаются plain text: эти URL
// открываются браузером напрямую.
type ViewHandler struct {
	views  *service.ViewService
	logger *slog.Logger
}

// NewViewHandler создаёт обработчик страниц просмотра.
func NewViewHandler(views *service.ViewService, logger *slog.Logger) *ViewHandler {
	return &ViewHandler{
		views:  views,
		logger: logger.With(slog.String("handler", "view")),
	}
}

// Redirect обрабатывает GET /view/{imageId}: 302 на
// /view/{imageId}/{fileName}, чтобы сохранённая ссылка несла
// осмысленное имя скачиваемого файла.
func (h *ViewHandler) Redirect(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "imageId")

	fileName, serr := h.views.FileName(r.Context(), id)
	if serr != nil {
		h.writePlainError(w, serr)
		return
	}

	target := fmt.Sprintf("/view/%s/%s", url.PathEscape(id), url.PathEscape(fileName))
	http.Redirect(w, r, target, http.StatusFound)
}

// Binary обрабатывает GET /view/{imageId}/{filename}: отдаёт
// декодированные байты изображения с долгоживущим кэшем.
// Сегмент {filename} декоративный: запись ищется только по ID.
func (h *ViewHandler) Binary(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "imageId")

	img, serr := h.views.GetBinary(r.Context(), id)
	if serr != nil {
		h.writePlainError(w, serr)
		return
	}

	w.Header().Set("Content-Type", img.MimeType)
	w.Header().Set("Content-Length", strconv.Itoa(len(img.Data)))
	w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("inline; filename=%q", url.PathEscape(img.FileName)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(img.Data)
}

// writePlainError отдаёт ошибку сервисного слоя plain text.
func (h *ViewHandler) writePlainError(w http.ResponseWriter, serr *service.Error) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	switch serr.Status {
	case http.StatusNotFound:
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte("Not Found"))
	case http.StatusUnprocessableEntity:
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(serr.Message))
	case http.StatusBadRequest:
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(serr.Message))
	default:
		if serr.Err != nil {
			h.logger.Error("ошибка отдачи изображения",
				slog.Int("status", serr.Status),
				slog.String("error", serr.Err.Error()),
			)
		}
		w.WriteHeader(serr.Status)
		_, _ = w.Write([]byte("Server Error"))
	}
}
