package handlers

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	apierrors "picstore/internal/api/errors"
	"picstore/internal/api/middleware"
	"picstore/internal/service"
)

// ImagesHandler — публичные операции с изображениями:
// загрузка и JSON-режим просмотра.
type ImagesHandler struct {
	uploads     *service.UploadService
	views       *service.ViewService
	debugErrors bool
	logger      *slog.Logger
}

// NewImagesHandler создаёт обработчик изображений.
func NewImagesHandler(uploads *service.UploadService, views *service.ViewService, debugErrors bool, logger *slog.Logger) *ImagesHandler {
	return &ImagesHandler{
		uploads:     uploads,
		views:       views,
		debugErrors: debugErrors,
		logger:      logger.With(slog.String("handler", "images")),
	}
}

// uploadRequest — тело запроса POST /api/v1/upload.
type uploadRequest struct {
	ImageData string `json:"imageData"`
	FileName  string `json:"fileName"`
	MimeType  string `json:"mimeType"`
	APIKey    string `json:"apiKey"`
}

// uploadResponse — тело успешного ответа загрузки.
type uploadResponse struct {
	Success    bool    `json:"success"`
	ImageID    string  `json:"imageId"`
	ViewURL    string  `json:"viewUrl"`
	FileSize   int64   `json:"fileSize"`
	FileSizeMB float64 `json:"fileSizeMB"`
	Message    string  `json:"message"`
}

// Upload обрабатывает POST /api/v1/upload.
func (h *ImagesHandler) Upload(w http.ResponseWriter, r *http.Request) {
	var req uploadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.UploadsTotal.WithLabelValues("error").Inc()
		apierrors.ValidationError(w, "Invalid request body")
		return
	}

	res, serr := h.uploads.Upload(r.Context(), service.UploadParams{
		ImageData: req.ImageData,
		FileName:  req.FileName,
		MimeType:  req.MimeType,
		APIKey:    req.APIKey,
	})
	if serr != nil {
		middleware.UploadsTotal.WithLabelValues("error").Inc()
		writeServiceError(w, serr, h.debugErrors)
		return
	}

	middleware.UploadsTotal.WithLabelValues("success").Inc()
	writeJSON(w, http.StatusOK, uploadResponse{
		Success:    true,
		ImageID:    res.ImageID,
		ViewURL:    fmt.Sprintf("%s/view/%s", requestOrigin(r), res.ImageID),
		FileSize:   res.FileSize,
		FileSizeMB: res.FileSizeMB,
		Message:    "Image uploaded successfully",
	})
}

// GetImage обрабатывает GET /api/v1/image/{imageId}: JSON-режим просмотра,
// base64 внутри ответа.
func (h *ImagesHandler) GetImage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "imageId")

	rec, serr := h.views.GetJSON(r.Context(), id)
	if serr != nil {
		writeServiceError(w, serr, h.debugErrors)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"imageData": rec,
	})
}
