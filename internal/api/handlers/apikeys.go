package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	apierrors "picstore/internal/api/errors"
	"picstore/internal/api/middleware"
	"picstore/internal/service"
)

// KeysHandler — публичная выдача API-ключей.
type KeysHandler struct {
	keys        *service.KeyService
	debugErrors bool
	logger      *slog.Logger
}

// NewKeysHandler создаёт обработчик заявок на API-ключи.
func NewKeysHandler(keys *service.KeyService, debugErrors bool, logger *slog.Logger) *KeysHandler {
	return &KeysHandler{
		keys:        keys,
		debugErrors: debugErrors,
		logger:      logger.With(slog.String("handler", "apikeys")),
	}
}

// applyKeyRequest — тело запроса POST /api/v1/apply-key.
type applyKeyRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Company string `json:"company"`
	Website string `json:"website"`
	UseCase string `json:"useCase"`
}

// Apply обрабатывает POST /api/v1/apply-key: валидация заявки,
// генерация и выдача нового ключа.
func (h *KeysHandler) Apply(w http.ResponseWriter, r *http.Request) {
	var req applyKeyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierrors.ValidationError(w, "Invalid request body")
		return
	}

	key, serr := h.keys.Apply(r.Context(), service.ApplyParams{
		Name:      req.Name,
		Email:     req.Email,
		Company:   req.Company,
		Website:   req.Website,
		UseCase:   req.UseCase,
		UserAgent: r.UserAgent(),
		IP:        clientIP(r),
	})
	if serr != nil {
		writeServiceError(w, serr, h.debugErrors)
		return
	}

	middleware.KeysIssuedTotal.Inc()
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"apiKey":  key,
		"message": "API key generated successfully. Please save it securely - it will not be shown again.",
	})
}
