// Пакет errors — конструкторы стандартных JSON-ошибок picstore.
// Единый формат: {"success": false, "error": "..."}.
// Все JSON-ответы с ошибками должны использовать WriteError.
package errors //nolint:revive // конфликт имени со stdlib осознанный

import (
	"encoding/json"
	"net/http"
)

// errorBody — структура тела ответа ошибки.
type errorBody struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	// Details — детали внутренней ошибки. Заполняется только
	// при включённом PICSTORE_DEBUG_ERRORS.
	Details string `json:"details,omitempty"`
}

// WriteError записывает JSON-ответ ошибки в стандартном формате.
func WriteError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(errorBody{Success: false, Error: message})
}

// WriteErrorDetails — как WriteError, но с деталями внутренней ошибки.
// Вызывать только когда включён debug-режим.
func WriteErrorDetails(w http.ResponseWriter, statusCode int, message, details string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(errorBody{Success: false, Error: message, Details: details})
}

// --- Конструкторы для типичных ошибок ---

// ValidationError — 400 некорректные входные данные.
func ValidationError(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusBadRequest, message)
}

// AuthError — 401 отсутствующий или недействительный credential.
func AuthError(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusUnauthorized, message)
}

// NotFound — 404 запись не найдена.
func NotFound(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusNotFound, message)
}

// Timeout — 408 внешний вызов превысил дедлайн.
func Timeout(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusRequestTimeout, message)
}

// Unprocessable — 422 запись существует, но её данные повреждены.
func Unprocessable(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusUnprocessableEntity, message)
}

// InternalError — 500 ошибка внешнего сервиса или внутренняя.
func InternalError(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusInternalServerError, message)
}
