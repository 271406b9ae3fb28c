// Пакет handlers — HTTP-обработчики picstore.
// Общие помощники: JSON-ответы, отображение ошибок сервисного слоя,
// определение origin запроса.
package handlers

import (
	"encoding/json"
	"net/http"

	apierrors "picstore/internal/api/errors"
	"picstore/internal/service"
)

// writeJSON записывает JSON-ответ с указанным статус-кодом.
func writeJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

// writeServiceError отображает ошибку сервисного слоя в JSON-ответ.
// Детали внутренней причины попадают в ответ только в debug-режиме.
func writeServiceError(w http.ResponseWriter, serr *service.Error, debug bool) {
	if debug && serr.Err != nil {
		apierrors.WriteErrorDetails(w, serr.Status, serr.Message, serr.Err.Error())
		return
	}
	apierrors.WriteError(w, serr.Status, serr.Message)
}

// requestOrigin восстанавливает origin запроса (схема + хост) с учётом
// заголовков reverse proxy.
func requestOrigin(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}
	return scheme + "://" + r.Host
}

// clientIP возвращает адрес клиента с учётом заголовков reverse proxy.
func clientIP(r *http.Request) string {
	if ip := r.Header.Get("X-Forwarded-For"); ip != "" {
		return ip
	}
	if ip := r.Header.Get("X-Real-Ip"); ip != "" {
		return ip
	}
	return r.RemoteAddr
}
