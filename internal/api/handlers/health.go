package handlers

import (
	"net/http"

	"picstore/internal/database"
)

// HealthHandler — liveness/readiness probes.
type HealthHandler struct {
	version string
	ready   *database.ReadinessChecker
}

// NewHealthHandler создаёт обработчик health-проверок.
func NewHealthHandler(version string, ready *database.ReadinessChecker) *HealthHandler {
	return &HealthHandler{version: version, ready: ready}
}

// Live обрабатывает GET /health/live: процесс жив.
func (h *HealthHandler) Live(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": h.version,
	})
}

// Ready обрабатывает GET /health/ready: проверка доступности базы.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	status, message := h.ready.CheckReady()
	code := http.StatusOK
	if status != "ok" {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, map[string]string{
		"status":  status,
		"message": message,
		"version": h.version,
	})
}
