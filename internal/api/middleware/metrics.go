// metrics.go — Prometheus HTTP метрики picstore.
// Регистрирует метрики: picstore_http_requests_total,
// picstore_http_request_duration_seconds. Бизнес-метрики обновляются
// из handlers/сервисного слоя.
package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP метрики
var (
	// httpRequestsTotal — общее количество HTTP-запросов.
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "picstore_http_requests_total",
			Help: "Общее количество HTTP-запросов к picstore",
		},
		[]string{"method", "path", "status"},
	)

	// httpRequestDuration — гистограмма длительности HTTP-запросов.
	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "picstore_http_request_duration_seconds",
			Help:    "Длительность HTTP-запросов к picstore в секундах",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
)

// Бизнес-метрики (экспортируются для обновления из handlers)
var (
	// UploadsTotal — количество загрузок изображений по результату.
	UploadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "picstore_uploads_total",
			Help: "Количество загрузок изображений",
		},
		[]string{"result"},
	)

	// DeletesTotal — количество удалений изображений модерацией.
	DeletesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "picstore_deletes_total",
			Help: "Количество удалений изображений",
		},
	)

	// KeysIssuedTotal — количество выданных API-ключей.
	KeysIssuedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "picstore_api_keys_issued_total",
			Help: "Количество выданных API-ключей",
		},
	)

	// ArticleGenerationsTotal — количество генераций статей по результату.
	ArticleGenerationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "picstore_article_generations_total",
			Help: "Количество генераций статей",
		},
		[]string{"result"},
	)
)

// MetricsMiddleware возвращает HTTP middleware для сбора Prometheus метрик.
// Записывает количество запросов и длительность для каждого endpoint.
func MetricsMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// Нормализуем путь для лейблов метрик
			// (заменяем идентификаторы на {id} для предотвращения кардинальности)
			normalizedPath := normalizePath(r.URL.Path)

			wrapped := newMetricsResponseWriter(w)
			next.ServeHTTP(wrapped, r)

			duration := time.Since(start).Seconds()
			status := strconv.Itoa(wrapped.statusCode)

			httpRequestsTotal.WithLabelValues(r.Method, normalizedPath, status).Inc()
			httpRequestDuration.WithLabelValues(r.Method, normalizedPath).Observe(duration)
		})
	}
}

// metricsResponseWriter — обёртка для перехвата статус-кода.
type metricsResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func newMetricsResponseWriter(w http.ResponseWriter) *metricsResponseWriter {
	return &metricsResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}
}

func (rw *metricsResponseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Unwrap позволяет http.ResponseController получить доступ к оригинальному ResponseWriter.
func (rw *metricsResponseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

// normalizePath заменяет переменные сегменты пути на {id}/{filename},
// чтобы лейблы метрик не росли неограниченно.
func normalizePath(path string) string {
	switch {
	case strings.HasPrefix(path, "/view/"):
		rest := strings.TrimPrefix(path, "/view/")
		if strings.Contains(rest, "/") {
			return "/view/{id}/{filename}"
		}
		return "/view/{id}"
	case strings.HasPrefix(path, "/api/v1/image/"):
		return "/api/v1/image/{id}"
	case strings.HasPrefix(path, "/api/v1/admin/images/"):
		return "/api/v1/admin/images/{id}"
	case strings.HasPrefix(path, "/api/v1/admin/keys/"):
		return "/api/v1/admin/keys/{id}"
	}
	return path
}
