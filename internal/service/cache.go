package service

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"picstore/internal/domain/model"
)

// Prometheus-метрики кэша.
var (
	cacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "picstore_cache_hits_total",
		Help: "Общее количество попаданий в LRU-кэш записей изображений.",
	})
	cacheMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "picstore_cache_misses_total",
		Help: "Общее количество промахов LRU-кэша записей изображений.",
	})
)

// ImageCache — LRU-кэш записей изображений с автоматическим TTL.
// Обёртка над hashicorp/golang-lru/v2/expirable. Кэш per-instance:
// при нескольких репликах инвалидация после удаления доезжает
// до остальных по истечении TTL.
type ImageCache struct {
	cache *expirable.LRU[string, *model.ImageRecord]
}

// NewImageCache создаёт LRU-кэш с указанным максимальным размером и TTL.
func NewImageCache(maxSize int, ttl time.Duration) *ImageCache {
	cache := expirable.NewLRU[string, *model.ImageRecord](maxSize, nil, ttl)
	return &ImageCache{cache: cache}
}

// Get возвращает запись из кэша по id.
// Возвращает (запись, true) при hit или (nil, false) при miss.
func (c *ImageCache) Get(id string) (*model.ImageRecord, bool) {
	val, ok := c.cache.Get(id)
	if ok {
		cacheHitsTotal.Inc()
		return val, true
	}
	cacheMissesTotal.Inc()
	return nil, false
}

// Set добавляет или обновляет запись в кэше.
func (c *ImageCache) Set(id string, record *model.ImageRecord) {
	c.cache.Add(id, record)
}

// Delete удаляет запись из кэша (инвалидация при удалении изображения).
func (c *ImageCache) Delete(id string) {
	c.cache.Remove(id)
}
