// Пакет config — загрузка и валидация конфигурации picstore
// из переменных окружения.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Версия приложения, задаётся при сборке через -ldflags.
var Version = "dev"

// Config содержит все параметры конфигурации picstore.
type Config struct {
	// Порт HTTP-сервера
	Port int

	// Параметры подключения к PostgreSQL
	DBHost     string
	DBPort     int
	DBName     string
	DBUser     string
	DBPassword string
	DBSSLMode  string

	// Секрет модерационной панели (admin dashboard)
	AdminKey string
	// Секрет панели генерации статей. Независим от AdminKey.
	ArticlesKey string

	// Ключ API языковой модели (Gemini)
	GenAIAPIKey string
	// Имя модели
	GenAIModel string

	// Директория для сохранения сгенерированных статей
	ArticlesDir string

	// Таймаут одного запроса к хранилищу
	QueryTimeout time.Duration

	// Параметры LRU-кэша записей для /view
	CacheSize int
	CacheTTL  time.Duration
	// Таймаут graceful shutdown HTTP-сервера
	ShutdownTimeout time.Duration

	// Уровень логирования (debug, info, warn, error)
	LogLevel slog.Level
	// Формат логов (json, text)
	LogFormat string

	// Включать детали внутренних ошибок в ответы API.
	// Только для отладки, по умолчанию выключено.
	DebugErrors bool
}

// DatabaseDSN собирает DSN подключения к PostgreSQL.
func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode)
}

// Load загружает конфигурацию из переменных окружения, валидирует
// обязательные поля и возвращает Config или ошибку.
func Load() (*Config, error) {
	cfg := &Config{}
	var err error

	// PICSTORE_PORT — порт HTTP-сервера (по умолчанию 8080)
	cfg.Port, err = getEnvInt("PICSTORE_PORT", 8080)
	if err != nil {
		return nil, fmt.Errorf("PICSTORE_PORT: %w", err)
	}
	if cfg.Port < 1 || cfg.Port > 65535 {
		return nil, fmt.Errorf("PICSTORE_PORT: значение %d вне допустимого диапазона 1-65535", cfg.Port)
	}

	// PICSTORE_DB_HOST — обязательный
	cfg.DBHost, err = getEnvRequired("PICSTORE_DB_HOST")
	if err != nil {
		return nil, err
	}

	// PICSTORE_DB_PORT — порт PostgreSQL (по умолчанию 5432)
	cfg.DBPort, err = getEnvInt("PICSTORE_DB_PORT", 5432)
	if err != nil {
		return nil, fmt.Errorf("PICSTORE_DB_PORT: %w", err)
	}

	// PICSTORE_DB_NAME — обязательный
	cfg.DBName, err = getEnvRequired("PICSTORE_DB_NAME")
	if err != nil {
		return nil, err
	}

	// PICSTORE_DB_USER — обязательный
	cfg.DBUser, err = getEnvRequired("PICSTORE_DB_USER")
	if err != nil {
		return nil, err
	}

	// PICSTORE_DB_PASSWORD — обязательный
	cfg.DBPassword, err = getEnvRequired("PICSTORE_DB_PASSWORD")
	if err != nil {
		return nil, err
	}

	// PICSTORE_DB_SSLMODE — режим SSL (по умолчанию disable)
	cfg.DBSSLMode = getEnvDefault("PICSTORE_DB_SSLMODE", "disable")

	// PICSTORE_ADMIN_KEY — секрет модерационной панели.
	// Необязательный: при отсутствии login отвечает 500 "not configured".
	cfg.AdminKey = getEnvDefault("PICSTORE_ADMIN_KEY", "")

	// PICSTORE_ARTICLES_KEY — секрет панели статей (независимый)
	cfg.ArticlesKey = getEnvDefault("PICSTORE_ARTICLES_KEY", "")

	// PICSTORE_GENAI_API_KEY — ключ Gemini API.
	// Необязательный: без него endpoints статей отвечают 500.
	cfg.GenAIAPIKey = getEnvDefault("PICSTORE_GENAI_API_KEY", "")

	// PICSTORE_GENAI_MODEL — имя модели (по умолчанию gemini-2.5-flash)
	cfg.GenAIModel = getEnvDefault("PICSTORE_GENAI_MODEL", "gemini-2.5-flash")

	// PICSTORE_ARTICLES_DIR — директория сохранения статей
	cfg.ArticlesDir = getEnvDefault("PICSTORE_ARTICLES_DIR", "generated-articles")

	// PICSTORE_QUERY_TIMEOUT — таймаут запроса к хранилищу (по умолчанию 10s)
	cfg.QueryTimeout, err = getEnvDuration("PICSTORE_QUERY_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, fmt.Errorf("PICSTORE_QUERY_TIMEOUT: %w", err)
	}
	if cfg.QueryTimeout <= 0 {
		return nil, fmt.Errorf("PICSTORE_QUERY_TIMEOUT: значение должно быть положительным")
	}

	// PICSTORE_CACHE_SIZE — размер LRU-кэша записей (по умолчанию 256, 0 отключает кэш)
	cfg.CacheSize, err = getEnvInt("PICSTORE_CACHE_SIZE", 256)
	if err != nil {
		return nil, fmt.Errorf("PICSTORE_CACHE_SIZE: %w", err)
	}
	if cfg.CacheSize < 0 {
		return nil, fmt.Errorf("PICSTORE_CACHE_SIZE: значение не может быть отрицательным")
	}

	// PICSTORE_CACHE_TTL — время жизни записи в кэше (по умолчанию 5m)
	cfg.CacheTTL, err = getEnvDuration("PICSTORE_CACHE_TTL", 5*time.Minute)
	if err != nil {
		return nil, fmt.Errorf("PICSTORE_CACHE_TTL: %w", err)
	}

	// PICSTORE_SHUTDOWN_TIMEOUT — таймаут graceful shutdown (по умолчанию 30s)
	cfg.ShutdownTimeout, err = getEnvDuration("PICSTORE_SHUTDOWN_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, fmt.Errorf("PICSTORE_SHUTDOWN_TIMEOUT: %w", err)
	}

	// PICSTORE_LOG_LEVEL — уровень логирования (по умолчанию info)
	cfg.LogLevel, err = parseLogLevel(getEnvDefault("PICSTORE_LOG_LEVEL", "info"))
	if err != nil {
		return nil, fmt.Errorf("PICSTORE_LOG_LEVEL: %w", err)
	}

	// PICSTORE_LOG_FORMAT — формат логов (по умолчанию json)
	cfg.LogFormat = getEnvDefault("PICSTORE_LOG_FORMAT", "json")
	if cfg.LogFormat != "json" && cfg.LogFormat != "text" {
		return nil, fmt.Errorf("PICSTORE_LOG_FORMAT: недопустимое значение %q, допустимые: json, text", cfg.LogFormat)
	}

	// PICSTORE_DEBUG_ERRORS — детали внутренних ошибок в ответах (по умолчанию false)
	cfg.DebugErrors, err = getEnvBool("PICSTORE_DEBUG_ERRORS", false)
	if err != nil {
		return nil, fmt.Errorf("PICSTORE_DEBUG_ERRORS: %w", err)
	}

	return cfg, nil
}

// SetupLogger настраивает глобальный slog-логгер на основе конфигурации.
func SetupLogger(cfg *Config) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}

	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// --- Вспомогательные функции ---

// getEnvRequired возвращает значение переменной окружения или ошибку, если она не задана.
func getEnvRequired(key string) (string, error) {
	val := os.Getenv(key)
	if val == "" {
		return "", fmt.Errorf("%s: обязательная переменная окружения не задана", key)
	}
	return val, nil
}

// getEnvDefault возвращает значение переменной окружения или значение по умолчанию.
func getEnvDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

// getEnvInt возвращает целочисленное значение переменной окружения или значение по умолчанию.
func getEnvInt(key string, defaultVal int) (int, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("некорректное целое число: %q", val)
	}
	return n, nil
}

// getEnvBool возвращает булево значение переменной окружения или значение по умолчанию.
func getEnvBool(key string, defaultVal bool) (bool, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return false, fmt.Errorf("некорректное булево значение: %q", val)
	}
	return b, nil
}

// getEnvDuration возвращает time.Duration из переменной окружения или значение по умолчанию.
func getEnvDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, fmt.Errorf("некорректная длительность: %q (используйте формат Go: 10s, 1m)", val)
	}
	return d, nil
}

// parseLogLevel преобразует строку уровня логирования в slog.Level.
func parseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("недопустимый уровень %q, допустимые: debug, info, warn, error", level)
	}
}
