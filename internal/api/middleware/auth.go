// auth.go — аутентификация админских панелей.
//
// Исходный сервис проверял секрет только в момент логина и дальше
// доверял клиентскому флагу в браузере. Здесь граница доверия закрыта:
// login выдаёт подписанный токен (HS256 на том же секрете), и каждый
// привилегированный endpoint перепроверяет его на каждом запросе.
// Панель модерации и панель статей — два независимых секрета и две
// независимые аудитории токенов.
package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	apierrors "picstore/internal/api/errors"
)

// Аудитории токенов панелей.
const (
	// AudienceAdmin — модерационная панель.
	AudienceAdmin = "admin"
	// AudienceArticles — панель генерации статей.
	AudienceArticles = "articles"
)

// Время жизни токена панели.
const tokenTTL = 24 * time.Hour

// contextKey — тип для ключей контекста (избегаем коллизий).
type contextKey string

// ContextKeyAudience — аудитория проверенного токена в контексте запроса.
const ContextKeyAudience contextKey = "panel_audience"

// TokenGate — выдача и проверка токенов одной панели.
type TokenGate struct {
	secret   []byte
	audience string
	logger   *slog.Logger
}

// NewTokenGate создаёт гейт панели. secret — разделяемый секрет панели
// (он же ключ подписи токена); пустой секрет означает "панель не
// сконфигурирована" — Issue и middleware отвечают отказом.
func NewTokenGate(secret, audience string, logger *slog.Logger) *TokenGate {
	return &TokenGate{
		secret:   []byte(secret),
		audience: audience,
		logger:   logger.With(slog.String("component", "token_gate"), slog.String("audience", audience)),
	}
}

// Configured сообщает, задан ли секрет панели.
func (g *TokenGate) Configured() bool {
	return len(g.secret) > 0
}

// Issue выдаёт подписанный токен панели на 24 часа.
func (g *TokenGate) Issue() (string, error) {
	if !g.Configured() {
		return "", fmt.Errorf("секрет панели %s не задан", g.audience)
	}

	now := time.Now()
	claims := jwt.RegisteredClaims{
		Audience:  jwt.ClaimStrings{g.audience},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(g.secret)
	if err != nil {
		return "", fmt.Errorf("ошибка подписи токена: %w", err)
	}
	return signed, nil
}

// Middleware проверяет Bearer-токен на каждом запросе: подпись HS256,
// срок действия, аудитория. Отказ — 401.
func (g *TokenGate) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !g.Configured() {
				apierrors.AuthError(w, "Admin key not configured")
				return
			}

			raw := bearerToken(r)
			if raw == "" {
				apierrors.AuthError(w, "Authorization required")
				return
			}

			token, err := jwt.ParseWithClaims(raw, &jwt.RegisteredClaims{},
				func(t *jwt.Token) (any, error) {
					if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
						return nil, fmt.Errorf("неожиданный метод подписи: %v", t.Header["alg"])
					}
					return g.secret, nil
				},
				jwt.WithAudience(g.audience),
				jwt.WithValidMethods([]string{"HS256"}),
			)
			if err != nil || !token.Valid {
				g.logger.Warn("отклонён токен панели",
					slog.String("remote_addr", r.RemoteAddr),
				)
				apierrors.AuthError(w, "Invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeyAudience, g.audience)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// bearerToken извлекает токен из заголовка Authorization.
func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, prefix))
}
