package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// protectedHandler — заглушка защищённого endpoint.
func protectedHandler(called *bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*called = true
		w.WriteHeader(http.StatusOK)
	})
}

// TestTokenGate_IssueAndValidate проверяет полный цикл:
// выдача токена и проход через middleware.
func TestTokenGate_IssueAndValidate(t *testing.T) {
	gate := NewTokenGate("secret123", AudienceAdmin, slog.Default())

	token, err := gate.Issue()
	if err != nil {
		t.Fatalf("Issue ошибка: %v", err)
	}
	if token == "" {
		t.Fatal("токен пустой")
	}

	called := false
	handler := gate.Middleware()(protectedHandler(&called))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/images", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("Code = %d, ожидался 200", rec.Code)
	}
	if !called {
		t.Error("защищённый handler не был вызван")
	}
}

// TestTokenGate_MissingToken проверяет отказ без заголовка Authorization.
func TestTokenGate_MissingToken(t *testing.T) {
	gate := NewTokenGate("secret123", AudienceAdmin, slog.Default())

	called := false
	handler := gate.Middleware()(protectedHandler(&called))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/images", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Code = %d, ожидался 401", rec.Code)
	}
	if called {
		t.Error("защищённый handler был вызван")
	}

	var body struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("разбор ответа: %v", err)
	}
	if body.Success {
		t.Error("success = true в ответе об ошибке")
	}
	if body.Error != "Authorization required" {
		t.Errorf("error = %q, ожидался \"Authorization required\"", body.Error)
	}
}

// TestTokenGate_WrongAudience проверяет, что токен одной панели
// не открывает другую.
func TestTokenGate_WrongAudience(t *testing.T) {
	// Обе панели на одном секрете — изоляцию обеспечивает аудитория
	adminGate := NewTokenGate("shared", AudienceAdmin, slog.Default())
	articlesGate := NewTokenGate("shared", AudienceArticles, slog.Default())

	token, err := adminGate.Issue()
	if err != nil {
		t.Fatalf("Issue ошибка: %v", err)
	}

	called := false
	handler := articlesGate.Middleware()(protectedHandler(&called))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/topics", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Code = %d, ожидался 401", rec.Code)
	}
	if called {
		t.Error("токен чужой аудитории был принят")
	}
}

// TestTokenGate_WrongSecret проверяет отказ по токену,
// подписанному другим секретом.
func TestTokenGate_WrongSecret(t *testing.T) {
	other := NewTokenGate("other-secret", AudienceAdmin, slog.Default())
	gate := NewTokenGate("secret123", AudienceAdmin, slog.Default())

	token, err := other.Issue()
	if err != nil {
		t.Fatalf("Issue ошибка: %v", err)
	}

	called := false
	handler := gate.Middleware()(protectedHandler(&called))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized || called {
		t.Errorf("Code = %d, called = %v, ожидался отказ", rec.Code, called)
	}
}

// TestTokenGate_ExpiredToken проверяет отказ по просроченному токену.
func TestTokenGate_ExpiredToken(t *testing.T) {
	gate := NewTokenGate("secret123", AudienceAdmin, slog.Default())

	// Токен с истёкшим сроком, подписанный тем же секретом
	claims := jwt.RegisteredClaims{
		Audience:  jwt.ClaimStrings{AudienceAdmin},
		IssuedAt:  jwt.NewNumericDate(time.Now().Add(-48 * time.Hour)),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-24 * time.Hour)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret123"))
	if err != nil {
		t.Fatalf("подпись токена: %v", err)
	}

	called := false
	handler := gate.Middleware()(protectedHandler(&called))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized || called {
		t.Errorf("Code = %d, called = %v, ожидался отказ", rec.Code, called)
	}
}

// TestTokenGate_NotConfigured проверяет поведение без секрета.
func TestTokenGate_NotConfigured(t *testing.T) {
	gate := NewTokenGate("", AudienceAdmin, slog.Default())

	if gate.Configured() {
		t.Error("Configured() = true для пустого секрета")
	}
	if _, err := gate.Issue(); err == nil {
		t.Error("Issue без секрета должен возвращать ошибку")
	}

	called := false
	handler := gate.Middleware()(protectedHandler(&called))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized || called {
		t.Errorf("Code = %d, called = %v, ожидался отказ", rec.Code, called)
	}
}

// TestNormalizePath проверяет нормализацию путей для лейблов метрик.
func TestNormalizePath(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"/view/abc123", "/view/{id}"},
		{"/view/abc123/photo.png", "/view/{id}/{filename}"},
		{"/api/v1/image/abc123", "/api/v1/image/{id}"},
		{"/api/v1/admin/images/abc123", "/api/v1/admin/images/{id}"},
		{"/api/v1/admin/keys/k1", "/api/v1/admin/keys/{id}"},
		{"/api/v1/upload", "/api/v1/upload"},
		{"/metrics", "/metrics"},
	}

	for _, tt := range tests {
		if got := normalizePath(tt.in); got != tt.want {
			t.Errorf("normalizePath(%q) = %q, ожидался %q", tt.in, got, tt.want)
		}
	}
}
