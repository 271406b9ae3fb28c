package service

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"testing"
	"time"

	"picstore/internal/domain/model"
	"picstore/internal/repository"
)

// TestGenerateAPIKey проверяет формат ключа: префикс img_,
// 32 символа из алфавита [A-Za-z0-9].
func TestGenerateAPIKey(t *testing.T) {
	for i := 0; i < 10; i++ {
		key, err := GenerateAPIKey()
		if err != nil {
			t.Fatalf("GenerateAPIKey ошибка: %v", err)
		}

		if !strings.HasPrefix(key, "img_") {
			t.Errorf("ключ %q без префикса img_", key)
		}
		if len(key) != len(keyPrefix)+keyLength {
			t.Errorf("len(%q) = %d, ожидался %d", key, len(key), len(keyPrefix)+keyLength)
		}
		for _, c := range key[len(keyPrefix):] {
			if !strings.ContainsRune(keyAlphabet, c) {
				t.Errorf("ключ %q содержит символ %q вне алфавита", key, c)
			}
		}
	}
}

// TestGenerateAPIKey_Unique проверяет, что подряд сгенерированные
// ключи различаются.
func TestGenerateAPIKey_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		key, err := GenerateAPIKey()
		if err != nil {
			t.Fatalf("GenerateAPIKey ошибка: %v", err)
		}
		if seen[key] {
			t.Fatalf("ключ %q повторился", key)
		}
		seen[key] = true
	}
}

// TestKeyService_Apply проверяет успешную выдачу ключа.
func TestKeyService_Apply(t *testing.T) {
	var created *model.APIKeyRecord
	repo := &mockKeyRepo{
		createFn: func(_ context.Context, rec *model.APIKeyRecord) error {
			rec.ID = "key-1"
			created = rec
			return nil
		},
	}
	svc := NewKeyService(repo, time.Second, slog.Default())

	key, serr := svc.Apply(context.Background(), ApplyParams{
		Name:      "  Ivan Petrov  ",
		Email:     " Ivan@Example.COM ",
		UseCase:   "blog images",
		UserAgent: "curl/8.0",
		IP:        "10.0.0.1",
	})
	if serr != nil {
		t.Fatalf("Apply ошибка: %v", serr)
	}

	if created == nil {
		t.Fatal("Create не был вызван")
	}
	if created.Key != key {
		t.Errorf("сохранённый ключ %q не совпадает с возвращённым %q", created.Key, key)
	}
	if created.Name != "Ivan Petrov" {
		t.Errorf("Name = %q, ожидался без пробелов", created.Name)
	}
	if created.Email != "ivan@example.com" {
		t.Errorf("Email = %q, ожидался в нижнем регистре без пробелов", created.Email)
	}
	if created.UserAgent != "curl/8.0" || created.IP != "10.0.0.1" {
		t.Errorf("метаданные запроса не сохранены: %q / %q", created.UserAgent, created.IP)
	}
}

// TestKeyService_Apply_MissingFields проверяет валидацию
// обязательных полей заявки.
func TestKeyService_Apply_MissingFields(t *testing.T) {
	svc := NewKeyService(&mockKeyRepo{}, time.Second, slog.Default())

	tests := []struct {
		name   string
		params ApplyParams
	}{
		{"без name", ApplyParams{Email: "a@b.com", UseCase: "x"}},
		{"без email", ApplyParams{Name: "A", UseCase: "x"}},
		{"без useCase", ApplyParams{Name: "A", Email: "a@b.com"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, serr := svc.Apply(context.Background(), tt.params)
			if serr == nil {
				t.Fatal("ожидалась ошибка валидации")
			}
			if serr.Status != http.StatusBadRequest {
				t.Errorf("Status = %d, ожидался 400", serr.Status)
			}
			want := "Missing required fields: name, email, and useCase are required"
			if serr.Message != want {
				t.Errorf("Message = %q, ожидался %q", serr.Message, want)
			}
		})
	}
}

// TestKeyService_Apply_InvalidEmail проверяет формат e-mail.
func TestKeyService_Apply_InvalidEmail(t *testing.T) {
	svc := NewKeyService(&mockKeyRepo{}, time.Second, slog.Default())

	invalid := []string{
		"not-an-email",
		"no@dot",
		"sp ace@example.com",
		"@example.com",
		"user@",
	}

	for _, email := range invalid {
		_, serr := svc.Apply(context.Background(), ApplyParams{
			Name:    "A",
			Email:   email,
			UseCase: "x",
		})
		if serr == nil {
			t.Errorf("email %q принят, ожидался отказ", email)
			continue
		}
		if serr.Message != "Invalid email format" {
			t.Errorf("email %q: Message = %q, ожидался \"Invalid email format\"", email, serr.Message)
		}
	}
}

// TestKeyService_Apply_EmailTrimmedBeforeValidation проверяет, что
// формат проверяется по канонической форме: обрамляющие пробелы
// и регистр не делают корректный адрес некорректным.
func TestKeyService_Apply_EmailTrimmedBeforeValidation(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{" user@example.com ", "user@example.com"},
		{"\tUser@Example.COM\n", "user@example.com"},
	}

	for _, tt := range tests {
		var created *model.APIKeyRecord
		repo := &mockKeyRepo{
			createFn: func(_ context.Context, rec *model.APIKeyRecord) error {
				created = rec
				return nil
			},
		}
		svc := NewKeyService(repo, time.Second, slog.Default())

		_, serr := svc.Apply(context.Background(), ApplyParams{
			Name:    "A",
			Email:   tt.raw,
			UseCase: "x",
		})
		if serr != nil {
			t.Errorf("email %q отклонён: %v", tt.raw, serr)
			continue
		}
		if created.Email != tt.want {
			t.Errorf("Email = %q, ожидался %q", created.Email, tt.want)
		}
	}

	// Адрес из одних пробелов — отсутствующее поле, не ошибка формата
	svc := NewKeyService(&mockKeyRepo{}, time.Second, slog.Default())
	_, serr := svc.Apply(context.Background(), ApplyParams{
		Name:    "A",
		Email:   "   ",
		UseCase: "x",
	})
	if serr == nil || serr.Message != "Missing required fields: name, email, and useCase are required" {
		t.Errorf("пробельный email: получено %v", serr)
	}
}

// TestKeyService_SetActive_NotFound проверяет 404 по отсутствующему ключу.
func TestKeyService_SetActive_NotFound(t *testing.T) {
	repo := &mockKeyRepo{
		setActiveFn: func(_ context.Context, _ string, _ bool) error {
			return repository.ErrNotFound
		},
	}
	svc := NewKeyService(repo, time.Second, slog.Default())

	serr := svc.SetActive(context.Background(), "missing", false)
	if serr == nil || serr.Status != http.StatusNotFound {
		t.Fatalf("ожидался 404, получено %v", serr)
	}
}
