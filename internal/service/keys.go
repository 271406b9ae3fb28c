package service

import (
	"context"
	"crypto/rand"
	"errors"
	"log/slog"
	"math/big"
	"regexp"
	"strings"
	"time"

	"picstore/internal/domain/model"
	"picstore/internal/repository"
)

// Формат ключа: фиксированный префикс + 32 символа алфавита [A-Za-z0-9].
const (
	keyPrefix   = "img_"
	keyLength   = 32
	keyAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
)

// emailRe — формат e-mail публичного контракта: непустая локальная часть,
// хост с точкой, без пробелов.
var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// GenerateAPIKey возвращает новый ключ img_ + 32 случайных символа.
// Источник случайности криптографический: строка — bearer credential.
// Уникальность не проверяется (~190 бит энтропии).
func GenerateAPIKey() (string, error) {
	var sb strings.Builder
	sb.WriteString(keyPrefix)
	max := big.NewInt(int64(len(keyAlphabet)))
	for i := 0; i < keyLength; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		sb.WriteByte(keyAlphabet[n.Int64()])
	}
	return sb.String(), nil
}

// ApplyParams — заявка на выдачу API-ключа.
type ApplyParams struct {
	Name    string
	Email   string
	Company string
	Website string
	UseCase string
	// Метаданные HTTP-запроса
	UserAgent string
	IP        string
}

// KeyService — выдача и управление API-ключами.
type KeyService struct {
	repo         repository.APIKeyRepository
	queryTimeout time.Duration
	logger       *slog.Logger
}

// NewKeyService создаёт сервис API-ключей.
func NewKeyService(repo repository.APIKeyRepository, queryTimeout time.Duration, logger *slog.Logger) *KeyService {
	return &KeyService{
		repo:         repo,
		queryTimeout: queryTimeout,
		logger:       logger.With(slog.String("component", "key_service")),
	}
}

// Apply валидирует заявку, генерирует ключ и сохраняет запись.
// active записывается явно (true).
func (s *KeyService) Apply(ctx context.Context, p ApplyParams) (string, *Error) {
	// Сначала каноническая форма, потом валидация: " User@X.com "
	// проходит как user@x.com.
	email := strings.ToLower(strings.TrimSpace(p.Email))
	if p.Name == "" || email == "" || p.UseCase == "" {
		return "", validationErr("Missing required fields: name, email, and useCase are required")
	}
	if !emailRe.MatchString(email) {
		return "", validationErr("Invalid email format")
	}

	key, err := GenerateAPIKey()
	if err != nil {
		return "", internalErr("Failed to process API key application. Please try again.", err)
	}

	rec := &model.APIKeyRecord{
		Key:       key,
		Name:      strings.TrimSpace(p.Name),
		Email:     email,
		Company:   strings.TrimSpace(p.Company),
		Website:   strings.TrimSpace(p.Website),
		UseCase:   strings.TrimSpace(p.UseCase),
		UserAgent: p.UserAgent,
		IP:        p.IP,
	}

	cctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	if err := s.repo.Create(cctx, rec); err != nil {
		return "", storeErr(err, "Failed to process API key application. Please try again.")
	}

	// В лог — только начало ключа
	s.logger.Info("API-ключ выдан",
		slog.String("id", rec.ID),
		slog.String("email", rec.Email),
		slog.String("key_prefix", key[:8]+"..."),
	)

	return key, nil
}

// SetActive переключает активность ключа (модерация).
func (s *KeyService) SetActive(ctx context.Context, id string, active bool) *Error {
	cctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	if err := s.repo.SetActive(cctx, id, active); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFoundErr("API key not found")
		}
		return storeErr(err, "Failed to update API key")
	}

	s.logger.Info("Статус API-ключа изменён",
		slog.String("id", id),
		slog.Bool("active", active),
	)
	return nil
}
