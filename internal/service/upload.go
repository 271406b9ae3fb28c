package service

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"time"

	"picstore/internal/domain/model"
	"picstore/internal/repository"
)

// UploadParams — запрос на загрузку изображения.
type UploadParams struct {
	// ImageData — содержимое файла в base64 (обязательное)
	ImageData string
	// FileName — имя файла (обязательное)
	FileName string
	// MimeType — MIME-тип; при отсутствии подставляется image/jpeg
	MimeType string
	// APIKey — ключ загрузки (обязательный)
	APIKey string
}

// UploadResult — результат успешной загрузки.
type UploadResult struct {
	ImageID    string
	FileSize   int64
	FileSizeMB float64
}

// UploadService — конвейер загрузки: валидация, проверка ключа,
// расчёт размеров, сохранение записи.
type UploadService struct {
	images       repository.ImageRepository
	keys         repository.APIKeyRepository
	queryTimeout time.Duration
	logger       *slog.Logger
}

// NewUploadService создаёт сервис загрузки.
func NewUploadService(
	images repository.ImageRepository,
	keys repository.APIKeyRepository,
	queryTimeout time.Duration,
	logger *slog.Logger,
) *UploadService {
	return &UploadService{
		images:       images,
		keys:         keys,
		queryTimeout: queryTimeout,
		logger:       logger.With(slog.String("component", "upload_service")),
	}
}

// ApproxFileSize вычисляет приблизительный размер файла в байтах
// из длины base64-строки: round(len*3/4). Для корректного base64
// (длина кратна 4) совпадает с ceil(len*3/4).
func ApproxFileSize(base64Len int) int64 {
	return int64(math.Round(float64(base64Len) * 3 / 4))
}

// Upload выполняет конвейер загрузки. На любом отказе запись
// не создаётся; на успехе создаётся ровно одна.
func (s *UploadService) Upload(ctx context.Context, p UploadParams) (*UploadResult, *Error) {
	// 1. Обязательные поля
	if p.ImageData == "" || p.FileName == "" || p.APIKey == "" {
		return nil, validationErr("Missing required fields: imageData, fileName, or apiKey")
	}

	// 2. Проверка API-ключа: точное совпадение строки.
	// Неактивным считается только ключ с явным active=false.
	kctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	keyRec, err := s.keys.GetByKey(kctx, p.APIKey)
	cancel()
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, authErr("Invalid or inactive API key")
		}
		return nil, storeErr(err, "Failed to validate API key")
	}
	if !keyRec.IsActive() {
		return nil, authErr("Invalid or inactive API key")
	}

	// 3. Размеры: приблизительный байтовый и мегабайтный (2 знака)
	fileSize := ApproxFileSize(len(p.ImageData))
	fileSizeMB := math.Round(float64(fileSize)/(1024*1024)*100) / 100

	mimeType := p.MimeType
	if mimeType == "" {
		mimeType = model.DefaultMimeType
	}

	// 4. Запись: серверную метку времени назначит хранилище,
	// клиентская ISO-метка фиксируется здесь. Они могут расходиться.
	rec := &model.ImageRecord{
		FileName:   p.FileName,
		MimeType:   mimeType,
		Base64Data: p.ImageData,
		FileSize:   fileSize,
		FileSizeMB: fileSizeMB,
		CreatedAt:  time.Now().UTC().Format(time.RFC3339),
		APIKey:     p.APIKey,
	}

	ictx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()
	if err := s.images.Create(ictx, rec); err != nil {
		return nil, storeErr(err, "Failed to save image")
	}

	// Счётчик использования ключа — best effort: отказ не
	// отменяет уже выполненную загрузку.
	uctx, ucancel := context.WithTimeout(ctx, s.queryTimeout)
	if uerr := s.keys.RecordUsage(uctx, keyRec.ID); uerr != nil {
		s.logger.Warn("не удалось обновить счётчик использования ключа",
			slog.String("key_id", keyRec.ID),
			slog.String("error", uerr.Error()),
		)
	}
	ucancel()

	s.logger.Info("Изображение загружено",
		slog.String("image_id", rec.ID),
		slog.String("file_name", rec.FileName),
		slog.Int64("file_size", fileSize),
	)

	return &UploadResult{
		ImageID:    rec.ID,
		FileSize:   fileSize,
		FileSizeMB: fileSizeMB,
	}, nil
}
