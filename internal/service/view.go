package service

import (
	"context"
	"encoding/base64"
	"errors"
	"log/slog"
	"time"

	"picstore/internal/domain/model"
	"picstore/internal/repository"
)

// BinaryImage — изображение, декодированное для отдачи байтами.
type BinaryImage struct {
	Data     []byte
	FileName string
	MimeType string
}

// ViewService — получение изображений: JSON-режим (base64 внутри
// ответа) и бинарный режим (декодированные байты с заголовками).
type ViewService struct {
	repo         repository.ImageRepository
	cache        *ImageCache
	queryTimeout time.Duration
	logger       *slog.Logger
}

// NewViewService создаёт сервис отдачи изображений.
// cache может быть nil — тогда каждый запрос идёт в хранилище.
func NewViewService(repo repository.ImageRepository, cache *ImageCache, queryTimeout time.Duration, logger *slog.Logger) *ViewService {
	return &ViewService{
		repo:         repo,
		cache:        cache,
		queryTimeout: queryTimeout,
		logger:       logger.With(slog.String("component", "view_service")),
	}
}

// GetJSON возвращает запись для JSON-режима. Подставляет значения
// по умолчанию для имени файла и MIME-типа; пустой base64 —
// повреждённая запись (500).
func (s *ViewService) GetJSON(ctx context.Context, id string) (*model.ImageRecord, *Error) {
	rec, serr := s.fetch(ctx, id)
	if serr != nil {
		return nil, serr
	}

	if rec.FileName == "" {
		rec.FileName = "unknown.jpg"
	}
	if rec.MimeType == "" {
		rec.MimeType = model.DefaultMimeType
	}
	if rec.Base64Data == "" {
		return nil, internalErr("Image data is missing or corrupted", nil)
	}
	return rec, nil
}

// GetBinary возвращает декодированные байты изображения.
// Запись без base64 или MIME-типа, либо с некорректным base64 —
// 422 (запись есть, но отдать её нельзя).
func (s *ViewService) GetBinary(ctx context.Context, id string) (*BinaryImage, *Error) {
	rec, serr := s.fetch(ctx, id)
	if serr != nil {
		return nil, serr
	}

	if !rec.Servable() {
		return nil, unprocessableErr("Invalid image data")
	}

	data, err := base64.StdEncoding.DecodeString(rec.Base64Data)
	if err != nil {
		return nil, unprocessableErr("Invalid image data")
	}

	fileName := rec.FileName
	if fileName == "" {
		fileName = rec.ID + ".png"
	}

	return &BinaryImage{
		Data:     data,
		FileName: fileName,
		MimeType: rec.MimeType,
	}, nil
}

// FileName возвращает имя файла записи для редиректа
// /view/{id} → /view/{id}/{fileName}. Без имени — {id}.png.
func (s *ViewService) FileName(ctx context.Context, id string) (string, *Error) {
	rec, serr := s.fetch(ctx, id)
	if serr != nil {
		return "", serr
	}
	if rec.FileName == "" {
		return rec.ID + ".png", nil
	}
	return rec.FileName, nil
}

func (s *ViewService) fetch(ctx context.Context, id string) (*model.ImageRecord, *Error) {
	if id == "" {
		return nil, validationErr("Valid Image ID is required")
	}

	// Кэш хранит общие указатели, вызывающие стороны подставляют
	// значения по умолчанию прямо в запись — наружу уходит копия.
	if s.cache != nil {
		if cached, ok := s.cache.Get(id); ok {
			cp := *cached
			return &cp, nil
		}
	}

	cctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	rec, err := s.repo.GetByID(cctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFoundErr("Image not found")
		}
		return nil, storeErr(err, "Failed to retrieve image")
	}

	if s.cache != nil {
		cp := *rec
		s.cache.Set(id, &cp)
	}
	return rec, nil
}
