package service

import (
	"context"
	"log/slog"
	"time"

	"picstore/internal/domain/model"
	"picstore/internal/repository"
)

// PageResult — страница списка изображений для модерационной панели.
type PageResult struct {
	Images      []*model.ImageRecord
	TotalImages int
	TotalPages  int
	CurrentPage int
	HasNextPage bool
	HasPrevPage bool
}

// PageService — постраничный обход коллекции изображений.
//
// Хранилище умеет только "первые N" и "N после якоря", поэтому для
// страницы page > 1 сначала выполняется префиксная выборка
// (page-1)*limit записей: её последняя запись становится якорем
// настоящего запроса страницы. Стоимость обхода квадратична по номеру
// страницы — это известное ограничение курсорного примитива хранилища,
// а не оптимизация.
type PageService struct {
	repo         repository.ImageRepository
	queryTimeout time.Duration
	logger       *slog.Logger
}

// NewPageService создаёт сервис постраничного обхода.
func NewPageService(repo repository.ImageRepository, queryTimeout time.Duration, logger *slog.Logger) *PageService {
	return &PageService{
		repo:         repo,
		queryTimeout: queryTimeout,
		logger:       logger.With(slog.String("component", "page_service")),
	}
}

// ListPage возвращает записи с рангами [(page-1)*limit, page*limit)
// в порядке убывания времени загрузки, плюс счётчики.
// Страница за пределами данных — детерминированно пустая.
// Каждый запрос к хранилищу ограничен собственным дедлайном;
// истечение дедлайна наверх отдаётся как 408.
func (s *PageService) ListPage(ctx context.Context, page, limit int) (*PageResult, *Error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 100
	}

	// Общее количество — независимо от запроса страницы
	total, err := s.count(ctx)
	if err != nil {
		return nil, err
	}

	totalPages := (total + limit - 1) / limit

	items, err := s.walk(ctx, page, limit)
	if err != nil {
		return nil, err
	}

	return &PageResult{
		Images:      items,
		TotalImages: total,
		TotalPages:  totalPages,
		CurrentPage: page,
		HasNextPage: page < totalPages,
		HasPrevPage: page > 1,
	}, nil
}

func (s *PageService) count(ctx context.Context) (int, *Error) {
	cctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	total, err := s.repo.Count(cctx)
	if err != nil {
		return 0, storeErr(err, "Failed to fetch images")
	}
	return total, nil
}

// walk находит записи запрошенной страницы через курсор хранилища.
func (s *PageService) walk(ctx context.Context, page, limit int) ([]*model.ImageRecord, *Error) {
	// Первая страница — без якоря
	if page == 1 {
		fctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
		defer cancel()

		items, err := s.repo.ListFirst(fctx, limit)
		if err != nil {
			return nil, storeErr(err, "Failed to fetch images")
		}
		return items, nil
	}

	// Префиксная выборка до конца предыдущей страницы
	prefixLen := (page - 1) * limit

	pctx, pcancel := context.WithTimeout(ctx, s.queryTimeout)
	prefix, err := s.repo.ListFirst(pctx, prefixLen)
	pcancel()
	if err != nil {
		return nil, storeErr(err, "Failed to fetch images")
	}

	// Страница за пределами данных — пустой результат
	if len(prefix) < prefixLen {
		return nil, nil
	}

	last := prefix[len(prefix)-1]
	anchor := repository.Cursor{UploadedAt: last.UploadedAt, ID: last.ID}

	actx, acancel := context.WithTimeout(ctx, s.queryTimeout)
	defer acancel()

	items, err := s.repo.ListAfter(actx, anchor, limit)
	if err != nil {
		return nil, storeErr(err, "Failed to fetch images")
	}
	return items, nil
}
