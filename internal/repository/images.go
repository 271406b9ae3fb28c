package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"picstore/internal/domain/model"
)

// Cursor — якорь keyset-пагинации: позиция последней записи
// предыдущей страницы в порядке (uploaded_at DESC, id DESC).
type Cursor struct {
	UploadedAt time.Time
	ID         string
}

// ImageRepository — доступ к коллекции images.
// Выборки только курсорные: первые N либо N строго после якоря.
type ImageRepository interface {
	// Create сохраняет запись. ID и UploadedAt назначает хранилище,
	// значения записываются обратно в rec.
	Create(ctx context.Context, rec *model.ImageRecord) error
	// GetByID возвращает запись по ID или ErrNotFound.
	GetByID(ctx context.Context, id string) (*model.ImageRecord, error)
	// Delete удаляет запись, если она существует. Повторное удаление
	// того же ID — no-op без ошибки.
	Delete(ctx context.Context, id string) error
	// Count возвращает общее количество записей.
	Count(ctx context.Context) (int, error)
	// ListFirst возвращает первые limit записей в порядке убывания
	// времени загрузки.
	ListFirst(ctx context.Context, limit int) ([]*model.ImageRecord, error)
	// ListAfter возвращает limit записей строго после якоря
	// в том же порядке.
	ListAfter(ctx context.Context, after Cursor, limit int) ([]*model.ImageRecord, error)
}

// imageRepo — реализация ImageRepository поверх PostgreSQL.
type imageRepo struct {
	db DBTX
}

// NewImageRepository создаёт репозиторий изображений.
func NewImageRepository(db DBTX) ImageRepository {
	return &imageRepo{db: db}
}

const imageColumns = `id, file_name, mime_type, base64_data, file_size, file_size_mb, uploaded_at, created_at, api_key`

func (r *imageRepo) Create(ctx context.Context, rec *model.ImageRecord) error {
	query := `
		INSERT INTO images (file_name, mime_type, base64_data, file_size, file_size_mb, created_at, api_key)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, uploaded_at`

	var id uuid.UUID
	err := r.db.QueryRow(ctx, query,
		rec.FileName, rec.MimeType, rec.Base64Data, rec.FileSize, rec.FileSizeMB,
		rec.CreatedAt, rec.APIKey,
	).Scan(&id, &rec.UploadedAt)
	if err != nil {
		return fmt.Errorf("ошибка сохранения изображения: %w", err)
	}
	rec.ID = id.String()
	return nil
}

func (r *imageRepo) GetByID(ctx context.Context, id string) (*model.ImageRecord, error) {
	// Некорректный UUID означает "такой записи нет", а не ошибку хранилища
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrNotFound
	}

	query := `SELECT ` + imageColumns + ` FROM images WHERE id = $1`

	rec, err := scanImage(r.db.QueryRow(ctx, query, uid))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения изображения: %w", err)
	}
	return rec, nil
}

func (r *imageRepo) Delete(ctx context.Context, id string) error {
	uid, err := uuid.Parse(id)
	if err != nil {
		// Удаление несуществующего ID — no-op
		return nil
	}

	if _, err := r.db.Exec(ctx, `DELETE FROM images WHERE id = $1`, uid); err != nil {
		return fmt.Errorf("ошибка удаления изображения: %w", err)
	}
	return nil
}

func (r *imageRepo) Count(ctx context.Context) (int, error) {
	var total int
	if err := r.db.QueryRow(ctx, `SELECT count(*) FROM images`).Scan(&total); err != nil {
		return 0, fmt.Errorf("ошибка подсчёта изображений: %w", err)
	}
	return total, nil
}

func (r *imageRepo) ListFirst(ctx context.Context, limit int) ([]*model.ImageRecord, error) {
	query := `
		SELECT ` + imageColumns + `
		FROM images
		ORDER BY uploaded_at DESC, id DESC
		LIMIT $1`

	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("ошибка выборки изображений: %w", err)
	}
	defer rows.Close()

	return collectImages(rows)
}

func (r *imageRepo) ListAfter(ctx context.Context, after Cursor, limit int) ([]*model.ImageRecord, error) {
	anchorID, err := uuid.Parse(after.ID)
	if err != nil {
		return nil, fmt.Errorf("некорректный якорь пагинации: %w", err)
	}

	// "Строго после якоря" в порядке (uploaded_at DESC, id DESC)
	query := `
		SELECT ` + imageColumns + `
		FROM images
		WHERE (uploaded_at, id) < ($1, $2)
		ORDER BY uploaded_at DESC, id DESC
		LIMIT $3`

	rows, err := r.db.Query(ctx, query, after.UploadedAt, anchorID, limit)
	if err != nil {
		return nil, fmt.Errorf("ошибка выборки изображений: %w", err)
	}
	defer rows.Close()

	return collectImages(rows)
}

// scanImage читает одну запись изображения.
func scanImage(row pgx.Row) (*model.ImageRecord, error) {
	rec := &model.ImageRecord{}
	var id uuid.UUID
	err := row.Scan(
		&id, &rec.FileName, &rec.MimeType, &rec.Base64Data,
		&rec.FileSize, &rec.FileSizeMB, &rec.UploadedAt, &rec.CreatedAt, &rec.APIKey,
	)
	if err != nil {
		return nil, err
	}
	rec.ID = id.String()
	return rec, nil
}

// collectImages читает все строки результата.
func collectImages(rows pgx.Rows) ([]*model.ImageRecord, error) {
	var items []*model.ImageRecord
	for rows.Next() {
		rec, err := scanImage(rows)
		if err != nil {
			return nil, fmt.Errorf("ошибка чтения строки: %w", err)
		}
		items = append(items, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка обхода результата: %w", err)
	}
	return items, nil
}
