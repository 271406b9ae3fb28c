package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"picstore/internal/domain/model"
)

// APIKeyRepository — доступ к коллекции api_keys.
type APIKeyRepository interface {
	// Create сохраняет новый ключ. ID и CreatedAt назначает хранилище.
	// Коллизии ключей не проверяются: 32 случайных символа из алфавита
	// в 62 знака дают ~190 бит энтропии.
	Create(ctx context.Context, rec *model.APIKeyRecord) error
	// GetByKey ищет запись по точному совпадению строки ключа.
	GetByKey(ctx context.Context, key string) (*model.APIKeyRecord, error)
	// SetActive переключает признак активности ключа.
	SetActive(ctx context.Context, id string, active bool) error
	// RecordUsage инкрементирует счётчик загрузок и обновляет
	// время последнего использования.
	RecordUsage(ctx context.Context, id string) error
}

type apiKeyRepo struct {
	db DBTX
}

// NewAPIKeyRepository создаёт репозиторий API-ключей.
func NewAPIKeyRepository(db DBTX) APIKeyRepository {
	return &apiKeyRepo{db: db}
}

func (r *apiKeyRepo) Create(ctx context.Context, rec *model.APIKeyRecord) error {
	query := `
		INSERT INTO api_keys (key, active, name, email, company, website, use_case,
			total_uploads, user_agent, ip)
		VALUES ($1, TRUE, $2, $3, NULLIF($4, ''), NULLIF($5, ''), $6, 0, NULLIF($7, ''), NULLIF($8, ''))
		RETURNING id, created_at`

	var id uuid.UUID
	err := r.db.QueryRow(ctx, query,
		rec.Key, rec.Name, rec.Email, rec.Company, rec.Website, rec.UseCase,
		rec.UserAgent, rec.IP,
	).Scan(&id, &rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("ошибка сохранения API-ключа: %w", err)
	}
	rec.ID = id.String()
	active := true
	rec.Active = &active
	return nil
}

func (r *apiKeyRepo) GetByKey(ctx context.Context, key string) (*model.APIKeyRecord, error) {
	query := `
		SELECT id, key, active, name, email,
			coalesce(company, ''), coalesce(website, ''), use_case,
			created_at, total_uploads, last_used_at,
			coalesce(user_agent, ''), coalesce(ip, '')
		FROM api_keys
		WHERE key = $1`

	rec := &model.APIKeyRecord{}
	var id uuid.UUID
	var active bool
	err := r.db.QueryRow(ctx, query, key).Scan(
		&id, &rec.Key, &active, &rec.Name, &rec.Email,
		&rec.Company, &rec.Website, &rec.UseCase,
		&rec.CreatedAt, &rec.TotalUploads, &rec.LastUsedAt,
		&rec.UserAgent, &rec.IP,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка поиска API-ключа: %w", err)
	}
	rec.ID = id.String()
	rec.Active = &active
	return rec, nil
}

func (r *apiKeyRepo) SetActive(ctx context.Context, id string, active bool) error {
	uid, err := uuid.Parse(id)
	if err != nil {
		return ErrNotFound
	}

	tag, err := r.db.Exec(ctx, `UPDATE api_keys SET active = $1 WHERE id = $2`, active, uid)
	if err != nil {
		return fmt.Errorf("ошибка обновления статуса ключа: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *apiKeyRepo) RecordUsage(ctx context.Context, id string) error {
	uid, err := uuid.Parse(id)
	if err != nil {
		return ErrNotFound
	}

	query := `
		UPDATE api_keys
		SET total_uploads = total_uploads + 1, last_used_at = now()
		WHERE id = $1`
	if _, err := r.db.Exec(ctx, query, uid); err != nil {
		return fmt.Errorf("ошибка обновления счётчика использования: %w", err)
	}
	return nil
}
