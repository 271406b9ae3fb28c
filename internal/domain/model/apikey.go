package model

import "time"

// APIKeyRecord — выданный API-ключ с данными заявителя.
type APIKeyRecord struct {
	// ID — идентификатор записи, назначаемый хранилищем.
	ID string `json:"id"`
	// Key — сам ключ: фиксированный префикс + 32 случайных символа.
	Key string `json:"key"`
	// Active — признак активности. При создании всегда записывается
	// явно (true). Исторические записи могут не иметь поля — отсутствие
	// трактуется как active.
	Active *bool `json:"active,omitempty"`

	// Данные заявителя.
	Name    string `json:"name"`
	Email   string `json:"email"`
	Company string `json:"company,omitempty"`
	Website string `json:"website,omitempty"`
	UseCase string `json:"useCase"`

	// CreatedAt — время создания (назначает хранилище).
	CreatedAt time.Time `json:"createdAt"`

	// Счётчики использования.
	TotalUploads int64      `json:"totalUploads"`
	LastUsedAt   *time.Time `json:"lastUsedAt,omitempty"`

	// Метаданные запроса на выдачу.
	UserAgent string `json:"userAgent,omitempty"`
	IP        string `json:"ip,omitempty"`
}

// IsActive — ключ считается активным, если поле Active не равно
// явному false. Отсутствие поля означает активность.
func (k *APIKeyRecord) IsActive() bool {
	return k.Active == nil || *k.Active
}
