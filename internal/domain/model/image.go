// Пакет model — доменные модели picstore.
package model

import "time"

// ImageRecord — одно загруженное изображение.
// Хранится в коллекции images; бинарные данные лежат прямо в записи
// в виде base64-текста.
type ImageRecord struct {
	// ID — идентификатор, назначаемый хранилищем при создании.
	ID string `json:"id"`
	// FileName — оригинальное имя файла.
	FileName string `json:"fileName"`
	// MimeType — MIME-тип; при отсутствии подставляется image/jpeg.
	MimeType string `json:"mimeType"`
	// Base64Data — содержимое файла в base64. Пустое значение означает
	// повреждённую запись: отдавать её нельзя.
	Base64Data string `json:"base64Data"`
	// FileSize — приблизительный размер в байтах, вычисленный из длины
	// base64 по формуле round(len*3/4). Не является точным размером.
	FileSize int64 `json:"fileSize"`
	// FileSizeMB — размер в мегабайтах с двумя знаками после запятой.
	FileSizeMB float64 `json:"fileSizeMB"`
	// UploadedAt — серверное время загрузки (назначает хранилище).
	UploadedAt time.Time `json:"uploadedAt"`
	// CreatedAt — клиентская ISO-метка времени. Может расходиться
	// с UploadedAt, оба значения хранятся.
	CreatedAt string `json:"createdAt"`
	// APIKey — ключ, которым была выполнена загрузка. Хранится открыто
	// для аудита.
	APIKey string `json:"apiKey,omitempty"`
}

// Servable сообщает, можно ли отдать запись как изображение.
// Требуются непустые Base64Data и MimeType.
func (r *ImageRecord) Servable() bool {
	return r.Base64Data != "" && r.MimeType != ""
}

// DefaultMimeType — MIME-тип по умолчанию для записей без mimeType.
const DefaultMimeType = "image/jpeg"
