// Пакет imgcodec — best-effort сжатие изображения перед загрузкой.
// Чистая функция Compress с ограниченным числом попыток кодирования
// и детерминированной шкалой качества; кодек подставляется через
// интерфейс Encoder, что позволяет тестировать логику без растровой
// библиотеки.
package imgcodec

import (
	"fmt"
	"image"
	"strings"
)

// Константы сжатия по умолчанию.
const (
	// DefaultMaxBytes — целевой верхний предел размера результата.
	DefaultMaxBytes = 2_000_000
	// DefaultMaxDimension — максимум длинной стороны в пикселях.
	DefaultMaxDimension = 1200
	// DefaultStartQuality — стартовое качество JPEG (проценты).
	DefaultStartQuality = 75
	// DefaultMinQuality — нижняя граница качества.
	DefaultMinQuality = 60
	// DefaultQualityStep — шаг снижения качества за попытку.
	DefaultQualityStep = 20
	// DefaultMaxAttempts — предел попыток кодирования.
	DefaultMaxAttempts = 4
)

// Options — параметры сжатия.
type Options struct {
	MaxBytes     int
	MaxDimension int
	StartQuality int
	MinQuality   int
	QualityStep  int
	MaxAttempts  int
}

// DefaultOptions возвращает параметры сжатия по умолчанию.
func DefaultOptions() Options {
	return Options{
		MaxBytes:     DefaultMaxBytes,
		MaxDimension: DefaultMaxDimension,
		StartQuality: DefaultStartQuality,
		MinQuality:   DefaultMinQuality,
		QualityStep:  DefaultQualityStep,
		MaxAttempts:  DefaultMaxAttempts,
	}
}

// Encoder — растровый кодек, подставляемый в Compress.
type Encoder interface {
	// Decode разбирает исходные байты в растровое изображение.
	Decode(data []byte) (image.Image, error)
	// Resize пропорционально уменьшает изображение так, чтобы обе
	// стороны были не больше maxDim.
	Resize(img image.Image, maxDim int) image.Image
	// Encode кодирует изображение в JPEG с качеством quality (1-100).
	Encode(img image.Image, quality int) ([]byte, error)
}

// Report — отчёт о сжатии.
type Report struct {
	// OriginalSize и CompressedSize — размеры до и после, байты.
	OriginalSize   int
	CompressedSize int
	// Ratio — CompressedSize/OriginalSize.
	Ratio float64
	// MimeType — MIME-тип результата.
	MimeType string
	// FileName — имя файла результата (расширение меняется на .jpg
	// при перекодировании).
	FileName string
	// Attempts — сколько попыток кодирования выполнено.
	Attempts int
	// Skipped — сжатие не выполнялось (векторный формат, GIF,
	// нераспознанные данные): возвращён оригинал.
	Skipped bool
}

// skipMimeTypes — форматы, которые простой растровый конвейер
// перекодировать не может без потерь семантики (вектор, анимация).
var skipMimeTypes = map[string]bool{
	"image/svg+xml": true,
	"image/gif":     true,
}

// Compress возвращает сжатые байты и отчёт. Гарантии:
//   - завершение не более чем за opts.MaxAttempts попыток кодирования;
//   - результат никогда не больше оригинала (иначе возвращается оригинал);
//   - SVG и GIF возвращаются байт-в-байт без изменений.
//
// Достижение MaxBytes не гарантируется: если ни одна попытка не уложилась
// в цель, возвращается наименьший полученный результат, и вызывающая
// сторона обязана сама проверить размер перед отправкой.
func Compress(data []byte, fileName, mimeType string, enc Encoder, opts Options) ([]byte, Report, error) {
	report := Report{
		OriginalSize:   len(data),
		CompressedSize: len(data),
		Ratio:          1,
		MimeType:       mimeType,
		FileName:       fileName,
	}

	if skipMimeTypes[strings.ToLower(mimeType)] {
		report.Skipped = true
		return data, report, nil
	}

	img, err := enc.Decode(data)
	if err != nil {
		// Нераспознанный растр — отдаём оригинал, решение о пригодности
		// примет сервер
		report.Skipped = true
		return data, report, nil
	}

	img = enc.Resize(img, opts.MaxDimension)

	// Детерминированная шкала качества: start, затем -step за попытку
	// с нижней границей min. Повтор того же качества не даёт нового
	// результата, поэтому на достижении границы цикл останавливается.
	var best []byte
	quality := opts.StartQuality
	for attempt := 0; attempt < opts.MaxAttempts; attempt++ {
		encoded, err := enc.Encode(img, quality)
		if err != nil {
			return nil, report, fmt.Errorf("ошибка кодирования (качество %d): %w", quality, err)
		}
		report.Attempts++

		if best == nil || len(encoded) < len(best) {
			best = encoded
		}
		if len(best) <= opts.MaxBytes {
			break
		}
		if quality == opts.MinQuality {
			break
		}
		quality -= opts.QualityStep
		if quality < opts.MinQuality {
			quality = opts.MinQuality
		}
	}

	// Перекодирование не должно увеличивать полезную нагрузку
	if len(best) >= len(data) {
		return data, report, nil
	}

	report.CompressedSize = len(best)
	report.Ratio = float64(len(best)) / float64(len(data))
	report.MimeType = "image/jpeg"
	report.FileName = renameToJPEG(fileName)
	return best, report, nil
}

// renameToJPEG меняет расширение имени файла на .jpg.
func renameToJPEG(fileName string) string {
	if idx := strings.LastIndex(fileName, "."); idx > 0 {
		return fileName[:idx] + ".jpg"
	}
	return fileName + ".jpg"
}
