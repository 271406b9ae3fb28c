package imgcodec

import (
	"bytes"
	"image"

	"github.com/disintegration/imaging"
)

// JPEGEncoder — кодек по умолчанию поверх disintegration/imaging.
type JPEGEncoder struct{}

// Decode разбирает байты в растровое изображение (PNG, JPEG, WebP-совместимые
// форматы, которые понимает imaging).
func (JPEGEncoder) Decode(data []byte) (image.Image, error) {
	return imaging.Decode(bytes.NewReader(data))
}

// Resize пропорционально вписывает изображение в квадрат maxDim x maxDim.
// Изображения меньше предела не трогаются.
func (JPEGEncoder) Resize(img image.Image, maxDim int) image.Image {
	bounds := img.Bounds()
	if bounds.Dx() <= maxDim && bounds.Dy() <= maxDim {
		return img
	}
	return imaging.Fit(img, maxDim, maxDim, imaging.Lanczos)
}

// Encode кодирует изображение в JPEG с заданным качеством.
func (JPEGEncoder) Encode(img image.Image, quality int) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Проверка на этапе компиляции
var _ Encoder = JPEGEncoder{}
