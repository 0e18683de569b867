// Package imaging приводит пользовательские фото к каноничному виду
// перед встраиванием в запрос к нейросети: ограничивает размеры и
// перекодирует в JPEG.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"

	xdraw "golang.org/x/image/draw"
)

const (
	// MaxEdge — максимальная длина большей стороны после нормализации.
	MaxEdge = 1024

	jpegQuality = 85
)

// ErrDecode возвращается, если присланные байты не являются изображением.
var ErrDecode = errors.New("не удалось декодировать изображение")

// Normalize декодирует изображение, при необходимости уменьшает его так,
// чтобы большая сторона не превышала MaxEdge (с сохранением пропорций),
// и перекодирует в JPEG. Уже нормализованные байты проходят без
// изменения размеров.
func Normalize(raw []byte) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w > MaxEdge || h > MaxEdge {
		nw, nh := boundedSize(w, h)
		dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
		xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, xdraw.Over, nil)
		img = dst
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("перекодирование в JPEG: %w", err)
	}
	return buf.Bytes(), nil
}

// boundedSize вычисляет новые размеры так, чтобы большая сторона стала
// равна MaxEdge, а пропорции сохранились.
func boundedSize(w, h int) (int, int) {
	if w >= h {
		nh := h * MaxEdge / w
		if nh < 1 {
			nh = 1
		}
		return MaxEdge, nh
	}
	nw := w * MaxEdge / h
	if nw < 1 {
		nw = 1
	}
	return nw, MaxEdge
}
