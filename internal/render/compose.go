package render

import (
	"image"
	"math"

	"golang.org/x/image/draw"
)

// Blit одно изображение, которое нужно вывести на экран
type Blit struct {
	ScreenX, ScreenY float64
	Image            image.Image
	Scale            float64
}

// Bounds возвращает прямоугольник на экране.
// Края округляются независимо, чтобы соседние чанки стыковались без щелей.
func (b Blit) Bounds() image.Rectangle {
	size := b.Image.Bounds().Size()
	x0 := math.Round(b.ScreenX)
	y0 := math.Round(b.ScreenY)
	x1 := math.Round(b.ScreenX + float64(size.X)*b.Scale)
	y1 := math.Round(b.ScreenY + float64(size.Y)*b.Scale)
	return image.Rect(int(x0), int(y0), int(x1), int(y1))
}

// Compose программно выводит список изображений на dst.
// Используется без окна (снимки, тесты); интерактивный просмотрщик рисует через ebiten.
func Compose(dst draw.Image, blits []Blit, scaler draw.Scaler) {
	if scaler == nil {
		scaler = draw.NearestNeighbor
	}
	for _, b := range blits {
		dr := b.Bounds()
		if !dr.Overlaps(dst.Bounds()) {
			continue
		}
		scaler.Scale(dst, dr, b.Image, b.Image.Bounds(), draw.Over, nil)
	}
}
