package render

import (
	"image"
	"image/color"
	"strings"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Высота строки basicfont.Face7x13 с интервалом
const labelLineHeight = 15

// DrawLabel выводит многострочный текст на полупрозрачной подложке.
// (x, y) задаёт левый верхний угол подложки.
func DrawLabel(dst draw.Image, text string, x, y int) {
	lines := strings.Split(text, "\n")
	face := basicfont.Face7x13

	width := 0
	for _, line := range lines {
		if w := font.MeasureString(face, line).Ceil(); w > width {
			width = w
		}
	}
	const pad = 4
	bg := image.Rect(x, y, x+width+2*pad, y+len(lines)*labelLineHeight+2*pad)
	draw.Draw(dst, bg, image.NewUniform(color.RGBA{0, 0, 0, 0xa0}), image.Point{}, draw.Over)

	d := &font.Drawer{
		Dst:  dst,
		Src:  image.White,
		Face: face,
	}
	for i, line := range lines {
		d.Dot = fixed.P(x+pad, y+pad+i*labelLineHeight+face.Ascent)
		d.DrawString(line)
	}
}
