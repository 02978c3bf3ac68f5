package palette

import (
	"image"
	"image/color"
	"image/draw"
)

// Swatch renders p as a row of tileSize squares.
func Swatch(p Palette, tileSize int) *image.RGBA {
	if tileSize <= 0 {
		tileSize = 64
	}
	img := image.NewRGBA(image.Rect(0, 0, tileSize*max(1, len(p)), tileSize))
	for i, c := range p {
		tile := image.Rect(i*tileSize, 0, (i+1)*tileSize, tileSize)
		draw.Draw(img, tile, image.NewUniform(color.RGBA{R: c.R, G: c.G, B: c.B, A: 255}), image.Point{}, draw.Src)
	}
	return img
}
