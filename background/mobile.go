package background

import (
	"image"
	"math"
	"math/rand/v2"

	"github.com/setanarut/bannergen/palette"
)

// Mobile styles target small vertical canvases.

func mobileDots(p, s palette.RGB, w, h int, rng *rand.Rand) *image.RGBA {
	img := solidCanvas(w, h, palette.MakeFaint(p, 0.8))
	dot := Tint{RGB: s, Alpha: 40}
	pn := newPen(img)

	const spacing, size = 30, 6
	for y := spacing; y < h; y += spacing {
		for x := spacing; x < w; x += spacing {
			ox, oy := randInt(rng, -3, 3), randInt(rng, -3, 3)
			pn.circle(float64(x+ox), float64(y+oy), size/2, dot)
		}
	}
	return img
}

var cardBase = palette.RGB{R: 245, G: 245, B: 245}

func mobileCard(p palette.RGB, w, h int) *image.RGBA {
	img := solidCanvas(w, h, cardBase)
	pn := newPen(img)

	const margin = 5
	x2, y2 := margin+w-2*margin, margin+h-2*margin
	fillRectInclusive(img, margin, margin, x2, y2, opaque(palette.MakeFaint(p, 0.5)))

	shadow := Tint{RGB: palette.Black, Alpha: 110}
	for i := 1; i <= 5; i++ {
		pn.outline(float64(margin+i), float64(margin+i), float64(x2+i), float64(y2+i), shadow)
	}

	fillRectInclusive(img, margin, margin, w-margin, margin+15, opaque(p))
	return img
}

func mobileDiagonal(p, s palette.RGB, w, h int) *image.RGBA {
	img := gradientCanvas(w, h, palette.MakeFaint(p, 0.5), palette.MakeFaint(s, 0.5))
	pn := newPen(img)

	spacing := max(1, int(math.Ceil(float64(min(w, h))/20)))
	width := math.Ceil(float64(spacing) / 3)
	t := Tint{RGB: palette.Offset(s, -20), Alpha: 100}
	fh := float64(h)
	for i := -h; i < w+h; i += spacing * 3 {
		fi := float64(i)
		pn.line(fi, 0, fi+fh, fh, width, t)
	}
	return img
}

func mobileFlat(p, s palette.RGB, w, h int) *image.RGBA {
	img := solidCanvas(w, h, p)
	const bars = 5
	barH := h / 15
	for i := range bars {
		c := palette.Lerp(p, s, float64(i)/(bars-1))
		y := i * (h / 6)
		fillRectInclusive(img, 0, y, w, y+barH, Tint{RGB: c, Alpha: 70})
	}
	return img
}
