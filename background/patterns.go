package background

import (
	"image"
	"math/rand/v2"

	"github.com/fogleman/gg"
	"github.com/setanarut/bannergen/palette"
)

var abstractBase = palette.RGB{R: 204, G: 230, B: 255}

// abstract lays a 6×3 grid of rectangles, diagonals and triangles over a
// tinted light blue base.
func abstract(p palette.RGB, w, h int, rng *rand.Rand) *image.RGBA {
	img := solidCanvas(w, h, abstractBase)
	fillRect(img, img.Bounds(), Tint{RGB: p, Alpha: 90})

	shape := Tint{RGB: jitter(rng, p, 30), Alpha: 120}
	pn := newPen(img)

	const cols, rows = 6, 3
	sw, sh := float64(w)/cols, float64(h)/rows
	for r := range rows {
		for c := range cols {
			x, y := float64(c)*sw, float64(r)*sh
			if (r+c)%2 == 0 {
				fillRectInclusive(img, int(x), int(y), int(x+sw), int(y+sh), shape)
			} else {
				pn.line(x, y, x+sw, y+sh, 1, shape)
			}
			if (r+c)%3 == 0 {
				pn.polygon(shape,
					gg.Point{X: x, Y: y},
					gg.Point{X: x + sw, Y: y},
					gg.Point{X: x + sw/2, Y: y + sh/2},
				)
			}
		}
	}
	for i := range 3 {
		y := float64((i + 1) * h / 4)
		pn.line(0, y+0.5, float64(w), y+0.5, 1, shape)
	}
	return img
}

// geometric scatters random rectangles and lines over a faint primary.
func geometric(p, s palette.RGB, w, h int, rng *rand.Rand) *image.RGBA {
	img := solidCanvas(w, h, palette.MakeFaint(p, 0.6))
	t := Tint{RGB: jitter(rng, s, 20), Alpha: 80}
	pn := newPen(img)

	n := randInt(rng, 15, 30)
	for range n {
		x1, y1 := randInt(rng, 0, w), randInt(rng, 0, h)
		if randInt(rng, 0, 1) == 0 {
			x2 := x1 + randInt(rng, 20, w/4)
			y2 := y1 + randInt(rng, 10, h/3)
			fillRectInclusive(img, x1, y1, x2, y2, t)
			continue
		}
		width := float64(randInt(rng, 1, 3))
		x2, y2 := randInt(rng, 0, w), randInt(rng, 0, h)
		pn.line(float64(x1), float64(y1), float64(x2), float64(y2), width, t)
	}
	return img
}

// grid draws one-pixel lines every 20 rows and every 40 columns.
func grid(p palette.RGB, w, h int) *image.RGBA {
	img := solidCanvas(w, h, palette.MakeFaint(p, 0.7))
	t := Tint{RGB: palette.Offset(p, -30), Alpha: 70}
	for y := 0; y < h; y += 20 {
		fillRect(img, image.Rect(0, y, w, y+1), t)
	}
	for x := 0; x < w; x += 40 {
		fillRect(img, image.Rect(x, 0, x+1, h), t)
	}
	return img
}

// stripes alternates light and dark diagonal bands of the secondary.
func stripes(p, s palette.RGB, w, h int, rng *rand.Rand) *image.RGBA {
	img := solidCanvas(w, h, p)
	light := Tint{RGB: palette.Offset(s, 20), Alpha: 90}
	dark := Tint{RGB: palette.Offset(s, -20), Alpha: 100}
	pn := newPen(img)

	sw := randInt(rng, 20, 50)
	fh, fsw := float64(h), float64(sw)
	for x := -h; x < w; x += 2 * sw {
		fx := float64(x)
		pn.line(fx, 0, fx+fh, fh, fsw, light)
		pn.line(fx+fsw, 0, fx+fsw+fh, fh, fsw, dark)
	}
	return img
}

// medical pairs thin diagonals with a large translucent circle in the top
// right corner.
func medical(p, s palette.RGB, w, h int) *image.RGBA {
	img := gradientCanvas(w, h, palette.MakeFaint(p, 0.7), s)
	pn := newPen(img)

	line := Tint{RGB: p, Alpha: 80}
	fh := float64(h)
	for i := -h; i < w; i += 50 {
		fi := float64(i)
		pn.line(fi, 0, fi+fh, fh, 1, line)
	}

	r := float64(h / 3)
	if r > 0 {
		pn.circle(float64(w)-r, r, r, Tint{RGB: s, Alpha: 90})
	}
	return img
}

// marketing splits the canvas into slanted primary and secondary panels
// with a white hourglass where they meet.
func marketing(p, s palette.RGB, w, h int) *image.RGBA {
	img := solidCanvas(w, h, palette.White)
	pn := newPen(img)

	fw, fh := float64(w), float64(h)
	a, b := fw*0.35, fw*0.45
	pn.polygon(opaque(p),
		gg.Point{X: 0, Y: 0}, gg.Point{X: b, Y: 0},
		gg.Point{X: a, Y: fh}, gg.Point{X: 0, Y: fh},
	)
	pn.polygon(opaque(s),
		gg.Point{X: a, Y: 0}, gg.Point{X: fw, Y: 0},
		gg.Point{X: fw, Y: fh}, gg.Point{X: b, Y: fh},
	)
	pn.polygon(opaque(palette.White),
		gg.Point{X: a, Y: 0}, gg.Point{X: b, Y: 0},
		gg.Point{X: a, Y: fh}, gg.Point{X: b, Y: fh},
	)
	return img
}
