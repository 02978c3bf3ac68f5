package background

import (
	"image"
	"image/color"
	"image/draw"
	"math/rand/v2"

	"github.com/fogleman/gg"
	"github.com/setanarut/bannergen/palette"
)

// MaxAlpha is the fully transparent end of the Tint scale.
const MaxAlpha = 127

// Tint is a color with a transparency on the 0..127 scale: 0 is opaque and
// MaxAlpha is invisible.
type Tint struct {
	palette.RGB
	Alpha uint8
}

// NRGBA converts the transparency into an 8-bit opacity.
func (t Tint) NRGBA() color.NRGBA {
	a := int(min(t.Alpha, MaxAlpha))
	return t.RGB.NRGBA(uint8(255 - a*255/MaxAlpha))
}

func opaque(c palette.RGB) Tint {
	return Tint{RGB: c}
}

func newCanvas(w, h int) *image.RGBA {
	return image.NewRGBA(image.Rect(0, 0, max(1, w), max(1, h)))
}

func solidCanvas(w, h int, c palette.RGB) *image.RGBA {
	img := newCanvas(w, h)
	fillRect(img, img.Bounds(), opaque(c))
	return img
}

// gradientCanvas interpolates from start at the top row to end at the
// bottom row.
func gradientCanvas(w, h int, start, end palette.RGB) *image.RGBA {
	img := newCanvas(w, h)
	b := img.Bounds()
	for y := range b.Dy() {
		c := palette.Lerp(start, end, float64(y)/float64(b.Dy()))
		fillRect(img, image.Rect(0, y, b.Dx(), y+1), opaque(c))
	}
	return img
}

// fillRect composites t over r, clipped to img.
func fillRect(img *image.RGBA, r image.Rectangle, t Tint) {
	op := draw.Over
	if t.Alpha == 0 {
		op = draw.Src
	}
	draw.Draw(img, r.Intersect(img.Bounds()), image.NewUniform(t.NRGBA()), image.Point{}, op)
}

// fillRectInclusive fills the rectangle whose corners are both included,
// the way the integer drawing primitives count them.
func fillRectInclusive(img *image.RGBA, x1, y1, x2, y2 int, t Tint) {
	if x2 < x1 {
		x1, x2 = x2, x1
	}
	if y2 < y1 {
		y1, y2 = y2, y1
	}
	fillRect(img, image.Rect(x1, y1, x2+1, y2+1), t)
}

func getPixel(img *image.RGBA, x, y int) palette.RGB {
	off := img.PixOffset(x, y)
	return palette.RGB{R: img.Pix[off], G: img.Pix[off+1], B: img.Pix[off+2]}
}

func setPixel(img *image.RGBA, x, y int, c palette.RGB) {
	off := img.PixOffset(x, y)
	img.Pix[off] = c.R
	img.Pix[off+1] = c.G
	img.Pix[off+2] = c.B
	img.Pix[off+3] = 255
}

// pen draws vector shapes straight into an RGBA canvas.
type pen struct {
	dc *gg.Context
}

func newPen(img *image.RGBA) pen {
	dc := gg.NewContextForRGBA(img)
	dc.SetLineCap(gg.LineCapButt)
	return pen{dc: dc}
}

func (p pen) line(x1, y1, x2, y2, width float64, t Tint) {
	p.dc.SetColor(t.NRGBA())
	p.dc.SetLineWidth(max(1, width))
	p.dc.DrawLine(x1, y1, x2, y2)
	p.dc.Stroke()
}

func (p pen) polygon(t Tint, pts ...gg.Point) {
	if len(pts) < 3 {
		return
	}
	p.dc.SetColor(t.NRGBA())
	p.dc.MoveTo(pts[0].X, pts[0].Y)
	for _, pt := range pts[1:] {
		p.dc.LineTo(pt.X, pt.Y)
	}
	p.dc.ClosePath()
	p.dc.Fill()
}

func (p pen) circle(cx, cy, r float64, t Tint) {
	p.dc.SetColor(t.NRGBA())
	p.dc.DrawCircle(cx, cy, r)
	p.dc.Fill()
}

// outline strokes the rectangle with corners (x1,y1) and (x2,y2) one pixel
// wide, centered on pixel rows and columns.
func (p pen) outline(x1, y1, x2, y2 float64, t Tint) {
	p.dc.SetColor(t.NRGBA())
	p.dc.SetLineWidth(1)
	p.dc.DrawRectangle(x1+0.5, y1+0.5, x2-x1, y2-y1)
	p.dc.Stroke()
}

// randInt returns a uniform integer in [lo, hi]. An inverted range collapses
// to lo.
func randInt(rng *rand.Rand, lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + rng.IntN(hi-lo+1)
}

// jitter shifts every channel of c by its own random amount in [-d, d].
func jitter(rng *rand.Rand, c palette.RGB, d int) palette.RGB {
	shift := func(v uint8) uint8 {
		return uint8(max(0, min(255, int(v)+randInt(rng, -d, d))))
	}
	return palette.RGB{R: shift(c.R), G: shift(c.G), B: shift(c.B)}
}
