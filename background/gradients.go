package background

import (
	"image"
	"math"
	"math/rand/v2"

	"github.com/fogleman/gg"
	"github.com/setanarut/bannergen/palette"
)

// glow runs a horizontal light-dark-light gradient derived from the primary.
func glow(p palette.RGB, w, h int) *image.RGBA {
	img := newCanvas(w, h)
	light := palette.Scale(p, 2.1)
	dark := palette.Scale(p, 1.2)
	half := float64(w) / 2
	for x := range w {
		fx := float64(x)
		t := min(fx/half, 1-(fx-half)/half)
		fillRect(img, image.Rect(x, 0, x+1, h), opaque(palette.Lerp(light, dark, t)))
	}
	return img
}

// radial blends from the primary at the center to a faint secondary at the
// corners.
func radial(p, s palette.RGB, w, h int) *image.RGBA {
	img := newCanvas(w, h)
	edge := palette.MakeFaint(s, 0.2)
	cx, cy := float64(w)/2, float64(h)/2
	maxDist := math.Hypot(float64(w), float64(h)) / 2
	for y := range h {
		for x := range w {
			d := math.Hypot(float64(x)-cx, float64(y)-cy)
			setPixel(img, x, y, palette.Lerp(p, edge, d/maxDist))
		}
	}
	return img
}

// spotlight brightens a centered disc toward a faint secondary with a
// squared falloff.
func spotlight(p, s palette.RGB, w, h int) *image.RGBA {
	img := gradientCanvas(w, h, p, palette.MakeFaint(p, 0.3))
	spot := palette.MakeFaint(s, 0.7)
	cx, cy := float64(w)/2, float64(h)/2
	radius := float64(min(w, h)) * 0.4
	if radius <= 0 {
		return img
	}
	for y := range h {
		for x := range w {
			d := math.Hypot(float64(x)-cx, float64(y)-cy)
			if d >= radius {
				continue
			}
			intensity := (1 - d/radius) * (1 - d/radius)
			setPixel(img, x, y, palette.Lerp(getPixel(img, x, y), spot, intensity))
		}
	}
	return img
}

// burst fans translucent rays out of every corner.
func burst(p, s palette.RGB, w, h int, rng *rand.Rand) *image.RGBA {
	img := gradientCanvas(w, h, palette.MakeFaint(p, 0.4), palette.MakeFaint(s, 0.6))
	ray := Tint{RGB: s, Alpha: 80}
	maxLen := math.Hypot(float64(w), float64(h)) * 0.7
	pn := newPen(img)

	corners := []gg.Point{{X: 0, Y: 0}, {X: float64(w), Y: 0}, {X: 0, Y: float64(h)}, {X: float64(w), Y: float64(h)}}
	for _, c := range corners {
		n := randInt(rng, 15, 25)
		for i := range n {
			angle := 2 * math.Pi * float64(i) / float64(n)
			length := maxLen * (0.5 + float64(randInt(rng, 0, 100))/100*0.5)
			width := float64(randInt(rng, 1, 3))
			pn.line(c.X, c.Y, c.X+math.Cos(angle)*length, c.Y+math.Sin(angle)*length, width, ray)
		}
	}
	return img
}
