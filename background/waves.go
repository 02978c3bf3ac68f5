package background

import (
	"image"
	"math"
	"math/rand/v2"

	"github.com/setanarut/bannergen/palette"
)

const waveCount = 5

// waves is the default style: a vertical gradient with translucent sine
// bands laid over it.
func waves(p, s palette.RGB, w, h int, rng *rand.Rand) *image.RGBA {
	img := gradientCanvas(w, h, p, s)
	mid := palette.RGB{
		R: uint8((int(p.R) + int(s.R)) / 2),
		G: uint8((int(p.G) + int(s.G)) / 2),
		B: uint8((int(p.B) + int(s.B)) / 2),
	}

	for range waveCount {
		t := Tint{RGB: jitter(rng, mid, 25), Alpha: uint8(randInt(rng, 70, 100))}
		amplitude := float64(randInt(rng, h/12, h/5))
		frequency := float64(randInt(rng, 1, 4))
		phase := float64(randInt(rng, 0, w))
		yOffset := float64(randInt(rng, h/5, 4*h/5))
		thickness := float64(randInt(rng, 1, 4))

		for x := range w {
			y := math.Sin((float64(x)+phase)*frequency/float64(w)*2*math.Pi)*amplitude + yOffset
			y1 := max(0, int(y-thickness/2))
			y2 := min(h-1, int(y+thickness/2))
			if y1 < y2 {
				fillRect(img, image.Rect(x, y1, x+1, y2+1), t)
			}
		}
	}
	return img
}

// wave1 fills everything under a single fixed sine wave.
func wave1(p, s palette.RGB, w, h int, rng *rand.Rand) *image.RGBA {
	img := solidCanvas(w, h, palette.MakeFaint(p, 0.3))
	fg := opaque(palette.MakeFaint(s, 0.3))

	const (
		amplitude = 40.0
		frequency = 1.0
		phase     = 100.0
	)
	offset := float64(randInt(rng, 30, h/2))
	for x := range w {
		y := int(math.Sin((float64(x)+phase)*frequency/float64(w)*2*math.Pi)*amplitude + offset)
		fillRect(img, image.Rect(x, max(0, y), x+1, h), fg)
	}
	return img
}
