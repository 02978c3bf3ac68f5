// Package palette extracts representative colors from photographs and picks
// the primary/secondary pair that drives banner backgrounds.
package palette

import (
	"fmt"
	"image/color"

	"github.com/lucasb-eyer/go-colorful"
)

// RGB is an opaque 8-bit color.
type RGB struct {
	R, G, B uint8
}

// Gray is the neutral fallback color.
var Gray = RGB{128, 128, 128}

// White and Black are the saturation bounds of MakeFaint and friends.
var (
	White = RGB{255, 255, 255}
	Black = RGB{0, 0, 0}
)

func (c RGB) RGBA() (r, g, b, a uint32) {
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: 255}.RGBA()
}

// Sum is the plain channel sum used as a brightness measure.
func (c RGB) Sum() int {
	return int(c.R) + int(c.G) + int(c.B)
}

func (c RGB) String() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// NRGBA returns c with the given 8-bit opacity.
func (c RGB) NRGBA(a uint8) color.NRGBA {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: a}
}

// Colorful converts to go-colorful's float representation.
func (c RGB) Colorful() colorful.Color {
	return colorful.Color{
		R: float64(c.R) / 255.0,
		G: float64(c.G) / 255.0,
		B: float64(c.B) / 255.0,
	}
}

// FromColor drops alpha from any color.Color.
func FromColor(c color.Color) RGB {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return RGB{n.R, n.G, n.B}
}

// FromColorful converts back from go-colorful, clamping out-of-gamut values.
func FromColorful(c colorful.Color) RGB {
	return RGB{
		R: Channel(c.R * 255),
		G: Channel(c.G * 255),
		B: Channel(c.B * 255),
	}
}

// Channel clamps v into [0,255].
func Channel(v float64) uint8 {
	return uint8(max(0, min(255, v)))
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Distance is the Manhattan distance between two colors.
func Distance(a, b RGB) int {
	return absInt(int(a.R)-int(b.R)) + absInt(int(a.G)-int(b.G)) + absInt(int(a.B)-int(b.B))
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// MakeFaint blends c toward white. f is clamped to [0,1]; 0 returns c and 1
// returns white.
func MakeFaint(c RGB, f float64) RGB {
	f = max(0, min(1, f))
	faint := func(v uint8) uint8 {
		return Channel(float64(v) + (255-float64(v))*f)
	}
	return RGB{faint(c.R), faint(c.G), faint(c.B)}
}

// Offset shifts every channel by d, clamped.
func Offset(c RGB, d int) RGB {
	return RGB{
		R: uint8(clampInt(int(c.R)+d, 0, 255)),
		G: uint8(clampInt(int(c.G)+d, 0, 255)),
		B: uint8(clampInt(int(c.B)+d, 0, 255)),
	}
}

// Scale multiplies every channel by f, clamped.
func Scale(c RGB, f float64) RGB {
	return RGB{
		R: Channel(float64(c.R) * f),
		G: Channel(float64(c.G) * f),
		B: Channel(float64(c.B) * f),
	}
}

// Lerp interpolates linearly from a (t=0) to b (t=1), truncating like the
// integer drawing primitives do.
func Lerp(a, b RGB, t float64) RGB {
	lerp := func(x, y uint8) uint8 {
		return Channel(float64(x) + (float64(y)-float64(x))*t)
	}
	return RGB{lerp(a.R, b.R), lerp(a.G, b.G), lerp(a.B, b.B)}
}

// Luminance is the relative luminance of c in [0,1].
func Luminance(c RGB) float64 {
	r, g, b := c.Colorful().LinearRgb()
	return 0.2126*r + 0.7152*g + 0.0722*b
}
