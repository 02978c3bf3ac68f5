// Package background renders procedural banner backgrounds from a color
// pair. Every generator returns a freshly allocated bitmap of exactly the
// requested size.
package background

import (
	"image"
	"math/rand/v2"

	"github.com/setanarut/bannergen/palette"
)

// Style selects a background generator.
type Style int

const (
	StyleWaves Style = iota
	StyleWave1
	StyleGradient
	StyleGlow
	StyleSolid
	StyleAbstract
	StyleGeometric
	StyleGrid
	StyleStripes
	StyleRadial
	StyleSpotlight
	StyleBurst
	StyleMobileDots
	StyleMobileCard
	StyleMobileDiagonal
	StyleMobileFlat
	StyleMedical
	StyleMarketing
)

var styleNames = [...]string{
	StyleWaves:          "waves",
	StyleWave1:          "wave1",
	StyleGradient:       "gradient",
	StyleGlow:           "glow",
	StyleSolid:          "solid",
	StyleAbstract:       "abstract",
	StyleGeometric:      "geometric",
	StyleGrid:           "grid",
	StyleStripes:        "stripes",
	StyleRadial:         "radial",
	StyleSpotlight:      "spotlight",
	StyleBurst:          "burst",
	StyleMobileDots:     "mobile-dots",
	StyleMobileCard:     "mobile-card",
	StyleMobileDiagonal: "mobile-diagonal",
	StyleMobileFlat:     "mobile-flat",
	StyleMedical:        "medical",
	StyleMarketing:      "marketing",
}

func (s Style) String() string {
	if s < 0 || int(s) >= len(styleNames) {
		return styleNames[StyleWaves]
	}
	return styleNames[s]
}

// ParseStyle maps a style name to its Style. Unknown names select
// StyleWaves.
func ParseStyle(name string) Style {
	s, _ := LookupStyle(name)
	return s
}

// LookupStyle is ParseStyle that also reports whether name was known.
func LookupStyle(name string) (Style, bool) {
	for i, n := range styleNames {
		if n == name {
			return Style(i), true
		}
	}
	return StyleWaves, false
}

// Styles lists every style in declaration order.
func Styles() []Style {
	out := make([]Style, len(styleNames))
	for i := range out {
		out[i] = Style(i)
	}
	return out
}

// Randomized reports whether the style consumes the random source.
func (s Style) Randomized() bool {
	switch s {
	case StyleWaves, StyleWave1, StyleAbstract, StyleGeometric, StyleStripes, StyleBurst, StyleMobileDots:
		return true
	}
	return false
}

// NewRand returns a PCG source seeded from seed.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Generate renders style for pair on a w×h canvas. Dimensions below one are
// raised to one. A nil rng draws a random seed.
func Generate(style Style, pair palette.Pair, w, h int, rng *rand.Rand) *image.RGBA {
	w, h = max(1, w), max(1, h)
	if rng == nil {
		rng = NewRand(rand.Uint64())
	}
	p, s := pair.Primary, pair.Secondary

	switch style {
	case StyleWave1:
		return wave1(p, s, w, h, rng)
	case StyleGradient:
		return gradientCanvas(w, h, p, s)
	case StyleGlow:
		return glow(p, w, h)
	case StyleSolid:
		return solidCanvas(w, h, p)
	case StyleAbstract:
		return abstract(p, w, h, rng)
	case StyleGeometric:
		return geometric(p, s, w, h, rng)
	case StyleGrid:
		return grid(p, w, h)
	case StyleStripes:
		return stripes(p, s, w, h, rng)
	case StyleRadial:
		return radial(p, s, w, h)
	case StyleSpotlight:
		return spotlight(p, s, w, h)
	case StyleBurst:
		return burst(p, s, w, h, rng)
	case StyleMobileDots:
		return mobileDots(p, s, w, h, rng)
	case StyleMobileCard:
		return mobileCard(p, w, h)
	case StyleMobileDiagonal:
		return mobileDiagonal(p, s, w, h)
	case StyleMobileFlat:
		return mobileFlat(p, s, w, h)
	case StyleMedical:
		return medical(p, s, w, h)
	case StyleMarketing:
		return marketing(p, s, w, h)
	default:
		return waves(p, s, w, h, rng)
	}
}
