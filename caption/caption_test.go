package caption

import (
	"errors"
	"image"
	"image/color"
	"image/draw"
	"os"
	"path/filepath"
	"testing"
	"unicode/utf8"

	"github.com/setanarut/bannergen/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrap(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		width int
		want  []string
	}{
		{"quick fox", "the quick brown fox jumps", 10, []string{"the quick", "brown fox", "jumps"}},
		{"long word whole", "a supercalifragilistic word", 10, []string{"a", "supercalifragilistic", "word"}},
		{"default width", "short", 0, []string{"short"}},
		{"collapses whitespace", "  one \t two  ", 20, []string{"one two"}},
		{"keeps newlines", "one\ntwo three", 20, []string{"one", "two three"}},
		{"counts runes", "ğüş çöı", 7, []string{"ğüş çöı"}},
		{"blank", "   ", 10, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Wrap(tt.text, tt.width))
		})
	}
}

func TestWrapWidthBound(t *testing.T) {
	text := "lorem ipsum dolor sit amet consectetur adipiscing elit sed do eiusmod tempor"
	for _, width := range []int{5, 12, 30, 50} {
		for _, line := range Wrap(text, width) {
			if utf8.RuneCountInString(line) > width {
				assert.NotContains(t, line, " ", "only a single long word may exceed width %d", width)
			}
		}
	}
}

func TestLoadFace(t *testing.T) {
	face, err := LoadFace("", 24)
	require.NoError(t, err)
	assert.NotNil(t, face)

	_, err = LoadFace(filepath.Join(t.TempDir(), "missing.ttf"), 24)
	var ioErr *utils.IOError
	require.True(t, errors.As(err, &ioErr))
	assert.Equal(t, "read font", ioErr.Op)

	bogus := filepath.Join(t.TempDir(), "bogus.ttf")
	require.NoError(t, os.WriteFile(bogus, []byte("not a font"), 0o644))
	_, err = LoadFace(bogus, 24)
	require.True(t, errors.As(err, &ioErr))
	assert.Equal(t, "parse font", ioErr.Op)
}

func canvas(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.RGBA{20, 60, 120, 255}), image.Point{}, draw.Src)
	return img
}

func TestDrawEmptyIsNoop(t *testing.T) {
	img := canvas(100, 50)
	before := append([]uint8(nil), img.Pix...)
	require.NoError(t, Draw(img, "", Options{}))
	require.NoError(t, Draw(img, " \n\t", Options{}))
	assert.Equal(t, before, img.Pix)
}

func TestDrawStaysInBox(t *testing.T) {
	img := canvas(400, 200)
	before := canvas(400, 200)
	box := image.Rect(100, 50, 300, 150)

	require.NoError(t, Draw(img, "Hello banner", Options{Box: box, Align: AlignCenter}))

	clip := box.Union(box.Add(image.Pt(2, 2)))
	changedInside := false
	for y := range 200 {
		for x := range 400 {
			same := img.RGBAAt(x, y) == before.RGBAAt(x, y)
			if !image.Pt(x, y).In(clip) {
				require.True(t, same, "pixel (%d,%d) outside the box changed", x, y)
			} else if !same {
				changedInside = true
			}
		}
	}
	assert.True(t, changedInside)
}

func TestDrawAlignment(t *testing.T) {
	box := image.Rect(0, 0, 600, 100)
	left := canvas(600, 100)
	right := canvas(600, 100)
	require.NoError(t, Draw(left, "hi", Options{Box: box, Align: AlignLeft}))
	require.NoError(t, Draw(right, "hi", Options{Box: box, Align: AlignRight}))

	minX := func(img *image.RGBA) int {
		bg := color.RGBA{20, 60, 120, 255}
		for x := range 600 {
			for y := range 100 {
				if img.RGBAAt(x, y) != bg {
					return x
				}
			}
		}
		return -1
	}
	assert.Less(t, minX(left), 50)
	assert.Greater(t, minX(right), 500)
}

func TestDefaultShadow(t *testing.T) {
	assert.Equal(t, color.NRGBA{A: 155}, DefaultShadow)
}

func TestDrawNoShadow(t *testing.T) {
	white := func() *image.RGBA {
		img := image.NewRGBA(image.Rect(0, 0, 300, 80))
		draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)
		return img
	}
	box := image.Rect(0, 0, 300, 80)

	// White text on white only leaves a mark through its shadow.
	plain := white()
	require.NoError(t, Draw(plain, "Shadowless", Options{Box: box, Color: color.White, NoShadow: true}))
	assert.Equal(t, white().Pix, plain.Pix)

	shadowed := white()
	require.NoError(t, Draw(shadowed, "Shadowless", Options{Box: box, Color: color.White}))
	assert.NotEqual(t, white().Pix, shadowed.Pix)

	// An explicit offset is ignored once the shadow is off.
	offset := white()
	require.NoError(t, Draw(offset, "Shadowless", Options{
		Box:          box,
		Color:        color.White,
		ShadowOffset: image.Pt(4, 4),
		NoShadow:     true,
	}))
	assert.Equal(t, white().Pix, offset.Pix)
}
