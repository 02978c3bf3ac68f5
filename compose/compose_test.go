package compose

import (
	"errors"
	"image"
	"image/color"
	"image/draw"
	"path/filepath"
	"testing"

	"github.com/setanarut/bannergen/background"
	"github.com/setanarut/bannergen/caption"
	"github.com/setanarut/bannergen/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFixture(t *testing.T, name string, w, h int, c color.RGBA) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, utils.SaveImage(img, path))
	return path
}

func TestLoadAndResize(t *testing.T) {
	for _, name := range []string{"src.png", "src.jpg"} {
		t.Run(name, func(t *testing.T) {
			path := writeFixture(t, name, 100, 50, color.RGBA{200, 10, 10, 255})
			img, err := LoadAndResize(path, 40, 40)
			require.NoError(t, err)
			assert.Equal(t, image.Rect(0, 0, 40, 40), img.Bounds())
		})
	}
}

func TestLoadAndResizeErrors(t *testing.T) {
	_, err := LoadAndResize(filepath.Join(t.TempDir(), "missing.jpg"), 40, 40)
	var de *utils.DecodeError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, "open", de.Op)

	// PNG bytes under a .webp name go to the WebP decoder and fail.
	wrong := filepath.Join(t.TempDir(), "wrong.webp")
	data, err := utils.EncodeBytes(image.NewRGBA(image.Rect(0, 0, 4, 4)), utils.FormatPNG)
	require.NoError(t, err)
	require.NoError(t, utils.DiskSink{}.Put(wrong, data))
	_, err = LoadAndResize(wrong, 10, 10)
	require.True(t, errors.As(err, &de))
	assert.Equal(t, "decode", de.Op)
}

func TestPlace(t *testing.T) {
	dst := image.NewRGBA(image.Rect(0, 0, 100, 60))
	red := image.NewRGBA(image.Rect(0, 0, 30, 30))
	draw.Draw(red, red.Bounds(), image.NewUniform(color.RGBA{255, 0, 0, 255}), image.Point{}, draw.Src)

	Place(dst, red, image.Rect(10, 10, 50, 30))
	assert.Equal(t, color.RGBA{255, 0, 0, 255}, dst.RGBAAt(30, 20))
	assert.Equal(t, color.RGBA{}, dst.RGBAAt(5, 5))
	assert.Equal(t, color.RGBA{}, dst.RGBAAt(60, 20))

	t.Run("clips", func(t *testing.T) {
		Place(dst, red, image.Rect(80, 40, 130, 90))
		assert.Equal(t, color.RGBA{255, 0, 0, 255}, dst.RGBAAt(99, 59))
	})
	t.Run("same size copies", func(t *testing.T) {
		Place(dst, red, image.Rect(60, 0, 90, 30))
		assert.Equal(t, color.RGBA{255, 0, 0, 255}, dst.RGBAAt(60, 0))
		assert.Equal(t, color.RGBA{255, 0, 0, 255}, dst.RGBAAt(89, 29))
	})
	t.Run("empty rect", func(t *testing.T) {
		before := append([]uint8(nil), dst.Pix...)
		Place(dst, red, image.Rectangle{})
		assert.Equal(t, before, dst.Pix)
	})
}

func TestLayoutFor(t *testing.T) {
	h := LayoutFor(ShapeHorizontal)
	assert.Equal(t, image.Pt(1200, 200), h.Canvas)
	assert.Equal(t, []image.Rectangle{image.Rect(10, 10, 170, 190), image.Rect(1030, 10, 1190, 190)}, h.Slots)
	assert.Equal(t, image.Rect(350, 0, 900, 200), h.TextBox)
	assert.Equal(t, caption.AlignLeft, h.Align)
	assert.Equal(t, background.StyleWave1, h.DefaultStyle)

	assert.Equal(t, background.StyleStripes, LayoutFor(ShapeVertical).DefaultStyle)
	assert.Len(t, LayoutFor(ShapeBlock).Slots, 1)
	assert.Equal(t, LayoutFor(ShapeHorizontal).Canvas, LayoutFor(Shape(9)).Canvas)

	// Returned slots are copies.
	h.Slots[0] = image.Rectangle{}
	assert.Equal(t, image.Rect(10, 10, 170, 190), LayoutFor(ShapeHorizontal).Slots[0])
}

func TestLayoutScale(t *testing.T) {
	l := LayoutFor(ShapeHorizontal)
	assert.Equal(t, l, l.Scale(l.Canvas))
	assert.Equal(t, l, l.Scale(image.Point{}))

	half := l.Scale(image.Pt(600, 100))
	assert.Equal(t, image.Pt(600, 100), half.Canvas)
	assert.Equal(t, image.Rect(5, 5, 85, 95), half.Slots[0])
	assert.Equal(t, image.Rect(175, 0, 450, 100), half.TextBox)
}

func TestParseShape(t *testing.T) {
	for _, s := range []Shape{ShapeHorizontal, ShapeVertical, ShapeBlock} {
		assert.Equal(t, s, ParseShape(s.String()))
	}
	assert.Equal(t, ShapeHorizontal, ParseShape("round"))
}
