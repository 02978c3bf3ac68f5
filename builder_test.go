package bannergen

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"image"
	"image/color"
	"image/draw"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/setanarut/bannergen/background"
	"github.com/setanarut/bannergen/palette"
	"github.com/setanarut/bannergen/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

// photo is a two-tone test image: a warm left half and a cool right half.
func photo(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, image.Rect(0, 0, w/2, h), image.NewUniform(color.RGBA{220, 120, 60, 255}), image.Point{}, draw.Src)
	draw.Draw(img, image.Rect(w/2, 0, w, h), image.NewUniform(color.RGBA{40, 90, 160, 255}), image.Point{}, draw.Src)
	return img
}

func writePhoto(t *testing.T, name string, w, h int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, utils.SaveImage(photo(w, h), path))
	return path
}

func writeSolid(t *testing.T, name string, c color.RGBA) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 90, 60))
	draw.Draw(img, img.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, utils.SaveImage(img, path))
	return path
}

func seed(v uint64) *uint64 { return &v }

func assertNear(t *testing.T, want color.RGBA, got color.Color, msg string) {
	t.Helper()
	c := color.RGBAModel.Convert(got).(color.RGBA)
	assert.InDelta(t, want.R, c.R, 6, msg)
	assert.InDelta(t, want.G, c.G, 6, msg)
	assert.InDelta(t, want.B, c.B, 6, msg)
}

func TestBuildSizes(t *testing.T) {
	src := writePhoto(t, "a.jpg", 120, 80)
	b := New(WithLogger(zaptest.NewLogger(t)))

	tests := []struct {
		name string
		req  Request
		want image.Rectangle
	}{
		{"explicit", Request{Sources: []string{src}, Width: 600, Height: 100}, image.Rect(0, 0, 600, 100)},
		{"native", Request{Sources: []string{src}}, image.Rect(0, 0, 120, 80)},
		{"width only", Request{Sources: []string{src}, Width: 300}, image.Rect(0, 0, 300, 80)},
		{"vertical", Request{Sources: []string{src, src}, Shape: ShapeVertical, Width: 345, Height: 400}, image.Rect(0, 0, 345, 400)},
		{"block", Request{Sources: []string{src}, Shape: ShapeBlock, Width: 300, Height: 300}, image.Rect(0, 0, 300, 300)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.req.Seed = seed(1)
			img, err := b.Build(context.Background(), tt.req)
			require.NoError(t, err)
			assert.Equal(t, tt.want, img.Bounds())
		})
	}
}

func TestBuildEveryStyle(t *testing.T) {
	src := writePhoto(t, "a.png", 60, 40)
	b := New()
	for _, s := range background.Styles() {
		t.Run(s.String(), func(t *testing.T) {
			img, err := b.Build(context.Background(), Request{
				Sources: []string{src},
				Caption: "Fresh deals every day",
				Width:   400,
				Height:  120,
				Style:   s.String(),
				Seed:    seed(9),
			})
			require.NoError(t, err)
			assert.Equal(t, image.Rect(0, 0, 400, 120), img.Bounds())
		})
	}
}

func TestBuildCaptionOnlyTouchesTextBox(t *testing.T) {
	src := writePhoto(t, "a.png", 120, 80)
	b := New()
	req := Request{Sources: []string{src}, Width: 600, Height: 100, Style: "wave1", Seed: seed(5)}

	plain, err := b.Build(context.Background(), req)
	require.NoError(t, err)
	req.Caption = "Summer sale"
	captioned, err := b.Build(context.Background(), req)
	require.NoError(t, err)

	// Horizontal text box (350,0,550,200) scaled from 1200×200, grown by the
	// shadow offset.
	box := image.Rect(175, 0, 450, 100)
	box = box.Union(box.Add(image.Pt(2, 2)))
	changed := false
	for y := range 100 {
		for x := range 600 {
			same := plain.RGBAAt(x, y) == captioned.RGBAAt(x, y)
			if !image.Pt(x, y).In(box) {
				require.True(t, same, "pixel (%d,%d) outside the text box differs", x, y)
			} else if !same {
				changed = true
			}
		}
	}
	assert.True(t, changed, "caption drew nothing")
}

func TestBuildPlacesSources(t *testing.T) {
	src := writePhoto(t, "a.png", 100, 100)
	img, err := New().Build(context.Background(), Request{
		Sources: []string{src},
		Shape:   ShapeBlock,
		Width:   300,
		Height:  300,
	})
	require.NoError(t, err)
	// Block slot (10,0,290,320): left half warm, right half cool.
	assert.Equal(t, palette.RGB{R: 220, G: 120, B: 60}, palette.FromColor(img.At(60, 150)))
	assert.Equal(t, palette.RGB{R: 40, G: 90, B: 160}, palette.FromColor(img.At(240, 150)))
}

func TestBuildTwoJPEGs(t *testing.T) {
	red := color.RGBA{200, 40, 40, 255}
	green := color.RGBA{40, 160, 70, 255}
	first := writeSolid(t, "first.jpg", red)
	second := writeSolid(t, "second.jpg", green)

	img, err := New().Build(context.Background(), Request{
		Sources: []string{first, second},
		Caption: "Two photos, one banner",
		Width:   1200,
		Height:  200,
		Seed:    seed(4),
	})
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 1200, 200), img.Bounds())
	// Horizontal slots (10,10,170,190) and (1030,10,1190,190).
	for _, p := range []image.Point{image.Pt(10, 10), image.Pt(90, 100), image.Pt(169, 189)} {
		assertNear(t, red, img.At(p.X, p.Y), fmt.Sprint("first slot ", p))
	}
	for _, p := range []image.Point{image.Pt(1030, 10), image.Pt(1110, 100), image.Pt(1189, 189)} {
		assertNear(t, green, img.At(p.X, p.Y), fmt.Sprint("second slot ", p))
	}
}

func TestBuildDeterministicWithSeed(t *testing.T) {
	src := writePhoto(t, "a.png", 80, 60)
	b := New(WithWorkers(3))
	req := Request{Sources: []string{src}, Width: 300, Height: 90, Style: "burst", Seed: seed(77)}
	a, err := b.Build(context.Background(), req)
	require.NoError(t, err)
	c, err := b.Build(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, a.Pix, c.Pix)
}

func TestBuildErrors(t *testing.T) {
	src := writePhoto(t, "a.jpg", 40, 40)
	b := New()

	t.Run("no sources", func(t *testing.T) {
		_, err := b.Build(context.Background(), Request{})
		assert.ErrorIs(t, err, ErrNoSource)
	})
	t.Run("missing source", func(t *testing.T) {
		img, err := b.Build(context.Background(), Request{Sources: []string{filepath.Join(t.TempDir(), "nope.jpg")}})
		assert.Nil(t, img)
		var de *utils.DecodeError
		assert.True(t, errors.As(err, &de))
	})
	t.Run("missing second source", func(t *testing.T) {
		img, err := b.Build(context.Background(), Request{
			Sources: []string{src, filepath.Join(t.TempDir(), "nope.png")},
			Width:   600,
			Height:  100,
		})
		assert.Nil(t, img)
		var de *utils.DecodeError
		assert.True(t, errors.As(err, &de))
	})
	t.Run("corrupt source", func(t *testing.T) {
		bad := filepath.Join(t.TempDir(), "bad.png")
		require.NoError(t, os.WriteFile(bad, []byte("garbage"), 0o644))
		_, err := b.Build(context.Background(), Request{Sources: []string{bad}, Width: 10, Height: 10})
		var de *utils.DecodeError
		assert.True(t, errors.As(err, &de))
	})
	t.Run("missing font", func(t *testing.T) {
		img, err := b.Build(context.Background(), Request{
			Sources:  []string{src},
			Caption:  "hello",
			FontPath: filepath.Join(t.TempDir(), "font.ttf"),
			Width:    200,
			Height:   50,
		})
		assert.Nil(t, img)
		var ioErr *utils.IOError
		assert.True(t, errors.As(err, &ioErr))
	})
	t.Run("canceled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := b.Build(ctx, Request{Sources: []string{src}, Width: 20, Height: 20})
		assert.ErrorIs(t, err, context.Canceled)
	})
}

// pngHeader is a PNG signature and IHDR chunk claiming w×h truecolor
// pixels, with no image data behind it.
func pngHeader(w, h uint32) []byte {
	var buf bytes.Buffer
	buf.WriteString("\x89PNG\r\n\x1a\n")
	chunk := make([]byte, 4+13)
	copy(chunk, "IHDR")
	binary.BigEndian.PutUint32(chunk[4:], w)
	binary.BigEndian.PutUint32(chunk[8:], h)
	chunk[12] = 8 // bit depth
	chunk[13] = 2 // truecolor
	binary.Write(&buf, binary.BigEndian, uint32(13))
	buf.Write(chunk)
	binary.Write(&buf, binary.BigEndian, crc32.ChecksumIEEE(chunk))
	return buf.Bytes()
}

func TestBuildSizeLimits(t *testing.T) {
	src := writePhoto(t, "a.png", 120, 80)
	huge := memOpener{"huge.png": pngHeader(60000, 60000)}

	tests := []struct {
		name string
		b    *Builder
		req  Request
	}{
		{"explicit width", New(), Request{Sources: []string{src}, Width: 1 << 20, Height: 100}},
		{"explicit height", New(), Request{Sources: []string{src}, Width: 100, Height: DefaultMaxCanvas + 1}},
		{"native size", New(WithOpener(huge)), Request{Sources: []string{"huge.png"}}},
		{"source pixels", New(WithOpener(huge)), Request{Sources: []string{"huge.png"}, Width: 100, Height: 50}},
		{"custom canvas limit", New(WithMaxCanvas(100)), Request{Sources: []string{src}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img, err := tt.b.Build(context.Background(), tt.req)
			assert.Nil(t, img)
			assert.ErrorIs(t, err, ErrTooLarge)
			var de *utils.DecodeError
			require.True(t, errors.As(err, &de))
			assert.Equal(t, "size", de.Op)
		})
	}

	img, err := New(WithMaxCanvas(120)).Build(context.Background(), Request{Sources: []string{src}, Seed: seed(1)})
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 120, 80), img.Bounds())
}

func TestResolveStyle(t *testing.T) {
	assert.Equal(t, background.StyleWave1, ResolveStyle("", ShapeHorizontal))
	assert.Equal(t, background.StyleStripes, ResolveStyle("nonsense", ShapeVertical))
	assert.Equal(t, background.StyleSolid, ResolveStyle("", ShapeBlock))
	assert.Equal(t, background.StyleBurst, ResolveStyle(" burst ", ShapeBlock))
}

func TestOptionsFromSize(t *testing.T) {
	assert.Equal(t, 1, OptionsFromSize(image.Point{}).Workers)
	assert.Equal(t, 1, OptionsFromSize(image.Pt(200, 200)).Workers)
	assert.Equal(t, 2, OptionsFromSize(image.Pt(800, 600)).Workers)
	assert.GreaterOrEqual(t, OptionsFromSize(image.Pt(4000, 3000)).Workers, 1)
	assert.Equal(t, palette.DefaultSize, OptionsFromSize(image.Pt(10, 10)).PaletteSize)
}

type countingSink struct {
	calls int
	path  string
	data  []byte
	err   error
}

func (s *countingSink) Put(path string, data []byte) error {
	s.calls++
	s.path, s.data = path, data
	return s.err
}

func TestSave(t *testing.T) {
	b := New()
	img := photo(30, 20)

	for _, f := range []utils.Format{utils.FormatPNG, utils.FormatJPEG} {
		t.Run(f.String(), func(t *testing.T) {
			sink := &countingSink{}
			require.NoError(t, b.Save(context.Background(), img, sink, "out/banner."+f.String(), f))
			assert.Equal(t, 1, sink.calls)
			assert.Equal(t, "out/banner."+f.String(), sink.path)

			decoded, _, err := image.Decode(bytes.NewReader(sink.data))
			require.NoError(t, err)
			assert.Equal(t, image.Rect(0, 0, 30, 20), decoded.Bounds())
		})
	}

	t.Run("sink error", func(t *testing.T) {
		sink := &countingSink{err: &utils.IOError{Op: "write", Path: "x", Err: io.ErrShortWrite}}
		err := b.Save(context.Background(), img, sink, "x", utils.FormatPNG)
		var ioErr *utils.IOError
		assert.True(t, errors.As(err, &ioErr))
		assert.Equal(t, 1, sink.calls)
	})

	t.Run("disk", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, b.Save(context.Background(), img, utils.DiskSink{Root: dir}, "nested/b.png", utils.FormatPNG))
		_, err := os.Stat(filepath.Join(dir, "nested", "b.png"))
		assert.NoError(t, err)
	})
}

// memOpener serves encoded images from memory.
type memOpener map[string][]byte

func (m memOpener) Open(_ context.Context, uri string) (io.ReadCloser, error) {
	data, ok := m[uri]
	if !ok {
		return nil, fmt.Errorf("%s: %w", uri, os.ErrNotExist)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func TestBuildWithOpener(t *testing.T) {
	data, err := utils.EncodeBytes(photo(64, 32), utils.FormatPNG)
	require.NoError(t, err)
	b := New(WithOpener(memOpener{"mem://photo.png": data}), WithLogger(zap.NewNop()))

	img, err := b.Build(context.Background(), Request{Sources: []string{"mem://photo.png"}})
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 64, 32), img.Bounds())

	_, err = b.Build(context.Background(), Request{Sources: []string{"mem://other.png"}})
	assert.ErrorIs(t, err, os.ErrNotExist)
}
