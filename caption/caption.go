// Package caption word-wraps text and draws it with a drop shadow inside a
// bounding box.
package caption

import (
	"image"
	"image/color"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/fogleman/gg"
	"github.com/setanarut/bannergen/utils"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

const (
	DefaultWidth      = 50
	DefaultFontSize   = 30
	DefaultLineHeight = 1.5
)

type Align int

const (
	AlignLeft Align = iota
	AlignCenter
	AlignRight
)

type VAlign int

const (
	VAlignCenter VAlign = iota
	VAlignTop
	VAlignBottom
)

// DefaultShadow is black at transparency 50 on the 0..127 scale.
var DefaultShadow color.Color = color.NRGBA{A: 155}

// Options controls Draw. Zero fields take the package defaults.
type Options struct {
	Face         font.Face
	Box          image.Rectangle
	Align        Align
	VAlign       VAlign
	LineHeight   float64 // multiple of the font height
	Color        color.Color
	Shadow       color.Color
	ShadowOffset image.Point // zero takes (2,2) unless NoShadow is set
	NoShadow     bool
	Width        int // wrap width in characters
}

func (o Options) withDefaults() (Options, error) {
	if o.Face == nil {
		f, err := LoadFace("", DefaultFontSize)
		if err != nil {
			return o, err
		}
		o.Face = f
	}
	if o.LineHeight <= 0 {
		o.LineHeight = DefaultLineHeight
	}
	if o.Color == nil {
		o.Color = color.White
	}
	if o.Shadow == nil {
		o.Shadow = DefaultShadow
	}
	if o.NoShadow {
		o.ShadowOffset = image.Point{}
	} else if o.ShadowOffset == (image.Point{}) {
		o.ShadowOffset = image.Pt(2, 2)
	}
	if o.Width <= 0 {
		o.Width = DefaultWidth
	}
	return o, nil
}

// Wrap breaks text at whitespace into lines of at most width characters.
// A word longer than width gets a line of its own. Existing newlines are
// kept as paragraph breaks.
func Wrap(text string, width int) []string {
	if width <= 0 {
		width = DefaultWidth
	}
	var lines []string
	for _, para := range strings.Split(text, "\n") {
		var (
			line string
			n    int
		)
		for _, word := range strings.Fields(para) {
			wn := utf8.RuneCountInString(word)
			switch {
			case n == 0:
				line, n = word, wn
			case n+1+wn <= width:
				line += " " + word
				n += 1 + wn
			default:
				lines = append(lines, line)
				line, n = word, wn
			}
		}
		if n > 0 {
			lines = append(lines, line)
		}
	}
	return lines
}

// LoadFace opens a TrueType/OpenType font at size points. An empty path
// selects the embedded Go Regular face.
func LoadFace(path string, size float64) (font.Face, error) {
	if size <= 0 {
		size = DefaultFontSize
	}
	data := goregular.TTF
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, &utils.IOError{Op: "read font", Path: path, Err: err}
		}
		data = b
	}
	f, err := opentype.Parse(data)
	if err != nil {
		return nil, &utils.IOError{Op: "parse font", Path: path, Err: err}
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, &utils.IOError{Op: "load font", Path: path, Err: err}
	}
	return face, nil
}

// Draw renders text into dst: shadow first, then the text itself. Output is
// clipped to opts.Box grown by the shadow offset; NoShadow skips the shadow
// pass and clips to the box alone. Blank text draws nothing.
func Draw(dst *image.RGBA, text string, opts Options) error {
	lines := Wrap(text, opts.Width)
	if len(lines) == 0 {
		return nil
	}
	opts, err := opts.withDefaults()
	if err != nil {
		return err
	}
	box := opts.Box
	if box.Empty() {
		box = dst.Bounds()
	}

	dc := gg.NewContextForRGBA(dst)
	dc.SetFontFace(opts.Face)
	clip := box.Union(box.Add(opts.ShadowOffset))
	dc.DrawRectangle(float64(clip.Min.X), float64(clip.Min.Y), float64(clip.Dx()), float64(clip.Dy()))
	dc.Clip()

	m := opts.Face.Metrics()
	ascent := float64(m.Ascent) / 64
	em := float64(m.Ascent+m.Descent) / 64
	step := em * opts.LineHeight
	total := step*float64(len(lines)-1) + em

	var top float64
	switch opts.VAlign {
	case VAlignTop:
		top = float64(box.Min.Y)
	case VAlignBottom:
		top = float64(box.Max.Y) - total
	default:
		top = float64(box.Min.Y) + (float64(box.Dy())-total)/2
	}

	type placed struct {
		s    string
		x, y float64
	}
	out := make([]placed, len(lines))
	for i, l := range lines {
		w, _ := dc.MeasureString(l)
		x := float64(box.Min.X)
		switch opts.Align {
		case AlignCenter:
			x += (float64(box.Dx()) - w) / 2
		case AlignRight:
			x = float64(box.Max.X) - w
		}
		out[i] = placed{s: l, x: x, y: top + float64(i)*step + ascent}
	}

	if !opts.NoShadow {
		ox, oy := float64(opts.ShadowOffset.X), float64(opts.ShadowOffset.Y)
		dc.SetColor(opts.Shadow)
		for _, p := range out {
			dc.DrawString(p.s, p.x+ox, p.y+oy)
		}
	}
	dc.SetColor(opts.Color)
	for _, p := range out {
		dc.DrawString(p.s, p.x, p.y)
	}
	return nil
}
