package compose

import (
	"image"

	"github.com/setanarut/bannergen/background"
	"github.com/setanarut/bannergen/caption"
)

// Shape is the banner format.
type Shape int

const (
	ShapeHorizontal Shape = iota
	ShapeVertical
	ShapeBlock
)

func (s Shape) String() string {
	switch s {
	case ShapeVertical:
		return "vertical"
	case ShapeBlock:
		return "block"
	default:
		return "horizontal"
	}
}

// ParseShape maps a shape name to its Shape. Unknown names select
// ShapeHorizontal.
func ParseShape(name string) Shape {
	switch name {
	case "vertical":
		return ShapeVertical
	case "block":
		return ShapeBlock
	default:
		return ShapeHorizontal
	}
}

// Layout places source images and the caption on a reference canvas.
type Layout struct {
	Canvas       image.Point
	Slots        []image.Rectangle
	TextBox      image.Rectangle
	Align        caption.Align
	VAlign       caption.VAlign
	DefaultStyle background.Style
}

// xywh builds a rectangle from an origin and a size.
func xywh(x, y, w, h int) image.Rectangle {
	return image.Rect(x, y, x+w, y+h)
}

var layouts = [...]Layout{
	ShapeHorizontal: {
		Canvas:       image.Pt(1200, 200),
		Slots:        []image.Rectangle{xywh(10, 10, 160, 180), xywh(1030, 10, 160, 180)},
		TextBox:      xywh(350, 0, 550, 200),
		Align:        caption.AlignLeft,
		VAlign:       caption.VAlignCenter,
		DefaultStyle: background.StyleWave1,
	},
	ShapeVertical: {
		Canvas:       image.Pt(345, 400),
		Slots:        []image.Rectangle{xywh(10, 10, 110, 130), xywh(225, 10, 110, 130)},
		TextBox:      xywh(10, 150, 325, 240),
		Align:        caption.AlignCenter,
		VAlign:       caption.VAlignCenter,
		DefaultStyle: background.StyleStripes,
	},
	ShapeBlock: {
		Canvas:       image.Pt(300, 300),
		Slots:        []image.Rectangle{xywh(10, 0, 280, 320)},
		TextBox:      xywh(20, 220, 260, 70),
		Align:        caption.AlignCenter,
		VAlign:       caption.VAlignCenter,
		DefaultStyle: background.StyleSolid,
	},
}

// LayoutFor returns a copy of the reference layout of s.
func LayoutFor(s Shape) Layout {
	if s < 0 || int(s) >= len(layouts) {
		s = ShapeHorizontal
	}
	l := layouts[s]
	l.Slots = append([]image.Rectangle(nil), l.Slots...)
	return l
}

// Scale maps every rectangle of l proportionally onto a canvas of the given
// size. Scaling to the reference canvas is the identity.
func (l Layout) Scale(canvas image.Point) Layout {
	if canvas.X <= 0 || canvas.Y <= 0 || canvas == l.Canvas {
		return l
	}
	sr := func(r image.Rectangle) image.Rectangle {
		return image.Rect(
			r.Min.X*canvas.X/l.Canvas.X,
			r.Min.Y*canvas.Y/l.Canvas.Y,
			r.Max.X*canvas.X/l.Canvas.X,
			r.Max.Y*canvas.Y/l.Canvas.Y,
		)
	}
	out := l
	out.Canvas = canvas
	out.Slots = make([]image.Rectangle, len(l.Slots))
	for i, r := range l.Slots {
		out.Slots[i] = sr(r)
	}
	out.TextBox = sr(l.TextBox)
	return out
}
