package bannergen

import (
	"context"
	"errors"
	"fmt"
	"image"
	"math/rand/v2"
	"runtime"
	"strings"

	"github.com/setanarut/bannergen/background"
	"github.com/setanarut/bannergen/caption"
	"github.com/setanarut/bannergen/compose"
	"github.com/setanarut/bannergen/palette"
	"github.com/setanarut/bannergen/utils"
	"go.uber.org/zap"
)

var (
	// ErrNoSource is returned when a request names no source image.
	ErrNoSource = errors.New("no source image")
	// ErrTooLarge is wrapped when a canvas or source exceeds the size
	// limits of Options.
	ErrTooLarge = errors.New("image too large")
)

const (
	DefaultMaxCanvas       = 8192
	DefaultMaxSourcePixels = 64 << 20
)

type Shape = compose.Shape

const (
	ShapeHorizontal = compose.ShapeHorizontal
	ShapeVertical   = compose.ShapeVertical
	ShapeBlock      = compose.ShapeBlock
)

type Options struct {
	// Palette extraction method.
	// Median cut is the default; kmeans is slower and falls back to dominant.
	PaletteMethod palette.Method
	// Maximum number of palette colors.
	// Ideal start: 8-12. Lower values make the primary color coarser.
	PaletteSize int
	// Row bands scanned in parallel for the secondary color.
	// 0 lets Build pick from the source size; 1 scans serially.
	Workers int
	// Channel thresholds of the white and black families that the
	// secondary color skips.
	WhiteThreshold int
	BlackThreshold int
	// Upper bound of each canvas side. 0 takes DefaultMaxCanvas.
	MaxCanvas int
	// Upper bound of the pixel count of a source, checked from its header
	// before decoding. 0 takes DefaultMaxSourcePixels.
	MaxSourcePixels int
}

func DefaultOptions() Options {
	return Options{
		PaletteMethod:   palette.MethodMedianCut,
		PaletteSize:     palette.DefaultSize,
		Workers:         0,
		WhiteThreshold:  palette.WhiteThreshold,
		BlackThreshold:  palette.BlackThreshold,
		MaxCanvas:       DefaultMaxCanvas,
		MaxSourcePixels: DefaultMaxSourcePixels,
	}
}

// CanvasLimit is the effective MaxCanvas.
func (o Options) CanvasLimit() int {
	if o.MaxCanvas <= 0 {
		return DefaultMaxCanvas
	}
	return o.MaxCanvas
}

func (o Options) sourceLimit() int {
	if o.MaxSourcePixels <= 0 {
		return DefaultMaxSourcePixels
	}
	return o.MaxSourcePixels
}

// OptionsFromSize returns DefaultOptions with the worker count chosen for a
// source of the given size.
func OptionsFromSize(size image.Point) Options {
	opt := DefaultOptions()
	opt.Workers = 1
	if size.X <= 0 || size.Y <= 0 {
		return opt
	}
	pixels := size.X * size.Y
	if pixels > 1024*1024 {
		opt.Workers = max(1, min(8, runtime.NumCPU()))
	} else if pixels > 512*512 {
		opt.Workers = 2
	}
	return opt
}

// Request describes one banner.
type Request struct {
	// Sources are image paths. The first one drives the colors; layouts with
	// more slots than sources reuse the last source.
	Sources  []string
	Caption  string
	Subtitle string
	// Canvas size. Zero takes the native size of the first source.
	Width, Height int
	// FontPath selects a TrueType/OpenType font; empty uses Go Regular.
	FontPath string
	// Style is a background style name. Empty or unknown names select the
	// shape's default style.
	Style string
	Shape Shape
	// Seed fixes the random source of randomized styles.
	Seed *uint64
}

type Builder struct {
	opts   Options
	log    *zap.Logger
	opener utils.Opener
}

type Option func(*Builder)

func WithLogger(l *zap.Logger) Option {
	return func(b *Builder) {
		if l != nil {
			b.log = l
		}
	}
}

func WithOptions(o Options) Option {
	return func(b *Builder) { b.opts = o }
}

func WithPaletteMethod(m palette.Method) Option {
	return func(b *Builder) { b.opts.PaletteMethod = m }
}

func WithPaletteSize(n int) Option {
	return func(b *Builder) { b.opts.PaletteSize = n }
}

func WithWorkers(n int) Option {
	return func(b *Builder) { b.opts.Workers = n }
}

func WithThresholds(white, black int) Option {
	return func(b *Builder) {
		b.opts.WhiteThreshold = white
		b.opts.BlackThreshold = black
	}
}

func WithMaxCanvas(n int) Option {
	return func(b *Builder) { b.opts.MaxCanvas = n }
}

// WithOpener reads sources through op instead of the local filesystem.
func WithOpener(op utils.Opener) Option {
	return func(b *Builder) {
		if op != nil {
			b.opener = op
		}
	}
}

func New(opts ...Option) *Builder {
	b := &Builder{
		opts:   DefaultOptions(),
		log:    zap.NewNop(),
		opener: utils.FileOpener{},
	}
	for _, o := range opts {
		o(b)
	}
	return b
}

// ResolveStyle returns the named style, or the default style of shape when
// name is empty or unknown.
func ResolveStyle(name string, shape Shape) background.Style {
	if s, ok := background.LookupStyle(strings.TrimSpace(name)); ok {
		return s
	}
	return compose.LayoutFor(shape).DefaultStyle
}

// Build renders the banner described by req. It fails with
// *utils.DecodeError for unreadable or oversized sources and canvases and
// *utils.IOError for unreadable fonts; no bitmap is returned on failure.
func (b *Builder) Build(ctx context.Context, req Request) (*image.RGBA, error) {
	if len(req.Sources) == 0 {
		return nil, &utils.DecodeError{Op: "open", Err: ErrNoSource}
	}
	layout := compose.LayoutFor(req.Shape)
	style := ResolveStyle(req.Style, req.Shape)

	size, err := b.canvasSize(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sources := make(map[string]image.Image, len(req.Sources))
	src, err := b.source(ctx, sources, req.Sources[0])
	if err != nil {
		return nil, err
	}

	opts := b.opts
	if opts.Workers <= 0 {
		opts.Workers = OptionsFromSize(src.Bounds().Size()).Workers
	}
	pal := palette.ExtractLogged(src, opts.PaletteSize, opts.PaletteMethod, b.log)
	pair := palette.SelectPair(src, pal, palette.SecondaryOptions{
		White:   opts.WhiteThreshold,
		Black:   opts.BlackThreshold,
		Workers: opts.Workers,
	})
	b.log.Debug("color pair",
		zap.Int("palette", len(pal)),
		zap.Stringer("primary", pair.Primary),
		zap.Stringer("secondary", pair.Secondary),
		zap.Stringer("style", style),
		zap.Stringer("shape", req.Shape),
	)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var rng *rand.Rand
	if req.Seed != nil {
		rng = background.NewRand(*req.Seed)
	}
	banner := background.Generate(style, pair, size.X, size.Y, rng)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	layout = layout.Scale(size)
	for i, slot := range layout.Slots {
		path := req.Sources[min(i, len(req.Sources)-1)]
		img, err := b.source(ctx, sources, path)
		if err != nil {
			return nil, err
		}
		compose.Place(banner, compose.Resize(img, slot.Dx(), slot.Dy()), slot)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := b.drawCaption(banner, req, style, layout, pair, src); err != nil {
		return nil, err
	}
	return banner, nil
}

func (b *Builder) canvasSize(ctx context.Context, req Request) (image.Point, error) {
	size := image.Pt(req.Width, req.Height)
	if size.X <= 0 || size.Y <= 0 {
		native, err := utils.ImageSize(ctx, b.opener, req.Sources[0])
		if err != nil {
			return image.Point{}, err
		}
		if size.X <= 0 {
			size.X = native.X
		}
		if size.Y <= 0 {
			size.Y = native.Y
		}
	}
	if limit := b.opts.CanvasLimit(); size.X > limit || size.Y > limit {
		return image.Point{}, &utils.DecodeError{
			Op:   "size",
			Path: req.Sources[0],
			Err:  fmt.Errorf("%w: canvas %dx%d exceeds %d per side", ErrTooLarge, size.X, size.Y, limit),
		}
	}
	return size, nil
}

// source decodes path once per request. The header is checked first so an
// oversized source is rejected before its pixels are allocated.
func (b *Builder) source(ctx context.Context, cache map[string]image.Image, path string) (image.Image, error) {
	if img, ok := cache[path]; ok {
		return img, nil
	}
	size, err := utils.ImageSize(ctx, b.opener, path)
	if err == nil && size.X*size.Y > b.opts.sourceLimit() {
		err = &utils.DecodeError{
			Op:   "size",
			Path: path,
			Err:  fmt.Errorf("%w: source %dx%d exceeds %d pixels", ErrTooLarge, size.X, size.Y, b.opts.sourceLimit()),
		}
	}
	if err == nil {
		var img image.Image
		if img, err = utils.OpenImage(ctx, b.opener, path); err == nil {
			cache[path] = img
			return img, nil
		}
	}
	b.log.Debug("source rejected", zap.String("path", path), zap.Error(err))
	return nil, err
}

func (b *Builder) drawCaption(dst *image.RGBA, req Request, style background.Style, layout compose.Layout, pair palette.Pair, src image.Image) error {
	if strings.TrimSpace(req.Caption) == "" {
		return nil
	}
	w, h := dst.Bounds().Dx(), dst.Bounds().Dy()

	switch style {
	case background.StyleMarketing:
		sb := src.Bounds()
		left := image.Rect(sb.Min.X, sb.Min.Y, sb.Min.X+sb.Dx()/3, sb.Max.Y)
		face, err := caption.LoadFace(req.FontPath, 24)
		if err != nil {
			return err
		}
		x, y := int(float64(w)*0.35), int(float64(h)*0.2)
		return caption.Draw(dst, req.Caption, caption.Options{
			Face:  face,
			Box:   image.Rect(x, y, x+int(float64(w)*0.45), y+int(float64(h)*0.5)),
			Align: caption.AlignCenter,
			Color: palette.AverageColor(src, left),
		})

	case background.StyleMedical:
		dark := (pair.Primary.Sum()+pair.Secondary.Sum())/6 < 128
		title, sub := palette.Black, palette.RGB{R: 80, G: 80, B: 80}
		if dark {
			title, sub = palette.White, palette.RGB{R: 200, G: 200, B: 200}
		}
		face, err := caption.LoadFace(req.FontPath, 48)
		if err != nil {
			return err
		}
		if err := caption.Draw(dst, req.Caption, caption.Options{
			Face:     face,
			Box:      image.Rect(50, 50, w-50, 50+h/2),
			Color:    title,
			NoShadow: true,
		}); err != nil {
			return err
		}
		if strings.TrimSpace(req.Subtitle) == "" {
			return nil
		}
		face, err = caption.LoadFace(req.FontPath, 24)
		if err != nil {
			return err
		}
		return caption.Draw(dst, req.Subtitle, caption.Options{
			Face:     face,
			Box:      image.Rect(50, h/2, w-50, h),
			Color:    sub,
			NoShadow: true,
		})

	default:
		face, err := caption.LoadFace(req.FontPath, caption.DefaultFontSize)
		if err != nil {
			return err
		}
		return caption.Draw(dst, req.Caption, caption.Options{
			Face:   face,
			Box:    layout.TextBox,
			Align:  layout.Align,
			VAlign: layout.VAlign,
		})
	}
}

// Save encodes img and hands the bytes to sink exactly once.
func (b *Builder) Save(ctx context.Context, img image.Image, sink utils.Sink, path string, f utils.Format) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := utils.EncodeBytes(img, f)
	if err != nil {
		return &utils.IOError{Op: "encode", Path: path, Err: err}
	}
	if err := sink.Put(path, data); err != nil {
		return err
	}
	b.log.Info("banner saved",
		zap.String("path", path),
		zap.Stringer("format", f),
		zap.Int("bytes", len(data)),
	)
	return nil
}
