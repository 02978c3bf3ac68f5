package utils

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"golang.org/x/image/webp"
)

// JPEGQuality is the fixed quality used for JPEG output.
const JPEGQuality = 95

type Format int

const (
	FormatPNG Format = iota
	FormatJPEG
)

func (f Format) String() string {
	switch f {
	case FormatJPEG:
		return "jpeg"
	default:
		return "png"
	}
}

// ContentType returns the MIME type of the encoded bytes.
func (f Format) ContentType() string {
	if f == FormatJPEG {
		return "image/jpeg"
	}
	return "image/png"
}

// ParseFormat accepts "png", "jpg" and "jpeg". Anything else is PNG.
func ParseFormat(s string) Format {
	switch strings.ToLower(strings.TrimPrefix(s, ".")) {
	case "jpg", "jpeg":
		return FormatJPEG
	default:
		return FormatPNG
	}
}

// FormatFromPath picks the output format from a file extension.
func FormatFromPath(path string) Format {
	return ParseFormat(filepath.Ext(path))
}

// Opener opens a source by URI. Remote readers such as go-remote-io's
// InputReader satisfy it.
type Opener interface {
	Open(ctx context.Context, uri string) (io.ReadCloser, error)
}

// FileOpener opens local paths.
type FileOpener struct{}

func (FileOpener) Open(_ context.Context, path string) (io.ReadCloser, error) {
	return os.Open(path)
}

// Decode reads one image, choosing the codec from the extension of name:
// .png, .webp, anything else is treated as JPEG.
func Decode(r io.Reader, name string) (image.Image, error) {
	var (
		img image.Image
		err error
	)
	switch strings.ToLower(filepath.Ext(name)) {
	case ".png":
		img, err = png.Decode(r)
	case ".webp":
		img, err = webp.Decode(r)
	default:
		img, err = jpeg.Decode(r)
	}
	if err != nil {
		return nil, &DecodeError{Op: "decode", Path: name, Err: err}
	}
	return img, nil
}

// ReadImage decodes the image at path.
func ReadImage(path string) (image.Image, error) {
	return OpenImage(context.Background(), FileOpener{}, path)
}

// OpenImage decodes the image at uri through op.
func OpenImage(ctx context.Context, op Opener, uri string) (image.Image, error) {
	rc, err := op.Open(ctx, uri)
	if err != nil {
		return nil, &DecodeError{Op: "open", Path: uri, Err: err}
	}
	defer rc.Close()
	return Decode(rc, uri)
}

// ImageSize returns the native dimensions of the image at uri without
// decoding the pixels.
func ImageSize(ctx context.Context, op Opener, uri string) (image.Point, error) {
	rc, err := op.Open(ctx, uri)
	if err != nil {
		return image.Point{}, &DecodeError{Op: "open", Path: uri, Err: err}
	}
	defer rc.Close()

	var cfg image.Config
	switch strings.ToLower(filepath.Ext(uri)) {
	case ".png":
		cfg, err = png.DecodeConfig(rc)
	case ".webp":
		cfg, err = webp.DecodeConfig(rc)
	default:
		cfg, err = jpeg.DecodeConfig(rc)
	}
	if err != nil {
		return image.Point{}, &DecodeError{Op: "config", Path: uri, Err: err}
	}
	return image.Pt(cfg.Width, cfg.Height), nil
}

// Encode writes img as PNG with maximum compression or as JPEG at
// JPEGQuality.
func Encode(w io.Writer, img image.Image, f Format) error {
	switch f {
	case FormatJPEG:
		return imaging.Encode(w, img, imaging.JPEG, imaging.JPEGQuality(JPEGQuality))
	default:
		return imaging.Encode(w, img, imaging.PNG, imaging.PNGCompressionLevel(png.BestCompression))
	}
}

// EncodeBytes is Encode into a fresh buffer.
func EncodeBytes(img image.Image, f Format) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, img, f); err != nil {
		return nil, fmt.Errorf("encode %s: %w", f, err)
	}
	return buf.Bytes(), nil
}

// SaveImage encodes img to filename, picking the format from its extension.
func SaveImage(img image.Image, filename string) error {
	data, err := EncodeBytes(img, FormatFromPath(filename))
	if err != nil {
		return err
	}
	return DiskSink{}.Put(filename, data)
}

// Sink persists encoded bytes.
type Sink interface {
	Put(path string, data []byte) error
}

// DiskSink writes files below Root. An empty Root means paths are used as
// given.
type DiskSink struct {
	Root string
}

func (s DiskSink) Put(path string, data []byte) error {
	if path == "" {
		return &IOError{Op: "put", Path: path, Err: errors.New("empty path")}
	}
	target := path
	if s.Root != "" {
		target = filepath.Join(s.Root, path)
	}
	if dir := filepath.Dir(target); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return &IOError{Op: "mkdir", Path: dir, Err: err}
		}
	}
	if err := os.WriteFile(target, data, 0o644); err != nil {
		return &IOError{Op: "write", Path: target, Err: err}
	}
	return nil
}
