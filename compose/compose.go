// Package compose loads source photographs and places them onto banner
// backgrounds following a per-shape layout.
package compose

import (
	"image"
	"image/draw"

	"github.com/disintegration/imaging"
	"github.com/setanarut/bannergen/utils"
	xdraw "golang.org/x/image/draw"
)

// LoadAndResize decodes the image at path and resamples it with Lanczos to
// exactly w×h, ignoring the source aspect ratio.
func LoadAndResize(path string, w, h int) (*image.NRGBA, error) {
	img, err := utils.ReadImage(path)
	if err != nil {
		return nil, err
	}
	return Resize(img, w, h), nil
}

// Resize resamples img to exactly w×h. Sizes below one are raised to one.
func Resize(img image.Image, w, h int) *image.NRGBA {
	return imaging.Resize(img, max(1, w), max(1, h), imaging.Lanczos)
}

// Place draws src over dst scaled into r. Parts of r outside dst are
// clipped.
func Place(dst draw.Image, src image.Image, r image.Rectangle) {
	if r.Empty() {
		return
	}
	if src.Bounds().Size() == r.Size() {
		draw.Draw(dst, r, src, src.Bounds().Min, draw.Over)
		return
	}
	xdraw.CatmullRom.Scale(dst, r, src, src.Bounds(), xdraw.Over, nil)
}
