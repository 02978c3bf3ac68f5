package palette

import (
	"image"
	"image/draw"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"
)

const (
	// BrightnessThreshold excludes near-black palette entries from Primary.
	BrightnessThreshold = 300
	// WhiteThreshold and BlackThreshold bound the color families Secondary
	// ignores.
	WhiteThreshold = 200
	BlackThreshold = 50
)

// Pair is the two colors that drive a background.
type Pair struct {
	Primary   RGB
	Secondary RGB
}

// Primary returns the brightest palette color whose channel sum reaches
// BrightnessThreshold. When every color is darker it returns p[0]; an empty
// palette yields Gray.
func Primary(p Palette) RGB {
	if len(p) == 0 {
		return Gray
	}
	best, bestSum := -1, -1
	for i, c := range p {
		s := c.Sum()
		if s < BrightnessThreshold {
			continue
		}
		if s > bestSum {
			best, bestSum = i, s
		}
	}
	if best < 0 {
		return p[0]
	}
	return p[best]
}

// MostDifferent returns the palette entry farthest from ref by Distance.
// The first entry wins ties; an empty palette returns ref.
func MostDifferent(p Palette, ref RGB) RGB {
	out, bestD := ref, -1
	for _, c := range p {
		if d := Distance(c, ref); d > bestD {
			out, bestD = c, d
		}
	}
	return out
}

type SecondaryOptions struct {
	// White and Black are the family thresholds, used as given: Black 0
	// excludes only pure black.
	White, Black int
	// Workers > 1 splits the scan into row bands.
	Workers int
}

// DefaultSecondaryOptions scans serially with WhiteThreshold and
// BlackThreshold.
func DefaultSecondaryOptions() SecondaryOptions {
	return SecondaryOptions{White: WhiteThreshold, Black: BlackThreshold, Workers: 1}
}

func (o SecondaryOptions) thresholds() (white, black uint8) {
	return uint8(clampInt(o.White, 0, 255)), uint8(clampInt(o.Black, 0, 255))
}

type bucket struct {
	count int
	first int // row-major index of the first pixel with this color
}

// Secondary returns the most frequent exact pixel color of img, ignoring
// the white family (every channel >= White) and the black family (every
// channel <= Black). Equal counts go to the color seen first in row-major
// order. With nothing left it returns Gray.
func Secondary(img image.Image, opts SecondaryOptions) RGB {
	src := toNRGBA(img)
	b := src.Bounds()
	if b.Empty() {
		return Gray
	}
	white, black := opts.thresholds()

	workers := max(1, min(opts.Workers, b.Dy()))
	parts := make([]map[RGB]bucket, workers)
	band := (b.Dy() + workers - 1) / workers

	var g errgroup.Group
	for i := range workers {
		y0 := b.Min.Y + i*band
		y1 := min(b.Max.Y, y0+band)
		g.Go(func() error {
			parts[i] = countColors(src, y0, y1, white, black)
			return nil
		})
	}
	// countColors cannot fail; Wait only joins the bands.
	_ = g.Wait()

	merged := parts[0]
	for _, part := range parts[1:] {
		for c, pb := range part {
			mb, ok := merged[c]
			if !ok {
				merged[c] = pb
				continue
			}
			mb.count += pb.count
			mb.first = min(mb.first, pb.first)
			merged[c] = mb
		}
	}

	var (
		best  RGB
		found bool
		bb    bucket
	)
	for c, cb := range merged {
		if !found || cb.count > bb.count || (cb.count == bb.count && cb.first < bb.first) {
			best, bb, found = c, cb, true
		}
	}
	if !found {
		return Gray
	}
	return best
}

func countColors(src *image.NRGBA, y0, y1 int, white, black uint8) map[RGB]bucket {
	b := src.Bounds()
	w := b.Dx()
	counts := make(map[RGB]bucket)
	for y := y0; y < y1; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := pixelAt(src, x, y)
			if c.R >= white && c.G >= white && c.B >= white {
				continue
			}
			if c.R <= black && c.G <= black && c.B <= black {
				continue
			}
			cb, ok := counts[c]
			if !ok {
				cb.first = (y-b.Min.Y)*w + (x - b.Min.X)
			}
			cb.count++
			counts[c] = cb
		}
	}
	return counts
}

// pixelAt is the single place channel bytes are pulled out of a pixel
// buffer.
func pixelAt(img *image.NRGBA, x, y int) RGB {
	off := img.PixOffset(x, y)
	return RGB{img.Pix[off], img.Pix[off+1], img.Pix[off+2]}
}

func toNRGBA(img image.Image) *image.NRGBA {
	if n, ok := img.(*image.NRGBA); ok {
		return n
	}
	b := img.Bounds()
	out := image.NewNRGBA(b)
	draw.Draw(out, b, img, b.Min, draw.Src)
	return out
}

// SelectPair computes the primary color from p and the secondary color from
// the full-resolution pixels of img.
func SelectPair(img image.Image, p Palette, opts SecondaryOptions) Pair {
	return Pair{
		Primary:   Primary(p),
		Secondary: Secondary(img, opts),
	}
}

// AverageColor is the mean color of img inside r. An empty intersection
// returns Black.
func AverageColor(img image.Image, r image.Rectangle) RGB {
	r = r.Intersect(img.Bounds())
	if r.Empty() {
		return Black
	}
	n := r.Dx() * r.Dy()
	rs := make([]float64, 0, n)
	gs := make([]float64, 0, n)
	bs := make([]float64, 0, n)
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			c := FromColor(img.At(x, y))
			rs = append(rs, float64(c.R))
			gs = append(gs, float64(c.G))
			bs = append(bs, float64(c.B))
		}
	}
	return RGB{
		R: Channel(stat.Mean(rs, nil)),
		G: Channel(stat.Mean(gs, nil)),
		B: Channel(stat.Mean(bs, nil)),
	}
}
