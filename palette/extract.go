package palette

import (
	"image"
	"image/color"
	"math"
	"slices"

	"github.com/cenkalti/dominantcolor"
	"github.com/disintegration/imaging"
	"github.com/ericpauley/go-quantize/quantize"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/muesli/clusters"
	"github.com/muesli/kmeans"
	"go.uber.org/zap"
)

// DefaultSize is the palette length used when callers pass k <= 0.
const DefaultSize = 10

// maxSamples bounds the number of pixels fed to the clustering step.
const maxSamples = 12000

// Palette is an ordered set of representative colors. Entries are never
// modified after extraction.
type Palette []RGB

type Method int

const (
	MethodMedianCut Method = iota
	MethodDominant
	MethodKMeans
)

func (m Method) String() string {
	switch m {
	case MethodDominant:
		return "dominant"
	case MethodKMeans:
		return "kmeans"
	default:
		return "mediancut"
	}
}

// ParseMethod maps a method name to its Method. Unknown names select median
// cut.
func ParseMethod(s string) Method {
	switch s {
	case "dominant", "dominantcolor":
		return MethodDominant
	case "kmeans":
		return MethodKMeans
	default:
		return MethodMedianCut
	}
}

type weightedColor struct {
	Col    colorful.Color
	Weight float64
}

// Extract reduces img to at most k representative colors. It never fails:
// an empty image yields an empty palette, anything else at least one color.
func Extract(img image.Image, k int, method Method) Palette {
	return ExtractLogged(img, k, method, zap.NewNop())
}

// ExtractLogged is Extract with fallbacks reported to log.
func ExtractLogged(img image.Image, k int, method Method, log *zap.Logger) Palette {
	if k <= 0 {
		k = DefaultSize
	}
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil
	}
	switch method {
	case MethodKMeans:
		p := ExtractKMeans(img, k)
		if len(p) != 0 {
			return p
		}
		log.Warn("kmeans returned empty palette, falling back to dominant color", zap.Int("k", k))
		return ExtractDominant(img, k)
	case MethodDominant:
		return ExtractDominant(img, k)
	default:
		return ExtractMedianCut(img, k)
	}
}

// sample returns a nearest-neighbor subsample of img holding at most
// maxSamples pixels. Nearest-neighbor keeps real pixel colors.
func sample(img image.Image) *image.NRGBA {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w*h <= maxSamples {
		return imaging.Clone(img)
	}
	scale := math.Sqrt(float64(maxSamples) / float64(w*h))
	sw := max(1, int(float64(w)*scale))
	sh := max(1, int(float64(h)*scale))
	return imaging.Resize(img, sw, sh, imaging.NearestNeighbor)
}

// ignoreWeight skips almost-white and mostly transparent pixels.
func ignoreWeight(m image.Image, x, y int) uint32 {
	c := color.NRGBAModel.Convert(m.At(x, y)).(color.NRGBA)
	if c.A < 125 {
		return 0
	}
	if c.R > 250 && c.G > 250 && c.B > 250 {
		return 0
	}
	return 1
}

// ExtractMedianCut quantizes img with median cut and orders the resulting
// colors by how many sampled pixels fall closest to each.
func ExtractMedianCut(img image.Image, k int) Palette {
	if k <= 0 {
		return nil
	}
	src := sample(img)

	q := quantize.MedianCutQuantizer{
		Aggregation: quantize.Mean,
		Weighting:   ignoreWeight,
	}
	pal := q.Quantize(make(color.Palette, 0, k), src)
	if len(pal) == 0 {
		// Every pixel was ignored; quantize them all instead.
		q.Weighting = nil
		pal = q.Quantize(make(color.Palette, 0, k), src)
	}
	if len(pal) == 0 {
		return nil
	}

	counts := make([]int, len(pal))
	b := src.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			counts[pal.Index(src.NRGBAAt(x, y))]++
		}
	}

	order := make([]int, len(pal))
	for i := range order {
		order[i] = i
	}
	// Stable keeps quantizer order among equally sized clusters.
	slices.SortStableFunc(order, func(a, b int) int {
		return counts[b] - counts[a]
	})

	out := make(Palette, 0, len(pal))
	for _, i := range order {
		c := FromColor(pal[i])
		if !slices.Contains(out, c) {
			out = append(out, c)
		}
	}
	return out
}

// ExtractDominant picks diverse colors among dominantcolor's weighted
// candidates.
func ExtractDominant(img image.Image, k int) Palette {
	if k <= 0 {
		return nil
	}

	nCandidates := max(24, k*8)
	candidates := dominantcolor.FindWeight(img, nCandidates)
	if len(candidates) == 0 {
		candidates = append(candidates, dominantcolor.Color{
			RGBA:   color.RGBA{R: 128, G: 128, B: 128, A: 255},
			Weight: 1.0,
		})
	}

	weighted := make([]weightedColor, 0, len(candidates))
	for _, c := range candidates {
		col, _ := colorful.MakeColor(c.RGBA)
		w := c.Weight
		if w <= 0 {
			w = 1e-6
		}
		weighted = append(weighted, weightedColor{Col: col.Clamped(), Weight: w})
	}
	return selectDiverse(weighted, k)
}

// ExtractKMeans clusters a subsample of opaque pixels in RGB space.
func ExtractKMeans(img image.Image, k int) Palette {
	if k <= 0 {
		return nil
	}
	src := sample(img)
	b := src.Bounds()

	dataset := make(clusters.Observations, 0, b.Dx()*b.Dy())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := src.NRGBAAt(x, y)
			if c.A == 0 {
				continue
			}
			dataset = append(dataset, clusters.Coordinates{
				float64(c.R) / 255.0,
				float64(c.G) / 255.0,
				float64(c.B) / 255.0,
			})
		}
	}
	if len(dataset) == 0 {
		return nil
	}

	workK := min(max(k*4, k+2), len(dataset))
	km := kmeans.New()
	cc, err := km.Partition(dataset, workK)
	if err != nil || len(cc) == 0 {
		return nil
	}

	slices.SortStableFunc(cc, func(a, b clusters.Cluster) int {
		return len(b.Observations) - len(a.Observations)
	})

	weighted := make([]weightedColor, 0, len(cc))
	for _, c := range cc {
		if len(c.Center) < 3 || len(c.Observations) == 0 {
			continue
		}
		col := colorful.Color{R: c.Center[0], G: c.Center[1], B: c.Center[2]}.Clamped()
		weighted = append(weighted, weightedColor{Col: col, Weight: float64(len(c.Observations))})
	}
	return selectDiverse(weighted, k)
}

// selectDiverse seeds with the heaviest candidate and then greedily adds the
// candidate that is farthest in Lab from everything chosen, biased by weight.
func selectDiverse(cands []weightedColor, k int) Palette {
	if k <= 0 || len(cands) == 0 {
		return nil
	}
	type item struct {
		col colorful.Color
		lab [3]float64
		w   float64
	}
	items := make([]item, 0, len(cands))
	maxW := 0.0
	for _, c := range cands {
		l, a, b := c.Col.Lab()
		maxW = max(maxW, c.Weight)
		items = append(items, item{col: c.Col, lab: [3]float64{l, a, b}, w: c.Weight})
	}
	k = min(k, len(items))
	if maxW <= 0 {
		maxW = 1.0
	}

	selected := make([]bool, len(items))
	order := make([]int, 0, k)

	seed := 0
	for i := 1; i < len(items); i++ {
		if items[i].w > items[seed].w {
			seed = i
		}
	}
	selected[seed] = true
	order = append(order, seed)

	for len(order) < k {
		bestIdx, bestScore := -1, -1.0
		for i := range items {
			if selected[i] {
				continue
			}
			minD2 := math.MaxFloat64
			for _, s := range order {
				d0 := items[i].lab[0] - items[s].lab[0]
				d1 := items[i].lab[1] - items[s].lab[1]
				d2 := items[i].lab[2] - items[s].lab[2]
				minD2 = min(minD2, d0*d0+d1*d1+d2*d2)
			}
			score := math.Sqrt(minD2) * (0.55 + 0.45*math.Sqrt(items[i].w/maxW))
			if score > bestScore {
				bestScore = score
				bestIdx = i
			}
		}
		if bestIdx < 0 {
			break
		}
		selected[bestIdx] = true
		order = append(order, bestIdx)
	}

	out := make(Palette, 0, len(order))
	for _, idx := range order {
		c := FromColorful(items[idx].col)
		if !slices.Contains(out, c) {
			out = append(out, c)
		}
	}
	return out
}

// SortByBrightness orders colors from darkest to brightest by relative
// luminance.
func SortByBrightness(p Palette) {
	slices.SortStableFunc(p, func(a, b RGB) int {
		ya, yb := Luminance(a), Luminance(b)
		switch {
		case ya < yb:
			return -1
		case ya > yb:
			return 1
		}
		return 0
	})
}
