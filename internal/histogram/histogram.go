package histogram

import (
	"image"
	"time"

	"image-viewer/internal/logging"
	"image-viewer/internal/metrics"

	"github.com/disintegration/imaging"
)

const (
	// Bins is the number of intensity bins per channel.
	Bins = 256

	// SampleThreshold is the pixel count above which the computer
	// samples at a stride instead of reading every pixel. The stride is
	// chosen so the number of samples stays near this constant no
	// matter how large the image is.
	SampleThreshold = 1_000_000
)

// Result holds the per-channel and luminance distributions of one
// image. Bin counts are relative to Samples, not the image's true pixel
// count; callers wanting percentages divide by Samples.
type Result struct {
	R         [Bins]int
	G         [Bins]int
	B         [Bins]int
	Luminance [Bins]int

	// Samples is the number of pixels read.
	Samples int

	// Sampled reports whether stride sampling was applied.
	Sampled bool
}

// Compute derives the distributions from an NRGBA pixel buffer. Images
// above SampleThreshold pixels are sampled at a fixed stride along a
// row-major scan.
func Compute(img *image.NRGBA) *Result {
	start := time.Now()

	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	total := width * height

	res := &Result{}
	if total == 0 {
		return res
	}

	stride := 1
	if total > SampleThreshold {
		stride = (total + SampleThreshold - 1) / SampleThreshold
		res.Sampled = true
	}

	for p := 0; p < total; p += stride {
		x := p % width
		y := p / width
		i := y*img.Stride + x*4

		r := img.Pix[i]
		g := img.Pix[i+1]
		b := img.Pix[i+2]

		res.R[r]++
		res.G[g]++
		res.B[b]++
		res.Luminance[luminance(r, g, b)]++
		res.Samples++
	}

	mode := "full"
	if res.Sampled {
		mode = "sampled"
	}
	metrics.HistogramComputesTotal.WithLabelValues(mode).Inc()
	metrics.HistogramComputeDuration.Observe(time.Since(start).Seconds())
	logging.Debug("Histogram: %d samples of %d pixels (%s) in %v",
		res.Samples, total, mode, time.Since(start))

	return res
}

// ComputeImage converts an arbitrary decoded image to NRGBA and
// computes its histogram.
func ComputeImage(img image.Image) *Result {
	if nrgba, ok := img.(*image.NRGBA); ok {
		return Compute(nrgba)
	}
	return Compute(imaging.Clone(img))
}

// luminance is the fixed-weight ITU-R BT.601 formula, rounded to
// nearest and clamped to [0, 255].
func luminance(r, g, b uint8) int {
	l := int(0.299*float64(r) + 0.587*float64(g) + 0.114*float64(b) + 0.5)
	if l < 0 {
		return 0
	}
	if l > 255 {
		return 255
	}
	return l
}
