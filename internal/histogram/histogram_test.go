package histogram

import (
	"image"
	"image/color"
	"testing"
)

func uniformImage(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func binSum(bins [Bins]int) int {
	sum := 0
	for _, n := range bins {
		sum += n
	}
	return sum
}

func TestComputeSmallImageReadsEveryPixel(t *testing.T) {
	img := uniformImage(100, 50, color.NRGBA{R: 10, G: 20, B: 30, A: 255})

	res := Compute(img)
	if res.Sampled {
		t.Error("Sampled = true for an image below the threshold")
	}
	if res.Samples != 5000 {
		t.Errorf("Samples = %d, want 5000", res.Samples)
	}
	if res.R[10] != 5000 || res.G[20] != 5000 || res.B[30] != 5000 {
		t.Errorf("uniform color not concentrated in single bins: R[10]=%d G[20]=%d B[30]=%d",
			res.R[10], res.G[20], res.B[30])
	}
}

func TestComputeBinSumsEqualSamples(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 137, 91))
	for y := 0; y < 91; y++ {
		for x := 0; x < 137; x++ {
			img.SetNRGBA(x, y, color.NRGBA{
				R: uint8((x * 7) % 256),
				G: uint8((y * 13) % 256),
				B: uint8((x + y) % 256),
				A: 255,
			})
		}
	}

	res := Compute(img)
	for name, bins := range map[string][Bins]int{
		"red": res.R, "green": res.G, "blue": res.B, "luminance": res.Luminance,
	} {
		if sum := binSum(bins); sum != res.Samples {
			t.Errorf("%s bins sum to %d, want %d", name, sum, res.Samples)
		}
	}
}

func TestComputeLargeImageSamples(t *testing.T) {
	// 1200x900 = 1,080,000 pixels, just above the threshold.
	img := uniformImage(1200, 900, color.NRGBA{R: 128, G: 128, B: 128, A: 255})

	res := Compute(img)
	if !res.Sampled {
		t.Fatal("Sampled = false for an image above the threshold")
	}
	if res.Samples >= 1200*900 {
		t.Errorf("Samples = %d, want fewer than total pixels", res.Samples)
	}
	if res.Samples > SampleThreshold {
		t.Errorf("Samples = %d exceeds the threshold bound %d", res.Samples, SampleThreshold)
	}
	if sum := binSum(res.R); sum != res.Samples {
		t.Errorf("red bins sum to %d, want %d", sum, res.Samples)
	}
}

func TestLuminanceFormula(t *testing.T) {
	tests := []struct {
		r, g, b uint8
		want    int
	}{
		{0, 0, 0, 0},
		{255, 255, 255, 255},
		{255, 0, 0, 76},   // round(0.299*255)
		{0, 255, 0, 150},  // round(0.587*255)
		{0, 0, 255, 29},   // round(0.114*255)
		{128, 128, 128, 128},
	}

	for _, tt := range tests {
		if got := luminance(tt.r, tt.g, tt.b); got != tt.want {
			t.Errorf("luminance(%d, %d, %d) = %d, want %d", tt.r, tt.g, tt.b, got, tt.want)
		}
	}
}

func TestComputeImageConvertsNonNRGBA(t *testing.T) {
	gray := image.NewGray(image.Rect(0, 0, 10, 10))
	for y := 0; y < 10; y++ {
		for x := 0; x < 10; x++ {
			gray.SetGray(x, y, color.Gray{Y: 200})
		}
	}

	res := ComputeImage(gray)
	if res.Samples != 100 {
		t.Errorf("Samples = %d, want 100", res.Samples)
	}
	if res.R[200] != 100 {
		t.Errorf("R[200] = %d, want 100", res.R[200])
	}
}

func TestComputeEmptyImage(t *testing.T) {
	res := Compute(image.NewNRGBA(image.Rect(0, 0, 0, 0)))
	if res.Samples != 0 {
		t.Errorf("Samples = %d, want 0", res.Samples)
	}
}
