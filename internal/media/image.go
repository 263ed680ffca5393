package media

import (
	"errors"
	"fmt"
	"image"
	"os"
	"time"

	"image-viewer/internal/logging"
	"image-viewer/internal/metrics"

	// Image format decoders
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp" // WebP format support
)

const (
	// MaxImageDimension is the maximum width or height loaded at full
	// resolution. Larger images are downscaled during load.
	MaxImageDimension = 4096

	// MaxImagePixels caps total pixels (width * height). A 20MP image
	// uses ~80MB decoded to RGBA.
	MaxImagePixels = 20_000_000
)

// Decoder turns a file path into a decoded image. The thumbnail cache
// and the viewer both consume this interface so tests can substitute a
// fake.
type Decoder interface {
	Decode(path string) (image.Image, error)
}

// FileDecoder decodes images from disk, preferring the libvips path when
// available and falling back to pure-Go decoding.
type FileDecoder struct{}

// NewFileDecoder returns the production decoder.
func NewFileDecoder() *FileDecoder {
	return &FileDecoder{}
}

// Decode loads the image at path, downscaling oversized images so a
// single decode cannot exhaust memory.
func (d *FileDecoder) Decode(path string) (image.Image, error) {
	return LoadImageConstrained(path, MaxImageDimension, MaxImagePixels)
}

// LoadImageConstrained loads an image, downscaling if it exceeds the
// given limits. This prevents OOM when opening very large images.
func LoadImageConstrained(path string, maxDimension, maxPixels int) (image.Image, error) {
	dims, err := GetImageDimensions(path)
	if err != nil {
		logging.Debug("Could not probe dimensions for %s: %v, decoding directly", path, err)
		return decodeFile(path, 0, 0)
	}

	width, height := dims.Width, dims.Height
	if width > maxDimension || height > maxDimension || width*height > maxPixels {
		targetWidth, targetHeight := constrainDimensions(width, height, maxDimension, maxPixels)
		logging.Info("Constraining large image %s from %dx%d to %dx%d",
			path, width, height, targetWidth, targetHeight)
		return decodeFile(path, targetWidth, targetHeight)
	}

	return decodeFile(path, 0, 0)
}

// decodeFile decodes path, optionally shrinking to the target size.
// targetWidth/targetHeight of 0 means full resolution.
func decodeFile(path string, targetWidth, targetHeight int) (image.Image, error) {
	if IsVipsAvailable() && targetWidth > 0 {
		start := time.Now()
		img, err := LoadImageWithVips(path, targetWidth, targetHeight)
		metrics.DecodeDuration.WithLabelValues("vips").Observe(time.Since(start).Seconds())
		if err == nil {
			metrics.DecodeTotal.WithLabelValues("vips", "success").Inc()
			return img, nil
		}
		metrics.DecodeTotal.WithLabelValues("vips", "error").Inc()
		logging.Debug("vips decode failed for %s: %v, falling back to pure Go", path, err)
	}

	start := time.Now()
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	metrics.DecodeDuration.WithLabelValues("imaging").Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.DecodeTotal.WithLabelValues("imaging", "error").Inc()
		if errors.Is(err, imaging.ErrUnsupportedFormat) {
			return nil, fmt.Errorf("%s: %w", path, ErrUnsupportedFormat)
		}
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	metrics.DecodeTotal.WithLabelValues("imaging", "success").Inc()

	if targetWidth > 0 {
		img = imaging.Fit(img, targetWidth, targetHeight, imaging.Lanczos)
	}
	return img, nil
}

// constrainDimensions computes target dimensions that respect both the
// per-axis maximum and the total pixel budget, preserving aspect ratio.
func constrainDimensions(width, height, maxDimension, maxPixels int) (int, int) {
	targetWidth, targetHeight := width, height

	if width > maxDimension || height > maxDimension {
		if width > height {
			targetWidth = maxDimension
			targetHeight = height * maxDimension / width
		} else {
			targetHeight = maxDimension
			targetWidth = width * maxDimension / height
		}
	}

	if targetWidth*targetHeight > maxPixels {
		scale := float64(maxPixels) / float64(targetWidth*targetHeight)
		targetWidth = int(float64(targetWidth) * scale)
		targetHeight = int(float64(targetHeight) * scale)
	}

	if targetWidth < 1 {
		targetWidth = 1
	}
	if targetHeight < 1 {
		targetHeight = 1
	}
	return targetWidth, targetHeight
}

// ImageDimensions holds image width and height.
type ImageDimensions struct {
	Width  int
	Height int
}

// GetImageDimensions returns image dimensions without fully decoding
// the image.
func GetImageDimensions(path string) (*ImageDimensions, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := file.Close(); err != nil {
			logging.Warn("failed to close image file %s: %v", path, err)
		}
	}()

	config, _, err := image.DecodeConfig(file)
	if err != nil {
		return nil, err
	}

	return &ImageDimensions{Width: config.Width, Height: config.Height}, nil
}

// DetectFormat sniffs the image format from the file header rather than
// trusting the extension. Returns "unknown" for unrecognized content.
func DetectFormat(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	header := make([]byte, 32)
	n, err := file.Read(header)
	if err != nil {
		return "", err
	}
	header = header[:n]

	switch {
	case len(header) >= 3 && header[0] == 0xFF && header[1] == 0xD8 && header[2] == 0xFF:
		return "jpeg", nil

	case len(header) >= 4 && header[0] == 0x89 && header[1] == 0x50 && header[2] == 0x4E && header[3] == 0x47:
		return "png", nil

	case len(header) >= 4 && header[0] == 0x47 && header[1] == 0x49 && header[2] == 0x46 && header[3] == 0x38:
		return "gif", nil

	case len(header) >= 12 && header[0] == 0x52 && header[1] == 0x49 && header[2] == 0x46 && header[3] == 0x46 &&
		header[8] == 0x57 && header[9] == 0x45 && header[10] == 0x42 && header[11] == 0x50:
		return "webp", nil

	case len(header) >= 2 && header[0] == 0x42 && header[1] == 0x4D:
		return "bmp", nil

	case len(header) >= 4 && ((header[0] == 0x49 && header[1] == 0x49 && header[2] == 0x2A && header[3] == 0x00) ||
		(header[0] == 0x4D && header[1] == 0x4D && header[2] == 0x00 && header[3] == 0x2A)):
		return "tiff", nil
	}

	return "unknown", nil
}
