package exifmeta

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"image-viewer/internal/logging"

	"github.com/rwcarlsen/goexif/exif"
)

// Extract reads the camera tags of the image at path. Images without
// EXIF data yield an empty map, not an error; only I/O failures are
// reported.
func Extract(path string) (map[string]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer file.Close()

	tags := make(map[string]string)

	x, err := exif.Decode(file)
	if err != nil {
		// PNG, BMP, and stripped JPEGs simply have no EXIF block.
		logging.Debug("No EXIF data in %s: %v", path, err)
		return tags, nil
	}

	if make_, err := x.Get(exif.Make); err == nil {
		tags["Camera Make"] = cleanString(make_.String())
	}
	if model, err := x.Get(exif.Model); err == nil {
		tags["Camera Model"] = cleanString(model.String())
	}
	if dt, err := x.Get(exif.DateTime); err == nil {
		tags["Date Taken"] = cleanString(dt.String())
	}
	if exposure, err := x.Get(exif.ExposureTime); err == nil {
		if numer, denom, err := exposure.Rat2(0); err == nil && denom != 0 {
			tags["Exposure"] = fmt.Sprintf("%d/%d s", numer, denom)
		}
	}
	if fNum, err := x.Get(exif.FNumber); err == nil {
		if numer, denom, err := fNum.Rat2(0); err == nil && denom != 0 {
			tags["Aperture"] = fmt.Sprintf("f/%.1f", float64(numer)/float64(denom))
		}
	}
	if iso, err := x.Get(exif.ISOSpeedRatings); err == nil {
		if v, err := iso.Int(0); err == nil {
			tags["ISO"] = strconv.Itoa(v)
		}
	}
	if focal, err := x.Get(exif.FocalLength); err == nil {
		if numer, denom, err := focal.Rat2(0); err == nil && denom != 0 {
			tags["Focal Length"] = fmt.Sprintf("%.1f mm", float64(numer)/float64(denom))
		}
	}

	return tags, nil
}

// cleanString strips the quoting goexif's String() adds to ASCII tags.
func cleanString(s string) string {
	return strings.TrimSpace(strings.Trim(s, `"`))
}
