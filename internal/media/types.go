package media

import (
	"errors"
	"time"
)

// ImageAsset identifies one image on disk. Identity is the absolute
// path; the modification time distinguishes re-written files from the
// cached entries keyed on them. Width, Height, and Format stay zero
// until probed.
type ImageAsset struct {
	Path    string
	ModTime time.Time
	Size    int64
	Width   int
	Height  int
	Format  string
}

// Key returns the cache identity (path, mtime) for this asset.
func (a ImageAsset) Key() AssetKey {
	return AssetKey{Path: a.Path, ModTime: a.ModTime}
}

// AssetKey is the (path, modification time) pair thumbnail entries are
// keyed by.
type AssetKey struct {
	Path    string
	ModTime time.Time
}

// ErrUnsupportedFormat indicates a file whose format no decoder
// understands. At the thumbnail layer it is treated identically to any
// other decode failure.
var ErrUnsupportedFormat = errors.New("unsupported image format")

// ImageExtensions maps file extensions to whether they are treated as
// candidate image formats during directory scans. Decode capability is
// still decided by the decoder itself.
var ImageExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true,
	".bmp": true, ".webp": true, ".tiff": true, ".tif": true,
	".ico": true,
	// RAW camera formats, decodable only when a vips build supports them
	".arw": true, ".cr2": true, ".cr3": true, ".nef": true,
	".dng": true, ".raw": true, ".orf": true, ".pef": true,
	".rw2": true, ".srw": true, ".x3f": true,
}
