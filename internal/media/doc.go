// Package media provides the image-facing plumbing of the viewer:
// directory scanning, image decoding with size constraints, an optional
// libvips fast path, and the asynchronous thumbnail cache.
//
// The ThumbnailCache owns a single long-lived worker goroutine that
// decodes and downsizes images one at a time. Populate and Cancel are
// non-blocking; superseded work is discarded by generation counter at
// the point of result delivery.
package media
