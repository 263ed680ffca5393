// Package exifmeta extracts the camera tags shown alongside an open
// image. It is a display data source only; no core component consumes
// the extracted values.
package exifmeta
