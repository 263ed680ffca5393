// Package histogram computes per-channel and luminance intensity
// distributions for decoded images, sampling large images at a fixed
// stride so cost stays bounded regardless of resolution.
//
// The Scheduler debounces computation behind image navigation: only the
// image still open after the settle delay gets a histogram.
package histogram
