package viewer

import (
	"fmt"
	"image"
	"sync"
	"time"

	"image-viewer/internal/exifmeta"
	"image-viewer/internal/histogram"
	"image-viewer/internal/logging"
	"image-viewer/internal/media"
	"image-viewer/internal/viewport"
)

// watchSettle coalesces filesystem event bursts before a rescan.
const watchSettle = 250 * time.Millisecond

// OpenImage is the currently open image with everything derived from
// it. At most one image is open per session.
type OpenImage struct {
	Asset    media.ImageAsset
	Image    image.Image
	Metadata map[string]string
}

// Options configures a Session. Zero values use defaults.
type Options struct {
	// Decoder overrides the production file decoder, for tests.
	Decoder media.Decoder

	// ThumbnailBox is the thumbnail bounding box side (default 120).
	ThumbnailBox int

	// HistogramDelay is the debounce before histogram work starts.
	HistogramDelay time.Duration

	// Viewport bounds the zoom range and step.
	Viewport viewport.Config

	// DisableWatch skips the filesystem watch in OpenDirectory.
	DisableWatch bool
}

// Session binds the open image to its viewport state, debounced
// histogram, and metadata, and owns directory navigation. It replaces
// ambient "current image" globals with one explicit context object.
type Session struct {
	decoder media.Decoder
	scanner *media.Scanner
	thumbs  *media.ThumbnailCache
	engine  *viewport.Engine
	sched   *histogram.Scheduler
	watch   bool

	mu        sync.Mutex
	directory string
	assets    []media.ImageAsset
	index     int
	open      *OpenImage

	onHistogram func(path string, res *histogram.Result)
}

// NewSession creates a session and starts the thumbnail worker.
func NewSession(opts Options) *Session {
	decoder := opts.Decoder
	if decoder == nil {
		decoder = media.NewFileDecoder()
	}
	vp := opts.Viewport
	if vp == (viewport.Config{}) {
		vp = viewport.DefaultConfig()
	}
	return &Session{
		decoder: decoder,
		scanner: media.NewScanner(),
		thumbs:  media.NewThumbnailCache(decoder, opts.ThumbnailBox),
		engine:  viewport.NewEngine(vp),
		sched:   histogram.NewScheduler(opts.HistogramDelay),
		watch:   !opts.DisableWatch,
		index:   -1,
	}
}

// OnHistogram registers the callback invoked when a debounced histogram
// computation finishes. The callback runs off the main context; keep it
// cheap or hand off.
func (s *Session) OnHistogram(fn func(path string, res *histogram.Result)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onHistogram = fn
}

// Engine returns the viewport transform engine for the open image.
func (s *Session) Engine() *viewport.Engine {
	return s.engine
}

// Thumbnails returns the thumbnail cache feeding the directory listing.
func (s *Session) Thumbnails() *media.ThumbnailCache {
	return s.thumbs
}

// OpenDirectory scans directory, queues thumbnail generation for every
// image found, and watches for changes. Thumbnails stream in on the
// cache's result channel.
func (s *Session) OpenDirectory(directory string) ([]media.ImageAsset, error) {
	assets, err := s.scanner.Scan(directory)
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", directory, err)
	}

	s.mu.Lock()
	s.directory = directory
	s.assets = assets
	s.index = -1
	s.mu.Unlock()

	s.thumbs.Populate(directory, assets)

	if s.watch {
		if err := s.scanner.Watch(directory, watchSettle, s.refresh); err != nil {
			logging.Warn("Could not watch %s: %v", directory, err)
		}
	}

	logging.Info("Opened directory %s: %d images", directory, len(assets))
	return assets, nil
}

// refresh rescans the current directory after the watcher reports
// changes and re-populates the thumbnail queue.
func (s *Session) refresh() {
	s.mu.Lock()
	directory := s.directory
	s.mu.Unlock()
	if directory == "" {
		return
	}

	assets, err := s.scanner.Scan(directory)
	if err != nil {
		logging.Warn("Rescan of %s failed: %v", directory, err)
		return
	}

	s.mu.Lock()
	s.assets = assets
	s.mu.Unlock()

	s.thumbs.Populate(directory, assets)
}

// Open decodes the image at path and makes it the open image: the
// viewport resets to Fit, metadata is extracted, and a histogram is
// scheduled behind the debounce delay. Opening a new image cancels the
// pending histogram of the previous one.
func (s *Session) Open(path string) (*OpenImage, error) {
	img, err := s.decoder.Decode(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}

	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width <= 0 || height <= 0 {
		// Reject degenerate input here; the engine assumes positive dims.
		return nil, fmt.Errorf("image %s has degenerate dimensions %dx%d", path, width, height)
	}

	metadata, err := exifmeta.Extract(path)
	if err != nil {
		logging.Debug("Metadata extraction failed for %s: %v", path, err)
		metadata = map[string]string{}
	}

	format, err := media.DetectFormat(path)
	if err != nil {
		format = "unknown"
	}

	s.mu.Lock()
	asset := media.ImageAsset{Path: path, Width: width, Height: height, Format: format}
	for i, a := range s.assets {
		if a.Path == path {
			asset.ModTime = a.ModTime
			asset.Size = a.Size
			s.index = i
			break
		}
	}
	open := &OpenImage{Asset: asset, Image: img, Metadata: metadata}
	s.open = open
	onHistogram := s.onHistogram
	s.mu.Unlock()

	if err := s.engine.SetImage(width, height); err != nil {
		return nil, err
	}

	s.sched.Schedule(path, func() {
		res := histogram.ComputeImage(img)
		if onHistogram != nil {
			onHistogram(path, res)
		}
	})

	return open, nil
}

// Current returns the open image, or nil.
func (s *Session) Current() *OpenImage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.open
}

// Next opens the next image in the directory listing. Returns nil with
// no error at the end of the listing.
func (s *Session) Next() (*OpenImage, error) {
	return s.step(1)
}

// Previous opens the previous image in the directory listing. Returns
// nil with no error at the start of the listing.
func (s *Session) Previous() (*OpenImage, error) {
	return s.step(-1)
}

func (s *Session) step(delta int) (*OpenImage, error) {
	s.mu.Lock()
	next := s.index + delta
	if next < 0 || next >= len(s.assets) {
		s.mu.Unlock()
		return nil, nil
	}
	path := s.assets[next].Path
	s.mu.Unlock()

	return s.Open(path)
}

// SetViewport forwards the display surface size to the engine and
// re-fits the open image.
func (s *Session) SetViewport(width, height int) error {
	if err := s.engine.SetViewport(width, height); err != nil {
		return err
	}
	if s.Current() != nil {
		s.engine.Fit()
	}
	return nil
}

// Close releases the session: the watcher stops, pending histogram work
// is dropped, and the thumbnail worker shuts down.
func (s *Session) Close() {
	s.scanner.StopWatch()
	s.sched.Cancel()
	s.thumbs.Close()
}
