package media

import (
	"image"
	"image/color"
	"sync"
	"time"

	"image-viewer/internal/logging"
	"image-viewer/internal/metrics"

	"github.com/disintegration/imaging"
)

const (
	// ThumbnailBoxSize is the side of the square box thumbnails are fit
	// into, preserving aspect ratio.
	ThumbnailBoxSize = 120

	// resultBuffer bounds the result channel. The display layer drains
	// it continuously; the buffer only absorbs short consumer stalls.
	resultBuffer = 128
)

// EntryState is the lifecycle state of a thumbnail entry. States only
// move forward; a newer generation replaces an entry wholesale instead
// of rewinding it.
type EntryState int

const (
	// StatePending means the entry is queued but not started.
	StatePending EntryState = iota
	// StateLoading means the worker is decoding the entry.
	StateLoading
	// StateReady means the thumbnail bitmap is available.
	StateReady
	// StateFailed means decoding failed; no retry is attempted.
	StateFailed
)

// String returns the state name.
func (s EntryState) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// ThumbnailEntry is one cached thumbnail, keyed by (path, mtime). The
// Image is written exactly once, at the Ready transition, and read-only
// afterwards.
type ThumbnailEntry struct {
	Path    string
	ModTime time.Time
	State   EntryState
	Image   *image.NRGBA
	Err     error
}

// ThumbnailResult is delivered on the results channel as jobs complete.
// Exactly one of Image and Err is set.
type ThumbnailResult struct {
	Path  string
	Image *image.NRGBA
	Err   error
}

type thumbnailJob struct {
	path    string
	modTime time.Time
	gen     uint64
}

// ThumbnailCache owns the asynchronous thumbnail pipeline: a FIFO queue
// of pending paths consumed by a single long-lived worker goroutine.
// Populate and Cancel never block on decode work; stale results are
// discarded by generation at the point of delivery.
type ThumbnailCache struct {
	decoder Decoder
	boxSize int

	mu          sync.Mutex
	cond        *sync.Cond
	queue       []thumbnailJob
	entries     map[string]*ThumbnailEntry
	directory   string
	generation  uint64
	placeholder *image.NRGBA
	closed      bool

	results chan ThumbnailResult
	done    chan struct{}
}

// NewThumbnailCache creates the cache and starts its worker. boxSize of
// 0 uses ThumbnailBoxSize.
func NewThumbnailCache(decoder Decoder, boxSize int) *ThumbnailCache {
	if boxSize <= 0 {
		boxSize = ThumbnailBoxSize
	}
	c := &ThumbnailCache{
		decoder: decoder,
		boxSize: boxSize,
		entries: make(map[string]*ThumbnailEntry),
		results: make(chan ThumbnailResult, resultBuffer),
		done:    make(chan struct{}),
	}
	c.cond = sync.NewCond(&c.mu)
	go c.worker()
	return c
}

// Results returns the channel thumbnail outcomes are delivered on, in
// completion order. Failures arrive on the same channel as successes.
func (c *ThumbnailCache) Results() <-chan ThumbnailResult {
	return c.results
}

// Populate replaces the active job set with one job per asset and
// returns immediately. Switching to a different directory discards all
// entries wholesale; re-populating the same directory keeps Ready
// entries so unchanged files are not decoded again.
func (c *ThumbnailCache) Populate(directory string, assets []ImageAsset) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.generation++
	metrics.ThumbnailGeneration.Set(float64(c.generation))

	if directory != c.directory {
		logging.Debug("Thumbnail cache: directory change %q -> %q, clearing %d entries",
			c.directory, directory, len(c.entries))
		c.entries = make(map[string]*ThumbnailEntry)
		c.directory = directory
	}

	c.queue = c.queue[:0]
	for _, asset := range assets {
		existing, ok := c.entries[asset.Path]
		if !ok || !existing.ModTime.Equal(asset.ModTime) || existing.State != StateReady {
			// Replace wholesale, never rewind an entry in place. Only a
			// Ready entry with an unchanged mtime survives a re-populate.
			c.entries[asset.Path] = &ThumbnailEntry{
				Path:    asset.Path,
				ModTime: asset.ModTime,
				State:   StatePending,
			}
		}
		c.queue = append(c.queue, thumbnailJob{
			path:    asset.Path,
			modTime: asset.ModTime,
			gen:     c.generation,
		})
	}
	metrics.ThumbnailQueueDepth.Set(float64(len(c.queue)))

	logging.Debug("Thumbnail populate: %d jobs, generation %d", len(assets), c.generation)
	c.cond.Signal()
}

// Cancel invalidates all queued and in-flight jobs without blocking.
// An in-flight decode still runs to completion on the worker; its
// result is dropped at delivery.
func (c *ThumbnailCache) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.generation++
	metrics.ThumbnailGeneration.Set(float64(c.generation))
	c.queue = c.queue[:0]
	metrics.ThumbnailQueueDepth.Set(0)
	logging.Debug("Thumbnail cancel: generation now %d", c.generation)
}

// Entry returns a snapshot of the entry for path, if any. The returned
// Image pointer is safe for concurrent reads once Ready.
func (c *ThumbnailCache) Entry(path string) (ThumbnailEntry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[path]
	if !ok {
		return ThumbnailEntry{}, false
	}
	return *entry, true
}

// Image returns the bitmap to paint for path: the Ready thumbnail, or
// the shared placeholder while the entry is Pending, Loading, Failed,
// or unknown.
func (c *ThumbnailCache) Image(path string) *image.NRGBA {
	c.mu.Lock()
	defer c.mu.Unlock()

	if entry, ok := c.entries[path]; ok && entry.State == StateReady {
		return entry.Image
	}
	if c.placeholder == nil {
		c.placeholder = Placeholder(c.boxSize)
	}
	return c.placeholder
}

// Placeholder builds the neutral gray square shown in the listing for
// entries without a decoded thumbnail yet.
func Placeholder(boxSize int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, boxSize, boxSize))
	gray := color.NRGBA{R: 0x3a, G: 0x3a, B: 0x3a, A: 0xff}
	border := color.NRGBA{R: 0x55, G: 0x55, B: 0x55, A: 0xff}
	for y := 0; y < boxSize; y++ {
		for x := 0; x < boxSize; x++ {
			if x == 0 || y == 0 || x == boxSize-1 || y == boxSize-1 {
				img.SetNRGBA(x, y, border)
			} else {
				img.SetNRGBA(x, y, gray)
			}
		}
	}
	return img
}

// Generation returns the current populate generation.
func (c *ThumbnailCache) Generation() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generation
}

// Close stops the worker. Pending jobs are abandoned; the results
// channel is closed once the worker exits.
func (c *ThumbnailCache) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.cond.Signal()
	c.mu.Unlock()

	<-c.done
	close(c.results)
}

// worker is the single background consumer. It dequeues jobs FIFO,
// decodes one image at a time, and checks the generation again before
// delivering so work from a superseded Populate is silently dropped.
func (c *ThumbnailCache) worker() {
	defer close(c.done)

	for {
		c.mu.Lock()
		for len(c.queue) == 0 && !c.closed {
			c.cond.Wait()
		}
		if c.closed {
			c.mu.Unlock()
			return
		}
		job := c.queue[0]
		c.queue = c.queue[1:]
		metrics.ThumbnailQueueDepth.Set(float64(len(c.queue)))

		// Dedup by identity: an entry already Ready for the same
		// (path, mtime) never hits the decoder again.
		if entry, ok := c.entries[job.path]; ok &&
			entry.State == StateReady && entry.ModTime.Equal(job.modTime) {
			c.mu.Unlock()
			metrics.ThumbnailJobsTotal.WithLabelValues("cached").Inc()
			continue
		}
		if entry, ok := c.entries[job.path]; ok &&
			entry.State == StatePending && entry.ModTime.Equal(job.modTime) {
			entry.State = StateLoading
		}
		c.mu.Unlock()

		start := time.Now()
		decoded, err := c.decoder.Decode(job.path)
		var thumb *image.NRGBA
		if err == nil {
			thumb = imaging.Fit(decoded, c.boxSize, c.boxSize, imaging.Lanczos)
		}
		metrics.ThumbnailJobDuration.Observe(time.Since(start).Seconds())

		c.deliver(job, thumb, err)
	}
}

// deliver applies the job outcome to the cache and emits a result,
// unless the generation moved on while the decode was running.
func (c *ThumbnailCache) deliver(job thumbnailJob, thumb *image.NRGBA, err error) {
	c.mu.Lock()
	if job.gen != c.generation {
		c.mu.Unlock()
		metrics.ThumbnailJobsTotal.WithLabelValues("stale").Inc()
		logging.Debug("Dropping stale thumbnail for %s (gen %d, current %d)",
			job.path, job.gen, c.generation)
		return
	}

	entry, ok := c.entries[job.path]
	if !ok || !entry.ModTime.Equal(job.modTime) {
		c.mu.Unlock()
		metrics.ThumbnailJobsTotal.WithLabelValues("stale").Inc()
		return
	}

	if err != nil {
		entry.State = StateFailed
		entry.Err = err
		metrics.ThumbnailJobsTotal.WithLabelValues("failed").Inc()
		logging.Debug("Thumbnail failed for %s: %v", job.path, err)
	} else {
		entry.State = StateReady
		entry.Image = thumb
		metrics.ThumbnailJobsTotal.WithLabelValues("ready").Inc()
	}
	c.mu.Unlock()

	c.results <- ThumbnailResult{Path: job.path, Image: thumb, Err: err}
}
