package histogram

import (
	"sync"
	"time"

	"image-viewer/internal/logging"
	"image-viewer/internal/metrics"
)

// DefaultDebounce is the settle delay before histogram work starts for
// a newly opened image.
const DefaultDebounce = 100 * time.Millisecond

// Scheduler debounces histogram computation by image identity. Each
// Schedule call cancels any pending computation for a previously
// scheduled key, so rapid navigation does no work for images the user
// has already moved past. The deferred function runs on a timer
// goroutine once the delay elapses with no further Schedule call.
type Scheduler struct {
	delay time.Duration

	mu    sync.Mutex
	timer *time.Timer
	key   string
}

// NewScheduler creates a scheduler with the given settle delay. A
// non-positive delay falls back to DefaultDebounce.
func NewScheduler(delay time.Duration) *Scheduler {
	if delay <= 0 {
		delay = DefaultDebounce
	}
	return &Scheduler{delay: delay}
}

// Schedule queues fn to run after the settle delay, replacing any
// pending computation regardless of its key.
func (s *Scheduler) Schedule(key string, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.timer != nil {
		if s.timer.Stop() {
			metrics.HistogramDebounceCancels.Inc()
			logging.Debug("Histogram debounce: %q superseded by %q", s.key, key)
		}
	}

	s.key = key
	s.timer = time.AfterFunc(s.delay, func() {
		s.mu.Lock()
		// A Schedule call racing the timer wins; only run if we are
		// still the pending computation.
		current := s.key == key
		if current {
			s.timer = nil
		}
		s.mu.Unlock()
		if current {
			fn()
		}
	})
}

// Cancel drops any pending computation.
func (s *Scheduler) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.timer != nil && s.timer.Stop() {
		metrics.HistogramDebounceCancels.Inc()
	}
	s.timer = nil
	s.key = ""
}
