package media

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"image-viewer/internal/logging"
	"image-viewer/internal/metrics"
	"image-viewer/internal/workers"

	"github.com/fsnotify/fsnotify"
)

// maxScanWorkers caps the stat() pool during directory scans.
const maxScanWorkers = 8

// Scanner enumerates the image files of a directory and can watch it
// for changes. It performs no decoding; candidate selection is by
// extension only, decode capability is decided by the Decoder.
type Scanner struct {
	mu      sync.Mutex
	watcher *fsnotify.Watcher
	watched string
	done    chan struct{}
}

// NewScanner creates a Scanner.
func NewScanner() *Scanner {
	return &Scanner{}
}

// Scan returns the image assets of directory, ordered by file name.
// Hidden files, empty files, and non-image extensions are skipped.
func (s *Scanner) Scan(directory string) ([]ImageAsset, error) {
	start := time.Now()

	entries, err := os.ReadDir(directory)
	if err != nil {
		metrics.ScannerScansTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	var candidates []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}
		if !ImageExtensions[strings.ToLower(filepath.Ext(name))] {
			continue
		}
		candidates = append(candidates, name)
	}

	assets := s.statCandidates(directory, candidates)

	sort.Slice(assets, func(i, j int) bool {
		return assets[i].Path < assets[j].Path
	})

	metrics.ScannerScansTotal.WithLabelValues("success").Inc()
	metrics.ScannerFilesFound.Observe(float64(len(assets)))
	logging.Debug("Scanned %s: %d image files in %v", directory, len(assets), time.Since(start))

	return assets, nil
}

// statCandidates stats the candidate files with a small worker pool.
// stat() is I/O-bound and dominates scan time on network filesystems.
func (s *Scanner) statCandidates(directory string, names []string) []ImageAsset {
	numWorkers := workers.ForIO(maxScanWorkers)
	if numWorkers > len(names) {
		numWorkers = len(names)
	}
	if numWorkers < 1 {
		numWorkers = 1
	}

	jobs := make(chan string, len(names))
	results := make(chan ImageAsset, len(names))

	var wg sync.WaitGroup
	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for name := range jobs {
				path := filepath.Join(directory, name)
				info, err := os.Stat(path)
				if err != nil {
					logging.Debug("Skipping %s: %v", path, err)
					continue
				}
				if info.Size() == 0 {
					continue
				}
				results <- ImageAsset{
					Path:    path,
					ModTime: info.ModTime(),
					Size:    info.Size(),
				}
			}
		}()
	}

	for _, name := range names {
		jobs <- name
	}
	close(jobs)
	wg.Wait()
	close(results)

	assets := make([]ImageAsset, 0, len(names))
	for asset := range results {
		assets = append(assets, asset)
	}
	return assets
}

// Watch starts watching directory and invokes onChange after file
// create/remove/rename events settle. Any previous watch is stopped.
// onChange runs on the watcher goroutine.
func (s *Scanner) Watch(directory string, settle time.Duration, onChange func()) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopWatchLocked()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := watcher.Add(directory); err != nil {
		watcher.Close()
		return err
	}

	s.watcher = watcher
	s.watched = directory
	s.done = make(chan struct{})

	go s.watchLoop(watcher, s.done, settle, onChange)
	logging.Info("Watching %s for changes", directory)
	return nil
}

// watchLoop coalesces bursts of filesystem events into one onChange
// call per settle window.
func (s *Scanner) watchLoop(watcher *fsnotify.Watcher, done chan struct{}, settle time.Duration, onChange func()) {
	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case <-done:
			if timer != nil {
				timer.Stop()
			}
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Create|fsnotify.Remove|fsnotify.Rename|fsnotify.Write) == 0 {
				continue
			}
			logging.Debug("Directory event: %s", event)
			if timer == nil {
				timer = time.NewTimer(settle)
				timerC = timer.C
			} else {
				timer.Reset(settle)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			logging.Warn("Watcher error: %v", err)
		case <-timerC:
			timer = nil
			timerC = nil
			onChange()
		}
	}
}

// StopWatch stops any active directory watch.
func (s *Scanner) StopWatch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopWatchLocked()
}

func (s *Scanner) stopWatchLocked() {
	if s.watcher != nil {
		close(s.done)
		if err := s.watcher.Close(); err != nil {
			logging.Warn("Failed to close watcher for %s: %v", s.watched, err)
		}
		s.watcher = nil
		s.watched = ""
	}
}
