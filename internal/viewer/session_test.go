package viewer

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"image-viewer/internal/histogram"
	"image-viewer/internal/viewport"
)

func writeJPEG(t *testing.T, dir, name string, w, h int) string {
	t.Helper()

	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: 180, G: 90, B: 45, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func newTestSession(t *testing.T) *Session {
	t.Helper()
	s := NewSession(Options{HistogramDelay: 10 * time.Millisecond})
	t.Cleanup(s.Close)
	if err := s.SetViewport(800, 600); err != nil {
		t.Fatal(err)
	}
	return s
}

func TestOpenDirectoryAndThumbnails(t *testing.T) {
	dir := t.TempDir()
	writeJPEG(t, dir, "a.jpg", 64, 48)
	writeJPEG(t, dir, "b.jpg", 64, 48)

	s := newTestSession(t)
	assets, err := s.OpenDirectory(dir)
	if err != nil {
		t.Fatalf("OpenDirectory: %v", err)
	}
	if len(assets) != 2 {
		t.Fatalf("found %d assets, want 2", len(assets))
	}

	for i := 0; i < 2; i++ {
		select {
		case res := <-s.Thumbnails().Results():
			if res.Err != nil {
				t.Errorf("thumbnail for %s failed: %v", res.Path, res.Err)
			}
		case <-time.After(5 * time.Second):
			t.Fatal("timed out waiting for thumbnails")
		}
	}
}

func TestOpenResetsViewportToFit(t *testing.T) {
	dir := t.TempDir()
	path := writeJPEG(t, dir, "a.jpg", 400, 300)

	s := newTestSession(t)
	if _, err := s.OpenDirectory(dir); err != nil {
		t.Fatal(err)
	}

	open, err := s.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if open.Asset.Width != 400 || open.Asset.Height != 300 {
		t.Errorf("asset dims = %dx%d, want 400x300", open.Asset.Width, open.Asset.Height)
	}
	if open.Asset.Format != "jpeg" {
		t.Errorf("asset format = %q, want jpeg", open.Asset.Format)
	}

	state := s.Engine().State()
	if state.Scale != 2.0 {
		t.Errorf("fit scale = %v, want 2.0", state.Scale)
	}
	if state.Rotation != 0 {
		t.Errorf("rotation = %d, want 0", state.Rotation)
	}
}

func TestOpenSchedulesHistogram(t *testing.T) {
	dir := t.TempDir()
	path := writeJPEG(t, dir, "a.jpg", 32, 32)

	s := newTestSession(t)

	var mu sync.Mutex
	var gotPath string
	var gotRes *histogram.Result
	done := make(chan struct{})
	s.OnHistogram(func(p string, res *histogram.Result) {
		mu.Lock()
		gotPath, gotRes = p, res
		mu.Unlock()
		close(done)
	})

	if _, err := s.Open(path); err != nil {
		t.Fatal(err)
	}

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("histogram callback never fired")
	}

	mu.Lock()
	defer mu.Unlock()
	if gotPath != path {
		t.Errorf("histogram path = %q, want %q", gotPath, path)
	}
	if gotRes.Samples != 32*32 {
		t.Errorf("histogram samples = %d, want %d", gotRes.Samples, 32*32)
	}
}

func TestRapidNavigationSkipsHistogram(t *testing.T) {
	dir := t.TempDir()
	pathA := writeJPEG(t, dir, "a.jpg", 32, 32)
	pathB := writeJPEG(t, dir, "b.jpg", 32, 32)

	s := NewSession(Options{HistogramDelay: 100 * time.Millisecond})
	t.Cleanup(s.Close)
	if err := s.SetViewport(800, 600); err != nil {
		t.Fatal(err)
	}

	var mu sync.Mutex
	var paths []string
	s.OnHistogram(func(p string, res *histogram.Result) {
		mu.Lock()
		paths = append(paths, p)
		mu.Unlock()
	})

	// Open A then immediately B: only B's histogram should compute.
	if _, err := s.Open(pathA); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Open(pathB); err != nil {
		t.Fatal(err)
	}

	time.Sleep(400 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if len(paths) != 1 || paths[0] != pathB {
		t.Errorf("histograms computed for %v, want only %q", paths, pathB)
	}
}

func TestNextPrevious(t *testing.T) {
	dir := t.TempDir()
	writeJPEG(t, dir, "a.jpg", 16, 16)
	writeJPEG(t, dir, "b.jpg", 16, 16)

	s := newTestSession(t)
	assets, err := s.OpenDirectory(dir)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := s.Open(assets[0].Path); err != nil {
		t.Fatal(err)
	}

	next, err := s.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if next == nil || next.Asset.Path != assets[1].Path {
		t.Fatalf("Next opened %+v, want %s", next, assets[1].Path)
	}

	// At the end of the listing Next is a no-op.
	atEnd, err := s.Next()
	if err != nil {
		t.Fatal(err)
	}
	if atEnd != nil {
		t.Errorf("Next past end opened %s", atEnd.Asset.Path)
	}

	prev, err := s.Previous()
	if err != nil {
		t.Fatalf("Previous: %v", err)
	}
	if prev == nil || prev.Asset.Path != assets[0].Path {
		t.Fatalf("Previous opened %+v, want %s", prev, assets[0].Path)
	}
}

func TestOpenMissingFile(t *testing.T) {
	s := newTestSession(t)
	if _, err := s.Open(filepath.Join(t.TempDir(), "missing.jpg")); err == nil {
		t.Error("expected error opening missing file")
	}
}

func TestSessionViewportInteraction(t *testing.T) {
	dir := t.TempDir()
	path := writeJPEG(t, dir, "a.jpg", 1000, 800)

	s := newTestSession(t)
	if _, err := s.Open(path); err != nil {
		t.Fatal(err)
	}

	engine := s.Engine()
	engine.Actual()
	if engine.State().Scale != 1.0 {
		t.Errorf("Actual scale = %v, want 1.0", engine.State().Scale)
	}

	engine.Rotate(1)
	w, h := engine.EffectiveImageSize()
	if w != 800 || h != 1000 {
		t.Errorf("effective size after rotate = %dx%d, want 800x1000", w, h)
	}

	// Re-fit after a viewport resize uses the rotated dimensions.
	if err := s.SetViewport(400, 500); err != nil {
		t.Fatal(err)
	}
	if got := engine.State().Scale; got != 0.5 {
		t.Errorf("fit scale after resize = %v, want 0.5", got)
	}
}

func TestCustomViewportConfig(t *testing.T) {
	s := NewSession(Options{Viewport: viewport.Config{MinScale: 0.5, MaxScale: 2, ZoomStep: 1.5}})
	t.Cleanup(s.Close)
	if err := s.SetViewport(100, 100); err != nil {
		t.Fatal(err)
	}

	e := s.Engine()
	e.ZoomIn()
	e.ZoomIn()
	if got := e.State().Scale; got != 2 {
		t.Errorf("scale = %v, want clamped 2", got)
	}
}
