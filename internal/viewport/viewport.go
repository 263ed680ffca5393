package viewport

import (
	"fmt"

	"image-viewer/internal/metrics"
)

const (
	// DefaultMinScale is the smallest allowed zoom factor.
	DefaultMinScale = 0.1
	// DefaultMaxScale is the largest allowed zoom factor.
	DefaultMaxScale = 10.0
	// DefaultZoomStep is the multiplicative step for one zoom increment.
	DefaultZoomStep = 1.25
)

// Config bounds the scale range and sets the zoom step.
type Config struct {
	MinScale float64
	MaxScale float64
	ZoomStep float64
}

// DefaultConfig returns the standard zoom configuration.
func DefaultConfig() Config {
	return Config{
		MinScale: DefaultMinScale,
		MaxScale: DefaultMaxScale,
		ZoomStep: DefaultZoomStep,
	}
}

// State is the scale/rotation/pan triple mapping the open image onto
// the display surface. Pan is the screen-space position of the image
// origin; it is deliberately unclamped, so an image can be dragged
// fully off-screen.
type State struct {
	Scale    float64
	Rotation int // quarter turns clockwise, always 0-3
	PanX     float64
	PanY     float64
}

// Engine owns the viewport state for the single open image. All
// transitions are synchronous and mutate only the engine's own state;
// the engine never blocks.
//
// Rotation does not re-fit: after Rotate the image may sit mis-centered
// until the next Fit, Actual, or zoom call. Callers that want
// rotate-then-fit compose the two transitions themselves.
type Engine struct {
	cfg    Config
	imageW int
	imageH int
	viewW  int
	viewH  int
	state  State
}

// NewEngine creates an engine with the given config. Zero-valued config
// fields fall back to the defaults.
func NewEngine(cfg Config) *Engine {
	if cfg.MinScale <= 0 {
		cfg.MinScale = DefaultMinScale
	}
	if cfg.MaxScale <= 0 {
		cfg.MaxScale = DefaultMaxScale
	}
	if cfg.ZoomStep <= 1 {
		cfg.ZoomStep = DefaultZoomStep
	}
	return &Engine{cfg: cfg, state: State{Scale: 1}}
}

// SetImage binds a newly opened image and resets the state to Fit.
// Dimensions must be positive; the transform math assumes it.
func (e *Engine) SetImage(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("degenerate image dimensions %dx%d", width, height)
	}
	e.imageW = width
	e.imageH = height
	e.state = State{Scale: 1}
	e.Fit()
	return nil
}

// SetViewport updates the display surface size. The current transform
// is kept; callers re-fit explicitly if desired.
func (e *Engine) SetViewport(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("degenerate viewport dimensions %dx%d", width, height)
	}
	e.viewW = width
	e.viewH = height
	return nil
}

// State returns the current viewport state.
func (e *Engine) State() State {
	return e.state
}

// EffectiveImageSize returns the image dimensions with width and height
// swapped for odd quarter-turn rotations.
func (e *Engine) EffectiveImageSize() (int, int) {
	if e.state.Rotation%2 == 1 {
		return e.imageH, e.imageW
	}
	return e.imageW, e.imageH
}

// Fit sets the scale so the image's longer dimension exactly fills the
// corresponding viewport dimension, and centers the image.
func (e *Engine) Fit() {
	w, h := e.EffectiveImageSize()
	if w == 0 || h == 0 || e.viewW == 0 || e.viewH == 0 {
		return
	}

	scale := float64(e.viewW) / float64(w)
	if s := float64(e.viewH) / float64(h); s < scale {
		scale = s
	}
	e.state.Scale = e.clampScale(scale)
	e.center()
	metrics.ViewportTransitionsTotal.WithLabelValues("fit").Inc()
}

// Actual sets a 1:1 pixel mapping and recenters the image.
func (e *Engine) Actual() {
	e.state.Scale = e.clampScale(1.0)
	e.center()
	metrics.ViewportTransitionsTotal.WithLabelValues("actual").Inc()
}

// ZoomIn zooms by one step. Pan is unchanged.
func (e *Engine) ZoomIn() {
	e.state.Scale = e.clampScale(e.state.Scale * e.cfg.ZoomStep)
	metrics.ViewportTransitionsTotal.WithLabelValues("zoom").Inc()
}

// ZoomOut zooms out by one step. Pan is unchanged.
func (e *Engine) ZoomOut() {
	e.state.Scale = e.clampScale(e.state.Scale / e.cfg.ZoomStep)
	metrics.ViewportTransitionsTotal.WithLabelValues("zoom").Inc()
}

// ZoomAtCursor zooms one step (in for direction > 0, out otherwise)
// keeping the image point under the cursor fixed. When clamping caps
// the requested scale, the anchoring is applied with the clamped scale,
// so the point stays anchored rather than jumping.
func (e *Engine) ZoomAtCursor(cursorX, cursorY float64, direction int) {
	oldScale := e.state.Scale

	requested := oldScale * e.cfg.ZoomStep
	if direction <= 0 {
		requested = oldScale / e.cfg.ZoomStep
	}
	newScale := e.clampScale(requested)

	// Image-space point under the cursor must map back to the cursor
	// after the scale change.
	px := (cursorX - e.state.PanX) / oldScale
	py := (cursorY - e.state.PanY) / oldScale

	e.state.Scale = newScale
	e.state.PanX = cursorX - px*newScale
	e.state.PanY = cursorY - py*newScale
	metrics.ViewportTransitionsTotal.WithLabelValues("zoom").Inc()
}

// Pan adds a screen-space delta to the pan offset. No clamping: the
// image may be dragged arbitrarily far off-screen.
func (e *Engine) Pan(dx, dy float64) {
	e.state.PanX += dx
	e.state.PanY += dy
	metrics.ViewportTransitionsTotal.WithLabelValues("pan").Inc()
}

// Rotate adds delta quarter turns (positive clockwise). Scale and pan
// are untouched; only a later Fit, Actual, or zoom recomputes them.
func (e *Engine) Rotate(delta int) {
	e.state.Rotation = ((e.state.Rotation+delta)%4 + 4) % 4
	metrics.ViewportTransitionsTotal.WithLabelValues("rotate").Inc()
}

// ImageToScreen maps an image-space point to screen space under the
// current transform.
func (e *Engine) ImageToScreen(x, y float64) (float64, float64) {
	return x*e.state.Scale + e.state.PanX, y*e.state.Scale + e.state.PanY
}

// ScreenToImage maps a screen-space point to image space under the
// current transform.
func (e *Engine) ScreenToImage(x, y float64) (float64, float64) {
	return (x - e.state.PanX) / e.state.Scale, (y - e.state.PanY) / e.state.Scale
}

// center positions the image so it is centered in the viewport at the
// current scale.
func (e *Engine) center() {
	w, h := e.EffectiveImageSize()
	e.state.PanX = (float64(e.viewW) - float64(w)*e.state.Scale) / 2
	e.state.PanY = (float64(e.viewH) - float64(h)*e.state.Scale) / 2
}

func (e *Engine) clampScale(s float64) float64 {
	if s < e.cfg.MinScale {
		return e.cfg.MinScale
	}
	if s > e.cfg.MaxScale {
		return e.cfg.MaxScale
	}
	return s
}
