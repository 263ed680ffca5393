// Command image-viewer runs the viewer core headless: it scans
// IMAGE_DIR, streams thumbnails through the background worker, opens
// the first image into the viewport engine, and serves Prometheus
// metrics on METRICS_PORT.
//
// A display frontend consumes the same internal packages; this binary
// exists for operation and debugging without one.
package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"image-viewer/internal/histogram"
	"image-viewer/internal/logging"
	"image-viewer/internal/media"
	"image-viewer/internal/memory"
	"image-viewer/internal/startup"
	"image-viewer/internal/viewer"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	startTime := time.Now()

	memory.ConfigureFromEnv()

	config, err := startup.LoadConfig()
	if err != nil {
		startup.LogFatal("Configuration error: %v", err)
	}

	if config.VipsEnabled {
		if err := media.InitVips(); err != nil {
			logging.Warn("libvips unavailable, using pure-Go decoding: %v", err)
		}
		defer media.ShutdownVips()
	}

	session := viewer.NewSession(viewer.Options{
		ThumbnailBox:   config.ThumbnailBox,
		HistogramDelay: config.HistogramDelay,
		DisableWatch:   !config.WatchEnabled,
	})
	defer session.Close()

	assets, err := session.OpenDirectory(config.ImageDir)
	if err != nil {
		startup.LogFatal("Failed to open %s: %v", config.ImageDir, err)
	}

	// Drain thumbnail results for the directory listing.
	go func() {
		for res := range session.Thumbnails().Results() {
			if res.Err != nil {
				logging.Warn("Thumbnail failed for %s: %v", res.Path, res.Err)
				continue
			}
			bounds := res.Image.Bounds()
			logging.Debug("Thumbnail ready: %s (%dx%d)", res.Path, bounds.Dx(), bounds.Dy())
		}
	}()

	if err := session.SetViewport(800, 600); err != nil {
		startup.LogFatal("Viewport setup: %v", err)
	}
	session.OnHistogram(func(path string, res *histogram.Result) {
		logging.Debug("Histogram for %s: %d samples (sampled=%v)", path, res.Samples, res.Sampled)
	})

	// Open the first image so an attached display has something to paint.
	if len(assets) > 0 {
		if _, err := session.Open(assets[0].Path); err != nil {
			logging.Warn("Could not open %s: %v", assets[0].Path, err)
		}
	}

	var srv *http.Server
	if config.MetricsEnabled {
		srv = &http.Server{
			Addr:         ":" + config.MetricsPort,
			Handler:      setupRouter(),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		}
		go func() {
			startup.LogServerStarted(config.MetricsPort, time.Since(startTime))
			if err := srv.ListenAndServe(); err != http.ErrServerClosed {
				startup.LogFatal("Metrics server error: %v", err)
			}
		}()
	} else {
		logging.Info("Metrics disabled; running headless (started in %v)", time.Since(startTime))
	}

	waitForShutdown(srv)
}

func setupRouter() *mux.Router {
	r := mux.NewRouter()

	r.Handle("/metrics", promhttp.Handler()).Methods("GET")
	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}).Methods("GET")
	r.HandleFunc("/version", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(startup.GetBuildInfo())
	}).Methods("GET")

	return r
}

func waitForShutdown(srv *http.Server) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logging.Info("Received %s, shutting down", sig)

	if srv != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			logging.Warn("Metrics server shutdown: %v", err)
		}
	}
}
