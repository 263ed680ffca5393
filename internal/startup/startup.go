package startup

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
	"time"

	"image-viewer/internal/logging"
)

// Build-time variables (injected via -ldflags)
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
	GoVersion = runtime.Version()
)

// BuildInfo contains version and build information.
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"buildTime"`
	GoVersion string `json:"goVersion"`
	OS        string `json:"os"`
	Arch      string `json:"arch"`
}

// GetBuildInfo returns the current build information.
func GetBuildInfo() BuildInfo {
	return BuildInfo{
		Version:   Version,
		Commit:    Commit,
		BuildTime: BuildTime,
		GoVersion: GoVersion,
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
	}
}

// Config holds all application configuration.
type Config struct {
	// ImageDir is the directory the viewer opens at startup.
	ImageDir string

	// MetricsPort serves Prometheus metrics and health endpoints.
	MetricsPort string
	// MetricsEnabled disables the metrics listener when false.
	MetricsEnabled bool

	// ThumbnailBox is the bounding box side for generated thumbnails.
	ThumbnailBox int

	// HistogramDelay is the debounce before histogram computation.
	HistogramDelay time.Duration

	// WatchEnabled re-scans the open directory on filesystem changes.
	WatchEnabled bool

	// VipsEnabled turns on the libvips decode fast path.
	VipsEnabled bool
}

// LoadConfig loads and validates configuration from environment
// variables.
func LoadConfig() (*Config, error) {
	printBanner()

	logging.Info("------------------------------------------------------------")
	logging.Info("CONFIGURATION")
	logging.Info("------------------------------------------------------------")

	imageDir := getEnv("IMAGE_DIR", ".")
	metricsPort := getEnv("METRICS_PORT", "9090")
	metricsEnabled := getEnvBool("METRICS_ENABLED", true)
	thumbnailBox := getEnvInt("THUMBNAIL_BOX", 120)
	histogramDelay := getEnvDuration("HISTOGRAM_DELAY", 100*time.Millisecond)
	watchEnabled := getEnvBool("WATCH_ENABLED", true)
	vipsEnabled := getEnvBool("VIPS_ENABLED", false)

	logging.Info("  IMAGE_DIR:        %s", imageDir)
	logging.Info("  METRICS_PORT:     %s", metricsPort)
	logging.Info("  METRICS_ENABLED:  %v", metricsEnabled)
	logging.Info("  THUMBNAIL_BOX:    %d", thumbnailBox)
	logging.Info("  HISTOGRAM_DELAY:  %s", histogramDelay)
	logging.Info("  WATCH_ENABLED:    %v", watchEnabled)
	logging.Info("  VIPS_ENABLED:     %v", vipsEnabled)
	logging.Info("  LOG_LEVEL:        %s", logging.GetLevel())

	info, err := os.Stat(imageDir)
	if err != nil {
		return nil, fmt.Errorf("IMAGE_DIR %s: %w", imageDir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("IMAGE_DIR %s is not a directory", imageDir)
	}

	if thumbnailBox < 16 || thumbnailBox > 1024 {
		logging.Warn("  THUMBNAIL_BOX %d out of range, using 120", thumbnailBox)
		thumbnailBox = 120
	}

	return &Config{
		ImageDir:       imageDir,
		MetricsPort:    metricsPort,
		MetricsEnabled: metricsEnabled,
		ThumbnailBox:   thumbnailBox,
		HistogramDelay: histogramDelay,
		WatchEnabled:   watchEnabled,
		VipsEnabled:    vipsEnabled,
	}, nil
}

// LogFatal logs a fatal startup error and exits.
func LogFatal(format string, args ...interface{}) {
	logging.Fatal(format, args...)
}

// LogServerStarted logs the metrics listener address and startup time.
func LogServerStarted(port string, elapsed time.Duration) {
	logging.Info("Metrics listening on :%s (started in %v)", port, elapsed)
}

func printBanner() {
	info := GetBuildInfo()
	logging.Printf("image-viewer %s (%s, %s, %s/%s)",
		info.Version, info.Commit, info.GoVersion, info.OS, info.Arch)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		logging.Warn("  Invalid %s %q, using default %v", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		logging.Warn("  Invalid %s %q, using default %d", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		logging.Warn("  Invalid %s %q, using default %s", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}
