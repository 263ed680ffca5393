package memory

import (
	"runtime/debug"
	"testing"
)

func TestConfigureFromEnvUnset(t *testing.T) {
	t.Setenv("GOMEMLIMIT", "")
	t.Setenv("MEMORY_LIMIT", "")

	result := ConfigureFromEnv()
	if result.Configured {
		t.Error("Configured = true with no environment set")
	}
	if result.Source != "none" {
		t.Errorf("Source = %q, want %q", result.Source, "none")
	}
}

func TestConfigureFromEnvMemoryLimit(t *testing.T) {
	prev := debug.SetMemoryLimit(-1)
	defer debug.SetMemoryLimit(prev)

	t.Setenv("GOMEMLIMIT", "")
	t.Setenv("MEMORY_LIMIT", "1073741824") // 1 GiB
	t.Setenv("MEMORY_RATIO", "0.5")

	result := ConfigureFromEnv()
	if !result.Configured {
		t.Fatal("Configured = false with MEMORY_LIMIT set")
	}
	if result.Source != "MEMORY_LIMIT" {
		t.Errorf("Source = %q, want %q", result.Source, "MEMORY_LIMIT")
	}
	if result.GoMemLimit != 536870912 {
		t.Errorf("GoMemLimit = %d, want %d", result.GoMemLimit, 536870912)
	}
	if result.Ratio != 0.5 {
		t.Errorf("Ratio = %v, want 0.5", result.Ratio)
	}
}

func TestConfigureFromEnvInvalidLimit(t *testing.T) {
	t.Setenv("GOMEMLIMIT", "")
	t.Setenv("MEMORY_LIMIT", "not-a-number")

	result := ConfigureFromEnv()
	if result.Configured {
		t.Error("Configured = true with unparseable MEMORY_LIMIT")
	}
}

func TestConfigureFromEnvBadRatioFallsBack(t *testing.T) {
	prev := debug.SetMemoryLimit(-1)
	defer debug.SetMemoryLimit(prev)

	t.Setenv("GOMEMLIMIT", "")
	t.Setenv("MEMORY_LIMIT", "1000000")
	t.Setenv("MEMORY_RATIO", "7.5")

	result := ConfigureFromEnv()
	if result.Ratio != DefaultRatio {
		t.Errorf("Ratio = %v, want default %v", result.Ratio, DefaultRatio)
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		bytes int64
		want  string
	}{
		{512, "512 B"},
		{1024, "1.0 KiB"},
		{1536, "1.5 KiB"},
		{1048576, "1.0 MiB"},
		{1073741824, "1.0 GiB"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := FormatBytes(tt.bytes); got != tt.want {
				t.Errorf("FormatBytes(%d) = %q, want %q", tt.bytes, got, tt.want)
			}
		})
	}
}
