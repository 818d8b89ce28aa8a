package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadReturnsDefaultsWithoutFile(t *testing.T) {
	cfg, _, exists, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if exists {
		t.Fatal("expected no config file to be found")
	}
	if cfg.Tools.FFmpeg != "ffmpeg" || cfg.Tools.FFprobe != "ffprobe" {
		t.Fatalf("unexpected tool defaults: %#v", cfg.Tools)
	}
	if cfg.Probe.Backend != "ffprobe" {
		t.Fatalf("unexpected probe backend: %q", cfg.Probe.Backend)
	}
	if cfg.Decoder.InitialReadSize != 4096 {
		t.Fatalf("unexpected initial read size: %d", cfg.Decoder.InitialReadSize)
	}
}

func TestLoadParsesOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[tools]
ffmpeg = "/opt/ffmpeg/bin/ffmpeg"

[probe]
backend = "rtsp"
timeout_seconds = 5

[decoder]
initial_read_size = 8192

[logging]
format = "json"
level = "debug"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !exists {
		t.Fatal("expected config file to be found")
	}
	if resolved != path {
		t.Fatalf("unexpected resolved path %q", resolved)
	}
	if cfg.Tools.FFmpeg != "/opt/ffmpeg/bin/ffmpeg" {
		t.Fatalf("unexpected ffmpeg binary: %q", cfg.Tools.FFmpeg)
	}
	if cfg.Probe.Backend != "rtsp" || cfg.Probe.TimeoutSeconds != 5 {
		t.Fatalf("unexpected probe config: %#v", cfg.Probe)
	}
	if cfg.Decoder.InitialReadSize != 8192 {
		t.Fatalf("unexpected read size: %d", cfg.Decoder.InitialReadSize)
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "debug" {
		t.Fatalf("unexpected logging config: %#v", cfg.Logging)
	}
}

func TestLoadRejectsBadBackend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[probe]\nbackend = \"gstreamer\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, _, err := Load(path); err == nil {
		t.Fatal("expected validation error for unknown backend")
	}
}

func TestValidateRejectsBadLogging(t *testing.T) {
	cfg := Default()
	cfg.Logging.Format = "xml"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unsupported log format")
	}

	cfg = Default()
	cfg.Logging.Level = "loud"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unsupported log level")
	}
}

func TestNormalizeFillsEmptyValues(t *testing.T) {
	cfg := Config{}
	if err := cfg.normalize(); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if cfg.Tools.FFmpeg == "" || cfg.Probe.Backend == "" || cfg.Logging.Level == "" {
		t.Fatalf("normalize left empty defaults: %#v", cfg)
	}
	if cfg.Decoder.InitialReadSize <= 0 {
		t.Fatalf("normalize left non-positive read size: %d", cfg.Decoder.InitialReadSize)
	}
}

func TestExpandPathResolvesTilde(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("no home directory: %v", err)
	}
	expanded, err := ExpandPath("~/nvdecode.toml")
	if err != nil {
		t.Fatalf("expand: %v", err)
	}
	if !strings.HasPrefix(expanded, home) {
		t.Fatalf("expected %q to live under %q", expanded, home)
	}
}

func TestCreateSampleRefusesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := CreateSample(path); err != nil {
		t.Fatalf("create sample: %v", err)
	}
	if err := CreateSample(path); err == nil {
		t.Fatal("expected error when sample already exists")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(data), "[decoder]") {
		t.Fatalf("sample config missing decoder section:\n%s", data)
	}
}
