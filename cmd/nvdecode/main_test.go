package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeStubFFprobe(t *testing.T, payload string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ffprobe")
	script := "#!/bin/sh\ncat <<'EOF'\n" + payload + "\nEOF\n"
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatalf("write stub ffprobe: %v", err)
	}
	return path
}

func writeTestConfig(t *testing.T, ffprobePath string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	content := fmt.Sprintf("[tools]\nffprobe = %q\n", ffprobePath)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

const probePayload = `{
  "streams": [
    {"index": 0, "codec_type": "video", "codec_name": "h264",
     "width": 1920, "height": 1080, "pix_fmt": "yuv420p",
     "r_frame_rate": "30/1"}
  ],
  "format": {"format_name": "rtsp", "nb_streams": 1}
}`

func TestRootRequiresGPUAndURL(t *testing.T) {
	_, _, err := runCLI(t)
	if err == nil {
		t.Fatal("expected an error without arguments")
	}
	if !strings.Contains(err.Error(), "GPU ordinal") {
		t.Fatalf("unexpected error: %v", err)
	}

	_, _, err = runCLI(t, "0")
	if err == nil {
		t.Fatal("expected an error without a stream url")
	}
}

func TestRootRejectsInvalidGPU(t *testing.T) {
	_, _, err := runCLI(t, "first", "rtsp://example/stream")
	if err == nil || !strings.Contains(err.Error(), "invalid GPU ordinal") {
		t.Fatalf("unexpected error: %v", err)
	}

	_, _, err = runCLI(t, "-1", "rtsp://example/stream")
	if err == nil || !strings.Contains(err.Error(), "invalid GPU ordinal") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestProbeCommandTable(t *testing.T) {
	cfgPath := writeTestConfig(t, writeStubFFprobe(t, probePayload))

	out, _, err := runCLI(t, "--config", cfgPath, "probe", "rtsp://example/stream")
	if err != nil {
		t.Fatalf("probe: %v", err)
	}
	for _, want := range []string{"1920", "1080", "h264", "nv12", "30"} {
		if !strings.Contains(out, want) {
			t.Fatalf("probe output missing %q:\n%s", want, out)
		}
	}
}

func TestProbeCommandJSON(t *testing.T) {
	cfgPath := writeTestConfig(t, writeStubFFprobe(t, probePayload))

	out, _, err := runCLI(t, "--config", cfgPath, "probe", "--json", "rtsp://example/stream")
	if err != nil {
		t.Fatalf("probe --json: %v", err)
	}
	for _, want := range []string{`"width": 1920`, `"codec": "h264"`, `"pixel_format": "nv12"`} {
		if !strings.Contains(out, want) {
			t.Fatalf("json output missing %q:\n%s", want, out)
		}
	}
}

func TestProbeCommandUnsupportedCodec(t *testing.T) {
	payload := `{
  "streams": [
    {"index": 0, "codec_type": "video", "codec_name": "vp9",
     "width": 1280, "height": 720, "pix_fmt": "yuv420p", "r_frame_rate": "30/1"}
  ],
  "format": {}
}`
	cfgPath := writeTestConfig(t, writeStubFFprobe(t, payload))

	_, _, err := runCLI(t, "--config", cfgPath, "probe", "rtsp://example/stream")
	if err == nil || !strings.Contains(err.Error(), "unsupported codec") {
		t.Fatalf("expected unsupported codec error, got %v", err)
	}
}

func TestDepsCommandJSON(t *testing.T) {
	tmp := t.TempDir()
	script := []byte("#!/bin/sh\nexit 0\n")
	ffmpeg := filepath.Join(tmp, "ffmpeg")
	ffprobe := filepath.Join(tmp, "ffprobe")
	for _, path := range []string{ffmpeg, ffprobe} {
		if err := os.WriteFile(path, script, 0o755); err != nil {
			t.Fatalf("write stub: %v", err)
		}
	}
	cuda := filepath.Join(tmp, "libcuda.so.1")
	cuvidLib := filepath.Join(tmp, "libnvcuvid.so.1")
	for _, path := range []string{cuda, cuvidLib} {
		if err := os.WriteFile(path, []byte{0x7f}, 0o644); err != nil {
			t.Fatalf("write stub library: %v", err)
		}
	}

	cfgPath := filepath.Join(tmp, "config.toml")
	content := fmt.Sprintf(
		"[tools]\nffmpeg = %q\nffprobe = %q\n\n[decoder]\ncuda_library = %q\ncuvid_library = %q\n",
		ffmpeg, ffprobe, cuda, cuvidLib,
	)
	if err := os.WriteFile(cfgPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	out, _, err := runCLI(t, "--config", cfgPath, "deps", "--json")
	if err != nil {
		t.Fatalf("deps --json: %v", err)
	}
	for _, want := range []string{"FFmpeg", "FFprobe", "CUDA driver", "NVDEC"} {
		if !strings.Contains(out, want) {
			t.Fatalf("deps output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, `"Available": false`) {
		t.Fatalf("all dependencies should be available:\n%s", out)
	}
}

func TestDepsCommandReportsMissing(t *testing.T) {
	tmp := t.TempDir()
	cfgPath := filepath.Join(tmp, "config.toml")
	content := fmt.Sprintf("[tools]\nffmpeg = %q\n", filepath.Join(tmp, "no-such-ffmpeg"))
	if err := os.WriteFile(cfgPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	_, _, err := runCLI(t, "--config", cfgPath, "deps")
	if err == nil || !strings.Contains(err.Error(), "required dependencies missing") {
		t.Fatalf("expected missing-dependency error, got %v", err)
	}
}

func TestConfigInitWritesSample(t *testing.T) {
	target := filepath.Join(t.TempDir(), "nested", "config.toml")

	out, _, err := runCLI(t, "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	if !strings.Contains(out, target) {
		t.Fatalf("expected output to name the target path, got %q", out)
	}
	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("read sample config: %v", err)
	}
	if !strings.Contains(string(data), "[decoder]") {
		t.Fatalf("sample config missing decoder section:\n%s", data)
	}

	if _, _, err := runCLI(t, "config", "init", "--path", target); err == nil {
		t.Fatal("expected error when the file already exists")
	}
	if _, _, err := runCLI(t, "config", "init", "--path", target, "--overwrite"); err != nil {
		t.Fatalf("config init --overwrite: %v", err)
	}
}
