package probe

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"nvdecode/internal/config"
	"nvdecode/internal/decode"
)

func TestMapCodec(t *testing.T) {
	codec, err := mapCodec("h264")
	if err != nil || codec != decode.H264 {
		t.Fatalf("h264 mapping: %v %v", codec, err)
	}
	codec, err = mapCodec("hevc")
	if err != nil || codec != decode.HEVC {
		t.Fatalf("hevc mapping: %v %v", codec, err)
	}

	_, err = mapCodec("vp9")
	var codecErr *UnsupportedCodecError
	if !errors.As(err, &codecErr) {
		t.Fatalf("expected UnsupportedCodecError, got %v", err)
	}
	if codecErr.Name != "vp9" {
		t.Fatalf("error should carry the codec name, got %q", codecErr.Name)
	}
}

func TestMapPixelFormat(t *testing.T) {
	format, err := mapPixelFormat("yuv420p")
	if err != nil || format != decode.NV12 {
		t.Fatalf("yuv420p mapping: %v %v", format, err)
	}
	format, err = mapPixelFormat("yuv444p")
	if err != nil || format != decode.YUV444 {
		t.Fatalf("yuv444p mapping: %v %v", format, err)
	}

	_, err = mapPixelFormat("yuv422p")
	var pixErr *UnsupportedPixelFormatError
	if !errors.As(err, &pixErr) {
		t.Fatalf("expected UnsupportedPixelFormatError, got %v", err)
	}
	if pixErr.Name != "yuv422p" {
		t.Fatalf("error should carry the format name, got %q", pixErr.Name)
	}
}

func TestNewSelectsBackend(t *testing.T) {
	cfg := config.Default()
	prober, err := New(&cfg)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if _, ok := prober.(*FFprobeProber); !ok {
		t.Fatalf("expected ffprobe backend, got %T", prober)
	}

	cfg.Probe.Backend = "rtsp"
	prober, err = New(&cfg)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if _, ok := prober.(*RTSPProber); !ok {
		t.Fatalf("expected rtsp backend, got %T", prober)
	}

	cfg.Probe.Backend = "gstreamer"
	if _, err := New(&cfg); err == nil {
		t.Fatal("expected error for unknown backend")
	}
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

func TestFFprobeProberMapsParameters(t *testing.T) {
	payload := `{
  "streams": [
    {"index": 0, "codec_type": "audio", "codec_name": "aac"},
    {"index": 1, "codec_type": "video", "codec_name": "h264",
     "width": 1920, "height": 1080, "pix_fmt": "yuv420p",
     "r_frame_rate": "30000/1001", "avg_frame_rate": "30000/1001"}
  ],
  "format": {"format_name": "rtsp", "nb_streams": 2}
}`
	prober := &FFprobeProber{Binary: writeStubFFprobe(t, payload), Timeout: 5 * time.Second}

	params, err := prober.Probe(context.Background(), "rtsp://example/stream")
	if err != nil {
		t.Fatalf("probe: %v", err)
	}
	if params.Width != 1920 || params.Height != 1080 {
		t.Fatalf("unexpected dimensions: %dx%d", params.Width, params.Height)
	}
	if params.Codec != decode.H264 || params.PixelFormat != decode.NV12 {
		t.Fatalf("unexpected mapping: %v %v", params.Codec, params.PixelFormat)
	}
	want := 30000.0 / 1001.0
	if params.FrameRate != want {
		t.Fatalf("unexpected framerate: %v, want %v", params.FrameRate, want)
	}
}

func TestFFprobeProberHEVC444(t *testing.T) {
	payload := `{
  "streams": [
    {"index": 0, "codec_type": "video", "codec_name": "hevc",
     "width": 3840, "height": 2160, "pix_fmt": "yuv444p",
     "r_frame_rate": "25/1"}
  ],
  "format": {"format_name": "rtsp", "nb_streams": 1}
}`
	prober := &FFprobeProber{Binary: writeStubFFprobe(t, payload), Timeout: 5 * time.Second}

	params, err := prober.Probe(context.Background(), "rtsp://example/stream")
	if err != nil {
		t.Fatalf("probe: %v", err)
	}
	if params.Codec != decode.HEVC || params.PixelFormat != decode.YUV444 {
		t.Fatalf("unexpected mapping: %v %v", params.Codec, params.PixelFormat)
	}
	if params.FrameRate != 25 {
		t.Fatalf("unexpected framerate: %v", params.FrameRate)
	}
}

func TestFFprobeProberRejectsUnsupportedCodec(t *testing.T) {
	payload := `{
  "streams": [
    {"index": 0, "codec_type": "video", "codec_name": "vp9",
     "width": 1280, "height": 720, "pix_fmt": "yuv420p", "r_frame_rate": "30/1"}
  ],
  "format": {"format_name": "rtsp", "nb_streams": 1}
}`
	prober := &FFprobeProber{Binary: writeStubFFprobe(t, payload), Timeout: 5 * time.Second}

	_, err := prober.Probe(context.Background(), "rtsp://example/stream")
	var codecErr *UnsupportedCodecError
	if !errors.As(err, &codecErr) {
		t.Fatalf("expected UnsupportedCodecError, got %v", err)
	}
}

func TestFFprobeProberRejectsMissingVideoStream(t *testing.T) {
	payload := `{"streams": [{"index": 0, "codec_type": "audio", "codec_name": "aac"}], "format": {}}`
	prober := &FFprobeProber{Binary: writeStubFFprobe(t, payload), Timeout: 5 * time.Second}

	if _, err := prober.Probe(context.Background(), "rtsp://example/stream"); err == nil {
		t.Fatal("expected error when no video stream exists")
	}
}
