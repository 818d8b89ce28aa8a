package probe

import (
	"context"
	"fmt"
	"time"

	"nvdecode/internal/config"
	"nvdecode/internal/decode"
)

// StreamParameters describes the first video stream of a source. Immutable
// after creation; consumed to construct the decoder and the repacketizing
// subprocess command line.
type StreamParameters struct {
	Width       int
	Height      int
	FrameRate   float64
	Codec       decode.Codec
	PixelFormat decode.PixelFormat
}

// UnsupportedCodecError reports a source codec outside {h264, hevc}.
type UnsupportedCodecError struct {
	Name string
}

func (e *UnsupportedCodecError) Error() string {
	return fmt.Sprintf("unsupported codec %q: only h264 and hevc are supported", e.Name)
}

// UnsupportedPixelFormatError reports a chroma format outside 4:2:0 and 4:4:4.
type UnsupportedPixelFormatError struct {
	Name string
}

func (e *UnsupportedPixelFormatError) Error() string {
	return fmt.Sprintf("unsupported pixel format %q: only yuv420p and yuv444p are supported", e.Name)
}

// Prober resolves stream parameters for a URL.
type Prober interface {
	Probe(ctx context.Context, url string) (StreamParameters, error)
}

// New selects a prober backend from configuration.
func New(cfg *config.Config) (Prober, error) {
	timeout := time.Duration(cfg.Probe.TimeoutSeconds) * time.Second
	switch cfg.Probe.Backend {
	case "ffprobe":
		return &FFprobeProber{Binary: cfg.Tools.FFprobe, Timeout: timeout}, nil
	case "rtsp":
		return &RTSPProber{Timeout: timeout}, nil
	default:
		return nil, fmt.Errorf("unknown probe backend %q", cfg.Probe.Backend)
	}
}

// mapCodec classifies an ffmpeg-style codec name.
func mapCodec(name string) (decode.Codec, error) {
	switch name {
	case "h264":
		return decode.H264, nil
	case "hevc":
		return decode.HEVC, nil
	default:
		return 0, &UnsupportedCodecError{Name: name}
	}
}

// mapPixelFormat classifies an ffmpeg-style pixel format name.
func mapPixelFormat(name string) (decode.PixelFormat, error) {
	switch name {
	case "yuv420p":
		return decode.NV12, nil
	case "yuv444p":
		return decode.YUV444, nil
	default:
		return 0, &UnsupportedPixelFormatError{Name: name}
	}
}
