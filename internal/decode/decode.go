package decode

import (
	"errors"
	"fmt"
)

// Codec identifies a supported video codec.
type Codec int

const (
	H264 Codec = iota + 1
	HEVC
)

// String returns the ffmpeg-style codec name.
func (c Codec) String() string {
	switch c {
	case H264:
		return "h264"
	case HEVC:
		return "hevc"
	default:
		return fmt.Sprintf("codec(%d)", int(c))
	}
}

// PixelFormat identifies the decoder output surface format.
type PixelFormat int

const (
	// NV12 is the 4:2:0 semi-planar format NVDEC emits for yuv420p sources.
	NV12 PixelFormat = iota + 1
	// YUV444 is the planar format emitted for yuv444p sources.
	YUV444
)

func (p PixelFormat) String() string {
	switch p {
	case NV12:
		return "nv12"
	case YUV444:
		return "yuv444"
	default:
		return fmt.Sprintf("pixelformat(%d)", int(p))
	}
}

// Config carries everything needed to construct a decoder instance. Respawns
// after a hardware reset reuse the identical Config.
type Config struct {
	Width       int
	Height      int
	PixelFormat PixelFormat
	Codec       Codec
	GPU         int
}

// Surface describes one decoded frame resident in GPU memory.
type Surface struct {
	DevicePtr uintptr
	Pitch     int
	Width     int
	Height    int
	Format    PixelFormat
	Timestamp int64
}

// Result is the outcome of submitting one packet. Surface is nil when the
// decoder buffered the data without emitting a frame; BytesConsumed is only
// meaningful when a surface was emitted.
type Result struct {
	Surface       *Surface
	BytesConsumed int
}

// ErrHardwareReset marks a transient GPU/driver fault. The decoder instance is
// unusable afterwards; callers recover by constructing a fresh one.
var ErrHardwareReset = errors.New("gpu hardware reset")

// Decoder decodes an Annex-B elementary stream packet by packet.
type Decoder interface {
	DecodePacket(pkt []byte) (Result, error)
	Close() error
}

// Factory constructs decoders; workers hold one so they can respawn after a
// hardware reset.
type Factory func(Config) (Decoder, error)
