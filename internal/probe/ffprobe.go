package probe

import (
	"context"
	"fmt"
	"time"

	"nvdecode/internal/media/ffprobe"
)

// FFprobeProber inspects a stream with the ffprobe binary.
type FFprobeProber struct {
	Binary  string
	Timeout time.Duration
}

// Probe runs ffprobe against the URL and maps the first video stream.
func (p *FFprobeProber) Probe(ctx context.Context, url string) (StreamParameters, error) {
	if p.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.Timeout)
		defer cancel()
	}

	result, err := ffprobe.Inspect(ctx, p.Binary, url)
	if err != nil {
		return StreamParameters{}, err
	}

	stream, ok := result.FirstVideoStream()
	if !ok {
		return StreamParameters{}, fmt.Errorf("probe %s: no video stream", url)
	}

	codec, err := mapCodec(stream.CodecName)
	if err != nil {
		return StreamParameters{}, err
	}
	format, err := mapPixelFormat(stream.PixFmt)
	if err != nil {
		return StreamParameters{}, err
	}
	if stream.Width <= 0 || stream.Height <= 0 {
		return StreamParameters{}, fmt.Errorf("probe %s: invalid dimensions %dx%d", url, stream.Width, stream.Height)
	}

	return StreamParameters{
		Width:       stream.Width,
		Height:      stream.Height,
		FrameRate:   stream.FrameRate(),
		Codec:       codec,
		PixelFormat: format,
	}, nil
}
