package probe

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bluenviron/gortsplib/v4"
	"github.com/bluenviron/gortsplib/v4/pkg/base"
	"github.com/bluenviron/gortsplib/v4/pkg/description"
	"github.com/bluenviron/gortsplib/v4/pkg/format"
	"github.com/bluenviron/mediacommon/v2/pkg/codecs/h264"
	"github.com/bluenviron/mediacommon/v2/pkg/codecs/h265"

	"nvdecode/internal/decode"
)

// RTSPProber discovers stream parameters with a native RTSP DESCRIBE,
// reading resolution, frame rate and chroma format from the SPS announced in
// the SDP. No external binary is involved.
type RTSPProber struct {
	Timeout time.Duration
}

// Probe connects to the RTSP source, issues DESCRIBE, and maps the first
// video media. The session is torn down before returning.
func (p *RTSPProber) Probe(ctx context.Context, rawURL string) (StreamParameters, error) {
	u, err := base.ParseURL(rawURL)
	if err != nil {
		return StreamParameters{}, fmt.Errorf("parse url: %w", err)
	}

	client := gortsplib.Client{
		ReadTimeout:  p.Timeout,
		WriteTimeout: p.Timeout,
	}
	if err := client.Start(u.Scheme, u.Host); err != nil {
		return StreamParameters{}, fmt.Errorf("connect %s: %w", u.Host, err)
	}
	defer client.Close()

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			client.Close()
		case <-done:
		}
	}()

	desc, _, err := client.Describe(u)
	if err != nil {
		return StreamParameters{}, fmt.Errorf("describe %s: %w", rawURL, err)
	}

	forma, err := firstVideoFormat(desc)
	if err != nil {
		return StreamParameters{}, err
	}
	return paramsFromFormat(forma)
}

func firstVideoFormat(desc *description.Session) (format.Format, error) {
	for _, media := range desc.Medias {
		if media.Type != description.MediaTypeVideo {
			continue
		}
		if len(media.Formats) == 0 {
			continue
		}
		return media.Formats[0], nil
	}
	return nil, fmt.Errorf("no video media announced")
}

func paramsFromFormat(forma format.Format) (StreamParameters, error) {
	switch f := forma.(type) {
	case *format.H264:
		return paramsFromH264SPS(f.SPS)
	case *format.H265:
		return paramsFromH265SPS(f.SPS)
	default:
		return StreamParameters{}, &UnsupportedCodecError{Name: strings.ToLower(forma.Codec())}
	}
}

func paramsFromH264SPS(raw []byte) (StreamParameters, error) {
	if len(raw) == 0 {
		return StreamParameters{}, fmt.Errorf("h264: no sps in sdp; use the ffprobe backend for this source")
	}
	var sps h264.SPS
	if err := sps.Unmarshal(raw); err != nil {
		return StreamParameters{}, fmt.Errorf("h264: parse sps: %w", err)
	}
	idc := sps.ChromaFormatIdc
	if !h264HighFamilyProfile(sps.ProfileIdc) {
		// chroma_format_idc is only coded for the High profile family;
		// everything below is 4:2:0 by definition.
		idc = 1
	}
	pixfmt, err := mapPixelFormat(chromaName(idc))
	if err != nil {
		return StreamParameters{}, err
	}
	return StreamParameters{
		Width:       sps.Width(),
		Height:      sps.Height(),
		FrameRate:   sps.FPS(),
		Codec:       decode.H264,
		PixelFormat: pixfmt,
	}, nil
}

func paramsFromH265SPS(raw []byte) (StreamParameters, error) {
	if len(raw) == 0 {
		return StreamParameters{}, fmt.Errorf("h265: no sps in sdp; use the ffprobe backend for this source")
	}
	var sps h265.SPS
	if err := sps.Unmarshal(raw); err != nil {
		return StreamParameters{}, fmt.Errorf("h265: parse sps: %w", err)
	}
	pixfmt, err := mapPixelFormat(chromaName(sps.ChromaFormatIdc))
	if err != nil {
		return StreamParameters{}, err
	}
	return StreamParameters{
		Width:       sps.Width(),
		Height:      sps.Height(),
		FrameRate:   sps.FPS(),
		Codec:       decode.HEVC,
		PixelFormat: pixfmt,
	}, nil
}

func h264HighFamilyProfile(profileIdc uint8) bool {
	switch profileIdc {
	case 100, 110, 122, 244, 44, 83, 86, 118, 128, 138, 139, 134, 135:
		return true
	default:
		return false
	}
}

// chromaName translates chroma_format_idc into the ffmpeg pixel format name
// used by the shared classifier.
func chromaName(idc uint32) string {
	switch idc {
	case 0:
		return "gray"
	case 1:
		return "yuv420p"
	case 2:
		return "yuv422p"
	case 3:
		return "yuv444p"
	default:
		return fmt.Sprintf("chroma(%d)", idc)
	}
}
