// Package probe discovers the stream parameters needed to construct a GPU
// decoder: resolution, frame rate, codec, and chroma format.
//
// Two backends exist. The ffprobe backend shells out to the ffprobe binary and
// reads its JSON report. The rtsp backend issues a native RTSP DESCRIBE and
// parses the H.264/H.265 sequence parameter set carried in the SDP, which
// avoids the external binary but requires the source to announce parameter
// sets out of band.
//
// Only H.264 and HEVC sources with 4:2:0 or 4:4:4 chroma are supported; other
// streams fail with UnsupportedCodecError or UnsupportedPixelFormatError
// before any subprocess or decoder is created.
package probe
