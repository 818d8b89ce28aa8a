// Package repack launches the ffmpeg subprocess that converts an RTSP
// source into a raw Annex-B elementary stream on a byte pipe.
//
// Containers carry H.264/HEVC with length-prefixed NAL framing; the raw
// NVDEC parser wants start-code-delimited framing with parameter sets
// repeated in band. ffmpeg does that conversion without re-encoding via the
// <codec>_mp4toannexb and dump_extra bitstream filters; this package only
// builds the command line and owns the child process.
package repack
