// Package ffprobe provides a typed wrapper around ffprobe JSON output.
//
// This package has no nvdecode-specific dependencies and could be extracted
// as a standalone library.
//
// Key types:
//   - Result: parsed ffprobe output containing streams and format metadata
//   - Stream: individual audio/video/subtitle stream properties
//
// Primary entry point:
//   - Inspect: executes ffprobe and returns parsed Result
//
// Helper methods on Result and Stream provide convenient access to the first
// video stream and its frame rate rational.
package ffprobe
