// Package decode defines the contract between decode workers and GPU decoder
// implementations.
//
// A Decoder accepts raw Annex-B elementary stream chunks and reports, per
// packet, whether a frame was emitted and how many bytes the hardware consumed
// for it. Decoders buffer internally, so packet submission and frame output
// are not 1:1. The one recoverable fault class, a transient GPU/driver reset,
// is signalled with ErrHardwareReset so callers can respawn the decoder and
// keep going.
package decode
