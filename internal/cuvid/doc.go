// Package cuvid binds the NVIDIA video decoder (NVDEC) through libcuda and
// libnvcuvid, loaded at runtime with purego. No cgo and no SDK headers are
// required at build time; the driver libraries are resolved from explicit
// configuration, CUDA_PATH, or the standard system locations.
//
// Each decoder owns a CUDA context on the configured GPU and a CUVID video
// parser. Annex-B packets are pushed into the parser; decoded pictures come
// back through the parser callbacks and are surfaced one per DecodePacket
// call. CUDA error codes in the hardware-reset class are translated to
// decode.ErrHardwareReset so callers can respawn the instance.
//
// Call Preflight once at startup. It loads and binds both libraries and
// reports a configuration error before any decoding starts.
package cuvid
