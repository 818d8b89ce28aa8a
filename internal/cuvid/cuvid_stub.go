//go:build !linux

package cuvid

import (
	"errors"

	"nvdecode/internal/decode"
)

var errUnsupported = errors.New("cuvid: NVDEC binding is only available on linux")

// Preflight reports that the binding is unavailable on this platform.
func Preflight(cudaLibrary, cuvidLibrary string) error {
	return errUnsupported
}

// NewFactory returns a factory that always fails on this platform.
func NewFactory() decode.Factory {
	return func(decode.Config) (decode.Decoder, error) {
		return nil, errUnsupported
	}
}
