//go:build linux

package cuvid

import (
	"fmt"
	"sync"

	"github.com/ebitengine/purego"
)

// Driver API functions resolved at load time.
var (
	cuInit           func(flags uint32) cuResult
	cuDeviceGet      func(device *int32, ordinal int32) cuResult
	cuDeviceGetCount func(count *int32) cuResult
	cuCtxCreate      func(ctx *uintptr, flags uint32, device int32) cuResult
	cuCtxDestroy     func(ctx uintptr) cuResult
	cuCtxPushCurrent func(ctx uintptr) cuResult
	cuCtxPopCurrent  func(ctx *uintptr) cuResult

	cuvidCreateVideoParser  func(parser *uintptr, params *cuvidParserParams) cuResult
	cuvidParseVideoData     func(parser uintptr, packet *cuvidSourceDataPacket) cuResult
	cuvidDestroyVideoParser func(parser uintptr) cuResult
	cuvidCreateDecoder      func(decoder *uintptr, info *cuvidDecodeCreateInfo) cuResult
	cuvidDestroyDecoder     func(decoder uintptr) cuResult
	cuvidDecodePicture      func(decoder uintptr, picParams uintptr) cuResult
	cuvidMapVideoFrame64    func(decoder uintptr, picIdx int32, devPtr *uint64, pitch *uint32, params *cuvidProcParams) cuResult
	cuvidUnmapVideoFrame64  func(decoder uintptr, devPtr uint64) cuResult
)

var (
	loadOnce sync.Once
	loadErr  error
)

// Preflight loads and binds libcuda and libnvcuvid and initializes the
// driver. It is safe to call repeatedly; the work happens once. A failure
// here is a configuration error: nothing was decoded yet and nothing will
// decode until the libraries resolve.
func Preflight(cudaLibrary, cuvidLibrary string) error {
	loadOnce.Do(func() {
		loadErr = load(cudaLibrary, cuvidLibrary)
	})
	return loadErr
}

func load(cudaLibrary, cuvidLibrary string) error {
	cuda, err := dlopenFirst(cudaLibraryPaths(cudaLibrary))
	if err != nil {
		return fmt.Errorf("load libcuda: %w (set decoder.cuda_library or CUDA_PATH)", err)
	}
	cuvid, err := dlopenFirst(cuvidLibraryPaths(cuvidLibrary))
	if err != nil {
		return fmt.Errorf("load libnvcuvid: %w (set decoder.cuvid_library or CUDA_PATH)", err)
	}

	purego.RegisterLibFunc(&cuInit, cuda, "cuInit")
	purego.RegisterLibFunc(&cuDeviceGet, cuda, "cuDeviceGet")
	purego.RegisterLibFunc(&cuDeviceGetCount, cuda, "cuDeviceGetCount")
	purego.RegisterLibFunc(&cuCtxCreate, cuda, "cuCtxCreate_v2")
	purego.RegisterLibFunc(&cuCtxDestroy, cuda, "cuCtxDestroy_v2")
	purego.RegisterLibFunc(&cuCtxPushCurrent, cuda, "cuCtxPushCurrent_v2")
	purego.RegisterLibFunc(&cuCtxPopCurrent, cuda, "cuCtxPopCurrent_v2")

	purego.RegisterLibFunc(&cuvidCreateVideoParser, cuvid, "cuvidCreateVideoParser")
	purego.RegisterLibFunc(&cuvidParseVideoData, cuvid, "cuvidParseVideoData")
	purego.RegisterLibFunc(&cuvidDestroyVideoParser, cuvid, "cuvidDestroyVideoParser")
	purego.RegisterLibFunc(&cuvidCreateDecoder, cuvid, "cuvidCreateDecoder")
	purego.RegisterLibFunc(&cuvidDestroyDecoder, cuvid, "cuvidDestroyDecoder")
	purego.RegisterLibFunc(&cuvidDecodePicture, cuvid, "cuvidDecodePicture")
	purego.RegisterLibFunc(&cuvidMapVideoFrame64, cuvid, "cuvidMapVideoFrame64")
	purego.RegisterLibFunc(&cuvidUnmapVideoFrame64, cuvid, "cuvidUnmapVideoFrame64")

	if res := cuInit(0); res != cudaSuccess {
		return fmt.Errorf("cuInit: %w", cuError("cuInit", res))
	}
	var count int32
	if res := cuDeviceGetCount(&count); res != cudaSuccess {
		return cuError("cuDeviceGetCount", res)
	}
	if count == 0 {
		return fmt.Errorf("no CUDA-capable device found")
	}
	return nil
}

func dlopenFirst(paths []string) (uintptr, error) {
	var lastErr error
	for _, path := range paths {
		handle, err := purego.Dlopen(path, purego.RTLD_NOW|purego.RTLD_GLOBAL)
		if err == nil {
			return handle, nil
		}
		lastErr = err
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("no candidate paths")
	}
	return 0, lastErr
}
