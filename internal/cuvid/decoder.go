//go:build linux

package cuvid

import (
	"errors"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/ebitengine/purego"

	"nvdecode/internal/decode"
)

// maxDecodeSurfaces bounds the parser's decode picture buffer. 20 covers the
// worst-case DPB of both supported codecs.
const maxDecodeSurfaces = 20

// purego callbacks cannot be released, so the three parser callbacks are
// created once and dispatch on the userData handle.
var (
	callbackOnce     sync.Once
	sequenceCallback uintptr
	decodeCallback   uintptr
	displayCallback  uintptr

	registry   sync.Map // uintptr -> *Decoder
	nextHandle atomic.Uintptr
)

func parserCallbacks() (uintptr, uintptr, uintptr) {
	callbackOnce.Do(func() {
		sequenceCallback = purego.NewCallback(onSequence)
		decodeCallback = purego.NewCallback(onDecodePicture)
		displayCallback = purego.NewCallback(onDisplayPicture)
	})
	return sequenceCallback, decodeCallback, displayCallback
}

func lookupDecoder(handle uintptr) *Decoder {
	if value, ok := registry.Load(handle); ok {
		return value.(*Decoder)
	}
	return nil
}

func onSequence(userData uintptr, format uintptr) uintptr {
	if lookupDecoder(userData) == nil {
		return 0
	}
	// The decoder is constructed eagerly from probed parameters; the
	// sequence header only confirms them.
	return 1
}

func onDecodePicture(userData uintptr, picParams uintptr) uintptr {
	d := lookupDecoder(userData)
	if d == nil || picParams == 0 {
		return 0
	}
	if res := cuvidDecodePicture(d.decoder, picParams); res != cudaSuccess {
		d.callbackErr = res
		return 0
	}
	return 1
}

func onDisplayPicture(userData uintptr, dispInfo uintptr) uintptr {
	d := lookupDecoder(userData)
	if d == nil {
		return 0
	}
	if dispInfo == 0 {
		// NULL marks end of stream.
		return 1
	}
	info := *(*cuvidParserDispInfo)(unsafe.Pointer(dispInfo))
	d.pending = append(d.pending, info)
	return 1
}

// Decoder is one NVDEC instance bound to a CUDA context on a single GPU.
// Not safe for concurrent use; each decode worker owns exactly one.
type Decoder struct {
	cfg     decode.Config
	handle  uintptr
	ctx     uintptr
	parser  uintptr
	decoder uintptr

	pending         []cuvidParserDispInfo
	bytesSinceFrame int
	callbackErr     cuResult
	mappedPtr       uint64
	closed          bool
}

// NewFactory returns a decode.Factory backed by this binding. Preflight must
// have succeeded before the factory is used.
func NewFactory() decode.Factory {
	return func(cfg decode.Config) (decode.Decoder, error) {
		return New(cfg)
	}
}

// New constructs a decoder for the given stream configuration.
func New(cfg decode.Config) (*Decoder, error) {
	if cuInit == nil {
		return nil, errors.New("cuvid: driver libraries not loaded; call Preflight first")
	}
	codec, err := codecFor(cfg.Codec)
	if err != nil {
		return nil, err
	}
	chroma, surface, err := formatsFor(cfg.PixelFormat)
	if err != nil {
		return nil, err
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("cuvid: invalid dimensions %dx%d", cfg.Width, cfg.Height)
	}

	var device int32
	if res := cuDeviceGet(&device, int32(cfg.GPU)); res != cudaSuccess {
		return nil, cuError("cuDeviceGet", res)
	}

	d := &Decoder{cfg: cfg, handle: nextHandle.Add(1)}
	registry.Store(d.handle, d)

	if res := cuCtxCreate(&d.ctx, 0, device); res != cudaSuccess {
		registry.Delete(d.handle)
		return nil, cuError("cuCtxCreate", res)
	}

	createInfo := cuvidDecodeCreateInfo{
		width:             uint64(cfg.Width),
		height:            uint64(cfg.Height),
		numDecodeSurfaces: maxDecodeSurfaces,
		codecType:         codec,
		chromaFormat:      chroma,
		outputFormat:      surface,
		deinterlaceMode:   cudaVideoDeinterlaceModeWeave,
		maxWidth:          uint64(cfg.Width),
		maxHeight:         uint64(cfg.Height),
		targetWidth:       uint64(cfg.Width),
		targetHeight:      uint64(cfg.Height),
		numOutputSurfaces: 2,
	}
	if res := cuvidCreateDecoder(&d.decoder, &createInfo); res != cudaSuccess {
		d.teardown()
		return nil, cuError("cuvidCreateDecoder", res)
	}

	seqCB, decCB, dispCB := parserCallbacks()
	parserParams := cuvidParserParams{
		codecType:            codec,
		maxNumDecodeSurfaces: maxDecodeSurfaces,
		maxDisplayDelay:      1,
		userData:             d.handle,
		pfnSequenceCallback:  seqCB,
		pfnDecodePicture:     decCB,
		pfnDisplayPicture:    dispCB,
	}
	if res := cuvidCreateVideoParser(&d.parser, &parserParams); res != cudaSuccess {
		d.teardown()
		return nil, cuError("cuvidCreateVideoParser", res)
	}

	return d, nil
}

// DecodePacket submits one elementary-stream chunk and reports at most one
// decoded surface. The returned surface stays valid until the next call.
func (d *Decoder) DecodePacket(pkt []byte) (decode.Result, error) {
	if d.closed {
		return decode.Result{}, errors.New("cuvid: decoder closed")
	}
	if len(pkt) == 0 {
		return decode.Result{}, nil
	}

	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	if res := cuCtxPushCurrent(d.ctx); res != cudaSuccess {
		return decode.Result{}, cuError("cuCtxPushCurrent", res)
	}
	defer func() {
		var popped uintptr
		cuCtxPopCurrent(&popped)
	}()

	d.callbackErr = cudaSuccess
	packet := cuvidSourceDataPacket{
		payloadSize: uint64(len(pkt)),
		payload:     &pkt[0],
	}
	res := cuvidParseVideoData(d.parser, &packet)
	runtime.KeepAlive(pkt)
	if res == cudaSuccess && d.callbackErr != cudaSuccess {
		res = d.callbackErr
	}
	if res != cudaSuccess {
		return decode.Result{}, cuError("cuvidParseVideoData", res)
	}

	d.bytesSinceFrame += len(pkt)
	if len(d.pending) == 0 {
		return decode.Result{}, nil
	}

	info := d.pending[0]
	d.pending = d.pending[1:]

	if d.mappedPtr != 0 {
		cuvidUnmapVideoFrame64(d.decoder, d.mappedPtr)
		d.mappedPtr = 0
	}
	procParams := cuvidProcParams{
		progressiveFrame: info.progressiveFrame,
		topFieldFirst:    info.topFieldFirst,
	}
	var devPtr uint64
	var pitch uint32
	if res := cuvidMapVideoFrame64(d.decoder, info.pictureIndex, &devPtr, &pitch, &procParams); res != cudaSuccess {
		return decode.Result{}, cuError("cuvidMapVideoFrame64", res)
	}
	d.mappedPtr = devPtr

	consumed := d.bytesSinceFrame
	d.bytesSinceFrame = 0

	return decode.Result{
		Surface: &decode.Surface{
			DevicePtr: uintptr(devPtr),
			Pitch:     int(pitch),
			Width:     d.cfg.Width,
			Height:    d.cfg.Height,
			Format:    d.cfg.PixelFormat,
			Timestamp: info.timestamp,
		},
		BytesConsumed: consumed,
	}, nil
}

// Close releases the parser, decoder, and CUDA context.
func (d *Decoder) Close() error {
	if d.closed {
		return nil
	}
	d.closed = true
	d.teardown()
	return nil
}

func (d *Decoder) teardown() {
	registry.Delete(d.handle)
	if d.ctx != 0 {
		cuCtxPushCurrent(d.ctx)
	}
	if d.mappedPtr != 0 {
		cuvidUnmapVideoFrame64(d.decoder, d.mappedPtr)
		d.mappedPtr = 0
	}
	if d.parser != 0 {
		cuvidDestroyVideoParser(d.parser)
		d.parser = 0
	}
	if d.decoder != 0 {
		cuvidDestroyDecoder(d.decoder)
		d.decoder = 0
	}
	if d.ctx != 0 {
		var popped uintptr
		cuCtxPopCurrent(&popped)
		cuCtxDestroy(d.ctx)
		d.ctx = 0
	}
}

func codecFor(codec decode.Codec) (cudaVideoCodec, error) {
	switch codec {
	case decode.H264:
		return cudaVideoCodecH264, nil
	case decode.HEVC:
		return cudaVideoCodecHEVC, nil
	default:
		return 0, fmt.Errorf("cuvid: unsupported codec %v", codec)
	}
}

func formatsFor(format decode.PixelFormat) (cudaVideoChromaFormat, cudaVideoSurfaceFormat, error) {
	switch format {
	case decode.NV12:
		return cudaVideoChromaFormat420, cudaVideoSurfaceFormatNV12, nil
	case decode.YUV444:
		return cudaVideoChromaFormat444, cudaVideoSurfaceFormatYUV444, nil
	default:
		return 0, 0, fmt.Errorf("cuvid: unsupported pixel format %v", format)
	}
}

// cuError wraps a driver status, translating the hardware-reset class to the
// sentinel workers recover on.
func cuError(call string, res cuResult) error {
	if res.hardwareReset() {
		return fmt.Errorf("%s: CUDA error %d: %w", call, uint32(res), decode.ErrHardwareReset)
	}
	return fmt.Errorf("%s: CUDA error %d", call, uint32(res))
}
