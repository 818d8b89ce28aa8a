//go:build linux

package cuvid

// cuResult mirrors CUresult from the driver API.
type cuResult uint32

const cudaSuccess cuResult = 0

// Error codes in the hardware-reset class: the device or driver is in a
// state only a fresh decoder instance can recover from.
const (
	cudaErrorECCUncorrectable   cuResult = 214
	cudaErrorIllegalAddress     cuResult = 700
	cudaErrorHardwareStackError cuResult = 714
	cudaErrorIllegalInstruction cuResult = 715
	cudaErrorLaunchFailed       cuResult = 719
	cudaErrorUnknown            cuResult = 999
)

func (r cuResult) hardwareReset() bool {
	switch r {
	case cudaErrorECCUncorrectable,
		cudaErrorIllegalAddress,
		cudaErrorHardwareStackError,
		cudaErrorIllegalInstruction,
		cudaErrorLaunchFailed,
		cudaErrorUnknown:
		return true
	default:
		return false
	}
}

// cudaVideoCodec values from cuviddec.h.
type cudaVideoCodec uint32

const (
	cudaVideoCodecH264 cudaVideoCodec = 4
	cudaVideoCodecHEVC cudaVideoCodec = 8
)

// cudaVideoChromaFormat values from cuviddec.h.
type cudaVideoChromaFormat uint32

const (
	cudaVideoChromaFormat420 cudaVideoChromaFormat = 1
	cudaVideoChromaFormat444 cudaVideoChromaFormat = 3
)

// cudaVideoSurfaceFormat values from cuviddec.h.
type cudaVideoSurfaceFormat uint32

const (
	cudaVideoSurfaceFormatNV12   cudaVideoSurfaceFormat = 0
	cudaVideoSurfaceFormatYUV444 cudaVideoSurfaceFormat = 2
)

const cudaVideoDeinterlaceModeWeave uint32 = 0

// cuvidSourceDataPacket mirrors CUVIDSOURCEDATAPACKET (LP64 layout).
type cuvidSourceDataPacket struct {
	flags       uint64
	payloadSize uint64
	payload     *byte
	timestamp   int64
}

const cuvidPktEndOfStream uint64 = 0x01

// cuvidParserParams mirrors CUVIDPARSERPARAMS.
type cuvidParserParams struct {
	codecType            cudaVideoCodec
	maxNumDecodeSurfaces uint32
	clockRate            uint32
	errorThreshold       uint32
	maxDisplayDelay      uint32
	flags                uint32
	reserved1            [4]uint32
	userData             uintptr
	pfnSequenceCallback  uintptr
	pfnDecodePicture     uintptr
	pfnDisplayPicture    uintptr
	pvReserved2          [6]uintptr
	pExtVideoInfo        uintptr
}

// cuvidDecodeCreateInfo mirrors CUVIDDECODECREATEINFO (LP64 layout).
type cuvidDecodeCreateInfo struct {
	width                uint64
	height               uint64
	numDecodeSurfaces    uint64
	codecType            cudaVideoCodec
	chromaFormat         cudaVideoChromaFormat
	creationFlags        uint64
	bitDepthMinus8       uint64
	intraDecodeOnly      uint64
	maxWidth             uint64
	maxHeight            uint64
	reserved1            uint64
	displayAreaLeft      int16
	displayAreaTop       int16
	displayAreaRight     int16
	displayAreaBottom    int16
	outputFormat         cudaVideoSurfaceFormat
	deinterlaceMode      uint32
	targetWidth          uint64
	targetHeight         uint64
	numOutputSurfaces    uint64
	vidLock              uintptr
	targetRectLeft       int16
	targetRectTop        int16
	targetRectRight      int16
	targetRectBottom     int16
	enableHistogram      uint64
	reserved2            [4]uint64
}

// cuvidParserDispInfo mirrors CUVIDPARSERDISPINFO.
type cuvidParserDispInfo struct {
	pictureIndex     int32
	progressiveFrame int32
	topFieldFirst    int32
	repeatFirstField int32
	timestamp        int64
}

// cuvidProcParams mirrors CUVIDPROCPARAMS. Only the interlacing hints are
// populated; the rest stays zeroed.
type cuvidProcParams struct {
	progressiveFrame int32
	secondField      int32
	topFieldFirst    int32
	unpairedField    int32
	reserved         [10]uint32
	rawInputDptr     uint64
	rawInputPitch    uint32
	rawInputFormat   uint32
	rawOutputDptr    uint64
	rawOutputPitch   uint32
	paddingTail      [17]uint32
	outputStream     uintptr
	reserved2        [46]uint32
	reserved3        [2]uintptr
}
