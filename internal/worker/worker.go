package worker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"nvdecode/internal/decode"
	"nvdecode/internal/logging"
	"nvdecode/internal/probe"
	"nvdecode/internal/repack"
)

// Pipe is the elementary-stream byte pipe of a running repacketizer.
type Pipe interface {
	Output() io.Reader
	Stop() error
}

// StartPipeFunc launches the repacketizing subprocess for a URL.
type StartPipeFunc func(ctx context.Context, url string, codec decode.Codec) (Pipe, error)

// NewRepackPipe adapts a repack client to the worker's pipe constructor.
func NewRepackPipe(client *repack.Client) StartPipeFunc {
	return func(ctx context.Context, url string, codec decode.Codec) (Pipe, error) {
		return client.Start(ctx, url, codec)
	}
}

// Worker decodes one live stream until its pipe closes or an unrecoverable
// error occurs.
type Worker struct {
	URL string
	Tag string
	GPU int

	Prober          probe.Prober
	StartPipe       StartPipeFunc
	Factory         decode.Factory
	InitialReadSize int
	Logger          *slog.Logger
}

// Run probes the stream, launches the repacketizer, constructs the decoder,
// and enters the decode loop. The setup order is fixed: a probe failure means
// no subprocess and no decoder were ever created.
func (w *Worker) Run(ctx context.Context) error {
	logger := logging.NewComponentLogger(w.Logger, "worker").With(
		logging.String(logging.FieldWorker, w.Tag),
		logging.String(logging.FieldURL, w.URL),
	)

	params, err := w.Prober.Probe(ctx, w.URL)
	if err != nil {
		return fmt.Errorf("probe stream: %w", err)
	}
	logger.Info("stream probed",
		logging.Int("width", params.Width),
		logging.Int("height", params.Height),
		logging.Float64("fps", params.FrameRate),
		logging.String("codec", params.Codec.String()),
		logging.String("format", params.PixelFormat.String()),
	)

	pipe, err := w.StartPipe(ctx, w.URL, params.Codec)
	if err != nil {
		return fmt.Errorf("start repacketizer: %w", err)
	}
	defer pipe.Stop()

	cfg := decode.Config{
		Width:       params.Width,
		Height:      params.Height,
		PixelFormat: params.PixelFormat,
		Codec:       params.Codec,
		GPU:         w.GPU,
	}
	dec, err := w.Factory(cfg)
	if err != nil {
		return fmt.Errorf("create decoder: %w", err)
	}

	return w.decodeLoop(pipe.Output(), dec, cfg, params.FrameRate, logger)
}

// decodeLoop runs until the pipe yields zero bytes. There is no flush or
// drain at the end: the amount of frames available from a live source is
// unknown.
func (w *Worker) decodeLoop(r io.Reader, dec decode.Decoder, cfg decode.Config, frameRate float64, logger *slog.Logger) error {
	defer func() {
		dec.Close()
	}()

	initial := w.InitialReadSize
	if initial <= 0 {
		initial = 4096
	}
	heartbeat := uint64(frameRate)
	if heartbeat == 0 {
		heartbeat = 1
	}

	readSize := initial
	var totalBytesRead uint64
	var totalFramesDecoded uint64
	buf := make([]byte, initial)

	for {
		// Pipe read underflow protection: when adaptation collapses
		// the read size to zero, restart from the average bytes per
		// decoded frame and rescale the counters so they cannot grow
		// without bound.
		if readSize == 0 {
			if totalFramesDecoded > 0 {
				readSize = int(totalBytesRead / totalFramesDecoded)
				totalBytesRead = uint64(readSize)
				totalFramesDecoded = 1
			}
			if readSize == 0 {
				readSize = initial
			}
		}
		if readSize > len(buf) {
			buf = make([]byte, readSize)
		}

		n, readErr := r.Read(buf[:readSize])
		if n == 0 {
			// Upstream pipe closed; the only normal termination.
			logger.Info("can't read data from pipe")
			if readErr != nil && !errors.Is(readErr, io.EOF) {
				logger.Debug("pipe read", logging.Error(readErr))
			}
			return nil
		}
		totalBytesRead += uint64(n)

		result, err := dec.DecodePacket(buf[:n])
		if err != nil {
			if errors.Is(err, decode.ErrHardwareReset) {
				// Simplest possible recovery: respawn the decoder
				// with identical configuration and keep going.
				logger.Warn("hardware reset, respawning decoder", logging.Error(err))
				dec.Close()
				next, ferr := w.Factory(cfg)
				if ferr != nil {
					return fmt.Errorf("respawn decoder: %w", ferr)
				}
				dec = next
				continue
			}
			return fmt.Errorf("decode packet: %w", err)
		}

		if result.Surface != nil {
			totalFramesDecoded++
			// Shift towards underflow to avoid growing GPU-resident
			// buffering; the read size never grows here.
			if result.BytesConsumed < readSize {
				readSize = result.BytesConsumed
			}
			if totalFramesDecoded%heartbeat == 0 {
				logger.Info("decoding", logging.Uint64("frames", totalFramesDecoded))
			}
		}
	}
}
