package repack

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strings"

	"nvdecode/internal/decode"
	"nvdecode/internal/logging"
)

var commandContext = exec.CommandContext

// Option configures the client.
type Option func(*Client)

// WithBinary overrides the default ffmpeg binary name.
func WithBinary(binary string) Option {
	return func(c *Client) {
		if strings.TrimSpace(binary) != "" {
			c.binary = binary
		}
	}
}

// WithLogger routes ffmpeg stderr to the given logger at debug level.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Client builds and launches ffmpeg repacketizer processes.
type Client struct {
	binary string
	logger *slog.Logger
}

// New constructs a client using defaults.
func New(opts ...Option) *Client {
	client := &Client{
		binary: "ffmpeg",
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// args builds the ffmpeg command line: copy the video stream, rewrite it to
// Annex-B framing with parameter sets dumped in band, and emit the raw
// elementary stream on stdout.
func (c *Client) args(url string, codec decode.Codec) []string {
	name := codec.String()
	return []string{
		"-hide_banner",
		"-i", url,
		"-c:v", "copy",
		"-bsf:v", name + "_mp4toannexb,dump_extra=all",
		"-f", name,
		"pipe:1",
	}
}

// Process is a running repacketizer. Output is the elementary-stream pipe;
// it yields EOF when the source disconnects or the process dies.
type Process struct {
	cmd    *exec.Cmd
	stdout io.ReadCloser
}

// Start launches ffmpeg for the URL. The child is bound to ctx: cancelling
// the context kills it, which closes the output pipe.
func (c *Client) Start(ctx context.Context, url string, codec decode.Codec) (*Process, error) {
	if strings.TrimSpace(url) == "" {
		return nil, errors.New("repack: empty url")
	}
	switch codec {
	case decode.H264, decode.HEVC:
	default:
		return nil, fmt.Errorf("repack: unsupported codec %v", codec)
	}

	cmd := commandContext(ctx, c.binary, c.args(url, codec)...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("stderr pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start %s: %w", c.binary, err)
	}

	go c.drainStderr(stderr)

	return &Process{cmd: cmd, stdout: stdout}, nil
}

func (c *Client) drainStderr(r io.Reader) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		c.logger.Debug("ffmpeg", logging.String("line", line))
	}
}

// Output returns the elementary-stream pipe.
func (p *Process) Output() io.Reader {
	return p.stdout
}

// Stop terminates the child and reaps it. Safe after the process has already
// exited.
func (p *Process) Stop() error {
	p.stdout.Close()
	if p.cmd.Process != nil {
		_ = p.cmd.Process.Kill()
	}
	err := p.cmd.Wait()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			// Killed or source disconnect; not a caller-visible failure.
			return nil
		}
		return err
	}
	return nil
}
