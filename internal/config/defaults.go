package config

const (
	defaultFFmpegBinary        = "ffmpeg"
	defaultFFprobeBinary       = "ffprobe"
	defaultProbeBackend        = "ffprobe"
	defaultProbeTimeoutSeconds = 15
	defaultInitialReadSize     = 4096
	defaultLogFormat           = "console"
	defaultLogLevel            = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Tools: Tools{
			FFmpeg:  defaultFFmpegBinary,
			FFprobe: defaultFFprobeBinary,
		},
		Probe: Probe{
			Backend:        defaultProbeBackend,
			TimeoutSeconds: defaultProbeTimeoutSeconds,
		},
		Decoder: Decoder{
			InitialReadSize: defaultInitialReadSize,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
