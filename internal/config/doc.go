// Package config loads and validates nvdecode configuration.
//
// Configuration lives in a TOML file (default ~/.config/nvdecode/config.toml,
// or ./nvdecode.toml in the working directory) and covers the external tool
// binaries, probe backend selection, decoder library locations, and logging.
// Every field has a default so the tool runs without a config file when ffmpeg
// and the NVIDIA driver libraries are on the usual paths.
package config
