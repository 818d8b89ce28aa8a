package main

import (
	"context"
	"fmt"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"nvdecode/internal/config"
	"nvdecode/internal/cuvid"
	"nvdecode/internal/deps"
	"nvdecode/internal/logging"
	"nvdecode/internal/probe"
	"nvdecode/internal/repack"
	"nvdecode/internal/worker"
)

func newRootCommand() *cobra.Command {
	var configFlag string

	rootCmd := &cobra.Command{
		Use:           "nvdecode <gpu_id> <url>...",
		Short:         "Parallel hardware decoding of live streams on one GPU",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) < 2 {
				cmd.Usage()
				return fmt.Errorf("expected a GPU ordinal and at least one stream url")
			}
			gpu, err := strconv.Atoi(args[0])
			if err != nil || gpu < 0 {
				return fmt.Errorf("invalid GPU ordinal %q", args[0])
			}
			return runDecode(cmd.Context(), configFlag, gpu, args[1:])
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")

	rootCmd.AddCommand(newProbeCommand(&configFlag))
	rootCmd.AddCommand(newDepsCommand(&configFlag))
	rootCmd.AddCommand(newConfigCommand())

	return rootCmd
}

func runDecode(ctx context.Context, configPath string, gpu int, urls []string) error {
	cfg, _, _, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.New(logging.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
	if err != nil {
		return fmt.Errorf("configure logging: %w", err)
	}

	if err := checkRequiredBinaries(cfg); err != nil {
		return err
	}
	if err := cuvid.Preflight(cfg.Decoder.CUDALibrary, cfg.Decoder.CUVIDLibrary); err != nil {
		return fmt.Errorf("decoder preflight: %w", err)
	}

	prober, err := probe.New(cfg)
	if err != nil {
		return err
	}
	repacker := repack.New(
		repack.WithBinary(cfg.Tools.FFmpeg),
		repack.WithLogger(logger),
	)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool := &worker.Pool{
		GPU:             gpu,
		URLs:            urls,
		Prober:          prober,
		StartPipe:       worker.NewRepackPipe(repacker),
		Factory:         cuvid.NewFactory(),
		InitialReadSize: cfg.Decoder.InitialReadSize,
		Logger:          logger,
	}
	return pool.Run(ctx)
}

// checkRequiredBinaries fails fast before any subprocess is launched. The
// ffprobe binary is only required when the probe backend shells out to it.
func checkRequiredBinaries(cfg *config.Config) error {
	requirements := []deps.Requirement{
		{Name: "FFmpeg", Command: cfg.Tools.FFmpeg, Description: "stream repacketizing"},
	}
	if cfg.Probe.Backend == "ffprobe" {
		requirements = append(requirements, deps.Requirement{
			Name: "FFprobe", Command: cfg.Tools.FFprobe, Description: "stream probing",
		})
	}
	for _, status := range deps.CheckBinaries(requirements) {
		if !status.Available {
			return fmt.Errorf("%s unavailable: %s", status.Name, status.Detail)
		}
	}
	return nil
}
