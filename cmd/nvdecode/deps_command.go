package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"nvdecode/internal/config"
	"nvdecode/internal/cuvid"
	"nvdecode/internal/deps"
)

func newDepsCommand(configFlag *string) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "deps",
		Short: "Report availability of external binaries and driver libraries",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, _, err := config.Load(*configFlag)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			statuses := deps.CheckBinaries([]deps.Requirement{
				{Name: "FFmpeg", Command: cfg.Tools.FFmpeg, Description: "stream repacketizing"},
				{Name: "FFprobe", Command: cfg.Tools.FFprobe, Description: "stream probing", Optional: cfg.Probe.Backend != "ffprobe"},
			})
			statuses = append(statuses,
				deps.CheckLibrary("CUDA driver", "GPU context management",
					cuvid.CUDALibraryCandidates(cfg.Decoder.CUDALibrary)),
				deps.CheckLibrary("NVDEC", "hardware bitstream decoding",
					cuvid.CUVIDLibraryCandidates(cfg.Decoder.CUVIDLibrary)),
			)

			if jsonOutput {
				return writeJSON(cmd, statuses)
			}

			rows := make([][]string, 0, len(statuses))
			missingRequired := false
			for _, status := range statuses {
				available := "yes"
				if !status.Available {
					available = "no"
					if !status.Optional {
						missingRequired = true
					}
				}
				rows = append(rows, []string{status.Name, status.Command, available, status.Detail})
			}
			out := renderTable(
				[]string{"Dependency", "Location", "Available", "Detail"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft},
			)
			fmt.Fprintln(cmd.OutOrStdout(), out)

			if missingRequired {
				return fmt.Errorf("required dependencies missing")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit JSON instead of a table")
	return cmd
}
