package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"nvdecode/internal/config"
	"nvdecode/internal/probe"
)

func newProbeCommand(configFlag *string) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "probe <url>",
		Short: "Print the decode-relevant parameters of a stream",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, _, err := config.Load(*configFlag)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			prober, err := probe.New(cfg)
			if err != nil {
				return err
			}
			params, err := prober.Probe(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("probe %s: %w", args[0], err)
			}

			if jsonOutput {
				return writeJSON(cmd, probeView{
					URL:         args[0],
					Width:       params.Width,
					Height:      params.Height,
					FrameRate:   params.FrameRate,
					Codec:       params.Codec.String(),
					PixelFormat: params.PixelFormat.String(),
				})
			}

			out := renderTable(
				[]string{"Width", "Height", "FPS", "Codec", "Format"},
				[][]string{{
					strconv.Itoa(params.Width),
					strconv.Itoa(params.Height),
					strconv.FormatFloat(params.FrameRate, 'f', -1, 64),
					params.Codec.String(),
					params.PixelFormat.String(),
				}},
				[]columnAlignment{alignRight, alignRight, alignRight, alignLeft, alignLeft},
			)
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit JSON instead of a table")
	return cmd
}

type probeView struct {
	URL         string  `json:"url"`
	Width       int     `json:"width"`
	Height      int     `json:"height"`
	FrameRate   float64 `json:"frame_rate"`
	Codec       string  `json:"codec"`
	PixelFormat string  `json:"pixel_format"`
}
