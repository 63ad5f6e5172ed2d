package main

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bairigao/video-transcoding/internal/adapter/converter/ffmpeg"
)

var capabilitiesCmd = &cobra.Command{
	Use:   "capabilities",
	Short: "Print the ffmpeg version and what it can mux and encode",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := setup()
		if err != nil {
			return err
		}

		driver := ffmpeg.New(ffmpeg.Options{FFmpegPath: cfg.FFmpeg.Path, FFprobePath: cfg.FFmpeg.ProbePath})
		caps, err := driver.DescribeCapabilities(cmd.Context())
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, caps.Version)
		fmt.Fprintf(out, "formats (%d): %s\n", len(caps.Formats), strings.Join(caps.Formats, " "))
		fmt.Fprintf(out, "codecs (%d): %s\n", len(caps.Codecs), strings.Join(caps.Codecs, " "))
		for _, f := range cfg.Formats() {
			fmt.Fprintf(out, "allowed %-5s supported=%t\n", f, slices.Contains(caps.Formats, string(f)))
		}
		return nil
	},
}

