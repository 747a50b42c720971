package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"clipforge/internal/assembly"
	"clipforge/internal/cleanup"
	"clipforge/internal/logging"
	"clipforge/internal/tts"
)

// newGenerateCommand runs one generation job in-process, without the daemon.
// The finished clip is kept: retention timers only apply to the daemon.
func newGenerateCommand(configFlag *string) *cobra.Command {
	var text string
	var images []string
	var voiceFlag string

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a single clip from images and narration text",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configFlag)
			if err != nil {
				return err
			}
			if err := cfg.EnsureDirectories(); err != nil {
				return err
			}

			voice, err := tts.ParseVoice(voiceFlag)
			if err != nil {
				return err
			}

			logger, err := logging.NewFromConfig(cfg)
			if err != nil {
				return err
			}

			providers, err := tts.ProvidersFromConfig(cfg)
			if err != nil {
				return err
			}
			synth := tts.NewSynthesizer(cfg.Paths.UploadsDir, logger, providers...)
			janitor := cleanup.NewJanitor(cfg, logger)

			pipeline := assembly.NewPipeline(cfg, logger, synth, janitor)
			result, err := pipeline.Generate(cmd.Context(), assembly.Request{
				Text:   text,
				Images: images,
				Voice:  voice,
			})
			if err != nil {
				janitor.Stop()
				return err
			}
			// The one-shot result stays on disk; only the daemon expires
			// clips. Narration audio is flushed immediately.
			janitor.Cancel(result.VideoPath)
			janitor.Stop()

			rows := [][]string{
				{"Output", result.VideoPath},
				{"Mode", string(result.Mode)},
				{"Size", strconv.FormatInt(result.SizeBytes, 10) + " bytes"},
			}
			if result.Provider != "" {
				rows = append(rows, []string{"Narration", result.Provider})
			}
			if result.Degraded {
				rows = append(rows, []string{"Note", "narration unavailable, produced silent clip"})
			}

			out := cmd.OutOrStdout()
			if stdoutIsTerminal() {
				fmt.Fprintln(out, renderTable([]string{"Field", "Value"}, rows))
			} else {
				for _, row := range rows {
					fmt.Fprintf(out, "%s: %s\n", row[0], row[1])
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&text, "text", "t", "", "Narration text (required, max 200 characters)")
	cmd.Flags().StringArrayVarP(&images, "image", "i", nil, "Image file path (repeatable, at least one required)")
	cmd.Flags().StringVar(&voiceFlag, "voice", "", "Narration voice: male or female (default female)")
	cmd.MarkFlagRequired("text")
	cmd.MarkFlagRequired("image")

	return cmd
}
