// Package assembly orchestrates one clip generation end to end: input
// validation, subtitle segmentation, narration synthesis, the narrated encode
// attempt, and the silent single-image fallback when narration cannot be used.
package assembly

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"clipforge/internal/cleanup"
	"clipforge/internal/config"
	"clipforge/internal/encoding"
	"clipforge/internal/filtergraph"
	"clipforge/internal/logging"
	"clipforge/internal/services"
	"clipforge/internal/subtitles"
	"clipforge/internal/tts"
)

// MaxTextLength is the hard cap on narration text, in runes.
const MaxTextLength = 200

// Mode describes which tier produced the final clip.
type Mode string

const (
	ModeNarrated Mode = "narrated"
	ModeSilent   Mode = "silent"
)

// Request is one generation job: the narration text, the ordered image
// paths, and the requested voice.
type Request struct {
	Text   string
	Images []string
	Voice  tts.Voice
}

// Result describes a finished clip and how it was produced.
type Result struct {
	VideoPath string
	SizeBytes int64
	Mode      Mode
	Provider  string
	Degraded  bool
}

// Pipeline wires the stages together under one config.
type Pipeline struct {
	cfg         *config.Config
	logger      *slog.Logger
	segmenter   subtitles.Segmenter
	synthesizer *tts.Synthesizer
	builder     *filtergraph.Builder
	encoder     *encoding.Encoder
	janitor     *cleanup.Janitor
}

// NewPipeline assembles a Pipeline from its stages.
func NewPipeline(cfg *config.Config, logger *slog.Logger, synthesizer *tts.Synthesizer, janitor *cleanup.Janitor) *Pipeline {
	return &Pipeline{
		cfg:         cfg,
		logger:      logging.NewComponentLogger(logger, "assembly"),
		segmenter:   subtitles.NewSegmenter(cfg.Subtitles.MaxCharsPerCue, cfg.Subtitles.MaxCues),
		synthesizer: synthesizer,
		builder: filtergraph.NewBuilder(
			filtergraph.Frame{Width: cfg.Video.Width, Height: cfg.Video.Height},
			cfg.ClipDuration(),
			filtergraph.Style{
				FontName: cfg.Subtitles.FontName,
				FontSize: cfg.Subtitles.FontSize,
				MarginV:  cfg.Subtitles.MarginV,
			},
		),
		encoder: encoding.NewEncoder(cfg, logger),
		janitor: janitor,
	}
}

// Generate produces one clip. The narrated attempt runs first whenever usable
// narration exists; any narrated failure degrades to a silent single-image
// encode rather than failing the job. Only a silent-tier failure is fatal.
// All transient inputs (narration audio, subtitle files) are cleaned up on
// every path; the finished clip itself is scheduled for delayed removal.
func (p *Pipeline) Generate(ctx context.Context, req Request) (Result, error) {
	var empty Result
	if err := p.validate(req); err != nil {
		return empty, err
	}

	cues, err := p.segmenter.Segment(req.Text, p.cfg.ClipDuration())
	if err != nil {
		return empty, services.Wrap(services.ErrValidation, "assembly", "segment text", "", err)
	}

	narration, err := p.synthesizer.Synthesize(ctx, req.Text, req.Voice)
	if err != nil {
		return empty, err
	}
	// Narration audio never outlives the job by more than its retention
	// window, whatever the outcome.
	defer p.janitor.ScheduleRemoval(narration.Path, p.cfg.AudioRetention())

	outputPath := filepath.Join(p.cfg.Paths.OutputDir, fmt.Sprintf("video_%s.mp4", uuid.NewString()))

	if narration.Usable() {
		artifact, narratedErr := p.encodeTier(ctx, req.Images, cues, narration.Path, outputPath)
		if narratedErr == nil {
			p.janitor.ScheduleRemoval(artifact.Path, p.cfg.OutputRetention())
			p.logger.Info("clip generated",
				logging.String("mode", string(ModeNarrated)),
				logging.String("provider", narration.Provider),
				logging.Int64("bytes", artifact.SizeBytes),
			)
			return Result{
				VideoPath: artifact.Path,
				SizeBytes: artifact.SizeBytes,
				Mode:      ModeNarrated,
				Provider:  narration.Provider,
			}, nil
		}
		p.logger.Warn("narrated encode failed, degrading to silent",
			logging.String("provider", narration.Provider),
			logging.Error(narratedErr),
		)
	} else {
		p.logger.Warn("no usable narration, degrading to silent",
			logging.String("provider", narration.Provider),
		)
	}

	// Silent tier: a single image and no audio track keeps the fallback as
	// simple as possible. Subtitles are still burned in.
	artifact, silentErr := p.encodeTier(ctx, req.Images[:1], cues, "", outputPath)
	if silentErr != nil {
		p.janitor.RemoveNow(outputPath)
		return empty, services.Wrap(services.ErrExternalTool, "assembly", "silent encode", "both tiers failed", silentErr)
	}

	p.janitor.ScheduleRemoval(artifact.Path, p.cfg.OutputRetention())
	p.logger.Info("clip generated",
		logging.String("mode", string(ModeSilent)),
		logging.Int64("bytes", artifact.SizeBytes),
	)
	return Result{
		VideoPath: artifact.Path,
		SizeBytes: artifact.SizeBytes,
		Mode:      ModeSilent,
		Degraded:  true,
	}, nil
}

// encodeTier writes a fresh subtitle file and runs one encode attempt. Each
// tier gets its own subtitle file because the encoder consumes it.
func (p *Pipeline) encodeTier(ctx context.Context, images []string, cues []subtitles.Cue, audioPath, outputPath string) (encoding.OutputArtifact, error) {
	var empty encoding.OutputArtifact
	subtitlePath, err := subtitles.WriteFile(p.cfg.Paths.UploadsDir, cues)
	if err != nil {
		return empty, err
	}

	graph, err := p.builder.Build(len(images), subtitlePath, audioPath != "")
	if err != nil {
		p.janitor.RemoveNow(subtitlePath)
		return empty, services.Wrap(services.ErrValidation, "assembly", "build graph", "", err)
	}

	return p.encoder.Encode(ctx, encoding.Request{
		Images:       images,
		AudioPath:    audioPath,
		SubtitlePath: subtitlePath,
		Graph:        graph,
		OutputPath:   outputPath,
	})
}

func (p *Pipeline) validate(req Request) error {
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return services.Wrap(services.ErrValidation, "assembly", "validate", "narration text required", nil)
	}
	if n := utf8.RuneCountInString(text); n > MaxTextLength {
		return services.Wrap(services.ErrValidation, "assembly", "validate",
			fmt.Sprintf("narration text is %d characters, limit is %d", n, MaxTextLength), nil)
	}
	if len(req.Images) == 0 {
		return services.Wrap(services.ErrValidation, "assembly", "validate", "at least one image required", nil)
	}
	for _, image := range req.Images {
		if _, err := os.Stat(image); err != nil {
			return services.Wrap(services.ErrValidation, "assembly", "validate",
				fmt.Sprintf("image not readable: %s", image), err)
		}
	}
	return nil
}
