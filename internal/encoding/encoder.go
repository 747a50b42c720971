package encoding

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"clipforge/internal/config"
	"clipforge/internal/filtergraph"
	"clipforge/internal/logging"
	"clipforge/internal/services"
)

var (
	// ErrEmptyOutput reports that ffmpeg exited successfully but produced no file.
	ErrEmptyOutput = errors.New("encoder produced no output file")
	// ErrUndersizedOutput reports an output below the minimum sanity threshold,
	// which guards against silently corrupt zero-frame encodes.
	ErrUndersizedOutput = errors.New("encoder output below minimum size")
)

// OutputArtifact describes a validated encode result.
type OutputArtifact struct {
	Path      string
	SizeBytes int64
	HasAudio  bool
}

// Request carries one encode invocation. Images are ordered; AudioPath is
// empty for the silent path. The subtitle file is consumed by the encode and
// deleted on every exit path.
type Request struct {
	Images       []string
	AudioPath    string
	SubtitlePath string
	Graph        *filtergraph.Graph
	OutputPath   string
}

// Encoder drives ffmpeg with a rendered composition graph under the fixed
// encoding policy from config.
type Encoder struct {
	cfg    *config.Config
	logger *slog.Logger
}

// NewEncoder constructs an Encoder.
func NewEncoder(cfg *config.Config, logger *slog.Logger) *Encoder {
	return &Encoder{cfg: cfg, logger: logging.NewComponentLogger(logger, "encoding")}
}

// Encode runs one ffmpeg invocation and validates the result. Pre-existing
// files at OutputPath are removed first so re-runs are idempotent.
func (e *Encoder) Encode(ctx context.Context, req Request) (OutputArtifact, error) {
	var empty OutputArtifact
	if len(req.Images) == 0 {
		return empty, services.Wrap(services.ErrValidation, "encoding", "encode", "no image inputs", nil)
	}
	if req.Graph == nil {
		return empty, services.Wrap(services.ErrValidation, "encoding", "encode", "composition graph required", nil)
	}

	// The subtitle artifact is transient; remove it whether or not the encode
	// succeeds. Deletion failures are logged, never escalated.
	defer func() {
		if req.SubtitlePath == "" {
			return
		}
		if err := os.Remove(req.SubtitlePath); err != nil && !errors.Is(err, fs.ErrNotExist) {
			e.logger.Warn("failed to remove subtitle file", logging.String("path", req.SubtitlePath), logging.Error(err))
		}
	}()

	if err := os.Remove(req.OutputPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return empty, services.Wrap(services.ErrTransient, "encoding", "prepare output", "failed to remove stale output", err)
	}

	ctx, cancel := context.WithTimeout(ctx, e.cfg.EncodeTimeout())
	defer cancel()

	args := e.buildArgs(req)
	e.logger.Info("launching ffmpeg encode",
		logging.String("command", e.cfg.FFmpegBinary()+" "+strings.Join(args, " ")),
		logging.Int("images", len(req.Images)),
		logging.Bool("audio", req.Graph.HasAudio()),
	)

	output, err := runFFmpeg(ctx, e.cfg.FFmpegBinary(), args)
	if err != nil {
		detail := strings.TrimSpace(string(output))
		if len(detail) > 2000 {
			detail = detail[len(detail)-2000:]
		}
		return empty, services.Wrap(services.ErrExternalTool, "encoding", "ffmpeg encode", detail, err)
	}

	info, err := os.Stat(req.OutputPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return empty, ErrEmptyOutput
		}
		return empty, services.Wrap(services.ErrTransient, "encoding", "stat output", "", err)
	}
	if info.Size() < e.cfg.Video.MinOutputBytes {
		_ = os.Remove(req.OutputPath)
		return empty, fmt.Errorf("%w: %d bytes < %d", ErrUndersizedOutput, info.Size(), e.cfg.Video.MinOutputBytes)
	}

	return OutputArtifact{
		Path:      req.OutputPath,
		SizeBytes: info.Size(),
		HasAudio:  req.Graph.HasAudio(),
	}, nil
}

// buildArgs assembles the fixed-policy ffmpeg argument list. Encoding
// parameters are policy, not caller-tunable.
func (e *Encoder) buildArgs(req Request) []string {
	args := []string{"-y", "-hide_banner"}
	for _, image := range req.Images {
		args = append(args, "-i", image)
	}
	if req.Graph.HasAudio() {
		args = append(args, "-i", req.AudioPath)
	}
	args = append(args, "-filter_complex", req.Graph.Render())
	args = append(args, "-map", "["+req.Graph.VideoLabel()+"]")
	args = append(args, "-c:v", "libx264", "-preset", e.cfg.Video.Preset, "-crf", strconv.Itoa(e.cfg.Video.CRF))
	if req.Graph.HasAudio() {
		args = append(args, "-map", "["+req.Graph.AudioLabel()+"]")
		args = append(args, "-c:a", "aac", "-b:a", e.cfg.Video.AudioBitrate)
	}
	args = append(args,
		"-t", strconv.Itoa(e.cfg.Video.DurationSeconds),
		"-movflags", "+faststart",
		req.OutputPath,
	)
	return args
}
