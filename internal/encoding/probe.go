package encoding

import (
	"context"
	"encoding/json"
	"strconv"

	"clipforge/internal/services"
)

// MediaInfo is the subset of ffprobe format data the pipeline inspects.
type MediaInfo struct {
	FormatName      string
	DurationSeconds float64
	SizeBytes       int64
}

// Available reports whether the ffmpeg binary can be executed. The daemon
// surfaces this in its status report so a missing tool is visible before the
// first encode fails.
func Available(ctx context.Context, binary string) bool {
	_, err := runFFmpeg(ctx, binary, []string{"-version"})
	return err == nil
}

type probeFormat struct {
	Format struct {
		FormatName string `json:"format_name"`
		Duration   string `json:"duration"`
		Size       string `json:"size"`
	} `json:"format"`
}

// Inspect reads container-level metadata from a media file via ffprobe.
func Inspect(ctx context.Context, binary, path string) (MediaInfo, error) {
	var empty MediaInfo
	out, err := runProbe(ctx, binary, []string{
		"-v", "error",
		"-print_format", "json",
		"-show_format",
		path,
	})
	if err != nil {
		return empty, services.Wrap(services.ErrExternalTool, "encoding", "ffprobe inspect", path, err)
	}

	var parsed probeFormat
	if err := json.Unmarshal(out, &parsed); err != nil {
		return empty, services.Wrap(services.ErrExternalTool, "encoding", "ffprobe parse", path, err)
	}

	info := MediaInfo{FormatName: parsed.Format.FormatName}
	if parsed.Format.Duration != "" {
		if d, err := strconv.ParseFloat(parsed.Format.Duration, 64); err == nil {
			info.DurationSeconds = d
		}
	}
	if parsed.Format.Size != "" {
		if s, err := strconv.ParseInt(parsed.Format.Size, 10, 64); err == nil {
			info.SizeBytes = s
		}
	}
	return info, nil
}
