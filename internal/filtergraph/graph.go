package filtergraph

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Frame is the fixed output geometry every clip is rendered at.
type Frame struct {
	Width  int
	Height int
}

// Style describes the subtitle burn-in appearance, rendered to an ASS
// force_style clause at the encoder boundary.
type Style struct {
	FontName string
	FontSize int
	MarginV  int
}

// ForceStyle renders the libass style override string.
func (s Style) ForceStyle() string {
	return fmt.Sprintf(
		"FontName=%s,FontSize=%d,PrimaryColour=&Hffffff,OutlineColour=&H000000,Outline=2,Alignment=2,MarginV=%d",
		s.FontName, s.FontSize, s.MarginV,
	)
}

type node struct {
	inputs  []string
	filters []string
	outputs []string
}

// Graph is a typed description of the scale/pad/concat/subtitle/audio-trim
// operations one encode performs. It is transient: built per request and
// rendered to ffmpeg filter_complex syntax only at the invocation boundary.
type Graph struct {
	nodes      []node
	videoLabel string
	audioLabel string
}

// VideoLabel names the final video stream for output mapping.
func (g *Graph) VideoLabel() string { return g.videoLabel }

// AudioLabel names the final audio stream, or "" for a silent graph.
func (g *Graph) AudioLabel() string { return g.audioLabel }

// HasAudio reports whether the graph carries an audio track.
func (g *Graph) HasAudio() bool { return g.audioLabel != "" }

// Render serializes the graph to ffmpeg filter_complex syntax.
func (g *Graph) Render() string {
	parts := make([]string, 0, len(g.nodes))
	for _, n := range g.nodes {
		var b strings.Builder
		for _, in := range n.inputs {
			b.WriteString("[" + in + "]")
		}
		b.WriteString(strings.Join(n.filters, ","))
		for _, out := range n.outputs {
			b.WriteString("[" + out + "]")
		}
		parts = append(parts, b.String())
	}
	return strings.Join(parts, ";")
}

// Builder constructs composition graphs under a fixed frame, duration, and
// subtitle style policy.
type Builder struct {
	frame    Frame
	duration time.Duration
	style    Style
}

// NewBuilder returns a builder for the given fixed policy.
func NewBuilder(frame Frame, duration time.Duration, style Style) *Builder {
	return &Builder{frame: frame, duration: duration, style: style}
}

// Build assembles the graph for imageCount ordered image inputs, burning the
// subtitle file into the final video stream. When withAudio is set the graph
// expects the narration as input index imageCount and trims it to the clip
// duration with its timeline origin reset; shorter narration is not looped and
// longer narration is truncated.
func (b *Builder) Build(imageCount int, subtitlePath string, withAudio bool) (*Graph, error) {
	if imageCount < 1 {
		return nil, errors.New("filtergraph: at least one image input required")
	}
	if strings.TrimSpace(subtitlePath) == "" {
		return nil, errors.New("filtergraph: subtitle path required")
	}

	g := &Graph{}

	// Per-image stage: scale to fit, then pad centered to the exact frame.
	// Uniform geometry is required before concatenation.
	padded := make([]string, imageCount)
	for i := 0; i < imageCount; i++ {
		label := fmt.Sprintf("v%d", i)
		padded[i] = label
		g.nodes = append(g.nodes, node{
			inputs: []string{fmt.Sprintf("%d:v", i)},
			filters: []string{
				fmt.Sprintf("scale=%d:%d:force_original_aspect_ratio=decrease", b.frame.Width, b.frame.Height),
				fmt.Sprintf("pad=%d:%d:(ow-iw)/2:(oh-ih)/2", b.frame.Width, b.frame.Height),
			},
			outputs: []string{label},
		})
	}

	// Cross-image stage: a single image skips concatenation entirely.
	videoIn := padded[0]
	if imageCount > 1 {
		g.nodes = append(g.nodes, node{
			inputs:  padded,
			filters: []string{fmt.Sprintf("concat=n=%d:v=1:a=0", imageCount)},
			outputs: []string{"cat"},
		})
		videoIn = "cat"
	}

	// Burn subtitles after concatenation so one burn covers every segment.
	g.nodes = append(g.nodes, node{
		inputs: []string{videoIn},
		filters: []string{
			fmt.Sprintf("subtitles='%s':force_style='%s'", escapeSubtitlePath(subtitlePath), b.style.ForceStyle()),
		},
		outputs: []string{"v"},
	})
	g.videoLabel = "v"

	if withAudio {
		g.nodes = append(g.nodes, node{
			inputs: []string{fmt.Sprintf("%d:a", imageCount)},
			filters: []string{
				fmt.Sprintf("atrim=duration=%g", b.duration.Seconds()),
				"asetpts=PTS-STARTPTS",
			},
			outputs: []string{"a"},
		})
		g.audioLabel = "a"
	}

	return g, nil
}

// escapeSubtitlePath quotes the characters the subtitles filter treats
// specially inside its quoted filename argument.
func escapeSubtitlePath(path string) string {
	replacer := strings.NewReplacer(
		`\`, `\\`,
		`'`, `\'`,
		`:`, `\:`,
	)
	return replacer.Replace(path)
}
