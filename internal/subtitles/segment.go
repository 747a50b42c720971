package subtitles

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"
)

// ErrEmptyText reports that the trimmed narration text was empty.
var ErrEmptyText = errors.New("subtitle text is empty")

// Cue is one timed subtitle entry. Cues produced by Segment are contiguous,
// non-overlapping, ordered by index, and tile [0, duration) exactly.
type Cue struct {
	Index int
	Start time.Duration
	End   time.Duration
	Text  string
}

// Segmenter splits narration text into timed cues.
type Segmenter struct {
	// MaxCueChars caps the character length of a single cue. A word longer
	// than the cap still becomes its own cue; words are never split.
	MaxCueChars int
	// MaxCues caps the cue count. Overflow is reduced by one pairwise merge
	// pass in original order.
	MaxCues int
}

// NewSegmenter builds a segmenter with the given caps.
func NewSegmenter(maxCueChars, maxCues int) Segmenter {
	return Segmenter{MaxCueChars: maxCueChars, MaxCues: maxCues}
}

// Segment packs text into cues and assigns each a uniform slice of duration.
func (s Segmenter) Segment(text string, duration time.Duration) ([]Cue, error) {
	clean := strings.TrimSpace(text)
	if clean == "" {
		return nil, ErrEmptyText
	}

	lines := s.pack(strings.Fields(clean))
	if len(lines) > s.MaxCues {
		lines = mergePairs(lines)
	}

	cues := make([]Cue, len(lines))
	per := duration / time.Duration(len(lines))
	for i, line := range lines {
		start := time.Duration(i) * per
		end := start + per
		if i == len(lines)-1 {
			// Absorb integer-division remainder so the cues tile the full clip.
			end = duration
		}
		cues[i] = Cue{Index: i + 1, Start: start, End: end, Text: line}
	}
	return cues, nil
}

func (s Segmenter) pack(words []string) []string {
	var lines []string
	var current string
	for _, word := range words {
		switch {
		case current == "":
			current = word
		case utf8.RuneCountInString(current)+1+utf8.RuneCountInString(word) <= s.MaxCueChars:
			current += " " + word
		default:
			lines = append(lines, current)
			current = word
		}
	}
	if current != "" {
		lines = append(lines, current)
	}
	return lines
}

// mergePairs joins lines pairwise in original order (0+1, 2+3, ...). A
// trailing unpaired line is kept as-is. The pass runs once, not iteratively.
func mergePairs(lines []string) []string {
	merged := make([]string, 0, (len(lines)+1)/2)
	for i := 0; i < len(lines); i += 2 {
		if i+1 < len(lines) {
			merged = append(merged, lines[i]+" "+lines[i+1])
		} else {
			merged = append(merged, lines[i])
		}
	}
	return merged
}
