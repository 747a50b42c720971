package subtitles

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// FormatTimecode renders a duration in the SRT HH:MM:SS,mmm form. Milliseconds
// are truncated, not rounded.
func FormatTimecode(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	hours := int(d / time.Hour)
	minutes := int(d/time.Minute) % 60
	seconds := int(d/time.Second) % 60
	millis := int(d/time.Millisecond) % 1000
	return fmt.Sprintf("%02d:%02d:%02d,%03d", hours, minutes, seconds, millis)
}

// Render produces SRT content: numbered cue blocks separated by blank lines.
func Render(cues []Cue) string {
	var b strings.Builder
	for _, cue := range cues {
		fmt.Fprintf(&b, "%d\n", cue.Index)
		fmt.Fprintf(&b, "%s --> %s\n", FormatTimecode(cue.Start), FormatTimecode(cue.End))
		fmt.Fprintf(&b, "%s\n\n", cue.Text)
	}
	return b.String()
}

// WriteFile materializes cues as a uniquely named .srt file in dir. The caller
// owns the file's lifetime and must delete it once the encode finishes.
func WriteFile(dir string, cues []Cue) (string, error) {
	path := filepath.Join(dir, fmt.Sprintf("subtitles_%s.srt", uuid.New().String()))
	if err := os.WriteFile(path, []byte(Render(cues)), 0o644); err != nil {
		return "", fmt.Errorf("write srt: %w", err)
	}
	return path, nil
}
