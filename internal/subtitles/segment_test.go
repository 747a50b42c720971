package subtitles

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"
)

func defaultSegmenter() Segmenter {
	return NewSegmenter(45, 6)
}

func TestSegmentEmptyTextFails(t *testing.T) {
	for _, text := range []string{"", "   ", "\n\t "} {
		if _, err := defaultSegmenter().Segment(text, 15*time.Second); err != ErrEmptyText {
			t.Fatalf("expected ErrEmptyText for %q, got %v", text, err)
		}
	}
}

func TestSegmentSingleCueCoversWholeClip(t *testing.T) {
	cues, err := defaultSegmenter().Segment("Hello world", 15*time.Second)
	if err != nil {
		t.Fatalf("Segment returned error: %v", err)
	}
	if len(cues) != 1 {
		t.Fatalf("expected one cue, got %d", len(cues))
	}
	if cues[0].Index != 1 || cues[0].Start != 0 || cues[0].End != 15*time.Second {
		t.Fatalf("unexpected cue: %+v", cues[0])
	}
	if cues[0].Text != "Hello world" {
		t.Fatalf("unexpected text: %q", cues[0].Text)
	}
}

func TestSegmentCuesTileDurationExactly(t *testing.T) {
	text := strings.Repeat("lorem ipsum dolor sit amet ", 7)
	duration := 15 * time.Second
	cues, err := defaultSegmenter().Segment(text, duration)
	if err != nil {
		t.Fatalf("Segment returned error: %v", err)
	}
	if cues[0].Start != 0 {
		t.Fatalf("expected first cue at zero, got %v", cues[0].Start)
	}
	for i := 1; i < len(cues); i++ {
		if cues[i].Start != cues[i-1].End {
			t.Fatalf("gap/overlap between cue %d and %d: %v vs %v", i, i+1, cues[i-1].End, cues[i].Start)
		}
		if cues[i].Index != cues[i-1].Index+1 {
			t.Fatalf("indices not sequential at %d", i)
		}
	}
	if last := cues[len(cues)-1]; last.End != duration {
		t.Fatalf("expected last cue to end at %v, got %v", duration, last.End)
	}
}

func TestSegmentRespectsCharCap(t *testing.T) {
	text := strings.Repeat("word ", 40)
	cues, err := defaultSegmenter().Segment(text, 15*time.Second)
	if err != nil {
		t.Fatalf("Segment returned error: %v", err)
	}
	if len(cues) > 6 {
		t.Fatalf("expected at most 6 cues, got %d", len(cues))
	}
	// No merge was needed here, so every cue respects the cap.
	for _, cue := range cues {
		if utf8.RuneCountInString(cue.Text) > 45 {
			t.Fatalf("cue exceeds char cap: %q", cue.Text)
		}
	}
}

func TestSegmentNeverSplitsWords(t *testing.T) {
	long := strings.Repeat("x", 60)
	cues, err := defaultSegmenter().Segment("short "+long+" tail", 15*time.Second)
	if err != nil {
		t.Fatalf("Segment returned error: %v", err)
	}
	found := false
	for _, cue := range cues {
		if strings.Contains(cue.Text, long) {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected oversized word kept intact, got %+v", cues)
	}
}

func TestSegmentCueCountCeiling(t *testing.T) {
	// Enough short words to overflow six cues before merging.
	text := strings.Repeat("abcdefghij ", 50)
	cues, err := defaultSegmenter().Segment(text, 15*time.Second)
	if err != nil {
		t.Fatalf("Segment returned error: %v", err)
	}
	if len(cues) > 6 {
		t.Fatalf("expected at most 6 cues after merge, got %d", len(cues))
	}
	// Merging is a single pairwise pass, so merged cues may exceed the
	// character cap; words must still be intact.
	for _, cue := range cues {
		for _, word := range strings.Fields(cue.Text) {
			if utf8.RuneCountInString(word) != 10 {
				t.Fatalf("unexpected word %q in merged cue", word)
			}
		}
	}
}

func TestMergePairsHandlesOddTrailingCue(t *testing.T) {
	lines := []string{"a", "b", "c", "d", "e"}
	merged := mergePairs(lines)
	want := []string{"a b", "c d", "e"}
	if len(merged) != len(want) {
		t.Fatalf("unexpected merge count: %v", merged)
	}
	for i := range want {
		if merged[i] != want[i] {
			t.Fatalf("unexpected merge at %d: got %q want %q", i, merged[i], want[i])
		}
	}
}

func TestSegmentUniformTiming(t *testing.T) {
	// 120-character sentence, the silent-path end-to-end shape.
	text := strings.TrimSpace(strings.Repeat("every good clip needs words ", 5))[:120]
	duration := 15 * time.Second
	cues, err := defaultSegmenter().Segment(text, duration)
	if err != nil {
		t.Fatalf("Segment returned error: %v", err)
	}
	per := duration / time.Duration(len(cues))
	for i, cue := range cues[:len(cues)-1] {
		if got := cue.End - cue.Start; got != per {
			t.Fatalf("cue %d has non-uniform slice %v, want %v", i+1, got, per)
		}
	}
}
